package archive

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/playmatatu/pong/internal/game"
	"github.com/playmatatu/pong/internal/models"
)

type memoryStore struct {
	mu            sync.Mutex
	matches       map[string]models.Match
	verifications map[string]models.Verification
	clock         time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		matches:       make(map[string]models.Match),
		verifications: make(map[string]models.Verification),
		clock:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memoryStore) SaveMatch(_ context.Context, m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = s.clock.Add(time.Second)
	m.CreatedAt = s.clock
	s.matches[m.ID] = *m
	return nil
}

func (s *memoryStore) GetMatch(_ context.Context, id string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return &m, nil
}

func (s *memoryStore) ListMatches(_ context.Context, limit, offset int) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.Match, 0, len(s.matches))
	for _, m := range s.matches {
		m.Events = nil
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []models.Match{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *memoryStore) DeleteMatch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; !ok {
		return ErrMatchNotFound
	}
	delete(s.matches, id)
	delete(s.verifications, id)
	return nil
}

func (s *memoryStore) SaveVerification(_ context.Context, v *models.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[v.MatchID] = *v
	return nil
}

type memoryCache struct {
	entries map[string]models.Verification
	notices []Notice
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]models.Verification)}
}

func (c *memoryCache) GetVerification(_ context.Context, id string) (*models.Verification, bool, error) {
	v, ok := c.entries[id]
	if ok {
		c.hits++
	}
	return &v, ok, nil
}

func (c *memoryCache) SetVerification(_ context.Context, v *models.Verification) error {
	c.entries[v.MatchID] = *v
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, id string) error {
	delete(c.entries, id)
	return nil
}

func (c *memoryCache) Publish(_ context.Context, n Notice) error {
	c.notices = append(c.notices, n)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryStore, *memoryCache) {
	t.Helper()
	store := newMemoryStore()
	cache := newMemoryCache()
	tuning := game.DefaultTuning()
	tuning.WinningScore = 3
	return NewService(store, cache, cache, tuning, 100000), store, cache
}

func TestSimulateArchivesMatch(t *testing.T) {
	svc, store, cache := newTestService(t)
	ctx := context.Background()

	m, err := svc.Simulate(ctx, 42)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if _, ok := store.matches[m.ID]; !ok {
		t.Fatalf("match %s not stored", m.ID)
	}
	if !m.Seed.Valid || m.Seed.Int64 != 42 || m.Source != models.SourceSimulated {
		t.Errorf("seed/source = %+v %q", m.Seed, m.Source)
	}
	if !m.Winner.Valid {
		t.Errorf("finished match has no winner")
	}
	if m.LeftScore != 3 && m.RightScore != 3 {
		t.Errorf("score %d-%d, want a side on 3", m.LeftScore, m.RightScore)
	}
	if len(cache.notices) != 1 || cache.notices[0].Type != NoticeArchived {
		t.Errorf("notices = %+v", cache.notices)
	}

	events, err := svc.Events(ctx, m.ID)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != m.EventCount {
		t.Errorf("decoded %d events, summary says %d", len(events), m.EventCount)
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a, _ := svc.Simulate(ctx, 7)
	b, _ := svc.Simulate(ctx, 7)
	if a.ID == b.ID {
		t.Errorf("two archives share id %s", a.ID)
	}
	if string(a.Events) != string(b.Events) {
		t.Errorf("same seed archived different logs")
	}
}

func TestImportRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	original, _ := svc.Simulate(ctx, 3)

	imported, err := svc.Import(ctx, original.Events)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported.Source != models.SourceImported || imported.Seed.Valid {
		t.Errorf("imported match = source %q seed %+v", imported.Source, imported.Seed)
	}
	if imported.LeftScore != original.LeftScore || imported.RightScore != original.RightScore ||
		imported.Winner != original.Winner || imported.TickCount != original.TickCount {
		t.Errorf("summary differs: %+v vs %+v", imported.View(), original.View())
	}
}

func TestImportRejects(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
	}{
		{"not an array", `{"events":[]}`},
		{"empty", `[]`},
		{"starts with hit", `[{"type":"hit","tick":3,"position":{"x":48,"y":200},"velocity":{"x":300,"y":0},"player":"left","paddlePositions":{"left":200,"right":200}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Import(ctx, []byte(tt.payload))
			var ie *game.ImportError
			if !errors.As(err, &ie) {
				t.Errorf("Import error = %v, want *game.ImportError", err)
			}
		})
	}
	if len(store.matches) != 0 {
		t.Errorf("rejected imports stored %d matches", len(store.matches))
	}
}

func TestVerifyCachesResult(t *testing.T) {
	svc, store, cache := newTestService(t)
	ctx := context.Background()
	m, _ := svc.Simulate(ctx, 5)

	v, err := svc.Verify(ctx, m.ID)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !v.Identical || v.OriginalCount != m.EventCount {
		t.Errorf("verification = %+v", v)
	}
	if _, ok := store.verifications[m.ID]; !ok {
		t.Errorf("verification not stored")
	}

	again, err := svc.Verify(ctx, m.ID)
	if err != nil {
		t.Fatalf("second Verify: %v", err)
	}
	if cache.hits != 1 || again.Identical != v.Identical {
		t.Errorf("second verify hits=%d result %+v", cache.hits, again)
	}

	last := cache.notices[len(cache.notices)-1]
	if last.Type != NoticeVerified || last.Identical == nil || !*last.Identical {
		t.Errorf("last notice = %+v", last)
	}
}

func TestVerifySimulatedMatchesReplayIdentically(t *testing.T) {
	store := newMemoryStore()
	cache := newMemoryCache()
	svc := NewService(store, cache, cache, game.DefaultTuning(), 100000)
	ctx := context.Background()

	for _, seed := range []int64{0, 1, 2, 21, 28, 42, 65, 84, 101, 250} {
		m, err := svc.Simulate(ctx, seed)
		if err != nil {
			t.Fatalf("seed %d: Simulate: %v", seed, err)
		}
		v, err := svc.Verify(ctx, m.ID)
		if err != nil {
			t.Fatalf("seed %d: Verify: %v", seed, err)
		}
		if !v.Identical || v.MatchingCount != m.EventCount {
			t.Errorf("seed %d: verification = %+v, %d events archived", seed, v, m.EventCount)
		}
		if stored := store.verifications[m.ID]; !stored.Identical {
			t.Errorf("seed %d: stored verdict = %+v", seed, stored)
		}
	}
}

func TestVerifyUnknownMatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Verify(ctx, "not-a-uuid"); !errors.Is(err, ErrInvalidMatchID) {
		t.Errorf("Verify(bad id) = %v", err)
	}
	if _, err := svc.Verify(ctx, "6f1c1bde-8a57-4b8e-9d55-6a4a1f2f4a10"); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("Verify(unknown) = %v", err)
	}
}

func TestDeleteDropsCache(t *testing.T) {
	svc, store, cache := newTestService(t)
	ctx := context.Background()
	m, _ := svc.Simulate(ctx, 8)
	svc.Verify(ctx, m.ID)

	if err := svc.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.matches[m.ID]; ok {
		t.Errorf("match still stored")
	}
	if _, ok := cache.entries[m.ID]; ok {
		t.Errorf("verification still cached")
	}
	if err := svc.Delete(ctx, m.ID); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("second Delete = %v, want ErrMatchNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	first, _ := svc.Simulate(ctx, 1)
	second, _ := svc.Simulate(ctx, 2)

	list, err := svc.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("list order wrong: %+v", list)
	}
	if len(list[0].Events) != 0 {
		t.Errorf("list carried events")
	}

	page, _ := svc.List(ctx, 1, 1)
	if len(page) != 1 || page[0].ID != first.ID {
		t.Errorf("second page = %+v", page)
	}
}
