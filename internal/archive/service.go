package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/playmatatu/pong/internal/game"
	"github.com/playmatatu/pong/internal/models"
)

// Service archives match logs and verifies them by replay.
type Service struct {
	store    Store
	cache    VerifyCache
	notices  Publisher
	tuning   game.Tuning
	maxTicks int
	now      func() time.Time

	queue       VerifyQueue
	verifyDelay time.Duration
}

// NewService wires the archive. cache and notices may be nil.
func NewService(store Store, cache VerifyCache, notices Publisher, tuning game.Tuning, maxTicks int) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		notices:  notices,
		tuning:   tuning,
		maxTicks: maxTicks,
		now:      time.Now,
	}
}

// ScheduleVerification makes every newly archived match due for background
// verification delay after it is saved.
func (s *Service) ScheduleVerification(queue VerifyQueue, delay time.Duration) {
	s.queue = queue
	s.verifyDelay = delay
}

// Tuning returns the physics every archived match is replayed with.
func (s *Service) Tuning() game.Tuning {
	return s.tuning
}

// Simulate plays a bot-vs-bot match for seed and archives its log.
func (s *Service) Simulate(ctx context.Context, seed int64) (*models.Match, error) {
	res, err := game.RunHeadless(s.tuning, seed, s.maxTicks)
	if err != nil {
		return nil, fmt.Errorf("simulate seed %d: %w", seed, err)
	}
	m, err := s.newMatch(res.Events, models.SourceSimulated)
	if err != nil {
		return nil, err
	}
	m.Seed = sql.NullInt64{Int64: seed, Valid: true}
	if err := s.save(ctx, m); err != nil {
		return nil, err
	}
	log.Printf("[ARCHIVE] Simulated match %s (seed %d): %d-%d in %d ticks", m.ID, seed, m.LeftScore, m.RightScore, m.TickCount)
	return m, nil
}

// Import validates an exported log and archives it. Validation errors are
// *game.ImportError.
func (s *Service) Import(ctx context.Context, data []byte) (*models.Match, error) {
	events, err := game.ParseEvents(data)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, &game.ImportError{Index: -1, Reason: "log has no events"}
	}
	if events[0].Type != game.EventServe {
		return nil, &game.ImportError{Index: 0, Reason: "log must begin with a serve"}
	}
	m, err := s.newMatch(events, models.SourceImported)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, m); err != nil {
		return nil, err
	}
	log.Printf("[ARCHIVE] Imported match %s: %d events", m.ID, m.EventCount)
	return m, nil
}

// newMatch derives the summary columns from a log.
func (s *Service) newMatch(events []game.Event, source string) (*models.Match, error) {
	data, err := game.ExportEvents(events)
	if err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}
	m := &models.Match{
		ID:         uuid.New().String(),
		Source:     source,
		EventCount: len(events),
		Events:     types.JSONText(data),
	}
	var score game.Scoreboard
	for _, e := range events {
		if e.Type != game.EventScore {
			continue
		}
		if e.Player == game.Left {
			score.Left++
		} else {
			score.Right++
		}
		if !m.Winner.Valid && score.Of(e.Player) >= s.tuning.WinningScore {
			m.Winner = sql.NullString{String: string(e.Player), Valid: true}
		}
	}
	m.LeftScore, m.RightScore = score.Left, score.Right
	if len(events) > 0 {
		m.TickCount = events[len(events)-1].Tick - events[0].Tick
	}
	return m, nil
}

func (s *Service) save(ctx context.Context, m *models.Match) error {
	if err := s.store.SaveMatch(ctx, m); err != nil {
		return err
	}
	s.publish(ctx, Notice{Type: NoticeArchived, MatchID: m.ID})
	if s.queue != nil {
		if err := s.queue.Schedule(ctx, m.ID, s.now().Add(s.verifyDelay)); err != nil {
			log.Printf("[ARCHIVE] Failed to schedule verification of %s: %v", m.ID, err)
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, n Notice) {
	if s.notices == nil {
		return
	}
	if err := s.notices.Publish(ctx, n); err != nil {
		log.Printf("[ARCHIVE] Failed to publish %s for %s: %v", n.Type, n.MatchID, err)
	}
}

// Get loads a match with its events.
func (s *Service) Get(ctx context.Context, id string) (*models.Match, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidMatchID
	}
	return s.store.GetMatch(ctx, id)
}

// List returns match summaries, newest first. limit is clamped to [1,100].
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListMatches(ctx, limit, offset)
}

// Events loads and decodes the log of a match.
func (s *Service) Events(ctx context.Context, id string) ([]game.Event, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := game.ParseEvents(m.Events)
	if err != nil {
		return nil, fmt.Errorf("archived match %s is corrupt: %w", id, err)
	}
	return events, nil
}

// Verify replays a match and compares the reproduced log against the
// archived one. Results are cached until the match is deleted.
func (s *Service) Verify(ctx context.Context, id string) (*models.Verification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidMatchID
	}
	if s.cache != nil {
		v, ok, err := s.cache.GetVerification(ctx, id)
		if err != nil {
			log.Printf("[ARCHIVE] Verify cache read failed for %s: %v", id, err)
		} else if ok {
			return v, nil
		}
	}

	events, err := s.Events(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := game.ReplayLog(s.tuning, events)
	if err != nil {
		return nil, fmt.Errorf("replay match %s: %w", id, err)
	}

	v := &models.Verification{
		MatchID:       id,
		OriginalCount: c.OriginalCount,
		ReplayCount:   c.ReplayCount,
		MatchingCount: c.MatchingCount,
		Identical:     c.Identical,
		VerifiedAt:    s.now().UTC(),
	}
	if err := s.store.SaveVerification(ctx, v); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetVerification(ctx, v); err != nil {
			log.Printf("[ARCHIVE] Verify cache write failed for %s: %v", id, err)
		}
	}
	log.Printf("[ARCHIVE] Verified match %s: %d/%d matching, identical=%v", id, c.MatchingCount, c.OriginalCount, c.Identical)
	s.publish(ctx, Notice{Type: NoticeVerified, MatchID: id, Identical: &v.Identical})
	return v, nil
}

// Delete removes a match and its cached verification.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidMatchID
	}
	if err := s.store.DeleteMatch(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			log.Printf("[ARCHIVE] Failed to drop cached verification for %s: %v", id, err)
		}
	}
	log.Printf("[ARCHIVE] Deleted match %s", id)
	s.publish(ctx, Notice{Type: NoticeDeleted, MatchID: id})
	return nil
}
