package archive

import (
	"context"
	"sort"
	"testing"
	"time"
)

type memoryQueue struct {
	due map[string]time.Time
}

func (q *memoryQueue) Schedule(_ context.Context, id string, at time.Time) error {
	q.due[id] = at
	return nil
}

func (q *memoryQueue) Due(_ context.Context, now time.Time) ([]string, error) {
	var ids []string
	for id, at := range q.due {
		if !at.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (q *memoryQueue) Claim(_ context.Context, id string) (bool, error) {
	if _, ok := q.due[id]; !ok {
		return false, nil
	}
	delete(q.due, id)
	return true, nil
}

func TestVerifyWorkerPass(t *testing.T) {
	svc, _, cache := newTestService(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	queue := &memoryQueue{due: make(map[string]time.Time)}
	svc.ScheduleVerification(queue, time.Minute)

	kept, _ := svc.Simulate(ctx, 21)
	gone, _ := svc.Simulate(ctx, 22)
	if len(queue.due) != 2 {
		t.Fatalf("scheduled %d matches, want 2", len(queue.due))
	}
	if err := svc.Delete(ctx, gone.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if n := processDueVerifications(ctx, svc, queue, start.Add(30*time.Second)); n != 0 {
		t.Errorf("verified %d matches before they were due", n)
	}
	if n := processDueVerifications(ctx, svc, queue, start.Add(time.Minute)); n != 1 {
		t.Errorf("verified %d matches, want 1", n)
	}
	if v, ok := cache.entries[kept.ID]; !ok || !v.Identical {
		t.Errorf("cached verification for %s = %+v, %v", kept.ID, v, ok)
	}
	if len(queue.due) != 0 {
		t.Errorf("queue still holds %v", queue.due)
	}
}
