package archive

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const verifyDueKey = "verify_due"

// VerifyQueue schedules archived matches for background verification.
type VerifyQueue interface {
	Schedule(ctx context.Context, matchID string, at time.Time) error
	Due(ctx context.Context, now time.Time) ([]string, error)
	// Claim removes matchID from the queue and reports whether this caller
	// got it. Concurrent workers never verify the same entry twice.
	Claim(ctx context.Context, matchID string) (bool, error)
}

func (c *RedisCache) Schedule(ctx context.Context, matchID string, at time.Time) error {
	return c.rdb.ZAdd(ctx, verifyDueKey, redis.Z{Score: float64(at.Unix()), Member: matchID}).Err()
}

func (c *RedisCache) Due(ctx context.Context, now time.Time) ([]string, error) {
	return c.rdb.ZRangeByScore(ctx, verifyDueKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
}

func (c *RedisCache) Claim(ctx context.Context, matchID string) (bool, error) {
	removed, err := c.rdb.ZRem(ctx, verifyDueKey, matchID).Result()
	return removed > 0, err
}

// StartVerifyWorker verifies scheduled matches every interval until ctx ends.
func StartVerifyWorker(ctx context.Context, svc *Service, queue VerifyQueue, interval time.Duration) {
	if queue == nil || interval <= 0 {
		log.Println("[VERIFY] Queue or interval missing; verify worker not started")
		return
	}

	log.Printf("[VERIFY] Verify worker started (every %s)", interval)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[VERIFY] Verify worker stopping")
				return
			case now := <-ticker.C:
				processDueVerifications(ctx, svc, queue, now)
			}
		}
	}()
}

// processDueVerifications runs one pass of the worker and returns how many
// matches it verified.
func processDueVerifications(ctx context.Context, svc *Service, queue VerifyQueue, now time.Time) int {
	ids, err := queue.Due(ctx, now)
	if err != nil {
		log.Printf("[VERIFY] Failed to fetch due verifications: %v", err)
		return 0
	}

	verified := 0
	for _, id := range ids {
		claimed, err := queue.Claim(ctx, id)
		if err != nil {
			log.Printf("[VERIFY] Failed to claim %s: %v", id, err)
			continue
		}
		if !claimed {
			continue
		}
		v, err := svc.Verify(ctx, id)
		if err != nil {
			if errors.Is(err, ErrMatchNotFound) {
				log.Printf("[VERIFY] match %s deleted before verification", id)
			} else {
				log.Printf("[VERIFY] Verification of %s failed: %v", id, err)
			}
			continue
		}
		if !v.Identical {
			log.Printf("[VERIFY] match %s does not replay identically (%d/%d events)", id, v.MatchingCount, v.OriginalCount)
		}
		verified++
	}
	return verified
}
