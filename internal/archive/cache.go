package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/playmatatu/pong/internal/models"
	"github.com/redis/go-redis/v9"
)

// EventsChannel is the pub/sub channel archive notices go out on.
const EventsChannel = "match_events"

// Notice types published on EventsChannel.
const (
	NoticeArchived = "match_archived"
	NoticeVerified = "match_verified"
	NoticeDeleted  = "match_deleted"
)

// Notice tells spectators something happened to an archived match.
type Notice struct {
	Type      string `json:"type" msgpack:"type"`
	MatchID   string `json:"match_id" msgpack:"match_id"`
	Identical *bool  `json:"identical,omitempty" msgpack:"identical,omitempty"`
}

// VerifyCache remembers replay verifications so repeated requests skip the
// replay.
type VerifyCache interface {
	GetVerification(ctx context.Context, matchID string) (*models.Verification, bool, error)
	SetVerification(ctx context.Context, v *models.Verification) error
	Invalidate(ctx context.Context, matchID string) error
}

// Publisher fans archive notices out to other server instances.
type Publisher interface {
	Publish(ctx context.Context, n Notice) error
}

// RedisCache implements VerifyCache and Publisher on one redis client.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func verifyKey(matchID string) string {
	return "match_verify:" + matchID
}

func (c *RedisCache) GetVerification(ctx context.Context, matchID string) (*models.Verification, bool, error) {
	data, err := c.rdb.Get(ctx, verifyKey(matchID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var v models.Verification
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false, fmt.Errorf("corrupt cached verification for %s: %w", matchID, err)
	}
	return &v, true, nil
}

func (c *RedisCache) SetVerification(ctx context.Context, v *models.Verification) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.SetEx(ctx, verifyKey(v.MatchID), data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, matchID string) error {
	return c.rdb.Del(ctx, verifyKey(matchID)).Err()
}

func (c *RedisCache) Publish(ctx context.Context, n Notice) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return c.rdb.Publish(ctx, EventsChannel, data).Err()
}
