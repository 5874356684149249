package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "goban/internal/errors"
)

const sgfKeyPrefix = "goban:sgf"

func sgfKey(gameKey string) string {
	return fmt.Sprintf("%s:%s", sgfKeyPrefix, gameKey)
}

// SgfCache keeps the serialized SGF record of every game in Redis so that
// clients can fetch it without a replay.
type SgfCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewSgfCache creates the cache. A zero ttl keeps records forever.
func NewSgfCache(client *redis.Client, ttl time.Duration) *SgfCache {
	return &SgfCache{redis: client, ttl: ttl}
}

func (c *SgfCache) SaveSGF(ctx context.Context, gameKey string, sgfText string) error {
	if err := c.redis.Set(ctx, sgfKey(gameKey), sgfText, c.ttl).Err(); err != nil {
		return fmt.Errorf("save sgf of %s: %w", gameKey, err)
	}
	return nil
}

func (c *SgfCache) LoadSGF(ctx context.Context, gameKey string) (string, error) {
	text, err := c.redis.Get(ctx, sgfKey(gameKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperrors.ErrSgfNotCached
	} else if err != nil {
		return "", fmt.Errorf("load sgf of %s: %w", gameKey, err)
	}
	return text, nil
}

func (c *SgfCache) DeleteSGF(ctx context.Context, gameKey string) error {
	return c.redis.Del(ctx, sgfKey(gameKey)).Err()
}
