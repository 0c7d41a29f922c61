package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/raknago/parking-backend/internal/access"
	"github.com/raknago/parking-backend/internal/domain"
)

// CachedProfileReader decorates an access.ProfileReader with a Redis cache.
// - Read path: Redis -> store fallback -> Redis set (hits only)
// - Write path: callers Invalidate after any write to users/{uid}
// Redis errors never fail a request; the store stays the source of truth.
type CachedProfileReader struct {
	inner access.ProfileReader
	rdb   *goredis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCachedProfileReader(inner access.ProfileReader, client *Client, ttl time.Duration, log zerolog.Logger) *CachedProfileReader {
	var rdb *goredis.Client
	if client != nil {
		rdb = client.rdb
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedProfileReader{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log.With().Str("component", "profile-cache").Logger(),
	}
}

func (c *CachedProfileReader) Profile(ctx context.Context, uid string) (domain.Fields, bool, error) {
	if c.rdb != nil {
		b, err := c.rdb.Get(ctx, ProfileKey(uid)).Bytes()
		switch {
		case err == nil:
			if f, derr := domain.DecodeFields(b); derr == nil {
				return f, true, nil
			}
		case !errors.Is(err, goredis.Nil):
			c.log.Warn().Err(err).Msg("profile cache read failed")
		}
	}

	f, ok, err := c.inner.Profile(ctx, uid)
	if err != nil || !ok {
		return f, ok, err
	}

	if c.rdb != nil {
		if b, eerr := domain.EncodeFields(f); eerr == nil {
			_ = c.rdb.Set(ctx, ProfileKey(uid), b, c.ttl).Err()
		}
	}
	return f, true, nil
}

// Invalidate drops the cached profile for uid. Best effort.
func (c *CachedProfileReader) Invalidate(ctx context.Context, uid string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, ProfileKey(uid)).Err(); err != nil {
		c.log.Warn().Err(err).Str("uid", uid).Msg("profile cache invalidate failed")
	}
}
