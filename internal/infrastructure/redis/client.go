package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	pingTimeout = 2 * time.Second

	profileKeyPrefix = "profile:"
)

// ProfileKey is where the API caches the users/{uid} profile. The admin CLI
// deletes the same key after a promotion.
func ProfileKey(uid string) string {
	return profileKeyPrefix + uid
}

// Client owns the shared connection pool. The profile cache, the OTP
// limiters and the admin CLI all borrow rdb from it.
type Client struct {
	rdb *goredis.Client
}

func New(addr, password string, db int) *Client {
	return &Client{
		rdb: goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Dial connects and pings once, closing the pool when the server is unreachable.
func Dial(ctx context.Context, addr string) (*Client, error) {
	c := New(addr, "", 0)
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return c, nil
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
