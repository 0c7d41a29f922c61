package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raknago/parking-backend/internal/domain"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_Ping(t *testing.T) {
	c, mr := newTestClient(t)
	assert.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Dial(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = Dial(context.Background(), addr)
	assert.ErrorContains(t, err, addr)
}

func TestProfileKey(t *testing.T) {
	assert.Equal(t, "profile:u1", ProfileKey("u1"))
}

func TestFixedWindowLimiter_RedisNil_Allows(t *testing.T) {
	l := NewFixedWindowLimiter(nil)

	d, err := l.Allow(context.Background(), "k", 10, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("expected allowed when redis disabled")
	}
	if d.Remaining != 10 {
		t.Fatalf("unexpected remaining: %d", d.Remaining)
	}
}

func TestFixedWindowLimiter_CountsAndBlocks(t *testing.T) {
	c, mr := newTestClient(t)
	l := NewFixedWindowLimiter(c)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := l.Allow(ctx, "rl:otp:a@x.io:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "hit %d", i)
		assert.Equal(t, 3-i, d.Remaining)
	}

	d, err := l.Allow(ctx, "rl:otp:a@x.io:1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 4, d.Count)
	assert.Greater(t, d.RetryAfter, time.Duration(0))

	// window elapses
	mr.FastForward(time.Minute + time.Second)
	d, err = l.Allow(ctx, "rl:otp:a@x.io:1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestFixedWindowLimiter_RedisDownIsInfraError(t *testing.T) {
	c, mr := newTestClient(t)
	l := NewFixedWindowLimiter(c)
	mr.Close()

	_, err := l.Allow(context.Background(), "k", 1, time.Minute)
	assert.True(t, domain.Is(err, "redis_unavailable"))
}

func TestWindowKey(t *testing.T) {
	now := time.Unix(120, 0)
	assert.Equal(t, "rl:otp.email:a@x.io:2", WindowKey("otp.email", "a@x.io", time.Minute, now))
	assert.Equal(t, WindowKey("s", "i", time.Minute, now), WindowKey("s", "i", 0, now))
}

type fakeProfiles struct {
	docs  map[string]domain.Fields
	err   error
	calls int
}

func (f *fakeProfiles) Profile(_ context.Context, uid string) (domain.Fields, bool, error) {
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	d, ok := f.docs[uid]
	return d, ok, nil
}

func TestCachedProfileReader_ReadThroughAndInvalidate(t *testing.T) {
	c, mr := newTestClient(t)
	inner := &fakeProfiles{docs: map[string]domain.Fields{"u1": {"role": "user", "profileCompleted": true}}}
	r := NewCachedProfileReader(inner, c, time.Minute, zerolog.Nop())
	ctx := context.Background()

	f, ok, err := r.Profile(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "user", f["role"])
	assert.True(t, mr.Exists("profile:u1"))

	// served from cache
	inner.docs["u1"] = domain.Fields{"role": "admin"}
	f, _, _ = r.Profile(ctx, "u1")
	assert.Equal(t, "user", f["role"])
	assert.Equal(t, 1, inner.calls)

	r.Invalidate(ctx, "u1")
	f, _, _ = r.Profile(ctx, "u1")
	assert.Equal(t, "admin", f["role"])
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProfileReader_MissesAreNotCached(t *testing.T) {
	c, mr := newTestClient(t)
	inner := &fakeProfiles{docs: map[string]domain.Fields{}}
	r := NewCachedProfileReader(inner, c, time.Minute, zerolog.Nop())

	_, ok, err := r.Profile(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("profile:ghost"))
}

func TestCachedProfileReader_Passthrough(t *testing.T) {
	t.Run("redis_nil", func(t *testing.T) {
		inner := &fakeProfiles{docs: map[string]domain.Fields{"u1": {"role": "admin"}}}
		r := NewCachedProfileReader(inner, nil, 0, zerolog.Nop())
		_, ok, err := r.Profile(context.Background(), "u1")
		assert.NoError(t, err)
		assert.True(t, ok)
		r.Invalidate(context.Background(), "u1")
	})

	t.Run("redis_down_falls_back", func(t *testing.T) {
		c, mr := newTestClient(t)
		mr.Close()
		inner := &fakeProfiles{docs: map[string]domain.Fields{"u1": {"role": "admin"}}}
		r := NewCachedProfileReader(inner, c, time.Minute, zerolog.Nop())
		f, ok, err := r.Profile(context.Background(), "u1")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "admin", f["role"])
	})

	t.Run("store_error_surfaces", func(t *testing.T) {
		inner := &fakeProfiles{err: domain.ErrDBUnavailable(errors.New("down"))}
		r := NewCachedProfileReader(inner, nil, time.Minute, zerolog.Nop())
		_, _, err := r.Profile(context.Background(), "u1")
		assert.True(t, domain.Is(err, "db_unavailable"))
	})
}

func TestWindowThrottle_PerIdentity(t *testing.T) {
	c, _ := newTestClient(t)
	th := NewWindowThrottle(NewFixedWindowLimiter(c), 2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := th.Allow(ctx, "otp.email", "a@x.io")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := th.Allow(ctx, "otp.email", "a@x.io")
	require.NoError(t, err)
	assert.False(t, ok)

	// other identity has its own budget
	ok, err = th.Allow(ctx, "otp.email", "b@x.io")
	require.NoError(t, err)
	assert.True(t, ok)
}
