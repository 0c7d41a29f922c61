package admin

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raknago/parking-backend/internal/access"
	"github.com/raknago/parking-backend/internal/application/audit"
	"github.com/raknago/parking-backend/internal/domain"
	"github.com/raknago/parking-backend/internal/infrastructure/memory"
	"github.com/raknago/parking-backend/internal/infrastructure/redis"
)

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, now time.Time) (*Service, *memory.DocumentStore, *memory.RecordingPublisher) {
	t.Helper()
	store := memory.NewDocumentStore()
	pub := &memory.RecordingPublisher{}
	s := NewService(store, pub, zerolog.Nop())
	s.now = func() time.Time { return now }
	n := 0
	s.newID = func() string {
		n++
		return "id-" + string(rune('a'+n-1))
	}
	return s, store, pub
}

func seedUser(t *testing.T, store *memory.DocumentStore, id string, fields domain.Fields) {
	t.Helper()
	_, err := store.Set(context.Background(), domain.Document{Collection: domain.CollectionUsers, ID: id, Fields: fields})
	require.NoError(t, err)
}

func TestListUsers_Defaults(t *testing.T) {
	s, store, _ := newTestService(t, t0)
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	seedUser(t, store, "u1", domain.Fields{"email": "a@x.io", "name": "A"})
	seedUser(t, store, "u2", domain.Fields{"email": "b@x.io", "name": "B", "role": "admin", "status": "blocked"})
	seedUser(t, store, domain.CollectionInfoID, domain.Fields{"description": "Users collection"})

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "user", users[0].Role)
	assert.Equal(t, "active", users[0].Status)
	assert.Equal(t, "admin", users[1].Role)
	assert.Equal(t, "blocked", users[1].Status)
}

func TestFindUserByEmail(t *testing.T) {
	s, store, _ := newTestService(t, t0)
	ctx := context.Background()
	seedUser(t, store, "u1", domain.Fields{"email": "Driver@RaknaGo.io ", "name": "Driver"})

	u, err := s.FindUserByEmail(ctx, "Driver@RaknaGo.io ")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	// case-insensitive trimmed fallback
	u, err = s.FindUserByEmail(ctx, "  driver@raknago.io")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = s.FindUserByEmail(ctx, "nobody@x.io")
	assert.True(t, domain.Is(err, "user_not_found"))

	_, err = s.FindUserByEmail(ctx, "  ")
	assert.True(t, domain.Is(err, "missing_field"))
}

func TestPromoteToAdmin(t *testing.T) {
	s, store, pub := newTestService(t, t0.Add(time.Hour))
	ctx := context.Background()
	seedUser(t, store, "u1", domain.Fields{"email": "a@x.io", "name": "A", "role": "user", "updatedAt": t0})

	u, err := s.PromoteToAdmin(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
	assert.True(t, u.UpdatedAt.After(t0))

	doc, err := store.Get(ctx, domain.CollectionUsers, "u1")
	require.NoError(t, err)
	assert.Equal(t, "admin", doc.Fields["role"])
	assert.Equal(t, "a@x.io", doc.Fields["email"])

	logs, err := store.List(ctx, domain.CollectionSystemLogs, domain.Query{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, audit.AdminUserPromoted, logs[0].Fields["action"])
	assert.Equal(t, "u1", logs[0].Fields["userId"])

	evts := pub.Events()
	require.Len(t, evts, 1)
	assert.Equal(t, "admin.user.promoted", evts[0].RoutingKey())
}

func TestPromoteToAdmin_DropsCachedProfile(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	s, store, _ := newTestService(t, t0)
	cache := redis.NewCachedProfileReader(store, client, time.Minute, zerolog.Nop())
	s = s.WithProfileCache(cache)
	evaluator := access.NewEvaluator(cache, zerolog.Nop())

	ctx := context.Background()
	seedUser(t, store, "u1", domain.Fields{"email": "a@x.io", "name": "A", "role": "user"})
	readSettings := access.Request{Op: access.OpRead, Collection: domain.CollectionSettings, ID: "s"}
	u1 := access.Identity{UID: "u1"}

	err := evaluator.Authorize(ctx, u1, readSettings)
	assert.True(t, domain.Is(err, "permission_denied"))
	require.True(t, mr.Exists(redis.ProfileKey("u1")))

	_, err = s.PromoteToAdmin(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, mr.Exists(redis.ProfileKey("u1")))

	assert.NoError(t, evaluator.Authorize(ctx, u1, readSettings))
}

type countingInvalidator struct{ uids []string }

func (c *countingInvalidator) Invalidate(_ context.Context, uid string) { c.uids = append(c.uids, uid) }

func TestPromoteToAdmin_NotFoundSkipsInvalidate(t *testing.T) {
	s, _, _ := newTestService(t, t0)
	inv := &countingInvalidator{}
	s = s.WithProfileCache(inv)

	_, err := s.PromoteToAdmin(context.Background(), "ghost")
	assert.True(t, domain.Is(err, "user_not_found"))
	assert.Empty(t, inv.uids)
}

func TestPromoteToAdmin_ClockBehindStillAdvances(t *testing.T) {
	s, store, _ := newTestService(t, t0.Add(-time.Minute))
	seedUser(t, store, "u1", domain.Fields{"email": "a@x.io", "name": "A", "updatedAt": t0})

	u, err := s.PromoteToAdmin(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, u.UpdatedAt.After(t0), "updatedAt %v not after %v", u.UpdatedAt, t0)
}

func TestPromoteToAdmin_NotFound(t *testing.T) {
	s, _, pub := newTestService(t, t0)
	_, err := s.PromoteToAdmin(context.Background(), "ghost")
	assert.True(t, domain.Is(err, "user_not_found"))
	assert.Empty(t, pub.Events())
}

func TestSetup_SeedsEveryCollection(t *testing.T) {
	s, store, _ := newTestService(t, t0)
	ctx := context.Background()

	names, err := s.Setup(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, domain.Collections, names)

	for _, name := range domain.Collections {
		doc, err := store.Get(ctx, name, domain.CollectionInfoID)
		require.NoError(t, err, name)
		assert.NotEmpty(t, doc.Fields["description"], name)
		assert.IsType(t, map[string]any{}, doc.Fields["schema"], name)
	}

	users, _ := store.Get(ctx, domain.CollectionUsers, domain.CollectionInfoID)
	schema := users.Fields["schema"].(map[string]any)
	assert.Equal(t, "string (required)", schema["email"])

	// idempotent
	_, err = s.Setup(ctx)
	require.NoError(t, err)
	n, _ := store.Count(ctx, domain.CollectionUsers)
	assert.Equal(t, int64(0), n)
}

type fakeUploader struct {
	key  string
	body []byte
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, key string, body []byte) (string, error) {
	f.key, f.body = key, body
	if f.err != nil {
		return "", f.err
	}
	return "s3://bucket/" + key, nil
}

func TestBackup(t *testing.T) {
	s, store, _ := newTestService(t, t0)
	ctx := context.Background()
	up := &fakeUploader{}
	s.WithUploader(up)

	seedUser(t, store, "u1", domain.Fields{"email": "a@x.io"})
	seedUser(t, store, "u2", domain.Fields{"email": "b@x.io"})
	_, err := store.Set(ctx, domain.Document{Collection: domain.CollectionParkingSpots, ID: "s1", Fields: domain.Fields{"name": "x"}})
	require.NoError(t, err)

	res, err := s.Backup(ctx, "admin1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Backup.Users)
	assert.Equal(t, int64(1), res.Backup.ParkingSpots)
	assert.Equal(t, int64(0), res.Backup.Bookings)
	assert.Equal(t, "backups/20260501T100000Z.json", up.key)
	assert.Equal(t, "s3://bucket/backups/20260501T100000Z.json", res.Location)

	var snap map[string]any
	require.NoError(t, json.Unmarshal(up.body, &snap))
	assert.Equal(t, "admin1", snap["createdBy"])

	doc, err := store.Get(ctx, domain.CollectionBackups, res.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Fields["users"])
	assert.Equal(t, "admin1", doc.Fields["createdBy"])
}

func TestBackup_UploadFailure(t *testing.T) {
	s, _, _ := newTestService(t, t0)
	s.WithUploader(&fakeUploader{err: errors.New("s3 down")})

	_, err := s.Backup(context.Background(), "")
	assert.Error(t, err)
}
