package access

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/raknago/parking-backend/internal/domain"
)

var notificationShape = []struct {
	key  string
	good any
	bad  any
}{
	{"title", "t", int64(1)},
	{"message", "m", true},
	{"type", "general", nil},
	{"recipientType", "all", int64(0)},
	{"sentBy", "system", now},
	{"sentAt", now, "yesterday"},
	{"createdAt", now, int64(5)},
	{"updatedAt", now, "now"},
}

func TestProperties_Users(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// Without admin rights, reading users/{id} succeeds exactly when uid == id.
	properties.Property("isOwner iff identity equals document id", prop.ForAll(
		func(uid, other string, same bool) bool {
			id := other
			if same {
				id = uid
			}
			got := decide(Identity{UID: uid}, Profile{}, Request{Op: OpRead, Collection: domain.CollectionUsers, ID: id})
			return got == (uid == id)
		},
		gen.Identifier(),
		gen.Identifier(),
		gen.Bool(),
	))

	properties.Property("touching email or createdAt needs admin", prop.ForAll(
		func(uid string, admin bool, touchEmail bool, value string) bool {
			existing := domain.Fields{"email": "a@x.io", "name": "A", "createdAt": now, "updatedAt": now}
			patch := domain.Fields{"updatedAt": now.Add(time.Hour)}
			if touchEmail {
				patch["email"] = value + "@changed.io"
			} else {
				patch["createdAt"] = now.Add(-time.Duration(len(value)+1) * time.Hour)
			}
			profile := Profile{Exists: true, Fields: domain.Fields{"role": "user"}}
			if admin {
				profile = adminProfile()
			}
			got := decide(Identity{UID: uid}, profile, Request{
				Op:         OpUpdate,
				Collection: domain.CollectionUsers,
				ID:         uid,
				Existing:   existing,
				Proposed:   domain.Merge(existing, patch),
			})
			return got == admin
		},
		gen.Identifier(),
		gen.Bool(),
		gen.Bool(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestProperties_NotificationCreate(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	// mask selects which required fields are present, wrong picks one field
	// to carry the wrong kind (len(shape) means none).
	properties.Property("create allowed iff admin with every field of the right kind", prop.ForAll(
		func(admin bool, mask uint8, wrong int) bool {
			proposed := domain.Fields{}
			for i, f := range notificationShape {
				if mask&(1<<uint(i)) == 0 {
					continue
				}
				if i == wrong {
					proposed[f.key] = f.bad
				} else {
					proposed[f.key] = f.good
				}
			}
			profile := Profile{}
			if admin {
				profile = adminProfile()
			}
			got := decide(Identity{UID: "u1"}, profile, Request{
				Op:         OpCreate,
				Collection: domain.CollectionNotifications,
				Proposed:   proposed,
			})
			complete := mask == 0xFF
			return got == (admin && complete && wrong == len(notificationShape))
		},
		gen.Bool(),
		gen.OneGenOf(gen.Const(uint8(0xFF)), gen.UInt8()),
		gen.IntRange(0, len(notificationShape)),
	))

	properties.TestingRun(t)
}
