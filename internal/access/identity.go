package access

import (
	"context"

	"github.com/raknago/parking-backend/internal/domain"
)

type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Identity is the authenticated requester. The zero value is anonymous.
type Identity struct {
	UID string
}

func Anonymous() Identity { return Identity{} }

func (i Identity) IsAuthenticated() bool { return i.UID != "" }

// Profile is the requester's own users document as the rules see it.
type Profile struct {
	Exists bool
	Fields domain.Fields
}

func (p Profile) IsAdmin() bool {
	if !p.Exists {
		return false
	}
	role, ok := p.Fields.String("role")
	return ok && role == string(domain.RoleAdmin)
}

func (p Profile) ProfileCompleted() bool {
	if !p.Exists {
		return false
	}
	done, ok := p.Fields.Bool("profileCompleted")
	return ok && done
}

// ProfileReader loads users/{uid}. A missing document is (nil, false, nil).
type ProfileReader interface {
	Profile(ctx context.Context, uid string) (domain.Fields, bool, error)
}

// Request describes a single document operation.
// Existing is nil when the document does not exist yet.
// Proposed is the full document as it would be after a create or update.
type Request struct {
	Op         Operation
	Collection string
	ID         string
	Existing   domain.Fields
	Proposed   domain.Fields
}
