package access

import (
	"github.com/raknago/parking-backend/internal/domain"
)

// facts is everything a rule may look at. Rules are pure functions of it.
type facts struct {
	id      Identity
	profile Profile
	req     Request
}

type rule func(f facts) bool

type policy struct {
	read, create, update, delete rule
}

func (p policy) forOp(op Operation) rule {
	switch op {
	case OpRead:
		return p.read
	case OpCreate:
		return p.create
	case OpUpdate:
		return p.update
	case OpDelete:
		return p.delete
	}
	return nil
}

func (f facts) isAuthenticated() bool { return f.id.IsAuthenticated() }

func (f facts) isOwner(docID string) bool {
	return f.isAuthenticated() && f.id.UID == docID
}

func (f facts) isAdmin() bool {
	return f.isAuthenticated() && f.profile.IsAdmin()
}

func (f facts) hasCompletedProfile() bool {
	return f.isAuthenticated() && f.profile.ProfileCompleted()
}

// existingEquals reads resource.data.<key> == uid. A missing resource denies.
func (f facts) existingEquals(key, want string) bool {
	if f.req.Existing == nil {
		return false
	}
	v, ok := f.req.Existing.String(key)
	return ok && v == want
}

func (f facts) proposed() domain.Fields {
	if f.req.Proposed == nil {
		return domain.Fields{}
	}
	return f.req.Proposed
}

func (f facts) affectedKeys() []string {
	return domain.AffectedKeys(f.req.Existing, f.req.Proposed)
}

func (f facts) affectsAny(keys ...string) bool {
	for _, k := range f.affectedKeys() {
		for _, deny := range keys {
			if k == deny {
				return true
			}
		}
	}
	return false
}

func (f facts) affectsOnly(keys ...string) bool {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		allowed[k] = struct{}{}
	}
	for _, k := range f.affectedKeys() {
		if _, ok := allowed[k]; !ok {
			return false
		}
	}
	return true
}

// typed is the "hasAll + is <kind>" shape check used by create rules.
type typed map[string]domain.ValueKind

func (f facts) proposedHas(shape typed, keys ...string) bool {
	p := f.proposed()
	if !p.HasAll(keys...) {
		return false
	}
	for k, kind := range shape {
		if !p.IsKind(k, kind) {
			return false
		}
	}
	return true
}

func (f facts) proposedUpdatedAtIsTimestamp() bool {
	return f.proposed().IsKind("updatedAt", domain.ValueTimestamp)
}

func allow(facts) bool { return true }

func adminOnly(f facts) bool { return f.isAdmin() }

// decide evaluates one request. Unknown collections and unknown operations deny.
func decide(id Identity, profile Profile, req Request) bool {
	p, ok := policies[req.Collection]
	if !ok {
		return false
	}
	r := p.forOp(req.Op)
	if r == nil {
		return false
	}
	return r(facts{id: id, profile: profile, req: req})
}
