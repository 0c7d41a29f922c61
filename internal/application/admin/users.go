package admin

import (
	"context"
	"strings"
	"time"

	"github.com/raknago/parking-backend/internal/application/audit"
	"github.com/raknago/parking-backend/internal/domain"
)

// ListUsers returns every user with role and status defaults applied.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	docs, err := s.store.List(ctx, domain.CollectionUsers, domain.Query{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		if d.ID == domain.CollectionInfoID {
			continue
		}
		out = append(out, withDefaults(domain.UserFromDocument(d)))
	}
	return out, nil
}

// FindUserByEmail tries an exact match on the stored email first, then a
// case-insensitive comparison of trimmed addresses across all users.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	docs, err := s.store.List(ctx, domain.CollectionUsers, domain.Query{Field: "email", Value: email, Limit: 1})
	if err != nil {
		return domain.User{}, err
	}
	if len(docs) > 0 {
		return withDefaults(domain.UserFromDocument(docs[0])), nil
	}

	all, err := s.ListUsers(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range all {
		if strings.EqualFold(strings.TrimSpace(u.Email), email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

// PromoteToAdmin sets role=admin and moves updatedAt forward.
func (s *Service) PromoteToAdmin(ctx context.Context, userID string) (domain.User, error) {
	doc, err := s.store.Get(ctx, domain.CollectionUsers, userID)
	if err != nil {
		if domain.Is(err, "document_not_found") {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, err
	}

	prev, _ := doc.Fields.Time("updatedAt")
	doc.Fields = domain.Merge(doc.Fields, domain.Fields{
		"role":      string(domain.RoleAdmin),
		"updatedAt": laterThan(s.now().UTC(), prev),
	})
	saved, err := s.store.Set(ctx, doc)
	if err != nil {
		return domain.User{}, err
	}
	if s.profiles != nil {
		s.profiles.Invalidate(ctx, userID)
	}

	s.log.Info().Str("user_id", userID).Msg("user promoted to admin")
	s.logAction(ctx, audit.AdminUserPromoted, userID, domain.CollectionUsers, userID, []string{"role", "updatedAt"})
	return withDefaults(domain.UserFromDocument(saved)), nil
}

func withDefaults(u domain.User) domain.User {
	u.Role = domain.RoleOrDefault(u.Role)
	u.Status = domain.StatusOrDefault(u.Status)
	return u
}

// laterThan returns now, or the smallest step past prev when the clock lags.
func laterThan(now, prev time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}
