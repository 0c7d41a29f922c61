package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/raknago/parking-backend/internal/access"
	"github.com/raknago/parking-backend/internal/domain"
	appCtx "github.com/raknago/parking-backend/internal/pkg/context"
)

type TokenVerifier interface {
	Verify(token string) (access.Identity, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

type ctxKey string

const ctxIdentity ctxKey = "identity"

// WithIdentity stores the requester; a signed-in uid also tags request logs.
func WithIdentity(ctx context.Context, id access.Identity) context.Context {
	if id.IsAuthenticated() {
		ctx = appCtx.WithRequesterUID(ctx, id.UID)
	}
	return context.WithValue(ctx, ctxIdentity, id)
}

// IdentityFromContext returns the requester, anonymous when none was set.
func IdentityFromContext(ctx context.Context) access.Identity {
	id, _ := ctx.Value(ctxIdentity).(access.Identity)
	return id
}

// Identity resolves an optional "Authorization: Bearer <token>" header.
// No header means an unauthenticated requester; a bad header or token is 401.
func Identity(verifier TokenVerifier, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := strings.TrimSpace(r.Header.Get("Authorization"))
			if h == "" {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), access.Anonymous())))
				return
			}

			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}
			raw := strings.TrimSpace(parts[1])
			if raw == "" {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			id, err := verifier.Verify(raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
