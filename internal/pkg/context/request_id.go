package context

import "context"

// scope is what a request carries for logs and error bodies: the
// correlation id and, once the bearer token checks out, the requester uid.
type scope struct {
	requestID string
	uid       string
}

type scopeKey struct{}

func scopeOf(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// WithRequestID tags ctx with the request id, keeping any requester uid.
func WithRequestID(ctx context.Context, id string) context.Context {
	s := scopeOf(ctx)
	s.requestID = id
	return context.WithValue(ctx, scopeKey{}, s)
}

func GetRequestID(ctx context.Context) string {
	return scopeOf(ctx).requestID
}

// WithRequesterUID records the verified requester. Anonymous calls never set it.
func WithRequesterUID(ctx context.Context, uid string) context.Context {
	s := scopeOf(ctx)
	s.uid = uid
	return context.WithValue(ctx, scopeKey{}, s)
}

func GetRequesterUID(ctx context.Context) string {
	return scopeOf(ctx).uid
}
