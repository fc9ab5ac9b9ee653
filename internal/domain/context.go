package domain

import "context"

type principalKey struct{}

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	UserID int64
	Role   Role
}

// ContextWithPrincipal returns a copy of ctx carrying p.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// RequestMeta is the request metadata stored alongside money movements.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	RequestID string
}
