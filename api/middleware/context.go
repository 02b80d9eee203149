package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
)

// Principal is the authenticated admin behind a request.
type Principal struct {
	UserID   uuid.UUID
	Role     enums.AdminRole
	AccessID string
}

type principalKey struct{}

// WithPrincipal stores p on ctx. Auth calls it after a token and its session
// have been verified.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserIDFromContext returns "" for unauthenticated requests.
func UserIDFromContext(ctx context.Context) string {
	if p, ok := PrincipalFromContext(ctx); ok && p.UserID != uuid.Nil {
		return p.UserID.String()
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.AdminRole {
	p, _ := PrincipalFromContext(ctx)
	return p.Role
}

// AccessIDFromContext returns the jti of the token that authenticated the request.
func AccessIDFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.AccessID
}
