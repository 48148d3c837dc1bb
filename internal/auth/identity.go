package auth

import (
	"context"

	"github.com/kosta-developer/DEVELOPER-Back/internal/user"
)

// Identity is the verified caller of a request. The zero value is anonymous.
type Identity struct {
	UserID string
	Role   user.Role
}

func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

func (i Identity) IsAdmin() bool {
	return !i.Anonymous() && i.Role == user.RoleAdmin
}

type contextKey struct{}

var identityKey contextKey

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity stored by IdentityMiddleware, or an anonymous one.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}
