package auth

import (
	"context"

	"github.com/hammamikhairi/cooksync/internal/domain"
)

// LocalUserID owns everything when the server runs without Google sign-in.
const LocalUserID = "local"

// LocalUser is the fixed account used in local mode.
var LocalUser = domain.User{ID: LocalUserID, Name: "Local cook"}

type contextKey struct{}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFrom returns the authenticated user, if any.
func UserFrom(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(contextKey{}).(*domain.User)
	return u, ok && u != nil
}
