package auth

import (
	"context"

	"blog-server/internal/apperr"
	"blog-server/internal/domain"
)

type identityKey struct{}

// WithUser binds the verified user to ctx for the rest of the request.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// UserFrom returns the verified user bound to ctx, if any.
func UserFrom(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(identityKey{}).(*domain.User)
	return user, ok && user != nil
}

// Actor returns the verified user or an authentication error.
func Actor(ctx context.Context) (*domain.User, error) {
	user, ok := UserFrom(ctx)
	if !ok {
		return nil, apperr.Unauthenticated(MsgNoToken)
	}
	return user, nil
}
