package auth

import (
	"context"

	"opportunity-board/internal/model"
)

type contextKey string

const userContextKey contextKey = "user"

// WithUser returns a context carrying the signed-in user.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the signed-in user or nil.
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(userContextKey).(*model.User)
	return u
}
