package api

import (
	"context"
	"time"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

type userContextKey struct{}

// SessionUser is the authenticated caller of a request
type SessionUser struct {
	ID    string
	Email string
}

// WithUser stores the authenticated user on ctx
func WithUser(ctx context.Context, u SessionUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext returns the authenticated user of the request, if any
func UserFromContext(ctx context.Context) (SessionUser, bool) {
	u, ok := ctx.Value(userContextKey{}).(SessionUser)
	if !ok || u.ID == "" {
		return SessionUser{}, false
	}
	return u, true
}

// UserID returns the authenticated user's id or "" when there is none
func UserID(ctx context.Context) string {
	u, _ := UserFromContext(ctx)
	return u.ID
}
