package sessionctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Session identifies the authenticated user for a request. It is threaded
// through request contexts instead of living in package globals.
type Session struct {
	UserID snowflake.ID
	Role   string
}

type sessionKey struct{}

// WithSession stores the session in the context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session from context, if set.
func FromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || s.UserID == 0 {
		return Session{}, false
	}
	return s, true
}

// UserIDFromContext returns the user ID from context, if set.
func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return 0, false
	}
	return s.UserID, true
}

// RoleFromContext returns the normalized role from context, if set.
func RoleFromContext(ctx context.Context) (string, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	role := strings.ToLower(strings.TrimSpace(s.Role))
	if role == "" {
		return "", false
	}
	return role, true
}
