package domain

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	userContextKey    contextKey = "user"
	companyContextKey contextKey = "company_id"
)

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil if none is set.
func UserFromContext(ctx context.Context) *User {
	if u, ok := ctx.Value(userContextKey).(*User); ok {
		return u
	}
	return nil
}

// WithCompanyID returns a context carrying the active company id.
func WithCompanyID(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, companyContextKey, companyID)
}

// CompanyIDFromContext returns the active company id, or "" if none is set.
func CompanyIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(companyContextKey).(string); ok {
		return id
	}
	return ""
}
