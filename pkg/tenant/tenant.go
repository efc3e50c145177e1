package tenant

import (
	"context"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for the tenant Context.
	Key ContextKey = "tenant"
)

// Context identifies the tenant a request acts on behalf of. It is derived
// once per request from the authenticated principal and must be treated as
// immutable: it is passed by value and never updated mid-request.
//
// Every isolation primitive takes a Context as an explicit argument. Nothing
// in this codebase reads the tenant off ambient request state.
type Context struct {
	// TenantID is the owner value stamped onto and required of every
	// tenant-scoped row (the platform_id column).
	TenantID string

	// Subject is the authenticated principal (user id or login).
	Subject string

	// Role is the principal's role claim (e.g. "admin", "teacher").
	Role string

	// Platform is the deployment flavour claim (e.g. "school", "corporate").
	Platform string
}

// Valid reports whether the context carries a usable tenant identifier.
func (c Context) Valid() bool {
	return c.TenantID != ""
}

// Get retrieves the tenant Context from a request context.
func Get(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(Key).(Context)
	return tc, ok
}

// Set stores the tenant Context in a request context.
func Set(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, Key, tc)
}
