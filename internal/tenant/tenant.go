// Package tenant identifies the owning user of corpus data.
//
// The daemon currently runs in single-tenant demo mode: every request is
// attributed to DemoUserID. The user ID is still threaded through the data
// model and context so that real multi-tenancy only needs an authenticating
// transport, not a data-model change.
package tenant

import "context"

// DemoUserID is the fixed tenant for single-user demo mode.
const DemoUserID int64 = 1

type userCtxKey struct{}

// WithUserID attaches a user ID to the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userCtxKey{}, userID)
}

// UserIDFromContext returns the user ID carried by ctx, falling back to
// DemoUserID when none is set.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userCtxKey{}).(int64); ok {
		return id
	}
	return DemoUserID
}
