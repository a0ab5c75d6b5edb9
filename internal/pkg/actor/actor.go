// Package actor carries the acting-user identity through a request context.
// The identity subsystem is external; the value is treated as an opaque reference.
package actor

import "context"

type ctxKey struct{}

// System is reported when no actor is present (background jobs, migrations).
const System = ""

// WithActor returns a child context carrying the actor id.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, actorID)
}

// FromContext returns the actor id and whether one was set.
// An empty id is treated as a system action.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok || id == "" {
		return System, false
	}
	return id, true
}

// Ref returns the actor as a nullable reference, nil for system actions.
func Ref(ctx context.Context) *string {
	id, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return &id
}
