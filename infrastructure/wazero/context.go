package wazero

import (
	"context"
)

// contextKey is a private type for context keys.
type contextKey struct {
	name string
}

var sessionNameKey = &contextKey{name: "session_name"}

// WithSessionName tags ctx with the session running the guest, for logs.
func WithSessionName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, sessionNameKey, name)
}

// SessionNameFromContext returns the session name, or "" when untagged.
func SessionNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(sessionNameKey).(string)
	return name
}
