package services

import "context"

type contextKey string

const (
	sessionKey   contextKey = "session"
	interfaceKey contextKey = "interface"
	runIDKey     contextKey = "run_id"
)

// WithSession annotates context with the session identifier being converted.
func WithSession(ctx context.Context, session string) context.Context {
	if session == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext returns the session identifier if present.
func SessionFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithInterface annotates context with the data interface currently running.
func WithInterface(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, interfaceKey, name)
}

// InterfaceFromContext returns the data interface name if present.
func InterfaceFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(interfaceKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with a batch run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the batch correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
