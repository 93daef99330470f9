package mapview

import "context"

type requestIDKey struct{}

// ContextWithRequestID attaches the id that is propagated to refresh events
// and logs.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

//Personal.AI order the ending
