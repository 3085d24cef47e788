package gateway

import (
	"context"

	"github.com/google/uuid"
)

type requestIDContextKey struct{}

// RequestIDHeader carries the correlation id of a gateway call.
const RequestIDHeader = "X-Request-ID"

// WithRequestID attaches a correlation id to ctx. Calls made with ctx send it
// in [RequestIDHeader]; calls without one get a fresh UUID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx != nil {
		if id, _ := ctx.Value(requestIDContextKey{}).(string); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
