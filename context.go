package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/gateway"
)

// WithRequestID attaches a correlation id to ctx. Every gateway call made
// with ctx sends it in the X-Request-ID header; calls without one get a
// fresh UUID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return gateway.WithRequestID(ctx, id)
}
