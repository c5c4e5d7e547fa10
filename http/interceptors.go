package http

import (
	"context"
	"strings"

	"golang.org/x/time/rate"

	"github.com/gaborage/zephyr/trace"
)

// NewRequestIDInterceptor sets X-Request-ID from the context, generating an
// id when none is present. A caller-supplied header wins.
func NewRequestIDInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *TransportRequest) error {
		for name := range req.Headers {
			if strings.EqualFold(name, trace.HeaderXRequestID) {
				return nil
			}
		}
		if req.Headers == nil {
			req.Headers = make(map[string][]string)
		}
		req.Headers[trace.HeaderXRequestID] = []string{trace.EnsureTraceID(ctx)}
		return nil
	}
}

// BurstMultiplier sizes the rate limiter bucket relative to its rate.
const BurstMultiplier = 2

// NewRateLimitInterceptor delays each request until the shared limiter admits
// it. A non-positive rate disables limiting. Waiting honors ctx, so a
// cancelled caller aborts with an interceptor error instead of blocking.
func NewRateLimitInterceptor(requestsPerSecond int) RequestInterceptor {
	if requestsPerSecond <= 0 {
		return func(context.Context, *TransportRequest) error { return nil }
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond*BurstMultiplier)
	return func(ctx context.Context, _ *TransportRequest) error {
		return limiter.Wait(ctx)
	}
}
