// Package ratelimit throttles requests per client key, either in process or
// through a fixed window shared in Redis.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether the client identified by key may proceed.
//
// A non-nil error means the limiter could not reach its backend. The returned
// Decision is still usable and allows the request.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
