// Package ratelimit bounds form submission attempts per client identity
// within a fixed time window. Two stores are provided: an in-memory map for
// single-instance deployments and a Redis-backed store for horizontal scale.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one admission check. It carries no HTTP
// semantics; callers map it to responses themselves.
type Decision struct {
	Allowed    bool
	Remaining  int           // attempts left in the current window
	RetryAfter time.Duration // only set when Allowed is false
}

// Limiter admits or rejects one attempt for a client on an endpoint.
// Limits are tracked per endpoint per client, matching one window of
// attempts for each form independently.
type Limiter interface {
	Admit(ctx context.Context, endpoint, client string) (Decision, error)
}

// bucketKey joins endpoint and client into a single store key.
func bucketKey(endpoint, client string) string {
	return endpoint + "|" + client
}
