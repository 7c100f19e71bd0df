// Package health runs named dependency probes in parallel and aggregates
// their results for a health endpoint.
package health

import (
	"context"
	"sync"
	"time"
)

const defaultTimeout = 5 * time.Second

// Status values for the aggregate and per-check results.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc is the standard health check function signature.
type CheckFunc func(ctx context.Context) error

// Checks is a map of named health check functions.
type Checks map[string]CheckFunc

// Check is the result of a single probe.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Result aggregates all probe results.
type Result struct {
	Checks  map[string]Check `json:"checks,omitempty"`
	Healthy bool             `json:"-"`
}

// Run executes all checks in parallel under a shared timeout and returns the
// aggregated result. With no checks configured the result is healthy.
func Run(ctx context.Context, checks Checks) Result {
	if len(checks) == 0 {
		return Result{Healthy: true}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Check, len(checks))
		healthy = true
	)

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				result = Check{Status: StatusUnhealthy, Error: err.Error()}
			}

			mu.Lock()
			results[name] = result
			if result.Status != StatusHealthy {
				healthy = false
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	return Result{Checks: results, Healthy: healthy}
}
