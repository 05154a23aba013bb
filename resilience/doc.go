// Package resilience provides the pacing and retry primitives used around
// provider calls.
//
//   - Throttler: enforces a minimum interval between requests (queries per second)
//   - Retry: opt-in caller-side retries with exponential backoff
//
// Clients own a Throttler, call Wait immediately before each transport call
// and Done once it returns. Retries are never applied automatically:
//
//	me, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (any, error) {
//	    return fb.Get(ctx, "me", nil)
//	})
package resilience
