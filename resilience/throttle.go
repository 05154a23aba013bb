package resilience

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttler enforces a minimum interval between guarded operations.
//
// The interval is ceil(1e6/qps) microseconds, counted from the moment the
// previous operation finished (Done), not from when it was granted. A
// Throttler created with a non-positive qps never blocks, and the first
// grant is always immediate. Throttler is safe for concurrent use, but
// callers that need the grant and the guarded operation to be atomic must
// serialize both themselves.
type Throttler struct {
	mu       sync.Mutex
	qps      float64
	interval time.Duration
	limiter  *rate.Limiter
	last     time.Time
}

// NewThrottler creates a throttler allowing at most qps operations per second.
func NewThrottler(qps float64) *Throttler {
	t := &Throttler{}
	t.setRate(qps)
	return t
}

// Wait blocks until the next grant is due or ctx is done.
func (t *Throttler) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	lim := t.limiter
	t.mu.Unlock()
	if lim == nil {
		return nil
	}
	return lim.Wait(ctx)
}

// Done marks the end of a guarded operation. The next grant is due one
// interval later.
func (t *Throttler) Done() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.last = time.Now()
	t.anchor()
	t.mu.Unlock()
}

// SetQPS changes the rate. The time of the last Done is kept, so a new rate
// applies to the very next grant.
func (t *Throttler) SetQPS(qps float64) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.setRate(qps)
	t.mu.Unlock()
}

// Enabled reports whether the throttler ever blocks.
func (t *Throttler) Enabled() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limiter != nil
}

// QPS returns the configured rate.
func (t *Throttler) QPS() float64 {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.qps
}

// Interval returns the minimum spacing between operations, zero when disabled.
func (t *Throttler) Interval() time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

func (t *Throttler) setRate(qps float64) {
	t.qps = qps
	if qps <= 0 || math.IsInf(qps, 1) || math.IsNaN(qps) {
		t.interval = 0
		t.limiter = nil
		return
	}
	t.interval = time.Duration(math.Ceil(1e6/qps)) * time.Microsecond
	t.anchor()
}

// anchor rebuilds the limiter so its single token is spent at t.last.
// burst 1: a grant after an idle period is immediate, never two at once.
func (t *Throttler) anchor() {
	if t.interval == 0 {
		return
	}
	t.limiter = rate.NewLimiter(rate.Every(t.interval), 1)
	if !t.last.IsZero() {
		t.limiter.ReserveN(t.last, 1)
	}
}
