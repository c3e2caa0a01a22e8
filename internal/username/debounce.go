package username

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is how long input must be idle before it is checked
const DefaultDelay = 500 * time.Millisecond

// Result is the outcome of one debounced check
type Result struct {
	Candidate string
	Available bool
	Err       error
}

// Debouncer checks the latest of a stream of candidates once input has
// been idle for the delay. Each Submit cancels the pending check; a check
// already running is not interrupted, but its result is dropped unless its
// candidate is still the latest input.
type Debouncer struct {
	checker   Availability
	excluding string
	delay     time.Duration
	deliver   func(Result)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	current string
	stopped bool
}

// NewDebouncer creates a Debouncer. excluding is the user's own username,
// which is always reported available. deliver receives results while the
// debouncer is locked and must not call back into it.
func NewDebouncer(checker Availability, excluding string, delay time.Duration, deliver func(Result)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		checker:   checker,
		excluding: excluding,
		delay:     delay,
		deliver:   deliver,
	}
}

// Submit records candidate as the latest input and schedules its check.
// An empty candidate only cancels the pending check.
func (d *Debouncer) Submit(ctx context.Context, candidate string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.gen++
	d.current = candidate
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if candidate == "" {
		return
	}

	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		available, err := d.checker.Check(ctx, candidate, d.excluding)

		d.mu.Lock()
		defer d.mu.Unlock()
		if d.stopped || gen != d.gen || candidate != d.current {
			return
		}
		d.deliver(Result{Candidate: candidate, Available: available, Err: err})
	})
}

// Current returns the latest submitted candidate
func (d *Debouncer) Current() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Stop cancels the pending check and discards any result still in flight
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
