package watch

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last trigger before a rebuild fires.
const DefaultDelay = 300 * time.Millisecond

// Debouncer collapses bursts of triggers into single requests on C.
// C holds at most one pending request.
type Debouncer struct {
	C <-chan struct{}

	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	ch    chan struct{}
}

// NewDebouncer creates a Debouncer firing delay after the last Trigger.
func NewDebouncer(delay time.Duration) *Debouncer {
	ch := make(chan struct{}, 1)
	return &Debouncer{C: ch, ch: ch, delay: delay}
}

// Trigger (re)arms the timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.Fire)
}

// Fire queues a request immediately unless one is already pending.
func (d *Debouncer) Fire() {
	select {
	case d.ch <- struct{}{}:
	default:
	}
}

// Stop cancels a pending timer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Serve runs fn for every request on requests until ctx is done. Calls never
// overlap; requests arriving during a run are coalesced into one follow-up.
func Serve(ctx context.Context, requests <-chan struct{}, fn func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-requests:
			if !ok {
				return
			}
			fn()
		}
	}
}
