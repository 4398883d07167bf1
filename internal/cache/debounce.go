// internal/cache/debounce.go
package cache

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid successive search requests: each Schedule cancels
// the pending one, so only the last term scheduled before the quiescence
// window elapses actually runs. The timer is the only cancellation mechanism
// for queued work; calls already in flight are never interrupted.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Schedule queues fn to run after the quiescence window, replacing any
// previously queued function that has not fired yet.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancels any queued function.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
