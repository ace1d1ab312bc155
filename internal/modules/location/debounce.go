package location

import (
	"sync"
	"time"

	"goride/internal/platform/clock"
)

// DefaultDebounce is the quiet window before a suggestion search runs.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer runs only the most recent of a burst of triggers, once the burst
// has been quiet for the configured window.
type Debouncer struct {
	clock  clock.Clock
	window time.Duration

	mu      sync.Mutex
	pending clock.Timer
}

func NewDebouncer(c clock.Clock, window time.Duration) *Debouncer {
	return &Debouncer{clock: c, window: window}
}

// Trigger schedules f after the quiet window, discarding any earlier pending call.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
	}
	d.pending = d.clock.AfterFunc(d.window, f)
}

// Stop discards the pending call, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
