// Package clock abstracts the timers used by the booking session so that the
// debounce window, the dispatch delay and the driver tick can be driven
// deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Timer is a cancellable handle to a one-shot or recurring callback.
// Stop reports whether the call prevented at least one future firing.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Callbacks run on their own goroutine (Real) or on
// the goroutine that advances time (Fake); callers must do their own locking.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) Timer
}

// Real is the wall clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (Real) Every(d time.Duration, f func()) Timer {
	t := &ticker{ticker: time.NewTicker(d), done: make(chan struct{})}
	go t.run(f)
	return t
}

type ticker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *ticker) run(f func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			f()
		}
	}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
