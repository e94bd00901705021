// Package debounce delays a call until its input has been quiet for a fixed window.
package debounce

import (
	"sync"
	"time"
)

// Debouncer trailing-edge scheduler: every Call cancels the pending task and schedules
// a new one, so only the last value of a burst reaches fn.
type Debouncer[T any] struct {
	mu    sync.Mutex
	wait  time.Duration
	fn    func(T)
	timer *time.Timer
	seq   uint64
}

// New creates a Debouncer invoking fn wait after the last Call
func New[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{wait: wait, fn: fn}
}

// Call schedules fn(v), cancelling any call still pending
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		current := seq == d.seq
		d.mu.Unlock()
		// a timer that already fired cannot be stopped, so it checks its own sequence
		if current {
			d.fn(v)
		}
	})
}

// Stop cancels the pending call, if any
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Func wraps fn into a debounced function
func Func[T any](fn func(T), wait time.Duration) func(T) {
	return New(wait, fn).Call
}
