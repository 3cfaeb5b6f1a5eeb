package chat

import (
	"sync"
	"time"
)

// Debouncer turns a stream of keystrokes into edge-triggered typing
// notifications. The first keystroke of a burst fires start once; stop fires
// once when the keyboard has been idle for the configured window, or when
// Flush is called on send. It is goroutine-safe.
type Debouncer struct {
	mu        sync.Mutex
	idle      time.Duration
	timer     *time.Timer
	announced bool
	start     func()
	stop      func()
}

// NewDebouncer creates a Debouncer that waits idle between the last keystroke
// and the stop notification.
func NewDebouncer(idle time.Duration, start, stop func()) *Debouncer {
	return &Debouncer{idle: idle, start: start, stop: stop}
}

// Keystroke records one keystroke. It fires start on the first keystroke of a
// burst and restarts the idle countdown.
func (d *Debouncer) Keystroke() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.announced {
		d.announced = true
		d.start()
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.idle, d.expire)
}

func (d *Debouncer) expire() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.announced {
		return
	}
	d.announced = false
	d.stop()
}

// Flush ends the current burst immediately, firing stop if a start was
// announced. Sending a message calls this so the peer's indicator clears
// right away instead of after the idle window.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.announced {
		d.announced = false
		d.stop()
	}
}

// Cancel drops any pending countdown without firing stop. Used on teardown
// when the connection is going away anyway.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.announced = false
}
