package chat

import (
	"sync"
	"testing"
	"time"
)

// countingSink records start/stop callback invocations.
type countingSink struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (s *countingSink) start() {
	s.mu.Lock()
	s.starts++
	s.mu.Unlock()
}

func (s *countingSink) stop() {
	s.mu.Lock()
	s.stops++
	s.mu.Unlock()
}

func (s *countingSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.stops
}

func TestDebouncerSingleStartPerBurst(t *testing.T) {
	sink := &countingSink{}
	d := NewDebouncer(30*time.Millisecond, sink.start, sink.stop)

	for i := 0; i < 5; i++ {
		d.Keystroke()
		time.Sleep(5 * time.Millisecond)
	}

	starts, stops := sink.counts()
	if starts != 1 {
		t.Errorf("expected 1 start during burst, got %d", starts)
	}
	if stops != 0 {
		t.Errorf("expected no stop during burst, got %d", stops)
	}

	time.Sleep(60 * time.Millisecond)
	starts, stops = sink.counts()
	if starts != 1 || stops != 1 {
		t.Errorf("after idle expected 1 start / 1 stop, got %d / %d", starts, stops)
	}
}

func TestDebouncerNewBurstAfterIdle(t *testing.T) {
	sink := &countingSink{}
	d := NewDebouncer(20*time.Millisecond, sink.start, sink.stop)

	d.Keystroke()
	time.Sleep(40 * time.Millisecond)
	d.Keystroke()
	time.Sleep(40 * time.Millisecond)

	starts, stops := sink.counts()
	if starts != 2 || stops != 2 {
		t.Errorf("expected 2 bursts (2 starts / 2 stops), got %d / %d", starts, stops)
	}
}

func TestDebouncerFlushStopsOnce(t *testing.T) {
	sink := &countingSink{}
	d := NewDebouncer(30*time.Millisecond, sink.start, sink.stop)

	d.Keystroke()
	d.Flush()

	starts, stops := sink.counts()
	if starts != 1 || stops != 1 {
		t.Fatalf("after flush expected 1 start / 1 stop, got %d / %d", starts, stops)
	}

	// The cancelled countdown must not fire a second stop later.
	time.Sleep(60 * time.Millisecond)
	if _, stops = sink.counts(); stops != 1 {
		t.Errorf("idle timer fired after flush, stops = %d", stops)
	}
}

func TestDebouncerFlushWithoutBurstIsNoop(t *testing.T) {
	sink := &countingSink{}
	d := NewDebouncer(30*time.Millisecond, sink.start, sink.stop)

	d.Flush()

	starts, stops := sink.counts()
	if starts != 0 || stops != 0 {
		t.Errorf("flush with no burst emitted %d starts / %d stops", starts, stops)
	}
}

func TestDebouncerCancelSuppressesStop(t *testing.T) {
	sink := &countingSink{}
	d := NewDebouncer(20*time.Millisecond, sink.start, sink.stop)

	d.Keystroke()
	d.Cancel()
	time.Sleep(40 * time.Millisecond)

	if _, stops := sink.counts(); stops != 0 {
		t.Errorf("expected no stop after cancel, got %d", stops)
	}
}
