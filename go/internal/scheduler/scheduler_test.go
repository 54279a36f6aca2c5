package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

const waitTimeout = 2 * time.Second

func TestScheduleOnceFiresAfterDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fc := clockwork.NewFakeClock()
	s := New(ctx, fc)

	fired := make(chan struct{})
	h := s.ScheduleOnce(time.Minute, func() { close(fired) })

	fc.Advance(59 * time.Second)
	select {
	case <-fired:
		t.Fatal("fired before the delay elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	fc.Advance(time.Second)
	select {
	case <-fired:
	case <-time.After(waitTimeout):
		t.Fatal("timer did not fire")
	}

	select {
	case <-h.Done():
	case <-time.After(waitTimeout):
		t.Fatal("handle not retired after firing")
	}
}

func TestScheduleOnceNonPositiveDelayFiresImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New(ctx, clockwork.NewFakeClock())

	fired := make(chan struct{})
	s.ScheduleOnce(-5*time.Second, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(waitTimeout):
		t.Fatal("overdue timer did not fire")
	}
}

func TestCancelPreventsFiring(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fc := clockwork.NewFakeClock()
	s := New(ctx, fc)

	fired := make(chan struct{}, 1)
	h := s.ScheduleOnce(time.Minute, func() { fired <- struct{}{} })
	h.Cancel()
	h.Cancel() // idempotent

	s.Wait()
	fc.Advance(2 * time.Minute)

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(20 * time.Millisecond):
	}
	if h.Active() {
		t.Error("cancelled handle reports active")
	}
}

func TestNilHandleCancel(t *testing.T) {
	var h *Handle
	h.Cancel()
	if h.Active() {
		t.Error("nil handle reports active")
	}
}

func TestScheduleRepeatingStopsWhenCallbackReturnsFalse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fc := clockwork.NewFakeClock()
	s := New(ctx, fc)

	ticks := make(chan int)
	count := 0
	h := s.ScheduleRepeating(15*time.Second, func() bool {
		count++
		ticks <- count
		return count < 3
	})

	for want := 1; want <= 3; want++ {
		fc.Advance(15 * time.Second)
		select {
		case got := <-ticks:
			if got != want {
				t.Fatalf("tick = %d, want %d", got, want)
			}
		case <-time.After(waitTimeout):
			t.Fatalf("tick %d not delivered", want)
		}
	}

	select {
	case <-h.Done():
	case <-time.After(waitTimeout):
		t.Fatal("repeating handle not retired")
	}
}

func TestContextCancellationStopsTimers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fc := clockwork.NewFakeClock()
	s := New(ctx, fc)

	once := s.ScheduleOnce(time.Hour, func() {})
	rep := s.ScheduleRepeating(time.Second, func() bool { return true })

	cancel()
	s.Wait()

	if once.Active() || rep.Active() {
		t.Error("handles still active after context cancellation")
	}
}
