package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Scheduler runs callbacks after a delay or on a fixed period. Every
// scheduled callback gets a Handle that can be cancelled at any time.
type Scheduler struct {
	clock clockwork.Clock
	ctx   context.Context
	wg    sync.WaitGroup
}

// New creates a Scheduler whose callbacks stop firing once ctx is done.
func New(ctx context.Context, clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{clock: clock, ctx: ctx}
}

// Clock returns the clock timers are created from.
func (s *Scheduler) Clock() clockwork.Clock {
	return s.clock
}

// Handle identifies one scheduled callback.
type Handle struct {
	once sync.Once
	done chan struct{}
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// Cancel stops the callback from firing again. Safe to call more than once
// and on a nil handle.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.done) })
}

// Done is closed once the handle is cancelled or retired.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Active reports whether the handle can still fire.
func (h *Handle) Active() bool {
	if h == nil {
		return false
	}
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// ScheduleOnce runs fn once after delay. A non-positive delay fires on the
// next scheduling opportunity.
func (s *Scheduler) ScheduleOnce(delay time.Duration, fn func()) *Handle {
	h := newHandle()
	timer := s.clock.NewTimer(max(delay, 0))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer h.Cancel()
		select {
		case <-timer.Chan():
			// the handle may have been cancelled while the timer fired
			if !h.Active() {
				return
			}
			fn()
		case <-h.done:
			stopAndDrainTimer(timer)
		case <-s.ctx.Done():
			stopAndDrainTimer(timer)
		}
	}()

	log.Debug().Dur("delay", delay).Msg("scheduled one-shot timer")
	return h
}

// ScheduleRepeating runs fn every period until fn returns false or the
// handle is cancelled.
func (s *Scheduler) ScheduleRepeating(period time.Duration, fn func() bool) *Handle {
	h := newHandle()
	ticker := s.clock.NewTicker(period)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer h.Cancel()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				if !h.Active() {
					return
				}
				if !fn() {
					return
				}
			case <-h.done:
				return
			case <-s.ctx.Done():
				return
			}
		}
	}()

	log.Debug().Dur("period", period).Msg("scheduled repeating timer")
	return h
}

// Wait blocks until every scheduled goroutine has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
