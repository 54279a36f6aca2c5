package souldraw

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/souldraw/go/internal/souldraw/events"
)

// job is one chat or event side effect, run without holding App.mu.
type job func(ctx context.Context, l *lane)

// lane runs one drawing's jobs in the order they were queued. Only the
// goroutine currently draining the lane touches ref.
type lane struct {
	ref     MessageRef
	jobs    []job
	running bool
}

// enqueue appends j to the drawing's lane. The caller must hold mu; if no
// goroutine is draining the lane, the caller becomes its owner and drains
// it in unlock.
func (a *App) enqueue(id string, j job) {
	l, ok := a.lanes[id]
	if !ok {
		l = &lane{}
		a.lanes[id] = l
	}
	l.jobs = append(l.jobs, j)
	if !l.running {
		l.running = true
		a.owned = append(a.owned, id)
	}
}

// unlock releases mu and then drains the lanes this goroutine took over
// while holding it.
func (a *App) unlock() {
	owned := a.owned
	a.owned = nil
	a.mu.Unlock()

	for _, id := range owned {
		a.drain(id)
	}
}

func (a *App) drain(id string) {
	for {
		a.mu.Lock()
		l := a.lanes[id]
		if len(l.jobs) == 0 {
			l.running = false
			if _, ok := a.registry.get(id); !ok {
				delete(a.lanes, id)
			}
			a.mu.Unlock()
			return
		}
		next := l.jobs[0]
		l.jobs[0] = nil
		l.jobs = l.jobs[1:]
		a.mu.Unlock()

		ctx, cancel := a.callContext()
		next(ctx, l)
		cancel()
	}
}

func (a *App) postJob(id, channelID string, view DisplayModel, controls Controls) job {
	return func(ctx context.Context, l *lane) {
		ref, err := a.announcer.Post(ctx, channelID, view, controls)
		if err != nil {
			log.Warn().Err(err).Str("drawing_id", id).Msg("failed to post announcement")
			return
		}
		l.ref = ref

		a.mu.Lock()
		defer a.mu.Unlock()
		if _, ok := a.registry.get(id); ok {
			a.registry.setAnnouncement(id, ref)
		}
	}
}

func (a *App) editJob(id string, view DisplayModel, controls Controls) job {
	return func(ctx context.Context, l *lane) {
		if l.ref.IsZero() {
			return
		}
		if err := a.announcer.Edit(ctx, l.ref, view, controls); err != nil {
			log.Warn().Err(err).Str("drawing_id", id).Msg("failed to edit announcement")
		}
	}
}

func (a *App) deleteJob(id string) job {
	return func(ctx context.Context, l *lane) {
		if l.ref.IsZero() {
			return
		}
		if err := a.announcer.Delete(ctx, l.ref); err != nil {
			log.Warn().Err(err).Str("drawing_id", id).Msg("failed to delete announcement")
		}
		l.ref = MessageRef{}
	}
}

func (a *App) resultJob(id, channelID string, result DrawResult) job {
	return func(ctx context.Context, l *lane) {
		if err := a.announcer.AnnounceResult(ctx, l.ref, channelID, result); err != nil {
			log.Warn().Err(err).Str("drawing_id", id).Msg("failed to announce result")
		}
	}
}

func (a *App) publishJob(ev events.Event) job {
	return func(ctx context.Context, _ *lane) {
		a.publish(ctx, ev)
	}
}

// refreshJob edits the announcement for timer generation gen and records the
// outcome. The refresh interval is cancelled once failures reach the cap.
func (a *App) refreshJob(id string, gen uint64, view DisplayModel, controls Controls, tick events.TimerTickPayload) job {
	return func(ctx context.Context, l *lane) {
		if l.ref.IsZero() {
			return
		}
		err := a.announcer.Edit(ctx, l.ref, view, controls)

		a.mu.Lock()
		e, ok := a.registry.get(id)
		if !ok || e.timerGen != gen {
			a.mu.Unlock()
			return
		}
		if err != nil {
			e.refreshFailures++
			failures := e.refreshFailures
			if failures >= a.cfg.MaxRefreshFailures {
				e.refresh.Cancel()
			}
			a.mu.Unlock()

			log.Warn().
				Err(err).
				Str("drawing_id", id).
				Int("failures", failures).
				Msg("failed to refresh announcement")
			if failures >= a.cfg.MaxRefreshFailures {
				log.Warn().Str("drawing_id", id).Msg("stopping announcement refresh")
			}
			return
		}
		e.refreshFailures = 0
		a.mu.Unlock()

		ev, err := events.New(id, events.TypeTimerTick, tick.TickedAt, tick)
		if err != nil {
			log.Warn().Err(err).Str("drawing_id", id).Msg("failed to build event")
			return
		}
		a.publish(ctx, ev)
	}
}

func (a *App) publish(ctx context.Context, ev events.Event) {
	if err := a.publisher.Publish(ctx, ev); err != nil {
		log.Warn().
			Err(err).
			Str("drawing_id", ev.DrawingID).
			Str("event_type", string(ev.Type)).
			Msg("failed to publish event")
	}
}
