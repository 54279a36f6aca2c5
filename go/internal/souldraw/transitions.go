package souldraw

import (
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/mcdev12/souldraw/go/internal/models"
	"github.com/mcdev12/souldraw/go/internal/souldraw/events"
)

const DefaultTerms = "No terms specified."

// WriteKind selects the single persistence call a transition requires.
type WriteKind int

const (
	WriteNone WriteKind = iota
	WriteInsert
	WriteConfirm
	WriteParticipants
	WriteMode
	WriteWinners
	WriteCancel
)

// Effect is a side effect the App performs after the write succeeds.
type Effect interface {
	EffectType() string
}

type PostAnnouncement struct{ Controls Controls }
type EditAnnouncement struct{ Controls Controls }
type DeleteAnnouncement struct{}
type AnnounceResult struct{ Result DrawResult }
type StartTimers struct{ Delay time.Duration }
type StopTimers struct{}
type Unregister struct{}
type Emit struct {
	Type    events.Type
	Payload any
}

func (PostAnnouncement) EffectType() string   { return "post_announcement" }
func (EditAnnouncement) EffectType() string   { return "edit_announcement" }
func (DeleteAnnouncement) EffectType() string { return "delete_announcement" }
func (AnnounceResult) EffectType() string     { return "announce_result" }
func (StartTimers) EffectType() string        { return "start_timers" }
func (StopTimers) EffectType() string         { return "stop_timers" }
func (Unregister) EffectType() string         { return "unregister" }
func (Emit) EffectType() string               { return "emit" }

// Transition is the pure result of applying an operation to a drawing.
type Transition struct {
	Next    models.Drawing
	Phase   Phase
	Write   WriteKind
	Effects []Effect
	Reply   string
}

// PlanCreate validates req and builds a pending drawing ending at now+duration.
func PlanCreate(req CreateRequest, actor Actor, id string, now time.Time) (Transition, error) {
	if err := requireAdmin(actor, "create souldraws"); err != nil {
		return Transition{}, err
	}
	dur, err := ParseDuration(req.Duration)
	if err != nil {
		return Transition{}, err
	}
	req.Prize = strings.TrimSpace(req.Prize)
	if err := validateCreate(req); err != nil {
		return Transition{}, err
	}
	terms := strings.TrimSpace(req.Terms)
	if terms == "" {
		terms = DefaultTerms
	}

	d := models.Drawing{
		ID:              id,
		Prize:           req.Prize,
		Terms:           terms,
		MinParticipants: req.MinParticipants,
		MaxParticipants: req.MaxParticipants,
		NumWinners:      req.NumWinners,
		Participants:    []string{},
		EndTime:         now.Add(dur),
		DrawMode:        models.DrawModeAuto,
		ChannelID:       req.ChannelID,
		CreatedBy:       actor.UserID,
		CreatedAt:       now,
	}

	return Transition{
		Next:  d,
		Phase: PhasePending,
		Write: WriteInsert,
		Effects: []Effect{
			PostAnnouncement{Controls: ControlsConfirm},
			Emit{Type: events.TypeDrawingCreated, Payload: events.DrawingCreatedPayload{
				Prize:           d.Prize,
				NumWinners:      d.NumWinners,
				MinParticipants: d.MinParticipants,
				MaxParticipants: d.MaxParticipants,
				EndTime:         d.EndTime,
				DrawMode:        string(d.DrawMode),
				CreatedBy:       actor.UserID,
			}},
		},
		Reply: "Souldraw created! Confirm it on the announcement to start accepting entries.",
	}, nil
}

// PlanConfirm activates a pending drawing and starts its timers.
func PlanConfirm(d models.Drawing, phase Phase, actor Actor, now time.Time) (Transition, error) {
	if err := requireAdmin(actor, "confirm souldraws"); err != nil {
		return Transition{}, err
	}
	if err := canConfirm(d, phase, now); err != nil {
		return Transition{}, err
	}
	next := d.Clone()
	next.Confirmed = true

	return Transition{
		Next:  next,
		Phase: PhaseActive,
		Write: WriteConfirm,
		Effects: []Effect{
			EditAnnouncement{Controls: ControlsJoin},
			StartTimers{Delay: d.Remaining(now)},
			Emit{Type: events.TypeDrawingConfirmed, Payload: events.DrawingConfirmedPayload{
				ConfirmedBy: actor.UserID,
				EndTime:     d.EndTime,
			}},
		},
		Reply: "Souldraw confirmed! Participants can now join.",
	}, nil
}

// PlanJoin appends userID to the participants.
func PlanJoin(d models.Drawing, phase Phase, userID string, now time.Time) (Transition, error) {
	if err := canJoin(d, phase, userID, now); err != nil {
		return Transition{}, err
	}
	next := d.Clone()
	next.Participants = append(next.Participants, userID)

	return Transition{
		Next:  next,
		Phase: phase,
		Write: WriteParticipants,
		Effects: []Effect{
			EditAnnouncement{Controls: ControlsJoin},
			Emit{Type: events.TypeParticipantJoined, Payload: events.ParticipantPayload{
				UserID:           userID,
				ParticipantCount: len(next.Participants),
			}},
		},
		Reply: "You have successfully joined the souldraw!",
	}, nil
}

// PlanRemove drops userID from the participants.
func PlanRemove(d models.Drawing, phase Phase, actor Actor, userID string) (Transition, error) {
	if err := requireAdmin(actor, "remove participants"); err != nil {
		return Transition{}, err
	}
	if err := canRemove(d, userID); err != nil {
		return Transition{}, err
	}
	next := d.Clone()
	next.Participants = slices.DeleteFunc(next.Participants, func(id string) bool { return id == userID })

	return Transition{
		Next:  next,
		Phase: phase,
		Write: WriteParticipants,
		Effects: []Effect{
			EditAnnouncement{Controls: controlsFor(phase)},
			Emit{Type: events.TypeParticipantRemoved, Payload: events.ParticipantPayload{
				UserID:           userID,
				ParticipantCount: len(next.Participants),
				ActorID:          actor.UserID,
			}},
		},
		Reply: "Participant removed from the souldraw.",
	}, nil
}

// PlanToggleMode flips auto and manual. An ended manual drawing switched back
// to auto is drawn right away.
func PlanToggleMode(d models.Drawing, phase Phase, actor Actor) (Transition, error) {
	if err := requireAdmin(actor, "toggle the draw mode"); err != nil {
		return Transition{}, err
	}
	next := d.Clone()
	if d.DrawMode == models.DrawModeManual {
		next.DrawMode = models.DrawModeAuto
	} else {
		next.DrawMode = models.DrawModeManual
	}

	t := Transition{
		Next:  next,
		Phase: phase,
		Write: WriteMode,
		Effects: []Effect{
			EditAnnouncement{Controls: controlsFor(phase)},
			Emit{Type: events.TypeDrawModeChanged, Payload: events.DrawModeChangedPayload{
				DrawMode:  string(next.DrawMode),
				ChangedBy: actor.UserID,
			}},
		},
		Reply: "Draw mode set to " + string(next.DrawMode) + ".",
	}
	if phase == PhaseAwaitingDraw && next.DrawMode == models.DrawModeAuto {
		t.Phase = PhaseActive
		t.Effects = append(t.Effects, StartTimers{Delay: 0})
	}
	return t, nil
}

// PlanCancel marks the drawing cancelled and retires it.
func PlanCancel(d models.Drawing, actor Actor, now time.Time) (Transition, error) {
	if err := requireAdmin(actor, "cancel souldraws"); err != nil {
		return Transition{}, err
	}
	next := d.Clone()
	next.DrawMode = models.DrawModeCancelled
	next.EndTime = now

	return Transition{
		Next:  next,
		Write: WriteCancel,
		Effects: []Effect{
			StopTimers{},
			DeleteAnnouncement{},
			Unregister{},
			Emit{Type: events.TypeDrawingCancelled, Payload: events.DrawingCancelledPayload{
				CancelledBy: actor.UserID,
			}},
		},
		Reply: "Souldraw cancelled.",
	}, nil
}

// PlanExpire handles the expiry timer: auto drawings are drawn, manual ones
// wait for an admin.
func PlanExpire(d models.Drawing, phase Phase, now time.Time, rng *rand.Rand) (Transition, error) {
	if phase != PhaseActive {
		return Transition{}, ErrDrawingEnded
	}
	if d.DrawMode == models.DrawModeAuto {
		return planDraw(d, "", rng), nil
	}

	return Transition{
		Next:  d.Clone(),
		Phase: PhaseAwaitingDraw,
		Write: WriteNone,
		Effects: []Effect{
			StopTimers{},
			EditAnnouncement{Controls: ControlsClosed},
			Emit{Type: events.TypeDrawingExpired, Payload: events.DrawingExpiredPayload{
				DrawMode:         string(d.DrawMode),
				ParticipantCount: len(d.Participants),
				ExpiredAt:        now,
			}},
		},
	}, nil
}

// PlanDraw is an explicit admin draw, valid once the drawing is confirmed.
func PlanDraw(d models.Drawing, phase Phase, actor Actor, rng *rand.Rand) (Transition, error) {
	if err := requireAdmin(actor, "draw winners"); err != nil {
		return Transition{}, err
	}
	if err := canDraw(phase); err != nil {
		return Transition{}, err
	}
	return planDraw(d, actor.UserID, rng), nil
}

func planDraw(d models.Drawing, drawnBy string, rng *rand.Rand) Transition {
	res := SelectWinners(d, rng)
	next := d.Clone()
	next.Winners = res.Winners
	next.Drawn = true

	reply := "Winners drawn!"
	if len(res.Winners) == 0 {
		reply = "The souldraw ended without winners."
	}

	return Transition{
		Next:  next,
		Write: WriteWinners,
		Effects: []Effect{
			StopTimers{},
			EditAnnouncement{Controls: ControlsNone},
			AnnounceResult{Result: res},
			Unregister{},
			Emit{Type: events.TypeDrawingDrawn, Payload: events.DrawingDrawnPayload{
				Winners:          res.Winners,
				ParticipantCount: res.ParticipantCount,
				Insufficient:     res.Insufficient,
				DrawnBy:          drawnBy,
			}},
		},
		Reply: reply,
	}
}

// RestoredPhase derives the phase of a persisted drawing loaded at startup.
func RestoredPhase(d models.Drawing, now time.Time) Phase {
	switch {
	case !d.Confirmed:
		return PhasePending
	case d.DrawMode == models.DrawModeManual && d.Remaining(now) <= 0:
		return PhaseAwaitingDraw
	default:
		return PhaseActive
	}
}

// PlanRestore re-registers a persisted drawing: a fresh announcement is posted
// and active drawings resume their timers with the recomputed remaining time.
func PlanRestore(d models.Drawing, now time.Time) Transition {
	phase := RestoredPhase(d, now)
	effects := []Effect{PostAnnouncement{Controls: controlsFor(phase)}}
	if phase == PhaseActive {
		effects = append(effects, StartTimers{Delay: d.Remaining(now)})
	}
	effects = append(effects, Emit{Type: events.TypeDrawingRestored, Payload: events.DrawingRestoredPayload{
		EndTime: d.EndTime,
		Phase:   phase.String(),
	}})

	return Transition{
		Next:    d.Clone(),
		Phase:   phase,
		Write:   WriteNone,
		Effects: effects,
	}
}
