package souldraw

import (
	"github.com/mcdev12/souldraw/go/internal/models"
)

// Phase is the in-memory lifecycle position of a registered drawing.
// Drawn and cancelled drawings are never registered, so they have no phase.
type Phase int

const (
	PhasePending Phase = iota
	PhaseActive
	PhaseAwaitingDraw
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseActive:
		return "active"
	case PhaseAwaitingDraw:
		return "awaiting_draw"
	default:
		return "unknown"
	}
}

// Actor identifies who triggered an operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// CreateRequest carries the raw inputs of a create command.
type CreateRequest struct {
	Duration        string
	Prize           string
	Terms           string
	MinParticipants *int
	MaxParticipants *int
	NumWinners      int
	ChannelID       string
}

// Controls selects which interactive components accompany an announcement.
type Controls int

const (
	// ControlsNone renders no components (drawn drawings).
	ControlsNone Controls = iota
	// ControlsConfirm renders confirm, cancel and toggle-mode buttons.
	ControlsConfirm
	// ControlsJoin renders join and view-participants buttons.
	ControlsJoin
	// ControlsClosed renders only view-participants.
	ControlsClosed
)

func controlsFor(p Phase) Controls {
	switch p {
	case PhasePending:
		return ControlsConfirm
	case PhaseActive:
		return ControlsJoin
	default:
		return ControlsClosed
	}
}

// MessageRef locates a posted announcement.
type MessageRef struct {
	ChannelID string
	MessageID string
}

func (r MessageRef) IsZero() bool {
	return r.MessageID == ""
}

// Outcome is the result of a controller operation as seen by the actor.
type Outcome struct {
	Drawing models.Drawing
	Phase   Phase
	Reply   string
	// Participants holds the remaining removal candidates after a removal.
	Participants []string
}
