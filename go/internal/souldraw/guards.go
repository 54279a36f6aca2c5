package souldraw

import (
	"time"

	"github.com/mcdev12/souldraw/go/internal/models"
)

func requireAdmin(actor Actor, action string) error {
	if !actor.IsAdmin {
		return notAuthorized(action)
	}
	return nil
}

func canJoin(d models.Drawing, phase Phase, userID string, now time.Time) error {
	switch {
	case phase == PhasePending:
		return ErrNotConfirmed
	case phase == PhaseAwaitingDraw, d.Remaining(now) <= 0:
		return ErrDrawingEnded
	case d.HasParticipant(userID):
		return ErrAlreadyJoined
	case d.IsFull():
		return ErrFull
	}
	return nil
}

func canRemove(d models.Drawing, userID string) error {
	if len(d.Participants) == 0 {
		return ErrNoParticipants
	}
	if !d.HasParticipant(userID) {
		return ErrNotParticipant
	}
	return nil
}

func canConfirm(d models.Drawing, phase Phase, now time.Time) error {
	switch {
	case phase != PhasePending:
		return ErrAlreadyActive
	case d.Remaining(now) <= 0:
		return ErrDrawingEnded
	}
	return nil
}

func canDraw(phase Phase) error {
	if phase == PhasePending {
		return ErrNotConfirmed
	}
	return nil
}

func validateCreate(req CreateRequest) error {
	if req.Prize == "" {
		return invalidRequest("A prize is required.")
	}
	if req.NumWinners < 1 {
		return invalidRequest("Number of winners must be at least 1.")
	}
	if req.MinParticipants != nil && *req.MinParticipants < 0 {
		return invalidRequest("Minimum participants cannot be negative.")
	}
	if req.MaxParticipants != nil && *req.MaxParticipants < 1 {
		return invalidRequest("Maximum participants must be at least 1.")
	}
	if req.MinParticipants != nil && req.MaxParticipants != nil && *req.MinParticipants > *req.MaxParticipants {
		return invalidRequest("Minimum participants cannot exceed maximum participants.")
	}
	return nil
}
