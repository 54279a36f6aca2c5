package events

import (
	"time"
)

// Event payload types shared between the souldraw controller and the event sinks

// DrawingCreatedPayload is the payload for a DrawingCreated event
type DrawingCreatedPayload struct {
	Prize           string    `json:"prize"`
	NumWinners      int       `json:"num_winners"`
	MinParticipants *int      `json:"min_participants,omitempty"`
	MaxParticipants *int      `json:"max_participants,omitempty"`
	EndTime         time.Time `json:"end_time"`
	DrawMode        string    `json:"draw_mode"`
	CreatedBy       string    `json:"created_by"`
}

// DrawingConfirmedPayload is the payload for a DrawingConfirmed event
type DrawingConfirmedPayload struct {
	ConfirmedBy string    `json:"confirmed_by"`
	EndTime     time.Time `json:"end_time"`
}

// ParticipantPayload is the payload for ParticipantJoined and ParticipantRemoved events
type ParticipantPayload struct {
	UserID           string `json:"user_id"`
	ParticipantCount int    `json:"participant_count"`
	ActorID          string `json:"actor_id,omitempty"`
}

// DrawModeChangedPayload is the payload for a DrawModeChanged event
type DrawModeChangedPayload struct {
	DrawMode  string `json:"draw_mode"`
	ChangedBy string `json:"changed_by"`
}

// DrawingExpiredPayload is the payload for a DrawingExpired event
type DrawingExpiredPayload struct {
	DrawMode         string    `json:"draw_mode"`
	ParticipantCount int       `json:"participant_count"`
	ExpiredAt        time.Time `json:"expired_at"`
}

// DrawingDrawnPayload is the payload for a DrawingDrawn event
type DrawingDrawnPayload struct {
	Winners          []string `json:"winners"`
	ParticipantCount int      `json:"participant_count"`
	Insufficient     bool     `json:"insufficient"`
	DrawnBy          string   `json:"drawn_by,omitempty"`
}

// DrawingCancelledPayload is the payload for a DrawingCancelled event
type DrawingCancelledPayload struct {
	CancelledBy string `json:"cancelled_by"`
}

// DrawingRestoredPayload is the payload for a DrawingRestored event
type DrawingRestoredPayload struct {
	EndTime time.Time `json:"end_time"`
	Phase   string    `json:"phase"`
}

// TimerTickPayload contains periodic countdown updates
type TimerTickPayload struct {
	TimeRemainingSec int       `json:"time_remaining_sec"`
	TickedAt         time.Time `json:"ticked_at"`
}
