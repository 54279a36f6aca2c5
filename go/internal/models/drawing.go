package models

import (
	"slices"
	"time"
)

// DrawMode defines how winners of a drawing are selected.
type DrawMode string

const (
	DrawModeAuto      DrawMode = "auto"
	DrawModeManual    DrawMode = "manual"
	DrawModeCancelled DrawMode = "cancelled"
)

// Drawing represents a single souldraw giveaway.
type Drawing struct {
	ID              string    `json:"id"`
	Prize           string    `json:"prize"`
	Terms           string    `json:"terms"`
	MinParticipants *int      `json:"min_participants,omitempty"`
	MaxParticipants *int      `json:"max_participants,omitempty"`
	NumWinners      int       `json:"num_winners"`
	Participants    []string  `json:"participants"`
	Winners         []string  `json:"winners"`
	Drawn           bool      `json:"drawn"`
	Confirmed       bool      `json:"confirmed"`
	EndTime         time.Time `json:"end_time"`
	DrawMode        DrawMode  `json:"draw_mode"`
	ChannelID       string    `json:"channel_id,omitempty"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Clone returns a deep copy so callers can mutate lists without aliasing.
func (d Drawing) Clone() Drawing {
	c := d
	c.Participants = slices.Clone(d.Participants)
	c.Winners = slices.Clone(d.Winners)
	if d.MinParticipants != nil {
		v := *d.MinParticipants
		c.MinParticipants = &v
	}
	if d.MaxParticipants != nil {
		v := *d.MaxParticipants
		c.MaxParticipants = &v
	}
	return c
}

// HasParticipant reports whether userID already joined.
func (d Drawing) HasParticipant(userID string) bool {
	return slices.Contains(d.Participants, userID)
}

// IsFull reports whether the maximum participant count has been reached.
func (d Drawing) IsFull() bool {
	return d.MaxParticipants != nil && len(d.Participants) >= *d.MaxParticipants
}

// Remaining returns the time left until EndTime. It may be negative.
func (d Drawing) Remaining(now time.Time) time.Duration {
	return d.EndTime.Sub(now)
}

// IsCancelled reports whether the drawing reached the cancelled terminal state.
func (d Drawing) IsCancelled() bool {
	return d.DrawMode == DrawModeCancelled
}
