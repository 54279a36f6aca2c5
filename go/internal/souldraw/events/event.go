package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type represents the type of a souldraw lifecycle event
type Type string

const (
	TypeDrawingCreated     Type = "DrawingCreated"
	TypeDrawingConfirmed   Type = "DrawingConfirmed"
	TypeParticipantJoined  Type = "ParticipantJoined"
	TypeParticipantRemoved Type = "ParticipantRemoved"
	TypeDrawModeChanged    Type = "DrawModeChanged"
	TypeDrawingExpired     Type = "DrawingExpired"
	TypeDrawingDrawn       Type = "DrawingDrawn"
	TypeDrawingCancelled   Type = "DrawingCancelled"
	TypeDrawingRestored    Type = "DrawingRestored"
	TypeTimerTick          Type = "TimerTick"
)

// Event is the envelope delivered to every sink.
type Event struct {
	ID        string          `json:"id"`
	DrawingID string          `json:"drawing_id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New wraps payload into an Event.
func New(drawingID string, typ Type, ts time.Time, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Event{
		ID:        uuid.NewString(),
		DrawingID: drawingID,
		Type:      typ,
		Timestamp: ts.UTC(),
		Data:      data,
	}, nil
}

// Publisher delivers lifecycle events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ParsePayload decodes event data into the payload struct for its type.
func ParsePayload(event Event) (any, error) {
	var target any
	switch event.Type {
	case TypeDrawingCreated:
		target = &DrawingCreatedPayload{}
	case TypeDrawingConfirmed:
		target = &DrawingConfirmedPayload{}
	case TypeParticipantJoined, TypeParticipantRemoved:
		target = &ParticipantPayload{}
	case TypeDrawModeChanged:
		target = &DrawModeChangedPayload{}
	case TypeDrawingExpired:
		target = &DrawingExpiredPayload{}
	case TypeDrawingDrawn:
		target = &DrawingDrawnPayload{}
	case TypeDrawingCancelled:
		target = &DrawingCancelledPayload{}
	case TypeDrawingRestored:
		target = &DrawingRestoredPayload{}
	case TypeTimerTick:
		target = &TimerTickPayload{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", event.Type)
	}
	if err := json.Unmarshal(event.Data, target); err != nil {
		return nil, err
	}
	return target, nil
}
