package souldraw

import (
	"errors"
	"fmt"
)

// Category groups domain errors by how the caller should react.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryAuthorization Category = "authorization"
	CategoryNotFound      Category = "not_found"
	CategoryConflict      Category = "conflict"
	CategoryPersistence   Category = "persistence"
)

// DomainError is an actor-facing failure. Two DomainErrors match under
// errors.Is when their codes are equal.
type DomainError struct {
	Category Category
	Code     string
	Message  string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrInvalidDuration = &DomainError{CategoryValidation, "invalid_duration", "Invalid time format. Use values like 10s, 5m, 2h, 1d"}
	ErrInvalidRequest  = &DomainError{CategoryValidation, "invalid_request", "Invalid souldraw settings."}
	ErrNotAuthorized   = &DomainError{CategoryAuthorization, "not_authorized", "Only admins can do that."}
	ErrNotFound        = &DomainError{CategoryNotFound, "not_found", "Souldraw not found."}
	ErrAlreadyJoined   = &DomainError{CategoryConflict, "already_joined", "You have already joined this souldraw."}
	ErrFull            = &DomainError{CategoryConflict, "full", "This souldraw is full."}
	ErrNoParticipants  = &DomainError{CategoryConflict, "no_participants", "There are no participants to remove."}
	ErrNotParticipant  = &DomainError{CategoryConflict, "not_participant", "That user is not a participant in this souldraw."}
	ErrNotConfirmed    = &DomainError{CategoryConflict, "not_confirmed", "This souldraw has not been confirmed yet."}
	ErrAlreadyActive   = &DomainError{CategoryConflict, "already_confirmed", "This souldraw is already confirmed."}
	ErrDrawingEnded    = &DomainError{CategoryConflict, "ended", "This souldraw has already ended."}
)

func invalidRequest(format string, args ...any) error {
	return &DomainError{
		Category: CategoryValidation,
		Code:     ErrInvalidRequest.Code,
		Message:  fmt.Sprintf(format, args...),
	}
}

func notAuthorized(action string) error {
	return &DomainError{
		Category: CategoryAuthorization,
		Code:     ErrNotAuthorized.Code,
		Message:  fmt.Sprintf("Only admins can %s.", action),
	}
}

// PersistenceError wraps a store failure. Its user-facing text is generic.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// CategoryOf classifies err. Unknown errors are reported as persistence
// failures since they come from the store or the platform.
func CategoryOf(err error) Category {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Category
	}
	return CategoryPersistence
}

// UserMessage renders err as the private reply shown to the actor.
func UserMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "There was an error processing the souldraw. Please try again."
}
