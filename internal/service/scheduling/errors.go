package scheduling

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ErrForbidden means the actor is not a party to the referenced appointment.
var ErrForbidden = errors.New("forbidden")

// PersistenceError marks a datastore failure that happened after the
// external calendar event was already created: the orphaned-event case an
// out-of-band reconciliation job must be able to find in the logs.
type PersistenceError struct {
	EventID string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("appointment persistence failed after calendar event %s was created: %v", e.EventID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
