package appointments

import "fmt"

type Error string

const (
	ErrNotFound          Error = "appointment not found"
	ErrNotReschedulable  Error = "only pending or confirmed appointments can be moved"
	ErrInvalidSchedule   Error = "invalid appointment date or time"
	ErrInvalidStatus     Error = "invalid status - e.g. pending, confirmed, completed, cancelled"
	ErrInvalidTransition Error = "invalid status transition"
	ErrNotOwner          Error = "appointment belongs to another patient"
	ErrUnknownDoctor     Error = "doctor not found"
)

func (e Error) Error() string {
	return string(e)
}

// InvalidTransitionError is returned when a status change is not allowed by the appointment
// lifecycle.
type InvalidTransitionError struct {
	From  Status
	To    Status
	Actor Actor
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot change an appointment from %s to %s", e.Actor, e.From, e.To)
}

func (e InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
