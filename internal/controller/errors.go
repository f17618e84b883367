package controller

import "fmt"

type Error string

const (
	ErrBusy             Error = "another change to the calendar is still being saved"
	ErrNoSelection      Error = "select an appointment first"
	ErrNotConfirmed     Error = "the deletion was not confirmed"
	ErrNotFound         Error = "appointment not found"
	ErrStoreUnavailable Error = "the appointment store is unavailable"
)

func (e Error) Error() string {
	return string(e)
}

// StoreError is returned when the store fails while the calendar is being changed or loaded.
// It matches ErrStoreUnavailable as well as the store's own error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrStoreUnavailable, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}
