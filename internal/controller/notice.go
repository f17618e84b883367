package controller

import (
	"errors"
	"net/http"

	"clinic-scheduler/internal/appointments"
	"clinic-scheduler/internal/prescriptions"
	"clinic-scheduler/internal/scheduling"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

// Notice is the message shown to the doctor after a calendar action.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Code    string     `json:"code,omitempty"`
	Message string     `json:"message"`
}

// failure describes how an error reaches the doctor.
type failure struct {
	code       string
	message    string
	statusCode int
}

var failures = []struct {
	target error
	failure
}{
	{scheduling.ErrPastAppointment, failure{"PastAppointment", "Cannot move past appointments", http.StatusUnprocessableEntity}},
	{scheduling.ErrOutsideClinicHours, failure{"OutsideClinicHours", "Appointments can only be scheduled between 8 AM and 6 PM", http.StatusUnprocessableEntity}},
	{scheduling.ErrInvalidDirection, failure{"ValidationError", "Unknown direction, use earlier, later, back or forward", http.StatusBadRequest}},
	{appointments.ErrNotReschedulable, failure{"NotReschedulable", "Only pending or confirmed appointments can be moved", http.StatusUnprocessableEntity}},
	{appointments.ErrInvalidTransition, failure{"InvalidTransition", "", http.StatusConflict}},
	{appointments.ErrInvalidStatus, failure{"ValidationError", "", http.StatusBadRequest}},
	{appointments.ErrInvalidSchedule, failure{"ValidationError", "The appointment has an invalid date or time", http.StatusUnprocessableEntity}},
	{prescriptions.ErrAppointmentNotCompleted, failure{"AppointmentNotCompleted", "Prescriptions can only be written for completed appointments", http.StatusUnprocessableEntity}},
	{ErrStoreUnavailable, failure{"StoreUnavailable", "", http.StatusServiceUnavailable}},
	{ErrBusy, failure{"Busy", "Another change is still being saved, please wait", http.StatusConflict}},
	{ErrNoSelection, failure{"NoSelection", "Select an appointment first", http.StatusConflict}},
	{ErrNotConfirmed, failure{"NotConfirmed", "The deletion was not confirmed", http.StatusPreconditionRequired}},
	{ErrNotFound, failure{"NotFound", "Appointment not found", http.StatusNotFound}},
}

func describe(err error) failure {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		if message, ok := storeFailureMessages[storeErr.Op]; ok {
			return failure{"StoreUnavailable", message, http.StatusServiceUnavailable}
		}
	}
	for _, f := range failures {
		if errors.Is(err, f.target) {
			if f.message == "" {
				f.message = err.Error()
			}
			return f.failure
		}
	}
	return failure{"Unexpected", "Something went wrong, please try again", http.StatusInternalServerError}
}

// NoticeFor converts the error of a calendar action into the notice shown to the doctor.
func NoticeFor(err error) Notice {
	f := describe(err)
	return Notice{Kind: NoticeError, Code: f.code, Message: f.message}
}

// storeFailureMessages holds what the doctor reads when a change could not be saved.
var storeFailureMessages = map[string]string{
	"move":   "Failed to move appointment. Please try again.",
	"status": "Failed to update appointment. Please try again.",
	"delete": "Failed to delete appointment. Please try again.",
	"load":   "Failed to load appointments. Please try again.",
}
