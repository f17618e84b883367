// Package appointments contains the appointment records and their lifecycle rules, the stores
// used to persist them, the doctor directory and the booking service behind both portals.
package appointments

import (
	"strings"
	"time"

	"clinic-scheduler/internal/scheduling"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus parses the given string into one of the known statuses.
func ParseStatus(s string) (Status, error) {
	switch status := Status(strings.ToLower(strings.TrimSpace(s))); status {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Terminal checks if no transition leaves the status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Reschedulable checks if an appointment with the status may be moved.
func (s Status) Reschedulable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// AllowsPrescription checks if a prescription may be written for an appointment with the status.
func (s Status) AllowsPrescription() bool {
	return s == StatusCompleted
}

type Type string

const (
	TypeConsultation Type = "consultation"
	TypeFollowUp     Type = "follow-up"
	TypeEmergency    Type = "emergency"
)

type Appointment struct {
	ID           string `json:"id" dbfield:"id"`
	DoctorID     string `json:"doctor_id" dbfield:"doctor_id"`
	PatientID    string `json:"patient_id" dbfield:"patient_id"`
	PatientName  string `json:"patient_name" dbfield:"patient_name"`
	PatientEmail string `json:"patient_email" dbfield:"patient_email"`
	PatientPhone string `json:"patient_phone" dbfield:"patient_phone"`
	Date         string `json:"date" dbfield:"date"`
	Time         string `json:"time" dbfield:"time"`
	Status       Status `json:"status" dbfield:"status"`
	Symptoms     string `json:"symptoms" dbfield:"symptoms"`
	Type         Type   `json:"type" dbfield:"type"`
}

// Start returns the instant the appointment starts at, interpreting its date and time in the
// given location.
func (a Appointment) Start(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, a.Date+" "+a.Time, loc)
	if err != nil {
		return time.Time{}, ErrInvalidSchedule
	}
	return start, nil
}

// End returns the instant the appointment ends at.
func (a Appointment) End(loc *time.Location) (time.Time, error) {
	start, err := a.Start(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(scheduling.SlotDuration), nil
}

// WithStart returns a copy of the appointment scheduled to the given instant.
func (a Appointment) WithStart(start time.Time) Appointment {
	a.Date = start.Format(DateLayout)
	a.Time = start.Format(TimeLayout)
	return a
}

// Move returns a copy of the appointment moved in the given direction. The appointment itself is
// never modified, so a rejected move leaves no trace.
func (a Appointment) Move(direction scheduling.Direction, now time.Time, loc *time.Location) (Appointment, error) {
	start, err := a.Start(loc)
	if err != nil {
		return Appointment{}, err
	}
	if start.Before(now) {
		return Appointment{}, scheduling.ErrPastAppointment
	}
	if !a.Status.Reschedulable() {
		return Appointment{}, ErrNotReschedulable
	}
	proposed, err := scheduling.Move(start, direction, now)
	if err != nil {
		return Appointment{}, err
	}
	return a.WithStart(proposed), nil
}

// Patient identifies who books an appointment. Its data is copied into the appointment at
// booking time.
type Patient struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// BookingRequest holds the data a patient sends to book an appointment.
type BookingRequest struct {
	DoctorID string `json:"doctor_id" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required,datetime=15:04"`
	Symptoms string `json:"symptoms" validate:"required"`
	Type     Type   `json:"type" validate:"required,oneof=consultation follow-up emergency"`
}
