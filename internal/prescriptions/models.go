// Package prescriptions contains the prescriptions doctors write for completed appointments,
// the stores used to persist them and their link to the appointment history.
package prescriptions

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus parses the given string into one of the known statuses.
func ParseStatus(s string) (Status, error) {
	switch status := Status(strings.ToLower(strings.TrimSpace(s))); status {
	case StatusActive, StatusCompleted, StatusCancelled:
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Frequencies lists how often a medication may be taken.
var Frequencies = []string{
	"Once daily",
	"Twice daily",
	"Three times daily",
	"Four times daily",
	"Every 4 hours",
	"Every 6 hours",
	"Every 8 hours",
	"As needed",
}

// Units lists the units a medication quantity may be given in.
var Units = []string{"tablets", "capsules", "ml", "drops", "sachets", "injections"}

const DefaultUnit = "tablets"

type Medication struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required"`
	Dosage       string `json:"dosage" validate:"required"`
	Frequency    string `json:"frequency" validate:"required,frequency"`
	Duration     string `json:"duration" validate:"required"`
	Instructions string `json:"instructions,omitempty"`
	Quantity     int    `json:"quantity" validate:"gt=0"`
	Unit         string `json:"unit" validate:"omitempty,unit"`
}

// Medications is the ordered list of medications of a prescription, stored as a JSON document.
type Medications []Medication

func (m Medications) Value() (driver.Value, error) {
	if m == nil {
		m = Medications{}
	}
	return json.Marshal(m)
}

func (m *Medications) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = Medications{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("prescriptions: cannot scan %T into medications", src)
	}
	return json.Unmarshal(data, m)
}

type Prescription struct {
	ID            string      `json:"id" dbfield:"id"`
	DoctorID      string      `json:"doctor_id" dbfield:"doctor_id"`
	PatientID     string      `json:"patient_id" dbfield:"patient_id"`
	PatientName   string      `json:"patient_name" dbfield:"patient_name"`
	PatientEmail  string      `json:"patient_email" dbfield:"patient_email"`
	AppointmentID string      `json:"appointment_id,omitempty" dbfield:"appointment_id"`
	Date          string      `json:"date" dbfield:"date"`
	Diagnosis     string      `json:"diagnosis" dbfield:"diagnosis"`
	Medications   Medications `json:"medications" dbfield:"medications"`
	Instructions  string      `json:"instructions" dbfield:"instructions"`
	FollowUpDate  string      `json:"follow_up_date,omitempty" dbfield:"follow_up_date"`
	Status        Status      `json:"status" dbfield:"status"`
	Notes         string      `json:"notes,omitempty" dbfield:"notes"`
	CreatedAt     time.Time   `json:"created_at" dbfield:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" dbfield:"updated_at"`
}

// Request holds the data a doctor sends to write a prescription. The patient is taken from the
// appointment.
type Request struct {
	AppointmentID string       `json:"appointment_id" validate:"required"`
	Date          string       `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Diagnosis     string       `json:"diagnosis" validate:"required,min=5"`
	Medications   []Medication `json:"medications" validate:"required,min=1,dive"`
	Instructions  string       `json:"instructions" validate:"required,min=10"`
	FollowUpDate  string       `json:"follow_up_date" validate:"omitempty,datetime=2006-01-02"`
	Notes         string       `json:"notes"`
}

// StatusRequest holds the status a doctor moves a prescription to.
type StatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// Draft is a prescription form pre-filled from a completed appointment.
type Draft struct {
	AppointmentID string `json:"appointment_id"`
	DoctorID      string `json:"doctor_id"`
	PatientID     string `json:"patient_id"`
	PatientName   string `json:"patient_name"`
	PatientEmail  string `json:"patient_email"`
	Date          string `json:"date"`
}
