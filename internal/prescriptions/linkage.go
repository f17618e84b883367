package prescriptions

import (
	"slices"
	"strings"
	"time"

	"clinic-scheduler/internal/appointments"
)

// ForAppointment finds the prescription written for the given appointment. When more than one
// exists, the first one wins.
func ForAppointment(prescriptions []Prescription, appointmentID string) (*Prescription, bool) {
	if appointmentID == "" {
		return nil, false
	}
	for i := range prescriptions {
		if prescriptions[i].AppointmentID == appointmentID {
			found := prescriptions[i]
			return &found, true
		}
	}
	return nil, false
}

// HistoryEntry is an appointment of a patient along with the prescription written for it, if any.
type HistoryEntry struct {
	Appointment  appointments.Appointment `json:"appointment"`
	Prescription *Prescription            `json:"prescription,omitempty"`
}

// History lists the given appointments from the most recent to the oldest, each with its
// prescription. Appointments whose date or time cannot be read go last.
func History(records []appointments.Appointment, prescriptions []Prescription, loc *time.Location) []HistoryEntry {
	type dated struct {
		record appointments.Appointment
		start  time.Time
		valid  bool
	}
	sorted := make([]dated, 0, len(records))
	for _, record := range records {
		start, err := record.Start(loc)
		sorted = append(sorted, dated{record: record, start: start, valid: err == nil})
	}
	slices.SortStableFunc(sorted, func(a, b dated) int {
		switch {
		case a.valid && !b.valid:
			return -1
		case !a.valid && b.valid:
			return 1
		}
		return b.start.Compare(a.start)
	})
	entries := make([]HistoryEntry, 0, len(sorted))
	for _, d := range sorted {
		entry := HistoryEntry{Appointment: d.record}
		if prescription, found := ForAppointment(prescriptions, d.record.ID); found {
			entry.Prescription = prescription
		}
		entries = append(entries, entry)
	}
	return entries
}

// Filter narrows a list of prescriptions. Term matches the patient name, the diagnosis or any
// medication name, ignoring case. Empty fields match everything.
type Filter struct {
	DoctorID string
	Term     string
	Status   Status
}

func (f Filter) matches(p Prescription) bool {
	if f.DoctorID != "" && p.DoctorID != f.DoctorID {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.PatientName), term) || strings.Contains(strings.ToLower(p.Diagnosis), term) {
		return true
	}
	return slices.ContainsFunc(p.Medications, func(m Medication) bool {
		return strings.Contains(strings.ToLower(m.Name), term)
	})
}

// Apply returns the prescriptions matching the filter, keeping their order.
func (f Filter) Apply(prescriptions []Prescription) []Prescription {
	result := make([]Prescription, 0, len(prescriptions))
	for _, p := range prescriptions {
		if f.matches(p) {
			result = append(result, p)
		}
	}
	return result
}
