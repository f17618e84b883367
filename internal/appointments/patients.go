package appointments

import (
	"slices"
	"strings"
)

// PatientSummary is a patient as seen from a doctor's appointments.
type PatientSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	LastVisit    string `json:"last_visit,omitempty"`
	TotalVisits  int    `json:"total_visits"`
	Appointments int    `json:"appointments"`
}

// Patients summarizes the patients of the given appointments, ordered by name. Contact details
// come from the latest appointment of each patient, visits are the completed appointments. A
// non-empty term keeps the patients whose name or email contains it, ignoring case.
func Patients(records []Appointment, term string) []PatientSummary {
	term = strings.ToLower(strings.TrimSpace(term))
	byID := make(map[string]*PatientSummary)
	latest := make(map[string]string)
	for _, record := range records {
		summary, found := byID[record.PatientID]
		if !found {
			summary = &PatientSummary{ID: record.PatientID}
			byID[record.PatientID] = summary
		}
		summary.Appointments++
		// dates and times are zero padded, so they compare as strings
		if at := record.Date + " " + record.Time; at >= latest[record.PatientID] {
			latest[record.PatientID] = at
			summary.Name = record.PatientName
			summary.Email = record.PatientEmail
			summary.Phone = record.PatientPhone
		}
		if record.Status == StatusCompleted {
			summary.TotalVisits++
			if record.Date > summary.LastVisit {
				summary.LastVisit = record.Date
			}
		}
	}
	patients := make([]PatientSummary, 0, len(byID))
	for _, summary := range byID {
		if term != "" && !strings.Contains(strings.ToLower(summary.Name), term) && !strings.Contains(strings.ToLower(summary.Email), term) {
			continue
		}
		patients = append(patients, *summary)
	}
	slices.SortFunc(patients, func(a, b PatientSummary) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return patients
}
