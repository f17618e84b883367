package calendar

import (
	"time"

	"clinic-scheduler/internal/appointments"
)

// Upcoming keeps the appointments that start after now and are not cancelled.
func Upcoming(records []appointments.Appointment, now time.Time, loc *time.Location) []appointments.Appointment {
	result := make([]appointments.Appointment, 0)
	for _, record := range records {
		start, err := record.Start(loc)
		if err != nil {
			continue
		}
		if start.After(now) && record.Status != appointments.StatusCancelled {
			result = append(result, record)
		}
	}
	return result
}

// Past keeps the appointments that already started, plus the completed ones.
func Past(records []appointments.Appointment, now time.Time, loc *time.Location) []appointments.Appointment {
	result := make([]appointments.Appointment, 0)
	for _, record := range records {
		start, err := record.Start(loc)
		if err != nil {
			continue
		}
		if !start.After(now) || record.Status == appointments.StatusCompleted {
			result = append(result, record)
		}
	}
	return result
}

type PatientStats struct {
	TotalAppointments     int `json:"total_appointments"`
	UpcomingAppointments  int `json:"upcoming_appointments"`
	CompletedAppointments int `json:"completed_appointments"`
	TotalDoctors          int `json:"total_doctors"`
}

// NewPatientStats summarizes the appointments of a patient.
func NewPatientStats(records []appointments.Appointment, now time.Time, loc *time.Location) PatientStats {
	doctors := make(map[string]struct{})
	stats := PatientStats{
		TotalAppointments:    len(records),
		UpcomingAppointments: len(Upcoming(records, now, loc)),
	}
	for _, record := range records {
		doctors[record.DoctorID] = struct{}{}
		if record.Status == appointments.StatusCompleted {
			stats.CompletedAppointments++
		}
	}
	stats.TotalDoctors = len(doctors)
	return stats
}

type DoctorStats struct {
	TotalPatients       int `json:"total_patients"`
	TodayAppointments   int `json:"today_appointments"`
	PendingAppointments int `json:"pending_appointments"`
}

// NewDoctorStats summarizes the appointments of a doctor. Today is judged in the location of now.
func NewDoctorStats(records []appointments.Appointment, now time.Time, loc *time.Location) DoctorStats {
	patients := make(map[string]struct{})
	stats := DoctorStats{}
	for _, record := range records {
		patients[record.PatientID] = struct{}{}
		if record.Status == appointments.StatusPending {
			stats.PendingAppointments++
		}
		if start, err := record.Start(loc); err == nil && sameDay(start.In(now.Location()), now) {
			stats.TodayAppointments++
		}
	}
	stats.TotalPatients = len(patients)
	return stats
}
