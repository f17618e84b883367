package prescriptions

import (
	"time"

	"clinic-scheduler/internal/appointments"
)

type demoPrescription struct {
	diagnosis    string
	medications  Medications
	instructions string
	notes        string
}

var demoPrescriptions = []demoPrescription{
	{
		diagnosis: "Hypertension and mild chest pain",
		medications: Medications{
			{ID: "med1", Name: "Amlodipine", Dosage: "5mg", Frequency: "Once daily", Duration: "30 days", Instructions: "Take in the morning with food", Quantity: 30, Unit: "tablets"},
			{ID: "med2", Name: "Aspirin", Dosage: "81mg", Frequency: "Once daily", Duration: "30 days", Instructions: "Take with water after meals", Quantity: 30, Unit: "tablets"},
		},
		instructions: "Monitor blood pressure daily. Avoid high-sodium foods. Exercise regularly.",
		notes:        "Patient shows improvement in blood pressure readings",
	},
	{
		diagnosis: "Atrial fibrillation",
		medications: Medications{
			{ID: "med3", Name: "Warfarin", Dosage: "5mg", Frequency: "Once daily", Duration: "90 days", Instructions: "Take at the same time daily. Regular INR monitoring required.", Quantity: 90, Unit: "tablets"},
		},
		instructions: "Regular INR monitoring. Avoid vitamin K rich foods in excess.",
	},
}

// DemoPrescriptions builds one prescription for each completed appointment among the given ones,
// dated on the appointment day with a follow-up a month later.
func DemoPrescriptions(records []appointments.Appointment) []Prescription {
	result := make([]Prescription, 0)
	for _, record := range records {
		if record.Status != appointments.StatusCompleted || len(result) == len(demoPrescriptions) {
			continue
		}
		demo := demoPrescriptions[len(result)]
		issued, err := time.Parse(appointments.DateLayout, record.Date)
		if err != nil {
			continue
		}
		result = append(result, Prescription{
			ID:            record.ID,
			DoctorID:      record.DoctorID,
			PatientID:     record.PatientID,
			PatientName:   record.PatientName,
			PatientEmail:  record.PatientEmail,
			AppointmentID: record.ID,
			Date:          record.Date,
			Diagnosis:     demo.diagnosis,
			Medications:   append(Medications(nil), demo.medications...),
			Instructions:  demo.instructions,
			FollowUpDate:  issued.AddDate(0, 1, 0).Format(appointments.DateLayout),
			Status:        StatusActive,
			Notes:         demo.notes,
			CreatedAt:     issued.UTC(),
			UpdatedAt:     issued.UTC(),
		})
	}
	return result
}
