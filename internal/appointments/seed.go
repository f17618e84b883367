package appointments

import (
	"strconv"
	"time"
)

const (
	DemoDoctorID  = "1"
	DemoPatientID = "1"
)

type demoEntry struct {
	dayOffset int
	time      string
	patient   Patient
	status    Status
	symptoms  string
	typ       Type
}

var demoPatients = []Patient{
	{ID: DemoPatientID, Name: "Alice Johnson", Email: "patient@example.com", Phone: "+1234567891"},
	{ID: "2", Name: "Bob Wilson", Email: "bob@example.com", Phone: "+1234567892"},
	{ID: "3", Name: "Carol Davis", Email: "carol@example.com", Phone: "+1234567893"},
	{ID: "4", Name: "David Miller", Email: "david@example.com", Phone: "+1234567894"},
	{ID: "5", Name: "Emma Thompson", Email: "emma@example.com", Phone: "+1234567822"},
	{ID: "6", Name: "Lucas Anderson", Email: "lucas@example.com", Phone: "+1234567823"},
}

var demoEntries = []demoEntry{
	{-10, "09:30", demoPatients[0], StatusCompleted, "Annual heart health checkup", TypeConsultation},
	{-3, "14:00", demoPatients[2], StatusCompleted, "Heart palpitations and dizziness", TypeConsultation},
	{-2, "11:30", demoPatients[3], StatusCancelled, "Annual physical examination", TypeConsultation},
	{0, "08:00", demoPatients[4], StatusConfirmed, "Morning blood pressure check", TypeConsultation},
	{0, "16:00", demoPatients[5], StatusPending, "Chest pain evaluation", TypeEmergency},
	{1, "10:00", demoPatients[0], StatusPending, "Chest pain and shortness of breath", TypeConsultation},
	{1, "14:00", demoPatients[1], StatusConfirmed, "Regular checkup and blood pressure monitoring", TypeFollowUp},
	{2, "09:00", demoPatients[2], StatusPending, "Post-surgery follow-up", TypeFollowUp},
	{3, "15:30", demoPatients[0], StatusConfirmed, "Hypertension management", TypeFollowUp},
	{5, "13:30", demoPatients[3], StatusPending, "Cardiac stress test", TypeConsultation},
}

// DemoAppointments builds the appointments of the demo doctor, dated relative to the given day
// so the calendar always shows past, current and upcoming work. IDs are sequential, starting at 1.
func DemoAppointments(today time.Time) []Appointment {
	records := make([]Appointment, 0, len(demoEntries))
	for i, entry := range demoEntries {
		records = append(records, Appointment{
			ID:           strconv.Itoa(i + 1),
			DoctorID:     DemoDoctorID,
			PatientID:    entry.patient.ID,
			PatientName:  entry.patient.Name,
			PatientEmail: entry.patient.Email,
			PatientPhone: entry.patient.Phone,
			Date:         today.AddDate(0, 0, entry.dayOffset).Format(DateLayout),
			Time:         entry.time,
			Status:       entry.status,
			Symptoms:     entry.symptoms,
			Type:         entry.typ,
		})
	}
	return records
}

// DemoDoctors builds the doctor directory of the memory backend. The first doctor is the demo
// doctor.
func DemoDoctors() []Doctor {
	return []Doctor{
		{
			ID: DemoDoctorID, FirstName: "John", LastName: "Smith", Specialization: "Cardiologist",
			Experience: 8, ConsultationFee: 150, Rating: 4.8, TotalReviews: 124,
			ClinicName: "Heart Care Clinic", ClinicAddress: "123 Medical Center, Health City",
			AvailableSlots: []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"},
		},
		{
			ID: "2", FirstName: "Sarah", LastName: "Johnson", Specialization: "Dermatologist",
			Experience: 6, ConsultationFee: 120, Rating: 4.9, TotalReviews: 89,
			ClinicName: "Skin Health Center", ClinicAddress: "456 Wellness Ave, Medical District",
			AvailableSlots: []string{"09:30", "11:00", "13:00", "15:30", "17:00"},
		},
		{
			ID: "3", FirstName: "Michael", LastName: "Brown", Specialization: "Neurologist",
			Experience: 12, ConsultationFee: 200, Rating: 4.7, TotalReviews: 156,
			ClinicName: "Brain & Spine Institute", ClinicAddress: "789 Neuro Plaza, Health City",
			AvailableSlots: []string{"08:00", "10:30", "14:00", "16:30"},
		},
	}
}
