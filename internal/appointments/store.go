package appointments

import "context"

// Store provides access to the appointment records. Implementations return ErrNotFound
// for unknown identifiers.
type Store interface {

	// ListByDoctor lists the doctor's appointments.
	ListByDoctor(ctx context.Context, doctorID string) ([]Appointment, error)

	// ListByPatient lists the patient's appointments.
	ListByPatient(ctx context.Context, patientID string) ([]Appointment, error)

	// Get finds an appointment by its ID.
	Get(ctx context.Context, id string) (*Appointment, error)

	// Create stores a new appointment, assigning its ID. New appointments are always pending.
	Create(ctx context.Context, appointment Appointment) (*Appointment, error)

	// UpdateStatus changes the status of the given appointment.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// Update replaces the stored appointment with the given one.
	Update(ctx context.Context, appointment Appointment) error

	// Delete removes the given appointment.
	Delete(ctx context.Context, id string) error
}
