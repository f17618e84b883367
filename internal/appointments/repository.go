package appointments

import (
	"context"
	"fmt"

	"clinic-scheduler/internal/database"

	"github.com/google/uuid"
)

const (
	selectAppointmentColumns = "SELECT id, doctor_id, patient_id, patient_name, patient_email, patient_phone, to_char(appointment_date, 'YYYY-MM-DD') AS date, to_char(appointment_time, 'HH24:MI') AS time, status, symptoms, type FROM tb_appointment"
	listByDoctorQuery        = selectAppointmentColumns + " WHERE doctor_id = $1 ORDER BY appointment_date, appointment_time"
	listByPatientQuery       = selectAppointmentColumns + " WHERE patient_id = $1 ORDER BY appointment_date, appointment_time"
	findAppointmentQuery     = selectAppointmentColumns + " WHERE id = $1"
	insertAppointmentQuery   = "INSERT INTO tb_appointment (id, doctor_id, patient_id, patient_name, patient_email, patient_phone, appointment_date, appointment_time, status, symptoms, type) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)"
	updateStatusQuery        = "UPDATE tb_appointment SET status = $2 WHERE id = $1"
	updateAppointmentQuery   = "UPDATE tb_appointment SET patient_name = $2, patient_email = $3, patient_phone = $4, appointment_date = $5, appointment_time = $6, status = $7, symptoms = $8, type = $9 WHERE id = $1"
	deleteAppointmentQuery   = "DELETE FROM tb_appointment WHERE id = $1"
)

// Repository is the Store backed by PostgreSQL.
type Repository struct {
	dbConn database.Connection
}

// NewRepository creates a new Repository.
func NewRepository(dbConn database.Connection) *Repository {
	return &Repository{dbConn: dbConn}
}

func (d Repository) list(ctx context.Context, query string, id string) ([]Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows, d.dbConn.Logger())
	appointments := make([]Appointment, 0)
	for rows.Next() {
		appointment := new(Appointment)
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		appointments = append(appointments, *appointment)
	}
	return appointments, rows.Err()
}

func (d Repository) ListByDoctor(ctx context.Context, doctorID string) ([]Appointment, error) {
	return d.list(ctx, listByDoctorQuery, doctorID)
}

func (d Repository) ListByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	return d.list(ctx, listByPatientQuery, patientID)
}

func (d Repository) Get(ctx context.Context, id string) (*Appointment, error) {
	found, err := d.list(ctx, findAppointmentQuery, id)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (d Repository) Create(ctx context.Context, appointment Appointment) (*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	appointment.ID = uuid.NewString()
	appointment.Status = StatusPending
	params := make([]interface{}, 11)
	params[0] = appointment.ID
	params[1] = appointment.DoctorID
	params[2] = appointment.PatientID
	params[3] = appointment.PatientName
	params[4] = appointment.PatientEmail
	params[5] = appointment.PatientPhone
	params[6] = appointment.Date
	params[7] = appointment.Time
	params[8] = appointment.Status
	params[9] = appointment.Symptoms
	params[10] = appointment.Type
	result, err := d.dbConn.DB().ExecContext(ctx, insertAppointmentQuery, params...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("appointment not inserted")
	}
	return &appointment, nil
}

// exec runs a statement that must touch exactly the appointment it targets.
func (d Repository) exec(ctx context.Context, query string, params ...interface{}) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, query, params...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d Repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	return d.exec(ctx, updateStatusQuery, id, status)
}

func (d Repository) Update(ctx context.Context, appointment Appointment) error {
	params := make([]interface{}, 9)
	params[0] = appointment.ID
	params[1] = appointment.PatientName
	params[2] = appointment.PatientEmail
	params[3] = appointment.PatientPhone
	params[4] = appointment.Date
	params[5] = appointment.Time
	params[6] = appointment.Status
	params[7] = appointment.Symptoms
	params[8] = appointment.Type
	return d.exec(ctx, updateAppointmentQuery, params...)
}

func (d Repository) Delete(ctx context.Context, id string) error {
	return d.exec(ctx, deleteAppointmentQuery, id)
}
