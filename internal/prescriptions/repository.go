package prescriptions

import (
	"context"
	"fmt"
	"time"

	"clinic-scheduler/internal/database"

	"github.com/google/uuid"
)

const (
	selectPrescriptionColumns = "SELECT id, doctor_id, patient_id, patient_name, patient_email, COALESCE(appointment_id, '') AS appointment_id, to_char(issued_on, 'YYYY-MM-DD') AS date, diagnosis, medications, instructions, COALESCE(to_char(follow_up_date, 'YYYY-MM-DD'), '') AS follow_up_date, status, COALESCE(notes, '') AS notes, created_at, updated_at FROM tb_prescription"
	listPrescriptionsQuery    = selectPrescriptionColumns + " ORDER BY issued_on DESC, created_at DESC"
	listByPatientQuery        = selectPrescriptionColumns + " WHERE patient_id = $1 ORDER BY issued_on DESC, created_at DESC"
	findPrescriptionQuery     = selectPrescriptionColumns + " WHERE id = $1"
	insertPrescriptionQuery   = "INSERT INTO tb_prescription (id, doctor_id, patient_id, patient_name, patient_email, appointment_id, issued_on, diagnosis, medications, instructions, follow_up_date, status, notes, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)"
	updateStatusQuery         = "UPDATE tb_prescription SET status = $2, updated_at = $3 WHERE id = $1"
)

// Repository is the Store backed by PostgreSQL.
type Repository struct {
	dbConn database.Connection
}

// NewRepository creates a new Repository.
func NewRepository(dbConn database.Connection) *Repository {
	return &Repository{dbConn: dbConn}
}

func (d Repository) list(ctx context.Context, query string, params ...interface{}) ([]Prescription, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows, d.dbConn.Logger())
	prescriptions := make([]Prescription, 0)
	for rows.Next() {
		prescription := new(Prescription)
		if err = database.TransformRow(rows, prescription); err != nil {
			return nil, err
		}
		prescriptions = append(prescriptions, *prescription)
	}
	return prescriptions, rows.Err()
}

func (d Repository) ListByPatient(ctx context.Context, patientID string) ([]Prescription, error) {
	if patientID == "" {
		return d.list(ctx, listPrescriptionsQuery)
	}
	return d.list(ctx, listByPatientQuery, patientID)
}

func (d Repository) Get(ctx context.Context, id string) (*Prescription, error) {
	// ids are UUID columns, anything else cannot match
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	found, err := d.list(ctx, findPrescriptionQuery, id)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (d Repository) Create(ctx context.Context, prescription Prescription) (*Prescription, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	now := time.Now().UTC()
	prescription.ID = uuid.NewString()
	prescription.CreatedAt = now
	prescription.UpdatedAt = now
	params := make([]interface{}, 15)
	params[0] = prescription.ID
	params[1] = prescription.DoctorID
	params[2] = prescription.PatientID
	params[3] = prescription.PatientName
	params[4] = prescription.PatientEmail
	params[5] = nullable(prescription.AppointmentID)
	params[6] = prescription.Date
	params[7] = prescription.Diagnosis
	params[8] = prescription.Medications
	params[9] = prescription.Instructions
	params[10] = nullable(prescription.FollowUpDate)
	params[11] = prescription.Status
	params[12] = nullable(prescription.Notes)
	params[13] = prescription.CreatedAt
	params[14] = prescription.UpdatedAt
	result, err := d.dbConn.DB().ExecContext(ctx, insertPrescriptionQuery, params...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("prescription not inserted")
	}
	return &prescription, nil
}

func (d Repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, updateStatusQuery, id, status, time.Now().UTC())
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

// nullable maps empty optional columns to NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
