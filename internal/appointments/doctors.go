package appointments

import (
	"context"
	"slices"
	"strings"
	"sync"

	"clinic-scheduler/internal/database"

	"github.com/lib/pq"
)

const (
	selectDoctorColumns = "SELECT id, first_name, last_name, specialization, experience, consultation_fee, rating, total_reviews, clinic_name, clinic_address, available_slots FROM tb_doctor"
	listDoctorsQuery    = selectDoctorColumns + " WHERE $1 = '' OR specialization ILIKE '%' || $1 || '%' ORDER BY last_name, first_name"
	findDoctorQuery     = selectDoctorColumns + " WHERE id = $1"
)

// Doctor is the public profile patients browse before booking.
type Doctor struct {
	ID              string   `json:"id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Specialization  string   `json:"specialization"`
	Experience      int      `json:"experience"`
	ConsultationFee float64  `json:"consultation_fee"`
	Rating          float64  `json:"rating"`
	TotalReviews    int      `json:"total_reviews"`
	ClinicName      string   `json:"clinic_name"`
	ClinicAddress   string   `json:"clinic_address"`
	AvailableSlots  []string `json:"available_slots"`
}

// Directory is the list of doctors appointments can be booked with.
type Directory interface {

	// ListDoctors lists the doctors whose specialization contains the given text, ignoring case.
	// An empty specialization lists every doctor.
	ListDoctors(ctx context.Context, specialization string) ([]Doctor, error)

	// GetDoctor gets a doctor, or ErrUnknownDoctor.
	GetDoctor(ctx context.Context, id string) (*Doctor, error)
}

// MemoryDirectory keeps the doctors in memory, in the order they were given.
type MemoryDirectory struct {
	mu      sync.RWMutex
	doctors []Doctor
}

func NewMemoryDirectory(doctors ...Doctor) *MemoryDirectory {
	return &MemoryDirectory{doctors: slices.Clone(doctors)}
}

func (m *MemoryDirectory) ListDoctors(_ context.Context, specialization string) ([]Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	term := strings.ToLower(strings.TrimSpace(specialization))
	doctors := make([]Doctor, 0, len(m.doctors))
	for _, doctor := range m.doctors {
		if term == "" || strings.Contains(strings.ToLower(doctor.Specialization), term) {
			doctor.AvailableSlots = slices.Clone(doctor.AvailableSlots)
			doctors = append(doctors, doctor)
		}
	}
	return doctors, nil
}

func (m *MemoryDirectory) GetDoctor(_ context.Context, id string) (*Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doctor := range m.doctors {
		if doctor.ID == id {
			doctor.AvailableSlots = slices.Clone(doctor.AvailableSlots)
			return &doctor, nil
		}
	}
	return nil, ErrUnknownDoctor
}

// DoctorRepository is the Directory backed by the tb_doctor table.
type DoctorRepository struct {
	dbConn database.Connection
}

func NewDoctorRepository(dbConn database.Connection) *DoctorRepository {
	return &DoctorRepository{dbConn: dbConn}
}

func (d DoctorRepository) query(ctx context.Context, query string, arg string) ([]Doctor, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows, d.dbConn.Logger())
	doctors := make([]Doctor, 0)
	for rows.Next() {
		var doctor Doctor
		err = rows.Scan(&doctor.ID, &doctor.FirstName, &doctor.LastName, &doctor.Specialization,
			&doctor.Experience, &doctor.ConsultationFee, &doctor.Rating, &doctor.TotalReviews,
			&doctor.ClinicName, &doctor.ClinicAddress, pq.Array(&doctor.AvailableSlots))
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, doctor)
	}
	return doctors, rows.Err()
}

func (d DoctorRepository) ListDoctors(ctx context.Context, specialization string) ([]Doctor, error) {
	return d.query(ctx, listDoctorsQuery, strings.TrimSpace(specialization))
}

func (d DoctorRepository) GetDoctor(ctx context.Context, id string) (*Doctor, error) {
	doctors, err := d.query(ctx, findDoctorQuery, id)
	if err != nil {
		return nil, err
	}
	if len(doctors) == 0 {
		return nil, ErrUnknownDoctor
	}
	return &doctors[0], nil
}
