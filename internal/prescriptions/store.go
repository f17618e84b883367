package prescriptions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists prescriptions. Prescriptions are never deleted.
type Store interface {

	// ListByPatient lists the prescriptions of the given patient, or every prescription when the
	// patient is empty.
	ListByPatient(ctx context.Context, patientID string) ([]Prescription, error)

	Get(ctx context.Context, id string) (*Prescription, error)

	// Create stores a new prescription, assigning its ID and timestamps.
	Create(ctx context.Context, prescription Prescription) (*Prescription, error)

	UpdateStatus(ctx context.Context, id string, status Status) error
}

// MemoryStore is a Store that keeps the prescriptions in memory, in insertion order.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Prescription
	now     func() time.Time
}

// NewMemoryStore creates a new MemoryStore holding the given prescriptions.
func NewMemoryStore(seed ...Prescription) *MemoryStore {
	return &MemoryStore{records: append([]Prescription(nil), seed...), now: time.Now}
}

func (m *MemoryStore) ListByPatient(ctx context.Context, patientID string) ([]Prescription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]Prescription, 0)
	for _, p := range m.records {
		if patientID == "" || p.PatientID == patientID {
			result = append(result, clone(p))
		}
	}
	return result, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Prescription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.records {
		if p.ID == id {
			found := clone(p)
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Create(ctx context.Context, prescription Prescription) (*Prescription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := m.now().UTC()
	prescription.ID = uuid.NewString()
	prescription.CreatedAt = now
	prescription.UpdatedAt = now
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, clone(prescription))
	return &prescription, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Status = status
			m.records[i].UpdatedAt = m.now().UTC()
			return nil
		}
	}
	return ErrNotFound
}

// clone copies the prescription along with its medications.
func clone(p Prescription) Prescription {
	p.Medications = append(Medications(nil), p.Medications...)
	return p
}
