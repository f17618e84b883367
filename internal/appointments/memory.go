package appointments

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Operation names a Store method, used to inject failures into a MemoryStore.
type Operation string

const (
	OpListByDoctor  Operation = "list_by_doctor"
	OpListByPatient Operation = "list_by_patient"
	OpGet           Operation = "get"
	OpCreate        Operation = "create"
	OpUpdateStatus  Operation = "update_status"
	OpUpdate        Operation = "update"
	OpDelete        Operation = "delete"
)

// MemoryStore is a Store that keeps the appointments in memory, in insertion order.
type MemoryStore struct {
	mu         sync.RWMutex
	records    []Appointment
	minLatency time.Duration
	maxLatency time.Duration
	failures   map[Operation]error
	calls      map[Operation]int
}

// MemoryStoreOption determines the Functional Options used to create a new MemoryStore.
type MemoryStoreOption func(store *MemoryStore)

// WithLatency makes every call wait a random duration between min and max before answering.
func WithLatency(min, max time.Duration) MemoryStoreOption {
	return func(store *MemoryStore) {
		if max < min {
			max = min
		}
		store.minLatency = min
		store.maxLatency = max
	}
}

// WithSeed loads the given appointments into the store.
func WithSeed(records ...Appointment) MemoryStoreOption {
	return func(store *MemoryStore) {
		store.records = append(store.records, records...)
	}
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	store := &MemoryStore{
		failures: make(map[Operation]error),
		calls:    make(map[Operation]int),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// SetFailure makes every call of the given operation fail with err until it is cleared with a
// nil error.
func (m *MemoryStore) SetFailure(op Operation, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns how many times the given operation was called.
func (m *MemoryStore) Calls(op Operation) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// begin records the call, waits the simulated latency and returns the injected failure, if any.
func (m *MemoryStore) begin(ctx context.Context, op Operation) error {
	m.mu.Lock()
	m.calls[op]++
	failure := m.failures[op]
	m.mu.Unlock()
	if m.maxLatency > 0 {
		latency := m.minLatency
		if spread := m.maxLatency - m.minLatency; spread > 0 {
			latency += time.Duration(rand.Int63n(int64(spread)))
		}
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return failure
}

func (m *MemoryStore) indexOf(id string) int {
	for i := range m.records {
		if m.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) filter(match func(a Appointment) bool) []Appointment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]Appointment, 0)
	for _, a := range m.records {
		if match(a) {
			result = append(result, a)
		}
	}
	return result
}

func (m *MemoryStore) ListByDoctor(ctx context.Context, doctorID string) ([]Appointment, error) {
	if err := m.begin(ctx, OpListByDoctor); err != nil {
		return nil, err
	}
	return m.filter(func(a Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (m *MemoryStore) ListByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	if err := m.begin(ctx, OpListByPatient); err != nil {
		return nil, err
	}
	return m.filter(func(a Appointment) bool { return a.PatientID == patientID }), nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Appointment, error) {
	if err := m.begin(ctx, OpGet); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	found := m.records[i]
	return &found, nil
}

func (m *MemoryStore) Create(ctx context.Context, appointment Appointment) (*Appointment, error) {
	if err := m.begin(ctx, OpCreate); err != nil {
		return nil, err
	}
	appointment.ID = uuid.NewString()
	appointment.Status = StatusPending
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, appointment)
	return &appointment, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	if err := m.begin(ctx, OpUpdateStatus); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.records[i].Status = status
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, appointment Appointment) error {
	if err := m.begin(ctx, OpUpdate); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(appointment.ID)
	if i < 0 {
		return ErrNotFound
	}
	m.records[i] = appointment
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := m.begin(ctx, OpDelete); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.records = append(m.records[:i], m.records[i+1:]...)
	return nil
}
