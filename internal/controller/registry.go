package controller

import (
	"context"
	"sync"

	"clinic-scheduler/internal/appointments"
)

// Registry keeps one session per doctor.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	store    appointments.Store
	opts     []Option
}

// NewRegistry creates a registry whose sessions use the given store and options.
func NewRegistry(store appointments.Store, opts ...Option) *Registry {
	return &Registry{sessions: make(map[string]*Session), store: store, opts: opts}
}

// Session returns the doctor's session, creating and loading it on first use. A session that
// cannot be loaded is not kept.
func (r *Registry) Session(ctx context.Context, doctorID string) (*Session, error) {
	r.mu.Lock()
	session, found := r.sessions[doctorID]
	r.mu.Unlock()
	if found {
		return session, nil
	}
	session = NewSession(doctorID, r.store, r.opts...)
	if err := session.Load(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, found := r.sessions[doctorID]; found {
		return existing, nil
	}
	r.sessions[doctorID] = session
	return session, nil
}
