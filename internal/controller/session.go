// Package controller turns the doctor's calendar interactions into store writes. A Session keeps
// the doctor's appointments, the view settings and the transient selection, applies every change
// optimistically and reconciles with the store right after.
package controller

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"clinic-scheduler/internal/appointments"
	"clinic-scheduler/internal/calendar"
	"clinic-scheduler/internal/metrics"
	"clinic-scheduler/internal/prescriptions"
	"clinic-scheduler/internal/scheduling"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("clinic-scheduler.internal.controller")

const noticeTimeLayout = "Jan 2, 2006 at 3:04 PM"

// Session is the calendar of one doctor. The selection only lives here and is never written to
// the store. While a change is being saved, selecting and changing appointments fail with ErrBusy.
type Session struct {
	mu       sync.Mutex
	busy     bool
	doctorID string
	store    appointments.Store
	now      func() time.Time
	location *time.Location
	logger   zerolog.Logger
	metrics  *metrics.Scheduling

	records    []appointments.Appointment
	selectedID string
	showPast   bool
	view       calendar.View
	anchor     time.Time
}

// Option determines the Functional Options used to create a new Session.
type Option func(session *Session)

func WithClock(now func() time.Time) Option {
	return func(session *Session) {
		session.now = now
	}
}

// WithLocation sets the clinic location appointment dates and times are read in.
func WithLocation(location *time.Location) Option {
	return func(session *Session) {
		if location != nil {
			session.location = location
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(session *Session) {
		session.logger = logger
	}
}

func WithMetrics(m *metrics.Scheduling) Option {
	return func(session *Session) {
		session.metrics = m
	}
}

// NewSession creates an empty session for the doctor. Call Load to fill it.
func NewSession(doctorID string, store appointments.Store, opts ...Option) *Session {
	session := &Session{
		doctorID: doctorID,
		store:    store,
		now:      time.Now,
		location: time.Local,
		logger:   zerolog.Nop(),
		view:     calendar.DefaultView,
	}
	for _, opt := range opts {
		opt(session)
	}
	session.logger = session.logger.With().Str("doctor_id", doctorID).Logger()
	session.anchor = session.now().In(session.location)
	return session
}

// acquire locks the session unless a change is being saved. On success the caller owns the lock.
func (s *Session) acquire() error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	return nil
}

func (s *Session) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	return describe(err).code
}

// finish converts the result of an action into the notice shown to the doctor.
func finish(span trace.Span, notice Notice, err error) (Notice, error) {
	if err != nil {
		span.RecordError(err)
		return NoticeFor(err), err
	}
	return notice, nil
}

// Load replaces the appointments with the doctor's ones from the store.
func (s *Session) Load(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "controller.Load")
	defer span.End()

	if err := s.acquire(); err != nil {
		return err
	}
	s.busy = true
	s.mu.Unlock()

	records, err := s.store.ListByDoctor(ctx, s.doctorID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveReload(outcome(err))
		return &StoreError{Op: "load", Err: err}
	}
	s.records = records
	if s.indexOf(s.selectedID) < 0 {
		s.selectedID = ""
	}
	s.metrics.ObserveReload(metrics.OutcomeOK)
	return nil
}

// commit applies a change locally, clears the selection and saves the change with write. The
// appointments are then reloaded from the store whatever the outcome; when the write failed and
// the reload fails too, the appointments as they were before the change are restored. The caller
// must hold the lock, which commit releases.
func (s *Session) commit(ctx context.Context, op string, apply func(records []appointments.Appointment) []appointments.Appointment, write func(ctx context.Context) error) error {
	snapshot := slices.Clone(s.records)
	s.records = apply(slices.Clone(s.records))
	s.selectedID = ""
	s.busy = true
	s.mu.Unlock()

	writeErr := write(ctx)
	records, reloadErr := s.store.ListByDoctor(ctx, s.doctorID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	switch {
	case reloadErr == nil:
		s.records = records
		s.metrics.ObserveReload(metrics.OutcomeOK)
	case writeErr != nil:
		s.records = snapshot
		s.metrics.ObserveReload(metrics.OutcomeRestored)
		s.logger.Warn().Err(reloadErr).Str("op", op).Msg("calendar reload failed, previous appointments restored")
	default:
		s.metrics.ObserveReload(outcome(&StoreError{Op: "load", Err: reloadErr}))
		s.logger.Warn().Err(reloadErr).Str("op", op).Msg("calendar reload failed, keeping the saved change")
	}
	if writeErr != nil {
		s.logger.Error().Err(writeErr).Str("op", op).Msg("appointment change not saved")
		return &StoreError{Op: op, Err: writeErr}
	}
	return nil
}

// Select selects one of the doctor's future appointments, replacing the previous selection.
func (s *Session) Select(ctx context.Context, id string) (Notice, error) {
	_, span := tracer.Start(ctx, "controller.Select", trace.WithAttributes(attribute.String("clinic.appointment_id", id)))
	defer span.End()
	notice, err := s.selectAppointment(id)
	return finish(span, notice, err)
}

func (s *Session) selectAppointment(id string) (Notice, error) {
	if err := s.acquire(); err != nil {
		return Notice{}, err
	}
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Notice{}, ErrNotFound
	}
	start, err := s.records[i].Start(s.location)
	if err != nil {
		return Notice{}, err
	}
	if start.Before(s.now()) {
		return Notice{}, scheduling.ErrPastAppointment
	}
	s.selectedID = id
	return Notice{
		Kind:    NoticeInfo,
		Message: fmt.Sprintf("Appointment with %s selected, use the arrow keys to move it", s.records[i].PatientName),
	}, nil
}

// Deselect clears the selection.
func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = ""
}

// SelectedID returns the selected appointment, or an empty string.
func (s *Session) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// Move moves the selected appointment in the given direction.
func (s *Session) Move(ctx context.Context, direction scheduling.Direction) (Notice, error) {
	ctx, span := tracer.Start(ctx, "controller.Move", trace.WithAttributes(attribute.String("clinic.direction", string(direction))))
	defer span.End()
	notice, err := s.move(ctx, direction)
	s.metrics.ObserveMove(string(direction), outcome(err))
	return finish(span, notice, err)
}

func (s *Session) move(ctx context.Context, direction scheduling.Direction) (Notice, error) {
	if err := s.acquire(); err != nil {
		return Notice{}, err
	}
	if s.selectedID == "" {
		s.mu.Unlock()
		return Notice{}, ErrNoSelection
	}
	i := s.indexOf(s.selectedID)
	if i < 0 {
		s.selectedID = ""
		s.mu.Unlock()
		return Notice{}, ErrNotFound
	}
	moved, err := s.records[i].Move(direction, s.now(), s.location)
	if err != nil {
		s.mu.Unlock()
		return Notice{}, err
	}
	start, _ := moved.Start(s.location)
	err = s.commit(ctx, "move",
		func(records []appointments.Appointment) []appointments.Appointment {
			records[i] = moved
			return records
		},
		func(ctx context.Context) error {
			return s.store.Update(ctx, moved)
		},
	)
	if err != nil {
		return Notice{}, err
	}
	return Notice{Kind: NoticeSuccess, Message: "Appointment moved to " + start.Format(noticeTimeLayout)}, nil
}

var statusMessages = map[appointments.Status]string{
	appointments.StatusConfirmed: "Appointment confirmed",
	appointments.StatusCompleted: "Appointment marked as completed",
	appointments.StatusCancelled: "Appointment cancelled",
}

// ChangeStatus changes the status of one of the doctor's appointments, as allowed by the
// appointment lifecycle.
func (s *Session) ChangeStatus(ctx context.Context, id string, status appointments.Status) (Notice, error) {
	ctx, span := tracer.Start(ctx, "controller.ChangeStatus", trace.WithAttributes(
		attribute.String("clinic.appointment_id", id),
		attribute.String("clinic.status", string(status)),
	))
	defer span.End()
	notice, err := s.changeStatus(ctx, id, status)
	s.metrics.ObserveStatusChange(string(status), outcome(err))
	return finish(span, notice, err)
}

func (s *Session) changeStatus(ctx context.Context, id string, status appointments.Status) (Notice, error) {
	if err := s.acquire(); err != nil {
		return Notice{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return Notice{}, ErrNotFound
	}
	changed, err := appointments.Transition(s.records[i], status, appointments.ActorDoctor, s.now(), s.location)
	if err != nil {
		s.mu.Unlock()
		return Notice{}, err
	}
	err = s.commit(ctx, "status",
		func(records []appointments.Appointment) []appointments.Appointment {
			records[i] = changed
			return records
		},
		func(ctx context.Context) error {
			return s.store.UpdateStatus(ctx, id, status)
		},
	)
	if err != nil {
		return Notice{}, err
	}
	return Notice{Kind: NoticeSuccess, Message: statusMessages[status]}, nil
}

// Confirmer asks the doctor to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, appointment appointments.Appointment) bool
}

// ConfirmFunc adapts a function to a Confirmer.
type ConfirmFunc func(ctx context.Context, appointment appointments.Appointment) bool

func (f ConfirmFunc) Confirm(ctx context.Context, appointment appointments.Appointment) bool {
	return f(ctx, appointment)
}

// Confirmed is a Confirmer whose answer is known up front.
type Confirmed bool

func (c Confirmed) Confirm(context.Context, appointments.Appointment) bool {
	return bool(c)
}

// Delete deletes one of the doctor's appointments once the confirmer agrees. Prescriptions
// written for it are kept.
func (s *Session) Delete(ctx context.Context, id string, confirmer Confirmer) (Notice, error) {
	ctx, span := tracer.Start(ctx, "controller.Delete", trace.WithAttributes(attribute.String("clinic.appointment_id", id)))
	defer span.End()
	notice, err := s.delete(ctx, id, confirmer)
	s.metrics.ObserveDeletion(outcome(err))
	return finish(span, notice, err)
}

func (s *Session) delete(ctx context.Context, id string, confirmer Confirmer) (Notice, error) {
	if err := s.acquire(); err != nil {
		return Notice{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return Notice{}, ErrNotFound
	}
	target := s.records[i]
	s.busy = true
	s.mu.Unlock()

	confirmed := confirmer != nil && confirmer.Confirm(ctx, target)

	s.mu.Lock()
	s.busy = false
	if !confirmed {
		s.mu.Unlock()
		return Notice{}, ErrNotConfirmed
	}
	if i = s.indexOf(id); i < 0 {
		s.mu.Unlock()
		return Notice{}, ErrNotFound
	}
	err := s.commit(ctx, "delete",
		func(records []appointments.Appointment) []appointments.Appointment {
			return slices.Delete(records, i, i+1)
		},
		func(ctx context.Context) error {
			return s.store.Delete(ctx, id)
		},
	)
	if err != nil {
		return Notice{}, err
	}
	return Notice{Kind: NoticeSuccess, Message: "Appointment deleted"}, nil
}

// PrescriptionDraft pre-fills a prescription for one of the doctor's completed appointments.
func (s *Session) PrescriptionDraft(id string) (prescriptions.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return prescriptions.Draft{}, ErrNotFound
	}
	return prescriptions.NewDraft(s.records[i], s.now().In(s.location))
}

// Appointments returns a copy of the doctor's appointments, in store order.
func (s *Session) Appointments() []appointments.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}
