package appointments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"clinic-scheduler/internal/apierrors"
	"clinic-scheduler/internal/scheduling"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("clinic-scheduler.internal.appointments")

// Booker determines the methods available to patients to book appointments.
type Booker interface {

	// Book books a new appointment for the given patient. New appointments are always pending.
	Book(ctx context.Context, patient Patient, request BookingRequest) (*Appointment, error)
}

// Reader determines the methods available to patients to read their appointments.
type Reader interface {

	// ListForPatient lists the patient's appointments.
	ListForPatient(ctx context.Context, patientID string) ([]Appointment, error)
}

// Canceller determines the methods available to patients to cancel appointments.
type Canceller interface {

	// Cancel cancels one of the patient's appointments, as long as it has not started yet.
	Cancel(ctx context.Context, patientID string, id string) (*Appointment, error)
}

// DoctorFinder determines the methods available to patients to find a doctor to book with.
type DoctorFinder interface {

	// ListDoctors lists the doctors, optionally narrowed by specialization.
	ListDoctors(ctx context.Context, specialization string) ([]Doctor, error)

	// GetDoctor gets a doctor by its ID.
	GetDoctor(ctx context.Context, id string) (*Doctor, error)
}

// Service determines the methods of the patient portal.
type Service interface {
	Booker
	Reader
	Canceller
	DoctorFinder
}

type defaultService struct {
	store     Store
	directory Directory
	validate  *validator.Validate
	location *time.Location
	now      func() time.Time
}

// ServiceOption determines the Functional Options used to create a new Service.
type ServiceOption func(service *defaultService)

// WithClock replaces the clock used to decide which appointments are in the past.
func WithClock(now func() time.Time) ServiceOption {
	return func(service *defaultService) {
		service.now = now
	}
}

// NewService creates a new patient portal service. Appointments can only be booked with the
// doctors of the directory.
func NewService(store Store, directory Directory, location *time.Location, opts ...ServiceOption) Service {
	service := &defaultService{
		store:     store,
		directory: directory,
		validate:  apierrors.NewValidator(),
		location:  location,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (d defaultService) Book(ctx context.Context, patient Patient, request BookingRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.Book")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.doctor_id", request.DoctorID))

	if err := d.validate.Struct(request); err != nil {
		return nil, apierrors.FromValidator(err)
	}
	appointment := Appointment{
		DoctorID:     request.DoctorID,
		PatientID:    patient.ID,
		PatientName:  patient.Name,
		PatientEmail: patient.Email,
		PatientPhone: patient.Phone,
		Date:         request.Date,
		Time:         request.Time,
		Symptoms:     request.Symptoms,
		Type:         request.Type,
	}
	start, err := appointment.Start(d.location)
	if err != nil {
		return nil, apierrors.NewValidationError("date", ErrInvalidSchedule.Error())
	}
	if !start.After(d.now()) {
		return nil, apierrors.NewValidationError("date", "must be in the future")
	}
	if !scheduling.WithinClinicHours(start) {
		return nil, apierrors.NewValidationError("time", scheduling.ErrOutsideClinicHours.Error())
	}
	if _, err = d.directory.GetDoctor(ctx, request.DoctorID); err != nil {
		if errors.Is(err, ErrUnknownDoctor) {
			return nil, apierrors.NewValidationError("doctor_id", ErrUnknownDoctor.Error())
		}
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	created, err := d.store.Create(ctx, appointment)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return created, nil
}

func (d defaultService) ListForPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.ListForPatient")
	defer span.End()

	appointments, err := d.store.ListByPatient(ctx, patientID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return appointments, nil
}

func (d defaultService) Cancel(ctx context.Context, patientID string, id string) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.appointment_id", id))

	appointment, err := d.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, notFoundError()
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment.PatientID != patientID {
		return nil, notFoundError()
	}
	cancelled, err := Transition(*appointment, StatusCancelled, ActorPatient, d.now(), d.location)
	if err != nil {
		return nil, TransitionAPIError(err)
	}
	if err = d.store.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFoundError()
		}
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return &cancelled, nil
}

func (d defaultService) ListDoctors(ctx context.Context, specialization string) ([]Doctor, error) {
	ctx, span := tracer.Start(ctx, "appointments.ListDoctors")
	defer span.End()

	doctors, err := d.directory.ListDoctors(ctx, specialization)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return doctors, nil
}

func (d defaultService) GetDoctor(ctx context.Context, id string) (*Doctor, error) {
	ctx, span := tracer.Start(ctx, "appointments.GetDoctor")
	defer span.End()

	doctor, err := d.directory.GetDoctor(ctx, id)
	if errors.Is(err, ErrUnknownDoctor) {
		return nil, apierrors.NewAPIError(
			apierrors.WithDetail(ErrUnknownDoctor.Error()),
			apierrors.WithKind("NotFound"),
			apierrors.WithHTTPStatusCode(http.StatusNotFound),
		)
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return doctor, nil
}

func notFoundError() *apierrors.APIError {
	return apierrors.NewAPIError(
		apierrors.WithDetail(ErrNotFound.Error()),
		apierrors.WithKind("NotFound"),
		apierrors.WithHTTPStatusCode(http.StatusNotFound),
	)
}

// TransitionAPIError converts an error returned by Transition into the error returned to the
// API client.
func TransitionAPIError(err error) error {
	switch {
	case errors.Is(err, scheduling.ErrPastAppointment):
		return apierrors.NewAPIError(
			apierrors.WithDetail(err.Error()),
			apierrors.WithKind("PastAppointment"),
			apierrors.WithHTTPStatusCode(http.StatusUnprocessableEntity),
		)
	case errors.Is(err, ErrInvalidTransition):
		return apierrors.NewAPIError(
			apierrors.WithDetail(err.Error()),
			apierrors.WithKind("InvalidTransition"),
			apierrors.WithHTTPStatusCode(http.StatusConflict),
		)
	case errors.Is(err, ErrInvalidSchedule):
		return apierrors.NewAPIError(
			apierrors.WithDetail(err.Error()),
			apierrors.WithKind("ValidationError"),
			apierrors.WithHTTPStatusCode(http.StatusUnprocessableEntity),
		)
	}
	return err
}
