package prescriptions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"clinic-scheduler/internal/apierrors"
	"clinic-scheduler/internal/appointments"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("clinic-scheduler.internal.prescriptions")

// AppointmentFinder finds the appointment a prescription is written for.
type AppointmentFinder interface {
	Get(ctx context.Context, id string) (*appointments.Appointment, error)
}

// Reader determines the methods available to read prescriptions.
type Reader interface {

	// List lists the prescriptions of the given patient, or every prescription when the patient
	// is empty.
	List(ctx context.Context, patientID string) ([]Prescription, error)

	// Get gets a prescription by its ID.
	Get(ctx context.Context, id string) (*Prescription, error)
}

// Writer determines the methods available to doctors to write prescriptions.
type Writer interface {

	// Create writes a new prescription for a completed appointment of the doctor.
	Create(ctx context.Context, doctorID string, request Request) (*Prescription, error)

	// UpdateStatus moves an active prescription to another status.
	UpdateStatus(ctx context.Context, id string, status Status) (*Prescription, error)
}

// Service determines the methods used to manage prescriptions.
type Service interface {
	Reader
	Writer
}

type defaultService struct {
	store        Store
	appointments AppointmentFinder
	validate     *validator.Validate
	location     *time.Location
	now          func() time.Time
}

// ServiceOption determines the Functional Options used to create a new Service.
type ServiceOption func(service *defaultService)

// WithClock replaces the clock used to date new prescriptions.
func WithClock(now func() time.Time) ServiceOption {
	return func(service *defaultService) {
		service.now = now
	}
}

// NewValidator creates a validator aware of the medication vocabularies.
func NewValidator() *validator.Validate {
	validate := apierrors.NewValidator()
	_ = validate.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		return slices.Contains(Frequencies, fl.Field().String())
	})
	_ = validate.RegisterValidation("unit", func(fl validator.FieldLevel) bool {
		return slices.Contains(Units, fl.Field().String())
	})
	return validate
}

// NewService creates a new prescription service.
func NewService(store Store, appointmentFinder AppointmentFinder, location *time.Location, opts ...ServiceOption) Service {
	service := &defaultService{
		store:        store,
		appointments: appointmentFinder,
		validate:     NewValidator(),
		location:     location,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (d defaultService) List(ctx context.Context, patientID string) ([]Prescription, error) {
	ctx, span := tracer.Start(ctx, "prescriptions.List")
	defer span.End()

	prescriptions, err := d.store.ListByPatient(ctx, patientID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return prescriptions, nil
}

func (d defaultService) Get(ctx context.Context, id string) (*Prescription, error) {
	ctx, span := tracer.Start(ctx, "prescriptions.Get")
	defer span.End()

	prescription, err := d.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, notFoundError(ErrNotFound)
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return prescription, nil
}

func (d defaultService) Create(ctx context.Context, doctorID string, request Request) (*Prescription, error) {
	ctx, span := tracer.Start(ctx, "prescriptions.Create")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.appointment_id", request.AppointmentID))

	if err := d.validate.Struct(request); err != nil {
		return nil, apierrors.FromValidator(err)
	}
	appointment, err := d.appointments.Get(ctx, request.AppointmentID)
	if errors.Is(err, appointments.ErrNotFound) {
		return nil, notFoundError(ErrAppointmentNotFound)
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment.DoctorID != doctorID {
		return nil, notFoundError(ErrAppointmentNotFound)
	}
	draft, err := NewDraft(*appointment, d.now().In(d.location))
	if err != nil {
		return nil, apierrors.NewAPIError(
			apierrors.WithDetail(err.Error()),
			apierrors.WithKind("AppointmentNotCompleted"),
			apierrors.WithHTTPStatusCode(http.StatusUnprocessableEntity),
		)
	}
	date := request.Date
	if date == "" {
		date = draft.Date
	}
	medications := make(Medications, 0, len(request.Medications))
	for _, medication := range request.Medications {
		if medication.ID == "" {
			medication.ID = uuid.NewString()
		}
		if medication.Unit == "" {
			medication.Unit = DefaultUnit
		}
		medications = append(medications, medication)
	}
	created, err := d.store.Create(ctx, Prescription{
		DoctorID:      draft.DoctorID,
		PatientID:     draft.PatientID,
		PatientName:   draft.PatientName,
		PatientEmail:  draft.PatientEmail,
		AppointmentID: draft.AppointmentID,
		Date:          date,
		Diagnosis:     request.Diagnosis,
		Medications:   medications,
		Instructions:  request.Instructions,
		FollowUpDate:  request.FollowUpDate,
		Status:        StatusActive,
		Notes:         request.Notes,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return created, nil
}

func (d defaultService) UpdateStatus(ctx context.Context, id string, status Status) (*Prescription, error) {
	ctx, span := tracer.Start(ctx, "prescriptions.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.prescription_id", id))

	status, err := ParseStatus(string(status))
	if err != nil {
		return nil, apierrors.NewValidationError("status", err.Error())
	}
	current, err := d.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusActive || status == StatusActive {
		return nil, apierrors.NewAPIError(
			apierrors.WithDetail(ErrStatusLocked.Error()),
			apierrors.WithKind("InvalidTransition"),
			apierrors.WithHTTPStatusCode(http.StatusConflict),
		)
	}
	if err = d.store.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFoundError(ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return d.Get(ctx, id)
}

// NewDraft pre-fills a prescription from the given appointment, dated on the given day. Only
// completed appointments may be prescribed for.
func NewDraft(appointment appointments.Appointment, today time.Time) (Draft, error) {
	if !appointment.Status.AllowsPrescription() {
		return Draft{}, ErrAppointmentNotCompleted
	}
	return Draft{
		AppointmentID: appointment.ID,
		DoctorID:      appointment.DoctorID,
		PatientID:     appointment.PatientID,
		PatientName:   appointment.PatientName,
		PatientEmail:  appointment.PatientEmail,
		Date:          today.Format(appointments.DateLayout),
	}, nil
}

func notFoundError(err Error) *apierrors.APIError {
	return apierrors.NewAPIError(
		apierrors.WithDetail(err.Error()),
		apierrors.WithKind("NotFound"),
		apierrors.WithHTTPStatusCode(http.StatusNotFound),
	)
}
