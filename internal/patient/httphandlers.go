// Package patient contains the HTTP handlers of the patient portal: the doctor directory, the
// patient's appointments and dashboard, booking, cancelling and the patient's prescriptions.
package patient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"clinic-scheduler/internal/apierrors"
	"clinic-scheduler/internal/appointments"
	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/calendar"
	"clinic-scheduler/internal/logging"
	"clinic-scheduler/internal/prescriptions"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type httpHandler struct {
	authorizer    auth.Authorizer
	appointments  appointments.Service
	prescriptions prescriptions.Reader
	location      *time.Location
	now           func() time.Time
	logger        zerolog.Logger
}

// Option determines the Functional Options used to set up the patient portal.
type Option func(handler *httpHandler)

// WithClock replaces the clock used to split upcoming and past appointments.
func WithClock(now func() time.Time) Option {
	return func(handler *httpHandler) {
		handler.now = now
	}
}

// Dashboard is the patient's view of their appointments.
type Dashboard struct {
	Upcoming []appointments.Appointment `json:"upcoming"`
	Past     []appointments.Appointment `json:"past"`
	Stats    calendar.PatientStats      `json:"stats"`
}

// Setup setups the routes of the patient portal.
func Setup(router *chi.Mux, logger zerolog.Logger, authorizer auth.Authorizer, appointmentService appointments.Service, prescriptionReader prescriptions.Reader, location *time.Location, opts ...Option) {
	handler := &httpHandler{
		authorizer:    authorizer,
		appointments:  appointmentService,
		prescriptions: prescriptionReader,
		location:      location,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(handler)
	}

	// protected routes, only for patients
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRole(authorizer, auth.PatientRole))
		group.Get("/api/v1/patient/doctors", handler.ListDoctors)
		group.Get("/api/v1/patient/doctors/{id}", handler.GetDoctor)
		group.Get("/api/v1/patient/appointments", handler.ListAppointments)
		group.Post("/api/v1/patient/appointments", handler.Book)
		group.Put("/api/v1/patient/appointments/{id}/cancel", handler.Cancel)
		group.Get("/api/v1/patient/prescriptions", handler.ListPrescriptions)
		group.Get("/api/v1/patient/history", handler.History)
	})
}

func (h httpHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
	apierrors.Write(w, err)
}

// ListDoctors lists the bookable doctors, optionally narrowed by the specialization query
// parameter.
func (h httpHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.appointments.ListDoctors(r.Context(), r.URL.Query().Get("specialization"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(doctors)
}

func (h httpHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.appointments.GetDoctor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(doctor)
}

func (h httpHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	user, err := h.authorizer.GetAuthenticatedUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, err := h.appointments.ListForPatient(r.Context(), user.ProfileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	now := h.now()
	_ = json.NewEncoder(w).Encode(Dashboard{
		Upcoming: calendar.Upcoming(records, now, h.location),
		Past:     calendar.Past(records, now, h.location),
		Stats:    calendar.NewPatientStats(records, now, h.location),
	})
}

// Book books an appointment for the authenticated patient, whose name, email and phone are
// copied into it.
func (h httpHandler) Book(w http.ResponseWriter, r *http.Request) {
	user, err := h.authorizer.GetAuthenticatedUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	request := new(appointments.BookingRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	patient := appointments.Patient{ID: user.ProfileID, Name: user.Name, Email: user.Email, Phone: user.Phone}
	appointment, err := h.appointments.Book(r.Context(), patient, *request)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(appointment)
}

func (h httpHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, err := h.authorizer.GetAuthenticatedUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	appointment, err := h.appointments.Cancel(r.Context(), user.ProfileID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(appointment)
}

func (h httpHandler) ListPrescriptions(w http.ResponseWriter, r *http.Request) {
	user, err := h.authorizer.GetAuthenticatedUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.prescriptions.List(r.Context(), user.ProfileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(list)
}

// History lists the patient's appointments, most recent first, each with its prescription.
func (h httpHandler) History(w http.ResponseWriter, r *http.Request) {
	user, err := h.authorizer.GetAuthenticatedUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, err := h.appointments.ListForPatient(r.Context(), user.ProfileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.prescriptions.List(r.Context(), user.ProfileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(prescriptions.History(records, list, h.location))
}
