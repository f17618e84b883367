package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"clinic-scheduler/internal/apierrors"
	"clinic-scheduler/internal/appointments"
	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/calendar"
	"clinic-scheduler/internal/logging"
	"clinic-scheduler/internal/prescriptions"
	"clinic-scheduler/internal/scheduling"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type httpHandler struct {
	authorizer    auth.Authorizer
	registry      *Registry
	prescriptions prescriptions.Reader
	location      *time.Location
	logger        zerolog.Logger
}

type selectionRequest struct {
	ID string `json:"id"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type actionResponse struct {
	Notice   Notice `json:"notice"`
	Calendar State  `json:"calendar"`
}

// Setup setups the routes of the doctor's calendar.
func Setup(router *chi.Mux, logger zerolog.Logger, authorizer auth.Authorizer, registry *Registry, prescriptionReader prescriptions.Reader, location *time.Location) {
	handler := &httpHandler{
		authorizer:    authorizer,
		registry:      registry,
		prescriptions: prescriptionReader,
		location:      location,
		logger:        logger,
	}

	// protected routes, only for doctors
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRole(authorizer, auth.DoctorRole))
		group.Get("/api/v1/calendar", handler.GetCalendar)
		group.Put("/api/v1/calendar/selection", handler.Select)
		group.Delete("/api/v1/calendar/selection", handler.Deselect)
		group.Post("/api/v1/calendar/moves", handler.Move)
		group.Put("/api/v1/calendar/appointments/{id}/status", handler.ChangeStatus)
		group.Delete("/api/v1/calendar/appointments/{id}", handler.Delete)
		group.Get("/api/v1/calendar/appointments/{id}/prescription-draft", handler.PrescriptionDraft)
		group.Get("/api/v1/patients", handler.ListPatients)
		group.Get("/api/v1/patients/{id}/history", handler.PatientHistory)
	})
}

// apiError converts the error of a calendar action into the error returned to the API client.
func apiError(err error) error {
	var validationErr *apierrors.ValidationError
	var apiErr *apierrors.APIError
	if errors.As(err, &validationErr) || errors.As(err, &apiErr) {
		return err
	}
	f := describe(err)
	if f.statusCode == http.StatusInternalServerError {
		return err
	}
	return apierrors.NewAPIError(
		apierrors.WithDetail(f.message),
		apierrors.WithKind(f.code),
		apierrors.WithHTTPStatusCode(f.statusCode),
	)
}

func (h httpHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
	apierrors.Write(w, apiError(err))
}

// session gets the calendar of the authenticated doctor.
func (h httpHandler) session(r *http.Request) (*Session, error) {
	user, err := h.authorizer.GetAuthenticatedUser(r.Context())
	if err != nil {
		return nil, err
	}
	return h.registry.Session(r.Context(), user.ProfileID)
}

func (h httpHandler) respond(w http.ResponseWriter, notice Notice, session *Session) {
	_ = json.NewEncoder(w).Encode(actionResponse{Notice: notice, Calendar: session.State()})
}

func (h httpHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err = session.Load(r.Context()); err != nil && !errors.Is(err, ErrBusy) {
		h.fail(w, r, err)
		return
	}
	query := r.URL.Query()
	if query.Has("view") {
		view, err := calendar.ParseView(query.Get("view"))
		if err != nil {
			h.fail(w, r, apierrors.NewValidationError("view", err.Error()))
			return
		}
		session.SetView(view)
	}
	if query.Has("date") {
		day, err := time.ParseInLocation(appointments.DateLayout, query.Get("date"), h.location)
		if err != nil {
			h.fail(w, r, apierrors.NewValidationError("date", calendar.ErrInvalidDate.Error()))
			return
		}
		session.Focus(day)
	}
	if query.Has("navigate") {
		nav, err := calendar.ParseNavigation(query.Get("navigate"))
		if err == nil {
			err = session.Navigate(nav)
		}
		if err != nil {
			h.fail(w, r, apierrors.NewValidationError("navigate", err.Error()))
			return
		}
	}
	if query.Has("show_past") {
		showPast, err := strconv.ParseBool(query.Get("show_past"))
		if err != nil {
			h.fail(w, r, apierrors.NewValidationError("show_past", "must be true or false"))
			return
		}
		session.SetShowPast(showPast)
	}
	_ = json.NewEncoder(w).Encode(session.State())
}

func (h httpHandler) Select(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	request := new(selectionRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if request.ID == "" {
		h.fail(w, r, apierrors.NewValidationError("id", "required"))
		return
	}
	notice, err := session.Select(r.Context(), request.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, notice, session)
}

func (h httpHandler) Deselect(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	session.Deselect()
	w.WriteHeader(http.StatusNoContent)
}

func (h httpHandler) Move(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	request := new(moveRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	direction, err := scheduling.ParseDirection(request.Direction)
	if err != nil {
		h.fail(w, r, apierrors.NewValidationError("direction", err.Error()))
		return
	}
	notice, err := session.Move(r.Context(), direction)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, notice, session)
}

func (h httpHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	request := new(statusRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	status, err := appointments.ParseStatus(request.Status)
	if err != nil {
		h.fail(w, r, apierrors.NewValidationError("status", err.Error()))
		return
	}
	notice, err := session.ChangeStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, notice, session)
}

func (h httpHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	notice, err := session.Delete(r.Context(), chi.URLParam(r, "id"), Confirmed(confirmed))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, notice, session)
}

func (h httpHandler) PrescriptionDraft(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	draft, err := session.PrescriptionDraft(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(draft)
}

// PatientHistory lists the appointments the doctor had with the patient, most recent first,
// each with its prescription.
// ListPatients lists the patients the doctor has appointments with, narrowed by the q query
// parameter when given.
func (h httpHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(appointments.Patients(session.Appointments(), r.URL.Query().Get("q")))
}

func (h httpHandler) PatientHistory(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	patientID := chi.URLParam(r, "id")
	records := make([]appointments.Appointment, 0)
	for _, record := range session.Appointments() {
		if record.PatientID == patientID {
			records = append(records, record)
		}
	}
	list, err := h.prescriptions.List(r.Context(), patientID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(prescriptions.History(records, list, h.location))
}
