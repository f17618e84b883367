package prescriptions

import (
	"encoding/json"
	"fmt"
	"net/http"

	"clinic-scheduler/internal/apierrors"
	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type httpHandler struct {
	authorizer auth.Authorizer
	service    Service
	logger     zerolog.Logger
}

// Setup setups the routes doctors use to write and follow prescriptions.
func Setup(router *chi.Mux, logger zerolog.Logger, authorizer auth.Authorizer, service Service) {
	handler := &httpHandler{
		authorizer: authorizer,
		service:    service,
		logger:     logger,
	}

	// protected routes, only for doctors
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRole(authorizer, auth.DoctorRole))
		group.Get("/api/v1/prescriptions", handler.List)
		group.Post("/api/v1/prescriptions", handler.Create)
		group.Get("/api/v1/prescriptions/{id}", handler.Get)
		group.Put("/api/v1/prescriptions/{id}/status", handler.UpdateStatus)
	})
}

func (h httpHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
	apierrors.Write(w, err)
}

// List lists the prescriptions written by the authenticated doctor, optionally narrowed by
// patient_id, status and a search term q.
func (h httpHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := h.authorizer.GetAuthenticatedUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	query := r.URL.Query()
	filter := Filter{DoctorID: user.ProfileID, Term: query.Get("q")}
	if query.Get("status") != "" {
		if filter.Status, err = ParseStatus(query.Get("status")); err != nil {
			h.fail(w, r, apierrors.NewValidationError("status", err.Error()))
			return
		}
	}
	prescriptions, err := h.service.List(r.Context(), query.Get("patient_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(filter.Apply(prescriptions))
}

func (h httpHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.authorizer.GetAuthenticatedUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	prescription, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if prescription.DoctorID != user.ProfileID {
		h.fail(w, r, notFoundError(ErrNotFound))
		return
	}
	_ = json.NewEncoder(w).Encode(prescription)
}

func (h httpHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := h.authorizer.GetAuthenticatedUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	request := new(Request)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	prescription, err := h.service.Create(r.Context(), user.ProfileID, *request)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(prescription)
}

func (h httpHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, err := h.authorizer.GetAuthenticatedUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	request := new(StatusRequest)
	if err = json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	current, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if current.DoctorID != user.ProfileID {
		h.fail(w, r, notFoundError(ErrNotFound))
		return
	}
	prescription, err := h.service.UpdateStatus(r.Context(), id, request.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(prescription)
}
