package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"clinic-scheduler/internal/apierrors"
	"clinic-scheduler/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type httpHandler struct {
	service Service
	logger  zerolog.Logger
}

// Setup setups the sign in, token refresh and current user routes.
func Setup(router *chi.Mux, logger zerolog.Logger, service Service) {
	handler := &httpHandler{logger: logger, service: service}

	router.Post("/api/v1/auth/login", handler.Authenticate)
	router.Put("/api/v1/auth/token", handler.RefreshToken)

	router.Group(func(group chi.Router) {
		group.Use(JwtValidator(service))
		group.Get("/api/v1/auth/me", handler.Me)
	})
}

func (h httpHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
	var unauthorizedErr *UnauthorizedError
	if errors.As(err, &unauthorizedErr) {
		challenge(w)
		return
	}
	apierrors.Write(w, err)
}

// Authenticate signs a user in with their email and password.
func (h httpHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	credentials := new(Credentials)
	if err := json.NewDecoder(r.Body).Decode(credentials); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	tokens, err := h.service.Authenticate(r.Context(), *credentials)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(tokens)
}

// RefreshToken trades a refresh token for a new token pair.
func (h httpHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	request := new(Tokens)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(middleware.GetReqID(r.Context()), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	tokens, err := h.service.RefreshTokens(r.Context(), *request)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(tokens)
}

func (h httpHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetAuthenticatedUser(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user.Password = ""
	_ = json.NewEncoder(w).Encode(user)
}
