package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinic-scheduler/internal/appointments"
	"clinic-scheduler/internal/auth"
	"clinic-scheduler/internal/prescriptions"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logger = zerolog.Nop()

// tokenAuthorizer accepts the tokens "doctor" and "patient".
type tokenAuthorizer struct{}

func (tokenAuthorizer) ValidateToken(_ context.Context, token string) (*auth.User, error) {
	switch strings.TrimPrefix(token, "Bearer ") {
	case "doctor":
		return &auth.User{ID: 1, Email: "doctor@example.com", Role: auth.DoctorRole, ProfileID: "1", Name: "Dr. Sarah Wilson"}, nil
	case "patient":
		return &auth.User{ID: 2, Email: "patient@example.com", Role: auth.PatientRole, ProfileID: "1", Name: "Alice Johnson"}, nil
	}
	return nil, auth.NewUnauthorizedError()
}

func (tokenAuthorizer) RefreshTokens(context.Context, auth.Tokens) (*auth.Tokens, error) {
	return nil, errors.New("not supported")
}

func (tokenAuthorizer) GetAuthenticatedUser(ctx context.Context) (auth.User, error) {
	user, found := auth.UserFromContext(ctx)
	if !found {
		return auth.User{}, auth.NewUnauthorizedError()
	}
	return user, nil
}

type request struct {
	method string
	target string
	body   string
	token  string
}

func (r request) do(router http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(r.method, r.target, strings.NewReader(r.body))
	token := r.token
	if token == "" {
		token = "doctor"
	}
	if token != "none" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func newTestRouter() (*chi.Mux, *appointments.MemoryStore) {
	store := appointments.NewMemoryStore(appointments.WithSeed(testRecords()...))
	now := func() time.Time { return testNow }
	registry := NewRegistry(store, WithClock(now), WithLocation(time.UTC))
	prescriptionStore := prescriptions.NewMemoryStore(prescriptions.DemoPrescriptions(testRecords())...)
	reader := prescriptions.NewService(prescriptionStore, store, time.UTC)
	router := chi.NewRouter()
	Setup(router, logger, tokenAuthorizer{}, registry, reader, time.UTC)
	return router, store
}

func TestHTTPHandlers(t *testing.T) {
	tests := []struct {
		name     string
		before   []request
		request  request
		want     int
		wantKind string
	}{
		{
			name:    "should require authentication",
			request: request{method: http.MethodGet, target: "/api/v1/calendar", token: "none"},
			want:    http.StatusUnauthorized,
		},
		{
			name:    "should forbid patients",
			request: request{method: http.MethodGet, target: "/api/v1/calendar", token: "patient"},
			want:    http.StatusForbidden,
		},
		{
			name:    "should return the calendar",
			request: request{method: http.MethodGet, target: "/api/v1/calendar?view=day&date=2099-01-21"},
			want:    http.StatusOK,
		},
		{
			name:    "should reject an unknown view",
			request: request{method: http.MethodGet, target: "/api/v1/calendar?view=year"},
			want:    http.StatusBadRequest,
		},
		{
			name:    "should reject an invalid date",
			request: request{method: http.MethodGet, target: "/api/v1/calendar?date=21/01/2099"},
			want:    http.StatusBadRequest,
		},
		{
			name:    "should reject an unknown navigation",
			request: request{method: http.MethodGet, target: "/api/v1/calendar?navigate=sideways"},
			want:    http.StatusBadRequest,
		},
		{
			name:    "should select a future appointment",
			request: request{method: http.MethodPut, target: "/api/v1/calendar/selection", body: `{"id":"1"}`},
			want:    http.StatusOK,
		},
		{
			name:     "should not select a past appointment",
			request:  request{method: http.MethodPut, target: "/api/v1/calendar/selection", body: `{"id":"2"}`},
			want:     http.StatusUnprocessableEntity,
			wantKind: "PastAppointment",
		},
		{
			name:    "should reject a selection without id",
			request: request{method: http.MethodPut, target: "/api/v1/calendar/selection", body: `{}`},
			want:    http.StatusBadRequest,
		},
		{
			name:    "should reject a malformed selection",
			request: request{method: http.MethodPut, target: "/api/v1/calendar/selection", body: `{"id":`},
			want:    http.StatusBadRequest,
		},
		{
			name:    "should clear the selection",
			request: request{method: http.MethodDelete, target: "/api/v1/calendar/selection"},
			want:    http.StatusNoContent,
		},
		{
			name:    "should move the selected appointment with an arrow key",
			before:  []request{{method: http.MethodPut, target: "/api/v1/calendar/selection", body: `{"id":"1"}`}},
			request: request{method: http.MethodPost, target: "/api/v1/calendar/moves", body: `{"direction":"ArrowDown"}`},
			want:    http.StatusOK,
		},
		{
			name:     "should not move without a selection",
			request:  request{method: http.MethodPost, target: "/api/v1/calendar/moves", body: `{"direction":"later"}`},
			want:     http.StatusConflict,
			wantKind: "NoSelection",
		},
		{
			name:     "should not move past closing time",
			before:   []request{{method: http.MethodPut, target: "/api/v1/calendar/selection", body: `{"id":"3"}`}},
			request:  request{method: http.MethodPost, target: "/api/v1/calendar/moves", body: `{"direction":"later"}`},
			want:     http.StatusUnprocessableEntity,
			wantKind: "OutsideClinicHours",
		},
		{
			name:    "should reject an unknown direction",
			request: request{method: http.MethodPost, target: "/api/v1/calendar/moves", body: `{"direction":"sideways"}`},
			want:    http.StatusBadRequest,
		},
		{
			name:    "should confirm an appointment",
			request: request{method: http.MethodPut, target: "/api/v1/calendar/appointments/1/status", body: `{"status":"confirmed"}`},
			want:    http.StatusOK,
		},
		{
			name:     "should not reopen a completed appointment",
			request:  request{method: http.MethodPut, target: "/api/v1/calendar/appointments/4/status", body: `{"status":"pending"}`},
			want:     http.StatusConflict,
			wantKind: "InvalidTransition",
		},
		{
			name:    "should reject an unknown status",
			request: request{method: http.MethodPut, target: "/api/v1/calendar/appointments/1/status", body: `{"status":"archived"}`},
			want:    http.StatusBadRequest,
		},
		{
			name:     "should not change an unknown appointment",
			request:  request{method: http.MethodPut, target: "/api/v1/calendar/appointments/99/status", body: `{"status":"confirmed"}`},
			want:     http.StatusNotFound,
			wantKind: "NotFound",
		},
		{
			name:     "should not delete without confirmation",
			request:  request{method: http.MethodDelete, target: "/api/v1/calendar/appointments/3"},
			want:     http.StatusPreconditionRequired,
			wantKind: "NotConfirmed",
		},
		{
			name:    "should delete a confirmed deletion",
			request: request{method: http.MethodDelete, target: "/api/v1/calendar/appointments/3?confirm=true"},
			want:    http.StatusOK,
		},
		{
			name:    "should draft a prescription for a completed appointment",
			request: request{method: http.MethodGet, target: "/api/v1/calendar/appointments/4/prescription-draft"},
			want:    http.StatusOK,
		},
		{
			name:     "should not draft a prescription for a pending appointment",
			request:  request{method: http.MethodGet, target: "/api/v1/calendar/appointments/1/prescription-draft"},
			want:     http.StatusUnprocessableEntity,
			wantKind: "AppointmentNotCompleted",
		},
		{
			name:    "should list the doctor's patients",
			request: request{method: http.MethodGet, target: "/api/v1/patients"},
			want:    http.StatusOK,
		},
		{
			name:    "should forbid patients from the patient list",
			request: request{method: http.MethodGet, target: "/api/v1/patients", token: "patient"},
			want:    http.StatusForbidden,
		},
		{
			name:    "should return the patient history",
			request: request{method: http.MethodGet, target: "/api/v1/patients/1/history"},
			want:    http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter()
			for _, before := range tt.before {
				require.Equal(t, http.StatusOK, before.do(router).Code)
			}
			rr := tt.request.do(router)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			if tt.wantKind != "" {
				var body struct {
					Kind string `json:"kind"`
				}
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.Equal(t, tt.wantKind, body.Kind)
			}
		})
	}
}

func TestHTTPHandlersMove(t *testing.T) {
	router, store := newTestRouter()
	require.Equal(t, http.StatusOK, request{method: http.MethodPut, target: "/api/v1/calendar/selection", body: `{"id":"1"}`}.do(router).Code)

	rr := request{method: http.MethodPost, target: "/api/v1/calendar/moves", body: `{"direction":"later"}`}.do(router)
	require.Equal(t, http.StatusOK, rr.Code)

	var response actionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "Appointment moved to Jan 21, 2099 at 10:30 AM", response.Notice.Message)
	assert.Empty(t, response.Calendar.SelectedID)

	moved, err := store.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "10:30", moved.Time)
}

func TestHTTPHandlersStoreFailure(t *testing.T) {
	router, store := newTestRouter()
	require.Equal(t, http.StatusOK, request{method: http.MethodGet, target: "/api/v1/calendar"}.do(router).Code)
	store.SetFailure(appointments.OpUpdateStatus, errors.New("connection reset"))

	rr := request{method: http.MethodPut, target: "/api/v1/calendar/appointments/1/status", body: `{"status":"confirmed"}`}.do(router)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body struct {
		Detail string `json:"detail"`
		Kind   string `json:"kind"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "StoreUnavailable", body.Kind)
	assert.Equal(t, "Failed to update appointment. Please try again.", body.Detail)
}

func TestHTTPHandlersCalendar(t *testing.T) {
	router, _ := newTestRouter()

	rr := request{method: http.MethodGet, target: "/api/v1/calendar?view=day&date=2099-01-21"}.do(router)
	require.Equal(t, http.StatusOK, rr.Code)
	var state State
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&state))
	assert.Equal(t, "2099-01-21", state.Date)
	require.Len(t, state.Events, 2)
	assert.Equal(t, "1", state.Events[0].ID)

	rr = request{method: http.MethodGet, target: "/api/v1/calendar?navigate=prev&show_past=true"}.do(router)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&state))
	assert.Equal(t, "2099-01-20", state.Date, "the view settings are kept between requests")
	assert.True(t, state.ShowPast)
}

func TestHTTPHandlersPatientHistory(t *testing.T) {
	router, _ := newTestRouter()

	rr := request{method: http.MethodGet, target: "/api/v1/patients/1/history"}.do(router)
	require.Equal(t, http.StatusOK, rr.Code)
	var history []prescriptions.HistoryEntry
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&history))
	require.Len(t, history, 2, "only the doctor's own appointments with the patient")
	assert.Equal(t, "1", history[0].Appointment.ID)
	assert.Nil(t, history[0].Prescription)
	assert.Equal(t, "4", history[1].Appointment.ID)
	require.NotNil(t, history[1].Prescription)
	assert.Equal(t, "Hypertension and mild chest pain", history[1].Prescription.Diagnosis)
}

func TestHTTPHandlersListPatients(t *testing.T) {
	router, _ := newTestRouter()

	rr := request{method: http.MethodGet, target: "/api/v1/patients"}.do(router)
	require.Equal(t, http.StatusOK, rr.Code)
	var patients []appointments.PatientSummary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&patients))
	names := make([]string, 0, len(patients))
	for _, patient := range patients {
		names = append(names, patient.Name)
	}
	assert.Equal(t, []string{"Alice Johnson", "Bob Wilson", "Carol Davis", "David Miller"}, names, "only the doctor's own patients")
	assert.Equal(t, 2, patients[0].Appointments)
	assert.Equal(t, 1, patients[0].TotalVisits)
	assert.Equal(t, "2099-01-18", patients[0].LastVisit)

	rr = request{method: http.MethodGet, target: "/api/v1/patients?q=CAROL"}.do(router)
	require.Equal(t, http.StatusOK, rr.Code)
	patients = nil
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&patients))
	require.Len(t, patients, 1)
	assert.Equal(t, "3", patients[0].ID)
}
