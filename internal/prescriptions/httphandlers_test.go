package prescriptions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinic-scheduler/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthorizer struct {
	user *auth.User
}

func (m mockAuthorizer) ValidateToken(context.Context, string) (*auth.User, error) {
	if m.user == nil {
		return nil, auth.NewUnauthorizedError()
	}
	return m.user, nil
}

func (m mockAuthorizer) RefreshTokens(context.Context, auth.Tokens) (*auth.Tokens, error) {
	return nil, errors.New("not supported")
}

func (m mockAuthorizer) GetAuthenticatedUser(ctx context.Context) (auth.User, error) {
	user, found := auth.UserFromContext(ctx)
	if !found {
		return auth.User{}, auth.NewUnauthorizedError()
	}
	return user, nil
}

var doctor = &auth.User{ID: 1, Email: "doctor@example.com", Role: auth.DoctorRole, ProfileID: "1"}

func newTestRouter(t *testing.T, user *auth.User) *chi.Mux {
	t.Helper()
	appointmentStore := testAppointments()
	records, err := appointmentStore.ListByPatient(context.Background(), "1")
	require.NoError(t, err)
	service := newTestService(NewMemoryStore(DemoPrescriptions(records)...))
	router := chi.NewRouter()
	Setup(router, zerolog.Nop(), mockAuthorizer{user: user}, service)
	return router
}

func TestHTTPHandlers(t *testing.T) {
	validBody := `{"appointment_id":"1","diagnosis":"Hypertension","instructions":"Monitor blood pressure daily.",` +
		`"medications":[{"name":"Amlodipine","dosage":"5mg","frequency":"Once daily","duration":"30 days","quantity":30}]}`
	tests := []struct {
		name    string
		user    *auth.User
		method  string
		target  string
		body    string
		want    int
		wantIDs []string
	}{
		{name: "should require authentication", method: http.MethodGet, target: "/api/v1/prescriptions", want: http.StatusUnauthorized},
		{
			name:   "should forbid patients",
			user:   &auth.User{Role: auth.PatientRole, ProfileID: "1"},
			method: http.MethodGet,
			target: "/api/v1/prescriptions",
			want:   http.StatusForbidden,
		},
		{name: "should list the doctor's prescriptions", user: doctor, method: http.MethodGet, target: "/api/v1/prescriptions", want: http.StatusOK, wantIDs: []string{"1"}},
		{name: "should search by medication", user: doctor, method: http.MethodGet, target: "/api/v1/prescriptions?q=AMLO", want: http.StatusOK, wantIDs: []string{"1"}},
		{name: "should not find other doctors' prescriptions", user: doctor, method: http.MethodGet, target: "/api/v1/prescriptions?q=warfarin", want: http.StatusOK, wantIDs: []string{}},
		{name: "should filter by status", user: doctor, method: http.MethodGet, target: "/api/v1/prescriptions?status=completed", want: http.StatusOK, wantIDs: []string{}},
		{name: "should filter by patient", user: doctor, method: http.MethodGet, target: "/api/v1/prescriptions?patient_id=2", want: http.StatusOK, wantIDs: []string{}},
		{name: "should reject an unknown status filter", user: doctor, method: http.MethodGet, target: "/api/v1/prescriptions?status=expired", want: http.StatusBadRequest},
		{name: "should get a prescription", user: doctor, method: http.MethodGet, target: "/api/v1/prescriptions/1", want: http.StatusOK},
		{name: "should hide another doctor's prescription", user: doctor, method: http.MethodGet, target: "/api/v1/prescriptions/3", want: http.StatusNotFound},
		{name: "should not get an unknown prescription", user: doctor, method: http.MethodGet, target: "/api/v1/prescriptions/99", want: http.StatusNotFound},
		{name: "should write a prescription", user: doctor, method: http.MethodPost, target: "/api/v1/prescriptions", body: validBody, want: http.StatusCreated},
		{
			name:   "should reject a short diagnosis",
			user:   doctor,
			method: http.MethodPost,
			target: "/api/v1/prescriptions",
			body:   strings.Replace(validBody, "Hypertension", "Flu", 1),
			want:   http.StatusBadRequest,
		},
		{
			name:   "should not prescribe for an appointment that is not completed",
			user:   doctor,
			method: http.MethodPost,
			target: "/api/v1/prescriptions",
			body:   strings.Replace(validBody, `"appointment_id":"1"`, `"appointment_id":"2"`, 1),
			want:   http.StatusUnprocessableEntity,
		},
		{name: "should reject a malformed prescription", user: doctor, method: http.MethodPost, target: "/api/v1/prescriptions", body: `{`, want: http.StatusBadRequest},
		{name: "should complete a prescription", user: doctor, method: http.MethodPut, target: "/api/v1/prescriptions/1/status", body: `{"status":"completed"}`, want: http.StatusOK},
		{name: "should not reactivate a prescription", user: doctor, method: http.MethodPut, target: "/api/v1/prescriptions/1/status", body: `{"status":"active"}`, want: http.StatusConflict},
		{name: "should reject an unknown status", user: doctor, method: http.MethodPut, target: "/api/v1/prescriptions/1/status", body: `{"status":"expired"}`, want: http.StatusBadRequest},
		{name: "should not change another doctor's prescription", user: doctor, method: http.MethodPut, target: "/api/v1/prescriptions/3/status", body: `{"status":"completed"}`, want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.user)
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer token")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			if tt.wantIDs == nil {
				return
			}
			var got []Prescription
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFilter(t *testing.T) {
	list := []Prescription{
		{ID: "1", DoctorID: "1", PatientName: "Alice Johnson", Diagnosis: "Hypertension", Status: StatusActive, Medications: Medications{{Name: "Amlodipine"}}},
		{ID: "2", DoctorID: "1", PatientName: "Bob Wilson", Diagnosis: "Seasonal allergies", Status: StatusCompleted, Medications: Medications{{Name: "Cetirizine"}}},
		{ID: "3", DoctorID: "2", PatientName: "Alice Johnson", Diagnosis: "Atrial fibrillation", Status: StatusActive},
	}
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "should keep everything", filter: Filter{}, want: []string{"1", "2", "3"}},
		{name: "should match the patient name", filter: Filter{Term: "alice"}, want: []string{"1", "3"}},
		{name: "should match the diagnosis", filter: Filter{Term: "ALLERG"}, want: []string{"2"}},
		{name: "should match a medication", filter: Filter{Term: " cetirizine "}, want: []string{"2"}},
		{name: "should match the status", filter: Filter{Status: StatusActive}, want: []string{"1", "3"}},
		{name: "should combine the fields", filter: Filter{DoctorID: "1", Term: "alice", Status: StatusActive}, want: []string{"1"}},
		{name: "should match nothing", filter: Filter{Term: "insulin"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]string, 0)
			for _, p := range tt.filter.Apply(list) {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
