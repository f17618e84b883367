package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name       string
		opts       []APIErrorOption
		wantStatus int
		wantBody   string
	}{
		{
			name:       "should default to internal server error",
			opts:       nil,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"detail":""}`,
		},
		{
			name:       "should carry the given detail, kind and status",
			opts:       []APIErrorOption{WithDetail("doctor not found"), WithKind("NotFound"), WithHTTPStatusCode(http.StatusNotFound)},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"detail":"doctor not found","kind":"NotFound"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := NewAPIError(tt.opts...)
			if apiErr.HTTPStatusCode() != tt.wantStatus {
				t.Errorf("HTTPStatusCode() = %d, want %d", apiErr.HTTPStatusCode(), tt.wantStatus)
			}
			body, _ := json.Marshal(apiErr)
			if string(body) != tt.wantBody {
				t.Errorf("body = %s, want %s", body, tt.wantBody)
			}
		})
	}
}

func TestFromValidator(t *testing.T) {
	type item struct {
		Quantity int `json:"quantity" validate:"gt=0"`
	}
	type request struct {
		Diagnosis string `validate:"required,min=5"`
		Items     []item `validate:"required,min=1,dive"`
	}
	validate := validator.New()
	tests := []struct {
		name      string
		input     request
		wantField string
		wantMsg   string
	}{
		{
			name:      "should report a missing field",
			input:     request{Items: []item{{Quantity: 1}}},
			wantField: "Diagnosis",
			wantMsg:   "required",
		},
		{
			name:      "should report a short field",
			input:     request{Diagnosis: "flu", Items: []item{{Quantity: 1}}},
			wantField: "Diagnosis",
			wantMsg:   "must be at least 5 characters",
		},
		{
			name:      "should report a nested field",
			input:     request{Diagnosis: "influenza", Items: []item{{Quantity: 0}}},
			wantField: "Items[0].Quantity",
			wantMsg:   "must be greater than 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromValidator(validate.Struct(tt.input))
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("FromValidator() = %v, want a *ValidationError", err)
			}
			if validationErr.Field != tt.wantField || validationErr.Message != tt.wantMsg {
				t.Errorf("FromValidator() = %+v, want %s: %s", validationErr, tt.wantField, tt.wantMsg)
			}
		})
	}

	plain := errors.New("boom")
	if got := FromValidator(plain); got != plain {
		t.Errorf("FromValidator() should not touch other errors, got %v", got)
	}
}

func TestNewValidatorUsesJSONNames(t *testing.T) {
	type request struct {
		DoctorID string `json:"doctor_id,omitempty" validate:"required"`
	}
	err := FromValidator(NewValidator().Struct(request{}))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("FromValidator() = %v, want a *ValidationError", err)
	}
	if validationErr.Field != "doctor_id" {
		t.Errorf("field = %s, want doctor_id", validationErr.Field)
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "should write an api error",
			err:        NewAPIError(WithDetail("appointment not found"), WithKind("NotFound"), WithHTTPStatusCode(http.StatusNotFound)),
			wantStatus: http.StatusNotFound,
			wantBody:   "{\"detail\":\"appointment not found\",\"kind\":\"NotFound\"}\n",
		},
		{
			name:       "should write a validation error",
			err:        NewValidationError("diagnosis", "required"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "{\"field\":\"diagnosis\",\"message\":\"required\"}\n",
		},
		{
			name:       "should hide unexpected errors",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			Write(recorder, tt.err)
			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
			if recorder.Body.String() != tt.wantBody {
				t.Errorf("body = %s, want %s", recorder.Body.String(), tt.wantBody)
			}
		})
	}
}
