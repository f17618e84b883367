// Package apierrors contains the errors exposed by the HTTP API, as generic API errors carrying
// the HTTP status that must be returned, and field validation errors.
package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// APIError represents an error that must be returned to the API client.
type APIError struct {
	Detail     string `json:"detail"`
	Kind       string `json:"kind,omitempty"`
	statusCode int
}

// APIErrorOption determines the Functional Options used to create a new APIError.
type APIErrorOption func(apiError *APIError)

// WithDetail sets the message returned to the client.
func WithDetail(detail string) APIErrorOption {
	return func(apiError *APIError) {
		apiError.Detail = detail
	}
}

// WithKind sets a machine readable classification of the error.
func WithKind(kind string) APIErrorOption {
	return func(apiError *APIError) {
		apiError.Kind = kind
	}
}

// WithHTTPStatusCode sets the HTTP status associated to the error.
func WithHTTPStatusCode(statusCode int) APIErrorOption {
	return func(apiError *APIError) {
		apiError.statusCode = statusCode
	}
}

// NewAPIError creates a new APIError, by default associated to the status 500.
func NewAPIError(opts ...APIErrorOption) *APIError {
	apiError := &APIError{statusCode: http.StatusInternalServerError}
	for _, opt := range opts {
		opt(apiError)
	}
	return apiError
}

// HTTPStatusCode returns the HTTP status associated to the error.
func (a APIError) HTTPStatusCode() int {
	return a.statusCode
}

func (a APIError) Error() string {
	return a.Detail
}

// ValidationError represents a field that failed validation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// NewValidator creates a struct validator reporting fields by their JSON names.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return validate
}

// FromValidator converts the first failure reported by the validator package into a
// ValidationError. Errors of any other kind are returned untouched.
func FromValidator(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}
	fieldError := fieldErrors[0]
	return NewValidationError(fieldName(fieldError.Namespace()), message(fieldError))
}

// fieldName drops the root struct name from the namespace, e.g. Request.medications[0].name
// becomes medications[0].name.
func fieldName(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "required"
	case "min":
		if fieldError.Kind().String() == "slice" {
			return fmt.Sprintf("at least %s item(s) required", fieldError.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fieldError.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fieldError.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fieldError.Param())
	case "email":
		return "invalid email"
	case "datetime":
		return fmt.Sprintf("must match the layout %s", fieldError.Param())
	}
	return "invalid"
}

// Write encodes the given error as the response body, along with its HTTP status. Errors that
// are not meant to reach the client only produce a 500 status.
func Write(w http.ResponseWriter, err error) {
	var apiErr *APIError
	var validationErr *ValidationError
	switch {
	case errors.As(err, &apiErr):
		w.WriteHeader(apiErr.HTTPStatusCode())
		_ = json.NewEncoder(w).Encode(apiErr)
	case errors.As(err, &validationErr):
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(validationErr)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}
