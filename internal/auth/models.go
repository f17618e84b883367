package auth

import (
	"clinic-scheduler/internal/apierrors"

	"github.com/google/uuid"
)

type Role string

const (
	PatientRole Role = "PATIENT"
	DoctorRole  Role = "DOCTOR"
)

var validate = apierrors.NewValidator()

// Credentials is the body of a sign in request.
type Credentials struct {
	Email    string `json:"email,omitempty" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"required"`
}

func (c Credentials) Validate() error {
	return apierrors.FromValidator(validate.Struct(c))
}

// Tokens is the pair handed out on sign in. It is also the body of a refresh request, which
// must carry the grant_type refresh_token.
type Tokens struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
	GrantType    string `json:"grant_type,omitempty" validate:"required,eq=refresh_token"`
}

func (t Tokens) Validate() error {
	return apierrors.FromValidator(validate.Struct(t))
}

// User is an account. ProfileID identifies the doctor or the patient the account acts as, and is
// the ID appointments and prescriptions refer to.
type User struct {
	ID        int64     `json:"-" dbfield:"id"`
	UUID      uuid.UUID `json:"uuid" dbfield:"uuid"`
	Email     string    `json:"email" dbfield:"email"`
	Password  string    `json:"password,omitempty" dbfield:"password"`
	Role      Role      `json:"role" dbfield:"role"`
	ProfileID string    `json:"profile_id" dbfield:"profile_id"`
	Name      string    `json:"name" dbfield:"name"`
	Phone     string    `json:"phone,omitempty" dbfield:"phone"`
}
