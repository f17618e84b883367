package auth

import (
	"fmt"

	"github.com/google/uuid"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password"

// DemoUsers creates the accounts used when the server runs without a database: one doctor and one
// patient, matching the demo appointments.
func DemoUsers(doctorProfileID, patientProfileID string) ([]User, error) {
	hash, err := HashPassword(DemoPassword)
	if err != nil {
		return nil, fmt.Errorf("could not hash the demo password: %w", err)
	}
	return []User{
		{
			ID:        1,
			UUID:      uuid.MustParse("7d6f1d4e-2b53-4c35-9d4f-0f0b6f1e8a01"),
			Email:     "doctor@example.com",
			Password:  hash,
			Role:      DoctorRole,
			ProfileID: doctorProfileID,
			Name:      "Dr. John Smith",
			Phone:     "+1234567890",
		},
		{
			ID:        2,
			UUID:      uuid.MustParse("7d6f1d4e-2b53-4c35-9d4f-0f0b6f1e8a02"),
			Email:     "patient@example.com",
			Password:  hash,
			Role:      PatientRole,
			ProfileID: patientProfileID,
			Name:      "Alice Johnson",
			Phone:     "+1234567891",
		},
	}, nil
}
