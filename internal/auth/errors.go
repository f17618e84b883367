package auth

import "errors"

// ErrInvalidToken is the reason given when a token cannot be parsed, is expired, or was issued
// for something else.
var ErrInvalidToken = errors.New("invalid token")

// UnauthorizedError is returned when the caller could not be identified. Reason is only logged,
// the client always gets a bare 401.
type UnauthorizedError struct {
	Reason error
}

func NewUnauthorizedError() *UnauthorizedError {
	return &UnauthorizedError{}
}

func unauthorized(reason error) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

func (u UnauthorizedError) Error() string {
	if u.Reason == nil {
		return "not authorized"
	}
	return "not authorized: " + u.Reason.Error()
}

func (u UnauthorizedError) Unwrap() error {
	return u.Reason
}
