package prescriptions

type Error string

const (
	ErrNotFound                Error = "prescription not found"
	ErrInvalidStatus           Error = "invalid status - e.g. active, completed, cancelled"
	ErrAppointmentNotCompleted Error = "prescriptions can only be written for completed appointments"
	ErrAppointmentNotFound     Error = "appointment not found"
	ErrStatusLocked            Error = "only active prescriptions can change status"
)

func (e Error) Error() string {
	return string(e)
}
