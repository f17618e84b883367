package scheduling

type Error string

const (
	ErrPastAppointment    Error = "cannot move past appointments"
	ErrOutsideClinicHours Error = "appointments can only be scheduled between 8 AM and 6 PM"
	ErrInvalidDirection   Error = "invalid direction - e.g. earlier, later, back, forward"
)

func (e Error) Error() string {
	return string(e)
}
