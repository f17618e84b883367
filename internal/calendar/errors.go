package calendar

type Error string

const (
	ErrInvalidView       Error = "invalid view - e.g. day, week, month"
	ErrInvalidNavigation Error = "invalid navigation - e.g. prev, next, today"
	ErrInvalidDate       Error = "invalid date reference - e.g. 2025-01-20"
)

func (e Error) Error() string {
	return string(e)
}
