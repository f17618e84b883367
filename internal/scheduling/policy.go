// Package scheduling contains the clinic scheduling policy: the rules deciding whether an
// appointment may be moved to a new start time, and the move primitives built on them.
package scheduling

import (
	"time"
)

const (
	// ClinicOpenHour is the first hour of the day an appointment may start at.
	ClinicOpenHour = 8
	// ClinicCloseHour is the hour the clinic closes. No appointment may start at or after it.
	ClinicCloseHour = 18
	// SlotDuration is the fixed duration of every appointment, and the granularity of time moves.
	SlotDuration = 30 * time.Minute
)

// WithinClinicHours checks if an appointment may start at the given instant.
func WithinClinicHours(start time.Time) bool {
	hour := start.Hour()
	return hour >= ClinicOpenHour && hour < ClinicCloseHour
}

// CanReschedule checks if an appointment starting at current may be moved to proposed.
//
// Rules are evaluated in order: an appointment whose start is strictly before now cannot be
// moved at all, then the proposed start must fall within clinic hours.
func CanReschedule(current, proposed, now time.Time) error {
	if current.Before(now) {
		return ErrPastAppointment
	}
	if !WithinClinicHours(proposed) {
		return ErrOutsideClinicHours
	}
	return nil
}
