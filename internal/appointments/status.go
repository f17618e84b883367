package appointments

import (
	"time"

	"clinic-scheduler/internal/scheduling"
)

// Actor is who requests a status change.
type Actor string

const (
	ActorDoctor  Actor = "doctor"
	ActorPatient Actor = "patient"
)

// transitions lists, for each status, the statuses it may change to and who may request it.
var transitions = map[Status]map[Status][]Actor{
	StatusPending: {
		StatusConfirmed: {ActorDoctor},
		StatusCancelled: {ActorDoctor, ActorPatient},
	},
	StatusConfirmed: {
		StatusCancelled: {ActorDoctor, ActorPatient},
		StatusCompleted: {ActorDoctor},
	},
}

// CanTransition checks if the actor may change an appointment from one status to another.
// Changing to the current status is not a transition.
func CanTransition(from, to Status, actor Actor) bool {
	for _, allowed := range transitions[from][to] {
		if allowed == actor {
			return true
		}
	}
	return false
}

// Transition returns a copy of the appointment with the new status. Patients may only cancel
// appointments that have not started yet.
func Transition(a Appointment, to Status, actor Actor, now time.Time, loc *time.Location) (Appointment, error) {
	if !CanTransition(a.Status, to, actor) {
		return Appointment{}, &InvalidTransitionError{From: a.Status, To: to, Actor: actor}
	}
	if actor == ActorPatient {
		start, err := a.Start(loc)
		if err != nil {
			return Appointment{}, err
		}
		if !start.After(now) {
			return Appointment{}, scheduling.ErrPastAppointment
		}
	}
	a.Status = to
	return a, nil
}
