// Package calendar projects appointments into calendar events and classifies them for display.
// Nothing here talks to a store: every function works on the records it is given.
package calendar

import (
	"slices"
	"time"

	"clinic-scheduler/internal/appointments"
)

// Event is an appointment placed on the calendar. It is rebuilt on every projection.
type Event struct {
	ID       string                   `json:"id"`
	Title    string                   `json:"title"`
	Start    time.Time                `json:"start"`
	End      time.Time                `json:"end"`
	Resource appointments.Appointment `json:"resource"`
}

// ViewOptions controls which appointments become events.
type ViewOptions struct {
	ShowPast bool
	Now      time.Time
	Location *time.Location
}

// Classification holds the display flags of an event.
type Classification struct {
	IsPast     bool `json:"is_past"`
	IsToday    bool `json:"is_today"`
	IsSelected bool `json:"is_selected"`
}

// ClassifiedEvent is an event along with its display flags.
type ClassifiedEvent struct {
	Event
	Classification
}

// NewEvent builds the event of the given appointment.
func NewEvent(appointment appointments.Appointment, loc *time.Location) (Event, error) {
	start, err := appointment.Start(loc)
	if err != nil {
		return Event{}, err
	}
	end, _ := appointment.End(loc)
	return Event{
		ID:       appointment.ID,
		Title:    appointment.PatientName,
		Start:    start,
		End:      end,
		Resource: appointment,
	}, nil
}

// Project builds the events of the given appointments, keeping their order. Unless ShowPast is
// set, appointments starting before Now are left out. Appointments whose date or time cannot be
// read are skipped.
func Project(records []appointments.Appointment, opts ViewOptions) []Event {
	events := make([]Event, 0, len(records))
	for _, record := range records {
		event, err := NewEvent(record, opts.Location)
		if err != nil {
			continue
		}
		if !opts.ShowPast && event.Start.Before(opts.Now) {
			continue
		}
		events = append(events, event)
	}
	return events
}

// Classify computes the display flags of the event. Today is judged in the location of now.
func Classify(event Event, now time.Time, selectedID string) Classification {
	start := event.Start.In(now.Location())
	return Classification{
		IsPast:     event.Start.Before(now),
		IsToday:    sameDay(start, now),
		IsSelected: selectedID != "" && event.ID == selectedID,
	}
}

// ClassifyAll classifies every event.
func ClassifyAll(events []Event, now time.Time, selectedID string) []ClassifiedEvent {
	classified := make([]ClassifiedEvent, 0, len(events))
	for _, event := range events {
		classified = append(classified, ClassifiedEvent{Event: event, Classification: Classify(event, now, selectedID)})
	}
	return classified
}

// SortByStartDesc returns the events ordered from the latest to the earliest start. Events
// starting at the same instant keep their relative order.
func SortByStartDesc(events []Event) []Event {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		return b.Start.Compare(a.Start)
	})
	return sorted
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
