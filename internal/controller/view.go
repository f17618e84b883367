package controller

import (
	"time"

	"clinic-scheduler/internal/appointments"
	"clinic-scheduler/internal/calendar"
)

// State is what the doctor's calendar shows.
type State struct {
	View       calendar.View              `json:"view"`
	Date       string                     `json:"date"`
	From       time.Time                  `json:"from"`
	To         time.Time                  `json:"to"`
	ShowPast   bool                       `json:"show_past"`
	SelectedID string                     `json:"selected_id,omitempty"`
	Busy       bool                       `json:"busy"`
	Events     []calendar.ClassifiedEvent `json:"events"`
	Stats      calendar.DoctorStats       `json:"stats"`
}

func (s *Session) viewOptions(now time.Time) calendar.ViewOptions {
	return calendar.ViewOptions{ShowPast: s.showPast, Now: now, Location: s.location}
}

// Events projects every appointment of the doctor, whatever the view, and classifies the events.
func (s *Session) Events() []calendar.ClassifiedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().In(s.location)
	return calendar.ClassifyAll(calendar.Project(s.records, s.viewOptions(now)), now, s.selectedID)
}

// State returns the events of the current view along with the view settings.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().In(s.location)
	from, to := calendar.Range(s.view, s.anchor)
	events := calendar.Within(calendar.Project(s.records, s.viewOptions(now)), from, to)
	return State{
		View:       s.view,
		Date:       s.anchor.Format(appointments.DateLayout),
		From:       from,
		To:         to,
		ShowPast:   s.showPast,
		SelectedID: s.selectedID,
		Busy:       s.busy,
		Events:     calendar.ClassifyAll(events, now, s.selectedID),
		Stats:      calendar.NewDoctorStats(s.records, now, s.location),
	}
}

func (s *Session) SetView(view calendar.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
}

// Focus moves the view to the given day.
func (s *Session) Focus(day time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = day.In(s.location)
}

func (s *Session) SetShowPast(showPast bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showPast = showPast
}

// Navigate moves the view one step, or back to today, and clears the selection.
func (s *Session) Navigate(nav calendar.Navigation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	anchor, err := calendar.Navigate(s.view, s.anchor, nav, s.now().In(s.location))
	if err != nil {
		return err
	}
	s.anchor = anchor
	s.selectedID = ""
	return nil
}
