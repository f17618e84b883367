package calendar

import (
	"strings"
	"time"
)

type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"

	DefaultView = ViewMonth
)

// ParseView parses the given string into a view. An empty string is the default view.
func ParseView(s string) (View, error) {
	switch view := View(strings.ToLower(strings.TrimSpace(s))); view {
	case "":
		return DefaultView, nil
	case ViewDay, ViewWeek, ViewMonth:
		return view, nil
	}
	return "", ErrInvalidView
}

type Navigation string

const (
	NavigatePrev  Navigation = "prev"
	NavigateNext  Navigation = "next"
	NavigateToday Navigation = "today"
)

// ParseNavigation parses the given string into a navigation action.
func ParseNavigation(s string) (Navigation, error) {
	switch nav := Navigation(strings.ToLower(strings.TrimSpace(s))); nav {
	case NavigatePrev, NavigateNext, NavigateToday:
		return nav, nil
	}
	return "", ErrInvalidNavigation
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Range returns the half-open interval [from, to) shown by the view around the anchor. Weeks
// start on Sunday.
func Range(view View, anchor time.Time) (from, to time.Time) {
	day := startOfDay(anchor)
	switch view {
	case ViewDay:
		return day, day.AddDate(0, 0, 1)
	case ViewWeek:
		from = day.AddDate(0, 0, -int(day.Weekday()))
		return from, from.AddDate(0, 0, 7)
	default:
		from = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return from, from.AddDate(0, 1, 0)
	}
}

// Navigate moves the anchor one view away, or back to today. Month steps land on the first day
// of the month so short months never skip one.
func Navigate(view View, anchor time.Time, nav Navigation, today time.Time) (time.Time, error) {
	step := 0
	switch nav {
	case NavigateToday:
		return startOfDay(today), nil
	case NavigatePrev:
		step = -1
	case NavigateNext:
		step = 1
	default:
		return time.Time{}, ErrInvalidNavigation
	}
	day := startOfDay(anchor)
	switch view {
	case ViewDay:
		return day.AddDate(0, 0, step), nil
	case ViewWeek:
		return day.AddDate(0, 0, 7*step), nil
	case ViewMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return first.AddDate(0, step, 0), nil
	}
	return time.Time{}, ErrInvalidView
}

// Within keeps the events that overlap [from, to).
func Within(events []Event, from, to time.Time) []Event {
	result := make([]Event, 0, len(events))
	for _, event := range events {
		if event.Start.Before(to) && event.End.After(from) {
			result = append(result, event)
		}
	}
	return result
}
