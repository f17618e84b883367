package scheduling

import (
	"strings"
	"time"
)

// Direction determines where an appointment is moved to.
type Direction string

const (
	Earlier Direction = "earlier"
	Later   Direction = "later"
	Back    Direction = "back"
	Forward Direction = "forward"
)

// keyBindings maps the calendar keyboard shortcuts to directions.
var keyBindings = map[string]Direction{
	"arrowup":    Earlier,
	"arrowdown":  Later,
	"arrowleft":  Back,
	"arrowright": Forward,
}

// ParseDirection parses a direction name or one of the arrow key names bound to it.
func ParseDirection(s string) (Direction, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if d, isKey := keyBindings[key]; isKey {
		return d, nil
	}
	switch d := Direction(key); d {
	case Earlier, Later, Back, Forward:
		return d, nil
	}
	return "", ErrInvalidDirection
}

// Propose computes the start an appointment would have after being moved in the given direction.
// Day moves keep the wall clock time, even across daylight saving changes.
func Propose(start time.Time, direction Direction) (time.Time, error) {
	switch direction {
	case Earlier:
		return start.Add(-SlotDuration), nil
	case Later:
		return start.Add(SlotDuration), nil
	case Back:
		return start.AddDate(0, 0, -1), nil
	case Forward:
		return start.AddDate(0, 0, 1), nil
	}
	return time.Time{}, ErrInvalidDirection
}

// Move computes the new start of an appointment moved in the given direction, validating it
// against the scheduling policy.
func Move(start time.Time, direction Direction, now time.Time) (time.Time, error) {
	proposed, err := Propose(start, direction)
	if err != nil {
		return time.Time{}, err
	}
	if err = CanReschedule(start, proposed, now); err != nil {
		return time.Time{}, err
	}
	return proposed, nil
}
