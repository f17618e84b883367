package scheduling

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2099, 1, 19, 12, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return time.Date(2099, 1, day, hour, minute, 0, 0, time.UTC)
}

func TestCanReschedule(t *testing.T) {
	tests := []struct {
		name     string
		current  time.Time
		proposed time.Time
		want     error
	}{
		{
			name:     "should accept a proposal at the opening hour",
			current:  at(20, 8, 30),
			proposed: at(20, 8, 0),
			want:     nil,
		},
		{
			name:     "should accept the last slot of the day",
			current:  at(20, 17, 0),
			proposed: at(20, 17, 30),
			want:     nil,
		},
		{
			name:     "should reject a proposal at the closing hour",
			current:  at(20, 17, 30),
			proposed: at(20, 18, 0),
			want:     ErrOutsideClinicHours,
		},
		{
			name:     "should reject a proposal before the opening hour",
			current:  at(20, 8, 0),
			proposed: at(20, 7, 30),
			want:     ErrOutsideClinicHours,
		},
		{
			name:     "should reject moving an appointment that already started",
			current:  now.Add(-time.Minute),
			proposed: at(20, 10, 0),
			want:     ErrPastAppointment,
		},
		{
			name:     "should check the past rule before clinic hours",
			current:  now.Add(-time.Hour),
			proposed: at(20, 20, 0),
			want:     ErrPastAppointment,
		},
		{
			name:     "should accept an appointment starting exactly now",
			current:  now,
			proposed: now.Add(SlotDuration),
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CanReschedule(tt.current, tt.proposed, now); !errors.Is(err, tt.want) && err != tt.want {
				t.Errorf("CanReschedule() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCanRescheduleHours(t *testing.T) {
	current := at(20, 12, 0)
	for hour := 0; hour < 24; hour++ {
		for _, minute := range []int{0, 30} {
			proposed := at(21, hour, minute)
			err := CanReschedule(current, proposed, now)
			wantReject := hour < 8 || hour >= 18
			if (err != nil) != wantReject {
				t.Errorf("CanReschedule(%s) error = %v, want rejection %v", proposed.Format("15:04"), err, wantReject)
			}
		}
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		direction Direction
		want      time.Time
		wantErr   error
	}{
		{
			name:      "should move 30 minutes later",
			start:     at(20, 10, 0),
			direction: Later,
			want:      at(20, 10, 30),
		},
		{
			name:      "should move 30 minutes earlier",
			start:     at(20, 10, 0),
			direction: Earlier,
			want:      at(20, 9, 30),
		},
		{
			name:      "should move to the next day keeping the time",
			start:     at(20, 10, 0),
			direction: Forward,
			want:      at(21, 10, 0),
		},
		{
			name:      "should move to the previous day keeping the time",
			start:     at(21, 10, 0),
			direction: Back,
			want:      at(20, 10, 0),
		},
		{
			name:      "should reject moving later past closing time",
			start:     at(20, 17, 45),
			direction: Later,
			wantErr:   ErrOutsideClinicHours,
		},
		{
			name:      "should reject moving earlier before opening time",
			start:     at(20, 8, 0),
			direction: Earlier,
			wantErr:   ErrOutsideClinicHours,
		},
		{
			name:      "should reject moving a past appointment",
			start:     at(19, 9, 0),
			direction: Forward,
			wantErr:   ErrPastAppointment,
		},
		{
			name:      "should reject an unknown direction",
			start:     at(20, 10, 0),
			direction: Direction("sideways"),
			wantErr:   ErrInvalidDirection,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Move(tt.start, tt.direction, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Move() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && !got.Equal(tt.want) {
				t.Errorf("Move() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMoveRoundTrip(t *testing.T) {
	pairs := [][2]Direction{{Earlier, Later}, {Later, Earlier}, {Back, Forward}, {Forward, Back}}
	start := at(22, 11, 30)
	for _, pair := range pairs {
		moved, err := Move(start, pair[0], now)
		if err != nil {
			t.Fatalf("Move(%s) error = %v", pair[0], err)
		}
		restored, err := Move(moved, pair[1], now)
		if err != nil {
			t.Fatalf("Move(%s) error = %v", pair[1], err)
		}
		if !restored.Equal(start) {
			t.Errorf("%s then %s = %s, want %s", pair[0], pair[1], restored, start)
		}
	}
}

func TestMoveAcrossDaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone database not available")
	}
	// DST starts on 2099-03-08 in New York.
	start := time.Date(2099, 3, 7, 9, 0, 0, 0, loc)
	got, err := Move(start, Forward, time.Date(2099, 1, 1, 0, 0, 0, 0, loc))
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if got.Hour() != 9 || got.Day() != 8 {
		t.Errorf("Move() = %s, want 2099-03-08 09:00", got)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"later", Later, false},
		{" Earlier ", Earlier, false},
		{"ArrowUp", Earlier, false},
		{"ArrowDown", Later, false},
		{"ArrowLeft", Back, false},
		{"ArrowRight", Forward, false},
		{"forward", Forward, false},
		{"Escape", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDirection() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDirection() = %s, want %s", got, tt.want)
			}
		})
	}
}
