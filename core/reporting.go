package core

import (
	"time"
)

// TimeWindow is an inclusive [Start, End] range of timestamps.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow validates and builds a TimeWindow.
// Both bounds are required and End must not be before Start.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return TimeWindow{}, ErrInvalidArgument
	}

	return TimeWindow{Start: start, End: end}, nil
}

// Contains reports whether t lies within the window, both bounds included.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ProfessionEarnings is the total price of work units attributed to one payee profession.
type ProfessionEarnings struct {
	Profession string
	Total      Money
}

// ClientTotal is the total a payer paid for work units.
type ClientTotal struct {
	PartyID   PartyID
	FirstName string
	LastName  string
	TotalPaid Money
}
