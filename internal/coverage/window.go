package coverage

import "time"

// Window is a half-open [Start, End) interval. Day windows run from local
// midnight to the next midnight so 23:59:59.999 still falls inside the day.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow normalizes an arbitrary instant to the boundaries of its local
// day in the given location.
func DayWindow(at time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	local := at.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// Contains reports whether the instant falls inside the window.
func (w Window) Contains(at time.Time) bool {
	return !at.Before(w.Start) && at.Before(w.End)
}
