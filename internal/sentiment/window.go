package sentiment

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoData means the index holds no document with a usable timestamp.
var ErrNoData = errors.New("sentiment: no documents in index")

// OutOfScopeError reports that the latest document falls outside the focus month.
type OutOfScopeError struct {
	Month  time.Month
	Latest time.Time
}

func (e *OutOfScopeError) Error() string {
	return fmt.Sprintf("sentiment: latest document %s is not in %s", e.Latest.Format(time.RFC3339), e.Month)
}

// Message is the client-facing description of the outcome.
func (e *OutOfScopeError) Message() string {
	return fmt.Sprintf("Latest document is not in %s", e.Month)
}

// DayWindow is the half-open local calendar day [Start, End).
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// ResolveWindow returns the local day in loc containing latest.
// End is always exactly 24 hours after Start.
func ResolveWindow(latest time.Time, loc *time.Location) DayWindow {
	local := latest.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return DayWindow{Start: start, End: start.Add(24 * time.Hour)}
}

// Date formats the window's day as YYYY-MM-DD.
func (w DayWindow) Date() string {
	return w.Start.Format(time.DateOnly)
}

// Contains reports whether t falls inside the half-open window.
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// checkMonth enforces the focus month. A zero month accepts every date.
func checkMonth(latest time.Time, loc *time.Location, month time.Month) error {
	if month == 0 {
		return nil
	}
	if local := latest.In(loc); local.Month() != month {
		return &OutOfScopeError{Month: month, Latest: local}
	}
	return nil
}
