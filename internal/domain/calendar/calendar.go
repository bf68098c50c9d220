// Package calendar works with civil dates. A date is a time.Time at UTC midnight;
// every fact, window and withdrawal boundary in the cooperative is compared at day precision.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the wire format for dates (YYYY-MM-DD).
const Layout = "2006-01-02"

// Date builds the civil date y-m-d.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to its civil date in t's own location.
func Day(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// Today returns the civil date of now as observed in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(now.In(loc))
}

// Parse reads a YYYY-MM-DD date.
func Parse(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FormatPtr renders an optional date; nil stays nil.
func FormatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Format(*t)
	return &s
}

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// Window is an inclusive [Start, End] range of dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the date of t falls in the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// String returns a string representation of the window.
func (w Window) String() string {
	return "[" + Format(w.Start) + ", " + Format(w.End) + "]"
}

// DayOf is the single-day window of d.
func DayOf(d time.Time) Window {
	day := Day(d)
	return Window{Start: day, End: day}
}

// WeekOf is the Monday-to-Sunday window containing d.
func WeekOf(d time.Time) Window {
	day := Day(d)
	daysSinceMonday := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -daysSinceMonday)
	return Window{Start: start, End: start.AddDate(0, 0, 6)}
}

// MonthOf is the calendar month containing d.
func MonthOf(d time.Time) Window {
	day := Day(d)
	start := Date(day.Year(), day.Month(), 1)
	// AddDate normalises December + 1 month into January of the next year.
	return Window{Start: start, End: start.AddDate(0, 1, -1)}
}

// Trailing is the window of the given number of days ending at d, e.g. Trailing(d, 30) = [d-30, d].
func Trailing(d time.Time, days int) Window {
	day := Day(d)
	return Window{Start: day.AddDate(0, 0, -days), End: day}
}
