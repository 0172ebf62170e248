// Package dates centralizes calendar arithmetic. Units carry dates with no
// time-of-day component, so all comparisons here work on year-month-day in a
// single reference location to keep bucket boundaries stable near midnight.
package dates

import "time"

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

// Midnight returns t truncated to the start of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DaysBetween returns the whole calendar days elapsed from `from` to `to`,
// evaluated in loc. The result is negative when `from` is after `to`.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	// Re-anchoring both days in UTC sidesteps DST-shortened days.
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports whether a and b fall in the same calendar month and year
// in loc, regardless of day.
func SameMonth(a, b time.Time, loc *time.Location) bool {
	ay, am, _ := a.In(loc).Date()
	by, bm, _ := b.In(loc).Date()
	return ay == by && am == bm
}

// Parse reads a "2006-01-02" date string as midnight in loc.
func Parse(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(Layout, value, loc)
}

// Format renders t as a "2006-01-02" date string in loc.
func Format(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(Layout)
}
