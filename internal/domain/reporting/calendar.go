package reporting

import "time"

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Stores keep at most microsecond precision, so the inclusive end of a
// calendar period is the next period's start minus one microsecond.
const endPrecision = time.Microsecond

func monthWindow(year int, month time.Month, loc *time.Location) Window {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0).Add(-endPrecision)}
}

func yearWindow(year int, loc *time.Location) Window {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(1, 0, 0).Add(-endPrecision)}
}

// trailingWindow covers [subMonths(now, months), now].
func trailingWindow(now time.Time, months int) Window {
	return Window{Start: subMonths(now, months), End: now}
}

// subMonths moves t back by n calendar months keeping the time of day. When
// the target month is shorter, the day is clamped to its last day
// (March 31 minus one month is February 28 or 29).
func subMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
