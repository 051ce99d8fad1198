package algo

import "time"

const openDateLayout = "20060102"

// ParseOpenDate parses the first eight characters of a publication date as YYYYMMDD
// in loc. The second return value is false for missing or malformed dates.
func ParseOpenDate(s string, loc *time.Location) (time.Time, bool) {
	if len(s) < 8 {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(openDateLayout, s[:8], loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthsBefore returns t moved back n calendar months. The day is clamped to the
// last day of the target month and the clock time is kept.
func MonthsBefore(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// inWindow reports whether d lies in [from, to].
func inWindow(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}
