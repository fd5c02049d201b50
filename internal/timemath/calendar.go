package timemath

import (
	"time"

	"github.com/roach88/tgis/internal/ir"
)

// AddMonths adds n calendar months to t. The day of month is clamped to the
// length of the target month, so Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	t = t.UTC()
	y, mo, d := t.Date()
	first := time.Date(y, mo+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Add advances t by count units. Calendar units use AddMonths.
func Add(t time.Time, count int64, unit ir.Unit) time.Time {
	switch unit {
	case ir.UnitYear:
		return AddMonths(t, int(count*12))
	case ir.UnitMonth:
		return AddMonths(t, int(count))
	default:
		return t.UTC().Add(time.Duration(count*unit.Seconds()) * time.Second)
	}
}

// Truncate rounds t down to the start of its unit.
func Truncate(t time.Time, unit ir.Unit) time.Time {
	t = t.UTC()
	switch unit {
	case ir.UnitYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case ir.UnitMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case ir.UnitDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case ir.UnitHour, ir.UnitMinute, ir.UnitSecond:
		return t.Truncate(time.Duration(unit.Seconds()) * time.Second)
	default:
		return t
	}
}

// IsAligned reports whether t lies on a unit boundary.
func IsAligned(t time.Time, unit ir.Unit) bool {
	return Truncate(t, unit).Equal(t.UTC())
}
