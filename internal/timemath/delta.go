package timemath

import (
	"fmt"
	"time"

	"github.com/roach88/tgis/internal/ir"
)

const secondsPerDay = 86400

// Delta is a calendar-aware difference between two timestamps.
//
// Year and Month count whole calendar months between the endpoints. Day,
// Hour, Minute and Second are cumulative totals of the remainder window that
// follows the last whole month. A clock field is 0 when both endpoints have
// a zero component at that field. MaxDays is the number of full days in the
// remainder window.
type Delta struct {
	Year    int64 `json:"year"`
	Month   int64 `json:"month"`
	Day     int64 `json:"day"`
	Hour    int64 `json:"hour"`
	Minute  int64 `json:"minute"`
	Second  int64 `json:"second"`
	MaxDays int64 `json:"max_days"`
}

// IsZero reports whether every field is zero.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// Months returns the whole months of the delta.
func (d Delta) Months() int64 {
	return d.Year*12 + d.Month
}

// WholeMonths reports whether the delta has no sub-month remainder.
func (d Delta) WholeMonths() bool {
	return d.Day == 0 && d.Hour == 0 && d.Minute == 0 && d.Second == 0
}

func (d Delta) String() string {
	return fmt.Sprintf("%dy %dm %dd %dh %dmin %ds (max_days=%d)",
		d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second, d.MaxDays)
}

// ComputeDelta returns the calendar-aware difference between start and end.
// It fails with *ir.InvalidRangeError when end is before start.
func ComputeDelta(start, end time.Time) (Delta, error) {
	start, end = start.UTC(), end.UTC()
	if end.Before(start) {
		return Delta{}, &ir.InvalidRangeError{Start: ir.At(start), End: ir.At(end)}
	}

	var d Delta
	months := fullMonths(start, end)
	d.Year, d.Month = months/12, months%12

	// remainder window [start + months, end], always shorter than a month
	anchor := AddMonths(start, int(months))
	rem := end.Unix() - anchor.Unix()

	d.MaxDays = rem / secondsPerDay
	d.Day = d.MaxDays
	if start.Hour() != 0 || end.Hour() != 0 {
		d.Hour = rem / 3600
	}
	if start.Minute() != 0 || end.Minute() != 0 {
		d.Minute = rem / 60
	}
	if start.Second() != 0 || end.Second() != 0 {
		d.Second = rem
	}
	return d, nil
}

// fullMonths counts the whole calendar months from start to end.
// end must not be before start.
func fullMonths(start, end time.Time) int64 {
	m := int64(end.Year()-start.Year())*12 + int64(end.Month()-start.Month())
	if m > 0 && AddMonths(start, int(m)).After(end) {
		m--
	}
	return m
}

// Seconds returns the exact number of seconds from start to end.
func Seconds(start, end time.Time) int64 {
	return end.Unix() - start.Unix()
}
