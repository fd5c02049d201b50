package ir

import (
	"fmt"
	"strings"
)

// Unit is a time unit. Absolute extents use it for granularities; relative
// extents carry it as the unit of their integer positions.
type Unit string

const (
	UnitNone   Unit = ""
	UnitSecond Unit = "second"
	UnitMinute Unit = "minute"
	UnitHour   Unit = "hour"
	UnitDay    Unit = "day"
	UnitMonth  Unit = "month"
	UnitYear   Unit = "year"
)

// Units lists the supported units from the finest to the coarsest.
var Units = []Unit{UnitSecond, UnitMinute, UnitHour, UnitDay, UnitMonth, UnitYear}

// fixedSeconds holds the length of each fixed-duration unit.
var fixedSeconds = map[Unit]int64{
	UnitSecond: 1,
	UnitMinute: 60,
	UnitHour:   3600,
	UnitDay:    86400,
}

// ParseUnit accepts singular and plural unit names, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimSuffix(name, "s")
	for _, u := range Units {
		if string(u) == name {
			return u, nil
		}
	}
	return UnitNone, fmt.Errorf("unknown time unit %q", s)
}

// Calendar reports whether u has a variable length (month or year).
func (u Unit) Calendar() bool {
	return u == UnitMonth || u == UnitYear
}

// Seconds returns the fixed length of u in seconds.
// Calendar units and UnitNone return 0.
func (u Unit) Seconds() int64 {
	return fixedSeconds[u]
}

// Rank orders units from the finest (0) to the coarsest. UnitNone is -1.
func (u Unit) Rank() int {
	for i, v := range Units {
		if v == u {
			return i
		}
	}
	return -1
}

// Plural returns the plural form, e.g. "months".
func (u Unit) Plural() string {
	if u == UnitNone {
		return ""
	}
	return string(u) + "s"
}

// TemporalType distinguishes calendar time from relative time.
type TemporalType string

const (
	TypeAbsolute TemporalType = "absolute"
	TypeRelative TemporalType = "relative"
)

// ParseTemporalType parses "absolute" or "relative".
func ParseTemporalType(s string) (TemporalType, error) {
	switch TemporalType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeAbsolute:
		return TypeAbsolute, nil
	case TypeRelative:
		return TypeRelative, nil
	default:
		return "", fmt.Errorf("unknown temporal type %q: must be absolute or relative", s)
	}
}
