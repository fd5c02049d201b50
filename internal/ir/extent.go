package ir

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TimeLayout is the textual form of absolute points.
const TimeLayout = "2006-01-02 15:04:05"

// Point is a position on a time axis: either an absolute UTC timestamp or a
// relative integer position. The zero Point is invalid.
type Point struct {
	abs  time.Time
	rel  int64
	kind TemporalType
}

// At returns an absolute point. The time is normalised to UTC.
func At(t time.Time) Point {
	return Point{abs: t.UTC(), kind: TypeAbsolute}
}

// Rel returns a relative point.
func Rel(n int64) Point {
	return Point{rel: n, kind: TypeRelative}
}

// Type returns the temporal type of p ("" for the zero Point).
func (p Point) Type() TemporalType { return p.kind }

// Time returns the timestamp of an absolute point.
func (p Point) Time() time.Time { return p.abs }

// Value returns the position of a relative point.
func (p Point) Value() int64 { return p.rel }

// IsZero reports whether p is the zero Point.
func (p Point) IsZero() bool { return p.kind == "" }

// Compare returns -1, 0 or +1. Points of different kinds are ordered by kind
// (absolute first); use SameType before comparing mixed inputs.
func (p Point) Compare(q Point) int {
	if p.kind != q.kind {
		if p.kind < q.kind {
			return -1
		}
		return 1
	}
	if p.kind == TypeAbsolute {
		return p.abs.Compare(q.abs)
	}
	switch {
	case p.rel < q.rel:
		return -1
	case p.rel > q.rel:
		return 1
	}
	return 0
}

// Before reports whether p is strictly before q.
func (p Point) Before(q Point) bool { return p.Compare(q) < 0 }

// After reports whether p is strictly after q.
func (p Point) After(q Point) bool { return p.Compare(q) > 0 }

// Equal reports whether p and q denote the same position.
func (p Point) Equal(q Point) bool { return p.kind == q.kind && p.Compare(q) == 0 }

// String renders absolute points with TimeLayout and relative points as integers.
func (p Point) String() string {
	switch p.kind {
	case TypeAbsolute:
		return p.abs.Format(TimeLayout)
	case TypeRelative:
		return strconv.FormatInt(p.rel, 10)
	default:
		return "<none>"
	}
}

// MarshalJSON encodes absolute points as strings and relative points as numbers.
func (p Point) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case TypeAbsolute:
		return json.Marshal(p.String())
	case TypeRelative:
		return []byte(strconv.FormatInt(p.rel, 10)), nil
	default:
		return []byte("null"), nil
	}
}

func minPoint(a, b Point) Point {
	if b.Before(a) {
		return b
	}
	return a
}

func maxPoint(a, b Point) Point {
	if b.After(a) {
		return b
	}
	return a
}

// Extent is an immutable time extent. An extent whose end equals its start
// is an instant.
type Extent struct {
	start Point
	end   Point
	unit  Unit
}

// NewExtent returns the extent [start, end]. It fails with
// *InvalidRangeError when end is before start and with
// *IncompatibleTemporalTypeError when the points are of different kinds.
func NewExtent(start, end Point) (Extent, error) {
	if start.IsZero() {
		return Extent{}, fmt.Errorf("extent start is not set")
	}
	if end.IsZero() {
		return NewInstant(start), nil
	}
	if start.kind != end.kind {
		return Extent{}, &IncompatibleTemporalTypeError{Left: start.kind, Right: end.kind, Context: "extent bounds"}
	}
	if end.Before(start) {
		return Extent{}, &InvalidRangeError{Start: start, End: end}
	}
	return Extent{start: start, end: end}, nil
}

// NewInstant returns a zero-length extent at start.
func NewInstant(start Point) Extent {
	return Extent{start: start, end: start}
}

// NewRelativeExtent returns a relative extent [start, end] measured in unit.
func NewRelativeExtent(start, end int64, unit Unit) (Extent, error) {
	e, err := NewExtent(Rel(start), Rel(end))
	if err != nil {
		return Extent{}, err
	}
	e.unit = unit
	return e, nil
}

// Interval is shorthand for an absolute extent [start, end].
func Interval(start, end time.Time) (Extent, error) {
	return NewExtent(At(start), At(end))
}

// MustInterval is like Interval but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustInterval(start, end time.Time) Extent {
	e, err := Interval(start, end)
	if err != nil {
		panic(err)
	}
	return e
}

// Start returns the start point.
func (e Extent) Start() Point { return e.start }

// End returns the end point. For instants End equals Start.
func (e Extent) End() Point { return e.end }

// Unit returns the relative unit ("" for absolute extents).
func (e Extent) Unit() Unit { return e.unit }

// Type returns the temporal type of the extent.
func (e Extent) Type() TemporalType { return e.start.kind }

// IsInstant reports whether the extent has zero length.
func (e Extent) IsInstant() bool { return e.start.Compare(e.end) == 0 }

// IsZero reports whether e is the zero Extent.
func (e Extent) IsZero() bool { return e.start.IsZero() }

// Equal reports whether both bounds are equal.
func (e Extent) Equal(o Extent) bool {
	return e.start.Equal(o.start) && e.end.Equal(o.end)
}

// Duration returns end-start for absolute extents and 0 otherwise.
func (e Extent) Duration() time.Duration {
	if e.Type() != TypeAbsolute {
		return 0
	}
	return e.end.abs.Sub(e.start.abs)
}

// Length returns end-start for relative extents and 0 otherwise.
func (e Extent) Length() int64 {
	if e.Type() != TypeRelative {
		return 0
	}
	return e.end.rel - e.start.rel
}

// Span returns the smallest extent covering e and o.
func (e Extent) Span(o Extent) Extent {
	return Extent{start: minPoint(e.start, o.start), end: maxPoint(e.end, o.end), unit: e.unit}
}

// Intersect returns the shared part of e and o. ok is false when the
// extents do not share any point.
func (e Extent) Intersect(o Extent) (Extent, bool) {
	s := maxPoint(e.start, o.start)
	t := minPoint(e.end, o.end)
	if t.Before(s) {
		return Extent{}, false
	}
	return Extent{start: s, end: t, unit: e.unit}, true
}

// Touches reports whether e and o intersect or share a boundary.
func (e Extent) Touches(o Extent) bool {
	_, ok := e.Intersect(o)
	return ok
}

// String renders "[start, end]" or "[start]" for instants.
func (e Extent) String() string {
	if e.IsInstant() {
		return "[" + e.start.String() + "]"
	}
	return "[" + e.start.String() + ", " + e.end.String() + "]"
}

// MarshalJSON encodes the extent as {"start":..., "end":...}.
func (e Extent) MarshalJSON() ([]byte, error) {
	type wire struct {
		Start Point `json:"start"`
		End   Point `json:"end"`
		Unit  Unit  `json:"unit,omitempty"`
	}
	return json.Marshal(wire{Start: e.start, End: e.end, Unit: e.unit})
}

// SameType returns *IncompatibleTemporalTypeError when the extents mix
// absolute and relative time or relative units.
func SameType(a, b Extent) error {
	if a.Type() != b.Type() {
		return &IncompatibleTemporalTypeError{Left: a.Type(), Right: b.Type(), Context: "extent comparison"}
	}
	if a.Type() == TypeRelative && a.unit != b.unit && a.unit != UnitNone && b.unit != UnitNone {
		return &IncompatibleTemporalTypeError{Left: a.Type(), Right: b.Type(),
			Context: fmt.Sprintf("relative units %s and %s", a.unit.Plural(), b.unit.Plural())}
	}
	return nil
}
