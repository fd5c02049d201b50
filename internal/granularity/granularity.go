package granularity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/tgis/internal/ir"
)

const secondsPerDay = 86400

// Granularity is a positive count of a time unit.
type Granularity struct {
	Count int64   `json:"count"`
	Unit  ir.Unit `json:"unit"`
}

// New returns a granularity of count units.
func New(count int64, unit ir.Unit) Granularity {
	return Granularity{Count: count, Unit: unit}
}

// Parse parses "3 months", "1 day" or "day". Relative datasets without a
// unit use a bare count such as "5".
func Parse(s string) (Granularity, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		if n, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
			if n <= 0 {
				return Granularity{}, fmt.Errorf("granularity %q: count must be positive", s)
			}
			return Granularity{Count: n}, nil
		}
		u, err := ir.ParseUnit(fields[0])
		if err != nil {
			return Granularity{}, fmt.Errorf("granularity %q: %w", s, err)
		}
		return Granularity{Count: 1, Unit: u}, nil
	case 2:
		n, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return Granularity{}, fmt.Errorf("granularity %q: invalid count", s)
		}
		if n <= 0 {
			return Granularity{}, fmt.Errorf("granularity %q: count must be positive", s)
		}
		u, err := ir.ParseUnit(fields[1])
		if err != nil {
			return Granularity{}, fmt.Errorf("granularity %q: %w", s, err)
		}
		return Granularity{Count: n, Unit: u}, nil
	default:
		return Granularity{}, fmt.Errorf("granularity %q: expected \"<count> <unit>\"", s)
	}
}

// MustParse is like Parse but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParse(s string) Granularity {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

// String renders "1 month" or "3 months".
func (g Granularity) String() string {
	if g.Unit == ir.UnitNone {
		return strconv.FormatInt(g.Count, 10)
	}
	if g.Count == 1 {
		return "1 " + string(g.Unit)
	}
	return strconv.FormatInt(g.Count, 10) + " " + g.Unit.Plural()
}

// IsZero reports whether g is unset.
func (g Granularity) IsZero() bool { return g.Count == 0 }

// Calendar reports whether g is measured in months or years.
func (g Granularity) Calendar() bool { return g.Unit.Calendar() }

// Months returns the length of a calendar granularity in months.
func (g Granularity) Months() int64 {
	if g.Unit == ir.UnitYear {
		return g.Count * 12
	}
	return g.Count
}

// Seconds returns the length of a fixed granularity in seconds.
func (g Granularity) Seconds() int64 {
	return g.Count * g.Unit.Seconds()
}

// Divides reports whether o is an integer multiple of g.
func (g Granularity) Divides(o Granularity) bool {
	if g.Count <= 0 || o.Count <= 0 {
		return false
	}
	switch {
	case g.Unit == ir.UnitNone || o.Unit == ir.UnitNone:
		return g.Unit == o.Unit && o.Count%g.Count == 0
	case g.Calendar() && o.Calendar():
		return o.Months()%g.Months() == 0
	case g.Calendar():
		return false
	case o.Calendar():
		return secondsPerDay%g.Seconds() == 0
	default:
		return o.Seconds()%g.Seconds() == 0
	}
}

// in expresses g as a whole number of unit u.
func (g Granularity) in(u ir.Unit) (int64, bool) {
	switch {
	case u.Calendar() && g.Calendar():
		m := g.Months()
		if u == ir.UnitYear {
			return m / 12, m%12 == 0
		}
		return m, true
	case u.Calendar():
		return 0, false
	case g.Calendar():
		// only day-dividing cells repeat exactly inside every month
		return secondsPerDay / u.Seconds(), secondsPerDay%u.Seconds() == 0
	default:
		s := g.Seconds()
		return s / u.Seconds(), s%u.Seconds() == 0
	}
}

// normalize expresses g in the coarsest unit that keeps the count whole.
func normalize(g Granularity) Granularity {
	if g.Calendar() {
		if m := g.Months(); m%12 == 0 {
			return Granularity{Count: m / 12, Unit: ir.UnitYear}
		}
		return Granularity{Count: g.Months(), Unit: ir.UnitMonth}
	}
	if g.Unit == ir.UnitNone {
		return g
	}
	s := g.Seconds()
	for _, u := range []ir.Unit{ir.UnitDay, ir.UnitHour, ir.UnitMinute} {
		if s%u.Seconds() == 0 {
			return Granularity{Count: s / u.Seconds(), Unit: u}
		}
	}
	return Granularity{Count: s, Unit: ir.UnitSecond}
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
