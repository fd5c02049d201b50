package granularity

import (
	"fmt"
	"slices"
	"time"

	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/timemath"
)

// Descriptor is what the resolver needs to know about one dataset.
type Descriptor struct {
	ID          string
	Type        ir.TemporalType
	Granularity Granularity
	Start       ir.Point
	Unit        ir.Unit // relative datasets only
}

// Describe builds the descriptor of a dataset. A dataset that declares no
// granularity gets the one inferred by ForDataset.
func Describe(ds ir.Dataset) (Descriptor, error) {
	ext, ok := ds.Extent()
	if !ok {
		return Descriptor{}, &EmptyInputError{Dataset: ds.ID}
	}
	d := Descriptor{ID: ds.ID, Type: ds.Type, Start: ext.Start(), Unit: ds.Unit}
	if d.Type == "" {
		d.Type = ext.Type()
	}
	if d.Unit == ir.UnitNone {
		d.Unit = ext.Unit()
	}
	if ds.Granularity != "" {
		g, err := Parse(ds.Granularity)
		if err != nil {
			return Descriptor{}, fmt.Errorf("dataset %s: %w", ds.ID, err)
		}
		d.Granularity = g
		return d, nil
	}
	g, err := ForDataset(ds)
	if err != nil {
		return Descriptor{}, err
	}
	d.Granularity = g
	return d, nil
}

// ResolveDatasets describes every dataset and resolves their common
// granularity.
func ResolveDatasets(datasets []ir.Dataset) (Granularity, error) {
	if len(datasets) == 0 {
		return Granularity{}, &EmptyInputError{}
	}
	descs := make([]Descriptor, 0, len(datasets))
	for _, ds := range datasets {
		d, err := Describe(ds)
		if err != nil {
			return Granularity{}, err
		}
		descs = append(descs, d)
	}
	return Resolve(descs)
}

// Resolve returns the coarsest granularity that divides the granularity of
// every dataset and puts every dataset start on its grid. The grid epoch is
// the earliest start.
//
// It fails with *EmptyInputError for no datasets, with
// *ir.IncompatibleTemporalTypeError when absolute and relative datasets are
// mixed, and with *IncompatibleUnitError when relative units cannot be
// converted.
func Resolve(datasets []Descriptor) (Granularity, error) {
	if len(datasets) == 0 {
		return Granularity{}, &EmptyInputError{}
	}
	typ := datasets[0].Type
	for _, d := range datasets {
		if d.Type != typ {
			return Granularity{}, &ir.IncompatibleTemporalTypeError{Left: typ, Right: d.Type, Context: "dataset " + d.ID}
		}
		if d.Granularity.Count <= 0 {
			return Granularity{}, fmt.Errorf("dataset %s: granularity is required", d.ID)
		}
		if d.Start.Type() != typ {
			return Granularity{}, &ir.IncompatibleTemporalTypeError{Left: typ, Right: d.Start.Type(), Context: "start of dataset " + d.ID}
		}
	}
	if typ == ir.TypeRelative {
		return resolveRelative(datasets)
	}

	epoch := datasets[0].Start.Time()
	for _, d := range datasets[1:] {
		if d.Start.Time().Before(epoch) {
			epoch = d.Start.Time()
		}
	}
	amounts := make([]amount, 0, 2*len(datasets))
	for _, d := range datasets {
		if d.Granularity.Unit == ir.UnitNone {
			return Granularity{}, fmt.Errorf("dataset %s: absolute granularity %s has no unit", d.ID, d.Granularity)
		}
		amounts = append(amounts, d.Granularity, offset{from: epoch, to: d.Start.Time()})
	}
	g, ok := search(amounts)
	if !ok {
		return Granularity{}, fmt.Errorf("no common granularity: starts are not aligned to whole seconds")
	}
	return g, nil
}

// amount is a length that may or may not be a whole number of some unit.
type amount interface {
	in(u ir.Unit) (int64, bool)
}

// offset is the calendar distance between two timestamps.
type offset struct {
	from, to time.Time
}

func (o offset) in(u ir.Unit) (int64, bool) {
	if u.Calendar() {
		d, err := timemath.ComputeDelta(o.from, o.to)
		if err != nil || !d.WholeMonths() {
			return 0, false
		}
		m := d.Months()
		if u == ir.UnitYear {
			return m / 12, m%12 == 0
		}
		return m, true
	}
	s := timemath.Seconds(o.from, o.to)
	return s / u.Seconds(), s%u.Seconds() == 0
}

// searchOrder lists the candidate units from the coarsest to the finest.
var searchOrder = []ir.Unit{ir.UnitYear, ir.UnitMonth, ir.UnitDay, ir.UnitHour, ir.UnitMinute, ir.UnitSecond}

// search returns the GCD of all amounts in the coarsest unit that expresses
// every amount exactly. Zero amounts do not constrain the result.
func search(amounts []amount) (Granularity, bool) {
	for _, u := range searchOrder {
		var g int64
		exact := true
		for _, a := range amounts {
			n, ok := a.in(u)
			if !ok {
				exact = false
				break
			}
			g = gcd(g, n)
		}
		if exact && g > 0 {
			return normalize(Granularity{Count: g, Unit: u}), true
		}
	}
	return Granularity{}, false
}

type unitKind uint8

const (
	kindStep unitKind = iota
	kindFixed
	kindCalendar
)

func kindOf(u ir.Unit) unitKind {
	switch {
	case u == ir.UnitNone:
		return kindStep
	case u.Calendar():
		return kindCalendar
	default:
		return kindFixed
	}
}

// toBase converts count units into months, seconds or steps.
func toBase(count int64, u ir.Unit) int64 {
	switch kindOf(u) {
	case kindCalendar:
		return Granularity{Count: count, Unit: u}.Months()
	case kindFixed:
		return count * u.Seconds()
	default:
		return count
	}
}

var baseUnit = map[unitKind]ir.Unit{
	kindStep:     ir.UnitNone,
	kindFixed:    ir.UnitSecond,
	kindCalendar: ir.UnitMonth,
}

func resolveRelative(datasets []Descriptor) (Granularity, error) {
	var units []ir.Unit
	kinds := make(map[unitKind]bool)
	for _, d := range datasets {
		for _, u := range []ir.Unit{granUnit(d), d.Unit} {
			if !slices.Contains(units, u) {
				units = append(units, u)
			}
			kinds[kindOf(u)] = true
		}
	}
	if len(kinds) > 1 {
		return Granularity{}, &IncompatibleUnitError{Units: units}
	}
	kind := kindOf(units[0])

	starts := make([]int64, len(datasets))
	for i, d := range datasets {
		starts[i] = toBase(d.Start.Value(), d.Unit)
	}
	epoch := slices.Min(starts)

	var g int64
	for i, d := range datasets {
		g = gcd(g, toBase(d.Granularity.Count, granUnit(d)))
		g = gcd(g, starts[i]-epoch)
	}
	return normalize(Granularity{Count: g, Unit: baseUnit[kind]}), nil
}

// granUnit returns the unit of a relative granularity. A bare count is
// measured in the dataset's own unit.
func granUnit(d Descriptor) ir.Unit {
	if d.Granularity.Unit == ir.UnitNone {
		return d.Unit
	}
	return d.Granularity.Unit
}

// ForDataset infers the granularity of a dataset from its maps: the
// coarsest granularity dividing every map length and every gap between
// consecutive map starts.
func ForDataset(ds ir.Dataset) (Granularity, error) {
	if len(ds.Objects) == 0 {
		return Granularity{}, &EmptyInputError{Dataset: ds.ID}
	}
	exts := make([]ir.Extent, len(ds.Objects))
	for i, obj := range ds.Objects {
		exts[i] = obj.Extent
	}
	slices.SortStableFunc(exts, func(a, b ir.Extent) int { return a.Start().Compare(b.Start()) })

	if exts[0].Type() == ir.TypeRelative {
		unit := ds.Unit
		if unit == ir.UnitNone {
			unit = exts[0].Unit()
		}
		var g int64
		for i, e := range exts {
			g = gcd(g, e.Length())
			if i > 0 {
				g = gcd(g, e.Start().Value()-exts[i-1].Start().Value())
			}
		}
		if g == 0 {
			return Granularity{}, fmt.Errorf("dataset %s: cannot infer granularity from a single instant", ds.ID)
		}
		return normalize(Granularity{Count: g, Unit: unit}), nil
	}

	amounts := make([]amount, 0, 2*len(exts))
	for i, e := range exts {
		amounts = append(amounts, offset{from: e.Start().Time(), to: e.End().Time()})
		if i > 0 {
			amounts = append(amounts, offset{from: exts[i-1].Start().Time(), to: e.Start().Time()})
		}
	}
	g, ok := search(amounts)
	if !ok {
		return Granularity{}, fmt.Errorf("dataset %s: cannot infer granularity from a single instant", ds.ID)
	}
	return g, nil
}
