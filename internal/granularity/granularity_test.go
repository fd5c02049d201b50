package granularity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tgis/internal/ir"
)

func jan(y int) time.Time {
	return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
}

func absolute(id, gran string, start time.Time) Descriptor {
	return Descriptor{ID: id, Type: ir.TypeAbsolute, Granularity: MustParse(gran), Start: ir.At(start)}
}

func relative(id string, count int64, gu ir.Unit, start int64, unit ir.Unit) Descriptor {
	return Descriptor{ID: id, Type: ir.TypeRelative, Granularity: New(count, gu), Start: ir.Rel(start), Unit: unit}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Granularity
	}{
		{"1 month", New(1, ir.UnitMonth)},
		{"3 months", New(3, ir.UnitMonth)},
		{"day", New(1, ir.UnitDay)},
		{"  12 Hours ", New(12, ir.UnitHour)},
		{"5", New(5, ir.UnitNone)},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			g, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, g)
		})
	}

	for _, bad := range []string{"", "0 days", "-1 month", "3 fortnights", "a month", "1 2 3"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "1 month", New(1, ir.UnitMonth).String())
	assert.Equal(t, "3 months", New(3, ir.UnitMonth).String())
	assert.Equal(t, "7", New(7, ir.UnitNone).String())
}

func TestDivides(t *testing.T) {
	tests := []struct {
		g, o string
		want bool
	}{
		{"1 month", "3 months", true},
		{"1 month", "1 year", true},
		{"3 months", "1 year", true},
		{"5 months", "1 year", false},
		{"1 year", "1 month", false},
		{"1 day", "1 month", true},
		{"6 hours", "1 year", true},
		{"7 hours", "1 month", false},
		{"1 month", "30 days", false},
		{"1 hour", "1 day", true},
		{"2 days", "3 days", false},
	}
	for _, tc := range tests {
		t.Run(tc.g+" divides "+tc.o, func(t *testing.T) {
			assert.Equal(t, tc.want, MustParse(tc.g).Divides(MustParse(tc.o)))
		})
	}
}

func TestResolve_MonthQuarterYear(t *testing.T) {
	g, err := Resolve([]Descriptor{
		absolute("monthly", "1 month", jan(2001)),
		absolute("quarterly", "3 months", jan(2001)),
		absolute("yearly", "1 year", jan(2001)),
	})
	require.NoError(t, err)
	assert.Equal(t, "1 month", g.String())
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		descs []Descriptor
		want  string
	}{
		{
			name:  "single dataset keeps its granularity",
			descs: []Descriptor{absolute("a", "3 months", jan(2001))},
			want:  "3 months",
		},
		{
			name: "years share a year",
			descs: []Descriptor{
				absolute("a", "2 years", jan(2001)),
				absolute("b", "3 years", jan(2001)),
			},
			want: "1 year",
		},
		{
			name: "offset start narrows the grid",
			descs: []Descriptor{
				absolute("a", "1 year", jan(2001)),
				absolute("b", "1 year", time.Date(2001, 7, 1, 0, 0, 0, 0, time.UTC)),
			},
			want: "6 months",
		},
		{
			name: "months promoted to years",
			descs: []Descriptor{
				absolute("a", "24 months", jan(2001)),
				absolute("b", "1 year", jan(2002)),
			},
			want: "1 year",
		},
		{
			name: "days and months meet at days",
			descs: []Descriptor{
				absolute("a", "1 month", jan(2001)),
				absolute("b", "2 days", jan(2001)),
			},
			want: "1 day",
		},
		{
			name: "hours expressed in the coarsest unit",
			descs: []Descriptor{
				absolute("a", "12 hours", jan(2001)),
				absolute("b", "18 hours", jan(2001)),
			},
			want: "6 hours",
		},
		{
			name: "start offset in minutes",
			descs: []Descriptor{
				absolute("a", "1 hour", jan(2001)),
				absolute("b", "1 hour", jan(2001).Add(15*time.Minute)),
			},
			want: "15 minutes",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Resolve(tc.descs)
			require.NoError(t, err)
			assert.Equal(t, tc.want, g.String())
		})
	}
}

// The resolved granularity divides every input and no coarser candidate
// that also divides every input exists among the usual choices.
func TestResolve_DivisibilityAndMaximality(t *testing.T) {
	inputs := [][]string{
		{"1 month", "3 months", "1 year"},
		{"2 months", "6 months"},
		{"4 months", "6 months"},
		{"1 day", "1 month"},
		{"6 hours", "4 hours"},
		{"2 years", "3 years"},
	}
	candidates := []string{
		"1 second", "30 seconds", "1 minute", "15 minutes", "1 hour", "2 hours", "6 hours", "12 hours",
		"1 day", "2 days", "1 month", "2 months", "3 months", "6 months", "1 year", "2 years",
	}
	for _, grans := range inputs {
		var descs []Descriptor
		for i, g := range grans {
			descs = append(descs, absolute(string(rune('a'+i)), g, jan(2001)))
		}
		got, err := Resolve(descs)
		require.NoError(t, err)

		for _, g := range grans {
			assert.True(t, got.Divides(MustParse(g)), "%s must divide %s", got, g)
		}
		for _, c := range candidates {
			cand := MustParse(c)
			if cand == got || !got.Divides(cand) || cand.Divides(got) {
				continue
			}
			all := true
			for _, g := range grans {
				all = all && cand.Divides(MustParse(g))
			}
			assert.False(t, all, "%s is coarser than %s and divides %v", cand, got, grans)
		}
	}
}

func TestResolve_Errors(t *testing.T) {
	_, err := Resolve(nil)
	assert.True(t, IsEmptyInput(err))
	assert.Equal(t, ir.ErrCodeEmptyInput, ir.CodeOf(err))

	_, err = Resolve([]Descriptor{
		absolute("a", "1 month", jan(2001)),
		relative("b", 1, ir.UnitDay, 0, ir.UnitDay),
	})
	assert.True(t, ir.IsIncompatibleType(err))

	_, err = Resolve([]Descriptor{
		relative("a", 1, ir.UnitMonth, 0, ir.UnitMonth),
		relative("b", 1, ir.UnitDay, 0, ir.UnitDay),
	})
	assert.True(t, IsIncompatibleUnit(err))

	_, err = Resolve([]Descriptor{
		relative("a", 1, ir.UnitNone, 0, ir.UnitNone),
		relative("b", 1, ir.UnitSecond, 0, ir.UnitSecond),
	})
	assert.True(t, IsIncompatibleUnit(err))
	assert.Contains(t, err.Error(), "steps")
}

func TestResolve_Relative(t *testing.T) {
	g, err := Resolve([]Descriptor{
		relative("a", 4, ir.UnitDay, 0, ir.UnitDay),
		relative("b", 6, ir.UnitDay, 2, ir.UnitDay),
	})
	require.NoError(t, err)
	assert.Equal(t, "2 days", g.String())

	g, err = Resolve([]Descriptor{
		relative("a", 1, ir.UnitDay, 0, ir.UnitDay),
		relative("b", 12, ir.UnitHour, 0, ir.UnitHour),
	})
	require.NoError(t, err)
	assert.Equal(t, "12 hours", g.String())

	g, err = Resolve([]Descriptor{
		relative("a", 3, ir.UnitNone, 0, ir.UnitNone),
		relative("b", 9, ir.UnitNone, 6, ir.UnitNone),
	})
	require.NoError(t, err)
	assert.Equal(t, "3", g.String())

	g, err = Resolve([]Descriptor{
		relative("a", 2, ir.UnitNone, 0, ir.UnitYear),
		relative("b", 6, ir.UnitMonth, 0, ir.UnitMonth),
	})
	require.NoError(t, err)
	assert.Equal(t, "6 months", g.String())
}

func monthly(id string, start time.Time, n int) ir.Dataset {
	ds := ir.Dataset{ID: id, Type: ir.TypeAbsolute}
	for i := 0; i < n; i++ {
		s := start.AddDate(0, i, 0)
		ds.Objects = append(ds.Objects, ir.Object{
			ID:     id + "_" + s.Format("200601"),
			Extent: ir.MustInterval(s, s.AddDate(0, 1, 0)),
		})
	}
	return ds
}

func TestForDataset(t *testing.T) {
	g, err := ForDataset(monthly("m", jan(2001), 6))
	require.NoError(t, err)
	assert.Equal(t, "1 month", g.String())

	daily := ir.Dataset{ID: "d", Type: ir.TypeAbsolute}
	for i := 0; i < 3; i++ {
		s := jan(2001).AddDate(0, 0, 2*i)
		daily.Objects = append(daily.Objects, ir.Object{ID: s.Format("d02"), Extent: ir.NewInstant(ir.At(s))})
	}
	g, err = ForDataset(daily)
	require.NoError(t, err)
	assert.Equal(t, "2 days", g.String())

	_, err = ForDataset(ir.Dataset{ID: "empty"})
	assert.True(t, IsEmptyInput(err))

	single := ir.Dataset{ID: "one", Objects: []ir.Object{{ID: "x", Extent: ir.NewInstant(ir.At(jan(2001)))}}}
	_, err = ForDataset(single)
	assert.Error(t, err)
}

func TestResolveDatasets_UsesDeclaredGranularity(t *testing.T) {
	yearly := ir.Dataset{ID: "y", Type: ir.TypeAbsolute, Granularity: "1 year", Objects: []ir.Object{
		{ID: "y1", Extent: ir.MustInterval(jan(2001), jan(2002))},
	}}
	g, err := ResolveDatasets([]ir.Dataset{monthly("m", jan(2001), 12), yearly})
	require.NoError(t, err)
	assert.Equal(t, "1 month", g.String())
}

func TestGrid(t *testing.T) {
	span := ir.MustInterval(time.Date(2001, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2001, 4, 15, 0, 0, 0, 0, time.UTC))
	cells, err := Grid(span, MustParse("1 month"))
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.Equal(t, "[2001-01-31 00:00:00, 2001-02-28 00:00:00]", cells[0].String())
	assert.Equal(t, "[2001-02-28 00:00:00, 2001-03-31 00:00:00]", cells[1].String())
	assert.Equal(t, "[2001-03-31 00:00:00, 2001-04-30 00:00:00]", cells[2].String())

	cells, err = Grid(ir.MustInterval(jan(2001), jan(2001).Add(24*time.Hour)), MustParse("6 hours"))
	require.NoError(t, err)
	assert.Len(t, cells, 4)

	cells, err = Grid(ir.NewInstant(ir.At(jan(2001))), MustParse("1 day"))
	require.NoError(t, err)
	assert.Len(t, cells, 1)
}

func TestGrid_Relative(t *testing.T) {
	span, err := ir.NewRelativeExtent(0, 48, ir.UnitHour)
	require.NoError(t, err)

	cells, err := Grid(span, MustParse("1 day"))
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, "[24, 48]", cells[1].String())

	_, err = Grid(span, MustParse("1 month"))
	assert.True(t, IsIncompatibleUnit(err))

	_, err = Grid(span, MustParse("30 minutes"))
	assert.Error(t, err)
}
