// Package testutil builds dataset fixtures for tests.
package testutil

import (
	"fmt"
	"time"

	"github.com/roach88/tgis/internal/granularity"
	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/timemath"
)

// Date returns midnight UTC of the given day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Series returns a dataset of n consecutive maps of granularity gran
// starting at start. Map IDs are "<id>_<index>" counting from 1, and the
// dataset declares gran.
func Series(id string, start time.Time, gran string, n int) ir.Dataset {
	g := granularity.MustParse(gran)
	ds := ir.Dataset{ID: id, Type: ir.TypeAbsolute, Granularity: g.String()}
	for i := 0; i < n; i++ {
		s := timemath.Add(start, int64(i)*g.Count, g.Unit)
		e := timemath.Add(start, int64(i+1)*g.Count, g.Unit)
		ds.Objects = append(ds.Objects, ir.Object{
			ID:     fmt.Sprintf("%s_%d", id, i+1),
			Extent: ir.MustInterval(s, e),
		})
	}
	return ds
}

// Instants returns a dataset of instants at the given times.
func Instants(id string, times ...time.Time) ir.Dataset {
	ds := ir.Dataset{ID: id, Type: ir.TypeAbsolute}
	for i, t := range times {
		ds.Objects = append(ds.Objects, ir.Object{
			ID:     fmt.Sprintf("%s_%d", id, i+1),
			Extent: ir.NewInstant(ir.At(t)),
		})
	}
	return ds
}

// Intervals returns a dataset with one map per [start, end] pair.
func Intervals(id string, bounds ...[2]time.Time) ir.Dataset {
	ds := ir.Dataset{ID: id, Type: ir.TypeAbsolute}
	for i, b := range bounds {
		ds.Objects = append(ds.Objects, ir.Object{
			ID:     fmt.Sprintf("%s_%d", id, i+1),
			Extent: ir.MustInterval(b[0], b[1]),
		})
	}
	return ds
}

// IDs returns the object IDs per dataset of every granule, for compact
// assertions.
func IDs(granules []ir.Granule) []map[string][]string {
	out := make([]map[string][]string, len(granules))
	for i, g := range granules {
		out[i] = g.MemberIDs()
	}
	return out
}
