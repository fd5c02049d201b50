package granularity

import (
	"fmt"
	"time"

	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/timemath"
)

// maxCells bounds the size of a generated grid.
const maxCells = 1 << 20

// Grid returns the consecutive cells of granularity g that cover span,
// starting at span's start. The last cell may extend past span's end.
// An instant span yields a single cell.
func Grid(span ir.Extent, g Granularity) ([]ir.Extent, error) {
	if g.Count <= 0 {
		return nil, fmt.Errorf("grid granularity must be positive, got %d", g.Count)
	}
	if span.Type() == ir.TypeRelative {
		return relativeGrid(span, g)
	}
	if g.Unit == ir.UnitNone {
		return nil, fmt.Errorf("grid granularity %s has no unit", g)
	}

	epoch := span.Start().Time()
	end := span.End().Time()
	var cells []ir.Extent
	for i := int64(0); ; i++ {
		s := cellBoundary(epoch, g, i)
		if i > 0 && !s.Before(end) {
			break
		}
		if i >= maxCells {
			return nil, fmt.Errorf("grid of %s over %s exceeds %d cells", g, span, maxCells)
		}
		cells = append(cells, ir.MustInterval(s, cellBoundary(epoch, g, i+1)))
	}
	return cells, nil
}

// cellBoundary returns the start of cell i. Calendar cells are computed
// from the epoch each time so that day clamping never accumulates.
func cellBoundary(epoch time.Time, g Granularity, i int64) time.Time {
	if g.Calendar() {
		return timemath.AddMonths(epoch, int(i*g.Months()))
	}
	return epoch.Add(time.Duration(i*g.Seconds()) * time.Second)
}

func relativeGrid(span ir.Extent, g Granularity) ([]ir.Extent, error) {
	unit := span.Unit()
	gu := g.Unit
	if gu == ir.UnitNone {
		gu = unit
	}
	if kindOf(gu) != kindOf(unit) {
		return nil, &IncompatibleUnitError{Units: []ir.Unit{gu, unit}}
	}
	step, per := toBase(g.Count, gu), toBase(1, unit)
	if step%per != 0 {
		return nil, fmt.Errorf("granularity %s is finer than the dataset unit %s", g, unit)
	}
	step /= per

	start, end := span.Start().Value(), span.End().Value()
	if (end-start)/step >= maxCells {
		return nil, fmt.Errorf("grid of %s over %s exceeds %d cells", g, span, maxCells)
	}
	var cells []ir.Extent
	for s := start; s < end || len(cells) == 0; s += step {
		e, err := ir.NewRelativeExtent(s, s+step, unit)
		if err != nil {
			return nil, err
		}
		cells = append(cells, e)
	}
	return cells, nil
}
