package sampler

import (
	"fmt"
	"strings"

	"github.com/roach88/tgis/internal/expr"
	"github.com/roach88/tgis/internal/ir"
)

// Mode selects what granules are anchored on.
type Mode string

const (
	// ModeTopology anchors granules on the maps of the first dataset.
	ModeTopology Mode = "topology"
	// ModeGranularity anchors granules on the cells of a common grid.
	ModeGranularity Mode = "granularity"
)

// ParseMode parses "topology" or "granularity". The empty string is
// ModeTopology.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTopology:
		return ModeTopology, nil
	case ModeGranularity:
		return ModeGranularity, nil
	default:
		return "", fmt.Errorf("unknown sampling mode %q: must be topology or granularity", s)
	}
}

// Run dispatches to Join or SampleByGranularity.
func Run(mode Mode, datasets []ir.Dataset, e *expr.Expression, opts ...Option) ([]ir.Granule, error) {
	switch mode {
	case "", ModeTopology:
		return Join(datasets, e, opts...)
	case ModeGranularity:
		return SampleByGranularity(datasets, e, opts...)
	default:
		return nil, fmt.Errorf("unknown sampling mode %q", mode)
	}
}
