package sampler

import (
	"github.com/roach88/tgis/internal/granularity"
	"github.com/roach88/tgis/internal/relation"
)

type options struct {
	includeGaps bool
	granularity granularity.Granularity
	policy      relation.Policy
}

// Option configures sampling.
type Option func(*options)

// WithGaps keeps granules in which some dataset contributes no maps. Under
// Sample it also emits one granule for every map of a non-sampler dataset
// that no sampling map matched.
func WithGaps(include bool) Option {
	return func(o *options) {
		o.includeGaps = include
	}
}

// WithGranularity fixes the grid of SampleByGranularity instead of
// resolving it from the datasets.
func WithGranularity(g granularity.Granularity) Option {
	return func(o *options) {
		o.granularity = g
	}
}

// WithPolicy sets the instant policy used when the sampler classifies
// extents itself.
func WithPolicy(p relation.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
