// Package sampler aligns the maps of several datasets into granules.
//
// Sample anchors granules on the maps of the first dataset, the sampler.
// For every sampling map it collects the maps of the other datasets whose
// relation to it is selected by the expression, derives the granule extent
// from the expression's temporal mode and applies the select or count
// function. SampleByGranularity anchors granules on the cells of a common
// granularity grid instead and projects every map onto the cells it
// overlaps.
//
// Results are freshly allocated and depend only on the inputs, so granules
// may be handed to concurrent workers in any order.
package sampler
