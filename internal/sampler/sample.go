package sampler

import (
	"fmt"

	"github.com/roach88/tgis/internal/expr"
	"github.com/roach88/tgis/internal/granularity"
	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/relation"
	"github.com/roach88/tgis/internal/topology"
)

type location struct {
	ds  int
	obj ir.Object
}

func locate(datasets []ir.Dataset) map[string]location {
	idx := make(map[string]location)
	for d, ds := range datasets {
		for _, obj := range ds.Objects {
			idx[obj.ID] = location{ds: d, obj: obj}
		}
	}
	return idx
}

// Sample joins the maps of datasets into granules anchored on the maps of
// the first dataset. A nil expression selects "{equal}". A nil topology
// relates the sampling maps to the maps of the other datasets.
//
// A map O of another dataset joins the granule of sampling map S when the
// relation of S to O is selected by e and, when e lists spatial relations,
// their boxes stand in one of those relations. Granules are ordered by
// start, ties by the order of their sampling maps.
func Sample(datasets []ir.Dataset, e *expr.Expression, topo *topology.Topology, opts ...Option) ([]ir.Granule, error) {
	o := buildOptions(opts)
	if len(datasets) == 0 {
		return nil, &topology.EmptyInputError{}
	}
	for _, ds := range datasets {
		if len(ds.Objects) == 0 {
			return nil, &topology.EmptyInputError{Dataset: ds.ID}
		}
	}
	if e == nil {
		e = expr.Default()
	}
	if topo == nil {
		var err error
		topo, err = samplerTopology(datasets, o.policy)
		if err != nil {
			return nil, err
		}
	}

	sel := e.Relations()
	where := locate(datasets)
	assigned := make(map[string]bool)
	sampler := datasets[0]

	cands := make([]*candidate, 0, len(sampler.Objects))
	for order, s := range sampler.Objects {
		edges, err := topo.RelationsOf(s.ID)
		if err != nil {
			return nil, fmt.Errorf("sampling map %s: %w", s.ID, err)
		}
		c := newCandidate(len(datasets), order)
		c.add(0, s)
		var matches []match
		for _, edge := range edges {
			loc, ok := where[edge.To]
			if !ok || loc.ds == 0 || !sel.Has(edge.Relation) {
				continue
			}
			if len(e.Spatial) > 0 && (!edge.HasSpatial || !e.MatchesSpatial(edge.Spatial)) {
				continue
			}
			matches = append(matches, match{ds: loc.ds, obj: loc.obj, extent: loc.obj.Extent})
		}
		for _, id := range c.join(e.Temporal, s.Extent, matches) {
			assigned[id] = true
		}
		cands = append(cands, c)
	}
	cands = merge(cands)

	// Orphans are grouped by extent among themselves. They stand in no
	// selected relation to any sampling map, so they never join its granule.
	if o.includeGaps && !e.Function.IsSelect() {
		order := len(sampler.Objects)
		var orphans []*candidate
		for d, ds := range datasets[1:] {
			for _, obj := range ds.Objects {
				if assigned[obj.ID] {
					continue
				}
				c := newCandidate(len(datasets), order)
				c.extent, c.orphan = obj.Extent, true
				c.add(d+1, obj)
				orphans = append(orphans, c)
				order++
			}
		}
		cands = append(cands, merge(orphans)...)
	}
	return finish(cands, datasets, 1, e.Function, o.includeGaps), nil
}

// samplerTopology relates the maps of the first dataset to the maps of the
// rest. Joins only follow edges from sampling maps.
func samplerTopology(datasets []ir.Dataset, policy relation.Policy) (*topology.Topology, error) {
	if len(datasets) == 1 {
		return topology.BuildDatasets(datasets, topology.WithPolicy(policy))
	}
	var others []ir.Object
	for _, ds := range datasets[1:] {
		others = append(others, ds.Objects...)
	}
	return topology.BuildBetween(datasets[0].Objects, others, topology.WithPolicy(policy))
}

// Join builds the topology of datasets and samples it.
func Join(datasets []ir.Dataset, e *expr.Expression, opts ...Option) ([]ir.Granule, error) {
	return Sample(datasets, e, nil, opts...)
}

// SampleByGranularity anchors granules on the cells of a common grid. The
// grid granularity is resolved from the datasets unless WithGranularity is
// given, and the grid runs from the earliest start to the latest end.
//
// Every map is clipped to each cell it overlaps, and it joins the cell when
// the relation of the cell to the clipped extent is selected by e. A map
// spanning several cells joins each of them. All datasets are matched
// against the cells; none of them acts as the sampler.
func SampleByGranularity(datasets []ir.Dataset, e *expr.Expression, opts ...Option) ([]ir.Granule, error) {
	o := buildOptions(opts)
	if len(datasets) == 0 {
		return nil, &topology.EmptyInputError{}
	}
	if e == nil {
		e = expr.Default()
	}
	if len(e.Spatial) > 0 {
		return nil, fmt.Errorf("spatial relations %v need sampling maps; grid cells have no extent in space", e.Spatial)
	}

	g := o.granularity
	if g.IsZero() {
		var err error
		g, err = granularity.ResolveDatasets(datasets)
		if err != nil {
			return nil, err
		}
	}

	var span ir.Extent
	for i, ds := range datasets {
		ext, ok := ds.Extent()
		if !ok {
			return nil, &topology.EmptyInputError{Dataset: ds.ID}
		}
		if i == 0 {
			span = ext
			continue
		}
		if err := ir.SameType(span, ext); err != nil {
			return nil, err
		}
		span = span.Span(ext)
	}
	cells, err := granularity.Grid(span, g)
	if err != nil {
		return nil, err
	}

	classifier := relation.NewClassifier(relation.WithPolicy(o.policy))
	sel := e.Relations()
	cands := make([]*candidate, 0, len(cells))
	for order, cell := range cells {
		last := order == len(cells)-1
		c := newCandidate(len(datasets), order)
		var matches []match
		for d, ds := range datasets {
			for _, obj := range ds.Objects {
				clipped, ok := project(obj.Extent, cell, last)
				if !ok {
					continue
				}
				rel, err := classifier.Classify(cell, clipped)
				if err != nil {
					return nil, fmt.Errorf("map %s: %w", obj.ID, err)
				}
				if !sel.Has(rel) {
					continue
				}
				matches = append(matches, match{ds: d, obj: obj, extent: clipped})
			}
		}
		c.join(e.Temporal, cell, matches)
		cands = append(cands, c)
	}
	return finish(merge(cands), datasets, 0, e.Function, o.includeGaps), nil
}

// project clips ext to cell. Intervals must share more than a boundary with
// the cell. Instants belong to the cell whose start they are at or after
// and whose end they are before; the last cell also takes its end.
func project(ext, cell ir.Extent, last bool) (ir.Extent, bool) {
	if ext.IsInstant() {
		p := ext.Start()
		if p.Before(cell.Start()) || p.After(cell.End()) || (p.Equal(cell.End()) && !last) {
			return ir.Extent{}, false
		}
		return ext, true
	}
	clipped, ok := cell.Intersect(ext)
	if !ok || clipped.IsInstant() {
		return ir.Extent{}, false
	}
	return clipped, true
}
