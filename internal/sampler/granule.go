package sampler

import (
	"slices"

	"github.com/roach88/tgis/internal/expr"
	"github.com/roach88/tgis/internal/ir"
)

// candidate is a granule under construction.
type candidate struct {
	extent  ir.Extent
	members [][]ir.Object // indexed like the datasets
	order   int
	orphan  bool
}

func newCandidate(n, order int) *candidate {
	c := &candidate{members: make([][]ir.Object, n), order: order}
	for i := range c.members {
		c.members[i] = []ir.Object{}
	}
	return c
}

func (c *candidate) add(ds int, obj ir.Object) {
	for _, o := range c.members[ds] {
		if o.ID == obj.ID {
			return
		}
	}
	c.members[ds] = append(c.members[ds], obj)
}

// matched counts the datasets from first on that contribute maps.
func (c *candidate) matched(first int) int {
	n := 0
	for _, m := range c.members[first:] {
		if len(m) > 0 {
			n++
		}
	}
	return n
}

// combine derives a granule extent from the anchor extent and the extents
// of its matches. keep reports, per match, whether it shares time with the
// result: under "|" a match must touch the anchor, under "&" it must
// intersect the extent built so far. Other matches are not members.
func combine(mode expr.TemporalMode, anchor ir.Extent, matches []ir.Extent) (ext ir.Extent, keep []bool) {
	ext = anchor
	keep = make([]bool, len(matches))
	switch mode {
	case expr.TemporalUnion:
		for i, m := range matches {
			if anchor.Touches(m) {
				ext = ext.Span(m)
				keep[i] = true
			}
		}
	case expr.TemporalIntersect:
		for i, m := range matches {
			if in, ok := ext.Intersect(m); ok {
				ext = in
				keep[i] = true
			}
		}
	case expr.TemporalSpan:
		for i, m := range matches {
			ext = ext.Span(m)
			keep[i] = true
		}
	default:
		for i := range keep {
			keep[i] = true
		}
	}
	return ext, keep
}

// match is a map that stands in a selected relation to a granule anchor.
type match struct {
	ds     int
	obj    ir.Object
	extent ir.Extent
}

// join sets the extent of c from its anchor and matches and adds the
// matches that contribute to it. It returns the ids of the added maps.
func (c *candidate) join(mode expr.TemporalMode, anchor ir.Extent, matches []match) []string {
	exts := make([]ir.Extent, len(matches))
	for i, m := range matches {
		exts[i] = m.extent
	}
	ext, keep := combine(mode, anchor, exts)
	c.extent = ext
	var added []string
	for i, m := range matches {
		if keep[i] {
			c.add(m.ds, m.obj)
			added = append(added, m.obj.ID)
		}
	}
	return added
}

// merge folds candidates with equal extents into the first of them.
func merge(cands []*candidate) []*candidate {
	out := make([]*candidate, 0, len(cands))
	for _, c := range cands {
		i := slices.IndexFunc(out, func(o *candidate) bool { return o.extent.Equal(c.extent) })
		if i < 0 {
			out = append(out, c)
			continue
		}
		for ds, objs := range c.members {
			for _, obj := range objs {
				out[i].add(ds, obj)
			}
		}
	}
	return out
}

// finish applies the function and gap rules, sorts by start and converts
// candidates to granules. Datasets before first are anchors and are not
// counted when checking matches.
func finish(cands []*candidate, datasets []ir.Dataset, first int, fn expr.Function, includeGaps bool) []ir.Granule {
	others := len(datasets) - first
	kept := cands[:0:0]
	for _, c := range cands {
		m := c.matched(first)
		switch {
		case c.orphan:
		case fn == expr.FuncSelect && m < others:
			continue
		case fn == expr.FuncNotSelect:
			if m > 0 {
				continue
			}
		case !includeGaps && m < others:
			continue
		}
		kept = append(kept, c)
	}

	slices.SortStableFunc(kept, func(a, b *candidate) int {
		if c := a.extent.Start().Compare(b.extent.Start()); c != 0 {
			return c
		}
		return a.order - b.order
	})

	out := make([]ir.Granule, len(kept))
	for i, c := range kept {
		g := ir.Granule{Extent: c.extent, Members: make([]ir.Members, len(datasets))}
		for ds, objs := range c.members {
			g.Members[ds] = ir.Members{DatasetID: datasets[ds].ID, Objects: slices.Clone(objs)}
			if fn == expr.FuncCount && ds >= first {
				g.Count += len(objs)
			}
		}
		out[i] = g
	}
	return out
}
