package relation

import (
	"fmt"
	"strings"

	"github.com/roach88/tgis/internal/ir"
)

// SpatialRelation is a topological relation between two bounding boxes.
type SpatialRelation uint8

const (
	Disjoint SpatialRelation = iota
	Equivalent
	Contain
	In
	Cover
	Covered
	Overlap
	Meet

	numSpatial = iota
)

var spatialNames = [numSpatial]string{
	Disjoint:   "disjoint",
	Equivalent: "equivalent",
	Contain:    "contain",
	In:         "in",
	Cover:      "cover",
	Covered:    "covered",
	Overlap:    "overlap",
	Meet:       "meet",
}

func (r SpatialRelation) String() string {
	if int(r) < numSpatial {
		return spatialNames[r]
	}
	return fmt.Sprintf("spatial(%d)", uint8(r))
}

// MarshalText encodes the relation name.
func (r SpatialRelation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Inverse returns the relation of (b, a) given the relation of (a, b).
func (r SpatialRelation) Inverse() SpatialRelation {
	switch r {
	case Contain:
		return In
	case In:
		return Contain
	case Cover:
		return Covered
	case Covered:
		return Cover
	default:
		return r
	}
}

// ParseSpatial returns the spatial relation with the given name.
func ParseSpatial(name string) (SpatialRelation, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range spatialNames {
		if s == n {
			return SpatialRelation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown spatial relation %q", name)
}

// ClassifySpatial returns the relation of box a to box b. Boxes that share
// only an edge or a corner meet. Containment that shares an edge is cover
// (or covered); strict containment is contain (or in).
func ClassifySpatial(a, b ir.BBox) SpatialRelation {
	if a == b {
		return Equivalent
	}
	if a.East < b.West || b.East < a.West || a.North < b.South || b.North < a.South {
		return Disjoint
	}
	if a.East == b.West || b.East == a.West || a.North == b.South || b.North == a.South {
		return Meet
	}

	aHoldsB := a.North >= b.North && a.South <= b.South && a.East >= b.East && a.West <= b.West
	bHoldsA := b.North >= a.North && b.South <= a.South && b.East >= a.East && b.West <= a.West
	switch {
	case aHoldsB && sharesEdge(a, b):
		return Cover
	case aHoldsB:
		return Contain
	case bHoldsA && sharesEdge(a, b):
		return Covered
	case bHoldsA:
		return In
	default:
		return Overlap
	}
}

func sharesEdge(a, b ir.BBox) bool {
	return a.North == b.North || a.South == b.South || a.East == b.East || a.West == b.West
}
