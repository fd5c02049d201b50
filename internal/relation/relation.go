package relation

import (
	"fmt"
	"strings"
)

// Relation is one of the thirteen Allen interval relations.
type Relation uint8

const (
	Equal Relation = iota
	Before
	After
	Meets
	MetBy
	Overlaps
	OverlappedBy
	Starts
	StartedBy
	Finishes
	FinishedBy
	During
	Contains

	numRelations = iota
)

var relationNames = [numRelations]string{
	Equal:        "equal",
	Before:       "before",
	After:        "after",
	Meets:        "meets",
	MetBy:        "met_by",
	Overlaps:     "overlaps",
	OverlappedBy: "overlapped_by",
	Starts:       "starts",
	StartedBy:    "started_by",
	Finishes:     "finishes",
	FinishedBy:   "finished_by",
	During:       "during",
	Contains:     "contains",
}

var inverses = [numRelations]Relation{
	Equal:        Equal,
	Before:       After,
	After:        Before,
	Meets:        MetBy,
	MetBy:        Meets,
	Overlaps:     OverlappedBy,
	OverlappedBy: Overlaps,
	Starts:       StartedBy,
	StartedBy:    Starts,
	Finishes:     FinishedBy,
	FinishedBy:   Finishes,
	During:       Contains,
	Contains:     During,
}

// All lists every relation in declaration order.
func All() []Relation {
	out := make([]Relation, numRelations)
	for i := range out {
		out[i] = Relation(i)
	}
	return out
}

func (r Relation) String() string {
	if int(r) < numRelations {
		return relationNames[r]
	}
	return fmt.Sprintf("relation(%d)", uint8(r))
}

// Valid reports whether r is one of the thirteen relations.
func (r Relation) Valid() bool { return int(r) < numRelations }

// Inverse returns the relation of (b, a) given the relation of (a, b).
func (r Relation) Inverse() Relation { return inverses[r] }

// MarshalText encodes the relation name.
func (r Relation) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid relation %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a relation name.
func (r *Relation) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Parse returns the relation with the given canonical name.
func Parse(name string) (Relation, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range relationNames {
		if s == n {
			return Relation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown temporal relation %q", name)
}
