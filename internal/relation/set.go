package relation

import (
	"strings"
)

// Set is a set of relations. The zero Set is empty.
type Set uint16

// Over selects partial overlap in either direction.
const Over = Set(1<<Overlaps | 1<<OverlappedBy)

// NewSet returns the set of the given relations.
func NewSet(rels ...Relation) Set {
	var s Set
	for _, r := range rels {
		s = s.With(r)
	}
	return s
}

// Universe returns the set of all thirteen relations.
func Universe() Set {
	return Set(1<<numRelations - 1)
}

// With returns s plus r.
func (s Set) With(r Relation) Set { return s | 1<<r }

// Has reports whether r is in s.
func (s Set) Has(r Relation) bool { return s&(1<<r) != 0 }

// Union returns the relations in s or o.
func (s Set) Union(o Set) Set { return s | o }

// Superset reports whether every relation of o is in s.
func (s Set) Superset(o Set) bool { return s&o == o }

// Empty reports whether s has no relations.
func (s Set) Empty() bool { return s == 0 }

// Len returns the number of relations in s.
func (s Set) Len() int {
	n := 0
	for r := Relation(0); r < numRelations; r++ {
		if s.Has(r) {
			n++
		}
	}
	return n
}

// Relations returns the members of s in declaration order.
func (s Set) Relations() []Relation {
	out := make([]Relation, 0, s.Len())
	for r := Relation(0); r < numRelations; r++ {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Inverse returns the set of inverses of s.
func (s Set) Inverse() Set {
	var out Set
	for _, r := range s.Relations() {
		out = out.With(r.Inverse())
	}
	return out
}

// String renders the set as "equal|during".
func (s Set) String() string {
	rels := s.Relations()
	names := make([]string, len(rels))
	for i, r := range rels {
		names[i] = r.String()
	}
	return strings.Join(names, "|")
}
