package expr

import (
	"strings"

	"github.com/roach88/tgis/internal/relation"
)

// TemporalMode selects how a granule extent is derived from the sampling
// map and its matches.
type TemporalMode uint8

const (
	// TemporalNone is the mode of a bare relation list.
	TemporalNone TemporalMode = iota
	// TemporalEqual keeps the extent of the sampling map.
	TemporalEqual
	// TemporalUnion extends the extent over touching matches.
	TemporalUnion
	// TemporalIntersect narrows the extent to the time shared with matches.
	TemporalIntersect
	// TemporalSpan covers the sampling map and all matches.
	TemporalSpan
)

var temporalOps = map[byte]TemporalMode{
	'=': TemporalEqual,
	'|': TemporalUnion,
	'&': TemporalIntersect,
	'+': TemporalSpan,
}

func (m TemporalMode) String() string {
	switch m {
	case TemporalEqual:
		return "="
	case TemporalUnion:
		return "|"
	case TemporalIntersect:
		return "&"
	case TemporalSpan:
		return "+"
	default:
		return ""
	}
}

// MarshalText encodes the mode symbol.
func (m TemporalMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Function is the operation applied to the maps of a granule.
type Function string

const (
	FuncNone Function = ""

	FuncSelect    Function = ":"
	FuncNotSelect Function = "!:"
	FuncCount     Function = "#"

	FuncUnion               Function = "|"
	FuncIntersection        Function = "&"
	FuncDisjointUnion       Function = "+"
	FuncSymmetricDifference Function = "^"
	FuncDifference          Function = "~"

	FuncAnd Function = "&&"
	FuncOr  Function = "||"
)

var plainFunctions = map[string]Function{
	":":  FuncSelect,
	"!:": FuncNotSelect,
	"#":  FuncCount,
	"|":  FuncUnion,
	"&":  FuncIntersection,
	"+":  FuncDisjointUnion,
	"^":  FuncSymmetricDifference,
	"~":  FuncDifference,
}

var comparisonFunctions = map[string]Function{
	"&&": FuncAnd,
	"||": FuncOr,
}

// IsSelect reports whether f keeps or drops whole granules.
func (f Function) IsSelect() bool { return f == FuncSelect || f == FuncNotSelect }

// IsOverlay reports whether f combines map contents.
func (f Function) IsOverlay() bool {
	switch f {
	case FuncUnion, FuncIntersection, FuncDisjointUnion, FuncSymmetricDifference, FuncDifference:
		return true
	}
	return false
}

// IsComparison reports whether f is a boolean comparison.
func (f Function) IsComparison() bool { return f == FuncAnd || f == FuncOr }

// Term is one entry of the relation list as written.
type Term struct {
	Name      string       `json:"name"`
	Relations relation.Set `json:"-"`
}

// Expression is a parsed operator.
type Expression struct {
	Terms    []Term                     `json:"terms"`
	Spatial  []relation.SpatialRelation `json:"spatial,omitempty"`
	Temporal TemporalMode               `json:"temporal"`
	Function Function                   `json:"function"`
}

// Default returns the expression of "{equal}".
func Default() *Expression {
	return &Expression{Terms: []Term{equalTerm()}}
}

func equalTerm() Term {
	return Term{Name: "equal", Relations: relation.NewSet(relation.Equal)}
}

// Relations returns the union of the relations of all terms, with aliases
// expanded.
func (e *Expression) Relations() relation.Set {
	var s relation.Set
	for _, t := range e.Terms {
		s = s.Union(t.Relations)
	}
	if s.Empty() {
		return relation.NewSet(relation.Equal)
	}
	return s
}

// MatchesSpatial reports whether r satisfies the spatial part of e. An
// expression without spatial relations matches everything.
func (e *Expression) MatchesSpatial(r relation.SpatialRelation) bool {
	if len(e.Spatial) == 0 {
		return true
	}
	for _, s := range e.Spatial {
		if s == r {
			return true
		}
	}
	return false
}

// String renders the canonical form, e.g. "{equal|during,=:}".
func (e *Expression) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, t := range e.Terms {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(t.Name)
	}
	for _, s := range e.Spatial {
		b.WriteByte('|')
		b.WriteString(s.String())
	}
	if e.Function != FuncNone {
		b.WriteByte(',')
		b.WriteString(e.Temporal.String())
		b.WriteString(string(e.Function))
	}
	b.WriteByte('}')
	return b.String()
}
