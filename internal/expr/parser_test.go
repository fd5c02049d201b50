package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/relation"
)

func termSets(e *Expression) []relation.Set {
	out := make([]relation.Set, len(e.Terms))
	for i, t := range e.Terms {
		out[i] = t.Relations
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		terms    []relation.Set
		temporal TemporalMode
		function Function
	}{
		{
			in:       "{over| equal,||}",
			terms:    []relation.Set{relation.Over, relation.NewSet(relation.Equal)},
			temporal: TemporalUnion,
			function: FuncUnion,
		},
		{
			in:       "{!:}",
			terms:    []relation.Set{relation.NewSet(relation.Equal)},
			temporal: TemporalEqual,
			function: FuncNotSelect,
		},
		{
			in: "{equal | during | follows,+!:}",
			terms: []relation.Set{
				relation.NewSet(relation.Equal),
				relation.NewSet(relation.During),
				relation.NewSet(relation.MetBy),
			},
			temporal: TemporalSpan,
			function: FuncNotSelect,
		},
		{
			in:       "{|#}",
			terms:    []relation.Set{relation.NewSet(relation.Equal)},
			temporal: TemporalUnion,
			function: FuncCount,
		},
		{
			in:       "{equal}",
			terms:    []relation.Set{relation.NewSet(relation.Equal)},
			temporal: TemporalNone,
			function: FuncNone,
		},
		{
			in:       "{during,:}",
			terms:    []relation.Set{relation.NewSet(relation.During)},
			temporal: TemporalEqual,
			function: FuncSelect,
		},
		{
			in:       "{precedes|started|finished|overlapped,&~}",
			terms: []relation.Set{
				relation.NewSet(relation.Meets),
				relation.NewSet(relation.StartedBy),
				relation.NewSet(relation.FinishedBy),
				relation.NewSet(relation.OverlappedBy),
			},
			temporal: TemporalIntersect,
			function: FuncDifference,
		},
		{
			in:       "{EQUAL|During, ^}",
			terms:    []relation.Set{relation.NewSet(relation.Equal), relation.NewSet(relation.During)},
			temporal: TemporalEqual,
			function: FuncSymmetricDifference,
		},
		{
			in:       "{before|after}",
			terms:    []relation.Set{relation.NewSet(relation.Before), relation.NewSet(relation.After)},
			temporal: TemporalNone,
			function: FuncNone,
		},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			e, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.terms, termSets(e))
			assert.Equal(t, tc.temporal, e.Temporal)
			assert.Equal(t, tc.function, e.Function)
		})
	}
}

func TestParseComparison(t *testing.T) {
	tests := []struct {
		in       string
		terms    []relation.Set
		temporal TemporalMode
		function Function
	}{
		{
			in:       "{equal| during,&&}",
			terms:    []relation.Set{relation.NewSet(relation.Equal), relation.NewSet(relation.During)},
			temporal: TemporalEqual,
			function: FuncAnd,
		},
		{
			in:       "{over,|||}",
			terms:    []relation.Set{relation.Over},
			temporal: TemporalUnion,
			function: FuncOr,
		},
		{
			in:       "{+&&}",
			terms:    []relation.Set{relation.NewSet(relation.Equal)},
			temporal: TemporalSpan,
			function: FuncAnd,
		},
		{
			in:       "{contains}",
			terms:    []relation.Set{relation.NewSet(relation.Contains)},
			temporal: TemporalNone,
			function: FuncNone,
		},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			e, err := ParseComparison(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.terms, termSets(e))
			assert.Equal(t, tc.temporal, e.Temporal)
			assert.Equal(t, tc.function, e.Function)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		in  string
		pos int
	}{
		{"", 0},
		{"equal", 0},
		{"{}", 1},
		{"{equal", 6},
		{"{equal,}", 7},
		{"{equal|}", 7},
		{"{sideways}", 1},
		{"{equal,:}x", 9},
		{"{equal,*}", 7},
		{"{equal,=}", 7},
		{"{equal,!}", 7},
		{"{equal during}", 7},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			e, err := Parse(tc.in)
			require.Error(t, err)
			assert.Nil(t, e)
			assert.True(t, IsParseError(err))
			assert.Equal(t, ir.ErrCodeParse, ir.CodeOf(err))

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.pos, pe.Pos)
		})
	}
}

func TestParseComparison_RejectsPlainFunctions(t *testing.T) {
	_, err := ParseComparison("{equal,:}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comparison function")

	_, err = Parse("{equal,&&}")
	require.NoError(t, err, "plain mode reads && as intersect mode with intersection")
}

func TestParse_Spatial(t *testing.T) {
	e, err := Parse("{equal|cover|in,:}")
	require.NoError(t, err)
	assert.Equal(t, relation.NewSet(relation.Equal), e.Relations())
	assert.Equal(t, []relation.SpatialRelation{relation.Cover, relation.In}, e.Spatial)
	assert.True(t, e.MatchesSpatial(relation.In))
	assert.False(t, e.MatchesSpatial(relation.Overlap))

	e, err = Parse("{overlap}")
	require.NoError(t, err)
	assert.Equal(t, relation.NewSet(relation.Equal), e.Relations())
}

func TestExpression_Relations(t *testing.T) {
	e := MustParse("{over|equal,|}")
	assert.Equal(t, relation.NewSet(relation.Equal, relation.Overlaps, relation.OverlappedBy), e.Relations())
	assert.Equal(t, relation.NewSet(relation.Equal), Default().Relations())
}

func TestExpression_String(t *testing.T) {
	tests := map[string]string{
		"{ EQUAL | during , + !: }": "{equal|during,+!:}",
		"{!:}":                      "{equal,=!:}",
		"{over}":                    "{over}",
		"{equal|cover,#}":           "{equal|cover,=#}",
	}
	for in, want := range tests {
		e, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, e.String())

		again, err := Parse(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, again)
	}
}

func TestParseError_Context(t *testing.T) {
	_, err := Parse("{equal,*}")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "{equal,*}\n       ^", pe.Context())
}
