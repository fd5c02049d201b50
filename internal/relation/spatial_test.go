package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tgis/internal/ir"
)

func box(n, s, e, w float64) ir.BBox {
	return ir.BBox{North: n, South: s, East: e, West: w}
}

func TestClassifySpatial(t *testing.T) {
	tests := []struct {
		name string
		a, b ir.BBox
		want SpatialRelation
	}{
		{"equivalent", box(10, 0, 10, 0), box(10, 0, 10, 0), Equivalent},
		{"disjoint", box(10, 0, 10, 0), box(30, 20, 30, 20), Disjoint},
		{"meet on edge", box(10, 0, 10, 0), box(10, 0, 20, 10), Meet},
		{"meet on corner", box(10, 0, 10, 0), box(20, 10, 20, 10), Meet},
		{"contain", box(10, 0, 10, 0), box(8, 2, 8, 2), Contain},
		{"in", box(8, 2, 8, 2), box(10, 0, 10, 0), In},
		{"cover", box(10, 0, 10, 0), box(10, 2, 8, 2), Cover},
		{"covered", box(10, 2, 8, 2), box(10, 0, 10, 0), Covered},
		{"overlap", box(10, 0, 10, 0), box(15, 5, 15, 5), Overlap},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifySpatial(tc.a, tc.b)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want.Inverse(), ClassifySpatial(tc.b, tc.a))
		})
	}
}

func TestParseSpatial(t *testing.T) {
	r, err := ParseSpatial("Cover")
	require.NoError(t, err)
	assert.Equal(t, Cover, r)

	_, err = ParseSpatial("touches")
	assert.Error(t, err)
}
