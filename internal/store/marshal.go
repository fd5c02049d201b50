package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/tgis/internal/ir"
)

// encodePoint converts a point to its integer column value.
func encodePoint(p ir.Point) int64 {
	if p.Type() == ir.TypeRelative {
		return p.Value()
	}
	return p.Time().Unix()
}

// decodePoint is the inverse of encodePoint for the dataset's type.
func decodePoint(v int64, typ ir.TemporalType) ir.Point {
	if typ == ir.TypeRelative {
		return ir.Rel(v)
	}
	return ir.At(time.Unix(v, 0))
}

func decodeExtent(start, end int64, typ ir.TemporalType, unit ir.Unit) (ir.Extent, error) {
	if typ == ir.TypeRelative {
		return ir.NewRelativeExtent(start, end, unit)
	}
	return ir.NewExtent(decodePoint(start, typ), decodePoint(end, typ))
}

// nullBBox splits a bbox into nullable columns.
func nullBBox(b *ir.BBox) [4]sql.NullFloat64 {
	if b == nil {
		return [4]sql.NullFloat64{}
	}
	return [4]sql.NullFloat64{
		{Float64: b.North, Valid: true},
		{Float64: b.South, Valid: true},
		{Float64: b.East, Valid: true},
		{Float64: b.West, Valid: true},
	}
}

// scanBBox rebuilds a bbox; nil when any column is NULL.
func scanBBox(cols [4]sql.NullFloat64) *ir.BBox {
	for _, c := range cols {
		if !c.Valid {
			return nil
		}
	}
	return &ir.BBox{North: cols[0].Float64, South: cols[1].Float64, East: cols[2].Float64, West: cols[3].Float64}
}

// marshalMembers converts granule member IDs to canonical JSON TEXT.
func marshalMembers(members map[string][]string) (string, error) {
	m := make(map[string]any, len(members))
	for k, ids := range members {
		if ids == nil {
			ids = []string{}
		}
		m[k] = ids
	}
	data, err := ir.MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("marshal members: %w", err)
	}
	return string(data), nil
}

func unmarshalMembers(s string) (map[string][]string, error) {
	var m map[string][]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("unmarshal members: %w", err)
	}
	return m, nil
}

func marshalIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := ir.MarshalCanonical(ids)
	if err != nil {
		return "", fmt.Errorf("marshal ids: %w", err)
	}
	return string(data), nil
}

func unmarshalIDs(s string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal ids: %w", err)
	}
	return ids, nil
}
