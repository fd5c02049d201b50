package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tgis/internal/ir"
)

// DatasetInfo summarises a registered dataset without its maps.
type DatasetInfo struct {
	ID          string          `json:"id"`
	Type        ir.TemporalType `json:"temporal_type"`
	Unit        ir.Unit         `json:"unit,omitempty"`
	Granularity string          `json:"granularity,omitempty"`
	Fingerprint string          `json:"fingerprint"`
	Maps        int             `json:"maps"`
	Seq         int64           `json:"seq"`
}

// ListDatasets returns every registered dataset ordered by registration.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing is registered.
func (s *Store) ListDatasets(ctx context.Context) ([]DatasetInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.temporal_type, d.unit, d.granularity, d.fingerprint, d.seq,
		       (SELECT COUNT(*) FROM maps m WHERE m.dataset_id = d.id)
		FROM datasets d
		ORDER BY d.seq ASC, d.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	infos := []DatasetInfo{}
	for rows.Next() {
		var info DatasetInfo
		var typ, unit string
		if err := rows.Scan(&info.ID, &typ, &unit, &info.Granularity, &info.Fingerprint, &info.Seq, &info.Maps); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		info.Type = ir.TemporalType(typ)
		info.Unit = ir.Unit(unit)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate datasets: %w", err)
	}
	return infos, nil
}

// ReadDataset loads a dataset and its maps in insertion order.
// Returns ErrDatasetNotFound if the id is not registered.
func (s *Store) ReadDataset(ctx context.Context, id string) (ir.Dataset, error) {
	ds := ir.Dataset{ID: id}
	var typ, unit string
	err := s.db.QueryRowContext(ctx, `
		SELECT temporal_type, unit, granularity FROM datasets WHERE id = ?
	`, id).Scan(&typ, &unit, &ds.Granularity)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Dataset{}, fmt.Errorf("read dataset %s: %w", id, ErrDatasetNotFound)
	}
	if err != nil {
		return ir.Dataset{}, fmt.Errorf("read dataset %s: %w", id, err)
	}
	ds.Type = ir.TemporalType(typ)
	ds.Unit = ir.Unit(unit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_at, end_at, north, south, east, west
		FROM maps
		WHERE dataset_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return ir.Dataset{}, fmt.Errorf("query maps: %w", err)
	}
	defer rows.Close()

	ds.Objects = []ir.Object{}
	for rows.Next() {
		var obj ir.Object
		var start, end int64
		var box [4]sql.NullFloat64
		if err := rows.Scan(&obj.ID, &start, &end, &box[0], &box[1], &box[2], &box[3]); err != nil {
			return ir.Dataset{}, fmt.Errorf("scan map: %w", err)
		}
		obj.Extent, err = decodeExtent(start, end, ds.Type, ds.Unit)
		if err != nil {
			return ir.Dataset{}, fmt.Errorf("map %s: %w", obj.ID, err)
		}
		obj.Spatial = scanBBox(box)
		ds.Objects = append(ds.Objects, obj)
	}
	if err := rows.Err(); err != nil {
		return ir.Dataset{}, fmt.Errorf("iterate maps: %w", err)
	}
	return ds, nil
}

// ReadDatasets loads several datasets in the order given.
func (s *Store) ReadDatasets(ctx context.Context, ids ...string) ([]ir.Dataset, error) {
	out := make([]ir.Dataset, 0, len(ids))
	for _, id := range ids {
		ds, err := s.ReadDataset(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

// ReadMapsBetween returns the maps of a dataset whose start lies in
// [from, to], ordered by start then position.
func (s *Store) ReadMapsBetween(ctx context.Context, id string, from, to ir.Point) ([]ir.Object, error) {
	ds, err := s.ReadDataset(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range []ir.Point{from, to} {
		if p.Type() != ds.Type {
			return nil, &ir.IncompatibleTemporalTypeError{Left: ds.Type, Right: p.Type(), Context: "read maps " + id}
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM maps
		WHERE dataset_id = ? AND start_at BETWEEN ? AND ?
		ORDER BY start_at ASC, position ASC
	`, id, encodePoint(from), encodePoint(to))
	if err != nil {
		return nil, fmt.Errorf("query maps between: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]ir.Object, len(ds.Objects))
	for _, obj := range ds.Objects {
		byID[obj.ID] = obj
	}
	objs := []ir.Object{}
	for rows.Next() {
		var mid string
		if err := rows.Scan(&mid); err != nil {
			return nil, fmt.Errorf("scan map id: %w", err)
		}
		objs = append(objs, byID[mid])
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate maps between: %w", err)
	}
	return objs, nil
}
