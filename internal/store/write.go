package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tgis/internal/ir"
)

// WriteStatus reports what WriteDataset did.
type WriteStatus string

const (
	StatusCreated   WriteStatus = "created"
	StatusUnchanged WriteStatus = "unchanged"
	StatusReplaced  WriteStatus = "replaced"
)

// WriteResult describes a registered dataset.
type WriteResult struct {
	ID          string      `json:"id"`
	Fingerprint string      `json:"fingerprint"`
	Status      WriteStatus `json:"status"`
	Seq         int64       `json:"seq"`
}

// WriteDataset registers a dataset and its maps.
//
// Writing a dataset whose fingerprint is already stored under the same id is
// a no-op. A different definition under an existing id replaces the old one
// and takes a new sequence number. Invalid datasets are rejected before
// anything is written.
func (s *Store) WriteDataset(ctx context.Context, ds ir.Dataset) (WriteResult, error) {
	if err := ds.Validate(); err != nil {
		return WriteResult{}, fmt.Errorf("write dataset: %w", err)
	}
	fp, err := ir.DatasetFingerprint(ds)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write dataset: %w", err)
	}
	typ := ds.Type
	if typ == "" {
		typ = ir.TypeAbsolute
		if len(ds.Objects) > 0 {
			typ = ds.Objects[0].Extent.Type()
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write dataset: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res := WriteResult{ID: ds.ID, Fingerprint: fp, Status: StatusCreated}

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT fingerprint, seq FROM datasets WHERE id = ?`, ds.ID).
		Scan(&existing, &res.Seq)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return WriteResult{}, fmt.Errorf("write dataset: lookup: %w", err)
	case existing == fp:
		res.Status = StatusUnchanged
		return res, nil
	default:
		res.Status = StatusReplaced
		if _, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, ds.ID); err != nil {
			return WriteResult{}, fmt.Errorf("write dataset: replace: %w", err)
		}
	}

	res.Seq, err = nextSeq(ctx, tx, "datasets")
	if err != nil {
		return WriteResult{}, fmt.Errorf("write dataset: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO datasets (id, temporal_type, unit, granularity, fingerprint, seq, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ds.ID, string(typ), string(ds.Unit), ds.Granularity, fp, res.Seq, ir.IRVersion)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write dataset: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO maps (dataset_id, id, position, start_at, end_at, north, south, east, west)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return WriteResult{}, fmt.Errorf("write dataset: prepare maps: %w", err)
	}
	defer stmt.Close()

	for i, obj := range ds.Objects {
		box := nullBBox(obj.Spatial)
		_, err := stmt.ExecContext(ctx,
			ds.ID, obj.ID, i,
			encodePoint(obj.Extent.Start()), encodePoint(obj.Extent.End()),
			box[0], box[1], box[2], box[3],
		)
		if err != nil {
			return WriteResult{}, fmt.Errorf("write dataset: map %s: %w", obj.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return WriteResult{}, fmt.Errorf("write dataset: commit: %w", err)
	}
	return res, nil
}

// DeleteDataset removes a dataset and its maps.
// Returns ErrDatasetNotFound if the id is not registered.
func (s *Store) DeleteDataset(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete dataset %s: %w", id, ErrDatasetNotFound)
	}
	return nil
}
