package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tgis/internal/expr"
	"github.com/roach88/tgis/internal/granularity"
	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/relation"
	"github.com/roach88/tgis/internal/sampler"
)

// Params are the inputs of a sampling run, in the form they are stored.
type Params struct {
	Expression  string       `json:"expression"`
	Mode        sampler.Mode `json:"mode"`
	Gaps        bool         `json:"gaps"`
	Granularity string       `json:"granularity,omitempty"`
	Policy      string       `json:"policy"`
	Datasets    []string     `json:"datasets"`
}

// Run samples datasets with the parameters. The datasets must be given in
// the order of p.Datasets.
func (p Params) Run(datasets []ir.Dataset) ([]ir.Granule, error) {
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	pol, err := relation.ParsePolicy(p.Policy)
	if err != nil {
		return nil, err
	}
	opts := []sampler.Option{sampler.WithGaps(p.Gaps), sampler.WithPolicy(pol)}
	if p.Granularity != "" {
		g, err := granularity.Parse(p.Granularity)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sampler.WithGranularity(g))
	}
	return sampler.Run(p.Mode, datasets, e, opts...)
}

// expression parses p.Expression; empty selects "{equal}".
func (p Params) expression() (*expr.Expression, error) {
	if p.Expression == "" {
		return expr.Default(), nil
	}
	return expr.Parse(p.Expression)
}

// key is the run descriptor folded into the sample fingerprint.
func (p Params) key() (string, error) {
	e, err := p.expression()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s mode=%s gaps=%t granularity=%s policy=%s",
		e.String(), p.Mode, p.Gaps, p.Granularity, p.Policy), nil
}

// GranuleRecord is one stored granule.
type GranuleRecord struct {
	Index       int                 `json:"index"`
	Start       string              `json:"start"`
	End         string              `json:"end"`
	Count       int                 `json:"count,omitempty"`
	Members     map[string][]string `json:"members"`
	Fingerprint string              `json:"fingerprint"`
}

// SampleRecord is a recorded sampling run.
type SampleRecord struct {
	ID       string          `json:"id"`
	Params   Params          `json:"params"`
	Granules []GranuleRecord `json:"granules"`
	Seq      int64           `json:"seq"`
}

// NewSampleRecord fingerprints a run. datasets must be the inputs the
// granules were produced from, in p.Datasets order.
func NewSampleRecord(p Params, datasets []ir.Dataset, granules []ir.Granule) (SampleRecord, error) {
	if p.Policy == "" {
		p.Policy = relation.PolicyZeroLength.String()
	}
	if p.Mode == "" {
		p.Mode = sampler.ModeTopology
	}
	key, err := p.key()
	if err != nil {
		return SampleRecord{}, fmt.Errorf("new sample record: %w", err)
	}

	dsFP := make([]string, len(datasets))
	for i, ds := range datasets {
		if dsFP[i], err = ir.DatasetFingerprint(ds); err != nil {
			return SampleRecord{}, fmt.Errorf("new sample record: %w", err)
		}
	}

	rec := SampleRecord{Params: p, Granules: make([]GranuleRecord, len(granules))}
	gFP := make([]string, len(granules))
	for i, g := range granules {
		fp, err := ir.GranuleFingerprint(g)
		if err != nil {
			return SampleRecord{}, fmt.Errorf("new sample record: granule %d: %w", i, err)
		}
		gFP[i] = fp
		rec.Granules[i] = GranuleRecord{
			Index:       i,
			Start:       g.Start().String(),
			End:         g.End().String(),
			Count:       g.Count,
			Members:     g.MemberIDs(),
			Fingerprint: fp,
		}
	}

	rec.ID, err = ir.SampleFingerprint(key, dsFP, gFP)
	if err != nil {
		return SampleRecord{}, fmt.Errorf("new sample record: %w", err)
	}
	return rec, nil
}

// WriteSample stores a sampling run and its granules.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: the id is content
// addressed, so recording the same run twice keeps the first sequence number.
func (s *Store) WriteSample(ctx context.Context, rec SampleRecord) (inserted bool, err error) {
	ids, err := marshalIDs(rec.Params.Datasets)
	if err != nil {
		return false, fmt.Errorf("write sample: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write sample: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	seq, err := nextSeq(ctx, tx, "samples")
	if err != nil {
		return false, fmt.Errorf("write sample: %w", err)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO samples (id, expression, mode, gaps, granularity, policy, datasets, seq, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, rec.ID, rec.Params.Expression, string(rec.Params.Mode), rec.Params.Gaps,
		rec.Params.Granularity, rec.Params.Policy, ids, seq, ir.EngineVersion)
	if err != nil {
		return false, fmt.Errorf("write sample: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write sample: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	for _, g := range rec.Granules {
		members, err := marshalMembers(g.Members)
		if err != nil {
			return false, fmt.Errorf("write sample: granule %d: %w", g.Index, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO granules (sample_id, idx, start_at, end_at, count, members, fingerprint)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, g.Index, g.Start, g.End, g.Count, members, g.Fingerprint)
		if err != nil {
			return false, fmt.Errorf("write sample: granule %d: %w", g.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write sample: commit: %w", err)
	}
	return true, nil
}

// ReadSample loads a recorded run with its granules in output order.
// Returns ErrSampleNotFound if the id has not been recorded.
func (s *Store) ReadSample(ctx context.Context, id string) (SampleRecord, error) {
	rec := SampleRecord{ID: id}
	var mode, ids string
	err := s.db.QueryRowContext(ctx, `
		SELECT expression, mode, gaps, granularity, policy, datasets, seq
		FROM samples WHERE id = ?
	`, id).Scan(&rec.Params.Expression, &mode, &rec.Params.Gaps, &rec.Params.Granularity,
		&rec.Params.Policy, &ids, &rec.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return SampleRecord{}, fmt.Errorf("read sample %s: %w", id, ErrSampleNotFound)
	}
	if err != nil {
		return SampleRecord{}, fmt.Errorf("read sample %s: %w", id, err)
	}
	rec.Params.Mode = sampler.Mode(mode)
	if rec.Params.Datasets, err = unmarshalIDs(ids); err != nil {
		return SampleRecord{}, fmt.Errorf("read sample %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, start_at, end_at, count, members, fingerprint
		FROM granules
		WHERE sample_id = ?
		ORDER BY idx ASC
	`, id)
	if err != nil {
		return SampleRecord{}, fmt.Errorf("query granules: %w", err)
	}
	defer rows.Close()

	rec.Granules = []GranuleRecord{}
	for rows.Next() {
		var g GranuleRecord
		var members string
		if err := rows.Scan(&g.Index, &g.Start, &g.End, &g.Count, &members, &g.Fingerprint); err != nil {
			return SampleRecord{}, fmt.Errorf("scan granule: %w", err)
		}
		if g.Members, err = unmarshalMembers(members); err != nil {
			return SampleRecord{}, err
		}
		rec.Granules = append(rec.Granules, g)
	}
	if err := rows.Err(); err != nil {
		return SampleRecord{}, fmt.Errorf("iterate granules: %w", err)
	}
	return rec, nil
}

// ListSamples returns recorded runs without their granules, oldest first.
func (s *Store) ListSamples(ctx context.Context) ([]SampleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expression, mode, gaps, granularity, policy, datasets, seq
		FROM samples
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	recs := []SampleRecord{}
	for rows.Next() {
		var rec SampleRecord
		var mode, ids string
		if err := rows.Scan(&rec.ID, &rec.Params.Expression, &mode, &rec.Params.Gaps,
			&rec.Params.Granularity, &rec.Params.Policy, &ids, &rec.Seq); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		rec.Params.Mode = sampler.Mode(mode)
		if rec.Params.Datasets, err = unmarshalIDs(ids); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return recs, nil
}
