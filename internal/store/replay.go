package store

import (
	"context"
	"fmt"
)

// ReplayResult compares a recorded run with a fresh one over the currently
// registered datasets.
type ReplayResult struct {
	SampleID   string `json:"sample_id"`
	ReplayID   string `json:"replay_id"`
	Recorded   int    `json:"recorded"`
	Replayed   int    `json:"replayed"`
	Mismatches []int  `json:"mismatches,omitempty"` // granule indices whose fingerprints differ
	Identical  bool   `json:"identical"`
}

// Replay re-runs a recorded sample against the registered datasets and
// reports every granule whose fingerprint no longer matches. Sampling is a
// pure function of its inputs, so a run over unchanged datasets is always
// identical.
func (s *Store) Replay(ctx context.Context, id string) (ReplayResult, error) {
	rec, err := s.ReadSample(ctx, id)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	datasets, err := s.ReadDatasets(ctx, rec.Params.Datasets...)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	granules, err := rec.Params.Run(datasets)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	fresh, err := NewSampleRecord(rec.Params, datasets, granules)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	res := ReplayResult{
		SampleID: rec.ID,
		ReplayID: fresh.ID,
		Recorded: len(rec.Granules),
		Replayed: len(fresh.Granules),
	}
	n := max(res.Recorded, res.Replayed)
	for i := 0; i < n; i++ {
		if i >= res.Recorded || i >= res.Replayed ||
			rec.Granules[i].Fingerprint != fresh.Granules[i].Fingerprint {
			res.Mismatches = append(res.Mismatches, i)
		}
	}

	res.Identical = res.SampleID == res.ReplayID && len(res.Mismatches) == 0
	return res, nil
}
