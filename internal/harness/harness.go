package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/tgis/internal/compiler"
	"github.com/roach88/tgis/internal/granularity"
	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/relation"
	"github.com/roach88/tgis/internal/sampler"
	"github.com/roach88/tgis/internal/store"
	"github.com/roach88/tgis/internal/topology"
)

// Harness is the scenario execution engine.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Compile datasets from specs and inline definitions
// 2. Register them in the store
// 3. Sample them and record the run
// 4. Replay the run and compare fingerprints
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with a caller-supplied logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, logger: logger}
	ctx := context.Background()

	datasets, err := h.loadDatasets(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load datasets: %w", err)
	}
	if err := compiler.Combine(compiler.Validate(datasets)); err != nil {
		return nil, fmt.Errorf("invalid datasets: %w", err)
	}
	for _, ds := range datasets {
		res, err := st.WriteDataset(ctx, ds)
		if err != nil {
			return nil, fmt.Errorf("failed to register dataset %s: %w", ds.ID, err)
		}
		h.logger.Debug("dataset registered", "dataset", ds.ID, "maps", len(ds.Objects), "fingerprint", res.Fingerprint)
	}

	ids := scenario.Sample.Datasets
	if len(ids) == 0 {
		for _, ds := range datasets {
			ids = append(ids, ds.ID)
		}
	}
	mode, err := sampler.ParseMode(scenario.Sample.Mode)
	if err != nil {
		return nil, err
	}
	params := store.Params{
		Expression:  scenario.Sample.Expression,
		Mode:        mode,
		Gaps:        scenario.Sample.Gaps,
		Granularity: scenario.Sample.Granularity,
		Policy:      scenario.Sample.Policy,
		Datasets:    ids,
	}
	ordered, err := st.ReadDatasets(ctx, ids...)
	if err != nil {
		return nil, err
	}

	granules, err := params.Run(ordered)
	if err != nil {
		return nil, fmt.Errorf("failed to sample: %w", err)
	}
	rec, err := store.NewSampleRecord(params, ordered, granules)
	if err != nil {
		return nil, err
	}
	if _, err := st.WriteSample(ctx, rec); err != nil {
		return nil, err
	}
	h.logger.Info("sample recorded", "sample_id", rec.ID, "granules", len(granules))

	result := NewResult()
	result.SampleID = rec.ID
	if g, err := granularity.ResolveDatasets(ordered); err == nil {
		result.Granularity = g.String()
	}
	for _, g := range rec.Granules {
		result.Granules = append(result.Granules, GranuleSnapshot{
			Index:   g.Index,
			Start:   g.Start,
			End:     g.End,
			Count:   g.Count,
			Members: g.Members,
		})
	}

	replay, err := st.Replay(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to replay: %w", err)
	}
	if !replay.Identical {
		result.AddError(fmt.Sprintf("replay diverged at granules %v", replay.Mismatches))
	}

	pol, err := relation.ParsePolicy(scenario.Sample.Policy)
	if err != nil {
		return nil, err
	}
	actx := &AssertionContext{Datasets: ordered, Policy: pol}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// loadDatasets compiles spec files first, then inline definitions, each
// in declaration order.
func (h *Harness) loadDatasets(s *Scenario) ([]ir.Dataset, error) {
	var out []ir.Dataset
	for _, path := range s.Specs {
		ds, err := compiler.CompileFile(path)
		if err != nil {
			return nil, err
		}
		h.logger.Debug("spec compiled", "path", path, "datasets", len(ds))
		out = append(out, ds...)
	}

	ctx := cuecontext.New()
	for _, def := range s.Datasets {
		v := ctx.Encode(map[string]any{"dataset": map[string]any{def.ID: def.toCUE()}})
		ds, err := compiler.CompileDatasets(v)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", def.ID, err)
		}
		out = append(out, ds...)
	}
	return out, nil
}

// toCUE converts an inline definition to the shape compiler expects.
func (d DatasetDef) toCUE() map[string]any {
	m := map[string]any{}
	if d.Type != "" {
		m["type"] = d.Type
	}
	if d.Unit != "" {
		m["unit"] = d.Unit
	}
	if d.Granularity != "" {
		m["granularity"] = d.Granularity
	}
	if len(d.Maps) > 0 {
		maps := make([]any, len(d.Maps))
		for i, mp := range d.Maps {
			entry := map[string]any{"start": mp.Start}
			if mp.ID != "" {
				entry["id"] = mp.ID
			}
			if mp.End != nil {
				entry["end"] = mp.End
			}
			if mp.BBox != nil {
				entry["bbox"] = map[string]any{
					"north": mp.BBox.North,
					"south": mp.BBox.South,
					"east":  mp.BBox.East,
					"west":  mp.BBox.West,
				}
			}
			maps[i] = entry
		}
		m["maps"] = maps
	}
	if d.Series != nil {
		m["series"] = map[string]any{"start": d.Series.Start, "count": d.Series.Count}
	}
	return m
}

// topologyOf builds the topology of the scenario datasets on first use.
func (a *AssertionContext) topologyOf() (*topology.Topology, error) {
	if a.topo == nil {
		t, err := topology.BuildDatasets(a.Datasets, topology.WithPolicy(a.Policy))
		if err != nil {
			return nil, err
		}
		a.topo = t
	}
	return a.topo, nil
}
