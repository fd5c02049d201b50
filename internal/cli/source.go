package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/tgis/internal/compiler"
	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/store"
)

// extentSeparator joins the start and end of an extent argument.
// Slashes are not used because dateparse accepts "01/02/2006".
const extentSeparator = ".."

// openStore opens the register named by --db.
func (o *RootOptions) openStore() (*store.Store, error) {
	if o.Database == "" {
		return nil, NewExitError(ExitCommandError, "database path required (--db or TGIS_DB)")
	}
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// storeFor opens the register and reports a failure through f.
func (o *RootOptions) storeFor(f *OutputFormatter) (*store.Store, error) {
	st, err := o.openStore()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeDatabase, err.Error())
	}
	return st, nil
}

// loadSource returns the datasets named by ids, in that order. With a CUE
// file they are compiled from it; otherwise they are read from the register.
// No ids selects every dataset.
func loadSource(ctx context.Context, opts *RootOptions, file string, ids []string) ([]ir.Dataset, error) {
	if file != "" {
		loadResult, loadErrors := LoadDatasets(file, LoadModeFailFast)
		if len(loadErrors) > 0 {
			return nil, loadErrors[0]
		}
		return selectDatasets(loadResult.Datasets, ids)
	}

	st, err := opts.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if len(ids) == 0 {
		infos, err := st.ListDatasets(ctx)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			ids = append(ids, info.ID)
		}
	}
	return st.ReadDatasets(ctx, ids...)
}

// selectDatasets picks datasets by id in the order given.
func selectDatasets(all []ir.Dataset, ids []string) ([]ir.Dataset, error) {
	if len(ids) == 0 {
		return all, nil
	}
	byID := make(map[string]ir.Dataset, len(all))
	for _, ds := range all {
		byID[ds.ID] = ds
	}
	out := make([]ir.Dataset, 0, len(ids))
	for _, id := range ids {
		ds, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("read dataset %s: %w", id, store.ErrDatasetNotFound)
		}
		out = append(out, ds)
	}
	return out, nil
}

// sourceErrorCode classifies an error from loadSource.
func sourceErrorCode(err error) (int, string) {
	var loadErr *LoadError
	var exitErr *ExitError
	switch {
	case errors.As(err, &loadErr):
		return ExitCommandError, loadErr.Code
	case errors.As(err, &exitErr):
		return exitErr.Code, ErrCodeDatabase
	case errors.Is(err, store.ErrDatasetNotFound), errors.Is(err, store.ErrSampleNotFound):
		return ExitCommandError, ErrCodeNotFound
	default:
		return ExitFailure, codeOf(err)
	}
}

// codeOf returns the domain error code of err, or E001.
func codeOf(err error) string {
	if c := ir.CodeOf(err); c != "" {
		return string(c)
	}
	return ErrCodeGeneric
}

// parseExtent parses "start..end" or a single instant. With a unit the
// positions are relative integers; otherwise they are timestamps in any
// layout dateparse understands.
func parseExtent(s string, unit ir.Unit) (ir.Extent, error) {
	startText, endText, interval := strings.Cut(s, extentSeparator)
	start, err := parsePoint(startText, unit)
	if err != nil {
		return ir.Extent{}, err
	}
	if !interval {
		if unit != ir.UnitNone {
			return ir.NewRelativeExtent(start.Value(), start.Value(), unit)
		}
		return ir.NewInstant(start), nil
	}
	end, err := parsePoint(endText, unit)
	if err != nil {
		return ir.Extent{}, err
	}
	if unit != ir.UnitNone {
		return ir.NewRelativeExtent(start.Value(), end.Value(), unit)
	}
	return ir.NewExtent(start, end)
}

func parsePoint(s string, unit ir.Unit) (ir.Point, error) {
	s = strings.TrimSpace(s)
	if unit != ir.UnitNone {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return ir.Point{}, fmt.Errorf("relative position %q is not an integer", s)
		}
		return ir.Rel(n), nil
	}
	t, err := compiler.ParseTime(s)
	if err != nil {
		return ir.Point{}, err
	}
	return ir.At(t), nil
}

// parseBBox parses "north,south,east,west".
func parseBBox(s string) (*ir.BBox, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bbox %q: expected north,south,east,west", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bbox %q: %w", s, err)
		}
		v[i] = f
	}
	b := &ir.BBox{North: v[0], South: v[1], East: v[2], West: v[3]}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}
