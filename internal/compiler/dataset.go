package compiler

import (
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/araddon/dateparse"

	"github.com/roach88/tgis/internal/granularity"
	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/timemath"
)

// CompileDataset parses a CUE value into a Dataset. The dataset ID is the
// last label of the value's path, e.g. "precip" for dataset.precip.
func CompileDataset(v cue.Value) (*ir.Dataset, error) {
	var id string
	if labels := v.Path().Selectors(); len(labels) > 0 {
		id = labels[len(labels)-1].String()
	}
	return compileDataset(id, v)
}

func compileDataset(id string, v cue.Value) (*ir.Dataset, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	ds := &ir.Dataset{ID: id, Type: ir.TypeAbsolute}
	if ds.ID == "" {
		return nil, &CompileError{Field: "dataset", Message: "dataset must be declared under a label", Pos: v.Pos()}
	}

	if tv := v.LookupPath(cue.ParsePath("type")); tv.Exists() {
		s, err := tv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		typ, err := ir.ParseTemporalType(s)
		if err != nil {
			return nil, &CompileError{Field: "type", Message: err.Error(), Pos: tv.Pos()}
		}
		ds.Type = typ
	}

	if uv := v.LookupPath(cue.ParsePath("unit")); uv.Exists() {
		s, err := uv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		u, err := ir.ParseUnit(s)
		if err != nil {
			return nil, &CompileError{Field: "unit", Message: err.Error(), Pos: uv.Pos()}
		}
		ds.Unit = u
	}
	if ds.Type == ir.TypeRelative && ds.Unit == ir.UnitNone {
		return nil, &CompileError{Field: "unit", Message: "relative datasets require a unit", Pos: v.Pos()}
	}

	var gran granularity.Granularity
	if gv := v.LookupPath(cue.ParsePath("granularity")); gv.Exists() {
		s, err := gv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		gran, err = granularity.Parse(s)
		if err != nil {
			return nil, &CompileError{Field: "granularity", Message: err.Error(), Pos: gv.Pos()}
		}
		ds.Granularity = gran.String()
	}

	if mv := v.LookupPath(cue.ParsePath("maps")); mv.Exists() {
		iter, err := mv.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			obj, err := compileMap(ds, iter.Value())
			if err != nil {
				return nil, err
			}
			ds.Objects = append(ds.Objects, obj)
		}
	}

	if sv := v.LookupPath(cue.ParsePath("series")); sv.Exists() {
		if gran.IsZero() {
			return nil, &CompileError{Field: "series", Message: "series requires a granularity", Pos: sv.Pos()}
		}
		objs, err := compileSeries(ds, gran, sv)
		if err != nil {
			return nil, err
		}
		ds.Objects = append(ds.Objects, objs...)
	}

	if len(ds.Objects) == 0 {
		return nil, &CompileError{Field: "maps", Message: "at least one map is required", Pos: v.Pos()}
	}
	return ds, nil
}

// compileMap parses one entry of the maps list.
func compileMap(ds *ir.Dataset, v cue.Value) (ir.Object, error) {
	start, err := parsePoint(ds, v.LookupPath(cue.ParsePath("start")), "start")
	if err != nil {
		return ir.Object{}, err
	}

	var end ir.Point
	if ev := v.LookupPath(cue.ParsePath("end")); ev.Exists() {
		end, err = parsePoint(ds, ev, "end")
		if err != nil {
			return ir.Object{}, err
		}
	}

	ext, err := ir.NewExtent(start, end)
	if err != nil {
		return ir.Object{}, &CompileError{Field: "maps", Message: err.Error(), Pos: v.Pos()}
	}
	if ds.Type == ir.TypeRelative {
		ext, err = ir.NewRelativeExtent(ext.Start().Value(), ext.End().Value(), ds.Unit)
		if err != nil {
			return ir.Object{}, &CompileError{Field: "maps", Message: err.Error(), Pos: v.Pos()}
		}
	}

	obj := ir.Object{Extent: ext}
	if iv := v.LookupPath(cue.ParsePath("id")); iv.Exists() {
		obj.ID, err = iv.String()
		if err != nil {
			return ir.Object{}, formatCUEError(err)
		}
	} else {
		obj.ID = ir.ObjectID(ds.ID, start)
	}

	if bv := v.LookupPath(cue.ParsePath("bbox")); bv.Exists() {
		box, err := compileBBox(bv)
		if err != nil {
			return ir.Object{}, err
		}
		obj.Spatial = box
	}
	return obj, nil
}

func parsePoint(ds *ir.Dataset, v cue.Value, field string) (ir.Point, error) {
	if !v.Exists() {
		return ir.Point{}, &CompileError{Field: "maps." + field, Message: field + " is required", Pos: v.Pos()}
	}
	if ds.Type == ir.TypeRelative {
		n, err := v.Int64()
		if err != nil {
			return ir.Point{}, &CompileError{Field: "maps." + field, Message: "relative positions must be integers", Pos: v.Pos()}
		}
		return ir.Rel(n), nil
	}
	s, err := v.String()
	if err != nil {
		return ir.Point{}, &CompileError{Field: "maps." + field, Message: "absolute timestamps must be strings", Pos: v.Pos()}
	}
	t, err := ParseTime(s)
	if err != nil {
		return ir.Point{}, &CompileError{Field: "maps." + field, Message: err.Error(), Pos: v.Pos()}
	}
	return ir.At(t), nil
}

// ParseTime parses a timestamp in any layout dateparse recognises.
// Timestamps without a zone are read as UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func compileBBox(v cue.Value) (*ir.BBox, error) {
	var box ir.BBox
	fields := []struct {
		name string
		dst  *float64
	}{
		{"north", &box.North},
		{"south", &box.South},
		{"east", &box.East},
		{"west", &box.West},
	}
	for _, f := range fields {
		fv := v.LookupPath(cue.ParsePath(f.name))
		if !fv.Exists() {
			return nil, &CompileError{Field: "bbox." + f.name, Message: f.name + " is required", Pos: v.Pos()}
		}
		n, err := fv.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		*f.dst = n
	}
	if err := box.Validate(); err != nil {
		return nil, &CompileError{Field: "bbox", Message: err.Error(), Pos: v.Pos()}
	}
	return &box, nil
}

// compileSeries expands {start, count} into count consecutive maps of the
// dataset granularity.
func compileSeries(ds *ir.Dataset, gran granularity.Granularity, v cue.Value) ([]ir.Object, error) {
	cv := v.LookupPath(cue.ParsePath("count"))
	if !cv.Exists() {
		return nil, &CompileError{Field: "series.count", Message: "count is required", Pos: v.Pos()}
	}
	count, err := cv.Int64()
	if err != nil || count <= 0 {
		return nil, &CompileError{Field: "series.count", Message: "count must be a positive integer", Pos: cv.Pos()}
	}
	start, err := parsePoint(ds, v.LookupPath(cue.ParsePath("start")), "start")
	if err != nil {
		return nil, err
	}

	objs := make([]ir.Object, 0, count)
	for i := int64(0); i < count; i++ {
		var ext ir.Extent
		if ds.Type == ir.TypeRelative {
			ext, err = ir.NewRelativeExtent(start.Value()+i*gran.Count, start.Value()+(i+1)*gran.Count, ds.Unit)
		} else {
			from := timemath.Add(start.Time(), i*gran.Count, gran.Unit)
			to := timemath.Add(start.Time(), (i+1)*gran.Count, gran.Unit)
			ext, err = ir.Interval(from, to)
		}
		if err != nil {
			return nil, &CompileError{Field: "series", Message: err.Error(), Pos: v.Pos()}
		}
		objs = append(objs, ir.Object{ID: fmt.Sprintf("%s_%d", ds.ID, i+1), Extent: ext})
	}
	return objs, nil
}

// CompileDatasets compiles every field of the top-level "dataset" struct
// in declaration order.
func CompileDatasets(v cue.Value) ([]ir.Dataset, error) {
	dv := v.LookupPath(cue.ParsePath("dataset"))
	if !dv.Exists() {
		return nil, &CompileError{Field: "dataset", Message: "no datasets declared", Pos: v.Pos()}
	}
	iter, err := dv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []ir.Dataset
	for iter.Next() {
		ds, err := compileDataset(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, *ds)
	}
	return out, nil
}

// CompileFile compiles the datasets declared in a single CUE file.
func CompileFile(path string) ([]ir.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileDatasets(v)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}
