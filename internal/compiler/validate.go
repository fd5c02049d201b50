package compiler

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/roach88/tgis/internal/granularity"
	"github.com/roach88/tgis/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Dataset errors (E101-E109)
	ErrDatasetIDEmpty      = "E101" // dataset id is required
	ErrDatasetNoMaps       = "E102" // at least one map required
	ErrMapIDEmpty          = "E103" // map id is required
	ErrDuplicateMapID      = "E104" // duplicate map id within a dataset
	ErrMixedTemporalType   = "E105" // map type differs from dataset type
	ErrInvalidBBox         = "E106" // north < south or east < west
	ErrInvalidGranularity  = "E107" // granularity does not parse
	ErrRelativeUnitMissing = "E108" // relative dataset without a unit

	// Collection errors (E110-E119)
	ErrDuplicateDatasetID = "E110" // two datasets share an id
	ErrMixedDatasetTypes  = "E111" // absolute and relative datasets combined
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled dataset or a collection of datasets.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch d := v.(type) {
	case *ir.Dataset:
		return validateDataset(d)
	case ir.Dataset:
		return validateDataset(&d)
	case []ir.Dataset:
		return validateCollection(d)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// Combine folds validation errors into a single error, nil when errs is
// empty.
func Combine(errs []ValidationError) error {
	var err error
	for _, e := range errs {
		err = multierr.Append(err, e)
	}
	return err
}

func validateDataset(d *ir.Dataset) []ValidationError {
	var errs []ValidationError

	if d.ID == "" {
		errs = append(errs, ValidationError{
			Field:   "id",
			Message: "dataset id is required",
			Code:    ErrDatasetIDEmpty,
		})
	}
	prefix := "dataset." + d.ID

	if len(d.Objects) == 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + ".maps",
			Message: "at least one map is required",
			Code:    ErrDatasetNoMaps,
		})
	}

	if d.Type == ir.TypeRelative && d.Unit == ir.UnitNone {
		errs = append(errs, ValidationError{
			Field:   prefix + ".unit",
			Message: "relative datasets require a unit",
			Code:    ErrRelativeUnitMissing,
		})
	}

	if d.Granularity != "" {
		if _, err := granularity.Parse(d.Granularity); err != nil {
			errs = append(errs, ValidationError{
				Field:   prefix + ".granularity",
				Message: err.Error(),
				Code:    ErrInvalidGranularity,
			})
		}
	}

	seen := make(map[string]bool, len(d.Objects))
	for i, obj := range d.Objects {
		field := fmt.Sprintf("%s.maps[%d]", prefix, i)
		if obj.ID == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: "map id is required",
				Code:    ErrMapIDEmpty,
			})
		} else if seen[obj.ID] {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate map id %q", obj.ID),
				Code:    ErrDuplicateMapID,
			})
		}
		seen[obj.ID] = true

		if d.Type != "" && !obj.Extent.IsZero() && obj.Extent.Type() != d.Type {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s map in %s dataset", obj.Extent.Type(), d.Type),
				Code:    ErrMixedTemporalType,
			})
		}

		if obj.Spatial != nil {
			if err := obj.Spatial.Validate(); err != nil {
				errs = append(errs, ValidationError{
					Field:   field + ".bbox",
					Message: err.Error(),
					Code:    ErrInvalidBBox,
				})
			}
		}
	}

	return errs
}

func validateCollection(ds []ir.Dataset) []ValidationError {
	var errs []ValidationError
	ids := make(map[string]bool, len(ds))
	types := make(map[ir.TemporalType]bool)
	for i := range ds {
		errs = append(errs, validateDataset(&ds[i])...)
		if ds[i].ID != "" && ids[ds[i].ID] {
			errs = append(errs, ValidationError{
				Field:   "dataset." + ds[i].ID,
				Message: "duplicate dataset id",
				Code:    ErrDuplicateDatasetID,
			})
		}
		ids[ds[i].ID] = true
		if ds[i].Type != "" {
			types[ds[i].Type] = true
		}
	}
	if len(types) > 1 {
		names := make([]string, 0, len(types))
		for t := range types {
			names = append(names, string(t))
		}
		sort.Strings(names)
		errs = append(errs, ValidationError{
			Field:   "dataset",
			Message: fmt.Sprintf("datasets mix temporal types %v", names),
			Code:    ErrMixedDatasetTypes,
		})
	}
	return errs
}
