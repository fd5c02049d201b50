package granularity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tgis/internal/ir"
)

// IncompatibleUnitError is returned when relative datasets use units that
// cannot be converted into one another.
type IncompatibleUnitError struct {
	Units []ir.Unit
}

func (e *IncompatibleUnitError) Error() string {
	names := make([]string, len(e.Units))
	for i, u := range e.Units {
		names[i] = string(u)
		if u == ir.UnitNone {
			names[i] = "steps"
		}
	}
	return fmt.Sprintf("%s: relative units %s cannot be converted", ir.ErrCodeIncompatibleUnit, strings.Join(names, ", "))
}

// ErrorCode implements ir.Coded.
func (e *IncompatibleUnitError) ErrorCode() ir.ErrorCode { return ir.ErrCodeIncompatibleUnit }

// EmptyInputError is returned when there is nothing to resolve.
type EmptyInputError struct {
	Dataset string
}

func (e *EmptyInputError) Error() string {
	if e.Dataset != "" {
		return fmt.Sprintf("%s: dataset %s has no maps", ir.ErrCodeEmptyInput, e.Dataset)
	}
	return fmt.Sprintf("%s: no datasets to resolve", ir.ErrCodeEmptyInput)
}

// ErrorCode implements ir.Coded.
func (e *EmptyInputError) ErrorCode() ir.ErrorCode { return ir.ErrCodeEmptyInput }

// IsIncompatibleUnit reports whether err is an incompatible unit error.
func IsIncompatibleUnit(err error) bool {
	var ue *IncompatibleUnitError
	return errors.As(err, &ue)
}

// IsEmptyInput reports whether err is an empty input error.
func IsEmptyInput(err error) bool {
	var ee *EmptyInputError
	return errors.As(err, &ee)
}
