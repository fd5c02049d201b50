package ir

import (
	"errors"
	"fmt"
)

// ErrorCode categorises errors raised by the temporal core. The CLI maps
// codes to its own E0xx error codes.
type ErrorCode string

const (
	// ErrCodeInvalidRange indicates an extent whose end precedes its start.
	ErrCodeInvalidRange ErrorCode = "INVALID_RANGE"

	// ErrCodeIncompatibleType indicates absolute and relative time were mixed.
	ErrCodeIncompatibleType ErrorCode = "INCOMPATIBLE_TEMPORAL_TYPE"

	// ErrCodeIncompatibleUnit indicates relative units that cannot be converted.
	ErrCodeIncompatibleUnit ErrorCode = "INCOMPATIBLE_UNIT"

	// ErrCodeParse indicates a malformed operator expression.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeEmptyInput indicates there was nothing to operate on.
	ErrCodeEmptyInput ErrorCode = "EMPTY_INPUT"

	// ErrCodeAmbiguousLink indicates a neighbour query had several candidates.
	ErrCodeAmbiguousLink ErrorCode = "AMBIGUOUS_LINK"
)

// Coded is implemented by every typed error of the core.
type Coded interface {
	error
	ErrorCode() ErrorCode
}

// CodeOf returns the code of the first Coded error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var c Coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// InvalidRangeError is returned when an end point precedes its start point.
type InvalidRangeError struct {
	Start Point
	End   Point
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s: end %s is before start %s", ErrCodeInvalidRange, e.End, e.Start)
}

// ErrorCode implements Coded.
func (e *InvalidRangeError) ErrorCode() ErrorCode { return ErrCodeInvalidRange }

// IncompatibleTemporalTypeError is returned when absolute and relative time
// are combined in one operation.
type IncompatibleTemporalTypeError struct {
	Left    TemporalType
	Right   TemporalType
	Context string
}

func (e *IncompatibleTemporalTypeError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: cannot combine %s and %s time (%s)", ErrCodeIncompatibleType, e.Left, e.Right, e.Context)
	}
	return fmt.Sprintf("%s: cannot combine %s and %s time", ErrCodeIncompatibleType, e.Left, e.Right)
}

// ErrorCode implements Coded.
func (e *IncompatibleTemporalTypeError) ErrorCode() ErrorCode { return ErrCodeIncompatibleType }

// IsInvalidRange reports whether err is an invalid range error.
func IsInvalidRange(err error) bool {
	var re *InvalidRangeError
	return errors.As(err, &re)
}

// IsIncompatibleType reports whether err is an incompatible temporal type error.
func IsIncompatibleType(err error) bool {
	var te *IncompatibleTemporalTypeError
	return errors.As(err, &te)
}
