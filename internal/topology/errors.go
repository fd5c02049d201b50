package topology

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tgis/internal/ir"
)

// ErrUnknownObject is returned by queries for an ID that is not a node.
var ErrUnknownObject = errors.New("object not in topology")

// EmptyInputError is returned when a build has no objects. Dataset names
// the empty dataset when the build was over datasets.
type EmptyInputError struct {
	Dataset string
}

func (e *EmptyInputError) Error() string {
	if e.Dataset != "" {
		return fmt.Sprintf("%s: dataset is empty: %s", ir.ErrCodeEmptyInput, e.Dataset)
	}
	return fmt.Sprintf("%s: no objects to relate", ir.ErrCodeEmptyInput)
}

// ErrorCode implements ir.Coded.
func (e *EmptyInputError) ErrorCode() ir.ErrorCode { return ir.ErrCodeEmptyInput }

// DuplicateIDError is returned when two objects of one build share an ID.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate object id %q", e.ID)
}

// AmbiguousLinkError reports that a neighbour query had several equally
// near candidates. It is returned as a warning next to the chosen link.
type AmbiguousLinkError struct {
	Object     string
	Direction  string
	Candidates []string
}

func (e *AmbiguousLinkError) Error() string {
	return fmt.Sprintf("%s: %s of %s is ambiguous between %s",
		ir.ErrCodeAmbiguousLink, e.Direction, e.Object, strings.Join(e.Candidates, ", "))
}

// ErrorCode implements ir.Coded.
func (e *AmbiguousLinkError) ErrorCode() ir.ErrorCode { return ir.ErrCodeAmbiguousLink }

// IsEmptyInput reports whether err is an empty input error.
func IsEmptyInput(err error) bool {
	var ee *EmptyInputError
	return errors.As(err, &ee)
}

// IsDuplicateID reports whether err is a duplicate ID error.
func IsDuplicateID(err error) bool {
	var de *DuplicateIDError
	return errors.As(err, &de)
}
