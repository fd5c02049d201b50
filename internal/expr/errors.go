package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tgis/internal/ir"
)

// ParseError reports a malformed operator expression. Pos is the byte
// offset of the offending input.
type ParseError struct {
	Input   string
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", ir.ErrCodeParse, e.Pos, e.Message)
}

// ErrorCode implements ir.Coded.
func (e *ParseError) ErrorCode() ir.ErrorCode { return ir.ErrCodeParse }

// Context renders the input with a caret under the offending position.
func (e *ParseError) Context() string {
	pos := min(max(e.Pos, 0), len(e.Input))
	return e.Input + "\n" + strings.Repeat(" ", pos) + "^"
}

// IsParseError reports whether err is a parse error.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
