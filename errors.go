package richdoc

import (
	"errors"
	"fmt"
)

// Sentinel errors for the editing and rendering failure conditions.
var (
	ErrInvalidParam       = errors.New("richdoc: invalid parameter")
	ErrUnsupported        = errors.New("richdoc: unsupported operation")
	ErrInvalidTableSpec   = errors.New("richdoc: table needs at least one row and one column")
	ErrEmptyLinkTarget    = errors.New("richdoc: link target is empty")
	ErrStaleCursor        = errors.New("richdoc: cursor no longer reachable")
	ErrBackendUnavailable = errors.New("richdoc: render backend unavailable")
	ErrRender             = errors.New("richdoc: render failed")
)

// Error represents an error that occurred during a specific editor or render operation.
// It wraps an underlying error and includes the operation name for context.
type Error struct {
	Op  string // operation name, e.g. "InsertTable", "Render"
	Err error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("richdoc.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("richdoc.%s: unknown error", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error wrapping err with operation context.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}
