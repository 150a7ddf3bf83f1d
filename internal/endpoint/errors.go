package endpoint

import (
	"errors"
	"fmt"
)

const (
	CodeConnection     = "E_CONNECTION"
	CodeUnknownShape   = "E_UNKNOWN_SHAPE"
	CodeNotInitialized = "E_NOT_INITIALIZED"
	CodeInvalidConfig  = "E_INVALID_CONFIG"
	CodeSinkWrite      = "E_SINK_WRITE_FAILED"
)

var (
	// ErrUnknownShape is returned when a publish names a shape absent from the catalog.
	ErrUnknownShape = errors.New("unknown shape")

	// ErrNotInitialized is returned when a publish runs before settings were recorded.
	ErrNotInitialized = errors.New("publisher not initialized")
)

// Error carries a failure code and retryability hint.
type Error struct {
	Code      string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error         { return e.Err }
func (e *Error) CodeValue() string     { return e.Code }
func (e *Error) RetryableStatus() bool { return e.Retryable }

// CodedError exposes error metadata to transport adapters.
type CodedError interface {
	error
	CodeValue() string
	RetryableStatus() bool
}

// WrapError attaches a code to err.
func WrapError(code string, retryable bool, err error) *Error {
	return &Error{Code: code, Retryable: retryable, Err: err}
}

// ConnectionError marks a remote session failure.
func ConnectionError(err error) *Error {
	return WrapError(CodeConnection, true, err)
}

// UnknownShapeError reports that name is not in the catalog.
func UnknownShapeError(name string) *Error {
	return WrapError(CodeUnknownShape, false, fmt.Errorf("%w: %q", ErrUnknownShape, name))
}

// CodeOf returns the code of the first CodedError in err's chain, or "".
func CodeOf(err error) string {
	var coded CodedError
	if errors.As(err, &coded) {
		return coded.CodeValue()
	}
	return ""
}
