package cache

// Code is a machine-readable error code.
type Code string

const (
	// CodeInvalidArgument reports malformed input rejected before any
	// storage access (a zero UUID in a lookup set or entry batch).
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodeStorage reports a storage-layer failure: driver unavailable,
	// open or schema failure, query execution failure. The wrapped cause
	// carries the engine-level detail.
	CodeStorage Code = "STORAGE"
)

// Error is the cache error type with a code and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a cache error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a cache error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
