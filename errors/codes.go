// Package errors provides the structured error type shared by the stream
// packages. It extends Go's standard error handling with string error codes,
// context preservation and wrapping.
package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Validation errors.

	// CodeInvalidInput indicates the caller passed a value of the wrong kind
	// or referenced something that does not exist (for example a metadata key).
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Resource errors.

	// CodeClosed indicates an operation was attempted on a closed handle.
	CodeClosed ErrorCode = "RESOURCE_CLOSED"

	// I/O errors.

	// CodeIO indicates an underlying platform I/O call failed.
	CodeIO ErrorCode = "IO_ERROR"

	// CodeNotSeekable indicates a seek was requested on a handle that does not support it.
	CodeNotSeekable ErrorCode = "NOT_SEEKABLE"

	// Execution errors.

	// CodeExecutionFailed indicates an external process failed to start or exited non-zero.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
