package stream

import (
	ferrors "github.com/input-output-hk/catalyst-forge-libs/stream/errors"
)

var (
	// ErrInvalidArgument matches errors caused by passing a value of the wrong
	// kind or naming a metadata key that does not exist. Such errors are
	// detected before any I/O happens.
	ErrInvalidArgument = ferrors.NewClass("invalid argument", ferrors.CodeInvalidInput)

	// ErrRuntime matches errors raised by a failing platform I/O call,
	// including access to a closed handle and seeking a non-seekable one.
	ErrRuntime = ferrors.NewClass("runtime error",
		ferrors.CodeIO,
		ferrors.CodeClosed,
		ferrors.CodeNotSeekable,
		ferrors.CodeExecutionFailed,
	)
)

// IsInvalidArgument reports whether err is an invalid argument error.
func IsInvalidArgument(err error) bool {
	return ferrors.Is(err, ErrInvalidArgument)
}

// IsRuntime reports whether err is a runtime (platform I/O) error.
func IsRuntime(err error) bool {
	return ferrors.Is(err, ErrRuntime)
}

func invalidArgument(op, format string, args ...interface{}) error {
	return ferrors.Newf(ferrors.CodeInvalidInput, format, args...).WithContext("op", op)
}

func runtimeError(cause error, code ferrors.ErrorCode, message string, ctx map[string]interface{}) error {
	return ferrors.WrapWithContext(cause, code, message, ctx)
}
