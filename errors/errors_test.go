package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "plain message",
			err:      New(CodeInvalidInput, "key \"x\" not available"),
			expected: "key \"x\" not available",
		},
		{
			name:     "formatted message",
			err:      Newf(CodeIO, "unable to open %q", "a.txt"),
			expected: "unable to open \"a.txt\"",
		},
		{
			name:     "wrapped cause",
			err:      Wrap(io.ErrUnexpectedEOF, CodeIO, "unable to read"),
			expected: "unable to read: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestWrapWithContext(t *testing.T) {
	ctx := map[string]interface{}{"path": "/tmp/x", "mode": "r"}
	err := WrapWithContext(io.EOF, CodeIO, "unable to open", ctx)

	ctx["path"] = "mutated"
	assert.Equal(t, "/tmp/x", err.Context()["path"], "context must be copied on construction")
	assert.Equal(t, "r", err.Context()["mode"])
	assert.Equal(t, CodeIO, err.Code())
	assert.Equal(t, "unable to open", err.Message())
	assert.ErrorIs(t, err, io.EOF)

	got := err.Context()
	got["mode"] = "w"
	assert.Equal(t, "r", err.Context()["mode"], "Context must return a copy")
}

func TestWithContext(t *testing.T) {
	base := New(CodeClosed, "resource is closed")
	withOp := base.WithContext("op", "get")

	assert.Empty(t, base.Context())
	assert.Equal(t, "get", withOp.Context()["op"])
}

func TestIs(t *testing.T) {
	sentinel := New(CodeInvalidInput, "invalid argument")
	runtime := NewClass("runtime error", CodeIO, CodeClosed)

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "class matches member code",
			err:    Wrap(io.EOF, CodeIO, "unable to read"),
			target: runtime,
			want:   true,
		},
		{
			name:   "class rejects other code",
			err:    New(CodeInvalidInput, "bad"),
			target: runtime,
			want:   false,
		},
		{
			name:   "wrapped error matches class",
			err:    fmt.Errorf("outer: %w", New(CodeClosed, "resource is closed")),
			target: runtime,
			want:   true,
		},
		{
			name:   "sentinel matches equal error",
			err:    New(CodeInvalidInput, "invalid argument"),
			target: sentinel,
			want:   true,
		},
		{
			name:   "sentinel does not match different message",
			err:    New(CodeInvalidInput, "something else"),
			target: sentinel,
			want:   false,
		},
		{
			name:   "standard error never matches",
			err:    stderrors.New("plain"),
			target: runtime,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Is(tt.err, tt.target))
		})
	}
}

func TestGetCodeAndHasCode(t *testing.T) {
	inner := New(CodeClosed, "resource is closed")
	outer := Wrap(inner, CodeIO, "unable to read")
	wrapped := fmt.Errorf("context: %w", outer)

	assert.Equal(t, CodeIO, GetCode(wrapped))
	assert.True(t, HasCode(wrapped, CodeClosed))
	assert.True(t, HasCode(wrapped, CodeIO))
	assert.False(t, HasCode(wrapped, CodeExecutionFailed))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeUnknown, GetCode(nil))
}

func TestAsPlatformError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(CodeNotSeekable, "stream does not support seeking"))

	var platformErr PlatformError
	require.True(t, As(err, &platformErr))
	assert.Equal(t, CodeNotSeekable, platformErr.Code())
	assert.Nil(t, platformErr.Unwrap())
}
