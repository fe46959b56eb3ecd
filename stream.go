// Package stream provides Stream, one uniform contract over heterogeneous
// byte-stream handles: in-memory buffers, native files, temporary files,
// process output and handles supplied by the caller.
//
// A Stream is a thin façade over a *handle.Handle. It never reopens a closed
// handle, and several Streams may reference the same handle: closing it
// through any one of them closes it for all of them. That relationship is not
// reference counted; the caller decides who closes an aliased handle.
//
// Streams are not safe for concurrent use.
//
// Owners that want the handle closed when they are done with the Stream mark
// it with AutoClose and release it at the end of their scope:
//
//	s, err := stream.TempFile()
//	if err != nil {
//	    return err
//	}
//	defer s.AutoClose().Release()
package stream

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	ferrors "github.com/input-output-hk/catalyst-forge-libs/stream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stream/handle"
)

// Unbounded is the length that means "no limit" for ContentsN and WriteN.
const Unbounded int64 = -1

// Stream wraps one platform handle.
type Stream struct {
	h         *handle.Handle
	autoClose bool
	released  bool
	logger    *slog.Logger
	fs        billy.Filesystem
}

func newStream(h *handle.Handle, opts *options) *Stream {
	return &Stream{
		h:      h,
		logger: opts.logger.With("handle_id", h.ID(), "uri", h.URI()),
		fs:     opts.fs,
	}
}

// Wrap returns a Stream for src. A *Stream is returned unchanged. Text is
// written into a new in-memory buffer that is rewound before returning. A Ref
// is wrapped without taking over the duty to close it.
func Wrap(src Source, opts ...Option) (*Stream, error) {
	if err := checkSource("wrap", src); err != nil {
		return nil, err
	}

	switch v := src.(type) {
	case *Stream:
		return v, nil
	case Text:
		s, err := InMemory(opts...)
		if err != nil {
			return nil, err
		}
		if _, err := s.Write(v); err != nil {
			_ = s.h.Close()
			return nil, err
		}
		if _, err := s.Rewind(); err != nil {
			_ = s.h.Close()
			return nil, err
		}
		return s, nil
	case Ref:
		return newStream(v.h, newOptions(opts)), nil
	}

	return nil, invalidArgument("wrap", "%q is not a string, handle or Stream", typeName(src))
}

// InMemory opens a fresh, seekable, read/write in-memory buffer.
func InMemory(opts ...Option) (*Stream, error) {
	o := newOptions(opts)
	h, err := handle.Memory()
	if err != nil {
		return nil, runtimeError(err, ferrors.CodeIO, "unable to open in-memory buffer", map[string]interface{}{
			"op": "in_memory",
		})
	}
	s := newStream(h, o)
	s.logger.Debug("opened in-memory stream")
	return s, nil
}

// InOutput opens a write-only, non-seekable Stream onto the process's
// standard output (or the writer given with WithOutput). Closing it leaves
// standard output open.
func InOutput(opts ...Option) (*Stream, error) {
	o := newOptions(opts)
	s := newStream(handle.Output(o.output), o)
	s.logger.Debug("opened output stream")
	return s, nil
}

// TempFile creates a uniquely named temporary file. The file is deleted when
// the Stream's handle is closed.
func TempFile(opts ...Option) (*Stream, error) {
	o := newOptions(opts)
	dir := o.tempDir
	if dir == "" {
		dir = os.TempDir()
	}

	h, err := handle.Temp(o.fs, dir, defaultTempPrefix)
	if err != nil {
		return nil, runtimeError(err, ferrors.CodeIO, "unable to create temporary handle", map[string]interface{}{
			"op":  "temp_file",
			"dir": dir,
		})
	}
	s := newStream(h, o)
	s.logger.Debug("created temporary file")
	return s, nil
}

// Open opens path with an fopen-style mode ("r", "r+", "w", "w+", "a", "a+",
// "x", "x+", "c", "c+", optionally with "b" or "t").
func Open(path, mode string, opts ...Option) (*Stream, error) {
	o := newOptions(opts)
	resolved := resolvePath(o, path)

	h, err := handle.OpenFile(o.fs, resolved, mode, o.perm)
	if err != nil {
		return nil, runtimeError(err, ferrors.CodeIO,
			fmt.Sprintf("unable to open %q with mode %q", path, mode),
			map[string]interface{}{
				"op":   "open",
				"path": path,
				"mode": mode,
			})
	}
	s := newStream(h, o)
	s.logger.Debug("opened file", "mode", mode)
	return s, nil
}

// resolvePath applies the search path to relative paths.
func resolvePath(o *options, path string) string {
	if len(o.searchPath) == 0 || filepath.IsAbs(path) {
		return path
	}
	for _, dir := range o.searchPath {
		candidate := o.fs.Join(dir, path)
		if _, err := o.fs.Stat(candidate); err == nil {
			return candidate
		}
	}
	return path
}

// Get returns the underlying handle.
func (s *Stream) Get() (*handle.Handle, error) {
	if !s.h.IsOpen() {
		return nil, ferrors.New(ferrors.CodeClosed, "resource is closed").WithContext("uri", s.h.URI())
	}
	return s.h, nil
}

// IsOpen reports whether the handle is still valid.
func (s *Stream) IsOpen() bool { return s.h.IsOpen() }

// IsClosed reports whether the handle has been closed, through this Stream
// or any other holder of the same handle.
func (s *Stream) IsClosed() bool { return !s.IsOpen() }

// ID returns the handle's resource id.
func (s *Stream) ID() (int64, error) {
	h, err := s.Get()
	if err != nil {
		return 0, err
	}
	return h.ID(), nil
}

// Type returns "stream" while the handle is open and "Unknown" afterwards.
func (s *Stream) Type() string { return s.h.Type() }

// Close closes the handle. It never fails: closing a closed handle is a no-op
// and errors reported by the platform are logged.
func (s *Stream) Close() {
	if !s.h.IsOpen() {
		return
	}
	if err := s.h.Close(); err != nil {
		s.logger.Warn("error closing handle", "error", err)
		return
	}
	s.logger.Debug("closed handle")
}

// AutoClose marks the Stream as responsible for closing its handle when it
// is released.
func (s *Stream) AutoClose() *Stream {
	s.autoClose = true
	return s
}

// Release ends the owner's use of the Stream. An auto-close Stream closes
// its handle; any other Stream leaves it to the caller. Only the first
// call has an effect.
func (s *Stream) Release() {
	if s.released {
		return
	}
	s.released = true
	if s.autoClose {
		s.Close()
	}
}

// Use runs fn with s and releases s when fn returns or panics.
func Use(s *Stream, fn func(*Stream) error) error {
	if s == nil {
		return invalidArgument("use", "%q is not a Stream", typeName(s))
	}
	defer s.Release()
	return fn(s)
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
