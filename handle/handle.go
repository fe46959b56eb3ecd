// Package handle is the platform layer behind stream.Stream: it opens
// byte-stream handles (memory buffers, native files, temp files, process
// output, caller supplied readers and writers) and exposes the small capability
// set the stream package relies on: read, write, seek, query metadata, close.
//
// A Handle is not safe for concurrent use. Several owners may hold the same
// *Handle; closing it through any of them closes it for all of them.
package handle

import (
	"errors"
	"io"
	"io/fs"
	"sync/atomic"
)

const (
	// TypeStream is reported by Type while the handle is open.
	TypeStream = "stream"
	// TypeUnknown is reported by Type once the handle is closed.
	TypeUnknown = "Unknown"
)

// ErrNotSeekable is returned by Seek on handles that cannot be repositioned.
var ErrNotSeekable = errors.New("handle does not support seeking")

var lastID atomic.Int64

// Handle is an open I/O channel with a process-unique id and a metadata mapping.
type Handle struct {
	id      int64
	reader  io.Reader
	writer  io.Writer
	seeker  io.Seeker
	closer  io.Closer
	meta    Metadata
	onClose []func() error
	closed  bool
	// alive reports whether the resource is still usable when it can be
	// closed behind the handle's back.
	alive func() bool
}

// Option configures a Handle at construction.
type Option func(*Handle)

// WithURI sets the uri metadata value.
func WithURI(uri string) Option {
	return func(h *Handle) { h.meta[KeyURI] = uri }
}

// WithMode sets the mode metadata value.
func WithMode(mode string) Option {
	return func(h *Handle) { h.meta[KeyMode] = mode }
}

// WithStreamType sets the stream_type metadata value.
func WithStreamType(t string) Option {
	return func(h *Handle) { h.meta[KeyStreamType] = t }
}

// WithWrapperType sets the wrapper_type metadata value.
func WithWrapperType(t string) Option {
	return func(h *Handle) { h.meta[KeyWrapperType] = t }
}

// WithSeekable(false) hides the resource's Seek method.
// Passing true has no effect on resources that do not implement io.Seeker.
func WithSeekable(seekable bool) Option {
	return func(h *Handle) {
		if !seekable {
			h.seeker = nil
		}
	}
}

// WithMetadata adds an extra metadata entry that is passed through opaquely.
// The uri and seekable keys cannot be overridden this way.
func WithMetadata(key string, value any) Option {
	return func(h *Handle) {
		if key == KeyURI || key == KeySeekable {
			return
		}
		h.meta[key] = value
	}
}

// OnClose registers fn to run after the resource is closed.
func OnClose(fn func() error) Option {
	return func(h *Handle) { h.onClose = append(h.onClose, fn) }
}

// New wraps res in a Handle. res is read from if it implements io.Reader,
// written to if it implements io.Writer and repositioned if it implements
// io.Seeker.
func New(res io.Closer, opts ...Option) *Handle {
	return build(res, opts)
}

// build detects the capabilities of res. A res that is not an io.Closer is
// never closed by the handle.
func build(res any, opts []Option) *Handle {
	h := &Handle{
		id:   lastID.Add(1),
		meta: Metadata{KeyURI: "", KeyMode: "", KeyStreamType: "", KeyWrapperType: ""},
	}
	h.reader, _ = res.(io.Reader)
	h.writer, _ = res.(io.Writer)
	h.seeker, _ = res.(io.Seeker)
	h.closer, _ = res.(io.Closer)
	for _, opt := range opts {
		opt(h)
	}
	h.meta[KeySeekable] = h.seeker != nil
	return h
}

// ID returns the handle's process-unique resource id.
func (h *Handle) ID() int64 { return h.id }

// IsOpen reports whether the handle is still valid.
func (h *Handle) IsOpen() bool {
	return h != nil && !h.closed && (h.alive == nil || h.alive())
}

// Type returns TypeStream while open and TypeUnknown once closed.
func (h *Handle) Type() string {
	if !h.IsOpen() {
		return TypeUnknown
	}
	return TypeStream
}

// Seekable reports whether Seek is supported.
func (h *Handle) Seekable() bool { return h.seeker != nil }

// URI returns the uri metadata value.
func (h *Handle) URI() string {
	uri, _ := h.meta[KeyURI].(string)
	return uri
}

// Metadata returns a copy of the metadata mapping.
func (h *Handle) Metadata() Metadata { return h.meta.clone() }

func (h *Handle) pathError(op string, err error) error {
	return &fs.PathError{Op: op, Path: h.URI(), Err: err}
}

// Read implements io.Reader.
func (h *Handle) Read(p []byte) (int, error) {
	if !h.IsOpen() {
		return 0, h.pathError("read", fs.ErrClosed)
	}
	if h.reader == nil {
		return 0, h.pathError("read", fs.ErrInvalid)
	}
	return h.reader.Read(p)
}

// Write implements io.Writer.
func (h *Handle) Write(p []byte) (int, error) {
	if !h.IsOpen() {
		return 0, h.pathError("write", fs.ErrClosed)
	}
	if h.writer == nil {
		return 0, h.pathError("write", fs.ErrInvalid)
	}
	return h.writer.Write(p)
}

// Seek implements io.Seeker. Handles that are not seekable return ErrNotSeekable.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	if !h.IsOpen() {
		return 0, h.pathError("seek", fs.ErrClosed)
	}
	if h.seeker == nil {
		return 0, h.pathError("seek", ErrNotSeekable)
	}
	return h.seeker.Seek(offset, whence)
}

// Close releases the resource and runs the OnClose hooks. Closing an already
// closed handle is a no-op, and so is closing a resource that was already
// closed directly.
func (h *Handle) Close() error {
	if h == nil || h.closed {
		return nil
	}
	h.closed = true

	var errs []error
	if h.closer != nil {
		if err := h.closer.Close(); !errors.Is(err, fs.ErrClosed) {
			errs = append(errs, err)
		}
	}
	for _, fn := range h.onClose {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}

var (
	_ io.ReadWriteSeeker = (*Handle)(nil)
	_ io.Closer          = (*Handle)(nil)
)
