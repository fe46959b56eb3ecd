package stream

import (
	"errors"
	"fmt"
	"os"

	ferrors "github.com/input-output-hk/catalyst-forge-libs/stream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stream/handle"
	"github.com/input-output-hk/catalyst-forge-libs/stream/internal/pool"
)

// PutFlag modifies how PutContents writes its target.
type PutFlag int

const (
	// FileAppend appends to the target instead of truncating it.
	FileAppend PutFlag = 1 << iota
	// FileLock holds an exclusive lock on the target while writing.
	FileLock
)

// Write writes src at the current position. See WriteN.
func (s *Stream) Write(src Source) (*Stream, error) {
	return s.WriteN(src, Unbounded, 0)
}

// WriteN writes src at the current position of the Stream and returns the
// Stream.
//
// Text is written up to length bytes. For a *Stream or Ref, up to length
// bytes are copied handle to handle from the source's current position, or
// from offset when offset is positive. Unbounded writes everything.
func (s *Stream) WriteN(src Source, length, offset int64) (*Stream, error) {
	if err := checkSource("write", src); err != nil {
		return nil, err
	}

	switch v := src.(type) {
	case Text:
		return s.writeText(string(v), length)
	case Ref:
		return s.copyFrom(v.h, length, offset)
	case *Stream:
		from, err := v.Get()
		if err != nil {
			return nil, err
		}
		return s.copyFrom(from, length, offset)
	}

	return nil, invalidArgument("write", "%q is not a string, handle or Stream", typeName(src))
}

func (s *Stream) writeText(data string, length int64) (*Stream, error) {
	h, err := s.Get()
	if err != nil {
		return nil, err
	}
	if length >= 0 && length < int64(len(data)) {
		data = data[:length]
	}
	if _, err := h.Write([]byte(data)); err != nil {
		return nil, runtimeError(err, ferrors.CodeIO, "unable to write to stream", map[string]interface{}{
			"op":  "write",
			"uri": h.URI(),
		})
	}
	return s, nil
}

func (s *Stream) copyFrom(from *handle.Handle, length, offset int64) (*Stream, error) {
	h, err := s.Get()
	if err != nil {
		return nil, err
	}

	ctx := map[string]interface{}{
		"op":     "copy",
		"from":   from.URI(),
		"uri":    h.URI(),
		"length": length,
		"offset": offset,
	}
	if offset > 0 {
		if err := seekTo(from, offset); err != nil {
			return nil, runtimeError(err, ferrors.CodeIO, "unable to copy stream", ctx)
		}
	}

	n, err := pool.Copy(h, from, length)
	if err != nil {
		return nil, runtimeError(err, ferrors.CodeIO, "unable to copy stream", ctx)
	}
	s.logger.Debug("copied stream", "from", from.URI(), "bytes", n)
	return s, nil
}

// PutContents writes the handle's contents, from its current position to
// EOF, into path. It does not rewind first. The target is truncated unless
// flags contains FileAppend. Options may select the target filesystem and the
// permission bits of a newly created file.
func (s *Stream) PutContents(path string, flags PutFlag, opts ...Option) (*Stream, error) {
	h, err := s.Get()
	if err != nil {
		return nil, err
	}

	o := applyOptions(&options{logger: s.logger, fs: s.fs, perm: defaultPerm}, opts)

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if flags&FileAppend != 0 {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	if err := putContents(o, h, path, flag, flags&FileLock != 0); err != nil {
		return nil, runtimeError(err, ferrors.CodeIO, fmt.Sprintf("unable to dump contents of stream to %q", path),
			map[string]interface{}{
				"op":   "put_contents",
				"path": path,
				"uri":  h.URI(),
			})
	}
	s.logger.Debug("dumped contents", "path", path)
	return s, nil
}

func putContents(o *options, from *handle.Handle, path string, flag int, lock bool) (err error) {
	f, err := o.fs.OpenFile(path, flag, o.perm)
	if err != nil {
		return fmt.Errorf("billy: openfile %q: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if lock {
		if err := f.Lock(); err != nil {
			return fmt.Errorf("billy: lock %q: %w", path, err)
		}
		defer func() {
			err = errors.Join(err, f.Unlock())
		}()
	}

	if _, err := pool.Copy(f, from, Unbounded); err != nil {
		return err
	}
	return nil
}
