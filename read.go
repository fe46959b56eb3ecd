package stream

import (
	"fmt"
	"io"
	"strings"

	ferrors "github.com/input-output-hk/catalyst-forge-libs/stream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stream/handle"
	"github.com/input-output-hk/catalyst-forge-libs/stream/internal/pool"
)

// Contents returns the whole stream. Seekable streams are rewound first, so
// the result always starts at position zero.
func (s *Stream) Contents() (string, error) {
	return s.ContentsN(Unbounded, -1)
}

// ContentsN rewinds a seekable stream to zero, then moves to offset (unless
// offset is negative) and reads up to length bytes (Unbounded reads to EOF).
// The rewind happens before offset is applied, so a non-zero offset is
// always measured from the start of a seekable stream.
func (s *Stream) ContentsN(length, offset int64) (string, error) {
	seekable, err := s.IsSeekable()
	if err != nil {
		return "", err
	}
	if seekable {
		if _, err := s.Rewind(); err != nil {
			return "", err
		}
	}

	h, err := s.Get()
	if err != nil {
		return "", err
	}

	ctx := map[string]interface{}{"op": "contents", "uri": h.URI(), "length": length, "offset": offset}
	if offset >= 0 {
		if err := seekTo(h, offset); err != nil {
			return "", runtimeError(err, ferrors.CodeIO, "unable to get contents of stream", ctx)
		}
	}

	var sb strings.Builder
	if _, err := pool.Copy(&sb, h, length); err != nil {
		return "", runtimeError(err, ferrors.CodeIO, "unable to get contents of stream", ctx)
	}
	return sb.String(), nil
}

// seekTo moves h to offset. Handles that cannot seek emulate the move by
// discarding offset bytes from their current position.
func seekTo(h *handle.Handle, offset int64) error {
	if h.Seekable() {
		_, err := h.Seek(offset, io.SeekStart)
		return err
	}
	n, err := io.CopyN(io.Discard, h, offset)
	if err == io.EOF {
		return fmt.Errorf("reached end of stream after skipping %d of %d bytes: %w", n, offset, io.ErrUnexpectedEOF)
	}
	return err
}

// Rewind seeks the handle back to position zero.
func (s *Stream) Rewind() (*Stream, error) {
	h, err := s.Get()
	if err != nil {
		return nil, err
	}
	if !h.Seekable() {
		return nil, ferrors.New(ferrors.CodeNotSeekable, "stream does not support seeking").WithContext("uri", h.URI())
	}
	if _, err := h.Seek(0, io.SeekStart); err != nil {
		return nil, runtimeError(err, ferrors.CodeIO, "unable to rewind stream", map[string]interface{}{
			"op":  "rewind",
			"uri": h.URI(),
		})
	}
	return s, nil
}

// Metadata returns a copy of the handle's metadata mapping. It always
// contains handle.KeyURI and handle.KeySeekable.
func (s *Stream) Metadata() (map[string]any, error) {
	h, err := s.Get()
	if err != nil {
		return nil, err
	}
	return h.Metadata(), nil
}

// MetadataValue returns the metadata value stored under key.
func (s *Stream) MetadataValue(key string) (any, error) {
	h, err := s.Get()
	if err != nil {
		return nil, err
	}
	v, ok := h.Metadata().Lookup(key)
	if !ok {
		return nil, invalidArgument("metadata", "key %q not available", key)
	}
	return v, nil
}

// URI returns the path or identifier of the handle.
func (s *Stream) URI() (string, error) {
	v, err := s.MetadataValue(handle.KeyURI)
	if err != nil {
		return "", err
	}
	uri, _ := v.(string)
	return uri, nil
}

// IsSeekable reports whether the handle can be repositioned.
func (s *Stream) IsSeekable() (bool, error) {
	v, err := s.MetadataValue(handle.KeySeekable)
	if err != nil {
		return false, err
	}
	seekable, _ := v.(bool)
	return seekable, nil
}

// String returns the stream's contents, or "" when they cannot be read.
func (s *Stream) String() string {
	contents, err := s.Contents()
	if err != nil {
		s.logger.Debug("unable to read contents for String", "error", err)
		return ""
	}
	return contents
}
