package stream

import (
	_ "crypto/sha256" // registers digest.SHA256

	"github.com/gabriel-vasile/mimetype"
	"github.com/opencontainers/go-digest"

	ferrors "github.com/input-output-hk/catalyst-forge-libs/stream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stream/handle"
)

// Digest returns the sha256 digest of the stream's contents. Like Contents,
// it rewinds a seekable stream first and reads to EOF.
func (s *Stream) Digest() (digest.Digest, error) {
	h, err := s.readFromStart()
	if err != nil {
		return "", err
	}

	d, err := digest.SHA256.FromReader(h)
	if err != nil {
		return "", runtimeError(err, ferrors.CodeIO, "unable to digest stream", map[string]interface{}{
			"op":  "digest",
			"uri": h.URI(),
		})
	}
	return d, nil
}

// MimeType sniffs the media type of the stream from its leading bytes, for
// example "text/plain; charset=utf-8". A seekable stream is rewound before
// and after detection; a non-seekable one loses the bytes that were read.
func (s *Stream) MimeType() (string, error) {
	h, err := s.readFromStart()
	if err != nil {
		return "", err
	}

	mt, err := mimetype.DetectReader(h)
	if err != nil {
		return "", runtimeError(err, ferrors.CodeIO, "unable to detect media type of stream", map[string]interface{}{
			"op":  "mime_type",
			"uri": h.URI(),
		})
	}

	if h.Seekable() {
		if _, err := s.Rewind(); err != nil {
			return "", err
		}
	}
	return mt.String(), nil
}

// readFromStart returns the handle, rewound when it is seekable.
func (s *Stream) readFromStart() (*handle.Handle, error) {
	h, err := s.Get()
	if err != nil {
		return nil, err
	}
	if h.Seekable() {
		if _, err := s.Rewind(); err != nil {
			return nil, err
		}
	}
	return h, nil
}
