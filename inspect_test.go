package stream_test

import (
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/stream"
	"github.com/input-output-hk/catalyst-forge-libs/stream/handle"
)

func TestDigest(t *testing.T) {
	s := mustWrap(t, stream.String("hello world"))

	// move away from the start; Digest must still cover everything
	_, err := s.ContentsN(stream.Unbounded, 6)
	require.NoError(t, err)

	d, err := s.Digest()
	require.NoError(t, err)
	assert.Equal(t, digest.FromString("hello world"), d)
	assert.NoError(t, d.Validate())
	assert.Equal(t, digest.SHA256, d.Algorithm())
}

func TestDigestClosed(t *testing.T) {
	s, err := stream.InMemory()
	require.NoError(t, err)
	s.Close()

	_, err = s.Digest()
	assert.True(t, stream.IsRuntime(err))
}

func TestDigestWriteOnly(t *testing.T) {
	s, err := stream.InOutput(stream.WithOutput(&strings.Builder{}))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Digest()
	require.Error(t, err)
	assert.True(t, stream.IsRuntime(err))
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "plain text", content: "just some words", want: "text/plain; charset=utf-8"},
		{name: "json", content: `{"key": "value"}`, want: "application/json"},
		{name: "png", content: "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR", want: "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustWrap(t, stream.String(tt.content))

			got, err := s.MimeType()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.content, mustContents(t, s))
		})
	}
}

func TestMimeTypeRewindsAfterDetection(t *testing.T) {
	s := mustWrap(t, stream.String("plain"))

	_, err := s.MimeType()
	require.NoError(t, err)

	h, err := s.Get()
	require.NoError(t, err)
	buf := make([]byte, 5)
	_, err = h.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "plain", string(buf))
}

func TestMimeTypeNonSeekable(t *testing.T) {
	h, err := handle.FromReadWriter(strings.NewReader("text on a pipe"), handle.WithSeekable(false))
	require.NoError(t, err)
	s := mustWrap(t, stream.Handle(h))

	got, err := s.MimeType()
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", got)
}
