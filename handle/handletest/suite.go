// Package handletest provides a conformance test suite for handle
// constructors.
//
// The suite validates the handle contract (read after write, seek, metadata,
// idempotent close, closed-handle errors), not backend-specific behavior.
// Constructors whose handles cannot read or seek skip the matching tests.
//
// Example usage:
//
//	func TestMemory(t *testing.T) {
//	    handletest.TestSuite(t, func(t *testing.T) *handle.Handle {
//	        h, err := handle.Memory()
//	        require.NoError(t, err)
//	        return h
//	    })
//	}
package handletest

import (
	"errors"
	"io"
	"io/fs"
	"slices"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/stream/handle"
)

// NewFunc returns a fresh, open, empty handle for one test.
type NewFunc func(t *testing.T) *handle.Handle

// TestSuite runs all conformance tests against handles produced by newHandle.
func TestSuite(t *testing.T, newHandle NewFunc) {
	TestSuiteWithSkip(t, newHandle, nil)
}

// TestSuiteWithSkip runs the conformance tests, skipping the named ones
// (e.g. "ReadWrite", "Seek").
func TestSuiteWithSkip(t *testing.T, newHandle NewFunc, skipTests []string) {
	run := func(name string, fn func(t *testing.T, h *handle.Handle)) {
		t.Run(name, func(t *testing.T) {
			if slices.Contains(skipTests, name) {
				t.Skip("Skipped by provider configuration")
				return
			}
			h := newHandle(t)
			t.Cleanup(func() { _ = h.Close() })
			fn(t, h)
		})
	}

	run("Identity", TestIdentity)
	run("Metadata", TestMetadata)
	run("ReadWrite", TestReadWrite)
	run("Seek", TestSeek)
	run("Close", TestClose)
}

// TestIdentity checks that the id is positive and stable and that Type
// reports an open stream.
func TestIdentity(t *testing.T, h *handle.Handle) {
	id := h.ID()
	if id <= 0 {
		t.Errorf("ID() = %d, want > 0", id)
	}
	if got := h.ID(); got != id {
		t.Errorf("ID() changed from %d to %d", id, got)
	}
	if got := h.Type(); got != handle.TypeStream {
		t.Errorf("Type() = %q, want %q", got, handle.TypeStream)
	}
	if !h.IsOpen() {
		t.Error("IsOpen() = false, want true")
	}
}

// TestMetadata checks the mandatory metadata keys.
func TestMetadata(t *testing.T, h *handle.Handle) {
	meta := h.Metadata()

	uri, ok := meta.Lookup(handle.KeyURI)
	if !ok {
		t.Fatalf("Metadata() missing %q", handle.KeyURI)
	}
	if _, isString := uri.(string); !isString {
		t.Errorf("Metadata()[%q] = %T, want string", handle.KeyURI, uri)
	}

	seekable, ok := meta.Lookup(handle.KeySeekable)
	if !ok {
		t.Fatalf("Metadata() missing %q", handle.KeySeekable)
	}
	if seekable != h.Seekable() {
		t.Errorf("Metadata()[%q] = %v, want %v", handle.KeySeekable, seekable, h.Seekable())
	}

	meta[handle.KeyURI] = "mutated"
	if h.URI() == "mutated" {
		t.Error("Metadata() must return a copy")
	}
}

// TestReadWrite writes data, rewinds and reads it back.
func TestReadWrite(t *testing.T, h *handle.Handle) {
	data := []byte("handle conformance data")

	n, err := h.Write(data)
	if err != nil {
		t.Fatalf("Write(): got error %v, want nil", err)
	}
	if n != len(data) {
		t.Fatalf("Write(): wrote %d bytes, want %d", n, len(data))
	}

	if _, err := h.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek(0, SeekStart): got error %v, want nil", err)
	}

	got, err := io.ReadAll(h)
	if err != nil {
		t.Fatalf("ReadAll(): got error %v, want nil", err)
	}
	if string(got) != string(data) {
		t.Errorf("ReadAll() = %q, want %q", got, data)
	}
}

// TestSeek checks absolute and relative positioning.
func TestSeek(t *testing.T, h *handle.Handle) {
	if !h.Seekable() {
		if _, err := h.Seek(0, io.SeekStart); !errors.Is(err, handle.ErrNotSeekable) {
			t.Errorf("Seek() on non-seekable handle: got %v, want ErrNotSeekable", err)
		}
		return
	}

	if _, err := h.Write([]byte("0123456789")); err != nil {
		t.Fatalf("Write(): got error %v, want nil", err)
	}

	pos, err := h.Seek(4, io.SeekStart)
	if err != nil || pos != 4 {
		t.Fatalf("Seek(4, SeekStart) = %d, %v; want 4, nil", pos, err)
	}
	pos, err = h.Seek(2, io.SeekCurrent)
	if err != nil || pos != 6 {
		t.Fatalf("Seek(2, SeekCurrent) = %d, %v; want 6, nil", pos, err)
	}
	pos, err = h.Seek(0, io.SeekEnd)
	if err != nil || pos != 10 {
		t.Fatalf("Seek(0, SeekEnd) = %d, %v; want 10, nil", pos, err)
	}
}

// TestClose checks idempotent close and closed-handle errors.
func TestClose(t *testing.T, h *handle.Handle) {
	if err := h.Close(); err != nil {
		t.Fatalf("Close(): got error %v, want nil", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close(): got error %v, want nil", err)
	}
	if h.IsOpen() {
		t.Error("IsOpen() after Close = true, want false")
	}
	if got := h.Type(); got != handle.TypeUnknown {
		t.Errorf("Type() after Close = %q, want %q", got, handle.TypeUnknown)
	}
	if _, err := h.Write([]byte("x")); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("Write() after Close: got %v, want fs.ErrClosed", err)
	}
	if _, err := h.Read(make([]byte, 1)); !errors.Is(err, fs.ErrClosed) {
		t.Errorf("Read() after Close: got %v, want fs.ErrClosed", err)
	}
}
