package stream

import (
	"os"

	"github.com/input-output-hk/catalyst-forge-libs/stream/handle"
)

// Source is a value Wrap and Write accept. The set of sources is closed:
//
//   - Text, an owned textual payload (see String and Bytes)
//   - Ref, a non-owning reference to an external handle (see Handle and File)
//   - *Stream, an existing Stream
type Source interface {
	isSource()
}

// Text is an owned textual payload.
type Text string

func (Text) isSource() {}

// Ref references a handle the caller owns. Wrapping a Ref never transfers the
// duty to close the handle.
type Ref struct {
	h *handle.Handle
}

func (Ref) isSource() {}

func (*Stream) isSource() {}

// String returns s as a Source.
func String(s string) Text { return Text(s) }

// Bytes returns a copy of b as a Source.
func Bytes(b []byte) Text { return Text(b) }

// Handle returns a non-owning reference to h.
func Handle(h *handle.Handle) Ref { return Ref{h: h} }

// File returns a non-owning reference to an open *os.File.
func File(f *os.File) Ref {
	if f == nil {
		return Ref{}
	}
	return Ref{h: handle.FromFile(f)}
}

// FromValue converts a dynamically typed value into a Source. It accepts
// string, []byte, *Stream, *handle.Handle, *os.File and Source values; any
// other kind fails with ErrInvalidArgument naming the offending type.
func FromValue(v any) (Source, error) {
	switch v := v.(type) {
	case string:
		return String(v), nil
	case []byte:
		return Bytes(v), nil
	case *handle.Handle:
		return Handle(v), nil
	case *os.File:
		return File(v), nil
	case Source:
		return v, nil
	}
	return nil, invalidArgument("from_value", "%q is not a string, handle or Stream", typeName(v))
}

// checkSource rejects the zero values of the three source kinds and
// references to handles that are already closed.
func checkSource(op string, src Source) error {
	name := typeName(src)
	switch v := src.(type) {
	case Text:
		return nil
	case Ref:
		if v.h != nil && v.h.IsOpen() {
			return nil
		}
		if v.h != nil {
			name = "resource (closed)"
		}
	case *Stream:
		if v != nil {
			return nil
		}
	}
	return invalidArgument(op, "%q is not a string, handle or Stream", name)
}
