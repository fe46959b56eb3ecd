package handle

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

const (
	// MemoryURI identifies in-memory buffer handles.
	MemoryURI = "memory://"
	// OutputURI identifies process output handles.
	OutputURI = "output://"

	memoryName = "buffer"
)

// Memory opens a fresh, seekable, read/write in-memory buffer.
func Memory() (*Handle, error) {
	f, err := memfs.New().OpenFile(memoryName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("memfs: open buffer: %w", err)
	}
	return New(f,
		WithURI(MemoryURI),
		WithMode("w+b"),
		WithStreamType("MEMORY"),
		WithWrapperType("memory"),
	), nil
}

type output struct {
	w io.Writer
}

func (o output) Write(p []byte) (int, error) { return o.w.Write(p) }

// Close leaves the destination open: process output outlives its handles.
func (o output) Close() error { return nil }

// Output opens a write-only, non-seekable handle onto w, or onto the
// process's standard output when w is nil.
func Output(w io.Writer) *Handle {
	if w == nil {
		w = os.Stdout
	}
	return New(output{w: w},
		WithURI(OutputURI),
		WithMode("wb"),
		WithStreamType("Output"),
		WithWrapperType("output"),
	)
}

// OpenFile opens path on fsys with an fopen-style mode. Modes that create the
// file fail with fs.ErrNotExist when its parent directory is missing, whatever
// fsys would do on its own.
func OpenFile(fsys billy.Filesystem, path, mode string, perm fs.FileMode) (*Handle, error) {
	flag, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	if flag&os.O_CREATE != 0 {
		if dir := filepath.Dir(path); dir != "." && dir != string(filepath.Separator) {
			if _, err := fsys.Stat(dir); err != nil {
				return nil, fmt.Errorf("billy: openfile %q: %w", path, err)
			}
		}
	}
	f, err := fsys.OpenFile(path, flag, perm)
	if err != nil {
		return nil, fmt.Errorf("billy: openfile %q: %w", path, err)
	}
	return New(f,
		WithURI(path),
		WithMode(mode),
		WithStreamType("STDIO"),
		WithWrapperType("plainfile"),
	), nil
}

// Temp creates a uniquely named file in dir on fsys. The file is removed from
// fsys when the handle is closed.
func Temp(fsys billy.Filesystem, dir, prefix string) (*Handle, error) {
	f, err := util.TempFile(fsys, dir, prefix)
	if err != nil {
		return nil, fmt.Errorf("billy: tempfile dir=%q prefix=%q: %w", dir, prefix, err)
	}
	name := f.Name()
	return New(f,
		WithURI(name),
		WithMode("r+b"),
		WithStreamType("STDIO"),
		WithWrapperType("plainfile"),
		OnClose(func() error {
			if err := fsys.Remove(name); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("billy: remove %q: %w", name, err)
			}
			return nil
		}),
	), nil
}

var (
	filesMu sync.Mutex
	files   = map[*os.File]*Handle{}
)

// FromFile returns the handle for an already open *os.File. Every call with
// the same file returns the same *Handle, so all of its holders share one id
// and one closed state. Closing the file directly closes the handle too.
// Pipes, terminals and other descriptors that reject seeking are reported as
// not seekable.
func FromFile(f *os.File) *Handle {
	filesMu.Lock()
	defer filesMu.Unlock()

	if h, ok := files[f]; ok {
		return h
	}
	for known, h := range files {
		if !h.IsOpen() {
			delete(files, known)
		}
	}

	_, err := f.Seek(0, io.SeekCurrent)
	h := New(f,
		WithURI(f.Name()),
		WithStreamType("STDIO"),
		WithWrapperType("plainfile"),
		WithSeekable(err == nil),
		OnClose(func() error {
			filesMu.Lock()
			defer filesMu.Unlock()
			delete(files, f)
			return nil
		}),
	)
	h.alive = fileAlive(f)
	files[f] = h
	return h
}

// fileAlive reports whether f's descriptor is still open.
func fileAlive(f *os.File) func() bool {
	return func() bool {
		rc, err := f.SyscallConn()
		if err != nil {
			return false
		}
		return rc.Control(func(uintptr) {}) == nil
	}
}

// FromReadWriter wraps an arbitrary io.Reader and/or io.Writer. rw is closed
// with the handle when it implements io.Closer, and seekable when it
// implements io.Seeker.
func FromReadWriter(rw any, opts ...Option) (*Handle, error) {
	_, r := rw.(io.Reader)
	_, w := rw.(io.Writer)
	if !r && !w {
		return nil, fmt.Errorf("%T is neither an io.Reader nor an io.Writer", rw)
	}
	return build(rw, opts), nil
}
