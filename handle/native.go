package handle

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// NativeFS is a billy.Filesystem over the os package: absolute paths are used
// as-is and relative paths resolve against the working directory. Unlike
// osfs.ChrootOS it never creates missing parent directories; creating a file
// in a directory that does not exist fails with fs.ErrNotExist.
type NativeFS struct {
	osfs.ChrootOS
}

// OpenFile opens filename with os.OpenFile semantics.
//
//nolint:ireturn // billy.File is an interface; signature is dictated by upstream.
func (n *NativeFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&os.O_CREATE != 0 {
		if err := parentExists("open", filename); err != nil {
			return nil, err
		}
	}
	return n.ChrootOS.OpenFile(filename, flag, perm)
}

// TempFile creates a temporary file in an existing dir.
//
//nolint:ireturn // billy.File is an interface; signature is dictated by upstream.
func (n *NativeFS) TempFile(dir, prefix string) (billy.File, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}
	return n.ChrootOS.TempFile(dir, prefix)
}

// Chroot returns a new filesystem rooted at the provided path.
//
//nolint:ireturn // billy.Filesystem is an interface; signature is dictated by upstream.
func (n *NativeFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root returns the root path for this filesystem.
func (n *NativeFS) Root() string {
	return "/"
}

// Native returns the native OS filesystem.
func Native() *NativeFS {
	return &NativeFS{}
}

func parentExists(op, filename string) error {
	_, err := os.Stat(filepath.Dir(filename))
	if os.IsNotExist(err) {
		return &fs.PathError{Op: op, Path: filename, Err: fs.ErrNotExist}
	}
	return err
}
