package stream

import (
	"io"
	"io/fs"
	"log/slog"

	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/catalyst-forge-libs/stream/handle"
)

const (
	defaultPerm       fs.FileMode = 0o666
	defaultTempPrefix             = "stream-"
)

// options holds configuration shared by the Stream constructors.
type options struct {
	logger     *slog.Logger
	fs         billy.Filesystem
	searchPath []string
	tempDir    string
	perm       fs.FileMode
	output     io.Writer
}

// Option is a functional option for configuring a Stream.
type Option func(*options)

// WithLogger configures the Stream with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithFilesystem sets the filesystem Open, TempFile and PutContents resolve
// paths against. The default is the native OS filesystem.
func WithFilesystem(fsys billy.Filesystem) Option {
	return func(opts *options) {
		opts.fs = fsys
	}
}

// WithSearchPath makes Open resolve a relative path against the first of dirs
// that contains it. Paths found in none of them are opened as given.
func WithSearchPath(dirs ...string) Option {
	return func(opts *options) {
		opts.searchPath = append(opts.searchPath, dirs...)
	}
}

// WithTempDir sets the directory TempFile creates files in.
// The default is os.TempDir().
func WithTempDir(dir string) Option {
	return func(opts *options) {
		opts.tempDir = dir
	}
}

// WithPerm sets the permission bits used when Open or PutContents create a file.
func WithPerm(perm fs.FileMode) Option {
	return func(opts *options) {
		opts.perm = perm
	}
}

// WithOutput redirects InOutput to w instead of the process's standard output.
func WithOutput(w io.Writer) Option {
	return func(opts *options) {
		opts.output = w
	}
}

// defaultOptions returns the default configuration options.
func defaultOptions() *options {
	return &options{
		logger: nil, // No default logger
		fs:     handle.Native(),
		perm:   defaultPerm,
	}
}

// applyOptions applies the given options and fills in what they left unset.
func applyOptions(opts *options, list []Option) *options {
	for _, option := range list {
		option(opts)
	}
	if opts.logger == nil {
		opts.logger = slog.New(slog.DiscardHandler)
	}
	if opts.fs == nil {
		opts.fs = handle.Native()
	}
	return opts
}

func newOptions(list []Option) *options {
	return applyOptions(defaultOptions(), list)
}
