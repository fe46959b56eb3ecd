// Package executor runs external commands and hands their output back as
// in-memory Streams, with retry logic, environment variable management and
// context support for cancellation and timeouts.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/stream"
	ferrors "github.com/input-output-hk/catalyst-forge-libs/stream/errors"
)

// Result holds the captured output of a command execution. Stdout and Stderr
// are rewound in-memory Streams owned by the Result.
type Result struct {
	Stdout   *stream.Stream
	Stderr   *stream.Stream
	ExitCode int
}

// Close closes both output Streams.
func (r *Result) Close() {
	if r == nil {
		return
	}
	r.Stdout.Close()
	r.Stderr.Close()
}

// Command is a program and its arguments.
type Command struct {
	program string
	args    []string
}

// New creates a Command.
func New(program string, args ...string) *Command {
	return &Command{program: program, args: args}
}

// Run executes the command, retrying failed attempts as configured by opts.
//
// A start failure or non-zero exit returns an error matching stream.ErrRuntime
// with code CodeExecutionFailed. The Result of the last attempt is returned
// alongside that error; the caller closes it either way.
func (c *Command) Run(ctx context.Context, opts ...Option) (*Result, error) {
	o := applyOptions(defaultOptions(), opts)
	logger := o.logger.With("program", c.program)

	stdin, err := o.openStdin()
	if err != nil {
		return nil, err
	}
	if o.ownsStdin {
		defer stdin.Close()
	}

	maxAttempts := o.maxRetries + 1
	var result *Result
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Close()

		logger.Debug("running command", "args", c.args, "attempt", attempt)
		result, err = c.runOnce(ctx, stdin, o)
		if err == nil || attempt == maxAttempts {
			return result, err
		}

		if o.retryOn != nil && !o.retryOn(err) {
			return result, err
		}

		logger.Warn("command failed, retrying", "attempt", attempt, "delay", o.retryDelay, "error", err)
		select {
		case <-ctx.Done():
			return result, ferrors.WrapWithContext(ctx.Err(), ferrors.CodeExecutionFailed,
				"context cancelled during retry", c.errContext(result))
		case <-time.After(o.retryDelay):
		}
	}

	return result, err
}

func (c *Command) runOnce(ctx context.Context, stdin *stream.Stream, o *options) (*Result, error) {
	result, err := newResult(o)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.program, c.args...)
	if o.workingDir != "" {
		cmd.Dir = o.workingDir
	}
	if len(o.env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range o.env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	if stdin != nil {
		if o.ownsStdin {
			if _, err := stdin.Rewind(); err != nil {
				result.Close()
				return nil, err
			}
		}
		in, err := stdin.Get()
		if err != nil {
			result.Close()
			return nil, err
		}
		cmd.Stdin = in
	}

	if cmd.Stdout, err = outputWriter(result.Stdout, o.stdoutTee); err != nil {
		result.Close()
		return nil, err
	}
	if cmd.Stderr, err = outputWriter(result.Stderr, o.stderrTee); err != nil {
		result.Close()
		return nil, err
	}

	runErr := cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		result.ExitCode = 0
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
	}

	for _, s := range []*stream.Stream{result.Stdout, result.Stderr} {
		if _, err := s.Rewind(); err != nil {
			result.Close()
			return nil, err
		}
	}

	if runErr != nil {
		return result, ferrors.WrapWithContext(runErr, ferrors.CodeExecutionFailed,
			"command execution failed", c.errContext(result))
	}
	return result, nil
}

func (c *Command) errContext(r *Result) map[string]interface{} {
	ctx := map[string]interface{}{
		"op":      "run",
		"program": c.program,
		"args":    c.args,
	}
	if r != nil {
		ctx["exit_code"] = r.ExitCode
	}
	return ctx
}

func newResult(o *options) (*Result, error) {
	stdout, err := stream.InMemory(stream.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	stderr, err := stream.InMemory(stream.WithLogger(o.logger))
	if err != nil {
		stdout.Close()
		return nil, err
	}
	return &Result{Stdout: stdout, Stderr: stderr}, nil
}

// outputWriter returns the handle of capture, teed into tee when one is set.
func outputWriter(capture, tee *stream.Stream) (io.Writer, error) {
	h, err := capture.Get()
	if err != nil {
		return nil, err
	}
	if tee == nil {
		return h, nil
	}
	t, err := tee.Get()
	if err != nil {
		return nil, err
	}
	return io.MultiWriter(h, t), nil
}

// options configures command execution.
type options struct {
	logger     *slog.Logger
	stdin      stream.Source
	ownsStdin  bool
	workingDir string
	env        map[string]string
	maxRetries int
	retryDelay time.Duration
	retryOn    func(error) bool
	stdoutTee  *stream.Stream
	stderrTee  *stream.Stream
}

// Option is a functional option for Run.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		retryDelay: time.Second,
		env:        make(map[string]string),
	}
}

func applyOptions(o *options, list []Option) *options {
	for _, opt := range list {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// openStdin turns the stdin Source into a Stream. Text is copied into a
// Stream owned by the run and replayed from the start on every attempt.
// Handles and Streams are read from their current position.
func (o *options) openStdin() (*stream.Stream, error) {
	if o.stdin == nil {
		return nil, nil
	}
	_, o.ownsStdin = o.stdin.(stream.Text)
	return stream.Wrap(o.stdin, stream.WithLogger(o.logger))
}

// WithLogger configures the logger used for attempts and retries.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStdin feeds src to the command's standard input.
func WithStdin(src stream.Source) Option {
	return func(o *options) {
		o.stdin = src
	}
}

// WithStdoutStream copies standard output into s as well as into the Result.
func WithStdoutStream(s *stream.Stream) Option {
	return func(o *options) {
		o.stdoutTee = s
	}
}

// WithStderrStream copies standard error into s as well as into the Result.
func WithStderrStream(s *stream.Stream) Option {
	return func(o *options) {
		o.stderrTee = s
	}
}

// WithRetry configures retry behavior.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
		o.retryDelay = delay
	}
}

// WithRetryCondition sets a custom retry condition.
func WithRetryCondition(fn func(error) bool) Option {
	return func(o *options) {
		o.retryOn = fn
	}
}

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *options) {
		o.workingDir = dir
	}
}

// WithEnv adds environment variables.
func WithEnv(env map[string]string) Option {
	return func(o *options) {
		for k, v := range env {
			o.env[k] = v
		}
	}
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *options) {
		o.env[key] = value
	}
}
