// Package cmdexec runs external command-line tools (bq, gcloud, weasyprint)
// behind an interface so callers can be tested without the binaries.
package cmdexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Result captures the outcome of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Diagnostic returns the most useful text for an error message: stderr,
// then stdout, then fallback.
func (r Result) Diagnostic(fallback string) string {
	if s := strings.TrimSpace(string(r.Stderr)); s != "" {
		return s
	}
	if s := strings.TrimSpace(string(r.Stdout)); s != "" {
		return s
	}
	return fallback
}

// Runner executes a command and returns its output. A non-zero exit status is
// reported through Result.ExitCode, not as an error; err is reserved for
// failures to start or wait on the process.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (Result, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	start := time.Now()
	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		err = nil
	default:
		return res, fmt.Errorf("run %s: %w", name, err)
	}

	slog.Debug("command finished",
		"command", name,
		"exit_code", res.ExitCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

var _ Runner = ExecRunner{}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, stdin []byte, name string, args ...string) (Result, error)

func (f RunnerFunc) Run(ctx context.Context, stdin []byte, name string, args ...string) (Result, error) {
	return f(ctx, stdin, name, args...)
}
