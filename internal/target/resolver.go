// Package target resolves which warehouse project and dataset a report runs against.
package target

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kiranshivaraju/reportgen/internal/cmdexec"
)

var (
	ErrNoProject = errors.New("warehouse project is empty: set --project-id, BQ_PROJECT_ID, or GOOGLE_CLOUD_PROJECT")
	ErrNoDataset = errors.New("warehouse dataset is empty: set --dataset-id or BQ_DATASET_ID")
)

// DefaultConfigCommand asks the local gcloud installation for its active project.
var DefaultConfigCommand = []string{"gcloud", "config", "get-value", "project", "--quiet"}

var placeholders = map[string]bool{
	"(unset)": true,
	"unset":   true,
	"none":    true,
	"null":    true,
}

// IsEffective reports whether v is a usable identifier rather than an empty
// or "unset"-style placeholder.
func IsEffective(v string) bool {
	lowered := strings.ToLower(strings.TrimSpace(v))
	return lowered != "" && !placeholders[lowered]
}

// Resolver picks the project identifier from, in order, an explicit value,
// the configured environment values, and the local configuration command.
type Resolver struct {
	// Env holds environment-derived candidates in priority order.
	Env []string
	// Command is the local configuration command; empty disables the fallback.
	Command []string
	Runner  cmdexec.Runner
}

// NewResolver returns a Resolver that falls back to gcloud via os/exec.
func NewResolver(env ...string) *Resolver {
	return &Resolver{
		Env:     env,
		Command: DefaultConfigCommand,
		Runner:  cmdexec.ExecRunner{},
	}
}

// Resolve returns the first effective project identifier, or ErrNoProject.
func (r *Resolver) Resolve(ctx context.Context, explicit string) (string, error) {
	if IsEffective(explicit) {
		return strings.TrimSpace(explicit), nil
	}
	for _, v := range r.Env {
		if IsEffective(v) {
			return strings.TrimSpace(v), nil
		}
	}
	if v := r.fromCommand(ctx); IsEffective(v) {
		return v, nil
	}
	return "", ErrNoProject
}

func (r *Resolver) fromCommand(ctx context.Context) string {
	if len(r.Command) == 0 || r.Runner == nil {
		return ""
	}
	res, err := r.Runner.Run(ctx, nil, r.Command[0], r.Command[1:]...)
	if err != nil {
		slog.Debug("project lookup command unavailable", "command", r.Command[0], "error", err)
		return ""
	}
	if res.ExitCode != 0 {
		return ""
	}
	return strings.TrimSpace(string(res.Stdout))
}

// RequireDataset validates a dataset identifier. Datasets have no fallback.
func RequireDataset(candidates ...string) (string, error) {
	for _, v := range candidates {
		if IsEffective(v) {
			return strings.TrimSpace(v), nil
		}
	}
	return "", ErrNoDataset
}
