package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kiranshivaraju/reportgen/internal/cmdexec"
	"github.com/kiranshivaraju/reportgen/pkg/models"
)

// CLIExecutor implements Executor by shelling out to the bq command-line tool
// and parsing its prettyjson output.
type CLIExecutor struct {
	binary    string
	projectID string
	maxRows   int
	runner    cmdexec.Runner
}

// NewCLIExecutor creates a CLIExecutor. A nil runner uses os/exec.
func NewCLIExecutor(binary, projectID string, maxRows int, runner cmdexec.Runner) *CLIExecutor {
	if runner == nil {
		runner = cmdexec.ExecRunner{}
	}
	return &CLIExecutor{
		binary:    binary,
		projectID: projectID,
		maxRows:   maxRows,
		runner:    runner,
	}
}

func (e *CLIExecutor) Name() string { return "bq-cli" }

func (e *CLIExecutor) Close() error { return nil }

// Args returns the bq arguments used for every query. SQL is sent on stdin.
func (e *CLIExecutor) Args() []string {
	args := []string{
		"query",
		"--project_id", e.projectID,
		"--use_legacy_sql=false",
		"--format=prettyjson",
	}
	if e.maxRows > 0 {
		args = append(args, "--max_rows="+strconv.Itoa(e.maxRows))
	}
	return args
}

func (e *CLIExecutor) Query(ctx context.Context, sql string) ([]models.Record, error) {
	res, err := e.runner.Run(ctx, []byte(sql), e.binary, e.Args()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: bq query failed (exit %d): %s",
			ErrQueryFailed, res.ExitCode, res.Diagnostic("No output from bq CLI"))
	}
	return DecodeRows(res.Stdout)
}

// DecodeRows parses a JSON array of objects into records. Empty input is an
// empty result set; anything other than an array of objects is malformed.
func DecodeRows(payload []byte) ([]models.Record, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return []models.Record{}, nil
	}
	if payload[0] != '[' {
		return nil, fmt.Errorf("%w: expected JSON array", ErrMalformedResponse)
	}

	var rows []models.Record
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if rows == nil {
		return []models.Record{}, nil
	}
	return rows, nil
}

var _ Executor = (*CLIExecutor)(nil)
