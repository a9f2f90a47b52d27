package warehouse

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/reportgen/internal/cmdexec"
	"github.com/kiranshivaraju/reportgen/internal/config"
)

// NewExecutor constructs the executor selected by cfg.Backend for projectID.
// runner is only used by the bq-cli backend; nil means os/exec.
func NewExecutor(ctx context.Context, cfg config.WarehouseConfig, projectID string, runner cmdexec.Runner) (Executor, error) {
	switch cfg.Backend {
	case config.BackendBQCLI:
		return NewCLIExecutor(cfg.BQ.Binary, projectID, cfg.BQ.MaxRows, runner), nil
	case config.BackendBigQuery:
		return NewBigQueryExecutor(ctx, projectID)
	case config.BackendPostgres:
		pool, err := Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return NewPostgresExecutor(pool), nil
	case config.BackendClickHouse:
		return NewClickHouseExecutor(ctx, cfg.ClickHouse.DSN)
	default:
		return nil, fmt.Errorf("%w %q: must be one of bq-cli, bigquery, postgres, clickhouse", ErrUnknownBackend, cfg.Backend)
	}
}
