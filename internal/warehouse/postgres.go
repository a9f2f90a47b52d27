package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kiranshivaraju/reportgen/internal/config"
	"github.com/kiranshivaraju/reportgen/pkg/models"
)

// Connect opens a pgx pool for a Postgres-speaking warehouse and verifies it.
func Connect(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse warehouse URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to warehouse: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}

	return pool, nil
}

// PostgresExecutor implements Executor using pgx/v5.
type PostgresExecutor struct {
	pool *pgxpool.Pool
}

// NewPostgresExecutor wraps an open pool. Close releases it.
func NewPostgresExecutor(pool *pgxpool.Pool) *PostgresExecutor {
	return &PostgresExecutor{pool: pool}
}

func (e *PostgresExecutor) Name() string { return "postgres" }

func (e *PostgresExecutor) Close() error {
	e.pool.Close()
	return nil
}

func (e *PostgresExecutor) Query(ctx context.Context, sql string) ([]models.Record, error) {
	rows, err := e.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := []models.Record{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", ErrMalformedResponse, err)
		}
		rec := models.NewRecord()
		for i, fd := range fields {
			rec.Set(fd.Name, postgresScalar(values[i]))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return out, nil
}

// postgresScalar converts pgx composite values into display-friendly scalars.
func postgresScalar(v any) any {
	switch t := v.(type) {
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.UTC().Format(time.RFC3339)
	case [16]byte:
		return uuid.UUID(t).String()
	default:
		return t
	}
}

var _ Executor = (*PostgresExecutor)(nil)
