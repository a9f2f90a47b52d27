// Package warehouse executes report SQL against a data warehouse and returns
// the result set as ordered records.
package warehouse

import (
	"context"
	"errors"

	"github.com/kiranshivaraju/reportgen/pkg/models"
)

// Sentinel errors for warehouse failures.
var (
	ErrQueryFailed       = errors.New("warehouse query failed")
	ErrMalformedResponse = errors.New("warehouse returned malformed response")
	ErrUnknownBackend    = errors.New("unknown warehouse backend")
)

// Executor runs one SQL statement and returns every row.
// Implementations must return rows in result order with columns in select order.
type Executor interface {
	Query(ctx context.Context, sql string) ([]models.Record, error)
	// Name returns the backend identifier (e.g., "bq-cli", "postgres").
	Name() string
	Close() error
}
