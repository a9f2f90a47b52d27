package warehouse

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/kiranshivaraju/reportgen/pkg/models"
)

// BigQueryExecutor implements Executor with the native BigQuery client.
type BigQueryExecutor struct {
	client *bigquery.Client
}

// NewBigQueryExecutor creates a client for projectID using application
// default credentials.
func NewBigQueryExecutor(ctx context.Context, projectID string) (*BigQueryExecutor, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	return &BigQueryExecutor{client: client}, nil
}

func (e *BigQueryExecutor) Name() string { return "bigquery" }

func (e *BigQueryExecutor) Close() error { return e.client.Close() }

func (e *BigQueryExecutor) Query(ctx context.Context, sql string) ([]models.Record, error) {
	q := e.client.Query(sql)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	rows := []models.Record{}
	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		if len(values) != len(it.Schema) {
			return nil, fmt.Errorf("%w: row has %d values for %d columns",
				ErrMalformedResponse, len(values), len(it.Schema))
		}

		rec := models.NewRecord()
		for i, field := range it.Schema {
			rec.Set(field.Name, bigQueryScalar(values[i]))
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// bigQueryScalar flattens client value types into the scalars Record expects.
func bigQueryScalar(v bigquery.Value) any {
	switch t := v.(type) {
	case civil.Date:
		return t.String()
	case civil.DateTime:
		return t.String()
	case civil.Time:
		return t.String()
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *big.Rat:
		// NUMERIC and BIGNUMERIC; the bq CLI renders these as plain decimals.
		if t == nil {
			return nil
		}
		f, _ := t.Float64()
		return f
	case []bigquery.Value:
		return fmt.Sprint(t)
	default:
		return t
	}
}

var _ Executor = (*BigQueryExecutor)(nil)
