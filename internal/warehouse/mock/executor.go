package mock

import (
	"context"

	"github.com/kiranshivaraju/reportgen/internal/warehouse"
	"github.com/kiranshivaraju/reportgen/pkg/models"
)

// MockExecutor satisfies warehouse.Executor for testing.
type MockExecutor struct {
	Name_     string
	QueryFunc func(ctx context.Context, sql string) ([]models.Record, error)

	// Queries records every SQL text received, in order.
	Queries []string
	Closed  bool
}

func (m *MockExecutor) Name() string { return m.Name_ }

func (m *MockExecutor) Query(ctx context.Context, sql string) ([]models.Record, error) {
	m.Queries = append(m.Queries, sql)
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql)
	}
	return []models.Record{}, nil
}

func (m *MockExecutor) Close() error {
	m.Closed = true
	return nil
}

// NewMockExecutor returns a MockExecutor that always returns rows.
func NewMockExecutor(rows []models.Record) *MockExecutor {
	return &MockExecutor{
		Name_: "mock",
		QueryFunc: func(_ context.Context, _ string) ([]models.Record, error) {
			return rows, nil
		},
	}
}

// NewFailingExecutor returns a MockExecutor that always returns err.
func NewFailingExecutor(err error) *MockExecutor {
	return &MockExecutor{
		Name_: "mock-failing",
		QueryFunc: func(_ context.Context, _ string) ([]models.Record, error) {
			return nil, err
		},
	}
}

// Compile-time check that MockExecutor implements Executor.
var _ warehouse.Executor = (*MockExecutor)(nil)
