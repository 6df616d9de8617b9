// Package mocks provides a testify mock of the ClickHouse driver connection.
package mocks

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/mock"
)

var _ driver.Conn = (*MockConn)(nil)

// MockConn records calls as (ctx, query, args...) so expectations can match on the query text.
type MockConn struct {
	mock.Mock
}

func (m *MockConn) called(method string, ctx context.Context, query string, args []any) mock.Arguments {
	return m.MethodCalled(method, append([]any{ctx, query}, args...)...)
}

func (m *MockConn) Contributors() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockConn) ServerVersion() (*driver.ServerVersion, error) {
	ret := m.Called()
	v, _ := ret.Get(0).(*driver.ServerVersion)
	return v, ret.Error(1)
}

func (m *MockConn) Select(ctx context.Context, _ any, query string, args ...any) error {
	return m.called("Select", ctx, query, args).Error(0)
}

func (m *MockConn) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	ret := m.called("Query", ctx, query, args)
	rows, _ := ret.Get(0).(driver.Rows)
	return rows, ret.Error(1)
}

func (m *MockConn) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	row, _ := m.called("QueryRow", ctx, query, args).Get(0).(driver.Row)
	return row
}

func (m *MockConn) Exec(ctx context.Context, query string, args ...any) error {
	return m.called("Exec", ctx, query, args).Error(0)
}

func (m *MockConn) AsyncInsert(ctx context.Context, query string, wait bool, args ...any) error {
	return m.Called(append([]any{ctx, query, wait}, args...)...).Error(0)
}

func (m *MockConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	callArgs := []any{ctx, query}
	for _, opt := range opts {
		callArgs = append(callArgs, opt)
	}
	ret := m.Called(callArgs...)
	batch, _ := ret.Get(0).(driver.Batch)
	return batch, ret.Error(1)
}

func (m *MockConn) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockConn) Stats() driver.Stats {
	s, _ := m.Called().Get(0).(driver.Stats)
	return s
}

func (m *MockConn) Close() error {
	return m.Called().Error(0)
}
