package report

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/ava-labs/readreducer/pkg/clickhouse"
)

// ErrNotFound is returned by Read when no report exists for the run.
var ErrNotFound = errors.New("report not found")

// Repository stores run reports in ClickHouse.
type Repository interface {
	// Initialize creates the local and distributed tables. It is idempotent.
	Initialize(ctx context.Context) error
	Write(ctx context.Context, r *Report) error
	Read(ctx context.Context, runID string) (*Report, error)
}

var _ Repository = (*repository)(nil)

//go:embed queries/create-table-local.sql
var createTableLocalQuery string

//go:embed queries/create-table.sql
var createTableQuery string

//go:embed queries/write-report.sql
var writeReportQuery string

//go:embed queries/read-report.sql
var readReportQuery string

type repository struct {
	client    clickhouse.Client
	cluster   string
	database  string
	tableName string
}

// NewRepository returns a repository for database.tableName. Tables are not created until
// Initialize is called.
func NewRepository(client clickhouse.Client, cluster, database, tableName string) Repository {
	return &repository{client: client, cluster: cluster, database: database, tableName: tableName}
}

// Initialize creates the tables. Schema:
//   - run_id: String (sorting key)
//   - timestamp: Int64 (ReplacingMergeTree version, the latest write of a run wins)
func (r *repository) Initialize(ctx context.Context) error {
	query := fmt.Sprintf(createTableLocalQuery, r.database, r.tableName, r.cluster)
	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create reports local table: %w", err)
	}

	query = fmt.Sprintf(createTableQuery,
		r.database, r.tableName, r.cluster, r.database, r.tableName, r.cluster, r.database, r.tableName)
	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	return nil
}

func (r *repository) Write(ctx context.Context, rep *Report) error {
	query := fmt.Sprintf(writeReportQuery, r.database, r.tableName)
	err := r.client.Conn().Exec(ctx, query,
		rep.RunID, rep.Input, rep.Output,
		rep.TotalReads, rep.FilteredReads, rep.DroppedReads,
		rep.EmittedReads, rep.ConsensusReads, rep.VariableReads,
		rep.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (r *repository) Read(ctx context.Context, runID string) (*Report, error) {
	var rep Report
	query := fmt.Sprintf(readReportQuery, r.database, r.tableName)
	err := r.client.Conn().
		QueryRow(ctx, query, runID).
		Scan(&rep.RunID, &rep.Input, &rep.Output,
			&rep.TotalReads, &rep.FilteredReads, &rep.DroppedReads,
			&rep.EmittedReads, &rep.ConsensusReads, &rep.VariableReads,
			&rep.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return &rep, nil
}
