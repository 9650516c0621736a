package datasource

import (
	"context"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// SchemaReader reads catalog metadata from a datasource.
// Each implementation owns its connection and must be closed when done.
type SchemaReader interface {
	// ListTables returns tables (and optionally views) in the given
	// database/schema scope, sorted by name. Row counts come from the
	// catalog and are nil when the backend cannot report them, which is
	// always the case for views.
	ListTables(ctx context.Context, database, schema string, includeViews bool) ([]TableMetadata, error)

	// ListColumns returns columns for a table in ordinal order.
	ListColumns(ctx context.Context, ref models.TableRef) ([]ColumnMetadata, error)
}

// QueryExecutor runs the profiling queries against a datasource.
// Implementations own their SQL dialect: callers never hand them SQL text,
// only table and column references that have passed the identifier guard.
type QueryExecutor interface {
	// ProfileColumns computes per-column aggregates for one table in a
	// single round trip, reading rows according to the given strategy.
	// sampleCap bounds how many distinct sample values are collected per
	// low-cardinality column. A failure on one column's aggregates must
	// not fail the table: the implementation retries that column with a
	// simplified aggregate and, failing that, records the error on the
	// ColumnAggregate entry.
	ProfileColumns(ctx context.Context, table models.TableRef, cols []ColumnMetadata, strategy models.ReadStrategy, sampleCap int) (*TableAggregates, error)

	// DistinctCombinationCount returns the distinct count of the given
	// column combination and the total row count, both over the rows the
	// strategy selects. Used to validate composite key candidates.
	DistinctCombinationCount(ctx context.Context, table models.TableRef, cols []string, strategy models.ReadStrategy) (distinct, total int64, err error)

	// OrphanCount counts values in from.Column that have no match in
	// to.Column, checking at most limit child rows.
	OrphanCount(ctx context.Context, from, to models.ColumnRef, limit int) (int64, error)

	// Reconnect tears down the current connection and establishes a fresh
	// one. Called between retry attempts after a transient failure.
	Reconnect(ctx context.Context) error

	// Close releases the connection.
	Close() error
}

// Connector is the full datasource contract the pipeline runs against.
type Connector interface {
	SchemaReader
	QueryExecutor
}

// TableMetadata describes a table as reported by the backend catalog.
type TableMetadata struct {
	Database string
	Schema   string
	Name     string
	Kind     models.TableKind
	Comment  string
	RowCount *int64 // nil when the catalog has no count (views, stale stats)
}

// Ref converts catalog metadata into the canonical table reference.
func (t TableMetadata) Ref() models.TableRef {
	return models.TableRef{Database: t.Database, Schema: t.Schema, Table: t.Name}
}

// ColumnMetadata describes a column as reported by the backend catalog.
type ColumnMetadata struct {
	Name            string
	DataType        string
	IsNullable      bool
	OrdinalPosition int
	Comment         string
}

// ColumnAggregate holds the per-column results of a profiling query.
// When Err is set the counts are zero and the column is reported as
// degraded rather than failing the table.
type ColumnAggregate struct {
	ColumnName     string
	NonNullCount   int64
	ApproxDistinct int64
	SampleValues   []string
	Err            error
}

// TableAggregates is the result of one ProfileColumns round trip.
type TableAggregates struct {
	SampleRowCount int64
	Columns        []ColumnAggregate
}
