package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// ProfileColumns computes all per-column aggregates for one table in a
// single round trip. Permanent failures of the batched query degrade to
// simplified per-column fallbacks; transient failures bubble up for retry.
func (c *Connector) ProfileColumns(ctx context.Context, table models.TableRef, cols []datasource.ColumnMetadata, strategy models.ReadStrategy, sampleCap int) (*datasource.TableAggregates, error) {
	if err := guardTarget(table, cols); err != nil {
		return nil, err
	}

	if strategy.Mode == models.ReadModeSkip || len(cols) == 0 {
		return emptyAggregates(cols), nil
	}

	pool, err := c.handle()
	if err != nil {
		return nil, err
	}

	from := fromClause(table, strategy)
	query := buildProfileQuery(from, cols, sampleCap)

	agg, err := scanBatchedProfile(ctx, pool, query, cols)
	if err == nil {
		return agg, nil
	}

	classified := classify("profile columns", table.FQN(), err)
	var qe *datasource.QueryError
	if errors.As(classified, &qe) && qe.Transient {
		return nil, classified
	}

	c.logger.Warn("batched profile failed, degrading to per-column fallback",
		zap.String("table", table.FQN()),
		zap.String("error", classified.Error()))
	return c.degradedProfile(ctx, from, table, cols)
}

func guardTarget(table models.TableRef, cols []datasource.ColumnMetadata) error {
	if err := datasource.SafeTableIdentifiers(table.Database, table.Schema, table.Table); err != nil {
		return err
	}
	for _, col := range cols {
		if err := datasource.SafeIdentifier(col.Name); err != nil {
			return err
		}
	}
	return nil
}

func emptyAggregates(cols []datasource.ColumnMetadata) *datasource.TableAggregates {
	agg := &datasource.TableAggregates{Columns: make([]datasource.ColumnAggregate, len(cols))}
	for i, col := range cols {
		agg.Columns[i] = datasource.ColumnAggregate{ColumnName: col.Name}
	}
	return agg
}

// scanBatchedProfile decodes the one-row batched aggregate. The destination
// layout mirrors buildProfileQuery: COUNT(*) first, then per column COUNT,
// COUNT(DISTINCT) and an optional text[] sample slice.
func scanBatchedProfile(ctx context.Context, pool *pgxpool.Pool, query string, cols []datasource.ColumnMetadata) (*datasource.TableAggregates, error) {
	var sampleRowCount int64
	nonNull := make([]int64, len(cols))
	distinct := make([]int64, len(cols))
	samples := make([][]string, len(cols))

	dests := make([]any, 0, 1+3*len(cols))
	dests = append(dests, &sampleRowCount)
	for i, col := range cols {
		dests = append(dests, &nonNull[i], &distinct[i])
		if isTextType(col.DataType) {
			dests = append(dests, &samples[i])
		}
	}

	if err := pool.QueryRow(ctx, query).Scan(dests...); err != nil {
		return nil, err
	}

	agg := &datasource.TableAggregates{
		SampleRowCount: sampleRowCount,
		Columns:        make([]datasource.ColumnAggregate, len(cols)),
	}
	for i, col := range cols {
		agg.Columns[i] = datasource.ColumnAggregate{
			ColumnName:     col.Name,
			NonNullCount:   nonNull[i],
			ApproxDistinct: distinct[i],
			SampleValues:   samples[i],
		}
	}
	return agg, nil
}

// degradedProfile re-derives per-column counts one simplified query at a
// time. Columns that still fail get zero stats with the error recorded.
func (c *Connector) degradedProfile(ctx context.Context, from string, table models.TableRef, cols []datasource.ColumnMetadata) (*datasource.TableAggregates, error) {
	pool, err := c.handle()
	if err != nil {
		return nil, err
	}

	agg := &datasource.TableAggregates{Columns: make([]datasource.ColumnAggregate, len(cols))}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", from)
	if err := pool.QueryRow(ctx, countQuery).Scan(&agg.SampleRowCount); err != nil {
		return nil, classify("count sampled rows", table.FQN(), err)
	}

	for i, col := range cols {
		entry := datasource.ColumnAggregate{ColumnName: col.Name}
		query := buildColumnFallbackQuery(from, col.Name)
		if err := pool.QueryRow(ctx, query).Scan(&entry.NonNullCount, &entry.ApproxDistinct); err != nil {
			entry.NonNullCount = 0
			entry.ApproxDistinct = 0
			entry.Err = classify("profile column", table.FQN()+"."+col.Name, err)
		}
		agg.Columns[i] = entry
	}
	return agg, nil
}

// DistinctCombinationCount validates a composite key candidate over the
// strategy's row set using a row-value DISTINCT.
func (c *Connector) DistinctCombinationCount(ctx context.Context, table models.TableRef, cols []string, strategy models.ReadStrategy) (int64, int64, error) {
	if err := datasource.SafeTableIdentifiers(table.Database, table.Schema, table.Table); err != nil {
		return 0, 0, err
	}
	if err := datasource.SafeTableIdentifiers(cols...); err != nil {
		return 0, 0, err
	}

	pool, err := c.handle()
	if err != nil {
		return 0, 0, err
	}

	query := buildDistinctCombinationQuery(fromClause(table, strategy), cols)

	var total, distinct int64
	if err := pool.QueryRow(ctx, query).Scan(&total, &distinct); err != nil {
		return 0, 0, classify("distinct combination count", table.FQN(), err)
	}
	return distinct, total, nil
}

// OrphanCount counts child values with no parent match, bounded at limit
// child rows.
func (c *Connector) OrphanCount(ctx context.Context, from, to models.ColumnRef, limit int) (int64, error) {
	parts := []string{
		from.Table.Database, from.Table.Schema, from.Table.Table, from.Column,
		to.Table.Database, to.Table.Schema, to.Table.Table, to.Column,
	}
	if err := datasource.SafeTableIdentifiers(parts...); err != nil {
		return 0, err
	}

	pool, err := c.handle()
	if err != nil {
		return 0, err
	}

	query := buildOrphanQuery(from, to, limit)

	var orphans int64
	if err := pool.QueryRow(ctx, query).Scan(&orphans); err != nil {
		return 0, classify("orphan count", from.Table.FQN()+"."+from.Column, err)
	}
	return orphans, nil
}
