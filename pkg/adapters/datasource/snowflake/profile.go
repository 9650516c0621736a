package snowflake

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// ProfileColumns computes all per-column aggregates for one table in a
// single warehouse round trip. Transient failures bubble up for the caller
// to retry; a permanent failure of the batched query degrades to simplified
// per-column fallbacks so one pathological column cannot sink the table.
func (c *Connector) ProfileColumns(ctx context.Context, table models.TableRef, cols []datasource.ColumnMetadata, strategy models.ReadStrategy, sampleCap int) (*datasource.TableAggregates, error) {
	if err := guardTarget(table, cols); err != nil {
		return nil, err
	}

	if strategy.Mode == models.ReadModeSkip || len(cols) == 0 {
		return emptyAggregates(cols), nil
	}

	db, err := c.handle()
	if err != nil {
		return nil, err
	}

	from := fromClause(table, strategy)
	query := buildProfileQuery(from, cols, sampleCap)

	agg, err := scanBatchedProfile(db.QueryRowContext(ctx, query), cols)
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

// scanBatchedProfile decodes the one-row result of the batched aggregate.
// The destination layout mirrors buildProfileQuery: COUNT(*) first, then
// per column COUNT, APPROX_COUNT_DISTINCT and an optional JSON sample array.
func scanBatchedProfile(row *sql.Row, cols []datasource.ColumnMetadata) (*datasource.TableAggregates, error) {
	var sampleRowCount int64
	nonNull := make([]int64, len(cols))
	distinct := make([]int64, len(cols))
	samples := make([]sql.NullString, len(cols))

	dests := make([]any, 0, 1+3*len(cols))
	dests = append(dests, &sampleRowCount)
	for i, col := range cols {
		dests = append(dests, &nonNull[i], &distinct[i])
		if isTextType(col.DataType) {
			dests = append(dests, &samples[i])
		}
	}

	if err := row.Scan(dests...); err != nil {
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
			SampleValues:   decodeSampleValues(samples[i]),
		}
	}
	return agg, nil
}

// decodeSampleValues parses the TO_JSON(ARRAY_SLICE(...)) output. A decode
// failure loses the samples, never the column.
func decodeSampleValues(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var values []any
	if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// degradedProfile re-derives per-column counts with one simplified query per
// column. Columns that still fail get zero stats with the error recorded.
func (c *Connector) degradedProfile(ctx context.Context, from string, table models.TableRef, cols []datasource.ColumnMetadata) (*datasource.TableAggregates, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}

	agg := &datasource.TableAggregates{Columns: make([]datasource.ColumnAggregate, len(cols))}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", from)
	if err := db.QueryRowContext(ctx, countQuery).Scan(&agg.SampleRowCount); err != nil {
		return nil, classify("count sampled rows", table.FQN(), err)
	}

	for i, col := range cols {
		entry := datasource.ColumnAggregate{ColumnName: col.Name}
		query := buildColumnFallbackQuery(from, col.Name)
		if err := db.QueryRowContext(ctx, query).Scan(&entry.NonNullCount, &entry.ApproxDistinct); err != nil {
			entry.NonNullCount = 0
			entry.ApproxDistinct = 0
			entry.Err = classify("profile column", table.FQN()+"."+col.Name, err)
		}
		agg.Columns[i] = entry
	}
	return agg, nil
}

// DistinctCombinationCount validates a composite key candidate by comparing
// distinct combinations against total rows over the strategy's row set.
func (c *Connector) DistinctCombinationCount(ctx context.Context, table models.TableRef, cols []string, strategy models.ReadStrategy) (int64, int64, error) {
	if err := datasource.SafeTableIdentifiers(table.Database, table.Schema, table.Table); err != nil {
		return 0, 0, err
	}
	if err := datasource.SafeTableIdentifiers(cols...); err != nil {
		return 0, 0, err
	}

	db, err := c.handle()
	if err != nil {
		return 0, 0, err
	}

	query := buildDistinctCombinationQuery(fromClause(table, strategy), cols)

	var total, distinct int64
	if err := db.QueryRowContext(ctx, query).Scan(&total, &distinct); err != nil {
		return 0, 0, classify("distinct combination count", table.FQN(), err)
	}
	return distinct, total, nil
}

// OrphanCount counts child values with no parent match, bounded at limit
// child rows so wide fact tables stay cheap to check.
func (c *Connector) OrphanCount(ctx context.Context, from, to models.ColumnRef, limit int) (int64, error) {
	parts := []string{
		from.Table.Database, from.Table.Schema, from.Table.Table, from.Column,
		to.Table.Database, to.Table.Schema, to.Table.Table, to.Column,
	}
	if err := datasource.SafeTableIdentifiers(parts...); err != nil {
		return 0, err
	}

	db, err := c.handle()
	if err != nil {
		return 0, err
	}

	query := buildOrphanQuery(from, to, limit)

	var orphans int64
	if err := db.QueryRowContext(ctx, query).Scan(&orphans); err != nil {
		return 0, classify("orphan count", from.Table.FQN()+"."+from.Column, err)
	}
	return orphans, nil
}
