package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/retry"
)

// ColumnProfiler computes per-column statistics for one table at a time.
type ColumnProfiler interface {
	// ProfileTable runs the batched aggregate for a table and derives all
	// column profiles. Transient backend errors are retried with a forced
	// reconnect; exhausting retries returns an error. Permanent failures
	// degrade the table to an error profile instead of failing the run.
	ProfileTable(ctx context.Context, table *models.Table) (*models.TableProfile, error)
}

type columnProfiler struct {
	exec       datasource.QueryExecutor
	strategist SamplingStrategist
	cfg        config.DiscoveryConfig
	retryCfg   *retry.Config
	logger     *zap.Logger
}

// NewColumnProfiler creates a profiler bound to one query executor.
func NewColumnProfiler(exec datasource.QueryExecutor, strategist SamplingStrategist, cfg config.DiscoveryConfig, retryCfg *retry.Config, logger *zap.Logger) ColumnProfiler {
	return &columnProfiler{
		exec:       exec,
		strategist: strategist,
		cfg:        cfg,
		retryCfg:   retryCfg,
		logger:     logger.Named("profiler"),
	}
}

func (p *columnProfiler) ProfileTable(ctx context.Context, table *models.Table) (*models.TableProfile, error) {
	strategy := p.strategist.Choose(datasource.TableMetadata{
		Kind:     table.Kind,
		RowCount: table.RowCount,
	})

	profile := &models.TableProfile{
		Ref:      table.Ref,
		Strategy: strategy,
	}

	if strategy.Mode == models.ReadModeSkip {
		zero := int64(0)
		profile.TotalRows = &zero
		for _, col := range table.Columns {
			profile.Columns = append(profile.Columns, &models.ColumnProfile{
				Table:      table.Ref,
				ColumnName: col.Name,
				DataType:   col.DataType,
			})
		}
		return profile, nil
	}

	cols := make([]datasource.ColumnMetadata, len(table.Columns))
	for i, col := range table.Columns {
		cols[i] = datasource.ColumnMetadata{
			Name:            col.Name,
			DataType:        col.DataType,
			IsNullable:      col.IsNullable,
			OrdinalPosition: col.OrdinalPosition,
		}
	}

	agg, err := retry.DoWithResult(ctx, p.retryCfg, func() (*datasource.TableAggregates, error) {
		return p.exec.ProfileColumns(ctx, table.Ref, cols, strategy, p.cfg.DistinctSampleCap)
	}, func() error {
		p.logger.Warn("transient profiling failure, reconnecting",
			zap.String("table", table.Ref.FQN()))
		return p.exec.Reconnect(ctx)
	})
	if err != nil {
		if retry.IsRetryable(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		// Permanent failure: the run continues with an error profile for
		// this table.
		p.logger.Warn("table profiling degraded",
			zap.String("table", table.Ref.FQN()),
			zap.String("error", err.Error()))
		profile.Error = err.Error()
		for _, col := range table.Columns {
			profile.Columns = append(profile.Columns, models.ErrorColumnProfile(table.Ref, col.Name, col.DataType, err.Error()))
		}
		return profile, nil
	}

	profile.SampleRowCount = agg.SampleRowCount
	if strategy.Mode == models.ReadModeSubquery {
		// Row count was unknown before the query; the rows actually read
		// become the total.
		read := agg.SampleRowCount
		profile.TotalRows = &read
	} else {
		profile.TotalRows = table.RowCount
	}

	for i, col := range table.Columns {
		entry := agg.Columns[i]
		if entry.Err != nil {
			profile.Columns = append(profile.Columns, models.ErrorColumnProfile(table.Ref, col.Name, col.DataType, entry.Err.Error()))
			continue
		}
		profile.Columns = append(profile.Columns, p.deriveColumnProfile(table.Ref, col, entry, agg.SampleRowCount, strategy.Sampled))
	}

	return profile, nil
}

// deriveColumnProfile turns raw aggregates into a profile, applying the
// primary-key heuristic.
func (p *columnProfiler) deriveColumnProfile(ref models.TableRef, col models.Column, agg datasource.ColumnAggregate, sampleRows int64, sampled bool) *models.ColumnProfile {
	var nullPct float64
	if sampleRows > 0 {
		nullPct = round2((1 - float64(agg.NonNullCount)/float64(sampleRows)) * 100)
	}
	nullPct = clampPct(nullPct)

	var uniquenessPct float64
	if agg.NonNullCount > 0 {
		// Approximate distinct counts can slightly exceed the non-null
		// count; clamp so the [0,100] invariant holds.
		uniquenessPct = clampPct(round2(float64(agg.ApproxDistinct) / float64(agg.NonNullCount) * 100))
	}

	profile := &models.ColumnProfile{
		Table:          ref,
		ColumnName:     col.Name,
		DataType:       col.DataType,
		NullPct:        nullPct,
		ApproxDistinct: agg.ApproxDistinct,
		UniquenessPct:  uniquenessPct,
		Sampled:        sampled,
		SampleValues:   agg.SampleValues,
	}

	profile.IsLikelyPK = uniquenessPct > p.cfg.PKUniquenessThreshold*100 &&
		nullPct == 0 &&
		!isFreeTextType(col.DataType) &&
		!p.hasDescriptiveKeyword(col.Name)

	return profile
}

// hasDescriptiveKeyword reports whether the column name matches a semantic
// exclusion. A statistically perfect match is still not a key if its name
// says it holds prose.
func (p *columnProfiler) hasDescriptiveKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range p.cfg.DescriptiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// isFreeTextType reports whether a declared type is a long-text or
// variant-like type, which disqualifies the column from PK likelihood.
func isFreeTextType(dataType string) bool {
	upper := strings.ToUpper(dataType)
	for _, t := range []string{"TEXT", "STRING", "CLOB", "VARIANT", "OBJECT", "ARRAY", "JSON", "XML"} {
		if strings.Contains(upper, t) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
