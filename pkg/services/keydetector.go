package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/retry"
)

const (
	compositeKeyMinSize = 2
	compositeKeyMaxSize = 5
)

// KeyDetector finds composite keys for tables where no single column
// qualified as PK-likely.
type KeyDetector interface {
	// DetectCompositeKey generates at most two candidate column sets and
	// validates them against the backend. The first combination whose
	// distinct/total ratio clears the uniqueness threshold wins: its
	// columns are flagged PK-likely and recorded on the profile.
	DetectCompositeKey(ctx context.Context, profile *models.TableProfile) error
}

type keyDetector struct {
	exec     datasource.QueryExecutor
	cfg      config.DiscoveryConfig
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewKeyDetector creates a detector bound to one query executor.
func NewKeyDetector(exec datasource.QueryExecutor, cfg config.DiscoveryConfig, retryCfg *retry.Config, logger *zap.Logger) KeyDetector {
	return &keyDetector{
		exec:     exec,
		cfg:      cfg,
		retryCfg: retryCfg,
		logger:   logger.Named("keydetector"),
	}
}

func (d *keyDetector) DetectCompositeKey(ctx context.Context, profile *models.TableProfile) error {
	if profile.PKColumn() != "" || profile.Error != "" {
		return nil
	}
	if profile.Strategy.Mode == models.ReadModeSkip {
		return nil
	}

	candidates := d.candidateSets(profile)
	for _, cols := range candidates {
		if len(cols) < compositeKeyMinSize || len(cols) > compositeKeyMaxSize {
			continue
		}

		result, err := retry.DoWithResult(ctx, d.retryCfg, func() (counts, error) {
			distinct, total, err := d.exec.DistinctCombinationCount(ctx, profile.Ref, cols, profile.Strategy)
			return counts{distinct: distinct, total: total}, err
		}, func() error {
			return d.exec.Reconnect(ctx)
		})
		if err != nil {
			// A failed validation skips the candidate, never the run.
			d.logger.Warn("composite key validation failed",
				zap.String("table", profile.Ref.FQN()),
				zap.Strings("columns", cols),
				zap.String("error", err.Error()))
			continue
		}

		if result.total > 0 && float64(result.distinct)/float64(result.total) > d.cfg.PKUniquenessThreshold {
			profile.CompositeKey = cols
			for _, name := range cols {
				if cp := profile.Column(name); cp != nil {
					cp.IsLikelyPK = true
				}
			}
			d.logger.Info("composite key detected",
				zap.String("table", profile.Ref.FQN()),
				zap.Strings("columns", cols))
			return nil
		}
	}
	return nil
}

type counts struct {
	distinct int64
	total    int64
}

// candidateSets builds at most two combinations: all identifier-suffixed
// zero-null columns plus the first timestamp column, then the identifier
// columns alone.
func (d *keyDetector) candidateSets(profile *models.TableProfile) [][]string {
	var identifiers []string
	var timestamps []string

	for _, col := range profile.Columns {
		if col.Error != "" || col.NullPct != 0 {
			continue
		}
		switch {
		case d.hasIdentifierSuffix(col.ColumnName):
			identifiers = append(identifiers, col.ColumnName)
		case isTemporalType(col.DataType):
			timestamps = append(timestamps, col.ColumnName)
		}
	}

	var sets [][]string
	if len(identifiers) > 0 && len(timestamps) > 0 {
		withTime := make([]string, 0, len(identifiers)+1)
		withTime = append(withTime, identifiers...)
		withTime = append(withTime, timestamps[0])
		sets = append(sets, withTime)
	}
	if len(identifiers) >= 2 {
		sets = append(sets, identifiers)
	}
	return sets
}

func (d *keyDetector) hasIdentifierSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range d.cfg.IdentifierSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// isTemporalType reports whether a declared type is a date or timestamp.
func isTemporalType(dataType string) bool {
	upper := strings.ToUpper(dataType)
	return strings.Contains(upper, "TIMESTAMP") ||
		strings.Contains(upper, "DATETIME") ||
		strings.Contains(upper, "DATE")
}
