package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/retry"
)

// Hard caps applied when average completeness collapses, irrespective of
// any other deduction.
const (
	completenessFloorSevere   = 10
	completenessCapSevere     = 15
	completenessFloorDegraded = 50
	completenessCapDegraded   = 35
	completenessTarget        = 90
)

// QualityChecker runs the per-category data-quality checks for one run.
type QualityChecker interface {
	Check(ctx context.Context, tables []*models.Table, profiles []*models.TableProfile, relationships []*models.Relationship) *models.CheckResults
}

type qualityChecker struct {
	exec     datasource.QueryExecutor
	cfg      config.DiscoveryConfig
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewQualityChecker creates a checker bound to one query executor. The
// executor is only used for the bounded orphaned-FK anti-join; every other
// check runs on already-computed profiles.
func NewQualityChecker(exec datasource.QueryExecutor, cfg config.DiscoveryConfig, retryCfg *retry.Config, logger *zap.Logger) QualityChecker {
	return &qualityChecker{
		exec:     exec,
		cfg:      cfg,
		retryCfg: retryCfg,
		logger:   logger.Named("quality"),
	}
}

func (c *qualityChecker) Check(ctx context.Context, tables []*models.Table, profiles []*models.TableProfile, relationships []*models.Relationship) *models.CheckResults {
	results := &models.CheckResults{}

	profileByFQN := make(map[string]*models.TableProfile, len(profiles))
	for _, p := range profiles {
		profileByFQN[p.Ref.FQN()] = p
	}

	for _, profile := range profiles {
		if pct, ok := c.tableCompleteness(profile); ok {
			results.CompletenessPcts = append(results.CompletenessPcts, pct)
		}
		c.checkDuplicatePK(profile, results)
		c.checkNumericVarchar(profile, results)
	}

	for _, table := range tables {
		if strings.TrimSpace(table.Comment) == "" {
			results.MissingDescriptions = append(results.MissingDescriptions, models.QualityIssue{
				Category: models.IssueMissingDescription,
				Severity: models.SeverityLow,
				Message:  fmt.Sprintf("table %s has no description", table.Ref.FQN()),
				Tables:   []string{table.Ref.FQN()},
			})
		}
	}

	c.checkOrphanedFKs(ctx, relationships, results)

	return results
}

// tableCompleteness averages 100-minus-null-pct over identifier-like
// columns only. Sparse business attributes are expected and not penalized.
func (c *qualityChecker) tableCompleteness(profile *models.TableProfile) (float64, bool) {
	var sum float64
	var n int
	for _, col := range profile.Columns {
		if col.Error != "" || !c.isIdentifierLike(col) {
			continue
		}
		sum += col.NullPct
		n++
	}
	if n == 0 {
		return 0, false
	}
	return 100 - sum/float64(n), true
}

func (c *qualityChecker) isIdentifierLike(col *models.ColumnProfile) bool {
	if col.IsLikelyPK {
		return true
	}
	lower := strings.ToLower(col.ColumnName)
	if lower == "id" {
		return true
	}
	for _, suffix := range c.cfg.CompletenessSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// checkDuplicatePK flags detected single-column keys whose distinct count
// falls short of the rows read: the "key" repeats. Only unsampled reads
// are checked; sampled approximate counts are too noisy to call a
// duplicate with confidence.
func (c *qualityChecker) checkDuplicatePK(profile *models.TableProfile, results *models.CheckResults) {
	if len(profile.CompositeKey) > 0 || profile.Strategy.Sampled {
		return
	}
	pk := profile.PKColumn()
	if pk == "" {
		return
	}
	col := profile.Column(pk)
	if col == nil || profile.SampleRowCount == 0 {
		return
	}
	if col.UniquenessPct < 100 {
		results.DuplicatePKs = append(results.DuplicatePKs, models.QualityIssue{
			Category: models.IssueDuplicatePK,
			Severity: models.SeverityHigh,
			Message:  fmt.Sprintf("primary key %s.%s has duplicate values", profile.Ref.FQN(), pk),
			Tables:   []string{profile.Ref.FQN()},
		})
	}
}

// checkNumericVarchar flags text columns whose sampled values all parse as
// numbers, a common smell of lossy typing.
func (c *qualityChecker) checkNumericVarchar(profile *models.TableProfile, results *models.CheckResults) {
	for _, col := range profile.Columns {
		if col.Error != "" || len(col.SampleValues) == 0 {
			continue
		}
		allNumeric := true
		for _, v := range col.SampleValues {
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				allNumeric = false
				break
			}
		}
		if allNumeric {
			results.NumericVarchars = append(results.NumericVarchars, models.QualityIssue{
				Category: models.IssueNumericVarchar,
				Severity: models.SeverityMedium,
				Message:  fmt.Sprintf("column %s.%s stores numeric values as text", profile.Ref.FQN(), col.ColumnName),
				Tables:   []string{profile.Ref.FQN()},
			})
		}
	}
}

// checkOrphanedFKs validates each inferred relationship with a bounded
// anti-join. Backend failures skip the relationship rather than failing
// the quality step.
func (c *qualityChecker) checkOrphanedFKs(ctx context.Context, relationships []*models.Relationship, results *models.CheckResults) {
	for _, rel := range relationships {
		orphans, err := retry.DoWithResult(ctx, c.retryCfg, func() (int64, error) {
			return c.exec.OrphanCount(ctx,
				models.ColumnRef{Table: rel.FromTable, Column: rel.FromColumn},
				models.ColumnRef{Table: rel.ToTable, Column: rel.ToColumn},
				int(c.cfg.OrphanSampleLimit))
		}, func() error {
			return c.exec.Reconnect(ctx)
		})
		if err != nil {
			c.logger.Warn("orphaned FK check failed",
				zap.String("from", rel.FromTable.FQN()+"."+rel.FromColumn),
				zap.String("to", rel.ToTable.FQN()+"."+rel.ToColumn),
				zap.String("error", err.Error()))
			continue
		}
		if orphans > 0 {
			results.OrphanedFKs = append(results.OrphanedFKs, models.QualityIssue{
				Category: models.IssueOrphanedFK,
				Severity: models.SeverityMedium,
				Message: fmt.Sprintf("%d sampled values in %s.%s have no match in %s.%s",
					orphans, rel.FromTable.FQN(), rel.FromColumn, rel.ToTable.FQN(), rel.ToColumn),
				Tables: []string{rel.FromTable.FQN(), rel.ToTable.FQN()},
			})
		}
	}
}

// ScoreQuality turns check results into the 0-100 health score. The score
// starts at 100 and only subtracts, so it can never exceed 100; the final
// floor keeps it non-negative.
func ScoreQuality(results *models.CheckResults, weights config.QualityWeights) *models.QualityReport {
	score := 100.0

	var avgCompleteness float64
	if len(results.CompletenessPcts) > 0 {
		var sum float64
		for _, pct := range results.CompletenessPcts {
			sum += pct
		}
		avgCompleteness = sum / float64(len(results.CompletenessPcts))
	} else {
		avgCompleteness = 100
	}

	if avgCompleteness < completenessTarget {
		score -= math.Floor(completenessTarget - avgCompleteness)
	}

	score -= float64(len(results.DuplicatePKs)) * weights.DuplicatePK
	score -= float64(len(results.OrphanedFKs)) * weights.OrphanedFK
	score -= float64(len(results.NumericVarchars)) * weights.NumericVarchar
	score -= float64(len(results.MissingDescriptions)) * weights.MissingDescription

	// Collapsed completeness caps the score whatever else happened.
	switch {
	case avgCompleteness < completenessFloorSevere:
		score = math.Min(score, completenessCapSevere)
	case avgCompleteness < completenessFloorDegraded:
		score = math.Min(score, completenessCapDegraded)
	}

	if score < 0 {
		score = 0
	}

	return &models.QualityReport{
		OverallScore:        int(score),
		AvgCompletenessPct:  round2(avgCompleteness),
		Issues:              results.Issues(),
		DuplicatePKCount:    len(results.DuplicatePKs),
		OrphanedFKCount:     len(results.OrphanedFKs),
		NumericVarcharCount: len(results.NumericVarchars),
		MissingDescCount:    len(results.MissingDescriptions),
	}
}
