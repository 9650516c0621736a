package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// samplePercent converts a target sample size into a TABLESAMPLE SYSTEM
// percentage, capped at 100.
func samplePercent(sampleSize, totalRows int64) float64 {
	if totalRows <= 0 {
		return 100
	}
	pct := float64(sampleSize) / float64(totalRows) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// fromClause renders the FROM target for a profiling query. TABLESAMPLE is
// only valid on base tables, so views and unknown-count tables read through
// a bounded subquery.
func fromClause(ref models.TableRef, strategy models.ReadStrategy) string {
	name := qualifiedName(ref)
	switch strategy.Mode {
	case models.ReadModeSubquery:
		return fmt.Sprintf("(SELECT * FROM %s LIMIT %d) AS _sample", name, strategy.SampleSize)
	case models.ReadModeBlockSample:
		total := int64(0)
		if strategy.TotalRows != nil {
			total = *strategy.TotalRows
		}
		pct := samplePercent(strategy.SampleSize, total)
		return fmt.Sprintf("%s TABLESAMPLE SYSTEM (%s)", name, strconv.FormatFloat(pct, 'f', -1, 64))
	default:
		return name
	}
}

// isTextType reports whether a PostgreSQL data type holds free text.
func isTextType(dataType string) bool {
	lower := strings.ToLower(dataType)
	return strings.Contains(lower, "char") || strings.Contains(lower, "text")
}

// buildProfileQuery renders the single batched aggregate for one table.
// PostgreSQL has no APPROX_COUNT_DISTINCT without extensions, so an exact
// COUNT(DISTINCT ...) runs over the strategy-bounded row set instead.
func buildProfileQuery(from string, cols []datasource.ColumnMetadata, sampleCap int) string {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*)")
	for _, col := range cols {
		q := quoteIdent(col.Name)
		fmt.Fprintf(&b, ", COUNT(%s), COUNT(DISTINCT %s)", q, q)
		if isTextType(col.DataType) {
			fmt.Fprintf(&b, ", (ARRAY_AGG(DISTINCT %s::text))[1:%d]", q, sampleCap)
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(from)
	return b.String()
}

// buildColumnFallbackQuery renders the simplified per-column aggregate used
// when the batched query fails.
func buildColumnFallbackQuery(from, column string) string {
	q := quoteIdent(column)
	return fmt.Sprintf("SELECT COUNT(%s), COUNT(DISTINCT %s) FROM %s", q, q, from)
}

// buildDistinctCombinationQuery counts total rows and distinct row-value
// combinations of the candidate key columns in one pass.
func buildDistinctCombinationQuery(from string, cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT (%s)) FROM %s",
		strings.Join(quoted, ", "), from)
}

// buildOrphanQuery renders the bounded anti-join for the orphaned-FK check.
func buildOrphanQuery(from, to models.ColumnRef, limit int) string {
	fc := quoteIdent(from.Column)
	tc := quoteIdent(to.Column)
	return fmt.Sprintf(`SELECT COUNT(*) FROM (
	SELECT %s AS fk_val FROM %s WHERE %s IS NOT NULL LIMIT %d
) AS child
WHERE NOT EXISTS (SELECT 1 FROM %s AS parent WHERE parent.%s = child.fk_val)`,
		fc, qualifiedName(from.Table), fc, limit, qualifiedName(to.Table), tc)
}
