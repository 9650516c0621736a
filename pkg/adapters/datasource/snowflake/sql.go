package snowflake

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// samplePercent converts a target sample size into a SAMPLE BLOCK percentage,
// capped at 100.
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

// fromClause renders the FROM target a profiling query reads from, applying
// the read strategy. Block sampling is only ever rendered for base tables
// with a known row count; views and unknown-count tables go through a
// bounded subquery instead.
func fromClause(ref models.TableRef, strategy models.ReadStrategy) string {
	name := qualifiedName(ref)
	switch strategy.Mode {
	case models.ReadModeSubquery:
		return fmt.Sprintf("(SELECT * FROM %s LIMIT %d)", name, strategy.SampleSize)
	case models.ReadModeBlockSample:
		total := int64(0)
		if strategy.TotalRows != nil {
			total = *strategy.TotalRows
		}
		pct := samplePercent(strategy.SampleSize, total)
		return fmt.Sprintf("%s SAMPLE BLOCK (%s)", name, strconv.FormatFloat(pct, 'f', -1, 64))
	default:
		return name
	}
}

// isTextType reports whether a Snowflake data type holds free text, which
// qualifies the column for distinct-value sample collection.
func isTextType(dataType string) bool {
	upper := strings.ToUpper(dataType)
	return strings.Contains(upper, "CHAR") ||
		strings.Contains(upper, "TEXT") ||
		strings.Contains(upper, "STRING")
}

// buildProfileQuery renders the single batched aggregate for one table:
// one COUNT(*) plus per-column COUNT, APPROX_COUNT_DISTINCT, and, for text
// columns, a bounded distinct-value sample.
func buildProfileQuery(from string, cols []datasource.ColumnMetadata, sampleCap int) string {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*)")
	for _, col := range cols {
		q := quoteIdent(col.Name)
		fmt.Fprintf(&b, ", COUNT(%s), APPROX_COUNT_DISTINCT(%s)", q, q)
		if isTextType(col.DataType) {
			fmt.Fprintf(&b, ", TO_JSON(ARRAY_SLICE(ARRAY_AGG(DISTINCT %s), 0, %d))", q, sampleCap)
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(from)
	return b.String()
}

// buildColumnFallbackQuery renders the simplified per-column aggregate used
// when the batched query fails: counts only, no value collection.
func buildColumnFallbackQuery(from, column string) string {
	q := quoteIdent(column)
	return fmt.Sprintf("SELECT COUNT(%s), APPROX_COUNT_DISTINCT(%s) FROM %s", q, q, from)
}

// buildDistinctCombinationQuery counts total rows and distinct combinations
// of the candidate key columns in one pass.
func buildDistinctCombinationQuery(from string, cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT HASH(%s)) FROM %s",
		strings.Join(quoted, ", "), from)
}

// buildOrphanQuery renders the bounded anti-join used by the orphaned-FK
// check: at most limit child values are tested for a parent match.
func buildOrphanQuery(from, to models.ColumnRef, limit int) string {
	fc := quoteIdent(from.Column)
	tc := quoteIdent(to.Column)
	return fmt.Sprintf(`SELECT COUNT(*) FROM (
	SELECT %s AS fk_val FROM %s WHERE %s IS NOT NULL LIMIT %d
) AS child
WHERE NOT EXISTS (SELECT 1 FROM %s AS parent WHERE parent.%s = child.fk_val)`,
		fc, qualifiedName(from.Table), fc, limit, qualifiedName(to.Table), tc)
}
