package snowflake

import (
	"errors"
	"testing"

	sf "github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

var ordersRef = models.TableRef{Database: "ANALYTICS", Schema: "PUBLIC", Table: "FCT_ORDERS"}

func int64Ptr(v int64) *int64 { return &v }

func TestFromClause(t *testing.T) {
	tests := []struct {
		name     string
		strategy models.ReadStrategy
		want     string
	}{
		{
			name:     "full read",
			strategy: models.ReadStrategy{Mode: models.ReadModeFull},
			want:     `"ANALYTICS"."PUBLIC"."FCT_ORDERS"`,
		},
		{
			name:     "bounded subquery",
			strategy: models.ReadStrategy{Mode: models.ReadModeSubquery, SampleSize: 1000000},
			want:     `(SELECT * FROM "ANALYTICS"."PUBLIC"."FCT_ORDERS" LIMIT 1000000)`,
		},
		{
			name: "block sample at 25 percent",
			strategy: models.ReadStrategy{
				Mode:       models.ReadModeBlockSample,
				SampleSize: 1_000_000,
				TotalRows:  int64Ptr(4_000_000),
			},
			want: `"ANALYTICS"."PUBLIC"."FCT_ORDERS" SAMPLE BLOCK (25)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fromClause(ordersRef, tt.strategy))
		})
	}
}

func TestSamplePercentCapsAtOneHundred(t *testing.T) {
	assert.Equal(t, float64(100), samplePercent(1_000_000, 500_000))
	assert.Equal(t, float64(100), samplePercent(1_000_000, 0))
	assert.InDelta(t, 10.0, samplePercent(100_000, 1_000_000), 0.0001)
}

func TestBuildProfileQuery(t *testing.T) {
	cols := []datasource.ColumnMetadata{
		{Name: "ORDER_ID", DataType: "NUMBER"},
		{Name: "STATUS", DataType: "VARCHAR"},
	}
	query := buildProfileQuery(`"ANALYTICS"."PUBLIC"."FCT_ORDERS"`, cols, 25)

	assert.Contains(t, query, "SELECT COUNT(*)")
	assert.Contains(t, query, `COUNT("ORDER_ID"), APPROX_COUNT_DISTINCT("ORDER_ID")`)
	assert.Contains(t, query, `COUNT("STATUS"), APPROX_COUNT_DISTINCT("STATUS")`)
	// Only the text column collects a value sample.
	assert.Contains(t, query, `ARRAY_SLICE(ARRAY_AGG(DISTINCT "STATUS"), 0, 25)`)
	assert.NotContains(t, query, `ARRAY_AGG(DISTINCT "ORDER_ID")`)
}

func TestBuildDistinctCombinationQuery(t *testing.T) {
	query := buildDistinctCombinationQuery(`"A"."B"."C"`, []string{"ORDER_ID", "LINE_NUMBER"})
	assert.Equal(t, `SELECT COUNT(*), COUNT(DISTINCT HASH("ORDER_ID", "LINE_NUMBER")) FROM "A"."B"."C"`, query)
}

func TestBuildOrphanQuery(t *testing.T) {
	from := models.ColumnRef{Table: ordersRef, Column: "CUSTOMER_ID"}
	to := models.ColumnRef{
		Table:  models.TableRef{Database: "ANALYTICS", Schema: "PUBLIC", Table: "DIM_CUSTOMER"},
		Column: "CUSTOMER_ID",
	}
	query := buildOrphanQuery(from, to, 1000)

	assert.Contains(t, query, `WHERE "CUSTOMER_ID" IS NOT NULL LIMIT 1000`)
	assert.Contains(t, query, `NOT EXISTS (SELECT 1 FROM "ANALYTICS"."PUBLIC"."DIM_CUSTOMER" AS parent`)
}

func TestIsTextType(t *testing.T) {
	assert.True(t, isTextType("VARCHAR"))
	assert.True(t, isTextType("TEXT"))
	assert.True(t, isTextType("character varying"))
	assert.False(t, isTextType("NUMBER"))
	assert.False(t, isTextType("TIMESTAMP_NTZ"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
	}{
		{"session expired code", &sf.SnowflakeError{Number: 390114, Message: "Authentication token has expired"}, true},
		{"network reset", errors.New("read tcp 10.0.0.1: connection reset by peer"), true},
		{"statement timeout", errors.New("query exceeded timeout"), true},
		{"missing object", errors.New("SQL compilation error: Object 'X' does not exist"), false},
		{"permission denied", errors.New("insufficient privileges to operate on table"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classify("profile columns", "db.s.t", tt.err)
			var qe *datasource.QueryError
			if assert.ErrorAs(t, classified, &qe) {
				assert.Equal(t, tt.wantTransient, qe.IsRetryable())
			}
		})
	}

	assert.NoError(t, classify("profile columns", "db.s.t", nil))
}
