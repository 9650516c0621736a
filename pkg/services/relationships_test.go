package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

func relTable(name string, colNames ...string) *models.Table {
	cols := make([]models.Column, len(colNames))
	for i, n := range colNames {
		cols[i] = models.Column{Name: n, DataType: "NUMBER", OrdinalPosition: i + 1}
	}
	return models.NewTable(testTableRef(name), models.TableKindBase, nil, "", cols)
}

func TestInferRelationshipsExactNameMatch(t *testing.T) {
	orders := relTable("FCT_ORDERS", "ORDER_ID", "CUSTOMER_ID", "AMOUNT")
	customers := relTable("DIM_CUSTOMER", "CUSTOMER_ID", "NAME")

	inferencer := NewRelationshipInferencer(zap.NewNop())
	rels := inferencer.Infer([]*models.Table{orders, customers}, nil)

	require.Len(t, rels, 1)
	rel := rels[0]
	assert.Equal(t, "CUSTOMER_ID", rel.FromColumn)
	assert.Equal(t, "DIM_CUSTOMER", rel.ToTable.Table)
	assert.Equal(t, "CUSTOMER_ID", rel.ToColumn)
	assert.Equal(t, 0.95, rel.Confidence)
	assert.Equal(t, models.CardinalityManyToOne, rel.Cardinality)
	assert.Equal(t, models.DetectionMethodNamePattern, rel.Method)
}

func TestInferRelationshipsResolutionLadder(t *testing.T) {
	tests := []struct {
		name           string
		targetCols     []string
		targetPK       string
		wantColumn     string
		wantConfidence float64
	}{
		{
			name:           "exact column name",
			targetCols:     []string{"PRODUCT_ID", "TITLE"},
			wantColumn:     "PRODUCT_ID",
			wantConfidence: 0.95,
		},
		{
			name:           "generic id column",
			targetCols:     []string{"ID", "TITLE"},
			wantColumn:     "ID",
			wantConfidence: 0.90,
		},
		{
			name:           "detected primary key fallback",
			targetCols:     []string{"PRODUCT_CODE", "TITLE"},
			targetPK:       "PRODUCT_CODE",
			wantColumn:     "PRODUCT_CODE",
			wantConfidence: 0.85,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sales := relTable("FCT_SALES", "SALE_ID", "PRODUCT_ID")
			products := relTable("DIM_PRODUCT", tt.targetCols...)

			profiles := map[string]*models.TableProfile{}
			if tt.targetPK != "" {
				profiles[products.Ref.FQN()] = &models.TableProfile{
					Ref: products.Ref,
					Columns: []*models.ColumnProfile{
						{ColumnName: tt.targetPK, IsLikelyPK: true},
					},
				}
			}

			inferencer := NewRelationshipInferencer(zap.NewNop())
			rels := inferencer.Infer([]*models.Table{sales, products}, profiles)

			require.Len(t, rels, 1)
			assert.Equal(t, tt.wantColumn, rels[0].ToColumn)
			assert.Equal(t, tt.wantConfidence, rels[0].Confidence)
		})
	}
}

func TestInferRelationshipsSingularizesEntity(t *testing.T) {
	shipments := relTable("FCT_SHIPMENTS", "SHIPMENT_ID", "ADDRESSES_ID")
	addresses := relTable("DIM_ADDRESS", "ID", "STREET")

	inferencer := NewRelationshipInferencer(zap.NewNop())
	rels := inferencer.Infer([]*models.Table{shipments, addresses}, nil)

	require.Len(t, rels, 1)
	assert.Equal(t, "ADDRESSES_ID", rels[0].FromColumn)
	assert.Equal(t, "DIM_ADDRESS", rels[0].ToTable.Table)
}

func TestInferRelationshipsSkipsSelfAndUnmatched(t *testing.T) {
	// CATEGORY_ID only matches its own table; no self edges.
	categories := relTable("DIM_CATEGORY", "CATEGORY_ID", "CATEGORY_NAME")
	orphanage := relTable("FCT_CLICKS", "CLICK_ID", "WIDGET_ID")

	inferencer := NewRelationshipInferencer(zap.NewNop())
	rels := inferencer.Infer([]*models.Table{categories, orphanage}, nil)

	assert.Empty(t, rels, "no table matches the widget entity and self edges are excluded")
}

func TestInferRelationshipsNoPKFallbackWithoutProfile(t *testing.T) {
	events := relTable("FCT_EVENTS", "EVENT_ID", "DEVICE_ID")
	devices := relTable("DIM_DEVICE", "SERIAL_NO", "MODEL")

	inferencer := NewRelationshipInferencer(zap.NewNop())
	rels := inferencer.Infer([]*models.Table{events, devices}, nil)

	assert.Empty(t, rels, "without a resolvable target column no edge is produced")
}

func TestInferRelationshipsDeduplicates(t *testing.T) {
	// Two source tables each referencing the customer dimension produce two
	// distinct edges; running twice over the same table never duplicates.
	orders := relTable("FCT_ORDERS", "ORDER_ID", "CUSTOMER_ID")
	returns := relTable("FCT_RETURNS", "RETURN_ID", "CUSTOMER_ID")
	customers := relTable("DIM_CUSTOMER", "CUSTOMER_ID")

	inferencer := NewRelationshipInferencer(zap.NewNop())
	rels := inferencer.Infer([]*models.Table{orders, returns, customers}, nil)

	require.Len(t, rels, 2)
	keys := map[string]bool{}
	for _, rel := range rels {
		assert.False(t, keys[rel.Key()])
		keys[rel.Key()] = true
	}
}
