package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

func TestSamplingStrategistDecisionTable(t *testing.T) {
	cfg := config.DefaultDiscovery()
	cfg.SampleSize = 1_000_000
	strategist := NewSamplingStrategist(cfg)

	count := func(v int64) *int64 { return &v }

	tests := []struct {
		name        string
		meta        datasource.TableMetadata
		wantMode    models.ReadMode
		wantSampled bool
	}{
		{
			name:        "view always reads through bounded subquery",
			meta:        datasource.TableMetadata{Kind: models.TableKindView, RowCount: nil},
			wantMode:    models.ReadModeSubquery,
			wantSampled: true,
		},
		{
			name:        "unknown row count reads through bounded subquery",
			meta:        datasource.TableMetadata{Kind: models.TableKindBase, RowCount: nil},
			wantMode:    models.ReadModeSubquery,
			wantSampled: true,
		},
		{
			name:        "empty table is skipped",
			meta:        datasource.TableMetadata{Kind: models.TableKindBase, RowCount: count(0)},
			wantMode:    models.ReadModeSkip,
			wantSampled: false,
		},
		{
			name:        "small table reads in full",
			meta:        datasource.TableMetadata{Kind: models.TableKindBase, RowCount: count(500_000)},
			wantMode:    models.ReadModeFull,
			wantSampled: false,
		},
		{
			name:        "boundary row count reads in full",
			meta:        datasource.TableMetadata{Kind: models.TableKindBase, RowCount: count(1_000_000)},
			wantMode:    models.ReadModeFull,
			wantSampled: false,
		},
		{
			name:        "large table block samples",
			meta:        datasource.TableMetadata{Kind: models.TableKindBase, RowCount: count(1_000_001)},
			wantMode:    models.ReadModeBlockSample,
			wantSampled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strategist.Choose(tt.meta)
			assert.Equal(t, tt.wantMode, got.Mode)
			assert.Equal(t, tt.wantSampled, got.Sampled)
		})
	}
}

func TestSamplingStrategistViewWithRowCountStillSubqueries(t *testing.T) {
	strategist := NewSamplingStrategist(config.DefaultDiscovery())

	// A backend reporting a count for a view must not flip it into the
	// block-sampling path.
	rows := int64(5_000_000)
	got := strategist.Choose(datasource.TableMetadata{Kind: models.TableKindView, RowCount: &rows})
	assert.Equal(t, models.ReadModeSubquery, got.Mode)
}

func TestSamplingStrategistKeepsCatalogEstimate(t *testing.T) {
	strategist := NewSamplingStrategist(config.DefaultDiscovery())

	rows := int64(4_000_000)
	got := strategist.Choose(datasource.TableMetadata{Kind: models.TableKindBase, RowCount: &rows})
	if assert.NotNil(t, got.TotalRows) {
		// Total rows stays the catalog estimate, not the sample size.
		assert.Equal(t, rows, *got.TotalRows)
	}
}

func TestOverallPct(t *testing.T) {
	assert.InDelta(t, 0.0, overallPct(0, 0), 0.001)
	assert.InDelta(t, 100.0/6, overallPct(1, 0), 0.001)
	assert.InDelta(t, 25.0, overallPct(1, 0.5), 0.001)
	assert.InDelta(t, 100.0, overallPct(6, 0), 0.001)
	assert.InDelta(t, 100.0, overallPct(6, 0.5), 0.001)
}
