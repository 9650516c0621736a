package services

import (
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// SamplingStrategist decides, per table, how its profiling query reads rows.
type SamplingStrategist interface {
	// Choose maps a table's kind and row-count estimate to a read strategy.
	Choose(meta datasource.TableMetadata) models.ReadStrategy
}

type samplingStrategist struct {
	sampleSize int64
}

// NewSamplingStrategist creates a strategist with the configured sample cap.
func NewSamplingStrategist(cfg config.DiscoveryConfig) SamplingStrategist {
	return &samplingStrategist{sampleSize: cfg.SampleSize}
}

// Choose applies the decision table in order. Views are checked before the
// row-count rules because a view must never be assumed to support block
// sampling, whatever its reported count.
func (s *samplingStrategist) Choose(meta datasource.TableMetadata) models.ReadStrategy {
	if meta.Kind == models.TableKindView || meta.RowCount == nil {
		return models.ReadStrategy{
			Mode:       models.ReadModeSubquery,
			SampleSize: s.sampleSize,
			Sampled:    true,
		}
	}

	rows := *meta.RowCount
	switch {
	case rows == 0:
		return models.ReadStrategy{Mode: models.ReadModeSkip, TotalRows: meta.RowCount}
	case rows <= s.sampleSize:
		return models.ReadStrategy{Mode: models.ReadModeFull, TotalRows: meta.RowCount}
	default:
		return models.ReadStrategy{
			Mode:       models.ReadModeBlockSample,
			SampleSize: s.sampleSize,
			TotalRows:  meta.RowCount,
			Sampled:    true,
		}
	}
}
