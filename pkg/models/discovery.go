package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DiscoveryRequest identifies one schema-discovery run. Cache identity is the
// (datasource, database, schema) triple; RunID changes per invocation and is
// deliberately excluded from the cache key.
type DiscoveryRequest struct {
	RunID        uuid.UUID `json:"run_id"`
	DatasourceID uuid.UUID `json:"datasource_id"`
	Database     string    `json:"database"`
	Schema       string    `json:"schema"`
	IncludeViews bool      `json:"include_views"`
}

// NewDiscoveryRequest assigns a fresh run ID.
func NewDiscoveryRequest(datasourceID uuid.UUID, database, schema string, includeViews bool) DiscoveryRequest {
	return DiscoveryRequest{
		RunID:        uuid.New(),
		DatasourceID: datasourceID,
		Database:     database,
		Schema:       schema,
		IncludeViews: includeViews,
	}
}

// CacheKey returns the request identity used for pipeline-result caching.
func (r DiscoveryRequest) CacheKey() string {
	return fmt.Sprintf("discovery:%s:%s:%s:%v",
		r.DatasourceID, strings.ToLower(r.Database), strings.ToLower(r.Schema), r.IncludeViews)
}

// DiscoveryResult is the full output of one pipeline run. A run always
// returns a result: on failure Error is set and the completed steps carry
// whatever was computed before the failure.
type DiscoveryResult struct {
	RunID          uuid.UUID             `json:"run_id"`
	Request        DiscoveryRequest      `json:"request"`
	Tables         []*Table              `json:"tables"`
	Profiles       []*TableProfile       `json:"profiles"`
	Relationships  []*Relationship       `json:"relationships"`
	Maturity       *MaturityAssessment   `json:"maturity,omitempty"`
	Quality        *QualityReport        `json:"quality,omitempty"`
	SemanticModel  string                `json:"semantic_model,omitempty"`
	Graph          *GraphRecords         `json:"graph,omitempty"`
	CompletedSteps []Step                `json:"completed_steps"`
	StartedAt      time.Time             `json:"started_at"`
	CompletedAt    *time.Time            `json:"completed_at,omitempty"`
	FromCache      bool                  `json:"from_cache,omitempty"`
	Error          string                `json:"_error,omitempty"`
}

// ProfileFor returns the table profile matching ref, or nil.
func (r *DiscoveryResult) ProfileFor(ref TableRef) *TableProfile {
	for _, p := range r.Profiles {
		if p.Ref == ref {
			return p
		}
	}
	return nil
}

// PipelineCacheEntry wraps a serialized run result with its creation time.
// The freshness window decides replay; the absolute expiry is enforced by the
// cache backend's TTL.
type PipelineCacheEntry struct {
	Result    *DiscoveryResult `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}
