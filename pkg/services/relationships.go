package services

import (
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// Confidence ladder for name-pattern matches, in resolution priority order.
const (
	confidenceExactName = 0.95
	confidenceEntityID  = 0.95
	confidenceGenericID = 0.90
	confidencePKColumn  = 0.85
)

// RelationshipInferencer infers many-to-one foreign-key edges from column
// naming patterns. The heuristic deliberately over-infers: a spurious edge
// is easier to discard downstream than a missing one is to discover.
type RelationshipInferencer interface {
	// Infer scans every `*_id` column against every other table and
	// resolves a target column in strict priority order. Profiles supply
	// the detected primary keys for the lowest-confidence fallback.
	Infer(tables []*models.Table, profiles map[string]*models.TableProfile) []*models.Relationship
}

type relationshipInferencer struct {
	logger *zap.Logger
}

// NewRelationshipInferencer creates the name-pattern inferencer.
func NewRelationshipInferencer(logger *zap.Logger) RelationshipInferencer {
	return &relationshipInferencer{logger: logger.Named("relationships")}
}

func (r *relationshipInferencer) Infer(tables []*models.Table, profiles map[string]*models.TableProfile) []*models.Relationship {
	var relationships []*models.Relationship
	seen := make(map[string]bool)

	for _, from := range tables {
		for _, col := range from.Columns {
			lower := strings.ToLower(col.Name)
			if !strings.HasSuffix(lower, "_id") {
				continue
			}
			entity := strings.TrimSuffix(lower, "_id")
			if entity == "" {
				continue
			}

			for _, to := range tables {
				if to.Ref == from.Ref {
					continue
				}
				if !tableNameContainsEntity(to.Ref.ShortName(), entity) {
					continue
				}

				targetCol, confidence := resolveTargetColumn(col.Name, entity, to, profiles[to.Ref.FQN()])
				if targetCol == "" {
					continue
				}

				rel, err := models.NewRelationship(
					models.ColumnRef{Table: from.Ref, Column: col.Name},
					models.ColumnRef{Table: to.Ref, Column: targetCol},
					confidence,
					models.DetectionMethodNamePattern,
				)
				if err != nil {
					r.logger.Warn("dropping invalid relationship", zap.String("error", err.Error()))
					continue
				}
				if seen[rel.Key()] {
					continue
				}
				seen[rel.Key()] = true
				relationships = append(relationships, rel)
			}
		}
	}

	return relationships
}

// tableNameContainsEntity matches the entity name (or its singular form,
// so `addresses_id` still finds `dim_address`) as a substring of the
// target table's short name.
func tableNameContainsEntity(tableName, entity string) bool {
	if strings.Contains(tableName, entity) {
		return true
	}
	singular := inflection.Singular(entity)
	return singular != entity && strings.Contains(tableName, singular)
}

// resolveTargetColumn applies the strict resolution priority: exact
// source-column name, then `<entity>_id`, then a literal `id`, then the
// target's detected primary key.
func resolveTargetColumn(sourceCol, entity string, target *models.Table, profile *models.TableProfile) (string, float64) {
	sourceLower := strings.ToLower(sourceCol)

	var exact, entityID, genericID string
	for _, col := range target.Columns {
		switch strings.ToLower(col.Name) {
		case sourceLower:
			if exact == "" {
				exact = col.Name
			}
		case entity + "_id":
			if entityID == "" {
				entityID = col.Name
			}
		case "id":
			if genericID == "" {
				genericID = col.Name
			}
		}
	}

	switch {
	case exact != "":
		return exact, confidenceExactName
	case entityID != "":
		return entityID, confidenceEntityID
	case genericID != "":
		return genericID, confidenceGenericID
	}

	if profile != nil {
		if pk := profile.PKColumn(); pk != "" {
			return pk, confidencePKColumn
		}
	}
	return "", 0
}
