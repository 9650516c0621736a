package services

import (
	"fmt"
	"strings"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// Maturity grading thresholds.
const (
	maturePKCoverage     = 80.0
	matureDescCoverage   = 50.0
	matureRelDensity     = 0.5
	developingPKCoverage = 50.0
	developingRelDensity = 0.25
)

// AssessMaturity grades how well-keyed, documented and connected the schema
// is. Pure function over the run's tables, profiles and relationships.
func AssessMaturity(tables []*models.Table, profiles []*models.TableProfile, relationships []*models.Relationship) *models.MaturityAssessment {
	assessment := &models.MaturityAssessment{Level: models.MaturityBasic}
	if len(tables) == 0 {
		return assessment
	}

	profileByFQN := make(map[string]*models.TableProfile, len(profiles))
	for _, p := range profiles {
		profileByFQN[p.Ref.FQN()] = p
	}

	keyed := 0
	described := 0
	for _, table := range tables {
		if strings.TrimSpace(table.Comment) != "" {
			described++
		}
		if p := profileByFQN[table.Ref.FQN()]; p != nil {
			if p.PKColumn() != "" || len(p.CompositeKey) > 0 {
				keyed++
			}
		}
	}

	n := float64(len(tables))
	assessment.PKCoveragePct = round2(float64(keyed) / n * 100)
	assessment.DescriptionCoveragePct = round2(float64(described) / n * 100)
	assessment.RelationshipDensity = round2(float64(len(relationships)) / n)

	switch {
	case assessment.PKCoveragePct >= maturePKCoverage &&
		assessment.DescriptionCoveragePct >= matureDescCoverage &&
		assessment.RelationshipDensity >= matureRelDensity:
		assessment.Level = models.MaturityMature
	case assessment.PKCoveragePct >= developingPKCoverage ||
		assessment.RelationshipDensity >= developingRelDensity:
		assessment.Level = models.MaturityDeveloping
	}

	if keyed < len(tables) {
		assessment.Notes = append(assessment.Notes,
			fmt.Sprintf("%d of %d tables have no detected key", len(tables)-keyed, len(tables)))
	}
	if described < len(tables) {
		assessment.Notes = append(assessment.Notes,
			fmt.Sprintf("%d of %d tables have no description", len(tables)-described, len(tables)))
	}
	if len(relationships) == 0 && len(tables) > 1 {
		assessment.Notes = append(assessment.Notes, "no foreign-key relationships inferred")
	}

	return assessment
}
