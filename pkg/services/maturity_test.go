package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

func maturityFixture(tableCount, keyed, described, relCount int) ([]*models.Table, []*models.TableProfile, []*models.Relationship) {
	var tables []*models.Table
	var profiles []*models.TableProfile
	for i := 0; i < tableCount; i++ {
		name := string(rune('A'+i)) + "_TBL"
		table := relTable(name, "ID", "NAME")
		if i < described {
			table.Comment = "documented"
		}
		tables = append(tables, table)

		profile := keyProfile(name, keyCol("ID", "NUMBER", 0))
		if i < keyed {
			profile.Columns[0].IsLikelyPK = true
		}
		profiles = append(profiles, profile)
	}

	var rels []*models.Relationship
	for i := 0; i < relCount; i++ {
		rel, _ := models.NewRelationship(
			models.ColumnRef{Table: tables[i%tableCount].Ref, Column: "ID"},
			models.ColumnRef{Table: tables[(i+1)%tableCount].Ref, Column: "ID"},
			0.9, models.DetectionMethodNamePattern)
		rels = append(rels, rel)
	}
	return tables, profiles, rels
}

func TestAssessMaturityLevels(t *testing.T) {
	tests := []struct {
		name      string
		tables    int
		keyed     int
		described int
		rels      int
		want      string
	}{
		{"well-keyed documented connected schema", 5, 4, 3, 3, models.MaturityMature},
		{"keyed but undocumented", 4, 4, 0, 2, models.MaturityDeveloping},
		{"connected but poorly keyed", 4, 1, 0, 1, models.MaturityDeveloping},
		{"unkeyed undocumented disconnected", 4, 1, 0, 0, models.MaturityBasic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, profiles, rels := maturityFixture(tt.tables, tt.keyed, tt.described, tt.rels)
			got := AssessMaturity(tables, profiles, rels)
			assert.Equal(t, tt.want, got.Level)
		})
	}
}

func TestAssessMaturityCoverageMath(t *testing.T) {
	tables, profiles, rels := maturityFixture(4, 3, 1, 2)
	got := AssessMaturity(tables, profiles, rels)

	assert.Equal(t, 75.0, got.PKCoveragePct)
	assert.Equal(t, 25.0, got.DescriptionCoveragePct)
	assert.Equal(t, 0.5, got.RelationshipDensity)
}

func TestAssessMaturityCountsCompositeKeys(t *testing.T) {
	table := relTable("EVENT_LOG", "USER_ID", "EVENT_TIME")
	table.Comment = "documented"
	profile := keyProfile("EVENT_LOG", keyCol("USER_ID", "NUMBER", 0), keyCol("EVENT_TIME", "TIMESTAMP_NTZ", 0))
	profile.CompositeKey = []string{"USER_ID", "EVENT_TIME"}

	got := AssessMaturity([]*models.Table{table}, []*models.TableProfile{profile}, nil)
	assert.Equal(t, 100.0, got.PKCoveragePct)
}

func TestAssessMaturityEmptySchema(t *testing.T) {
	got := AssessMaturity(nil, nil, nil)
	assert.Equal(t, models.MaturityBasic, got.Level)
	assert.Zero(t, got.PKCoveragePct)
	assert.Empty(t, got.Notes)
}

func TestAssessMaturityNotes(t *testing.T) {
	tables, profiles, _ := maturityFixture(3, 1, 1, 0)
	got := AssessMaturity(tables, profiles, nil)

	require.Len(t, got.Notes, 3)
	assert.Contains(t, got.Notes[0], "2 of 3 tables have no detected key")
	assert.Contains(t, got.Notes[1], "2 of 3 tables have no description")
	assert.Contains(t, got.Notes[2], "no foreign-key relationships inferred")
}
