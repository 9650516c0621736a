package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

func newTestKeyDetector(exec datasource.QueryExecutor) KeyDetector {
	return NewKeyDetector(exec, config.DefaultDiscovery(), testRetryConfig(), zap.NewNop())
}

func keyCol(name, dataType string, nullPct float64) *models.ColumnProfile {
	return &models.ColumnProfile{ColumnName: name, DataType: dataType, NullPct: nullPct}
}

func keyProfile(table string, cols ...*models.ColumnProfile) *models.TableProfile {
	return &models.TableProfile{
		Ref:      testTableRef(table),
		Strategy: models.ReadStrategy{Mode: models.ReadModeFull},
		Columns:  cols,
	}
}

func TestDetectCompositeKeyFirstCandidateWins(t *testing.T) {
	fake := newFakeConnector()
	profile := keyProfile("EVENT_LOG",
		keyCol("USER_ID", "NUMBER", 0),
		keyCol("SESSION_KEY", "VARCHAR", 0),
		keyCol("EVENT_TIME", "TIMESTAMP_NTZ", 0),
		keyCol("PAYLOAD", "VARCHAR", 3.5),
	)
	// Identifiers plus the first timestamp validates on the first try.
	fake.combos[comboKey(profile.Ref, []string{"USER_ID", "SESSION_KEY", "EVENT_TIME"})] = comboCount{distinct: 990, total: 1000}
	fake.combos[comboKey(profile.Ref, []string{"USER_ID", "SESSION_KEY"})] = comboCount{distinct: 999, total: 1000}

	detector := newTestKeyDetector(fake)
	require.NoError(t, detector.DetectCompositeKey(context.Background(), profile))

	assert.Equal(t, []string{"USER_ID", "SESSION_KEY", "EVENT_TIME"}, profile.CompositeKey)
	assert.Equal(t, 1, fake.comboCalls, "the first validated candidate stops the search")
	assert.True(t, profile.Column("USER_ID").IsLikelyPK)
	assert.True(t, profile.Column("SESSION_KEY").IsLikelyPK)
	assert.True(t, profile.Column("EVENT_TIME").IsLikelyPK)
	assert.False(t, profile.Column("PAYLOAD").IsLikelyPK)
}

func TestDetectCompositeKeyFallsThroughToIdentifiersAlone(t *testing.T) {
	fake := newFakeConnector()
	profile := keyProfile("ASSIGNMENTS",
		keyCol("USER_ID", "NUMBER", 0),
		keyCol("ROLE_ID", "NUMBER", 0),
		keyCol("GRANTED_AT", "TIMESTAMP_NTZ", 0),
	)
	fake.combos[comboKey(profile.Ref, []string{"USER_ID", "ROLE_ID", "GRANTED_AT"})] = comboCount{distinct: 500, total: 1000}
	fake.combos[comboKey(profile.Ref, []string{"USER_ID", "ROLE_ID"})] = comboCount{distinct: 995, total: 1000}

	detector := newTestKeyDetector(fake)
	require.NoError(t, detector.DetectCompositeKey(context.Background(), profile))

	assert.Equal(t, []string{"USER_ID", "ROLE_ID"}, profile.CompositeKey)
	assert.Equal(t, 2, fake.comboCalls)
}

func TestDetectCompositeKeySkips(t *testing.T) {
	pkProfile := keyProfile("KEYED", keyCol("ID", "NUMBER", 0))
	pkProfile.Columns[0].IsLikelyPK = true

	erroredProfile := keyProfile("BROKEN", keyCol("A_ID", "NUMBER", 0), keyCol("B_ID", "NUMBER", 0))
	erroredProfile.Error = "profiling failed"

	skippedProfile := keyProfile("EMPTY", keyCol("A_ID", "NUMBER", 0), keyCol("B_ID", "NUMBER", 0))
	skippedProfile.Strategy = models.ReadStrategy{Mode: models.ReadModeSkip}

	tests := []struct {
		name    string
		profile *models.TableProfile
	}{
		{"single-column key already detected", pkProfile},
		{"profile degraded to error", erroredProfile},
		{"table skipped as empty", skippedProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeConnector()
			detector := newTestKeyDetector(fake)
			require.NoError(t, detector.DetectCompositeKey(context.Background(), tt.profile))
			assert.Equal(t, 0, fake.comboCalls)
			assert.Empty(t, tt.profile.CompositeKey)
		})
	}
}

func TestDetectCompositeKeyCandidateRules(t *testing.T) {
	tests := []struct {
		name      string
		cols      []*models.ColumnProfile
		wantCalls int
	}{
		{
			name: "single identifier without timestamp yields no candidate",
			cols: []*models.ColumnProfile{
				keyCol("TENANT_ID", "NUMBER", 0),
				keyCol("NAME", "VARCHAR", 0),
			},
			wantCalls: 0,
		},
		{
			name: "nullable identifiers are not candidates",
			cols: []*models.ColumnProfile{
				keyCol("USER_ID", "NUMBER", 0.5),
				keyCol("ROLE_ID", "NUMBER", 1.2),
			},
			wantCalls: 0,
		},
		{
			name: "combinations above five columns are not validated",
			cols: []*models.ColumnProfile{
				keyCol("A_ID", "NUMBER", 0),
				keyCol("B_ID", "NUMBER", 0),
				keyCol("C_ID", "NUMBER", 0),
				keyCol("D_ID", "NUMBER", 0),
				keyCol("E_ID", "NUMBER", 0),
				keyCol("F_ID", "NUMBER", 0),
			},
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeConnector()
			profile := keyProfile("CANDIDATES", tt.cols...)
			detector := newTestKeyDetector(fake)
			require.NoError(t, detector.DetectCompositeKey(context.Background(), profile))
			assert.Equal(t, tt.wantCalls, fake.comboCalls)
			assert.Empty(t, profile.CompositeKey)
		})
	}
}

func TestDetectCompositeKeyValidationFailureSkipsCandidate(t *testing.T) {
	fake := newFakeConnector()
	profile := keyProfile("RESILIENT",
		keyCol("ORDER_ID", "NUMBER", 0),
		keyCol("LINE_ID", "NUMBER", 0),
		keyCol("CREATED_AT", "TIMESTAMP_NTZ", 0),
	)
	fake.comboErrs[comboKey(profile.Ref, []string{"ORDER_ID", "LINE_ID", "CREATED_AT"})] =
		datasource.PermanentError("count distinct combination", profile.Ref.FQN(), errors.New("statement too complex"))
	fake.combos[comboKey(profile.Ref, []string{"ORDER_ID", "LINE_ID"})] = comboCount{distinct: 1000, total: 1000}

	detector := newTestKeyDetector(fake)
	require.NoError(t, detector.DetectCompositeKey(context.Background(), profile))

	// The failed candidate is skipped, never the table.
	assert.Equal(t, []string{"ORDER_ID", "LINE_ID"}, profile.CompositeKey)
	assert.Equal(t, 2, fake.comboCalls)
}

func TestDetectCompositeKeyBelowThresholdLeavesProfileUntouched(t *testing.T) {
	fake := newFakeConnector()
	profile := keyProfile("DUPLICATED",
		keyCol("BATCH_ID", "NUMBER", 0),
		keyCol("ITEM_ID", "NUMBER", 0),
	)
	fake.combos[comboKey(profile.Ref, []string{"BATCH_ID", "ITEM_ID"})] = comboCount{distinct: 900, total: 1000}

	detector := newTestKeyDetector(fake)
	require.NoError(t, detector.DetectCompositeKey(context.Background(), profile))

	assert.Empty(t, profile.CompositeKey)
	assert.False(t, profile.Column("BATCH_ID").IsLikelyPK)
	assert.False(t, profile.Column("ITEM_ID").IsLikelyPK)
}
