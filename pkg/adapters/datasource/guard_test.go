package datasource

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/apperrors"
)

func TestSafeIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		ident   string
		wantErr bool
	}{
		{"plain table", "FCT_ORDERS", false},
		{"lowercase", "customers", false},
		{"underscore prefix", "_staging", false},
		{"dollar sign", "TABLE$PART", false},
		{"digits", "events_2024", false},
		{"empty", "", true},
		{"embedded quote", `orders"; DROP TABLE t; --`, true},
		{"whitespace", "order items", true},
		{"semicolon", "t;", true},
		{"leading digit", "1table", true},
		{"comment marker", "t--", true},
		{"union probe", "x' UNION SELECT", true},
		{"too long", strings.Repeat("a", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeIdentifier(tt.ident)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrUnsafeIdentifier)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSafeTableIdentifiersStopsAtFirstBadPart(t *testing.T) {
	err := SafeTableIdentifiers("ANALYTICS", "PUBLIC", "ok_table")
	assert.NoError(t, err)

	err = SafeTableIdentifiers("ANALYTICS", `bad"schema`, "ok_table")
	assert.ErrorIs(t, err, apperrors.ErrUnsafeIdentifier)
}

func TestQueryErrorRetryability(t *testing.T) {
	base := errors.New("boom")

	te := TransientError("profile columns", "db.s.t", base)
	assert.True(t, te.IsRetryable())
	assert.ErrorIs(t, te, base)
	assert.Contains(t, te.Error(), "db.s.t")

	pe := PermanentError("orphan count", "", base)
	assert.False(t, pe.IsRetryable())
	assert.Contains(t, pe.Error(), "orphan count")
}
