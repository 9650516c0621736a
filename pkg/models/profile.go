package models

import "fmt"

// ColumnProfile holds the per-column statistics computed in one run. Profiles
// are recomputed each run and never mutated after creation, with one
// exception: the composite-key fallback may flip IsLikelyPK on the columns of
// a validated combination before the run result is assembled.
type ColumnProfile struct {
	Table          TableRef `json:"table"`
	ColumnName     string   `json:"column_name"`
	DataType       string   `json:"data_type"`
	NullPct        float64  `json:"null_pct"`
	ApproxDistinct int64    `json:"approx_distinct"`
	UniquenessPct  float64  `json:"uniqueness_pct"`
	IsLikelyPK     bool     `json:"is_likely_pk"`
	Sampled        bool     `json:"sampled"`
	SampleValues   []string `json:"sample_values,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// NewColumnProfile validates the percentage invariants before returning a profile.
func NewColumnProfile(table TableRef, columnName, dataType string, nullPct float64, approxDistinct int64, uniquenessPct float64, sampled bool) (*ColumnProfile, error) {
	if nullPct < 0 || nullPct > 100 {
		return nil, fmt.Errorf("column %s.%s: null_pct %.2f out of range [0,100]", table.FQN(), columnName, nullPct)
	}
	if uniquenessPct < 0 || uniquenessPct > 100 {
		return nil, fmt.Errorf("column %s.%s: uniqueness_pct %.2f out of range [0,100]", table.FQN(), columnName, uniquenessPct)
	}
	if approxDistinct < 0 {
		return nil, fmt.Errorf("column %s.%s: negative distinct count %d", table.FQN(), columnName, approxDistinct)
	}
	return &ColumnProfile{
		Table:          table,
		ColumnName:     columnName,
		DataType:       dataType,
		NullPct:        nullPct,
		ApproxDistinct: approxDistinct,
		UniquenessPct:  uniquenessPct,
		Sampled:        sampled,
	}, nil
}

// ErrorColumnProfile records a column whose aggregates could not be computed.
// The table's remaining columns are unaffected.
func ErrorColumnProfile(table TableRef, columnName, dataType string, errMsg string) *ColumnProfile {
	return &ColumnProfile{
		Table:      table,
		ColumnName: columnName,
		DataType:   dataType,
		Error:      errMsg,
	}
}

// TableProfile bundles one table's per-column profiles with the read decision
// that produced them. Error is set when the whole table degraded (e.g. a
// permanent query failure); the run continues with the other tables.
type TableProfile struct {
	Ref            TableRef         `json:"ref"`
	Strategy       ReadStrategy     `json:"strategy"`
	TotalRows      *int64           `json:"total_rows,omitempty"`
	SampleRowCount int64            `json:"sample_row_count"`
	Columns        []*ColumnProfile `json:"columns"`
	CompositeKey   []string         `json:"composite_key,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// Column returns the profile for the named column, or nil.
func (p *TableProfile) Column(name string) *ColumnProfile {
	for _, c := range p.Columns {
		if c.ColumnName == name {
			return c
		}
	}
	return nil
}

// PKColumn returns the first PK-likely column name, or "".
func (p *TableProfile) PKColumn() string {
	for _, c := range p.Columns {
		if c.IsLikelyPK {
			return c.ColumnName
		}
	}
	return ""
}
