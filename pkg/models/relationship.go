package models

import "fmt"

// Relationship cardinality tags. Name-pattern inference only ever produces
// many-to-one edges.
const (
	CardinalityManyToOne = "many_to_one"
)

// Detection methods for relationships.
const (
	DetectionMethodNamePattern = "name_pattern"
)

// Relationship is an inferred foreign-key edge between two tables in the same
// run. Confidence is in [0,1]; edges are deduplicated by the 4-tuple of
// endpoints.
type Relationship struct {
	FromTable   TableRef `json:"from_table"`
	FromColumn  string   `json:"from_column"`
	ToTable     TableRef `json:"to_table"`
	ToColumn    string   `json:"to_column"`
	Confidence  float64  `json:"confidence"`
	Cardinality string   `json:"cardinality"`
	Method      string   `json:"method"`
}

// NewRelationship validates the confidence invariant.
func NewRelationship(from ColumnRef, to ColumnRef, confidence float64, method string) (*Relationship, error) {
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("relationship %s.%s -> %s.%s: confidence %.2f out of range [0,1]",
			from.Table.FQN(), from.Column, to.Table.FQN(), to.Column, confidence)
	}
	return &Relationship{
		FromTable:   from.Table,
		FromColumn:  from.Column,
		ToTable:     to.Table,
		ToColumn:    to.Column,
		Confidence:  confidence,
		Cardinality: CardinalityManyToOne,
		Method:      method,
	}, nil
}

// Key returns the dedup key over the 4-tuple of endpoints.
func (r *Relationship) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", r.FromTable.FQN(), r.FromColumn, r.ToTable.FQN(), r.ToColumn)
}
