package models

import (
	"fmt"
	"strings"
)

// TableKind distinguishes base tables from views.
type TableKind string

const (
	TableKindBase TableKind = "table"
	TableKindView TableKind = "view"
)

// Classification labels for tables.
const (
	ClassificationFact      = "FACT"
	ClassificationDimension = "DIMENSION"
	ClassificationUnknown   = "UNKNOWN"
)

// TableRef identifies a table by its fully-qualified name (database.schema.table).
type TableRef struct {
	Database string `json:"database"`
	Schema   string `json:"schema"`
	Table    string `json:"table"`
}

// FQN returns the database.schema.table triple as a single string.
func (r TableRef) FQN() string {
	return fmt.Sprintf("%s.%s.%s", r.Database, r.Schema, r.Table)
}

// ShortName returns the bare table name, lowercased.
func (r TableRef) ShortName() string {
	return strings.ToLower(r.Table)
}

// ColumnRef identifies a single column within a table.
type ColumnRef struct {
	Table  TableRef `json:"table"`
	Column string   `json:"column"`
}

// Column is a declared column as reported by the datasource catalog.
type Column struct {
	Name            string `json:"name"`
	DataType        string `json:"data_type"`
	IsNullable      bool   `json:"is_nullable"`
	OrdinalPosition int    `json:"ordinal_position"`
}

// Table holds catalog metadata for one table or view, plus the classification
// assigned during a discovery run. RowCount is nil when the catalog does not
// report an estimate (always the case for views).
type Table struct {
	Ref            TableRef  `json:"ref"`
	Kind           TableKind `json:"kind"`
	RowCount       *int64    `json:"row_count,omitempty"`
	Comment        string    `json:"comment,omitempty"`
	Columns        []Column  `json:"columns"`
	Classification string    `json:"classification"`
}

// NewTable constructs a Table with an UNKNOWN classification.
func NewTable(ref TableRef, kind TableKind, rowCount *int64, comment string, columns []Column) *Table {
	return &Table{
		Ref:            ref,
		Kind:           kind,
		RowCount:       rowCount,
		Comment:        comment,
		Columns:        columns,
		Classification: ClassificationUnknown,
	}
}

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
