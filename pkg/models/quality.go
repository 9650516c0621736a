package models

// Issue severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Issue categories.
const (
	IssueDuplicatePK        = "duplicate_pk"
	IssueOrphanedFK         = "orphaned_fk"
	IssueNumericVarchar     = "numeric_varchar"
	IssueMissingDescription = "missing_description"
)

// QualityIssue is a single finding with the tables it affects.
type QualityIssue struct {
	Category string   `json:"category"`
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Tables   []string `json:"tables,omitempty"`
}

// CheckResults collects the raw inputs to the health score: per-table
// completeness percentages over identifier-like columns, and the categorized
// issue lists.
type CheckResults struct {
	CompletenessPcts    []float64      `json:"completeness_pcts"`
	DuplicatePKs        []QualityIssue `json:"duplicate_pks"`
	OrphanedFKs         []QualityIssue `json:"orphaned_fks"`
	NumericVarchars     []QualityIssue `json:"numeric_varchars"`
	MissingDescriptions []QualityIssue `json:"missing_descriptions"`
}

// Issues flattens the categorized lists into a single slice.
func (c *CheckResults) Issues() []QualityIssue {
	var out []QualityIssue
	out = append(out, c.DuplicatePKs...)
	out = append(out, c.OrphanedFKs...)
	out = append(out, c.NumericVarchars...)
	out = append(out, c.MissingDescriptions...)
	return out
}

// QualityReport is the scored summary for one run. OverallScore is always in
// [0,100]: it starts at 100 and only subtracts, floored at zero.
type QualityReport struct {
	OverallScore        int            `json:"overall_score"`
	AvgCompletenessPct  float64        `json:"avg_completeness_pct"`
	Issues              []QualityIssue `json:"issues"`
	DuplicatePKCount    int            `json:"duplicate_pk_count"`
	OrphanedFKCount     int            `json:"orphaned_fk_count"`
	NumericVarcharCount int            `json:"numeric_varchar_count"`
	MissingDescCount    int            `json:"missing_desc_count"`
}

// Maturity levels for the schema as a whole.
const (
	MaturityBasic      = "BASIC"
	MaturityDeveloping = "DEVELOPING"
	MaturityMature     = "MATURE"
)

// MaturityAssessment grades how well-keyed and well-documented the schema is.
type MaturityAssessment struct {
	Level                  string   `json:"level"`
	PKCoveragePct          float64  `json:"pk_coverage_pct"`
	DescriptionCoveragePct float64  `json:"description_coverage_pct"`
	RelationshipDensity    float64  `json:"relationship_density"`
	Notes                  []string `json:"notes,omitempty"`
}
