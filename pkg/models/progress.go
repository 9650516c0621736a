package models

// Pipeline step keys, in execution order.
type Step string

const (
	StepMetadata       Step = "metadata"
	StepProfiling      Step = "profiling"
	StepClassification Step = "classification"
	StepMaturity       Step = "maturity"
	StepQuality        Step = "quality"
	StepArtifacts      Step = "artifacts"
)

// PipelineSteps is the fixed step order of a discovery run.
var PipelineSteps = []Step{
	StepMetadata,
	StepProfiling,
	StepClassification,
	StepMaturity,
	StepQuality,
	StepArtifacts,
}

// Step statuses carried on progress events.
type StepStatus string

const (
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusError     StepStatus = "error"
)

// ProgressEvent is one entry in the ordered progress stream. Current/Total
// count items within multi-item steps (table N of M); OverallPct is
// (completed_steps + current_step_fraction) / total_steps, as a percentage.
type ProgressEvent struct {
	Step       Step       `json:"step"`
	Label      string     `json:"label"`
	Status     StepStatus `json:"status"`
	Detail     string     `json:"detail,omitempty"`
	Current    int        `json:"current,omitempty"`
	Total      int        `json:"total,omitempty"`
	OverallPct float64    `json:"overall_pct"`
}
