package services

import (
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// ProgressSink receives the ordered progress stream of a discovery run.
// The orchestrator is the only producer; implementations must not block
// for long or they stall the pipeline between steps.
type ProgressSink interface {
	Emit(event models.ProgressEvent)
}

// ChannelSink delivers events over a buffered channel to a single consumer.
type ChannelSink struct {
	events chan models.ProgressEvent
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{events: make(chan models.ProgressEvent, buffer)}
}

// Emit sends the event. A full buffer drops the event rather than blocking
// the pipeline; the final result is authoritative, events are advisory.
func (s *ChannelSink) Emit(event models.ProgressEvent) {
	select {
	case s.events <- event:
	default:
	}
}

// Events returns the receive side of the stream.
func (s *ChannelSink) Events() <-chan models.ProgressEvent {
	return s.events
}

// Close closes the stream. Call only after the run completes.
func (s *ChannelSink) Close() {
	close(s.events)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(models.ProgressEvent) {}

// stepLabels are the human-readable names carried on progress events.
var stepLabels = map[models.Step]string{
	models.StepMetadata:       "Fetching schema metadata",
	models.StepProfiling:      "Profiling tables",
	models.StepClassification: "Classifying tables",
	models.StepMaturity:       "Assessing schema maturity",
	models.StepQuality:        "Scoring data quality",
	models.StepArtifacts:      "Building artifacts",
}

// overallPct converts completed-step count plus the in-step fraction into a
// run percentage.
func overallPct(completedSteps int, fraction float64) float64 {
	total := float64(len(models.PipelineSteps))
	pct := (float64(completedSteps) + fraction) / total * 100
	if pct > 100 {
		return 100
	}
	return pct
}
