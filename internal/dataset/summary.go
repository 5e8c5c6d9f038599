package dataset

import (
	"github.com/grovetools/speechprep/internal/pipeline"
)

// topReasonCount is the number of reasons listed in a run summary.
const topReasonCount = 10

// RunSummary describes a finished run for display.
type RunSummary struct {
	RunID                   string                  `json:"run_id"`
	TotalSamples            int                     `json:"total_samples"`
	ValidSamples            int                     `json:"valid_samples"`
	RejectedSamples         int                     `json:"rejected_samples"`
	ValidRatio              float64                 `json:"valid_ratio"`
	ProcessingTimeSeconds   float64                 `json:"processing_time_seconds"`
	ProcessingTimeFormatted string                  `json:"processing_time_formatted"`
	SamplesPerSecond        float64                 `json:"samples_per_second"`
	OutputFiles             Outputs                 `json:"output_files"`
	RejectionReasons        map[string]int          `json:"rejection_reasons"`
	TopReasons              []pipeline.ReasonCount  `json:"top_reasons"`
	ComponentStats          pipeline.ComponentStats `json:"component_stats"`
}

// Summarize builds the summary of batch and the files it was written to.
func Summarize(batch *pipeline.Batch, outputs Outputs) RunSummary {
	return RunSummary{
		RunID:                   batch.RunID,
		TotalSamples:            batch.Stats.TotalSamples,
		ValidSamples:            batch.Stats.ValidSamples,
		RejectedSamples:         batch.Stats.RejectedSamples,
		ValidRatio:              batch.Stats.ValidRatio,
		ProcessingTimeSeconds:   batch.Duration.Seconds(),
		ProcessingTimeFormatted: FormatDuration(batch.Duration),
		SamplesPerSecond:        batch.SamplesPerSecond(),
		OutputFiles:             outputs,
		RejectionReasons:        batch.Stats.RejectionReasons,
		TopReasons:              batch.Stats.TopReasons(topReasonCount),
		ComponentStats:          batch.Stats.ComponentStats,
	}
}
