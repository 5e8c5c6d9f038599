package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/grovetools/speechprep/config"
	"github.com/grovetools/speechprep/internal/pipeline"
)

// Columns appended to the output tables.
const (
	ColumnNormalized       = "transcription_normalized"
	ColumnQualityScore     = "text_quality_score"
	ColumnReason           = "reason"
	ColumnOriginalText     = "original_transcription"
	ColumnProcessingTime   = "processing_time"
	reasonSeparator        = "; "
	defaultStatsFilename   = "processing_stats.json"
	statsTimestampLayout   = "2006-01-02 15:04:05"
	processingTimeDecimals = 6
)

// Outputs lists the files a run wrote.
type Outputs struct {
	TrainReady string `json:"train_ready"`
	Rejected   string `json:"rejected"`
	Stats      string `json:"stats,omitempty"`
}

// Writer persists a finished batch under Dir.
type Writer struct {
	Dir    string
	Config config.Config
}

// Write writes the train-ready and rejected tables, and the stats file when
// enabled. Both tables are written even when empty.
func (w *Writer) Write(columns []string, batch *pipeline.Batch) (Outputs, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return Outputs{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if len(columns) == 0 {
		columns = RequiredColumns
	}
	valid, rejected := batch.Split()

	out := Outputs{
		TrainReady: filepath.Join(w.Dir, w.Config.Output.TrainReadyFilename),
		Rejected:   filepath.Join(w.Dir, w.Config.Output.RejectedFilename),
	}

	trainHeader := append(append([]string{}, columns...), ColumnNormalized, ColumnQualityScore)
	err := writeCSV(out.TrainReady, trainHeader, valid, func(i int) []string {
		res := batch.Results[i]
		return append(passthrough(columns, batch.Records[i]),
			res.NormalizedText,
			strconv.FormatFloat(res.QualityScore(), 'f', -1, 64),
		)
	})
	if err != nil {
		return Outputs{}, err
	}

	rejectedHeader := append(append([]string{}, columns...), ColumnReason, ColumnOriginalText, ColumnProcessingTime)
	err = writeCSV(out.Rejected, rejectedHeader, rejected, func(i int) []string {
		res := batch.Results[i]
		return append(passthrough(columns, batch.Records[i]),
			strings.Join(res.Reasons, reasonSeparator),
			res.OriginalText,
			strconv.FormatFloat(res.ProcessingTime.Seconds(), 'f', processingTimeDecimals, 64),
		)
	})
	if err != nil {
		return Outputs{}, err
	}

	if w.Config.Output.IncludeStats {
		name := w.Config.Output.StatsFilename
		if name == "" {
			name = defaultStatsFilename
		}
		out.Stats = filepath.Join(w.Dir, name)
		report := NewStatsReport(w.Config, batch, ReasonAnalysis(batch, rejected))
		if err := writeJSON(out.Stats, report); err != nil {
			return Outputs{}, err
		}
	}
	return out, nil
}

func passthrough(columns []string, rec pipeline.Record) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = rec.Values[col]
	}
	return row
}

func writeCSV(path string, header []string, indices []int, row func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, i := range indices {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ProcessingStats is the run-level block of the stats file.
type ProcessingStats struct {
	TotalProcessed   int            `json:"total_processed"`
	ValidSamples     int            `json:"valid_samples"`
	RejectedSamples  int            `json:"rejected_samples"`
	ValidRatio       float64        `json:"valid_ratio"`
	ProcessingTime   float64        `json:"processing_time"`
	RejectionReasons map[string]int `json:"rejection_reasons"`
}

// StatsReport is the content of the stats file.
type StatsReport struct {
	Timestamp               string                  `json:"timestamp"`
	RunID                   string                  `json:"run_id"`
	Config                  config.Config           `json:"config"`
	ProcessingStats         ProcessingStats         `json:"processing_stats"`
	ComponentStats          pipeline.ComponentStats `json:"component_stats"`
	RejectionReasonAnalysis map[string]int          `json:"rejection_reason_analysis"`
}

// NewStatsReport assembles the stats file content for batch.
func NewStatsReport(cfg config.Config, batch *pipeline.Batch, analysis map[string]int) StatsReport {
	return StatsReport{
		Timestamp: batch.StartedAt.Add(batch.Duration).Format(statsTimestampLayout),
		RunID:     batch.RunID,
		Config:    cfg,
		ProcessingStats: ProcessingStats{
			TotalProcessed:   batch.Stats.TotalSamples,
			ValidSamples:     batch.Stats.ValidSamples,
			RejectedSamples:  batch.Stats.RejectedSamples,
			ValidRatio:       batch.Stats.ValidRatio,
			ProcessingTime:   batch.Duration.Seconds(),
			RejectionReasons: batch.Stats.RejectionReasons,
		},
		ComponentStats:          batch.Stats.ComponentStats,
		RejectionReasonAnalysis: analysis,
	}
}

// ReasonAnalysis counts the reasons of the rejected results at the given
// indices. Reasons are counted as recorded, so a message containing the
// output separator stays one reason.
func ReasonAnalysis(batch *pipeline.Batch, rejected []int) map[string]int {
	counts := make(map[string]int)
	for _, i := range rejected {
		for _, reason := range batch.Results[i].Reasons {
			counts[reason]++
		}
	}
	return counts
}

// FormatDuration renders d as seconds, minutes or hours with one decimal.
func FormatDuration(d time.Duration) string {
	s := d.Seconds()
	switch {
	case s < 60:
		return fmt.Sprintf("%.1fs", s)
	case s < 3600:
		return fmt.Sprintf("%.1fm", s/60)
	default:
		return fmt.Sprintf("%.1fh", s/3600)
	}
}
