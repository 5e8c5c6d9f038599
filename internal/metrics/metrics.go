// Package metrics exports run statistics as a Prometheus textfile for the
// node exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/grovetools/speechprep/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "speechprep"

// Exporter holds the gauges describing the most recent run.
type Exporter struct {
	registry    *prometheus.Registry
	records     *prometheus.GaugeVec
	reasons     *prometheus.GaugeVec
	operations  *prometheus.GaugeVec
	audioFiles  *prometheus.GaugeVec
	duration    prometheus.Gauge
	throughput  prometheus.Gauge
	lastRunTime prometheus.Gauge
}

// NewExporter creates an exporter with its own registry.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records evaluated in the last run by verdict.",
		}, []string{"verdict"}),
		reasons: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rejection_reasons",
			Help:      "Occurrences of each rejection reason in the last run.",
		}, []string{"reason"}),
		operations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "text_normalization",
			Name:      "operations",
			Help:      "Transcripts changed by each normalization stage in the last run.",
		}, []string{"operation"}),
		audioFiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "audio_validation",
			Name:      "files",
			Help:      "Audio references checked in the last run by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		throughput: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "samples_per_second",
			Help:      "Evaluation throughput of the last run.",
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	e.registry.MustRegister(e.records, e.reasons, e.operations, e.audioFiles, e.duration, e.throughput, e.lastRunTime)
	return e
}

// Observe replaces the exported values with those of batch.
func (e *Exporter) Observe(batch *pipeline.Batch) {
	stats := batch.Stats

	e.records.Reset()
	e.records.WithLabelValues("valid").Set(float64(stats.ValidSamples))
	e.records.WithLabelValues("rejected").Set(float64(stats.RejectedSamples))

	e.reasons.Reset()
	for reason, n := range stats.RejectionReasons {
		e.reasons.WithLabelValues(reason).Set(float64(n))
	}

	text := stats.ComponentStats.TextNormalization
	e.operations.WithLabelValues("unicode_nfc").Set(float64(text.UnicodeNormalized))
	e.operations.WithLabelValues("diacritics_removed").Set(float64(text.DiacriticsRemoved))
	e.operations.WithLabelValues("numbers_expanded").Set(float64(text.NumbersExpanded))
	e.operations.WithLabelValues("punctuation_normalized").Set(float64(text.PunctuationNormalized))

	a := stats.ComponentStats.AudioValidation
	e.audioFiles.WithLabelValues("valid").Set(float64(a.ValidFiles))
	e.audioFiles.WithLabelValues("invalid").Set(float64(a.InvalidFiles))
	e.audioFiles.WithLabelValues("missing").Set(float64(a.MissingFiles))
	e.audioFiles.WithLabelValues("corrupted").Set(float64(a.CorruptedFiles))

	e.duration.Set(batch.Duration.Seconds())
	e.throughput.Set(batch.SamplesPerSecond())
	e.lastRunTime.Set(float64(batch.StartedAt.Add(batch.Duration).Unix()))
}

// Registry exposes the underlying registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// WriteTextfile atomically writes the current values to path.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
