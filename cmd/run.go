package cmd

import (
	"context"
	"fmt"

	"github.com/grovetools/core/logging"
	"github.com/grovetools/speechprep/config"
	"github.com/grovetools/speechprep/internal/dataset"
	"github.com/grovetools/speechprep/internal/metrics"
	"github.com/grovetools/speechprep/internal/pipeline"
	"github.com/grovetools/speechprep/internal/store"
)

var runLog = logging.NewLogger("speechprep.cmd.run")

// runManifest reads, evaluates and persists one manifest. The returned
// summary is valid whenever the batch ran, including when no record passed;
// that case is reported through pipeline.ErrNoValidSamples.
func runManifest(ctx context.Context, cfg config.Config, manifestPath, outputDir string) (dataset.RunSummary, error) {
	log := runLog.WithField("manifest", manifestPath)

	manifest, err := dataset.ReadFile(manifestPath)
	if err != nil {
		return dataset.RunSummary{}, err
	}
	log.WithField("records", len(manifest.Records)).Info("Loaded manifest")

	evaluator := pipeline.NewEvaluator(cfg, newProvider(cfg))
	batch, err := pipeline.NewRunner(evaluator, cfg.Processing.Workers).Run(ctx, manifest.Records)
	if err != nil {
		return dataset.RunSummary{}, fmt.Errorf("run interrupted: %w", err)
	}

	writer := &dataset.Writer{Dir: outputDir, Config: cfg}
	outputs, err := writer.Write(manifest.Columns, batch)
	if err != nil {
		return dataset.RunSummary{}, err
	}

	if cfg.Output.SQLitePath != "" {
		if err := saveToStore(ctx, cfg.Output.SQLitePath, manifestPath, batch); err != nil {
			return dataset.RunSummary{}, err
		}
		log.WithField("sqlite", cfg.Output.SQLitePath).Debug("Stored verdicts")
	}

	if cfg.Output.MetricsTextfile != "" {
		exporter := metrics.NewExporter()
		exporter.Observe(batch)
		if err := exporter.WriteTextfile(cfg.Output.MetricsTextfile); err != nil {
			return dataset.RunSummary{}, err
		}
	}

	return dataset.Summarize(batch, outputs), batch.Err()
}

func saveToStore(ctx context.Context, path, source string, batch *pipeline.Batch) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveBatch(ctx, source, batch)
}
