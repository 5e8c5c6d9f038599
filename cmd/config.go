package cmd

import (
	"fmt"

	"github.com/grovetools/core/logging"
	"github.com/grovetools/speechprep/config"
	"github.com/grovetools/speechprep/internal/audio"
	"github.com/spf13/cobra"
)

var configLog = logging.NewLogger("speechprep.cmd.config")

// configFlags are the command-line overrides shared by process and watch.
type configFlags struct {
	configFile           string
	minDuration          float64
	maxDuration          float64
	minQualityScore      float64
	skipAudioValidation  bool
	skipLanguageMismatch bool
	normalizeOnly        bool
	trainFilename        string
	rejectedFilename     string
	noStats              bool
	workers              int
	audioBackend         string
	sqlitePath           string
	metricsFile          string
}

func (f *configFlags) register(cmd *cobra.Command) {
	defaults := config.Default()
	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config-file", "", "YAML configuration file overlaid on the grove config")
	fl.Float64Var(&f.minDuration, "min-duration", defaults.AudioValidation.MinDuration, "Minimum audio duration in seconds")
	fl.Float64Var(&f.maxDuration, "max-duration", defaults.AudioValidation.MaxDuration, "Maximum audio duration in seconds")
	fl.Float64Var(&f.minQualityScore, "min-quality-score", defaults.QualityFiltering.MinTextQualityScore, "Minimum text quality score (0-1)")
	fl.BoolVar(&f.skipAudioValidation, "skip-audio-validation", false, "Do not probe audio files")
	fl.BoolVar(&f.skipLanguageMismatch, "skip-language-mismatch-check", false, "Do not compare the language column with the audio path")
	fl.BoolVar(&f.normalizeOnly, "normalize-only", false, "Normalize transcripts without quality filtering")
	fl.StringVar(&f.trainFilename, "train-filename", defaults.Output.TrainReadyFilename, "Filename for accepted records")
	fl.StringVar(&f.rejectedFilename, "rejected-filename", defaults.Output.RejectedFilename, "Filename for rejected records")
	fl.BoolVar(&f.noStats, "no-stats", false, "Do not write the processing stats file")
	fl.IntVar(&f.workers, "workers", defaults.Processing.Workers, "Number of concurrent record evaluators")
	fl.StringVar(&f.audioBackend, "audio-backend", defaults.Processing.AudioBackend, "Audio property provider (simulated, wav)")
	fl.StringVar(&f.sqlitePath, "sqlite", "", "Store every verdict in this SQLite database")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "Write a Prometheus textfile snapshot to this path")
}

// resolve layers defaults, the grove extension, the config file and the
// flags the user actually set, then validates the result.
func (f *configFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if config.ApplyGroveExtension(&cfg) {
		configLog.Debug("Applied speechprep section from grove config")
	}
	if f.configFile != "" {
		if err := config.LoadFile(f.configFile, &cfg); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("min-duration") {
		cfg.AudioValidation.MinDuration = f.minDuration
	}
	if changed("max-duration") {
		cfg.AudioValidation.MaxDuration = f.maxDuration
	}
	if changed("min-quality-score") {
		cfg.QualityFiltering.MinTextQualityScore = f.minQualityScore
	}
	if f.skipAudioValidation {
		cfg.Processing.SkipAudioValidation = true
	}
	if f.skipLanguageMismatch {
		cfg.QualityFiltering.CheckLanguageMismatch = false
	}
	if f.normalizeOnly {
		cfg.RelaxQualityFiltering()
	}
	if changed("train-filename") {
		cfg.Output.TrainReadyFilename = f.trainFilename
	}
	if changed("rejected-filename") {
		cfg.Output.RejectedFilename = f.rejectedFilename
	}
	if f.noStats {
		cfg.Output.IncludeStats = false
	}
	if changed("workers") {
		cfg.Processing.Workers = f.workers
	}
	if changed("audio-backend") {
		cfg.Processing.AudioBackend = f.audioBackend
	}
	if changed("sqlite") {
		cfg.Output.SQLitePath = f.sqlitePath
	}
	if changed("metrics-file") {
		cfg.Output.MetricsTextfile = f.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newProvider returns the audio provider selected by cfg, or nil when audio
// validation is disabled.
func newProvider(cfg config.Config) audio.Provider {
	if cfg.Processing.SkipAudioValidation {
		return nil
	}
	if cfg.Processing.AudioBackend == config.AudioBackendWAV {
		return audio.NewWAVDecoder()
	}
	return audio.NewSimulator()
}
