package config

//go:generate go run ../tools/schema-generator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExtensionKey is the name of the speechprep section in grove.yml.
const ExtensionKey = "speechprep"

// Audio backends selectable through Processing.AudioBackend.
const (
	AudioBackendSimulated = "simulated"
	AudioBackendWAV       = "wav"
)

// AudioValidationConfig defines the acceptable technical audio envelope.
type AudioValidationConfig struct {
	// MinDuration is the shortest accepted clip, in seconds.
	// Applies to both the declared duration_sec column and the probed audio.
	MinDuration float64 `yaml:"min_duration" json:"min_duration"`

	// MaxDuration is the longest accepted clip, in seconds.
	MaxDuration float64 `yaml:"max_duration" json:"max_duration"`

	// MinSampleRate is the lowest accepted sample rate, in Hz.
	MinSampleRate int `yaml:"min_sample_rate" json:"min_sample_rate"`

	// MaxSampleRate is the highest accepted sample rate, in Hz.
	MaxSampleRate int `yaml:"max_sample_rate" json:"max_sample_rate"`

	// PreferredSampleRate is informational and reported in the stats file.
	PreferredSampleRate int `yaml:"preferred_sample_rate,omitempty" json:"preferred_sample_rate,omitempty"`
}

// TextNormalizationConfig switches individual normalization stages on or off.
// Stage order is fixed regardless of which stages run.
type TextNormalizationConfig struct {
	ApplyUnicodeNFC      bool `yaml:"apply_unicode_nfc" json:"apply_unicode_nfc"`
	RemoveDiacritics     bool `yaml:"remove_diacritics" json:"remove_diacritics"`
	ExpandNumbers        bool `yaml:"expand_numbers" json:"expand_numbers"`
	NormalizePunctuation bool `yaml:"normalize_punctuation" json:"normalize_punctuation"`
}

// QualityFilteringConfig holds the transcript acceptance thresholds.
type QualityFilteringConfig struct {
	// MinTextQualityScore rejects transcripts scoring below it (0-1).
	MinTextQualityScore float64 `yaml:"min_text_quality_score" json:"min_text_quality_score"`

	// MinWordCount rejects transcripts with fewer words.
	MinWordCount int `yaml:"min_word_count" json:"min_word_count"`

	// MaxRepeatedWordRatio rejects transcripts repeating more of their words.
	MaxRepeatedWordRatio float64 `yaml:"max_repeated_word_ratio" json:"max_repeated_word_ratio"`

	// CheckLanguageMismatch compares the language column against the
	// path segment following "raw/" in audio_path.
	CheckLanguageMismatch bool `yaml:"check_language_mismatch" json:"check_language_mismatch"`
}

// OutputConfig controls what a run writes.
type OutputConfig struct {
	TrainReadyFilename string `yaml:"train_ready_filename" json:"train_ready_filename"`
	RejectedFilename   string `yaml:"rejected_filename" json:"rejected_filename"`
	StatsFilename      string `yaml:"stats_filename,omitempty" json:"stats_filename,omitempty"`
	IncludeStats       bool   `yaml:"include_stats" json:"include_stats"`

	// SQLitePath, when set, stores every verdict in a SQLite database.
	SQLitePath string `yaml:"sqlite_path,omitempty" json:"sqlite_path,omitempty"`

	// MetricsTextfile, when set, receives a Prometheus textfile snapshot.
	MetricsTextfile string `yaml:"metrics_textfile,omitempty" json:"metrics_textfile,omitempty"`
}

// ProcessingConfig controls how records are evaluated.
type ProcessingConfig struct {
	// Workers is the number of concurrent record evaluators.
	Workers int `yaml:"workers" json:"workers"`

	// AudioBackend selects the audio property provider.
	// "simulated" (default): deterministic properties derived from the file name.
	// "wav": decode local WAV files.
	AudioBackend string `yaml:"audio_backend" json:"audio_backend"`

	// SkipAudioValidation disables audio probing entirely.
	SkipAudioValidation bool `yaml:"skip_audio_validation,omitempty" json:"skip_audio_validation,omitempty"`
}

// Config is the top-level configuration structure for speechprep.
type Config struct {
	AudioValidation   AudioValidationConfig   `yaml:"audio_validation" json:"audio_validation"`
	TextNormalization TextNormalizationConfig `yaml:"text_normalization" json:"text_normalization"`
	QualityFiltering  QualityFilteringConfig  `yaml:"quality_filtering" json:"quality_filtering"`
	Output            OutputConfig            `yaml:"output" json:"output"`
	Processing        ProcessingConfig        `yaml:"processing" json:"processing"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AudioValidation: AudioValidationConfig{
			MinDuration:         0.5,
			MaxDuration:         15.0,
			MinSampleRate:       8000,
			MaxSampleRate:       48000,
			PreferredSampleRate: 16000,
		},
		TextNormalization: TextNormalizationConfig{
			ApplyUnicodeNFC:      true,
			RemoveDiacritics:     true,
			ExpandNumbers:        true,
			NormalizePunctuation: true,
		},
		QualityFiltering: QualityFilteringConfig{
			MinTextQualityScore:   0.3,
			MinWordCount:          2,
			MaxRepeatedWordRatio:  0.8,
			CheckLanguageMismatch: true,
		},
		Output: OutputConfig{
			TrainReadyFilename: "train_ready.csv",
			RejectedFilename:   "rejected.csv",
			StatsFilename:      "processing_stats.json",
			IncludeStats:       true,
		},
		Processing: ProcessingConfig{
			Workers:      4,
			AudioBackend: AudioBackendSimulated,
		},
	}
}

// LoadFile overlays the YAML document at path onto cfg. Keys absent from the
// document keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// RelaxQualityFiltering disables transcript quality rejection while keeping
// every other check. Used by normalize-only runs.
func (c *Config) RelaxQualityFiltering() {
	c.QualityFiltering.MinTextQualityScore = 0
	c.QualityFiltering.MinWordCount = 0
	c.QualityFiltering.MaxRepeatedWordRatio = 1.0
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	av := c.AudioValidation
	if av.MinDuration <= 0 {
		return fmt.Errorf("audio_validation.min_duration must be positive")
	}
	if av.MaxDuration <= 0 {
		return fmt.Errorf("audio_validation.max_duration must be positive")
	}
	if av.MinDuration >= av.MaxDuration {
		return fmt.Errorf("audio_validation.min_duration must be less than max_duration")
	}
	if av.MinSampleRate <= 0 || av.MinSampleRate > av.MaxSampleRate {
		return fmt.Errorf("audio_validation sample rate range [%d, %d] is invalid", av.MinSampleRate, av.MaxSampleRate)
	}

	q := c.QualityFiltering
	if q.MinTextQualityScore < 0 || q.MinTextQualityScore > 1 {
		return fmt.Errorf("quality_filtering.min_text_quality_score must be between 0 and 1")
	}
	if q.MaxRepeatedWordRatio < 0 || q.MaxRepeatedWordRatio > 1 {
		return fmt.Errorf("quality_filtering.max_repeated_word_ratio must be between 0 and 1")
	}
	if q.MinWordCount < 0 {
		return fmt.Errorf("quality_filtering.min_word_count must not be negative")
	}

	if c.Output.TrainReadyFilename == "" || c.Output.RejectedFilename == "" {
		return fmt.Errorf("output filenames must not be empty")
	}

	if c.Processing.Workers < 1 {
		return fmt.Errorf("processing.workers must be at least 1")
	}
	switch c.Processing.AudioBackend {
	case AudioBackendSimulated, AudioBackendWAV:
	default:
		return fmt.Errorf("unknown processing.audio_backend %q", c.Processing.AudioBackend)
	}
	return nil
}
