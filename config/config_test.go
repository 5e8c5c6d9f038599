package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.5, cfg.AudioValidation.MinDuration)
	assert.Equal(t, 15.0, cfg.AudioValidation.MaxDuration)
	assert.Equal(t, 0.3, cfg.QualityFiltering.MinTextQualityScore)
	assert.Equal(t, 2, cfg.QualityFiltering.MinWordCount)
	assert.True(t, cfg.QualityFiltering.CheckLanguageMismatch)
	assert.Equal(t, "train_ready.csv", cfg.Output.TrainReadyFilename)
	assert.Equal(t, AudioBackendSimulated, cfg.Processing.AudioBackend)
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speechprep.yml")
	doc := `
audio_validation:
  max_duration: 20
quality_filtering:
  check_language_mismatch: false
processing:
  workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg := Default()
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, 20.0, cfg.AudioValidation.MaxDuration)
	assert.Equal(t, 0.5, cfg.AudioValidation.MinDuration, "untouched keys keep defaults")
	assert.False(t, cfg.QualityFiltering.CheckLanguageMismatch)
	assert.Equal(t, 8, cfg.Processing.Workers)
	assert.Equal(t, "rejected.csv", cfg.Output.RejectedFilename)
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Default()
	assert.Error(t, LoadFile(filepath.Join(t.TempDir(), "missing.yml"), &cfg))

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("audio_validation: [1, 2"), 0o644))
	assert.Error(t, LoadFile(path, &cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-positive min duration", func(c *Config) { c.AudioValidation.MinDuration = 0 }},
		{"non-positive max duration", func(c *Config) { c.AudioValidation.MaxDuration = -1 }},
		{"min not below max", func(c *Config) { c.AudioValidation.MinDuration = 15 }},
		{"sample rate range", func(c *Config) { c.AudioValidation.MinSampleRate = 96000 }},
		{"quality score above one", func(c *Config) { c.QualityFiltering.MinTextQualityScore = 1.5 }},
		{"negative repeated ratio", func(c *Config) { c.QualityFiltering.MaxRepeatedWordRatio = -0.1 }},
		{"negative word count", func(c *Config) { c.QualityFiltering.MinWordCount = -1 }},
		{"empty filename", func(c *Config) { c.Output.RejectedFilename = "" }},
		{"no workers", func(c *Config) { c.Processing.Workers = 0 }},
		{"unknown backend", func(c *Config) { c.Processing.AudioBackend = "torchaudio" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRelaxQualityFiltering(t *testing.T) {
	cfg := Default()
	cfg.RelaxQualityFiltering()
	assert.Zero(t, cfg.QualityFiltering.MinTextQualityScore)
	assert.Zero(t, cfg.QualityFiltering.MinWordCount)
	assert.Equal(t, 1.0, cfg.QualityFiltering.MaxRepeatedWordRatio)
	assert.NoError(t, cfg.Validate())
}
