package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/speechprep/config"
	"github.com/grovetools/speechprep/internal/audio"
	"github.com/grovetools/speechprep/internal/pipeline"
	"github.com/grovetools/speechprep/internal/store"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `utterance_id,audio_path,language,transcription_raw,duration_sec
utt_1,s3://corpus/raw/en/utt_1.wav,en,The quick brown fox jumps,3.1
utt_2,s3://corpus/raw/en/utt_2.wav,en,"Hello, there",20
`

func parseFlags(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var flags configFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	require.NoError(t, cmd.Flags().Parse(args))
	return flags.resolve(cmd)
}

func writeManifest(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.csv")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := parseFlags(t)
	require.NoError(t, err)
	assert.Equal(t, config.Default().AudioValidation.MinDuration, cfg.AudioValidation.MinDuration)
	assert.True(t, cfg.Output.IncludeStats)
}

func TestResolveFlagOverrides(t *testing.T) {
	cfg, err := parseFlags(t,
		"--min-duration", "1",
		"--max-duration", "10",
		"--min-quality-score", "0.6",
		"--skip-language-mismatch-check",
		"--no-stats",
		"--train-filename", "ok.csv",
		"--workers", "2",
		"--audio-backend", "wav",
		"--skip-audio-validation",
	)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.AudioValidation.MinDuration)
	assert.Equal(t, 10.0, cfg.AudioValidation.MaxDuration)
	assert.Equal(t, 0.6, cfg.QualityFiltering.MinTextQualityScore)
	assert.False(t, cfg.QualityFiltering.CheckLanguageMismatch)
	assert.False(t, cfg.Output.IncludeStats)
	assert.Equal(t, "ok.csv", cfg.Output.TrainReadyFilename)
	assert.Equal(t, 2, cfg.Processing.Workers)
	assert.Equal(t, config.AudioBackendWAV, cfg.Processing.AudioBackend)
	assert.True(t, cfg.Processing.SkipAudioValidation)
}

func TestResolveConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speechprep.yml")
	require.NoError(t, os.WriteFile(path, []byte("audio_validation:\n  min_duration: 2\n  max_duration: 9\n"), 0o644))

	cfg, err := parseFlags(t, "--config-file", path, "--max-duration", "12")
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.AudioValidation.MinDuration)
	assert.Equal(t, 12.0, cfg.AudioValidation.MaxDuration)
}

func TestResolveNormalizeOnly(t *testing.T) {
	cfg, err := parseFlags(t, "--normalize-only")
	require.NoError(t, err)
	assert.Zero(t, cfg.QualityFiltering.MinTextQualityScore)
	assert.Zero(t, cfg.QualityFiltering.MinWordCount)
	assert.Equal(t, 1.0, cfg.QualityFiltering.MaxRepeatedWordRatio)
}

func TestResolveRejectsInvalid(t *testing.T) {
	_, err := parseFlags(t, "--min-duration", "5", "--max-duration", "3")
	assert.Error(t, err)

	_, err = parseFlags(t, "--audio-backend", "mp3")
	assert.Error(t, err)

	_, err = parseFlags(t, "--config-file", filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, &audio.Simulator{}, newProvider(cfg))

	cfg.Processing.AudioBackend = config.AudioBackendWAV
	assert.IsType(t, &audio.WAVDecoder{}, newProvider(cfg))

	cfg.Processing.SkipAudioValidation = true
	assert.Nil(t, newProvider(cfg))
}

func TestRunManifest(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Processing.SkipAudioValidation = true
	cfg.Output.SQLitePath = filepath.Join(dir, "runs.db")
	cfg.Output.MetricsTextfile = filepath.Join(dir, "speechprep.prom")

	manifestPath := writeManifest(t, testManifest)
	summary, err := runManifest(context.Background(), cfg, manifestPath, filepath.Join(dir, "out"))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalSamples)
	assert.Equal(t, 1, summary.ValidSamples)
	assert.Equal(t, 1, summary.RejectionReasons["duration_too_long"])
	assert.FileExists(t, summary.OutputFiles.TrainReady)
	assert.FileExists(t, summary.OutputFiles.Rejected)
	assert.FileExists(t, summary.OutputFiles.Stats)
	assert.FileExists(t, cfg.Output.MetricsTextfile)

	s, err := store.Open(cfg.Output.SQLitePath)
	require.NoError(t, err)
	defer s.Close()
	run, err := s.GetRun(context.Background(), summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, manifestPath, run.Source)
	assert.Equal(t, 1, run.Valid)
}

func TestRunManifestNoValidSamples(t *testing.T) {
	cfg := config.Default()
	cfg.Processing.SkipAudioValidation = true

	manifestPath := writeManifest(t, "utterance_id,audio_path,language,transcription_raw,duration_sec\nutt_2,a.wav,en,hello there,20\n")
	summary, err := runManifest(context.Background(), cfg, manifestPath, filepath.Join(t.TempDir(), "out"))
	assert.ErrorIs(t, err, pipeline.ErrNoValidSamples)
	assert.Equal(t, 1, summary.RejectedSamples)
	assert.FileExists(t, summary.OutputFiles.Rejected)
}

func TestRunManifestMissingColumns(t *testing.T) {
	manifestPath := writeManifest(t, "utterance_id,audio_path\nutt_1,a.wav\n")
	_, err := runManifest(context.Background(), config.Default(), manifestPath, t.TempDir())
	assert.ErrorContains(t, err, "missing required columns")
}

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"process", "normalize", "probe", "watch", "version"} {
		found, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, found.Name())
	}
}
