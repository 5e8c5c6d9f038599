package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/command"
	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

const manifestHeader = "utterance_id,audio_path,language,transcription_raw,duration_sec,quality_flag\n"

// setupManifests writes a mixed manifest, an all-rejected manifest and a
// manifest missing required columns.
func setupManifests(ctx *harness.Context) error {
	dataDir := ctx.NewDir("data")
	if err := fs.CreateDir(dataDir); err != nil {
		return err
	}

	mixed := manifestHeader +
		"utt_1,corpus/raw/en/utt_1.wav,en,The quick brown fox jumps,3.1,0\n" +
		"utt_2,corpus/raw/en/utt_2.wav,en,\"Hello, there\",20,0\n" +
		"utt_3,corpus/raw/hi/utt_3.wav,en,the the the the,2.0,0\n" +
		"utt_4,corpus/raw/en/utt_4.wav,en,Flagged sample text here,2.0,-1\n"
	if err := fs.WriteString(filepath.Join(dataDir, "mixed.csv"), mixed); err != nil {
		return fmt.Errorf("failed to write mixed.csv: %w", err)
	}

	rejected := manifestHeader + "utt_9,corpus/raw/en/utt_9.wav,en,too long a clip,30,0\n"
	if err := fs.WriteString(filepath.Join(dataDir, "rejected.csv"), rejected); err != nil {
		return err
	}

	if err := fs.WriteString(filepath.Join(dataDir, "broken.csv"), "utterance_id,audio_path\nutt_1,a.wav\n"); err != nil {
		return err
	}

	ctx.Set("data_dir", dataDir)
	ctx.Set("output_dir", ctx.NewDir("output"))
	return nil
}

// ProcessScenario runs 'speechprep process' over a mixed manifest.
func ProcessScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "speechprep-process-command",
		Steps: []harness.Step{
			harness.NewStep("Setup manifests", setupManifests),
			harness.NewStep("Run 'speechprep process'", func(ctx *harness.Context) error {
				binary, err := FindProjectBinary()
				if err != nil {
					return err
				}

				manifest := filepath.Join(ctx.GetString("data_dir"), "mixed.csv")
				outputDir := ctx.GetString("output_dir")
				cmd := command.New(binary, "process", manifest, "--output-dir", outputDir, "--skip-audio-validation")
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "process should exit successfully"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "Processing summary", "Should print the run summary"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "duration_too_long", "Should list rejection reasons"); err != nil {
					return err
				}
				for _, name := range []string{"train_ready.csv", "rejected.csv", "processing_stats.json"} {
					if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
						return fmt.Errorf("expected output %s: %w", name, err)
					}
				}
				return nil
			}),
			harness.NewStep("Run 'speechprep process --json'", func(ctx *harness.Context) error {
				binary, err := FindProjectBinary()
				if err != nil {
					return err
				}

				manifest := filepath.Join(ctx.GetString("data_dir"), "mixed.csv")
				cmd := command.New(binary, "process", manifest,
					"--output-dir", ctx.GetString("output_dir"),
					"--skip-audio-validation", "--no-stats", "--json")
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if result.ExitCode != 0 {
					return fmt.Errorf("process --json failed: %s", result.Stderr)
				}

				var summary struct {
					TotalSamples     int            `json:"total_samples"`
					ValidSamples     int            `json:"valid_samples"`
					RejectionReasons map[string]int `json:"rejection_reasons"`
				}
				if err := json.Unmarshal([]byte(result.Stdout), &summary); err != nil {
					return fmt.Errorf("failed to parse JSON output: %w", err)
				}
				if err := assert.Equal(4, summary.TotalSamples, "Should count every record"); err != nil {
					return err
				}
				if err := assert.Equal(1, summary.ValidSamples, "Only utt_1 should pass"); err != nil {
					return err
				}
				return assert.Equal(1, summary.RejectionReasons["negative_quality_flag"], "utt_4 is flagged")
			}),
		},
	}
}

// NoValidSamplesScenario checks the distinct exit status of an all-rejected run.
func NoValidSamplesScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "speechprep-no-valid-samples",
		Steps: []harness.Step{
			harness.NewStep("Setup manifests", setupManifests),
			harness.NewStep("Run 'speechprep process' on an all-rejected manifest", func(ctx *harness.Context) error {
				binary, err := FindProjectBinary()
				if err != nil {
					return err
				}

				manifest := filepath.Join(ctx.GetString("data_dir"), "rejected.csv")
				cmd := command.New(binary, "process", manifest, "--output-dir", ctx.GetString("output_dir"), "--skip-audio-validation")
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				return assert.Equal(2, result.ExitCode, "An all-rejected run exits with status 2")
			}),
			harness.NewStep("Run 'speechprep process' on a manifest missing columns", func(ctx *harness.Context) error {
				binary, err := FindProjectBinary()
				if err != nil {
					return err
				}

				manifest := filepath.Join(ctx.GetString("data_dir"), "broken.csv")
				cmd := command.New(binary, "process", manifest, "--output-dir", ctx.GetString("output_dir"))
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(1, result.ExitCode, "Missing columns is fatal"); err != nil {
					return err
				}
				return assert.Contains(result.Stderr, "missing required columns", "Should name the problem")
			}),
		},
	}
}

// NormalizeScenario runs 'speechprep normalize' on a single transcript.
func NormalizeScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "speechprep-normalize-command",
		Steps: []harness.Step{
			harness.NewStep("Run 'speechprep normalize --json'", func(ctx *harness.Context) error {
				binary, err := FindProjectBinary()
				if err != nil {
					return err
				}

				cmd := command.New(binary, "normalize", "--language", "en", "--json", "HELLO—world")
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if result.ExitCode != 0 {
					return fmt.Errorf("normalize failed: %s", result.Stderr)
				}

				var out struct {
					Normalization struct {
						Text       string   `json:"text"`
						Operations []string `json:"operations"`
					} `json:"normalization"`
				}
				if err := json.Unmarshal([]byte(result.Stdout), &out); err != nil {
					return fmt.Errorf("failed to parse JSON output: %w", err)
				}
				return assert.Equal("hello-world", out.Normalization.Text, "Should lowercase and replace the dash")
			}),
			harness.NewStep("Run 'speechprep normalize' with an unknown language", func(ctx *harness.Context) error {
				binary, err := FindProjectBinary()
				if err != nil {
					return err
				}

				cmd := command.New(binary, "normalize", "--language", "xx", "text")
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				return assert.Equal(1, result.ExitCode, "Unknown language is rejected")
			}),
		},
	}
}
