package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	grovelogging "github.com/grovetools/core/logging"
	"github.com/grovetools/speechprep/internal/dataset"
	"github.com/grovetools/speechprep/internal/display"
	"github.com/grovetools/speechprep/internal/pipeline"
	"github.com/spf13/cobra"
)

var ulogProcess = grovelogging.NewUnifiedLogger("speechprep.cmd.process")

func newProcessCmd() *cobra.Command {
	var flags configFlags
	var outputDir string
	var jsonOutput bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "process <manifest.csv>",
		Short: "Validate a transcript manifest and split it into train-ready and rejected records",
		Long: `Reads a CSV manifest of audio-transcript records, normalizes every
transcript, checks script consistency, text quality and audio properties, and
writes train-ready and rejected tables plus a stats file to the output
directory. Exits with status 2 when no record passes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			summary, err := runManifest(cmd.Context(), cfg, args[0], outputDir)
			if err != nil && !errors.Is(err, pipeline.ErrNoValidSamples) {
				return err
			}
			runErr := err

			if quiet {
				return runErr
			}
			if jsonOutput {
				data, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal summary to JSON: %w", err)
				}
				fmt.Println(string(data))
				return runErr
			}

			printSummary(summary)
			return runErr
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&outputDir, "output-dir", "./output", "Directory for output files")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress the run summary")

	return cmd
}

func printSummary(summary dataset.RunSummary) {
	ulogProcess.Info("Run summary").
		Field("run_id", summary.RunID).
		Field("total_samples", summary.TotalSamples).
		Field("valid_samples", summary.ValidSamples).
		Field("rejected_samples", summary.RejectedSamples).
		Field("processing_time", summary.ProcessingTimeFormatted).
		Pretty(display.FormatSummary(summary)).
		PrettyOnly().
		Emit()
}
