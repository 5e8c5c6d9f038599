package cmd

import (
	"encoding/json"
	"fmt"

	grovelogging "github.com/grovetools/core/logging"
	"github.com/grovetools/speechprep/config"
	"github.com/grovetools/speechprep/internal/audio"
	"github.com/grovetools/speechprep/internal/display"
	"github.com/grovetools/speechprep/internal/pipeline"
	"github.com/spf13/cobra"
)

var ulogProbe = grovelogging.NewUnifiedLogger("speechprep.cmd.probe")

func newProbeCmd() *cobra.Command {
	var backend string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "probe <audio-ref>...",
		Short: "Print audio properties and threshold issues for audio references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			config.ApplyGroveExtension(&cfg)
			if cmd.Flags().Changed("audio-backend") {
				cfg.Processing.AudioBackend = backend
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			validator := audio.NewValidator(newProvider(cfg), pipeline.AudioThresholds(cfg.AudioValidation))

			type probeResult struct {
				Ref        string            `json:"ref"`
				Properties *audio.Properties `json:"properties,omitempty"`
				Issues     []string          `json:"issues"`
				Error      string            `json:"error,omitempty"`
			}
			var results []probeResult
			var failed int

			for _, ref := range args {
				props, issues, err := validator.Validate(ref)
				if err != nil {
					failed++
					results = append(results, probeResult{Ref: ref, Issues: []string{}, Error: err.Error()})
					if !jsonOutput {
						ulogProbe.Info("Probe failed").
							Field("ref", ref).
							Field("error", err.Error()).
							Pretty(fmt.Sprintf("%s: %v\n", ref, err)).
							PrettyOnly().
							Emit()
					}
					continue
				}
				if issues == nil {
					issues = []string{}
				}
				results = append(results, probeResult{Ref: ref, Properties: &props, Issues: issues})

				if !jsonOutput {
					ulogProbe.Info("Audio properties").
						Field("ref", ref).
						Field("sample_rate", props.SampleRate).
						Field("duration", props.Duration).
						Field("issues", issues).
						Pretty(display.FormatProbe(ref, props, issues)).
						PrettyOnly().
						Emit()
				}
			}

			if jsonOutput {
				data, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal probe results to JSON: %w", err)
				}
				fmt.Println(string(data))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d references could not be probed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "audio-backend", config.AudioBackendSimulated, "Audio property provider (simulated, wav)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	return cmd
}
