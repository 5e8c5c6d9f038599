package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	grovelogging "github.com/grovetools/core/logging"
	"github.com/grovetools/speechprep/config"
	"github.com/grovetools/speechprep/internal/display"
	"github.com/grovetools/speechprep/internal/language"
	"github.com/grovetools/speechprep/internal/quality"
	"github.com/grovetools/speechprep/internal/script"
	"github.com/grovetools/speechprep/internal/textnorm"
	"github.com/spf13/cobra"
)

var ulogNormalize = grovelogging.NewUnifiedLogger("speechprep.cmd.normalize")

func newNormalizeCmd() *cobra.Command {
	var lang string
	var configFile string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "normalize <text>...",
		Short: "Normalize a transcript and report its script and quality",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := language.Canonical(lang)
			if !language.IsSupported(code) {
				return fmt.Errorf("unsupported language %q (supported: %s)", lang, strings.Join(language.Codes(), ", "))
			}

			cfg := config.Default()
			config.ApplyGroveExtension(&cfg)
			if configFile != "" {
				if err := config.LoadFile(configFile, &cfg); err != nil {
					return err
				}
			}
			tn := cfg.TextNormalization
			engine := textnorm.NewEngine(textnorm.Options{
				UnicodeNFC:           tn.ApplyUnicodeNFC,
				RemoveDiacritics:     tn.RemoveDiacritics,
				ExpandNumbers:        tn.ExpandNumbers,
				NormalizePunctuation: tn.NormalizePunctuation,
			})

			text := strings.Join(args, " ")
			norm := engine.Normalize(text, code)
			verdict := script.Validate(norm.Text, code)
			metrics := quality.Score(norm.Text)

			if jsonOutput {
				out := struct {
					Language      string          `json:"language"`
					Normalization textnorm.Result `json:"normalization"`
					Script        script.Result   `json:"script"`
					Quality       quality.Metrics `json:"quality"`
				}{code, norm, verdict, metrics}
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal result to JSON: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			ulogNormalize.Info("Normalized transcript").
				Field("language", code).
				Field("normalized", norm.Text).
				Field("operations", norm.Operations).
				Field("script", verdict.Detected).
				Field("quality_score", metrics.QualityScore).
				Pretty(display.FormatNormalization(norm, verdict, metrics)).
				PrettyOnly().
				Emit()
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "language", "hi", "Language code of the transcript")
	cmd.Flags().StringVar(&configFile, "config-file", "", "YAML configuration file with text_normalization settings")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	return cmd
}
