// Package display renders run results for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/core/tui/theme"
	"github.com/grovetools/speechprep/internal/audio"
	"github.com/grovetools/speechprep/internal/dataset"
	"github.com/grovetools/speechprep/internal/quality"
	"github.com/grovetools/speechprep/internal/script"
	"github.com/grovetools/speechprep/internal/textnorm"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.DefaultColors.LightText)
	goodStyle   = lipgloss.NewStyle().Foreground(theme.DefaultColors.Green)
	badStyle    = lipgloss.NewStyle().Foreground(theme.DefaultColors.Red)
	warnStyle   = lipgloss.NewStyle().Foreground(theme.DefaultColors.Yellow)
	mutedStyle  = lipgloss.NewStyle().Foreground(theme.DefaultColors.MutedText)
)

// FormatSummary renders a finished run.
func FormatSummary(s dataset.RunSummary) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Processing summary"))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(s.RunID))
	b.WriteString("\n\n")

	ratioStyle := goodStyle
	switch {
	case s.ValidSamples == 0:
		ratioStyle = badStyle
	case s.ValidRatio < 0.5:
		ratioStyle = warnStyle
	}

	b.WriteString(FormatKeyValues([][2]string{
		{"Total samples", fmt.Sprintf("%d", s.TotalSamples)},
		{"Valid", goodStyle.Render(fmt.Sprintf("%d", s.ValidSamples))},
		{"Rejected", badStyle.Render(fmt.Sprintf("%d", s.RejectedSamples))},
		{"Valid ratio", ratioStyle.Render(fmt.Sprintf("%.1f%%", 100*s.ValidRatio))},
		{"Processing time", s.ProcessingTimeFormatted},
		{"Throughput", fmt.Sprintf("%.1f samples/s", s.SamplesPerSecond)},
	}))

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Output files"))
	b.WriteString("\n")
	files := [][2]string{
		{"Train ready", s.OutputFiles.TrainReady},
		{"Rejected", s.OutputFiles.Rejected},
	}
	if s.OutputFiles.Stats != "" {
		files = append(files, [2]string{"Stats", s.OutputFiles.Stats})
	}
	b.WriteString(FormatKeyValues(files))

	if len(s.TopReasons) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Top rejection reasons"))
		b.WriteString("\n")
		b.WriteString(FormatReasonsTable(s.TopReasons, s.RejectedSamples))
	}

	text := s.ComponentStats.TextNormalization
	a := s.ComponentStats.AudioValidation
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Components"))
	b.WriteString("\n")
	b.WriteString(FormatKeyValues([][2]string{
		{"Transcripts normalized", fmt.Sprintf("%d", text.TotalProcessed)},
		{"Mean edit distance", fmt.Sprintf("%.2f", text.MeanEditDistance)},
		{"Audio validated", fmt.Sprintf("%d", a.TotalValidated)},
		{"Audio missing", fmt.Sprintf("%d", a.MissingFiles)},
		{"Audio corrupted", fmt.Sprintf("%d", a.CorruptedFiles)},
	}))

	return b.String()
}

// FormatNormalization renders the outcome of normalizing one transcript.
func FormatNormalization(n textnorm.Result, v script.Result, m quality.Metrics) string {
	ops := mutedStyle.Render("none")
	if len(n.Operations) > 0 {
		ops = strings.Join(n.Operations, ", ")
	}
	scriptVerdict := goodStyle.Render(v.Detected)
	if !v.Valid {
		scriptVerdict = badStyle.Render(v.Detected)
	}

	return FormatKeyValues([][2]string{
		{"Text", n.Text},
		{"Operations", ops},
		{"Length", fmt.Sprintf("%d -> %d (%.1f%% reduction)", n.OriginalLength, n.FinalLength, 100*n.ReductionRatio)},
		{"Edit distance", fmt.Sprintf("%d", n.EditDistance)},
		{"Script", fmt.Sprintf("%s (confidence %.2f)", scriptVerdict, v.Confidence)},
		{"Quality score", fmt.Sprintf("%.2f", m.QualityScore)},
		{"Words", fmt.Sprintf("%d (avg length %.2f, repeated %.2f)", m.WordCount, m.AvgWordLength, m.RepeatedWordRatio)},
	})
}

// FormatProbe renders probed audio properties and validator issues.
func FormatProbe(ref string, p audio.Properties, issues []string) string {
	verdict := goodStyle.Render("ok")
	if len(issues) > 0 {
		verdict = badStyle.Render(strings.Join(issues, ", "))
	}
	return headerStyle.Render(ref) + "\n" + FormatKeyValues([][2]string{
		{"Sample rate", fmt.Sprintf("%d Hz", p.SampleRate)},
		{"Duration", fmt.Sprintf("%.2fs", p.Duration)},
		{"Channels", fmt.Sprintf("%d", p.NumChannels)},
		{"Frames", fmt.Sprintf("%d", p.NumFrames)},
		{"Amplitude", fmt.Sprintf("mean %.4f, max %.4f", p.AmplitudeMean, p.AmplitudeMax)},
		{"Silence ratio", fmt.Sprintf("%.2f", p.SilenceRatio)},
		{"SNR estimate", fmt.Sprintf("%.1f dB", p.SNREstimate)},
		{"Issues", verdict},
	})
}
