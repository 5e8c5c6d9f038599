// Package pipeline evaluates input records and aggregates per-run statistics.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/core/logging"
	"github.com/grovetools/speechprep/config"
	"github.com/grovetools/speechprep/internal/audio"
	"github.com/grovetools/speechprep/internal/language"
	"github.com/grovetools/speechprep/internal/quality"
	"github.com/grovetools/speechprep/internal/script"
	"github.com/grovetools/speechprep/internal/textnorm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// Result is the verdict for one record.
type Result struct {
	UtteranceID    string   `json:"utterance_id"`
	Valid          bool     `json:"is_valid"`
	Reasons        []string `json:"reasons"`
	NormalizedText string   `json:"normalized_text"`
	OriginalText   string   `json:"original_text"`

	Normalization *textnorm.Result  `json:"normalization,omitempty"`
	TextMetrics   *quality.Metrics  `json:"text_metrics,omitempty"`
	Script        *script.Result    `json:"script,omitempty"`
	Audio         *audio.Properties `json:"audio_properties,omitempty"`

	// AudioChecked is set when the audio step ran. AudioIssues and AudioErr
	// then hold its outcome.
	AudioChecked bool     `json:"audio_checked"`
	AudioIssues  []string `json:"audio_issues,omitempty"`
	AudioErr     error    `json:"-"`

	ProcessingTime time.Duration `json:"processing_time"`
}

// QualityScore returns the text quality score, or 0 when no metrics were
// computed.
func (r Result) QualityScore() float64 {
	if r.TextMetrics == nil {
		return 0
	}
	return r.TextMetrics.QualityScore
}

// Evaluator applies the validation rules to one record at a time. It only
// reads shared state and is safe for concurrent use.
type Evaluator struct {
	audioCfg   config.AudioValidationConfig
	qualityCfg config.QualityFilteringConfig
	normalizer *textnorm.Engine
	validator  *audio.Validator
	logger     *logrus.Entry

	validateScript func(text, lang string) script.Result
	pathLanguage   func(audioPath string) string
}

// NewEvaluator creates an evaluator for cfg. A nil provider disables the
// audio step.
func NewEvaluator(cfg config.Config, provider audio.Provider) *Evaluator {
	e := &Evaluator{
		audioCfg:   cfg.AudioValidation,
		qualityCfg: cfg.QualityFiltering,
		normalizer: textnorm.NewEngine(textnorm.Options{
			UnicodeNFC:           cfg.TextNormalization.ApplyUnicodeNFC,
			RemoveDiacritics:     cfg.TextNormalization.RemoveDiacritics,
			ExpandNumbers:        cfg.TextNormalization.ExpandNumbers,
			NormalizePunctuation: cfg.TextNormalization.NormalizePunctuation,
		}),
		logger:         logging.NewLogger("speechprep.pipeline"),
		validateScript: script.Validate,
		pathLanguage:   PathLanguage,
	}
	if provider != nil && !cfg.Processing.SkipAudioValidation {
		e.validator = audio.NewValidator(provider, AudioThresholds(cfg.AudioValidation))
	}
	return e
}

// AudioThresholds applies the configured duration and sample-rate envelope
// to the default audio thresholds.
func AudioThresholds(cfg config.AudioValidationConfig) audio.Thresholds {
	t := audio.DefaultThresholds()
	t.MinSampleRate = cfg.MinSampleRate
	t.MaxSampleRate = cfg.MaxSampleRate
	t.MinDuration = cfg.MinDuration
	t.MaxDuration = cfg.MaxDuration
	return t
}

// Evaluate runs every rule against rec. It never panics; unexpected failures
// become a processing_error reason.
func (e *Evaluator) Evaluate(rec Record) (res Result) {
	start := time.Now()
	res.UtteranceID = rec.text(FieldUtteranceID)
	res.OriginalText, _ = rec.Get(FieldTranscriptionRaw)

	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("utterance_id", res.UtteranceID).Errorf("Record evaluation panicked: %v", r)
			res.Reasons = append(res.Reasons, fmt.Sprintf("%s%v", ProcessingErrorPrefix, r))
		}
		res.Valid = len(res.Reasons) == 0
		res.ProcessingTime = time.Since(start)
	}()

	audioPath := rec.text(FieldAudioPath)
	lang := rec.text(FieldLanguage)
	transcript := strings.TrimSpace(res.OriginalText)

	// Presence checks are independent of one another.
	if res.UtteranceID == "" {
		res.Reasons = append(res.Reasons, ReasonMissingUtteranceID)
	}
	if audioPath == "" {
		res.Reasons = append(res.Reasons, ReasonMissingAudioPath)
	}
	if lang == "" {
		res.Reasons = append(res.Reasons, ReasonMissingLanguage)
	}
	if transcript == "" {
		res.Reasons = append(res.Reasons, ReasonEmptyTranscription)
	}

	if lang != "" && !language.IsSupported(lang) {
		res.Reasons = append(res.Reasons, ReasonUnsupportedLanguage)
	}

	// Audio analysis is skipped for records that are already rejected.
	if audioPath != "" && len(res.Reasons) == 0 && e.validator != nil {
		e.checkAudio(&res, audioPath)
	}

	if raw, ok := rec.Get(FieldDurationSec); ok {
		res.Reasons = append(res.Reasons, e.checkDeclaredDuration(raw)...)
	}

	if e.qualityCfg.CheckLanguageMismatch && audioPath != "" && lang != "" {
		if pathLang := e.pathLanguage(audioPath); pathLang != "" && !strings.EqualFold(pathLang, lang) {
			res.Reasons = append(res.Reasons, ReasonLanguagePathMismatch)
		}
	}

	if transcript != "" {
		res.Reasons = append(res.Reasons, e.checkText(&res, res.OriginalText, lang)...)
	}

	if raw, ok := rec.Get(FieldQualityFlag); ok {
		if flag, err := cast.ToIntE(strings.TrimSpace(raw)); err == nil && flag < 0 {
			res.Reasons = append(res.Reasons, ReasonNegativeQualityFlag)
		}
	}

	return res
}

// checkAudio runs the audio step. Provider failures, panics included, become
// audio_validation_error and never stop the remaining checks.
func (e *Evaluator) checkAudio(res *Result, audioPath string) {
	res.AudioChecked = true
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("utterance_id", res.UtteranceID).Warnf("Audio provider panicked: %v", r)
			res.Audio, res.AudioIssues = nil, nil
			res.AudioErr = fmt.Errorf("audio provider panicked: %v", r)
			res.Reasons = append(res.Reasons, ReasonAudioValidationError)
		}
	}()
	props, issues, err := e.validator.Validate(audioPath)
	if err != nil {
		e.logger.WithError(err).WithField("utterance_id", res.UtteranceID).Debug("Audio validation failed")
		res.AudioErr = err
		res.Reasons = append(res.Reasons, ReasonAudioValidationError)
		return
	}
	res.Audio = &props
	res.AudioIssues = issues
	for _, issue := range issues {
		res.Reasons = append(res.Reasons, AudioReasonPrefix+issue)
	}
}

func (e *Evaluator) checkDeclaredDuration(raw string) []string {
	duration, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil {
		return []string{ReasonInvalidDuration}
	}
	switch {
	case duration < e.audioCfg.MinDuration:
		return []string{ReasonDurationTooShort}
	case duration > e.audioCfg.MaxDuration:
		return []string{ReasonDurationTooLong}
	}
	return nil
}

// checkText normalizes and scores the transcript. A panic in the text stages
// adds text_normalization_error to the reasons found so far.
func (e *Evaluator) checkText(res *Result, text, lang string) (reasons []string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("utterance_id", res.UtteranceID).Warnf("Text normalization failed: %v", r)
			reasons = append(reasons, ReasonTextNormalization)
		}
	}()

	norm := e.normalizer.Normalize(text, lang)
	res.Normalization = &norm
	res.NormalizedText = norm.Text

	metrics := quality.Score(norm.Text)
	res.TextMetrics = &metrics
	if metrics.QualityScore < e.qualityCfg.MinTextQualityScore {
		reasons = append(reasons, ReasonLowTextQuality)
	}
	if metrics.WordCount < e.qualityCfg.MinWordCount {
		reasons = append(reasons, ReasonTooFewWords)
	}
	if metrics.RepeatedWordRatio > e.qualityCfg.MaxRepeatedWordRatio {
		reasons = append(reasons, ReasonTooManyRepeatedWords)
	}

	verdict := e.validateScript(norm.Text, lang)
	res.Script = &verdict
	if !verdict.Valid && verdict.Confidence < scriptLeniency {
		reasons = append(reasons, ScriptMismatchPrefix+verdict.Detected)
	}
	return reasons
}

// PathLanguage returns the path segment following the first "raw" segment of
// an audio reference, or "" when there is none.
func PathLanguage(audioPath string) string {
	parts := strings.Split(strings.ReplaceAll(audioPath, "\\", "/"), "/")
	for i, part := range parts {
		if part == "raw" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
