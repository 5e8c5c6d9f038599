package pipeline

// Rejection reason codes.
const (
	ReasonMissingUtteranceID   = "missing_utterance_id"
	ReasonMissingAudioPath     = "missing_audio_path"
	ReasonMissingLanguage      = "missing_language"
	ReasonEmptyTranscription   = "empty_transcription"
	ReasonUnsupportedLanguage  = "unsupported_language"
	ReasonAudioValidationError = "audio_validation_error"
	ReasonInvalidDuration      = "invalid_duration_format"
	ReasonDurationTooShort     = "duration_too_short"
	ReasonDurationTooLong      = "duration_too_long"
	ReasonLanguagePathMismatch = "language_path_mismatch"
	ReasonLowTextQuality       = "low_text_quality"
	ReasonTooFewWords          = "too_few_words"
	ReasonTooManyRepeatedWords = "too_many_repeated_words"
	ReasonTextNormalization    = "text_normalization_error"
	ReasonNegativeQualityFlag  = "negative_quality_flag"

	// Prefixes of parameterized reasons.
	AudioReasonPrefix     = "audio_"
	ScriptMismatchPrefix  = "script_mismatch_"
	ProcessingErrorPrefix = "processing_error:"
)

// scriptLeniency is the confidence at or above which an invalid script
// verdict is tolerated.
const scriptLeniency = 0.5
