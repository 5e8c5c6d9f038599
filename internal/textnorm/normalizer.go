// Package textnorm normalizes raw transcripts into training-ready text.
package textnorm

import (
	"strings"
	"unicode/utf8"

	"github.com/grovetools/speechprep/internal/language"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/unicode/norm"
)

// Operation tags reported in Result.Operations.
const (
	OpUnicodeNFC            = "unicode_nfc"
	OpDiacriticsRemoved     = "diacritics_removed"
	OpNumbersExpanded       = "numbers_expanded"
	OpPunctuationNormalized = "punctuation_normalized"
)

// Result is the outcome of normalizing one transcript.
type Result struct {
	Text string `json:"text"`
	// Operations lists the stages that changed the text, in application order.
	Operations []string `json:"operations"`
	// Empty is set when the input was blank; no stage ran.
	Empty          bool    `json:"empty_text,omitempty"`
	OriginalLength int     `json:"original_length"`
	FinalLength    int     `json:"final_length"`
	ReductionRatio float64 `json:"reduction_ratio"`
	// EditDistance is the rune-level Levenshtein distance from input to Text.
	EditDistance int `json:"edit_distance"`
}

// Applied reports whether the stage tagged op changed the text.
func (r Result) Applied(op string) bool {
	for _, o := range r.Operations {
		if o == op {
			return true
		}
	}
	return false
}

// Options selects which optional stages run. Case folding and the final
// cleanup always run.
type Options struct {
	UnicodeNFC           bool
	RemoveDiacritics     bool
	ExpandNumbers        bool
	NormalizePunctuation bool
}

// DefaultOptions enables every stage.
func DefaultOptions() Options {
	return Options{
		UnicodeNFC:           true,
		RemoveDiacritics:     true,
		ExpandNumbers:        true,
		NormalizePunctuation: true,
	}
}

// Engine applies the normalization stages in their fixed order. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an engine running the stages enabled in opts.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Normalize runs the stage pipeline over text for the given language code.
func (e *Engine) Normalize(text, lang string) Result {
	originalLength := utf8.RuneCountInString(text)
	if strings.TrimSpace(text) == "" {
		return Result{
			Operations:     []string{},
			Empty:          true,
			OriginalLength: originalLength,
		}
	}

	lang = language.Canonical(lang)
	ops := make([]string, 0, 4)
	current := text

	apply := func(enabled bool, op string, stage func(string) string) {
		if !enabled {
			return
		}
		next := stage(current)
		if next != current && op != "" {
			ops = append(ops, op)
		}
		current = next
	}

	apply(e.opts.UnicodeNFC, OpUnicodeNFC, norm.NFC.String)
	apply(e.opts.RemoveDiacritics, OpDiacriticsRemoved, stripDiacritics)
	apply(e.opts.ExpandNumbers && expandsNumbers(lang), OpNumbersExpanded, expandDigits)
	apply(true, "", func(s string) string { return foldCase(s, lang) })
	apply(e.opts.NormalizePunctuation, OpPunctuationNormalized, normalizePunctuation)
	current = finalCleanup(current)

	finalLength := utf8.RuneCountInString(current)
	result := Result{
		Text:           current,
		Operations:     ops,
		OriginalLength: originalLength,
		FinalLength:    finalLength,
		EditDistance:   editDistance(text, current),
	}
	if originalLength > 0 {
		result.ReductionRatio = 1 - float64(finalLength)/float64(originalLength)
	}
	return result
}

func editDistance(a, b string) int {
	opts := levenshtein.DefaultOptions
	opts.SubCost = 1
	return levenshtein.DistanceForStrings([]rune(a), []rune(b), opts)
}
