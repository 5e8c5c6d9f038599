// Package script estimates the dominant writing system of a transcript and
// checks it against the script its language is expected to use.
package script

import (
	"strings"
	"unicode"

	"github.com/grovetools/speechprep/internal/language"
	"golang.org/x/text/unicode/runenames"
)

// Detected script labels for texts without any letters.
const (
	Empty   = "empty"
	NoAlpha = "no_alpha"
)

const (
	latinThreshold   = 0.7
	defaultThreshold = 0.5
)

// Result is the outcome of one script check.
type Result struct {
	Valid      bool    `json:"valid"`
	Confidence float64 `json:"confidence"`
	// Detected is the majority script name, upper case as in the Unicode
	// character database, or Empty / NoAlpha.
	Detected string `json:"detected_script"`
}

// Classify returns the script proxy for a single rune: the first word of its
// Unicode character name.
func Classify(r rune) string {
	name := runenames.Name(r)
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return language.UnknownScript
	}
	return name
}

// Detect tallies the script of every letter in text and returns the majority
// class with its share of all letters. Ties go to the class seen first.
func Detect(text string) (string, float64) {
	if strings.TrimSpace(text) == "" {
		return Empty, 0
	}

	counts := make(map[string]int)
	var order []string
	total := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		class := Classify(r)
		if _, seen := counts[class]; !seen {
			order = append(order, class)
		}
		counts[class]++
		total++
	}
	if total == 0 {
		return NoAlpha, 0
	}

	best := order[0]
	for _, class := range order[1:] {
		if counts[class] > counts[best] {
			best = class
		}
	}
	return best, float64(counts[best]) / float64(total)
}

// Validate checks that text is written in the script expected for lang.
func Validate(text, lang string) Result {
	detected, confidence := Detect(text)
	if detected == Empty || detected == NoAlpha {
		return Result{Detected: detected}
	}

	res := Result{Confidence: confidence, Detected: detected}
	if language.Canonical(lang) == "en" {
		res.Valid = strings.Contains(detected, "LATIN") && confidence > latinThreshold
		return res
	}

	expected := strings.ToLower(language.Script(lang))
	got := strings.ToLower(detected)
	matches := strings.Contains(expected, got) || strings.Contains(got, expected)
	res.Valid = matches && confidence > defaultThreshold
	return res
}
