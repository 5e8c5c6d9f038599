// Package quality computes lexical metrics and a bounded usability score for
// normalized transcripts.
package quality

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Score penalties. Each applies at most once and they multiply together.
const (
	repetitionPenalty = 0.3
	fewWordsPenalty   = 0.5
	shortWordsPenalty = 0.7

	repetitionLimit = 0.7
	fewWordsLimit   = 3
	shortWordLimit  = 2.0
)

// Metrics describes one transcript.
type Metrics struct {
	QualityScore      float64 `json:"quality_score"`
	WordCount         int     `json:"word_count"`
	CharCount         int     `json:"char_count"`
	AvgWordLength     float64 `json:"avg_word_length"`
	RepeatedWordRatio float64 `json:"repeated_word_ratio"`
	PunctuationRatio  float64 `json:"punctuation_ratio"`
}

// degenerate is returned for blank input.
var degenerate = Metrics{RepeatedWordRatio: 1.0}

// Score computes the metrics of text. Words are whitespace separated and
// lengths are counted in runes.
func Score(text string) Metrics {
	if strings.TrimSpace(text) == "" {
		return degenerate
	}

	words := strings.Fields(text)
	unique := make(map[string]struct{}, len(words))
	letters := 0
	for _, w := range words {
		unique[w] = struct{}{}
		letters += utf8.RuneCountInString(w)
	}

	chars, punct := 0, 0
	for _, r := range text {
		chars++
		if !isAlnum(r) && !unicode.IsSpace(r) {
			punct++
		}
	}

	m := Metrics{
		WordCount:         len(words),
		CharCount:         chars,
		AvgWordLength:     float64(letters) / float64(len(words)),
		RepeatedWordRatio: float64(len(words)-len(unique)) / float64(len(words)),
		PunctuationRatio:  float64(punct) / float64(chars),
	}

	score := 1.0
	if m.RepeatedWordRatio > repetitionLimit {
		score *= repetitionPenalty
	}
	if m.WordCount < fewWordsLimit {
		score *= fewWordsPenalty
	}
	if m.AvgWordLength < shortWordLimit {
		score *= shortWordsPenalty
	}
	m.QualityScore = score
	return m
}

// isAlnum reports letters and numbers. Marks count as punctuation.
func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
