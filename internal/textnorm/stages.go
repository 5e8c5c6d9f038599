package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	textlang "golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Nukta signs of Devanagari, Bengali, Gurmukhi, Gujarati, Oriya and Telugu,
// plus the generic combining diacritics block.
var nuktaPattern = regexp.MustCompile(`[\x{0300}-\x{036F}\x{093C}\x{09BC}\x{0A3C}\x{0ABC}\x{0B3C}\x{0C3C}]`)

var punctuationRules = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`[\x{0964}\x{0965}]`), "."},         // danda, double danda
	{regexp.MustCompile(`[\x{2018}\x{2019}\x{201B}]`), "'"}, // curly single quotes
	{regexp.MustCompile(`[\x{201C}\x{201D}\x{201E}]`), `"`}, // curly double quotes
	{regexp.MustCompile(`[\x{2013}\x{2014}]`), "-"},         // en dash, em dash
	{regexp.MustCompile(`\x{2026}`), "..."},                 // ellipsis
}

var emptyPairs = regexp.MustCompile(`\(\s*\)|\[\s*\]|\{\s*\}`)

// digitWords is the Hindi number word for each ASCII digit; Marathi shares it.
var digitWords = map[rune]string{
	'0': "शून्य",
	'1': "एक",
	'2': "दो",
	'3': "तीन",
	'4': "चार",
	'5': "पांच",
	'6': "छह",
	'7': "सात",
	'8': "आठ",
	'9': "नौ",
}

func expandsNumbers(lang string) bool {
	return lang == "hi" || lang == "mr"
}

func stripDiacritics(s string) string {
	s = nuktaPattern.ReplaceAllString(s, "")
	out, _, err := transform.String(runes.Remove(runes.In(unicode.Mn)), s)
	if err != nil {
		return s
	}
	return out
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isWordRune reports letters, numbers and '_'. Combining and spacing marks,
// Indic vowel signs included, are not word characters.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

// expandDigits replaces every free-standing run of ASCII digits with the
// number words of its digits, one word per digit.
func expandDigits(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(rs); {
		if !isASCIIDigit(rs[i]) {
			b.WriteRune(rs[i])
			i++
			continue
		}

		j := i
		for j < len(rs) && isASCIIDigit(rs[j]) {
			j++
		}
		leftEdge := i == 0 || !isWordRune(rs[i-1])
		rightEdge := j == len(rs) || !isWordRune(rs[j])
		if !leftEdge || !rightEdge {
			b.WriteString(string(rs[i:j]))
			i = j
			continue
		}

		for k := i; k < j; k++ {
			if k > i {
				b.WriteByte(' ')
			}
			b.WriteString(digitWords[rs[k]])
		}
		i = j
	}
	return b.String()
}

// foldCase lowercases English fully; other languages only fold ASCII A-Z.
func foldCase(s, lang string) string {
	if lang == "en" {
		return cases.Lower(textlang.English).String(s)
	}
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

func normalizePunctuation(s string) string {
	for _, rule := range punctuationRules {
		s = rule.pattern.ReplaceAllString(s, rule.replacement)
	}
	s = collapseSpace(s)
	return strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) || strings.ContainsRune(`.,!?-'"`, r) {
			return r
		}
		return -1
	}, s)
}

// collapseSpace replaces each run of Unicode whitespace with a single space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// finalCleanup collapses whitespace before dropping empty bracket pairs, so
// the spaces around a dropped pair both remain.
func finalCleanup(s string) string {
	s = collapseSpace(strings.TrimSpace(s))
	s = emptyPairs.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
