package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmpty(t *testing.T) {
	e := NewEngine(DefaultOptions())
	for _, lang := range []string{"en", "hi", "ta", "xx", ""} {
		for _, text := range []string{"", "   ", "\t\n"} {
			r := e.Normalize(text, lang)
			assert.True(t, r.Empty, "lang=%q text=%q", lang, text)
			assert.Equal(t, "", r.Text)
			assert.Empty(t, r.Operations)
			assert.Equal(t, 0.0, r.ReductionRatio)
		}
	}
}

func TestNormalizeEnglishDash(t *testing.T) {
	r := NewEngine(DefaultOptions()).Normalize("HELLO—world", "en")

	assert.Equal(t, "hello-world", r.Text)
	assert.True(t, r.Applied(OpPunctuationNormalized))
	assert.False(t, r.Applied(OpNumbersExpanded))
	assert.Equal(t, 11, r.OriginalLength)
	assert.Equal(t, 11, r.FinalLength)
	assert.Equal(t, 0.0, r.ReductionRatio)
	assert.Equal(t, 6, r.EditDistance)
}

func TestNormalizeHindiDigits(t *testing.T) {
	r := NewEngine(DefaultOptions()).Normalize("मैं 5 साल", "hi")

	assert.True(t, r.Applied(OpNumbersExpanded))
	// The number word loses its vowel signs in the punctuation strip.
	assert.Equal(t, "म पच सल", r.Text)
	assert.NotContains(t, r.Text, "5")
}

func TestNormalizeStripsVowelSigns(t *testing.T) {
	// भारत की: the aa and ii signs are spacing marks, not word characters.
	r := NewEngine(DefaultOptions()).Normalize("\u092d\u093e\u0930\u0924 \u0915\u0940", "hi")

	assert.Equal(t, "\u092d\u0930\u0924 \u0915", r.Text)
	assert.True(t, r.Applied(OpPunctuationNormalized))
	assert.False(t, r.Applied(OpDiacriticsRemoved))
}

func TestExpandDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5", "पांच"},
		{"कल 23 बजे", "कल दो तीन बजे"},
		{"(0)", "(शून्य)"},
		{"5km", "5km"},
		{"a1", "a1"},
		{"कोई अंक नहीं", "कोई अंक नहीं"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandDigits(tt.in), "input %q", tt.in)
	}
}

func TestNumbersOnlyExpandedForHindiAndMarathi(t *testing.T) {
	e := NewEngine(DefaultOptions())

	en := e.Normalize("I have 5 books", "en")
	assert.Equal(t, "i have 5 books", en.Text)
	assert.False(t, en.Applied(OpNumbersExpanded))

	ta := e.Normalize("வயது 7", "ta")
	assert.Contains(t, ta.Text, "7")

	mr := e.Normalize("वय 7", "MR")
	assert.True(t, mr.Applied(OpNumbersExpanded))
	assert.Equal(t, "वय सत", mr.Text)
}

func TestNormalizeEnglishIsLowercase(t *testing.T) {
	e := NewEngine(DefaultOptions())
	for _, text := range []string{"Straße ÉCOLE", "The QUICK Brown Fox!", "ALL CAPS “QUOTED”"} {
		r := e.Normalize(text, "en")
		assert.Equal(t, strings.ToLower(r.Text), r.Text, "input %q", text)
	}
}

func TestNonEnglishFoldsASCIIOnly(t *testing.T) {
	r := NewEngine(DefaultOptions()).Normalize("नमसत OK \u00dcn\u00ef", "hi")
	assert.True(t, strings.HasPrefix(r.Text, "नमसत ok"))
	assert.Contains(t, r.Text, "\u00dc", "non-ASCII capitals are left alone")
}

func TestNormalizeIdempotent(t *testing.T) {
	e := NewEngine(DefaultOptions())
	cases := []struct {
		text string
		lang string
	}{
		{"Hello, World! It's   fine…", "en"},
		{"“Quoted” text – with dashes", "en"},
		{"नमसत दनय।", "hi"},
		{"  spaced   out  [ ]  ", "bn"},
	}
	for _, c := range cases {
		once := e.Normalize(c.text, c.lang)
		twice := e.Normalize(once.Text, c.lang)
		assert.Equal(t, once.Text, twice.Text, "input %q", c.text)
		assert.Empty(t, twice.Operations, "second pass of %q", c.text)
	}
}

func TestDiacriticsRemoved(t *testing.T) {
	e := NewEngine(DefaultOptions())

	r := e.Normalize("नमस्ते", "hi")
	assert.True(t, r.Applied(OpDiacriticsRemoved))
	assert.Equal(t, "नमसत", r.Text)

	nukta := e.Normalize("\u091c\u093c\u0930\u0942\u0930", "hi")
	assert.True(t, nukta.Applied(OpDiacriticsRemoved))
	assert.Equal(t, "\u091c\u0930\u0930", nukta.Text)
}

func TestUnicodeNFCTag(t *testing.T) {
	e := NewEngine(DefaultOptions())

	r := e.Normalize("cafe\u0301", "en")
	assert.Equal(t, "caf\u00e9", r.Text)
	assert.Equal(t, []string{OpUnicodeNFC}, r.Operations)

	composed := e.Normalize("caf\u00e9", "en")
	assert.Empty(t, composed.Operations)
}

func TestOptionsDisableStages(t *testing.T) {
	opts := DefaultOptions()
	opts.UnicodeNFC = false

	r := NewEngine(opts).Normalize("cafe\u0301", "en")
	assert.Equal(t, "cafe", r.Text)
	assert.Equal(t, []string{OpDiacriticsRemoved}, r.Operations)

	none := NewEngine(Options{}).Normalize("मैं 5 साल — ok", "hi")
	assert.Empty(t, none.Operations)
	assert.Contains(t, none.Text, "5")
	assert.Contains(t, none.Text, "—")
}

func TestUnchangedTextHasNoOperations(t *testing.T) {
	r := NewEngine(DefaultOptions()).Normalize("hello world", "en")
	require.False(t, r.Empty)
	assert.Equal(t, "hello world", r.Text)
	assert.Empty(t, r.Operations)
	assert.Equal(t, 0, r.EditDistance)
}

func TestPunctuationNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"वह गया।", "वह गय."},
		{"‘single’ “double”", `'single' "double"`},
		{"wait…", "wait..."},
		{"a\t  b", "a b"},
		{"price: $5 @home #tag", "price 5 home tag"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePunctuation(tt.in), "input %q", tt.in)
	}
}

func TestFinalCleanup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello   world  ", "hello world"},
		{"hello ( ) world", "hello  world"},
		{"a () b", "a  b"},
		{"[] start {  } end ()", "start  end"},
		{"keep (this)", "keep (this)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, finalCleanup(tt.in), "input %q", tt.in)
	}
}

func TestReductionRatio(t *testing.T) {
	r := NewEngine(DefaultOptions()).Normalize("hi!!! @@@@", "en")
	assert.Equal(t, "hi!!!", r.Text)
	assert.Equal(t, 10, r.OriginalLength)
	assert.Equal(t, 5, r.FinalLength)
	assert.InDelta(t, 0.5, r.ReductionRatio, 1e-9)
}
