// Package language holds the table of languages speechprep accepts.
package language

import "strings"

// Info describes one supported language.
type Info struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Script string `json:"script"`
}

var supported = map[string]Info{
	"hi": {Code: "hi", Name: "Hindi", Script: "Devanagari"},
	"bn": {Code: "bn", Name: "Bengali", Script: "Bengali"},
	"te": {Code: "te", Name: "Telugu", Script: "Telugu"},
	"ta": {Code: "ta", Name: "Tamil", Script: "Tamil"},
	"ml": {Code: "ml", Name: "Malayalam", Script: "Malayalam"},
	"kn": {Code: "kn", Name: "Kannada", Script: "Kannada"},
	"gu": {Code: "gu", Name: "Gujarati", Script: "Gujarati"},
	"mr": {Code: "mr", Name: "Marathi", Script: "Devanagari"},
	"pa": {Code: "pa", Name: "Punjabi", Script: "Gurmukhi"},
	"ur": {Code: "ur", Name: "Urdu", Script: "Arabic"},
	"en": {Code: "en", Name: "English", Script: "Latin"},
}

// UnknownScript is returned by Script for languages outside the table.
const UnknownScript = "UNKNOWN"

// Canonical lowercases and trims a language code.
func Canonical(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// IsSupported reports whether code names a supported language.
func IsSupported(code string) bool {
	_, ok := supported[Canonical(code)]
	return ok
}

// Lookup returns the table entry for code.
func Lookup(code string) (Info, bool) {
	info, ok := supported[Canonical(code)]
	return info, ok
}

// Script returns the expected writing system for code, or UnknownScript.
func Script(code string) string {
	if info, ok := supported[Canonical(code)]; ok {
		return info.Script
	}
	return UnknownScript
}

// Codes returns the supported codes in a stable order.
func Codes() []string {
	return []string{"hi", "bn", "te", "ta", "ml", "kn", "gu", "mr", "pa", "ur", "en"}
}
