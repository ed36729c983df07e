package model

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	labelSeparators = regexp.MustCompile(`[_\-.\s]+`)
	slugWhitespace  = regexp.MustCompile(`\s+`)
)

// DefaultLabeler turns an identifier such as "dateOfBirth" or "guardian_name"
// into a display label ("Date Of Birth", "Guardian Name"). Words already in
// upper case (acronyms) are kept as-is.
func DefaultLabeler(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	var words []string
	for _, chunk := range labelSeparators.Split(name, -1) {
		if chunk == "" {
			continue
		}
		for _, word := range splitCamel(chunk) {
			words = append(words, capitalise(word))
		}
	}
	return strings.Join(words, " ")
}

// Slug lower-cases title and replaces whitespace runs with dashes, producing
// names such as "patient-intake-form".
func Slug(title string) string {
	return slugWhitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
}

func splitCamel(input string) []string {
	runes := []rune(input)
	var (
		words []string
		start int
	)
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := (unicode.IsLower(prev) && unicode.IsUpper(cur)) ||
			(unicode.IsLetter(prev) && unicode.IsDigit(cur)) ||
			(unicode.IsDigit(prev) && unicode.IsLetter(cur))
		// "HTTPServer" splits before the last upper-case rune of the run
		if !boundary && i+1 < len(runes) && unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(runes[i+1]) {
			boundary = true
		}
		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

func capitalise(word string) string {
	if word == "" {
		return ""
	}
	if strings.ToUpper(word) == word {
		return word
	}
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
