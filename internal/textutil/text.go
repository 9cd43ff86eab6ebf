package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokensPerRune approximates how many model tokens one character of
// ideographic text costs.
const tokensPerRune = 0.7

var (
	excessBlankLines = regexp.MustCompile(`\n{3,}`)
	fenceClose       = regexp.MustCompile("```\\n?")
)

// EstimateTokens returns the deterministic token estimate used when no live
// counter is available.
func EstimateTokens(text string) int {
	return int(float64(utf8.RuneCountInString(text)) * tokensPerRune)
}

// StripCodeFences removes every ```lang and ``` fence marker (with an optional
// trailing newline) the model may have wrapped around its answer.
func StripCodeFences(text, lang string) string {
	if lang != "" {
		text = regexp.MustCompile("```"+regexp.QuoteMeta(lang)+"\\n?").ReplaceAllString(text, "")
	}
	return fenceClose.ReplaceAllString(text, "")
}

// CollapseBlankLines reduces runs of three or more newlines to a single blank line.
func CollapseBlankLines(text string) string {
	return excessBlankLines.ReplaceAllString(text, "\n\n")
}

// CountNonSpace counts characters that are neither spaces nor newlines.
func CountNonSpace(text string) int {
	count := 0
	for _, r := range text {
		if r == ' ' || r == '\n' {
			continue
		}
		count++
	}
	return count
}

// Snippet flattens whitespace and truncates text to limit runes for log output.
func Snippet(text string, limit int) string {
	clean := strings.Join(strings.FieldsFunc(text, unicode.IsSpace), " ")
	if clean == "" {
		return "<empty>"
	}
	runes := []rune(clean)
	if limit > 0 && len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
