package docgen

import (
	"regexp"
	"strings"
	"unicode/utf8"

	models "folio/internal/domain/models/docgen"
)

const (
	wordsPerMinute = 200
	wordsPerPage   = 250
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// PlainText strips HTML-like tags, collapses whitespace runs to one space and
// trims. Applying it twice yields the same result as applying it once.
func PlainText(content string) string {
	text := tagPattern.ReplaceAllString(content, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CalculateMetrics derives counts from content. Pure and deterministic.
func CalculateMetrics(content string) models.Metrics {
	text := PlainText(content)
	words := len(strings.Fields(text))

	return models.Metrics{
		WordCount:         words,
		CharacterCount:    utf8.RuneCountInString(text),
		EstimatedReadTime: ceilDiv(words, wordsPerMinute),
		PageCount:         ceilDiv(words, wordsPerPage),
	}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
