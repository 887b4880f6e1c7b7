package converter

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	docgenSvc "folio/internal/domain/services/docgen"
	"folio/internal/service/docgen/converter/sanitizer"
)

var placeholderPattern = regexp.MustCompile(`\{\{[^{}]+\}\}`)

// htmlConverter turns an uploaded HTML template into markdown template content.
// Placeholders are swapped for inert tokens around the conversion, so neither
// the sanitizer nor markdown escaping can alter them.
type htmlConverter struct {
	sanitizer *sanitizer.HTMLSanitizer
	converter *md.Converter
}

// NewHTMLConverter creates a new HTML to markdown converter.
func NewHTMLConverter() docgenSvc.ContentConverter {
	return &htmlConverter{
		sanitizer: sanitizer.NewHTMLSanitizer(),
		converter: md.NewConverter("", true, nil),
	}
}

func (c *htmlConverter) Convert(ctx context.Context, input []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	protected, placeholders := protectPlaceholders(string(input))

	markdown, err := c.converter.ConvertString(c.sanitizer.Sanitize(protected))
	if err != nil {
		return "", fmt.Errorf("convert HTML to markdown: %w", err)
	}

	return restorePlaceholders(markdown, placeholders), nil
}

func (c *htmlConverter) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

func (c *htmlConverter) Name() string {
	return "html"
}

// protectPlaceholders replaces each placeholder with an alphanumeric token.
// The trailing X keeps token 1 from matching inside token 10.
func protectPlaceholders(s string) (string, []string) {
	var found []string
	out := placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
		found = append(found, m)
		return placeholderToken(len(found) - 1)
	})
	return out, found
}

func restorePlaceholders(s string, placeholders []string) string {
	for i, p := range placeholders {
		s = strings.ReplaceAll(s, placeholderToken(i), p)
	}
	return s
}

func placeholderToken(i int) string {
	return "FOLIOVAR" + strconv.Itoa(i) + "X"
}
