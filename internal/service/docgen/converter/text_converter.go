package converter

import (
	"context"
	"strings"
	"unicode/utf8"

	docgenSvc "folio/internal/domain/services/docgen"
)

// passthroughConverter accepts formats that are already valid template
// content: markdown and plain text
type passthroughConverter struct {
	name       string
	extensions []string
}

// NewMarkdownConverter creates a converter for markdown files.
func NewMarkdownConverter() docgenSvc.ContentConverter {
	return &passthroughConverter{name: "markdown", extensions: []string{".md", ".markdown"}}
}

// NewTextConverter creates a converter for plain text files.
func NewTextConverter() docgenSvc.ContentConverter {
	return &passthroughConverter{name: "plaintext", extensions: []string{".txt", ".text"}}
}

// Convert normalizes line endings and drops a UTF-8 byte order mark.
func (c *passthroughConverter) Convert(ctx context.Context, input []byte) (string, error) {
	if !utf8.Valid(input) {
		return "", errInvalidEncoding
	}
	text := strings.TrimPrefix(string(input), "\uFEFF")
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}

func (c *passthroughConverter) SupportedExtensions() []string {
	return c.extensions
}

func (c *passthroughConverter) Name() string {
	return c.name
}
