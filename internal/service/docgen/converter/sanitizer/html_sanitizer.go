package sanitizer

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer reduces uploaded HTML to document structure: headings,
// paragraphs, lists, tables, emphasis and links. Scripts, styles, event
// handlers and unsafe URLs are removed.
//
// Safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer creates a sanitizer for template imports
func NewHTMLSanitizer() *HTMLSanitizer {
	policy := bluemonday.UGCPolicy()
	// Drop the text of these elements too, not just the tags
	policy.SkipElementsContent("script", "style", "iframe", "object")
	policy.RequireNoFollowOnLinks(false)
	return &HTMLSanitizer{policy: policy}
}

// Sanitize returns the safe subset of html
func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
