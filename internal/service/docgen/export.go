package docgen

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

var (
	boldPattern       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern     = regexp.MustCompile(`\*([^*\s][^*]*)\*`)
	filenameStrip     = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	filenameSeparator = regexp.MustCompile(`\s+`)
	timestampReplacer = strings.NewReplacer(":", "-", ".", "-")

	// exportPolicy keeps formatting markup from templates (tables, signature
	// blocks) and drops scripts, handlers and unsafe URLs. Safe for concurrent use.
	exportPolicy = newExportPolicy()

	printShell = template.Must(template.New("export").Parse(printShellHTML))
)

func newExportPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()
	return policy
}

type printPage struct {
	Title string
	Body  template.HTML
	Print bool
}

// ToHTML renders content as a styled, print-ready HTML page.
// Markdown-like syntax is converted on a best-effort basis (headings, bold,
// italic, dash lists, paragraphs); embedded HTML passes through sanitized.
func ToHTML(content, title string) string {
	return renderPage(content, title, false)
}

// ToPrintableHTML is ToHTML plus a script that opens the browser's print
// dialog, which is how documents are exported to PDF
func ToPrintableHTML(content, title string) string {
	return renderPage(content, title, true)
}

// ToText strips tags and collapses whitespace
func ToText(content string) string {
	return PlainText(content)
}

// Filename builds a download name: characters other than letters, digits,
// spaces and hyphens are dropped, whitespace runs become hyphens, and a
// timestamp suffix plus extension is appended
func Filename(name, extension string, now time.Time) string {
	base := filenameStrip.ReplaceAllString(name, "")
	base = filenameSeparator.ReplaceAllString(strings.TrimSpace(base), "-")
	if base == "" {
		base = "document"
	}

	stamp := timestampReplacer.Replace(now.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	return base + "-" + stamp + "." + strings.TrimPrefix(extension, ".")
}

func renderPage(content, title string, print bool) string {
	body := exportPolicy.Sanitize(markdownToHTML(content))

	var buf bytes.Buffer
	// Execute only fails on writer errors, which bytes.Buffer never returns
	_ = printShell.Execute(&buf, printPage{
		Title: title,
		Body:  template.HTML(body),
		Print: print,
	})
	return buf.String()
}

// markdownToHTML is a single pass over the lines of content
func markdownToHTML(content string) string {
	var b strings.Builder
	var paragraph []string
	inList := false

	flushParagraph := func() {
		if len(paragraph) > 0 {
			b.WriteString("<p>" + strings.Join(paragraph, "<br>") + "</p>\n")
			paragraph = nil
		}
	}
	closeList := func() {
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flushParagraph()
			closeList()
		case strings.HasPrefix(trimmed, "### "):
			flushParagraph()
			closeList()
			b.WriteString("<h3>" + inlineMarkup(trimmed[4:]) + "</h3>\n")
		case strings.HasPrefix(trimmed, "## "):
			flushParagraph()
			closeList()
			b.WriteString("<h2>" + inlineMarkup(trimmed[3:]) + "</h2>\n")
		case strings.HasPrefix(trimmed, "# "):
			flushParagraph()
			closeList()
			b.WriteString("<h1>" + inlineMarkup(trimmed[2:]) + "</h1>\n")
		case strings.HasPrefix(trimmed, "- "):
			flushParagraph()
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			b.WriteString("<li>" + inlineMarkup(trimmed[2:]) + "</li>\n")
		case strings.HasPrefix(trimmed, "<"):
			// Raw HTML block line
			flushParagraph()
			closeList()
			b.WriteString(trimmed + "\n")
		default:
			closeList()
			paragraph = append(paragraph, inlineMarkup(trimmed))
		}
	}
	flushParagraph()
	closeList()

	return b.String()
}

func inlineMarkup(s string) string {
	s = boldPattern.ReplaceAllString(s, "<strong>$1</strong>")
	return italicPattern.ReplaceAllString(s, "<em>$1</em>")
}

const printShellHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  @page { size: A4; margin: 2.5cm 2cm; }
  body { font-family: Georgia, "Times New Roman", serif; font-size: 12pt; line-height: 1.6; color: #222; max-width: 800px; margin: 0 auto; padding: 2rem; }
  header { border-bottom: 2px solid #333; margin-bottom: 2rem; padding-bottom: 0.5rem; }
  header h1 { margin: 0; font-size: 20pt; }
  footer { border-top: 1px solid #ccc; margin-top: 3rem; padding-top: 0.5rem; font-size: 9pt; color: #777; text-align: center; }
  h1, h2, h3 { font-weight: bold; page-break-after: avoid; }
  h1 { font-size: 18pt; } h2 { font-size: 15pt; } h3 { font-size: 13pt; }
  p { margin: 0 0 1em; }
  ul { margin: 0 0 1em 1.5em; }
  table { width: 100%; border-collapse: collapse; margin: 1em 0; }
  th, td { border: 1px solid #999; padding: 6px 8px; text-align: left; }
  th { background: #f2f2f2; }
  .signature-block { margin-top: 4rem; display: flex; justify-content: space-between; page-break-inside: avoid; }
  .signature-line { border-top: 1px solid #333; width: 40%; padding-top: 0.3rem; }
  @media print { body { padding: 0; } }
</style>
</head>
<body>
<header><h1>{{.Title}}</h1></header>
<main>
{{.Body}}
</main>
<footer>{{.Title}}</footer>
{{if .Print}}<script>window.onload = function () { window.print(); };</script>{{end}}
</body>
</html>
`
