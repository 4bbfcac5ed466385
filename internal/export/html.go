package export

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const htmlHead = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Systrix System Report - %s</title>
    <style>
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: #0f0f17; color: #e0e0e8; margin: 0; padding: 2rem; }
        main { max-width: 1100px; margin: 0 auto; }
        h1 { color: #00d4ff; }
        h2 { color: #00ff9f; border-bottom: 1px solid #3a3a4a; padding-bottom: .3rem; }
        table { border-collapse: collapse; width: 100%%; margin-bottom: 1.5rem; }
        th, td { border: 1px solid #3a3a4a; padding: .35rem .6rem; }
        th { background: #1a1a2e; }
        tr:nth-child(even) td { background: #14141f; }
    </style>
</head>
<body>
<main>
`

const htmlFoot = `</main>
</body>
</html>
`

// HTMLWriter renders the Markdown report to HTML and sanitizes it before
// wrapping it in a standalone page.
type HTMLWriter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTMLWriter creates a writer with GFM tables enabled.
func NewHTMLWriter() *HTMLWriter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3")
	policy.AllowAttrs("style").OnElements("th", "td")

	return &HTMLWriter{md: md, policy: policy}
}

func (*HTMLWriter) Format() Format { return FormatHTML }

func (h *HTMLWriter) Write(w io.Writer, b Bundle) error {
	body, err := h.Body(b)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, htmlHead, html.EscapeString(b.Timestamp)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return err
	}
	_, err = io.WriteString(w, htmlFoot)
	return err
}

// Body is the sanitized report fragment without the page shell.
func (h *HTMLWriter) Body(b Bundle) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(renderMarkdown(b)), &buf); err != nil {
		return "", fmt.Errorf("failed to convert report to HTML: %w", err)
	}
	return h.policy.Sanitize(buf.String()), nil
}
