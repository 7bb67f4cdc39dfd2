// Package markdown wraps the goldmark converter used for all body rendering.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// converter is shared; goldmark.Markdown is safe for concurrent use.
var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		// Resolved include fragments splice raw HTML into the body before
		// conversion, so raw HTML must pass through.
		gmhtml.WithUnsafe(),
	),
)

// ToHTML converts a Markdown body (front matter already removed) to HTML.
func ToHTML(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := converter.Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
