// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/canvas-export/pkg/types"
)

// Renderer turns a page body into the bytes written to disk.
type Renderer interface {
	Render(body string) ([]byte, error)
}

// RendererFor returns the renderer for format. Unknown formats get the
// verbatim renderer; ExportConfig.Validate rejects them earlier.
func RendererFor(format types.ContentFormat) Renderer {
	if format == types.FormatText {
		return TextRenderer{}
	}
	return HTMLRenderer{}
}

// HTMLRenderer writes the body unchanged.
type HTMLRenderer struct{}

func (HTMLRenderer) Render(body string) ([]byte, error) {
	return []byte(body), nil
}

// TextRenderer extracts the visible text of an HTML body. Block elements
// and <br> become line breaks, table cells are tab separated, and runs of
// blank lines collapse to one.
type TextRenderer struct{}

var (
	skipTags = map[string]bool{"script": true, "style": true, "noscript": true, "head": true, "template": true}

	blockTags = map[string]bool{
		"p": true, "div": true, "li": true, "tr": true, "pre": true, "blockquote": true,
		"table": true, "ul": true, "ol": true, "dl": true, "dt": true, "dd": true,
		"section": true, "article": true, "header": true, "footer": true, "figure": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "hr": true,
	}
)

func (TextRenderer) Render(body string) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	var b strings.Builder
	writeText(doc.Selection, &b)
	return []byte(tidyLines(b.String())), nil
}

func writeText(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		node := c.Get(0)
		switch node.Type {
		case html.TextNode:
			b.WriteString(node.Data)
		case html.ElementNode:
			name := strings.ToLower(node.Data)
			switch {
			case skipTags[name]:
				return
			case name == "br":
				b.WriteString("\n")
				return
			}
			block := blockTags[name]
			if block {
				b.WriteString("\n")
			}
			writeText(c, b)
			switch {
			case block:
				b.WriteString("\n")
			case name == "td" || name == "th":
				b.WriteString("\t")
			}
		case html.DocumentNode:
			writeText(c, b)
		}
	})
}

// tidyLines trims each line and keeps at most one blank line in a row.
func tidyLines(s string) string {
	var out []string
	blank := true
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "\u00a0", " "))
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	text := strings.TrimRight(strings.Join(out, "\n"), "\n")
	if text == "" {
		return ""
	}
	return text + "\n"
}
