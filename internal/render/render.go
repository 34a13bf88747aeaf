// Package render converts a content document to an HTML fragment and runs the
// footnote annotation pass over the resulting tree.
package render

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/sitekit/internal/footnote"
)

// Renderer turns markdown into annotated HTML. Safe for sequential reuse.
type Renderer struct {
	md     goldmark.Markdown
	logger *slog.Logger
}

// New creates a Renderer with GFM, footnotes and frontmatter support.
func New(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			meta.Meta,
			extension.GFM,
			extension.Footnote,
			&footnoteSection{},
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Renderer{md: md, logger: logger}
}

// Result is one rendered document.
type Result struct {
	HTML      []byte
	Footnotes int // list items annotated by the footnote pass
}

// Render converts source (frontmatter included) to an HTML fragment.
func (r *Renderer) Render(source []byte) (*Result, error) {
	var buf bytes.Buffer
	pc := parser.NewContext()
	if err := r.md.Convert(source, &buf, parser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("render: convert: %w", err)
	}
	if _, err := meta.TryGet(pc); err != nil {
		r.logger.Warn("render: frontmatter is not valid YAML", slog.String("error", err.Error()))
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return nil, fmt.Errorf("render: parse HTML: %w", err)
	}

	annotated := 0
	for _, n := range doc.Nodes {
		annotated += footnote.Annotate(n)
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return nil, fmt.Errorf("render: serialize: %w", err)
	}

	return &Result{HTML: []byte(out), Footnotes: annotated}, nil
}
