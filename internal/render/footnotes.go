package render

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// footnoteSection wraps the footnote list in a section element instead of
// goldmark's default div, so the annotation pass can find it.
type footnoteSection struct{}

func (e *footnoteSection) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			// Lower values win; the footnote extension registers its list renderer at 500.
			util.Prioritized(&footnoteSectionRenderer{}, 499),
		),
	)
}

type footnoteSectionRenderer struct{}

func (r *footnoteSectionRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(extast.KindFootnoteList, r.renderFootnoteList)
}

func (r *footnoteSectionRenderer) renderFootnoteList(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<section class="footnotes" data-footnotes role="doc-endnotes">` + "\n")
		_, _ = w.WriteString("<hr>\n<ol>\n")
	} else {
		_, _ = w.WriteString("</ol>\n</section>\n")
	}
	return ast.WalkContinue, nil
}
