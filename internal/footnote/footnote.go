// Package footnote marks footnote list items in rendered HTML with a CSS class.
//
// The markdown pipeline emits footnotes as
//
//	<section class="footnotes"><ol><li id="fn:1">...</li></ol></section>
//
// without a class on the items themselves. Annotate adds ItemClass to every
// such li so stylesheets can target them.
package footnote

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// ItemClass is appended to qualifying list items.
const ItemClass = "footnote-item"

const containerMarker = "footnotes"

// Annotate walks the tree under root and adds ItemClass to every li that has
// an ol ancestor and a section ancestor whose class mentions "footnotes".
// Running it again changes nothing. It returns the number of items modified.
func Annotate(root *html.Node) int {
	if root == nil {
		return 0
	}
	changed := 0
	walk(root, nil, func(n *html.Node, ancestors []*html.Node) {
		if n.Data != "li" || !isFootnoteItem(ancestors) {
			return
		}
		if AddClass(n, ItemClass) {
			changed++
		}
	})
	return changed
}

// walk visits every element below n depth-first, passing the chain of
// ancestors from the root down to the parent.
func walk(n *html.Node, ancestors []*html.Node, visit func(*html.Node, []*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n, ancestors)
	}
	ancestors = append(ancestors, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, ancestors, visit)
	}
}

func isFootnoteItem(ancestors []*html.Node) bool {
	var inSection, inList bool
	for i := len(ancestors) - 1; i >= 0; i-- {
		a := ancestors[i]
		if a.Type != html.ElementNode {
			continue
		}
		switch a.Data {
		case "ol":
			inList = true
		case "section":
			if !inSection && hasClassContaining(a, containerMarker) {
				inSection = true
			}
		}
		if inSection && inList {
			return true
		}
	}
	return false
}

func hasClassContaining(n *html.Node, marker string) bool {
	for _, c := range ClassList(n) {
		if strings.Contains(c, marker) {
			return true
		}
	}
	return false
}

// ClassList returns the node's classes in document order. A missing class
// attribute yields an empty list.
func ClassList(n *html.Node) []string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}

// SetClassList replaces the class attribute with classes joined by spaces,
// adding the attribute when it is missing.
func SetClassList(n *html.Node, classes []string) {
	val := strings.Join(classes, " ")
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: val})
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(ClassList(n), class)
}

// AddClass appends class unless already present and reports whether the
// node changed.
func AddClass(n *html.Node, class string) bool {
	if hasClass(n, class) {
		return false
	}
	SetClassList(n, append(ClassList(n), class))
	return true
}
