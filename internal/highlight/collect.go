package highlight

import (
	"strings"

	"github.com/nao1215/jobguard/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// nonRenderedElements are containers whose text is never displayed as page
// content, or whose children cannot hold a marker element.
var nonRenderedElements = map[atom.Atom]bool{
	atom.Head:      true,
	atom.Title:     true,
	atom.Script:    true,
	atom.Style:     true,
	atom.Noscript:  true,
	atom.Template:  true,
	atom.Textarea:  true,
	atom.Select:    true,
	atom.Option:    true,
	atom.Optgroup:  true,
	atom.Datalist:  true,
	atom.Iframe:    true,
	atom.Noembed:   true,
	atom.Noframes:  true,
	atom.Xmp:       true,
	atom.Plaintext: true,
	atom.Svg:       true,
	atom.Math:      true,
}

// CollectTextNodes returns every visible text node under root in document
// order. Subtrees of non-rendered containers and of existing markers are
// skipped. Each call walks the tree again and returns an independent
// snapshot; a nil root yields an empty snapshot.
func CollectTextNodes(root *html.Node) []*html.Node {
	nodes := make([]*html.Node, 0)
	if root == nil {
		return nodes
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			nodes = append(nodes, n)
			return
		case html.ElementNode:
			if skipElement(n) {
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return nodes
}

// skipElement reports whether the element's subtree is excluded from
// collection. Foreign (SVG/MathML) content is skipped entirely.
func skipElement(n *html.Node) bool {
	if n.Namespace != "" {
		return true
	}
	return nonRenderedElements[n.DataAtom] || IsMarker(n)
}

// IsMarker reports whether n is a marker element created by Annotate.
func IsMarker(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || n.DataAtom != atom.Span {
		return false
	}
	for _, class := range strings.Fields(getAttr(n, "class")) {
		if class == model.HighlightClass {
			return true
		}
	}
	return false
}
