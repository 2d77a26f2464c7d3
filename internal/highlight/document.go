package highlight

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document wraps the root of a parsed HTML tree.
//
// Design decision: We keep the *html.Node tree from golang.org/x/net/html as
// the document model instead of building our own arena because:
//  1. The parser already produces a correct tree for malformed real-world HTML
//  2. Node pointers give stable identities and sibling links give order
//  3. html.Render serializes the annotated tree back without extra code
type Document struct {
	root *html.Node
}

// Parse reads an HTML document. The HTML5 parser always produces html, head
// and body elements, even for fragments.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// NewDocument wraps an existing tree. A nil root gives an empty document on
// which every operation is a no-op.
func NewDocument(root *html.Node) *Document {
	return &Document{root: root}
}

// Root returns the root node of the tree.
func (d *Document) Root() *html.Node {
	if d == nil {
		return nil
	}
	return d.root
}

// Body returns the <body> element, or the root when the tree has no body
// (for example a bare fragment built by hand). It returns nil for an empty
// document.
func (d *Document) Body() *html.Node {
	root := d.Root()
	if root == nil {
		return nil
	}
	if body := findElement(root, atom.Body); body != nil {
		return body
	}
	return root
}

// Head returns the <head> element, creating it when missing.
// It returns nil for an empty document.
func (d *Document) Head() *html.Node {
	root := d.Root()
	if root == nil {
		return nil
	}
	if head := findElement(root, atom.Head); head != nil {
		return head
	}

	head := &html.Node{Type: html.ElementNode, DataAtom: atom.Head, Data: atom.Head.String()}
	parent := findElement(root, atom.Html)
	if parent == nil {
		parent = root
	}
	parent.InsertBefore(head, parent.FirstChild)
	return head
}

// ElementByID returns the first element whose id attribute equals id.
func (d *Document) ElementByID(id string) *html.Node {
	root := d.Root()
	if root == nil || id == "" {
		return nil
	}

	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && getAttr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return found
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	root := d.Root()
	if root == nil {
		return nil
	}
	return html.Render(w, root)
}

// TextContent returns the concatenated data of every text node under n,
// in document order, including text inside markers.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}

	var b []byte
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b = append(b, c.Data...)
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	return string(b)
}

// findElement returns the first element with the given atom in document order.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
