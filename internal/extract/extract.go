// Package extract pulls the visible posting text out of a parsed page so it
// can be sent to the classifier.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Default extraction limits, in runes.
const (
	DefaultMinLength = 50
	DefaultMaxLength = 5000
)

// ErrNotEnoughText is returned when a page has too little text to analyse.
var ErrNotEnoughText = errors.New("not enough text content to analyze")

// contentElements are the elements whose text makes up a posting.
var contentElements = map[atom.Atom]bool{
	atom.P:    true,
	atom.H1:   true,
	atom.H2:   true,
	atom.H3:   true,
	atom.H4:   true,
	atom.H5:   true,
	atom.H6:   true,
	atom.Li:   true,
	atom.Td:   true,
	atom.Span: true,
	atom.Div:  true,
}

// hiddenElements never contribute text.
var hiddenElements = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Textarea: true,
	atom.Svg:      true,
	atom.Math:     true,
}

// Result is the text extracted from one page.
type Result struct {
	// Title is the trimmed <title> text.
	Title string

	// Text is the space-joined text of the content elements.
	Text string

	// Truncated is true when Text was cut at the maximum length.
	Truncated bool
}

// Extractor collects posting text.
type Extractor struct {
	minLength int
	maxLength int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMinLength sets the minimum text length in runes.
func WithMinLength(n int) Option {
	return func(e *Extractor) {
		e.minLength = n
	}
}

// WithMaxLength sets the maximum text length in runes.
// Zero or a negative value disables truncation.
func WithMaxLength(n int) Option {
	return func(e *Extractor) {
		e.maxLength = n
	}
}

// New creates an Extractor with the default limits.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		minLength: DefaultMinLength,
		maxLength: DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the text of every outermost content element under root,
// each with its whitespace collapsed, joined by single spaces. Nested
// content elements are read as part of their ancestor so no text is counted
// twice.
//
// When the text is shorter than the minimum, the partial Result is returned
// together with an error wrapping ErrNotEnoughText.
func (e *Extractor) Extract(root *html.Node) (Result, error) {
	var result Result
	if root == nil {
		return result, fmt.Errorf("%w: empty document", ErrNotEnoughText)
	}

	result.Title = title(root)

	parts := make([]string, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if hiddenElements[n.DataAtom] || n.Namespace != "" {
				return
			}
			if contentElements[n.DataAtom] {
				if text := collapse(visibleText(n, false)); text != "" {
					parts = append(parts, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	result.Text, result.Truncated = truncate(strings.Join(parts, " "), e.maxLength)

	if length := utf8.RuneCountInString(result.Text); length < e.minLength {
		return result, fmt.Errorf("%w: %d characters, need at least %d", ErrNotEnoughText, length, e.minLength)
	}
	return result, nil
}

// Extract runs a default Extractor.
func Extract(root *html.Node) (Result, error) {
	return New().Extract(root)
}

// title returns the text of the first <title> element.
func title(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		return collapse(visibleText(n, true))
	}
	if n.Namespace != "" {
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := title(c); t != "" {
			return t
		}
	}
	return ""
}

// visibleText concatenates text nodes under n, skipping hidden elements.
// Block boundaries become spaces so adjacent cells do not run together.
func visibleText(n *html.Node, includeHidden bool) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
			return
		case html.ElementNode:
			if !includeHidden && (hiddenElements[c.DataAtom] || c.Namespace != "") {
				return
			}
			if c.DataAtom == atom.Br || (contentElements[c.DataAtom] && c.DataAtom != atom.Span) {
				b.WriteByte(' ')
			}
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to max runes.
func truncate(s string, maxRunes int) (string, bool) {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s, false
	}
	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i], true
		}
		count++
	}
	return s, false
}
