package highlight

import (
	"github.com/nao1215/jobguard/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Annotate replaces node with up to three siblings: the text before the
// match, a marker element wrapping the match, and the text after it. Empty
// prefix or suffix nodes are omitted. The original node is removed last,
// and the replacement siblings hold exactly the original text.
//
// All preconditions are checked before the tree is touched. After a
// successful call node is detached and must not be reused.
func Annotate(node *html.Node, span MatchSpan, level model.RiskLevel) error {
	if node == nil || node.Type != html.TextNode {
		return ErrNotTextNode
	}
	parent := node.Parent
	if parent == nil {
		return ErrDetachedNode
	}
	if span.Start < 0 || span.Length <= 0 || span.End() > len(node.Data) {
		return ErrInvalidSpan
	}
	if !level.Valid() {
		return ErrUnknownRiskLevel
	}

	text := node.Data
	prefix := text[:span.Start]
	match := text[span.Start:span.End()]
	suffix := text[span.End():]

	if prefix != "" {
		parent.InsertBefore(newTextNode(prefix), node)
	}
	parent.InsertBefore(NewMarker(match, level), node)
	if suffix != "" {
		parent.InsertBefore(newTextNode(suffix), node)
	}
	parent.RemoveChild(node)

	return nil
}

// NewMarker builds a detached marker element for text at the given level:
//
//	<span class="job-scam-highlight job-scam-high" title="Scam indicator (high risk)">text</span>
//
// Unknown levels produce a marker with only the shared class.
func NewMarker(text string, level model.RiskLevel) *html.Node {
	class := model.HighlightClass
	title := "Scam indicator"
	if info, ok := level.Info(); ok {
		class += " " + info.CSSClass
		title = info.Tooltip
	}

	marker := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     atom.Span.String(),
		Attr: []html.Attribute{
			{Key: "class", Val: class},
			{Key: "title", Val: title},
		},
	}
	marker.AppendChild(newTextNode(text))
	return marker
}

func newTextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
