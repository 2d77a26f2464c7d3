package highlight

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nao1215/jobguard/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StyleElementID is the reserved id of the shared stylesheet element.
// Its presence is what makes style injection idempotent.
const StyleElementID = "job-scam-detector-styles"

var (
	stylesheetOnce sync.Once
	stylesheet     string
)

// Stylesheet returns the CSS text of the shared stylesheet: a base rule for
// every marker plus one rule per risk level. The text is built once per
// process.
func Stylesheet() string {
	stylesheetOnce.Do(func() {
		var b strings.Builder
		fmt.Fprintf(&b, "\n.%s {\n", model.HighlightClass)
		b.WriteString("    padding: 2px 4px;\n")
		b.WriteString("    border-radius: 3px;\n")
		b.WriteString("    font-weight: bold;\n")
		b.WriteString("    cursor: help;\n")
		b.WriteString("}\n")

		for _, level := range model.RiskLevels() {
			info, _ := level.Info()
			fmt.Fprintf(&b, "\n.%s {\n", info.CSSClass)
			fmt.Fprintf(&b, "    background-color: %s;\n", info.Background)
			fmt.Fprintf(&b, "    border-bottom: %s;\n", info.Border)
			b.WriteString("}\n")
		}
		stylesheet = b.String()
	})
	return stylesheet
}

// EnsureStylesInjected appends the shared stylesheet to the document head
// unless an element with StyleElementID already exists. It reports whether
// it inserted the element. Calling it any number of times leaves exactly one
// stylesheet in the document.
func EnsureStylesInjected(doc *Document) bool {
	if doc.Root() == nil {
		return false
	}
	if doc.ElementByID(StyleElementID) != nil {
		return false
	}

	style := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Style,
		Data:     atom.Style.String(),
		Attr:     []html.Attribute{{Key: "id", Val: StyleElementID}},
	}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: Stylesheet()})

	doc.Head().AppendChild(style)
	return true
}
