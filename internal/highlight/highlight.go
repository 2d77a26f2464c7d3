package highlight

import (
	"log/slog"
	"strings"

	"github.com/nao1215/jobguard/internal/model"
	"golang.org/x/net/html"
)

// Highlighter marks phrases in documents.
// It holds no per-document state and can be shared, but each Document must
// only be highlighted by one goroutine at a time.
type Highlighter struct {
	// logger reports skipped and missed phrases at debug level.
	logger *slog.Logger
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithLogger sets a custom logger for the highlighter.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Highlighter) {
		h.logger = logger
	}
}

// New creates a Highlighter.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// HighlightPhrases marks the first plain-text occurrence of each phrase in
// the document body, processing phrases in the given order.
//
// The shared stylesheet is injected once at the start, even when phrases is
// empty. For every phrase the text nodes are collected again, because the
// previous annotation replaced nodes of the tree. Malformed phrases are
// skipped and phrases with no occurrence are passed over; neither stops the
// pass. The summary describes what happened, it is not an error report.
func (h *Highlighter) HighlightPhrases(doc *Document, phrases []model.Phrase) model.HighlightSummary {
	summary := model.HighlightSummary{Requested: len(phrases)}
	summary.StyleInjected = EnsureStylesInjected(doc)

	body := doc.Body()
	for i, phrase := range phrases {
		if err := phrase.Validate(); err != nil {
			h.logger.Debug("skipping phrase",
				"index", i,
				"risk_level", phrase.RiskLevel.String(),
				"error", err,
			)
			summary.Skipped++
			continue
		}

		if h.highlightFirst(body, phrase) {
			summary.Highlighted++
			continue
		}

		h.logger.Debug("phrase not found", "phrase", phrase.Text)
		summary.Missed++
	}

	return summary
}

// highlightFirst annotates the first text node under root containing the
// phrase. It reports whether a marker was created.
func (h *Highlighter) highlightFirst(root *html.Node, phrase model.Phrase) bool {
	for _, node := range CollectTextNodes(root) {
		span, ok := Locate(node.Data, phrase.Text)
		if !ok {
			continue
		}
		if err := Annotate(node, span, phrase.RiskLevel); err != nil {
			// Only reachable through a broken snapshot; try the next node.
			h.logger.Warn("annotation failed", "phrase", phrase.Text, "error", err)
			continue
		}
		return true
	}
	return false
}

// HighlightPhrases runs a pass with a default Highlighter.
func HighlightPhrases(doc *Document, phrases []model.Phrase) model.HighlightSummary {
	return New().HighlightPhrases(doc, phrases)
}

// Marker describes a marker element found in a document.
type Marker struct {
	// Text is the highlighted text.
	Text string

	// RiskLevel is derived from the marker's level class.
	RiskLevel model.RiskLevel

	// Title is the tooltip.
	Title string
}

// FindMarkers returns the markers under root in document order.
func FindMarkers(root *html.Node) []Marker {
	markers := make([]Marker, 0)
	if root == nil {
		return markers
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if IsMarker(n) {
			markers = append(markers, Marker{
				Text:      TextContent(n),
				RiskLevel: markerLevel(n),
				Title:     getAttr(n, "title"),
			})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return markers
}

// markerLevel maps a marker's level class back to its RiskLevel.
func markerLevel(n *html.Node) model.RiskLevel {
	classes := strings.Fields(getAttr(n, "class"))
	for _, level := range model.RiskLevels() {
		info, _ := level.Info()
		for _, class := range classes {
			if class == info.CSSClass {
				return level
			}
		}
	}
	return model.RiskUnknown
}
