package report

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/jobguard/internal/highlight"
	"github.com/nao1215/jobguard/internal/model"
)

// strictPolicy strips every tag. bluemonday policies are safe for
// concurrent use once built.
var strictPolicy = bluemonday.StrictPolicy()

// Summarize builds the summary written by every writer: the scan's verdict,
// the markers found in its highlighted page and classifier strings with
// markup removed.
func Summarize(scan *model.PageScan) *model.ScanSummary {
	summary := model.NewScanSummary(scan, findMarkers(scan.HighlightedHTML))

	summary.Title = clean(summary.Title)
	summary.Explanation = clean(summary.Explanation)
	summary.Flags = cleanAll(summary.Flags)
	summary.Advice = cleanAll(summary.Advice)
	for i := range summary.Phrases {
		summary.Phrases[i].Reason = clean(summary.Phrases[i].Reason)
	}

	return summary
}

// findMarkers parses a highlighted page and lists its markers.
// Pages that fail to parse have no markers.
func findMarkers(page []byte) []model.MarkedPhrase {
	if len(page) == 0 {
		return nil
	}
	doc, err := highlight.Parse(bytes.NewReader(page))
	if err != nil {
		return nil
	}

	found := highlight.FindMarkers(doc.Root())
	markers := make([]model.MarkedPhrase, 0, len(found))
	for _, m := range found {
		markers = append(markers, model.MarkedPhrase{Text: m.Text, RiskLevel: m.RiskLevel})
	}
	return markers
}

// clean removes markup from s and decodes the entities the policy escaped,
// leaving plain text for terminal and Markdown output.
func clean(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// cleanAll applies clean to a copy of ss, dropping entries left empty.
func cleanAll(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if c := clean(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// riskLabel returns the display label of a risk level, e.g. "High".
// A Caser is stateful, so one is created per call.
func riskLabel(level model.RiskLevel) string {
	return cases.Title(language.English).String(level.String())
}

// markedPhrase reports whether a marker covers the phrase.
func markedPhrase(markers []model.MarkedPhrase, phrase model.Phrase) bool {
	for _, m := range markers {
		if strings.EqualFold(m.Text, phrase.Text) {
			return true
		}
	}
	return false
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
