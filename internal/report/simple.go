package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/jobguard/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and pipes cleanly to
// files or other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to show are printed.
	showEmpty bool

	// verbose prints every flag and the phrase reasons.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the scan in human-readable format.
func (w *SimpleWriter) Write(scan *model.PageScan) (int, error) {
	return w.WriteSummary(Summarize(scan))
}

// WriteSummary outputs the summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *model.ScanSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	if summary.Analyzed() {
		w.writeVerdict(&sb, summary)
		w.writeFlags(&sb, summary)
		w.writePhrases(&sb, summary)
		w.writeAdvice(&sb, summary)
	}
	w.writeFooter(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeSection writes a section title between rules.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.ScanSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          JOBGUARD REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Page:       %s\n", summary.Source)
	if summary.Title != "" {
		fmt.Fprintf(sb, "Title:      %s\n", summary.Title)
	}
	fmt.Fprintf(sb, "Scan Date:  %s\n", summary.DateScanned.Format("2006-01-02 15:04:05 MST"))

	switch {
	case summary.TimedOut:
		sb.WriteString("Status:     TIMED OUT (partial results)\n")
	case summary.Error != "":
		fmt.Fprintf(sb, "Status:     ERROR - %s\n", summary.Error)
	case summary.Skipped:
		sb.WriteString("Status:     SKIPPED (disabled for this site)\n")
	default:
		sb.WriteString("Status:     Complete\n")
	}

	sb.WriteString("\n")
}

// writeVerdict writes the classifier verdict.
func (w *SimpleWriter) writeVerdict(sb *strings.Builder, summary *model.ScanSummary) {
	writeSection(sb, "VERDICT")

	fmt.Fprintf(sb, "  Prediction:   %s\n", summary.Prediction)
	fmt.Fprintf(sb, "  Trust Score:  %d/100 (%s)\n", summary.Score, strings.ToUpper(summary.Verdict))
	fmt.Fprintf(sb, "  Confidence:   %.0f%%\n", summary.Confidence*100)
	if summary.Explanation != "" {
		sb.WriteString("\n")
		fmt.Fprintf(sb, "  %s\n", summary.Explanation)
	}
	if summary.ShouldReport {
		sb.WriteString("\n")
		fmt.Fprintf(sb, "  [!] Consider reporting this posting: jobguard report %s\n", summary.Source)
	}
	sb.WriteString("\n")
}

// writeFlags writes the red flags, the first few unless verbose.
func (w *SimpleWriter) writeFlags(sb *strings.Builder, summary *model.ScanSummary) {
	if len(summary.Flags) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "RED FLAGS")

	if len(summary.Flags) == 0 {
		sb.WriteString("  No red flags\n\n")
		return
	}

	flags := summary.TopFlags()
	if w.verbose {
		flags = summary.Flags
	}
	for _, flag := range flags {
		fmt.Fprintf(sb, "  * %s\n", flag)
	}
	if rest := len(summary.Flags) - len(flags); rest > 0 {
		fmt.Fprintf(sb, "  ... and %d more\n", rest)
	}
	sb.WriteString("\n")
}

// writePhrases writes the markers grouped by risk level.
func (w *SimpleWriter) writePhrases(sb *strings.Builder, summary *model.ScanSummary) {
	if summary.TotalMarkers() == 0 && len(summary.Phrases) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "HIGHLIGHTED PHRASES")

	if h := summary.Highlight; h != nil {
		fmt.Fprintf(sb, "  Requested: %d  Highlighted: %d  Not found: %d  Skipped: %d\n\n",
			h.Requested, h.Highlighted, h.Missed, h.Skipped)
	}

	for _, level := range model.RiskLevels() {
		markers := summary.GetMarkersByRiskLevel(level)
		if len(markers) == 0 && !w.showEmpty {
			continue
		}

		fmt.Fprintf(sb, "[%s] %s\n", riskIndicator(level), riskLabel(level))
		if len(markers) == 0 {
			sb.WriteString("  No phrases\n\n")
			continue
		}
		for _, m := range markers {
			fmt.Fprintf(sb, "  * %q\n", m.Text)
		}
		sb.WriteString("\n")
	}

	if w.verbose {
		for _, p := range summary.Phrases {
			if p.Reason == "" {
				continue
			}
			fmt.Fprintf(sb, "  %q: %s\n", p.Text, p.Reason)
		}
		sb.WriteString("\n")
	}
}

// riskIndicator returns a visual indicator for the risk level.
func riskIndicator(level model.RiskLevel) string {
	switch level {
	case model.RiskHigh:
		return "!!"
	case model.RiskMedium:
		return "!"
	case model.RiskLow:
		return "-"
	default:
		return "?"
	}
}

// writeAdvice writes the safety advice.
func (w *SimpleWriter) writeAdvice(sb *strings.Builder, summary *model.ScanSummary) {
	if len(summary.Advice) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "SAFETY ADVICE")

	if len(summary.Advice) == 0 {
		sb.WriteString("  No advice\n\n")
		return
	}
	for _, advice := range summary.Advice {
		fmt.Fprintf(sb, "  - %s\n", advice)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, summary *model.ScanSummary) {
	if summary.OutputPath != "" {
		fmt.Fprintf(sb, "Highlighted page: %s\n", summary.OutputPath)
	}
	if summary.AnalysisID != "" {
		fmt.Fprintf(sb, "Analysis ID:      %s\n", summary.AnalysisID)
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by JobGuard\n")
	sb.WriteString("https://github.com/nao1215/jobguard\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
