package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/jobguard/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation, which gives us tables, GitHub alerts and mermaid charts
// without string templating.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the scan in Markdown format.
func (w *MarkdownWriter) Write(scan *model.PageScan) (int, error) {
	return w.WriteSummary(Summarize(scan))
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.ScanSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	if summary.Analyzed() {
		w.writeVerdict(md, summary)
		w.writeFlags(md, summary)
		w.writePhrases(md, summary)
		w.writeAdvice(md, summary)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H1("JobGuard Report")
	md.PlainText("")

	rows := [][]string{
		{"Page", "`" + summary.Source + "`"},
	}
	if summary.Title != "" {
		rows = append(rows, []string{"Title", summary.Title})
	}
	rows = append(rows,
		[]string{"Scan Date", summary.DateScanned.Format("2006-01-02 15:04:05 MST")},
		[]string{"Status", w.getStatusText(summary)},
	)
	if summary.OutputPath != "" {
		rows = append(rows, []string{"Highlighted Page", "`" + summary.OutputPath + "`"})
	}
	if summary.AnalysisID != "" {
		rows = append(rows, []string{"Analysis ID", "`" + summary.AnalysisID + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on scan state.
func (w *MarkdownWriter) getStatusText(summary *model.ScanSummary) string {
	switch {
	case summary.TimedOut:
		return "⚠️ Timed Out (partial results)"
	case summary.Error != "":
		return "❌ Error - " + summary.Error
	case summary.Skipped:
		return "⏭️ Skipped (disabled for this site)"
	default:
		return "✅ Complete"
	}
}

// writeVerdict writes the classifier verdict and an alert for its band.
func (w *MarkdownWriter) writeVerdict(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H2("Verdict")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Prediction", "Trust Score", "Confidence"},
		Rows: [][]string{
			{
				summary.Prediction,
				verdictEmoji(summary.Verdict) + " " + strconv.Itoa(summary.Score) + "/100",
				fmt.Sprintf("%.0f%%", summary.Confidence*100),
			},
		},
	})
	md.PlainText("")

	if summary.Explanation != "" {
		md.PlainText(summary.Explanation)
		md.PlainText("")
	}

	w.writeAlert(md, summary)
}

// verdictEmoji returns the marker of a verdict band.
func verdictEmoji(verdict string) string {
	switch verdict {
	case model.VerdictSafe.String():
		return "🟢"
	case model.VerdictWarning.String():
		return "🟡"
	default:
		return "🔴"
	}
}

// writeAlert writes an alert matching the verdict band.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.ScanSummary) {
	switch summary.Verdict {
	case model.VerdictDanger.String():
		md.Cautionf(
			"This posting shows strong signs of a job scam (trust score %d/100). Do not pay any fee or share personal data.",
			summary.Score,
		)
	case model.VerdictWarning.String():
		md.Warningf(
			"This posting looks suspicious (trust score %d/100). Verify the employer through official channels.",
			summary.Score,
		)
	default:
		md.Tip("No significant scam indicators detected.")
	}
	md.PlainText("")

	if summary.ShouldReport {
		md.Note(fmt.Sprintf("Report this posting with `jobguard report %s`.", summary.Source))
		md.PlainText("")
	}
}

// writeFlags writes the red flags.
func (w *MarkdownWriter) writeFlags(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H2("Red Flags")
	md.PlainText("")

	if len(summary.Flags) == 0 {
		md.PlainText("No red flags detected.")
		md.PlainText("")
		return
	}

	md.BulletList(summary.Flags...)
	md.PlainText("")
}

// writePhrases writes the marker chart and the phrase table.
func (w *MarkdownWriter) writePhrases(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H2("Highlighted Phrases")
	md.PlainText("")

	if len(summary.Phrases) == 0 {
		md.PlainText("No phrases were flagged.")
		md.PlainText("")
		return
	}

	if summary.TotalMarkers() > 0 {
		w.writePieChart(md, summary)
	}

	rows := make([][]string, 0, len(summary.Phrases))
	for _, p := range summary.Phrases {
		marked := "-"
		if markedPhrase(summary.Markers, p) {
			marked = "✔"
		}
		reason := p.Reason
		if reason == "" {
			reason = "-"
		}
		rows = append(rows, []string{
			truncateString(p.Text, 50),
			riskLabel(p.RiskLevel),
			truncateString(reason, 60),
			marked,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Phrase", "Risk", "Reason", "On Page"},
		Rows:   rows,
	})
	md.PlainText("")

	if h := summary.Highlight; h != nil && (h.Missed > 0 || h.Skipped > 0) {
		md.Details("Highlighting details", fmt.Sprintf(
			"%d of %d phrases were marked. %d were not found as plain text and %d were malformed.",
			h.Highlighted, h.Requested, h.Missed, h.Skipped,
		))
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart of markers per risk level.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.ScanSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Highlighted Phrases by Risk Level"),
		piechart.WithShowData(true),
	)

	counts := map[model.RiskLevel]int{
		model.RiskHigh:   summary.HighCount,
		model.RiskMedium: summary.MediumCount,
		model.RiskLow:    summary.LowCount,
	}
	for _, level := range model.RiskLevels() {
		if counts[level] > 0 {
			chart.LabelAndIntValue(riskLabel(level), uint64(counts[level]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAdvice writes the safety advice.
func (w *MarkdownWriter) writeAdvice(md *markdown.Markdown, summary *model.ScanSummary) {
	if len(summary.Advice) == 0 {
		return
	}

	md.H2("Safety Advice")
	md.PlainText("")
	md.BulletList(summary.Advice...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [JobGuard](https://github.com/nao1215/jobguard)*")
}
