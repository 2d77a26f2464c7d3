// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for sharing, with a marker chart
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) so new output formats can be added
// without touching the scan types.
//
// Strings produced by the classifier are scrubbed of markup before they
// reach any writer, see Summarize.
package report
