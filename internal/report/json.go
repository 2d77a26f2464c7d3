package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/jobguard/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because the classifier wire types are already tagged for it
// and the output is small.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact, one document per line.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the scan summary in JSON format.
func (w *JSONWriter) Write(scan *model.PageScan) (int, error) {
	return w.writeJSON(Summarize(scan))
}

// WriteSummary outputs the summary in JSON format.
func (w *JSONWriter) WriteSummary(summary *model.ScanSummary) (int, error) {
	return w.writeJSON(summary)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps a scan with its summary and the tool version.
//
// Design decision: We wrap the scan rather than adding fields to PageScan
// so output-specific metadata stays out of the core data structure.
type JSONReport struct {
	// Version is the jobguard version that generated this report.
	Version string `json:"version"`

	// Scan is the full page scan.
	Scan *model.PageScan `json:"scan"`

	// Summary is the curated view of the scan.
	Summary *model.ScanSummary `json:"summary"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(scan *model.PageScan, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Scan:    scan,
		Summary: Summarize(scan),
	}
}

// FullJSONWriter outputs complete scans with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the jobguard version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the full scan wrapped with metadata.
func (w *FullJSONWriter) Write(scan *model.PageScan) (int, error) {
	return w.writeJSON(NewJSONReport(scan, w.version))
}
