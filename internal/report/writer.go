package report

import (
	"io"

	"github.com/nao1215/jobguard/internal/model"
)

// Writer defines the interface for report output.
// Implementations write scan results in various formats.
type Writer interface {
	// Write outputs the report of a page scan.
	// Returns the number of bytes written and any error encountered.
	Write(scan *model.PageScan) (int, error)

	// WriteSummary outputs an already summarized scan.
	WriteSummary(summary *model.ScanSummary) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface writes reports,
// not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers, each in its own
// format, so that a full JSON report still carries the scan.
// Stops on first error encountered.
func (m *MultiWriter) Write(scan *model.PageScan) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(scan)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary outputs the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(summary *model.ScanSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
