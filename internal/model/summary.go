package model

import "time"

// MaxSummaryFlags is the number of flags shown in short summaries.
const MaxSummaryFlags = 5

// ScanSummary is a summarized, human-readable view of a PageScan.
// It extracts the verdict and the marked phrases for quick review.
//
// Design decision: We create a separate summary rather than printing parts
// of PageScan because:
// 1. It provides a consistent, curated view for every output format
// 2. It can be serialized to JSON without the raw page markup
// 3. It separates presentation concerns from data collection
type ScanSummary struct {
	// Source is the page URL, or the file path for local pages.
	Source string `json:"source"`

	// Title is the page title.
	Title string `json:"title,omitempty"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// === Verdict ===

	// Prediction is the classifier label. Empty when no analysis ran.
	Prediction string `json:"prediction,omitempty"`

	// Score is the trust score from 0 to 100.
	Score int `json:"score"`

	// Verdict is the display band of the score.
	Verdict string `json:"verdict,omitempty"`

	// Confidence runs from 0 to 1.
	Confidence float64 `json:"confidence"`

	// ShouldReport is true when the posting is suspicious enough to report.
	ShouldReport bool `json:"should_report"`

	// Flags lists the scam indicators, most important first.
	Flags []string `json:"flags,omitempty"`

	// Explanation is the classifier's summary of the verdict.
	Explanation string `json:"explanation,omitempty"`

	// Advice lists safety recommendations.
	Advice []string `json:"advice,omitempty"`

	// === Highlighting ===

	// Phrases are the phrases passed to the highlighter, in order.
	Phrases []Phrase `json:"phrases,omitempty"`

	// Markers are the marked phrases found in the highlighted page.
	Markers []MarkedPhrase `json:"markers,omitempty"`

	// HighCount, MediumCount and LowCount count markers per risk level.
	HighCount   int `json:"high_count"`
	MediumCount int `json:"medium_count"`
	LowCount    int `json:"low_count"`

	// Highlight is the highlighter's own summary.
	Highlight *HighlightSummary `json:"highlight,omitempty"`

	// OutputPath is where the highlighted page was written.
	OutputPath string `json:"output_path,omitempty"`

	// AnalysisID is the history record ID.
	AnalysisID string `json:"analysis_id,omitempty"`

	// === Status ===

	// Skipped indicates the site is disabled in the configuration.
	Skipped bool `json:"skipped,omitempty"`

	// TimedOut indicates the scan was cancelled.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error contains the error message if the scan failed.
	Error string `json:"error,omitempty"`
}

// MarkedPhrase is a marker element found in a highlighted page.
type MarkedPhrase struct {
	// Text is the page text inside the marker, in its original case.
	Text string `json:"text"`

	// RiskLevel is the level of the marker.
	RiskLevel RiskLevel `json:"risk_level"` //nolint:tagliatelle // matches Phrase
}

// NewScanSummary creates a ScanSummary from a PageScan and the markers
// found in its highlighted page.
func NewScanSummary(scan *PageScan, markers []MarkedPhrase) *ScanSummary {
	summary := &ScanSummary{
		Source:      scan.Source(),
		Title:       scan.Title,
		DateScanned: scan.DateScanned,
		Highlight:   scan.Highlight,
		OutputPath:  scan.OutputPath,
		AnalysisID:  scan.AnalysisID,
		Skipped:     scan.Skipped,
		TimedOut:    scan.TimedOut,
		Error:       scan.ErrorMessage,
	}
	if summary.Error == "" && scan.Error != nil {
		summary.Error = scan.Error.Error()
	}

	if r := scan.Result; r != nil {
		summary.Prediction = r.Prediction
		summary.Score = r.Score
		summary.Verdict = r.Verdict().String()
		summary.Confidence = r.Confidence
		summary.ShouldReport = r.ShouldReport()
		summary.Flags = r.Flags
		summary.Explanation = r.Explanation
		summary.Advice = r.Advice
		summary.Phrases = scan.Phrases()
	}

	summary.Markers = markers
	summary.countByRiskLevel()

	return summary
}

// countByRiskLevel counts markers for each level.
func (s *ScanSummary) countByRiskLevel() {
	s.HighCount, s.MediumCount, s.LowCount = 0, 0, 0
	for _, m := range s.Markers {
		switch m.RiskLevel {
		case RiskHigh:
			s.HighCount++
		case RiskMedium:
			s.MediumCount++
		case RiskLow:
			s.LowCount++
		}
	}
}

// Analyzed reports whether the classifier produced a verdict.
func (s *ScanSummary) Analyzed() bool {
	return s.Prediction != ""
}

// TotalMarkers returns the number of markers.
func (s *ScanSummary) TotalMarkers() int {
	return s.HighCount + s.MediumCount + s.LowCount
}

// TopFlags returns at most MaxSummaryFlags flags.
func (s *ScanSummary) TopFlags() []string {
	if len(s.Flags) <= MaxSummaryFlags {
		return s.Flags
	}
	return s.Flags[:MaxSummaryFlags]
}

// GetMarkersByRiskLevel returns the markers of the given level.
func (s *ScanSummary) GetMarkersByRiskLevel(level RiskLevel) []MarkedPhrase {
	var result []MarkedPhrase
	for _, m := range s.Markers {
		if m.RiskLevel == level {
			result = append(result, m)
		}
	}
	return result
}

// Status returns a one-word status of the scan.
func (s *ScanSummary) Status() string {
	switch {
	case s.TimedOut:
		return "timed out"
	case s.Error != "":
		return "error"
	case s.Skipped:
		return "skipped"
	default:
		return "complete"
	}
}
