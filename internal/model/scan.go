package model

import "time"

// HighlightSummary records what the highlighter did on one page.
type HighlightSummary struct {
	// Requested is the number of phrases passed to the highlighter.
	Requested int `json:"requested"`

	// Highlighted is the number of phrases that produced a marker.
	Highlighted int `json:"highlighted"`

	// Missed is the number of valid phrases with no plain-text occurrence.
	Missed int `json:"missed"`

	// Skipped is the number of malformed phrases that were ignored.
	Skipped int `json:"skipped"`

	// StyleInjected is true when this pass inserted the shared stylesheet.
	StyleInjected bool `json:"style_injected"`
}

// PageScan is the result of scanning a single job posting page.
// It accumulates the output of each pipeline step.
//
// Design decision: Like the report struct of a scan, a PageScan is passed
// by pointer through the pipeline and every step fills in its own fields.
// Failures are recorded on the scan so batch runs can continue.
type PageScan struct {
	// Target is the URL or file path given by the user.
	Target string `json:"target"`

	// URL is the resolved page URL. Empty for local files.
	URL string `json:"url,omitempty"`

	// DateScanned is when the scan started.
	DateScanned time.Time `json:"date_scanned"`

	// Title is the page title.
	Title string `json:"title,omitempty"`

	// HTML is the raw page markup as loaded.
	HTML []byte `json:"-"`

	// Text is the extracted visible text sent to the classifier.
	Text string `json:"text,omitempty"`

	// TextTruncated is true when Text was cut at the configured maximum.
	TextTruncated bool `json:"text_truncated,omitempty"`

	// Result is the classifier verdict.
	Result *AnalysisResult `json:"result,omitempty"`

	// ExtraPhrases are phrases configured for the site in the config file.
	// They are highlighted after the classifier's phrases.
	ExtraPhrases []Phrase `json:"extra_phrases,omitempty"`

	// Highlight summarises the in-page highlighting pass.
	Highlight *HighlightSummary `json:"highlight,omitempty"`

	// HighlightedHTML is the rendered page with markers.
	HighlightedHTML []byte `json:"-"`

	// OutputPath is where HighlightedHTML was written, if anywhere.
	OutputPath string `json:"output_path,omitempty"`

	// AnalysisID is the history record ID when the scan was persisted.
	AnalysisID string `json:"analysis_id,omitempty"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Skipped is true when site configuration disabled the scan.
	Skipped bool `json:"skipped,omitempty"`

	// TimedOut is true when the scan was cancelled before finishing.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error is the error that stopped the scan, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as text, for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewPageScan creates a PageScan for the given target.
func NewPageScan(target string) *PageScan {
	return &PageScan{
		Target:         target,
		DateScanned:    time.Now(),
		PerformedSteps: make([]string, 0),
	}
}

// Phrases returns the valid classifier phrases followed by the extras.
// Malformed classifier entries are left out of reports.
func (s *PageScan) Phrases() []Phrase {
	phrases := make([]Phrase, 0, len(s.ExtraPhrases)+MaxHighlightedPhrases)
	phrases = append(phrases, ValidPhrases(s.Result.Phrases())...)
	phrases = append(phrases, s.ExtraPhrases...)
	return phrases
}

// Failed reports whether the scan stopped on an error.
func (s *PageScan) Failed() bool {
	return s.Error != nil || s.ErrorMessage != ""
}

// Source returns the URL if known, otherwise the target.
func (s *PageScan) Source() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Target
}
