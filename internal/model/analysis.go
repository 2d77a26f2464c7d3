package model

// Prediction labels returned by the classifier.
const (
	PredictionHighRisk   = "High Risk Scam"
	PredictionSuspicious = "Suspicious"
	PredictionLegitimate = "Likely Legitimate"
)

// Trust score thresholds. The score runs from 0 to 100, higher is safer.
const (
	// TrustScoreSafe is the lowest score displayed as safe.
	TrustScoreSafe = 70

	// TrustScoreWarning is the lowest score displayed as a warning.
	// Anything below is displayed as dangerous.
	TrustScoreWarning = 40
)

// MaxHighlightedPhrases is the maximum number of phrases the classifier
// returns per analysis. Longer lists are truncated on receipt.
const MaxHighlightedPhrases = 10

// AnalysisRequest is the payload of POST /analyze.
type AnalysisRequest struct {
	// Text is the visible page text, already truncated by the extractor.
	Text string `json:"text"`

	// URL is the page the text came from. Optional.
	URL string `json:"url,omitempty"`
}

// AnalysisResult is the response of POST /analyze.
type AnalysisResult struct {
	// Prediction is one of the Prediction* labels.
	Prediction string `json:"prediction"`

	// Score is the trust score from 0 (scam) to 100 (safe).
	Score int `json:"score"`

	// Flags lists the scam indicators found, most important first.
	Flags []string `json:"flags"`

	// HighlightedPhrases are the phrases to mark on the page in priority order.
	HighlightedPhrases []Phrase `json:"highlighted_phrases"` //nolint:tagliatelle // classifier wire format

	// Explanation is a natural-language summary of the verdict.
	Explanation string `json:"explanation"`

	// Advice lists actionable safety recommendations.
	Advice []string `json:"advice"`

	// Confidence runs from 0 to 1.
	Confidence float64 `json:"confidence"`
}

// Phrases returns the highlighted phrases capped at MaxHighlightedPhrases.
// Invalid entries are kept so that the highlighter can report them as skipped.
func (r *AnalysisResult) Phrases() []Phrase {
	if r == nil {
		return nil
	}
	if len(r.HighlightedPhrases) <= MaxHighlightedPhrases {
		return r.HighlightedPhrases
	}
	return r.HighlightedPhrases[:MaxHighlightedPhrases]
}

// Verdict classifies the trust score into a display band.
type Verdict int

const (
	// VerdictSafe is a score of TrustScoreSafe or higher.
	VerdictSafe Verdict = iota
	// VerdictWarning is a score between TrustScoreWarning and TrustScoreSafe.
	VerdictWarning
	// VerdictDanger is a score below TrustScoreWarning.
	VerdictDanger
)

// String returns the display name of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictSafe:
		return "safe"
	case VerdictWarning:
		return "warning"
	case VerdictDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// Verdict returns the display band for the trust score.
func (r *AnalysisResult) Verdict() Verdict {
	switch {
	case r.Score >= TrustScoreSafe:
		return VerdictSafe
	case r.Score >= TrustScoreWarning:
		return VerdictWarning
	default:
		return VerdictDanger
	}
}

// ShouldReport reports whether the posting is suspicious enough to offer
// reporting it.
func (r *AnalysisResult) ShouldReport() bool {
	return r.Score < TrustScoreSafe
}

// ReportRequest is the payload of POST /report.
type ReportRequest struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	UserFeedback string `json:"user_feedback,omitempty"` //nolint:tagliatelle // classifier wire format
}

// ReportResponse is the response of POST /report.
type ReportResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthStatus is the response of GET /health on the classifier.
type HealthStatus struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"` //nolint:tagliatelle // classifier wire format
	Version     string `json:"version"`
}
