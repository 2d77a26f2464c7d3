package model

import (
	"errors"
	"fmt"
	"strings"
)

// RiskLevel represents how strongly a phrase indicates a job scam.
// The classifier tags each suspicious phrase with one of three levels and the
// level drives the visual treatment of the highlight on the page.
//
// Design decision: We use iota-based constants like the rest of the model so
// levels can be compared and sorted. The textual form ("high", "medium",
// "low") is the wire format used by the classifier API.
type RiskLevel int

const (
	// RiskUnknown is the zero value. It never appears in valid phrases.
	RiskUnknown RiskLevel = iota

	// RiskLow marks weak signals such as excessive punctuation,
	// capitalised shouting or free-mail contact addresses.
	RiskLow

	// RiskMedium marks pressure tactics and off-platform contact:
	// "urgent", "limited slots", "WhatsApp only", crypto mentions.
	RiskMedium

	// RiskHigh marks the classic scam markers: upfront fees, gift card
	// payments, guaranteed selection, no interview.
	RiskHigh
)

// ErrUnknownRiskLevel is returned when a risk level string is not one of
// "high", "medium" or "low".
var ErrUnknownRiskLevel = errors.New("unknown risk level")

// String returns the wire representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the three defined levels.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// ParseRiskLevel converts the wire representation into a RiskLevel.
// Matching ignores surrounding whitespace and case.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, nil
	case "medium":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	default:
		return RiskUnknown, fmt.Errorf("%w: %q", ErrUnknownRiskLevel, s)
	}
}

// MarshalText implements encoding.TextMarshaler so RiskLevel serializes as
// "high"/"medium"/"low" in JSON and YAML.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskLevel) UnmarshalText(text []byte) error {
	level, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*r = level
	return nil
}

// RiskInfo holds the presentation metadata of a risk level.
type RiskInfo struct {
	// CSSClass is the level-specific class added to marker elements,
	// next to the shared HighlightClass.
	CSSClass string

	// Tooltip is the human-readable title attribute of marker elements.
	Tooltip string

	// Background is the CSS background tint of the marker.
	Background string

	// Border is the CSS bottom border of the marker.
	Border string
}

// HighlightClass is the class shared by every marker element.
const HighlightClass = "job-scam-highlight"

// riskInfoMapping is the single source of truth for how each level looks.
var riskInfoMapping = map[RiskLevel]RiskInfo{
	RiskHigh: {
		CSSClass:   "job-scam-high",
		Tooltip:    "Scam indicator (high risk)",
		Background: "rgba(220, 53, 69, 0.3)",
		Border:     "2px solid #dc3545",
	},
	RiskMedium: {
		CSSClass:   "job-scam-medium",
		Tooltip:    "Scam indicator (medium risk)",
		Background: "rgba(255, 193, 7, 0.3)",
		Border:     "2px solid #ffc107",
	},
	RiskLow: {
		CSSClass:   "job-scam-low",
		Tooltip:    "Scam indicator (low risk)",
		Background: "rgba(108, 117, 125, 0.2)",
		Border:     "1px solid #6c757d",
	},
}

// Info returns the presentation metadata for the level.
// The second return value is false for RiskUnknown or out-of-range values.
func (r RiskLevel) Info() (RiskInfo, bool) {
	info, ok := riskInfoMapping[r]
	return info, ok
}

// RiskLevels returns the defined levels from most to least severe.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskHigh, RiskMedium, RiskLow}
}
