package signals

import (
	"context"
	"regexp"

	"github.com/nao1215/jobguard/internal/model"
)

// RulesDetector matches the wording scam postings typically use: upfront
// fees, guaranteed selection, urgency, off-platform contact and similar.
// Each rule reports at most its first match.
//
// Design decision: Patterns that join two parts of a sentence stop at
// sentence punctuation and are length bounded, so that a match stays
// inside one paragraph and can be found again on the page.
type RulesDetector struct {
	rules []pattern
}

// NewRulesDetector creates a RulesDetector with the built-in rules.
func NewRulesDetector() *RulesDetector {
	return &RulesDetector{
		rules: []pattern{
			{
				re:     regexp.MustCompile(`(?i)\b(?:registration|processing|training|administrative)\s+fees?\b`),
				level:  model.RiskHigh,
				reason: "Requests upfront payment",
			},
			{
				re:     regexp.MustCompile(`(?i)\b(?:no|without)\s+(?:an?\s+)?interviews?\b`),
				level:  model.RiskHigh,
				reason: "No interview required",
			},
			{
				re:     regexp.MustCompile(`(?i)(?:\$|₹)\s*(?:\d{4,}|\d{1,3}(?:,\d{3})+)[^.!?\n]{0,30}?(?:per\s+day|daily|/\s*day)`),
				level:  model.RiskHigh,
				reason: "Unrealistic daily salary",
			},
			{
				re:     regexp.MustCompile(`(?i)\bguaranteed\s+(?:selection|job|income|placement)\b`),
				level:  model.RiskHigh,
				reason: "Guaranteed selection claims",
			},
			{
				re:     regexp.MustCompile(`(?i)\b(?:whatsapp|telegram)\s+only\b`),
				level:  model.RiskMedium,
				reason: "WhatsApp/Telegram-only communication",
			},
			{
				re:     regexp.MustCompile(`(?i)\b(?:urgent(?:ly)?|immediate(?:ly)?|hurry|act\s+now)\b`),
				level:  model.RiskMedium,
				reason: "Urgency pressure tactics",
			},
			{
				re:     regexp.MustCompile(`(?i)\bwork\s+from\s+home\b[^.!?\n]{0,60}?\$\s*\d{3,}`),
				level:  model.RiskMedium,
				reason: "Work-from-home with high pay",
			},
			{
				re:     regexp.MustCompile(`(?i)\blimited\s+(?:slots?|positions?|seats?|time)\b`),
				level:  model.RiskMedium,
				reason: "Artificial scarcity",
			},
			{
				re:     regexp.MustCompile(`(?i)\b(?:bitcoin|cryptocurrency|crypto|nft)\b`),
				level:  model.RiskMedium,
				reason: "Cryptocurrency mention in job",
			},
			{
				re:     regexp.MustCompile(`(?i)\bgift\s+cards?\b`),
				level:  model.RiskHigh,
				reason: "Gift card payment method",
			},
			{
				re:     regexp.MustCompile(`!{3,}`),
				level:  model.RiskLow,
				reason: "Excessive punctuation",
			},
			{
				// Case-sensitive on purpose: it looks for shouting.
				re:     regexp.MustCompile(`\b[A-Z]{6,}\b`),
				level:  model.RiskLow,
				reason: "Excessive capitalization",
			},
			{
				re:     regexp.MustCompile(`(?i)\b(?:earn|make)\s+\$\s*\d{3,}[^.!?\n]{0,40}?(?:week(?:ly)?|daily)\b`),
				level:  model.RiskHigh,
				reason: "Unrealistic earnings promise",
			},
			{
				re:     regexp.MustCompile(`(?i)\bno\s+(?:experience|skills?)\s+(?:needed|required)\b`),
				level:  model.RiskMedium,
				reason: "No experience needed with high pay",
			},
		},
	}
}

// Name returns the detector name.
func (d *RulesDetector) Name() string {
	return "rules"
}

// Detect returns the first match of each rule, in order of appearance.
func (d *RulesDetector) Detect(_ context.Context, text string) ([]model.Phrase, error) {
	matches := make([]match, 0, len(d.rules))
	for _, r := range d.rules {
		loc := r.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		matches = append(matches, newMatch(text, loc, r))
	}
	return resolveOverlaps(matches), nil
}
