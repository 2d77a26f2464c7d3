package model

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrEmptyPhrase is returned by Phrase.Validate when the phrase text is empty.
var ErrEmptyPhrase = errors.New("phrase text is empty")

// Phrase is a risk-bearing piece of text to mark on a page.
// Phrases arrive ordered by caller priority and are never modified after
// they have been received.
type Phrase struct {
	// Text is the literal text to search for. Matching is case-insensitive.
	Text string `json:"text" yaml:"text"`

	// RiskLevel is the severity classification driving the marker style.
	RiskLevel RiskLevel `json:"risk_level" yaml:"risk_level"` //nolint:tagliatelle // classifier wire format

	// Reason is the classifier's explanation for flagging the phrase.
	// It is informational only and never affects matching.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Validate reports whether the phrase can be highlighted.
func (p Phrase) Validate() error {
	if p.Text == "" {
		return ErrEmptyPhrase
	}
	if !p.RiskLevel.Valid() {
		return ErrUnknownRiskLevel
	}
	return nil
}

// UnmarshalJSON decodes a phrase without failing on a malformed entry.
// A text, risk level or reason of the wrong JSON type, an unrecognised
// level, or an entry that is not an object leaves the offending field at
// its zero value. Validate then rejects the phrase and it is skipped,
// instead of aborting the decoding of the whole phrase list.
func (p *Phrase) UnmarshalJSON(data []byte) error {
	*p = Phrase{RiskLevel: RiskUnknown}

	var raw struct {
		Text      json.RawMessage `json:"text"`
		RiskLevel json.RawMessage `json:"risk_level"` //nolint:tagliatelle // classifier wire format
		Reason    json.RawMessage `json:"reason"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil //nolint:nilerr // a non-object entry is an invalid phrase, not a decoding failure
	}

	p.Text = rawString(raw.Text)
	p.Reason = strings.TrimSpace(rawString(raw.Reason))
	if level, err := ParseRiskLevel(rawString(raw.RiskLevel)); err == nil {
		p.RiskLevel = level
	}
	return nil
}

// rawString returns the string held by a raw JSON value, or "" when the
// value is absent or not a string.
func rawString(data json.RawMessage) string {
	var s string
	if len(data) == 0 || json.Unmarshal(data, &s) != nil {
		return ""
	}
	return s
}

// ValidPhrases returns the phrases that pass Validate, preserving order.
func ValidPhrases(phrases []Phrase) []Phrase {
	valid := make([]Phrase, 0, len(phrases))
	for _, p := range phrases {
		if p.Validate() == nil {
			valid = append(valid, p)
		}
	}
	return valid
}
