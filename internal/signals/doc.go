// Package signals finds well-known scam signals in posting text without
// the classifier.
//
// # Purpose
//
// The classifier scores the posting as a whole and returns the phrases it
// found suspicious. Some signals are easier to find with a pattern than
// with a model: a cryptocurrency wallet in a job ad, a recruiter writing
// from a free-mail address, or a link that moves the conversation to a
// private messenger. This package finds those and returns them as phrases
// that are highlighted after the classifier's.
//
// # Detectors
//
// Each kind of signal is a separate Detector:
//
//   - email: free-mail recruiter addresses (low risk)
//   - messenger: WhatsApp and Telegram links, handles and numbers (medium risk)
//   - crypto: Bitcoin, Ethereum, Tron and Monero addresses (high risk)
//   - rules: scam wording such as "registration fee", "guaranteed
//     selection", "no interview" or "WhatsApp only", each rule with its
//     own level and reason
//
// # Usage
//
//	scanner := signals.NewScanner()
//	phrases, err := scanner.Scan(ctx, text)
//
// Detectors never change the trust score. They only add highlights.
package signals
