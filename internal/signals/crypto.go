package signals

import (
	"context"
	"regexp"

	"github.com/nao1215/jobguard/internal/model"
)

// CryptoDetector finds cryptocurrency wallet addresses.
//
// Design decision: Any wallet address in a job posting is rated high
// risk. Employers do not need an applicant to know their wallet, so the
// address is almost always where an "equipment" or "training" fee goes.
type CryptoDetector struct {
	patterns []pattern
}

// NewCryptoDetector creates a CryptoDetector.
func NewCryptoDetector() *CryptoDetector {
	newPattern := func(coin, expr string) pattern {
		return pattern{
			re:     regexp.MustCompile(expr),
			level:  model.RiskHigh,
			reason: coin + " wallet address: requests for payment in crypto are a common scam",
		}
	}

	return &CryptoDetector{
		patterns: []pattern{
			// Bitcoin Bech32 (bc1...) and legacy P2PKH/P2SH (1... or 3...)
			newPattern("Bitcoin", `\bbc1[a-z0-9]{39,59}\b`),
			newPattern("Bitcoin", `\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`),

			// Ethereum and ERC-20 tokens (0x followed by 40 hex chars)
			newPattern("Ethereum", `\b0x[a-fA-F0-9]{40}\b`),

			// Tron, where most USDT scams are paid
			newPattern("Tron (USDT)", `\bT[1-9A-HJ-NP-Za-km-z]{33}\b`),

			// Monero (95 chars starting with 4, subaddresses with 8)
			newPattern("Monero", `\b[48][0-9AB][1-9A-HJ-NP-Za-km-z]{93}\b`),
		},
	}
}

// Name returns the detector name.
func (d *CryptoDetector) Name() string {
	return "crypto"
}

// Detect returns the wallet addresses in text.
func (d *CryptoDetector) Detect(_ context.Context, text string) ([]model.Phrase, error) {
	return findAll(text, d.patterns), nil
}
