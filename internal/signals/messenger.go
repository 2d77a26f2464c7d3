package signals

import (
	"context"
	"regexp"

	"github.com/nao1215/jobguard/internal/model"
)

// messengerReason is shown on messenger contact highlights.
const messengerReason = "Moves the conversation to a private messenger"

// MessengerDetector finds contact details for private messengers.
// Scam recruiters move applicants off the job board early, where the
// board's moderation cannot see the conversation.
type MessengerDetector struct {
	patterns []pattern
}

// NewMessengerDetector creates a MessengerDetector.
func NewMessengerDetector() *MessengerDetector {
	newPattern := func(expr string) pattern {
		return pattern{
			re:     regexp.MustCompile(expr),
			level:  model.RiskMedium,
			reason: messengerReason,
		}
	}

	return &MessengerDetector{
		patterns: []pattern{
			// Telegram links
			newPattern(`(?i)\bhttps?://(?:www\.)?(?:t\.me|telegram\.me)/[A-Za-z0-9_+]{4,}`),

			// WhatsApp click-to-chat and group links
			newPattern(`(?i)\bhttps?://(?:api\.)?wa\.me/\+?[0-9]{6,}`),
			newPattern(`(?i)\bhttps?://chat\.whatsapp\.com/[A-Za-z0-9]+`),

			// "WhatsApp: +1 555 123 4567", "Telegram @hr_desk"
			newPattern(`(?i)\b(?:whatsapp|telegram|signal|viber|wechat)\b[^\w+@]{1,5}(?:\+?\d[\d ().-]{6,}\d|@[A-Za-z0-9_]{4,32})`),
		},
	}
}

// Name returns the detector name.
func (d *MessengerDetector) Name() string {
	return "messenger"
}

// Detect returns the messenger contacts in text.
func (d *MessengerDetector) Detect(_ context.Context, text string) ([]model.Phrase, error) {
	return findAll(text, d.patterns), nil
}
