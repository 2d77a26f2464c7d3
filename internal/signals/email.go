package signals

import (
	"context"
	"regexp"
	"strings"

	"github.com/nao1215/jobguard/internal/model"
)

// freeMailReason is shown on free-mail address highlights.
const freeMailReason = "Recruiter uses a free email address instead of a company domain"

// EmailDetector finds recruiter contact addresses at free-mail providers.
//
// Design decision: Company addresses are not flagged. A real employer
// normally writes from its own domain, so only the free-mail case is a
// signal, and a weak one: small businesses use free mail too.
type EmailDetector struct {
	emailRegex    *regexp.Regexp
	freeProviders map[string]struct{}
}

// NewEmailDetector creates an EmailDetector.
func NewEmailDetector() *EmailDetector {
	providers := []string{
		"gmail.com", "googlemail.com", "yahoo.com", "ymail.com",
		"hotmail.com", "outlook.com", "live.com", "msn.com",
		"aol.com", "icloud.com", "mail.com", "gmx.com",
		"yandex.com", "yandex.ru", "mail.ru", "protonmail.com", "proton.me",
		"zoho.com", "qq.com", "163.com",
	}
	free := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		free[p] = struct{}{}
	}

	return &EmailDetector{
		emailRegex:    regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		freeProviders: free,
	}
}

// Name returns the detector name.
func (d *EmailDetector) Name() string {
	return "email"
}

// Detect returns the free-mail addresses in text.
func (d *EmailDetector) Detect(_ context.Context, text string) ([]model.Phrase, error) {
	phrases := make([]model.Phrase, 0)
	seen := make(map[string]bool)

	for _, email := range d.emailRegex.FindAllString(text, -1) {
		key := strings.ToLower(email)
		if seen[key] || !d.isFreeMail(key) {
			continue
		}
		seen[key] = true

		phrases = append(phrases, model.Phrase{
			Text:      email,
			RiskLevel: model.RiskLow,
			Reason:    freeMailReason,
		})
	}

	return phrases, nil
}

func (d *EmailDetector) isFreeMail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	_, ok := d.freeProviders[strings.ToLower(email[at+1:])]
	return ok
}
