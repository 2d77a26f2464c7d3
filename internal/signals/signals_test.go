package signals

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/nao1215/jobguard/internal/model"
)

const (
	btcAddress  = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	bechAddress = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
	ethAddress  = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	tronAddress = "TQn9Y2khEsLJW1ChVWFMSMeRDow5KcbLSE"
)

func texts(phrases []model.Phrase) []string {
	out := make([]string, len(phrases))
	for i, p := range phrases {
		out[i] = p.Text
	}
	return out
}

func equalTexts(got []model.Phrase, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].Text != want[i] {
			return false
		}
	}
	return true
}

// TestEmailDetector tests free-mail address detection.
func TestEmailDetector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "free-mail address is flagged",
			text: "Send your CV to Hiring.Team@Gmail.com today.",
			want: []string{"Hiring.Team@Gmail.com"},
		},
		{
			name: "company address is not flagged",
			text: "Apply at careers@acme-corp.com",
			want: []string{},
		},
		{
			name: "repeated address is reported once",
			text: "hr.desk@outlook.com or HR.DESK@outlook.com",
			want: []string{"hr.desk@outlook.com"},
		},
		{
			name: "no address",
			text: "No contact details here.",
			want: []string{},
		},
	}

	d := NewEmailDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := d.Detect(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equalTexts(got, tt.want) {
				t.Fatalf("got %v, want %v", texts(got), tt.want)
			}
			for _, p := range got {
				if p.RiskLevel != model.RiskLow || p.Reason != freeMailReason {
					t.Errorf("unexpected phrase %+v", p)
				}
			}
		})
	}
}

// TestMessengerDetector tests private messenger contact detection.
func TestMessengerDetector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "WhatsApp number",
			text: "Message us on WhatsApp: +1 555 123 4567 to start.",
			want: []string{"WhatsApp: +1 555 123 4567"},
		},
		{
			name: "Telegram handle",
			text: "Contact the manager on Telegram @hr_desk now",
			want: []string{"Telegram @hr_desk"},
		},
		{
			name: "Telegram and WhatsApp links in order",
			text: "Join https://t.me/remote_jobs_hr or https://wa.me/15551234567 for details",
			want: []string{"https://t.me/remote_jobs_hr", "https://wa.me/15551234567"},
		},
		{
			name: "WhatsApp group link",
			text: "Group: https://chat.whatsapp.com/AbCdEf123",
			want: []string{"https://chat.whatsapp.com/AbCdEf123"},
		},
		{
			name: "messenger name alone is not a contact",
			text: "WhatsApp only. Telegram is fine too.",
			want: []string{},
		},
	}

	d := NewMessengerDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := d.Detect(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equalTexts(got, tt.want) {
				t.Fatalf("got %v, want %v", texts(got), tt.want)
			}
			for _, p := range got {
				if p.RiskLevel != model.RiskMedium {
					t.Errorf("expected medium risk, got %v", p.RiskLevel)
				}
			}
		})
	}
}

// TestCryptoDetector tests wallet address detection.
func TestCryptoDetector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "bitcoin and tron in order of appearance",
			text: "Pay the starter kit fee to " + btcAddress + " or USDT " + tronAddress + " today.",
			want: []string{btcAddress, tronAddress},
		},
		{
			name: "bech32 address",
			text: "Wallet: " + bechAddress,
			want: []string{bechAddress},
		},
		{
			name: "ethereum address",
			text: "Send 0.05 ETH to " + ethAddress + ".",
			want: []string{ethAddress},
		},
		{
			name: "address inside a longer token is ignored",
			text: "ref_" + btcAddress + "_x",
			want: []string{},
		},
		{
			name: "ordinary text",
			text: "Salary 3000 USD per month, paid by bank transfer.",
			want: []string{},
		},
	}

	d := NewCryptoDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := d.Detect(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equalTexts(got, tt.want) {
				t.Fatalf("got %v, want %v", texts(got), tt.want)
			}
			for _, p := range got {
				if p.RiskLevel != model.RiskHigh || p.Validate() != nil {
					t.Errorf("unexpected phrase %+v", p)
				}
			}
		})
	}
}

// failingDetector always fails.
type failingDetector struct{}

func (failingDetector) Name() string { return "failing" }

func (failingDetector) Detect(context.Context, string) ([]model.Phrase, error) {
	return nil, errors.New("boom")
}

// fixedDetector returns fixed phrases.
type fixedDetector struct {
	phrases []model.Phrase
}

func (fixedDetector) Name() string { return "fixed" }

func (d fixedDetector) Detect(context.Context, string) ([]model.Phrase, error) {
	return d.phrases, nil
}

// TestScanner tests running detectors together.
func TestScanner(t *testing.T) {
	t.Parallel()

	posting := "Recruiter: jobs.hr@gmail.com. WhatsApp: +44 7700 900123. " +
		"Buy your laptop through our vendor, pay " + btcAddress + "."

	t.Run("registers built-in detectors strongest first", func(t *testing.T) {
		t.Parallel()

		names := NewScanner().Detectors()
		want := []string{"crypto", "rules", "messenger", "email"}
		if len(names) != len(want) {
			t.Fatalf("got %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("Detectors()[%d] = %q, want %q", i, names[i], want[i])
			}
		}
	})

	t.Run("options disable detectors", func(t *testing.T) {
		t.Parallel()

		s := NewScanner(func(o *Options) {
			o.EnableEmail = false
			o.EnableCrypto = false
			o.EnableRules = false
		})
		if names := s.Detectors(); len(names) != 1 || names[0] != "messenger" {
			t.Errorf("unexpected detectors %v", names)
		}
	})

	t.Run("finds every kind of signal", func(t *testing.T) {
		t.Parallel()

		got, err := NewScanner().Scan(context.Background(), posting)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{btcAddress, "WhatsApp: +44 7700 900123", "jobs.hr@gmail.com"}
		if !equalTexts(got, want) {
			t.Errorf("got %v, want %v", texts(got), want)
		}
	})

	t.Run("caps the number of signals", func(t *testing.T) {
		t.Parallel()

		s := NewScanner(func(o *Options) { o.MaxSignals = 1 })
		got, err := s.Scan(context.Background(), posting)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !equalTexts(got, []string{btcAddress}) {
			t.Errorf("expected only the crypto signal, got %v", texts(got))
		}
	})

	t.Run("failing detector is skipped", func(t *testing.T) {
		t.Parallel()

		s := NewScanner(func(o *Options) {
			o.EnableEmail = false
			o.EnableMessenger = false
			o.EnableCrypto = false
			o.EnableRules = false
		})
		s.Register(failingDetector{})
		s.Register(fixedDetector{phrases: []model.Phrase{{Text: "upfront fee", RiskLevel: model.RiskHigh}}})

		got, err := s.Scan(context.Background(), "any text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !equalTexts(got, []string{"upfront fee"}) {
			t.Errorf("got %v", texts(got))
		}
	})

	t.Run("duplicates are removed ignoring case", func(t *testing.T) {
		t.Parallel()

		s := NewScanner(func(o *Options) {
			o.EnableEmail = false
			o.EnableMessenger = false
			o.EnableCrypto = false
			o.EnableRules = false
		})
		s.Register(fixedDetector{phrases: []model.Phrase{
			{Text: "Wire Transfer", RiskLevel: model.RiskHigh},
			{Text: "wire transfer", RiskLevel: model.RiskLow},
		}})

		got, err := s.Scan(context.Background(), "any text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].RiskLevel != model.RiskHigh {
			t.Errorf("expected the first phrase to win, got %+v", got)
		}
	})

	t.Run("empty text finds nothing", func(t *testing.T) {
		t.Parallel()

		got, err := NewScanner().Scan(context.Background(), "  ")
		if err != nil || len(got) != 0 {
			t.Errorf("got %v, %v", got, err)
		}
	})

	t.Run("cancelled context stops the scan", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := NewScanner().Scan(ctx, posting); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestRulesDetector tests the scam wording rules.
func TestRulesDetector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   []string
		level  model.RiskLevel
		reason string
	}{
		{"upfront fee", "Pay a Registration Fee of $50 first.", []string{"Registration Fee"}, model.RiskHigh, "Requests upfront payment"},
		{"no interview", "Selected without an interview.", []string{"without an interview"}, model.RiskHigh, "No interview required"},
		{"daily salary", "Get $1,500 per day from home.", []string{"$1,500 per day"}, model.RiskHigh, "Unrealistic daily salary"},
		{"guaranteed selection", "Guaranteed selection for all.", []string{"Guaranteed selection"}, model.RiskHigh, "Guaranteed selection claims"},
		{"messenger only", "Contact us on Telegram only.", []string{"Telegram only"}, model.RiskMedium, "WhatsApp/Telegram-only communication"},
		{"urgency", "Positions filling fast, act now.", []string{"act now"}, model.RiskMedium, "Urgency pressure tactics"},
		{"work from home pay", "Work from home and get $700 weekly.", []string{"Work from home and get $700"}, model.RiskMedium, "Work-from-home with high pay"},
		{"scarcity", "Only limited slots left.", []string{"limited slots"}, model.RiskMedium, "Artificial scarcity"},
		{"crypto mention", "Salary paid in Bitcoin.", []string{"Bitcoin"}, model.RiskMedium, "Cryptocurrency mention in job"},
		{"gift card", "Buy Gift Cards for the client.", []string{"Gift Cards"}, model.RiskHigh, "Gift card payment method"},
		{"punctuation", "Apply today!!!", []string{"!!!"}, model.RiskLow, "Excessive punctuation"},
		{"capitals", "Apply IMMEDIATELY please", []string{"IMMEDIATELY"}, model.RiskMedium, "Urgency pressure tactics"},
		{"shouting", "This is AMAZING news", []string{"AMAZING"}, model.RiskLow, "Excessive capitalization"},
		{"earnings promise", "Earn $900 every week.", []string{"Earn $900 every week"}, model.RiskHigh, "Unrealistic earnings promise"},
		{"no experience", "No experience required.", []string{"No experience required"}, model.RiskMedium, "No experience needed with high pay"},
		{"ordinary posting", "We are hiring a backend engineer. Salary 90k.", nil, model.RiskUnknown, ""},
		{"crypto inside word", "Our cryptographic library team.", nil, model.RiskUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewRulesDetector().Detect(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equalTexts(got, tt.want) {
				t.Fatalf("got %v, want %v", texts(got), tt.want)
			}
			if len(got) > 0 && (got[0].RiskLevel != tt.level || got[0].Reason != tt.reason) {
				t.Errorf("got level %v reason %q, want %v %q", got[0].RiskLevel, got[0].Reason, tt.level, tt.reason)
			}
		})
	}

	t.Run("first match per rule in order of appearance", func(t *testing.T) {
		t.Parallel()

		text := "Guaranteed job! Pay the processing fee by gift card. Another processing fee later."
		got, err := NewRulesDetector().Detect(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"Guaranteed job", "processing fee", "gift card"}
		if !equalTexts(got, want) {
			t.Errorf("got %v, want %v", texts(got), want)
		}
	})
}

// TestFindAll tests overlap resolution between patterns.
func TestFindAll(t *testing.T) {
	t.Parallel()

	patterns := []pattern{
		{re: regexp.MustCompile(`fee`), level: model.RiskLow},
		{re: regexp.MustCompile(`registration fee`), level: model.RiskHigh},
		{re: regexp.MustCompile(`today`), level: model.RiskMedium},
	}

	got := findAll("pay the registration fee today, the fee is small", patterns)
	want := []string{"registration fee", "today", "fee"}
	if !equalTexts(got, want) {
		t.Fatalf("got %v, want %v", texts(got), want)
	}
	if got[0].RiskLevel != model.RiskHigh {
		t.Errorf("expected the longer overlapping match to win, got %+v", got[0])
	}
}
