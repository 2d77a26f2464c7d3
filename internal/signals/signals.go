package signals

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nao1215/jobguard/internal/model"
)

// DefaultMaxSignals caps the phrases a Scanner returns per posting.
const DefaultMaxSignals = 10

// Detector finds one kind of scam signal in posting text.
type Detector interface {
	// Name returns the detector name for logging.
	Name() string

	// Detect returns the matching phrases in order of appearance.
	// Phrase text must be a substring of text so that it can be
	// highlighted on the page.
	Detect(ctx context.Context, text string) ([]model.Phrase, error)
}

// Scanner runs detectors over posting text and merges their phrases.
//
// Design decision: A failing detector is logged and skipped rather than
// failing the scan. Signals only add highlights, so a partial set is
// still useful.
type Scanner struct {
	detectors  []Detector
	maxSignals int
	logger     *slog.Logger
}

// Options configures which built-in detectors a Scanner registers.
type Options struct {
	// EnableEmail registers the free-mail detector.
	EnableEmail bool

	// EnableMessenger registers the messenger detector.
	EnableMessenger bool

	// EnableCrypto registers the wallet address detector.
	EnableCrypto bool

	// EnableRules registers the scam wording rules.
	EnableRules bool

	// MaxSignals caps the returned phrases. Zero or less means no cap.
	MaxSignals int

	// Logger receives detector failures.
	Logger *slog.Logger
}

// DefaultOptions enables every built-in detector.
func DefaultOptions() Options {
	return Options{
		EnableEmail:     true,
		EnableMessenger: true,
		EnableCrypto:    true,
		EnableRules:     true,
		MaxSignals:      DefaultMaxSignals,
	}
}

// NewScanner creates a Scanner with the built-in detectors enabled by opts.
func NewScanner(opts ...func(*Options)) *Scanner {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	s := &Scanner{
		detectors:  make([]Detector, 0, 4),
		maxSignals: options.MaxSignals,
		logger:     options.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	// Strongest signals first so that the cap drops the weakest.
	if options.EnableCrypto {
		s.Register(NewCryptoDetector())
	}
	if options.EnableRules {
		s.Register(NewRulesDetector())
	}
	if options.EnableMessenger {
		s.Register(NewMessengerDetector())
	}
	if options.EnableEmail {
		s.Register(NewEmailDetector())
	}

	return s
}

// Register adds a detector after the existing ones.
func (s *Scanner) Register(d Detector) {
	s.detectors = append(s.detectors, d)
}

// Detectors returns the names of the registered detectors.
func (s *Scanner) Detectors() []string {
	names := make([]string, len(s.detectors))
	for i, d := range s.detectors {
		names[i] = d.Name()
	}
	return names
}

// Scan runs every detector over text. Phrases are deduplicated ignoring
// case and capped at the scanner's limit. The only error returned is the
// context's.
func (s *Scanner) Scan(ctx context.Context, text string) ([]model.Phrase, error) {
	found := make([]model.Phrase, 0)
	if strings.TrimSpace(text) == "" {
		return found, nil
	}

	for _, d := range s.detectors {
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		default:
		}

		phrases, err := d.Detect(ctx, text)
		if err != nil {
			s.logger.Warn("signal detector failed", "detector", d.Name(), "error", err)
			continue
		}
		found = append(found, phrases...)
	}

	found = deduplicate(found)
	if s.maxSignals > 0 && len(found) > s.maxSignals {
		found = found[:s.maxSignals]
	}
	return found, nil
}

// deduplicate removes phrases whose text repeats, ignoring case. The first
// occurrence wins, which keeps the higher risk one given the detector order.
func deduplicate(phrases []model.Phrase) []model.Phrase {
	seen := make(map[string]struct{}, len(phrases))
	result := make([]model.Phrase, 0, len(phrases))
	for _, p := range phrases {
		key := strings.ToLower(p.Text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, p)
	}
	return result
}
