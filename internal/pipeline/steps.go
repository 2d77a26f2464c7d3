package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/jobguard/internal/config"
	"github.com/nao1215/jobguard/internal/extract"
	"github.com/nao1215/jobguard/internal/fetch"
	"github.com/nao1215/jobguard/internal/highlight"
	"github.com/nao1215/jobguard/internal/model"
)

// Step names, recorded in PageScan.PerformedSteps.
const (
	StepLoad      = "load"
	StepSite      = "site"
	StepExtract   = "extract"
	StepSignals   = "signals"
	StepAnalyze   = "analyze"
	StepHighlight = "highlight"
	StepWrite     = "write"
	StepPersist   = "persist"
)

// ErrNoResult is returned by steps that need a classifier result when the
// scan has none.
var ErrNoResult = errors.New("scan has no analysis result")

// PageFetcher loads a page. *fetch.Fetcher implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, target string) (*fetch.Page, error)
}

// Analyzer classifies page text. *classifier.Client implements it.
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error)
}

// AnalysisStore records finished scans. *database.HistoryDB implements it.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, scan *model.PageScan) (string, error)
}

// SiteConfigs resolves per-host settings. *config.File implements it.
type SiteConfigs interface {
	GetSiteConfig(host string) config.SiteConfig
}

// SignalScanner finds scam signals in posting text without the
// classifier. *signals.Scanner implements it.
type SignalScanner interface {
	Scan(ctx context.Context, text string) ([]model.Phrase, error)
}

// siteFor returns the settings for the scan's host, or zero settings for
// local files and when no configuration is loaded.
func siteFor(sites SiteConfigs, scan *model.PageScan) config.SiteConfig {
	if sites == nil || scan.URL == "" {
		return config.SiteConfig{}
	}
	u, err := url.Parse(scan.URL)
	if err != nil {
		return config.SiteConfig{}
	}
	return sites.GetSiteConfig(u.Hostname())
}

// LoadStep downloads or reads the page and applies site configuration.
type LoadStep struct {
	fetcher PageFetcher
	sites   SiteConfigs
	logger  *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadSites sets the per-site configuration.
func WithLoadSites(sites SiteConfigs) LoadStepOption {
	return func(s *LoadStep) {
		s.sites = sites
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a page loading step.
func NewLoadStep(fetcher PageFetcher, opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return StepLoad
}

// Do executes the load step. A page whose host is disabled in the site
// configuration is marked as skipped after the download, since redirects
// may change the host.
func (s *LoadStep) Do(ctx context.Context, scan *model.PageScan) error {
	page, err := s.fetcher.Fetch(ctx, scan.Target)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", scan.Target, err)
	}

	scan.URL = page.URL
	scan.HTML = page.Body

	extra := applySite(s.sites, scan)
	if scan.Skipped {
		return nil
	}

	s.logger.Debug("page loaded",
		"target", scan.Target,
		"url", scan.URL,
		"bytes", len(page.Body),
		"extra_phrases", extra,
	)
	return nil
}

// applySite marks a disabled site's scan as skipped, or adds the site's
// extra phrases. It returns the number of phrases added.
func applySite(sites SiteConfigs, scan *model.PageScan) int {
	site := siteFor(sites, scan)
	if site.Disabled {
		scan.Skipped = true
		return 0
	}
	scan.ExtraPhrases = append(scan.ExtraPhrases, site.ExtraPhrases...)
	return len(site.ExtraPhrases)
}

// SiteStep applies the site configuration to a page whose HTML was
// supplied by the caller instead of a LoadStep.
type SiteStep struct {
	sites SiteConfigs
}

// NewSiteStep creates a site configuration step.
func NewSiteStep(sites SiteConfigs) *SiteStep {
	return &SiteStep{sites: sites}
}

// Name returns the step name.
func (s *SiteStep) Name() string {
	return StepSite
}

// Do executes the site step.
func (s *SiteStep) Do(_ context.Context, scan *model.PageScan) error {
	applySite(s.sites, scan)
	return nil
}

// ExtractStep extracts the posting text sent to the classifier.
type ExtractStep struct {
	extractor *extract.Extractor
}

// NewExtractStep creates a text extraction step.
func NewExtractStep(extractor *extract.Extractor) *ExtractStep {
	if extractor == nil {
		extractor = extract.New()
	}
	return &ExtractStep{extractor: extractor}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return StepExtract
}

// Do executes the extract step. Pages with too little text stop the scan
// with an error wrapping extract.ErrNotEnoughText.
func (s *ExtractStep) Do(_ context.Context, scan *model.PageScan) error {
	root, err := html.Parse(bytes.NewReader(scan.HTML))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	result, err := s.extractor.Extract(root)
	scan.Title = result.Title
	scan.Text = result.Text
	scan.TextTruncated = result.Truncated
	return err
}

// SignalsStep adds locally detected signals to the scan's extra phrases.
type SignalsStep struct {
	scanner SignalScanner
}

// NewSignalsStep creates a signal detection step.
func NewSignalsStep(scanner SignalScanner) *SignalsStep {
	return &SignalsStep{scanner: scanner}
}

// Name returns the step name.
func (s *SignalsStep) Name() string {
	return StepSignals
}

// Do executes the signals step.
func (s *SignalsStep) Do(ctx context.Context, scan *model.PageScan) error {
	phrases, err := s.scanner.Scan(ctx, scan.Text)
	if err != nil {
		return err
	}
	scan.ExtraPhrases = append(scan.ExtraPhrases, phrases...)
	return nil
}

// AnalyzeStep sends the extracted text to the classifier.
type AnalyzeStep struct {
	analyzer Analyzer
}

// NewAnalyzeStep creates a classification step.
func NewAnalyzeStep(analyzer Analyzer) *AnalyzeStep {
	return &AnalyzeStep{analyzer: analyzer}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return StepAnalyze
}

// Do executes the analyze step.
func (s *AnalyzeStep) Do(ctx context.Context, scan *model.PageScan) error {
	result, err := s.analyzer.Analyze(ctx, model.AnalysisRequest{
		Text: scan.Text,
		URL:  scan.URL,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	scan.Result = result
	return nil
}

// HighlightStep marks the classifier's phrases and the site's extra phrases
// in the page and renders the annotated HTML.
type HighlightStep struct {
	highlighter *highlight.Highlighter
	maxPhrases  int
	sites       SiteConfigs
}

// HighlightStepOption configures a HighlightStep.
type HighlightStepOption func(*HighlightStep)

// WithMaxPhrases caps the classifier phrases highlighted per page.
// Site extras are not counted.
func WithMaxPhrases(n int) HighlightStepOption {
	return func(s *HighlightStep) {
		s.maxPhrases = n
	}
}

// WithHighlightSites sets the per-site configuration, whose MaxPhrases
// overrides the global cap.
func WithHighlightSites(sites SiteConfigs) HighlightStepOption {
	return func(s *HighlightStep) {
		s.sites = sites
	}
}

// NewHighlightStep creates a highlighting step.
func NewHighlightStep(highlighter *highlight.Highlighter, opts ...HighlightStepOption) *HighlightStep {
	if highlighter == nil {
		highlighter = highlight.New()
	}
	s := &HighlightStep{
		highlighter: highlighter,
		maxPhrases:  config.DefaultMaxPhrases,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *HighlightStep) Name() string {
	return StepHighlight
}

// Do executes the highlight step.
func (s *HighlightStep) Do(_ context.Context, scan *model.PageScan) error {
	if scan.Result == nil {
		return ErrNoResult
	}

	doc, err := highlight.Parse(bytes.NewReader(scan.HTML))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	limit := s.maxPhrases
	if site := siteFor(s.sites, scan); site.MaxPhrases > 0 {
		limit = site.MaxPhrases
	}

	phrases := scan.Result.Phrases()
	if len(phrases) > limit {
		phrases = phrases[:limit]
	}
	phrases = appendNew(append(make([]model.Phrase, 0, len(phrases)+len(scan.ExtraPhrases)), phrases...), scan.ExtraPhrases)

	summary := s.highlighter.HighlightPhrases(doc, phrases)
	scan.Highlight = &summary

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return fmt.Errorf("failed to render highlighted page: %w", err)
	}
	scan.HighlightedHTML = buf.Bytes()
	return nil
}

// appendNew appends the extra phrases whose text, ignoring case, is not
// already queued. A repeated phrase could only be reported as missed, since
// its first occurrence is already inside a marker.
func appendNew(phrases, extra []model.Phrase) []model.Phrase {
	queued := make(map[string]struct{}, len(phrases)+len(extra))
	for _, p := range phrases {
		queued[strings.ToLower(p.Text)] = struct{}{}
	}
	for _, p := range extra {
		key := strings.ToLower(p.Text)
		if _, ok := queued[key]; ok {
			continue
		}
		queued[key] = struct{}{}
		phrases = append(phrases, p)
	}
	return phrases
}

// WriteStep saves the highlighted page into an output directory.
type WriteStep struct {
	outputDir string
}

// NewWriteStep creates a step writing highlighted pages into outputDir.
func NewWriteStep(outputDir string) *WriteStep {
	return &WriteStep{outputDir: outputDir}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return StepWrite
}

// Do executes the write step.
func (s *WriteStep) Do(_ context.Context, scan *model.PageScan) error {
	if scan.HighlightedHTML == nil {
		return nil
	}
	if err := os.MkdirAll(s.outputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.outputDir, OutputFileName(scan.Source()))
	if err := os.WriteFile(path, scan.HighlightedHTML, 0600); err != nil {
		return fmt.Errorf("failed to write highlighted page: %w", err)
	}
	scan.OutputPath = path
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// OutputFileName derives a stable, filesystem-safe name for the highlighted
// copy of source, e.g. "jobs.example.com_posting_42-1a2b3c4d.html".
func OutputFileName(source string) string {
	base := source
	if fetch.IsURL(source) {
		if u, err := url.Parse(source); err == nil {
			base = u.Host + u.Path
		}
	} else {
		base = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	base = strings.Trim(unsafeFileChars.ReplaceAllString(base, "_"), "_.")
	if len(base) > 80 {
		base = base[:80]
	}
	if base == "" {
		base = "page"
	}

	sum := sha256.Sum256([]byte(source))
	return base + "-" + hex.EncodeToString(sum[:4]) + ".html"
}

// PersistStep records the analysis in the history database.
type PersistStep struct {
	store AnalysisStore
}

// NewPersistStep creates a history recording step.
func NewPersistStep(store AnalysisStore) *PersistStep {
	return &PersistStep{store: store}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return StepPersist
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, scan *model.PageScan) error {
	if scan.Result == nil {
		return ErrNoResult
	}
	id, err := s.store.SaveAnalysis(ctx, scan)
	if err != nil {
		return err
	}
	scan.AnalysisID = id
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// MinTextLength and MaxTextLength bound the extracted text, in runes.
	MinTextLength int
	MaxTextLength int

	// MaxPhrases caps the classifier phrases highlighted per page.
	MaxPhrases int

	// OutputDir receives highlighted pages. Empty disables the write step.
	OutputDir string

	// Store records analyses. Nil disables the persist step.
	Store AnalysisStore

	// Sites holds per-site settings. Nil means none.
	Sites SiteConfigs

	// Signals finds local scam signals. Nil disables the signals step.
	Signals SignalScanner

	// Logger is passed to the steps that log.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineTextLimits sets the extracted text bounds.
func WithPipelineTextLimits(minLength, maxLength int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MinTextLength = minLength
		c.MaxTextLength = maxLength
	}
}

// WithPipelineMaxPhrases sets the classifier phrase cap.
func WithPipelineMaxPhrases(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxPhrases = n
	}
}

// WithPipelineOutputDir enables writing highlighted pages.
func WithPipelineOutputDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.OutputDir = dir
	}
}

// WithPipelineStore enables recording analyses.
func WithPipelineStore(store AnalysisStore) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Store = store
	}
}

// WithPipelineSites sets the per-site configuration.
func WithPipelineSites(sites SiteConfigs) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Sites = sites
	}
}

// WithPipelineSignals enables local signal detection.
func WithPipelineSignals(scanner SignalScanner) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Signals = scanner
	}
}

// WithPipelineLogger sets the logger of the steps.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates the standard page scan pipeline:
// load, extract, optionally signals, analyze, highlight, then optionally
// write and persist.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineMaxPhrases, etc).
func DefaultPipeline(fetcher PageFetcher, analyzer Analyzer, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		MinTextLength: config.DefaultMinTextLength,
		MaxTextLength: config.DefaultMaxTextLength,
		MaxPhrases:    config.DefaultMaxPhrases,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p.AddSteps(
		NewLoadStep(fetcher, WithLoadSites(cfg.Sites), WithLoadLogger(logger)),
		NewExtractStep(extract.New(
			extract.WithMinLength(cfg.MinTextLength),
			extract.WithMaxLength(cfg.MaxTextLength),
		)),
	)
	if cfg.Signals != nil {
		p.AddStep(NewSignalsStep(cfg.Signals))
	}
	p.AddSteps(
		NewAnalyzeStep(analyzer),
		NewHighlightStep(
			highlight.New(highlight.WithLogger(logger)),
			WithMaxPhrases(cfg.MaxPhrases),
			WithHighlightSites(cfg.Sites),
		),
	)
	if cfg.OutputDir != "" {
		p.AddStep(NewWriteStep(cfg.OutputDir))
	}
	if cfg.Store != nil {
		p.AddStep(NewPersistStep(cfg.Store))
	}

	return p
}
