package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/jobguard/internal/model"
)

const (
	// DefaultTimeout is used when no HTTP client or timeout is given.
	DefaultTimeout = 30 * time.Second

	// checkServiceTimeout bounds CheckService. A health check should be quick.
	checkServiceTimeout = 5 * time.Second

	// maxResponseSize limits how much of a response body is read.
	maxResponseSize = 1 << 20

	// apiKeyHeader carries the optional API key.
	apiKeyHeader = "X-Api-Key" //nolint:gosec // header name, not a credential
)

// Client talks to the scam classifier HTTP API.
//
// Design decision: The client only speaks JSON over HTTP and holds no
// state besides its configuration, so one Client is shared by every
// goroutine of a batch scan.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	apiKey     string
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithAPIKey sets the key sent in the X-Api-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the classifier at baseURL
// (e.g. "http://localhost:8000").
//
// Creating the client does not contact the API.
// Call CheckService to verify it is running.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidAPIURL
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// BaseURL returns the configured API address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Analyze sends page text to POST /analyze and returns the verdict.
// Phrases beyond the classifier's limit of ten are dropped.
func (c *Client) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	var result model.AnalysisResult
	if err := c.do(ctx, http.MethodPost, "/analyze", req, &result); err != nil {
		return nil, err
	}
	if len(result.HighlightedPhrases) > model.MaxHighlightedPhrases {
		result.HighlightedPhrases = result.HighlightedPhrases[:model.MaxHighlightedPhrases]
	}

	c.logger.Debug("analysis received",
		"url", req.URL,
		"prediction", result.Prediction,
		"score", result.Score,
		"phrases", len(result.HighlightedPhrases),
	)
	return &result, nil
}

// Report submits a posting the user believes is a scam to POST /report.
func (c *Client) Report(ctx context.Context, req model.ReportRequest) (*model.ReportResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	var resp model.ReportResponse
	if err := c.do(ctx, http.MethodPost, "/report", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*model.HealthStatus, error) {
	var status model.HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CheckService queries the health endpoint and classifies the outcome.
func (c *Client) CheckService(ctx context.Context) ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, checkServiceTimeout)
	defer cancel()

	status, err := c.Health(ctx)
	switch {
	case err == nil && !status.ModelLoaded:
		return ServiceStatusModelNotLoaded
	case err == nil:
		return ServiceStatusOK
	case errors.Is(err, ErrServiceTimeout):
		return ServiceStatusTimeout
	default:
		return ServiceStatusCannotConnect
	}
}

// do performs a JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	endpoint := c.baseURL.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("classifier request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// classifyTransportError maps client errors to the package sentinels.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrServiceTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
}

// errorDetail extracts the message of a FastAPI style {"detail": ...} body.
// Structured validation details are returned as raw JSON.
func errorDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return strings.TrimSpace(string(data))
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		return detail
	}
	return string(body.Detail)
}
