package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Defaults for page downloads.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultUserAgent   = "jobguard/1.0"
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
	maxRedirects       = 10
)

var (
	// ErrUnexpectedStatus is returned for non-2xx page responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrNotHTML is returned when a response is clearly not an HTML page.
	ErrNotHTML = errors.New("content is not HTML")

	// ErrBodyTooLarge is returned when a local file exceeds the size limit.
	ErrBodyTooLarge = errors.New("page exceeds maximum size")
)

// Page is a loaded job posting.
type Page struct {
	// Target is the URL or path as given.
	Target string

	// URL is the final URL after redirects. Empty for local files.
	URL string

	// Host is the URL host, used to select site configuration.
	Host string

	// StatusCode is the HTTP status. Zero for local files.
	StatusCode int

	// ContentType is the response Content-Type header.
	ContentType string

	// Body is the raw HTML.
	Body []byte

	// Truncated is true when Body was cut at the size limit.
	Truncated bool
}

// HeaderFunc returns extra request headers for a host.
type HeaderFunc func(host string) map[string]string

// Fetcher loads pages from the web or the local filesystem.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	headers     HeaderFunc
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the download timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum page size. Zero disables the limit.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithHeaders sets a function supplying per-host request headers, such as
// session cookies for boards that require a login.
func WithHeaders(fn HeaderFunc) Option {
	return func(f *Fetcher) {
		f.headers = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch loads target. http and https URLs are downloaded, file:// URLs and
// anything else are read from disk.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Page, error) {
	if IsURL(target) {
		return f.fetchURL(ctx, target)
	}
	path := target
	if strings.HasPrefix(target, "file://") {
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("invalid file URL: %w", err)
		}
		path = u.Path
	}
	return f.readFile(target, path)
}

// fetchURL downloads a single page.
func (f *Fetcher) fetchURL(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if f.headers != nil {
		for key, value := range f.headers(req.URL.Hostname()) {
			req.Header.Set(key, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, pageURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContentType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrNotHTML, contentType)
	}

	body, truncated, err := readLimited(resp.Body, f.maxBodySize)
	if err != nil {
		return nil, err
	}
	if truncated {
		f.logger.Warn("page truncated at size limit", "url", pageURL, "limit", f.maxBodySize)
	}

	return &Page{
		Target:      pageURL,
		URL:         resp.Request.URL.String(),
		Host:        resp.Request.URL.Hostname(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		Truncated:   truncated,
	}, nil
}

// readFile loads a saved page from disk. Unlike downloads, oversized files
// are rejected rather than cut.
func (f *Fetcher) readFile(target, path string) (*Page, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if f.maxBodySize > 0 && info.Size() > f.maxBodySize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrBodyTooLarge, path, info.Size())
	}

	body, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return &Page{
		Target:      target,
		ContentType: "text/html",
		Body:        body,
	}, nil
}

// readLimited reads at most limit bytes. Zero means no limit.
func readLimited(r io.Reader, limit int64) ([]byte, bool, error) {
	if limit <= 0 {
		body, err := io.ReadAll(r)
		return body, false, err
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) > limit {
		return body[:limit], true, nil
	}
	return body, false, nil
}

// isHTMLContentType accepts HTML and XHTML. A missing header is accepted,
// since many job boards behind CDNs omit it.
func isHTMLContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") ||
		strings.Contains(ct, "application/xhtml+xml") ||
		strings.Contains(ct, "text/plain")
}

// IsURL reports whether target is an http(s) URL.
func IsURL(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// NormalizeURL normalizes a URL for history lookups: the fragment is
// dropped, scheme and host are lowercased and an empty path becomes "/".
// Values that are not URLs are returned unchanged.
func NormalizeURL(pageURL string) string {
	if !IsURL(pageURL) {
		return pageURL
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
