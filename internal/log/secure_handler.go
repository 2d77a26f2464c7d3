package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

// sensitiveKeys contains attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	// HTTP headers sent to the classifier or to job boards
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,

	// Classifier credentials
	"api_key":      true,
	"apikey":       true,
	"api-key":      true,
	"token":        true,
	"access_token": true,
	"password":     true,
	"secret":       true,

	// Session identifiers found in job board URLs
	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"sid":        true,
}

// sensitiveKeywords mark a key as sensitive when contained anywhere in it.
// The bare word "key" is left out on purpose: "risk_key" and "phrase_key"
// are harmless.
var sensitiveKeywords = []string{
	"password", "secret", "token", "auth", "credential", "cookie",
}

// sensitivePatterns match values that are masked regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer and Basic credentials
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Long opaque API keys
	regexp.MustCompile(`^(sk|pk|rk)_(live|test)_[A-Za-z0-9]{8,}$`),
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
}

// payloadKeys carry page text or markup. Their values are shortened to a
// preview so a single scan does not write whole job postings to the log.
var payloadKeys = map[string]bool{
	"text":          true,
	"page_text":     true,
	"body":          true,
	"html":          true,
	"user_feedback": true,
	"explanation":   true,
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// DefaultPreviewLength is the number of runes kept from payload values.
const DefaultPreviewLength = 80

// SecureHandler wraps an slog.Handler. It masks credentials and shortens
// page-text payloads before records reach the underlying handler.
//
// Design decision: We wrap a handler instead of providing a custom logger so
// every package keeps using plain *slog.Logger and the wrapper works with
// both text and JSON output.
type SecureHandler struct {
	// handler receives the sanitized records.
	handler slog.Handler

	// previewLength is the number of runes kept from payload values.
	previewLength int
}

// HandlerOption configures a SecureHandler.
type HandlerOption func(*SecureHandler)

// WithPreviewLength sets how many runes of page text are kept in logs.
// Non-positive values keep DefaultPreviewLength.
func WithPreviewLength(n int) HandlerOption {
	return func(h *SecureHandler) {
		if n > 0 {
			h.previewLength = n
		}
	}
}

// NewSecureHandler creates a SecureHandler wrapping handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler, opts ...HandlerOption) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &SecureHandler{handler: handler, previewLength: DefaultPreviewLength}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a handler with the sanitized attributes added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs), previewLength: h.previewLength}
}

// WithGroup returns a handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name), previewLength: h.previewLength}
}

// sanitizeAttr masks or shortens a single attribute, recursing into groups.
func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	value := a.Value.String()
	if isSensitiveValue(value) {
		return slog.String(a.Key, MaskValue)
	}
	if payloadKeys[keyLower] {
		return slog.String(a.Key, preview(value, h.previewLength))
	}
	return a
}

// containsSensitiveKeyword checks if the key contains a sensitive keyword.
func containsSensitiveKeyword(key string) bool {
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches a sensitive pattern.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// preview keeps the first n runes of s and notes the original size.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if n == 0 {
			cut = i
			break
		}
		n--
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:cut], len(s))
}

// NewSecureLogger creates a text logger with secure handling.
// verbose selects slog.LevelDebug; otherwise only warnings and errors are
// written.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger creates a JSON logger with secure handling, for
// the HTTP server where logs are usually collected by another process.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
