// Package log provides structured logging for jobguard on top of log/slog.
//
// The SecureHandler wraps any slog.Handler and:
//   - masks credentials (classifier API keys, Authorization and Cookie
//     headers, session identifiers, bearer tokens)
//   - shortens page-text payloads (text, html, body, user_feedback) to a
//     short preview, so scanned job postings are not copied into logs
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("sending analysis",
//	    "url", pageURL,
//	    "text", pageText,      // logged as the first 80 runes
//	    "api_key", cfg.APIKey, // logged as ***REDACTED***
//	)
package log
