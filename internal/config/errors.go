package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Sentinel errors let callers use errors.Is while keeping fixed messages.
var (
	// ErrNoTarget is returned when no URL or file was given to scan.
	ErrNoTarget = errors.New("no target specified: provide a URL, a file path or --glob")

	// ErrNoAPIURL is returned when the classifier URL is empty.
	ErrNoAPIURL = errors.New("no classifier API URL configured")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMinTextLength is returned when the minimum text length is negative.
	ErrInvalidMinTextLength = errors.New("invalid minimum text length: must be non-negative")

	// ErrInvalidMaxTextLength is returned when the maximum text length is not
	// positive or is smaller than the minimum.
	ErrInvalidMaxTextLength = errors.New("invalid maximum text length: must be positive and not below the minimum")

	// ErrInvalidMaxPhrases is returned when the phrase cap is negative.
	ErrInvalidMaxPhrases = errors.New("invalid max phrases: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
