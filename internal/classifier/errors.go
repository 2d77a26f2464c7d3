package classifier

import (
	"errors"
	"fmt"
	"net/http"
)

// Classifier connectivity errors.
//
// Design decision: We define specific errors rather than wrapping every
// failure generically so callers can tell a stopped backend (start it) from
// a backend without a model (wait or reinstall) and from a bad request.
var (
	// ErrInvalidAPIURL is returned when the base URL is not an absolute
	// http(s) URL.
	ErrInvalidAPIURL = errors.New("invalid classifier API URL: expected http(s)://host[:port]")

	// ErrEmptyText is returned when Analyze or Report is called without text.
	ErrEmptyText = errors.New("text to analyze is empty")

	// ErrServiceUnavailable is returned when the classifier cannot be reached.
	ErrServiceUnavailable = errors.New("cannot connect to classifier API")

	// ErrServiceTimeout is returned when the classifier does not answer in time.
	ErrServiceTimeout = errors.New("timeout waiting for classifier API")

	// ErrModelNotLoaded is returned when the classifier runs without a model.
	ErrModelNotLoaded = errors.New("classifier model is not loaded")

	// ErrAPIStatus is matched by every *APIError.
	ErrAPIStatus = errors.New("classifier API returned an error status")
)

// APIError is returned for non-2xx responses.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Detail is the error message from the response body, if any.
	Detail string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("classifier API error: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
	}
	return fmt.Sprintf("classifier API error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is makes errors.Is(err, ErrAPIStatus) true for any *APIError.
func (e *APIError) Is(target error) bool {
	return target == ErrAPIStatus
}

// ServiceStatus represents the result of checking the classifier.
type ServiceStatus int

const (
	// ServiceStatusOK indicates the classifier is up with its model loaded.
	ServiceStatusOK ServiceStatus = iota

	// ServiceStatusModelNotLoaded indicates the API answers but cannot classify.
	ServiceStatusModelNotLoaded

	// ServiceStatusCannotConnect indicates the API could not be reached or
	// answered with an error.
	ServiceStatusCannotConnect

	// ServiceStatusTimeout indicates the health check timed out.
	ServiceStatusTimeout
)

// String returns a human-readable description of the service status.
func (s ServiceStatus) String() string {
	switch s {
	case ServiceStatusOK:
		return "OK"
	case ServiceStatusModelNotLoaded:
		return "model not loaded"
	case ServiceStatusCannotConnect:
		return "cannot connect"
	case ServiceStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error returns the error for this status, or nil if OK.
func (s ServiceStatus) Error() error {
	switch s {
	case ServiceStatusOK:
		return nil
	case ServiceStatusModelNotLoaded:
		return ErrModelNotLoaded
	case ServiceStatusCannotConnect:
		return ErrServiceUnavailable
	case ServiceStatusTimeout:
		return ErrServiceTimeout
	default:
		return errors.New("unknown service status")
	}
}
