// Package messaging routes page messages to the highlighting engine.
//
// A message is a JSON object with an "action" field. The dispatcher is a
// plain synchronous function call: it handles the message to completion and
// returns the acknowledgement.
//
//	{"action": "highlight", "phrases": [...]} -> {"success": true}
//	{"action": "analyze"}                     -> {"status": "received"}
//	{"action": "other"}                       -> {"success": false, "error": "unknown action: other"}
package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/jobguard/internal/highlight"
	"github.com/nao1215/jobguard/internal/model"
)

// Dispatcher handles messages addressed to one page.
type Dispatcher struct {
	highlighter *highlight.Highlighter
	logger      *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHighlighter sets the highlighter used for highlight messages.
func WithHighlighter(h *highlight.Highlighter) Option {
	return func(d *Dispatcher) {
		d.highlighter = h
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.highlighter == nil {
		d.highlighter = highlight.New(highlight.WithLogger(d.logger))
	}
	return d
}

// Result is a response together with what the highlight pass did.
// Summary is nil for anything but a highlight message.
type Result struct {
	Response model.Response
	Summary  *model.HighlightSummary
}

// Dispatch handles req against doc and returns the acknowledgement.
// A highlight request always succeeds once the pass has run, even when no
// phrase was found: the response confirms delivery, not matches.
func (d *Dispatcher) Dispatch(doc *highlight.Document, req model.Request) model.Response {
	return d.DispatchWithSummary(doc, req).Response
}

// DispatchWithSummary is Dispatch that also returns the highlight summary.
func (d *Dispatcher) DispatchWithSummary(doc *highlight.Document, req model.Request) Result {
	switch strings.TrimSpace(req.Action) {
	case model.ActionHighlight:
		summary := d.highlighter.HighlightPhrases(doc, req.Phrases)
		d.logger.Debug("highlight message handled",
			"requested", summary.Requested,
			"highlighted", summary.Highlighted,
			"missed", summary.Missed,
			"skipped", summary.Skipped,
		)
		return Result{Response: model.NewSuccessResponse(true), Summary: &summary}

	case model.ActionAnalyze:
		return Result{Response: model.Response{Status: model.StatusReceived}}

	default:
		d.logger.Debug("unknown message action", "action", req.Action)
		return Result{Response: model.NewErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))}
	}
}

// DecodeRequest parses a JSON message.
func DecodeRequest(data []byte) (model.Request, error) {
	var req model.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return model.Request{}, fmt.Errorf("invalid message: %w", err)
	}
	return req, nil
}
