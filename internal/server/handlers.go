package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nao1215/jobguard/internal/classifier"
	"github.com/nao1215/jobguard/internal/extract"
	"github.com/nao1215/jobguard/internal/highlight"
	"github.com/nao1215/jobguard/internal/model"
	"github.com/nao1215/jobguard/internal/pipeline"
	"github.com/nao1215/jobguard/internal/report"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Classifier string `json:"classifier,omitempty"`
}

// HighlightRequest is the body of POST /highlight.
type HighlightRequest struct {
	// HTML is the page to annotate.
	HTML string `json:"html"`

	// Phrases are marked in order.
	Phrases []model.Phrase `json:"phrases"`
}

// HighlightResponse is the body returned by POST /highlight.
type HighlightResponse struct {
	HTML    string                 `json:"html"`
	Summary model.HighlightSummary `json:"summary"`
	Markers []model.MarkedPhrase   `json:"markers"`
}

// MessageRequest is the body of POST /message: a page and the message
// delivered to it.
type MessageRequest struct {
	HTML    string        `json:"html"`
	Message model.Request `json:"message"`
}

// MessageResponse is the body returned by POST /message. Response keeps
// the message acknowledgement shape; HTML is set when the page changed.
type MessageResponse struct {
	Response model.Response          `json:"response"`
	HTML     string                  `json:"html,omitempty"`
	Summary  *model.HighlightSummary `json:"summary,omitempty"`
}

// ScanRequest is the body of POST /scan.
type ScanRequest struct {
	HTML string `json:"html"`
	URL  string `json:"url,omitempty"`
}

// ScanResponse is the body returned by POST /scan.
type ScanResponse struct {
	Summary *model.ScanSummary `json:"summary"`
	HTML    string             `json:"html"`
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

var errEmptyHTML = errors.New("html is required")

// handleHealth reports liveness and, when configured, the classifier status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Version: s.version}
	if s.checker != nil {
		status := s.checker.CheckService(r.Context())
		resp.Classifier = status.String()
		if status != classifier.ServiceStatusOK {
			resp.Status = "degraded"
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleHighlight marks phrases in a posted page.
func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req HighlightRequest
	if !s.decode(w, r, &req) {
		return
	}

	doc, ok := s.parsePage(w, req.HTML)
	if !ok {
		return
	}

	summary := s.highlighter.HighlightPhrases(doc, req.Phrases)
	page, ok := s.render(w, doc)
	if !ok {
		return
	}

	markers := make([]model.MarkedPhrase, 0)
	for _, m := range highlight.FindMarkers(doc.Body()) {
		markers = append(markers, model.MarkedPhrase{Text: m.Text, RiskLevel: m.RiskLevel})
	}

	s.writeJSON(w, http.StatusOK, HighlightResponse{
		HTML:    page,
		Summary: summary,
		Markers: markers,
	})
}

// handleMessage delivers a message to a posted page. Unknown actions are
// answered with the error acknowledgement and status 200, like any other
// delivered message.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if !s.decode(w, r, &req) {
		return
	}

	doc, err := highlight.Parse(strings.NewReader(req.HTML))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result := s.dispatcher.DispatchWithSummary(doc, req.Message)
	resp := MessageResponse{Response: result.Response, Summary: result.Summary}
	if result.Summary != nil {
		page, ok := s.render(w, doc)
		if !ok {
			return
		}
		resp.HTML = page
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleScan classifies and highlights a posted page.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		s.writeError(w, http.StatusNotImplemented, errors.New("no classifier configured"))
		return
	}

	var req ScanRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		s.writeError(w, http.StatusBadRequest, errEmptyHTML)
		return
	}

	target := req.URL
	if target == "" {
		target = "posted page"
	}
	scan := model.NewPageScan(target)
	scan.URL = req.URL
	scan.HTML = []byte(req.HTML)

	p := pipeline.New(pipeline.WithLogger(s.logger))
	p.AddSteps(
		pipeline.NewSiteStep(s.sites),
		pipeline.NewExtractStep(s.extractor),
	)
	if s.signals != nil {
		p.AddStep(pipeline.NewSignalsStep(s.signals))
	}
	p.AddSteps(
		pipeline.NewAnalyzeStep(s.analyzer),
		pipeline.NewHighlightStep(s.highlighter,
			pipeline.WithMaxPhrases(s.maxPhrases),
			pipeline.WithHighlightSites(s.sites),
		),
	)
	if s.store != nil {
		p.AddStep(pipeline.NewPersistStep(s.store))
	}

	if err := p.Execute(r.Context(), scan); err != nil {
		s.writeError(w, scanErrorStatus(err), err)
		return
	}

	page := string(scan.HighlightedHTML)
	if scan.Skipped {
		page = req.HTML
	}
	s.writeJSON(w, http.StatusOK, ScanResponse{
		Summary: report.Summarize(scan),
		HTML:    page,
	})
}

// scanErrorStatus maps a pipeline error to an HTTP status.
func scanErrorStatus(err error) int {
	switch {
	case errors.Is(err, extract.ErrNotEnoughText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, classifier.ErrServiceTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, classifier.ErrServiceUnavailable),
		errors.Is(err, classifier.ErrAPIStatus):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v, replying 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// parsePage parses a posted page, replying 400 when it is empty or invalid.
func (s *Server) parsePage(w http.ResponseWriter, page string) (*highlight.Document, bool) {
	if strings.TrimSpace(page) == "" {
		s.writeError(w, http.StatusBadRequest, errEmptyHTML)
		return nil, false
	}
	doc, err := highlight.Parse(strings.NewReader(page))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return doc, true
}

// render serializes doc, replying 500 on failure.
func (s *Server) render(w http.ResponseWriter, doc *highlight.Document) (string, bool) {
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return "", false
	}
	return buf.String(), true
}

// writeJSON writes v with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

// writeError writes {"error": err} with the given status.
func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
