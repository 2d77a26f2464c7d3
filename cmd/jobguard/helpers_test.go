package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nao1215/jobguard/internal/model"
)

const postingHTML = `<html><head><title>Data Entry Clerk</title></head><body>
<h1>Data Entry Clerk - Work From Home</h1>
<p>Earn $500 per day with no experience needed. Pay a registration fee of $50 to secure your slot.</p>
<p>Contact us on WhatsApp only. Guaranteed selection for all applicants who apply today.</p>
</body></html>`

// fakeClassifier serves the classifier API and records report requests.
type fakeClassifier struct {
	*httptest.Server

	mu      sync.Mutex
	reports []model.ReportRequest
}

func newFakeClassifier(t *testing.T) *fakeClassifier {
	t.Helper()

	fc := &fakeClassifier{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, model.HealthStatus{Status: "ok", ModelLoaded: true})
	})
	mux.HandleFunc("POST /analyze", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, model.AnalysisResult{
			Prediction: model.PredictionHighRisk,
			Score:      12,
			Flags:      []string{"Upfront payment requested"},
			HighlightedPhrases: []model.Phrase{
				{Text: "registration fee", RiskLevel: model.RiskHigh, Reason: "Upfront payment"},
				{Text: "WhatsApp only", RiskLevel: model.RiskMedium, Reason: "Off-platform contact"},
			},
			Explanation: "The posting asks applicants to pay.",
			Advice:      []string{"Never pay to apply"},
			Confidence:  0.93,
		})
	})
	mux.HandleFunc("POST /report", func(w http.ResponseWriter, r *http.Request) {
		var req model.ReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fc.mu.Lock()
		fc.reports = append(fc.reports, req)
		fc.mu.Unlock()
		writeJSON(w, model.ReportResponse{Status: "received", Message: "Thank you"})
	})

	fc.Server = httptest.NewServer(mux)
	t.Cleanup(fc.Close)
	return fc
}

func (fc *fakeClassifier) reported() []model.ReportRequest {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]model.ReportRequest(nil), fc.reports...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeFile writes content into dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// emptyConfig returns a config file path so tests never pick up a user's
// .jobguard.
func emptyConfig(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "config.yaml", "sites: {}\n")
}

// runCLI executes the root command with args.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
