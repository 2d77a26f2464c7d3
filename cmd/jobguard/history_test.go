package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/jobguard/internal/database"
	"github.com/nao1215/jobguard/internal/model"
	"github.com/nao1215/jobguard/internal/report"
)

// seedHistory creates a history database with one analysis and one report.
func seedHistory(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	scan := model.NewPageScan("https://jobs.example.com/postings/1")
	scan.URL = scan.Target
	scan.Title = "Data Entry Clerk"
	scan.Text = "Pay a registration fee"
	scan.Result = &model.AnalysisResult{
		Prediction:  model.PredictionHighRisk,
		Score:       15,
		Flags:       []string{"Upfront payment requested"},
		Explanation: "The posting asks applicants to pay.",
		Confidence:  0.9,
	}
	id, err := db.SaveAnalysis(context.Background(), scan)
	if err != nil {
		t.Fatal(err)
	}

	_, err = db.SaveReport(context.Background(),
		model.ReportRequest{URL: scan.URL, Text: scan.Text, UserFeedback: "Asked for money"},
		&model.ReportResponse{Status: "received"})
	if err != nil {
		t.Fatal(err)
	}

	return dir, id
}

// TestHistoryCmd tests listing and showing stored checks.
func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists checks", func(t *testing.T) {
		t.Parallel()

		dir, id := seedHistory(t)
		stdout, _, err := runCLI(t, "history", "--db-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Previous checks (1)", id[:8], "danger", "https://jobs.example.com/postings/1"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q in output:\n%s", want, stdout)
			}
		}
	})

	t.Run("filters by URL", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		stdout, _, err := runCLI(t, "history", "--db-dir", dir, "--url", "https://other.example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No checks found") {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("URL filter ignores host case and fragment", func(t *testing.T) {
		t.Parallel()

		dir, id := seedHistory(t)
		stdout, _, err := runCLI(t, "history", "--db-dir", dir, "--url", "https://Jobs.Example.com/postings/1#apply")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, id[:8]) {
			t.Errorf("expected %s in output:\n%s", id[:8], stdout)
		}
	})

	t.Run("shows a check by ID prefix", func(t *testing.T) {
		t.Parallel()

		dir, id := seedHistory(t)
		stdout, _, err := runCLI(t, "history", "show", id[:8], "--db-dir", dir, "-j")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var rep report.JSONReport
		if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if rep.Summary.AnalysisID != id || rep.Summary.Score != 15 {
			t.Errorf("unexpected summary %+v", rep.Summary)
		}
	})

	t.Run("unknown ID is an error", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		_, _, err := runCLI(t, "history", "show", "ffffffff", "--db-dir", dir)
		if err == nil || !strings.Contains(err.Error(), "no check with ID") {
			t.Fatalf("expected not found error, got %v", err)
		}
	})

	t.Run("lists reports", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		stdout, _, err := runCLI(t, "history", "reports", "--db-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Submitted reports (1)") || !strings.Contains(stdout, "Asked for money") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})

	t.Run("prune keeps recent entries", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		stdout, _, err := runCLI(t, "history", "prune", "--older-than", time.Hour.String(), "--db-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Deleted 0 entries") {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("missing database is an error", func(t *testing.T) {
		t.Parallel()

		_, _, err := runCLI(t, "history", "--db-dir", t.TempDir())
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is longer", 10, "this is..."},
		{"日本語のテキストです", 6, "日本語..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}
