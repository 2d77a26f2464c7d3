package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/jobguard/internal/model"
)

// TestDecodePhrases tests the accepted phrase file formats.
func TestDecodePhrases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		wantAction  string
		wantPhrases int
		wantErr     bool
	}{
		{
			name:        "phrase array",
			input:       `[{"text": "registration fee", "risk_level": "high"}]`,
			wantAction:  model.ActionHighlight,
			wantPhrases: 1,
		},
		{
			name:        "highlight message",
			input:       `{"action": "highlight", "phrases": [{"text": "a", "risk_level": "low"}, {"text": "b", "risk_level": "medium"}]}`,
			wantAction:  model.ActionHighlight,
			wantPhrases: 2,
		},
		{
			name:        "object without action",
			input:       ` {"phrases": []}`,
			wantAction:  model.ActionHighlight,
			wantPhrases: 0,
		},
		{
			name:       "other action is kept",
			input:      `{"action": "analyze"}`,
			wantAction: model.ActionAnalyze,
		},
		{
			name:    "invalid JSON",
			input:   `[{"text":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := decodePhrases([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Action != tt.wantAction {
				t.Errorf("Action = %q, want %q", req.Action, tt.wantAction)
			}
			if len(req.Phrases) != tt.wantPhrases {
				t.Errorf("expected %d phrases, got %d", tt.wantPhrases, len(req.Phrases))
			}
		})
	}
}

// TestRunHighlightCmd tests offline highlighting.
func TestRunHighlightCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes highlighted page to file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		page := writeFile(t, dir, "posting.html", postingHTML)
		phrases := writeFile(t, dir, "phrases.json", `[
			{"text": "registration fee", "risk_level": "high", "reason": "Upfront payment"},
			{"text": "not on the page", "risk_level": "low"},
			{"text": "WhatsApp only", "risk_level": "urgent"}
		]`)
		out := filepath.Join(dir, "marked", "posting.html")

		_, stderr, err := runCLI(t, "highlight", page, "-p", phrases, "-o", out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		html := string(content)
		if strings.Count(html, `class="`+model.HighlightClass) != 1 {
			t.Errorf("expected exactly one marker, got:\n%s", html)
		}
		if !strings.Contains(html, "job-scam-detector-styles") {
			t.Error("expected injected stylesheet")
		}
		if !strings.Contains(stderr, "Highlighted 1 of 3 phrases (1 not found, 1 skipped)") {
			t.Errorf("unexpected summary %q", stderr)
		}
	})

	t.Run("reads page from stdin and writes stdout", func(t *testing.T) {
		t.Parallel()

		phrases := writeFile(t, t.TempDir(), "phrases.json",
			`{"action": "highlight", "phrases": [{"text": "guaranteed selection", "risk_level": "high"}]}`)

		cmd := NewRootCmd()
		var stdout strings.Builder
		cmd.SetIn(strings.NewReader(postingHTML))
		cmd.SetOut(&stdout)
		cmd.SetErr(&strings.Builder{})
		cmd.SetArgs([]string{"highlight", "-", "--phrases", phrases})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout.String(), ">Guaranteed selection</span>") {
			t.Errorf("expected case-insensitive match with original casing, got:\n%s", stdout.String())
		}
	})

	t.Run("unknown action is an error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		page := writeFile(t, dir, "posting.html", postingHTML)
		phrases := writeFile(t, dir, "phrases.json", `{"action": "explode"}`)

		_, _, err := runCLI(t, "highlight", page, "-p", phrases)
		if err == nil || err.Error() != "unknown action: explode" {
			t.Fatalf("expected unknown action error, got %v", err)
		}
	})

	t.Run("phrases flag is required", func(t *testing.T) {
		t.Parallel()

		_, _, err := runCLI(t, "highlight", "posting.html")
		if err == nil {
			t.Fatal("expected error without --phrases")
		}
	})
}
