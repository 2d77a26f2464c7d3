package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/jobguard/internal/highlight"
	"github.com/nao1215/jobguard/internal/messaging"
	"github.com/nao1215/jobguard/internal/model"
	"github.com/spf13/cobra"
)

// NewHighlightCmd creates the highlight command.
func NewHighlightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "highlight <file>",
		Short: "Highlight given phrases in a saved HTML page",
		Long: `Highlight marks phrases in a saved HTML page without calling the classifier.

The phrases file is either a JSON array of phrases or a highlight message:

  [{"text": "registration fee", "risk_level": "high", "reason": "Upfront payment"}]
  {"action": "highlight", "phrases": [...]}

Each phrase is marked at its first occurrence in the visible page text.
Phrases with an unknown risk level are skipped. Use "-" to read the page
from stdin.

Examples:
  jobguard highlight posting.html --phrases phrases.json -o marked.html
  curl -s https://jobs.example.com/123 | jobguard highlight - -p phrases.json`,
		Args: cobra.ExactArgs(1),
		RunE: runHighlightCmd,
	}

	cmd.Flags().StringP("phrases", "p", "", "JSON file with the phrases to highlight")
	cmd.Flags().StringP("output", "o", "", "Write the highlighted page to file instead of stdout")
	_ = cmd.MarkFlagRequired("phrases")

	return cmd
}

// runHighlightCmd executes the highlight command.
func runHighlightCmd(cmd *cobra.Command, args []string) error {
	phrasesPath, err := cmd.Flags().GetString("phrases")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	data, err := os.ReadFile(phrasesPath) //nolint:gosec // User-provided phrases path is intentional
	if err != nil {
		return fmt.Errorf("failed to read phrases: %w", err)
	}
	req, err := decodePhrases(data)
	if err != nil {
		return err
	}

	page, err := readPage(cmd, args[0])
	if err != nil {
		return err
	}
	doc, err := highlight.Parse(bytes.NewReader(page))
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	logger := setupLogger(cmd)
	dispatcher := messaging.NewDispatcher(
		messaging.WithHighlighter(highlight.New(highlight.WithLogger(logger))),
		messaging.WithLogger(logger),
	)
	result := dispatcher.DispatchWithSummary(doc, req)
	if !result.Response.Succeeded() {
		return errors.New(result.Response.Error)
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	if err := writePage(cmd, outputPath, buf.Bytes()); err != nil {
		return err
	}

	if s := result.Summary; s != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Highlighted %d of %d phrases (%d not found, %d skipped)\n",
			s.Highlighted, s.Requested, s.Missed, s.Skipped)
	}
	return nil
}

// decodePhrases accepts a phrase array or a highlight message.
func decodePhrases(data []byte) (model.Request, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var phrases []model.Phrase
		if err := json.Unmarshal(data, &phrases); err != nil {
			return model.Request{}, fmt.Errorf("invalid phrases: %w", err)
		}
		return model.Request{Action: model.ActionHighlight, Phrases: phrases}, nil
	}

	req, err := messaging.DecodeRequest(data)
	if err != nil {
		return model.Request{}, err
	}
	if req.Action == "" {
		req.Action = model.ActionHighlight
	}
	return req, nil
}

// readPage reads a page from path, or from stdin when path is "-".
func readPage(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read page from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // User-provided page path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return data, nil
}

// writePage writes a highlighted page to path, or to stdout when path is
// empty.
func writePage(cmd *cobra.Command, path string, page []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(page)
		return err
	}
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, page, 0600); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}
	return nil
}
