package main

import (
	"errors"
	"testing"
	"time"

	"github.com/nao1215/jobguard/internal/config"
	"github.com/spf13/cobra"
)

// newTestCmd returns a command with the scan flags, parsed from args.
func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := NewScanCmd()
	cmd.Flags().Bool("verbose", false, "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd
}

// TestBuildConfig tests merging flags and the configuration file.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	fileContent := `api:
  url: "http://classifier.internal:9000"
  timeout: 45s
sites:
  "jobs.example.com":
    headers:
      Cookie: "session=abc"
`

	t.Run("config file fills unchanged flags", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "config.yaml", fileContent)
		cfg, err := buildConfig(newTestCmd(t, "--config", path), []string{"page.html"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.APIURL != "http://classifier.internal:9000" {
			t.Errorf("APIURL = %q", cfg.APIURL)
		}
		if cfg.Timeout != 45*time.Second {
			t.Errorf("Timeout = %v", cfg.Timeout)
		}
		if got := cfg.File.GetSiteConfig("jobs.example.com").Headers["Cookie"]; got != "session=abc" {
			t.Errorf("expected site headers, got %q", got)
		}
		if len(cfg.Targets) != 1 || !cfg.SaveToDB {
			t.Errorf("unexpected targets %v or SaveToDB %v", cfg.Targets, cfg.SaveToDB)
		}
		if !cfg.Signals {
			t.Error("expected local signals enabled by default")
		}
	})

	t.Run("flags win over the config file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "config.yaml", fileContent)
		cmd := newTestCmd(t,
			"--config", path,
			"--api-url", "http://127.0.0.1:1234",
			"--timeout", "5s",
			"--batch", "2",
			"--max-phrases", "3",
			"--no-save",
			"--no-signals",
			"--db-dir", "/tmp/jobguard-test",
		)
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.APIURL != "http://127.0.0.1:1234" || cfg.Timeout != 5*time.Second {
			t.Errorf("flags did not win: %q %v", cfg.APIURL, cfg.Timeout)
		}
		if cfg.BatchSize != 2 || cfg.MaxPhrases != 3 {
			t.Errorf("unexpected batch %d or max phrases %d", cfg.BatchSize, cfg.MaxPhrases)
		}
		if cfg.SaveToDB || cfg.DBDir != "/tmp/jobguard-test" {
			t.Errorf("unexpected SaveToDB %v DBDir %q", cfg.SaveToDB, cfg.DBDir)
		}
		if cfg.Signals || newSignalScanner(cfg, nil) != nil {
			t.Error("expected --no-signals to disable local signals")
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := buildConfig(newTestCmd(t, "--config", "/nonexistent/.jobguard"), nil)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid phrase level in config file is an error", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "config.yaml", `defaults:
  extraPhrases:
    - text: "wire transfer"
      risk_level: extreme
`)
		if _, err := buildConfig(newTestCmd(t, "--config", path), nil); err == nil {
			t.Fatal("expected error for unknown risk level")
		}
	})
}

// TestNewServeCmd tests the serve command flags.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	listen := cmd.Flags().Lookup("listen")
	if listen == nil || listen.DefValue != config.DefaultListenAddress {
		t.Fatalf("expected listen flag with default %q", config.DefaultListenAddress)
	}
	save := cmd.Flags().Lookup("save")
	if save == nil || save.DefValue != "false" {
		t.Error("expected save flag defaulting to false")
	}
	if cmd.Flags().Lookup("offline") == nil {
		t.Error("expected offline flag")
	}
	if cmd.Flags().Lookup("no-save") != nil {
		t.Error("serve should not have a no-save flag")
	}
}
