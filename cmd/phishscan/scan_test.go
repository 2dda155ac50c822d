package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/nao1215/phishscan/internal/classifier"
	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/report"
	"github.com/nao1215/phishscan/internal/scanner"
)

// TestNewScanCmd tests the scan command creation.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	if cmd.Use != "scan [url...]" {
		t.Errorf("expected use 'scan [url...]', got %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("expected non-empty descriptions")
	}

	flags := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"list", "l", ""},
		{"rules", "r", ""},
		{"whois", "", "false"},
		{"no-save", "", "false"},
		{"batch", "b", "10"},
		{"timeout", "t", config.DefaultTimeout.String()},
		{"quiet", "q", "false"},
		{"json", "j", "false"},
		{"markdown", "m", "false"},
		{"output", "o", ""},
	}

	for _, tt := range flags {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

func TestReadListFile(t *testing.T) {
	t.Parallel()

	t.Run("skips blank lines and comments", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "urls.txt")
		content := "# inbox export\nhttps://example.com\n\n   http://verify-account.tk  \n#https://ignored.example\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		urls, err := readListFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"https://example.com", "http://verify-account.tk"}
		if !slices.Equal(urls, want) {
			t.Errorf("readListFile() = %v, want %v", urls, want)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := readListFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--json", "--markdown"}); err != nil {
			t.Fatal(err)
		}
		_, err := buildConfig(cmd, []string{"https://example.com"})
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("explicit rules file must exist", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		missing := filepath.Join(t.TempDir(), "rules.yaml")
		if err := cmd.ParseFlags([]string{"--rules", missing}); err != nil {
			t.Fatal(err)
		}
		_, err := buildConfig(cmd, []string{"https://example.com"})
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("collects flags, rules and list", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		rulesPath := filepath.Join(dir, "rules.yaml")
		if err := os.WriteFile(rulesPath, []byte("weights:\n  pattern: 10\n"), 0600); err != nil {
			t.Fatal(err)
		}
		listPath := filepath.Join(dir, "urls.txt")
		if err := os.WriteFile(listPath, []byte("https://b.example\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewScanCmd()
		err := cmd.ParseFlags([]string{
			"--rules", rulesPath, "--list", listPath,
			"--no-save", "--whois", "--batch", "3", "-q", "-o", "out.md", "-m",
		})
		if err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"https://a.example"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(cfg.Targets, []string{"https://a.example", "https://b.example"}) {
			t.Errorf("targets = %v", cfg.Targets)
		}
		if cfg.SaveToDB || !cfg.Whois || !cfg.Quiet || !cfg.MarkdownReport {
			t.Errorf("unexpected flags: %+v", cfg)
		}
		if cfg.BatchSize != 3 || cfg.ReportFile != "out.md" {
			t.Errorf("batch=%d output=%q", cfg.BatchSize, cfg.ReportFile)
		}
		if cfg.Rules.Weights.Pattern != 10 {
			t.Errorf("pattern weight = %d, want 10", cfg.Rules.Weights.Pattern)
		}
		if cfg.Rules.Weights.SuspiciousTLD != config.DefaultSuspiciousTLDPenalty {
			t.Errorf("missing keys should fall back to defaults, got %+v", cfg.Rules.Weights)
		}
	})
}

func TestToReportResult(t *testing.T) {
	t.Parallel()

	c := classifier.New(config.DefaultRules(), classifier.WithRandom(classifier.FixedRandom(0)))
	svc := scanner.NewService(c)

	t.Run("valid outcome", func(t *testing.T) {
		t.Parallel()

		job, err := svc.Run(context.Background(), "https://example.com")
		if err != nil {
			t.Fatal(err)
		}
		res := toReportResult("https://example.com", scanner.BatchResult{Job: job})
		if res.Outcome == nil {
			t.Fatal("expected outcome")
		}
		if res.Outcome.Status != model.StatusSafe || res.Error != "" || res.Saved {
			t.Errorf("unexpected result: %+v", res)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		job, err := svc.Run(context.Background(), "not a url")
		if err == nil {
			t.Fatal("expected error")
		}
		res := toReportResult("not a url", scanner.BatchResult{Job: job, Err: err})
		if res.Outcome != nil {
			t.Error("expected no outcome for invalid input")
		}
		if res.Error == "" {
			t.Error("expected an error message")
		}
		if res.URL != "not a url" {
			t.Errorf("URL = %q", res.URL)
		}
	})

	t.Run("cancelled before classification", func(t *testing.T) {
		t.Parallel()

		res := toReportResult("https://example.com", scanner.BatchResult{Err: context.Canceled})
		if res.Outcome != nil || res.Error != context.Canceled.Error() {
			t.Errorf("unexpected result: %+v", res)
		}
		if !res.Interrupted {
			t.Error("expected interrupted result")
		}
	})

	t.Run("timed out after classification keeps the outcome", func(t *testing.T) {
		t.Parallel()

		job, err := svc.Run(context.Background(), "http://verify-account.tk")
		if err != nil {
			t.Fatal(err)
		}
		job.PreviousScans = 3
		res := toReportResult("http://verify-account.tk", scanner.BatchResult{Job: job, Err: context.DeadlineExceeded})
		if res.Outcome == nil || res.Outcome.Status != model.StatusDanger {
			t.Fatalf("expected the classified outcome, got %+v", res)
		}
		if !res.Interrupted || res.PreviousScans != 3 {
			t.Errorf("unexpected result: %+v", res)
		}
	})
}

// TestRunScanInterrupted tests that a cancelled scan still writes its report.
func TestRunScanInterrupted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.NewConfig()
	cfg.Targets = []string{"https://example.com", "http://verify-account.tk"}
	cfg.SaveToDB = false
	cfg.JSONReport = true

	var stdout, stderr bytes.Buffer
	cmd := NewScanCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := runScan(ctx, cmd, cfg, slog.New(slog.DiscardHandler))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	var scanReport report.ScanReport
	decodeData(t, stdout.String(), &scanReport)
	if len(scanReport.Results) != 2 {
		t.Fatalf("expected a row per target, got %d", len(scanReport.Results))
	}
	for _, res := range scanReport.Results {
		if !res.Interrupted {
			t.Errorf("expected %s to be marked interrupted", res.URL)
		}
	}
	if scanReport.Summary.Interrupted != 2 || scanReport.Summary.Invalid != 0 {
		t.Errorf("unexpected summary: %+v", scanReport.Summary)
	}
}
