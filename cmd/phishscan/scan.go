package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nao1215/phishscan/internal/classifier"
	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/enrich"
	"github.com/nao1215/phishscan/internal/notify"
	"github.com/nao1215/phishscan/internal/report"
	"github.com/nao1215/phishscan/internal/scanner"
	"github.com/spf13/cobra"
)

// errInvalidTargets is returned when at least one URL failed validation.
var errInvalidTargets = errors.New("invalid URLs")

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Rate URLs for phishing risk",
		Long: `Scan rates each URL for phishing risk.

The score starts at 0 and grows with every rule that fires:
- Denylisted substrings such as link shorteners or "verify-account"
- A scheme other than https
- A suspicious top-level domain such as .tk

A small random jitter is added and the score is clamped to 0-100.
Scores above 70 are danger, above 40 warning, otherwise safe.

When signed in, every valid scan is saved to your history.

Examples:
  # Scan a single URL
  phishscan scan https://example.com

  # Scan a list of URLs, one per line
  phishscan scan --list urls.txt

  # Look up the real domain age over WHOIS
  phishscan scan --whois https://example.com

  # Output a Markdown report to a file
  phishscan scan --markdown -o report.md http://verify-account.tk

Rules file (.phishscan.yaml) example:
  denylist: [bit.ly, verify-account]
  suspiciousTLDs: [.tk, .ml]
  weights: {pattern: 25, insecureScheme: 20, suspiciousTLD: 30, jitterMax: 20}
  thresholds: {warning: 40, danger: 70}`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	cmd.Flags().StringP("list", "l", "",
		"File with one URL per line (# starts a comment)")
	cmd.Flags().StringP("rules", "r", "",
		"Rules file path (default: .phishscan.yaml in current or home directory)")
	cmd.Flags().Bool("whois", false,
		"Look up the domain creation date over WHOIS")
	cmd.Flags().Bool("no-save", false,
		"Do not save results to the history")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for the whole scan")
	cmd.Flags().BoolP("quiet", "q", false,
		"Only print error notifications")
	addFormatFlags(cmd)

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cmd, cfg, logger)
}

// buildConfig creates a Config from the environment and cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadEnvConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if cfg.ListFile, err = flags.GetString("list"); err != nil {
		return nil, err
	}
	if cfg.RulesFilePath, err = flags.GetString("rules"); err != nil {
		return nil, err
	}
	if cfg.Whois, err = flags.GetBool("whois"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	format, err := getFormatFlags(cmd)
	if err != nil {
		return nil, err
	}
	cfg.JSONReport = format.json
	cfg.MarkdownReport = format.markdown
	cfg.ReportFile = format.output

	// An explicit rules path must exist; otherwise the defaults apply silently.
	rulesPath := config.FindRulesFile(cfg.RulesFilePath)
	switch {
	case rulesPath != "":
		rules, err := config.LoadRulesFile(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules file %s: %w", rulesPath, err)
		}
		cfg.Rules = rules
	case cfg.RulesFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.RulesFilePath)
	}

	cfg.Targets = append(cfg.Targets, args...)
	if cfg.ListFile != "" {
		urls, err := readListFile(cfg.ListFile)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, urls...)
	}

	return cfg, nil
}

// readListFile reads one URL per line. Blank lines and lines starting with # are skipped.
func readListFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open list file: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list file: %w", err)
	}
	return urls, nil
}

// newScanService wires the classifier and its collaborators for cfg.
// The returned cleanup function closes the history database, if one was opened.
func newScanService(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*scanner.Service, func()) {
	var notifier notify.Notifier = notify.NewConsoleNotifier(cmd.ErrOrStderr(), cfg.Quiet)
	if cfg.Verbose {
		notifier = notify.Multi{notifier, notify.NewLogNotifier(logger)}
	}

	opts := []scanner.ServiceOption{
		scanner.WithNotifier(notifier),
		scanner.WithServiceLogger(logger),
	}

	if cfg.Whois {
		opts = append(opts, scanner.WithEnricher(enrich.NewWhoisEnricher(nil,
			enrich.WithLookup(enrich.NetworkLookup(cfg.Timeout)),
			enrich.WithWhoisLogger(logger),
		)))
	}

	cleanup := func() {}
	if cfg.SaveToDB {
		db, err := openStore(cfg)
		if err != nil {
			// Scanning still works without history.
			logger.Warn("history disabled", "error", err)
			notifier.Notify(scanner.MsgSaveFailed, notify.SeverityWarning)
		} else {
			logger.Debug("database opened", "path", db.Path())
			opts = append(opts, scanner.WithStore(db, newIdentityProvider(logger)))
			cleanup = func() {
				if err := db.Close(); err != nil {
					logger.Error("failed to close database", "error", err)
				}
			}
		}
	}

	c := classifier.New(cfg.Rules, classifier.WithLogger(logger))
	return scanner.NewService(c, opts...), cleanup
}

// runScan scans every target and writes the report.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
		"whois", cfg.Whois,
	)

	svc, cleanup := newScanService(cmd, cfg, logger)
	defer cleanup()

	bp := scanner.NewBatchProcessor(svc,
		scanner.WithConcurrency(cfg.BatchSize),
		scanner.WithBatchLogger(logger),
	)

	// A timeout still reports what finished; the error is returned after.
	batch, scanErr := bp.ProcessBatch(ctx, cfg.Targets)

	results := make([]report.Result, len(batch))
	for i, r := range batch {
		results[i] = toReportResult(cfg.Targets[i], r)
	}
	scanReport := report.NewScanReport(results)

	format := reportFormat{
		json:     cfg.JSONReport,
		markdown: cfg.MarkdownReport,
		output:   cfg.ReportFile,
		verbose:  cfg.Verbose,
	}
	err := format.emit(cmd.OutOrStdout(), func(w report.Writer) error {
		_, err := w.Write(scanReport)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if n := scanReport.Summary.Interrupted; scanErr != nil && n > 0 {
		logger.Warn("scan interrupted", "unfinished", n, "error", scanErr)
		return fmt.Errorf("scan interrupted: %d of %d URLs unfinished: %w",
			n, scanReport.Summary.Total, scanErr)
	}
	if n := scanReport.Summary.Invalid; n > 0 {
		return fmt.Errorf("%w: %d of %d", errInvalidTargets, n, scanReport.Summary.Total)
	}
	return nil
}

// toReportResult converts a batch result into a report row. A job that was
// classified before cancellation keeps its outcome and is marked interrupted.
func toReportResult(target string, r scanner.BatchResult) report.Result {
	res := report.Result{URL: target}
	interrupted := errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded)

	if r.Job != nil && r.Job.Classified && (r.Err == nil || interrupted) {
		outcome := r.Job.Outcome.Clone()
		res.Outcome = &outcome
		res.Saved = r.Job.Saved()
		res.PreviousScans = r.Job.PreviousScans
	}

	var invalid *classifier.InvalidInputError
	switch {
	case interrupted:
		res.Interrupted = true
		res.Error = r.Err.Error()
	case errors.As(r.Err, &invalid):
		res.Error = invalid.Reason
	case r.Err != nil:
		res.Error = r.Err.Error()
	case res.Outcome == nil:
		res.Error = "not scanned"
	}
	return res
}
