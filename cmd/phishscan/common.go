package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/identity"
	seclog "github.com/nao1215/phishscan/internal/log"
	"github.com/nao1215/phishscan/internal/report"
	"github.com/nao1215/phishscan/internal/store"
	"github.com/spf13/cobra"
)

// identityFilePath is the fallback identity file used when no keychain is available.
var identityFilePath = filepath.Join(config.XDGConfigDir(), "user")

// errNotSignedIn is returned by commands that need a signed-in user.
var errNotSignedIn = fmt.Errorf("not signed in: run 'phishscan login <user-id>' or set %s", config.EnvUser)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogFormat retrieves the log-format flag from the command or its parent.
// It falls back to text.
func getLogFormat(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format, err = cmd.Root().PersistentFlags().GetString("log-format")
		if err != nil {
			return config.LogFormatText
		}
	}
	return format
}

// setupLogger creates the secure logger used by every command.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	var logger *slog.Logger
	if getLogFormat(cmd) == config.LogFormatJSON {
		logger = seclog.NewSecureJSONLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	} else {
		logger = seclog.NewSecureLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	}
	slog.SetDefault(logger)
	return logger
}

// loadEnvConfig loads .env and returns a Config with environment overrides applied.
func loadEnvConfig() (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg := config.NewConfig()
	cfg.ApplyEnv()
	return cfg, nil
}

// newKeyringProvider returns the keychain-backed identity store with a file fallback.
func newKeyringProvider(logger *slog.Logger) *identity.KeyringProvider {
	return identity.NewKeyringProvider(
		identity.WithFallbackFile(identityFilePath),
		identity.WithLogger(logger),
	)
}

// newIdentityProvider resolves the signed-in user: $PHISHSCAN_USER first, then the keychain.
func newIdentityProvider(logger *slog.Logger) identity.Provider {
	return identity.Chain{
		identity.EnvProvider{Key: config.EnvUser},
		newKeyringProvider(logger),
	}
}

// requireUser returns the signed-in user or errNotSignedIn.
func requireUser(logger *slog.Logger) (identity.Identity, error) {
	user, ok, err := newIdentityProvider(logger).CurrentUser()
	if err != nil {
		return identity.Identity{}, err
	}
	if !ok {
		return identity.Identity{}, errNotSignedIn
	}
	return user, nil
}

// openStore opens the history database in cfg.DBDir.
func openStore(cfg *config.Config) (*store.ScanDB, error) {
	db, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

// reportFormat holds the output flags shared by scan, history and stats.
type reportFormat struct {
	json     bool
	markdown bool
	output   string
	verbose  bool
}

// addFormatFlags registers --json, --markdown and --output on cmd.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
}

// getFormatFlags reads the flags registered by addFormatFlags.
func getFormatFlags(cmd *cobra.Command) (reportFormat, error) {
	var (
		f   reportFormat
		err error
	)
	if f.json, err = cmd.Flags().GetBool("json"); err != nil {
		return f, err
	}
	if f.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return f, err
	}
	if f.output, err = cmd.Flags().GetString("output"); err != nil {
		return f, err
	}
	if f.json && f.markdown {
		return f, config.ErrConflictingReportFormats
	}
	f.verbose = getVerboseFlag(cmd)
	return f, nil
}

// open returns the destination writer and a function closing it.
// Reports may contain browsing history, so files are readable by the owner only.
func (f reportFormat) open(stdout io.Writer) (io.Writer, func() error, error) {
	if f.output == "" {
		return stdout, func() error { return nil }, nil
	}

	if dir := filepath.Dir(f.output); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(f.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, file.Close, nil
}

// writer returns the report writer for the selected format.
func (f reportFormat) writer(w io.Writer) report.Writer {
	switch {
	case f.json:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case f.markdown:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(f.verbose))
	}
}

// emit opens the destination, writes with fn and closes the destination.
func (f reportFormat) emit(stdout io.Writer, fn func(report.Writer) error) (err error) {
	w, closeFn, err := f.open(stdout)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeFn())
	}()

	return fn(f.writer(w))
}
