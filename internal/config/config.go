package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "phishscan"

	// DefaultBatchSize is the number of URLs classified concurrently when
	// scanning a list.
	DefaultBatchSize = 10

	// DefaultTimeout bounds a whole scan, including the optional WHOIS lookup.
	// Classification alone finishes in microseconds.
	DefaultTimeout = 30 * time.Second

	// DefaultHistoryLimit is how many recent scans the history command shows.
	DefaultHistoryLimit = 20

	// DBFileName is the SQLite database file name inside the data directory.
	DBFileName = "phishscan.db"

	// LogFormatText selects logfmt-style log lines.
	LogFormatText = "text"

	// LogFormatJSON selects one JSON object per log line.
	LogFormatJSON = "json"
)

// ValidateLogFormat checks a --log-format value.
func ValidateLogFormat(format string) error {
	switch format {
	case LogFormatText, LogFormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, format)
	}
}

// Config holds all configuration options for a phishscan run.
// It is populated from CLI flags and passed down explicitly rather than kept
// in global state.
type Config struct {
	// Targets is the list of URLs to classify.
	Targets []string

	// ListFile is a file with one URL per line. Lines are appended to Targets.
	ListFile string

	// RulesFilePath is the path to the YAML rules file.
	// If empty, the tool searches for .phishscan.yaml in the current directory
	// and then in the user's home directory.
	RulesFilePath string

	// Rules holds the classifier rules. Never nil after buildConfig.
	Rules *Rules

	// Timeout bounds the whole scan command, WHOIS lookups included.
	// URLs that have not finished when it expires are reported as interrupted.
	Timeout time.Duration

	// BatchSize is the number of concurrent classifications for list scans.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// Quiet suppresses notifications on stderr.
	Quiet bool

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Stdout when empty.
	ReportFile string

	// DBDir is the directory holding the SQLite history database.
	DBDir string

	// SaveToDB enables saving scan outcomes for the signed-in user.
	SaveToDB bool

	// Whois enables WHOIS lookups to fill in the real domain age.
	Whois bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Rules:     DefaultRules(),
		Timeout:   DefaultTimeout,
		BatchSize: DefaultBatchSize,
		DBDir:     XDGDataDir(),
		SaveToDB:  true,
	}
}

// XDGDataDir returns the XDG data directory for phishscan.
// On Linux: ~/.local/share/phishscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for phishscan.
// On Linux: ~/.config/phishscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Rules != nil {
		if err := c.Rules.Validate(); err != nil {
			return err
		}
	}

	return nil
}
