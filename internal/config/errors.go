package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Rules.Validate() and can
// be matched with errors.Is().
var (
	// ErrNoTarget is returned when no URL or list file is specified.
	ErrNoTarget = errors.New("no target specified: provide a URL or use --list")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidWeights is returned when a rule weight is negative or the
	// jitter bound is not positive.
	ErrInvalidWeights = errors.New("invalid rule weights: penalties must be non-negative and jitterMax positive")

	// ErrInvalidThresholds is returned when the status thresholds are out of
	// range or not strictly increasing.
	ErrInvalidThresholds = errors.New("invalid thresholds: require 0 <= warning < danger <= 100")

	// ErrInvalidLogFormat is returned when --log-format is neither text nor json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrEmptyPattern is returned when the rules file contains a blank
	// denylist pattern or TLD. A blank pattern would match every URL.
	ErrEmptyPattern = errors.New("rules contain an empty pattern")
)
