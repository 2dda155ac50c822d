package classifier

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/model"
)

// SecureScheme is the only scheme that does not incur the transport penalty.
const SecureScheme = "https"

// Reason texts for fixed rules.
const (
	// ReasonInsecureScheme is reported when the scheme is not https.
	ReasonInsecureScheme = "No HTTPS encryption"

	reasonPatternFormat = "Suspicious pattern detected: %s"
	reasonTLDFormat     = "Suspicious top-level domain: %s"
)

// PatternReason returns the reason reported for a matched denylist pattern.
func PatternReason(pattern string) string {
	return fmt.Sprintf(reasonPatternFormat, pattern)
}

// TLDReason returns the reason reported for a suspicious top-level domain.
func TLDReason(tld string) string {
	return fmt.Sprintf(reasonTLDFormat, tld)
}

// Classifier scores URLs against a fixed rule set.
// A Classifier is safe for concurrent use; its rules are read-only after New.
type Classifier struct {
	rules  *config.Rules
	random Random
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRandom sets the jitter source.
func WithRandom(r Random) Option {
	return func(c *Classifier) {
		if r != nil {
			c.random = r
		}
	}
}

// WithClock sets the clock used for ScannedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Classifier. Nil rules mean config.DefaultRules().
// Unset rule fields are filled from the defaults, and so is a negative
// JitterMax, since the jitter bound must be positive.
func New(rules *config.Rules, opts ...Option) *Classifier {
	c := &Classifier{
		rules:  rules.WithDefaults(),
		random: systemRandom{},
		now:    time.Now,
		logger: slog.Default(),
	}
	if c.rules.Weights.JitterMax <= 0 {
		c.rules.Weights.JitterMax = config.DefaultJitterMax
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// target is the parsed form of the input used by the rules.
type target struct {
	raw    string
	full   string
	scheme string
	host   string
}

// parse validates the input and extracts the lowercase URL and host.
func parse(raw string) (target, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return target{}, newInvalidInputError(raw, "empty input", nil)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return target{}, newInvalidInputError(raw, "cannot parse", err)
	}
	if u.Scheme == "" {
		return target{}, newInvalidInputError(raw, "missing scheme", nil)
	}
	host := u.Hostname()
	if host == "" {
		return target{}, newInvalidInputError(raw, "missing host", nil)
	}

	return target{
		raw:    raw,
		full:   strings.ToLower(trimmed),
		scheme: strings.ToLower(u.Scheme),
		host:   strings.ToLower(host),
	}, nil
}

// Classify scores the URL and returns a fresh outcome.
// It returns an *InvalidInputError if the input is not a URL with a scheme
// and a host.
func (c *Classifier) Classify(rawURL string) (model.ScanOutcome, error) {
	t, err := parse(rawURL)
	if err != nil {
		c.logger.Debug("rejected input", "error", err)
		return model.ScanOutcome{}, err
	}

	score, reasons, details := c.evaluate(t)

	jitter := c.random.IntN(c.rules.Weights.JitterMax)
	score = Clamp(score + jitter)

	outcome := model.ScanOutcome{
		URL:       rawURL,
		RiskScore: score,
		Status:    c.StatusForScore(score),
		Reasons:   reasons,
		ScannedAt: c.now(),
		Details:   details,
	}

	c.logger.Debug("classified url",
		"url", t.raw,
		"score", outcome.RiskScore,
		"status", outcome.Status,
		"jitter", jitter,
	)

	return outcome, nil
}

// evaluate applies the rules in order and returns the score before jitter
// and clamp, together with the reasons and the rule details.
func (c *Classifier) evaluate(t target) (int, []string, model.Details) {
	var (
		score   int
		reasons []string
		details = model.Details{Scheme: t.scheme, Host: t.host}
	)

	for _, pattern := range c.rules.Denylist {
		if strings.Contains(t.full, pattern) {
			score += c.rules.Weights.Pattern
			reasons = append(reasons, PatternReason(pattern))
			details.MatchedPatterns = append(details.MatchedPatterns, pattern)
		}
	}

	if t.scheme != SecureScheme {
		score += c.rules.Weights.InsecureScheme
		reasons = append(reasons, ReasonInsecureScheme)
	}

	for _, tld := range c.rules.SuspiciousTLDs {
		if strings.HasSuffix(t.host, tld) {
			score += c.rules.Weights.SuspiciousTLD
			reasons = append(reasons, TLDReason(tld))
			details.SuspiciousTLD = tld
			break
		}
	}

	if score == 0 {
		reasons = append(reasons, c.rules.PositiveReasons...)
	}

	return score, reasons, details
}

// StatusForScore derives the status tier using the classifier's thresholds.
func (c *Classifier) StatusForScore(score int) model.Status {
	return model.StatusForScoreWithThresholds(score, c.rules.Thresholds.Warning, c.rules.Thresholds.Danger)
}

// Clamp limits a score to [0,100].
func Clamp(score int) int {
	return min(max(score, model.MinRiskScore), model.MaxRiskScore)
}
