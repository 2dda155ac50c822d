package config

import (
	"slices"
	"strings"

	"github.com/nao1215/phishscan/internal/model"
)

// Default rule weights.
const (
	// DefaultPatternPenalty is added for every denylist pattern found in a URL.
	DefaultPatternPenalty = 25

	// DefaultInsecureSchemePenalty is added when the URL does not use https.
	DefaultInsecureSchemePenalty = 20

	// DefaultSuspiciousTLDPenalty is added when the host ends in a suspicious TLD.
	DefaultSuspiciousTLDPenalty = 30

	// DefaultJitterMax is the exclusive upper bound of the random jitter.
	DefaultJitterMax = 20
)

// defaultDenylist holds substrings that indicate link shorteners or
// phishing vocabulary.
var defaultDenylist = []string{
	"bit.ly",
	"tinyurl.com",
	"goo.gl",
	"ow.ly",
	"is.gd",
	"phishing",
	"verify-account",
	"suspended",
	"urgent-action",
}

// defaultSuspiciousTLDs holds top-level domains with a high share of abuse.
var defaultSuspiciousTLDs = []string{
	".tk",
	".ml",
	".ga",
	".cf",
	".gq",
}

// defaultPositiveReasons are shown when no rule fired.
// They are placeholders until real certificate and domain age checks exist.
var defaultPositiveReasons = []string{
	"Valid SSL certificate",
	"Established domain",
	"Good reputation",
}

// Weights are the points each rule contributes to the risk score.
// Zero values are replaced by the defaults.
type Weights struct {
	// Pattern is added once per matched denylist pattern.
	Pattern int `yaml:"pattern,omitempty"`

	// InsecureScheme is added when the scheme is not https.
	InsecureScheme int `yaml:"insecureScheme,omitempty"`

	// SuspiciousTLD is added when the host ends in a suspicious TLD.
	SuspiciousTLD int `yaml:"suspiciousTLD,omitempty"`

	// JitterMax is the exclusive upper bound of the random jitter.
	JitterMax int `yaml:"jitterMax,omitempty"`
}

// Thresholds are the score limits between status tiers.
// A score strictly greater than a threshold moves to the next tier.
type Thresholds struct {
	// Warning separates safe from warning.
	Warning int `yaml:"warning,omitempty"`

	// Danger separates warning from danger.
	Danger int `yaml:"danger,omitempty"`
}

// Rules is the classifier configuration. It is loaded from the YAML rules
// file so that the denylist and TLD set can be replaced without touching the
// scoring algorithm.
type Rules struct {
	// Denylist holds substrings matched against the full lowercase URL.
	Denylist []string `yaml:"denylist,omitempty"`

	// SuspiciousTLDs holds suffixes matched against the lowercase host.
	SuspiciousTLDs []string `yaml:"suspiciousTLDs,omitempty"`

	// PositiveReasons are reported when no rule fired.
	PositiveReasons []string `yaml:"positiveReasons,omitempty"`

	// Weights are the per-rule penalties.
	Weights Weights `yaml:"weights,omitempty"`

	// Thresholds are the status tier limits.
	Thresholds Thresholds `yaml:"thresholds,omitempty"`
}

// DefaultRules returns the built-in rules.
func DefaultRules() *Rules {
	return &Rules{
		Denylist:        slices.Clone(defaultDenylist),
		SuspiciousTLDs:  slices.Clone(defaultSuspiciousTLDs),
		PositiveReasons: slices.Clone(defaultPositiveReasons),
		Weights: Weights{
			Pattern:        DefaultPatternPenalty,
			InsecureScheme: DefaultInsecureSchemePenalty,
			SuspiciousTLD:  DefaultSuspiciousTLDPenalty,
			JitterMax:      DefaultJitterMax,
		},
		Thresholds: Thresholds{
			Warning: model.DefaultWarningThreshold,
			Danger:  model.DefaultDangerThreshold,
		},
	}
}

// WithDefaults returns a copy of r where every unset field is taken from
// DefaultRules and every pattern is normalized.
func (r *Rules) WithDefaults() *Rules {
	def := DefaultRules()
	if r == nil {
		return def
	}

	result := &Rules{
		Denylist:        normalizePatterns(r.Denylist),
		SuspiciousTLDs:  normalizeTLDs(r.SuspiciousTLDs),
		PositiveReasons: slices.Clone(r.PositiveReasons),
		Weights:         r.Weights,
		Thresholds:      r.Thresholds,
	}

	if len(result.Denylist) == 0 {
		result.Denylist = def.Denylist
	}
	if len(result.SuspiciousTLDs) == 0 {
		result.SuspiciousTLDs = def.SuspiciousTLDs
	}
	if len(result.PositiveReasons) == 0 {
		result.PositiveReasons = def.PositiveReasons
	}
	if result.Weights.Pattern == 0 {
		result.Weights.Pattern = def.Weights.Pattern
	}
	if result.Weights.InsecureScheme == 0 {
		result.Weights.InsecureScheme = def.Weights.InsecureScheme
	}
	if result.Weights.SuspiciousTLD == 0 {
		result.Weights.SuspiciousTLD = def.Weights.SuspiciousTLD
	}
	if result.Weights.JitterMax == 0 {
		result.Weights.JitterMax = def.Weights.JitterMax
	}
	if result.Thresholds.Warning == 0 {
		result.Thresholds.Warning = def.Thresholds.Warning
	}
	if result.Thresholds.Danger == 0 {
		result.Thresholds.Danger = def.Thresholds.Danger
	}

	return result
}

// Validate checks the rules for values the classifier cannot use.
func (r *Rules) Validate() error {
	if err := r.checkPatterns(); err != nil {
		return err
	}

	w := r.Weights
	if w.Pattern < 0 || w.InsecureScheme < 0 || w.SuspiciousTLD < 0 || w.JitterMax <= 0 {
		return ErrInvalidWeights
	}

	th := r.Thresholds
	if th.Warning < model.MinRiskScore || th.Danger > model.MaxRiskScore || th.Warning >= th.Danger {
		return ErrInvalidThresholds
	}

	return nil
}

// checkPatterns rejects blank denylist patterns and TLDs.
func (r *Rules) checkPatterns() error {
	for _, p := range r.Denylist {
		if strings.TrimSpace(p) == "" {
			return ErrEmptyPattern
		}
	}
	for _, tld := range r.SuspiciousTLDs {
		if strings.Trim(strings.TrimSpace(tld), ".") == "" {
			return ErrEmptyPattern
		}
	}
	return nil
}

// normalizePatterns lowercases, trims and de-duplicates denylist patterns
// while keeping their order. Order matters because reasons are reported in
// pattern order.
func normalizePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		result = append(result, p)
	}
	return result
}

// normalizeTLDs normalizes TLD entries to the ".tld" form.
func normalizeTLDs(tlds []string) []string {
	normalized := normalizePatterns(tlds)
	result := make([]string, 0, len(normalized))
	for _, tld := range normalized {
		tld = "." + strings.TrimLeft(tld, ".")
		if tld == "." || slices.Contains(result, tld) {
			continue
		}
		result = append(result, tld)
	}
	return result
}
