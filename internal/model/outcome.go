package model

import (
	"slices"
	"time"
)

// ScanOutcome is the result of classifying a single URL.
// An outcome is created fresh per request and must not be mutated after it
// has been handed to a caller, except by the enrichment step that fills
// Details before the outcome leaves the scan service.
type ScanOutcome struct {
	// URL is the scanned URL exactly as the user entered it.
	URL string `json:"url"`

	// RiskScore is the clamped risk score in [0,100].
	RiskScore int `json:"risk_score"`

	// Status is the risk tier derived from RiskScore.
	Status Status `json:"status"`

	// Reasons explains the score in rule evaluation order.
	// It always holds at least one entry.
	Reasons []string `json:"reasons"`

	// ScannedAt is when the classification ran.
	ScannedAt time.Time `json:"scanned_at"`

	// Details is the technical details panel shown with the result.
	// It never influences RiskScore or Status.
	Details Details `json:"details"`
}

// Details holds supplementary information about the scanned URL.
type Details struct {
	// Scheme is the lowercase URL scheme.
	Scheme string `json:"scheme,omitempty"`

	// Host is the lowercase host without port.
	Host string `json:"host,omitempty"`

	// ASCIIHost is the IDNA (punycode) form of Host.
	ASCIIHost string `json:"ascii_host,omitempty"`

	// RegistrableDomain is the eTLD+1 of Host, e.g. "example.co.uk".
	RegistrableDomain string `json:"registrable_domain,omitempty"`

	// MatchedPatterns lists the denylist patterns found in the URL.
	MatchedPatterns []string `json:"matched_patterns,omitempty"`

	// SuspiciousTLD is the suspicious top-level domain the host ends with.
	SuspiciousTLD string `json:"suspicious_tld,omitempty"`

	// DomainAge is a human-readable domain age such as "3 years".
	DomainAge string `json:"domain_age,omitempty"`

	// SSLStatus is "Valid" or "Invalid".
	SSLStatus string `json:"ssl_status,omitempty"`

	// Reputation is "Excellent", "Unknown" or "Poor".
	Reputation string `json:"reputation,omitempty"`

	// ContentAnalysis summarizes the page content verdict.
	ContentAnalysis string `json:"content_analysis,omitempty"`
}

// Clone returns a deep copy of the outcome so that callers can hand it out
// without sharing slices.
func (o ScanOutcome) Clone() ScanOutcome {
	o.Reasons = slices.Clone(o.Reasons)
	o.Details.MatchedPatterns = slices.Clone(o.Details.MatchedPatterns)
	return o
}

// DomainStatus returns the persisted form of the outcome's status.
func (o ScanOutcome) DomainStatus() DomainStatus {
	return o.Status.DomainStatus()
}
