package model

import "time"

// ScanRecord is a scan outcome saved in the history store on behalf of a user.
type ScanRecord struct {
	// ID is the database identifier.
	ID int64 `json:"id"`

	// UserID identifies the user that ran the scan.
	UserID string `json:"user_id"`

	// URL is the scanned URL.
	URL string `json:"url"`

	// URLHash is the hex fingerprint of the normalized URL.
	URLHash string `json:"url_hash"`

	// RiskScore is the stored risk score.
	RiskScore int `json:"risk_score"`

	// Status is the stored coarse status.
	Status DomainStatus `json:"status"`

	// Reasons are the reasons that were shown to the user.
	Reasons []string `json:"reasons,omitempty"`

	// Details is the stored details payload.
	Details Details `json:"details"`

	// CreatedAt is when the record was saved.
	CreatedAt time.Time `json:"created_at"`
}

// Stats aggregates a user's scan history for the dashboard.
type Stats struct {
	// UserID is the user the stats belong to. Empty means all users.
	UserID string `json:"user_id,omitempty"`

	// TotalScans is the number of stored scans.
	TotalScans int `json:"total_scans"`

	// SafeCount is the number of safe scans.
	SafeCount int `json:"safe_count"`

	// SuspiciousCount is the number of suspicious scans.
	SuspiciousCount int `json:"suspicious_count"`

	// MaliciousCount is the number of malicious scans.
	MaliciousCount int `json:"malicious_count"`

	// AverageRiskScore is the mean risk score across all scans.
	AverageRiskScore float64 `json:"average_risk_score"`

	// LastScanAt is the time of the most recent scan; zero if none.
	LastScanAt time.Time `json:"last_scan_at,omitzero"`

	// Daily counts the last week of scans per day, oldest first.
	// Days without scans are present with zero counts.
	Daily []DailyCount `json:"daily"`

	// Monthly is the threat trend over the last months, oldest first.
	Monthly []MonthlyTrend `json:"monthly"`

	// TopDomains are the registrable domains flagged most often.
	TopDomains []DomainRisk `json:"top_domains"`

	// Users breaks the totals down per user. Only set for all-user stats.
	Users []UserStats `json:"users,omitempty"`
}

// DailyCount is the number of scans per stored status on one UTC day.
type DailyCount struct {
	// Date is the day as YYYY-MM-DD.
	Date       string `json:"date"`
	Safe       int    `json:"safe"`
	Suspicious int    `json:"suspicious"`
	Malicious  int    `json:"malicious"`
}

// Total returns the number of scans on the day.
func (d DailyCount) Total() int {
	return d.Safe + d.Suspicious + d.Malicious
}

// MonthlyTrend summarizes one UTC calendar month.
type MonthlyTrend struct {
	// Month is the month as YYYY-MM.
	Month string `json:"month"`

	// Threats counts suspicious and malicious scans.
	Threats int `json:"threats"`

	// Blocked counts malicious scans, the ones users were told not to open.
	Blocked int `json:"blocked"`
}

// Risk levels of a flagged domain.
const (
	// RiskHigh marks a domain with at least one malicious scan.
	RiskHigh = "High"

	// RiskMedium marks a domain that was only ever suspicious.
	RiskMedium = "Medium"
)

// DomainRisk is a registrable domain that was flagged as a threat.
type DomainRisk struct {
	Domain string `json:"domain"`

	// Attempts is how many suspicious or malicious scans hit the domain.
	Attempts int `json:"attempts"`

	// Risk is RiskHigh or RiskMedium.
	Risk string `json:"risk"`
}

// UserStats is one row of the per-user breakdown.
type UserStats struct {
	UserID           string  `json:"user_id"`
	TotalScans       int     `json:"total_scans"`
	ThreatsBlocked   int     `json:"threats_blocked"`
	AverageRiskScore float64 `json:"average_risk_score"`
}

// ThreatsBlocked is the number of scans flagged suspicious or malicious.
func (s Stats) ThreatsBlocked() int {
	return s.SuspiciousCount + s.MaliciousCount
}

// HasScans reports whether any scans were recorded.
func (s Stats) HasScans() bool {
	return s.TotalScans > 0
}

// DetectionRate returns the share of threats among all scans in percent.
func (s Stats) DetectionRate() float64 {
	if s.TotalScans == 0 {
		return 0
	}
	return float64(s.ThreatsBlocked()) * 100 / float64(s.TotalScans)
}
