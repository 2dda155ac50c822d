package model

// Status is the discrete risk tier of a scanned URL.
// It is derived from the risk score by fixed thresholds and is what
// users see next to the score.
type Status string

const (
	// StatusSafe means no meaningful risk indicators were found.
	StatusSafe Status = "safe"

	// StatusWarning means the URL shows some phishing indicators and
	// should be treated with caution.
	StatusWarning Status = "warning"

	// StatusDanger means the URL shows strong phishing indicators.
	StatusDanger Status = "danger"
)

// Default score thresholds. A score strictly greater than the threshold
// moves the URL into the next tier.
const (
	// DefaultWarningThreshold separates safe from warning.
	DefaultWarningThreshold = 40

	// DefaultDangerThreshold separates warning from danger.
	DefaultDangerThreshold = 70

	// MinRiskScore is the lowest possible risk score.
	MinRiskScore = 0

	// MaxRiskScore is the highest possible risk score.
	MaxRiskScore = 100
)

// String returns the status as a lowercase word.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusSafe, StatusWarning, StatusDanger:
		return true
	default:
		return false
	}
}

// DomainStatus converts the risk tier into the coarse vocabulary used
// by the scan history store.
func (s Status) DomainStatus() DomainStatus {
	switch s {
	case StatusWarning:
		return DomainStatusSuspicious
	case StatusDanger:
		return DomainStatusMalicious
	default:
		return DomainStatusSafe
	}
}

// StatusForScore derives the status tier from a risk score using the
// default thresholds: danger above 70, warning above 40, otherwise safe.
func StatusForScore(score int) Status {
	return StatusForScoreWithThresholds(score, DefaultWarningThreshold, DefaultDangerThreshold)
}

// StatusForScoreWithThresholds derives the status tier from a risk score
// using custom thresholds.
func StatusForScoreWithThresholds(score, warning, danger int) Status {
	switch {
	case score > danger:
		return StatusDanger
	case score > warning:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// DomainStatus is the three-valued status persisted with each scan
// record: safe, suspicious or malicious.
type DomainStatus string

const (
	// DomainStatusSafe is stored for safe scans.
	DomainStatusSafe DomainStatus = "safe"

	// DomainStatusSuspicious is stored for warning scans.
	DomainStatusSuspicious DomainStatus = "suspicious"

	// DomainStatusMalicious is stored for danger scans.
	DomainStatusMalicious DomainStatus = "malicious"
)

// String returns the domain status as a lowercase word.
func (d DomainStatus) String() string {
	return string(d)
}

// IsValid reports whether d is one of the known domain statuses.
func (d DomainStatus) IsValid() bool {
	switch d {
	case DomainStatusSafe, DomainStatusSuspicious, DomainStatusMalicious:
		return true
	default:
		return false
	}
}

// Status converts the stored domain status back into a risk tier.
func (d DomainStatus) Status() Status {
	switch d {
	case DomainStatusSuspicious:
		return StatusWarning
	case DomainStatusMalicious:
		return StatusDanger
	default:
		return StatusSafe
	}
}
