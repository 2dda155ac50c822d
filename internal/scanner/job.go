package scanner

import (
	"github.com/nao1215/phishscan/internal/identity"
	"github.com/nao1215/phishscan/internal/model"
)

// ScanJob carries one URL through the pipeline.
type ScanJob struct {
	// URL is the input as entered.
	URL string

	// Outcome is filled by the classify step and extended by later steps.
	Outcome model.ScanOutcome

	// Classified is set once Outcome holds a valid classification.
	Classified bool

	// User is the signed-in user, if any.
	User *identity.Identity

	// RecordID is the history record ID when the outcome was saved.
	RecordID int64

	// PreviousScans is how often the user scanned this URL before this scan.
	PreviousScans int

	// SaveErr is the persistence error, if saving failed.
	SaveErr error

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string
}

// NewScanJob creates a job for rawURL.
func NewScanJob(rawURL string) *ScanJob {
	return &ScanJob{URL: rawURL}
}

// Saved reports whether the outcome was written to the history store.
func (j *ScanJob) Saved() bool {
	return j.RecordID > 0
}
