package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/phishscan/internal/classifier"
	"github.com/nao1215/phishscan/internal/enrich"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/notify"
)

// User-facing notification texts.
const (
	MsgInvalidURL = "Please enter a valid URL"
	MsgSignIn     = "Sign in to save scan history"
	MsgSaveFailed = "Failed to save scan result"
)

// CompleteMessage is the notification sent when a scan finishes.
func CompleteMessage(outcome model.ScanOutcome) string {
	return fmt.Sprintf("Scan complete: %s (%d%%)", outcome.Status, outcome.RiskScore)
}

// Store persists scan outcomes and answers how often a URL was seen before.
type Store interface {
	Save(ctx context.Context, userID, url string, riskScore int, status model.DomainStatus, details model.Details, reasons ...string) (int64, error)
	CountByURL(ctx context.Context, userID, url string) (int, error)
}

// ClassifyStep scores the URL.
type ClassifyStep struct {
	classifier *classifier.Classifier
	notifier   notify.Notifier
}

// NewClassifyStep creates a ClassifyStep.
func NewClassifyStep(c *classifier.Classifier, n notify.Notifier) *ClassifyStep {
	return &ClassifyStep{classifier: c, notifier: n}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do classifies job.URL. Invalid input is reported to the user and stops the scan.
func (s *ClassifyStep) Do(_ context.Context, job *ScanJob) error {
	outcome, err := s.classifier.Classify(job.URL)
	if err != nil {
		if errors.Is(err, classifier.ErrInvalidInput) {
			s.notifier.Notify(MsgInvalidURL, notify.SeverityError)
		}
		return err
	}

	job.Outcome = outcome
	job.Classified = true
	return nil
}

// EnrichStep fills the details panel. Failures never fail the scan.
type EnrichStep struct {
	enricher enrich.Enricher
	logger   *slog.Logger
}

// NewEnrichStep creates an EnrichStep.
func NewEnrichStep(e enrich.Enricher, logger *slog.Logger) *EnrichStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichStep{enricher: e, logger: logger}
}

// Name returns the step name.
func (s *EnrichStep) Name() string {
	return "enrich"
}

// Do enriches job.Outcome.
func (s *EnrichStep) Do(ctx context.Context, job *ScanJob) error {
	// Work on a copy so that a failing enricher cannot leave a half-written panel.
	outcome := job.Outcome.Clone()
	if err := s.enricher.Enrich(ctx, &outcome); err != nil {
		s.logger.Warn("enrichment failed", "url", job.URL, "error", err)
		return nil
	}

	// Enrichment must not change the verdict.
	outcome.RiskScore = job.Outcome.RiskScore
	outcome.Status = job.Outcome.Status
	outcome.Reasons = job.Outcome.Reasons
	job.Outcome = outcome
	return nil
}

// PersistStep saves the outcome for the signed-in user.
type PersistStep struct {
	store    Store
	session  *Session
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewPersistStep creates a PersistStep. Steps sharing sess share one
// identity lookup and one sign-in reminder.
func NewPersistStep(store Store, sess *Session, n notify.Notifier, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{store: store, session: sess, notifier: n, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do saves job.Outcome and records how often the user scanned the URL
// before. Without a signed-in user nothing is saved. Store errors are
// logged and reported, and the scan continues.
func (s *PersistStep) Do(ctx context.Context, job *ScanJob) error {
	user, ok := s.session.CurrentUser()
	if !ok {
		return nil
	}
	job.User = &user

	o := job.Outcome
	previous, err := s.store.CountByURL(ctx, user.ID, o.URL)
	if err != nil {
		s.logger.Warn("failed to count previous scans", "url", o.URL, "error", err)
	}
	job.PreviousScans = previous

	id, err := s.store.Save(ctx, user.ID, o.URL, o.RiskScore, o.DomainStatus(), o.Details, o.Reasons...)
	if err != nil {
		s.logger.Error("failed to save scan result",
			"url", o.URL,
			"user", user.ID,
			"error", err,
		)
		s.notifier.Notify(MsgSaveFailed, notify.SeverityError)
		job.SaveErr = err
		return nil
	}

	job.RecordID = id
	s.logger.Debug("scan saved", "id", id, "user", user.ID, "previous_scans", previous)
	return nil
}

// NotifyStep reports the verdict.
type NotifyStep struct {
	notifier notify.Notifier
}

// NewNotifyStep creates a NotifyStep.
func NewNotifyStep(n notify.Notifier) *NotifyStep {
	return &NotifyStep{notifier: n}
}

// Name returns the step name.
func (s *NotifyStep) Name() string {
	return "notify"
}

// Do sends the completion message.
func (s *NotifyStep) Do(_ context.Context, job *ScanJob) error {
	s.notifier.Notify(CompleteMessage(job.Outcome), notify.SeverityForStatus(job.Outcome.Status))
	return nil
}
