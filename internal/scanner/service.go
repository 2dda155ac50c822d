package scanner

import (
	"context"
	"log/slog"

	"github.com/nao1215/phishscan/internal/classifier"
	"github.com/nao1215/phishscan/internal/enrich"
	"github.com/nao1215/phishscan/internal/identity"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/notify"
)

// Service scans single URLs through the classify, enrich, persist and
// notify steps.
type Service struct {
	classifier *classifier.Classifier
	enricher   enrich.Enricher
	store      Store
	identity   identity.Provider
	session    *Session
	notifier   notify.Notifier
	logger     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEnricher sets the enricher. Defaults to enrich.NewStaticEnricher().
func WithEnricher(e enrich.Enricher) ServiceOption {
	return func(s *Service) {
		s.enricher = e
	}
}

// WithStore enables persistence for signed-in users.
// Without a store the persist step is skipped. The provider is asked once
// per Service, so a new Service picks up sign-in changes.
func WithStore(store Store, provider identity.Provider) ServiceOption {
	return func(s *Service) {
		s.store = store
		s.identity = provider
	}
}

// WithNotifier sets where user-facing messages go. Defaults to notify.Discard.
func WithNotifier(n notify.Notifier) ServiceOption {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithServiceLogger sets a custom logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service around c.
func NewService(c *classifier.Classifier, opts ...ServiceOption) *Service {
	s := &Service{
		classifier: c,
		enricher:   enrich.NewStaticEnricher(),
		notifier:   notify.Discard,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store != nil && s.identity != nil {
		s.session = NewSession(s.identity, s.notifier, s.logger)
	}
	return s
}

// Pipeline builds a fresh pipeline for one scan.
func (s *Service) Pipeline() *Pipeline {
	p := NewPipeline(WithLogger(s.logger))
	p.AddStep(NewClassifyStep(s.classifier, s.notifier))
	if s.enricher != nil {
		p.AddStep(NewEnrichStep(s.enricher, s.logger))
	}
	if s.session != nil {
		p.AddStep(NewPersistStep(s.store, s.session, s.notifier, s.logger))
	}
	p.AddStep(NewNotifyStep(s.notifier))
	return p
}

// Run scans rawURL and returns the whole job.
// The error is non-nil only for invalid input or cancellation.
func (s *Service) Run(ctx context.Context, rawURL string) (*ScanJob, error) {
	job := NewScanJob(rawURL)
	if err := s.Pipeline().Execute(ctx, job); err != nil {
		return job, err
	}
	return job, nil
}

// Scan scans rawURL and returns its outcome.
func (s *Service) Scan(ctx context.Context, rawURL string) (model.ScanOutcome, error) {
	job, err := s.Run(ctx, rawURL)
	if err != nil {
		return model.ScanOutcome{}, err
	}
	return job.Outcome.Clone(), nil
}
