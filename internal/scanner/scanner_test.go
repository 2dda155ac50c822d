package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/phishscan/internal/classifier"
	"github.com/nao1215/phishscan/internal/identity"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/notify"
)

// fakeStore records saves in memory.
type fakeStore struct {
	mu      sync.Mutex
	err     error
	nextID  int64
	records []model.ScanRecord
}

func (f *fakeStore) Save(_ context.Context, userID, url string, riskScore int, status model.DomainStatus, details model.Details, reasons ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.records = append(f.records, model.ScanRecord{
		ID:        f.nextID,
		UserID:    userID,
		URL:       url,
		RiskScore: riskScore,
		Status:    status,
		Details:   details,
		Reasons:   reasons,
	})
	return f.nextID, nil
}

func (f *fakeStore) CountByURL(_ context.Context, userID, url string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.records {
		if r.UserID == userID && r.URL == url {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) saved() []model.ScanRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ScanRecord(nil), f.records...)
}

// countingIdentity counts provider calls.
type countingIdentity struct {
	mu    sync.Mutex
	calls int
	user  identity.Identity
	ok    bool
}

func (c *countingIdentity) CurrentUser() (identity.Identity, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.user, c.ok, nil
}

func (c *countingIdentity) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type failingIdentity struct{}

func (failingIdentity) CurrentUser() (identity.Identity, bool, error) {
	return identity.Identity{}, false, errors.New("keychain locked")
}

func newTestService(store Store, provider identity.Provider, rec *notify.Recorder) *Service {
	c := classifier.New(nil, classifier.WithRandom(classifier.FixedRandom(5)))
	opts := []ServiceOption{WithNotifier(rec)}
	if store != nil {
		opts = append(opts, WithStore(store, provider))
	}
	return NewService(c, opts...)
}

func TestServiceScanSignedIn(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rec := notify.NewRecorder()
	svc := newTestService(store, identity.Static{ID: "alice"}, rec)

	job, err := svc.Run(context.Background(), "http://verify-account.tk")
	require.NoError(t, err)

	assert.Equal(t, []string{"classify", "enrich", "persist", "notify"}, job.PerformedSteps)
	assert.Equal(t, 80, job.Outcome.RiskScore)
	assert.Equal(t, model.StatusDanger, job.Outcome.Status)
	assert.Equal(t, "2 days", job.Outcome.Details.DomainAge)
	assert.True(t, job.Saved())
	require.NotNil(t, job.User)
	assert.Equal(t, "alice", job.User.ID)

	saved := store.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, "alice", saved[0].UserID)
	assert.Equal(t, "http://verify-account.tk", saved[0].URL)
	assert.Equal(t, 80, saved[0].RiskScore)
	assert.Equal(t, model.DomainStatusMalicious, saved[0].Status)
	assert.Equal(t, job.Outcome.Reasons, saved[0].Reasons)
	assert.Equal(t, "verify-account.tk", saved[0].Details.RegistrableDomain)

	assert.Equal(t, []notify.Message{
		{Text: "Scan complete: danger (80%)", Severity: notify.SeverityError},
	}, rec.Messages())
}

func TestServiceScanSignedOut(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rec := notify.NewRecorder()
	svc := newTestService(store, identity.Static{}, rec)

	outcome, err := svc.Scan(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSafe, outcome.Status)
	assert.Equal(t, 5, outcome.RiskScore)

	assert.Empty(t, store.saved())
	assert.Equal(t, []notify.Message{
		{Text: MsgSignIn, Severity: notify.SeverityInfo},
		{Text: "Scan complete: safe (5%)", Severity: notify.SeveritySuccess},
	}, rec.Messages())
}

func TestServiceScanIdentityError(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rec := notify.NewRecorder()
	svc := newTestService(store, failingIdentity{}, rec)

	_, err := svc.Scan(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Empty(t, store.saved())
	assert.Equal(t, MsgSignIn, rec.Messages()[0].Text)
}

func TestServiceSignedOutBatchRemindsOnce(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rec := notify.NewRecorder()
	provider := &countingIdentity{}
	svc := newTestService(store, provider, rec)

	urls := []string{"https://a.example", "https://b.example", "https://c.example", "https://d.example"}
	results, err := NewBatchProcessor(svc, WithConcurrency(2)).ProcessBatch(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, results, len(urls))
	for _, r := range results {
		require.NoError(t, r.Err)
	}

	signIn := 0
	for _, m := range rec.Messages() {
		if m.Text == MsgSignIn {
			signIn++
		}
	}
	assert.Equal(t, 1, signIn)
	assert.Equal(t, 1, provider.callCount())
	assert.Empty(t, store.saved())
}

func TestServiceSignedInLooksUpIdentityOnce(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	provider := &countingIdentity{user: identity.Identity{ID: "alice"}, ok: true}
	svc := newTestService(store, provider, notify.NewRecorder())

	for range 3 {
		_, err := svc.Run(context.Background(), "https://example.com")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, provider.callCount())
	assert.Len(t, store.saved(), 3)
}

func TestServiceScanPreviousScans(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := newTestService(store, identity.Static{ID: "alice"}, notify.NewRecorder())

	first, err := svc.Run(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, first.PreviousScans)

	second, err := svc.Run(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, second.PreviousScans)

	other, err := svc.Run(context.Background(), "https://other.example")
	require.NoError(t, err)
	assert.Equal(t, 0, other.PreviousScans)
}

func TestServiceScanSaveFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	store := &fakeStore{err: boom}
	rec := notify.NewRecorder()
	svc := newTestService(store, identity.Static{ID: "alice"}, rec)

	job, err := svc.Run(context.Background(), "https://bit.ly/free-money")
	require.NoError(t, err)
	assert.True(t, job.Classified)
	assert.False(t, job.Saved())
	assert.ErrorIs(t, job.SaveErr, boom)
	assert.Equal(t, 30, job.Outcome.RiskScore)

	assert.Equal(t, []notify.Message{
		{Text: MsgSaveFailed, Severity: notify.SeverityError},
		{Text: "Scan complete: safe (30%)", Severity: notify.SeveritySuccess},
	}, rec.Messages())
}

func TestServiceScanInvalidURL(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rec := notify.NewRecorder()
	svc := newTestService(store, identity.Static{ID: "alice"}, rec)

	job, err := svc.Run(context.Background(), "not a url")
	require.ErrorIs(t, err, classifier.ErrInvalidInput)
	assert.False(t, job.Classified)
	assert.Empty(t, job.PerformedSteps)
	assert.Empty(t, store.saved())
	assert.Equal(t, []notify.Message{
		{Text: MsgInvalidURL, Severity: notify.SeverityError},
	}, rec.Messages())

	_, err = svc.Scan(context.Background(), "")
	var invalid *classifier.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestServiceWithoutStore(t *testing.T) {
	t.Parallel()

	rec := notify.NewRecorder()
	svc := newTestService(nil, nil, rec)

	job, err := svc.Run(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"classify", "enrich", "notify"}, job.PerformedSteps)
	require.Len(t, rec.Messages(), 1)
	assert.Equal(t, "Scan complete: safe (5%)", rec.Messages()[0].Text)
}

func TestServiceScanCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(nil, nil, notify.NewRecorder())
	_, err := svc.Scan(ctx, "https://example.com")
	assert.ErrorIs(t, err, context.Canceled)
}

type failingEnricher struct{}

func (failingEnricher) Enrich(_ context.Context, o *model.ScanOutcome) error {
	o.Details.DomainAge = "half written"
	o.RiskScore = 0
	return errors.New("whois down")
}

type tamperingEnricher struct{}

func (tamperingEnricher) Enrich(_ context.Context, o *model.ScanOutcome) error {
	o.Details.Reputation = "Checked"
	o.RiskScore = 0
	o.Status = model.StatusSafe
	return nil
}

func TestEnrichStep(t *testing.T) {
	t.Parallel()

	c := classifier.New(nil, classifier.WithRandom(classifier.FixedRandom(0)))

	t.Run("failure keeps the outcome untouched", func(t *testing.T) {
		t.Parallel()

		svc := NewService(c, WithEnricher(failingEnricher{}))
		job, err := svc.Run(context.Background(), "http://verify-account.tk")
		require.NoError(t, err)
		assert.Empty(t, job.Outcome.Details.DomainAge)
		assert.Equal(t, 75, job.Outcome.RiskScore)
	})

	t.Run("enrichment cannot change the verdict", func(t *testing.T) {
		t.Parallel()

		svc := NewService(c, WithEnricher(tamperingEnricher{}))
		job, err := svc.Run(context.Background(), "http://verify-account.tk")
		require.NoError(t, err)
		assert.Equal(t, "Checked", job.Outcome.Details.Reputation)
		assert.Equal(t, 75, job.Outcome.RiskScore)
		assert.Equal(t, model.StatusDanger, job.Outcome.Status)
	})
}

func TestCompleteMessage(t *testing.T) {
	t.Parallel()

	msg := CompleteMessage(model.ScanOutcome{Status: model.StatusWarning, RiskScore: 55})
	assert.Equal(t, "Scan complete: warning (55%)", msg)
}
