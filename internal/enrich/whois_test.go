package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/phishscan/internal/model"
)

const exampleWhois = `Domain Name: EXAMPLE.COM
Registry Domain ID: 2336799_DOMAIN_COM-VRSN
Registrar WHOIS Server: whois.iana.org
Registrar URL: http://res-dom.iana.org
Updated Date: 2024-08-14T07:01:34Z
Creation Date: 1995-08-14T04:00:00Z
Registry Expiry Date: 2025-08-13T04:00:00Z
Registrar: RESERVED-Internet Assigned Numbers Authority
Registrar IANA ID: 376
Domain Status: clientDeleteProhibited https://icann.org/epp#clientDeleteProhibited
Name Server: A.IANA-SERVERS.NET
Name Server: B.IANA-SERVERS.NET
DNSSEC: signedDelegation
`

func TestWhoisEnricher(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("replaces domain age", func(t *testing.T) {
		t.Parallel()

		var queried string
		w := NewWhoisEnricher(nil,
			WithLookup(func(_ context.Context, domain string) (string, error) {
				queried = domain
				return exampleWhois, nil
			}),
			WithNow(func() time.Time { return now }),
		)

		outcome := &model.ScanOutcome{URL: "https://www.example.com/login", Status: model.StatusSafe}
		require.NoError(t, w.Enrich(context.Background(), outcome))

		assert.Equal(t, "example.com", queried)
		assert.Equal(t, "30 years", outcome.Details.DomainAge)
		assert.Equal(t, SSLValid, outcome.Details.SSLStatus)
	})

	t.Run("lookup failure keeps placeholder", func(t *testing.T) {
		t.Parallel()

		w := NewWhoisEnricher(NewStaticEnricher(),
			WithLookup(func(context.Context, string) (string, error) {
				return "", errors.New("connection refused")
			}),
		)

		outcome := &model.ScanOutcome{URL: "http://verify-account.tk", Status: model.StatusDanger}
		require.NoError(t, w.Enrich(context.Background(), outcome))
		assert.Equal(t, "2 days", outcome.Details.DomainAge)
	})

	t.Run("IP hosts are not queried", func(t *testing.T) {
		t.Parallel()

		called := false
		w := NewWhoisEnricher(nil, WithLookup(func(context.Context, string) (string, error) {
			called = true
			return exampleWhois, nil
		}))

		outcome := &model.ScanOutcome{URL: "http://192.0.2.10/admin", Status: model.StatusWarning}
		require.NoError(t, w.Enrich(context.Background(), outcome))
		assert.False(t, called)
		assert.Equal(t, "15 days", outcome.Details.DomainAge)
	})

	t.Run("wrapped error is returned", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		w := NewWhoisEnricher(failingEnricher{boom})
		err := w.Enrich(context.Background(), &model.ScanOutcome{})
		assert.ErrorIs(t, err, boom)
	})
}

func TestParseCreatedDate(t *testing.T) {
	t.Parallel()

	created, err := ParseCreatedDate(exampleWhois)
	require.NoError(t, err)
	assert.Equal(t, 1995, created.Year())
	assert.Equal(t, time.August, created.Month())
	assert.Equal(t, 14, created.Day())

	_, err = ParseCreatedDate("")
	assert.Error(t, err)
}

func TestNetworkLookupHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The lookup may race with the cancelled context; either way it must return.
	_, err := NetworkLookup(time.Millisecond)(ctx, "example.invalid")
	assert.Error(t, err)
}

func TestFormatAge(t *testing.T) {
	t.Parallel()

	day := 24 * time.Hour
	testCases := []struct {
		age  time.Duration
		want string
	}{
		{time.Hour, "less than a day"},
		{day, "1 day"},
		{15 * day, "15 days"},
		{90 * day, "3 months"},
		{400 * day, "13 months"},
		{3 * 365 * day, "3 years"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, FormatAge(tc.age), tc.age.String())
	}
}
