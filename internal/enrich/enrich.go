package enrich

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/phishscan/internal/model"
)

// ErrNilOutcome is returned when Enrich is called without an outcome.
var ErrNilOutcome = errors.New("enrich: nil outcome")

// Enricher adds details to a classified outcome.
type Enricher interface {
	// Enrich updates outcome.Details in place.
	Enrich(ctx context.Context, outcome *model.ScanOutcome) error
}

// Panel values shown in the details panel for each status tier.
const (
	SSLValid   = "Valid"
	SSLInvalid = "Invalid"

	ReputationExcellent = "Excellent"
	ReputationUnknown   = "Unknown"
	ReputationPoor      = "Poor"

	ContentClean      = "Clean content"
	ContentSuspicious = "Suspicious patterns detected"
)

// panel is the placeholder set for one status tier.
type panel struct {
	domainAge  string
	ssl        string
	reputation string
	content    string
}

var panels = map[model.Status]panel{
	model.StatusDanger:  {domainAge: "2 days", ssl: SSLInvalid, reputation: ReputationPoor, content: ContentSuspicious},
	model.StatusWarning: {domainAge: "15 days", ssl: SSLValid, reputation: ReputationUnknown, content: ContentClean},
	model.StatusSafe:    {domainAge: "3 years", ssl: SSLValid, reputation: ReputationExcellent, content: ContentClean},
}

// StaticEnricher fills host information and the placeholder panel.
// It performs no network access.
type StaticEnricher struct{}

// NewStaticEnricher returns a StaticEnricher.
func NewStaticEnricher() *StaticEnricher {
	return &StaticEnricher{}
}

// Enrich implements Enricher.
func (e *StaticEnricher) Enrich(_ context.Context, outcome *model.ScanOutcome) error {
	if outcome == nil {
		return ErrNilOutcome
	}

	d := &outcome.Details
	if d.Host == "" || d.Scheme == "" {
		if u, err := url.Parse(strings.TrimSpace(outcome.URL)); err == nil {
			if d.Host == "" {
				d.Host = strings.ToLower(u.Hostname())
			}
			if d.Scheme == "" {
				d.Scheme = strings.ToLower(u.Scheme)
			}
		}
	}

	if d.Host != "" {
		d.ASCIIHost = ASCIIHost(d.Host)
		d.RegistrableDomain = RegistrableDomain(d.ASCIIHost)
	}

	p, ok := panels[outcome.Status]
	if !ok {
		p = panels[model.StatusSafe]
	}
	d.DomainAge = p.domainAge
	d.SSLStatus = p.ssl
	d.Reputation = p.reputation
	d.ContentAnalysis = p.content

	return nil
}

// ASCIIHost returns the punycode form of host.
// The host is returned unchanged if it cannot be converted.
func ASCIIHost(host string) string {
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil || ascii == "" {
		return host
	}
	return ascii
}

// RegistrableDomain returns the eTLD+1 of host, e.g. "example.co.uk" for
// "login.example.co.uk". Hosts that have no registrable part, such as IP
// addresses or bare public suffixes, are returned unchanged.
func RegistrableDomain(host string) string {
	if net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.TrimSuffix(host, "."))
	if err != nil {
		return host
	}
	return domain
}
