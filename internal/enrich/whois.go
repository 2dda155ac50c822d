package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"github.com/nao1215/phishscan/internal/model"
)

// DefaultWhoisTimeout bounds a single WHOIS query.
const DefaultWhoisTimeout = 10 * time.Second

// ErrNoCreationDate is returned when a WHOIS answer has no usable creation date.
var ErrNoCreationDate = errors.New("whois: no creation date")

// LookupFunc returns the raw WHOIS answer for a domain.
type LookupFunc func(ctx context.Context, domain string) (string, error)

// createdLayouts are the creation date formats seen in WHOIS answers.
var createdLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// WhoisEnricher replaces the placeholder domain age with the age reported by
// WHOIS. It wraps another Enricher that runs first.
type WhoisEnricher struct {
	next   Enricher
	lookup LookupFunc
	now    func() time.Time
	logger *slog.Logger
}

// WhoisOption configures a WhoisEnricher.
type WhoisOption func(*WhoisEnricher)

// WithLookup sets the WHOIS lookup function.
func WithLookup(fn LookupFunc) WhoisOption {
	return func(w *WhoisEnricher) {
		if fn != nil {
			w.lookup = fn
		}
	}
}

// WithNow sets the clock used to compute ages.
func WithNow(now func() time.Time) WhoisOption {
	return func(w *WhoisEnricher) {
		if now != nil {
			w.now = now
		}
	}
}

// WithWhoisLogger sets a custom logger.
func WithWhoisLogger(logger *slog.Logger) WhoisOption {
	return func(w *WhoisEnricher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWhoisEnricher creates a WhoisEnricher around next.
// A nil next means NewStaticEnricher().
func NewWhoisEnricher(next Enricher, opts ...WhoisOption) *WhoisEnricher {
	if next == nil {
		next = NewStaticEnricher()
	}
	w := &WhoisEnricher{
		next:   next,
		lookup: NetworkLookup(DefaultWhoisTimeout),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NetworkLookup returns a LookupFunc that queries WHOIS servers over the network.
// The query gives up when ctx is done, even though the client itself only
// honors the timeout.
func NetworkLookup(timeout time.Duration) LookupFunc {
	client := whois.NewClient().SetTimeout(timeout)

	return func(ctx context.Context, domain string) (string, error) {
		type answer struct {
			raw string
			err error
		}
		ch := make(chan answer, 1)
		go func() {
			raw, err := client.Whois(domain)
			ch <- answer{raw: raw, err: err}
		}()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case a := <-ch:
			return a.raw, a.err
		}
	}
}

// Enrich implements Enricher. WHOIS failures are logged and leave the
// placeholder age in place; only errors from the wrapped enricher are returned.
func (w *WhoisEnricher) Enrich(ctx context.Context, outcome *model.ScanOutcome) error {
	if err := w.next.Enrich(ctx, outcome); err != nil {
		return err
	}

	domain := outcome.Details.RegistrableDomain
	if domain == "" || net.ParseIP(domain) != nil {
		return nil
	}

	created, err := w.CreatedAt(ctx, domain)
	if err != nil {
		w.logger.Debug("whois lookup failed", "domain", domain, "error", err)
		return nil
	}

	outcome.Details.DomainAge = FormatAge(w.now().Sub(created))
	return nil
}

// CreatedAt returns the registration time of domain.
func (w *WhoisEnricher) CreatedAt(ctx context.Context, domain string) (time.Time, error) {
	raw, err := w.lookup(ctx, domain)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query whois for %s: %w", domain, err)
	}
	return ParseCreatedDate(raw)
}

// ParseCreatedDate extracts the creation date from a raw WHOIS answer.
func ParseCreatedDate(raw string) (time.Time, error) {
	info, err := whoisparser.Parse(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse whois answer: %w", err)
	}
	if info.Domain == nil {
		return time.Time{}, ErrNoCreationDate
	}

	created := strings.TrimSpace(info.Domain.CreatedDate)
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, created); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrNoCreationDate, created)
}

// FormatAge renders a duration in the coarse units used by the details panel.
func FormatAge(age time.Duration) string {
	days := int(age.Hours() / 24)
	switch {
	case days < 1:
		return "less than a day"
	case days < 60:
		return plural(days, "day")
	case days < 730:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
