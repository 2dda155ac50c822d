package scanner

import (
	"log/slog"
	"sync"

	"github.com/nao1215/phishscan/internal/identity"
	"github.com/nao1215/phishscan/internal/notify"
)

// Session is the sign-in state shared by every scan of one Service.
//
// The identity provider is asked once, on the first scan that needs it.
// A failed lookup counts as signed out, and a signed-out user is asked to
// sign in once per Session rather than once per URL. Sign-in changes made
// while a batch runs are picked up by the next Service.
type Session struct {
	provider identity.Provider
	notifier notify.Notifier
	logger   *slog.Logger

	once sync.Once
	user identity.Identity
	ok   bool
}

// NewSession creates a Session around provider.
func NewSession(provider identity.Provider, n notify.Notifier, logger *slog.Logger) *Session {
	if n == nil {
		n = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{provider: provider, notifier: n, logger: logger}
}

// CurrentUser returns the signed-in user, resolving it on first call.
func (s *Session) CurrentUser() (identity.Identity, bool) {
	s.once.Do(func() {
		user, ok, err := s.provider.CurrentUser()
		if err != nil {
			s.logger.Warn("identity lookup failed", "error", err)
			ok = false
		}
		if !ok {
			s.notifier.Notify(MsgSignIn, notify.SeverityInfo)
			return
		}
		s.user, s.ok = user, true
	})
	return s.user, s.ok
}
