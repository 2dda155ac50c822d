package identity

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// MaxIDLength is the longest accepted user ID.
const MaxIDLength = 128

// ErrInvalidIdentity is returned for empty, over-long or non-printable user IDs.
var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is a signed-in user.
type Identity struct {
	// ID is the stable user identifier that scan records are keyed by.
	ID string `json:"id"`

	// Source names the provider that supplied the identity.
	Source string `json:"source"`
}

// Provider supplies the current user.
type Provider interface {
	// CurrentUser returns the signed-in user. ok is false when nobody is
	// signed in; that is not an error.
	CurrentUser() (id Identity, ok bool, err error)
}

// ValidateID checks a user ID and returns it trimmed.
func ValidateID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty user id", ErrInvalidIdentity)
	}
	if len(id) > MaxIDLength {
		return "", fmt.Errorf("%w: user id longer than %d bytes", ErrInvalidIdentity, MaxIDLength)
	}
	for _, r := range id {
		if !unicode.IsPrint(r) {
			return "", fmt.Errorf("%w: user id contains non-printable characters", ErrInvalidIdentity)
		}
	}
	return id, nil
}

// Static always returns the same identity. A zero Static means signed out.
type Static struct {
	ID string
}

// CurrentUser implements Provider.
func (s Static) CurrentUser() (Identity, bool, error) {
	if s.ID == "" {
		return Identity{}, false, nil
	}
	return Identity{ID: s.ID, Source: "static"}, true, nil
}

// EnvProvider reads the user ID from an environment variable.
type EnvProvider struct {
	// Key is the variable name.
	Key string
}

// CurrentUser implements Provider.
func (e EnvProvider) CurrentUser() (Identity, bool, error) {
	raw, ok := os.LookupEnv(e.Key)
	if !ok || strings.TrimSpace(raw) == "" {
		return Identity{}, false, nil
	}
	id, err := ValidateID(raw)
	if err != nil {
		return Identity{}, false, fmt.Errorf("%s: %w", e.Key, err)
	}
	return Identity{ID: id, Source: "env"}, true, nil
}

// Chain asks each provider in turn and returns the first signed-in user.
// An error from any provider stops the chain.
type Chain []Provider

// CurrentUser implements Provider.
func (c Chain) CurrentUser() (Identity, bool, error) {
	for _, p := range c {
		id, ok, err := p.CurrentUser()
		if err != nil {
			return Identity{}, false, err
		}
		if ok {
			return id, true, nil
		}
	}
	return Identity{}, false, nil
}
