package identity

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the keychain service name.
	KeyringService = "phishscan"

	// KeyringUser is the keychain account that holds the user ID.
	KeyringUser = "user_id"
)

// KeyringProvider stores the signed-in user in the OS keychain.
// When the keychain is unavailable it falls back to a file.
type KeyringProvider struct {
	service      string
	fallbackPath string
	logger       *slog.Logger
}

// KeyringOption configures a KeyringProvider.
type KeyringOption func(*KeyringProvider)

// WithService overrides the keychain service name.
func WithService(service string) KeyringOption {
	return func(k *KeyringProvider) {
		if service != "" {
			k.service = service
		}
	}
}

// WithFallbackFile sets the file used when the keychain is unavailable.
// An empty path disables the fallback.
func WithFallbackFile(path string) KeyringOption {
	return func(k *KeyringProvider) {
		k.fallbackPath = path
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) KeyringOption {
	return func(k *KeyringProvider) {
		if logger != nil {
			k.logger = logger
		}
	}
}

// NewKeyringProvider creates a KeyringProvider.
func NewKeyringProvider(opts ...KeyringOption) *KeyringProvider {
	k := &KeyringProvider{
		service: KeyringService,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Login signs in id.
func (k *KeyringProvider) Login(id string) (Identity, error) {
	id, err := ValidateID(id)
	if err != nil {
		return Identity{}, err
	}

	if err := keyring.Set(k.service, KeyringUser, id); err != nil {
		if k.fallbackPath == "" {
			return Identity{}, fmt.Errorf("failed to store identity in keychain: %w", err)
		}
		k.logger.Warn("keychain unavailable, falling back to file", "error", err)
		if err := k.writeFile(id); err != nil {
			return Identity{}, err
		}
		return Identity{ID: id, Source: "file"}, nil
	}

	k.removeFile()
	return Identity{ID: id, Source: "keyring"}, nil
}

// Logout signs out. Logging out while signed out is not an error.
func (k *KeyringProvider) Logout() error {
	err := keyring.Delete(k.service, KeyringUser)
	k.removeFile()
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		if k.fallbackPath != "" {
			k.logger.Debug("keychain unavailable during logout", "error", err)
			return nil
		}
		return fmt.Errorf("failed to remove identity from keychain: %w", err)
	}
	return nil
}

// CurrentUser implements Provider.
func (k *KeyringProvider) CurrentUser() (Identity, bool, error) {
	id, err := keyring.Get(k.service, KeyringUser)
	if err == nil && id != "" {
		return Identity{ID: id, Source: "keyring"}, true, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		k.logger.Debug("keychain lookup failed", "error", err)
		if k.fallbackPath == "" {
			return Identity{}, false, fmt.Errorf("failed to read identity from keychain: %w", err)
		}
	}

	return k.readFile()
}

func (k *KeyringProvider) readFile() (Identity, bool, error) {
	if k.fallbackPath == "" {
		return Identity{}, false, nil
	}

	b, err := os.ReadFile(k.fallbackPath)
	if errors.Is(err, os.ErrNotExist) {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, fmt.Errorf("reading identity file %s: %w", k.fallbackPath, err)
	}

	id, err := ValidateID(strings.TrimSpace(string(b)))
	if err != nil {
		return Identity{}, false, fmt.Errorf("identity file %s: %w", k.fallbackPath, err)
	}
	return Identity{ID: id, Source: "file"}, true, nil
}

func (k *KeyringProvider) writeFile(id string) error {
	if err := os.MkdirAll(filepath.Dir(k.fallbackPath), 0750); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}
	if err := os.WriteFile(k.fallbackPath, []byte(id+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	return nil
}

func (k *KeyringProvider) removeFile() {
	if k.fallbackPath == "" {
		return
	}
	_ = os.Remove(k.fallbackPath) //nolint:errcheck // the file usually does not exist
}
