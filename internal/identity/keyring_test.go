package identity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// The keyring mock is process-global, so these tests do not run in parallel.

func TestKeyringProviderLoginLogout(t *testing.T) {
	keyring.MockInit()

	p := NewKeyringProvider(WithService("phishscan-test-login"))

	_, ok, err := p.CurrentUser()
	require.NoError(t, err)
	assert.False(t, ok)

	id, err := p.Login("  alice ")
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "alice", Source: "keyring"}, id)

	got, ok, err := p.CurrentUser()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", got.ID)

	require.NoError(t, p.Logout())
	_, ok, err = p.CurrentUser()
	require.NoError(t, err)
	assert.False(t, ok)

	// Logging out twice is fine.
	assert.NoError(t, p.Logout())
}

func TestKeyringProviderRejectsInvalidID(t *testing.T) {
	keyring.MockInit()

	_, err := NewKeyringProvider().Login(" ")
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestKeyringProviderFileFallback(t *testing.T) {
	keyring.MockInitWithError(errors.New("no keychain"))
	t.Cleanup(keyring.MockInit)

	path := filepath.Join(t.TempDir(), "phishscan", "identity")
	p := NewKeyringProvider(WithFallbackFile(path))

	id, err := p.Login("carol")
	require.NoError(t, err)
	assert.Equal(t, "file", id.Source)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "carol\n", string(b))

	got, ok, err := p.CurrentUser()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Identity{ID: "carol", Source: "file"}, got)

	require.NoError(t, p.Logout())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	_, ok, err = p.CurrentUser()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyringProviderWithoutFallback(t *testing.T) {
	keyring.MockInitWithError(errors.New("no keychain"))
	t.Cleanup(keyring.MockInit)

	p := NewKeyringProvider()

	_, err := p.Login("dave")
	require.Error(t, err)

	_, _, err = p.CurrentUser()
	require.Error(t, err)
}

func TestKeyringLoginRemovesStaleFile(t *testing.T) {
	keyring.MockInit()

	path := filepath.Join(t.TempDir(), "identity")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0600))

	p := NewKeyringProvider(WithService("phishscan-test-stale"), WithFallbackFile(path))
	_, err := p.Login("erin")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	got, ok, err := p.CurrentUser()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "erin", got.ID)
}
