//go:build !darwin

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretsFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	_, err := keychainGet("dietfit", "session_token")
	require.ErrorIs(t, err, ErrSecretNotFound)

	require.NoError(t, keychainSet("dietfit", "session_token", "s1"))
	got, err := keychainGet("dietfit", "session_token")
	require.NoError(t, err)
	assert.Equal(t, "s1", got)

	info, err := os.Stat(filepath.Join(dir, "dietfit", "secrets.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, keychainDelete("dietfit", "session_token"))
	_, err = keychainGet("dietfit", "session_token")
	assert.ErrorIs(t, err, ErrSecretNotFound)
	assert.NoError(t, keychainDelete("dietfit", "session_token"), "second delete")
}
