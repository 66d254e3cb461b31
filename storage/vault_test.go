package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVault_CreateAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault")

	v, err := OpenVault(path, "pw")
	require.NoError(t, err)
	require.NoError(t, v.Set("notes", `[{"id":"a","content":"secret plans"}]`))
	require.NoError(t, v.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret plans")

	reopened, err := OpenVault(path, "pw")
	require.NoError(t, err)
	got, ok, err := reopened.Get("notes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, got, "secret plans")
}

func TestVault_WrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault")
	v, err := OpenVault(path, "right")
	require.NoError(t, err)
	require.NoError(t, v.Set("k", "v"))

	_, err = OpenVault(path, "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestVault_ChangePassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault")
	v, err := OpenVault(path, "old")
	require.NoError(t, err)
	require.NoError(t, v.Set("k", "v"))

	require.Error(t, v.ChangePassword(""))
	require.NoError(t, v.ChangePassword("new"))

	_, err = OpenVault(path, "old")
	assert.ErrorIs(t, err, ErrWrongPassword)

	reopened, err := OpenVault(path, "new")
	require.NoError(t, err)
	got, _, _ := reopened.Get("k")
	assert.Equal(t, "v", got)
}
