package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorPrefersEnv(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "nano")
	assert.Equal(t, "nano", Editor())

	t.Setenv("VISUAL", "code --wait")
	assert.Equal(t, "code --wait", Editor())
}

func TestEditSessionRoundTrip(t *testing.T) {
	s, err := NewEditSession("# draft")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path(), []byte("# final"), 0o600))

	got, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, "# final", got)

	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestEditSessionCommand(t *testing.T) {
	s, err := NewEditSession("")
	require.NoError(t, err)
	defer s.Discard()

	cmd := s.Command("code --wait")
	assert.Equal(t, []string{"code", "--wait", s.Path()}, cmd.Args)
}

func TestEditSessionDiscard(t *testing.T) {
	s, err := NewEditSession("x")
	require.NoError(t, err)
	s.Discard()

	_, err = s.Result()
	assert.Error(t, err)
}
