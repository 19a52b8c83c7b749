package statefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Names []string `json:"names"`
}

func TestLoadMissingFile(t *testing.T) {
	var s sample
	found, err := Load(filepath.Join(t.TempDir(), "nope.json"), &s)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, s.Names)
}

func TestSaveCreatesDirectoryAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	require.NoError(t, Save(path, sample{Names: []string{"a", "b"}}))

	var s sample
	found, err := Load(path, &s)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, s.Names)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var s sample
	found, err := Load(path, &s)
	assert.True(t, found)
	assert.Error(t, err)
}
