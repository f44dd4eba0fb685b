package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FreshStart(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "checkpoint.txt"))
	n, ok, err := c.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, n)
}

func TestSaveAndLoad_Roundtrip(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nested", "checkpoint.txt"))
	require.NoError(t, c.Save(12345))

	n, ok, err := c.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 12345, n)
}

func TestSave_OverwritesPreviousValue(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "checkpoint.txt"))
	require.NoError(t, c.Save(1))
	require.NoError(t, c.Save(2))

	n, ok, err := c.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 2, n)
}

func TestSave_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, "checkpoint.txt"))
	require.NoError(t, c.Save(7))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
