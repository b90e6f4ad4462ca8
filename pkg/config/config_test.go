package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultProfilePresent(t *testing.T) {
	store := NewProfileStore()
	p, ok := store.Get("default")
	require.True(t, ok)
	require.Equal(t, DefaultProfile, p)
}

func TestLoadMergesProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.toml")
	contents := `
[ci]
max_duration_seconds = 5.0
max_channels = 1
max_width = 256
max_height = 256
max_pattern_rows = 64
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	store := NewProfileStore()
	require.NoError(t, store.Load(path))

	ci, ok := store.Get("ci")
	require.True(t, ok)
	require.Equal(t, 5.0, ci.MaxDurationSeconds)
	require.Equal(t, 1, ci.MaxChannels)
	require.Equal(t, 256, ci.MaxWidth)

	_, ok = store.Get("default")
	require.True(t, ok, "loading a profile file must not remove the built-in default")
}

func TestLoadUnreadableFileReturnsError(t *testing.T) {
	store := NewProfileStore()
	err := store.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestWatchStopSuppressesFurtherCallbacks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ci]\nmax_channels = 1\n"), 0o644))

	store := NewProfileStore()
	stop, err := store.Watch(path, func(name string, profile BudgetProfile) {})
	require.NoError(t, err)
	stop() // must not panic and must be safe to call before any change fires
}
