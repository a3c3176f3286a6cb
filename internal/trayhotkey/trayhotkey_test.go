package trayhotkey

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHotkeys(t *testing.T) {
	keys := DefaultHotkeys()
	if assert.Len(t, keys, 2) {
		assert.Equal(t, "F11", keys[0].String())
		assert.Equal(t, HotkeyShowEmulator, keys[0].ID)
		assert.Equal(t, "Ctrl+F11", keys[1].String())
		assert.Equal(t, HotkeySettings, keys[1].ID)
	}
}

func TestDispatchRoutesHotkeys(t *testing.T) {
	var got []string
	deps := Dependencies{
		OnShowEmulator: func() { got = append(got, "show") },
		OnOpenSettings: func() { got = append(got, "settings") },
	}

	assert.True(t, deps.dispatch(HotkeyShowEmulator))
	assert.True(t, deps.dispatch(HotkeySettings))
	assert.False(t, deps.dispatch(0xA11))
	assert.Equal(t, []string{"show", "settings"}, got)

	assert.True(t, Dependencies{}.dispatch(HotkeySettings), "missing handler is not an error")
}

func TestLoadIconLookupOrder(t *testing.T) {
	dir := t.TempDir()
	assert.Nil(t, loadIcon(dir))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "build", "windows"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "windows", "icon.ico"), []byte("build"), 0o644))
	assert.Equal(t, []byte("build"), loadIcon(dir))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "icon.ico"), []byte("data"), 0o644))
	assert.Equal(t, []byte("data"), loadIcon(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "icon.ico"), nil, 0o644))
	assert.Equal(t, []byte("data"), loadIcon(dir), "an empty icon is skipped")
}
