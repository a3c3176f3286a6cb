package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EmuDock/internal/desktop"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.True(t, cfg.EmbedWindow)
	assert.True(t, cfg.Fullscreen)
	assert.Equal(t, "NTSC", cfg.Region)
	assert.Equal(t, DefaultTiming(), cfg.Timing)
	assert.Equal(t, desktop.DefaultExcludedClasses(), cfg.ExcludeWindowClasses)
}

func TestLoadReadsOriginalRecordKeys(t *testing.T) {
	path := writeConfig(t, `{
		"IsoPath": "C:\\games\\uya.iso",
		"BiosPath": "C:\\bios\\scph.bin",
		"Region": "PAL (Europe)",
		"EmbedWindow": false,
		"Fullscreen": false,
		"ShowConsole": true,
		"Patches": {"BootToMultiplayer": false, "Widescreen": true},
		"Timing": {"DiscoveryAttempts": 5, "SettleDelay": "250ms"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, `C:\games\uya.iso`, cfg.IsoPath)
	assert.Equal(t, "PAL", cfg.Region)
	assert.False(t, cfg.EmbedWindow)
	assert.False(t, cfg.Fullscreen)
	assert.True(t, cfg.ShowConsole)
	assert.False(t, cfg.Patches.BootToMultiplayer)
	assert.Equal(t, 5, cfg.Timing.DiscoveryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Timing.SettleDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Timing.DiscoveryInterval)
	assert.True(t, cfg.Complete())
	assert.Empty(t, cfg.Missing())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `{"EmbedWindow": true}`)
	t.Setenv("EMUDOCK_EMBEDWINDOW", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.EmbedWindow)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeConfig(t, `{"IsoPath": `)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeRegion(t *testing.T) {
	cases := map[string]string{
		"NTSC-U (North America)": "NTSC",
		"NTSC":                   "NTSC",
		" PAL ":                  "PAL",
		"PAL (Europe)":           "PAL",
		"Both":                   "Both",
		"":                       "NTSC",
		"JP":                     "NTSC",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeRegion(in), "region %q", in)
	}
}

func TestTimingWithDefaults(t *testing.T) {
	got := Timing{DiscoveryAttempts: -1, FocusInterval: 10 * time.Millisecond}.WithDefaults()
	assert.Equal(t, 20, got.DiscoveryAttempts)
	assert.Equal(t, 10*time.Millisecond, got.FocusInterval)
	assert.Equal(t, time.Second, got.WatchdogInterval)
}

func TestComplete(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Complete())
	assert.Equal(t, []string{"IsoPath", "BiosPath"}, cfg.Missing())
	cfg.Region = "  "
	assert.Equal(t, []string{"IsoPath", "BiosPath", "Region"}, cfg.Missing())
	cfg.Region = "PAL"
	cfg.IsoPath = "game.iso"
	cfg.BiosPath = "bios.bin"
	assert.True(t, cfg.Complete())
	assert.Empty(t, cfg.Missing())
}
