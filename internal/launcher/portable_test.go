package launcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

const defaultSettings = `[UI]
SettingsVersion = 1

[Folders]
Bios = bios
Snapshots = snaps

[Filenames]
BIOS =
`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadSettings(t *testing.T, path string) *ini.File {
	t.Helper()
	f, err := ini.Load(path)
	require.NoError(t, err)
	return f
}

func TestPortableConfigSeededFromDefaults(t *testing.T) {
	emuDir := t.TempDir()
	bios := filepath.Join(t.TempDir(), "bios", "scph39001.bin")
	r := Request{
		Executable:      filepath.Join(emuDir, "pcsx2-qt.exe"),
		BIOS:            bios,
		DefaultSettings: writeFile(t, filepath.Join(t.TempDir(), "PCSX2.ini"), defaultSettings),
		Portable:        true,
	}

	require.NoError(t, ensurePortableConfig(r))

	path := PortableSettingsPath(r.Executable)
	assert.Equal(t, filepath.Join(emuDir, "inis", "PCSX2.ini"), path)
	f := loadSettings(t, path)
	assert.Equal(t, filepath.Dir(bios), f.Section("Folders").Key("Bios").String())
	assert.Equal(t, "scph39001.bin", f.Section("Filenames").Key("BIOS").String())
	assert.Equal(t, "snaps", f.Section("Folders").Key("Snapshots").String())
	assert.Equal(t, "1", f.Section("UI").Key("SettingsVersion").String())
}

func TestPortableConfigKeepsExistingSettings(t *testing.T) {
	emuDir := t.TempDir()
	exe := filepath.Join(emuDir, "pcsx2-qt.exe")
	writeFile(t, PortableSettingsPath(exe), "[EmuCore]\nEnableCheats = true\n\n[Folders]\nBios = old\n")
	r := Request{
		Executable:      exe,
		BIOS:            filepath.Join(emuDir, "bios", "new.bin"),
		DefaultSettings: writeFile(t, filepath.Join(t.TempDir(), "PCSX2.ini"), defaultSettings),
	}

	require.NoError(t, ensurePortableConfig(r))

	f := loadSettings(t, PortableSettingsPath(exe))
	assert.Equal(t, "true", f.Section("EmuCore").Key("EnableCheats").String())
	assert.Equal(t, filepath.Join(emuDir, "bios"), f.Section("Folders").Key("Bios").String())
	assert.Equal(t, "new.bin", f.Section("Filenames").Key("BIOS").String())
	assert.False(t, f.Section("Folders").HasKey("Snapshots"), "defaults must not replace an existing file")
}

func TestPortableConfigWithoutDefaultsWritesNothing(t *testing.T) {
	exe := filepath.Join(t.TempDir(), "pcsx2-qt.exe")
	r := Request{
		Executable:      exe,
		BIOS:            "bios.bin",
		DefaultSettings: filepath.Join(t.TempDir(), "missing.ini"),
	}

	require.NoError(t, ensurePortableConfig(r))
	assert.NoFileExists(t, PortableSettingsPath(exe))
}

func TestLaunchWritesPortableSettings(t *testing.T) {
	t.Setenv(helperEnv, "exit")
	exe := selfExe(t)
	path := PortableSettingsPath(exe)
	_, statErr := os.Stat(filepath.Dir(path))
	if statErr == nil {
		t.Skip("settings dir already present next to the test binary")
	}
	t.Cleanup(func() { _ = os.RemoveAll(filepath.Dir(path)) })

	bios := touch(t, "scph39001.bin")
	p, err := Launch(Request{
		Executable:      exe,
		Media:           touch(t, "game.iso"),
		BIOS:            bios,
		DefaultSettings: writeFile(t, filepath.Join(t.TempDir(), "PCSX2.ini"), defaultSettings),
		Portable:        true,
	}, zerolog.Nop())
	require.NoError(t, err)
	p.Wait(10 * time.Second)

	f := loadSettings(t, path)
	assert.Equal(t, filepath.Dir(bios), f.Section("Folders").Key("Bios").String())
	assert.Equal(t, "scph39001.bin", f.Section("Filenames").Key("BIOS").String())
}
