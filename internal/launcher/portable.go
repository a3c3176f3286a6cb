package launcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const (
	portableDir  = "inis"
	portableFile = "PCSX2.ini"
)

// PortableSettingsPath is the settings file the emulator reads in portable
// mode, next to its executable.
func PortableSettingsPath(executable string) string {
	return filepath.Join(filepath.Dir(executable), portableDir, portableFile)
}

// ensurePortableConfig seeds the portable settings file from r.DefaultSettings
// when it is missing, then points its BIOS folder and file name at r.BIOS.
// Without a settings file nothing is written.
func ensurePortableConfig(r Request) error {
	path := PortableSettingsPath(r.Executable)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if r.DefaultSettings == "" {
			return nil
		}
		if err := copyFile(r.DefaultSettings, path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("seed %s: %w", path, err)
		}
	case err != nil:
		return fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	f.Section("Folders").Key("Bios").SetValue(filepath.Dir(r.BIOS))
	f.Section("Filenames").Key("BIOS").SetValue(filepath.Base(r.BIOS))
	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
