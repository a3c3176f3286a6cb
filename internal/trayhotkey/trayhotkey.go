// Package trayhotkey owns the tray menu and the global hotkeys.
package trayhotkey

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Modifier and key codes as used by RegisterHotKey.
const (
	ModAlt      uint32 = 0x0001
	ModControl  uint32 = 0x0002
	ModShift    uint32 = 0x0004
	ModNoRepeat uint32 = 0x4000

	VKF11 uint32 = 0x7A
)

const (
	HotkeyShowEmulator = 9001
	HotkeySettings     = 9002
)

type Hotkey struct {
	ID        int
	Modifiers uint32
	Key       uint32
}

func (h Hotkey) String() string {
	var parts []string
	if h.Modifiers&ModControl != 0 {
		parts = append(parts, "Ctrl")
	}
	if h.Modifiers&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if h.Modifiers&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if h.Key >= 0x70 && h.Key <= 0x87 {
		parts = append(parts, fmt.Sprintf("F%d", h.Key-0x70+1))
	} else {
		parts = append(parts, fmt.Sprintf("0x%02X", h.Key))
	}
	return strings.Join(parts, "+")
}

// DefaultHotkeys: F11 brings the emulator to front, Ctrl+F11 opens settings.
func DefaultHotkeys() []Hotkey {
	return []Hotkey{
		{ID: HotkeyShowEmulator, Key: VKF11},
		{ID: HotkeySettings, Modifiers: ModControl, Key: VKF11},
	}
}

type Dependencies struct {
	OnShowEmulator func()
	OnRelaunch     func()
	OnOpenSettings func()
	OnExit         func()
}

// dispatch routes a WM_HOTKEY id to its handler. It reports whether the id
// was known.
func (d Dependencies) dispatch(id int) bool {
	var fn func()
	switch id {
	case HotkeyShowEmulator:
		fn = d.OnShowEmulator
	case HotkeySettings:
		fn = d.OnOpenSettings
	default:
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}

// iconPaths lists where the tray icon is looked up, relative to the
// executable's directory, in order.
var iconPaths = []string{
	"icon.ico",
	filepath.Join("data", "icon.ico"),
	filepath.Join("build", "windows", "icon.ico"),
}

// loadIcon returns the first non-empty icon found under dir, or nil.
func loadIcon(dir string) []byte {
	for _, rel := range iconPaths {
		if data, err := os.ReadFile(filepath.Join(dir, rel)); err == nil && len(data) > 0 {
			return data
		}
	}
	return nil
}
