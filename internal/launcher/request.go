package launcher

import (
	"strings"

	"EmuDock/internal/config"
)

// Emulator command line switches.
const (
	FlagPortable   = "-portable"
	FlagFastBoot   = "-fastboot"
	FlagFullscreen = "-fullscreen"
	FlagEndOfArgs  = "--"
)

// Request describes one guest launch.
type Request struct {
	Executable      string
	Media           string
	// BIOS is checked for existence when set and, in portable mode, written
	// into the emulator's settings file.
	BIOS            string
	// DefaultSettings seeds the portable settings file when it is missing.
	DefaultSettings string
	Portable        bool
	FastBoot        bool
	Fullscreen      bool
}

// RequestFromConfig builds the launch request for a configuration record.
func RequestFromConfig(cfg *config.Config) Request {
	return Request{
		Executable:      cfg.EmulatorPath,
		Media:           cfg.IsoPath,
		BIOS:            cfg.BiosPath,
		DefaultSettings: config.DefaultSettingsPath(),
		Portable:        true,
		FastBoot:        cfg.Patches.BootToMultiplayer,
		Fullscreen:      cfg.Fullscreen,
	}
}

// Arguments returns the emulator arguments. The order is fixed: portable,
// fast-boot, fullscreen, end-of-options marker, media path.
func Arguments(r Request) []string {
	args := make([]string, 0, 5)
	if r.Portable {
		args = append(args, FlagPortable)
	}
	if r.FastBoot {
		args = append(args, FlagFastBoot)
	}
	if r.Fullscreen {
		args = append(args, FlagFullscreen)
	}
	return append(args, FlagEndOfArgs, r.Media)
}

// CommandLine renders the full command line for logs and diagnostics.
func CommandLine(r Request) string {
	parts := []string{quote(r.Executable)}
	for _, a := range Arguments(r) {
		if strings.ContainsAny(a, " \t") {
			a = quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

func quote(s string) string { return `"` + s + `"` }
