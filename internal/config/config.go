package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"EmuDock/internal/desktop"
)

const (
	FileName  = "config.json"
	envPrefix = "EMUDOCK"
)

type PatchFlags struct {
	BootToMultiplayer bool `mapstructure:"BootToMultiplayer" json:"BootToMultiplayer"`
	Widescreen        bool `mapstructure:"Widescreen" json:"Widescreen"`
}

// Timing holds the polling intervals and retry budgets of a guest session.
type Timing struct {
	DiscoveryAttempts    int           `mapstructure:"DiscoveryAttempts" json:"DiscoveryAttempts"`
	DiscoveryInterval    time.Duration `mapstructure:"DiscoveryInterval" json:"DiscoveryInterval"`
	SettleDelay          time.Duration `mapstructure:"SettleDelay" json:"SettleDelay"`
	FullscreenInterval   time.Duration `mapstructure:"FullscreenInterval" json:"FullscreenInterval"`
	FullscreenTolerance  int           `mapstructure:"FullscreenTolerance" json:"FullscreenTolerance"`
	WatchdogInterval     time.Duration `mapstructure:"WatchdogInterval" json:"WatchdogInterval"`
	FocusAttempts        int           `mapstructure:"FocusAttempts" json:"FocusAttempts"`
	FocusInterval        time.Duration `mapstructure:"FocusInterval" json:"FocusInterval"`
	KillTimeout          time.Duration `mapstructure:"KillTimeout" json:"KillTimeout"`
	UnembeddedFocusDelay time.Duration `mapstructure:"UnembeddedFocusDelay" json:"UnembeddedFocusDelay"`
	FullscreenFocusDelay time.Duration `mapstructure:"FullscreenFocusDelay" json:"FullscreenFocusDelay"`
}

// Config is the launcher record read once per session.
type Config struct {
	Version              string     `mapstructure:"Version" json:"Version"`
	ShowConsole          bool       `mapstructure:"ShowConsole" json:"ShowConsole"`
	EmulatorPath         string     `mapstructure:"EmulatorPath" json:"EmulatorPath"`
	IsoPath              string     `mapstructure:"IsoPath" json:"IsoPath"`
	BiosPath             string     `mapstructure:"BiosPath" json:"BiosPath"`
	Region               string     `mapstructure:"Region" json:"Region"`
	AutoUpdate           bool       `mapstructure:"AutoUpdate" json:"AutoUpdate"`
	EmbedWindow          bool       `mapstructure:"EmbedWindow" json:"EmbedWindow"`
	Fullscreen           bool       `mapstructure:"Fullscreen" json:"Fullscreen"`
	Patches              PatchFlags `mapstructure:"Patches" json:"Patches"`
	LogLevel             string     `mapstructure:"LogLevel" json:"LogLevel"`
	LogDir               string     `mapstructure:"LogDir" json:"LogDir"`
	MetricsAddr          string     `mapstructure:"MetricsAddr" json:"MetricsAddr"`
	ExcludeWindowClasses []string   `mapstructure:"ExcludeWindowClasses" json:"ExcludeWindowClasses"`
	Timing               Timing     `mapstructure:"Timing" json:"Timing"`
}

func DefaultTiming() Timing {
	return Timing{
		DiscoveryAttempts:    20,
		DiscoveryInterval:    500 * time.Millisecond,
		SettleDelay:          2 * time.Second,
		FullscreenInterval:   500 * time.Millisecond,
		FullscreenTolerance:  50,
		WatchdogInterval:     time.Second,
		FocusAttempts:        10,
		FocusInterval:        500 * time.Millisecond,
		KillTimeout:          2 * time.Second,
		UnembeddedFocusDelay: time.Second,
		FullscreenFocusDelay: 1500 * time.Millisecond,
	}
}

func DefaultConfig() *Config {
	base := AppDir()
	return &Config{
		Version:              "3.0.0",
		EmulatorPath:         filepath.Join(base, "data", "emulator", "pcsx2-qt.exe"),
		Region:               "NTSC",
		AutoUpdate:           true,
		EmbedWindow:          true,
		Fullscreen:           true,
		Patches:              PatchFlags{BootToMultiplayer: true, Widescreen: true},
		LogLevel:             "info",
		LogDir:               filepath.Join(base, "data", "logs"),
		ExcludeWindowClasses: desktop.DefaultExcludedClasses(),
		Timing:               DefaultTiming(),
	}
}

// AppDir is the directory holding the launcher executable.
func AppDir() string {
	exe, err := os.Executable()
	if err != nil {
		if wd, werr := os.Getwd(); werr == nil {
			return wd
		}
		return "."
	}
	return filepath.Dir(exe)
}

func DefaultPath() string {
	return filepath.Join(AppDir(), "data", FileName)
}

// DefaultSettingsPath is the bundled emulator settings template.
func DefaultSettingsPath() string {
	return filepath.Join(AppDir(), "data", "defaults", "PCSX2.ini")
}

// Load reads the record at path, falling back to defaults for a missing file
// or missing keys. EMUDOCK_* environment variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.Region = NormalizeRegion(cfg.Region)
	cfg.Timing = cfg.Timing.WithDefaults()
	if len(cfg.ExcludeWindowClasses) == 0 {
		cfg.ExcludeWindowClasses = desktop.DefaultExcludedClasses()
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("Version", d.Version)
	v.SetDefault("ShowConsole", d.ShowConsole)
	v.SetDefault("EmulatorPath", d.EmulatorPath)
	v.SetDefault("IsoPath", d.IsoPath)
	v.SetDefault("BiosPath", d.BiosPath)
	v.SetDefault("Region", d.Region)
	v.SetDefault("AutoUpdate", d.AutoUpdate)
	v.SetDefault("EmbedWindow", d.EmbedWindow)
	v.SetDefault("Fullscreen", d.Fullscreen)
	v.SetDefault("Patches.BootToMultiplayer", d.Patches.BootToMultiplayer)
	v.SetDefault("Patches.Widescreen", d.Patches.Widescreen)
	v.SetDefault("LogLevel", d.LogLevel)
	v.SetDefault("LogDir", d.LogDir)
	v.SetDefault("MetricsAddr", d.MetricsAddr)
	v.SetDefault("ExcludeWindowClasses", d.ExcludeWindowClasses)

	t := d.Timing
	v.SetDefault("Timing.DiscoveryAttempts", t.DiscoveryAttempts)
	v.SetDefault("Timing.DiscoveryInterval", t.DiscoveryInterval)
	v.SetDefault("Timing.SettleDelay", t.SettleDelay)
	v.SetDefault("Timing.FullscreenInterval", t.FullscreenInterval)
	v.SetDefault("Timing.FullscreenTolerance", t.FullscreenTolerance)
	v.SetDefault("Timing.WatchdogInterval", t.WatchdogInterval)
	v.SetDefault("Timing.FocusAttempts", t.FocusAttempts)
	v.SetDefault("Timing.FocusInterval", t.FocusInterval)
	v.SetDefault("Timing.KillTimeout", t.KillTimeout)
	v.SetDefault("Timing.UnembeddedFocusDelay", t.UnembeddedFocusDelay)
	v.SetDefault("Timing.FullscreenFocusDelay", t.FullscreenFocusDelay)
}

// WithDefaults replaces unusable budgets and intervals with defaults.
// Zero delays are kept.
func (t Timing) WithDefaults() Timing {
	d := DefaultTiming()
	if t.DiscoveryAttempts <= 0 {
		t.DiscoveryAttempts = d.DiscoveryAttempts
	}
	if t.DiscoveryInterval <= 0 {
		t.DiscoveryInterval = d.DiscoveryInterval
	}
	if t.SettleDelay < 0 {
		t.SettleDelay = d.SettleDelay
	}
	if t.FullscreenInterval <= 0 {
		t.FullscreenInterval = d.FullscreenInterval
	}
	if t.FullscreenTolerance < 0 {
		t.FullscreenTolerance = d.FullscreenTolerance
	}
	if t.WatchdogInterval <= 0 {
		t.WatchdogInterval = d.WatchdogInterval
	}
	if t.FocusAttempts <= 0 {
		t.FocusAttempts = d.FocusAttempts
	}
	if t.FocusInterval <= 0 {
		t.FocusInterval = d.FocusInterval
	}
	if t.KillTimeout <= 0 {
		t.KillTimeout = d.KillTimeout
	}
	if t.UnembeddedFocusDelay < 0 {
		t.UnembeddedFocusDelay = d.UnembeddedFocusDelay
	}
	if t.FullscreenFocusDelay < 0 {
		t.FullscreenFocusDelay = d.FullscreenFocusDelay
	}
	return t
}

// NormalizeRegion maps the labels offered by setup to canonical region codes.
func NormalizeRegion(region string) string {
	switch strings.TrimSpace(region) {
	case "NTSC-U (North America)", "NTSC":
		return "NTSC"
	case "PAL (Europe)", "PAL":
		return "PAL"
	case "Both":
		return "Both"
	default:
		return "NTSC"
	}
}

// Complete reports whether the record has everything a launch needs.
func (c *Config) Complete() bool { return len(c.Missing()) == 0 }

// Missing names the launch fields that are still empty.
func (c *Config) Missing() []string {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"IsoPath", c.IsoPath},
		{"BiosPath", c.BiosPath},
		{"Region", c.Region},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
