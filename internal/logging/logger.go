package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for the launcher log file.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
	FileName          = "launcher.log"
)

// Config captures options for the process-wide logger.
type Config struct {
	Level   string    // "debug", "info", ...; unknown values mean info
	Console bool      // human-readable output on stderr
	Dir     string    // directory for the rotated JSON log; empty disables it
	Output  io.Writer // extra writer, used by tests
}

var (
	mu   sync.RWMutex
	base = zerolog.New(io.Discard)
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Configure replaces the base logger. The returned closer flushes and
// closes the log file.
func Configure(cfg Config) io.Closer {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
	}
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err == nil {
			file := &lj.Logger{
				Filename:   filepath.Join(cfg.Dir, FileName),
				MaxSize:    DefaultMaxSizeMB,
				MaxBackups: DefaultMaxBackups,
				MaxAge:     DefaultMaxAgeDays,
				Compress:   true,
			}
			writers = append(writers, file)
			closer = file
		}
	}
	if cfg.Output != nil {
		writers = append(writers, cfg.Output)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Logger()
	mu.Lock()
	base = l
	mu.Unlock()
	return closer
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
