package launcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"
)

// SweepStale kills emulator instances left behind by a launcher that
// crashed before it could terminate its guest. Instances are matched by
// executable path. It returns the number of processes killed.
func SweepStale(ctx context.Context, executable string, log zerolog.Logger) (int, error) {
	if executable == "" {
		return 0, nil
	}
	want := normalizePath(executable)
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return 0, err
	}
	self := int32(os.Getpid())
	killed := 0
	for _, p := range procs {
		if ctx.Err() != nil {
			return killed, ctx.Err()
		}
		if p.Pid == self {
			continue
		}
		exe, err := p.ExeWithContext(ctx)
		if err != nil || exe == "" || normalizePath(exe) != want {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			log.Warn().Err(err).Int32("pid", p.Pid).Msg("failed to kill stale emulator")
			continue
		}
		log.Info().Int32("pid", p.Pid).Str("exe", exe).Msg("killed stale emulator")
		killed++
	}
	return killed, nil
}

func normalizePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return strings.ToLower(filepath.Clean(p))
}
