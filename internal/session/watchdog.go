package session

import (
	"context"
	"time"

	"EmuDock/internal/metrics"
)

// StartWatchdog polls guest liveness. When the guest is gone it tears the
// session down and posts OnExit to the UI context.
func (s *Session) StartWatchdog() bool {
	return s.goLoop("watchdog", s.watch)
}

func (s *Session) watch(ctx context.Context) {
	ticker := time.NewTicker(s.timing.WatchdogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.wake:
		}
		if ctx.Err() != nil {
			return
		}
		if s.proc.Alive() {
			continue
		}
		s.log.Info().Msg("guest process exited")
		metrics.RecordGuestExit()
		s.teardown(ErrProcessExited)
		if s.onExit != nil {
			s.ui.Post(s.onExit)
		}
		return
	}
}
