package session

import (
	"context"
	"time"

	"EmuDock/internal/desktop"
	"EmuDock/internal/locator"
	"EmuDock/internal/metrics"
)

// StartFullscreenMonitor polls the guest's windows and follows its
// fullscreen transitions until the session ends or the guest exits.
func (s *Session) StartFullscreenMonitor() bool {
	return s.goLoop("fullscreen", s.monitorFullscreen)
}

func (s *Session) monitorFullscreen(ctx context.Context) {
	ticker := time.NewTicker(s.timing.FullscreenInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		// A dead pid may already belong to another process.
		if ctx.Err() != nil || !s.proc.Alive() {
			return
		}
		s.observe(ctx, s.classify())
	}
}

// classify looks for a screen-covering top-level window of the guest other
// than the embedded child, whose rectangle is parent-relative.
func (s *Session) classify() FullscreenState {
	_, embedded := s.Embedding()
	h := locator.FindFullscreen(s.desk, s.proc.PID(), embedded, s.timing.FullscreenTolerance)
	if h != desktop.NoWindow {
		return Fullscreen
	}
	return Windowed
}

// observe records a classification and applies effects only when it
// differs from the previous one.
func (s *Session) observe(ctx context.Context, next FullscreenState) {
	s.mu.Lock()
	prev := s.fullscreen
	if s.closed || prev == next {
		s.mu.Unlock()
		return
	}
	s.fullscreen = next
	s.mu.Unlock()

	metrics.RecordFullscreenTransition(next.String())
	s.log.Info().Stringer("from", prev).Stringer("to", next).Msg("guest presentation changed")

	if err := s.ui.Invoke(ctx, func() { s.present(ctx, prev, next) }); err != nil {
		s.log.Debug().Err(err).Msg("presentation change skipped")
		return
	}
	if s.onFullscreen != nil {
		s.onFullscreen(next)
	}
}

// present applies a transition to the host window. Runs on the UI context.
func (s *Session) present(ctx context.Context, prev, next FullscreenState) {
	if ctx.Err() != nil {
		return
	}
	state, _ := s.Embedding()
	embedded := state == Embedded

	switch {
	case next == Fullscreen:
		if embedded {
			s.host.Hide()
			s.host.Minimise()
		}
	case prev == Fullscreen:
		if !embedded {
			s.FocusAsync()
			return
		}
		s.reveal()
	case embedded && !s.host.Visible():
		s.reveal()
	}
}

// reveal brings the host back and pushes the size explicitly, since a
// restore does not always raise a resize event.
func (s *Session) reveal() {
	s.host.Show()
	s.host.Restore()
	s.host.Activate()
	if err := s.SyncSize(); err != nil {
		s.log.Debug().Err(err).Msg("size sync after restore failed")
	}
}
