package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"EmuDock/internal/desktop"
	"EmuDock/internal/locator"
	"EmuDock/internal/metrics"
)

var errNoSurface = errors.New("guest has no focusable window")

// Focus gives input focus to the guest's current presentation surface,
// retrying while the window is not yet focusable.
func (s *Session) Focus(ctx context.Context) error {
	ctx, cancel := s.scope(ctx)
	defer cancel()

	op := func() (desktop.Handle, error) {
		target := s.focusTarget()
		if target == desktop.NoWindow {
			return target, errNoSurface
		}
		var ferr error
		if err := s.ui.Invoke(ctx, func() { ferr = s.desk.Foreground(target) }); err != nil {
			return target, backoff.Permanent(err)
		}
		return target, ferr
	}
	h, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.timing.FocusInterval)),
		backoff.WithMaxTries(uint(s.timing.FocusAttempts)),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		metrics.RecordFocus("failed")
		s.log.Debug().Err(err).Msg("could not focus guest")
		return fmt.Errorf("focus guest: %w", err)
	}
	metrics.RecordFocus("ok")
	s.log.Debug().Uint64("hwnd", uint64(h)).Msg("guest focused")
	return nil
}

// FocusAsync runs Focus in the background.
func (s *Session) FocusAsync() {
	s.FocusAfter(0)
}

// FocusAfter runs Focus in the background after delay.
func (s *Session) FocusAfter(delay time.Duration) {
	s.goLoop("focus", func(ctx context.Context) {
		if sleepCtx(ctx, delay) != nil {
			return
		}
		_ = s.Focus(ctx)
	})
}

// focusTarget prefers a screen-covering guest window, then the embedded
// child, then the guest's own top-level window.
func (s *Session) focusTarget() desktop.Handle {
	if !s.proc.Alive() {
		return desktop.NoWindow
	}
	pid := s.proc.PID()
	state, embedded := s.Embedding()
	if h := locator.FindFullscreen(s.desk, pid, embedded, s.timing.FullscreenTolerance); h != desktop.NoWindow {
		return h
	}
	if state == Embedded {
		return embedded
	}
	return locator.Find(s.desk, pid, s.excluded)
}
