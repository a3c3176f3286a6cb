package session

import (
	"context"
	"errors"
	"fmt"

	"EmuDock/internal/desktop"
	"EmuDock/internal/locator"
	"EmuDock/internal/metrics"
)

// Embed finds the guest's window and reparents it into the host window.
// A nil error means the guest is embedded. Failures are not fatal to the
// session: the guest keeps running in its own window. Embed may be called
// once per session.
func (s *Session) Embed(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrTerminated
	case s.embedding != NotStarted:
		s.mu.Unlock()
		return ErrEmbedStarted
	}
	s.embedding = Discovering
	s.mu.Unlock()

	ctx, cancel := s.scope(ctx)
	defer cancel()
	log := s.log.With().Str("op", "embed").Logger()

	h, tries, err := locator.Discover(ctx, s.desk, s.proc.PID(), s.excluded,
		s.timing.DiscoveryAttempts, s.timing.DiscoveryInterval, s.proc.Alive, log)
	metrics.ObserveDiscovery(tries)
	if err != nil {
		switch {
		case locator.ProcessGone(err):
			err = ErrProcessExited
		case errors.Is(err, locator.ErrNotFound):
			err = fmt.Errorf("%w after %d attempts", ErrDiscoveryTimeout, tries)
		}
		return s.fail(err)
	}
	if !s.advance(Found, h) {
		return s.fail(ErrTerminated)
	}
	log.Info().Uint64("hwnd", uint64(h)).Int("attempts", tries).
		Str("class", s.desk.ClassName(h)).Msg("guest window found")

	if err := sleepCtx(ctx, s.timing.SettleDelay); err != nil {
		return s.fail(err)
	}
	if !s.advance(Embedding, h) {
		return s.fail(ErrTerminated)
	}

	var stepErr error
	if err := s.ui.Invoke(ctx, func() { stepErr = s.attach(ctx, h) }); err != nil {
		return s.fail(err)
	}
	if stepErr != nil {
		return s.fail(stepErr)
	}
	if !s.advance(Embedded, h) {
		return s.fail(ErrTerminated)
	}
	metrics.RecordEmbed("embedded")
	log.Info().Uint64("hwnd", uint64(h)).Msg("guest window embedded")

	s.FocusAsync()
	return nil
}

// attach runs the embedding sequence on the UI context. The host is sized
// to the guest before the guest is sized to the host.
func (s *Session) attach(ctx context.Context, h desktop.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	native, err := s.desk.WindowRect(h)
	if err != nil {
		return &EmbedStepError{Step: StepSnapshot, Err: err}
	}
	s.host.SetSize(native.Width(), native.Height())

	if err := s.desk.Hide(h); err != nil {
		return &EmbedStepError{Step: StepHide, Err: err}
	}
	if err := s.desk.MakeChild(h); err != nil {
		return &EmbedStepError{Step: StepRestyle, Err: err}
	}
	if err := s.desk.SetParent(h, s.host.Handle()); err != nil {
		return &EmbedStepError{Step: StepReparent, Err: err}
	}
	if err := s.desk.SetBounds(h, desktop.Bounds(s.host.ClientSize())); err != nil {
		return &EmbedStepError{Step: StepFill, Err: err}
	}
	if err := s.desk.Show(h); err != nil {
		return &EmbedStepError{Step: StepShow, Err: err}
	}
	return nil
}

func (s *Session) fail(err error) error {
	if !s.advance(EmbedFailed, desktop.NoWindow) {
		metrics.RecordEmbed("canceled")
		return ErrTerminated
	}
	var stepErr *EmbedStepError
	switch {
	case errors.Is(err, ErrDiscoveryTimeout):
		metrics.RecordEmbed("discovery_timeout")
	case errors.As(err, &stepErr):
		metrics.RecordEmbed("step_failed")
	default:
		metrics.RecordEmbed("canceled")
	}
	s.log.Warn().Err(err).Msg("embedding failed, guest stays in its own window")
	return err
}
