// Package session supervises one guest emulator process and its window:
// embedding it into the host, keeping geometry in sync, following the
// guest's fullscreen transitions and ending the session when it exits.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"EmuDock/internal/config"
	"EmuDock/internal/desktop"
	"EmuDock/internal/metrics"
)

// Process is the guest process as seen by a session.
type Process interface {
	PID() int
	Alive() bool
	// Wait reports whether the process exited within timeout.
	Wait(timeout time.Duration) bool
	Kill() error
}

// Host is the launcher's own top-level window. Methods are called on the
// UI context only.
type Host interface {
	Handle() desktop.Handle
	SetSize(width, height int)
	ClientSize() desktop.Size
	Visible() bool
	Show()
	Hide()
	Minimise()
	Restore()
	Activate()
}

// Dispatcher is the single UI-affine execution context.
type Dispatcher interface {
	Invoke(ctx context.Context, fn func()) error
	Post(fn func())
}

type Options struct {
	Desktop         desktop.Desktop
	Host            Host
	UI              Dispatcher
	Timing          config.Timing
	ExcludedClasses []string
	Logger          zerolog.Logger
	// OnExit runs on the UI context after the watchdog saw the guest exit
	// and the session has been torn down.
	OnExit func()
	// OnFullscreenChange is called after each fullscreen transition.
	OnFullscreenChange func(FullscreenState)
}

// Session owns exactly one guest process and at most one embedded window.
type Session struct {
	id       string
	proc     Process
	desk     desktop.Desktop
	host     Host
	ui       Dispatcher
	timing   config.Timing
	excluded []string
	log      zerolog.Logger

	onExit       func()
	onFullscreen func(FullscreenState)

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	wake   chan struct{}
	stop   sync.Once

	mu         sync.Mutex
	embedding  EmbeddingState
	handle     desktop.Handle
	fullscreen FullscreenState
	closed     bool
	reason     error
}

// New starts supervising proc. The session lives until Terminate is called,
// parent is canceled or the watchdog sees the guest exit.
func New(parent context.Context, proc Process, opts Options) *Session {
	ctx, cancel := context.WithCancel(parent)
	excluded := opts.ExcludedClasses
	if len(excluded) == 0 {
		excluded = desktop.DefaultExcludedClasses()
	}
	id := uuid.NewString()
	s := &Session{
		id:           id,
		proc:         proc,
		desk:         opts.Desktop,
		host:         opts.Host,
		ui:           opts.UI,
		timing:       opts.Timing.WithDefaults(),
		excluded:     excluded,
		log:          opts.Logger.With().Str("session", id).Int("pid", proc.PID()).Logger(),
		onExit:       opts.OnExit,
		onFullscreen: opts.OnFullscreenChange,
		ctx:          ctx,
		cancel:       cancel,
		wake:         make(chan struct{}, 1),
	}
	metrics.SetSessionActive(true)
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) PID() int { return s.proc.PID() }

// Embedding returns the embedding state and the tracked guest window.
func (s *Session) Embedding() (EmbeddingState, desktop.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.embedding, s.handle
}

func (s *Session) Fullscreen() FullscreenState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullscreen
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Err returns why the session ended: ErrTerminated, ErrProcessExited or nil
// while it is still running.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

type Status struct {
	ID         string
	PID        int
	Embedding  EmbeddingState
	Window     desktop.Handle
	Fullscreen FullscreenState
	Closed     bool
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		ID:         s.id,
		PID:        s.proc.PID(),
		Embedding:  s.embedding,
		Window:     s.handle,
		Fullscreen: s.fullscreen,
		Closed:     s.closed,
	}
}

// Wake makes the watchdog check liveness now instead of at its next tick.
func (s *Session) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Terminate cancels every loop, forgets the guest window and stops the
// guest process, waiting up to the kill timeout for it to close before
// killing it. It is idempotent.
func (s *Session) Terminate() error {
	s.teardown(ErrTerminated)
	_ = s.group.Wait()
	return nil
}

func (s *Session) teardown(reason error) {
	s.stop.Do(func() {
		// Loops are canceled before the handle is dropped so none of them
		// can act on a window that is going away.
		s.cancel()

		s.mu.Lock()
		h := s.handle
		s.closed = true
		s.reason = reason
		s.handle = desktop.NoWindow
		s.embedding = NotStarted
		s.mu.Unlock()

		metrics.SetSessionActive(false)
		s.stopProcess(h)
		s.log.Info().AnErr("reason", reason).Msg("session ended")
	})
}

func (s *Session) stopProcess(h desktop.Handle) {
	if !s.proc.Alive() {
		return
	}
	if h != desktop.NoWindow {
		if err := s.desk.Close(h); err != nil {
			s.log.Debug().Err(err).Msg("close request failed")
		} else if s.proc.Wait(s.timing.KillTimeout) {
			return
		}
	}
	if err := s.proc.Kill(); err != nil {
		s.log.Warn().Err(err).Msg("failed to kill guest")
		return
	}
	if !s.proc.Wait(s.timing.KillTimeout) {
		s.log.Warn().Dur("timeout", s.timing.KillTimeout).Msg("guest still running after kill")
	}
}

// advance moves the embedding state machine. It refuses once the session
// is closed so a late step cannot resurrect a dropped handle.
func (s *Session) advance(state EmbeddingState, h desktop.Handle) bool {
	if !state.tracksWindow() {
		h = desktop.NoWindow
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.embedding = state
	s.handle = h
	return true
}

// goLoop runs fn in the session group unless the session is closed.
func (s *Session) goLoop(name string, fn func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.group.Go(func() error {
		s.log.Debug().Str("loop", name).Msg("loop started")
		fn(s.ctx)
		s.log.Debug().Str("loop", name).Msg("loop stopped")
		return nil
	})
	return true
}

// scope derives a context that also ends with the session.
func (s *Session) scope(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
