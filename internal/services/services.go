// Package services wires the launcher together: it runs the load sequence,
// owns the current guest session and routes tray, hotkey and OS events to it.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"EmuDock/internal/config"
	"EmuDock/internal/desktop"
	"EmuDock/internal/events"
	"EmuDock/internal/ipcapi"
	"EmuDock/internal/launcher"
	"EmuDock/internal/logging"
	"EmuDock/internal/metrics"
	"EmuDock/internal/session"
	"EmuDock/internal/trayhotkey"
)

var (
	ErrNoSession = errors.New("no guest session")
	ErrStopped   = errors.New("services stopped")

	// ErrIncompleteConfig means the record lacks paths a launch needs.
	ErrIncompleteConfig = errors.New("configuration incomplete")
)

type Dependencies struct {
	Config *config.Config
	// LoadConfig re-reads the configuration on relaunch. Optional.
	LoadConfig func() (*config.Config, error)
	// NoEmbed forces the unembedded mode regardless of Config.EmbedWindow.
	NoEmbed bool

	Desktop desktop.Desktop
	Host    session.Host
	UI      session.Dispatcher

	// Launch starts the guest. Defaults to launcher.Launch.
	Launch func(launcher.Request) (session.Process, error)
	// Sweep removes guest processes left over from an earlier run.
	// Defaults to launcher.SweepStale.
	Sweep func(ctx context.Context, executable string) error

	EmitEvent   func(name string, data any)
	ShowError   func(title, message string)
	ShowWarning func(title, message string)
	Quit        func()

	Logger zerolog.Logger
}

type Services struct {
	deps Dependencies
	log  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	cfgMu sync.RWMutex
	cfg   *config.Config

	// launching serializes Launch and Relaunch.
	launching sync.Mutex

	mu      sync.Mutex
	current *session.Session
	state   string

	ev *events.Bus
	th *trayhotkey.Manager

	// runMu orders goRun's Add against the cancel in Stop, so no
	// goroutine is added once Stop may be waiting.
	runMu    sync.Mutex
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func New(deps Dependencies) *Services {
	if deps.Config == nil {
		deps.Config = config.DefaultConfig()
	}
	if deps.Launch == nil {
		log := logging.WithComponent("launcher")
		deps.Launch = func(r launcher.Request) (session.Process, error) {
			p, err := launcher.Launch(r, log)
			if err != nil {
				return nil, err
			}
			return p, nil
		}
	}
	if deps.Sweep == nil {
		log := logging.WithComponent("launcher")
		deps.Sweep = func(ctx context.Context, exe string) error {
			_, err := launcher.SweepStale(ctx, exe, log)
			return err
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Services{
		deps:   deps,
		log:    deps.Logger,
		ctx:    ctx,
		cancel: cancel,
		cfg:    deps.Config,
		state:  ipcapi.StateIdle,
		ev:     events.NewBus(256, deps.Logger),
	}
}

// Start brings up the tray, hotkeys and OS event sources, then runs the
// load sequence in the background. Canceling ctx has the effect of Stop
// on the running session.
func (s *Services) Start(ctx context.Context) {
	context.AfterFunc(ctx, s.cancel)

	s.th = trayhotkey.NewManager(trayhotkey.Dependencies{
		OnShowEmulator: func() {
			if err := s.FocusGuest(); err != nil {
				s.log.Debug().Err(err).Msg("show emulator ignored")
			}
		},
		OnRelaunch: func() {
			started := s.goRun(func() {
				if err := s.Relaunch(s.ctx); err != nil {
					s.log.Warn().Err(err).Msg("relaunch failed")
				}
			})
			if !started {
				s.log.Debug().Msg("relaunch ignored while stopping")
			}
		},
		OnOpenSettings: func() {
			s.emit(ipcapi.EventSettingsRequested, nil)
		},
		OnExit: func() {
			s.emit(ipcapi.EventExitRequested, nil)
			s.quit()
		},
	}, logging.WithComponent("tray"))
	s.th.Start()

	if err := s.ev.StartWindowsSources(); err != nil {
		if errors.Is(err, events.ErrNotSupported) {
			s.log.Debug().Msg("os event sources not supported, relying on polling")
		} else {
			s.log.Warn().Err(err).Msg("os event sources unavailable")
		}
	}
	s.goRun(s.routeEvents)

	if addr := s.config().MetricsAddr; addr != "" {
		s.goRun(func() {
			if err := metrics.Serve(s.ctx, addr); err != nil {
				s.log.Warn().Err(err).Str("addr", addr).Msg("metrics listener stopped")
			}
		})
	}

	s.goRun(func() {
		if err := s.Launch(s.ctx, s.config()); err != nil {
			s.log.Debug().Err(err).Msg("load sequence ended without a session")
		}
	})
}

// Stop ends the event sources and the current session and waits for every
// background task. Safe to call more than once.
func (s *Services) Stop() {
	s.stopOnce.Do(func() {
		s.runMu.Lock()
		s.cancel()
		s.runMu.Unlock()
		if s.th != nil {
			s.th.Stop()
		}
		s.ev.Stop()
		s.terminateCurrent()
		s.wg.Wait()
	})
}

// Launch runs the load sequence for cfg, replacing any current session.
// A launch failure is reported to the user and quits the application.
func (s *Services) Launch(ctx context.Context, cfg *config.Config) error {
	s.launching.Lock()
	defer s.launching.Unlock()
	if err := s.ctx.Err(); err != nil {
		return ErrStopped
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		s.requestSettings(ctx, missing)
		return fmt.Errorf("%w: missing %s", ErrIncompleteConfig, strings.Join(missing, ", "))
	}

	s.terminateCurrent()
	s.setState(ipcapi.StateLaunching)
	s.emitStatus()

	if err := s.deps.Sweep(ctx, cfg.EmulatorPath); err != nil {
		s.log.Warn().Err(err).Msg("stale process sweep failed")
	}

	req := launcher.RequestFromConfig(cfg)
	s.log.Info().Str("cmdline", launcher.CommandLine(req)).Msg("launching guest")
	proc, err := s.deps.Launch(req)
	if err != nil {
		metrics.RecordLaunch("failed")
		s.launchFailed(err)
		return err
	}
	metrics.RecordLaunch("ok")
	s.describe(proc.PID())

	var sess *session.Session
	sess = session.New(s.ctx, proc, session.Options{
		Desktop:         s.deps.Desktop,
		Host:            s.deps.Host,
		UI:              s.deps.UI,
		Timing:          cfg.Timing,
		ExcludedClasses: cfg.ExcludeWindowClasses,
		Logger:          logging.WithComponent("session"),
		OnExit:          func() { s.guestExited(sess) },
		OnFullscreenChange: func(st session.FullscreenState) {
			s.emit(ipcapi.EventFullscreenChanged, ipcapi.FullscreenChangedEvent{
				SessionID: sess.ID(),
				State:     st.String(),
				AtUTC:     ipcapi.NowUTC(),
			})
		},
	})

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		_ = sess.Terminate()
		return ErrStopped
	}
	s.current = sess
	s.state = ipcapi.StateRunning
	s.mu.Unlock()

	if cfg.EmbedWindow && !s.deps.NoEmbed {
		s.embed(ctx, sess, cfg)
	} else {
		s.log.Info().Msg("embedding disabled, guest keeps its own window")
		sess.FocusAfter(cfg.Timing.UnembeddedFocusDelay)
	}

	sess.StartFullscreenMonitor()
	sess.StartWatchdog()
	s.emitStatus()
	return nil
}

func (s *Services) embed(ctx context.Context, sess *session.Session, cfg *config.Config) {
	err := sess.Embed(ctx)
	switch {
	case err == nil && cfg.Fullscreen:
		sess.FocusAfter(cfg.Timing.FullscreenFocusDelay)
	case err == nil:
		s.onUI(ctx, func() {
			s.deps.Host.Show()
			s.deps.Host.Activate()
		})
	case errors.Is(err, session.ErrTerminated), errors.Is(err, session.ErrProcessExited), ctx.Err() != nil:
		s.log.Debug().Err(err).Msg("embedding abandoned")
	default:
		s.log.Warn().Err(err).Msg("embedding failed, guest keeps its own window")
		s.emit(ipcapi.EventEmbedWarning, ipcapi.EmbedWarningEvent{
			SessionID: sess.ID(),
			Error:     err.Error(),
			AtUTC:     ipcapi.NowUTC(),
		})
		s.onUI(ctx, s.deps.Host.Show)
		if s.deps.ShowWarning != nil {
			msg := fmt.Sprintf("The emulator window could not be embedded and will stay in its own window.\n\n%v", err)
			go s.deps.ShowWarning("Embedding failed", msg)
		}
		sess.FocusAsync()
	}
}

// requestSettings asks the frontend for the missing fields instead of
// launching. The running guest, if any, is left alone.
func (s *Services) requestSettings(ctx context.Context, missing []string) {
	s.log.Warn().Strs("missing", missing).Msg("configuration incomplete, not launching")
	s.mu.Lock()
	if s.current == nil {
		s.state = ipcapi.StateSetup
	}
	s.mu.Unlock()
	s.emit(ipcapi.EventSettingsRequested, ipcapi.SettingsRequestedEvent{
		Missing: missing,
		AtUTC:   ipcapi.NowUTC(),
	})
	s.emitStatus()
	s.onUI(ctx, func() {
		s.deps.Host.Show()
		s.deps.Host.Activate()
	})
	if s.deps.ShowError != nil {
		msg := fmt.Sprintf("The emulator cannot start until these settings are filled in:\n\n%s", strings.Join(missing, "\n"))
		go s.deps.ShowError("Setup required", msg)
	}
}

func (s *Services) launchFailed(err error) {
	var path string
	var le *launcher.LaunchError
	if errors.As(err, &le) {
		path = le.Path
	}
	s.log.Error().Err(err).Str("path", path).Msg("guest launch failed")
	s.setState(ipcapi.StateFailed)
	s.emit(ipcapi.EventLaunchFailed, ipcapi.LaunchFailedEvent{
		Path:  path,
		Error: err.Error(),
		AtUTC: ipcapi.NowUTC(),
	})
	if s.deps.ShowError != nil {
		s.deps.ShowError("Launch failed", fmt.Sprintf("The emulator could not be started.\n\n%v", err))
	}
	s.quit()
}

func (s *Services) guestExited(sess *session.Session) {
	s.mu.Lock()
	if s.current != sess {
		s.mu.Unlock()
		return
	}
	s.state = ipcapi.StateExited
	s.mu.Unlock()

	s.log.Info().Int("pid", sess.PID()).Msg("guest exited, shutting down")
	s.emit(ipcapi.EventGuestExited, s.Status())
	s.quit()
}

// Relaunch re-reads the configuration, ends the current guest and runs the
// load sequence again.
func (s *Services) Relaunch(ctx context.Context) error {
	cfg := s.config()
	if s.deps.LoadConfig != nil {
		fresh, err := s.deps.LoadConfig()
		if err != nil {
			s.log.Warn().Err(err).Msg("config reload failed, keeping previous settings")
		} else {
			cfg = fresh
			s.cfgMu.Lock()
			s.cfg = fresh
			s.cfgMu.Unlock()
		}
	}
	if cfg.Complete() {
		s.onUI(ctx, s.deps.Host.Hide)
	}
	return s.Launch(ctx, cfg)
}

// FocusGuest brings the guest to the foreground.
func (s *Services) FocusGuest() error {
	sess := s.session()
	if sess == nil || sess.Closed() {
		return ErrNoSession
	}
	sess.FocusAsync()
	return nil
}

// HostResized reports a host geometry change observed outside the OS hook.
func (s *Services) HostResized() {
	if sess := s.session(); sess != nil {
		sess.HostResized()
	}
}

func (s *Services) Status() ipcapi.SessionStatus {
	s.mu.Lock()
	sess, state := s.current, s.state
	s.mu.Unlock()

	out := ipcapi.SessionStatus{
		State:      state,
		Embedding:  session.NotStarted.String(),
		Fullscreen: session.Unknown.String(),
		AtUTC:      ipcapi.NowUTC(),
	}
	if sess == nil {
		return out
	}
	st := sess.Status()
	out.SessionID = st.ID
	out.PID = st.PID
	out.Embedding = st.Embedding.String()
	out.Fullscreen = st.Fullscreen.String()
	out.Window = uint64(st.Window)
	return out
}

func (s *Services) routeEvents() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.ev.Events():
			s.handleEvent(ev)
		}
	}
}

func (s *Services) handleEvent(ev events.SystemEvent) {
	sess := s.session()
	if sess == nil {
		return
	}
	switch ev.Type {
	case events.EventWindowMoved:
		if desktop.Handle(ev.HWND) == s.deps.Host.Handle() {
			sess.HostResized()
		}
	case events.EventProcessExited:
		if ev.PID == sess.PID() {
			sess.Wake()
		}
	}
}

func (s *Services) describe(pid int) {
	d, err := launcher.Describe(pid)
	if err != nil {
		s.log.Debug().Err(err).Int("pid", pid).Msg("guest process details unavailable")
		return
	}
	s.log.Info().Int("pid", d.PID).Str("name", d.Name).Str("exe", d.ExecutablePath).Msg("guest started")
}

func (s *Services) terminateCurrent() {
	s.mu.Lock()
	sess := s.current
	s.current = nil
	s.mu.Unlock()
	if sess == nil {
		return
	}
	if err := sess.Terminate(); err != nil {
		s.log.Debug().Err(err).Msg("session ended")
	}
}

func (s *Services) session() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Services) config() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

func (s *Services) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Services) emitStatus() { s.emit(ipcapi.EventSessionStatus, s.Status()) }

func (s *Services) emit(name string, data any) {
	if s.deps.EmitEvent != nil {
		s.deps.EmitEvent(name, data)
	}
}

func (s *Services) quit() {
	if s.deps.Quit != nil {
		s.deps.Quit()
	}
}

// onUI runs fn on the UI context and waits for it.
func (s *Services) onUI(ctx context.Context, fn func()) {
	if err := s.deps.UI.Invoke(ctx, fn); err != nil {
		s.log.Debug().Err(err).Msg("ui call dropped")
	}
}

// goRun runs fn in a goroutine that Stop waits for. Once the services
// are stopping it reports false and fn is not run.
func (s *Services) goRun(fn func()) bool {
	s.runMu.Lock()
	if s.ctx.Err() != nil {
		s.runMu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.runMu.Unlock()

	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}
