package main

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"EmuDock/internal/config"
	"EmuDock/internal/desktop"
	"EmuDock/internal/host"
	"EmuDock/internal/ipcapi"
	"EmuDock/internal/logging"
	"EmuDock/internal/services"
	"EmuDock/internal/uithread"
)

var errNotReady = errors.New("backend not ready")

type App struct {
	ctx context.Context

	cfg        *config.Config
	configPath string
	noEmbed    bool
	log        zerolog.Logger

	svc    *services.Services
	ui     *uithread.Dispatcher
	stopUI context.CancelFunc

	start sync.Once
	stop  sync.Once
}

func NewApp(cfg *config.Config, configPath string, noEmbed bool) *App {
	return &App{
		cfg:        cfg,
		configPath: configPath,
		noEmbed:    noEmbed,
		log:        logging.WithComponent("app"),
	}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	a.start.Do(func() {
		uiCtx, cancel := context.WithCancel(context.Background())
		a.stopUI = cancel
		a.ui = uithread.New(logging.WithComponent("ui"))
		go a.ui.Run(uiCtx)

		desk := desktop.New()
		win := host.New(host.NewRuntimeShell(ctx), desk, windowTitle, logging.WithComponent("host"))

		a.svc = services.New(services.Dependencies{
			Config: a.cfg,
			LoadConfig: func() (*config.Config, error) {
				return config.Load(a.configPath)
			},
			NoEmbed: a.noEmbed,
			Desktop: desk,
			Host:    win,
			UI:      a.ui,
			EmitEvent: func(name string, data any) {
				runtime.EventsEmit(ctx, name, data)
			},
			ShowError: func(title, message string) {
				a.dialog(runtime.ErrorDialog, title, message)
			},
			ShowWarning: func(title, message string) {
				a.dialog(runtime.WarningDialog, title, message)
			},
			Quit: func() {
				runtime.Quit(ctx)
			},
			Logger: logging.WithComponent("services"),
		})
		a.svc.Start(ctx)
	})
}

func (a *App) shutdown(ctx context.Context) {
	a.stop.Do(func() {
		if a.svc != nil {
			a.svc.Stop()
		}
		if a.stopUI != nil {
			a.stopUI()
			<-a.ui.Done()
		}
		a.log.Info().Msg("launcher stopped")
	})
}

func (a *App) dialog(kind runtime.DialogType, title, message string) {
	_, err := runtime.MessageDialog(a.ctx, runtime.MessageDialogOptions{
		Type:    kind,
		Title:   title,
		Message: message,
	})
	if err != nil {
		a.log.Warn().Err(err).Str("title", title).Msg("dialog failed")
	}
}

func (a *App) GetStatus() ipcapi.SessionStatus {
	if a.svc == nil {
		return ipcapi.SessionStatus{State: ipcapi.StateIdle, AtUTC: ipcapi.NowUTC()}
	}
	return a.svc.Status()
}

func (a *App) FocusEmulator() error {
	if a.svc == nil {
		return errNotReady
	}
	return a.svc.FocusGuest()
}

func (a *App) Relaunch() error {
	if a.svc == nil {
		return errNotReady
	}
	return a.svc.Relaunch(a.ctx)
}

// HostResized is called by the frontend on window resize.
func (a *App) HostResized() {
	if a.svc != nil {
		a.svc.HostResized()
	}
}

func (a *App) ExitApp() {
	if a.ctx == nil {
		return
	}
	runtime.Quit(a.ctx)
}
