// Package host adapts the launcher's own window to the session's Host.
package host

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"EmuDock/internal/desktop"
	"EmuDock/internal/locator"
)

// Shell is the part of the app runtime that drives the host window.
type Shell interface {
	Show()
	Hide()
	Minimise()
	Unminimise()
	SetSize(width, height int)
	Size() (int, int)
}

// Window is the host window. Native calls go through the desktop once the
// window handle is known; until then the runtime shell is used.
type Window struct {
	shell Shell
	desk  desktop.Desktop
	title string
	pid   int
	log   zerolog.Logger

	mu      sync.Mutex
	handle  desktop.Handle
	visible bool
}

func New(shell Shell, desk desktop.Desktop, title string, log zerolog.Logger) *Window {
	return &Window{shell: shell, desk: desk, title: title, pid: os.Getpid(), log: log}
}

// Handle looks the native window up by title on first use.
func (w *Window) Handle() desktop.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.handle == desktop.NoWindow {
		w.handle = locator.FindByTitle(w.desk, w.pid, w.title)
		if w.handle != desktop.NoWindow {
			w.log.Debug().Uint64("hwnd", uint64(w.handle)).Msg("host window resolved")
		}
	}
	return w.handle
}

// SetSize resizes synchronously when possible so the client area can be
// read back immediately.
func (w *Window) SetSize(width, height int) {
	if h := w.Handle(); h != desktop.NoWindow {
		err := w.desk.SetSize(h, width, height)
		if err == nil {
			return
		}
		w.log.Debug().Err(err).Msg("native resize failed, using runtime")
	}
	w.shell.SetSize(width, height)
}

func (w *Window) ClientSize() desktop.Size {
	if h := w.Handle(); h != desktop.NoWindow {
		if r, err := w.desk.ClientRect(h); err == nil {
			return r.Size()
		}
	}
	width, height := w.shell.Size()
	return desktop.Size{Width: width, Height: height}
}

func (w *Window) Visible() bool {
	if h := w.Handle(); h != desktop.NoWindow {
		return w.desk.IsVisible(h)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *Window) Show() {
	w.shell.Show()
	w.setVisible(true)
}

func (w *Window) Hide() {
	w.shell.Hide()
	w.setVisible(false)
}

func (w *Window) Minimise() { w.shell.Minimise() }

func (w *Window) Restore() { w.shell.Unminimise() }

// Activate brings the host to the foreground.
func (w *Window) Activate() {
	if h := w.Handle(); h != desktop.NoWindow {
		if err := w.desk.Foreground(h); err != nil {
			w.log.Debug().Err(err).Msg("activate host failed")
		}
		return
	}
	w.shell.Show()
}

func (w *Window) setVisible(v bool) {
	w.mu.Lock()
	w.visible = v
	w.mu.Unlock()
}

// RuntimeShell drives the window through the Wails runtime.
type RuntimeShell struct {
	ctx context.Context
}

func NewRuntimeShell(ctx context.Context) RuntimeShell { return RuntimeShell{ctx: ctx} }

func (r RuntimeShell) Show()                     { runtime.WindowShow(r.ctx) }
func (r RuntimeShell) Hide()                     { runtime.WindowHide(r.ctx) }
func (r RuntimeShell) Minimise()                 { runtime.WindowMinimise(r.ctx) }
func (r RuntimeShell) Unminimise()               { runtime.WindowUnminimise(r.ctx) }
func (r RuntimeShell) SetSize(width, height int) { runtime.WindowSetSize(r.ctx, width, height) }
func (r RuntimeShell) Size() (int, int)          { return runtime.WindowGetSize(r.ctx) }
