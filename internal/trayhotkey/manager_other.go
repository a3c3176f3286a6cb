//go:build !windows

package trayhotkey

import "github.com/rs/zerolog"

// Manager is inert off Windows: there is no tray or global hotkey support.
type Manager struct {
	deps Dependencies
	log  zerolog.Logger
	done chan struct{}
}

func NewManager(deps Dependencies, log zerolog.Logger) *Manager {
	done := make(chan struct{})
	close(done)
	return &Manager{deps: deps, log: log, done: done}
}

func (m *Manager) Start() {
	m.log.Debug().Msg("tray and hotkeys are not supported on this platform")
}

func (m *Manager) Stop() {}

func (m *Manager) Done() <-chan struct{} { return m.done }
