package session

import "EmuDock/internal/desktop"

// HostResized queues a size sync on the UI context. It is a no-op once the
// session has ended.
func (s *Session) HostResized() {
	if s.ctx.Err() != nil {
		return
	}
	s.ui.Post(func() {
		if s.ctx.Err() != nil {
			return
		}
		if err := s.SyncSize(); err != nil {
			s.log.Debug().Err(err).Msg("size sync failed")
		}
	})
}

// SyncSize makes the embedded guest fill the host client area. It does
// nothing unless a window is embedded. Must run on the UI context.
func (s *Session) SyncSize() error {
	state, h := s.Embedding()
	if state != Embedded || h == desktop.NoWindow {
		return nil
	}
	return s.desk.SetBounds(h, desktop.Bounds(s.host.ClientSize()))
}
