package ipcapi

import "time"

// Events emitted to the frontend.
const (
	EventSessionStatus     = "onSessionStatus"
	EventFullscreenChanged = "onFullscreenChanged"
	EventLaunchFailed      = "onLaunchFailed"
	EventEmbedWarning      = "onEmbedWarning"
	EventSettingsRequested = "onShowSettingsRequested"
	EventGuestExited       = "onGuestExited"
	EventExitRequested     = "onExitRequested"
)

// Session lifecycle states reported in SessionStatus.State.
const (
	StateIdle      = "idle"
	StateLaunching = "launching"
	StateRunning   = "running"
	StateSetup     = "setup"
	StateFailed    = "failed"
	StateExited    = "exited"
)

type SessionStatus struct {
	SessionID  string `json:"sessionID,omitempty"`
	PID        int    `json:"pid,omitempty"`
	State      string `json:"state"`
	Embedding  string `json:"embedding"`
	Fullscreen string `json:"fullscreen"`
	Window     uint64 `json:"window,omitempty"`
	AtUTC      int64  `json:"atUTC"`
}

type FullscreenChangedEvent struct {
	SessionID string `json:"sessionID"`
	State     string `json:"state"`
	AtUTC     int64  `json:"atUTC"`
}

type LaunchFailedEvent struct {
	Path  string `json:"path,omitempty"`
	Error string `json:"error"`
	AtUTC int64  `json:"atUTC"`
}

type EmbedWarningEvent struct {
	SessionID string `json:"sessionID"`
	Error     string `json:"error"`
	AtUTC     int64  `json:"atUTC"`
}

type SettingsRequestedEvent struct {
	Missing []string `json:"missing,omitempty"`
	AtUTC   int64    `json:"atUTC"`
}

func NowUTC() int64 { return time.Now().UTC().UnixMilli() }
