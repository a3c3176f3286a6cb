package events

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

type EventType string

const (
	// EventWindowMoved is raised when a window of this process moves or resizes.
	EventWindowMoved EventType = "window_moved"
	// EventProcessExited is raised by WMI when any process stops.
	EventProcessExited EventType = "process_exited"
)

type SystemEvent struct {
	Type      EventType      `json:"type"`
	Timestamp int64          `json:"timestampUTC"`
	PID       int            `json:"pid"`
	HWND      uintptr        `json:"hwnd"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type source interface {
	start() error
	wait()
}

type Bus struct {
	ch     chan SystemEvent
	stopCh chan struct{}
	once   sync.Once
	log    zerolog.Logger

	mu  sync.Mutex
	win source
}

func NewBus(buffer int, log zerolog.Logger) *Bus {
	return &Bus{
		ch:     make(chan SystemEvent, buffer),
		stopCh: make(chan struct{}),
		log:    log,
	}
}

func (b *Bus) Events() <-chan SystemEvent { return b.ch }

// Emit never blocks; events are dropped while the buffer is full.
func (b *Bus) Emit(ev SystemEvent) {
	select {
	case b.ch <- ev:
	default:
	}
}

// StartWindowsSources starts the OS event sources: the WinEvent hook for
// this process's windows and the WMI process-stop trace.
func (b *Bus) StartWindowsSources() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.win != nil {
		return nil
	}
	select {
	case <-b.stopCh:
		return ErrStopped
	default:
	}
	ws, err := newWindowsSources(b.Emit, b.stopCh, b.log)
	if err != nil {
		return err
	}
	b.win = ws
	return ws.start()
}

// Stop ends all sources and waits for them to return.
func (b *Bus) Stop() {
	b.once.Do(func() {
		close(b.stopCh)
	})
	b.mu.Lock()
	ws := b.win
	b.mu.Unlock()
	if ws != nil {
		ws.wait()
	}
}

var (
	ErrNotSupported = errors.New("not supported")
	ErrStopped      = errors.New("event bus stopped")
)
