//go:build windows

package events

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

// winEventHook reports location changes of this process's top-level
// windows. The hook and its message pump live on one locked OS thread,
// since out-of-context callbacks are delivered to the installing thread.
type winEventHook struct {
	emit func(SystemEvent)
	pid  int
	log  zerolog.Logger
}

func newWinEventHook(emit func(SystemEvent), pid int, log zerolog.Logger) *winEventHook {
	return &winEventHook{emit: emit, pid: pid, log: log}
}

func (w *winEventHook) Run(stopCh <-chan struct{}) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	h, err := setWinEventHook(
		EVENT_OBJECT_LOCATIONCHANGE,
		EVENT_OBJECT_LOCATIONCHANGE,
		0,
		windows.NewCallback(w.callback),
		uint32(w.pid),
		0,
		WINEVENT_OUTOFCONTEXT,
	)
	if err != nil {
		return err
	}
	defer func() { _ = unhookWinEvent(h) }()
	w.log.Debug().Msg("window event hook installed")

	pumpMessages(stopCh)
	return nil
}

func (w *winEventHook) callback(hWinEventHook windows.Handle, event uint32, hwnd uintptr, idObject int32, idChild int32, dwEventThread uint32, dwmsEventTime uint32) uintptr {
	if event != EVENT_OBJECT_LOCATIONCHANGE || idObject != OBJID_WINDOW || idChild != CHILDID_SELF {
		return 0
	}
	w.emit(SystemEvent{
		Type:      EventWindowMoved,
		Timestamp: time.Now().UTC().UnixMilli(),
		PID:       w.pid,
		HWND:      hwnd,
	})
	return 0
}

const (
	EVENT_OBJECT_LOCATIONCHANGE = 0x800B
	OBJID_WINDOW                = 0
	CHILDID_SELF                = 0
	WINEVENT_OUTOFCONTEXT       = 0x0000
)

var (
	user32              = windows.NewLazySystemDLL("user32.dll")
	procSetWinEventHook = user32.NewProc("SetWinEventHook")
	procUnhookWinEvent  = user32.NewProc("UnhookWinEvent")
)

func setWinEventHook(eventMin, eventMax uint32, hmodWinEventHook windows.Handle, pfnWinEventProc uintptr, idProcess, idThread uint32, dwFlags uint32) (windows.Handle, error) {
	r1, _, e1 := procSetWinEventHook.Call(
		uintptr(eventMin),
		uintptr(eventMax),
		uintptr(hmodWinEventHook),
		pfnWinEventProc,
		uintptr(idProcess),
		uintptr(idThread),
		uintptr(dwFlags),
	)
	if r1 == 0 {
		return 0, e1
	}
	return windows.Handle(r1), nil
}

func unhookWinEvent(h windows.Handle) error {
	r1, _, e1 := procUnhookWinEvent.Call(uintptr(h))
	if r1 == 0 {
		return e1
	}
	return nil
}
