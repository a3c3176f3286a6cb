//go:build windows

package trayhotkey

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

type Manager struct {
	deps    Dependencies
	hotkeys []Hotkey
	log     zerolog.Logger

	start    sync.Once
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	threadID atomic.Uint32
}

func NewManager(deps Dependencies, log zerolog.Logger) *Manager {
	return &Manager{
		deps:    deps,
		hotkeys: DefaultHotkeys(),
		log:     log,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (m *Manager) Start() {
	m.start.Do(func() {
		go systray.Run(m.onReady, func() {})
		go m.hotkeyLoop()
	})
}

// Stop unregisters the hotkeys and removes the tray icon.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if tid := m.threadID.Load(); tid != 0 {
			_, _, _ = procPostThreadMessageW.Call(uintptr(tid), WM_QUIT, 0, 0)
		}
		systray.Quit()
	})
}

// Done is closed once the hotkeys are unregistered.
func (m *Manager) Done() <-chan struct{} { return m.done }

func (m *Manager) setTrayIcon() {
	exePath, err := os.Executable()
	if err != nil {
		return
	}
	if icon := loadIcon(filepath.Dir(exePath)); icon != nil {
		systray.SetIcon(icon)
	}
}

func (m *Manager) onReady() {
	systray.SetTitle("EmuDock")
	systray.SetTooltip("EmuDock launcher")
	m.setTrayIcon()

	itemShow := systray.AddMenuItem("Show Emulator", "Bring the emulator to the front (F11)")
	itemRelaunch := systray.AddMenuItem("Relaunch", "Restart the emulator")
	itemSettings := systray.AddMenuItem("Settings", "Open settings (Ctrl+F11)")
	systray.AddSeparator()
	itemExit := systray.AddMenuItem("Exit", "Close the emulator and exit")

	go func() {
		for {
			select {
			case <-m.stop:
				return
			case <-itemShow.ClickedCh:
				call(m.deps.OnShowEmulator)
			case <-itemRelaunch.ClickedCh:
				call(m.deps.OnRelaunch)
			case <-itemSettings.ClickedCh:
				call(m.deps.OnOpenSettings)
			case <-itemExit.ClickedCh:
				call(m.deps.OnExit)
				return
			}
		}
	}()
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// hotkeyLoop owns the thread the hotkeys are registered on; WM_HOTKEY is
// posted to that thread's queue.
func (m *Manager) hotkeyLoop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(m.done)

	// Force creation of the thread message queue before publishing the id.
	var msg MSG
	_, _, _ = procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, WM_USER, WM_USER, PM_NOREMOVE)
	m.threadID.Store(windows.GetCurrentThreadId())
	select {
	case <-m.stop:
		return
	default:
	}

	var registered []Hotkey
	for _, hk := range m.hotkeys {
		r1, _, err := procRegisterHotKey.Call(0, uintptr(hk.ID), uintptr(hk.Modifiers|ModNoRepeat), uintptr(hk.Key))
		if r1 == 0 {
			m.log.Warn().Err(err).Stringer("hotkey", hk).Msg("failed to register hotkey")
			continue
		}
		registered = append(registered, hk)
	}
	defer func() {
		for _, hk := range registered {
			_, _, _ = procUnregisterHotKey.Call(0, uintptr(hk.ID))
		}
	}()

	for {
		r1, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		if int32(r1) <= 0 {
			return
		}
		if msg.Message == WM_HOTKEY {
			if !m.deps.dispatch(int(msg.WParam)) {
				m.log.Debug().Uint64("id", uint64(msg.WParam)).Msg("unknown hotkey")
			}
		}
	}
}

const (
	WM_QUIT     = 0x0012
	WM_USER     = 0x0400
	WM_HOTKEY   = 0x0312
	PM_NOREMOVE = 0x0000
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
)

type POINT struct {
	X int32
	Y int32
}

type MSG struct {
	HWnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      POINT
}
