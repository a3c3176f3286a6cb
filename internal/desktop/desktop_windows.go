//go:build windows

package desktop

import (
	"iter"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	u32                          = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = u32.NewProc("EnumWindows")
	procGetWindowThreadProcessId = u32.NewProc("GetWindowThreadProcessId")
	procIsWindow                 = u32.NewProc("IsWindow")
	procIsWindowVisible          = u32.NewProc("IsWindowVisible")
	procGetClassNameW            = u32.NewProc("GetClassNameW")
	procGetWindowTextW           = u32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW     = u32.NewProc("GetWindowTextLengthW")
	procGetWindowRect            = u32.NewProc("GetWindowRect")
	procGetClientRect            = u32.NewProc("GetClientRect")
	procGetWindowLongPtrW        = u32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW        = u32.NewProc("SetWindowLongPtrW")
	procSetParent                = u32.NewProc("SetParent")
	procSetWindowPos             = u32.NewProc("SetWindowPos")
	procShowWindow               = u32.NewProc("ShowWindow")
	procSetForegroundWindow      = u32.NewProc("SetForegroundWindow")
	procGetAncestor              = u32.NewProc("GetAncestor")
	procSetFocus                 = u32.NewProc("SetFocus")
	procAttachThreadInput        = u32.NewProc("AttachThreadInput")
	procGetSystemMetrics         = u32.NewProc("GetSystemMetrics")
	procPostMessageW             = u32.NewProc("PostMessageW")

	k32              = windows.NewLazySystemDLL("kernel32.dll")
	procSetLastError = k32.NewProc("SetLastError")
)

const (
	GWL_STYLE = -16

	WS_POPUP       = 0x80000000
	WS_CHILD       = 0x40000000
	WS_MINIMIZE    = 0x20000000
	WS_MAXIMIZE    = 0x01000000
	WS_CAPTION     = 0x00C00000
	WS_SYSMENU     = 0x00080000
	WS_THICKFRAME  = 0x00040000
	WS_MINIMIZEBOX = 0x00020000
	WS_MAXIMIZEBOX = 0x00010000

	SWP_NOSIZE       = 0x0001
	SWP_NOMOVE       = 0x0002
	SWP_NOZORDER     = 0x0004
	SWP_NOACTIVATE   = 0x0010
	SWP_FRAMECHANGED = 0x0020

	SW_HIDE = 0
	SW_SHOW = 5

	GA_ROOT = 2

	SM_CXSCREEN = 0
	SM_CYSCREEN = 1

	WM_CLOSE = 0x0010
)

const decorationBits = WS_POPUP | WS_CAPTION | WS_THICKFRAME | WS_MINIMIZE | WS_MAXIMIZE |
	WS_SYSMENU | WS_MINIMIZEBOX | WS_MAXIMIZEBOX

type RECT struct {
	Left, Top, Right, Bottom int32
}

type win32Desktop struct{}

// New returns the Win32 desktop.
func New() Desktop { return win32Desktop{} }

// EnumWindows only accepts a C callback and windows.NewCallback slots are a
// finite resource, so a single callback is shared and the active visitor is
// handed over under enumMu.
var (
	enumMu    sync.Mutex
	enumVisit func(hwnd uintptr) bool
	enumProc  = windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if enumVisit != nil && enumVisit(hwnd) {
			return 1
		}
		return 0
	})
)

func (win32Desktop) TopLevelWindows() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		enumMu.Lock()
		defer enumMu.Unlock()
		enumVisit = func(hwnd uintptr) bool { return yield(Handle(hwnd)) }
		defer func() { enumVisit = nil }()
		_, _, _ = procEnumWindows.Call(enumProc, 0)
	}
}

func (win32Desktop) ProcessID(h Handle) int {
	return int(windowPID(uintptr(h)))
}

func (win32Desktop) IsVisible(h Handle) bool {
	r1, _, _ := procIsWindowVisible.Call(uintptr(h))
	return r1 != 0
}

func (win32Desktop) IsChild(h Handle) bool {
	style, _, _ := procGetWindowLongPtrW.Call(uintptr(h), gwlStyle())
	return style&WS_CHILD != 0
}

func (win32Desktop) ClassName(h Handle) string {
	buf := make([]uint16, 256)
	r1, _, _ := procGetClassNameW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r1 == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:r1])
}

func (win32Desktop) Title(h Handle) string {
	r1, _, _ := procGetWindowTextLengthW.Call(uintptr(h))
	n := int(r1)
	if n <= 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	r2, _, _ := procGetWindowTextW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r2 == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:r2])
}

func (win32Desktop) WindowRect(h Handle) (Rect, error) {
	var r RECT
	r1, _, e1 := procGetWindowRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r)))
	if r1 == 0 {
		return Rect{}, lastError(e1)
	}
	return Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}, nil
}

func (win32Desktop) ClientRect(h Handle) (Rect, error) {
	var r RECT
	r1, _, e1 := procGetClientRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r)))
	if r1 == 0 {
		return Rect{}, lastError(e1)
	}
	return Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}, nil
}

func (win32Desktop) PrimaryScreen() Size {
	cx, _, _ := procGetSystemMetrics.Call(SM_CXSCREEN)
	cy, _, _ := procGetSystemMetrics.Call(SM_CYSCREEN)
	return Size{Width: int(int32(cx)), Height: int(int32(cy))}
}

func (win32Desktop) Show(h Handle) error {
	if !isWindow(h) {
		return ErrInvalidHandle
	}
	_, _, _ = procShowWindow.Call(uintptr(h), SW_SHOW)
	return nil
}

func (win32Desktop) Hide(h Handle) error {
	if !isWindow(h) {
		return ErrInvalidHandle
	}
	_, _, _ = procShowWindow.Call(uintptr(h), SW_HIDE)
	return nil
}

func (win32Desktop) MakeChild(h Handle) error {
	if !isWindow(h) {
		return ErrInvalidHandle
	}
	style, _, _ := procGetWindowLongPtrW.Call(uintptr(h), gwlStyle())
	style = style&^decorationBits | WS_CHILD
	// SetWindowLongPtr returns the previous value, which may legitimately be 0,
	// so failure is only told apart by a last error set by this call.
	_, _, _ = procSetLastError.Call(0)
	r1, _, e1 := procSetWindowLongPtrW.Call(uintptr(h), gwlStyle(), style)
	if r1 == 0 {
		return lastError(e1)
	}
	return nil
}

func (win32Desktop) SetParent(child, parent Handle) error {
	if !isWindow(child) || !isWindow(parent) {
		return ErrInvalidHandle
	}
	r1, _, e1 := procSetParent.Call(uintptr(child), uintptr(parent))
	if r1 == 0 {
		return lastError(e1)
	}
	return nil
}

func (win32Desktop) SetBounds(h Handle, b Rect) error {
	return setWindowPos(h, b.Left, b.Top, b.Width(), b.Height(), SWP_NOZORDER|SWP_NOACTIVATE|SWP_FRAMECHANGED)
}

func (win32Desktop) SetSize(h Handle, width, height int) error {
	return setWindowPos(h, 0, 0, width, height, SWP_NOMOVE|SWP_NOZORDER|SWP_NOACTIVATE)
}

func (win32Desktop) Foreground(h Handle) error {
	if !isWindow(h) {
		return ErrInvalidHandle
	}
	target := uintptr(h)
	style, _, _ := procGetWindowLongPtrW.Call(target, gwlStyle())
	if style&WS_CHILD != 0 {
		// The root is the host window; its visibility belongs to the host.
		root, _, _ := procGetAncestor.Call(target, GA_ROOT)
		if visible, _, _ := procIsWindowVisible.Call(root); root != 0 && visible != 0 {
			_, _, _ = procSetForegroundWindow.Call(root)
		}
		return focusChild(target)
	}
	_, _, _ = procShowWindow.Call(target, SW_SHOW)
	r1, _, e1 := procSetForegroundWindow.Call(target)
	if r1 == 0 {
		return lastError(e1)
	}
	return nil
}

func (win32Desktop) Close(h Handle) error {
	if !isWindow(h) {
		return ErrInvalidHandle
	}
	r1, _, e1 := procPostMessageW.Call(uintptr(h), WM_CLOSE, 0, 0)
	if r1 == 0 {
		return lastError(e1)
	}
	return nil
}

// focusChild gives keyboard focus to a window owned by another thread by
// temporarily sharing its input queue.
func focusChild(hwnd uintptr) error {
	var pid uint32
	target, _, _ := procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	self := uintptr(windows.GetCurrentThreadId())
	if target != 0 && target != self {
		_, _, _ = procAttachThreadInput.Call(self, target, 1)
		defer procAttachThreadInput.Call(self, target, 0)
	}
	r1, _, e1 := procSetFocus.Call(hwnd)
	if r1 == 0 {
		return lastError(e1)
	}
	return nil
}

func setWindowPos(h Handle, x, y int32, width, height int, flags uintptr) error {
	if !isWindow(h) {
		return ErrInvalidHandle
	}
	r1, _, e1 := procSetWindowPos.Call(uintptr(h), 0,
		uintptr(x), uintptr(y), uintptr(width), uintptr(height), flags)
	if r1 == 0 {
		return lastError(e1)
	}
	return nil
}

func windowPID(hwnd uintptr) uint32 {
	var pid uint32
	_, _, _ = procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	return pid
}

func isWindow(h Handle) bool {
	if h == NoWindow {
		return false
	}
	r1, _, _ := procIsWindow.Call(uintptr(h))
	return r1 != 0
}

func gwlStyle() uintptr {
	idx := int32(GWL_STYLE)
	return uintptr(idx)
}

// lastError turns the errno captured by LazyProc.Call into an error,
// treating ERROR_SUCCESS as nil.
func lastError(e error) error {
	if errno, ok := e.(syscall.Errno); ok && errno == 0 {
		return nil
	}
	return e
}
