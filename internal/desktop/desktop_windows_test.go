//go:build windows

package desktop

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

var (
	procCreateWindowExW = u32.NewProc("CreateWindowExW")
	procDestroyWindow   = u32.NewProc("DestroyWindow")
)

func newStaticWindow(t *testing.T) Handle {
	t.Helper()
	class, err := windows.UTF16PtrFromString("STATIC")
	require.NoError(t, err)
	hwnd, _, e1 := procCreateWindowExW.Call(0, uintptr(unsafe.Pointer(class)), 0,
		WS_POPUP, 0, 0, 64, 64, 0, 0, 0, 0)
	require.NotZero(t, hwnd, "CreateWindowExW: %v", e1)
	t.Cleanup(func() { _, _, _ = procDestroyWindow.Call(hwnd) })
	return Handle(hwnd)
}

func TestMakeChildIgnoresStaleLastError(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	h := newStaticWindow(t)
	// A zero previous style makes SetWindowLongPtr return 0 on success.
	_, _, _ = procSetWindowLongPtrW.Call(uintptr(h), gwlStyle(), 0)
	_, _, _ = procSetLastError.Call(uintptr(windows.ERROR_ACCESS_DENIED))

	require.NoError(t, New().MakeChild(h))
	style, _, _ := procGetWindowLongPtrW.Call(uintptr(h), gwlStyle())
	assert.NotZero(t, style&WS_CHILD)
}

func TestMakeChildRejectsDeadWindow(t *testing.T) {
	assert.ErrorIs(t, New().MakeChild(NoWindow), ErrInvalidHandle)
}
