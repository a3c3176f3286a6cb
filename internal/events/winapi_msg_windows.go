//go:build windows

package events

import (
	"time"
	"unsafe"
)

const (
	pmRemove  = 0x0001
	pumpSleep = 10 * time.Millisecond
)

type point struct {
	X, Y int32
}

// msg mirrors the Win32 MSG structure.
type msg struct {
	HWnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

var (
	procPeekMessageW     = user32.NewProc("PeekMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
)

// pumpMessages drains the calling thread's message queue until stopCh is
// closed. Hook callbacks installed on this thread run from inside it.
func pumpMessages(stopCh <-chan struct{}) {
	var m msg
	for {
		select {
		case <-stopCh:
			return
		default:
		}
		r1, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if r1 == 0 {
			time.Sleep(pumpSleep)
			continue
		}
		_, _, _ = procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		_, _, _ = procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}
