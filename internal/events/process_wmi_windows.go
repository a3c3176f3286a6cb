//go:build windows

package events

import (
	"fmt"
	"runtime"
	"time"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// runProcessStopWatcher emits EventProcessExited for every process that
// stops until stopCh is closed. It returns early if WMI is unavailable.
func runProcessStopWatcher(emit func(SystemEvent), stopCh <-chan struct{}) error {
	return wmiTraceLoop("Win32_ProcessStopTrace", func(pid int, name string) {
		emit(SystemEvent{
			Type:      EventProcessExited,
			Timestamp: time.Now().UTC().UnixMilli(),
			PID:       pid,
			Metadata: map[string]any{
				"name": name,
			},
		})
	}, stopCh)
}

func wmiTraceLoop(className string, onEvent func(pid int, name string), stopCh <-chan struct{}) error {
	// COM apartments are per thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	_ = ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED)
	defer ole.CoUninitialize()

	locatorObj, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return fmt.Errorf("create wbem locator: %w", err)
	}
	defer locatorObj.Release()

	locator, err := locatorObj.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("query wbem locator: %w", err)
	}
	defer locator.Release()

	svcRaw, err := oleutil.CallMethod(locator, "ConnectServer", nil, "root\\cimv2")
	if err != nil {
		return fmt.Errorf("connect root\\cimv2: %w", err)
	}
	svc := svcRaw.ToIDispatch()
	defer svc.Release()

	query := fmt.Sprintf("SELECT * FROM %s", className)
	srcRaw, err := oleutil.CallMethod(svc, "ExecNotificationQuery", query)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", className, err)
	}
	src := srcRaw.ToIDispatch()
	defer src.Release()

	for {
		select {
		case <-stopCh:
			return nil
		default:
		}
		// NextEvent times out after a second so stopCh is honoured.
		evRaw, err := oleutil.CallMethod(src, "NextEvent", 1000)
		if err != nil {
			continue
		}
		ev := evRaw.ToIDispatch()
		if ev == nil {
			continue
		}
		pidV, _ := oleutil.GetProperty(ev, "ProcessID")
		nameV, _ := oleutil.GetProperty(ev, "ProcessName")
		pid := 0
		if pidV != nil {
			pid = int(pidV.Val)
		}
		name := ""
		if nameV != nil {
			name = nameV.ToString()
		}
		if pid > 0 {
			onEvent(pid, name)
		}
		ev.Release()
	}
}
