//go:build windows

package launcher

import (
	"fmt"

	"github.com/StackExchange/wmi"
)

// Description is what WMI knows about a running process.
type Description struct {
	PID            int
	Name           string
	ExecutablePath string
	CommandLine    string
}

// Describe looks the process up in Win32_Process. Used for diagnostics
// once the guest is running.
func Describe(pid int) (Description, error) {
	type Win32_Process struct {
		ProcessID      uint32
		Name           string
		ExecutablePath *string
		CommandLine    *string
	}
	var dst []Win32_Process
	q := fmt.Sprintf("WHERE ProcessID=%d", pid)
	if err := wmi.Query("SELECT ProcessID, Name, ExecutablePath, CommandLine FROM Win32_Process "+q, &dst); err != nil {
		return Description{}, fmt.Errorf("wmi query pid %d: %w", pid, err)
	}
	if len(dst) == 0 {
		return Description{}, fmt.Errorf("wmi: no process with pid %d", pid)
	}
	p := dst[0]
	d := Description{PID: int(p.ProcessID), Name: p.Name}
	if p.ExecutablePath != nil {
		d.ExecutablePath = *p.ExecutablePath
	}
	if p.CommandLine != nil {
		d.CommandLine = *p.CommandLine
	}
	return d, nil
}
