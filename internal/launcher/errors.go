package launcher

import (
	"errors"
	"fmt"
)

var (
	ErrExecutableMissing = errors.New("emulator executable not found")
	ErrMediaMissing      = errors.New("game image not found")
	ErrBIOSMissing       = errors.New("BIOS file not found")
	ErrSpawn             = errors.New("failed to start emulator")
)

// LaunchError is fatal to the session. Reason is one of the sentinels above.
type LaunchError struct {
	Path   string
	Reason error
	Err    error
}

func (e *LaunchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Reason, e.Path)
}

func (e *LaunchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}
