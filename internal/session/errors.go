package session

import (
	"errors"
	"fmt"
)

var (
	// ErrDiscoveryTimeout means no guest window showed up within the
	// attempt budget. The guest keeps running unembedded.
	ErrDiscoveryTimeout = errors.New("guest window not found")
	// ErrProcessExited means the guest died while the session was running.
	ErrProcessExited = errors.New("guest process exited")
	ErrTerminated    = errors.New("session terminated")
	ErrEmbedStarted  = errors.New("embedding already attempted for this session")
)

// Steps of the embedding sequence, in order.
const (
	StepSnapshot = "snapshot"
	StepHide     = "hide"
	StepRestyle  = "restyle"
	StepReparent = "reparent"
	StepFill     = "fill"
	StepShow     = "show"
)

// EmbedStepError reports the OS call that rejected an embedding step. The
// guest window is left in whatever state the earlier steps produced.
type EmbedStepError struct {
	Step string
	Err  error
}

func (e *EmbedStepError) Error() string {
	return fmt.Sprintf("embed step %s: %v", e.Step, e.Err)
}

func (e *EmbedStepError) Unwrap() error { return e.Err }
