package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Process is a running guest started by Launch.
type Process struct {
	cmd  *exec.Cmd
	pid  int
	done chan struct{}

	mu      sync.Mutex
	exitErr error
}

// Launch checks that every referenced file exists, prepares the portable
// settings file and starts the emulator with its working directory set to
// the executable's directory. There are no retries.
func Launch(r Request, log zerolog.Logger) (*Process, error) {
	if err := requireFile(r.Executable, ErrExecutableMissing); err != nil {
		return nil, err
	}
	if err := requireFile(r.Media, ErrMediaMissing); err != nil {
		return nil, err
	}
	if r.BIOS != "" {
		if err := requireFile(r.BIOS, ErrBIOSMissing); err != nil {
			return nil, err
		}
	}

	if r.Portable && r.BIOS != "" {
		if err := ensurePortableConfig(r); err != nil {
			log.Warn().Err(err).Msg("portable settings not updated, continuing")
		}
	}

	cmd := exec.Command(r.Executable, Arguments(r)...)
	cmd.Dir = filepath.Dir(r.Executable)
	configureSysProcAttr(cmd)

	log.Info().Str("cmd", CommandLine(r)).Str("dir", cmd.Dir).Msg("starting emulator")
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Path: r.Executable, Reason: ErrSpawn, Err: err}
	}

	p := &Process{cmd: cmd, pid: cmd.Process.Pid, done: make(chan struct{})}
	go p.wait()
	log.Info().Int("pid", p.pid).Msg("emulator started")
	return p, nil
}

func requireFile(path string, reason error) error {
	if path == "" {
		return &LaunchError{Path: path, Reason: reason}
	}
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &LaunchError{Path: path, Reason: reason}
		}
		return &LaunchError{Path: path, Reason: reason, Err: err}
	}
	if st.IsDir() {
		return &LaunchError{Path: path, Reason: reason, Err: fmt.Errorf("%s is a directory", path)}
	}
	return nil
}

func (p *Process) wait() {
	err := p.cmd.Wait()
	p.mu.Lock()
	p.exitErr = err
	p.mu.Unlock()
	close(p.done)
}

func (p *Process) PID() int { return p.pid }

// Done is closed once the process has exited and been reaped.
func (p *Process) Done() <-chan struct{} { return p.done }

func (p *Process) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// ExitErr is the result of waiting for the process; nil while it runs.
func (p *Process) ExitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

// Wait blocks until the process exits or timeout passes and reports
// whether it exited.
func (p *Process) Wait(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-p.done:
		return true
	case <-t.C:
		return false
	}
}

// Kill forcibly ends the process. Killing an exited process is not an error.
func (p *Process) Kill() error {
	if !p.Alive() {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill pid %d: %w", p.pid, err)
	}
	return nil
}
