// Package sessiontest provides a fake guest process.
package sessiontest

import (
	"sync"
	"sync/atomic"
	"time"
)

// Process is a guest process that runs until Exit or Kill is called.
type Process struct {
	pid    int
	exited chan struct{}
	once   sync.Once
	kills  atomic.Int32
}

func NewProcess(pid int) *Process {
	return &Process{pid: pid, exited: make(chan struct{})}
}

func (p *Process) PID() int { return p.pid }

func (p *Process) Alive() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// Exit simulates the guest quitting on its own.
func (p *Process) Exit() { p.once.Do(func() { close(p.exited) }) }

func (p *Process) Wait(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-p.exited:
		return true
	case <-t.C:
		return false
	}
}

func (p *Process) Kill() error {
	p.kills.Add(1)
	p.Exit()
	return nil
}

// Kills counts Kill calls.
func (p *Process) Kills() int { return int(p.kills.Load()) }
