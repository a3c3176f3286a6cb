// Package uithread serializes window mutations onto one OS thread.
package uithread

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

var ErrStopped = errors.New("ui dispatcher stopped")

const queueSize = 64

// Dispatcher runs queued calls one at a time on a single locked OS thread.
// Calls never overlap, so state touched only from dispatched calls needs no lock.
type Dispatcher struct {
	calls chan func()
	done  chan struct{}
	once  sync.Once
	log   zerolog.Logger
}

func New(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		calls: make(chan func(), queueSize),
		done:  make(chan struct{}),
		log:   log,
	}
}

// Run executes calls until ctx is done. It must be started exactly once.
func (d *Dispatcher) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer d.once.Do(func() { close(d.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-d.calls:
			d.exec(fn)
		}
	}
}

// Done is closed once Run has returned.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

// Invoke runs fn on the UI thread and waits for it to finish. It must not be
// called from a dispatched call. If ctx ends first, fn may still run later.
func (d *Dispatcher) Invoke(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	call := func() {
		defer close(finished)
		fn()
	}
	select {
	case d.calls <- call:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrStopped
	}
}

// Post queues fn without waiting for it. It blocks only while the queue is full.
func (d *Dispatcher) Post(fn func()) {
	select {
	case d.calls <- fn:
	case <-d.done:
	}
}

func (d *Dispatcher) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Msg("ui call panicked")
		}
	}()
	fn()
}
