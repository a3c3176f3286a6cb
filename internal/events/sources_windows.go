//go:build windows

package events

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type windowsSources struct {
	emit   func(SystemEvent)
	stopCh <-chan struct{}
	log    zerolog.Logger

	wg sync.WaitGroup
}

func newWindowsSources(emit func(SystemEvent), stopCh <-chan struct{}, log zerolog.Logger) (*windowsSources, error) {
	return &windowsSources{emit: emit, stopCh: stopCh, log: log}, nil
}

func (w *windowsSources) start() error {
	hook := newWinEventHook(w.emit, os.Getpid(), w.log)

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		if err := hook.Run(w.stopCh); err != nil {
			w.log.Warn().Err(err).Msg("window event hook unavailable")
		}
	}()
	go func() {
		defer w.wg.Done()
		if err := runProcessStopWatcher(w.emit, w.stopCh); err != nil {
			w.log.Warn().Err(err).Msg("wmi process watcher unavailable, relying on polling")
		}
	}()
	return nil
}

func (w *windowsSources) wait() { w.wg.Wait() }
