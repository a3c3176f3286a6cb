//go:build !windows

package events

import "github.com/rs/zerolog"

func newWindowsSources(func(SystemEvent), <-chan struct{}, zerolog.Logger) (source, error) {
	return nil, ErrNotSupported
}
