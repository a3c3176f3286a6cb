package locator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"EmuDock/internal/desktop"
)

// ErrNotFound is returned by Discover when the attempt budget runs out.
var ErrNotFound = errors.New("no window found for process")

// Find returns the first visible top-level window owned by pid whose class
// is not excluded. It enumerates the registry once and has no side effects.
func Find(reg desktop.Registry, pid int, excluded []string) desktop.Handle {
	for h := range reg.TopLevelWindows() {
		if reg.ProcessID(h) != pid || !reg.IsVisible(h) {
			continue
		}
		if isExcluded(reg.ClassName(h), excluded) {
			continue
		}
		return h
	}
	return desktop.NoWindow
}

func isExcluded(class string, excluded []string) bool {
	for _, c := range excluded {
		if strings.EqualFold(class, c) {
			return true
		}
	}
	return false
}

// Discover calls Find up to attempts times, interval apart. It gives up
// early when ctx is done or alive reports the process gone. The returned
// count is the number of Find calls made.
func Discover(ctx context.Context, reg desktop.Registry, pid int, excluded []string,
	attempts int, interval time.Duration, alive func() bool, log zerolog.Logger) (desktop.Handle, int, error) {
	if attempts <= 0 {
		attempts = 1
	}
	tries := 0
	op := func() (desktop.Handle, error) {
		tries++
		if alive != nil && !alive() {
			return desktop.NoWindow, backoff.Permanent(errProcessGone)
		}
		if h := Find(reg, pid, excluded); h != desktop.NoWindow {
			return h, nil
		}
		return desktop.NoWindow, ErrNotFound
	}
	notify := func(err error, next time.Duration) {
		log.Debug().Int("pid", pid).Int("attempt", tries).Dur("retry_in", next).Msg("guest window not found yet")
	}

	h, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return desktop.NoWindow, tries, ctxErr
		}
		if errors.Is(err, errProcessGone) {
			return desktop.NoWindow, tries, err
		}
		return desktop.NoWindow, tries, ErrNotFound
	}
	return h, tries, nil
}

var errProcessGone = errors.New("process exited during window discovery")

// ProcessGone reports whether err means the process exited before a
// window appeared.
func ProcessGone(err error) bool { return errors.Is(err, errProcessGone) }

// FindByTitle returns the first top-level window of pid with the given
// title, visible or not.
func FindByTitle(reg desktop.Registry, pid int, title string) desktop.Handle {
	for h := range reg.TopLevelWindows() {
		if reg.ProcessID(h) == pid && reg.Title(h) == title {
			return h
		}
	}
	return desktop.NoWindow
}

// FindFullscreen returns a visible non-child top-level window of pid, other
// than skip, that covers the primary screen within tolerance pixels.
func FindFullscreen(reg desktop.Registry, pid int, skip desktop.Handle, tolerance int) desktop.Handle {
	screen := reg.PrimaryScreen()
	if screen.Width <= 0 || screen.Height <= 0 {
		return desktop.NoWindow
	}
	for h := range reg.TopLevelWindows() {
		if h == skip || reg.ProcessID(h) != pid {
			continue
		}
		if !reg.IsVisible(h) || reg.IsChild(h) {
			continue
		}
		r, err := reg.WindowRect(h)
		if err != nil {
			continue
		}
		if r.Width() >= screen.Width-tolerance && r.Height() >= screen.Height-tolerance {
			return h
		}
	}
	return desktop.NoWindow
}
