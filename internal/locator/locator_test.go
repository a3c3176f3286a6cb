package locator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EmuDock/internal/desktop"
	"EmuDock/internal/desktop/desktoptest"
)

const guestPID = 4242

var excluded = desktop.DefaultExcludedClasses()

func TestFindSkipsOtherProcessesAndHiddenWindows(t *testing.T) {
	d := desktoptest.New()
	d.Add(10, desktoptest.Window{PID: 7, Class: "Qt", Visible: true})
	d.Add(11, desktoptest.Window{PID: guestPID, Class: "Qt", Visible: false})
	d.Add(12, desktoptest.Window{PID: guestPID, Class: "Qt", Visible: true})
	d.Add(13, desktoptest.Window{PID: guestPID, Class: "Qt", Visible: true})

	assert.Equal(t, desktop.Handle(12), Find(d, guestPID, excluded))
	assert.Equal(t, 1, d.Enumerations())
	assert.Empty(t, d.Calls())
}

func TestFindNeverReturnsExcludedClass(t *testing.T) {
	sets := [][]string{
		desktop.DefaultExcludedClasses(),
		{"ConsoleWindowClass"},
		{"consolewindowclass", "Qt"},
	}
	for _, set := range sets {
		d := desktoptest.New()
		d.Add(20, desktoptest.Window{PID: guestPID, Class: "ConsoleWindowClass", Visible: true})
		d.Add(21, desktoptest.Window{PID: guestPID, Class: "IME", Visible: true})
		for _, h := range []desktop.Handle{20, 21} {
			if isExcluded(d.ClassName(h), set) {
				assert.NotEqual(t, h, Find(d, guestPID, set), "set %v", set)
			}
		}
	}

	d := desktoptest.New()
	d.Add(20, desktoptest.Window{PID: guestPID, Class: "ConsoleWindowClass", Visible: true})
	assert.Equal(t, desktop.NoWindow, Find(d, guestPID, excluded))

	d.Add(22, desktoptest.Window{PID: guestPID, Class: "Qt5152QWindowIcon", Visible: true})
	assert.Equal(t, desktop.Handle(22), Find(d, guestPID, excluded))
}

func TestDiscoverStopsAfterAttemptBudget(t *testing.T) {
	d := desktoptest.New()
	d.Add(30, desktoptest.Window{PID: guestPID, Class: "ConsoleWindowClass", Visible: true})

	h, tries, err := Discover(context.Background(), d, guestPID, excluded, 20, time.Millisecond, nil, zerolog.Nop())
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, desktop.NoWindow, h)
	assert.Equal(t, 20, tries)
	assert.Equal(t, 20, d.Enumerations())
}

func TestDiscoverFindsLateWindow(t *testing.T) {
	d := desktoptest.New()
	go func() {
		time.Sleep(15 * time.Millisecond)
		d.Add(40, desktoptest.Window{PID: guestPID, Class: "Qt", Visible: true})
	}()

	h, tries, err := Discover(context.Background(), d, guestPID, excluded, 200, 5*time.Millisecond, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, desktop.Handle(40), h)
	assert.Greater(t, tries, 1)
}

func TestDiscoverHonoursCancellation(t *testing.T) {
	d := desktoptest.New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := Discover(ctx, d, guestPID, excluded, 1000, 5*time.Millisecond, nil, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDiscoverStopsWhenProcessGone(t *testing.T) {
	d := desktoptest.New()
	_, tries, err := Discover(context.Background(), d, guestPID, excluded, 20, time.Millisecond,
		func() bool { return false }, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, ProcessGone(err))
	assert.Equal(t, 1, tries)
	assert.Zero(t, d.Enumerations())
}

func TestFindFullscreen(t *testing.T) {
	d := desktoptest.New()
	d.SetScreen(desktop.Size{Width: 1920, Height: 1080})
	embedded := desktop.Handle(50)
	d.Add(embedded, desktoptest.Window{PID: guestPID, Class: "Qt", Visible: true, Child: true,
		Rect: desktop.Rect{Right: 1920, Bottom: 1080}})

	assert.Equal(t, desktop.NoWindow, FindFullscreen(d, guestPID, embedded, 50), "children never count")

	d.Add(51, desktoptest.Window{PID: guestPID, Class: "Qt", Visible: true,
		Rect: desktop.Rect{Left: 100, Top: 100, Right: 900, Bottom: 700}})
	assert.Equal(t, desktop.NoWindow, FindFullscreen(d, guestPID, embedded, 50))

	d.Add(52, desktoptest.Window{PID: guestPID, Class: "Qt", Visible: true,
		Rect: desktop.Rect{Right: 1880, Bottom: 1040}})
	assert.Equal(t, desktop.Handle(52), FindFullscreen(d, guestPID, embedded, 50), "within tolerance")
	assert.Equal(t, desktop.NoWindow, FindFullscreen(d, guestPID, embedded, 10), "outside tolerance")
	assert.Equal(t, desktop.NoWindow, FindFullscreen(d, guestPID, 52, 50), "skipped handle")
	assert.Equal(t, desktop.NoWindow, FindFullscreen(d, 99, embedded, 50), "other process")
}

func TestFindByTitle(t *testing.T) {
	d := desktoptest.New()
	d.Add(60, desktoptest.Window{PID: 1, Title: "EmuDock"})
	d.Add(61, desktoptest.Window{PID: 2, Title: "EmuDock", Visible: true})

	assert.Equal(t, desktop.Handle(60), FindByTitle(d, 1, "EmuDock"), "hidden windows count")
	assert.Equal(t, desktop.NoWindow, FindByTitle(d, 1, "Other"))
}
