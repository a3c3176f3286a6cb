package host

import (
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"EmuDock/internal/desktop"
	"EmuDock/internal/desktop/desktoptest"
)

type fakeShell struct {
	calls         []string
	width, height int
}

func (f *fakeShell) Show()       { f.calls = append(f.calls, "Show") }
func (f *fakeShell) Hide()       { f.calls = append(f.calls, "Hide") }
func (f *fakeShell) Minimise()   { f.calls = append(f.calls, "Minimise") }
func (f *fakeShell) Unminimise() { f.calls = append(f.calls, "Unminimise") }
func (f *fakeShell) SetSize(width, height int) {
	f.calls = append(f.calls, "SetSize")
	f.width, f.height = width, height
}
func (f *fakeShell) Size() (int, int) { return f.width, f.height }

const title = "EmuDock"

func TestWindowUsesNativeHandleWhenResolved(t *testing.T) {
	d := desktoptest.New()
	d.Add(7, desktoptest.Window{
		PID: os.Getpid(), Title: title,
		Rect:   desktop.Rect{Right: 960, Bottom: 720},
		Chrome: desktop.Size{Width: 16, Height: 39},
	})
	shell := &fakeShell{width: 960, height: 720}
	w := New(shell, d, title, zerolog.Nop())

	assert.Equal(t, desktop.Handle(7), w.Handle())

	w.SetSize(800, 600)
	assert.Equal(t, desktop.Size{Width: 784, Height: 561}, w.ClientSize())
	assert.NotContains(t, shell.calls, "SetSize")

	w.Show()
	d.Update(7, func(win *desktoptest.Window) { win.Visible = true })
	assert.True(t, w.Visible())

	w.Activate()
	assert.Contains(t, d.Ops(), "Foreground")
}

func TestWindowFallsBackToShell(t *testing.T) {
	d := desktoptest.New()
	shell := &fakeShell{width: 960, height: 720}
	w := New(shell, d, title, zerolog.Nop())

	assert.Equal(t, desktop.NoWindow, w.Handle())
	w.SetSize(640, 480)
	assert.Equal(t, desktop.Size{Width: 640, Height: 480}, w.ClientSize())

	assert.False(t, w.Visible())
	w.Show()
	assert.True(t, w.Visible())
	w.Minimise()
	w.Restore()
	w.Hide()
	assert.False(t, w.Visible())
	assert.Equal(t, []string{"SetSize", "Show", "Minimise", "Unminimise", "Hide"}, shell.calls)
}

func TestNativeResizeFailureUsesShell(t *testing.T) {
	d := desktoptest.New()
	d.Add(7, desktoptest.Window{PID: os.Getpid(), Title: title})
	d.FailOn("SetSize", errors.New("denied"))
	shell := &fakeShell{}
	w := New(shell, d, title, zerolog.Nop())

	w.SetSize(1024, 768)
	assert.Equal(t, []string{"SetSize"}, shell.calls)
}
