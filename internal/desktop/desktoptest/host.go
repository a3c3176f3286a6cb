package desktoptest

import (
	"sync"

	"EmuDock/internal/desktop"
)

// HostPID is the process id given to fake host windows.
const HostPID = 1

// Host is a fake launcher window living in a fake Desktop.
type Host struct {
	d *Desktop
	h desktop.Handle

	mu        sync.Mutex
	minimised bool
	events    []string
}

// NewHost registers a host window of the given outer size. chrome is the
// difference between the outer size and the client area.
func NewHost(d *Desktop, h desktop.Handle, size, chrome desktop.Size, visible bool) *Host {
	d.Add(h, Window{
		PID:     HostPID,
		Class:   "wailsWindow",
		Title:   "host",
		Visible: visible,
		Rect:    desktop.Bounds(size),
		Chrome:  chrome,
	})
	return &Host{d: d, h: h}
}

func (f *Host) Handle() desktop.Handle { return f.h }

func (f *Host) SetSize(width, height int) {
	f.record("SetSize")
	f.d.Update(f.h, func(w *Window) {
		w.Rect.Right = w.Rect.Left + int32(width)
		w.Rect.Bottom = w.Rect.Top + int32(height)
	})
}

func (f *Host) Size() desktop.Size {
	w, _ := f.d.Window(f.h)
	return w.Rect.Size()
}

func (f *Host) ClientSize() desktop.Size {
	r, _ := f.d.ClientRect(f.h)
	return r.Size()
}

func (f *Host) Visible() bool { return f.d.IsVisible(f.h) }

func (f *Host) Minimised() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minimised
}

func (f *Host) Show() {
	f.record("Show")
	f.d.Update(f.h, func(w *Window) { w.Visible = true })
}

func (f *Host) Hide() {
	f.record("Hide")
	f.d.Update(f.h, func(w *Window) { w.Visible = false })
}

func (f *Host) Minimise() {
	f.record("Minimise")
	f.mu.Lock()
	f.minimised = true
	f.mu.Unlock()
}

func (f *Host) Restore() {
	f.record("Restore")
	f.mu.Lock()
	f.minimised = false
	f.mu.Unlock()
}

func (f *Host) Activate() { f.record("Activate") }

// Events returns the host operations in call order.
func (f *Host) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func (f *Host) record(ev string) {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
}
