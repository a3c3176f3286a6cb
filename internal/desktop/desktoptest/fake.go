// Package desktoptest provides an in-memory desktop for tests.
package desktoptest

import (
	"fmt"
	"iter"
	"sync"

	"EmuDock/internal/desktop"
)

type Window struct {
	PID     int
	Class   string
	Title   string
	Visible bool
	Child   bool
	Parent  desktop.Handle
	Rect    desktop.Rect
	// Chrome is subtracted from Rect to produce the client area.
	Chrome desktop.Size
}

type Call struct {
	Op     string
	Handle desktop.Handle
	Arg    any
}

func (c Call) String() string {
	if c.Arg == nil {
		return fmt.Sprintf("%s(%d)", c.Op, c.Handle)
	}
	return fmt.Sprintf("%s(%d, %v)", c.Op, c.Handle, c.Arg)
}

// Desktop is a fake window registry. Windows with a parent are not top-level
// and are skipped by TopLevelWindows, as on a real desktop.
type Desktop struct {
	mu     sync.Mutex
	order  []desktop.Handle
	wins   map[desktop.Handle]*Window
	fail   map[string]error
	calls  []Call
	enums  int
	screen desktop.Size
}

func New() *Desktop {
	return &Desktop{
		wins:   map[desktop.Handle]*Window{},
		fail:   map[string]error{},
		screen: desktop.Size{Width: 1920, Height: 1080},
	}
}

func (d *Desktop) SetScreen(s desktop.Size) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screen = s
}

func (d *Desktop) Add(h desktop.Handle, w Window) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.wins[h]; !ok {
		d.order = append(d.order, h)
	}
	cp := w
	d.wins[h] = &cp
}

func (d *Desktop) Remove(h desktop.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.wins, h)
	for i, o := range d.order {
		if o == h {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

func (d *Desktop) Update(h desktop.Handle, fn func(w *Window)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if w, ok := d.wins[h]; ok {
		fn(w)
	}
}

func (d *Desktop) Window(h desktop.Handle) (Window, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.wins[h]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// FailOn makes every later call of op return err. A nil err clears it.
func (d *Desktop) FailOn(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.fail, op)
		return
	}
	d.fail[op] = err
}

func (d *Desktop) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Ops returns the recorded mutation names in call order.
func (d *Desktop) Ops() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.calls))
	for _, c := range d.calls {
		out = append(out, c.Op)
	}
	return out
}

// Enumerations counts started TopLevelWindows sequences.
func (d *Desktop) Enumerations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enums
}

func (d *Desktop) TopLevelWindows() iter.Seq[desktop.Handle] {
	return func(yield func(desktop.Handle) bool) {
		d.mu.Lock()
		d.enums++
		var snapshot []desktop.Handle
		for _, h := range d.order {
			if d.wins[h].Parent == desktop.NoWindow {
				snapshot = append(snapshot, h)
			}
		}
		d.mu.Unlock()
		for _, h := range snapshot {
			if !yield(h) {
				return
			}
		}
	}
}

func (d *Desktop) ProcessID(h desktop.Handle) int {
	w, _ := d.Window(h)
	return w.PID
}

func (d *Desktop) IsVisible(h desktop.Handle) bool {
	w, _ := d.Window(h)
	return w.Visible
}

func (d *Desktop) IsChild(h desktop.Handle) bool {
	w, _ := d.Window(h)
	return w.Child
}

func (d *Desktop) ClassName(h desktop.Handle) string {
	w, _ := d.Window(h)
	return w.Class
}

func (d *Desktop) Title(h desktop.Handle) string {
	w, _ := d.Window(h)
	return w.Title
}

func (d *Desktop) WindowRect(h desktop.Handle) (desktop.Rect, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail["WindowRect"]; err != nil {
		return desktop.Rect{}, err
	}
	w, ok := d.wins[h]
	if !ok {
		return desktop.Rect{}, desktop.ErrInvalidHandle
	}
	return w.Rect, nil
}

func (d *Desktop) ClientRect(h desktop.Handle) (desktop.Rect, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.wins[h]
	if !ok {
		return desktop.Rect{}, desktop.ErrInvalidHandle
	}
	return desktop.Rect{
		Right:  int32(w.Rect.Width() - w.Chrome.Width),
		Bottom: int32(w.Rect.Height() - w.Chrome.Height),
	}, nil
}

func (d *Desktop) PrimaryScreen() desktop.Size {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.screen
}

func (d *Desktop) Show(h desktop.Handle) error {
	return d.mutate("Show", h, nil, func(w *Window) { w.Visible = true })
}

func (d *Desktop) Hide(h desktop.Handle) error {
	return d.mutate("Hide", h, nil, func(w *Window) { w.Visible = false })
}

func (d *Desktop) MakeChild(h desktop.Handle) error {
	return d.mutate("MakeChild", h, nil, func(w *Window) { w.Child = true })
}

func (d *Desktop) SetParent(child, parent desktop.Handle) error {
	return d.mutate("SetParent", child, parent, func(w *Window) { w.Parent = parent })
}

func (d *Desktop) SetBounds(h desktop.Handle, b desktop.Rect) error {
	return d.mutate("SetBounds", h, b, func(w *Window) { w.Rect = b })
}

func (d *Desktop) SetSize(h desktop.Handle, width, height int) error {
	return d.mutate("SetSize", h, desktop.Size{Width: width, Height: height}, func(w *Window) {
		w.Rect.Right = w.Rect.Left + int32(width)
		w.Rect.Bottom = w.Rect.Top + int32(height)
	})
}

// Foreground shows a top-level target, as the real call does. Children and
// their parents keep their visibility.
func (d *Desktop) Foreground(h desktop.Handle) error {
	return d.mutate("Foreground", h, nil, func(w *Window) {
		if !w.Child && w.Parent == desktop.NoWindow {
			w.Visible = true
		}
	})
}

func (d *Desktop) Close(h desktop.Handle) error {
	return d.mutate("Close", h, nil, func(*Window) {})
}

func (d *Desktop) mutate(op string, h desktop.Handle, arg any, apply func(w *Window)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Op: op, Handle: h, Arg: arg})
	if err := d.fail[op]; err != nil {
		return err
	}
	w, ok := d.wins[h]
	if !ok {
		return desktop.ErrInvalidHandle
	}
	apply(w)
	return nil
}
