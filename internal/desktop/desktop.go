package desktop

import (
	"errors"
	"iter"
)

// Handle is an opaque OS window reference. It is never owned by this
// program: the window belongs to whichever process created it.
type Handle uintptr

const NoWindow Handle = 0

// Window classes that never count as a guest's primary window.
const (
	ConsoleWindowClass = "ConsoleWindowClass"
	IMEWindowClass     = "IME"
)

// DefaultExcludedClasses is the exclusion set used when discovering a guest window.
func DefaultExcludedClasses() []string {
	return []string{ConsoleWindowClass, IMEWindowClass}
}

var (
	ErrNotSupported  = errors.New("desktop: not supported on this platform")
	ErrInvalidHandle = errors.New("desktop: invalid window handle")
)

type Rect struct {
	Left   int32 `json:"left"`
	Top    int32 `json:"top"`
	Right  int32 `json:"right"`
	Bottom int32 `json:"bottom"`
}

func (r Rect) Width() int  { return int(r.Right - r.Left) }
func (r Rect) Height() int { return int(r.Bottom - r.Top) }
func (r Rect) Size() Size  { return Size{Width: r.Width(), Height: r.Height()} }

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Registry answers questions about the windows that currently exist.
// All methods are side-effect free.
type Registry interface {
	// TopLevelWindows visits top-level windows in OS enumeration order.
	// The sequence is lazy and restartable; breaking out of the range loop
	// stops the enumeration. Sequences must not be nested.
	TopLevelWindows() iter.Seq[Handle]
	ProcessID(h Handle) int
	IsVisible(h Handle) bool
	// IsChild reports whether the window carries the child style bit.
	IsChild(h Handle) bool
	ClassName(h Handle) string
	Title(h Handle) string
	// WindowRect is in screen coordinates for top-level windows and
	// parent-relative for embedded children.
	WindowRect(h Handle) (Rect, error)
	ClientRect(h Handle) (Rect, error)
	PrimaryScreen() Size
}

// Mutator changes window state. Calls other than Close must be serialized
// on the UI context.
type Mutator interface {
	Show(h Handle) error
	Hide(h Handle) error
	// MakeChild strips caption, frame, system menu and minimize/maximize
	// bits and sets the child style. There is no inverse.
	MakeChild(h Handle) error
	SetParent(child, parent Handle) error
	// SetBounds positions and sizes the window; coordinates are
	// parent-relative for children.
	SetBounds(h Handle, bounds Rect) error
	// SetSize resizes the window in place.
	SetSize(h Handle, width, height int) error
	// Foreground requests input focus for the window. For an embedded
	// child the root window is only brought forward if already visible.
	Foreground(h Handle) error
	// Close asks the owning process to close the window. It only posts a
	// message and may be called from any goroutine.
	Close(h Handle) error
}

type Desktop interface {
	Registry
	Mutator
}

// Bounds returns the rect anchored at the origin with the given size.
func Bounds(s Size) Rect {
	return Rect{Right: int32(s.Width), Bottom: int32(s.Height)}
}
