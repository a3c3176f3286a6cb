//go:build !windows

package desktop

import "iter"

type unsupported struct{}

// New returns a desktop that reports no windows and rejects every mutation.
func New() Desktop { return unsupported{} }

func (unsupported) TopLevelWindows() iter.Seq[Handle] {
	return func(func(Handle) bool) {}
}

func (unsupported) ProcessID(Handle) int                { return 0 }
func (unsupported) IsVisible(Handle) bool               { return false }
func (unsupported) IsChild(Handle) bool                 { return false }
func (unsupported) ClassName(Handle) string             { return "" }
func (unsupported) Title(Handle) string                 { return "" }
func (unsupported) WindowRect(Handle) (Rect, error)     { return Rect{}, ErrNotSupported }
func (unsupported) ClientRect(Handle) (Rect, error)     { return Rect{}, ErrNotSupported }
func (unsupported) PrimaryScreen() Size                 { return Size{} }
func (unsupported) Show(Handle) error                   { return ErrNotSupported }
func (unsupported) Hide(Handle) error                   { return ErrNotSupported }
func (unsupported) MakeChild(Handle) error              { return ErrNotSupported }
func (unsupported) SetParent(Handle, Handle) error      { return ErrNotSupported }
func (unsupported) SetBounds(Handle, Rect) error        { return ErrNotSupported }
func (unsupported) SetSize(Handle, int, int) error      { return ErrNotSupported }
func (unsupported) Foreground(Handle) error             { return ErrNotSupported }
func (unsupported) Close(Handle) error                  { return ErrNotSupported }
