package rhachis

// Event is something the platform observed since the last poll.
type Event interface {
	isEvent()
}

type Action int

const (
	ActionPress Action = iota
	ActionRelease
)

type ResizeEvent struct {
	Width, Height int
}

type KeyEvent struct {
	Key    Key
	Action Action
}

type MouseButtonEvent struct {
	Button MouseButton
	Action Action
}

// CursorEvent is an absolute cursor position in window coordinates.
type CursorEvent struct {
	X, Y float64
}

type CharEvent struct {
	Char rune
}

type CloseEvent struct{}

func (ResizeEvent) isEvent()      {}
func (KeyEvent) isEvent()         {}
func (MouseButtonEvent) isEvent() {}
func (CursorEvent) isEvent()      {}
func (CharEvent) isEvent()        {}
func (CloseEvent) isEvent()       {}
