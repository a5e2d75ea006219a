package rhachis

type Key int

const (
	KeyUnknown Key = iota
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyInsert
	KeyDelete
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyMinus
	KeyEqual
	KeyKPPlus
	KeyKPMinus
	KeyShift
	KeyControl
	KeyLeftAlt

	keyCount
)

type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle

	mouseButtonCount
)

// InputState is where a key or button is in its press cycle. Pressed and
// Released each last exactly one frame.
type InputState int

const (
	Up InputState = iota
	Pressed
	Down
	Released
)

func (s InputState) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Down:
		return "down"
	case Released:
		return "released"
	}
	return "up"
}

// IsDown is true for Pressed and Down.
func (s InputState) IsDown() bool { return s == Pressed || s == Down }

func (s InputState) press() InputState {
	if s.IsDown() {
		return s
	}
	return Pressed
}

func (s InputState) release() InputState {
	if s.IsDown() {
		return Released
	}
	return s
}

func (s InputState) settle() InputState {
	switch s {
	case Pressed:
		return Down
	case Released:
		return Up
	}
	return s
}

// Input is the keyboard and mouse state for the current frame.
type Input struct {
	keys    [keyCount]InputState
	buttons [mouseButtonCount]InputState

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	// CharBuffer holds text typed during this frame.
	CharBuffer []rune

	seenCursor bool
}

func (in *Input) Key(k Key) InputState {
	if k < 0 || k >= keyCount {
		return Up
	}
	return in.keys[k]
}

func (in *Input) MouseButton(b MouseButton) InputState {
	if b < 0 || b >= mouseButtonCount {
		return Up
	}
	return in.buttons[b]
}

func (in *Input) MousePosition() (float64, float64) { return in.MouseX, in.MouseY }

// MouseMovement is the cursor travel accumulated over this frame.
func (in *Input) MouseMovement() (float64, float64) { return in.MouseDeltaX, in.MouseDeltaY }

// beginFrame ages last frame's transitions and clears per-frame data.
func (in *Input) beginFrame() {
	for i := range in.keys {
		in.keys[i] = in.keys[i].settle()
	}
	for i := range in.buttons {
		in.buttons[i] = in.buttons[i].settle()
	}
	in.MouseDeltaX, in.MouseDeltaY = 0, 0
	in.CharBuffer = in.CharBuffer[:0]
}

// apply folds one platform event into the current frame. It reports
// whether the event was an input event.
func (in *Input) apply(e Event) bool {
	switch e := e.(type) {
	case KeyEvent:
		if e.Key <= KeyUnknown || e.Key >= keyCount {
			return true
		}
		if e.Action == ActionPress {
			in.keys[e.Key] = in.keys[e.Key].press()
		} else {
			in.keys[e.Key] = in.keys[e.Key].release()
		}
	case MouseButtonEvent:
		if e.Button < 0 || e.Button >= mouseButtonCount {
			return true
		}
		if e.Action == ActionPress {
			in.buttons[e.Button] = in.buttons[e.Button].press()
		} else {
			in.buttons[e.Button] = in.buttons[e.Button].release()
		}
	case CursorEvent:
		if in.seenCursor {
			in.MouseDeltaX += e.X - in.MouseX
			in.MouseDeltaY += e.Y - in.MouseY
		}
		in.MouseX, in.MouseY = e.X, e.Y
		in.seenCursor = true
	case CharEvent:
		in.CharBuffer = append(in.CharBuffer, e.Char)
	default:
		return false
	}
	return true
}
