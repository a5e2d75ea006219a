package rhachis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputState_Cycle(t *testing.T) {
	var in Input

	in.beginFrame()
	in.apply(KeyEvent{Key: KeyW, Action: ActionPress})
	assert.Equal(t, Pressed, in.Key(KeyW))
	assert.True(t, in.Key(KeyW).IsDown())

	in.beginFrame()
	assert.Equal(t, Down, in.Key(KeyW))

	// Repeated presses while held do not restart the cycle.
	in.apply(KeyEvent{Key: KeyW, Action: ActionPress})
	assert.Equal(t, Down, in.Key(KeyW))

	in.beginFrame()
	in.apply(KeyEvent{Key: KeyW, Action: ActionRelease})
	assert.Equal(t, Released, in.Key(KeyW))
	assert.False(t, in.Key(KeyW).IsDown())

	in.beginFrame()
	assert.Equal(t, Up, in.Key(KeyW))
}

func TestInput_TapWithinOneFrame(t *testing.T) {
	var in Input
	in.beginFrame()
	in.apply(KeyEvent{Key: KeySpace, Action: ActionPress})
	in.apply(KeyEvent{Key: KeySpace, Action: ActionRelease})
	assert.Equal(t, Released, in.Key(KeySpace))
}

func TestInput_ReleaseWithoutPress(t *testing.T) {
	var in Input
	in.apply(KeyEvent{Key: KeyQ, Action: ActionRelease})
	assert.Equal(t, Up, in.Key(KeyQ))
}

func TestInput_OutOfRange(t *testing.T) {
	var in Input
	assert.True(t, in.apply(KeyEvent{Key: KeyUnknown, Action: ActionPress}))
	assert.True(t, in.apply(KeyEvent{Key: Key(-4), Action: ActionPress}))
	assert.Equal(t, Up, in.Key(KeyUnknown))
	assert.Equal(t, Up, in.Key(keyCount+1))
	assert.Equal(t, Up, in.MouseButton(MouseButton(99)))
}

func TestInput_MouseButtons(t *testing.T) {
	var in Input
	in.apply(MouseButtonEvent{Button: MouseButtonRight, Action: ActionPress})
	assert.Equal(t, Pressed, in.MouseButton(MouseButtonRight))
	assert.Equal(t, Up, in.MouseButton(MouseButtonLeft))
	in.beginFrame()
	assert.Equal(t, Down, in.MouseButton(MouseButtonRight))
}

func TestInput_CursorDelta(t *testing.T) {
	var in Input

	in.apply(CursorEvent{X: 100, Y: 50})
	dx, dy := in.MouseMovement()
	assert.Zero(t, dx, "the first position is not a movement")
	assert.Zero(t, dy)

	in.beginFrame()
	in.apply(CursorEvent{X: 110, Y: 40})
	in.apply(CursorEvent{X: 115, Y: 45})
	dx, dy = in.MouseMovement()
	assert.Equal(t, 15.0, dx)
	assert.Equal(t, -5.0, dy)
	x, y := in.MousePosition()
	assert.Equal(t, 115.0, x)
	assert.Equal(t, 45.0, y)

	in.beginFrame()
	dx, dy = in.MouseMovement()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestInput_CharBuffer(t *testing.T) {
	var in Input
	in.apply(CharEvent{Char: 'h'})
	in.apply(CharEvent{Char: 'é'})
	assert.Equal(t, []rune{'h', 'é'}, in.CharBuffer)
	in.beginFrame()
	assert.Empty(t, in.CharBuffer)
}

func TestInput_NonInputEvents(t *testing.T) {
	var in Input
	assert.False(t, in.apply(ResizeEvent{Width: 1, Height: 1}))
	assert.False(t, in.apply(CloseEvent{}))
}

func TestInputState_String(t *testing.T) {
	assert.Equal(t, "up", Up.String())
	assert.Equal(t, "pressed", Pressed.String())
	assert.Equal(t, "down", Down.String())
	assert.Equal(t, "released", Released.String())
}
