package rhachis

import (
	"sync"

	"github.com/gekko3d/rhachis/graphics"
)

// Guard serializes access to one piece of shared state. Never hold two
// guards at the same time; the frame loop only ever holds one.
type Guard[T any] struct {
	mu    sync.Mutex
	value *T
}

func NewGuard[T any](value *T) *Guard[T] {
	return &Guard[T]{value: value}
}

// Lock blocks until the guard is free and returns the guarded value. The
// pointer must not be used after Unlock.
func (g *Guard[T]) Lock() *T {
	g.mu.Lock()
	return g.value
}

func (g *Guard[T]) Unlock() { g.mu.Unlock() }

// With runs fn while holding the guard.
func (g *Guard[T]) With(fn func(*T)) {
	v := g.Lock()
	defer g.Unlock()
	fn(v)
}

// GameData is handed to every host callback. Each field has its own lock
// so a background goroutine can hold audio while the loop renders.
type GameData struct {
	app *App

	graphics *Guard[graphics.GpuContext]
	audio    *Guard[Audio]
	input    *Guard[Input]
	time     *Guard[Time]

	mu       sync.Mutex
	exit     bool
	exitCode int
}

func (d *GameData) Graphics() *Guard[graphics.GpuContext] { return d.graphics }

func (d *GameData) Audio() *Guard[Audio] { return d.audio }

func (d *GameData) Input() *Guard[Input] { return d.input }

func (d *GameData) Time() *Guard[Time] { return d.time }

func (d *GameData) Logger() Logger { return d.app.Logger() }

func (d *GameData) Config() Config { return d.app.config }

// Exit asks the loop to shut down after the current frame. The last code
// passed wins.
func (d *GameData) Exit(code int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exit = true
	d.exitCode = code
}

func (d *GameData) exitRequested() (bool, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exit, d.exitCode
}

func (d *GameData) WindowSize() (int, int) {
	return d.app.platform.Size()
}

// SetWindowSize resizes the window. The surface follows with the resize
// event on the next frame.
func (d *GameData) SetWindowSize(width, height int) {
	d.app.platform.SetSize(width, height)
}

func (d *GameData) SetTitle(title string) {
	d.app.platform.SetTitle(title)
}

// ClearColor is the configured background colour.
func (d *GameData) ClearColor() graphics.Color {
	return d.app.config.Graphics.clearColor()
}
