package rhachis

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gekko3d/rhachis/graphics"
)

// LoopState is the lifecycle of an App. It only moves forward.
type LoopState int

const (
	StateUninitialized LoopState = iota
	StateRunning
	StateShuttingDown
	StateTerminated
)

func (s LoopState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting down"
	case StateTerminated:
		return "terminated"
	}
	return "uninitialized"
}

// Module contributes to an App during Init. Modules run in the order they
// were added; an error aborts initialization.
type Module interface {
	Install(app *App) error
}

// RendererUpdater is implemented by renderers that want GameData once per
// frame, after Game.Update.
type RendererUpdater interface {
	Update(data *GameData)
}

type shaderWatching interface {
	WatchShaders(dir string) error
}

type App struct {
	config   Config
	platform Platform
	modules  []Module
	logger   Logger
	clock    Clock
	compiler graphics.ShaderCompiler
	profiler *Profiler

	state       LoopState
	transitions []LoopState

	ctx      *graphics.GpuContext
	graphics *Guard[graphics.GpuContext]
	audio    *Guard[Audio]
	input    *Guard[Input]
	time     *Guard[Time]
	data     *GameData
	game     Game

	cleanups       []func()
	closeRequested atomic.Bool
	minimized      bool
	fatal          error
	exitCode       int
}

func (app *App) State() LoopState { return app.state }

// Transitions lists every state the app has entered, in order.
func (app *App) Transitions() []LoopState {
	return append([]LoopState(nil), app.transitions...)
}

func (app *App) Config() Config { return app.config }

func (app *App) Profiler() *Profiler { return app.profiler }

// Data is nil before Init.
func (app *App) Data() *GameData { return app.data }

// OnShutdown registers fn to run at shutdown. Cleanups run newest first,
// before the renderer and the GPU context are released.
func (app *App) OnShutdown(fn func()) {
	app.cleanups = append(app.cleanups, fn)
}

// RequestClose asks the loop to stop after the current frame. Safe to call
// from any goroutine.
func (app *App) RequestClose() {
	app.closeRequested.Store(true)
}

func (app *App) transition(to LoopState) {
	if to <= app.state {
		return
	}
	app.Logger().Debugf("frame loop: %s -> %s", app.state, to)
	app.state = to
	app.transitions = append(app.transitions, to)
}

// Init installs modules, opens the GPU context and calls init. On failure
// everything acquired so far is released and an *InitError is returned.
func (app *App) Init(init InitFunc) error {
	if app.state != StateUninitialized {
		return fmt.Errorf("app already initialized (%s)", app.state)
	}

	for _, m := range app.modules {
		if err := m.Install(app); err != nil {
			return app.initFailed(fmt.Sprintf("module %T", m), err)
		}
	}
	if app.platform == nil {
		return app.initFailed("platform", errors.New("no platform installed"))
	}

	device, err := app.platform.CreateDevice(app.config.Graphics)
	if err != nil {
		return app.initFailed("device", err)
	}
	width, height := app.platform.Size()
	clear := app.config.Graphics.clearColor()
	ctx, err := graphics.NewGpuContext(device, uint32(max(width, 0)), uint32(max(height, 0)), graphics.ContextOptions{
		PresentMode:   app.config.Graphics.presentMode(),
		MaxLostFrames: app.config.Graphics.MaxLostFrames,
		Compiler:      app.compiler,
		Logger:        app.Logger(),
		ClearColor:    &clear,
	})
	if err != nil {
		device.Release()
		return app.initFailed("surface", err)
	}
	app.ctx = ctx
	app.graphics = NewGuard(ctx)
	if app.audio == nil {
		app.audio = NewGuard(NewAudio(app.config.Audio.SampleRate, app.config.Audio.Volume))
	}
	app.input = NewGuard(&Input{})
	tm := &Time{}
	tm.start(app.clock.Now())
	app.time = NewGuard(tm)
	app.data = &GameData{
		app:      app,
		graphics: app.graphics,
		audio:    app.audio,
		input:    app.input,
		time:     app.time,
	}

	game, err := init(app.data)
	if err != nil {
		return app.initFailed("game init", err)
	}
	if game == nil {
		return app.initFailed("game init", errors.New("init returned no game"))
	}
	app.game = game

	if dir := app.config.Graphics.ShaderDir; dir != "" {
		if w, ok := game.Renderer().(shaderWatching); ok {
			if err := w.WatchShaders(dir); err != nil {
				app.Logger().Warnf("shader hot reload disabled: %v", err)
			} else {
				app.Logger().Infof("watching shaders in %s", dir)
			}
		}
	}

	app.transition(StateRunning)
	app.Logger().Infof("running %dx%d, %s", width, height, ctx.Config().Format)
	return nil
}

func (app *App) initFailed(stage string, err error) error {
	app.release()
	app.transition(StateTerminated)
	ierr := &InitError{Stage: stage, Err: err}
	app.Logger().Errorf("%v", ierr)
	return ierr
}

// Run initializes the app and drives frames until it terminates. A fatal
// render error is returned as is; a non-zero exit code as *ExitError.
func (app *App) Run(init InitFunc) error {
	if err := app.Init(init); err != nil {
		return err
	}
	for app.state == StateRunning {
		app.Step()
	}
	return app.Result()
}

// Result is what Run returns once the app has terminated.
func (app *App) Result() error {
	if app.fatal != nil {
		return app.fatal
	}
	if app.exitCode != 0 {
		return &ExitError{Code: app.exitCode}
	}
	return nil
}

// Step runs one frame: events, time, update, render. When the frame ends
// the loop, Step also performs the shutdown. A fatal render error is
// returned from the frame it happened in.
func (app *App) Step() error {
	if app.state != StateRunning {
		return ErrNotRunning
	}
	app.profiler.Add(CountFrames, 1)

	app.pollEvents()
	app.time.With(func(t *Time) { t.advance(app.clock.Now()) })

	app.profiler.BeginScope(ScopeUpdate)
	app.game.Update(app.data)
	renderer := app.game.Renderer()
	if u, ok := renderer.(RendererUpdater); ok {
		u.Update(app.data)
	}
	app.profiler.EndScope(ScopeUpdate)

	if !app.minimized && renderer != nil {
		app.render(renderer)
	}

	if app.fatal != nil {
		return app.fatal
	}
	if exit, code := app.data.exitRequested(); exit {
		app.exitCode = code
		app.Logger().Infof("exit requested with code %d", code)
		app.shutdown()
	} else if app.closeRequested.Load() {
		app.Logger().Infof("close requested")
		app.shutdown()
	}
	return nil
}

func (app *App) pollEvents() {
	var other []Event
	app.input.With(func(in *Input) {
		in.beginFrame()
		for _, e := range app.platform.PollEvents() {
			if !in.apply(e) {
				other = append(other, e)
			}
		}
	})
	for _, e := range other {
		switch e := e.(type) {
		case ResizeEvent:
			app.resize(e.Width, e.Height)
		case CloseEvent:
			app.closeRequested.Store(true)
		}
	}
}

func (app *App) resize(width, height int) {
	if width <= 0 || height <= 0 {
		app.minimized = true
		app.Logger().Debugf("window minimized, rendering paused")
		return
	}
	app.minimized = false
	ctx := app.graphics.Lock()
	defer app.graphics.Unlock()
	if err := ctx.Configure(uint32(width), uint32(height)); err != nil {
		app.Logger().Warnf("resize to %dx%d: %v", width, height, err)
		return
	}
	app.profiler.Add(CountResizes, 1)
	if r, ok := app.game.Renderer().(graphics.Resizer); ok {
		if err := r.Resize(ctx, uint32(width), uint32(height)); err != nil {
			app.Logger().Warnf("renderer resize: %v", err)
		}
	}
}

func (app *App) render(renderer graphics.Renderer) {
	app.profiler.BeginScope(ScopeRender)
	ctx := app.graphics.Lock()
	err := renderer.Render(ctx)
	draws := ctx.LastFrameDraws()
	app.graphics.Unlock()
	app.profiler.EndScope(ScopeRender)

	if err == nil {
		app.profiler.Add(CountRendered, 1)
		app.profiler.Add(CountDraws, draws)
		return
	}
	if graphics.IsFatal(err) {
		app.Logger().Errorf("fatal render error: %v", err)
		app.fatal = err
		app.shutdown()
		return
	}
	app.profiler.Add(CountSkipped, 1)
	app.Logger().Warnf("frame skipped: %v", err)
}

func (app *App) shutdown() {
	if app.state != StateRunning {
		return
	}
	app.transition(StateShuttingDown)
	app.release()
	app.transition(StateTerminated)
	app.Logger().Debugf("frame stats:\n%s", app.profiler)
}

// release frees whatever was acquired: cleanups, the renderer, the GPU
// context, audio, then the platform.
func (app *App) release() {
	for i := len(app.cleanups) - 1; i >= 0; i-- {
		app.cleanups[i]()
	}
	app.cleanups = nil

	if app.game != nil {
		if r, ok := app.game.Renderer().(graphics.Releaser); ok {
			r.Release()
		}
	}
	if app.ctx != nil {
		app.ctx.Release()
	}
	if app.audio != nil {
		app.audio.With(func(a *Audio) { a.close() })
	}
	if app.platform != nil {
		app.platform.Release()
	}
}
