package rhachis

import (
	"github.com/gekko3d/rhachis/graphics"
)

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: &App{
		config: DefaultConfig(),
		clock:  systemClock{},
	}}
}

func (b *AppBuilder) WithConfig(cfg Config) *AppBuilder {
	b.app.config = cfg
	return b
}

// WithPlatform installs the window system. Installing a second, different
// platform panics.
func (b *AppBuilder) WithPlatform(p Platform) *AppBuilder {
	ensureSinglePlatform(b.app, p)
	return b
}

// WithClock replaces the wall clock driving Time and the profiler.
func (b *AppBuilder) WithClock(c Clock) *AppBuilder {
	b.app.clock = c
	return b
}

func (b *AppBuilder) WithShaderCompiler(c graphics.ShaderCompiler) *AppBuilder {
	b.app.compiler = c
	return b
}

func (b *AppBuilder) WithLogger(l Logger) *AppBuilder {
	b.app.logger = l
	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build returns an uninitialized App. Modules are installed by App.Init so
// their failures surface as an *InitError.
func (b *AppBuilder) Build() *App {
	app := b.app
	if app.clock == nil {
		app.clock = systemClock{}
	}
	app.modules = append(app.modules, b.modules...)
	app.profiler = NewProfiler(app.clock)

	return app
}
