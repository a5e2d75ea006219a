package rhachis

import (
	"fmt"
	"os"

	"github.com/gekko3d/rhachis/graphics"
)

// Game is the host application. Update runs once per frame before the frame
// is rendered with whatever Renderer returns at that point.
type Game interface {
	Update(data *GameData)
	Renderer() graphics.Renderer
}

// InitFunc builds the Game once the GPU context exists.
type InitFunc func(data *GameData) (Game, error)

// ConfigFile is read by Main from the working directory when present.
const ConfigFile = "rhachis.toml"

// Main runs a desktop app with the default modules and exits the process
// with the resulting status. It does not return.
func Main(init InitFunc) {
	cfg, err := LoadConfigOrDefault(ConfigFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	app := NewAppBuilder().
		WithConfig(cfg).
		UseModule(
			LoggingModule{},
			PlatformWindowModule{},
			AudioModule{},
		).
		Build()

	os.Exit(ExitCode(app.Run(init)))
}
