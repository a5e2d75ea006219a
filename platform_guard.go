package rhachis

import "fmt"

// ensureSinglePlatform enforces a single platform per App. Installing the
// same platform twice is allowed; a different one panics.
func ensureSinglePlatform(app *App, p Platform) {
	if app == nil {
		panic("ensureSinglePlatform: app is nil")
	}
	if p == nil {
		panic("ensureSinglePlatform: platform is nil")
	}
	if app.platform != nil {
		if app.platform != p {
			app.Logger().Errorf("Multiple platforms installed: %T and %T", app.platform, p)
			panic(fmt.Sprintf("Multiple platforms installed: %T and %T", app.platform, p))
		}
		return
	}
	app.platform = p
}
