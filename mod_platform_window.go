package rhachis

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/rhachis/graphics"
	"github.com/gekko3d/rhachis/graphics/webgpu"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// GlfwPlatform is a desktop window with no client API; wgpu presents to it.
// It must be created and used on the main thread.
type GlfwPlatform struct {
	window *glfw.Window

	mu     sync.Mutex
	events []Event
}

func NewGlfwPlatform(cfg WindowConfig) (*GlfwPlatform, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	resizable := glfw.False
	if cfg.Resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	p := &GlfwPlatform{window: win}
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		k, ok := glfwToKey[key]
		if !ok || action == glfw.Repeat {
			return
		}
		p.push(KeyEvent{Key: k, Action: glfwAction(action)})
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		b, ok := glfwToMouseButton[button]
		if !ok {
			return
		}
		p.push(MouseButtonEvent{Button: b, Action: glfwAction(action)})
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		p.push(CursorEvent{X: x, Y: y})
	})
	win.SetCharCallback(func(_ *glfw.Window, char rune) {
		p.push(CharEvent{Char: char})
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		p.push(ResizeEvent{Width: width, Height: height})
	})
	win.SetCloseCallback(func(_ *glfw.Window) {
		p.push(CloseEvent{})
	})
	return p, nil
}

func (p *GlfwPlatform) push(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *GlfwPlatform) PollEvents() []Event {
	glfw.PollEvents()
	p.mu.Lock()
	defer p.mu.Unlock()
	events := p.events
	p.events = nil
	return events
}

func (p *GlfwPlatform) Size() (int, int) {
	return p.window.GetFramebufferSize()
}

func (p *GlfwPlatform) SetSize(width, height int) {
	p.window.SetSize(width, height)
}

func (p *GlfwPlatform) SetTitle(title string) {
	p.window.SetTitle(title)
}

func (p *GlfwPlatform) CreateDevice(cfg GraphicsConfig) (graphics.Device, error) {
	dev, err := webgpu.New(wgpuglfw.GetSurfaceDescriptor(p.window), webgpu.Options{
		PowerPreference: cfg.powerPreference(),
	})
	if err != nil {
		return nil, err
	}
	return dev, nil
}

func (p *GlfwPlatform) Release() {
	p.window.Destroy()
	glfw.Terminate()
}

// PlatformWindowModule opens the desktop window unless the app already has
// a platform. Zero fields are taken from the [window] config section.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func (m PlatformWindowModule) Install(app *App) error {
	if app.platform != nil {
		return nil
	}
	cfg := app.config.Window
	if m.Width > 0 {
		cfg.Width = m.Width
	}
	if m.Height > 0 {
		cfg.Height = m.Height
	}
	if m.Title != "" {
		cfg.Title = m.Title
	}
	p, err := NewGlfwPlatform(cfg)
	if err != nil {
		return err
	}
	app.platform = p
	app.Logger().Infof("created window (%dx%d) '%s'", cfg.Width, cfg.Height, cfg.Title)
	return nil
}

func glfwAction(a glfw.Action) Action {
	if a == glfw.Release {
		return ActionRelease
	}
	return ActionPress
}

var glfwToMouseButton = map[glfw.MouseButton]MouseButton{
	glfw.MouseButtonLeft:   MouseButtonLeft,
	glfw.MouseButtonRight:  MouseButtonRight,
	glfw.MouseButtonMiddle: MouseButtonMiddle,
}

var glfwToKey = map[glfw.Key]Key{
	glfw.KeyA:            KeyA,
	glfw.KeyB:            KeyB,
	glfw.KeyC:            KeyC,
	glfw.KeyD:            KeyD,
	glfw.KeyE:            KeyE,
	glfw.KeyF:            KeyF,
	glfw.KeyG:            KeyG,
	glfw.KeyH:            KeyH,
	glfw.KeyI:            KeyI,
	glfw.KeyJ:            KeyJ,
	glfw.KeyK:            KeyK,
	glfw.KeyL:            KeyL,
	glfw.KeyM:            KeyM,
	glfw.KeyN:            KeyN,
	glfw.KeyO:            KeyO,
	glfw.KeyP:            KeyP,
	glfw.KeyQ:            KeyQ,
	glfw.KeyR:            KeyR,
	glfw.KeyS:            KeyS,
	glfw.KeyT:            KeyT,
	glfw.KeyU:            KeyU,
	glfw.KeyV:            KeyV,
	glfw.KeyW:            KeyW,
	glfw.KeyX:            KeyX,
	glfw.KeyY:            KeyY,
	glfw.KeyZ:            KeyZ,
	glfw.Key0:            Key0,
	glfw.Key1:            Key1,
	glfw.Key2:            Key2,
	glfw.Key3:            Key3,
	glfw.Key4:            Key4,
	glfw.Key5:            Key5,
	glfw.Key6:            Key6,
	glfw.Key7:            Key7,
	glfw.Key8:            Key8,
	glfw.Key9:            Key9,
	glfw.KeySpace:        KeySpace,
	glfw.KeyEnter:        KeyEnter,
	glfw.KeyEscape:       KeyEscape,
	glfw.KeyTab:          KeyTab,
	glfw.KeyBackspace:    KeyBackspace,
	glfw.KeyInsert:       KeyInsert,
	glfw.KeyDelete:       KeyDelete,
	glfw.KeyRight:        KeyRight,
	glfw.KeyLeft:         KeyLeft,
	glfw.KeyDown:         KeyDown,
	glfw.KeyUp:           KeyUp,
	glfw.KeyF1:           KeyF1,
	glfw.KeyF2:           KeyF2,
	glfw.KeyF3:           KeyF3,
	glfw.KeyF4:           KeyF4,
	glfw.KeyF5:           KeyF5,
	glfw.KeyF6:           KeyF6,
	glfw.KeyF7:           KeyF7,
	glfw.KeyF8:           KeyF8,
	glfw.KeyF9:           KeyF9,
	glfw.KeyF10:          KeyF10,
	glfw.KeyF11:          KeyF11,
	glfw.KeyF12:          KeyF12,
	glfw.KeyMinus:        KeyMinus,
	glfw.KeyEqual:        KeyEqual,
	glfw.KeyKPAdd:        KeyKPPlus,
	glfw.KeyKPSubtract:   KeyKPMinus,
	glfw.KeyLeftShift:    KeyShift,
	glfw.KeyRightShift:   KeyShift,
	glfw.KeyLeftControl:  KeyControl,
	glfw.KeyRightControl: KeyControl,
	glfw.KeyLeftAlt:      KeyLeftAlt,
}
