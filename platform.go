package rhachis

import (
	"sync"

	"github.com/gekko3d/rhachis/graphics"
)

// Platform is the window system: it owns the OS window, turns OS input into
// Events and creates the GPU device presenting to the window.
type Platform interface {
	// PollEvents returns everything that happened since the last call.
	PollEvents() []Event
	Size() (int, int)
	SetSize(width, height int)
	SetTitle(title string)
	CreateDevice(cfg GraphicsConfig) (graphics.Device, error)
	Release()
}

// HeadlessPlatform is a Platform without a window. Events are scripted per
// poll, and the device is a graphics.HeadlessDevice.
type HeadlessPlatform struct {
	Device *graphics.HeadlessDevice
	// DeviceErr makes CreateDevice fail.
	DeviceErr error

	mu       sync.Mutex
	width    int
	height   int
	title    string
	polls    int
	pending  []Event
	scripted map[int][]Event
	released bool
}

func NewHeadlessPlatform(width, height int) *HeadlessPlatform {
	return &HeadlessPlatform{
		Device:   graphics.NewHeadlessDevice(),
		width:    width,
		height:   height,
		scripted: map[int][]Event{},
	}
}

// Queue delivers events on the next poll.
func (p *HeadlessPlatform) Queue(events ...Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, events...)
}

// Script delivers events on the given poll, counting from 1. The frame loop
// polls once per frame.
func (p *HeadlessPlatform) Script(poll int, events ...Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripted[poll] = append(p.scripted[poll], events...)
}

func (p *HeadlessPlatform) Polls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}

func (p *HeadlessPlatform) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

func (p *HeadlessPlatform) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

func (p *HeadlessPlatform) PollEvents() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.polls++
	events := append(p.pending, p.scripted[p.polls]...)
	p.pending = nil
	delete(p.scripted, p.polls)
	for _, e := range events {
		if r, ok := e.(ResizeEvent); ok {
			p.width, p.height = r.Width, r.Height
		}
	}
	return events
}

func (p *HeadlessPlatform) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

func (p *HeadlessPlatform) SetSize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, ResizeEvent{Width: width, Height: height})
}

func (p *HeadlessPlatform) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
}

func (p *HeadlessPlatform) CreateDevice(cfg GraphicsConfig) (graphics.Device, error) {
	if p.DeviceErr != nil {
		return nil, p.DeviceErr
	}
	return p.Device, nil
}

func (p *HeadlessPlatform) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = true
}
