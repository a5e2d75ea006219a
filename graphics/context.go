package graphics

import (
	"errors"
	"fmt"
)

// Logger is the subset of the application logger the graphics runtime uses.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

const DefaultMaxLostFrames = 3

type ContextOptions struct {
	PresentMode PresentMode
	// MaxLostFrames is how many consecutive frames may lose the surface
	// before the loss is reported as fatal. Zero means DefaultMaxLostFrames.
	MaxLostFrames int
	Compiler      ShaderCompiler
	Logger        Logger
	// ClearColor is what renderers clear to unless told otherwise. Nil means
	// opaque black.
	ClearColor *Color
}

// GpuContext owns the device, its surface configuration, and every resource
// pool created against it.
type GpuContext struct {
	device        Device
	config        SurfaceConfig
	compiler      ShaderCompiler
	log           Logger
	clearColor    Color
	maxLostFrames int
	lostFrames    int

	pools     map[ResourceID]*Resources
	poolOrder []ResourceID
	released  bool

	frameDraws int
}

func NewGpuContext(device Device, width, height uint32, opts ContextOptions) (*GpuContext, error) {
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	if opts.Compiler == nil {
		opts.Compiler = NagaCompiler{}
	}
	if opts.MaxLostFrames <= 0 {
		opts.MaxLostFrames = DefaultMaxLostFrames
	}
	clear := Black
	if opts.ClearColor != nil {
		clear = *opts.ClearColor
	}
	if width == 0 || height == 0 {
		return nil, &DeviceError{Op: "configure", Err: fmt.Errorf("zero-sized surface %dx%d", width, height)}
	}

	cfg := SurfaceConfig{
		Format:      device.PreferredFormat(),
		Width:       width,
		Height:      height,
		PresentMode: opts.PresentMode,
	}
	if err := device.Configure(cfg); err != nil {
		return nil, &DeviceError{Op: "configure", Err: err}
	}

	opts.Logger.Debugf("surface configured: %dx%d %s", width, height, cfg.Format)
	return &GpuContext{
		device:        device,
		config:        cfg,
		compiler:      opts.Compiler,
		log:           opts.Logger,
		clearColor:    clear,
		maxLostFrames: opts.MaxLostFrames,
		pools:         map[ResourceID]*Resources{},
	}, nil
}

func (c *GpuContext) Device() Device { return c.device }

func (c *GpuContext) Config() SurfaceConfig { return c.config }

func (c *GpuContext) Compiler() ShaderCompiler { return c.compiler }

// ClearColor is the default background for renderers.
func (c *GpuContext) ClearColor() Color { return c.clearColor }

func (c *GpuContext) Logger() Logger { return c.log }

// Configure resizes the surface. A zero dimension or a device rejection
// returns a *DeviceError and keeps the previous configuration.
func (c *GpuContext) Configure(width, height uint32) error {
	if c.released {
		return &DeviceError{Op: "configure", Err: ErrReleased}
	}
	if width == 0 || height == 0 {
		return &DeviceError{Op: "configure", Err: fmt.Errorf("zero-sized surface %dx%d", width, height)}
	}

	next := c.config
	next.Width, next.Height = width, height
	if err := c.device.Configure(next); err != nil {
		if rerr := c.device.Configure(c.config); rerr != nil {
			c.log.Warnf("restoring surface configuration failed: %v", rerr)
		}
		return &DeviceError{Op: "configure", Err: err}
	}
	c.config = next
	c.lostFrames = 0
	return nil
}

// Frame is one acquired swapchain image. Exactly one of Present or Discard
// must be called.
type Frame struct {
	ctx     *GpuContext
	texture SurfaceTexture
	done    bool
}

func (f *Frame) Target() Handle { return f.texture }

func (f *Frame) Present() {
	if f.done {
		return
	}
	f.done = true
	f.ctx.device.Present()
	f.texture.Release()
}

func (f *Frame) Discard() {
	if f.done {
		return
	}
	f.done = true
	f.texture.Release()
}

// AcquireFrame gets the next surface texture. A lost surface is
// reconfigured and retried once; if that also fails the frame is skipped
// with a recoverable error, escalating to fatal after MaxLostFrames
// consecutive lost frames. Timeouts skip the frame.
func (c *GpuContext) AcquireFrame() (*Frame, error) {
	if c.released {
		return nil, NewFatal(ErrReleased)
	}

	tex, err := c.device.AcquireSurfaceTexture()
	if err == nil {
		c.lostFrames = 0
		return &Frame{ctx: c, texture: tex}, nil
	}

	switch {
	case errors.Is(err, ErrTimeout):
		return nil, NewRecoverable(err)
	case errors.Is(err, ErrSurfaceLost):
		if cerr := c.device.Configure(c.config); cerr != nil {
			c.log.Warnf("reconfigure after surface loss failed: %v", cerr)
		} else if tex, err = c.device.AcquireSurfaceTexture(); err == nil {
			c.lostFrames = 0
			return &Frame{ctx: c, texture: tex}, nil
		}
		if !errors.Is(err, ErrSurfaceLost) {
			return nil, Classify(err)
		}
		c.lostFrames++
		if c.lostFrames >= c.maxLostFrames {
			return nil, NewFatal(fmt.Errorf("surface lost for %d consecutive frames: %w", c.lostFrames, err))
		}
		return nil, NewRecoverable(err)
	}
	return nil, Classify(err)
}

// Submit enqueues recorded command buffers. It does not wait for the GPU.
func (c *GpuContext) Submit(cmds ...CommandBuffer) {
	c.device.Submit(cmds...)
}

type PassOptions struct {
	Label string
	// Nil loads the previous contents instead of clearing.
	Clear *Color
	Depth Texture
}

// FramePass is an open render pass on an acquired frame.
type FramePass struct {
	ctx     *GpuContext
	frame   *Frame
	encoder CommandEncoder
	pass    *countingPass
}

func (p *FramePass) Pass() RenderPass { return p.pass }

func (p *FramePass) Frame() *Frame { return p.frame }

// Draws is the number of draw calls recorded so far.
func (p *FramePass) Draws() int { return p.pass.draws }

// BeginFrame acquires a frame and opens one render pass on it.
func (c *GpuContext) BeginFrame(opts PassOptions) (*FramePass, error) {
	frame, err := c.AcquireFrame()
	if err != nil {
		return nil, err
	}
	encoder, err := c.device.CreateCommandEncoder()
	if err != nil {
		frame.Discard()
		return nil, Classify(err)
	}
	pass, err := encoder.BeginRenderPass(RenderPassDescriptor{
		Label:      opts.Label,
		Target:     frame.Target(),
		Clear:      opts.Clear,
		Depth:      opts.Depth,
		ClearDepth: 1,
	})
	if err != nil {
		encoder.Release()
		frame.Discard()
		return nil, Classify(err)
	}
	return &FramePass{ctx: c, frame: frame, encoder: encoder, pass: &countingPass{RenderPass: pass}}, nil
}

// End closes the pass, submits it and presents the frame.
func (p *FramePass) End() error {
	defer p.encoder.Release()
	if err := p.pass.End(); err != nil {
		p.frame.Discard()
		return Classify(err)
	}
	cmd, err := p.encoder.Finish()
	if err != nil {
		p.frame.Discard()
		return Classify(err)
	}
	p.ctx.Submit(cmd)
	cmd.Release()
	p.frame.Present()
	p.ctx.frameDraws = p.pass.draws
	return nil
}

// LastFrameDraws is the draw count of the most recently presented pass.
func (c *GpuContext) LastFrameDraws() int { return c.frameDraws }

type countingPass struct {
	RenderPass
	draws int
}

func (p *countingPass) DrawIndexed(indexCount, instanceCount uint32) {
	p.draws++
	p.RenderPass.DrawIndexed(indexCount, instanceCount)
}

// NewResources creates a pool owned by the caller and tracked by the context.
func (c *GpuContext) NewResources(label string) *Resources {
	r := &Resources{id: makeResourceID(), label: label, ctx: c}
	if c.released {
		r.released = true
		return r
	}
	c.pools[r.id] = r
	c.poolOrder = append(c.poolOrder, r.id)
	return r
}

// LivePools is the number of pools not yet released.
func (c *GpuContext) LivePools() int { return len(c.pools) }

func (c *GpuContext) forget(r *Resources) {
	if _, ok := c.pools[r.id]; !ok {
		return
	}
	delete(c.pools, r.id)
	for i, id := range c.poolOrder {
		if id == r.id {
			c.poolOrder = append(c.poolOrder[:i], c.poolOrder[i+1:]...)
			break
		}
	}
}

// Release frees every still-live pool, newest first, then the device.
func (c *GpuContext) Release() {
	if c.released {
		return
	}
	for len(c.poolOrder) > 0 {
		id := c.poolOrder[len(c.poolOrder)-1]
		c.pools[id].Release()
	}
	c.released = true
	c.device.Release()
	c.log.Debugf("gpu context released")
}
