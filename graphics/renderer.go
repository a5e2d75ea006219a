package graphics

// Renderer draws one frame. Errors go back to the frame loop, which decides
// whether to skip the frame or shut down.
type Renderer interface {
	Render(ctx *GpuContext) error
}

// Resizer is implemented by renderers holding size-dependent resources. It is
// called after the surface was successfully reconfigured.
type Resizer interface {
	Resize(ctx *GpuContext, width, height uint32) error
}

// Releaser is implemented by renderers owning GPU resources. It is called at
// shutdown, before the GpuContext goes away.
type Releaser interface {
	Release()
}

// EmptyRenderer clears the surface and draws nothing.
type EmptyRenderer struct {
	// Nil means the context's ClearColor.
	Clear *Color
}

func (r EmptyRenderer) Render(ctx *GpuContext) error {
	clear := ctx.ClearColor()
	if r.Clear != nil {
		clear = *r.Clear
	}
	frame, err := ctx.BeginFrame(PassOptions{Label: "empty", Clear: &clear})
	if err != nil {
		return err
	}
	return frame.End()
}
