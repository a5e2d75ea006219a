package graphics

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/gekko3d/rhachis/graphics/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// SimpleRenderer draws flat-color and textured models with a shared camera
// and projection, depth tested, cleared to ClearColor each frame. ClearColor
// starts as the context's.
type SimpleRenderer struct {
	ClearColor Color

	ctx      *GpuContext
	res      *Resources
	color    *Pipeline
	textured *Pipeline

	projection Projection
	camera     mgl32.Mat4
	projBuf    Buffer
	cameraBuf  Buffer
	colorCam   BindGroup
	texCam     BindGroup
	depth      Texture

	Nearest Sampler
	Linear  Sampler
	Cache   *TextureCache

	models   []*Model
	bindings []*TextureBinding

	shaderDir string
	watcher   *ShaderWatcher
}

func NewSimpleRenderer(ctx *GpuContext, projection Projection) (*SimpleRenderer, error) {
	r := &SimpleRenderer{
		ClearColor: ctx.ClearColor(),
		ctx:        ctx,
		projection: projection.resized(ctx.Config().Width, ctx.Config().Height),
		camera:     mgl32.Ident4(),
	}

	var err error
	if r.color, err = NewPipeline(ctx, InstancedColorDescriptor("")); err != nil {
		return nil, err
	}
	if r.textured, err = NewPipeline(ctx, InstancedTexturedDescriptor("")); err != nil {
		r.color.Release()
		return nil, err
	}

	r.res = ctx.NewResources("simple renderer")
	if err := r.init(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *SimpleRenderer) init() error {
	var err error
	proj := r.projection.Mat4()
	if r.projBuf, err = r.res.CreateBufferInit("projection", BufferUsageUniform, SliceBytes(proj[:])); err != nil {
		return err
	}
	if r.cameraBuf, err = r.res.CreateBufferInit("camera", BufferUsageUniform, SliceBytes(r.camera[:])); err != nil {
		return err
	}
	if r.Nearest, err = r.res.CreateSampler(SamplerDescriptor{Label: "nearest", Filter: FilterNearest, Address: AddressClamp}); err != nil {
		return err
	}
	if r.Linear, err = r.res.CreateSampler(SamplerDescriptor{Label: "linear", Filter: FilterLinear, Address: AddressClamp}); err != nil {
		return err
	}
	if err := r.bindCamera(); err != nil {
		return err
	}
	r.Cache = NewTextureCache(r.res)
	return r.createDepth(r.ctx.Config().Width, r.ctx.Config().Height)
}

func (r *SimpleRenderer) bindCamera() error {
	entries := []BindGroupEntry{{Binding: 0, Buffer: r.projBuf}, {Binding: 1, Buffer: r.cameraBuf}}
	colorCam, err := r.color.NewBindGroup(r.res, CameraGroup, entries)
	if err != nil {
		return err
	}
	texCam, err := r.textured.NewBindGroup(r.res, CameraGroup, entries)
	if err != nil {
		r.res.Free(colorCam)
		return err
	}
	if r.colorCam != nil {
		r.res.Free(r.colorCam)
	}
	if r.texCam != nil {
		r.res.Free(r.texCam)
	}
	r.colorCam, r.texCam = colorCam, texCam
	return nil
}

func (r *SimpleRenderer) createDepth(width, height uint32) error {
	depth, err := r.res.CreateTexture(TextureDescriptor{
		Label:  "depth",
		Width:  width,
		Height: height,
		Format: FormatDepth32Float,
		Usage:  TextureUsageRenderAttachment | TextureUsageBinding,
	})
	if err != nil {
		return err
	}
	if r.depth != nil {
		r.res.Free(r.depth)
	}
	r.depth = depth
	return nil
}

func (r *SimpleRenderer) Projection() Projection { return r.projection }

func (r *SimpleRenderer) SetProjection(p Projection) error {
	r.projection = p.resized(r.ctx.Config().Width, r.ctx.Config().Height)
	m := r.projection.Mat4()
	return r.ctx.device.WriteBuffer(r.projBuf, 0, SliceBytes(m[:]))
}

func (r *SimpleRenderer) Camera() mgl32.Mat4 { return r.camera }

// SetCamera uploads the view matrix.
func (r *SimpleRenderer) SetCamera(m mgl32.Mat4) error {
	r.camera = m
	return r.ctx.device.WriteBuffer(r.cameraBuf, 0, SliceBytes(m[:]))
}

// NewColorModel creates a flat-color model and adds it to the draw list.
func (r *SimpleRenderer) NewColorModel(label string, vertices []ColorVertex, indices []uint16, transforms ...Transform) (*Model, error) {
	m, err := newModel(r.ctx, label, false, SliceBytes(vertices), indices, transforms)
	if err != nil {
		return nil, err
	}
	r.models = append(r.models, m)
	return m, nil
}

// NewTexturedModel creates a textured model. It fails without a binding,
// since group 1 would be left empty.
func (r *SimpleRenderer) NewTexturedModel(label string, vertices []TextureVertex, indices []uint16, tex *TextureBinding, transforms ...Transform) (*Model, error) {
	if tex == nil || tex.group == nil {
		return nil, &LayoutMismatchError{Label: label, Problems: []string{fmt.Sprintf("textured model needs a texture binding at group %d", TextureGroup)}}
	}
	m, err := newModel(r.ctx, label, true, SliceBytes(vertices), indices, transforms)
	if err != nil {
		return nil, err
	}
	m.texture = tex
	r.models = append(r.models, m)
	return m, nil
}

// BindTexture prepares tex for use by textured models. A nil sampler picks
// Nearest.
func (r *SimpleRenderer) BindTexture(tex Texture, sampler Sampler) (*TextureBinding, error) {
	if sampler == nil {
		sampler = r.Nearest
	}
	b := &TextureBinding{Texture: tex, Sampler: sampler}
	if err := r.bindTexture(b); err != nil {
		return nil, err
	}
	r.bindings = append(r.bindings, b)
	return b, nil
}

func (r *SimpleRenderer) bindTexture(b *TextureBinding) error {
	group, err := r.textured.NewBindGroup(r.res, TextureGroup, []BindGroupEntry{
		{Binding: 0, Texture: b.Texture},
		{Binding: 1, Sampler: b.Sampler},
	})
	if err != nil {
		return err
	}
	if b.group != nil {
		r.res.Free(b.group)
	}
	b.group = group
	return nil
}

// LoadTexture reads an image file through the cache and binds it.
func (r *SimpleRenderer) LoadTexture(path string, sampler Sampler) (*TextureBinding, error) {
	_, tex, err := r.Cache.Load(path)
	if err != nil {
		return nil, err
	}
	return r.BindTexture(tex, sampler)
}

// TextureFromImage uploads img and binds it.
func (r *SimpleRenderer) TextureFromImage(label string, img image.Image, sampler Sampler) (*TextureBinding, error) {
	_, tex, err := r.Cache.Add(label, img)
	if err != nil {
		return nil, err
	}
	return r.BindTexture(tex, sampler)
}

func (r *SimpleRenderer) Models() []*Model { return r.models }

// RemoveModel drops m from the draw list and releases it.
func (r *SimpleRenderer) RemoveModel(m *Model) bool {
	for i, it := range r.models {
		if it == m {
			r.models = append(r.models[:i], r.models[i+1:]...)
			m.Release()
			return true
		}
	}
	return false
}

func (r *SimpleRenderer) Render(ctx *GpuContext) error {
	r.pollShaders()

	clear := r.ClearColor
	frame, err := ctx.BeginFrame(PassOptions{Label: "simple", Clear: &clear, Depth: r.depth})
	if err != nil {
		return err
	}
	pass := frame.Pass()
	for _, m := range r.models {
		pipeline, camera := r.color, r.colorCam
		if m.textured {
			pipeline, camera = r.textured, r.texCam
		}
		if err := m.draw(pass, pipeline, camera); err != nil {
			// The pass must still be closed so the frame is returned.
			_ = frame.End()
			return NewRecoverable(fmt.Errorf("draw %s: %w", m.label, err))
		}
	}
	return frame.End()
}

// Resize recreates the depth buffer and refreshes a perspective aspect.
func (r *SimpleRenderer) Resize(ctx *GpuContext, width, height uint32) error {
	if err := r.createDepth(width, height); err != nil {
		return err
	}
	if r.projection.Kind == Perspective {
		return r.SetProjection(r.projection)
	}
	return nil
}

// WatchShaders reloads pipeline sources from dir whenever a .wgsl file in it
// changes. Files missing from dir fall back to the embedded shaders.
func (r *SimpleRenderer) WatchShaders(dir string) error {
	w, err := WatchShaders(dir, r.ctx.log)
	if err != nil {
		return err
	}
	if r.watcher != nil {
		_ = r.watcher.Close()
	}
	r.watcher = w
	r.shaderDir = dir
	return r.ReloadShaders(dir)
}

func (r *SimpleRenderer) pollShaders() {
	if r.watcher == nil || len(r.watcher.Poll()) == 0 {
		return
	}
	if err := r.ReloadShaders(r.shaderDir); err != nil {
		r.ctx.log.Errorf("shader reload failed, keeping previous pipelines: %v", err)
	}
}

// ReloadShaders rebuilds both pipelines from dir. On any error the current
// pipelines stay in place.
func (r *SimpleRenderer) ReloadShaders(dir string) error {
	colorSrc, err := readShader(dir, shaders.InstancedColorFile)
	if err != nil {
		return err
	}
	texSrc, err := readShader(dir, shaders.InstancedTexturedFile)
	if err != nil {
		return err
	}
	color, err := NewPipeline(r.ctx, InstancedColorDescriptor(colorSrc))
	if err != nil {
		return err
	}
	textured, err := NewPipeline(r.ctx, InstancedTexturedDescriptor(texSrc))
	if err != nil {
		color.Release()
		return err
	}

	oldColor, oldTextured := r.color, r.textured
	r.color, r.textured = color, textured
	if err := r.rebind(); err != nil {
		r.color, r.textured = oldColor, oldTextured
		if rerr := r.rebind(); rerr != nil {
			r.ctx.log.Errorf("restoring bindings after failed reload: %v", rerr)
		}
		color.Release()
		textured.Release()
		return err
	}
	oldColor.Release()
	oldTextured.Release()
	r.ctx.log.Infof("reloaded shaders from %s", dir)
	return nil
}

func (r *SimpleRenderer) rebind() error {
	if err := r.bindCamera(); err != nil {
		return err
	}
	for _, b := range r.bindings {
		if err := r.bindTexture(b); err != nil {
			return err
		}
	}
	return nil
}

func readShader(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Release frees models, then pipelines, then the renderer's own resources.
func (r *SimpleRenderer) Release() {
	if r.watcher != nil {
		_ = r.watcher.Close()
		r.watcher = nil
	}
	for _, m := range r.models {
		m.Release()
	}
	r.models = nil
	if r.res != nil {
		r.res.Release()
	}
	if r.textured != nil {
		r.textured.Release()
	}
	if r.color != nil {
		r.color.Release()
	}
}
