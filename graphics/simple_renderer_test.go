package graphics

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/rhachis/graphics/shaders"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimpleRenderer(t *testing.T) (*SimpleRenderer, *GpuContext, *HeadlessDevice) {
	t.Helper()
	ctx, dev := newTestContext(t)
	r, err := NewSimpleRenderer(ctx, OrthographicProjection())
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r, ctx, dev
}

func checkerboard(size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestSimpleRenderer_DrawsModels(t *testing.T) {
	r, ctx, dev := newSimpleRenderer(t)

	vertices, indices := Quad([4]float32{1, 0, 0, 1})
	colored, err := r.NewColorModel("red", vertices, indices,
		NewTransform(),
		NewTransform().WithTranslation(mgl32.Vec3{0.5, 0, 0}))
	require.NoError(t, err)

	binding, err := r.TextureFromImage("checker", checkerboard(4), r.Linear)
	require.NoError(t, err)
	texVerts, texIndices := TexturedQuad()
	_, err = r.NewTexturedModel("checker", texVerts, texIndices, binding, NewTransform())
	require.NoError(t, err)

	require.NoError(t, r.Render(ctx))

	passes := dev.Passes()
	require.Len(t, passes, 1)
	pass := passes[0]
	assert.True(t, pass.Depth)
	assert.Equal(t, Black, *pass.Clear)
	require.Len(t, pass.Draws, 2)

	assert.Equal(t, "instanced color", pass.Draws[0].Pipeline)
	assert.Equal(t, uint32(6), pass.Draws[0].IndexCount)
	assert.Equal(t, uint32(2), pass.Draws[0].InstanceCount)
	assert.Equal(t, []uint32{CameraGroup}, pass.Draws[0].BindGroups)

	assert.Equal(t, "instanced textured", pass.Draws[1].Pipeline)
	assert.Equal(t, uint32(1), pass.Draws[1].InstanceCount)
	assert.Equal(t, []uint32{CameraGroup, TextureGroup}, pass.Draws[1].BindGroups)
	assert.Equal(t, 2, ctx.LastFrameDraws())

	// Instances are uploaded once, then only when changed.
	require.NoError(t, r.Render(ctx))
	assert.Equal(t, 1, colored.Instances().Uploads())
	colored.ModifyTransforms(func(i int, tr *Transform) { tr.Scale = mgl32.Vec3{2, 2, 2} })
	require.NoError(t, r.Render(ctx))
	assert.Equal(t, 2, colored.Instances().Uploads())
}

func TestSimpleRenderer_TexturedModelNeedsBinding(t *testing.T) {
	r, _, _ := newSimpleRenderer(t)
	vertices, indices := TexturedQuad()

	_, err := r.NewTexturedModel("bare", vertices, indices, nil)
	var mismatch *LayoutMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Empty(t, r.Models())
}

func TestSimpleRenderer_EmptyModelListOnlyClears(t *testing.T) {
	r, ctx, dev := newSimpleRenderer(t)
	vertices, indices := Quad([4]float32{0, 1, 0, 1})
	m, err := r.NewColorModel("gone", vertices, indices)
	require.NoError(t, err)

	// A model without instances is skipped.
	require.NoError(t, r.Render(ctx))
	assert.Equal(t, 0, dev.Stats().Draws)

	assert.True(t, r.RemoveModel(m))
	assert.False(t, r.RemoveModel(m))
	require.NoError(t, r.Render(ctx))
	assert.Equal(t, 2, dev.Stats().Clears)
}

func TestSimpleRenderer_CameraAndProjection(t *testing.T) {
	r, _, dev := newSimpleRenderer(t)

	camera := mgl32.Translate3D(0, 0, -5)
	require.NoError(t, r.SetCamera(camera))
	assert.Equal(t, camera, r.Camera())
	assert.Equal(t, SliceBytes(camera[:]), dev.BufferData(r.cameraBuf))

	require.NoError(t, r.SetProjection(PerspectiveProjection(1)))
	assert.InDelta(t, 800.0/600.0, r.Projection().Aspect, 1e-6)
	proj := r.Projection().Mat4()
	assert.Equal(t, SliceBytes(proj[:]), dev.BufferData(r.projBuf))
}

func TestSimpleRenderer_Resize(t *testing.T) {
	r, ctx, dev := newSimpleRenderer(t)
	require.NoError(t, r.SetProjection(PerspectiveProjection(1)))
	live := dev.Stats().LiveHandles

	require.NoError(t, ctx.Configure(1000, 500))
	require.NoError(t, r.Resize(ctx, 1000, 500))

	assert.Equal(t, uint32(1000), r.depth.Width())
	assert.InDelta(t, 2.0, r.Projection().Aspect, 1e-6)
	assert.Equal(t, live, dev.Stats().LiveHandles, "old depth texture is released")
}

func TestSimpleRenderer_ReloadShaders(t *testing.T) {
	r, _, dev := newSimpleRenderer(t)
	binding, err := r.TextureFromImage("checker", checkerboard(2), nil)
	require.NoError(t, err)
	assert.Same(t, r.Nearest, binding.Sampler)

	dir := t.TempDir()
	require.NoError(t, r.ReloadShaders(dir))
	live := dev.Stats().LiveHandles

	// A shader missing the instance inputs is rejected and the old pipelines stay.
	broken := `
@group(0) @binding(0) var<uniform> projection: mat4x4<f32>;
@group(0) @binding(1) var<uniform> camera: mat4x4<f32>;
@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) color: vec4<f32>) -> @builtin(position) vec4<f32> {
    return projection * camera * vec4<f32>(position, 1.0);
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, shaders.InstancedColorFile), []byte(broken), 0o644))
	color := r.color
	err = r.ReloadShaders(dir)
	var mismatch *LayoutMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Same(t, color, r.color)
	assert.Equal(t, live, dev.Stats().LiveHandles)

	require.NoError(t, os.WriteFile(filepath.Join(dir, shaders.InstancedColorFile), []byte(shaders.InstancedColorWGSL), 0o644))
	require.NoError(t, r.ReloadShaders(dir))
	assert.NotSame(t, color, r.color)
	assert.Equal(t, live, dev.Stats().LiveHandles)
}

func TestSimpleRenderer_ReleaseFreesEverything(t *testing.T) {
	ctx, dev := newTestContext(t)
	r, err := NewSimpleRenderer(ctx, OrthographicProjection())
	require.NoError(t, err)
	vertices, indices := Quad([4]float32{1, 1, 1, 1})
	_, err = r.NewColorModel("quad", vertices, indices, NewTransform())
	require.NoError(t, err)
	require.NoError(t, r.Render(ctx))

	r.Release()
	assert.Equal(t, 0, dev.Stats().LiveHandles)
	assert.Equal(t, 0, ctx.LivePools())
}

func TestSimpleRenderer_ClearColorFromContext(t *testing.T) {
	clear := Color{R: 0.1, G: 0.1, B: 0.1}
	dev := NewHeadlessDevice()
	ctx, err := NewGpuContext(dev, 64, 64, ContextOptions{Compiler: ReflectCompiler{}, ClearColor: &clear})
	require.NoError(t, err)
	t.Cleanup(ctx.Release)
	r, err := NewSimpleRenderer(ctx, OrthographicProjection())
	require.NoError(t, err)
	defer r.Release()

	assert.Equal(t, clear, r.ClearColor)
	require.NoError(t, r.Render(ctx))
	require.Len(t, dev.Passes(), 1)
	assert.Equal(t, clear, *dev.Passes()[0].Clear)
}
