package graphics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyRenderer_ClearsOnly(t *testing.T) {
	for _, frames := range []int{1, 10, 1000} {
		t.Run(fmt.Sprintf("%d frames", frames), func(t *testing.T) {
			ctx, dev := newTestContext(t)
			var r Renderer = EmptyRenderer{}

			for i := 0; i < frames; i++ {
				require.NoError(t, r.Render(ctx))
			}

			stats := dev.Stats()
			assert.Equal(t, frames, stats.Passes)
			assert.Equal(t, frames, stats.Clears)
			assert.Equal(t, 0, stats.Draws)
			assert.Equal(t, frames, stats.Presents)
			assert.Equal(t, 0, stats.Allocations)
			assert.Equal(t, 0, ctx.LastFrameDraws())
		})
	}
}

func TestEmptyRenderer_ClearColor(t *testing.T) {
	ctx, dev := newTestContext(t)

	require.NoError(t, EmptyRenderer{}.Render(ctx))
	require.NoError(t, EmptyRenderer{Clear: &Color{R: 0.2, G: 0.4, B: 0.6, A: 1}}.Render(ctx))
	require.NoError(t, EmptyRenderer{Clear: &Color{}}.Render(ctx))

	passes := dev.Passes()
	require.Len(t, passes, 3)
	assert.Equal(t, Black, *passes[0].Clear)
	assert.Equal(t, Color{R: 0.2, G: 0.4, B: 0.6, A: 1}, *passes[1].Clear)
	assert.Equal(t, Color{}, *passes[2].Clear, "transparent clear is kept")
}

func TestEmptyRenderer_ContextClearColor(t *testing.T) {
	teal := Color{G: 0.5, B: 0.5, A: 1}
	dev := NewHeadlessDevice()
	ctx, err := NewGpuContext(dev, 64, 64, ContextOptions{Compiler: ReflectCompiler{}, ClearColor: &teal})
	require.NoError(t, err)
	defer ctx.Release()

	assert.Equal(t, teal, ctx.ClearColor())
	require.NoError(t, EmptyRenderer{}.Render(ctx))

	passes := dev.Passes()
	require.Len(t, passes, 1)
	assert.Equal(t, teal, *passes[0].Clear)
}

func TestEmptyRenderer_SkipsLostFrame(t *testing.T) {
	ctx, dev := newTestContext(t)
	dev.FailAcquire(ErrTimeout)

	err := EmptyRenderer{}.Render(ctx)
	require.ErrorIs(t, err, ErrTimeout)
	assert.False(t, IsFatal(err))
	assert.Equal(t, 0, dev.Stats().Presents)

	require.NoError(t, EmptyRenderer{}.Render(ctx))
	assert.Equal(t, 1, dev.Stats().Presents)
}
