package graphics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (*GpuContext, *HeadlessDevice) {
	t.Helper()
	return newCompilerContext(t, ReflectCompiler{})
}

func newCompilerContext(t *testing.T, compiler ShaderCompiler) (*GpuContext, *HeadlessDevice) {
	t.Helper()
	dev := NewHeadlessDevice()
	ctx, err := NewGpuContext(dev, 800, 600, ContextOptions{Compiler: compiler})
	require.NoError(t, err)
	t.Cleanup(ctx.Release)
	return ctx, dev
}

func TestNewGpuContext_ConfiguresSurface(t *testing.T) {
	ctx, dev := newTestContext(t)

	cfg := ctx.Config()
	assert.Equal(t, uint32(800), cfg.Width)
	assert.Equal(t, uint32(600), cfg.Height)
	assert.Equal(t, FormatBGRA8UnormSrgb, cfg.Format)
	assert.Equal(t, cfg, dev.Config())
	assert.Equal(t, 1, dev.Stats().Configures)
}

func TestNewGpuContext_ZeroSize(t *testing.T) {
	_, err := NewGpuContext(NewHeadlessDevice(), 0, 600, ContextOptions{})

	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, "configure", devErr.Op)
}

func TestGpuContext_ZeroResizeKeepsConfig(t *testing.T) {
	ctx, dev := newTestContext(t)
	before := ctx.Config()

	for _, size := range [][2]uint32{{0, 0}, {0, 600}, {800, 0}} {
		err := ctx.Configure(size[0], size[1])
		var devErr *DeviceError
		require.ErrorAs(t, err, &devErr, "size %v", size)
		assert.Equal(t, before, ctx.Config())
	}
	assert.Equal(t, 1, dev.Stats().Configures)
}

func TestGpuContext_RejectedResizeRestoresConfig(t *testing.T) {
	ctx, dev := newTestContext(t)
	before := ctx.Config()

	dev.FailConfigure(errors.New("unsupported size"))
	err := ctx.Configure(1<<20, 1<<20)

	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, before, ctx.Config())
	assert.Equal(t, before, dev.Config())
}

func TestGpuContext_Resize(t *testing.T) {
	ctx, dev := newTestContext(t)

	require.NoError(t, ctx.Configure(1024, 768))
	assert.Equal(t, uint32(1024), ctx.Config().Width)
	assert.Equal(t, uint32(768), dev.Config().Height)
}

func TestAcquireFrame_SurfaceLostRetriesOnce(t *testing.T) {
	ctx, dev := newTestContext(t)
	dev.FailAcquire(ErrSurfaceLost)

	frame, err := ctx.AcquireFrame()
	require.NoError(t, err)
	frame.Present()

	stats := dev.Stats()
	assert.Equal(t, 2, stats.Acquires)
	assert.Equal(t, 2, stats.Configures, "surface must be reconfigured before the retry")
	assert.Equal(t, 1, stats.Presents)
}

func TestAcquireFrame_SurfaceLostEscalates(t *testing.T) {
	ctx, dev := newTestContext(t)
	// Every attempt, including each retry, loses the surface.
	for i := 0; i < 2*DefaultMaxLostFrames; i++ {
		dev.FailAcquire(ErrSurfaceLost)
	}

	for i := 1; i < DefaultMaxLostFrames; i++ {
		_, err := ctx.AcquireFrame()
		require.Error(t, err)
		assert.False(t, IsFatal(err), "frame %d", i)
		assert.ErrorIs(t, err, ErrSurfaceLost)
	}
	_, err := ctx.AcquireFrame()
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, ErrSurfaceLost)
}

func TestAcquireFrame_SuccessResetsLostCount(t *testing.T) {
	ctx, dev := newTestContext(t)
	dev.FailAcquire(ErrSurfaceLost, ErrSurfaceLost, ErrSurfaceLost, ErrSurfaceLost, nil)

	for i := 0; i < 2; i++ {
		_, err := ctx.AcquireFrame()
		require.Error(t, err)
	}
	frame, err := ctx.AcquireFrame()
	require.NoError(t, err)
	frame.Discard()

	dev.FailAcquire(ErrSurfaceLost, ErrSurfaceLost)
	_, err = ctx.AcquireFrame()
	require.Error(t, err)
	assert.False(t, IsFatal(err))
}

func TestAcquireFrame_TimeoutSkipsFrame(t *testing.T) {
	ctx, dev := newTestContext(t)
	for i := 0; i < 10; i++ {
		dev.FailAcquire(ErrTimeout)
	}

	for i := 0; i < 10; i++ {
		_, err := ctx.AcquireFrame()
		require.ErrorIs(t, err, ErrTimeout)
		assert.False(t, IsFatal(err))
	}
	assert.Equal(t, 1, dev.Stats().Configures, "timeouts do not reconfigure")
}

func TestAcquireFrame_DeviceLostIsFatal(t *testing.T) {
	ctx, dev := newTestContext(t)
	dev.FailAcquire(ErrDeviceLost)

	_, err := ctx.AcquireFrame()
	require.ErrorIs(t, err, ErrDeviceLost)
	assert.True(t, IsFatal(err))
}

func TestGpuContext_ReleaseFreesPoolsNewestFirst(t *testing.T) {
	dev := NewHeadlessDevice()
	ctx, err := NewGpuContext(dev, 64, 64, ContextOptions{Compiler: ReflectCompiler{}})
	require.NoError(t, err)

	first := ctx.NewResources("first")
	_, err = first.CreateBuffer(BufferDescriptor{Label: "a", Size: 16, Usage: BufferUsageUniform})
	require.NoError(t, err)
	second := ctx.NewResources("second")
	_, err = second.CreateSampler(SamplerDescriptor{Label: "s"})
	require.NoError(t, err)
	assert.Equal(t, 2, ctx.LivePools())
	assert.Equal(t, 2, dev.Stats().LiveHandles)

	ctx.Release()
	assert.Equal(t, 0, ctx.LivePools())
	assert.Equal(t, 0, dev.Stats().LiveHandles)
	assert.True(t, dev.Released())

	_, err = ctx.AcquireFrame()
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, ctx.Configure(10, 10), ErrReleased)

	// A pool created after release cannot allocate.
	late := ctx.NewResources("late")
	_, err = late.CreateBuffer(BufferDescriptor{Label: "b", Size: 4})
	assert.ErrorIs(t, err, ErrReleased)
}

func TestResources_FreeAndRelease(t *testing.T) {
	ctx, dev := newTestContext(t)
	res := ctx.NewResources("pool")

	a, err := res.CreateBuffer(BufferDescriptor{Label: "a", Size: 4})
	require.NoError(t, err)
	_, err = res.CreateBufferInit("b", BufferUsageVertex, []byte{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Len())

	assert.True(t, res.Free(a))
	assert.False(t, res.Free(a))
	assert.Equal(t, 1, res.Len())
	assert.Equal(t, 1, dev.Stats().LiveHandles)

	res.Release()
	res.Release()
	assert.Equal(t, 0, dev.Stats().LiveHandles)
	assert.Equal(t, 0, ctx.LivePools())
}

func TestResources_CreateBufferInitPads(t *testing.T) {
	ctx, dev := newTestContext(t)
	res := ctx.NewResources("pool")

	buf, err := res.CreateBufferInit("odd", BufferUsageVertex, []byte{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, uint64(8), buf.Size())
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 0, 0, 0}, dev.BufferData(buf))
}

func TestResources_CreateBufferInitWriteFailureFreesBuffer(t *testing.T) {
	ctx, dev := newTestContext(t)
	res := ctx.NewResources("pool")
	defer res.Release()
	dev.FailWrite(errors.New("queue full"))

	_, err := res.CreateBufferInit("doomed", BufferUsageVertex, []byte{1, 2, 3, 4})

	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, "write buffer doomed", devErr.Op)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, 0, dev.Stats().LiveHandles)

	buf, err := res.CreateBufferInit("retry", BufferUsageVertex, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, dev.BufferData(buf))
}

func TestBeginFrame_CountsDraws(t *testing.T) {
	ctx, dev := newTestContext(t)

	frame, err := ctx.BeginFrame(PassOptions{Label: "test", Clear: &Black})
	require.NoError(t, err)
	frame.Pass().DrawIndexed(3, 1)
	frame.Pass().DrawIndexed(6, 2)
	assert.Equal(t, 2, frame.Draws())
	require.NoError(t, frame.End())

	assert.Equal(t, 2, ctx.LastFrameDraws())
	passes := dev.Passes()
	require.Len(t, passes, 1)
	assert.True(t, passes[0].Surface)
	assert.Equal(t, Black, *passes[0].Clear)
	assert.Len(t, passes[0].Draws, 2)
	assert.Equal(t, 1, dev.Stats().Presents)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"device lost", ErrDeviceLost, true},
		{"out of memory", &DeviceError{Op: "create buffer", Err: ErrOutOfMemory}, true},
		{"released", ErrReleased, true},
		{"surface lost", ErrSurfaceLost, false},
		{"timeout", ErrTimeout, false},
		{"unknown", errors.New("something odd"), false},
		{"already fatal", NewFatal(errors.New("x")), true},
		{"already recoverable", NewRecoverable(ErrDeviceLost), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
	assert.Nil(t, Classify(nil))
}
