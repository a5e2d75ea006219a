package graphics

import "fmt"

// Device is the backend surface the runtime talks to. WgpuDevice drives real
// hardware; HeadlessDevice records calls for tests and offscreen runs.
type Device interface {
	PreferredFormat() TextureFormat
	Configure(cfg SurfaceConfig) error
	AcquireSurfaceTexture() (SurfaceTexture, error)
	Present()

	CreateBuffer(desc BufferDescriptor) (Buffer, error)
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
	CreateTexture(desc TextureDescriptor) (Texture, error)
	WriteTexture(tex Texture, data []byte) error
	CreateSampler(desc SamplerDescriptor) (Sampler, error)
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)
	CreateBindGroup(pipeline RenderPipeline, group uint32, entries []BindGroupEntry) (BindGroup, error)

	CreateCommandEncoder() (CommandEncoder, error)
	Submit(cmds ...CommandBuffer)

	Release()
}

// Handle is anything backed by a GPU allocation.
type Handle interface {
	Release()
}

type Buffer interface {
	Handle
	Size() uint64
}

// Texture doubles as its own default view when used as a render target.
type Texture interface {
	Handle
	Width() uint32
	Height() uint32
	Format() TextureFormat
}

type Sampler interface{ Handle }

type BindGroup interface{ Handle }

type RenderPipeline interface{ Handle }

// SurfaceTexture is the swapchain image acquired for one frame.
type SurfaceTexture interface{ Handle }

type CommandBuffer interface{ Handle }

type CommandEncoder interface {
	Handle
	BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error)
	Finish() (CommandBuffer, error)
}

type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, group BindGroup)
	SetVertexBuffer(slot uint32, buf Buffer)
	SetIndexBuffer(buf Buffer, format IndexFormat)
	DrawIndexed(indexCount, instanceCount uint32)
	End() error
}

type TextureFormat int

const (
	FormatUndefined TextureFormat = iota
	FormatBGRA8Unorm
	FormatBGRA8UnormSrgb
	FormatRGBA8Unorm
	FormatRGBA8UnormSrgb
	FormatDepth32Float
)

func (f TextureFormat) BytesPerPixel() uint32 {
	switch f {
	case FormatBGRA8Unorm, FormatBGRA8UnormSrgb, FormatRGBA8Unorm, FormatRGBA8UnormSrgb, FormatDepth32Float:
		return 4
	}
	return 0
}

func (f TextureFormat) String() string {
	switch f {
	case FormatBGRA8Unorm:
		return "bgra8unorm"
	case FormatBGRA8UnormSrgb:
		return "bgra8unorm-srgb"
	case FormatRGBA8Unorm:
		return "rgba8unorm"
	case FormatRGBA8UnormSrgb:
		return "rgba8unorm-srgb"
	case FormatDepth32Float:
		return "depth32float"
	}
	return "undefined"
}

type PresentMode int

const (
	PresentModeFifo PresentMode = iota
	PresentModeMailbox
	PresentModeImmediate
)

func ParsePresentMode(name string) (PresentMode, error) {
	switch name {
	case "", "fifo", "vsync":
		return PresentModeFifo, nil
	case "mailbox":
		return PresentModeMailbox, nil
	case "immediate":
		return PresentModeImmediate, nil
	}
	return PresentModeFifo, fmt.Errorf("unknown present mode %q", name)
}

type PowerPreference int

const (
	PowerHighPerformance PowerPreference = iota
	PowerLowPower
)

func ParsePowerPreference(name string) (PowerPreference, error) {
	switch name {
	case "", "high", "high-performance", "high_performance":
		return PowerHighPerformance, nil
	case "low", "low-power", "low_power":
		return PowerLowPower, nil
	}
	return PowerHighPerformance, fmt.Errorf("unknown power preference %q", name)
}

// SurfaceConfig is the swapchain configuration owned by a GpuContext.
type SurfaceConfig struct {
	Format      TextureFormat
	Width       uint32
	Height      uint32
	PresentMode PresentMode
}

type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageCopyDst
)

type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

type TextureUsage uint32

const (
	TextureUsageBinding TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageRenderAttachment
)

type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	Format TextureFormat
	Usage  TextureUsage
}

type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

type AddressMode int

const (
	AddressClamp AddressMode = iota
	AddressRepeat
	AddressMirror
)

type SamplerDescriptor struct {
	Label   string
	Filter  FilterMode
	Address AddressMode
}

type IndexFormat int

const (
	IndexUint16 IndexFormat = iota
	IndexUint32
)

type CullMode int

const (
	CullNone CullMode = iota
	CullBack
)

// RenderPipelineDescriptor is the backend-level pipeline request. Layout
// validation happens in NewPipeline before one of these is ever built.
type RenderPipelineDescriptor struct {
	Label         string
	Source        string
	VertexEntry   string
	FragmentEntry string
	Layouts       []VertexLayout
	TargetFormat  TextureFormat
	// FormatUndefined disables depth testing.
	DepthFormat TextureFormat
	Cull        CullMode
	Blend       bool
}

type BindGroupEntry struct {
	Binding uint32
	Buffer  Buffer
	Texture Texture
	Sampler Sampler
}

func (e BindGroupEntry) Kind() BindingKind {
	switch {
	case e.Texture != nil:
		return BindingTexture
	case e.Sampler != nil:
		return BindingSampler
	}
	return BindingBuffer
}

type Color struct {
	R, G, B, A float64
}

var Black = Color{A: 1}

// RenderPassDescriptor targets either the acquired surface texture or an
// offscreen texture. A nil Clear loads the previous contents.
type RenderPassDescriptor struct {
	Label      string
	Target     Handle
	Clear      *Color
	Depth      Texture
	ClearDepth float32
}
