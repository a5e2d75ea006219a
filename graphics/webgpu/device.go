// Package webgpu implements graphics.Device on top of wgpu-native.
package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/rhachis/graphics"
)

type Options struct {
	Label           string
	PowerPreference graphics.PowerPreference
}

// Device owns the wgpu instance, surface, adapter, device and queue.
type Device struct {
	instance      *wgpu.Instance
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	configured    bool
}

var _ graphics.Device = (*Device)(nil)

// New wraps the window surface described by surfaceDesc and picks an
// adapter able to present to it.
func New(surfaceDesc *wgpu.SurfaceDescriptor, opts Options) (*Device, error) {
	if opts.Label == "" {
		opts.Label = "Main Device"
	}
	instance := wgpu.CreateInstance(nil)
	// wraps the window into a wgpu surface.
	surface := instance.CreateSurface(surfaceDesc)
	if surface == nil {
		instance.Release()
		return nil, fmt.Errorf("create surface failed")
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpuPowerPreference(opts.PowerPreference),
	})
	if err != nil {
		surface.Release()
		instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: opts.Label})
	if err != nil {
		adapter.Release()
		surface.Release()
		instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}

	d := &Device{
		instance: instance,
		surface:  surface,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
	}

	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		d.Release()
		return nil, fmt.Errorf("surface reports no formats")
	}
	d.surfaceFormat = caps.Formats[0]
	for _, f := range caps.Formats {
		if fromWgpuTextureFormat(f) != graphics.FormatUndefined {
			d.surfaceFormat = f
			break
		}
	}
	if fromWgpuTextureFormat(d.surfaceFormat) == graphics.FormatUndefined {
		d.Release()
		return nil, fmt.Errorf("no supported surface format in %v", caps.Formats)
	}
	if len(caps.AlphaModes) > 0 {
		d.alphaMode = caps.AlphaModes[0]
	}
	return d, nil
}

func (d *Device) PreferredFormat() graphics.TextureFormat {
	return fromWgpuTextureFormat(d.surfaceFormat)
}

func (d *Device) Configure(cfg graphics.SurfaceConfig) error {
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("zero-sized surface %dx%d", cfg.Width, cfg.Height)
	}
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      wgpuTextureFormat(cfg.Format),
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: wgpuPresentMode(cfg.PresentMode),
		AlphaMode:   d.alphaMode,
	})
	d.configured = true
	return nil
}

func (d *Device) AcquireSurfaceTexture() (graphics.SurfaceTexture, error) {
	if !d.configured {
		return nil, fmt.Errorf("%w: surface not configured", graphics.ErrSurfaceLost)
	}
	tex, err := d.surface.GetCurrentTexture()
	if err != nil {
		return nil, classifyAcquire(err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &surfaceTexture{texture: tex, view: view}, nil
}

func (d *Device) Present() {
	d.surface.Present()
}

func (d *Device) CreateBuffer(desc graphics.BufferDescriptor) (graphics.Buffer, error) {
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: wgpuBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, err
	}
	return &buffer{buf: buf, size: desc.Size}, nil
}

func (d *Device) WriteBuffer(b graphics.Buffer, offset uint64, data []byte) error {
	buf, ok := b.(*buffer)
	if !ok {
		return errForeignHandle
	}
	return d.queue.WriteBuffer(buf.buf, offset, data)
}

func (d *Device) CreateTexture(desc graphics.TextureDescriptor) (graphics.Texture, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpuTextureFormat(desc.Format),
		Usage:         wgpuTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &texture{texture: tex, view: view, desc: desc}, nil
}

func (d *Device) WriteTexture(t graphics.Texture, data []byte) error {
	tex, ok := t.(*texture)
	if !ok {
		return errForeignHandle
	}
	extent := wgpu.Extent3D{Width: tex.desc.Width, Height: tex.desc.Height, DepthOrArrayLayers: 1}
	return d.queue.WriteTexture(
		tex.texture.AsImageCopy(),
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  tex.desc.Width * tex.desc.Format.BytesPerPixel(),
			RowsPerImage: tex.desc.Height,
		},
		&extent,
	)
}

func (d *Device) CreateSampler(desc graphics.SamplerDescriptor) (graphics.Sampler, error) {
	filter, mipmap := wgpuFilterMode(desc.Filter)
	wrap := wgpuWrapMode(desc.Address)
	s, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  wrap,
		AddressModeV:  wrap,
		AddressModeW:  wrap,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  mipmap,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}
	return &sampler{sampler: s}, nil
}

func (d *Device) CreateRenderPipeline(desc graphics.RenderPipelineDescriptor) (graphics.RenderPipeline, error) {
	shader, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.Source},
	})
	if err != nil {
		return nil, err
	}
	defer shader.Release()

	target := wgpu.ColorTargetState{
		Format:    wgpuTextureFormat(desc.TargetFormat),
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if desc.Blend {
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}
	cull := wgpu.CullModeNone
	if desc.Cull == graphics.CullBack {
		cull = wgpu.CullModeBack
	}

	var depth *wgpu.DepthStencilState
	if desc.DepthFormat != graphics.FormatUndefined {
		depth = &wgpu.DepthStencilState{
			Format:            wgpuTextureFormat(desc.DepthFormat),
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: desc.Label,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: desc.VertexEntry,
			Buffers:    wgpuVertexLayouts(desc.Layouts),
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: desc.FragmentEntry,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cull,
		},
		DepthStencil: depth,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	return &pipeline{pipeline: p}, nil
}

// CreateBindGroup uses the layout wgpu derived for group when the pipeline
// was created.
func (d *Device) CreateBindGroup(p graphics.RenderPipeline, group uint32, entries []graphics.BindGroupEntry) (graphics.BindGroup, error) {
	pl, ok := p.(*pipeline)
	if !ok {
		return nil, errForeignHandle
	}
	layout := pl.pipeline.GetBindGroupLayout(group)
	defer layout.Release()

	wentries := make([]wgpu.BindGroupEntry, 0, len(entries))
	for _, e := range entries {
		we := wgpu.BindGroupEntry{Binding: e.Binding}
		switch e.Kind() {
		case graphics.BindingTexture:
			tex, ok := e.Texture.(*texture)
			if !ok {
				return nil, errForeignHandle
			}
			we.TextureView = tex.view
		case graphics.BindingSampler:
			s, ok := e.Sampler.(*sampler)
			if !ok {
				return nil, errForeignHandle
			}
			we.Sampler = s.sampler
		default:
			buf, ok := e.Buffer.(*buffer)
			if !ok {
				return nil, errForeignHandle
			}
			we.Buffer = buf.buf
			we.Size = wgpu.WholeSize
		}
		wentries = append(wentries, we)
	}

	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  layout,
		Entries: wentries,
	})
	if err != nil {
		return nil, err
	}
	return &bindGroup{group: bg}, nil
}

func (d *Device) CreateCommandEncoder() (graphics.CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	return &encoder{encoder: enc}, nil
}

func (d *Device) Submit(cmds ...graphics.CommandBuffer) {
	buffers := make([]*wgpu.CommandBuffer, 0, len(cmds))
	for _, c := range cmds {
		if cb, ok := c.(*commandBuffer); ok {
			buffers = append(buffers, cb.buf)
		}
	}
	d.queue.Submit(buffers...)
}

func (d *Device) Release() {
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
