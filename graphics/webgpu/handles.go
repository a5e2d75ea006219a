package webgpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/rhachis/graphics"
)

type buffer struct {
	buf  *wgpu.Buffer
	size uint64
}

func (b *buffer) Size() uint64 { return b.size }
func (b *buffer) Release()     { b.buf.Release() }

type texture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	desc    graphics.TextureDescriptor
}

func (t *texture) Width() uint32                  { return t.desc.Width }
func (t *texture) Height() uint32                 { return t.desc.Height }
func (t *texture) Format() graphics.TextureFormat { return t.desc.Format }

func (t *texture) Release() {
	t.view.Release()
	t.texture.Release()
}

type surfaceTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (s *surfaceTexture) Release() {
	s.view.Release()
	s.texture.Release()
}

type sampler struct{ sampler *wgpu.Sampler }

func (s *sampler) Release() { s.sampler.Release() }

type bindGroup struct{ group *wgpu.BindGroup }

func (b *bindGroup) Release() { b.group.Release() }

type pipeline struct{ pipeline *wgpu.RenderPipeline }

func (p *pipeline) Release() { p.pipeline.Release() }

type commandBuffer struct{ buf *wgpu.CommandBuffer }

func (c *commandBuffer) Release() { c.buf.Release() }

type encoder struct{ encoder *wgpu.CommandEncoder }

func (e *encoder) Release() { e.encoder.Release() }

func (e *encoder) BeginRenderPass(desc graphics.RenderPassDescriptor) (graphics.RenderPass, error) {
	var view *wgpu.TextureView
	switch t := desc.Target.(type) {
	case *surfaceTexture:
		view = t.view
	case *texture:
		view = t.view
	default:
		return nil, errForeignHandle
	}

	attachment := wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  wgpu.LoadOpLoad,
		StoreOp: wgpu.StoreOpStore,
	}
	if desc.Clear != nil {
		attachment.LoadOp = wgpu.LoadOpClear
		attachment.ClearValue = wgpu.Color{R: desc.Clear.R, G: desc.Clear.G, B: desc.Clear.B, A: desc.Clear.A}
	}
	rp := &wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{attachment},
	}
	if desc.Depth != nil {
		depth, ok := desc.Depth.(*texture)
		if !ok {
			return nil, errForeignHandle
		}
		rp.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            depth.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: desc.ClearDepth,
		}
	}
	return &renderPass{pass: e.encoder.BeginRenderPass(rp)}, nil
}

func (e *encoder) Finish() (graphics.CommandBuffer, error) {
	buf, err := e.encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	return &commandBuffer{buf: buf}, nil
}

type renderPass struct{ pass *wgpu.RenderPassEncoder }

func (p *renderPass) SetPipeline(pl graphics.RenderPipeline) {
	p.pass.SetPipeline(pl.(*pipeline).pipeline)
}

func (p *renderPass) SetBindGroup(index uint32, group graphics.BindGroup) {
	p.pass.SetBindGroup(index, group.(*bindGroup).group, nil)
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf graphics.Buffer) {
	p.pass.SetVertexBuffer(slot, buf.(*buffer).buf, 0, wgpu.WholeSize)
}

func (p *renderPass) SetIndexBuffer(buf graphics.Buffer, format graphics.IndexFormat) {
	p.pass.SetIndexBuffer(buf.(*buffer).buf, wgpuIndexFormat(format), 0, wgpu.WholeSize)
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
}

func (p *renderPass) End() error {
	defer p.pass.Release()
	return p.pass.End()
}
