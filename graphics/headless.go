package graphics

import (
	"fmt"
	"sort"
	"sync"
)

// HeadlessStats counts what a HeadlessDevice has been asked to do.
type HeadlessStats struct {
	Configures   int
	Acquires     int
	Presents     int
	Submits      int
	Allocations  int
	LiveHandles  int
	Passes       int
	Clears       int
	Draws        int
	BufferWrites int
}

// DrawRecord is one recorded DrawIndexed call.
type DrawRecord struct {
	Pipeline      string
	IndexCount    uint32
	InstanceCount uint32
	BindGroups    []uint32
	VertexBuffers map[uint32]Buffer
}

// PassRecord is one recorded render pass.
type PassRecord struct {
	Label   string
	Clear   *Color
	Depth   bool
	Draws   []DrawRecord
	Surface bool
}

// HeadlessDevice is an in-memory Device. It keeps buffer contents so tests
// can inspect uploads, and can be told to fail upcoming operations.
type HeadlessDevice struct {
	mu sync.Mutex

	format    TextureFormat
	config    SurfaceConfig
	stats     HeadlessStats
	passes    []PassRecord
	released  bool
	acquireQ  []error
	configErr error
	writeErr  error
}

func NewHeadlessDevice() *HeadlessDevice {
	return &HeadlessDevice{format: FormatBGRA8UnormSrgb}
}

// FailAcquire queues errors returned by the next AcquireSurfaceTexture calls,
// one per call. A nil entry lets that call succeed.
func (d *HeadlessDevice) FailAcquire(errs ...error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acquireQ = append(d.acquireQ, errs...)
}

// FailConfigure makes the next Configure call return err.
func (d *HeadlessDevice) FailConfigure(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.configErr = err
}

// FailWrite makes the next WriteBuffer or WriteTexture call return err.
func (d *HeadlessDevice) FailWrite(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeErr = err
}

func (d *HeadlessDevice) takeWriteErr() error {
	err := d.writeErr
	d.writeErr = nil
	return err
}

func (d *HeadlessDevice) Stats() HeadlessStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *HeadlessDevice) Config() SurfaceConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config
}

func (d *HeadlessDevice) Passes() []PassRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]PassRecord(nil), d.passes...)
}

func (d *HeadlessDevice) Released() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released
}

// BufferData returns a copy of the bytes last written to buf.
func (d *HeadlessDevice) BufferData(buf Buffer) []byte {
	b, ok := buf.(*headlessBuffer)
	if !ok {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), b.data...)
}

func (d *HeadlessDevice) PreferredFormat() TextureFormat { return d.format }

func (d *HeadlessDevice) Configure(cfg SurfaceConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.configErr != nil {
		err := d.configErr
		d.configErr = nil
		return err
	}
	d.stats.Configures++
	d.config = cfg
	return nil
}

func (d *HeadlessDevice) AcquireSurfaceTexture() (SurfaceTexture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Acquires++
	if len(d.acquireQ) > 0 {
		err := d.acquireQ[0]
		d.acquireQ = d.acquireQ[1:]
		if err != nil {
			return nil, err
		}
	}
	return &headlessHandle{dev: d, kind: "surface"}, nil
}

func (d *HeadlessDevice) Present() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Presents++
}

func (d *HeadlessDevice) alloc() {
	d.stats.Allocations++
	d.stats.LiveHandles++
}

func (d *HeadlessDevice) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if desc.Size == 0 {
		return nil, fmt.Errorf("buffer %q: zero size", desc.Label)
	}
	d.alloc()
	return &headlessBuffer{headlessHandle: headlessHandle{dev: d, kind: "buffer", label: desc.Label}, size: desc.Size}, nil
}

func (d *HeadlessDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*headlessBuffer)
	if !ok {
		return fmt.Errorf("foreign buffer %T", buf)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeWriteErr(); err != nil {
		return err
	}
	if b.released {
		return fmt.Errorf("buffer %q: %w", b.label, ErrReleased)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("buffer %q: write of %d bytes at %d overflows size %d", b.label, len(data), offset, b.size)
	}
	if b.data == nil {
		b.data = make([]byte, b.size)
	}
	copy(b.data[offset:], data)
	d.stats.BufferWrites++
	return nil
}

func (d *HeadlessDevice) CreateTexture(desc TextureDescriptor) (Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("texture %q: zero size", desc.Label)
	}
	d.alloc()
	return &headlessTexture{headlessHandle: headlessHandle{dev: d, kind: "texture", label: desc.Label}, desc: desc}, nil
}

func (d *HeadlessDevice) WriteTexture(tex Texture, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.takeWriteErr(); err != nil {
		return err
	}
	want := uint64(tex.Width()) * uint64(tex.Height()) * uint64(tex.Format().BytesPerPixel())
	if uint64(len(data)) != want {
		return fmt.Errorf("texture write: got %d bytes, want %d", len(data), want)
	}
	return nil
}

func (d *HeadlessDevice) CreateSampler(desc SamplerDescriptor) (Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alloc()
	return &headlessHandle{dev: d, kind: "sampler", label: desc.Label}, nil
}

func (d *HeadlessDevice) CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alloc()
	return &headlessHandle{dev: d, kind: "pipeline", label: desc.Label}, nil
}

func (d *HeadlessDevice) CreateBindGroup(p RenderPipeline, group uint32, entries []BindGroupEntry) (BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alloc()
	return &headlessBindGroup{headlessHandle: headlessHandle{dev: d, kind: "bind group"}, group: group}, nil
}

func (d *HeadlessDevice) CreateCommandEncoder() (CommandEncoder, error) {
	return &headlessEncoder{dev: d}, nil
}

func (d *HeadlessDevice) Submit(cmds ...CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Submits += len(cmds)
	for _, c := range cmds {
		if e, ok := c.(*headlessCommands); ok {
			d.passes = append(d.passes, e.passes...)
			d.stats.Passes += len(e.passes)
			for _, p := range e.passes {
				if p.Clear != nil {
					d.stats.Clears++
				}
				d.stats.Draws += len(p.Draws)
			}
		}
	}
}

func (d *HeadlessDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
}

type headlessHandle struct {
	dev      *HeadlessDevice
	kind     string
	label    string
	released bool
}

func (h *headlessHandle) Release() {
	h.dev.mu.Lock()
	defer h.dev.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	if h.kind != "surface" {
		h.dev.stats.LiveHandles--
	}
}

type headlessBuffer struct {
	headlessHandle
	size uint64
	data []byte
}

func (b *headlessBuffer) Size() uint64 { return b.size }

type headlessTexture struct {
	headlessHandle
	desc TextureDescriptor
}

func (t *headlessTexture) Width() uint32         { return t.desc.Width }
func (t *headlessTexture) Height() uint32        { return t.desc.Height }
func (t *headlessTexture) Format() TextureFormat { return t.desc.Format }

type headlessBindGroup struct {
	headlessHandle
	group uint32
}

type headlessEncoder struct {
	dev    *HeadlessDevice
	passes []PassRecord
	open   *headlessPass
}

func (e *headlessEncoder) BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error) {
	if e.open != nil {
		return nil, fmt.Errorf("render pass %q still open", e.open.record.Label)
	}
	if desc.Target == nil {
		return nil, fmt.Errorf("render pass %q: no target", desc.Label)
	}
	var clear *Color
	if desc.Clear != nil {
		c := *desc.Clear
		clear = &c
	}
	h, ok := desc.Target.(*headlessHandle)
	surface := ok && h.kind == "surface"
	e.open = &headlessPass{enc: e, record: PassRecord{Label: desc.Label, Clear: clear, Depth: desc.Depth != nil, Surface: surface}}
	return e.open, nil
}

func (e *headlessEncoder) Finish() (CommandBuffer, error) {
	if e.open != nil {
		return nil, fmt.Errorf("render pass %q not ended", e.open.record.Label)
	}
	return &headlessCommands{passes: e.passes}, nil
}

func (e *headlessEncoder) Release() {}

type headlessCommands struct {
	passes []PassRecord
}

func (c *headlessCommands) Release() {}

type headlessPass struct {
	enc      *headlessEncoder
	record   PassRecord
	pipeline string
	groups   map[uint32]bool
	vertex   map[uint32]Buffer
	index    Buffer
}

func (p *headlessPass) SetPipeline(pl RenderPipeline) {
	if h, ok := pl.(*headlessHandle); ok {
		p.pipeline = h.label
	}
}

func (p *headlessPass) SetBindGroup(index uint32, group BindGroup) {
	if p.groups == nil {
		p.groups = map[uint32]bool{}
	}
	p.groups[index] = group != nil
}

func (p *headlessPass) SetVertexBuffer(slot uint32, buf Buffer) {
	if p.vertex == nil {
		p.vertex = map[uint32]Buffer{}
	}
	p.vertex[slot] = buf
}

func (p *headlessPass) SetIndexBuffer(buf Buffer, format IndexFormat) {
	p.index = buf
}

func (p *headlessPass) DrawIndexed(indexCount, instanceCount uint32) {
	var groups []uint32
	for g, set := range p.groups {
		if set {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	vertex := map[uint32]Buffer{}
	for k, v := range p.vertex {
		vertex[k] = v
	}
	p.record.Draws = append(p.record.Draws, DrawRecord{
		Pipeline:      p.pipeline,
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		BindGroups:    groups,
		VertexBuffers: vertex,
	})
}

func (p *headlessPass) End() error {
	if p.enc.open != p {
		return fmt.Errorf("render pass %q ended twice", p.record.Label)
	}
	p.enc.passes = append(p.enc.passes, p.record)
	p.enc.open = nil
	return nil
}
