package graphics

import (
	"fmt"

	"github.com/google/uuid"
)

type ResourceID string

func makeResourceID() ResourceID {
	return ResourceID(uuid.NewString())
}

type resourceEntry struct {
	id     ResourceID
	kind   string
	label  string
	handle Handle
}

// Resources is an ownership pool: every handle it creates is released with
// it, newest first. Pools register with their GpuContext so nothing they
// hold can outlive the device.
type Resources struct {
	id       ResourceID
	label    string
	ctx      *GpuContext
	entries  []resourceEntry
	released bool
}

func (r *Resources) ID() ResourceID { return r.id }

func (r *Resources) Label() string { return r.label }

// Len is the number of live handles in the pool.
func (r *Resources) Len() int { return len(r.entries) }

func (r *Resources) track(kind, label string, h Handle) {
	r.entries = append(r.entries, resourceEntry{id: makeResourceID(), kind: kind, label: label, handle: h})
}

func (r *Resources) device() (Device, error) {
	if r.released {
		return nil, fmt.Errorf("pool %q: %w", r.label, ErrReleased)
	}
	return r.ctx.device, nil
}

func (r *Resources) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	dev, err := r.device()
	if err != nil {
		return nil, err
	}
	buf, err := dev.CreateBuffer(desc)
	if err != nil {
		return nil, &DeviceError{Op: "create buffer " + desc.Label, Err: err}
	}
	r.track("buffer", desc.Label, buf)
	return buf, nil
}

// CreateBufferInit allocates a buffer sized to data and uploads it.
func (r *Resources) CreateBufferInit(label string, usage BufferUsage, data []byte) (Buffer, error) {
	size := uint64(len(data))
	// wgpu requires mapped writes to be 4-byte aligned.
	if rem := size % 4; rem != 0 {
		size += 4 - rem
	}
	buf, err := r.CreateBuffer(BufferDescriptor{Label: label, Size: size, Usage: usage | BufferUsageCopyDst})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return buf, nil
	}
	padded := data
	if uint64(len(data)) != size {
		padded = make([]byte, size)
		copy(padded, data)
	}
	if err := r.ctx.device.WriteBuffer(buf, 0, padded); err != nil {
		r.Free(buf)
		return nil, &DeviceError{Op: "write buffer " + label, Err: err}
	}
	return buf, nil
}

func (r *Resources) CreateTexture(desc TextureDescriptor) (Texture, error) {
	dev, err := r.device()
	if err != nil {
		return nil, err
	}
	tex, err := dev.CreateTexture(desc)
	if err != nil {
		return nil, &DeviceError{Op: "create texture " + desc.Label, Err: err}
	}
	r.track("texture", desc.Label, tex)
	return tex, nil
}

func (r *Resources) CreateSampler(desc SamplerDescriptor) (Sampler, error) {
	dev, err := r.device()
	if err != nil {
		return nil, err
	}
	s, err := dev.CreateSampler(desc)
	if err != nil {
		return nil, &DeviceError{Op: "create sampler " + desc.Label, Err: err}
	}
	r.track("sampler", desc.Label, s)
	return s, nil
}

func (r *Resources) CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error) {
	dev, err := r.device()
	if err != nil {
		return nil, err
	}
	p, err := dev.CreateRenderPipeline(desc)
	if err != nil {
		return nil, &DeviceError{Op: "create pipeline " + desc.Label, Err: err}
	}
	r.track("pipeline", desc.Label, p)
	return p, nil
}

func (r *Resources) CreateBindGroup(label string, p RenderPipeline, group uint32, entries []BindGroupEntry) (BindGroup, error) {
	dev, err := r.device()
	if err != nil {
		return nil, err
	}
	bg, err := dev.CreateBindGroup(p, group, entries)
	if err != nil {
		return nil, &DeviceError{Op: "create bind group " + label, Err: err}
	}
	r.track("bind group", label, bg)
	return bg, nil
}

// Free releases a single handle early. Handles the pool does not own are
// left alone.
func (r *Resources) Free(h Handle) bool {
	for i, e := range r.entries {
		if e.handle == h {
			e.handle.Release()
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Release frees every handle in reverse creation order. Safe to call twice.
func (r *Resources) Release() {
	if r.released {
		return
	}
	r.released = true
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		r.ctx.log.Debugf("release %s %q (%s) from pool %q", e.kind, e.label, e.id, r.label)
		e.handle.Release()
	}
	r.entries = nil
	r.ctx.forget(r)
}
