package graphics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is scale, then rotation, then translation.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) WithTranslation(v mgl32.Vec3) Transform {
	t.Translation = v
	return t
}

func (t Transform) WithRotation(q mgl32.Quat) Transform {
	t.Rotation = q
	return t
}

func (t Transform) WithScale(v mgl32.Vec3) Transform {
	t.Scale = v
	return t
}

// Matrix is T * R * S.
func (t Transform) Matrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(t.Rotation.Normalize().Mat4()).Mul4(scale)
}

// Inverse is inv(S) * inv(R) * inv(T). Zero scale components have no inverse.
func (t Transform) Inverse() mgl32.Mat4 {
	invScale := mgl32.Scale3D(1/t.Scale.X(), 1/t.Scale.Y(), 1/t.Scale.Z())
	invRotate := t.Rotation.Normalize().Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Translation.X(), -t.Translation.Y(), -t.Translation.Z())
	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

// Apply transforms p step by step without building a matrix.
func (t Transform) Apply(p mgl32.Vec3) mgl32.Vec3 {
	scaled := mgl32.Vec3{p.X() * t.Scale.X(), p.Y() * t.Scale.Y(), p.Z() * t.Scale.Z()}
	return t.Rotation.Normalize().Rotate(scaled).Add(t.Translation)
}

// Instance is one placement of a model. Its matrix is rebuilt only when read
// after a change.
type Instance struct {
	transform Transform
	matrix    mgl32.Mat4
	custom    bool
	dirty     bool
}

func NewInstance(t Transform) *Instance {
	return &Instance{transform: t, dirty: true}
}

func (i *Instance) Transform() Transform { return i.transform }

func (i *Instance) SetTransform(t Transform) {
	i.transform = t
	i.custom = false
	i.dirty = true
}

func (i *Instance) SetTranslation(v mgl32.Vec3) {
	i.transform.Translation = v
	i.custom = false
	i.dirty = true
}

func (i *Instance) SetRotation(q mgl32.Quat) {
	i.transform.Rotation = q
	i.custom = false
	i.dirty = true
}

func (i *Instance) SetScale(v mgl32.Vec3) {
	i.transform.Scale = v
	i.custom = false
	i.dirty = true
}

// SetMatrix places the instance with an arbitrary affine matrix, including
// shear. The Transform fields are left as they were.
func (i *Instance) SetMatrix(m mgl32.Mat4) {
	i.matrix = m
	i.custom = true
	i.dirty = true
}

func (i *Instance) Dirty() bool { return i.dirty }

func (i *Instance) Matrix() mgl32.Mat4 {
	if i.dirty && !i.custom {
		i.matrix = i.transform.Matrix()
	}
	return i.matrix
}

func (i *Instance) clean() mgl32.Mat4 {
	m := i.Matrix()
	i.dirty = false
	return m
}

// PackMatrix splits m into the four column vectors bound at locations 2-5.
func PackMatrix(m mgl32.Mat4) [4]mgl32.Vec4 {
	return [4]mgl32.Vec4{m.Col(0), m.Col(1), m.Col(2), m.Col(3)}
}

// InstanceBuffer holds instances in insertion order and mirrors their
// matrices into one of two GPU buffers, alternating on each upload so a
// frame still in flight keeps reading the previous one.
type InstanceBuffer struct {
	label     string
	res       *Resources
	instances []*Instance
	buffers   [2]Buffer
	current   int
	changed   bool
	scratch   []mgl32.Mat4
	uploads   int
}

func NewInstanceBuffer(res *Resources, label string) *InstanceBuffer {
	return &InstanceBuffer{label: label, res: res, changed: true}
}

func (b *InstanceBuffer) Len() int { return len(b.instances) }

// Instances returns the live slice; callers may mutate instances but not
// reorder it.
func (b *InstanceBuffer) Instances() []*Instance { return b.instances }

func (b *InstanceBuffer) At(i int) *Instance { return b.instances[i] }

func (b *InstanceBuffer) Add(t Transform) *Instance {
	inst := NewInstance(t)
	b.instances = append(b.instances, inst)
	b.changed = true
	return inst
}

func (b *InstanceBuffer) AddInstance(inst *Instance) {
	inst.dirty = true
	b.instances = append(b.instances, inst)
	b.changed = true
}

// Remove drops inst while keeping the order of the rest.
func (b *InstanceBuffer) Remove(inst *Instance) bool {
	for i, it := range b.instances {
		if it == inst {
			b.instances = append(b.instances[:i], b.instances[i+1:]...)
			b.changed = true
			return true
		}
	}
	return false
}

func (b *InstanceBuffer) Clear() {
	b.instances = nil
	b.changed = true
}

// Set replaces all instances with one per transform.
func (b *InstanceBuffer) Set(transforms []Transform) {
	b.instances = b.instances[:0]
	for _, t := range transforms {
		b.instances = append(b.instances, NewInstance(t))
	}
	b.changed = true
}

// Modify calls fn for every instance in order.
func (b *InstanceBuffer) Modify(fn func(i int, inst *Instance)) {
	for i, inst := range b.instances {
		fn(i, inst)
	}
}

// Dirty reports whether the next Sync will upload.
func (b *InstanceBuffer) Dirty() bool {
	if b.changed {
		return true
	}
	for _, inst := range b.instances {
		if inst.dirty {
			return true
		}
	}
	return false
}

// Uploads is the number of times Sync wrote to the GPU.
func (b *InstanceBuffer) Uploads() int { return b.uploads }

// Buffer is the GPU buffer holding the latest upload.
func (b *InstanceBuffer) Buffer() Buffer { return b.buffers[b.current] }

// Sync uploads every matrix when anything changed since the last upload.
// Buffers grow to the next power of two when the instance count outgrows
// them.
func (b *InstanceBuffer) Sync() error {
	if !b.Dirty() || len(b.instances) == 0 {
		return nil
	}

	next := 1 - b.current
	need := uint64(len(b.instances)) * instanceStride
	if buf := b.buffers[next]; buf == nil || buf.Size() < need {
		if buf != nil {
			b.res.Free(buf)
		}
		capacity := uint64(instanceStride)
		for capacity < need {
			capacity *= 2
		}
		created, err := b.res.CreateBuffer(BufferDescriptor{
			Label: fmt.Sprintf("%s instances %d", b.label, next),
			Size:  capacity,
			Usage: BufferUsageVertex | BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.buffers[next] = created
	}

	b.scratch = b.scratch[:0]
	for _, inst := range b.instances {
		b.scratch = append(b.scratch, inst.clean())
	}
	if err := b.res.ctx.device.WriteBuffer(b.buffers[next], 0, SliceBytes(b.scratch)); err != nil {
		return &DeviceError{Op: "write instances " + b.label, Err: err}
	}
	b.current = next
	b.changed = false
	b.uploads++
	return nil
}
