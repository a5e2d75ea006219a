package graphics

import "fmt"

// Model is a mesh drawn once per instance by one of the SimpleRenderer
// pipelines. It owns its buffers through its own pool.
type Model struct {
	label      string
	textured   bool
	res        *Resources
	vertices   Buffer
	indices    Buffer
	indexCount uint32
	instances  *InstanceBuffer
	texture    *TextureBinding
}

// TextureBinding pairs a texture with a sampler for group 1 of the textured
// pipeline.
type TextureBinding struct {
	Texture Texture
	Sampler Sampler
	group   BindGroup
}

func newModel(ctx *GpuContext, label string, textured bool, vertexBytes []byte, indices []uint16, transforms []Transform) (*Model, error) {
	if len(vertexBytes) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("model %q: empty mesh", label)
	}
	res := ctx.NewResources("model " + label)
	vb, err := res.CreateBufferInit(label+" vertices", BufferUsageVertex, vertexBytes)
	if err != nil {
		res.Release()
		return nil, err
	}
	ib, err := res.CreateBufferInit(label+" indices", BufferUsageIndex, SliceBytes(indices))
	if err != nil {
		res.Release()
		return nil, err
	}
	m := &Model{
		label:      label,
		textured:   textured,
		res:        res,
		vertices:   vb,
		indices:    ib,
		indexCount: uint32(len(indices)),
		instances:  NewInstanceBuffer(res, label),
	}
	m.instances.Set(transforms)
	return m, nil
}

func (m *Model) Label() string { return m.label }

func (m *Model) Instances() *InstanceBuffer { return m.instances }

func (m *Model) Texture() *TextureBinding { return m.texture }

// AddTransform appends one more instance.
func (m *Model) AddTransform(t Transform) *Instance { return m.instances.Add(t) }

// SetTransforms replaces every instance.
func (m *Model) SetTransforms(ts []Transform) { m.instances.Set(ts) }

// ModifyTransforms edits the existing instances in place.
func (m *Model) ModifyTransforms(fn func(i int, t *Transform)) {
	m.instances.Modify(func(i int, inst *Instance) {
		t := inst.Transform()
		fn(i, &t)
		inst.SetTransform(t)
	})
}

func (m *Model) draw(pass RenderPass, pipeline *Pipeline, cameraGroup BindGroup) error {
	groups := map[uint32]BindGroup{CameraGroup: cameraGroup}
	if m.texture != nil {
		groups[TextureGroup] = m.texture.group
	}
	return pipeline.Draw(pass, DrawCall{
		Vertices:   m.vertices,
		Indices:    m.indices,
		IndexCount: m.indexCount,
		Instances:  m.instances,
		BindGroups: groups,
	})
}

func (m *Model) Release() {
	m.res.Release()
}

// Quad is a unit square in the xy plane with two counter-clockwise triangles.
func Quad(color [4]float32) ([]ColorVertex, []uint16) {
	return []ColorVertex{
			{Position: [3]float32{-0.5, -0.5, 0}, Color: color},
			{Position: [3]float32{0.5, -0.5, 0}, Color: color},
			{Position: [3]float32{0.5, 0.5, 0}, Color: color},
			{Position: [3]float32{-0.5, 0.5, 0}, Color: color},
		},
		[]uint16{0, 1, 2, 0, 2, 3}
}

// TexturedQuad is Quad with uv (0,0) at the top-left corner.
func TexturedQuad() ([]TextureVertex, []uint16) {
	return []TextureVertex{
			{Position: [3]float32{-0.5, -0.5, 0}, UV: [2]float32{0, 1}},
			{Position: [3]float32{0.5, -0.5, 0}, UV: [2]float32{1, 1}},
			{Position: [3]float32{0.5, 0.5, 0}, UV: [2]float32{1, 0}},
			{Position: [3]float32{-0.5, 0.5, 0}, UV: [2]float32{0, 0}},
		},
		[]uint16{0, 1, 2, 0, 2, 3}
}
