package graphics

import (
	"fmt"
	"sort"
	"strings"
)

// BindingDecl declares one binding a pipeline expects at draw time.
type BindingDecl struct {
	Binding uint32
	Kind    BindingKind
}

type BindGroupLayout struct {
	Group    uint32
	Bindings []BindingDecl
}

type PipelineDescriptor struct {
	Label  string
	Source string
	// Defaults are vs_main and fs_main.
	VertexEntry   string
	FragmentEntry string
	Layouts       []VertexLayout
	BindGroups    []BindGroupLayout
	Depth         bool
	Cull          CullMode
	Blend         bool
}

// Pipeline is an immutable compiled shader plus the layouts it was checked
// against. It owns its GPU allocations through its own pool.
type Pipeline struct {
	label        string
	desc         PipelineDescriptor
	iface        *ShaderInterface
	res          *Resources
	handle       RenderPipeline
	groups       map[uint32]BindGroupLayout
	order        []uint32
	instanceSlot int
}

// NewPipeline compiles and validates desc before allocating anything. A
// *ShaderCompileError or *LayoutMismatchError leaves the device untouched.
func NewPipeline(ctx *GpuContext, desc PipelineDescriptor) (*Pipeline, error) {
	if desc.VertexEntry == "" {
		desc.VertexEntry = "vs_main"
	}
	if desc.FragmentEntry == "" {
		desc.FragmentEntry = "fs_main"
	}
	if desc.Label == "" {
		desc.Label = "pipeline"
	}

	iface, err := ctx.compiler.Compile(desc.Label, desc.Source)
	if err != nil {
		return nil, err
	}
	if problems := checkLayout(desc, iface); len(problems) > 0 {
		return nil, &LayoutMismatchError{Label: desc.Label, Problems: problems}
	}

	p := &Pipeline{
		label:        desc.Label,
		desc:         desc,
		iface:        iface,
		groups:       map[uint32]BindGroupLayout{},
		instanceSlot: -1,
	}
	for _, g := range desc.BindGroups {
		p.groups[g.Group] = g
		p.order = append(p.order, g.Group)
	}
	sort.Slice(p.order, func(i, j int) bool { return p.order[i] < p.order[j] })
	for i, l := range desc.Layouts {
		if l.StepMode == StepInstance {
			p.instanceSlot = i
		}
	}

	depth := FormatUndefined
	if desc.Depth {
		depth = FormatDepth32Float
	}
	p.res = ctx.NewResources("pipeline " + desc.Label)
	p.handle, err = p.res.CreateRenderPipeline(RenderPipelineDescriptor{
		Label:         desc.Label,
		Source:        desc.Source,
		VertexEntry:   desc.VertexEntry,
		FragmentEntry: desc.FragmentEntry,
		Layouts:       desc.Layouts,
		TargetFormat:  ctx.Config().Format,
		DepthFormat:   depth,
		Cull:          desc.Cull,
		Blend:         desc.Blend,
	})
	if err != nil {
		p.res.Release()
		return nil, err
	}
	return p, nil
}

func checkLayout(desc PipelineDescriptor, iface *ShaderInterface) []string {
	var problems []string

	inputs, ok := iface.VertexInputs(desc.VertexEntry)
	if !ok {
		return []string{fmt.Sprintf("shader has no @vertex entry point %q", desc.VertexEntry)}
	}

	declared := map[uint32]VertexAttribute{}
	for i, layout := range desc.Layouts {
		if layout.Stride == 0 {
			problems = append(problems, fmt.Sprintf("vertex buffer %d has zero stride", i))
		}
		for _, attr := range layout.Attributes {
			if attr.Offset+attr.Format.Size() > layout.Stride {
				problems = append(problems, fmt.Sprintf("attribute @location(%d) extends past stride %d of buffer %d", attr.Location, layout.Stride, i))
			}
			if _, dup := declared[attr.Location]; dup {
				problems = append(problems, fmt.Sprintf("attribute @location(%d) declared twice", attr.Location))
			}
			declared[attr.Location] = attr
		}
	}

	consumed := map[uint32]bool{}
	for _, in := range inputs {
		consumed[in.Location] = true
		attr, ok := declared[in.Location]
		if !ok {
			problems = append(problems, fmt.Sprintf("shader input %s @location(%d) has no vertex attribute", in.Name, in.Location))
			continue
		}
		if !typeMatches(attr.Format, in.Type) {
			problems = append(problems, fmt.Sprintf("shader input %s @location(%d) is %s but attribute is %s", in.Name, in.Location, in.Type, attr.Format))
		}
	}
	for loc := range declared {
		if !consumed[loc] {
			problems = append(problems, fmt.Sprintf("attribute @location(%d) is not consumed by %s", loc, desc.VertexEntry))
		}
	}

	want := map[[2]uint32]BindingKind{}
	for _, g := range desc.BindGroups {
		for _, b := range g.Bindings {
			want[[2]uint32{g.Group, b.Binding}] = b.Kind
		}
	}
	seen := map[[2]uint32]bool{}
	for _, b := range iface.Bindings {
		key := [2]uint32{b.Group, b.Binding}
		seen[key] = true
		kind, ok := want[key]
		if !ok {
			problems = append(problems, fmt.Sprintf("shader binding %s @group(%d) @binding(%d) is not declared", b.Name, b.Group, b.Binding))
			continue
		}
		if kind != b.Kind {
			problems = append(problems, fmt.Sprintf("shader binding %s @group(%d) @binding(%d) is a %s, declared as %s", b.Name, b.Group, b.Binding, b.Kind, kind))
		}
	}
	for key := range want {
		if !seen[key] {
			problems = append(problems, fmt.Sprintf("declared @group(%d) @binding(%d) is not used by the shader", key[0], key[1]))
		}
	}

	sort.Strings(problems)
	return problems
}

func typeMatches(f VertexFormat, wgslType string) bool {
	t := strings.ReplaceAll(wgslType, " ", "")
	for _, want := range f.wgslTypes() {
		if t == want {
			return true
		}
	}
	return false
}

func (p *Pipeline) Label() string { return p.label }

func (p *Pipeline) Descriptor() PipelineDescriptor { return p.desc }

func (p *Pipeline) Interface() *ShaderInterface { return p.iface }

// Instanced reports whether the pipeline reads a per-instance buffer.
func (p *Pipeline) Instanced() bool { return p.instanceSlot >= 0 }

// NewBindGroup builds the resources for one declared group. Entries must
// cover the declared bindings exactly, with matching kinds.
func (p *Pipeline) NewBindGroup(res *Resources, group uint32, entries []BindGroupEntry) (BindGroup, error) {
	layout, ok := p.groups[group]
	if !ok {
		return nil, &LayoutMismatchError{Label: p.label, Problems: []string{fmt.Sprintf("no bind group %d declared", group)}}
	}
	var problems []string
	given := map[uint32]BindGroupEntry{}
	for _, e := range entries {
		given[e.Binding] = e
	}
	for _, decl := range layout.Bindings {
		e, ok := given[decl.Binding]
		if !ok {
			problems = append(problems, fmt.Sprintf("@group(%d) @binding(%d) missing", group, decl.Binding))
			continue
		}
		if e.Kind() != decl.Kind {
			problems = append(problems, fmt.Sprintf("@group(%d) @binding(%d) wants a %s, got a %s", group, decl.Binding, decl.Kind, e.Kind()))
		}
	}
	if len(entries) != len(layout.Bindings) && len(problems) == 0 {
		problems = append(problems, fmt.Sprintf("@group(%d) has %d entries, %d declared", group, len(entries), len(layout.Bindings)))
	}
	if len(problems) > 0 {
		return nil, &LayoutMismatchError{Label: p.label, Problems: problems}
	}
	return res.CreateBindGroup(fmt.Sprintf("%s group %d", p.label, group), p.handle, group, entries)
}

// DrawCall is one indexed draw. With an InstanceBuffer the instance count
// is its length; otherwise InstanceCount (default 1) is used.
type DrawCall struct {
	Vertices      Buffer
	Indices       Buffer
	IndexCount    uint32
	Instances     *InstanceBuffer
	InstanceCount uint32
	BindGroups    map[uint32]BindGroup
}

// Draw records call into pass. Pending instance transforms are uploaded
// first.
func (p *Pipeline) Draw(pass RenderPass, call DrawCall) error {
	if call.Vertices == nil || call.Indices == nil {
		return fmt.Errorf("pipeline %q: draw without vertex or index buffer", p.label)
	}
	for _, g := range p.order {
		if call.BindGroups[g] == nil {
			return fmt.Errorf("pipeline %q: bind group %d not set", p.label, g)
		}
	}

	instances := call.InstanceCount
	if instances == 0 {
		instances = 1
	}
	if p.Instanced() {
		if call.Instances == nil {
			return fmt.Errorf("pipeline %q: instanced draw without instance buffer", p.label)
		}
		if err := call.Instances.Sync(); err != nil {
			return err
		}
		instances = uint32(call.Instances.Len())
		if instances == 0 {
			return nil
		}
	}

	pass.SetPipeline(p.handle)
	for _, g := range p.order {
		pass.SetBindGroup(g, call.BindGroups[g])
	}
	pass.SetVertexBuffer(0, call.Vertices)
	if p.Instanced() {
		pass.SetVertexBuffer(uint32(p.instanceSlot), call.Instances.Buffer())
	}
	pass.SetIndexBuffer(call.Indices, IndexUint16)
	pass.DrawIndexed(call.IndexCount, instances)
	return nil
}

func (p *Pipeline) Release() {
	p.res.Release()
}
