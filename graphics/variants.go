package graphics

import "github.com/gekko3d/rhachis/graphics/shaders"

// Built-in bind group layout: group 0 carries projection and camera, group 1
// the diffuse texture and its sampler.
const (
	CameraGroup  = 0
	TextureGroup = 1
)

var cameraGroupLayout = BindGroupLayout{
	Group: CameraGroup,
	Bindings: []BindingDecl{
		{Binding: 0, Kind: BindingBuffer},
		{Binding: 1, Kind: BindingBuffer},
	},
}

var textureGroupLayout = BindGroupLayout{
	Group: TextureGroup,
	Bindings: []BindingDecl{
		{Binding: 0, Kind: BindingTexture},
		{Binding: 1, Kind: BindingSampler},
	},
}

// FlatColorDescriptor draws ColorVertex meshes without per-instance data.
// An empty source selects the embedded shader.
func FlatColorDescriptor(source string) PipelineDescriptor {
	if source == "" {
		source = shaders.FlatColorWGSL
	}
	return PipelineDescriptor{
		Label:      "flat color",
		Source:     source,
		Layouts:    []VertexLayout{MustVertexLayout(ColorVertex{})},
		BindGroups: []BindGroupLayout{cameraGroupLayout},
		Depth:      true,
	}
}

// InstancedColorDescriptor draws ColorVertex meshes once per instance.
func InstancedColorDescriptor(source string) PipelineDescriptor {
	if source == "" {
		source = shaders.InstancedColorWGSL
	}
	return PipelineDescriptor{
		Label:      "instanced color",
		Source:     source,
		Layouts:    []VertexLayout{MustVertexLayout(ColorVertex{}), InstanceLayout()},
		BindGroups: []BindGroupLayout{cameraGroupLayout},
		Depth:      true,
		Blend:      true,
	}
}

// InstancedTexturedDescriptor draws TextureVertex meshes once per instance,
// sampling the texture bound at group 1.
func InstancedTexturedDescriptor(source string) PipelineDescriptor {
	if source == "" {
		source = shaders.InstancedTexturedWGSL
	}
	return PipelineDescriptor{
		Label:      "instanced textured",
		Source:     source,
		Layouts:    []VertexLayout{MustVertexLayout(TextureVertex{}), InstanceLayout()},
		BindGroups: []BindGroupLayout{cameraGroupLayout, textureGroupLayout},
		Depth:      true,
		Blend:      true,
	}
}
