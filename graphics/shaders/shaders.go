package shaders

import (
	_ "embed"
)

// File names double as the override names looked up in a shader directory.
const (
	FlatColorFile         = "flat_color.wgsl"
	InstancedColorFile    = "instanced_color.wgsl"
	InstancedTexturedFile = "instanced_textured.wgsl"
)

//go:embed flat_color.wgsl
var FlatColorWGSL string

//go:embed instanced_color.wgsl
var InstancedColorWGSL string

//go:embed instanced_textured.wgsl
var InstancedTexturedWGSL string
