package graphics

import (
	"fmt"
	"reflect"
	"strconv"
	"unsafe"
)

type VertexFormat int

const (
	VertexFloat32x2 VertexFormat = iota + 1
	VertexFloat32x3
	VertexFloat32x4
)

func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFloat32x2:
		return 8
	case VertexFloat32x3:
		return 12
	case VertexFloat32x4:
		return 16
	}
	return 0
}

// wgslTypes lists the spellings a shader may use for an input of this format.
func (f VertexFormat) wgslTypes() []string {
	switch f {
	case VertexFloat32x2:
		return []string{"vec2<f32>", "vec2f"}
	case VertexFloat32x3:
		return []string{"vec3<f32>", "vec3f"}
	case VertexFloat32x4:
		return []string{"vec4<f32>", "vec4f"}
	}
	return nil
}

func (f VertexFormat) String() string {
	switch f {
	case VertexFloat32x2:
		return "float32x2"
	case VertexFloat32x3:
		return "float32x3"
	case VertexFloat32x4:
		return "float32x4"
	}
	return "invalid"
}

func parseFormat(name string) (VertexFormat, error) {
	switch name {
	case "float2":
		return VertexFloat32x2, nil
	case "float3":
		return VertexFloat32x3, nil
	case "float4":
		return VertexFloat32x4, nil
	}
	return 0, fmt.Errorf("unsupported vertex layout format: %q", name)
}

type StepMode int

const (
	StepVertex StepMode = iota
	StepInstance
)

type VertexAttribute struct {
	Location uint32
	Offset   uint64
	Format   VertexFormat
}

type VertexLayout struct {
	Stride     uint64
	StepMode   StepMode
	Attributes []VertexAttribute
}

// ColorVertex feeds the flat-color variants: position at location 0, rgba at 1.
type ColorVertex struct {
	Position [3]float32 `rhachis:"layout" location:"0" format:"float3"`
	Color    [4]float32 `rhachis:"layout" location:"1" format:"float4"`
}

// TextureVertex feeds the textured variant: position at location 0, uv at 1.
type TextureVertex struct {
	Position [3]float32 `rhachis:"layout" location:"0" format:"float3"`
	UV       [2]float32 `rhachis:"layout" location:"1" format:"float2"`
}

// VertexLayoutOf derives a layout from the `rhachis:"layout"` tags of a
// vertex struct. Untagged fields still advance the offset.
func VertexLayoutOf(vertex any) (VertexLayout, error) {
	t := reflect.TypeOf(vertex)
	if t == nil || t.Kind() != reflect.Struct {
		return VertexLayout{}, fmt.Errorf("vertex must be a struct, got %v", t)
	}

	var attributes []VertexAttribute
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("rhachis") != "layout" {
			continue
		}
		format, err := parseFormat(field.Tag.Get("format"))
		if err != nil {
			return VertexLayout{}, fmt.Errorf("%s.%s: %w", t.Name(), field.Name, err)
		}
		location, err := strconv.Atoi(field.Tag.Get("location"))
		if err != nil {
			return VertexLayout{}, fmt.Errorf("%s.%s: bad location: %w", t.Name(), field.Name, err)
		}
		attributes = append(attributes, VertexAttribute{
			Location: uint32(location),
			Offset:   uint64(field.Offset),
			Format:   format,
		})
	}

	return VertexLayout{
		Stride:     uint64(t.Size()),
		StepMode:   StepVertex,
		Attributes: attributes,
	}, nil
}

// MustVertexLayout is VertexLayoutOf for vertex types known at compile time.
func MustVertexLayout(vertex any) VertexLayout {
	layout, err := VertexLayoutOf(vertex)
	if err != nil {
		panic(err)
	}
	return layout
}

// InstanceMatrixLocation is the first of the four consecutive vec4
// attributes carrying a column-major model matrix.
const InstanceMatrixLocation = 2

const instanceStride = 64

// InstanceLayout is the per-instance layout for a packed model matrix.
func InstanceLayout() VertexLayout {
	attributes := make([]VertexAttribute, 4)
	for i := range attributes {
		attributes[i] = VertexAttribute{
			Location: uint32(InstanceMatrixLocation + i),
			Offset:   uint64(i * 16),
			Format:   VertexFloat32x4,
		}
	}
	return VertexLayout{Stride: instanceStride, StepMode: StepInstance, Attributes: attributes}
}

// SliceBytes views a slice of plain-data values as raw bytes.
func SliceBytes[T any](values []T) []byte {
	if len(values) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*int(unsafe.Sizeof(zero)))
}
