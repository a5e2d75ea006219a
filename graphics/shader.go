package graphics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

type BindingKind int

const (
	BindingBuffer BindingKind = iota
	BindingTexture
	BindingSampler
)

func (k BindingKind) String() string {
	switch k {
	case BindingTexture:
		return "texture"
	case BindingSampler:
		return "sampler"
	}
	return "buffer"
}

// ShaderBinding is one `@group(g) @binding(b) var ...` declaration.
type ShaderBinding struct {
	Group   uint32
	Binding uint32
	Name    string
	Kind    BindingKind
}

// VertexInput is one located input of a vertex entry point.
type VertexInput struct {
	Location uint32
	Name     string
	Type     string
}

// ShaderInterface is what a WGSL module consumes from the pipeline.
type ShaderInterface struct {
	VertexEntries map[string][]VertexInput
	Bindings      []ShaderBinding
}

// VertexInputs returns the located inputs of entry, sorted by location.
func (s *ShaderInterface) VertexInputs(entry string) ([]VertexInput, bool) {
	inputs, ok := s.VertexEntries[entry]
	return inputs, ok
}

// ShaderCompiler validates WGSL and reports its interface. It never touches
// the GPU.
type ShaderCompiler interface {
	Compile(label, source string) (*ShaderInterface, error)
}

type CompilerFunc func(label, source string) (*ShaderInterface, error)

func (f CompilerFunc) Compile(label, source string) (*ShaderInterface, error) {
	return f(label, source)
}

// NagaCompiler runs the naga WGSL frontend, validator and SPIR-V backend.
// Its diagnostics are surfaced unmodified in ShaderCompileError.
type NagaCompiler struct{}

func (NagaCompiler) Compile(label, source string) (*ShaderInterface, error) {
	module, err := lowerWGSL(source)
	if err != nil {
		return nil, &ShaderCompileError{Label: label, Message: err.Error()}
	}
	problems, err := naga.Validate(module)
	if err != nil {
		return nil, &ShaderCompileError{Label: label, Message: fmt.Sprintf("validation error: %v", err)}
	}
	if len(problems) > 0 {
		return nil, &ShaderCompileError{Label: label, Message: fmt.Sprintf("validation failed: %v", &problems[0])}
	}
	iface, err := ReflectModule(module)
	if err != nil {
		return nil, &ShaderCompileError{Label: label, Message: err.Error()}
	}
	if _, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3}); err != nil {
		return nil, &ShaderCompileError{Label: label, Message: err.Error()}
	}
	return iface, nil
}

// ReflectCompiler parses and lowers WGSL without validating it or emitting
// SPIR-V. Useful where WGSL was validated elsewhere.
type ReflectCompiler struct{}

func (ReflectCompiler) Compile(label, source string) (*ShaderInterface, error) {
	iface, err := ReflectWGSL(source)
	if err != nil {
		return nil, &ShaderCompileError{Label: label, Message: err.Error()}
	}
	return iface, nil
}

// ReflectWGSL parses and lowers source and reports its interface.
func ReflectWGSL(source string) (*ShaderInterface, error) {
	module, err := lowerWGSL(source)
	if err != nil {
		return nil, err
	}
	return ReflectModule(module)
}

func lowerWGSL(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}
	return module, nil
}

// ReflectModule collects the located inputs of every vertex entry point and
// every global with a @group/@binding pair. Types are resolved through the
// module's type table, so aliases report the type they stand for.
func ReflectModule(module *ir.Module) (*ShaderInterface, error) {
	iface := &ShaderInterface{VertexEntries: map[string][]VertexInput{}}

	for _, g := range module.GlobalVariables {
		if g.Binding == nil {
			continue
		}
		inner, err := typeInner(module, g.Type)
		if err != nil {
			return nil, fmt.Errorf("global %s: %w", g.Name, err)
		}
		iface.Bindings = append(iface.Bindings, ShaderBinding{
			Group:   g.Binding.Group,
			Binding: g.Binding.Binding,
			Name:    g.Name,
			Kind:    bindingKindOf(module, inner),
		})
	}
	sort.Slice(iface.Bindings, func(i, j int) bool {
		a, b := iface.Bindings[i], iface.Bindings[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Binding < b.Binding
	})

	for _, ep := range module.EntryPoints {
		if ep.Stage != ir.StageVertex {
			continue
		}
		var inputs []VertexInput
		for _, arg := range ep.Function.Arguments {
			if loc, ok := locationOf(arg.Binding); ok {
				name, err := wgslTypeName(module, arg.Type)
				if err != nil {
					return nil, fmt.Errorf("vertex entry %s: %s: %w", ep.Name, arg.Name, err)
				}
				inputs = append(inputs, VertexInput{Location: loc, Name: arg.Name, Type: name})
				continue
			}
			inner, err := typeInner(module, arg.Type)
			if err != nil {
				return nil, fmt.Errorf("vertex entry %s: %s: %w", ep.Name, arg.Name, err)
			}
			st, ok := inner.(ir.StructType)
			if !ok {
				continue
			}
			for _, m := range st.Members {
				loc, ok := locationOf(m.Binding)
				if !ok {
					continue
				}
				name, err := wgslTypeName(module, m.Type)
				if err != nil {
					return nil, fmt.Errorf("vertex entry %s: %s.%s: %w", ep.Name, arg.Name, m.Name, err)
				}
				inputs = append(inputs, VertexInput{Location: loc, Name: arg.Name + "." + m.Name, Type: name})
			}
		}
		sort.Slice(inputs, func(i, j int) bool { return inputs[i].Location < inputs[j].Location })
		iface.VertexEntries[ep.Name] = inputs
	}

	return iface, nil
}

func locationOf(b *ir.Binding) (uint32, bool) {
	if b == nil {
		return 0, false
	}
	loc, ok := (*b).(ir.LocationBinding)
	return loc.Location, ok
}

func typeInner(module *ir.Module, h ir.TypeHandle) (ir.TypeInner, error) {
	if int(h) >= len(module.Types) {
		return nil, fmt.Errorf("type handle %d out of range", h)
	}
	return module.Types[h].Inner, nil
}

func bindingKindOf(module *ir.Module, inner ir.TypeInner) BindingKind {
	switch t := inner.(type) {
	case ir.ImageType:
		return BindingTexture
	case ir.SamplerType:
		return BindingSampler
	case ir.BindingArrayType:
		if base, err := typeInner(module, t.Base); err == nil {
			return bindingKindOf(module, base)
		}
	}
	return BindingBuffer
}

// wgslTypeName spells the resolved type of h the long way, e.g. vec3<f32>.
func wgslTypeName(module *ir.Module, h ir.TypeHandle) (string, error) {
	inner, err := typeInner(module, h)
	if err != nil {
		return "", err
	}
	switch t := inner.(type) {
	case ir.ScalarType:
		return scalarName(t), nil
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", t.Size, scalarName(t.Scalar)), nil
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", t.Columns, t.Rows, scalarName(t.Scalar)), nil
	}
	if name := module.Types[h].Name; name != "" {
		return name, nil
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", inner), "ir."), nil
}

func scalarName(s ir.ScalarType) string {
	switch s.Kind {
	case ir.ScalarSint:
		return "i32"
	case ir.ScalarUint:
		return "u32"
	case ir.ScalarBool:
		return "bool"
	case ir.ScalarFloat:
		if s.Width == 2 {
			return "f16"
		}
		return "f32"
	}
	return fmt.Sprintf("abstract%d", s.Kind)
}
