package webgpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/rhachis/graphics"
)

func wgpuVertexFormat(f graphics.VertexFormat) wgpu.VertexFormat {
	switch f {
	case graphics.VertexFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case graphics.VertexFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case graphics.VertexFloat32x4:
		return wgpu.VertexFormatFloat32x4
	}
	panic(fmt.Sprintf("unsupported vertex format: %v", f))
}

func wgpuTextureFormat(f graphics.TextureFormat) wgpu.TextureFormat {
	switch f {
	case graphics.FormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case graphics.FormatBGRA8UnormSrgb:
		return wgpu.TextureFormatBGRA8UnormSrgb
	case graphics.FormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case graphics.FormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case graphics.FormatDepth32Float:
		return wgpu.TextureFormatDepth32Float
	}
	return wgpu.TextureFormatUndefined
}

func fromWgpuTextureFormat(f wgpu.TextureFormat) graphics.TextureFormat {
	switch f {
	case wgpu.TextureFormatBGRA8Unorm:
		return graphics.FormatBGRA8Unorm
	case wgpu.TextureFormatBGRA8UnormSrgb:
		return graphics.FormatBGRA8UnormSrgb
	case wgpu.TextureFormatRGBA8Unorm:
		return graphics.FormatRGBA8Unorm
	case wgpu.TextureFormatRGBA8UnormSrgb:
		return graphics.FormatRGBA8UnormSrgb
	}
	return graphics.FormatUndefined
}

func wgpuPresentMode(m graphics.PresentMode) wgpu.PresentMode {
	switch m {
	case graphics.PresentModeMailbox:
		return wgpu.PresentModeMailbox
	case graphics.PresentModeImmediate:
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

func wgpuPowerPreference(p graphics.PowerPreference) wgpu.PowerPreference {
	if p == graphics.PowerLowPower {
		return wgpu.PowerPreferenceLowPower
	}
	return wgpu.PowerPreferenceHighPerformance
}

func wgpuBufferUsage(u graphics.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&graphics.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&graphics.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&graphics.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&graphics.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	return out
}

func wgpuTextureUsage(u graphics.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&graphics.TextureUsageBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&graphics.TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&graphics.TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

func wgpuWrapMode(mode graphics.AddressMode) wgpu.AddressMode {
	switch mode {
	case graphics.AddressRepeat:
		return wgpu.AddressModeRepeat
	case graphics.AddressMirror:
		return wgpu.AddressModeMirrorRepeat
	}
	return wgpu.AddressModeClampToEdge
}

func wgpuFilterMode(mode graphics.FilterMode) (wgpu.FilterMode, wgpu.MipmapFilterMode) {
	if mode == graphics.FilterLinear {
		return wgpu.FilterModeLinear, wgpu.MipmapFilterModeLinear
	}
	return wgpu.FilterModeNearest, wgpu.MipmapFilterModeNearest
}

func wgpuIndexFormat(f graphics.IndexFormat) wgpu.IndexFormat {
	if f == graphics.IndexUint32 {
		return wgpu.IndexFormatUint32
	}
	return wgpu.IndexFormatUint16
}

func wgpuVertexLayouts(layouts []graphics.VertexLayout) []wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexBufferLayout, 0, len(layouts))
	for _, l := range layouts {
		attributes := make([]wgpu.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			attributes = append(attributes, wgpu.VertexAttribute{
				ShaderLocation: a.Location,
				Offset:         a.Offset,
				Format:         wgpuVertexFormat(a.Format),
			})
		}
		step := wgpu.VertexStepModeVertex
		if l.StepMode == graphics.StepInstance {
			step = wgpu.VertexStepModeInstance
		}
		out = append(out, wgpu.VertexBufferLayout{
			ArrayStride: l.Stride,
			StepMode:    step,
			Attributes:  attributes,
		})
	}
	return out
}

// classifyAcquire maps a GetCurrentTexture failure onto the runtime's
// sentinel errors. The binding reports the status only in the message.
func classifyAcquire(err error) error {
	msg := strings.ToLower(err.Error())
	var kind error
	switch {
	case strings.Contains(msg, "timeout"):
		kind = graphics.ErrTimeout
	case strings.Contains(msg, "outofmemory"), strings.Contains(msg, "out of memory"):
		kind = graphics.ErrOutOfMemory
	case strings.Contains(msg, "devicelost"), strings.Contains(msg, "device lost"):
		kind = graphics.ErrDeviceLost
	default:
		kind = graphics.ErrSurfaceLost
	}
	return fmt.Errorf("%w: %w", kind, err)
}

var errForeignHandle = errors.New("handle was not created by this device")
