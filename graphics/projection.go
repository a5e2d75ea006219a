package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type ProjectionKind int

const (
	Orthographic ProjectionKind = iota
	Perspective
	CustomProjection
)

const (
	perspectiveFov  = math.Pi / 2
	perspectiveNear = 0.1
	projectionFar   = 100
)

// Projection is the group 0 binding 0 matrix of the built-in pipelines.
type Projection struct {
	Kind   ProjectionKind
	Aspect float32
	Matrix mgl32.Mat4
}

// OrthographicProjection maps x and y in [-1, 1] and depth 0 to 100.
func OrthographicProjection() Projection {
	return Projection{Kind: Orthographic}
}

// PerspectiveProjection uses a 90 degree vertical field of view.
func PerspectiveProjection(aspect float32) Projection {
	return Projection{Kind: Perspective, Aspect: aspect}
}

// Custom matrices are used as is, already in WebGPU clip space.
func Custom(m mgl32.Mat4) Projection {
	return Projection{Kind: CustomProjection, Matrix: m}
}

// clipCorrection maps OpenGL clip depth [-1, 1] to WebGPU's [0, 1].
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func (p Projection) Mat4() mgl32.Mat4 {
	switch p.Kind {
	case Perspective:
		aspect := p.Aspect
		if aspect <= 0 {
			aspect = 1
		}
		return clipCorrection.Mul4(mgl32.Perspective(perspectiveFov, aspect, perspectiveNear, projectionFar))
	case CustomProjection:
		return p.Matrix
	}
	return clipCorrection.Mul4(mgl32.Ortho(-1, 1, -1, 1, 0, projectionFar))
}

// resized returns the projection adjusted for a new surface size.
func (p Projection) resized(width, height uint32) Projection {
	if p.Kind == Perspective && height > 0 {
		p.Aspect = float32(width) / float32(height)
	}
	return p
}
