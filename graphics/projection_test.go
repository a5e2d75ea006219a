package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestProjection_DepthRange(t *testing.T) {
	ortho := OrthographicProjection().Mat4()
	near := ortho.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	far := ortho.Mul4x1(mgl32.Vec4{0, 0, -100, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-5)

	persp := PerspectiveProjection(1).Mat4()
	near = persp.Mul4x1(mgl32.Vec4{0, 0, -0.1, 1})
	far = persp.Mul4x1(mgl32.Vec4{0, 0, -100, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-4)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-4)

	edge := persp.Mul4x1(mgl32.Vec4{1, 0, -1, 1})
	assert.InDelta(t, 1, edge.X()/edge.W(), 1e-5, "90 degree field of view")
}

func TestProjection_CustomAndResize(t *testing.T) {
	m := mgl32.Scale3D(2, 2, 2)
	assert.Equal(t, m, Custom(m).Mat4())
	assert.Equal(t, Custom(m), Custom(m).resized(100, 50))

	p := PerspectiveProjection(1).resized(300, 100)
	assert.InDelta(t, 3, p.Aspect, 1e-6)
	assert.Equal(t, float32(1), PerspectiveProjection(1).resized(300, 0).Aspect)
}
