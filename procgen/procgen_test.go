package procgen

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestLerp(t *testing.T) {
	assert.Equal(t, 0.5, Lerp(0.0, 1.0, 0.5))
	assert.Equal(t, 0.75, Lerp(0.5, 1.0, 0.5))
	assert.Equal(t, 25.5625, Lerp(0.75, 100.0, 0.25))
	assert.Equal(t, float32(2), Lerp[float32](2, 4, 0))
}

func TestSmoothCurves(t *testing.T) {
	for _, f := range []func(a, b, w float64) float64{SmoothStep[float64], SmootherStep[float64]} {
		assert.Equal(t, 10.0, f(10, 20, 0))
		assert.InDelta(t, 20.0, f(10, 20, 1), 1e-12)
		assert.InDelta(t, 15.0, f(10, 20, 0.5), 1e-12)
		assert.Less(t, f(0, 1, 0.1), Lerp(0.0, 1.0, 0.1), "eases in")
		assert.Greater(t, f(0, 1, 0.9), Lerp(0.0, 1.0, 0.9), "eases out")
	}
}

func TestNoise_Get(t *testing.T) {
	n := NewNoiseSeed(42)

	assert.Equal(t, uint32(948377562), n.Get(7))
	assert.Equal(t, uint32(4013304618), n.Get(0))
	assert.Equal(t, uint32(2853637467), n.Get(1))
	assert.Equal(t, uint32(0), NewNoiseSeed(0).Get(0))
	assert.Equal(t, uint32(3907159689), NewNoiseSeed(1).Get(3))

	assert.Equal(t, n.Get(7), NewNoiseSeed(42).Get(7), "same seed, same value")
	assert.NotEqual(t, n.Get(7), NewNoiseSeed(43).Get(7))
}

func TestNoise_Next(t *testing.T) {
	n := NewNoiseSeed(1)
	want := []uint32{n.Get(1), n.Get(2), n.Get(3)}
	got := []uint32{n.Next(), n.Next(), n.Next()}
	assert.Equal(t, want, got)
	assert.Equal(t, uint32(3), n.Index)
}

func TestNoise_Range(t *testing.T) {
	n := NewNoiseSeed(99)
	seen := map[uint32]bool{}
	for i := 0; i < 1000; i++ {
		v := n.NextRange(10, 20)
		assert.GreaterOrEqual(t, v, uint32(10))
		assert.Less(t, v, uint32(20))
		seen[v] = true
	}
	assert.Greater(t, len(seen), 5, "values spread over the range")

	assert.Equal(t, n.Get(5)%6+1, n.GetRange(5, 1, 7))
	assert.Panics(t, func() { n.GetRange(0, 3, 3) })
}

func TestPerlin2D(t *testing.T) {
	n := NewNoiseSeed(1234)

	for _, p := range []mgl32.Vec2{{0, 0}, {3, 7}, {-2, 5}} {
		assert.Zero(t, Perlin2D(n, p, Lerp[float32]), "lattice points are zero")
	}

	p := mgl32.Vec2{4.3, 1.7}
	v := Perlin2D(n, p, SmootherStep[float32])
	assert.Equal(t, v, Perlin2D(NewNoiseSeed(1234), p, SmootherStep[float32]))
	assert.InDelta(t, v, Perlin2D(n, mgl32.Vec2{4.301, 1.7}, SmootherStep[float32]), 0.01, "continuous")

	for x := float32(0); x < 5; x += 0.37 {
		for y := float32(0); y < 5; y += 0.41 {
			v := Perlin2D(n, mgl32.Vec2{x, y}, SmoothStep[float32])
			assert.GreaterOrEqual(t, v, float32(-1.5))
			assert.LessOrEqual(t, v, float32(1.5))
		}
	}
}

func TestPerlinImage(t *testing.T) {
	img := PerlinImage(NewNoiseSeed(5), 16, 8, 4, Lerp[float32])
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())

	// Pixel (0, 0) samples a lattice point, which maps to mid grey.
	px := img.RGBAAt(0, 0)
	assert.Equal(t, uint8(127), px.R)
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, uint8(255), px.A)
}
