package procgen

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/bits"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Noise maps integers to well-mixed pseudorandom integers. The same seed and
// input always give the same output.
type Noise struct {
	Seed uint32
	// Index is the counter advanced by Next and NextRange.
	Index uint32
}

// NewNoise seeds from the wall clock in whole seconds.
func NewNoise() *Noise {
	return NewNoiseSeed(uint32(uint64(time.Now().Unix()) % math.MaxUint32))
}

func NewNoiseSeed(seed uint32) *Noise {
	return &Noise{Seed: seed}
}

// Get hashes x. All arithmetic wraps.
func (n *Noise) Get(x uint32) uint32 {
	a := x*4294967291 + n.Seed
	a = a * a * a * a * a
	a ^= bits.RotateLeft32(a, -5)
	a ^= bits.RotateLeft32(a, 9)
	return a
}

func (n *Noise) Next() uint32 {
	n.Index++
	return n.Get(n.Index)
}

// GetRange hashes index into [lo, hi). It panics if the range is empty.
func (n *Noise) GetRange(index, lo, hi uint32) uint32 {
	if hi <= lo {
		panic(fmt.Sprintf("procgen: empty range [%d, %d)", lo, hi))
	}
	return n.Get(index)%(hi-lo) + lo
}

func (n *Noise) NextRange(lo, hi uint32) uint32 {
	n.Index++
	return n.GetRange(n.Index, lo, hi)
}

func (n *Noise) gradient(x, y float32) mgl32.Vec2 {
	gx, gy := uint32(int32(x)), uint32(int32(y))
	angle := 2 * math.Pi * 1000 / float64(n.GetRange(n.Get(gx)^gy, 1, 6283))
	return mgl32.Vec2{float32(math.Sin(angle)), float32(math.Cos(angle))}
}

// Perlin2D samples 2D gradient noise at pos. Integer lattice points always
// give 0; interpolate is usually Lerp, SmoothStep or SmootherStep.
func Perlin2D(n *Noise, pos mgl32.Vec2, interpolate Interpolator) float32 {
	fx := float32(math.Floor(float64(pos.X())))
	fy := float32(math.Floor(float64(pos.Y())))

	corners := [4]mgl32.Vec2{
		{fx, fy},
		{fx + 1, fy},
		{fx, fy + 1},
		{fx + 1, fy + 1},
	}
	var influence [4]float32
	for i, c := range corners {
		influence[i] = n.gradient(c.X(), c.Y()).Dot(c.Sub(pos))
	}

	tx, ty := pos.X()-fx, pos.Y()-fy
	return interpolate(
		interpolate(influence[0], influence[1], tx),
		interpolate(influence[2], influence[3], tx),
		ty,
	)
}

// PerlinImage renders Perlin2D over a width x height grid, sampling pixel
// (x, y) at (x, y) / scale. Values are mapped from [-1, 1] to grey levels.
func PerlinImage(n *Noise, width, height int, scale float32, interpolate Interpolator) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := Perlin2D(n, mgl32.Vec2{float32(x), float32(y)}.Mul(1/scale), interpolate)
			level := uint8(mgl32.Clamp((v+1)*0.5, 0, 1) * 255)
			img.SetRGBA(x, y, color.RGBA{R: level, G: level, B: level, A: 255})
		}
	}
	return img
}
