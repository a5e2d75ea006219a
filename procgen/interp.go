// Package procgen holds the small numeric helpers games use for procedural
// content: interpolation curves, a seeded integer hash and gradient noise.
package procgen

type Float interface {
	~float32 | ~float64
}

// Interpolator blends a into b by weight, where weight is in [0, 1].
type Interpolator func(a, b, weight float32) float32

func Lerp[T Float](a, b, weight T) T {
	return (b-a)*weight + a
}

// SmoothStep eases in and out with zero slope at both ends.
func SmoothStep[T Float](a, b, weight T) T {
	return (b-a)*(3-weight*2)*weight*weight + a
}

// SmootherStep also has zero second derivative at both ends.
func SmootherStep[T Float](a, b, weight T) T {
	return (b-a)*((weight*(weight*6-15)+10)*weight*weight*weight) + a
}
