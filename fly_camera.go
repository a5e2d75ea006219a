package rhachis

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FlyCamera is a free-look camera. WASD moves in the view plane, Space and
// Control move up and down, and dragging with the right mouse button looks
// around.
type FlyCamera struct {
	Position mgl32.Vec3
	// Yaw and Pitch are in degrees. Pitch is clamped to +-89.
	Yaw   float32
	Pitch float32
	// Speed is in units per second; zero means 5.
	Speed float32
	// Sensitivity is degrees per pixel of mouse travel; zero means 0.1.
	Sensitivity float32
}

func (c *FlyCamera) Forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// Update applies this frame's input over dt seconds.
func (c *FlyCamera) Update(in *Input, dt float32) {
	if dt <= 0 {
		return
	}
	sensitivity := c.Sensitivity
	if sensitivity == 0 {
		sensitivity = 0.1
	}
	if in.MouseButton(MouseButtonRight).IsDown() {
		dx, dy := in.MouseMovement()
		c.Yaw += float32(dx) * sensitivity
		c.Pitch -= float32(dy) * sensitivity
		c.Pitch = mgl32.Clamp(c.Pitch, -89, 89)
	}

	var move mgl32.Vec3
	axis := func(k Key, i int, v float32) {
		if in.Key(k).IsDown() {
			move[i] += v
		}
	}
	axis(KeyD, 0, 1)
	axis(KeyA, 0, -1)
	axis(KeySpace, 1, 1)
	axis(KeyControl, 1, -1)
	axis(KeyW, 2, 1)
	axis(KeyS, 2, -1)

	forward := c.Forward()
	up := mgl32.Vec3{0, 1, 0}
	right := forward.Cross(up).Normalize()
	dir := right.Mul(move[0]).Add(up.Mul(move[1])).Add(forward.Mul(move[2]))
	if dir.Len() == 0 {
		return
	}
	speed := c.Speed
	if speed == 0 {
		speed = 5
	}
	c.Position = c.Position.Add(dir.Normalize().Mul(speed * dt))
}

// View is the world-to-camera matrix.
func (c *FlyCamera) View() mgl32.Mat4 {
	target := c.Position.Add(c.Forward())
	return mgl32.LookAtV(c.Position, target, mgl32.Vec3{0, 1, 0})
}
