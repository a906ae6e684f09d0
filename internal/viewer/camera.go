package viewer

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Orbit limits. Pitch is elevation above the XZ plane; the lower bound stops
// the camera at the equivalent of a 120-degree polar angle so the buyer never
// looks at the underside of the grid.
const (
	minPitch    = -math32.Pi / 6
	maxPitch    = math32.Pi/2 - 0.05
	minDistance = 2
	maxDistance = 12

	dragSensitivity = 0.008 // radians per pixel of mouse drag
	zoomStep        = 0.5   // distance units per wheel notch
	autoRotateSpeed = 0.5   // radians per second when auto-rotate is on
)

// OrbitCamera is a drag-to-rotate, scroll-to-zoom camera circling the origin,
// with an optional slow auto-rotation. It is a view-level concern: Update
// reads input directly and never blocks.
type OrbitCamera struct {
	AutoRotate bool

	yaw      float32
	pitch    float32
	distance float32
}

// NewOrbitCamera returns a camera at a comfortable product-viewing angle.
func NewOrbitCamera(autoRotate bool) *OrbitCamera {
	return &OrbitCamera{
		AutoRotate: autoRotate,
		yaw:        math32.Pi / 4,
		pitch:      math32.Pi / 8,
		distance:   5,
	}
}

// Update applies one frame of interaction: left-drag orbits, the wheel zooms,
// and auto-rotate advances the yaw when the user is not dragging.
func (c *OrbitCamera) Update(dt float32) {
	dragging := rl.IsMouseButtonDown(rl.MouseButtonLeft)
	if dragging {
		delta := rl.GetMouseDelta()
		c.yaw -= delta.X * dragSensitivity
		c.pitch += delta.Y * dragSensitivity
	} else if c.AutoRotate {
		c.yaw += autoRotateSpeed * dt
	}
	c.pitch = math32.Min(math32.Max(c.pitch, minPitch), maxPitch)

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		c.distance -= wheel * zoomStep
		c.distance = math32.Min(math32.Max(c.distance, minDistance), maxDistance)
	}
}

// Position returns the camera's world position on its orbit sphere.
func (c *OrbitCamera) Position() [3]float32 {
	cosP := math32.Cos(c.pitch)
	return [3]float32{
		c.distance * cosP * math32.Sin(c.yaw),
		c.distance * math32.Sin(c.pitch),
		c.distance * cosP * math32.Cos(c.yaw),
	}
}

// Camera returns the raylib camera for this frame.
func (c *OrbitCamera) Camera() rl.Camera3D {
	p := c.Position()
	return rl.Camera3D{
		Position:   rl.NewVector3(p[0], p[1], p[2]),
		Target:     rl.NewVector3(0, 0, 0),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       50,
		Projection: rl.CameraPerspective,
	}
}
