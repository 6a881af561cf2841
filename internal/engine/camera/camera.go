// Package camera provides the orbit camera that drives terrain refinement.
package camera

import (
	gomath "math"

	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// OrbitCamera orbits around a center point. Z is up.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Elevation angle above the ground plane (radians)
	Yaw      float32 // Heading around Z (radians), 0 looks toward +Y

	// Lens
	FOVY float32 // Vertical field of view (radians)
	Near float32
	Far  float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera(fovY float32) *OrbitCamera {
	return &OrbitCamera{
		Distance:        2000,
		Pitch:           0.6,
		FOVY:            fovY,
		Near:            1,
		Far:             200000,
		MinDistance:     10,
		MaxDistance:     60000,
		MinPitch:        0.05,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the eye position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := float32(gomath.Cos(float64(c.Pitch)))
	sp := float32(gomath.Sin(float64(c.Pitch)))
	sy := float32(gomath.Sin(float64(c.Yaw)))
	cy := float32(gomath.Cos(float64(c.Yaw)))

	// The eye sits behind the center, opposite the heading.
	return c.Center.Add(math.Vec3{
		X: -c.Distance * cp * sy,
		Y: -c.Distance * cp * cy,
		Z: c.Distance * sp,
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Z: 1})
}

// ProjectionMatrix returns the perspective projection for a viewport.
func (c *OrbitCamera) ProjectionMatrix(width, height int) math.Mat4 {
	return math.Perspective(c.FOVY, aspect(width, height), c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(width, height int) math.Mat4 {
	return c.ProjectionMatrix(width, height).Mul(c.ViewMatrix())
}

// Viewer returns the refinement inputs for a viewport of the given size.
func (c *OrbitCamera) Viewer(width, height int) terrain.Viewer {
	return terrain.Viewer{
		Position:      c.Position(),
		HFOV:          math.HorizontalFOV(c.FOVY, aspect(width, height)),
		ViewportWidth: float32(width),
	}
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw += deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.Pitch = clampf(c.Pitch, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = clampf(c.Distance, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center along the ground relative to the heading.
func (c *OrbitCamera) HandleMovement(forward, right float32) {
	// Speed scales with distance for consistent feel
	speed := c.Distance * 0.01

	sy := float32(gomath.Sin(float64(c.Yaw)))
	cy := float32(gomath.Cos(float64(c.Yaw)))

	c.Center.X += (sy*forward + cy*right) * speed
	c.Center.Y += (cy*forward - sy*right) * speed
}

// FollowGround sets the center elevation to the terrain height below it.
func (c *OrbitCamera) FollowGround(height func(x, y float32) float32) {
	c.Center.Z = height(c.Center.X, c.Center.Y)
}

func aspect(width, height int) float32 {
	if height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
