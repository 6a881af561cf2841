package bench

import (
	gomath "math"

	"github.com/Faultbox/midgard-terrain/internal/engine/camera"
)

// Flight is a scripted orbit over the terrain. The orbit center circles the
// origin while the camera dives toward the ground and climbs back out, so a
// run exercises both refinement and coarsening.
type Flight struct {
	Radius      float32 // Radius of the circle the center follows
	NearDist    float32 // Closest camera distance
	FarDist     float32 // Farthest camera distance
	Pitch       float32 // Constant camera pitch (radians)
	Laps        float32 // Circles completed over the run
	Dives       float32 // Near/far cycles over the run
	GroundLevel func(x, y float32) float32
}

// DefaultFlight derives a flight from the terrain edge length.
func DefaultFlight(size float32, ground func(x, y float32) float32) Flight {
	return Flight{
		Radius:      size / 4,
		NearDist:    size / 200,
		FarDist:     size / 2,
		Pitch:       0.45,
		Laps:        1,
		Dives:       3,
		GroundLevel: ground,
	}
}

// Apply places cam for frame i of n.
func (f Flight) Apply(cam *camera.OrbitCamera, i, n int) {
	t := 0.0
	if n > 1 {
		t = float64(i) / float64(n-1)
	}

	angle := 2 * gomath.Pi * float64(f.Laps) * t
	cam.Center.X = f.Radius * float32(gomath.Cos(angle))
	cam.Center.Y = f.Radius * float32(gomath.Sin(angle))
	if f.GroundLevel != nil {
		cam.FollowGround(f.GroundLevel)
	}

	// Tangent heading, looking along the direction of travel.
	cam.Yaw = float32(-angle)
	cam.Pitch = f.Pitch

	// Starts far, 0 -> 1 -> 0 per dive.
	dive := 0.5 - 0.5*gomath.Cos(2*gomath.Pi*float64(f.Dives)*t)
	cam.Distance = f.FarDist + (f.NearDist-f.FarDist)*float32(dive)
}
