// Package lighting provides lighting utilities for terrain shading.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// SunDirection converts compass angles to a unit vector pointing towards the
// sun. Azimuth is measured in degrees clockwise from +Y (north) around Z,
// elevation in degrees above the horizon.
func SunDirection(azimuth, elevation float32) math.Vec3 {
	az := float64(azimuth) * gomath.Pi / 180
	el := float64(elevation) * gomath.Pi / 180

	return math.Vec3{
		X: float32(gomath.Cos(el) * gomath.Sin(az)),
		Y: float32(gomath.Cos(el) * gomath.Cos(az)),
		Z: float32(gomath.Sin(el)),
	}
}

// LightDirection is the direction light travels: from the sun towards the
// ground.
func LightDirection(azimuth, elevation float32) math.Vec3 {
	return SunDirection(azimuth, elevation).Scale(-1)
}
