package terrain

import (
	gomath "math"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Viewer is the per-frame camera state the refinement reads.
type Viewer struct {
	Position      math.Vec3 // World position of the eye
	HFOV          float32   // Horizontal field of view in radians
	ViewportWidth float32   // Viewport width in pixels
}

// ScreenSpaceError projects a geometric error seen from distance onto the
// viewport, in pixels:
//
//	rho = e * width / (2 * D * tan(hfov/2))
//
// A viewer inside the node's box has D == 0 and gets rho == 0, which renders
// the node as-is. That under-refines the patch under the camera; callers rely
// on it, so it is kept.
func ScreenSpaceError(geometricError, distance float32, v Viewer) float32 {
	if distance <= 0 {
		return 0
	}
	k := 2 * float64(distance) * gomath.Tan(float64(v.HFOV)/2)
	return float32(float64(geometricError) * float64(v.ViewportWidth) / k)
}
