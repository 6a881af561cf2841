// Package terrain implements the adaptive quadtree that decides, each frame,
// which terrain patches to draw and at which resolution, plus the heightmap
// sources that fill the patches' tiles.
package terrain

import (
	gomath "math"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// Heightmap is a square grid of elevation samples covering one node footprint.
type Heightmap struct {
	Resolution int       // Samples per edge
	Samples    []float32 // Row-major, Samples[row*Resolution+col]
	ZMin       float32   // Lowest sample
	ZMax       float32   // Highest sample
}

// At returns the sample in column col, row row.
func (h *Heightmap) At(col, row int) float32 {
	return h.Samples[row*h.Resolution+col]
}

// Source produces heightmaps. Implementations must be deterministic for a
// fixed configuration and free of side effects.
type Source interface {
	// Generate samples a size x size footprint centered on center. Sample
	// (col,row) lies at center - size/2 + (col,row) * size/(resolution-1), so
	// neighbouring footprints share their edge samples.
	Generate(center math.Vec2, size float32, resolution int) Heightmap
}

// SampleFunc adapts a point elevation function to a Source.
type SampleFunc func(x, y float32) float32

// Generate implements Source.
func (f SampleFunc) Generate(center math.Vec2, size float32, resolution int) Heightmap {
	return sampleGrid(f, center, size, resolution)
}

// sampleGrid evaluates height on the grid described by Source.Generate.
func sampleGrid(height func(x, y float32) float32, center math.Vec2, size float32, resolution int) Heightmap {
	if resolution < 1 {
		resolution = 1
	}
	hm := Heightmap{
		Resolution: resolution,
		Samples:    make([]float32, resolution*resolution),
		ZMin:       float32(gomath.Inf(1)),
		ZMax:       float32(gomath.Inf(-1)),
	}

	origin := center.Sub(math.Vec2{X: size / 2, Y: size / 2})
	var step float32
	if resolution > 1 {
		step = size / float32(resolution-1)
	} else {
		origin = center
	}

	for row := 0; row < resolution; row++ {
		y := origin.Y + float32(row)*step
		for col := 0; col < resolution; col++ {
			z := height(origin.X+float32(col)*step, y)
			hm.Samples[row*resolution+col] = z
			hm.ZMin = min(hm.ZMin, z)
			hm.ZMax = max(hm.ZMax, z)
		}
	}
	return hm
}
