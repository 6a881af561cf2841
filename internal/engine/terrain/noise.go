package terrain

import (
	gomath "math"

	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// NoiseSource synthesises elevation with seeded fractal value noise.
// Heights lie in [-Amplitude, Amplitude].
type NoiseSource struct {
	Seed       int64
	Octaves    int
	Frequency  float32 // Base lattice cells per world unit
	Lacunarity float32 // Frequency multiplier per octave
	Gain       float32 // Amplitude multiplier per octave
	Amplitude  float32 // Peak elevation in world units
}

// Generate implements Source.
func (n NoiseSource) Generate(center math.Vec2, size float32, resolution int) Heightmap {
	return sampleGrid(n.Height, center, size, resolution)
}

// Height returns the elevation at a world position.
func (n NoiseSource) Height(x, y float32) float32 {
	if n.Octaves <= 0 {
		return 0
	}

	amplitude := 1.0
	frequency := float64(n.Frequency)
	sum, norm := 0.0, 0.0
	for i := range n.Octaves {
		v := valueNoise2D(float64(x)*frequency, float64(y)*frequency, n.Seed+int64(i)*131)
		sum += (v*2 - 1) * amplitude
		norm += amplitude
		amplitude *= float64(n.Gain)
		frequency *= float64(n.Lacunarity)
	}
	if norm == 0 {
		return 0
	}
	return float32(sum / norm * float64(n.Amplitude))
}

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// hash2 is a SplitMix64 finaliser over the lattice coordinates.
func hash2(x, y, seed int64) uint64 {
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

// latticeValue maps a lattice point to [0,1].
func latticeValue(x, y, seed int64) float64 {
	return float64(hash2(x, y, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

// valueNoise2D returns smoothly interpolated lattice noise in [0,1].
func valueNoise2D(x, y float64, seed int64) float64 {
	x0 := gomath.Floor(x)
	y0 := gomath.Floor(y)
	fx := fade(x - x0)
	fy := fade(y - y0)

	ix, iy := int64(x0), int64(y0)
	v00 := latticeValue(ix, iy, seed)
	v10 := latticeValue(ix+1, iy, seed)
	v01 := latticeValue(ix, iy+1, seed)
	v11 := latticeValue(ix+1, iy+1, seed)

	return lerp(lerp(v00, v10, fx), lerp(v01, v11, fx), fy)
}
