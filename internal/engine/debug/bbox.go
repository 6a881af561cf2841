// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// BoxVertexCount is the number of line vertices per box (12 edges x 2).
const BoxVertexCount = 24

// LineVertexFloats is the float count of one line vertex: x, y, z, r, g, b.
const LineVertexFloats = 6

var lodPalette = [...]math.Vec3{
	{X: 1.0, Y: 0.6, Z: 0.6},
	{X: 1.0, Y: 0.85, Z: 0.55},
	{X: 0.95, Y: 1.0, Z: 0.55},
	{X: 0.6, Y: 1.0, Z: 0.6},
	{X: 0.55, Y: 1.0, Z: 0.95},
	{X: 0.6, Y: 0.75, Z: 1.0},
	{X: 0.8, Y: 0.6, Z: 1.0},
	{X: 1.0, Y: 0.6, Z: 0.9},
}

// LODColor returns the debug color of a quadtree depth. Colors repeat every
// eight levels.
func LODColor(lod uint8) math.Vec3 {
	return lodPalette[int(lod)%len(lodPalette)]
}

// AppendBoxLines appends the 12 edges of box to dst as line vertices.
func AppendBoxLines(dst []float32, box math.AABB, color math.Vec3) []float32 {
	lo, hi := box.Min, box.Max
	corners := [8]math.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	edges := [12][2]int{
		// Bottom face
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		// Top face
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		// Vertical edges
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}

	for _, e := range edges {
		for _, c := range e {
			p := corners[c]
			dst = append(dst, p.X, p.Y, p.Z, color.X, color.Y, color.Z)
		}
	}
	return dst
}

// NodeBoxes appends a wireframe of every rendered node's bounding box,
// colored by depth.
func NodeBoxes(dst []float32, t *terrain.Terrain, items []terrain.RenderItem) []float32 {
	for _, it := range items {
		n := t.Node(it.Node)
		dst = AppendBoxLines(dst, n.BBox, LODColor(n.LOD))
	}
	return dst
}
