package math

// AABB is an axis-aligned bounding box in world space.
// Min is component-wise less than or equal to Max.
type AABB struct {
	Min Vec3
	Max Vec3
}

// NewAABB builds a box from a ground footprint (center, edge length) and an
// elevation range.
func NewAABB(center Vec2, size, zMin, zMax float32) AABB {
	h := size / 2
	return AABB{
		Min: Vec3{center.X - h, center.Y - h, zMin},
		Max: Vec3{center.X + h, center.Y + h, zMax},
	}
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ClosestPoint returns the point of the box nearest to p.
func (b AABB) ClosestPoint(p Vec3) Vec3 {
	return Vec3{
		clamp(p.X, b.Min.X, b.Max.X),
		clamp(p.Y, b.Min.Y, b.Max.Y),
		clamp(p.Z, b.Min.Z, b.Max.Z),
	}
}

// DistanceTo returns the distance from p to the nearest point of the box.
// It is zero when p is inside.
func (b AABB) DistanceTo(p Vec3) float32 {
	return p.Distance(b.ClosestPoint(p))
}

// WithZRange returns a copy of b with the elevation range replaced.
func (b AABB) WithZRange(zMin, zMax float32) AABB {
	b.Min.Z = zMin
	b.Max.Z = zMax
	return b
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
