package terrain

import (
	"github.com/Faultbox/midgard-terrain/internal/engine/tile"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

// NodeID indexes a node in the terrain's node arena. IDs stay valid for the
// lifetime of the Terrain.
type NodeID int32

// NoNode marks an absent parent or child.
const NoNode NodeID = -1

// Node is one quadtree cell.
type Node struct {
	BBox           math.AABB // Footprint plus elevation range
	Center         math.Vec2 // Footprint center on the ground plane
	Size           float32   // Footprint edge length
	LOD            uint8     // Depth, 0 at the root
	TileX, TileY   uint32    // Position within the LOD level
	GeometricError float32   // Bound on elevation deviation, halves per level
	Parent         NodeID    // Traversal only, never ownership
	Children       [4]NodeID // All NoNode for a leaf
	Populated      bool      // BBox elevation comes from a generated tile
}

var noChildren = [4]NodeID{NoNode, NoNode, NoNode, NoNode}

// IsLeaf reports whether the node has never been split.
func (n *Node) IsLeaf() bool {
	return n.Children[0] == NoNode
}

// Key returns the node's tile identity.
func (n *Node) Key() tile.Key {
	return tile.Key{LOD: n.LOD, X: n.TileX, Y: n.TileY}
}

// childNode derives child i (0..3) of parent. Bit 0 of i selects the +X half,
// bit 1 the +Y half. Until its own tile is generated the child borrows the
// parent's elevation range.
func childNode(parent *Node, parentID NodeID, i int) Node {
	dx, dy := i&1, i>>1
	quarter := parent.Size / 4
	half := parent.Size / 2

	center := math.Vec2{
		X: parent.Center.X + float32(dx*2-1)*quarter,
		Y: parent.Center.Y + float32(dy*2-1)*quarter,
	}

	return Node{
		BBox:           math.NewAABB(center, half, parent.BBox.Min.Z, parent.BBox.Max.Z),
		Center:         center,
		Size:           half,
		LOD:            parent.LOD + 1,
		TileX:          parent.TileX*2 + uint32(dx),
		TileY:          parent.TileY*2 + uint32(dy),
		GeometricError: parent.GeometricError / 2,
		Parent:         parentID,
		Children:       noChildren,
	}
}
