package renderer

import (
	_ "embed"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/debug"
	"github.com/Faultbox/midgard-terrain/internal/engine/lighting"
	"github.com/Faultbox/midgard-terrain/internal/engine/shader"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

//go:embed shaders/terrain.vert
var terrainVertexShader string

//go:embed shaders/terrain.frag
var terrainFragmentShader string

// heightUnit is the texture unit the tile array is bound to.
const heightUnit = 0

// TerrainRenderer draws render items as instances of one shared grid whose
// heights come from the tile pool's texture array.
type TerrainRenderer struct {
	program    *shader.Program
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	resolution int

	heightScale float32
	fogDistance float32

	// Sun direction (world space, pointing from the light)
	LightDir math.Vec3
	// Wireframe draws triangle edges only
	Wireframe bool
	// TintLOD shades each patch by its depth in the quadtree
	TintLOD bool
}

// NewTerrainRenderer compiles the terrain program and uploads the grid mesh
// for tiles of the given resolution.
func NewTerrainRenderer(resolution int, heightScale, fogDistance float32) (*TerrainRenderer, error) {
	if resolution < 2 {
		return nil, fmt.Errorf("tile resolution %d too small", resolution)
	}

	program, err := shader.New(terrainVertexShader, terrainFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}

	r := &TerrainRenderer{
		program:     program,
		resolution:  resolution,
		heightScale: max(heightScale, 1),
		fogDistance: max(fogDistance, 1),
		LightDir:    lighting.LightDirection(135, 40),
	}
	r.createGrid()

	logger.Debug("terrain renderer created",
		zap.Int("resolution", resolution),
		zap.Int32("indices", r.indexCount),
	)
	return r, nil
}

func (r *TerrainRenderer) createGrid() {
	cells, indices := terrain.GridMesh(r.resolution)
	r.indexCount = int32(len(indices))

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(cells)*4, unsafe.Pointer(&cells[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	// Cell coordinate (location = 0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Draw renders every item. array must be the texture array of the pool the
// items' slices refer to.
func (r *TerrainRenderer) Draw(viewProj math.Mat4, eye math.Vec3, array texture.ArrayID, items []terrain.RenderItem) {
	if len(items) == 0 {
		return
	}

	if r.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.program.Use()
	r.program.SetMat4("uViewProj", viewProj)
	r.program.SetInt("uHeights", heightUnit)
	r.program.SetInt("uResolution", int32(r.resolution))
	r.program.SetVec3("uLightDir", r.LightDir.X, r.LightDir.Y, r.LightDir.Z)
	r.program.SetVec3("uCameraPos", eye.X, eye.Y, eye.Z)
	r.program.SetFloat("uHeightScale", r.heightScale)
	r.program.SetFloat("uFogDistance", r.fogDistance)

	gl.ActiveTexture(gl.TEXTURE0 + heightUnit)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, uint32(array))
	gl.BindVertexArray(r.vao)

	for i := range items {
		item := &items[i]
		r.program.SetMat4("uModel", item.Transform)
		r.program.SetInt("uSlice", int32(item.Slice))
		r.program.SetFloat("uSpacing", item.Size/float32(r.resolution-1))

		tint := math.Vec3{X: 1, Y: 1, Z: 1}
		if r.TintLOD {
			tint = debug.LODColor(item.Key.LOD)
		}
		r.program.SetVec3("uLodTint", tint.X, tint.Y, tint.Z)

		gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, nil)
	}

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
}

// Close releases GL objects.
func (r *TerrainRenderer) Close() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
	}
	if r.program != nil {
		r.program.Delete()
	}
}
