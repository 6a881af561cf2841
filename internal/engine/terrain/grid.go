package terrain

// GridMesh builds the index-space grid every rendered patch shares.
// Vertices are (col,row) pairs in sample units. The renderer maps them to
// [-1,1]^2 and fetches the height texel at the same (col,row), so one mesh
// serves every node regardless of LOD.
func GridMesh(resolution int) (cells []float32, indices []uint32) {
	if resolution < 2 {
		return nil, nil
	}

	cells = make([]float32, 0, resolution*resolution*2)
	for row := 0; row < resolution; row++ {
		for col := 0; col < resolution; col++ {
			cells = append(cells, float32(col), float32(row))
		}
	}

	quads := resolution - 1
	indices = make([]uint32, 0, quads*quads*6)
	for row := 0; row < quads; row++ {
		for col := 0; col < quads; col++ {
			i0 := uint32(row*resolution + col)
			i1 := i0 + 1
			i2 := i0 + uint32(resolution)
			i3 := i2 + 1
			// Counter-clockwise seen from +Z
			indices = append(indices, i0, i1, i3, i0, i3, i2)
		}
	}
	return cells, indices
}
