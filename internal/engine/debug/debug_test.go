package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
	"github.com/Faultbox/midgard-terrain/internal/engine/tile"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

func TestAppendBoxLines(t *testing.T) {
	box := math.AABB{Min: math.Vec3{X: -1, Y: -2, Z: 0}, Max: math.Vec3{X: 1, Y: 2, Z: 5}}
	color := math.Vec3{X: 1, Y: 0.5, Z: 0}

	lines := AppendBoxLines(nil, box, color)
	require.Len(t, lines, BoxVertexCount*LineVertexFloats)

	for i := 0; i < len(lines); i += LineVertexFloats {
		x, y, z := lines[i], lines[i+1], lines[i+2]
		require.Contains(t, []float32{-1, 1}, x)
		require.Contains(t, []float32{-2, 2}, y)
		require.Contains(t, []float32{0, 5}, z)
		require.Equal(t, []float32{1, 0.5, 0}, lines[i+3:i+6])
	}

	// Appends rather than overwrites.
	lines = AppendBoxLines(lines, box, color)
	require.Len(t, lines, 2*BoxVertexCount*LineVertexFloats)
}

func TestLODColorRepeats(t *testing.T) {
	require.Equal(t, LODColor(1), LODColor(9))
	require.NotEqual(t, LODColor(0), LODColor(1))
}

func TestNodeBoxes(t *testing.T) {
	pool, err := tile.NewPool(texture.NewMemoryBackend(), tile.PoolConfig{Capacity: 32, Resolution: 3})
	require.NoError(t, err)
	tr, err := terrain.New(terrain.Config{
		Size: 100, MaxLOD: 2, Tau: 1, RootError: 50, TileResolution: 3,
	}, terrain.SampleFunc(func(x, y float32) float32 { return 0 }), tile.NewCache(pool))
	require.NoError(t, err)

	items := tr.Update(terrain.Viewer{Position: math.Vec3{Z: 1}, HFOV: 1.5, ViewportWidth: 1000})
	require.NotEmpty(t, items)

	lines := NodeBoxes(nil, tr, items)
	require.Len(t, lines, len(items)*BoxVertexCount*LineVertexFloats)
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "terrain")

	// 2x2, bottom row red, top row blue in GL order.
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 2, 2)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	r, _, b, _ := img.At(0, 0).RGBA()
	require.Zero(t, r)
	require.NotZero(t, b)
	r, _, _, _ = img.At(0, 1).RGBA()
	require.NotZero(t, r)

	second, err := sc.CaptureFromPixels(pixels, 2, 2)
	require.NoError(t, err)
	require.NotEqual(t, path, second)
}

func TestCaptureFromPixelsSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "terrain")
	_, err := sc.CaptureFromPixels(make([]byte, 7), 2, 2)
	require.Error(t, err)
}
