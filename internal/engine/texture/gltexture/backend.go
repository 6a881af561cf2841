// Package gltexture implements texture.Backend on OpenGL texture arrays.
package gltexture

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-terrain/internal/engine/texture"
)

// Backend allocates GL_TEXTURE_2D_ARRAY objects. It must be used on the
// thread that owns the GL context, after gl.Init.
type Backend struct {
	arrays map[texture.ArrayID]shape
}

// shape records what was allocated so uploads can be checked before they
// reach the driver.
type shape struct {
	format texture.Format
	width  int
	height int
	depth  int
}

// New creates a backend bound to the current GL context.
func New() *Backend {
	return &Backend{arrays: make(map[texture.ArrayID]shape)}
}

var _ texture.Backend = (*Backend)(nil)

// CreateTextureArray allocates immutable-size storage for the array.
func (b *Backend) CreateTextureArray(format texture.Format, levels, width, height, depth int) (texture.ArrayID, error) {
	if levels < 1 || width < 1 || height < 1 || depth < 1 {
		return 0, fmt.Errorf("invalid texture array shape: levels=%d %dx%dx%d", levels, width, height, depth)
	}
	internal, pixelFormat, pixelType, err := glFormat(format)
	if err != nil {
		return 0, err
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, tex)

	for level := 0; level < levels; level++ {
		w := max(width>>level, 1)
		h := max(height>>level, 1)
		gl.TexImage3D(
			gl.TEXTURE_2D_ARRAY,
			int32(level),
			internal,
			int32(w),
			int32(h),
			int32(depth),
			0,
			pixelFormat,
			pixelType,
			nil,
		)
	}

	// Heights are sampled in the vertex shader; float textures are not
	// filterable on every driver, so stay with nearest.
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_MAX_LEVEL, int32(levels-1))
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("glTexImage3D %dx%dx%d: GL error 0x%x", width, height, depth, code)
	}

	id := texture.ArrayID(tex)
	b.arrays[id] = shape{format: format, width: width, height: height, depth: depth}
	return id, nil
}

// UpdateSlice uploads the base level of one slice.
func (b *Backend) UpdateSlice(id texture.ArrayID, slice, width, height int, data []float32) error {
	s, ok := b.arrays[id]
	if !ok {
		return fmt.Errorf("%w: %d", texture.ErrUnknownArray, id)
	}
	if slice < 0 || slice >= s.depth {
		return fmt.Errorf("%w: slice %d, depth %d", texture.ErrSliceOutOfRange, slice, s.depth)
	}
	if width != s.width || height != s.height || len(data) != width*height {
		return fmt.Errorf("%w: got %dx%d, array is %dx%d", texture.ErrSizeMismatch, width, height, s.width, s.height)
	}
	_, pixelFormat, pixelType, err := glFormat(s.format)
	if err != nil {
		return err
	}

	gl.BindTexture(gl.TEXTURE_2D_ARRAY, uint32(id))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexSubImage3D(
		gl.TEXTURE_2D_ARRAY,
		0,
		0, 0, int32(slice),
		int32(width), int32(height), 1,
		pixelFormat,
		pixelType,
		unsafe.Pointer(&data[0]),
	)
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, 0)
	return nil
}

// DeleteTextureArray releases the GL texture.
func (b *Backend) DeleteTextureArray(id texture.ArrayID) {
	if _, ok := b.arrays[id]; !ok {
		return
	}
	tex := uint32(id)
	gl.DeleteTextures(1, &tex)
	delete(b.arrays, id)
}

func glFormat(f texture.Format) (internal int32, pixelFormat, pixelType uint32, err error) {
	switch f {
	case texture.FormatR32F:
		return gl.R32F, gl.RED, gl.FLOAT, nil
	default:
		return 0, 0, 0, fmt.Errorf("no GL mapping for %s", f)
	}
}
