// Package texture owns GPU texture arrays: the backend interface the tile
// pool allocates through, an OpenGL implementation and an in-memory one for
// headless runs and tests.
package texture

import (
	"errors"
	"fmt"
)

// Format is a texel format for a texture array.
type Format int

const (
	// FormatR32F stores one 32-bit float per texel (heightmap elevation).
	FormatR32F Format = iota
)

// String returns the config name of the format.
func (f Format) String() string {
	switch f {
	case FormatR32F:
		return "r32f"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a config name to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "r32f":
		return FormatR32F, nil
	default:
		return 0, fmt.Errorf("unknown texture format %q", name)
	}
}

// ArrayID identifies a texture array created by a Backend. Zero is never a
// valid handle.
type ArrayID uint32

var (
	// ErrUnknownArray is returned for handles the backend did not create.
	ErrUnknownArray = errors.New("unknown texture array")
	// ErrSliceOutOfRange is returned when a slice index exceeds the array depth.
	ErrSliceOutOfRange = errors.New("texture slice out of range")
	// ErrSizeMismatch is returned when upload dimensions disagree with the array.
	ErrSizeMismatch = errors.New("texture size mismatch")
)

// Backend allocates texture arrays and uploads slice data.
// Implementations are not safe for concurrent use.
type Backend interface {
	// CreateTextureArray allocates width x height x depth texels with the given mip levels.
	CreateTextureArray(format Format, levels, width, height, depth int) (ArrayID, error)
	// UpdateSlice replaces the contents of one array slice. len(data) must be width*height.
	UpdateSlice(id ArrayID, slice, width, height int, data []float32) error
	// DeleteTextureArray frees the array. Unknown handles are ignored.
	DeleteTextureArray(id ArrayID)
}

// arrayDesc records the shape of an allocated array for argument checks.
type arrayDesc struct {
	format Format
	levels int
	width  int
	height int
	depth  int
}

func (d arrayDesc) checkUpload(slice, width, height int, data []float32) error {
	if slice < 0 || slice >= d.depth {
		return fmt.Errorf("%w: slice %d, depth %d", ErrSliceOutOfRange, slice, d.depth)
	}
	if width != d.width || height != d.height || len(data) != width*height {
		return fmt.Errorf("%w: got %dx%d (%d texels), array is %dx%d",
			ErrSizeMismatch, width, height, len(data), d.width, d.height)
	}
	return nil
}

func validateShape(levels, width, height, depth int) error {
	if levels < 1 || width < 1 || height < 1 || depth < 1 {
		return fmt.Errorf("invalid texture array shape: levels=%d %dx%dx%d", levels, width, height, depth)
	}
	return nil
}
