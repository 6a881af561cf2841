package texture

import "fmt"

// MemoryBackend keeps texture arrays in CPU memory. It backs the headless
// benchmark and the tests, and counts uploads for diagnostics.
type MemoryBackend struct {
	next    ArrayID
	arrays  map[ArrayID]*memoryArray
	uploads int
}

type memoryArray struct {
	desc   arrayDesc
	slices [][]float32
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{arrays: make(map[ArrayID]*memoryArray)}
}

// CreateTextureArray allocates depth zeroed slices. Only the base level is stored.
func (b *MemoryBackend) CreateTextureArray(format Format, levels, width, height, depth int) (ArrayID, error) {
	if err := validateShape(levels, width, height, depth); err != nil {
		return 0, err
	}

	b.next++
	arr := &memoryArray{
		desc:   arrayDesc{format: format, levels: levels, width: width, height: height, depth: depth},
		slices: make([][]float32, depth),
	}
	for i := range arr.slices {
		arr.slices[i] = make([]float32, width*height)
	}
	b.arrays[b.next] = arr
	return b.next, nil
}

// UpdateSlice copies data into the slice.
func (b *MemoryBackend) UpdateSlice(id ArrayID, slice, width, height int, data []float32) error {
	arr, ok := b.arrays[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownArray, id)
	}
	if err := arr.desc.checkUpload(slice, width, height, data); err != nil {
		return err
	}
	copy(arr.slices[slice], data)
	b.uploads++
	return nil
}

// DeleteTextureArray drops the array.
func (b *MemoryBackend) DeleteTextureArray(id ArrayID) {
	delete(b.arrays, id)
}

// Slice returns the stored texels of one slice, or nil for an unknown array or slice.
func (b *MemoryBackend) Slice(id ArrayID, slice int) []float32 {
	arr, ok := b.arrays[id]
	if !ok || slice < 0 || slice >= len(arr.slices) {
		return nil
	}
	return arr.slices[slice]
}

// Depth returns the slice count of an array, or 0 if unknown.
func (b *MemoryBackend) Depth(id ArrayID) int {
	if arr, ok := b.arrays[id]; ok {
		return arr.desc.depth
	}
	return 0
}

// Uploads returns the number of successful UpdateSlice calls.
func (b *MemoryBackend) Uploads() int {
	return b.uploads
}

// Bytes returns the CPU memory held by all arrays.
func (b *MemoryBackend) Bytes() int {
	total := 0
	for _, arr := range b.arrays {
		total += arr.desc.width * arr.desc.height * arr.desc.depth * 4
	}
	return total
}
