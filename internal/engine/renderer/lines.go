package renderer

import (
	_ "embed"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-terrain/internal/engine/debug"
	"github.com/Faultbox/midgard-terrain/internal/engine/shader"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

//go:embed shaders/lines.vert
var linesVertexShader string

//go:embed shaders/lines.frag
var linesFragmentShader string

// LineRenderer draws colored line lists streamed each frame, such as node
// bounding boxes.
type LineRenderer struct {
	program  *shader.Program
	vao      uint32
	vbo      uint32
	capacity int // Floats the VBO can hold
}

// NewLineRenderer compiles the line program and creates an empty stream buffer.
func NewLineRenderer() (*LineRenderer, error) {
	program, err := shader.New(linesVertexShader, linesFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("line shader: %w", err)
	}

	r := &LineRenderer{program: program}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	stride := int32(debug.LineVertexFloats * 4)
	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	// Color attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return r, nil
}

// Draw uploads vertices ([x,y,z,r,g,b] per vertex) and draws them as lines.
func (r *LineRenderer) Draw(viewProj math.Mat4, vertices []float32) {
	if len(vertices) == 0 {
		return
	}

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	if len(vertices) > r.capacity {
		r.capacity = len(vertices)
		gl.BufferData(gl.ARRAY_BUFFER, r.capacity*4, unsafe.Pointer(&vertices[0]), gl.STREAM_DRAW)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, unsafe.Pointer(&vertices[0]))
	}

	r.program.Use()
	r.program.SetMat4("uViewProj", viewProj)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/debug.LineVertexFloats))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// Close releases GL objects.
func (r *LineRenderer) Close() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.program != nil {
		r.program.Delete()
	}
}
