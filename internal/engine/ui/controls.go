package ui

import "github.com/AllenDang/cimgui-go/imgui"

// Controls is one frame of viewer input, independent of the frontend that
// produced it. Toggle fields report a key press, not a held key.
type Controls struct {
	Forward float32 // +1 forward, -1 back
	Right   float32 // +1 right, -1 left
	DragX   float32
	DragY   float32
	Wheel   float32

	Quit       bool
	Wireframe  bool
	TintLOD    bool
	Boxes      bool
	Freeze     bool
	Screenshot bool
}

// ReadControls collects the viewer controls from the ImGui IO state. Mouse
// and keyboard input that an ImGui window wants is left to ImGui.
func ReadControls() Controls {
	io := imgui.CurrentIO()
	var c Controls

	if !io.WantCaptureMouse() {
		if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
			delta := io.MouseDelta()
			c.DragX, c.DragY = delta.X, delta.Y
		}
		c.Wheel = io.MouseWheel()
	}

	if io.WantCaptureKeyboard() {
		return c
	}

	c.Forward = axis(imgui.KeyW, imgui.KeyS)
	c.Right = axis(imgui.KeyD, imgui.KeyA)
	c.Quit = IsKeyPressed(imgui.KeyEscape)
	c.Wireframe = IsKeyPressed(imgui.KeyF)
	c.TintLOD = IsKeyPressed(imgui.KeyL)
	c.Boxes = IsKeyPressed(imgui.KeyB)
	c.Freeze = IsKeyPressed(imgui.KeySpace)
	c.Screenshot = IsKeyPressed(imgui.KeyF12)
	return c
}

func axis(positive, negative imgui.Key) float32 {
	var v float32
	if IsKeyDown(positive) {
		v++
	}
	if IsKeyDown(negative) {
		v--
	}
	return v
}
