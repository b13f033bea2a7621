// Package debugui provides Dear ImGui panels for inspecting reconcilers at
// runtime.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
)

// Panel renders one ImGui window per frame.
type Panel interface {
	Render()
}

// PanelFunc adapts a plain render function to Panel.
type PanelFunc func()

func (f PanelFunc) Render() { f() }

// InputState tracks whether ImGui is consuming mouse or keyboard input.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Set is an ordered group of panels rendered together.
type Set struct {
	panels []Panel
	input  InputState
}

func NewSet(panels ...Panel) *Set {
	return &Set{panels: panels}
}

// Add appends panels to the set.
func (s *Set) Add(panels ...Panel) {
	s.panels = append(s.panels, panels...)
}

// Render records the input capture state and renders every panel. It must
// run between the backend's BeginFrame and EndFrame.
func (s *Set) Render() {
	io := imgui.CurrentIO()
	s.input.WantCaptureMouse = io.WantCaptureMouse()
	s.input.WantCaptureKeyboard = io.WantCaptureKeyboard()

	for _, p := range s.panels {
		p.Render()
	}
}

// Input returns the capture state seen by the last Render.
func (s *Set) Input() InputState {
	return s.input
}
