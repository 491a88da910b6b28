package birch

import (
	"encoding/json"
	"errors"
	"fmt"
)

// scriptStep is one action of a frame script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Zoom   float64 `json:"zoom,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// FrameScript drives a scene through a fixed sequence of camera moves and
// screenshots, one action per tick. It is used for visual regression runs:
//
//	{"steps": [
//	  {"action": "scroll", "x": 200, "y": 0},
//	  {"action": "wait", "frames": 2},
//	  {"action": "screenshot", "label": "scrolled"}
//	]}
//
// Supported actions are scroll, zoom, center, wait and screenshot. Camera
// actions apply to the scene's main camera.
type FrameScript struct {
	steps  []scriptStep
	cursor int
	wait   int
	done   bool
}

// ParseFrameScript parses a JSON frame script.
func ParseFrameScript(data []byte) (*FrameScript, error) {
	var doc struct {
		Steps []scriptStep `json:"steps"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("birch: parse frame script: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, errors.New("birch: parse frame script: no steps")
	}
	for i, st := range doc.Steps {
		switch st.Action {
		case "scroll", "zoom", "center", "wait", "screenshot":
		default:
			return nil, fmt.Errorf("birch: parse frame script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &FrameScript{steps: doc.Steps}, nil
}

// Done reports whether every step has run.
func (fs *FrameScript) Done() bool { return fs.done }

// SetFrameScript attaches a script that advances once per Update.
func (g *Game) SetFrameScript(fs *FrameScript) { g.script = fs }

// step runs at most one action.
func (fs *FrameScript) step(scene *Scene, shoot func(label string)) {
	if fs.done {
		return
	}
	if fs.wait > 0 {
		fs.wait--
		return
	}
	if fs.cursor >= len(fs.steps) {
		fs.done = true
		return
	}
	st := fs.steps[fs.cursor]
	fs.cursor++

	cam := scene.MainCamera()
	switch st.Action {
	case "scroll":
		if cam != nil {
			cam.ScrollX, cam.ScrollY = st.X, st.Y
		}
	case "center":
		if cam != nil {
			cam.CenterOn(st.X, st.Y)
		}
	case "zoom":
		if cam != nil && st.Zoom > 0 {
			cam.Zoom = st.Zoom
		}
	case "wait":
		if st.Frames > 0 {
			fs.wait = st.Frames - 1
		}
	case "screenshot":
		shoot(st.Label)
	}

	if fs.cursor >= len(fs.steps) && fs.wait == 0 {
		fs.done = true
	}
}
