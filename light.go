package birch

import (
	"fmt"
	"math"
	"slices"
)

// Light is a point light affecting sprites drawn with LightPipeline.
type Light struct {
	// X and Y are the light's world position.
	X, Y float64
	// Radius is the distance at which the light fades to nothing.
	Radius float64
	// Intensity scales the light color.
	Intensity float64
	// Color is 0xRRGGBB.
	Color uint32
	// ScrollFactorX and ScrollFactorY scale camera scroll for the light.
	ScrollFactorX, ScrollFactorY float64
	// Visible lights are considered for culling; hidden ones are skipped.
	Visible bool
	// Target, if set, makes the light follow this node's world position.
	Target *Node
	// OffsetX and OffsetY offset the light from the target.
	OffsetX, OffsetY float64
}

// NewLight returns a visible white light.
func NewLight(x, y, radius, intensity float64) *Light {
	return &Light{
		X: x, Y: y,
		Radius:        radius,
		Intensity:     intensity,
		Color:         0xffffff,
		ScrollFactorX: 1,
		ScrollFactorY: 1,
		Visible:       true,
	}
}

// LightManager holds the scene lights and selects the subset each camera
// uploads to the lighting pipeline.
type LightManager struct {
	// Enabled turns lit sprites on. When false, sprites using LightPipeline
	// are drawn unlit by the multi-texture pipeline.
	Enabled bool
	// Ambient is the 0xRRGGBB color of unlit areas.
	Ambient uint32
	// MaxLights caps the lights used per camera; the closest to the view
	// center win.
	MaxLights int

	lights    []*Light
	warnedCap bool
}

// NewLightManager returns a disabled manager with a dark ambient color.
func NewLightManager(maxLights int) *LightManager {
	if maxLights <= 0 {
		maxLights = DefaultMaxLights
	}
	return &LightManager{
		Ambient:   0x808080,
		MaxLights: maxLights,
	}
}

// Enable turns lighting on and returns the manager.
func (lm *LightManager) Enable() *LightManager {
	lm.Enabled = true
	return lm
}

// AddLight adds a light.
func (lm *LightManager) AddLight(l *Light) *Light {
	lm.lights = append(lm.lights, l)
	return l
}

// RemoveLight removes a light.
func (lm *LightManager) RemoveLight(l *Light) {
	for i, existing := range lm.lights {
		if existing == l {
			lm.lights = append(lm.lights[:i], lm.lights[i+1:]...)
			return
		}
	}
}

// Has reports whether l is managed by lm.
func (lm *LightManager) Has(l *Light) bool {
	return slices.Contains(lm.lights, l)
}

// ClearLights removes all lights.
func (lm *LightManager) ClearLights() {
	clear(lm.lights)
	lm.lights = lm.lights[:0]
}

// Lights returns the current light list. The returned slice MUST NOT be mutated.
func (lm *LightManager) Lights() []*Light {
	return lm.lights
}

// Update moves lights that follow a target node.
func (lm *LightManager) Update() {
	for _, l := range lm.lights {
		if l.Target == nil {
			continue
		}
		if l.Target.IsDisposed() {
			l.Target = nil
			continue
		}
		x, y := l.Target.WorldPosition()
		l.X, l.Y = x+l.OffsetX, y+l.OffsetY
	}
}

// LightsFor appends to dst the lights visible to cam, closest to the view
// center first, capped at MaxLights.
func (lm *LightManager) LightsFor(cam *Camera, dst []*Light) []*Light {
	return lm.lightsFor(cam, dst, lm.MaxLights)
}

// lightsFor is LightsFor with an explicit cap. MaxLights is left untouched.
func (lm *LightManager) lightsFor(cam *Camera, dst []*Light, limit int) []*Light {
	start := len(dst)
	dst = cam.CullLights(lm.lights, dst)
	visible := dst[start:]

	view := cam.WorldView()
	cx, cy := view.X+view.Width/2, view.Y+view.Height/2
	slices.SortStableFunc(visible, func(a, b *Light) int {
		da := lightDistance(a, cam, cx, cy)
		db := lightDistance(b, cam, cx, cy)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})

	if len(visible) > limit {
		if !lm.warnedCap {
			lm.warnedCap = true
			Logger().Warn("visible lights exceed MaxLights, dropping the farthest",
				"visible", len(visible), "max", limit)
		}
		clear(dst[start+limit:])
		dst = dst[:start+limit]
	}
	return dst
}

// lightDistance is the squared distance from the view center to the light as
// the camera sees it.
func lightDistance(l *Light, cam *Camera, cx, cy float64) float64 {
	dx := l.X - cam.renderScrollX*(1-l.ScrollFactorX) - cx
	dy := l.Y - cam.renderScrollY*(1-l.ScrollFactorY) - cy
	return dx*dx + dy*dy
}

// lightUniforms caches per-index uniform names so uploads do not format
// strings every frame.
type lightUniforms struct {
	position, color, radius, intensity string
}

var lightUniformNames []lightUniforms

func lightUniformName(i int) lightUniforms {
	for len(lightUniformNames) <= i {
		n := len(lightUniformNames)
		lightUniformNames = append(lightUniformNames, lightUniforms{
			position:  fmt.Sprintf("uLights[%d].position", n),
			color:     fmt.Sprintf("uLights[%d].color", n),
			radius:    fmt.Sprintf("uLights[%d].radius", n),
			intensity: fmt.Sprintf("uLights[%d].intensity", n),
		})
	}
	return lightUniformNames[i]
}

// uploadLights sets the lighting uniforms of p for cam. Light positions are
// sent in screen pixels with each light's scroll factor applied.
func uploadLights(p *Pipeline, cam *Camera, ambient uint32, lights []*Light, scratch *Matrix) {
	b := p.backend
	prog := p.program
	b.SetUniform(prog, "uCamera",
		float32(cam.Viewport.X), float32(cam.Viewport.Y),
		float32(cam.Rotation), float32(cam.Zoom))
	ar, ag, ab := rgbFloats(ambient)
	b.SetUniform(prog, "uAmbientLightColor", ar, ag, ab)
	b.SetUniform(prog, "uLightCount", float32(len(lights)))

	for i, l := range lights {
		names := lightUniformName(i)
		scratch.CopyWithScrollFactorFrom(&cam.matrixCombined, cam.renderScrollX, cam.renderScrollY, l.ScrollFactorX, l.ScrollFactorY)
		x, y := scratch.TransformPoint(l.X, l.Y)
		r, g, bl := rgbFloats(l.Color)
		b.SetUniform(prog, names.position, float32(x), float32(y))
		b.SetUniform(prog, names.color, r, g, bl)
		b.SetUniform(prog, names.radius, float32(l.Radius*math.Abs(cam.Zoom)))
		b.SetUniform(prog, names.intensity, float32(l.Intensity))
	}
}

func rgbFloats(rgb uint32) (r, g, b float32) {
	return float32(rgb>>16&0xff) / 255, float32(rgb>>8&0xff) / 255, float32(rgb&0xff) / 255
}
