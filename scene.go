package birch

import "slices"

// Scene is the top-level object that owns the node tree, cameras and lights.
// A Renderer draws it.
type Scene struct {
	root    *Node
	cameras []*Camera

	// Lights holds the scene lights used by lit sprites.
	Lights *LightManager

	updateFunc func(dt float32)
	tweens     []*TweenGroup
	tileLayers []*TileLayer
}

// NewScene creates a new scene with a pre-created root container and no
// cameras. Lighting starts disabled.
func NewScene() *Scene {
	return &Scene{
		root:   NewContainer("root"),
		Lights: NewLightManager(DefaultMaxLights),
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// NewCamera creates a camera with the given viewport and adds it to the
// scene. Cameras render in creation order.
func (s *Scene) NewCamera(viewport Rect) *Camera {
	cam := NewCamera(viewport)
	s.cameras = append(s.cameras, cam)
	return cam
}

// AddCamera adds an existing camera.
func (s *Scene) AddCamera(cam *Camera) {
	s.cameras = append(s.cameras, cam)
}

// RemoveCamera removes a camera from the scene.
func (s *Scene) RemoveCamera(cam *Camera) {
	for i, c := range s.cameras {
		if c == cam {
			s.cameras = append(s.cameras[:i], s.cameras[i+1:]...)
			return
		}
	}
}

// Cameras returns the scene's camera list. The returned slice MUST NOT be mutated.
func (s *Scene) Cameras() []*Camera {
	return s.cameras
}

// MainCamera returns the first camera, or nil.
func (s *Scene) MainCamera() *Camera {
	if len(s.cameras) == 0 {
		return nil
	}
	return s.cameras[0]
}

// SetUpdateFunc sets a callback run at the start of every Update.
func (s *Scene) SetUpdateFunc(fn func(dt float32)) {
	s.updateFunc = fn
}

// AddTween registers a tween group advanced by Update until it is done.
func (s *Scene) AddTween(g *TweenGroup) *TweenGroup {
	s.tweens = append(s.tweens, g)
	return g
}

// AddTileLayer registers a tile layer whose animations Update advances.
func (s *Scene) AddTileLayer(l *TileLayer) {
	s.tileLayers = append(s.tileLayers, l)
}

// Update advances the update callback, tweens, tile animations, lights and
// cameras by dt seconds.
func (s *Scene) Update(dt float32) {
	if s.updateFunc != nil {
		s.updateFunc(dt)
	}

	// Groups added by OnDone callbacks start on the next Update.
	for i, n := 0, len(s.tweens); i < n; i++ {
		s.tweens[i].Update(dt)
	}
	s.tweens = slices.DeleteFunc(s.tweens, func(g *TweenGroup) bool { return g.Done })

	for _, l := range s.tileLayers {
		l.Update(dt)
	}
	s.Lights.Update()
	for _, cam := range s.cameras {
		cam.Update(dt)
	}
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply.
var globalDebug bool
