package birch

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera ScrollX and ScrollY.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera controls the view into the scene. ScrollX and ScrollY are the world
// point shown at the top-left of the viewport when Zoom is 1 and Rotation is
// 0; zoom and rotation pivot around the origin (the viewport center by
// default).
type Camera struct {
	Name string

	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect
	// ScrollX and ScrollY scroll the world under the camera.
	ScrollX, ScrollY float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// OriginX and OriginY are the normalized pivot for zoom and rotation.
	OriginX, OriginY float64
	// Alpha multiplies the alpha of everything the camera draws.
	Alpha float64
	// RoundPixels snaps scroll and vertex positions to whole pixels.
	RoundPixels bool
	// Visible cameras are rendered.
	Visible bool
	// CullEnabled skips sprites whose screen quad misses the viewport.
	CullEnabled bool

	// BoundsEnabled clamps the scroll so the visible area stays within Bounds.
	BoundsEnabled bool
	// Bounds is the world-space rectangle the camera is clamped to when
	// BoundsEnabled is true.
	Bounds Rect

	followTarget  *Node
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	scrollTween *scrollAnim
	zoomTween   *gween.Tween

	matrix         Matrix
	matrixExternal Matrix
	matrixCombined Matrix
	renderScrollX  float64
	renderScrollY  float64
	worldView      Rect
}

// NewCamera creates a standalone camera with default values and the given
// viewport. Scene.NewCamera also registers it for rendering.
func NewCamera(viewport Rect) *Camera {
	c := &Camera{
		Viewport:    viewport,
		Zoom:        1,
		OriginX:     0.5,
		OriginY:     0.5,
		Alpha:       1,
		Visible:     true,
		CullEnabled: true,
	}
	c.PreRender()
	return c
}

// Matrix returns the view matrix: world to viewport-local pixels, including
// scroll, zoom and rotation. Valid after PreRender.
func (c *Camera) Matrix() *Matrix { return &c.matrix }

// MatrixExternal returns the placement of the viewport on screen.
func (c *Camera) MatrixExternal() *Matrix { return &c.matrixExternal }

// MatrixCombined returns MatrixExternal ∘ Matrix: world to screen pixels.
func (c *Camera) MatrixCombined() *Matrix { return &c.matrixCombined }

// WorldView returns the axis-aligned world rectangle visible through the
// camera, as of the last PreRender.
func (c *Camera) WorldView() Rect { return c.worldView }

// WorldViewFor returns the visible rectangle in the coordinate space of an
// object with the given scroll factor.
func (c *Camera) WorldViewFor(scrollFactorX, scrollFactorY float64) Rect {
	v := c.worldView
	v.X -= c.renderScrollX * (1 - scrollFactorX)
	v.Y -= c.renderScrollY * (1 - scrollFactorY)
	return v
}

// PreRender recomputes the camera matrices and world view. The renderer
// calls it once per frame before drawing with the camera.
func (c *Camera) PreRender() {
	w, h := c.Viewport.Width, c.Viewport.Height
	ox, oy := w*c.OriginX, h*c.OriginY

	sx, sy := c.ScrollX, c.ScrollY
	if c.RoundPixels {
		sx, sy = roundHalfUp(sx), roundHalfUp(sy)
	}
	c.renderScrollX, c.renderScrollY = sx, sy

	c.matrix.ApplyITRS(ox, oy, c.Rotation, c.Zoom, c.Zoom).Translate(-ox-sx, -oy-sy)
	c.matrixExternal.ApplyITRS(c.Viewport.X, c.Viewport.Y, 0, 1, 1)
	c.matrixExternal.MultiplyInto(&c.matrix, &c.matrixCombined)

	if c.Zoom == 0 {
		c.worldView = Rect{}
		return
	}
	x0, y0 := c.matrix.ApplyInverse(0, 0)
	x1, y1 := c.matrix.ApplyInverse(w, 0)
	x2, y2 := c.matrix.ApplyInverse(w, h)
	x3, y3 := c.matrix.ApplyInverse(0, h)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	c.worldView = Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return c.matrixCombined.TransformPoint(wx, wy)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return c.matrixCombined.ApplyInverse(sx, sy)
}

// CenterOn scrolls so the world point (x, y) sits at the camera origin.
func (c *Camera) CenterOn(x, y float64) {
	c.ScrollX, c.ScrollY = c.scrollFor(x, y)
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// Center returns the world point at the camera origin.
func (c *Camera) Center() (x, y float64) {
	return c.ScrollX + c.Viewport.Width*c.OriginX, c.ScrollY + c.Viewport.Height*c.OriginY
}

func (c *Camera) scrollFor(x, y float64) (float64, float64) {
	return x - c.Viewport.Width*c.OriginX, y - c.Viewport.Height*c.OriginY
}

// Follow makes the camera track a target node with the given offset and lerp factor.
// A lerp of 1.0 snaps immediately; lower values give smoother following.
func (c *Camera) Follow(node *Node, offsetX, offsetY, lerp float64) {
	c.followTarget = node
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current target node.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// ScrollTo animates the camera so the world point (x, y) ends up at the
// camera origin after duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	tx, ty := c.scrollFor(x, y)
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.ScrollX), float32(tx), duration, easeFn),
		tweenY: gween.New(float32(c.ScrollY), float32(ty), duration, easeFn),
	}
}

// ScrollToTile scrolls to the center of the given tile in a tile-based layout.
func (c *Camera) ScrollToTile(tileX, tileY int, tileW, tileH float64, duration float32, easeFn ease.TweenFunc) {
	worldX := float64(tileX)*tileW + tileW/2
	worldY := float64(tileY)*tileH + tileH/2
	c.ScrollTo(worldX, worldY, duration, easeFn)
}

// ZoomTo animates Zoom to the given value over duration seconds.
func (c *Camera) ZoomTo(zoom float64, duration float32, easeFn ease.TweenFunc) {
	c.zoomTween = gween.New(float32(c.Zoom), float32(zoom), duration, easeFn)
}

// IsAnimating reports whether a scroll or zoom tween is running.
func (c *Camera) IsAnimating() bool {
	return c.scrollTween != nil || c.zoomTween != nil
}

// SetBounds enables camera bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables camera bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// ClampToBounds immediately clamps the scroll so the visible area stays
// within Bounds. No-op if BoundsEnabled is false.
func (c *Camera) ClampToBounds() {
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// Update advances follow, tweens and bounds clamping. Scene.Update calls it
// for every scene camera.
func (c *Camera) Update(dt float32) {
	if c.followTarget != nil && !c.followTarget.IsDisposed() {
		wx, wy := c.followTarget.WorldPosition()
		tx, ty := c.scrollFor(wx+c.followOffsetX, wy+c.followOffsetY)
		c.ScrollX += (tx - c.ScrollX) * c.followLerp
		c.ScrollY += (ty - c.ScrollY) * c.followLerp
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.ScrollX = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.ScrollY = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.zoomTween != nil {
		val, done := c.zoomTween.Update(dt)
		c.Zoom = float64(val)
		if done {
			c.zoomTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// clampToBounds restricts the scroll so the visible area stays within Bounds.
// Rotation is ignored.
func (c *Camera) clampToBounds() {
	c.ScrollX = clampAxis(c.ScrollX, c.Viewport.Width, c.OriginX, c.Zoom, c.Bounds.X, c.Bounds.Width)
	c.ScrollY = clampAxis(c.ScrollY, c.Viewport.Height, c.OriginY, c.Zoom, c.Bounds.Y, c.Bounds.Height)
}

// clampAxis clamps one scroll axis. The visible span starts at
// scroll + origin*size*(1 - 1/zoom) and is size/zoom long.
func clampAxis(scroll, size, origin, zoom, boundsMin, boundsSize float64) float64 {
	if zoom <= 0 {
		return scroll
	}
	span := size / zoom
	shift := origin * size * (1 - 1/zoom)
	start := scroll + shift
	if span >= boundsSize {
		// Bounds are smaller than the visible area: center on them.
		start = boundsMin + (boundsSize-span)/2
	} else {
		start = math.Max(boundsMin, math.Min(start, boundsMin+boundsSize-span))
	}
	return start - shift
}

// --- Culling ---

// CullLights appends to dst the lights whose radius overlaps the camera's
// view and returns it.
func (c *Camera) CullLights(lights []*Light, dst []*Light) []*Light {
	for _, l := range lights {
		if !l.Visible || l.Intensity <= 0 || l.Radius <= 0 {
			continue
		}
		view := c.WorldViewFor(l.ScrollFactorX, l.ScrollFactorY)
		if view.IntersectsCircle(l.X, l.Y, l.Radius) {
			dst = append(dst, l)
		}
	}
	return dst
}

// CullTiles returns the inclusive column and row range of a tile grid that
// overlaps the camera view. local maps tile-grid space to world space and
// must be invertible; ok is false when nothing is visible.
func (c *Camera) CullTiles(local *Matrix, scrollFactorX, scrollFactorY, tileW, tileH float64, cols, rows int) (startCol, startRow, endCol, endRow int, ok bool) {
	if tileW <= 0 || tileH <= 0 || cols <= 0 || rows <= 0 {
		return 0, 0, 0, 0, false
	}
	inv := *local
	if err := inv.TryInvert(); err != nil {
		return 0, 0, 0, 0, false
	}
	v := c.WorldViewFor(scrollFactorX, scrollFactorY)

	x0, y0 := inv.TransformPoint(v.X, v.Y)
	x1, y1 := inv.TransformPoint(v.X+v.Width, v.Y)
	x2, y2 := inv.TransformPoint(v.X+v.Width, v.Y+v.Height)
	x3, y3 := inv.TransformPoint(v.X, v.Y+v.Height)
	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	startCol = max(0, int(math.Floor(minX/tileW)))
	startRow = max(0, int(math.Floor(minY/tileH)))
	endCol = min(cols-1, int(math.Ceil(maxX/tileW))-1)
	endRow = min(rows-1, int(math.Ceil(maxY/tileH))-1)
	if startCol > endCol || startRow > endRow {
		return 0, 0, 0, 0, false
	}
	return startCol, startRow, endCol, endRow, true
}

// quadVisible reports whether the screen-space quad overlaps the viewport.
func (c *Camera) quadVisible(q *Quad) bool {
	minX := math.Min(math.Min(q[0], q[2]), math.Min(q[4], q[6]))
	maxX := math.Max(math.Max(q[0], q[2]), math.Max(q[4], q[6]))
	minY := math.Min(math.Min(q[1], q[3]), math.Min(q[5], q[7]))
	maxY := math.Max(math.Max(q[1], q[3]), math.Max(q[5], q[7]))
	return c.Viewport.Intersects(Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY})
}
