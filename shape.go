package birch

import "math"

// Shape is a flat-colored polygon: an optional fill drawn as a triangle fan
// and an optional stroke drawn as one quad per edge. The fill is fan
// triangulated from the first point, so it is exact for convex outlines.
type Shape struct {
	// Points is the outline in local space.
	Points []Vec2
	// Closed strokes the edge from the last point back to the first.
	Closed bool

	Filled    bool
	FillColor uint32 // 0xRRGGBB
	FillAlpha float64

	// StrokeWidth of 0 disables the stroke.
	StrokeWidth float64
	StrokeColor uint32 // 0xRRGGBB
	StrokeAlpha float64

	minX, minY, width, height float64
}

// NewPolygonShape returns a closed, filled shape with the given outline.
func NewPolygonShape(points []Vec2, fillColor uint32) *Shape {
	s := &Shape{Closed: true, Filled: true, FillColor: fillColor, FillAlpha: 1, StrokeAlpha: 1}
	s.SetPoints(points)
	return s
}

// NewRectShape returns a filled w x h rectangle with its top-left at the
// local origin.
func NewRectShape(w, h float64, fillColor uint32) *Shape {
	return NewPolygonShape([]Vec2{{0, 0}, {w, 0}, {w, h}, {0, h}}, fillColor)
}

// NewTriangleShape returns a filled triangle.
func NewTriangleShape(x0, y0, x1, y1, x2, y2 float64, fillColor uint32) *Shape {
	return NewPolygonShape([]Vec2{{x0, y0}, {x1, y1}, {x2, y2}}, fillColor)
}

// NewCircleShape returns a filled circle approximated by segments edges,
// with its bounding box top-left at the local origin. Fewer than 3 segments
// picks a count from the radius.
func NewCircleShape(radius float64, segments int, fillColor uint32) *Shape {
	if segments < 3 {
		segments = max(12, int(math.Ceil(radius/2)))
	}
	points := make([]Vec2, segments)
	for i := range points {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(segments))
		points[i] = Vec2{X: radius + cos*radius, Y: radius + sin*radius}
	}
	return NewPolygonShape(points, fillColor)
}

// NewLineShape returns an open, unfilled polyline stroked with width.
func NewLineShape(points []Vec2, width float64, color uint32) *Shape {
	s := &Shape{StrokeWidth: width, StrokeColor: color, StrokeAlpha: 1, FillAlpha: 1}
	s.SetPoints(points)
	return s
}

// SetStroke enables the stroke.
func (s *Shape) SetStroke(width float64, color uint32, alpha float64) *Shape {
	s.StrokeWidth, s.StrokeColor, s.StrokeAlpha = width, color, alpha
	return s
}

// SetFill enables the fill.
func (s *Shape) SetFill(color uint32, alpha float64) *Shape {
	s.Filled, s.FillColor, s.FillAlpha = true, color, alpha
	return s
}

// SetPoints replaces the outline and recomputes its bounds.
func (s *Shape) SetPoints(points []Vec2) {
	s.Points = append(s.Points[:0], points...)
	s.updateBounds()
}

// Bounds returns the local bounding box of the outline.
func (s *Shape) Bounds() Rect {
	return Rect{X: s.minX, Y: s.minY, Width: s.width, Height: s.height}
}

func (s *Shape) updateBounds() {
	if len(s.Points) == 0 {
		s.minX, s.minY, s.width, s.height = 0, 0, 0, 0
		return
	}
	minX, minY := s.Points[0].X, s.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range s.Points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	s.minX, s.minY = minX, minY
	s.width, s.height = maxX-minX, maxY-minY
}

// DrawShape batches n's shape on the graphics pipeline: the fill as fan
// triangles, then the stroke. Vertices use the flat tint effect and the
// reserved white texture.
func (ctx *RenderContext) DrawShape(n *Node, parent *Matrix, parentAlpha float64) {
	s := n.Shape
	if s == nil || len(s.Points) < 2 {
		return
	}
	alpha := ctx.alphaFor(n, parentAlpha)
	if alpha <= 0 {
		return
	}
	cam := ctx.Camera
	calc := ctx.Calc.Resolve(n, cam, parent, false)

	// The origin is relative to the outline's bounds.
	dx := s.minX + n.OriginX*s.width
	dy := s.minY + n.OriginY*s.height

	// Transform every point once.
	pts := ctx.points[:0]
	round := cam.RoundPixels
	for _, pt := range s.Points {
		lx, ly := pt.X-dx, pt.Y-dy
		pts = append(pts, Vec2{X: calc.GetXRound(lx, ly, round), Y: calc.GetYRound(lx, ly, round)})
	}
	ctx.points = pts

	p := ctx.use(ctx.Renderer.graphics, n.BlendMode)
	unit := p.Assign(ctx.Textures.White().ID)

	if s.Filled && len(pts) >= 3 && s.FillAlpha > 0 {
		tint := PackTintSwap(s.FillColor, alpha*s.FillAlpha)
		fillFan(p, pts, unit, tint)
	}
	if s.StrokeWidth > 0 && s.StrokeAlpha > 0 {
		tint := PackTintSwap(s.StrokeColor, alpha*s.StrokeAlpha)
		ctx.strokePath(p, calc, s, dx, dy, unit, tint)
	}
}

// fillFan writes the fan triangulation of pts with vertex 0 as the hub.
func fillFan(p *Pipeline, pts []Vec2, unit int, tint uint32) {
	hub := pts[0]
	for i := 1; i < len(pts)-1; i++ {
		a, b := pts[i], pts[i+1]
		p.BatchTri(hub.X, hub.Y, 0, 0, a.X, a.Y, 0, 1, b.X, b.Y, 1, 1, unit, TintFlat, tint, tint, tint)
	}
}

// strokePath writes one quad per edge. Edges wider than 2 pixels also get
// two join triangles at each shared point so corners do not show gaps.
func (ctx *RenderContext) strokePath(p *Pipeline, calc *Matrix, s *Shape, dx, dy float64, unit int, tint uint32) {
	points := s.Points
	edges := len(points) - 1
	if s.Closed && len(points) > 2 {
		edges++
	}
	halfW := s.StrokeWidth / 2
	round := ctx.Camera.RoundPixels
	tints := [4]uint32{tint, tint, tint, tint}

	var prevEnd [4]float64 // left x, y, right x, y of the previous edge end
	var first [4]float64
	for e := 0; e < edges; e++ {
		a := points[e]
		b := points[(e+1)%len(points)]
		nx, ny := perpendicular(a, b)
		ax, ay := a.X-dx, a.Y-dy
		bx, by := b.X-dx, b.Y-dy
		ox, oy := nx*halfW, ny*halfW

		q := &ctx.quad
		setCorner(calc, q, 0, ax+ox, ay+oy, round) // TL: start, left side
		setCorner(calc, q, 1, ax-ox, ay-oy, round) // BL: start, right side
		setCorner(calc, q, 2, bx-ox, by-oy, round) // BR: end, right side
		setCorner(calc, q, 3, bx+ox, by+oy, round) // TR: end, left side
		p.BatchQuad(q, 0, 0, 1, 1, unit, TintFlat, &tints)

		start := [4]float64{q[0], q[1], q[2], q[3]}
		if e == 0 {
			first = start
		} else if s.StrokeWidth > 2 {
			cx, cy := calc.GetXRound(ax, ay, round), calc.GetYRound(ax, ay, round)
			joinTris(p, cx, cy, prevEnd, start, unit, tint)
		}
		prevEnd = [4]float64{q[6], q[7], q[4], q[5]}
	}
	if s.Closed && len(points) > 2 && s.StrokeWidth > 2 {
		p0 := points[0]
		cx, cy := calc.GetXRound(p0.X-dx, p0.Y-dy, round), calc.GetYRound(p0.X-dx, p0.Y-dy, round)
		joinTris(p, cx, cy, prevEnd, first, unit, tint)
	}
}

func setCorner(m *Matrix, q *Quad, i int, x, y float64, round bool) {
	q[i*2] = m.GetXRound(x, y, round)
	q[i*2+1] = m.GetYRound(x, y, round)
}

// joinTris fills the wedges between the end of one edge and the start of
// the next around the shared point (cx, cy).
func joinTris(p *Pipeline, cx, cy float64, end, start [4]float64, unit int, tint uint32) {
	p.BatchTri(cx, cy, 0, 0, end[0], end[1], 0, 0, start[0], start[1], 0, 0, unit, TintFlat, tint, tint, tint)
	p.BatchTri(cx, cy, 0, 0, end[2], end[3], 0, 0, start[2], start[3], 0, 0, unit, TintFlat, tint, tint, tint)
}
