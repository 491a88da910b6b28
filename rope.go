package birch

import "math"

// RopeJoinMode controls how segments join in a rope.
type RopeJoinMode uint8

const (
	// RopeJoinMiter extends segment corners to a sharp point.
	RopeJoinMiter RopeJoinMode = iota
	// RopeJoinBevel keeps the averaged normal unscaled, avoiding spikes.
	RopeJoinBevel
)

// RopeCurveMode selects how Rope.Update lays out the rope's points.
type RopeCurveMode uint8

const (
	RopeCurveLine        RopeCurveMode = iota // straight from Start to End
	RopeCurveCatenary                         // line sagging downward by Sag at the middle
	RopeCurveQuadBezier                       // Bézier through Controls[0]
	RopeCurveCubicBezier                      // Bézier through Controls[0] and Controls[1]
	RopeCurveWave                             // line displaced by a sine across its length
	RopeCurveCustom                           // points supplied by PointsFunc
)

// DefaultRopeSegments is the span count Update uses when Segments is unset.
const DefaultRopeSegments = 20

// RopeConfig configures a Rope. Start, End and Controls are read through
// their pointers on every Update, so a rope can be bound once to positions
// the game moves around.
type RopeConfig struct {
	Width    float64
	JoinMode RopeJoinMode

	CurveMode RopeCurveMode
	// Segments is the number of curve spans; Update emits Segments+1 points,
	// which is 2*(Segments+1) strip vertices.
	Segments int

	Start, End *Vec2
	Controls   [2]*Vec2

	// Sag is the catenary droop in pixels.
	Sag float64

	// Amplitude, Frequency (cycles per rope) and Phase (radians) shape the
	// wave curve.
	Amplitude float64
	Frequency float64
	Phase     float64

	// PointsFunc receives the rope's reusable point buffer at zero length and
	// returns the new path.
	PointsFunc func(buf []Vec2) []Vec2
}

// ropeCurve is a curve resolved from a RopeConfig for one Update.
type ropeCurve struct {
	mode  RopeCurveMode
	ctrl  [4]Vec2
	order int

	sag   float64
	wave  Vec2 // amplitude times the unit normal of Start->End
	freq  float64
	phase float64
}

// curve resolves the bound positions. It reports false when a point the mode
// needs is not bound.
func (cfg *RopeConfig) curve() (ropeCurve, bool) {
	c := ropeCurve{mode: cfg.CurveMode, sag: cfg.Sag, freq: cfg.Frequency, phase: cfg.Phase}
	if cfg.Start == nil || cfg.End == nil {
		return c, false
	}
	start, end := *cfg.Start, *cfg.End
	c.ctrl[0] = start
	c.order = 2
	switch cfg.CurveMode {
	case RopeCurveQuadBezier:
		if cfg.Controls[0] == nil {
			return c, false
		}
		c.ctrl[1] = *cfg.Controls[0]
		c.order = 3
	case RopeCurveCubicBezier:
		if cfg.Controls[0] == nil || cfg.Controls[1] == nil {
			return c, false
		}
		c.ctrl[1], c.ctrl[2] = *cfg.Controls[0], *cfg.Controls[1]
		c.order = 4
	case RopeCurveWave:
		if start != end {
			nx, ny := perpendicular(start, end)
			c.wave = Vec2{X: nx * cfg.Amplitude, Y: ny * cfg.Amplitude}
		}
	}
	c.ctrl[c.order-1] = end
	return c, true
}

// at evaluates the curve at t in [0, 1]. The base path is reduced with de
// Casteljau over the control polygon; a line is the two-point case.
func (c *ropeCurve) at(t float64) Vec2 {
	p := c.ctrl
	for k := c.order - 1; k > 0; k-- {
		for i := range k {
			p[i].X += (p[i+1].X - p[i].X) * t
			p[i].Y += (p[i+1].Y - p[i].Y) * t
		}
	}
	pt := p[0]
	switch c.mode {
	case RopeCurveCatenary:
		pt.Y += c.sag * math.Sin(math.Pi*t)
	case RopeCurveWave:
		off := math.Sin(2*math.Pi*c.freq*t + c.phase)
		pt.X += c.wave.X * off
		pt.Y += c.wave.Y * off
	}
	return pt
}

// Rope is a textured ribbon following a polyline. Each point yields two
// vertices, one either side of the path, drawn as a single triangle strip.
// The frame is stretched along the whole length.
type Rope struct {
	Frame *Frame

	// Colors holds a 0xRRGGBB tint per point. Nil or short slices fall back
	// to the node's top-left tint.
	Colors []uint32
	// Alphas holds an alpha per point. Nil or short slices fall back to 1.
	Alphas []float64

	config RopeConfig
	points []Vec2
	// side holds two local positions per point: left x, y then right x, y.
	side   []float64
	cumLen []float64 // path length up to each point
	ptsBuf []Vec2    // reused by Update
}

// NewRope creates a rope drawing frame along points.
func NewRope(frame *Frame, points []Vec2, cfg RopeConfig) *Rope {
	r := &Rope{Frame: frame, config: cfg}
	r.SetPoints(points)
	return r
}

// Config returns a pointer to the rope's configuration so callers can mutate
// fields directly before calling Update().
func (r *Rope) Config() *RopeConfig {
	return &r.config
}

// Points returns the current path. The returned slice MUST NOT be mutated.
func (r *Rope) Points() []Vec2 {
	return r.points
}

// Len returns the number of points.
func (r *Rope) Len() int {
	return len(r.points)
}

// VertexCount returns the number of strip vertices the rope draws.
func (r *Rope) VertexCount() int {
	if len(r.points) < 2 {
		return 0
	}
	return len(r.points) * 2
}

// Update resamples the configured curve and rebuilds the strip. Custom
// curves take their points from PointsFunc. The path is left unchanged when
// the mode's endpoints or control points are not bound.
func (r *Rope) Update() {
	cfg := &r.config
	if cfg.CurveMode == RopeCurveCustom {
		if cfg.PointsFunc == nil {
			return
		}
		r.ptsBuf = cfg.PointsFunc(r.ptsBuf[:0])
		r.SetPoints(r.ptsBuf)
		return
	}

	c, ok := cfg.curve()
	if !ok {
		return
	}
	segs := cfg.Segments
	if segs <= 0 {
		segs = DefaultRopeSegments
	}
	r.ptsBuf = r.ptsBuf[:0]
	for i := range segs + 1 {
		r.ptsBuf = append(r.ptsBuf, c.at(float64(i)/float64(segs)))
	}
	r.SetPoints(r.ptsBuf)
}

// SetPoints replaces the rope's path and recomputes the strip geometry.
func (r *Rope) SetPoints(points []Vec2) {
	n := len(points)
	if cap(r.points) < n {
		r.points = make([]Vec2, n)
	}
	r.points = r.points[:n]
	copy(r.points, points)

	if n < 2 {
		r.side = r.side[:0]
		r.cumLen = r.cumLen[:0]
		return
	}

	if cap(r.side) < n*4 {
		r.side = make([]float64, n*4)
	}
	r.side = r.side[:n*4]

	// Cumulative path length for UV stretching.
	if cap(r.cumLen) < n {
		r.cumLen = make([]float64, n)
	}
	r.cumLen = r.cumLen[:n]
	r.cumLen[0] = 0
	for i := 1; i < n; i++ {
		dx := points[i].X - points[i-1].X
		dy := points[i].Y - points[i-1].Y
		r.cumLen[i] = r.cumLen[i-1] + math.Sqrt(dx*dx+dy*dy)
	}

	halfW := r.config.Width / 2
	for i := 0; i < n; i++ {
		var nx, ny float64
		switch i {
		case 0:
			nx, ny = perpendicular(points[0], points[1])
		case n - 1:
			nx, ny = perpendicular(points[n-2], points[n-1])
		default:
			// Average of adjacent segment normals.
			nx0, ny0 := perpendicular(points[i-1], points[i])
			nx1, ny1 := perpendicular(points[i], points[i+1])
			nx, ny = nx0+nx1, ny0+ny1
			ln := math.Sqrt(nx*nx + ny*ny)
			if ln > 1e-10 {
				nx /= ln
				ny /= ln
			}
			if r.config.JoinMode == RopeJoinMiter {
				// Scale to keep the width at the miter, clamped at 2x so sharp
				// corners do not spike.
				dot := nx0*nx + ny0*ny
				if dot > 0.1 {
					scale := min(1.0/dot, 2.0)
					nx *= scale
					ny *= scale
				}
			}
		}
		si := i * 4
		r.side[si+0] = points[i].X + nx*halfW
		r.side[si+1] = points[i].Y + ny*halfW
		r.side[si+2] = points[i].X - nx*halfW
		r.side[si+3] = points[i].Y - ny*halfW
	}
}

// perpendicular returns the unit left-perpendicular of the segment from a to b.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

// DrawRope batches n's rope as one triangle strip on the rope pipeline. The
// pipeline is flushed before every rope so separate ropes never join.
func (ctx *RenderContext) DrawRope(n *Node, parent *Matrix, parentAlpha float64) {
	rope := n.Rope
	if rope == nil || rope.Frame == nil || len(rope.points) < 2 {
		return
	}
	alpha := ctx.alphaFor(n, parentAlpha)
	if alpha <= 0 {
		return
	}
	cam := ctx.Camera
	calc := ctx.Calc.Resolve(n, cam, parent, false)

	p := ctx.use(ctx.Renderer.rope, n.BlendMode)
	unit := p.Assign(rope.Frame.Texture.ID)

	count := len(rope.points) * 2
	if cap(ctx.strip) < count {
		ctx.strip = make([]Vertex, count)
	}
	strip := ctx.strip[:count]

	f := rope.Frame
	total := rope.cumLen[len(rope.cumLen)-1]
	fu, fe := float32(unit), float32(tintEffectFor(n))
	round := cam.RoundPixels
	for i := range rope.points {
		t := 0.0
		if total > 0 {
			t = rope.cumLen[i] / total
		}
		u := float32(f.U0 + (f.U1-f.U0)*t)

		rgb := n.Tint[CornerTopLeft]
		if i < len(rope.Colors) {
			rgb = rope.Colors[i]
		}
		a := alpha
		if i < len(rope.Alphas) {
			a *= rope.Alphas[i]
		}
		color := PackTint(rgb, a)

		si := i * 4
		for k := 0; k < 2; k++ {
			lx, ly := rope.side[si+k*2], rope.side[si+k*2+1]
			x, y := calc.GetXRound(lx, ly, round), calc.GetYRound(lx, ly, round)
			v := float32(f.V0)
			if k == 1 {
				v = float32(f.V1)
			}
			strip[i*2+k] = Vertex{X: float32(x), Y: float32(y), U: u, V: v, Unit: fu, TintEffect: fe, Color: color}
		}
	}
	p.BatchStrip(strip)
}
