package birch

import "fmt"

// Built-in pipeline names registered by NewRenderer.
const (
	MultiPipeline    = "Multi"    // textured quads and triangles, multi-texture
	RopePipeline     = "Rope"     // textured triangle strips
	GraphicsPipeline = "Graphics" // flat-filled triangles
	LightPipeline    = "Light2D"  // normal-mapped quads lit by scene lights
)

// PipelineConfig describes a pipeline's vertex format, topology and hooks.
type PipelineConfig struct {
	Name     string
	Layout   *VertexLayout
	Topology Topology
	// Capacity is the vertex capacity of the pipeline's buffer.
	Capacity int
	// MaxTextureUnits caps how many textures one batch may sample.
	MaxTextureUnits int
	// OnBind runs after the program and buffer are bound.
	OnBind func(p *Pipeline)
	// OnPreFlush runs before each non-empty draw, e.g. to upload uniforms.
	OnPreFlush func(p *Pipeline)
}

// Pipeline bundles one vertex buffer, one program and the texture units of
// the batch being built. All pipelines share the same bind, flush and
// resize machinery; they differ only in layout, topology and hooks.
type Pipeline struct {
	name    string
	backend Backend
	program ProgramID
	buffer  *VertexBuffer
	units   *TextureUnits

	width, height int

	onBind     func(p *Pipeline)
	onPreFlush func(p *Pipeline)

	flushLocked bool
	warnedSplit bool
	stats       *FrameStats

	uv     [8]float32
	vertex Vertex
}

// NewPipeline creates the program and vertex buffer described by cfg.
func NewPipeline(backend Backend, cfg PipelineConfig) *Pipeline {
	if cfg.Layout == nil {
		cfg.Layout = QuadLayout
	}
	if cfg.Capacity <= 0 {
		panic(fmt.Sprintf("birch: pipeline %q needs a positive capacity", cfg.Name))
	}
	p := &Pipeline{
		name:       cfg.Name,
		backend:    backend,
		onBind:     cfg.OnBind,
		onPreFlush: cfg.OnPreFlush,
	}
	p.program = backend.CreateProgram(cfg.Name, cfg.Layout)
	p.buffer = NewVertexBuffer(backend, cfg.Layout, cfg.Capacity, cfg.Topology)
	p.units = NewTextureUnits(backend, cfg.MaxTextureUnits, func() { p.flush(FlushTextureUnits) })
	return p
}

// Name returns the registry name.
func (p *Pipeline) Name() string { return p.name }

// Program returns the backend program handle.
func (p *Pipeline) Program() ProgramID { return p.program }

// Buffer returns the pipeline's vertex buffer.
func (p *Pipeline) Buffer() *VertexBuffer { return p.buffer }

// Units returns the pipeline's texture-unit allocator.
func (p *Pipeline) Units() *TextureUnits { return p.units }

// Topology returns the primitive mode of the vertex buffer.
func (p *Pipeline) Topology() Topology { return p.buffer.topology }

// Size returns the render target size last passed to Resize.
func (p *Pipeline) Size() (int, int) { return p.width, p.height }

// Bind makes the pipeline's program, buffer and texture units current on the
// backend. Use PipelineManager.Set rather than calling Bind directly.
func (p *Pipeline) Bind() {
	p.backend.UseProgram(p.program)
	p.backend.BindVertexBuffer(p.buffer.id)
	p.backend.SetUniform(p.program, "uResolution", float32(p.width), float32(p.height))
	p.units.Bind()
	if p.onBind != nil {
		p.onBind(p)
	}
}

// ShouldFlush reports whether n more vertices would overflow the buffer.
func (p *Pipeline) ShouldFlush(n int) bool {
	return p.buffer.ShouldFlush(n)
}

// Flush draws everything batched so far.
func (p *Pipeline) Flush() int {
	return p.flush(FlushManual)
}

func (p *Pipeline) flush(reason FlushReason) int {
	if p.flushLocked || p.buffer.count == 0 {
		return 0
	}
	p.flushLocked = true
	if p.backend.CurrentProgram() != p.program {
		p.backend.UseProgram(p.program)
		p.units.Bind()
	}
	if p.onPreFlush != nil {
		p.onPreFlush(p)
	}
	n := p.buffer.Flush()
	p.flushLocked = false
	if p.stats != nil {
		p.stats.record(reason, n)
	}
	return n
}

// Assign returns a texture unit for tex in the current batch.
func (p *Pipeline) Assign(tex TextureID) int {
	return p.units.Assign(tex)
}

// AssignPair returns texture units for two textures sampled together.
func (p *Pipeline) AssignPair(a, b TextureID) (int, int) {
	return p.units.AssignPair(a, b)
}

// Write appends one vertex without a capacity check.
func (p *Pipeline) Write(v *Vertex) {
	p.buffer.Write(v)
}

// BatchQuad writes the quad q as two triangles (TL, BL, BR and TL, BR, TR)
// spanning the UV rectangle (u0, v0)-(u1, v1). tints are per corner in
// TL, BL, BR, TR order. It flushes first when six vertices do not fit and
// reports whether it did.
func (p *Pipeline) BatchQuad(q *Quad, u0, v0, u1, v1 float32, unit int, effect TintEffect, tints *[4]uint32) bool {
	uv := &p.uv
	uv[0], uv[1] = u0, v0
	uv[2], uv[3] = u0, v1
	uv[4], uv[5] = u1, v1
	uv[6], uv[7] = u1, v0
	return p.BatchQuadUV(q, uv, unit, effect, tints)
}

// BatchQuadUV is BatchQuad with an explicit UV per corner, in the same
// TL, BL, BR, TR order as q.
func (p *Pipeline) BatchQuadUV(q *Quad, uv *[8]float32, unit int, effect TintEffect, tints *[4]uint32) bool {
	return p.batchQuad(q, uv, float32(unit), 0, effect, tints)
}

// BatchQuadLit is BatchQuadUV for layouts carrying a normal-map unit.
func (p *Pipeline) BatchQuadLit(q *Quad, uv *[8]float32, unit, normalUnit int, effect TintEffect, tints *[4]uint32) bool {
	return p.batchQuad(q, uv, float32(unit), float32(normalUnit), effect, tints)
}

// quadCorners lists the corner of each of the six quad vertices.
var quadCorners = [6]int{0, 1, 2, 0, 2, 3}

func (p *Pipeline) batchQuad(q *Quad, uv *[8]float32, unit, normalUnit float32, effect TintEffect, tints *[4]uint32) bool {
	flushed := false
	if p.buffer.ShouldFlush(6) {
		p.flush(FlushCapacity)
		flushed = true
	}
	v := &p.vertex
	v.Unit, v.TintEffect, v.NormalUnit = unit, float32(effect), normalUnit
	for _, c := range quadCorners {
		v.X, v.Y = float32(q[c*2]), float32(q[c*2+1])
		v.U, v.V = uv[c*2], uv[c*2+1]
		v.Color = tints[c]
		p.buffer.Write(v)
	}
	return flushed
}

// BatchTri writes one triangle. It flushes first when three vertices do not
// fit and reports whether it did.
func (p *Pipeline) BatchTri(x0, y0, u0, v0, x1, y1, u1, v1, x2, y2, u2, v2 float64, unit int, effect TintEffect, tint0, tint1, tint2 uint32) bool {
	flushed := false
	if p.buffer.ShouldFlush(3) {
		p.flush(FlushCapacity)
		flushed = true
	}
	vb := p.buffer
	fu, fe := float32(unit), float32(effect)
	vb.WriteVertex(float32(x0), float32(y0), float32(u0), float32(v0), fu, fe, tint0)
	vb.WriteVertex(float32(x1), float32(y1), float32(u1), float32(v1), fu, fe, tint1)
	vb.WriteVertex(float32(x2), float32(y2), float32(u2), float32(v2), fu, fe, tint2)
	return flushed
}

// BatchStrip writes verts as one triangle strip. The pipeline is flushed
// first so the strip never joins the previous one. A strip longer than the
// buffer is drawn in pieces that start at even vertex indices and repeat the
// last two vertices of the previous piece, which keeps the winding intact.
// It returns the number of draw calls issued before returning.
func (p *Pipeline) BatchStrip(verts []Vertex) int {
	if len(verts) < 3 {
		return 0
	}
	draws := 0
	if p.flush(FlushStrip) > 0 {
		draws++
	}
	vb := p.buffer
	if len(verts) <= vb.capacity {
		for i := range verts {
			vb.Write(&verts[i])
		}
		return draws
	}

	chunk := vb.capacity &^ 1
	if chunk < 4 {
		panic(fmt.Sprintf("birch: pipeline %q capacity %d is too small to split a strip", p.name, vb.capacity))
	}
	if !p.warnedSplit {
		p.warnedSplit = true
		Logger().Warn("strip exceeds vertex buffer, drawing in pieces",
			"pipeline", p.name, "vertices", len(verts), "capacity", vb.capacity)
	}
	for start := 0; ; start += chunk - 2 {
		end := min(start+chunk, len(verts))
		for i := start; i < end; i++ {
			vb.Write(&verts[i])
		}
		if end == len(verts) {
			return draws
		}
		if p.flush(FlushCapacity) > 0 {
			draws++
		}
	}
}

// Resize records the render target size; the program receives it as the
// uResolution uniform on the next bind, or immediately if it is in use.
func (p *Pipeline) Resize(width, height int) {
	p.width, p.height = width, height
	if p.backend.CurrentProgram() == p.program {
		p.backend.SetUniform(p.program, "uResolution", float32(width), float32(height))
	}
}

// Destroy releases the program and vertex buffer. The pipeline must not be
// used afterwards.
func (p *Pipeline) Destroy() {
	p.buffer.Destroy()
	if p.program != 0 {
		p.backend.DeleteProgram(p.program)
		p.program = 0
	}
	p.units.Reset()
}
