package birch

import (
	"fmt"
	"time"
)

// RenderContext carries everything an emission routine needs for the camera
// being drawn. The renderer owns one and reuses it every frame; matrices and
// scratch slices inside it are overwritten by each emission.
type RenderContext struct {
	Renderer  *Renderer
	Camera    *Camera
	Pipelines *PipelineManager
	Textures  *TextureManager

	// Calc is the scratch resolver for the object being emitted.
	Calc CalcMatrix
	// Lights are the culled, capped lights for Camera, closest first.
	Lights []*Light
	// Ambient is the ambient light color for the lighting pipeline.
	Ambient uint32
	// LightsEnabled routes lit sprites to the lighting pipeline.
	LightsEnabled bool

	quad   Quad
	uv     [8]float32
	tints  [4]uint32
	strip  []Vertex
	local  Matrix
	points []Vec2
}

// Renderer draws scenes through the batching pipelines.
type Renderer struct {
	backend Backend
	cfg     Config

	Textures  *TextureManager
	Pipelines *PipelineManager

	multi, rope, graphics, light *Pipeline

	ctx   RenderContext
	stats FrameStats
}

// NewRenderer validates cfg, creates the reserved textures and boots the
// built-in pipelines.
func NewRenderer(backend Backend, cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	units := backend.MaxTextureUnits()
	if cfg.MaxTextureUnits > 0 && cfg.MaxTextureUnits < units {
		units = cfg.MaxTextureUnits
	}
	if units < 2 {
		return nil, fmt.Errorf("birch: backend reports %d texture units, need at least 2: %w", units, ErrInvalidConfig)
	}

	r := &Renderer{
		backend:   backend,
		cfg:       cfg,
		Textures:  NewTextureManager(backend),
		Pipelines: NewPipelineManager(backend),
	}
	r.ctx.Renderer = r
	r.ctx.Pipelines = r.Pipelines
	r.ctx.Textures = r.Textures

	capacity := cfg.BatchSize * 6
	var lightScratch Matrix
	boot := []PipelineConfig{
		{Name: MultiPipeline, Layout: QuadLayout, Topology: TopologyTriangles},
		{Name: RopePipeline, Layout: QuadLayout, Topology: TopologyTriangleStrip},
		{Name: GraphicsPipeline, Layout: FlatLayout, Topology: TopologyTriangles},
		{Name: LightPipeline, Layout: LightLayout, Topology: TopologyTriangles,
			OnPreFlush: func(p *Pipeline) {
				ctx := &r.ctx
				if ctx.Camera != nil {
					uploadLights(p, ctx.Camera, ctx.Ambient, ctx.Lights, &lightScratch)
				}
			}},
	}
	for _, pc := range boot {
		pc.Capacity = capacity
		pc.MaxTextureUnits = units
		p := NewPipeline(backend, pc)
		p.buffer.SetDebug(cfg.Debug)
		if err := r.Pipelines.Add(p); err != nil {
			return nil, err
		}
	}
	r.multi, _ = r.Pipelines.Get(MultiPipeline)
	r.rope, _ = r.Pipelines.Get(RopePipeline)
	r.graphics, _ = r.Pipelines.Get(GraphicsPipeline)
	r.light, _ = r.Pipelines.Get(LightPipeline)

	r.Resize(cfg.Width, cfg.Height)
	Logger().Info("renderer ready",
		"batchSize", cfg.BatchSize, "textureUnits", units, "maxLights", cfg.MaxLights)
	return r, nil
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Backend returns the graphics backend.
func (r *Renderer) Backend() Backend { return r.backend }

// Context returns the render context used while drawing. It is only
// meaningful during Render, e.g. from a custom emitter.
func (r *Renderer) Context() *RenderContext { return &r.ctx }

// Stats returns the metrics of the last rendered frame.
func (r *Renderer) Stats() FrameStats { return r.stats }

// SetDebug toggles buffer overflow assertions on every pipeline.
func (r *Renderer) SetDebug(enabled bool) {
	r.cfg.Debug = enabled
	for _, p := range r.Pipelines.Pipelines() {
		p.buffer.SetDebug(enabled)
	}
}

// Resize updates the render target size of every pipeline.
func (r *Renderer) Resize(width, height int) {
	r.cfg.Width, r.cfg.Height = width, height
	r.Pipelines.Resize(width, height)
}

// Render draws scene through each visible camera in order.
func (r *Renderer) Render(s *Scene) {
	start := time.Now()
	r.Pipelines.BeginFrame()
	r.Pipelines.ResetStats()

	for _, cam := range s.cameras {
		if !cam.Visible {
			continue
		}
		r.renderCamera(s, cam)
		r.Pipelines.stats.Cameras++
	}
	r.Pipelines.Flush(FlushFrameEnd)

	r.stats = r.Pipelines.Stats()
	r.stats.RenderTime = time.Since(start)
	if r.cfg.Debug || globalDebug {
		r.stats.debugLog()
	}
}

func (r *Renderer) renderCamera(s *Scene, cam *Camera) {
	if r.cfg.RoundPixels {
		cam.RoundPixels = true
	}
	cam.PreRender()

	ctx := &r.ctx
	ctx.Camera = cam
	clear(ctx.Lights)
	ctx.Lights = ctx.Lights[:0]
	ctx.LightsEnabled = s.Lights != nil && s.Lights.Enabled
	if ctx.LightsEnabled {
		ctx.Ambient = s.Lights.Ambient
		// The shader's light array is sized by the renderer config.
		ctx.Lights = s.Lights.lightsFor(cam, ctx.Lights, min(s.Lights.MaxLights, r.cfg.MaxLights))
	}

	v := cam.Viewport
	r.backend.SetViewport(int(v.X), int(v.Y), int(v.Width), int(v.Height))

	r.drawNode(ctx, s.root, nil, 1)

	r.Pipelines.Flush(FlushCameraEnd)
	ctx.Camera = nil
}

// drawNode emits n and its subtree depth-first. parent is the world matrix
// of n's parent container, nil at the root.
func (r *Renderer) drawNode(ctx *RenderContext, n *Node, parent *Matrix, parentAlpha float64) {
	if !n.Visible || n.Alpha <= 0 {
		return
	}

	switch n.Type {
	case NodeTypeSprite:
		ctx.DrawSprite(n, parent, parentAlpha)
	case NodeTypeRope:
		ctx.DrawRope(n, parent, parentAlpha)
	case NodeTypeShape:
		ctx.DrawShape(n, parent, parentAlpha)
	case NodeTypeTileLayer:
		ctx.DrawTileLayer(n, parent, parentAlpha)
	}

	children := n.sortedChildrenOf()
	if len(children) == 0 {
		return
	}
	n.updateWorld(parent, parentAlpha)
	for _, child := range children {
		r.drawNode(ctx, child, &n.worldTransform, n.worldAlpha)
	}
}

// Destroy releases every pipeline and texture the renderer created.
func (r *Renderer) Destroy() {
	r.Pipelines.Destroy()
	r.Textures.Destroy()
	Logger().Info("renderer destroyed")
}

// --- Shared emission helpers ---

// alphaFor is the effective alpha of n under the current camera.
func (ctx *RenderContext) alphaFor(n *Node, parentAlpha float64) float64 {
	return ctx.Camera.Alpha * parentAlpha * n.Alpha
}

// cornerTints packs n's per-corner tints with alpha into ctx.tints.
func (ctx *RenderContext) cornerTints(n *Node, alpha float64) *[4]uint32 {
	for i := range ctx.tints {
		ctx.tints[i] = PackTint(n.Tint[i], alpha*n.CornerAlpha[i])
	}
	return &ctx.tints
}

func tintEffectFor(n *Node) TintEffect {
	if n.TintFill {
		return TintFill
	}
	return TintMultiply
}

// use makes p current under n's blend mode.
func (ctx *RenderContext) use(p *Pipeline, mode BlendMode) *Pipeline {
	ctx.Pipelines.SetBlendMode(mode)
	return ctx.Pipelines.Set(p)
}
