package birch

import "math"

// DrawSprite batches n's frame as one quad. Sprites with Pipeline set to
// LightPipeline go through the lighting pipeline when lighting is enabled;
// everything else uses the multi-texture pipeline.
func (ctx *RenderContext) DrawSprite(n *Node, parent *Matrix, parentAlpha float64) {
	frame := n.Frame
	if frame == nil {
		return
	}
	alpha := ctx.alphaFor(n, parentAlpha)
	if alpha <= 0 {
		return
	}
	cam := ctx.Camera
	r := ctx.Renderer

	realW, realH := frame.RealWidth, frame.RealHeight
	ox, oy := n.OriginX, n.OriginY
	if frame.CustomPivot {
		ox, oy = frame.PivotX, frame.PivotY
	}
	dox, doy := ox*realW, oy*realH

	x := -dox + frame.X
	y := -doy + frame.Y
	w, h := frame.CutWidth, frame.CutHeight

	uv := &ctx.uv
	frame.CornerUVs(uv)
	if n.cropped {
		c := frame.CropUVs(n.crop.X, n.crop.Y, n.crop.Width, n.crop.Height, n.FlipX, n.FlipY)
		if c.Width <= 0 || c.Height <= 0 {
			return
		}
		w, h = c.Width, c.Height
		x = -dox + c.X
		y = -doy + c.Y
		u0, v0, u1, v1 := float32(c.U0), float32(c.V0), float32(c.U1), float32(c.V1)
		uv[0], uv[1] = u0, v0
		uv[2], uv[3] = u0, v1
		uv[4], uv[5] = u1, v1
		uv[6], uv[7] = u1, v0
	}

	flipX, flipY := 1.0, 1.0
	if n.FlipX {
		if !frame.CustomPivot {
			x += -realW + dox*2
		}
		flipX = -1
	}
	if n.FlipY {
		if !frame.CustomPivot {
			y += -realH + doy*2
		}
		flipY = -1
	}

	gx, gy := n.X, n.Y
	if cam.RoundPixels {
		gx, gy = math.Floor(gx), math.Floor(gy)
	}
	calc := ctx.Calc.ResolveITRS(cam, parent,
		gx, gy, n.Rotation, n.ScaleX*flipX, n.ScaleY*flipY,
		n.ScrollFactorX, n.ScrollFactorY, false)
	q := calc.SetQuad(x, y, x+w, y+h, cam.RoundPixels, &ctx.quad)

	if cam.CullEnabled && !cam.quadVisible(q) {
		ctx.Pipelines.stats.Culled++
		return
	}

	tints := ctx.cornerTints(n, alpha)
	effect := tintEffectFor(n)

	if n.Pipeline == LightPipeline && ctx.LightsEnabled {
		p := ctx.use(r.light, n.BlendMode)
		normal := n.NormalMap
		if normal == nil {
			normal = ctx.Textures.Normal()
		}
		unit, normalUnit := p.AssignPair(frame.Texture.ID, normal.ID)
		p.BatchQuadLit(q, uv, unit, normalUnit, effect, tints)
		return
	}

	p := ctx.use(r.multi, n.BlendMode)
	unit := p.Assign(frame.Texture.ID)
	p.BatchQuadUV(q, uv, unit, effect, tints)
}
