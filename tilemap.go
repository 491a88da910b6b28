package birch

import "fmt"

// GID flag bits (same convention as Tiled TMX format).
const (
	TileFlipH    uint32 = 1 << 31 // horizontal flip
	TileFlipV    uint32 = 1 << 30 // vertical flip
	TileFlipD    uint32 = 1 << 29 // diagonal flip (swap x and y)
	tileFlagMask uint32 = TileFlipH | TileFlipV | TileFlipD
)

// AnimFrame describes a single frame in a tile animation sequence.
type AnimFrame struct {
	GID      uint32 // tile GID for this frame (no flag bits)
	Duration int    // milliseconds
}

// uvOrder maps source UV corners to destination corners for each
// combination of flip flags. Indexed by (flipH << 2) | (flipV << 1) | flipD.
// Corners are numbered TL=0, TR=1, BL=2, BR=3 and result[i] is the source
// corner shown at destination corner i. The diagonal flip is applied first.
var uvOrder = [8][4]int{
	{0, 1, 2, 3}, // no flags
	{0, 2, 1, 3}, // D (transpose)
	{2, 3, 0, 1}, // V
	{1, 3, 0, 2}, // V+D (90° CCW)
	{1, 0, 3, 2}, // H
	{2, 0, 3, 1}, // H+D (90° CW)
	{3, 2, 1, 0}, // H+V (180°)
	{3, 1, 2, 0}, // H+V+D (anti-transpose)
}

// TileLayer is a grid of tiles drawn from frames indexed by GID. GID 0 is
// empty. Only the tiles overlapping the camera view are batched.
type TileLayer struct {
	TileWidth, TileHeight float64
	// Tiles maps a GID (without flag bits) to its frame. Nil entries are skipped.
	Tiles []*Frame

	data   []uint32 // row-major tile GIDs, len = width * height
	width  int      // map width in tiles
	height int      // map height in tiles

	anims       map[uint32][]AnimFrame // base GID -> animation frames
	animElapsed int                    // milliseconds
}

// NewTileLayer creates a width x height layer. data is row-major and is used
// directly, not copied.
func NewTileLayer(width, height int, tileWidth, tileHeight float64, data []uint32, tiles []*Frame) (*TileLayer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("birch: tile layer size %dx%d must be positive", width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("birch: tile layer data has %d entries, want %d", len(data), width*height)
	}
	return &TileLayer{
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		Tiles:      tiles,
		data:       data,
		width:      width,
		height:     height,
	}, nil
}

// NewTileset cuts tex into tileWidth x tileHeight frames, left to right and
// top to bottom, and returns them indexed by GID starting at firstGID.
// margin and spacing are in pixels as in Tiled.
func NewTileset(tex *Texture, tileWidth, tileHeight, margin, spacing int, firstGID uint32) []*Frame {
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil
	}
	cols := (tex.Width - 2*margin + spacing) / (tileWidth + spacing)
	rows := (tex.Height - 2*margin + spacing) / (tileHeight + spacing)
	tiles := make([]*Frame, int(firstGID)+cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			gid := int(firstGID) + row*cols + col
			x := margin + col*(tileWidth+spacing)
			y := margin + row*(tileHeight+spacing)
			tiles[gid] = tex.AddFrame(fmt.Sprintf("tile:%d", gid),
				float64(x), float64(y), float64(tileWidth), float64(tileHeight))
		}
	}
	return tiles
}

// Size returns the layer size in tiles.
func (l *TileLayer) Size() (width, height int) {
	return l.width, l.height
}

// Tile returns the GID at (col, row) including flag bits, or 0 outside the
// layer.
func (l *TileLayer) Tile(col, row int) uint32 {
	if col < 0 || col >= l.width || row < 0 || row >= l.height {
		return 0
	}
	return l.data[row*l.width+col]
}

// SetTile updates a single tile. Out-of-range positions are ignored.
func (l *TileLayer) SetTile(col, row int, gid uint32) {
	if col < 0 || col >= l.width || row < 0 || row >= l.height {
		return
	}
	l.data[row*l.width+col] = gid
}

// SetData replaces the entire tile data array.
func (l *TileLayer) SetData(data []uint32, width, height int) error {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return fmt.Errorf("birch: tile layer data has %d entries for %dx%d", len(data), width, height)
	}
	l.data = data
	l.width = width
	l.height = height
	return nil
}

// SetAnimations sets the animation definitions for this layer.
// The map is keyed by base GID (no flag bits).
func (l *TileLayer) SetAnimations(anims map[uint32][]AnimFrame) {
	l.anims = anims
}

// Update advances tile animations by dt seconds.
func (l *TileLayer) Update(dt float32) {
	if ms := int(dt * 1000); ms > 0 {
		l.animElapsed += ms
	}
}

// frameFor resolves a base GID through the animation table.
func (l *TileLayer) frameFor(baseGID uint32) *Frame {
	if frames, ok := l.anims[baseGID]; ok && len(frames) > 0 {
		total := 0
		for _, f := range frames {
			total += f.Duration
		}
		if total > 0 {
			elapsed := l.animElapsed % total
			acc := 0
			for _, f := range frames {
				acc += f.Duration
				if elapsed < acc {
					baseGID = f.GID
					break
				}
			}
		}
	}
	if int(baseGID) >= len(l.Tiles) {
		return nil
	}
	return l.Tiles[baseGID]
}

// tileUVs writes the UVs of f in TL, BL, BR, TR order with the Tiled flip
// flags applied.
func tileUVs(f *Frame, flags uint32, uv *[8]float32) {
	u0, v0, u1, v1 := float32(f.U0), float32(f.V0), float32(f.U1), float32(f.V1)
	// Source corners: TL, TR, BL, BR.
	su := [4]float32{u0, u1, u0, u1}
	sv := [4]float32{v0, v0, v1, v1}

	idx := 0
	if flags&TileFlipH != 0 {
		idx |= 4
	}
	if flags&TileFlipV != 0 {
		idx |= 2
	}
	if flags&TileFlipD != 0 {
		idx |= 1
	}
	order := uvOrder[idx]

	uv[0], uv[1] = su[order[0]], sv[order[0]] // TL
	uv[2], uv[3] = su[order[2]], sv[order[2]] // BL
	uv[4], uv[5] = su[order[3]], sv[order[3]] // BR
	uv[6], uv[7] = su[order[1]], sv[order[1]] // TR
}

// DrawTileLayer batches the visible tiles of n's layer, one quad each, on
// the multi-texture pipeline.
func (ctx *RenderContext) DrawTileLayer(n *Node, parent *Matrix, parentAlpha float64) {
	l := n.TileLayer
	if l == nil {
		return
	}
	alpha := ctx.alphaFor(n, parentAlpha)
	if alpha <= 0 {
		return
	}
	cam := ctx.Camera

	// Grid-to-world matrix for culling.
	local := &ctx.local
	n.LocalMatrix(local)
	if parent != nil {
		parent.MultiplyInto(local, local)
	}
	c0, r0, c1, r1, ok := cam.CullTiles(local, n.ScrollFactorX, n.ScrollFactorY,
		l.TileWidth, l.TileHeight, l.width, l.height)
	if !ok {
		return
	}
	ctx.Pipelines.stats.Culled += l.width*l.height - (c1-c0+1)*(r1-r0+1)

	calc := ctx.Calc.Resolve(n, cam, parent, false)
	p := ctx.use(ctx.Renderer.multi, n.BlendMode)
	tints := ctx.cornerTints(n, alpha)
	effect := tintEffectFor(n)
	round := cam.RoundPixels
	tw, th := l.TileWidth, l.TileHeight

	for row := r0; row <= r1; row++ {
		rowOffset := row * l.width
		for col := c0; col <= c1; col++ {
			gid := l.data[rowOffset+col]
			if gid == 0 {
				continue
			}
			f := l.frameFor(gid &^ tileFlagMask)
			if f == nil {
				continue
			}
			x, y := float64(col)*tw, float64(row)*th
			q := calc.SetQuad(x, y, x+tw, y+th, round, &ctx.quad)
			tileUVs(f, gid&tileFlagMask, &ctx.uv)
			unit := p.Assign(f.Texture.ID)
			p.BatchQuadUV(q, &ctx.uv, unit, effect, tints)
		}
	}
}
