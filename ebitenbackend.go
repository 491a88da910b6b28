package birch

import (
	"image"
	"image/color"
	"math"
	"unsafe"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenBackend runs the pipelines on top of Ebitengine. Vertex buffers and
// programs live on the CPU; DrawArrays decodes the uploaded records through
// the program's VertexLayout and submits them to the target image with
// DrawTriangles32, grouping consecutive triangles that sample the same
// texture unit with the same tint effect into one call.
//
// Textures are *ebiten.Image values. Pixels passed to CreateTexture must be
// premultiplied RGBA.
type EbitenBackend struct {
	target *ebiten.Image
	clip   image.Rectangle

	nextID   uint32
	buffers  map[BufferID]*ebitenBuffer
	programs map[ProgramID]*ebitenProgram
	textures map[TextureID]*ebiten.Image
	owned    map[TextureID]bool

	units    []TextureID
	maxUnits int
	buffer   BufferID
	program  ProgramID
	blend    BlendMode

	white *ebiten.Image

	// Per-draw scratch, reused across calls.
	vertex  Vertex
	verts   []ebiten.Vertex
	keys    []drawKey
	indices []uint32
	run     []uint32

	out        []ebiten.Vertex
	outIndices []uint32
}

type ebitenBuffer struct {
	words []uint32
	bytes []byte
}

type ebitenProgram struct {
	name     string
	layout   *VertexLayout
	uniforms map[string][]float32
}

// drawKey is what a run of triangles must share to go out in one call.
type drawKey struct {
	unit   int
	effect TintEffect
}

// DefaultEbitenTextureUnits is the unit count reported by MaxTextureUnits.
// Ebitengine has no sampler limit for DrawTriangles; the value only bounds
// how many textures one batch mixes.
const DefaultEbitenTextureUnits = 16

// NewEbitenBackend returns a backend with no target. Call SetTarget before
// rendering each frame.
func NewEbitenBackend() *EbitenBackend {
	return &EbitenBackend{
		buffers:  make(map[BufferID]*ebitenBuffer),
		programs: make(map[ProgramID]*ebitenProgram),
		textures: make(map[TextureID]*ebiten.Image),
		owned:    make(map[TextureID]bool),
		maxUnits: DefaultEbitenTextureUnits,
	}
}

// SetTarget sets the image draws go to and resets the clip to its bounds.
func (b *EbitenBackend) SetTarget(img *ebiten.Image) {
	b.target = img
	if img != nil {
		b.clip = img.Bounds()
	}
}

// Target returns the current draw target.
func (b *EbitenBackend) Target() *ebiten.Image { return b.target }

// SetMaxTextureUnits overrides the unit count reported to pipelines. It must
// be called before the renderer is created.
func (b *EbitenBackend) SetMaxTextureUnits(n int) {
	if n > 0 {
		b.maxUnits = n
	}
}

// RegisterImage wraps an existing image as a texture. The backend never
// deallocates registered images; add the ID to a TextureManager with Add.
func (b *EbitenBackend) RegisterImage(img *ebiten.Image) TextureID {
	id := TextureID(b.newID())
	b.textures[id] = img
	return id
}

// AddImage registers img with the backend and adds it to tm under key.
func (b *EbitenBackend) AddImage(tm *TextureManager, key string, img *ebiten.Image) (*Texture, error) {
	bounds := img.Bounds()
	return tm.Add(key, b.RegisterImage(img), bounds.Dx(), bounds.Dy())
}

// AtlasPage registers img and describes it as an atlas page.
func (b *EbitenBackend) AtlasPage(img *ebiten.Image) AtlasPage {
	bounds := img.Bounds()
	return AtlasPage{ID: b.RegisterImage(img), Width: bounds.Dx(), Height: bounds.Dy()}
}

// Image returns the image behind a texture ID, or nil.
func (b *EbitenBackend) Image(id TextureID) *ebiten.Image { return b.textures[id] }

// Uniform returns the values last set for name on program id.
func (b *EbitenBackend) Uniform(id ProgramID, name string) []float32 {
	if p := b.programs[id]; p != nil {
		return p.uniforms[name]
	}
	return nil
}

func (b *EbitenBackend) newID() uint32 {
	b.nextID++
	return b.nextID
}

// --- Buffers ---

func (b *EbitenBackend) CreateVertexBuffer(size int) BufferID {
	words := make([]uint32, (size+3)/4)
	buf := &ebitenBuffer{words: words}
	if len(words) > 0 {
		buf.bytes = unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)
	}
	id := BufferID(b.newID())
	b.buffers[id] = buf
	return id
}

func (b *EbitenBackend) DeleteVertexBuffer(id BufferID) {
	delete(b.buffers, id)
	if b.buffer == id {
		b.buffer = 0
	}
}

func (b *EbitenBackend) BindVertexBuffer(id BufferID) { b.buffer = id }

func (b *EbitenBackend) CurrentVertexBuffer() BufferID { return b.buffer }

func (b *EbitenBackend) UploadSubData(id BufferID, data []byte) {
	buf := b.buffers[id]
	if buf == nil {
		panic("birch: upload to unknown vertex buffer")
	}
	if len(data) > len(buf.bytes) {
		panic("birch: upload exceeds vertex buffer size")
	}
	copy(buf.bytes, data)
}

// --- Programs ---

func (b *EbitenBackend) CreateProgram(name string, layout *VertexLayout) ProgramID {
	id := ProgramID(b.newID())
	b.programs[id] = &ebitenProgram{
		name:     name,
		layout:   layout,
		uniforms: make(map[string][]float32),
	}
	return id
}

func (b *EbitenBackend) DeleteProgram(id ProgramID) {
	delete(b.programs, id)
	if b.program == id {
		b.program = 0
	}
}

func (b *EbitenBackend) UseProgram(id ProgramID) { b.program = id }

func (b *EbitenBackend) CurrentProgram() ProgramID { return b.program }

func (b *EbitenBackend) SetUniform(id ProgramID, name string, values ...float32) {
	p := b.programs[id]
	if p == nil {
		return
	}
	p.uniforms[name] = append(p.uniforms[name][:0], values...)
}

// --- Textures ---

func (b *EbitenBackend) CreateTexture(width, height int, pixels []byte) TextureID {
	img := ebiten.NewImage(width, height)
	if len(pixels) == width*height*4 {
		img.WritePixels(pixels)
	}
	id := TextureID(b.newID())
	b.textures[id] = img
	b.owned[id] = true
	return id
}

func (b *EbitenBackend) DeleteTexture(id TextureID) {
	if img, ok := b.textures[id]; ok && b.owned[id] {
		img.Deallocate()
	}
	delete(b.textures, id)
	delete(b.owned, id)
	for i, t := range b.units {
		if t == id {
			b.units[i] = 0
		}
	}
}

func (b *EbitenBackend) BindTexture(unit int, id TextureID) {
	if unit < 0 || unit >= b.maxUnits {
		panic("birch: texture unit out of range")
	}
	for len(b.units) <= unit {
		b.units = append(b.units, 0)
	}
	b.units[unit] = id
}

func (b *EbitenBackend) MaxTextureUnits() int { return b.maxUnits }

// --- State ---

func (b *EbitenBackend) SetBlendMode(mode BlendMode) { b.blend = mode }

// SetViewport clips subsequent draws to the rectangle. Vertex positions are
// already in target pixels, so no remapping is needed.
func (b *EbitenBackend) SetViewport(x, y, width, height int) {
	b.clip = image.Rect(x, y, x+width, y+height)
}

func (b *EbitenBackend) ResetState() {
	clear(b.units)
	b.units = b.units[:0]
	b.blend = BlendNormal
	if b.target != nil {
		b.clip = b.target.Bounds()
	}
}

// --- Drawing ---

// DrawArrays decodes count records of the bound buffer starting at first and
// draws them to the target. Strips are converted to indexed triangles.
func (b *EbitenBackend) DrawArrays(topology Topology, first, count int) {
	if b.target == nil || count < 3 {
		return
	}
	buf := b.buffers[b.buffer]
	prog := b.programs[b.program]
	if buf == nil || prog == nil {
		panic("birch: draw without a bound buffer and program")
	}
	layout := prog.layout
	words := layout.Words()
	if (first+count)*words > len(buf.words) {
		panic("birch: draw range exceeds vertex buffer")
	}
	f32 := unsafe.Slice((*float32)(unsafe.Pointer(&buf.words[0])), len(buf.words))
	lit := layout.Has(SemanticNormalUnit)

	b.verts = b.verts[:0]
	b.keys = b.keys[:0]
	for i := first; i < first+count; i++ {
		layout.Read(f32, buf.words, i*words, &b.vertex)
		v := &b.vertex
		key := drawKey{unit: int(v.Unit), effect: TintEffect(v.TintEffect)}
		r, g, bl, a := decodeTint(v.Color, layout.TintOrder)
		if lit {
			lr, lg, lb := lightAt(prog.uniforms, v.X, v.Y)
			r, g, bl = r*lr, g*lg, bl*lb
		}
		b.verts = append(b.verts, ebiten.Vertex{
			DstX: v.X, DstY: v.Y,
			SrcX: v.U, SrcY: v.V,
			ColorR: r, ColorG: g, ColorB: bl, ColorA: a,
		})
		b.keys = append(b.keys, key)
	}

	switch topology {
	case TopologyTriangleStrip:
		b.indices = appendStripIndices(b.indices[:0], count)
	default:
		b.indices = appendTriangleIndices(b.indices[:0], count)
	}

	target := b.target
	if !b.clip.Eq(target.Bounds()) {
		target = target.SubImage(b.clip).(*ebiten.Image)
	}

	// Walk triangles, batching runs with the same key.
	b.run = b.run[:0]
	var runKey drawKey
	for t := 0; t+2 < len(b.indices); t += 3 {
		key := b.keys[b.indices[t]]
		if len(b.run) > 0 && key != runKey {
			b.submit(target, runKey)
			b.run = b.run[:0]
		}
		runKey = key
		b.run = append(b.run, b.indices[t], b.indices[t+1], b.indices[t+2])
	}
	if len(b.run) > 0 {
		b.submit(target, runKey)
	}
}

// submit draws the triangles in b.run. Texture coordinates are normalized
// in the stream and are scaled to source pixels here, once the source image
// of the run is known. Each run gets its own vertex copies so strip vertices
// shared with a neighboring run are left untouched.
func (b *EbitenBackend) submit(target *ebiten.Image, key drawKey) {
	var src *ebiten.Image
	if key.effect == TintFlat {
		src = b.whiteImage()
	} else if key.unit >= 0 && key.unit < len(b.units) {
		src = b.textures[b.units[key.unit]]
	}
	if src == nil {
		return
	}

	bounds := src.Bounds()
	w, h := float32(bounds.Dx()), float32(bounds.Dy())
	ox, oy := float32(bounds.Min.X), float32(bounds.Min.Y)
	b.out = b.out[:0]
	b.outIndices = b.outIndices[:0]
	for _, idx := range b.run {
		v := b.verts[idx]
		if key.effect == TintFlat {
			v.SrcX, v.SrcY = ox+w/2, oy+h/2
		} else {
			v.SrcX = ox + v.SrcX*w
			v.SrcY = oy + v.SrcY*h
		}
		b.outIndices = append(b.outIndices, uint32(len(b.out)))
		b.out = append(b.out, v)
	}

	if key.effect == TintFill {
		var op ebiten.DrawTrianglesShaderOptions
		op.Blend = b.blend.EbitenBlend()
		op.Images[0] = src
		target.DrawTrianglesShader32(b.out, b.outIndices, ensureTintFillShader(), &op)
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.Blend = b.blend.EbitenBlend()
	op.ColorScaleMode = ebiten.ColorScaleModeStraightAlpha
	target.DrawTriangles32(b.out, b.outIndices, src, &op)
}

func (b *EbitenBackend) whiteImage() *ebiten.Image {
	if b.white == nil {
		b.white = ebiten.NewImage(3, 3)
		b.white.Fill(color.White)
	}
	return b.white
}

// --- Pure helpers ---

// decodeTint unpacks a stream tint into straight-alpha float components.
func decodeTint(c uint32, order TintOrder) (r, g, b, a float32) {
	a = float32(c>>24) / 255
	switch order {
	case TintRGBA:
		r = float32(c&0xff) / 255
		g = float32(c>>8&0xff) / 255
		b = float32(c>>16&0xff) / 255
	default:
		r = float32(c>>16&0xff) / 255
		g = float32(c>>8&0xff) / 255
		b = float32(c&0xff) / 255
	}
	return r, g, b, a
}

func appendTriangleIndices(dst []uint32, count int) []uint32 {
	for i := 0; i+2 < count; i += 3 {
		dst = append(dst, uint32(i), uint32(i+1), uint32(i+2))
	}
	return dst
}

// appendStripIndices converts a triangle strip of count vertices into
// triangle indices, swapping the first two indices of odd triangles so every
// triangle keeps the strip's winding.
func appendStripIndices(dst []uint32, count int) []uint32 {
	for i := 2; i < count; i++ {
		if i%2 == 0 {
			dst = append(dst, uint32(i-2), uint32(i-1), uint32(i))
		} else {
			dst = append(dst, uint32(i-1), uint32(i-2), uint32(i))
		}
	}
	return dst
}

// lightAt evaluates the lighting uniforms at a screen position: the ambient
// color plus every light's color scaled by intensity and a linear falloff
// to zero at its radius. Components are clamped to 1.
func lightAt(uniforms map[string][]float32, x, y float32) (r, g, b float32) {
	if amb := uniforms["uAmbientLightColor"]; len(amb) >= 3 {
		r, g, b = amb[0], amb[1], amb[2]
	}
	n := 0
	if c := uniforms["uLightCount"]; len(c) > 0 {
		n = int(c[0])
	}
	for i := range n {
		names := lightUniformName(i)
		pos, col := uniforms[names.position], uniforms[names.color]
		rad, inten := uniforms[names.radius], uniforms[names.intensity]
		if len(pos) < 2 || len(col) < 3 || len(rad) < 1 || len(inten) < 1 || rad[0] <= 0 {
			continue
		}
		dx, dy := float64(x-pos[0]), float64(y-pos[1])
		falloff := 1 - float32(math.Sqrt(dx*dx+dy*dy))/rad[0]
		if falloff <= 0 {
			continue
		}
		s := falloff * inten[0]
		r += col[0] * s
		g += col[1] * s
		b += col[2] * s
	}
	return min(r, 1), min(g, 1), min(b, 1)
}
