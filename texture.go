package birch

import (
	"fmt"
	"math"
)

// Reserved texture keys created by every TextureManager.
const (
	TextureWhite   = "__WHITE"   // 1x1 opaque white, used by flat fills
	TextureNormal  = "__NORMAL"  // 1x1 flat normal (0.5, 0.5, 1)
	TextureMissing = "__MISSING" // 1x1 magenta placeholder
)

// BaseFrame is the name of the frame covering a whole texture.
const BaseFrame = "__BASE"

// Texture is a backend texture plus the named frames cut from it.
type Texture struct {
	Key           string
	ID            TextureID
	Width, Height int

	frames map[string]*Frame
	base   *Frame
}

func newTexture(key string, id TextureID, width, height int) *Texture {
	t := &Texture{
		Key:    key,
		ID:     id,
		Width:  width,
		Height: height,
		frames: make(map[string]*Frame),
	}
	t.base = t.AddFrame(BaseFrame, 0, 0, float64(width), float64(height))
	return t
}

// Base returns the frame covering the whole texture.
func (t *Texture) Base() *Frame { return t.base }

// AddFrame cuts a named frame from the texture, replacing any frame with the
// same name.
func (t *Texture) AddFrame(name string, x, y, width, height float64) *Frame {
	f := &Frame{
		Texture:    t,
		Name:       name,
		CutX:       x,
		CutY:       y,
		CutWidth:   width,
		CutHeight:  height,
		RealWidth:  width,
		RealHeight: height,
	}
	f.UpdateUVs()
	t.frames[name] = f
	return f
}

// Frame returns the named frame, or the base frame if name is empty or
// unknown.
func (t *Texture) Frame(name string) *Frame {
	if name == "" {
		return t.base
	}
	if f, ok := t.frames[name]; ok {
		return f
	}
	Logger().Warn("frame not found, using base frame", "texture", t.Key, "frame", name)
	return t.base
}

// HasFrame reports whether the texture has a frame called name.
func (t *Texture) HasFrame(name string) bool {
	_, ok := t.frames[name]
	return ok
}

// FrameCount returns the number of frames, including the base frame.
func (t *Texture) FrameCount() int {
	return len(t.frames)
}

// Frame is a rectangle of a texture drawn as a sprite.
//
// CutX and CutY locate the stored region in the texture and CutWidth and
// CutHeight are its drawn size; a Rotated region occupies CutHeight x
// CutWidth texels. Real* is the size of the original, untrimmed image and X
// and Y are where the stored region sits inside it.
type Frame struct {
	Texture *Texture
	Name    string

	CutX, CutY          float64
	CutWidth, CutHeight float64

	X, Y                  float64
	RealWidth, RealHeight float64

	Trimmed bool
	Rotated bool

	// CustomPivot marks frames whose pivot came from atlas data; flipping
	// then mirrors around the pivot instead of the frame bounds.
	CustomPivot    bool
	PivotX, PivotY float64

	U0, V0, U1, V1 float64
}

// SetTrim records that the stored region was trimmed from a realWidth x
// realHeight image and sits at (x, y) inside it.
func (f *Frame) SetTrim(realWidth, realHeight, x, y float64) *Frame {
	f.Trimmed = true
	f.RealWidth = realWidth
	f.RealHeight = realHeight
	f.X = x
	f.Y = y
	return f
}

// SetRotated marks the stored region as rotated 90° clockwise in the texture.
func (f *Frame) SetRotated(rotated bool) *Frame {
	f.Rotated = rotated
	f.UpdateUVs()
	return f
}

// SetPivot sets a custom pivot in normalized frame coordinates.
func (f *Frame) SetPivot(x, y float64) *Frame {
	f.CustomPivot = true
	f.PivotX, f.PivotY = x, y
	return f
}

// UpdateUVs recomputes U0..V1 from the cut rectangle.
func (f *Frame) UpdateUVs() {
	tw := float64(f.Texture.Width)
	th := float64(f.Texture.Height)
	if tw == 0 || th == 0 {
		f.U0, f.V0, f.U1, f.V1 = 0, 0, 1, 1
		return
	}
	w, h := f.CutWidth, f.CutHeight
	if f.Rotated {
		w, h = h, w
	}
	f.U0 = f.CutX / tw
	f.V0 = f.CutY / th
	f.U1 = (f.CutX + w) / tw
	f.V1 = (f.CutY + h) / th
}

// CornerUVs writes the UV of each drawn corner in TL, BL, BR, TR order,
// accounting for rotated storage.
func (f *Frame) CornerUVs(uv *[8]float32) {
	u0, v0, u1, v1 := float32(f.U0), float32(f.V0), float32(f.U1), float32(f.V1)
	if f.Rotated {
		// Stored 90° clockwise: the drawn top-left sits at the stored top-right.
		uv[0], uv[1] = u1, v0
		uv[2], uv[3] = u0, v0
		uv[4], uv[5] = u0, v1
		uv[6], uv[7] = u1, v1
		return
	}
	uv[0], uv[1] = u0, v0
	uv[2], uv[3] = u0, v1
	uv[4], uv[5] = u1, v1
	uv[6], uv[7] = u1, v0
}

// Crop is a sub-rectangle of a frame in untrimmed frame space together with
// the matching UVs.
type Crop struct {
	// X, Y, Width, Height are the visible crop area in frame space, clamped
	// to the frame and intersected with the trimmed region.
	X, Y, Width, Height float64
	// U0..V1 are the texture coordinates of the visible area.
	U0, V0, U1, V1 float64
	// CutX..CutHeight are the visible area in texture pixels.
	CutX, CutY, CutWidth, CutHeight float64
	FlipX, FlipY                    bool
}

// CropUVs computes the crop of the rectangle (x, y, width, height) given in
// untrimmed frame space. With flipX or flipY the source area is mirrored
// inside the frame so the flipped sprite shows the same crop window.
func (f *Frame) CropUVs(x, y, width, height float64, flipX, flipY bool) Crop {
	cx, cy := f.CutX, f.CutY
	cw, ch := f.CutWidth, f.CutHeight
	rw, rh := f.RealWidth, f.RealHeight

	x = clamp(x, 0, rw)
	y = clamp(y, 0, rh)
	width = clamp(width, 0, rw-x)
	height = clamp(height, 0, rh-y)

	ox := cx + x
	oy := cy + y
	ow := width
	oh := height

	if f.Trimmed {
		// Intersect the crop with the trimmed region.
		ssx, ssy := f.X, f.Y
		ssr, ssb := f.X+cw, f.Y+ch

		width = clamp(width, 0, cw-x)
		height = clamp(height, 0, ch-y)
		cropRight := x + width
		cropBottom := y + height

		if ssr < x || ssb < y || ssx > cropRight || ssy > cropBottom {
			ox, oy, ow, oh = 0, 0, 0, 0
		} else {
			ix := math.Max(ssx, x)
			iy := math.Max(ssy, y)
			iw := math.Min(ssr, cropRight) - ix
			ih := math.Min(ssb, cropBottom) - iy
			ow, oh = iw, ih
			if flipX {
				ox = cx + (cw - (ix - ssx) - iw)
			} else {
				ox = cx + (ix - ssx)
			}
			if flipY {
				oy = cy + (ch - (iy - ssy) - ih)
			} else {
				oy = cy + (iy - ssy)
			}
			x, y = ix, iy
			width, height = iw, ih
		}
	} else {
		if flipX {
			ox = cx + (cw - x - width)
		}
		if flipY {
			oy = cy + (ch - y - height)
		}
	}

	tw := float64(f.Texture.Width)
	th := float64(f.Texture.Height)

	return Crop{
		X: x, Y: y, Width: width, Height: height,
		U0:   math.Max(0, ox/tw),
		V0:   math.Max(0, oy/th),
		U1:   math.Min(1, (ox+ow)/tw),
		V1:   math.Min(1, (oy+oh)/th),
		CutX: ox, CutY: oy, CutWidth: ow, CutHeight: oh,
		FlipX: flipX, FlipY: flipY,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// TextureManager owns every texture the renderer can draw. Pipelines borrow
// texture IDs from it; only the manager creates or deletes backend textures.
type TextureManager struct {
	backend  Backend
	textures map[string]*Texture
	owned    map[string]bool
}

// NewTextureManager creates the manager and its reserved textures.
func NewTextureManager(backend Backend) *TextureManager {
	tm := &TextureManager{
		backend:  backend,
		textures: make(map[string]*Texture),
		owned:    make(map[string]bool),
	}
	_, _ = tm.Create(TextureWhite, 1, 1, []byte{255, 255, 255, 255})
	_, _ = tm.Create(TextureNormal, 1, 1, []byte{128, 128, 255, 255})
	_, _ = tm.Create(TextureMissing, 1, 1, []byte{255, 0, 255, 255})
	return tm
}

// Create uploads RGBA pixels as a new texture owned by the manager.
func (tm *TextureManager) Create(key string, width, height int, pixels []byte) (*Texture, error) {
	if _, ok := tm.textures[key]; ok {
		return nil, fmt.Errorf("birch: create texture %q: %w", key, ErrTextureExists)
	}
	id := tm.backend.CreateTexture(width, height, pixels)
	t := newTexture(key, id, width, height)
	tm.textures[key] = t
	tm.owned[key] = true
	return t, nil
}

// Add registers a texture the caller created on the backend itself. The
// manager never deletes such textures.
func (tm *TextureManager) Add(key string, id TextureID, width, height int) (*Texture, error) {
	if _, ok := tm.textures[key]; ok {
		return nil, fmt.Errorf("birch: add texture %q: %w", key, ErrTextureExists)
	}
	t := newTexture(key, id, width, height)
	tm.textures[key] = t
	return t, nil
}

// Get returns the texture registered under key.
func (tm *TextureManager) Get(key string) (*Texture, error) {
	t, ok := tm.textures[key]
	if !ok {
		return nil, fmt.Errorf("birch: texture %q: %w", key, ErrTextureNotFound)
	}
	return t, nil
}

// Exists reports whether key is registered.
func (tm *TextureManager) Exists(key string) bool {
	_, ok := tm.textures[key]
	return ok
}

// Frame returns a frame of a texture, or the missing-texture base frame
// when the texture is unknown.
func (tm *TextureManager) Frame(key, frame string) *Frame {
	t, ok := tm.textures[key]
	if !ok {
		Logger().Warn("texture not found, using placeholder", "texture", key)
		return tm.textures[TextureMissing].base
	}
	return t.Frame(frame)
}

// White returns the reserved white texture.
func (tm *TextureManager) White() *Texture { return tm.textures[TextureWhite] }

// Normal returns the reserved flat normal map.
func (tm *TextureManager) Normal() *Texture { return tm.textures[TextureNormal] }

// Missing returns the reserved placeholder texture.
func (tm *TextureManager) Missing() *Texture { return tm.textures[TextureMissing] }

// Remove unregisters key and deletes the backend texture if the manager
// created it. Reserved textures cannot be removed.
func (tm *TextureManager) Remove(key string) error {
	switch key {
	case TextureWhite, TextureNormal, TextureMissing:
		return fmt.Errorf("birch: cannot remove reserved texture %q", key)
	}
	t, err := tm.Get(key)
	if err != nil {
		return err
	}
	if tm.owned[key] {
		tm.backend.DeleteTexture(t.ID)
	}
	delete(tm.textures, key)
	delete(tm.owned, key)
	return nil
}

// Destroy deletes every texture the manager created.
func (tm *TextureManager) Destroy() {
	for key, t := range tm.textures {
		if tm.owned[key] {
			tm.backend.DeleteTexture(t.ID)
		}
	}
	tm.textures = make(map[string]*Texture)
	tm.owned = make(map[string]bool)
}
