package birch

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// RGB returns the color packed as 0xRRGGBB, ignoring alpha.
func (c Color) RGB() uint32 {
	return uint32(clampUnit(c.R)*255)<<16 | uint32(clampUnit(c.G)*255)<<8 | uint32(clampUnit(c.B)*255)
}

// RGBA converts c to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	a := clampUnit(c.A)
	return color.RGBA{
		R: uint8(clampUnit(c.R) * a * 255),
		G: uint8(clampUnit(c.G) * a * 255),
		B: uint8(clampUnit(c.B) * a * 255),
		A: uint8(a * 255),
	}
}

// ColorFromRGB unpacks a 0xRRGGBB value into an opaque Color.
func ColorFromRGB(rgb uint32) Color {
	return Color{
		R: float64(rgb>>16&0xff) / 255,
		G: float64(rgb>>8&0xff) / 255,
		B: float64(rgb&0xff) / 255,
		A: 1,
	}
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// IntersectsCircle reports whether the circle at (cx, cy) with radius r
// overlaps the rectangle.
func (r Rect) IntersectsCircle(cx, cy, radius float64) bool {
	nx := math.Max(r.X, math.Min(cx, r.X+r.Width))
	ny := math.Max(r.Y, math.Min(cy, r.Y+r.Height))
	dx := cx - nx
	dy := cy - ny
	return dx*dx+dy*dy <= radius*radius
}

// BlendMode selects a compositing operation. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
	BlendErase                     // destination-out (punch transparent holes)
	BlendNone                      // opaque copy (skip blending)

	// blendUnknown marks the blend mode as not yet sent to the backend.
	blendUnknown BlendMode = 0xff
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendNormal:
		return ebiten.BlendSourceOver
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output
	NodeTypeSprite                    // textured quad
	NodeTypeRope                      // textured triangle strip
	NodeTypeShape                     // flat-filled polygon and/or stroked outline
	NodeTypeTileLayer                 // grid of tile quads
)

// TintEffect tells the shader how to combine the vertex tint with the
// sampled texel.
type TintEffect uint8

const (
	TintMultiply TintEffect = iota // texel * tint
	TintFill                       // tint rgb replaces texel rgb, texel alpha kept
	TintFlat                       // tint only, texture ignored
)

// Topology is the primitive assembly mode of a vertex stream.
type Topology uint8

const (
	TopologyTriangles     Topology = iota // independent triangles, 3 vertices each
	TopologyTriangleStrip                 // each vertex after the second forms a triangle
)

func (t Topology) String() string {
	switch t {
	case TopologyTriangles:
		return "triangles"
	case TopologyTriangleStrip:
		return "triangle-strip"
	default:
		return "unknown"
	}
}

// PackTint packs a 0xRRGGBB tint and an alpha in [0, 1] into one uint32 as
// 0xAARRGGBB. Written little-endian this lands in memory as B, G, R, A, which
// the textured shaders read back as bgra.
func PackTint(rgb uint32, alpha float64) uint32 {
	ua := uint32(clampUnit(alpha)*255) & 0xff
	return ua<<24 | rgb&0xffffff
}

// PackTintSwap packs like PackTint but swaps red and blue so the value lands
// in memory as R, G, B, A. Used by the flat-fill graphics pipeline.
func PackTintSwap(rgb uint32, alpha float64) uint32 {
	ua := uint32(clampUnit(alpha)*255) & 0xff
	r := rgb >> 16 & 0xff
	g := rgb >> 8 & 0xff
	b := rgb & 0xff
	return ua<<24 | b<<16 | g<<8 | r
}
