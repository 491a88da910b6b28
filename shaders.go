package birch

import "github.com/hajimehoshi/ebiten/v2"

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine.
// Vertex colors arrive straight (not premultiplied); texels are premultiplied.

// tintFillShaderSrc replaces the texel color with the vertex tint and keeps
// the texel alpha.
const tintFillShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	a := c.a * color.a
	return vec4(color.rgb*a, a)
}
`

// --- Lazy shader compilation ---

var tintFillShader *ebiten.Shader

func ensureTintFillShader() *ebiten.Shader {
	if tintFillShader == nil {
		s, err := ebiten.NewShader([]byte(tintFillShaderSrc))
		if err != nil {
			panic("birch: failed to compile tint fill shader: " + err.Error())
		}
		tintFillShader = s
	}
	return tintFillShader
}
