package birch

import "fmt"

// TextureUnits tracks which texture is bound to which unit for the batch a
// pipeline is currently building. A texture keeps its unit until the units
// run out; then the batch is flushed and tracking restarts at unit 0.
//
// The mapping survives capacity flushes because the backend keeps its
// bindings between draws.
type TextureUnits struct {
	backend Backend
	max     int
	bound   []TextureID
	flush   func()
}

// NewTextureUnits returns an allocator for max units. flush is called when a
// new texture needs a unit and every unit is taken.
func NewTextureUnits(backend Backend, max int, flush func()) *TextureUnits {
	if max < 1 {
		max = 1
	}
	return &TextureUnits{
		backend: backend,
		max:     max,
		bound:   make([]TextureID, 0, max),
		flush:   flush,
	}
}

// Max returns the number of units available to one batch.
func (t *TextureUnits) Max() int { return t.max }

// Len returns the number of units bound in the current batch.
func (t *TextureUnits) Len() int { return len(t.bound) }

// Bound returns the texture bound to each unit, indexed by unit. The returned
// slice MUST NOT be mutated.
func (t *TextureUnits) Bound() []TextureID { return t.bound }

// UnitOf returns the unit tex is bound to, or -1.
func (t *TextureUnits) UnitOf(tex TextureID) int {
	for i, b := range t.bound {
		if b == tex {
			return i
		}
	}
	return -1
}

// Assign returns the unit for tex, binding it to the next free unit when it
// is not bound yet. When no unit is free the batch is flushed first and tex
// is bound to unit 0.
func (t *TextureUnits) Assign(tex TextureID) int {
	if u := t.UnitOf(tex); u >= 0 {
		return u
	}
	if len(t.bound) >= t.max {
		t.restart()
	}
	t.bound = append(t.bound, tex)
	unit := len(t.bound) - 1
	t.backend.BindTexture(unit, tex)
	return unit
}

// AssignPair assigns units to two textures that must be sampled by the same
// draw, such as a diffuse texture and its normal map. If both cannot fit in
// the current batch the batch is flushed before either is bound.
func (t *TextureUnits) AssignPair(a, b TextureID) (int, int) {
	need := 0
	if t.UnitOf(a) < 0 {
		need++
	}
	if b != a && t.UnitOf(b) < 0 {
		need++
	}
	if len(t.bound)+need > t.max {
		if need > t.max {
			panic(fmt.Sprintf("birch: %d texture units cannot hold a texture pair", t.max))
		}
		t.restart()
	}
	return t.Assign(a), t.Assign(b)
}

// Bind re-binds every tracked unit on the backend. Pipelines call this when
// they become current, since another pipeline may have used the same units.
func (t *TextureUnits) Bind() {
	for unit, tex := range t.bound {
		t.backend.BindTexture(unit, tex)
	}
}

// Reset forgets all bindings without flushing.
func (t *TextureUnits) Reset() {
	t.bound = t.bound[:0]
}

func (t *TextureUnits) restart() {
	if t.flush != nil {
		t.flush()
	}
	t.bound = t.bound[:0]
}
