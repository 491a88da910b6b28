package birch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// childNames joins the names of n's children in tree order.
func childNames(n *Node) string {
	var b strings.Builder
	for _, c := range n.Children() {
		b.WriteString(c.Name)
	}
	return b.String()
}

// family returns a container holding containers named by the letters of names.
func family(names string) (*Node, map[string]*Node) {
	parent := NewContainer("parent")
	byName := make(map[string]*Node, len(names))
	for _, r := range names {
		c := NewContainer(string(r))
		byName[c.Name] = c
		parent.AddChild(c)
	}
	return parent, byName
}

func TestNodeConstructors(t *testing.T) {
	tex := newTexture("hero", 1, 32, 32)
	rope := NewRope(nil, []Vec2{{0, 0}, {1, 0}}, RopeConfig{Width: 1})
	shape := NewRectShape(1, 1, 0)
	layer, err := NewTileLayer(1, 1, 16, 16, []uint32{0}, nil)
	require.NoError(t, err)

	cases := []struct {
		node    *Node
		typ     NodeType
		originX float64
		geom    any
	}{
		{NewContainer("c"), NodeTypeContainer, 0, nil},
		{NewSprite("s", tex.Base()), NodeTypeSprite, 0.5, tex.Base()},
		{NewRopeNode("r", rope), NodeTypeRope, 0, rope},
		{NewShapeNode("sh", shape), NodeTypeShape, 0, shape},
		{NewTileLayerNode("t", layer), NodeTypeTileLayer, 0, layer},
	}
	for _, tc := range cases {
		n := tc.node
		t.Run(n.Name, func(t *testing.T) {
			assert.NotZero(t, n.ID)
			assert.Equal(t, tc.typ, n.Type)
			assert.Equal(t, tc.originX, n.OriginX)
			assert.Equal(t, [2]float64{1, 1}, [2]float64{n.ScaleX, n.ScaleY})
			assert.Equal(t, [2]float64{1, 1}, [2]float64{n.ScrollFactorX, n.ScrollFactorY})
			assert.Equal(t, 1.0, n.Alpha)
			assert.True(t, n.Visible)
			assert.Equal(t, [4]uint32{0xffffff, 0xffffff, 0xffffff, 0xffffff}, n.Tint)
			assert.Equal(t, [4]float64{1, 1, 1, 1}, n.CornerAlpha)

			switch g := tc.geom.(type) {
			case *Frame:
				assert.Same(t, g, n.Frame)
			case *Rope:
				assert.Same(t, g, n.Rope)
			case *Shape:
				assert.Same(t, g, n.Shape)
			case *TileLayer:
				assert.Same(t, g, n.TileLayer)
			}
		})
	}

	ids := map[uint32]bool{}
	for _, tc := range cases {
		assert.False(t, ids[tc.node.ID], "duplicate id %d", tc.node.ID)
		ids[tc.node.ID] = true
	}
}

func TestNodeTreeEdits(t *testing.T) {
	cases := []struct {
		name string
		edit func(p *Node, k map[string]*Node)
		want string
	}{
		{"insert middle", func(p *Node, _ map[string]*Node) { p.AddChildAt(NewContainer("x"), 2) }, "abxcd"},
		{"insert front", func(p *Node, _ map[string]*Node) { p.AddChildAt(NewContainer("x"), 0) }, "xabcd"},
		{"insert end", func(p *Node, _ map[string]*Node) { p.AddChildAt(NewContainer("x"), 4) }, "abcdx"},
		{"move first to last", func(p *Node, k map[string]*Node) { p.SetChildIndex(k["a"], 3) }, "bcda"},
		{"move last to second", func(p *Node, k map[string]*Node) { p.SetChildIndex(k["d"], 1) }, "adbc"},
		{"move in place", func(p *Node, k map[string]*Node) { p.SetChildIndex(k["b"], 1) }, "abcd"},
		{"remove at", func(p *Node, _ map[string]*Node) { p.RemoveChildAt(1) }, "acd"},
		{"remove child", func(p *Node, k map[string]*Node) { p.RemoveChild(k["c"]) }, "abd"},
		{"remove from parent", func(_ *Node, k map[string]*Node) { k["a"].RemoveFromParent() }, "bcd"},
		{"re-add moves to end", func(p *Node, k map[string]*Node) { p.AddChild(k["b"]) }, "acdb"},
		{"remove all", func(p *Node, _ map[string]*Node) { p.RemoveChildren() }, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, k := family("abcd")
			tc.edit(p, k)
			assert.Equal(t, tc.want, childNames(p))
			assert.Equal(t, len(tc.want), p.NumChildren())
			for i, c := range p.Children() {
				assert.Same(t, p, c.Parent)
				assert.Same(t, c, p.ChildAt(i))
			}
		})
	}
}

func TestNodeDetachClearsParent(t *testing.T) {
	p, k := family("ab")
	removed := p.RemoveChildAt(0)
	assert.Same(t, k["a"], removed)
	assert.Nil(t, removed.Parent)

	p.RemoveChildren()
	assert.Nil(t, k["b"].Parent)

	// Detaching an orphan is a no-op.
	k["b"].RemoveFromParent()
	assert.Nil(t, k["b"].Parent)
}

func TestNodeReparent(t *testing.T) {
	p1, k := family("ab")
	p2 := NewContainer("other")
	p2.AddChild(k["a"])

	assert.Equal(t, "b", childNames(p1))
	assert.Equal(t, "a", childNames(p2))
	assert.Same(t, p2, k["a"].Parent)
}

func TestNodeTreeMisusePanics(t *testing.T) {
	cases := map[string]func(){
		"nil child": func() { NewContainer("p").AddChild(nil) },
		"self": func() {
			n := NewContainer("n")
			n.AddChild(n)
		},
		"ancestor": func() {
			p, k := family("a")
			k["a"].AddChild(NewContainer("g"))
			k["a"].ChildAt(0).AddChild(p)
		},
		"foreign child": func() {
			_, k := family("a")
			NewContainer("other").RemoveChild(k["a"])
		},
		"index out of range": func() {
			p, _ := family("a")
			p.RemoveChildAt(3)
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Panics(t, fn)
		})
	}
}

func TestNodeDisposeSubtree(t *testing.T) {
	r, fb := testRenderer(16, 4)
	s, _ := testSceneCamera()
	tex := addTexture(t, r, "hero", 16, 16)

	group := NewContainer("group")
	kept := NewSprite("kept", tex.Base())
	gone := NewSprite("gone", tex.Base())
	group.AddChild(gone)
	s.Root().AddChild(group)
	s.Root().AddChild(kept)

	group.Dispose()
	group.Dispose()

	assert.True(t, group.IsDisposed())
	assert.True(t, gone.IsDisposed())
	assert.Zero(t, gone.ID)
	assert.Nil(t, gone.Frame)
	assert.False(t, kept.IsDisposed())
	assert.Equal(t, "kept", childNames(s.Root()))

	r.Render(s)
	require.Len(t, fb.draws, 1)
	assert.Len(t, fb.draws[0].verts, 6)
}

func TestZIndexSetsQuadOrder(t *testing.T) {
	r, fb := testRenderer(16, 4)
	s, _ := testSceneCamera()
	tex := addTexture(t, r, "hero", 16, 16)

	sprites := make([]*Node, 3)
	for i := range sprites {
		sp := NewSprite(string(rune('a'+i)), tex.Base())
		sp.SetOrigin(0, 0)
		sp.SetPosition(float64(i*100), 0)
		s.Root().AddChild(sp)
		sprites[i] = sp
	}

	leftX := func() []float32 {
		fb.draws = fb.draws[:0]
		r.Render(s)
		require.Len(t, fb.draws, 1)
		v := fb.draws[0].verts
		require.Len(t, v, 18)
		return []float32{v[0].X, v[6].X, v[12].X}
	}

	assert.Equal(t, []float32{0, 100, 200}, leftX())

	sprites[0].SetZIndex(2)
	sprites[2].SetZIndex(-1)
	assert.Equal(t, []float32{200, 100, 0}, leftX())

	// Ties keep insertion order.
	sprites[0].SetZIndex(0)
	sprites[2].SetZIndex(0)
	assert.Equal(t, []float32{0, 100, 200}, leftX())
}

func TestNodeAppearance(t *testing.T) {
	n := NewSprite("s", nil)

	n.SetTintCorners(0xff000001, 0x00ff00, 0x0000ff, 0xffffff)
	assert.Equal(t, [4]uint32{0x000001, 0x00ff00, 0x0000ff, 0xffffff}, n.Tint, "alpha byte is dropped")

	n.SetCornerAlpha(1, 0.75, 0.5, 0.25)
	assert.Equal(t, [4]float64{1, 0.75, 0.5, 0.25}, n.CornerAlpha)

	n.TintFill = true
	n.ClearTint()
	assert.False(t, n.TintFill)
	assert.Equal(t, uint32(0xffffff), n.Tint[CornerBottomRight])

	_, ok := n.Crop()
	assert.False(t, ok)
	n.SetCrop(1, 2, 3, 4)
	rect, ok := n.Crop()
	assert.True(t, ok)
	assert.Equal(t, Rect{X: 1, Y: 2, Width: 3, Height: 4}, rect)
	n.ClearCrop()
	_, ok = n.Crop()
	assert.False(t, ok)
}
