package birch

import (
	"math"
	"testing"
)

const transformEps = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > transformEps {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func matrixValues(m *Matrix) [6]float64 {
	return [6]float64{m.A, m.B, m.C, m.D, m.E, m.F}
}

func assertValues(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > transformEps {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- LocalMatrix ---

func TestLocalMatrixIdentity(t *testing.T) {
	n := NewContainer("test")
	var m Matrix
	assertValues(t, "identity", matrixValues(n.LocalMatrix(&m)), [6]float64{1, 0, 0, 1, 0, 0})
}

func TestLocalMatrixTranslation(t *testing.T) {
	n := NewContainer("test")
	n.X = 10
	n.Y = 20
	var m Matrix
	assertValues(t, "translation", matrixValues(n.LocalMatrix(&m)), [6]float64{1, 0, 0, 1, 10, 20})
}

func TestLocalMatrixScale(t *testing.T) {
	n := NewContainer("test")
	n.ScaleX = 2
	n.ScaleY = 3
	var m Matrix
	assertValues(t, "scale", matrixValues(n.LocalMatrix(&m)), [6]float64{2, 0, 0, 3, 0, 0})
}

func TestLocalMatrixRotation90(t *testing.T) {
	n := NewContainer("test")
	n.Rotation = math.Pi / 2
	var m Matrix
	// cos(90)=0, sin(90)=1 → a=0, b=1, c=-1, d=0
	assertValues(t, "rot90", matrixValues(n.LocalMatrix(&m)), [6]float64{0, 1, -1, 0, 0, 0})
}

func TestLocalMatrixCombined(t *testing.T) {
	n := NewContainer("test")
	n.X = 50
	n.Y = 100
	n.ScaleX = 2
	n.ScaleY = 2
	n.Rotation = math.Pi / 2

	var m Matrix
	// a = cos*sx = 0, b = sin*sx = 2, c = -sin*sy = -2, d = cos*sy = 0
	assertValues(t, "combined", matrixValues(n.LocalMatrix(&m)), [6]float64{0, 2, -2, 0, 50, 100})
}

func TestLocalMatrixIgnoresOrigin(t *testing.T) {
	n := NewSprite("test", nil)
	n.X = 100
	var m Matrix
	// The origin only offsets the drawn frame, not the node's matrix.
	assertValues(t, "origin", matrixValues(n.LocalMatrix(&m)), [6]float64{1, 0, 0, 1, 100, 0})
}

// --- WorldMatrix ---

func TestWorldMatrixParentChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	parent.X = 100
	child.X = 10

	var m Matrix
	assertNear(t, "parent.tx", parent.WorldMatrix(&m).E, 100)
	assertNear(t, "child.tx", child.WorldMatrix(&m).E, 110)
}

func TestWorldMatrixScaledParent(t *testing.T) {
	parent := NewContainer("parent")
	parent.SetScale(2, 2)
	parent.SetPosition(10, 0)
	child := NewContainer("child")
	child.SetPosition(5, 5)
	parent.AddChild(child)

	x, y := child.WorldPosition()
	assertNear(t, "x", x, 20)
	assertNear(t, "y", y, 10)
}

func TestUpdateWorldAlpha(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	parent.Alpha = 0.5
	child.Alpha = 0.5

	parent.updateWorld(nil, 1)
	child.updateWorld(&parent.worldTransform, parent.worldAlpha)

	assertNear(t, "parent.worldAlpha", parent.worldAlpha, 0.5)
	assertNear(t, "child.worldAlpha", child.worldAlpha, 0.25)
}

func TestUpdateWorldRecomputesEveryCall(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	parent.X = 100
	child.X = 10
	parent.updateWorld(nil, 1)
	child.updateWorld(&parent.worldTransform, 1)
	assertNear(t, "child.tx", child.worldTransform.E, 110)

	// Plain field writes are picked up without any invalidation call.
	parent.X = 200
	child.X = 20
	parent.updateWorld(nil, 1)
	child.updateWorld(&parent.worldTransform, 1)
	assertNear(t, "child.tx (updated)", child.worldTransform.E, 220)
}

// --- WorldToLocal / LocalToWorld ---

func TestWorldToLocalRoundtrip(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)

	parent.X = 100
	parent.Y = 50
	child.X = 10
	child.Y = 20
	child.ScaleX = 2
	child.ScaleY = 3
	child.Rotation = math.Pi / 6

	wx, wy := 150.0, 80.0
	lx, ly := child.WorldToLocal(wx, wy)
	wx2, wy2 := child.LocalToWorld(lx, ly)
	assertNear(t, "roundtrip.x", wx2, wx)
	assertNear(t, "roundtrip.y", wy2, wy)
}

func TestLocalToWorldIdentity(t *testing.T) {
	n := NewContainer("test")
	n.X = 50
	n.Y = 100

	wx, wy := n.LocalToWorld(0, 0)
	assertNear(t, "origin.x", wx, 50)
	assertNear(t, "origin.y", wy, 100)
}

func TestWorldToLocalZeroScale(t *testing.T) {
	n := NewContainer("test")
	n.ScaleX = 0
	n.ScaleY = 0

	lx, ly := n.WorldToLocal(100, 200)
	if !math.IsNaN(lx) && !math.IsInf(lx, 0) {
		t.Errorf("lx = %v, want non-finite", lx)
	}
	if !math.IsNaN(ly) && !math.IsInf(ly, 0) {
		t.Errorf("ly = %v, want non-finite", ly)
	}
}

// --- Deep hierarchy ---

func TestDeepHierarchy(t *testing.T) {
	nodes := make([]*Node, 10)
	for i := range nodes {
		nodes[i] = NewContainer("")
		nodes[i].X = 10
		if i > 0 {
			nodes[i-1].AddChild(nodes[i])
		}
	}

	// Each level adds 10 to tx, so the deepest should have tx=100
	var m Matrix
	assertNear(t, "deep.tx", nodes[9].WorldMatrix(&m).E, 100)
}

// --- Setters ---

func TestSetters(t *testing.T) {
	n := NewContainer("test")
	n.SetPosition(1, 2)
	n.SetScale(3, 4)
	n.SetRotation(0.5)
	n.SetOrigin(0.25, 0.75)
	n.SetScrollFactor(0, 0.5)

	x, y, rot, sx, sy := n.ITRS()
	if x != 1 || y != 2 || rot != 0.5 || sx != 3 || sy != 4 {
		t.Errorf("ITRS = (%v, %v, %v, %v, %v)", x, y, rot, sx, sy)
	}
	if n.OriginX != 0.25 || n.OriginY != 0.75 {
		t.Errorf("Origin = (%v, %v)", n.OriginX, n.OriginY)
	}
	if fx, fy := n.ScrollFactor(); fx != 0 || fy != 0.5 {
		t.Errorf("ScrollFactor = (%v, %v)", fx, fy)
	}
}

// --- Benchmarks ---

func BenchmarkLocalMatrix(b *testing.B) {
	n := NewContainer("bench")
	n.X = 100
	n.Y = 200
	n.ScaleX = 2
	n.ScaleY = 3
	n.Rotation = 0.5
	var m Matrix
	b.ReportAllocs()
	for b.Loop() {
		n.LocalMatrix(&m)
	}
}

func BenchmarkUpdateWorld10k(b *testing.B) {
	// Build a wide tree: root with 100 children, each with 100 grandchildren = 10,001 nodes
	root := NewContainer("root")
	for i := 0; i < 100; i++ {
		parent := NewContainer("")
		parent.X = float64(i)
		root.AddChild(parent)
		for j := 0; j < 100; j++ {
			child := NewContainer("")
			child.X = float64(j)
			parent.AddChild(child)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		root.updateWorld(nil, 1)
		for _, p := range root.children {
			p.updateWorld(&root.worldTransform, root.worldAlpha)
			for _, c := range p.children {
				c.updateWorld(&p.worldTransform, p.worldAlpha)
			}
		}
	}
}
