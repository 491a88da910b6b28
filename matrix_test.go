package birch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matEps = 1e-6

func assertMatrix(t *testing.T, want, got Matrix) {
	t.Helper()
	assert.InDelta(t, want.A, got.A, matEps, "A")
	assert.InDelta(t, want.B, got.B, matEps, "B")
	assert.InDelta(t, want.C, got.C, matEps, "C")
	assert.InDelta(t, want.D, got.D, matEps, "D")
	assert.InDelta(t, want.E, got.E, matEps, "E")
	assert.InDelta(t, want.F, got.F, matEps, "F")
}

func TestMatrixIdentityTransformPoint(t *testing.T) {
	m := NewMatrix(3, 4, 5, 6, 7, 8)
	m.LoadIdentity()
	for _, p := range [][2]float64{{0, 0}, {12.5, -3}, {1e9, -1e9}} {
		x, y := m.TransformPoint(p[0], p[1])
		assert.Equal(t, p[0], x)
		assert.Equal(t, p[1], y)
	}
	assert.True(t, m.IsIdentity())
}

func TestMatrixInvertTwice(t *testing.T) {
	cases := []Matrix{
		{A: 1, D: 1, E: 10, F: 20},
		{A: 2, B: 0.5, C: -0.25, D: 3, E: -7, F: 4},
		{A: 0, B: 1, C: -1, D: 0, E: 5, F: 5},
	}
	for _, orig := range cases {
		m := orig
		m.Invert().Invert()
		assertMatrix(t, orig, m)
	}
}

func TestMatrixInvertSingularProducesNonFinite(t *testing.T) {
	m := Matrix{A: 0, D: 0, E: 1, F: 1}
	m.Invert()
	assert.True(t, math.IsInf(m.A, 0) || math.IsNaN(m.A))
}

func TestMatrixTryInvert(t *testing.T) {
	m := Matrix{A: 0, B: 0, C: 0, D: 5, E: 1, F: 2}
	before := m
	err := m.TryInvert()
	require.ErrorIs(t, err, ErrSingularMatrix)
	assert.Equal(t, before, m, "singular matrix must be left untouched")

	m = Matrix{A: 2, D: 4, E: 6, F: 8}
	require.NoError(t, m.TryInvert())
	x, y := m.TransformPoint(6, 8)
	assert.InDelta(t, 0, x, matEps)
	assert.InDelta(t, 0, y, matEps)
}

func TestMatrixMultiplyIdentity(t *testing.T) {
	orig := Matrix{A: 2, B: 0.5, C: -0.25, D: 3, E: -7, F: 4}
	m := orig
	id := IdentityMatrix()
	m.Multiply(&id)
	assertMatrix(t, orig, m)
}

func TestMatrixMultiplyIntoLeavesReceiver(t *testing.T) {
	cam := Matrix{A: 2, D: 2, E: 10, F: 10}
	obj := Matrix{A: 1, D: 1, E: 5, F: 0}
	var out Matrix
	cam.MultiplyInto(&obj, &out)

	assertMatrix(t, Matrix{A: 2, D: 2, E: 10, F: 10}, cam)
	x, y := out.TransformPoint(0, 0)
	assert.InDelta(t, 20, x, matEps)
	assert.InDelta(t, 10, y, matEps)
}

func TestMatrixMultiplyIntoAliasing(t *testing.T) {
	a := Matrix{A: 1, B: 2, C: 3, D: 4, E: 5, F: 6}
	b := Matrix{A: -1, B: 0.5, C: 2, D: 1, E: 3, F: -2}

	var want Matrix
	a.MultiplyInto(&b, &want)

	lhs := a
	lhs.MultiplyInto(&b, &lhs)
	assertMatrix(t, want, lhs)

	rhs := b
	a.MultiplyInto(&rhs, &rhs)
	assertMatrix(t, want, rhs)
}

func TestMatrixApplyITRSTranslationOnly(t *testing.T) {
	var m Matrix
	m.ApplyITRS(12, -3, 0, 1, 1)
	assert.Equal(t, Matrix{A: 1, B: 0, C: 0, D: 1, E: 12, F: -3}, m)
}

func TestMatrixRotateClockwise(t *testing.T) {
	m := IdentityMatrix()
	m.Rotate(math.Pi / 2)
	x, y := m.TransformPoint(1, 0)
	assert.InDelta(t, 0, x, matEps)
	assert.InDelta(t, 1, y, matEps)
}

func TestMatrixDecomposeRoundTrip(t *testing.T) {
	cases := []struct {
		x, y, rot, sx, sy float64
	}{
		{0, 0, 0, 1, 1},
		{10, -20, 0.3, 2, 0.5},
		{-5, 7, -1.2, 0.25, 4},
		{100, 100, 1.5, 1, 3},
	}
	for _, c := range cases {
		var m Matrix
		m.ApplyITRS(c.x, c.y, c.rot, c.sx, c.sy)
		d := m.Decompose()
		assert.InDelta(t, c.x, d.TranslateX, matEps)
		assert.InDelta(t, c.y, d.TranslateY, matEps)
		assert.InDelta(t, c.rot, d.Rotation, matEps)
		assert.InDelta(t, c.sx, d.ScaleX, matEps)
		assert.InDelta(t, c.sy, d.ScaleY, matEps)
	}
}

func TestMatrixDecomposeReflection(t *testing.T) {
	var m Matrix
	m.ApplyITRS(0, 0, 0, 2, -3)
	d := m.Decompose()
	assert.InDelta(t, 2, d.ScaleX, matEps)
	assert.InDelta(t, -3, d.ScaleY, matEps)
}

func TestMatrixMultiplyWithOffset(t *testing.T) {
	base := Matrix{A: 2, B: 0.1, C: 0.2, D: 3, E: 4, F: 5}
	rhs := Matrix{A: 0.5, D: 0.5, E: 1, F: 2}

	got := base
	got.MultiplyWithOffset(&rhs, 7, -9)

	want := base
	want.Translate(7, -9).Multiply(&rhs)
	assertMatrix(t, want, got)
	assert.Equal(t, Matrix{A: 0.5, D: 0.5, E: 1, F: 2}, rhs)
}

func TestMatrixSetQuad(t *testing.T) {
	m := Matrix{A: 1, D: 1, E: 100, F: 100}
	var q Quad
	m.SetQuad(0, 0, 64, 64, false, &q)
	assert.Equal(t, Quad{100, 100, 100, 164, 164, 164, 164, 100}, q)
}

func TestMatrixSetQuadRounds(t *testing.T) {
	m := Matrix{A: 1, D: 1, E: 10.5, F: 9.49}
	var q Quad
	m.SetQuad(0, 0, 1, 1, true, &q)
	assert.Equal(t, Quad{11, 9, 11, 10, 12, 10, 12, 9}, q)
}

func TestMatrixApplyInverse(t *testing.T) {
	var m Matrix
	m.ApplyITRS(30, 40, 0.7, 2, 3)
	x, y := m.TransformPoint(5, -6)
	ix, iy := m.ApplyInverse(x, y)
	assert.InDelta(t, 5, ix, matEps)
	assert.InDelta(t, -6, iy, matEps)
}

func TestMatrixCopyWithScrollFactor(t *testing.T) {
	cam := Matrix{A: 1, D: 1, E: -50, F: -20}
	var m Matrix

	m.CopyWithScrollFactorFrom(&cam, 50, 20, 1, 1)
	assert.Equal(t, cam, m)

	m.CopyWithScrollFactorFrom(&cam, 50, 20, 0, 0)
	assert.InDelta(t, 0, m.E, matEps)
	assert.InDelta(t, 0, m.F, matEps)

	m.CopyWithScrollFactorFrom(&cam, 50, 20, 0.5, 1)
	assert.InDelta(t, -25, m.E, matEps)
	assert.InDelta(t, -20, m.F, matEps)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 1.0, roundHalfUp(0.5))
	assert.Equal(t, 0.0, roundHalfUp(-0.5))
	assert.Equal(t, -1.0, roundHalfUp(-0.51))
	assert.Equal(t, 3.0, roundHalfUp(2.5))
}
