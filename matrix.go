package birch

import "math"

// Matrix is a 2D affine transform.
//
//	| A  C  E |
//	| B  D  F |
//	| 0  0  1 |
//
// Methods mutate the receiver and return it so calls can be chained:
//
//	m.LoadIdentity().Translate(10, 20).Rotate(math.Pi / 4)
type Matrix struct {
	A, B, C, D, E, F float64
}

// IdentityMatrix returns a new identity matrix.
func IdentityMatrix() Matrix {
	return Matrix{A: 1, D: 1}
}

// NewMatrix returns a matrix with the given components.
func NewMatrix(a, b, c, d, e, f float64) *Matrix {
	return &Matrix{A: a, B: b, C: c, D: d, E: e, F: f}
}

// Quad holds the four transformed corners of a rectangle in
// top-left, bottom-left, bottom-right, top-right order as x,y pairs.
type Quad [8]float64

// DecomposedMatrix is the translate/rotate/scale breakdown of a Matrix.
type DecomposedMatrix struct {
	TranslateX, TranslateY float64
	Rotation               float64
	ScaleX, ScaleY         float64
}

// LoadIdentity resets the matrix to identity.
func (m *Matrix) LoadIdentity() *Matrix {
	*m = Matrix{A: 1, D: 1}
	return m
}

// SetTransform assigns all six components.
func (m *Matrix) SetTransform(a, b, c, d, e, f float64) *Matrix {
	m.A, m.B, m.C, m.D, m.E, m.F = a, b, c, d, e, f
	return m
}

// CopyFrom copies src into m.
func (m *Matrix) CopyFrom(src *Matrix) *Matrix {
	*m = *src
	return m
}

// CopyWithScrollFactorFrom copies src into m and adds back the part of the
// camera scroll that an object with the given scroll factor should not
// follow. src is expected to already contain the full -scroll translation,
// so a factor of 1 leaves the translation untouched and a factor of 0 pins
// the object to the screen.
func (m *Matrix) CopyWithScrollFactorFrom(src *Matrix, scrollX, scrollY, factorX, factorY float64) *Matrix {
	sx := scrollX * (1 - factorX)
	sy := scrollY * (1 - factorY)
	m.A, m.B, m.C, m.D = src.A, src.B, src.C, src.D
	m.E = src.E + src.A*sx + src.C*sy
	m.F = src.F + src.B*sx + src.D*sy
	return m
}

// Translate moves the local origin by (x, y).
func (m *Matrix) Translate(x, y float64) *Matrix {
	m.E = m.A*x + m.C*y + m.E
	m.F = m.B*x + m.D*y + m.F
	return m
}

// Scale scales the local axes.
func (m *Matrix) Scale(x, y float64) *Matrix {
	m.A *= x
	m.B *= x
	m.C *= y
	m.D *= y
	return m
}

// Rotate composes a rotation in radians. Positive angles rotate clockwise
// on a y-down screen: Rotate(π/2) maps (1, 0) to (0, 1).
func (m *Matrix) Rotate(angle float64) *Matrix {
	sin, cos := math.Sincos(angle)
	return m.Transform(cos, sin, -sin, cos, 0, 0)
}

// Transform composes m with the given matrix, applied first in local space.
func (m *Matrix) Transform(a, b, c, d, e, f float64) *Matrix {
	a0, b0, c0, d0, e0, f0 := m.A, m.B, m.C, m.D, m.E, m.F
	m.A = a*a0 + b*c0
	m.B = a*b0 + b*d0
	m.C = c*a0 + d*c0
	m.D = c*b0 + d*d0
	m.E = e*a0 + f*c0 + e0
	m.F = e*b0 + f*d0 + f0
	return m
}

// Multiply sets m to m ∘ rhs.
func (m *Matrix) Multiply(rhs *Matrix) *Matrix {
	return m.Transform(rhs.A, rhs.B, rhs.C, rhs.D, rhs.E, rhs.F)
}

// MultiplyInto writes m ∘ rhs into out and returns out. m is left unchanged.
// out may alias m or rhs.
func (m *Matrix) MultiplyInto(rhs, out *Matrix) *Matrix {
	a0, b0, c0, d0, e0, f0 := m.A, m.B, m.C, m.D, m.E, m.F
	a1, b1, c1, d1, e1, f1 := rhs.A, rhs.B, rhs.C, rhs.D, rhs.E, rhs.F
	out.A = a1*a0 + b1*c0
	out.B = a1*b0 + b1*d0
	out.C = c1*a0 + d1*c0
	out.D = c1*b0 + d1*d0
	out.E = e1*a0 + f1*c0 + e0
	out.F = e1*b0 + f1*d0 + f0
	return out
}

// MultiplyWithOffset translates m by (offsetX, offsetY) and then multiplies
// by rhs. rhs is not modified.
func (m *Matrix) MultiplyWithOffset(rhs *Matrix, offsetX, offsetY float64) *Matrix {
	return m.Translate(offsetX, offsetY).Multiply(rhs)
}

// Determinant returns A*D - B*C.
func (m *Matrix) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert inverts m in place. A singular matrix produces Inf/NaN components;
// use TryInvert when the matrix may be degenerate.
func (m *Matrix) Invert() *Matrix {
	a, b, c, d, e, f := m.A, m.B, m.C, m.D, m.E, m.F
	n := a*d - b*c
	m.A = d / n
	m.B = -b / n
	m.C = -c / n
	m.D = a / n
	m.E = (c*f - d*e) / n
	m.F = -(a*f - b*e) / n
	return m
}

// TryInvert inverts m in place, or returns ErrSingularMatrix and leaves m
// untouched when the determinant is zero or not finite.
func (m *Matrix) TryInvert() error {
	n := m.Determinant()
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return ErrSingularMatrix
	}
	m.Invert()
	return nil
}

// TransformPoint maps a local point through m.
func (m *Matrix) TransformPoint(x, y float64) (float64, float64) {
	return x*m.A + y*m.C + m.E, x*m.B + y*m.D + m.F
}

// ApplyInverse maps a point through the inverse of m without modifying m.
func (m *Matrix) ApplyInverse(x, y float64) (float64, float64) {
	id := 1 / m.Determinant()
	x -= m.E
	y -= m.F
	return (m.D*id)*x - (m.C*id)*y, (m.A*id)*y - (m.B*id)*x
}

// GetX returns the transformed x coordinate of (x, y).
func (m *Matrix) GetX(x, y float64) float64 {
	return x*m.A + y*m.C + m.E
}

// GetY returns the transformed y coordinate of (x, y).
func (m *Matrix) GetY(x, y float64) float64 {
	return x*m.B + y*m.D + m.F
}

// GetXRound is GetX with optional half-up rounding.
func (m *Matrix) GetXRound(x, y float64, round bool) float64 {
	v := m.GetX(x, y)
	if round {
		v = roundHalfUp(v)
	}
	return v
}

// GetYRound is GetY with optional half-up rounding.
func (m *Matrix) GetYRound(x, y float64, round bool) float64 {
	v := m.GetY(x, y)
	if round {
		v = roundHalfUp(v)
	}
	return v
}

// SetQuad transforms the rectangle (x, y)-(x1, y1) and stores its corners in
// q (TL, BL, BR, TR). When round is set, each coordinate is rounded to the
// nearest pixel.
func (m *Matrix) SetQuad(x, y, x1, y1 float64, round bool, q *Quad) *Quad {
	a, b, c, d, e, f := m.A, m.B, m.C, m.D, m.E, m.F

	q[0] = x*a + y*c + e
	q[1] = x*b + y*d + f
	q[2] = x*a + y1*c + e
	q[3] = x*b + y1*d + f
	q[4] = x1*a + y1*c + e
	q[5] = x1*b + y1*d + f
	q[6] = x1*a + y*c + e
	q[7] = x1*b + y*d + f

	if round {
		for i := range q {
			q[i] = roundHalfUp(q[i])
		}
	}
	return q
}

// ApplyITRS sets m to Translate(x, y) · Rotate(rotation) · Scale(scaleX, scaleY)
// in one step.
func (m *Matrix) ApplyITRS(x, y, rotation, scaleX, scaleY float64) *Matrix {
	sin, cos := math.Sincos(rotation)
	m.A = cos * scaleX
	m.B = sin * scaleX
	m.C = -sin * scaleY
	m.D = cos * scaleY
	m.E = x
	m.F = y
	return m
}

// Decompose splits m into translation, rotation and scale. The result
// recomposes to m through ApplyITRS for any shear-free matrix. A reflection
// is reported as a negative ScaleY.
func (m *Matrix) Decompose() DecomposedMatrix {
	out := DecomposedMatrix{TranslateX: m.E, TranslateY: m.F}

	sx := math.Hypot(m.A, m.B)
	if sx == 0 {
		out.ScaleY = math.Hypot(m.C, m.D)
		if out.ScaleY != 0 {
			out.Rotation = math.Atan2(-m.C, m.D)
		}
		return out
	}
	out.ScaleX = sx
	out.Rotation = math.Atan2(m.B, m.A)
	out.ScaleY = m.Determinant() / sx
	return out
}

// IsIdentity reports whether m is exactly the identity matrix.
func (m *Matrix) IsIdentity() bool {
	return *m == Matrix{A: 1, D: 1}
}

// roundHalfUp rounds to the nearest integer, ties toward +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
