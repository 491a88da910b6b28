package birch

// Semantic names what a vertex attribute carries.
type Semantic uint8

const (
	SemanticPosition   Semantic = iota // vec2 float32
	SemanticTexCoord                   // vec2 float32
	SemanticTexUnit                    // float32 texture unit index
	SemanticTintEffect                 // float32 TintEffect
	SemanticTint                       // 4 normalized bytes
	SemanticNormalUnit                 // float32 normal-map texture unit index
)

// AttributeType is the component type of a vertex attribute.
type AttributeType uint8

const (
	AttributeFloat32 AttributeType = iota
	AttributeUnorm8
)

// TintOrder is the in-memory byte order of a packed tint.
type TintOrder uint8

const (
	TintBGRA TintOrder = iota // PackTint
	TintRGBA                  // PackTintSwap
)

// VertexAttribute describes one interleaved field of a vertex record.
type VertexAttribute struct {
	Name     string
	Semantic Semantic
	Size     int // component count
	Type     AttributeType
	Offset   int // bytes from the start of the record, filled in by NewVertexLayout
}

// Vertex is the unpacked form of one vertex record. Unit, TintEffect and
// NormalUnit are stored as floats because the shaders read them as floats.
type Vertex struct {
	X, Y       float32
	U, V       float32
	Unit       float32
	TintEffect float32
	Color      uint32
	NormalUnit float32
}

// VertexWriter stores v into the record starting at 32-bit word index word.
// f32 and u32 view the same memory.
type VertexWriter func(f32 []float32, u32 []uint32, word int, v *Vertex)

// VertexLayout describes the interleaved record format of a pipeline's
// vertex stream and the strategy used to write one record.
type VertexLayout struct {
	Name       string
	Attributes []VertexAttribute
	Stride     int // bytes per vertex, always a multiple of 4
	TintOrder  TintOrder
	Write      VertexWriter

	offsets [SemanticNormalUnit + 1]int // word offset per semantic, -1 when absent
}

// NewVertexLayout computes attribute offsets and the stride for attrs in
// order. If write is nil a generic writer driven by the attribute offsets
// is used.
func NewVertexLayout(name string, order TintOrder, write VertexWriter, attrs ...VertexAttribute) *VertexLayout {
	l := &VertexLayout{
		Name:       name,
		Attributes: make([]VertexAttribute, len(attrs)),
		TintOrder:  order,
	}
	for i := range l.offsets {
		l.offsets[i] = -1
	}
	offset := 0
	for i, a := range attrs {
		a.Offset = offset
		l.Attributes[i] = a
		l.offsets[a.Semantic] = offset / 4
		switch a.Type {
		case AttributeUnorm8:
			offset += (a.Size + 3) &^ 3
		default:
			offset += a.Size * 4
		}
	}
	l.Stride = offset
	if write == nil {
		write = l.writeGeneric
	}
	l.Write = write
	return l
}

// Words returns the stride in 32-bit words.
func (l *VertexLayout) Words() int {
	return l.Stride / 4
}

// Has reports whether the layout carries the given semantic.
func (l *VertexLayout) Has(s Semantic) bool {
	return l.offsets[s] >= 0
}

// Read unpacks the record at word index word.
func (l *VertexLayout) Read(f32 []float32, u32 []uint32, word int, v *Vertex) {
	*v = Vertex{}
	if o := l.offsets[SemanticPosition]; o >= 0 {
		v.X, v.Y = f32[word+o], f32[word+o+1]
	}
	if o := l.offsets[SemanticTexCoord]; o >= 0 {
		v.U, v.V = f32[word+o], f32[word+o+1]
	}
	if o := l.offsets[SemanticTexUnit]; o >= 0 {
		v.Unit = f32[word+o]
	}
	if o := l.offsets[SemanticTintEffect]; o >= 0 {
		v.TintEffect = f32[word+o]
	}
	if o := l.offsets[SemanticTint]; o >= 0 {
		v.Color = u32[word+o]
	}
	if o := l.offsets[SemanticNormalUnit]; o >= 0 {
		v.NormalUnit = f32[word+o]
	}
}

func (l *VertexLayout) writeGeneric(f32 []float32, u32 []uint32, word int, v *Vertex) {
	if o := l.offsets[SemanticPosition]; o >= 0 {
		f32[word+o], f32[word+o+1] = v.X, v.Y
	}
	if o := l.offsets[SemanticTexCoord]; o >= 0 {
		f32[word+o], f32[word+o+1] = v.U, v.V
	}
	if o := l.offsets[SemanticTexUnit]; o >= 0 {
		f32[word+o] = v.Unit
	}
	if o := l.offsets[SemanticTintEffect]; o >= 0 {
		f32[word+o] = v.TintEffect
	}
	if o := l.offsets[SemanticTint]; o >= 0 {
		u32[word+o] = v.Color
	}
	if o := l.offsets[SemanticNormalUnit]; o >= 0 {
		f32[word+o] = v.NormalUnit
	}
}

var quadAttributes = []VertexAttribute{
	{Name: "inPosition", Semantic: SemanticPosition, Size: 2, Type: AttributeFloat32},
	{Name: "inTexCoord", Semantic: SemanticTexCoord, Size: 2, Type: AttributeFloat32},
	{Name: "inTexId", Semantic: SemanticTexUnit, Size: 1, Type: AttributeFloat32},
	{Name: "inTintEffect", Semantic: SemanticTintEffect, Size: 1, Type: AttributeFloat32},
	{Name: "inTint", Semantic: SemanticTint, Size: 4, Type: AttributeUnorm8},
}

// writeQuadVertex is the hand-unrolled writer for the 7-word quad record.
func writeQuadVertex(f32 []float32, u32 []uint32, word int, v *Vertex) {
	f32[word+0] = v.X
	f32[word+1] = v.Y
	f32[word+2] = v.U
	f32[word+3] = v.V
	f32[word+4] = v.Unit
	f32[word+5] = v.TintEffect
	u32[word+6] = v.Color
}

func writeLightVertex(f32 []float32, u32 []uint32, word int, v *Vertex) {
	writeQuadVertex(f32, u32, word, v)
	f32[word+7] = v.NormalUnit
}

var (
	// QuadLayout is the 28-byte textured record used by the multi-texture
	// and rope pipelines.
	QuadLayout = NewVertexLayout("quad", TintBGRA, writeQuadVertex, quadAttributes...)

	// FlatLayout has the same record shape as QuadLayout with tints packed
	// by PackTintSwap.
	FlatLayout = NewVertexLayout("flat", TintRGBA, writeQuadVertex, quadAttributes...)

	// LightLayout extends QuadLayout with the normal-map unit.
	LightLayout = NewVertexLayout("light", TintBGRA, writeLightVertex, append(append([]VertexAttribute(nil), quadAttributes...),
		VertexAttribute{Name: "inNormalTexId", Semantic: SemanticNormalUnit, Size: 1, Type: AttributeFloat32})...)
)
