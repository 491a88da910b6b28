package birch

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexLayoutStrides(t *testing.T) {
	assert.Equal(t, 28, QuadLayout.Stride)
	assert.Equal(t, 28, FlatLayout.Stride)
	assert.Equal(t, 32, LightLayout.Stride)
	assert.Equal(t, 7, QuadLayout.Words())

	assert.True(t, LightLayout.Has(SemanticNormalUnit))
	assert.False(t, QuadLayout.Has(SemanticNormalUnit))

	offsets := []int{0, 8, 16, 20, 24}
	for i, a := range QuadLayout.Attributes {
		assert.Equal(t, offsets[i], a.Offset, a.Name)
	}
}

func TestVertexLayoutGenericWriterMatchesUnrolled(t *testing.T) {
	generic := NewVertexLayout("generic", TintBGRA, nil, quadAttributes...)
	v := Vertex{X: 1, Y: 2, U: 0.25, V: 0.75, Unit: 3, TintEffect: 1, Color: 0xff112233}

	a := make([]uint32, 7)
	b := make([]uint32, 7)
	fa := make([]float32, 7)
	fb := make([]float32, 7)
	generic.Write(fa, a, 0, &v)
	QuadLayout.Write(fb, b, 0, &v)
	assert.Equal(t, fb, fa)
	assert.Equal(t, b[6], a[6])

	var got Vertex
	generic.Read(fa, a, 0, &got)
	assert.Equal(t, v, got)
}

func TestVertexBufferWriteAndFlush(t *testing.T) {
	fb := newFakeBackend(4)
	vb := NewVertexBuffer(fb, QuadLayout, 6, TopologyTriangles)
	fb.program = fb.CreateProgram("test", QuadLayout)

	for i := range 4 {
		require.False(t, vb.ShouldFlush(1))
		vb.WriteVertex(float32(i), float32(i*2), 0, 1, 0, 0, 0xff0000ff)
	}
	assert.Equal(t, 4, vb.Count())
	assert.Equal(t, 2, vb.Remaining())
	assert.True(t, vb.ShouldFlush(3))

	n := vb.Flush()
	assert.Equal(t, 4, n)
	assert.Equal(t, 0, vb.Count())
	require.Len(t, fb.draws, 1)
	assert.Len(t, fb.draws[0].verts, 4)
	assert.Equal(t, float32(3), fb.draws[0].verts[3].X)
	assert.Equal(t, float32(6), fb.draws[0].verts[3].Y)
}

func TestVertexBufferFlushEmpty(t *testing.T) {
	fb := newFakeBackend(4)
	vb := NewVertexBuffer(fb, QuadLayout, 6, TopologyTriangles)
	assert.Equal(t, 0, vb.Flush())
	assert.Empty(t, fb.draws)
	assert.Zero(t, fb.uploads)
}

func TestVertexBufferNeverExceedsCapacity(t *testing.T) {
	fb := newFakeBackend(4)
	fb.program = fb.CreateProgram("test", QuadLayout)
	vb := NewVertexBuffer(fb, QuadLayout, 9, TopologyTriangles)
	vb.SetDebug(true)

	for range 20 {
		if vb.ShouldFlush(3) {
			vb.Flush()
		}
		for range 3 {
			vb.WriteVertex(0, 0, 0, 0, 0, 0, 0)
		}
		assert.LessOrEqual(t, vb.Count(), vb.Capacity())
	}
	vb.Flush()
	total := 0
	for _, n := range fb.drawCounts() {
		assert.Equal(t, 0, n%3, "a shape was split across draws")
		total += n
	}
	assert.Equal(t, 60, total)
}

func TestVertexBufferDebugOverflowPanics(t *testing.T) {
	fb := newFakeBackend(4)
	vb := NewVertexBuffer(fb, QuadLayout, 1, TopologyTriangles)
	vb.SetDebug(true)
	vb.WriteVertex(0, 0, 0, 0, 0, 0, 0)
	assert.Panics(t, func() { vb.WriteVertex(0, 0, 0, 0, 0, 0, 0) })
}

func TestVertexBufferLittleEndianTint(t *testing.T) {
	fb := newFakeBackend(4)
	vb := NewVertexBuffer(fb, QuadLayout, 1, TopologyTriangles)
	vb.WriteVertex(1.5, 0, 0, 0, 0, 0, PackTint(0x112233, 1))

	b := vb.Bytes()
	require.Len(t, b, 28)
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(b[0:])))
	// B, G, R, A in memory.
	assert.Equal(t, []byte{0x33, 0x22, 0x11, 0xff}, b[24:28])
}

func TestVertexBufferDestroy(t *testing.T) {
	fb := newFakeBackend(4)
	vb := NewVertexBuffer(fb, QuadLayout, 6, TopologyTriangles)
	id := vb.ID()
	vb.Destroy()
	assert.NotContains(t, fb.buffers, id)
	assert.Zero(t, vb.ID())
}
