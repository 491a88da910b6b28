package birch

import (
	"fmt"
	"unsafe"
)

// VertexBuffer is a fixed-capacity CPU-side vertex stream paired with one
// backend buffer. Records are written through float32 and uint32 views that
// share the same memory, so a packed tint lands next to its float
// attributes without a conversion pass.
//
// Callers check ShouldFlush before writing a shape and flush first when it
// reports true; WriteVertex never flushes on its own.
type VertexBuffer struct {
	backend  Backend
	layout   *VertexLayout
	id       BufferID
	topology Topology

	capacity int
	count    int

	words []uint32
	f32   []float32
	bytes []byte

	scratch Vertex
	debug   bool
}

// NewVertexBuffer allocates a buffer holding capacity vertices of the given
// layout and creates its backend counterpart.
func NewVertexBuffer(backend Backend, layout *VertexLayout, capacity int, topology Topology) *VertexBuffer {
	if capacity <= 0 {
		panic("birch: vertex buffer capacity must be positive")
	}
	words := make([]uint32, capacity*layout.Words())
	vb := &VertexBuffer{
		backend:  backend,
		layout:   layout,
		topology: topology,
		capacity: capacity,
		words:    words,
		f32:      unsafe.Slice((*float32)(unsafe.Pointer(&words[0])), len(words)),
		bytes:    unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4),
	}
	vb.id = backend.CreateVertexBuffer(len(vb.bytes))
	return vb
}

// ID returns the backend buffer handle.
func (vb *VertexBuffer) ID() BufferID { return vb.id }

// Layout returns the record layout.
func (vb *VertexBuffer) Layout() *VertexLayout { return vb.layout }

// Topology returns the primitive mode used when drawing.
func (vb *VertexBuffer) Topology() Topology { return vb.topology }

// Capacity returns the maximum number of vertices between flushes.
func (vb *VertexBuffer) Capacity() int { return vb.capacity }

// Count returns the number of vertices written since the last flush.
func (vb *VertexBuffer) Count() int { return vb.count }

// Remaining returns how many more vertices fit before a flush is required.
func (vb *VertexBuffer) Remaining() int { return vb.capacity - vb.count }

// SetDebug enables the capacity assertion in Write.
func (vb *VertexBuffer) SetDebug(enabled bool) { vb.debug = enabled }

// ShouldFlush reports whether n more vertices would overflow the buffer.
func (vb *VertexBuffer) ShouldFlush(n int) bool {
	return vb.count+n > vb.capacity
}

// WriteVertex appends one vertex record.
func (vb *VertexBuffer) WriteVertex(x, y, u, v, unit, tintEffect float32, color uint32) {
	s := &vb.scratch
	s.X, s.Y, s.U, s.V = x, y, u, v
	s.Unit, s.TintEffect, s.Color = unit, tintEffect, color
	s.NormalUnit = 0
	vb.Write(s)
}

// Write appends one vertex record using the layout's writer.
func (vb *VertexBuffer) Write(v *Vertex) {
	if vb.debug && vb.count >= vb.capacity {
		panic(fmt.Sprintf("birch: vertex buffer overflow (%d/%d); flush before writing", vb.count, vb.capacity))
	}
	vb.layout.Write(vb.f32, vb.words, vb.count*vb.layout.Words(), v)
	vb.count++
}

// Vertex unpacks the i-th written vertex.
func (vb *VertexBuffer) Vertex(i int) Vertex {
	var v Vertex
	vb.layout.Read(vb.f32, vb.words, i*vb.layout.Words(), &v)
	return v
}

// Flush uploads the written records, issues one draw call and resets the
// count. It returns the number of vertices drawn; an empty buffer draws
// nothing.
func (vb *VertexBuffer) Flush() int {
	if vb.count == 0 {
		return 0
	}
	n := vb.count
	if vb.backend.CurrentVertexBuffer() != vb.id {
		vb.backend.BindVertexBuffer(vb.id)
	}
	vb.backend.UploadSubData(vb.id, vb.bytes[:n*vb.layout.Stride])
	vb.backend.DrawArrays(vb.topology, 0, n)
	vb.count = 0
	return n
}

// Reset discards written vertices without drawing them.
func (vb *VertexBuffer) Reset() {
	vb.count = 0
}

// Bytes returns the written portion of the byte view.
func (vb *VertexBuffer) Bytes() []byte {
	return vb.bytes[:vb.count*vb.layout.Stride]
}

// Float32View returns the whole store viewed as float32s.
func (vb *VertexBuffer) Float32View() []float32 { return vb.f32 }

// Uint32View returns the whole store viewed as uint32s.
func (vb *VertexBuffer) Uint32View() []uint32 { return vb.words }

// Destroy releases the backend buffer.
func (vb *VertexBuffer) Destroy() {
	if vb.id != 0 {
		vb.backend.DeleteVertexBuffer(vb.id)
		vb.id = 0
	}
	vb.count = 0
}
