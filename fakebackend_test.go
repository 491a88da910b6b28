package birch

import (
	"encoding/binary"
	"fmt"
	"math"
)

// drawCall is one DrawArrays as seen by fakeBackend, with the uploaded
// records decoded through the program's layout.
type drawCall struct {
	program  string
	topology Topology
	verts    []Vertex
	units    []TextureID
	blend    BlendMode
	uniforms map[string][]float32
}

// fakeBackend records every call and keeps enough state to decode draws.
type fakeBackend struct {
	nextID   uint32
	maxUnits int

	buffers  map[BufferID][]byte
	programs map[ProgramID]string
	layouts  map[ProgramID]*VertexLayout
	uniforms map[ProgramID]map[string][]float32
	textures map[TextureID][2]int

	units    []TextureID
	buffer   BufferID
	program  ProgramID
	blend    BlendMode
	viewport [4]int

	// quiet counts draws in drawn without decoding or logging them.
	quiet bool
	drawn int

	draws    []drawCall
	calls    []string
	binds    int
	resets   int
	uploads  int
	deletedT []TextureID
}

func newFakeBackend(maxUnits int) *fakeBackend {
	return &fakeBackend{
		maxUnits: maxUnits,
		buffers:  make(map[BufferID][]byte),
		programs: make(map[ProgramID]string),
		layouts:  make(map[ProgramID]*VertexLayout),
		uniforms: make(map[ProgramID]map[string][]float32),
		textures: make(map[TextureID][2]int),
	}
}

func (f *fakeBackend) id() uint32 {
	f.nextID++
	return f.nextID
}

func (f *fakeBackend) CreateVertexBuffer(size int) BufferID {
	id := BufferID(f.id())
	f.buffers[id] = make([]byte, size)
	return id
}

func (f *fakeBackend) DeleteVertexBuffer(id BufferID) {
	delete(f.buffers, id)
	f.calls = append(f.calls, fmt.Sprintf("deleteBuffer %d", id))
}

func (f *fakeBackend) BindVertexBuffer(id BufferID) { f.buffer = id }

func (f *fakeBackend) CurrentVertexBuffer() BufferID { return f.buffer }

func (f *fakeBackend) UploadSubData(id BufferID, data []byte) {
	f.uploads++
	copy(f.buffers[id], data)
}

func (f *fakeBackend) CreateProgram(name string, layout *VertexLayout) ProgramID {
	id := ProgramID(f.id())
	f.programs[id] = name
	f.layouts[id] = layout
	f.uniforms[id] = make(map[string][]float32)
	return id
}

func (f *fakeBackend) DeleteProgram(id ProgramID) {
	f.calls = append(f.calls, "deleteProgram "+f.programs[id])
	delete(f.programs, id)
}

func (f *fakeBackend) UseProgram(id ProgramID) {
	f.program = id
	if id != 0 && !f.quiet {
		f.calls = append(f.calls, "use "+f.programs[id])
	}
}

func (f *fakeBackend) CurrentProgram() ProgramID { return f.program }

func (f *fakeBackend) SetUniform(id ProgramID, name string, values ...float32) {
	if u := f.uniforms[id]; u != nil {
		u[name] = append([]float32(nil), values...)
	}
}

func (f *fakeBackend) DrawArrays(topology Topology, first, count int) {
	if f.quiet {
		f.drawn++
		return
	}
	layout := f.layouts[f.program]
	data := f.buffers[f.buffer]
	words := len(data) / 4
	u32 := make([]uint32, words)
	f32 := make([]float32, words)
	for i := range u32 {
		u32[i] = binary.LittleEndian.Uint32(data[i*4:])
		f32[i] = math.Float32frombits(u32[i])
	}
	verts := make([]Vertex, count)
	for i := range verts {
		layout.Read(f32, u32, (first+i)*layout.Words(), &verts[i])
	}
	uniforms := make(map[string][]float32, len(f.uniforms[f.program]))
	for k, v := range f.uniforms[f.program] {
		uniforms[k] = v
	}
	f.draws = append(f.draws, drawCall{
		program:  f.programs[f.program],
		topology: topology,
		verts:    verts,
		units:    append([]TextureID(nil), f.units...),
		blend:    f.blend,
		uniforms: uniforms,
	})
	f.calls = append(f.calls, fmt.Sprintf("draw %s %d", f.programs[f.program], count))
}

func (f *fakeBackend) CreateTexture(width, height int, pixels []byte) TextureID {
	id := TextureID(f.id())
	f.textures[id] = [2]int{width, height}
	return id
}

func (f *fakeBackend) DeleteTexture(id TextureID) {
	delete(f.textures, id)
	f.deletedT = append(f.deletedT, id)
}

func (f *fakeBackend) BindTexture(unit int, id TextureID) {
	f.binds++
	for len(f.units) <= unit {
		f.units = append(f.units, 0)
	}
	f.units[unit] = id
}

func (f *fakeBackend) MaxTextureUnits() int { return f.maxUnits }

func (f *fakeBackend) SetBlendMode(mode BlendMode) {
	f.blend = mode
	if f.quiet {
		return
	}
	f.calls = append(f.calls, fmt.Sprintf("blend %d", mode))
}

func (f *fakeBackend) SetViewport(x, y, width, height int) {
	f.viewport = [4]int{x, y, width, height}
}

func (f *fakeBackend) ResetState() {
	f.resets++
	f.units = f.units[:0]
	f.blend = BlendNormal
}

// drawCounts returns the vertex count of every recorded draw.
func (f *fakeBackend) drawCounts() []int {
	out := make([]int, len(f.draws))
	for i, d := range f.draws {
		out[i] = len(d.verts)
	}
	return out
}

// drawPrograms returns the program name of every recorded draw.
func (f *fakeBackend) drawPrograms() []string {
	out := make([]string, len(f.draws))
	for i, d := range f.draws {
		out[i] = d.program
	}
	return out
}

// testRenderer returns a renderer on a fake backend with a small batch.
func testRenderer(batchSize, units int) (*Renderer, *fakeBackend) {
	fb := newFakeBackend(units)
	r, err := NewRenderer(fb, Config{BatchSize: batchSize, Width: 800, Height: 600})
	if err != nil {
		panic(err)
	}
	return r, fb
}

// testSceneCamera returns a scene with one 800x600 camera with its origin at
// the top-left, so scroll maps directly to the viewport corner.
func testSceneCamera() (*Scene, *Camera) {
	s := NewScene()
	cam := s.NewCamera(Rect{Width: 800, Height: 600})
	return s, cam
}
