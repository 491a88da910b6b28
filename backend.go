package birch

// BufferID identifies a vertex buffer created by a Backend. Zero is never a
// valid buffer.
type BufferID uint32

// ProgramID identifies a shader program created by a Backend. Zero means no
// program is in use.
type ProgramID uint32

// TextureID identifies a texture created by a Backend. Texture memory is
// owned by the TextureManager; pipelines only borrow IDs to bind them.
type TextureID uint32

// Backend is the graphics API underneath the batching pipelines. Every call
// either succeeds or panics; pipelines never retry.
//
// The methods mirror the GL primitives the pipelines drive: a vertex buffer
// is uploaded with UploadSubData and drawn with DrawArrays using whatever
// textures are bound to units at that moment.
type Backend interface {
	CreateVertexBuffer(size int) BufferID
	DeleteVertexBuffer(id BufferID)
	BindVertexBuffer(id BufferID)
	CurrentVertexBuffer() BufferID
	UploadSubData(id BufferID, data []byte)

	CreateProgram(name string, layout *VertexLayout) ProgramID
	DeleteProgram(id ProgramID)
	UseProgram(id ProgramID)
	CurrentProgram() ProgramID
	SetUniform(id ProgramID, name string, values ...float32)

	DrawArrays(topology Topology, first, count int)

	CreateTexture(width, height int, pixels []byte) TextureID
	DeleteTexture(id TextureID)
	BindTexture(unit int, id TextureID)
	MaxTextureUnits() int

	SetBlendMode(mode BlendMode)
	SetViewport(x, y, width, height int)
	// ResetState restores the fixed-function defaults the pipelines expect:
	// depth and cull tests off, scissor cleared, all texture units unbound.
	ResetState()
}
