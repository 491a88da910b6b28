package birch

import "fmt"

// PipelineManager owns the named pipelines and tracks which one is current.
// Making a different pipeline current always flushes the outgoing one first,
// so draw calls reach the backend in the order geometry was submitted.
type PipelineManager struct {
	backend   Backend
	pipelines map[string]*Pipeline
	order     []*Pipeline

	current  *Pipeline
	previous *Pipeline

	blend         BlendMode
	width, height int

	stats FrameStats
}

// NewPipelineManager returns an empty manager.
func NewPipelineManager(backend Backend) *PipelineManager {
	return &PipelineManager{
		backend:   backend,
		pipelines: make(map[string]*Pipeline),
	}
}

// Add registers p under its name.
func (m *PipelineManager) Add(p *Pipeline) error {
	if _, ok := m.pipelines[p.name]; ok {
		return fmt.Errorf("birch: add pipeline %q: %w", p.name, ErrPipelineExists)
	}
	p.stats = &m.stats
	p.Resize(m.width, m.height)
	m.pipelines[p.name] = p
	m.order = append(m.order, p)
	return nil
}

// Get returns the pipeline registered under name.
func (m *PipelineManager) Get(name string) (*Pipeline, error) {
	p, ok := m.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("birch: pipeline %q: %w", name, ErrPipelineNotFound)
	}
	return p, nil
}

// Has reports whether a pipeline is registered under name.
func (m *PipelineManager) Has(name string) bool {
	_, ok := m.pipelines[name]
	return ok
}

// Pipelines returns the registered pipelines in registration order. The
// returned slice MUST NOT be mutated.
func (m *PipelineManager) Pipelines() []*Pipeline {
	return m.order
}

// Remove unregisters the pipeline called name and returns it. A current
// pipeline is flushed and cleared first. The pipeline is not destroyed.
func (m *PipelineManager) Remove(name string) (*Pipeline, error) {
	p, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	if m.current == p {
		m.Clear()
	}
	if m.previous == p {
		m.previous = nil
	}
	delete(m.pipelines, name)
	for i, o := range m.order {
		if o == p {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	p.stats = nil
	return p, nil
}

// IsCurrent reports whether p is current and the backend still has p's
// program and vertex buffer bound. Code that draws around the manager can
// leave other state bound; IsCurrent then reports false so Set rebinds.
func (m *PipelineManager) IsCurrent(p *Pipeline) bool {
	return m.current == p && p != nil &&
		m.backend.CurrentProgram() == p.program &&
		m.backend.CurrentVertexBuffer() == p.buffer.id
}

// Set makes p current, flushing the outgoing pipeline first. Calling Set with
// the current pipeline is a no-op, so emitters call it before every shape.
// When the backend no longer has the current pipeline's program or buffer
// bound, the pending batch is flushed and p is bound again even if p is
// already current.
func (m *PipelineManager) Set(p *Pipeline) *Pipeline {
	if m.IsCurrent(p) {
		return p
	}
	if m.current != nil {
		m.current.flush(FlushPipelineSwitch)
		if m.current != p {
			m.stats.PipelineSwitches++
		}
	}
	m.current = p
	p.Bind()
	return p
}

// SetByName is Set for a registered name.
func (m *PipelineManager) SetByName(name string) (*Pipeline, error) {
	p, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return m.Set(p), nil
}

// Current returns the current pipeline, or nil.
func (m *PipelineManager) Current() *Pipeline { return m.current }

// Previous returns the pipeline that was current before the last Clear.
func (m *PipelineManager) Previous() *Pipeline { return m.previous }

// Flush flushes the current pipeline, if any.
func (m *PipelineManager) Flush(reason FlushReason) int {
	if m.current == nil {
		return 0
	}
	return m.current.flush(reason)
}

// Clear flushes the current pipeline, remembers it for Rebind and unbinds
// the program. Call it before drawing with the backend directly.
func (m *PipelineManager) Clear() {
	if m.current != nil {
		m.current.flush(FlushClear)
		m.previous = m.current
		m.current = nil
	}
	m.backend.UseProgram(0)
}

// BeginFrame forgets the current pipeline, every texture unit mapping and the
// blend mode. The backend may have been reset since the last frame, so the
// first Set, Assign and SetBlendMode of the frame all reach it again.
// Renderer.Render calls it before drawing.
func (m *PipelineManager) BeginFrame() {
	m.Flush(FlushFrameEnd)
	m.current = nil
	m.blend = blendUnknown
	m.resetUnits()
}

func (m *PipelineManager) resetUnits() {
	for _, p := range m.order {
		p.units.Reset()
	}
}

// Rebind restores the state the pipelines expect after direct backend use
// and makes p current. A nil p rebinds the pipeline saved by Clear.
func (m *PipelineManager) Rebind(p *Pipeline) {
	m.backend.ResetState()
	m.backend.SetViewport(0, 0, m.width, m.height)
	m.blend = BlendNormal
	m.backend.SetBlendMode(BlendNormal)
	m.resetUnits()

	if p == nil {
		p = m.previous
	}
	m.current = nil
	if p != nil {
		m.current = p
		p.Bind()
	}
}

// BlendMode returns the active blend mode.
func (m *PipelineManager) BlendMode() BlendMode { return m.blend }

// SetBlendMode flushes the current pipeline and switches blend mode when mode
// differs from the active one. It reports whether the mode changed.
func (m *PipelineManager) SetBlendMode(mode BlendMode) bool {
	if mode == m.blend {
		return false
	}
	m.Flush(FlushBlendMode)
	m.blend = mode
	m.backend.SetBlendMode(mode)
	return true
}

// Resize forwards the render target size to every pipeline.
func (m *PipelineManager) Resize(width, height int) {
	m.width, m.height = width, height
	for _, p := range m.order {
		p.Resize(width, height)
	}
	Logger().Debug("pipelines resized", "width", width, "height", height)
}

// Stats returns the metrics collected since the last ResetStats.
func (m *PipelineManager) Stats() FrameStats { return m.stats }

// ResetStats clears the collected metrics.
func (m *PipelineManager) ResetStats() { m.stats = FrameStats{} }

// Destroy clears the current pipeline and destroys every registered one.
func (m *PipelineManager) Destroy() {
	m.Clear()
	for _, p := range m.order {
		p.Destroy()
	}
	Logger().Debug("pipelines destroyed", "count", len(m.order))
	m.pipelines = make(map[string]*Pipeline)
	m.order = nil
	m.previous = nil
}
