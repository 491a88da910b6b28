package birch

import (
	"fmt"
	"time"
)

// FlushReason records why a pipeline flushed.
type FlushReason uint8

const (
	FlushManual         FlushReason = iota // explicit Pipeline.Flush
	FlushCapacity                          // the next shape did not fit
	FlushTextureUnits                      // every texture unit was taken
	FlushPipelineSwitch                    // another pipeline became current
	FlushStrip                             // a new triangle strip started
	FlushBlendMode                         // the blend mode changed
	FlushClear                             // PipelineManager.Clear
	FlushCameraEnd                         // a camera finished rendering
	FlushFrameEnd                          // the frame finished rendering
	flushReasonCount
)

var flushReasonNames = [flushReasonCount]string{
	"manual", "capacity", "texture-units", "pipeline-switch", "strip",
	"blend-mode", "clear", "camera-end", "frame-end",
}

func (r FlushReason) String() string {
	if r < flushReasonCount {
		return flushReasonNames[r]
	}
	return fmt.Sprintf("FlushReason(%d)", r)
}

// FrameStats holds per-frame draw metrics. Collected by the PipelineManager
// on every flush and reset by the Renderer at the start of each frame.
type FrameStats struct {
	DrawCalls        int
	Vertices         int
	Flushes          [flushReasonCount]int
	PipelineSwitches int
	Cameras          int
	Culled           int
	RenderTime       time.Duration
}

func (s *FrameStats) record(reason FlushReason, vertices int) {
	s.DrawCalls++
	s.Vertices += vertices
	s.Flushes[reason]++
}

// FlushesFor returns how many draw calls were caused by reason.
func (s FrameStats) FlushesFor(reason FlushReason) int {
	if reason >= flushReasonCount {
		return 0
	}
	return s.Flushes[reason]
}

// debugLog writes the frame stats at debug level.
func (s *FrameStats) debugLog() {
	Logger().Debug("frame",
		"draws", s.DrawCalls,
		"vertices", s.Vertices,
		"switches", s.PipelineSwitches,
		"cameras", s.Cameras,
		"culled", s.Culled,
		"capacity", s.Flushes[FlushCapacity],
		"units", s.Flushes[FlushTextureUnits],
		"strips", s.Flushes[FlushStrip],
		"time", s.RenderTime,
	)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("birch debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("tree depth exceeds threshold", "depth", depth, "threshold", debugMaxTreeDepth, "node", n.Name)
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("child count exceeds threshold", "node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
