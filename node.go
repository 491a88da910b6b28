package birch

// Corner indices for Node.Tint and Node.CornerAlpha, in quad vertex order.
const (
	CornerTopLeft = iota
	CornerBottomLeft
	CornerBottomRight
	CornerTopRight
)

// --- ID counter ---

// nodeIDCounter is a plain counter (birch is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is the fundamental scene graph element. A single flat struct is used for
// all node types to avoid interface dispatch on the hot path.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	// OriginX and OriginY are the normalized point of the frame placed at
	// (X, Y). Sprites default to the center.
	OriginX, OriginY float64
	// ScrollFactorX and ScrollFactorY scale camera scroll for this node.
	ScrollFactorX, ScrollFactorY float64

	// Computed during traversal: local-to-world for containers, excluding the
	// camera.
	worldTransform Matrix
	worldAlpha     float64

	// Visibility
	Alpha   float64
	Visible bool

	// Ordering
	ZIndex int

	// Metadata
	UserData any

	// Appearance
	BlendMode BlendMode
	// Tint holds a 0xRRGGBB color per corner.
	Tint [4]uint32
	// CornerAlpha multiplies Alpha per corner.
	CornerAlpha [4]float64
	// TintFill replaces the texture color with the tint instead of
	// multiplying it.
	TintFill bool

	// Sprite fields (NodeTypeSprite)
	Frame        *Frame
	FlipX, FlipY bool
	crop         Rect
	cropped      bool

	// Pipeline overrides the pipeline a sprite is drawn with. LightPipeline
	// draws it lit by the scene lights using NormalMap.
	Pipeline  string
	NormalMap *Texture

	// Geometry for the other node types.
	Rope      *Rope
	Shape     *Shape
	TileLayer *TileLayer

	// Internal
	disposed       bool
	childrenSorted bool
	sortedChildren []*Node // reused buffer for ZIndex-sorted traversal order
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.ScrollFactorX = 1
	n.ScrollFactorY = 1
	n.Alpha = 1
	n.Visible = true
	n.childrenSorted = true
	n.worldTransform.LoadIdentity()
	n.worldAlpha = 1
	for i := range n.Tint {
		n.Tint[i] = 0xffffff
		n.CornerAlpha[i] = 1
	}
}

// NewContainer creates a container node with no visual representation.
// Children are transformed by the container.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewSprite creates a sprite node drawing frame, centered on its position.
func NewSprite(name string, frame *Frame) *Node {
	n := &Node{Name: name, Type: NodeTypeSprite, Frame: frame}
	nodeDefaults(n)
	n.OriginX, n.OriginY = 0.5, 0.5
	return n
}

// NewRopeNode creates a node drawing rope as a textured triangle strip.
func NewRopeNode(name string, rope *Rope) *Node {
	n := &Node{Name: name, Type: NodeTypeRope, Rope: rope}
	nodeDefaults(n)
	return n
}

// NewShapeNode creates a node drawing shape with flat colors.
func NewShapeNode(name string, shape *Shape) *Node {
	n := &Node{Name: name, Type: NodeTypeShape, Shape: shape}
	nodeDefaults(n)
	return n
}

// NewTileLayerNode creates a node drawing a tile layer.
func NewTileLayerNode(name string, layer *TileLayer) *Node {
	n := &Node{Name: name, Type: NodeTypeTileLayer, TileLayer: layer}
	nodeDefaults(n)
	return n
}

// ITRS returns the local translate, rotation and scale.
func (n *Node) ITRS() (x, y, rotation, scaleX, scaleY float64) {
	return n.X, n.Y, n.Rotation, n.ScaleX, n.ScaleY
}

// ScrollFactor returns the camera scroll factor.
func (n *Node) ScrollFactor() (x, y float64) {
	return n.ScrollFactorX, n.ScrollFactorY
}

// --- Appearance ---

// SetTint sets the same 0xRRGGBB tint on every corner.
func (n *Node) SetTint(rgb uint32) {
	n.SetTintCorners(rgb, rgb, rgb, rgb)
}

// SetTintCorners sets a tint per corner.
func (n *Node) SetTintCorners(topLeft, bottomLeft, bottomRight, topRight uint32) {
	n.Tint = [4]uint32{topLeft & 0xffffff, bottomLeft & 0xffffff, bottomRight & 0xffffff, topRight & 0xffffff}
}

// ClearTint resets every corner to white and disables tint fill.
func (n *Node) ClearTint() {
	n.SetTint(0xffffff)
	n.TintFill = false
}

// SetCornerAlpha sets the alpha multiplier per corner.
func (n *Node) SetCornerAlpha(topLeft, bottomLeft, bottomRight, topRight float64) {
	n.CornerAlpha = [4]float64{topLeft, bottomLeft, bottomRight, topRight}
}

// SetCrop limits drawing to the rectangle (x, y, w, h) of the frame, given in
// untrimmed frame pixels.
func (n *Node) SetCrop(x, y, w, h float64) {
	n.crop = Rect{X: x, Y: y, Width: w, Height: h}
	n.cropped = true
}

// ClearCrop removes the crop rectangle.
func (n *Node) ClearCrop() {
	n.cropped = false
}

// Crop returns the crop rectangle and whether one is set.
func (n *Node) Crop() (Rect, bool) {
	return n.crop, n.cropped
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("birch: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("birch: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.childrenSorted = false
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("birch: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("birch: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	if index < 0 || index > len(n.children) {
		panic("birch: child index out of range")
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	n.childrenSorted = false
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
		debugCheckDisposed(child, "RemoveChild (child)")
	}
	if child.Parent != n {
		panic("birch: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	n.childrenSorted = false
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChildAt")
	}
	if index < 0 || index >= len(n.children) {
		panic("birch: child index out of range")
	}
	child := n.children[index]
	copy(n.children[index:], n.children[index+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	child.Parent = nil
	n.childrenSorted = false
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for i, child := range n.children {
		child.Parent = nil
		n.children[i] = nil
	}
	n.children = n.children[:0]
	n.childrenSorted = true
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetChildIndex moves child to a new index among its siblings.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child.Parent != n {
		panic("birch: child's parent is not this node")
	}
	nc := len(n.children)
	if index < 0 || index >= nc {
		panic("birch: child index out of range")
	}
	oldIndex := -1
	for i, c := range n.children {
		if c == child {
			oldIndex = i
			break
		}
	}
	if oldIndex == index {
		return
	}
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
	n.childrenSorted = false
}

// SetZIndex sets the node's ZIndex and marks the parent's children as unsorted.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex == z {
		return
	}
	n.ZIndex = z
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.sortedChildren = nil
	n.Parent = nil
	n.Frame = nil
	n.NormalMap = nil
	n.Rope = nil
	n.Shape = nil
	n.TileLayer = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// sortedChildrenOf returns the children in draw order: ascending ZIndex,
// insertion order among equal ZIndex.
func (n *Node) sortedChildrenOf() []*Node {
	if len(n.children) == 0 {
		return nil
	}
	if !n.childrenSorted {
		n.rebuildSortedChildren()
	}
	if n.sortedChildren != nil {
		return n.sortedChildren
	}
	return n.children
}

// rebuildSortedChildren rebuilds the ZIndex-sorted traversal order for a node.
// Stable insertion sort: O(n) when already sorted.
func (n *Node) rebuildSortedChildren() {
	nc := len(n.children)
	if cap(n.sortedChildren) < nc {
		n.sortedChildren = make([]*Node, nc)
	}
	n.sortedChildren = n.sortedChildren[:nc]
	copy(n.sortedChildren, n.children)
	for i := 1; i < nc; i++ {
		key := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && n.sortedChildren[j].ZIndex > key.ZIndex {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = key
	}
	n.childrenSorted = true
}
