package birch

// LocalMatrix writes the node's local ITRS matrix into out and returns it.
func (n *Node) LocalMatrix(out *Matrix) *Matrix {
	return out.ApplyITRS(n.X, n.Y, n.Rotation, n.ScaleX, n.ScaleY)
}

// WorldMatrix writes the node's local-to-world matrix into out, composing the
// local matrices of every ancestor. Camera transforms are not included.
func (n *Node) WorldMatrix(out *Matrix) *Matrix {
	n.LocalMatrix(out)
	var local Matrix
	for p := n.Parent; p != nil; p = p.Parent {
		p.LocalMatrix(&local)
		local.MultiplyInto(out, out)
	}
	return out
}

// WorldPosition returns the node's position in world space.
func (n *Node) WorldPosition() (x, y float64) {
	if n.Parent == nil {
		return n.X, n.Y
	}
	var m Matrix
	n.Parent.WorldMatrix(&m)
	return m.TransformPoint(n.X, n.Y)
}

// LocalToWorld converts a local-space point to world space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	var m Matrix
	return n.WorldMatrix(&m).TransformPoint(lx, ly)
}

// WorldToLocal converts a world-space point to this node's local space. A
// node with a zero scale anywhere in its ancestry maps every point to NaN.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	var m Matrix
	return n.WorldMatrix(&m).ApplyInverse(wx, wy)
}

// updateWorld refreshes the cached container transform used while drawing
// children. parent is the parent's world matrix, or nil at the root.
func (n *Node) updateWorld(parent *Matrix, parentAlpha float64) {
	n.LocalMatrix(&n.worldTransform)
	if parent != nil {
		parent.MultiplyInto(&n.worldTransform, &n.worldTransform)
	}
	n.worldAlpha = parentAlpha * n.Alpha
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
}

// SetScale sets the node's ScaleX and ScaleY.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
}

// SetRotation sets the node's rotation in radians.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
}

// SetOrigin sets the normalized origin.
func (n *Node) SetOrigin(ox, oy float64) {
	n.OriginX = ox
	n.OriginY = oy
}

// SetScrollFactor sets the camera scroll factor per axis.
func (n *Node) SetScrollFactor(x, y float64) {
	n.ScrollFactorX = x
	n.ScrollFactorY = y
}
