package birch

// Placeable is anything with a local translate/rotate/scale transform and a
// scroll factor.
type Placeable interface {
	// ITRS returns the local position, rotation in radians and scale.
	ITRS() (x, y, rotation, scaleX, scaleY float64)
	// ScrollFactor returns how strongly camera scroll applies per axis:
	// 1 follows the camera fully, 0 stays fixed on screen.
	ScrollFactor() (x, y float64)
}

// CalcMatrix holds the scratch matrices used to compose camera, parent and
// object transforms. It is owned by the caller, usually a RenderContext, and
// every Resolve overwrites all four matrices: pointers returned by Resolve
// are only valid until the next call on the same value.
type CalcMatrix struct {
	// Camera is the camera matrix with the object's scroll factor applied.
	Camera Matrix
	// Sprite is the object's local ITRS matrix.
	Sprite Matrix
	// Calc is Camera ∘ parent ∘ Sprite.
	Calc Matrix
	// CameraExternal is the camera's on-screen placement, or identity when
	// the camera position is ignored.
	CameraExternal Matrix
}

// Resolve composes the final matrix for src as seen through cam, optionally
// nested under parent. With ignoreCameraPosition the camera's on-screen
// placement is left out, for drawing into targets that are not the screen.
// The result aliases r.Calc.
func (r *CalcMatrix) Resolve(src Placeable, cam *Camera, parent *Matrix, ignoreCameraPosition bool) *Matrix {
	x, y, rot, sx, sy := src.ITRS()
	sfx, sfy := src.ScrollFactor()
	return r.ResolveITRS(cam, parent, x, y, rot, sx, sy, sfx, sfy, ignoreCameraPosition)
}

// ResolveITRS is Resolve with the object transform given explicitly, for
// callers that adjust it first (flip factors, pixel snapping).
func (r *CalcMatrix) ResolveITRS(cam *Camera, parent *Matrix, x, y, rotation, scaleX, scaleY, scrollFactorX, scrollFactorY float64, ignoreCameraPosition bool) *Matrix {
	camMatrix := &cam.matrixCombined
	if ignoreCameraPosition {
		r.CameraExternal.LoadIdentity()
		camMatrix = &cam.matrix
	} else {
		r.CameraExternal.CopyFrom(&cam.matrixExternal)
	}

	r.Camera.CopyWithScrollFactorFrom(camMatrix, cam.renderScrollX, cam.renderScrollY, scrollFactorX, scrollFactorY)
	r.Calc.CopyFrom(&r.Camera)
	if parent != nil {
		r.Calc.Multiply(parent)
	}
	r.Sprite.ApplyITRS(x, y, rotation, scaleX, scaleY)
	return r.Calc.Multiply(&r.Sprite)
}
