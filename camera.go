package oriel

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ProjectionKind selects how a Camera maps view space to clip space.
type ProjectionKind uint8

const (
	ProjectionPerspective  ProjectionKind = iota // symmetric frustum from FovY
	ProjectionOrthographic                       // box from OrthoWidth x OrthoHeight
)

// Default perspective parameters used by NewCamera.
const (
	DefaultFovY = 60
	DefaultNear = 0.1
	DefaultFar  = 100
)

// moveAnim holds an active MoveTo tween, one gween.Tween per axis.
type moveAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera is a node capability describing a view into the scene. Its pose is
// the scene-space transform of the node it is attached to; the camera looks
// down the node's -Z axis with +Y up.
type Camera struct {
	Projection ProjectionKind
	// FovY is the vertical field of view in degrees. Ignored when orthographic.
	FovY float32
	// Near and Far are the clip distances.
	Near, Far float32
	// OrthoWidth and OrthoHeight are the view-space extents of an
	// orthographic camera.
	OrthoWidth, OrthoHeight float32
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect
	// Aspect overrides the viewport's aspect ratio when non-zero.
	Aspect float32

	node *Node

	followTarget *Node
	followOffset mgl32.Vec3
	followLerp   float32

	move *moveAnim
}

// NewCamera creates a perspective camera with the default field of view and
// clip distances.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Projection: ProjectionPerspective,
		FovY:       DefaultFovY,
		Near:       DefaultNear,
		Far:        DefaultFar,
		Viewport:   viewport,
	}
}

// NewOrthoCamera creates an orthographic camera showing width x height
// view-space units.
func NewOrthoCamera(viewport Rect, width, height float32) *Camera {
	c := NewCamera(viewport)
	c.Projection = ProjectionOrthographic
	c.OrthoWidth = width
	c.OrthoHeight = height
	return c
}

// Node returns the node carrying the camera, or nil.
func (c *Camera) Node() *Node {
	return c.node
}

// AspectRatio returns Aspect, or the viewport's ratio when Aspect is zero.
func (c *Camera) AspectRatio() float32 {
	if c.Aspect != 0 {
		return c.Aspect
	}
	return c.Viewport.Aspect()
}

// ViewMatrix returns the inverse of the camera node's scene-space matrix.
// A detached camera sits at the origin.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	if c.node == nil {
		return mgl32.Ident4()
	}
	return inverseTRS(c.node.SceneSpace())
}

// EyeViewMatrix returns inverse(headToEye(eye)) * ViewMatrix(). A nil
// tracker yields the monoscopic view matrix.
func (c *Camera) EyeViewMatrix(eye Eye, tracker Tracker) mgl32.Mat4 {
	view := c.ViewMatrix()
	if tracker == nil {
		return view
	}
	return tracker.HeadToEyeTransform(eye).Inv().Mul4(view)
}

// ProjectionMatrix returns the camera's symmetric projection.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	if c.Projection == ProjectionOrthographic {
		hw, hh := c.OrthoWidth/2, c.OrthoHeight/2
		return mgl32.Ortho(-hw, hw, -hh, hh, c.Near, c.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.AspectRatio(), c.Near, c.Far)
}

// EyeProjectionMatrix returns the tracker's projection for eye at the
// camera's clip distances, unmodified. A nil tracker yields ProjectionMatrix.
func (c *Camera) EyeProjectionMatrix(eye Eye, tracker Tracker) mgl32.Mat4 {
	if tracker == nil {
		return c.ProjectionMatrix()
	}
	return tracker.ProjectionRaw(eye, c.Near, c.Far)
}

// ProjectionFromTangents builds an off-axis perspective projection from the
// tangents of the four half-angles of a view frustum, as reported by VR
// runtimes. left and bottom are negative for a frustum containing the axis.
func ProjectionFromTangents(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	return mgl32.Frustum(left*near, right*near, bottom*near, top*near, near, far)
}

// ScreenToRay returns the scene-space origin and unit direction of the ray
// through screen point (sx, sy) in the camera's viewport.
func (c *Camera) ScreenToRay(sx, sy float64) (origin, dir mgl32.Vec3) {
	vp := c.Viewport
	return CameraView(c).Ray((sx-vp.X)/vp.Width, (sy-vp.Y)/vp.Height)
}

// WorldToScreen projects a scene-space point into viewport pixels. ok is
// false for points behind the camera.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (sx, sy float64, ok bool) {
	clip := c.ProjectionMatrix().Mul4(c.ViewMatrix()).Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return 0, 0, false
	}
	ndcX := float64(clip[0] / clip[3])
	ndcY := float64(clip[1] / clip[3])
	vp := c.Viewport
	return vp.X + (ndcX+1)/2*vp.Width, vp.Y + (1-ndcY)/2*vp.Height, true
}

// Follow makes the camera node track target with the given scene-space
// offset and lerp factor. A lerp of 1.0 snaps immediately; lower values give
// smoother following.
func (c *Camera) Follow(target *Node, offset mgl32.Vec3, lerp float32) {
	c.followTarget = target
	c.followOffset = offset
	c.followLerp = lerp
}

// Unfollow stops tracking the current target node.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// MoveTo animates the camera node's local translation to pos over duration
// seconds. A nil easeFn is linear.
func (c *Camera) MoveTo(pos mgl32.Vec3, duration float32, easeFn ease.TweenFunc) {
	if c.node == nil {
		return
	}
	if easeFn == nil {
		easeFn = ease.Linear
	}
	from := c.node.local.Translation
	m := &moveAnim{}
	for i := range m.tweens {
		m.tweens[i] = gween.New(from[i], pos[i], duration, easeFn)
	}
	c.move = m
}

// Moving reports whether a MoveTo animation is in progress.
func (c *Camera) Moving() bool {
	return c.move != nil
}

// update advances follow and MoveTo. Called from Scene.Update.
func (c *Camera) update(dt float32) {
	if c.node == nil {
		return
	}
	if c.followTarget != nil {
		if c.followTarget.IsDisposed() {
			c.followTarget = nil
		} else {
			goal := c.followTarget.SceneSpace().Translation.Add(c.followOffset)
			cur := c.node.SceneSpace().Translation
			next := cur.Add(goal.Sub(cur).Mul(c.followLerp))
			if p := c.node.parent; p != nil {
				next = p.SceneSpace().InverseTransformPoint(next)
			}
			c.node.SetTranslation(next)
		}
	}

	if m := c.move; m != nil {
		t := c.node.local.Translation
		for i, tw := range m.tweens {
			if m.done[i] {
				continue
			}
			t[i], m.done[i] = tw.Update(dt)
		}
		c.node.SetTranslation(t)
		if m.done[0] && m.done[1] && m.done[2] {
			c.move = nil
		}
	}
}

// inverseTRS returns the exact inverse of t.ToMatrix(): S⁻¹ * R⁻¹ * T⁻¹.
func inverseTRS(t Transform) mgl32.Mat4 {
	s := reciprocal(t.Scale)
	return mgl32.Scale3D(s[0], s[1], s[2]).
		Mul4(t.Rotation.Inverse().Mat4()).
		Mul4(mgl32.Translate3D(-t.Translation[0], -t.Translation[1], -t.Translation[2]))
}
