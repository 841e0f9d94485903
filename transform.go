package oriel

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a translation, rotation and non-uniform scale. The zero value
// is not usable (zero scale, zero quaternion); start from IdentityTransform.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTransform returns the transform that changes nothing.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// NewTransform builds a transform from its three components.
func NewTransform(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) Transform {
	return Transform{Translation: translation, Rotation: rotation, Scale: scale}
}

// Compose returns child expressed in the frame of parent's parent:
//
//	T = p.T + p.R*(p.S∘c.T)
//	R = p.R*c.R
//	S = p.S∘c.S
func Compose(parent, child Transform) Transform {
	return Transform{
		Translation: parent.Translation.Add(parent.Rotation.Rotate(mulComponents(parent.Scale, child.Translation))),
		Rotation:    parent.Rotation.Mul(child.Rotation).Normalize(),
		Scale:       mulComponents(parent.Scale, child.Scale),
	}
}

// Relative returns the local transform that, composed under parent, yields
// world. It is the exact solution of Compose(parent, local) == world.
func Relative(parent, world Transform) Transform {
	inv := parent.Rotation.Inverse()
	invScale := reciprocal(parent.Scale)
	return Transform{
		Translation: mulComponents(invScale, inv.Rotate(world.Translation.Sub(parent.Translation))),
		Rotation:    inv.Mul(world.Rotation).Normalize(),
		Scale:       mulComponents(world.Scale, invScale),
	}
}

// Inverse returns the transform x' with Compose(x, x') == identity.
// Scale components must be non-zero.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Inverse()
	s := reciprocal(t.Scale)
	return Transform{
		Translation: mulComponents(s, inv.Rotate(t.Translation)).Mul(-1),
		Rotation:    inv,
		Scale:       s,
	}
}

// ToMatrix returns T * R * S as a column-major affine matrix.
func (t Transform) ToMatrix() mgl32.Mat4 {
	tr := mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2])
	sc := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return tr.Mul4(t.Rotation.Mat4()).Mul4(sc)
}

// TransformPoint maps a point from local space into the transform's parent space.
func (t Transform) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return t.Translation.Add(t.Rotation.Rotate(mulComponents(t.Scale, p)))
}

// InverseTransformPoint maps a point from the parent space back into local
// space. It is exact for non-uniform scale, unlike t.Inverse().TransformPoint.
func (t Transform) InverseTransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return mulComponents(reciprocal(t.Scale), t.Rotation.Inverse().Rotate(p.Sub(t.Translation)))
}

// Validate reports ErrZeroScale when any scale component is zero.
func (t Transform) Validate() error {
	for i, s := range t.Scale {
		if s == 0 {
			return fmt.Errorf("scale[%d]: %w", i, ErrZeroScale)
		}
	}
	return nil
}

// ApproxEqual reports whether translation and scale differ by at most eps
// in every component and the rotations satisfy |dot| >= 1-eps, so q and -q
// are equal. The tolerance is absolute, including around zero.
func (t Transform) ApproxEqual(o Transform, eps float32) bool {
	return vec3Near(t.Translation, o.Translation, eps) &&
		vec3Near(t.Scale, o.Scale, eps) &&
		math32.Abs(t.Rotation.Normalize().Dot(o.Rotation.Normalize())) >= 1-eps
}

func vec3Near(a, b mgl32.Vec3, eps float32) bool {
	return math32.Abs(a[0]-b[0]) <= eps &&
		math32.Abs(a[1]-b[1]) <= eps &&
		math32.Abs(a[2]-b[2]) <= eps
}

// TransformFromMatrix decomposes an affine matrix with no shear into a
// Transform. A negative determinant is folded into the X scale.
func TransformFromMatrix(m mgl32.Mat4) (Transform, error) {
	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	s := mgl32.Vec3{c0.Len(), c1.Len(), c2.Len()}
	t := Transform{Translation: m.Col(3).Vec3(), Scale: s}
	if err := t.Validate(); err != nil {
		return Transform{}, err
	}
	if m.Mat3().Det() < 0 {
		t.Scale[0] = -t.Scale[0]
		c0 = c0.Mul(-1)
	}
	c0, c1, c2 = c0.Mul(1/s[0]), c1.Mul(1/s[1]), c2.Mul(1/s[2])
	rot := mgl32.Mat4{
		c0[0], c0[1], c0[2], 0,
		c1[0], c1[1], c1[2], 0,
		c2[0], c2[1], c2[2], 0,
		0, 0, 0, 1,
	}
	t.Rotation = mgl32.Mat4ToQuat(rot).Normalize()
	return t, nil
}

// Look-direction substitution policy. A direction within VerticalLookThreshold
// of the up axis (measured as 1-|cos|) has no defined yaw. It is replaced by
// the up axis tilted by VerticalLookPerturbation toward a fixed axis
// perpendicular to up, so every near-vertical input maps to the same rotation.
const (
	VerticalLookThreshold    = 1e-6
	VerticalLookPerturbation = 1e-3
)

// LookRotation returns the rotation that points the -Z axis along dir with
// +Y as close to up as possible. A zero dir yields the identity rotation and
// a zero up is treated as +Y.
func LookRotation(dir, up mgl32.Vec3) mgl32.Quat {
	if dir.LenSqr() == 0 {
		return mgl32.QuatIdent()
	}
	if up.LenSqr() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	f := dir.Normalize()
	u := up.Normalize()

	d := f.Dot(u)
	if 1-math32.Abs(d) < VerticalLookThreshold {
		sign := float32(1)
		if d < 0 {
			sign = -1
		}
		f = u.Mul(sign).Add(perpendicular(u).Mul(VerticalLookPerturbation)).Normalize()
	}

	r := f.Cross(u).Normalize()
	v := r.Cross(f)
	m := mgl32.Mat4{
		r[0], r[1], r[2], 0,
		v[0], v[1], v[2], 0,
		-f[0], -f[1], -f[2], 0,
		0, 0, 0, 1,
	}
	return mgl32.Mat4ToQuat(m).Normalize()
}

// perpendicular returns a fixed unit vector orthogonal to u. Preference
// order is -Z, +X, +Y so that "looking straight up" tilts toward forward.
func perpendicular(u mgl32.Vec3) mgl32.Vec3 {
	for _, c := range [...]mgl32.Vec3{{0, 0, -1}, {1, 0, 0}, {0, 1, 0}} {
		if math32.Abs(c.Dot(u)) < 0.9 {
			return c.Sub(u.Mul(c.Dot(u))).Normalize()
		}
	}
	return mgl32.Vec3{1, 0, 0}
}

func mulComponents(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func reciprocal(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{1 / v[0], 1 / v[1], 1 / v[2]}
}

// updateWorldTransform refreshes the cached scene-space transform of n and
// its descendants. parentRecomputed forces recomputation of clean nodes
// below a recomputed ancestor.
func updateWorldTransform(n *Node, parentWorld Transform, parentRecomputed bool) {
	recompute := n.worldDirty || parentRecomputed
	if recompute {
		n.world = Compose(parentWorld, n.local)
		n.worldDirty = false
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.world, recompute)
	}
}

// --- Transform setters ---

// Local returns the node's transform relative to its parent.
func (n *Node) Local() Transform {
	return n.local
}

// SetLocal replaces the node's local transform.
func (n *Node) SetLocal(t Transform) error {
	if err := t.Validate(); err != nil {
		return err
	}
	n.local = t
	markSubtreeDirty(n)
	return nil
}

// SetTranslation sets the local translation.
func (n *Node) SetTranslation(v mgl32.Vec3) {
	n.local.Translation = v
	markSubtreeDirty(n)
}

// SetRotation sets the local rotation. q is normalized.
func (n *Node) SetRotation(q mgl32.Quat) {
	n.local.Rotation = q.Normalize()
	markSubtreeDirty(n)
}

// SetScale sets the local scale. Zero components are rejected.
func (n *Node) SetScale(s mgl32.Vec3) error {
	t := n.local
	t.Scale = s
	return n.SetLocal(t)
}

// Translate moves the node by delta in its parent's space.
func (n *Node) Translate(delta mgl32.Vec3) {
	n.SetTranslation(n.local.Translation.Add(delta))
}

// Rotate applies an extra rotation of angle radians around axis, in local space.
func (n *Node) Rotate(angle float32, axis mgl32.Vec3) {
	n.SetRotation(n.local.Rotation.Mul(mgl32.QuatRotate(angle, axis)))
}

// LookAt rotates the node so that its -Z axis points at target (in scene
// space). Vertical directions follow the LookRotation substitution policy.
func (n *Node) LookAt(target, up mgl32.Vec3) {
	world := n.SceneSpace()
	worldRot := LookRotation(target.Sub(world.Translation), up)
	if n.parent != nil {
		worldRot = n.parent.SceneSpace().Rotation.Inverse().Mul(worldRot)
	}
	n.SetRotation(worldRot)
}

// MarkDirty forces the scene-space transform of n and its subtree to be
// recomputed on next read.
func (n *Node) MarkDirty() {
	markSubtreeDirty(n)
}

// --- Coordinate conversion ---

// LocalToScene converts a point in this node's local space to scene space.
func (n *Node) LocalToScene(p mgl32.Vec3) mgl32.Vec3 {
	return n.SceneSpace().TransformPoint(p)
}

// SceneToLocal converts a scene-space point into this node's local space.
func (n *Node) SceneToLocal(p mgl32.Vec3) mgl32.Vec3 {
	return n.SceneSpace().InverseTransformPoint(p)
}
