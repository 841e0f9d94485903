package oriel

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode("n")
	if !n.Visible {
		t.Error("new node should be visible")
	}
	if n.ID == 0 {
		t.Error("new node should have an ID")
	}
	if n.Local() != IdentityTransform() {
		t.Errorf("local = %+v, want identity", n.Local())
	}
	if NewNode("other").ID == n.ID {
		t.Error("IDs should be unique")
	}
}

func TestAddChild(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	if err := parent.AddChild(child, false); err != nil {
		t.Fatal(err)
	}
	if child.Parent() != parent {
		t.Error("parent not set")
	}
	if parent.NumChildren() != 1 || parent.ChildAt(0) != child {
		t.Error("child not in children list")
	}
}

func TestAddChildReparents(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	child := NewNode("child")
	_ = a.AddChild(child, false)
	if err := b.AddChild(child, false); err != nil {
		t.Fatal(err)
	}
	if a.NumChildren() != 0 {
		t.Error("old parent still holds the child")
	}
	if child.Parent() != b {
		t.Error("child parent not updated")
	}
}

func TestAddChildCycle(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	_ = a.AddChild(b, false)
	_ = b.AddChild(c, false)

	tests := []struct {
		name          string
		parent, child *Node
	}{
		{"self", a, a},
		{"parent under child", b, a},
		{"grandparent under grandchild", c, a},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.parent.AddChild(tt.child, false); !errors.Is(err, ErrCycle) {
				t.Fatalf("err = %v, want ErrCycle", err)
			}
		})
	}
	if a.Parent() != nil || b.Parent() != a || c.Parent() != b {
		t.Error("tree changed after rejected AddChild")
	}
	if a.NumChildren() != 1 || b.NumChildren() != 1 || c.NumChildren() != 0 {
		t.Error("child lists changed after rejected AddChild")
	}
}

func TestAddChildNilAndDisposed(t *testing.T) {
	n := NewNode("n")
	if err := n.AddChild(nil, false); !errors.Is(err, ErrNilNode) {
		t.Errorf("nil: err = %v, want ErrNilNode", err)
	}
	d := NewNode("d")
	d.Dispose()
	if err := n.AddChild(d, false); !errors.Is(err, ErrDisposed) {
		t.Errorf("disposed child: err = %v, want ErrDisposed", err)
	}
	if err := d.AddChild(NewNode("x"), false); !errors.Is(err, ErrDisposed) {
		t.Errorf("disposed parent: err = %v, want ErrDisposed", err)
	}
}

func TestAddChildPreserveSceneSpace(t *testing.T) {
	a := NewNode("a")
	a.SetTranslation(mgl32.Vec3{10, 0, 0})
	b := NewNode("b")
	b.SetTranslation(mgl32.Vec3{0, -3, 1})
	b.SetRotation(mgl32.QuatRotate(0.8, mgl32.Vec3{0, 1, 0}))
	_ = b.SetScale(mgl32.Vec3{2, 2, 2})

	child := NewNode("child")
	child.SetTranslation(mgl32.Vec3{1, 2, 3})
	_ = a.AddChild(child, false)
	before := child.SceneSpace()

	if err := b.AddChild(child, true); err != nil {
		t.Fatal(err)
	}
	if after := child.SceneSpace(); !after.ApproxEqual(before, 1e-4) {
		t.Errorf("scene space moved: %+v -> %+v", before, after)
	}

	if err := a.AddChild(child, false); err != nil {
		t.Fatal(err)
	}
	if after := child.SceneSpace(); after.ApproxEqual(before, 1e-4) {
		t.Error("without preserve the local transform should be kept, not the pose")
	}
}

func TestAddChildPreserveSceneSpaceNonUniformParent(t *testing.T) {
	from := NewNode("from")
	_ = from.SetLocal(NewTransform(
		mgl32.Vec3{-2, 1, 4},
		mgl32.QuatRotate(-0.6, mgl32.Vec3{0, 0, 1}),
		mgl32.Vec3{1, 3, 0.5},
	))
	to := NewNode("to")
	_ = to.SetLocal(NewTransform(
		mgl32.Vec3{3, -1, 2},
		mgl32.QuatRotate(1.1, mgl32.Vec3{1, 1, 0}.Normalize()),
		mgl32.Vec3{2, 0.5, 4},
	))
	child := NewNode("child")
	_ = child.SetLocal(NewTransform(
		mgl32.Vec3{1, 2, 3},
		mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0}),
		mgl32.Vec3{1, 2, 1},
	))
	_ = from.AddChild(child, false)
	before := child.SceneSpace()

	if err := to.AddChild(child, true); err != nil {
		t.Fatal(err)
	}
	if child.Parent() != to {
		t.Fatal("child was not moved")
	}
	if after := child.SceneSpace(); !after.ApproxEqual(before, 1e-4) {
		t.Errorf("scene space moved: %+v -> %+v", before, after)
	}
}

func TestAddChildPreserveSceneSpaceRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 300; i++ {
		from, to, child := NewNode("from"), NewNode("to"), NewNode("child")
		_ = from.SetLocal(randomTransform(r))
		_ = to.SetLocal(randomTransform(r))
		_ = child.SetLocal(randomTransform(r))
		_ = from.AddChild(child, false)
		before := child.SceneSpace()

		if err := to.AddChild(child, true); err != nil {
			t.Fatal(err)
		}
		if after := child.SceneSpace(); !after.ApproxEqual(before, 1e-4) {
			t.Fatalf("case %d: scene space moved: %+v -> %+v", i, before, after)
		}
	}
}

func TestRemoveChild(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	_ = parent.AddChild(child, false)
	parent.RemoveChild(child)
	if child.Parent() != nil || parent.NumChildren() != 0 {
		t.Error("child not removed")
	}

	// Removing a non-child is a no-op.
	other := NewNode("other")
	stranger := NewNode("stranger")
	_ = other.AddChild(stranger, false)
	parent.RemoveChild(stranger)
	if stranger.Parent() != other {
		t.Error("RemoveChild detached a node it does not own")
	}
}

func TestRemoveChildAt(t *testing.T) {
	parent := NewNode("parent")
	a, b := NewNode("a"), NewNode("b")
	_ = parent.AddChild(a, false)
	_ = parent.AddChild(b, false)
	if got := parent.RemoveChildAt(0); got != a {
		t.Errorf("RemoveChildAt(0) = %v, want a", got)
	}
	if parent.ChildAt(0) != b {
		t.Error("b should shift to index 0")
	}
}

func TestRemoveChildren(t *testing.T) {
	parent := NewNode("parent")
	kids := []*Node{NewNode("a"), NewNode("b"), NewNode("c")}
	for _, k := range kids {
		_ = parent.AddChild(k, false)
	}
	parent.RemoveChildren()
	if parent.NumChildren() != 0 {
		t.Error("children remain")
	}
	for _, k := range kids {
		if k.Parent() != nil || k.IsDisposed() {
			t.Errorf("%s: parent=%v disposed=%v", k.Name, k.Parent(), k.IsDisposed())
		}
	}
}

func TestSetChildIndex(t *testing.T) {
	parent := NewNode("parent")
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	for _, k := range []*Node{a, b, c} {
		_ = parent.AddChild(k, false)
	}
	parent.SetChildIndex(c, 0)
	got := parent.Children()
	if got[0] != c || got[1] != a || got[2] != b {
		t.Errorf("order = %s %s %s, want c a b", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestChildrenSnapshotIsCopy(t *testing.T) {
	parent := NewNode("parent")
	_ = parent.AddChild(NewNode("a"), false)
	snap := parent.ChildrenSnapshot()
	parent.RemoveChildren()
	if len(snap) != 1 {
		t.Error("snapshot should survive RemoveChildren")
	}
}

func TestAncestryQueries(t *testing.T) {
	root := NewNode("root")
	mid := NewNode("mid")
	leaf := NewNode("leaf")
	_ = root.AddChild(mid, false)
	_ = mid.AddChild(leaf, false)

	if leaf.Root() != root {
		t.Error("Root")
	}
	if leaf.Depth() != 2 || root.Depth() != 0 {
		t.Errorf("Depth = %d/%d", leaf.Depth(), root.Depth())
	}
	if !root.IsAncestorOf(leaf) || leaf.IsAncestorOf(root) || leaf.IsAncestorOf(leaf) {
		t.Error("IsAncestorOf")
	}
	chain := leaf.Ancestors(nil)
	if len(chain) != 3 || chain[0] != root || chain[2] != leaf {
		t.Errorf("Ancestors = %v", chain)
	}
	if root.Find("leaf") != leaf || root.Find("nope") != nil {
		t.Error("Find")
	}
}

func TestWalkStops(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	_ = root.AddChild(a, false)
	_ = a.AddChild(NewNode("a1"), false)
	_ = root.AddChild(NewNode("b"), false)

	var visited []string
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.Name)
		return n.Name != "a"
	})
	want := []string{"root", "a", "b"}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visited %v, want %v", visited, want)
		}
	}
}

func TestDisposeOrphansChildren(t *testing.T) {
	parent := NewNode("parent")
	n := NewNode("n")
	kid := NewNode("kid")
	_ = parent.AddChild(n, false)
	_ = n.AddChild(kid, false)

	n.Dispose()
	if !n.IsDisposed() {
		t.Error("not disposed")
	}
	if parent.NumChildren() != 0 {
		t.Error("disposed node still attached")
	}
	if kid.Parent() != nil || kid.IsDisposed() {
		t.Error("child should become an undisposed root")
	}
	n.Dispose() // idempotent
}

func TestDisposeUnregisters(t *testing.T) {
	s := NewScene()
	n := NewMeshNode("mesh", &fakeMesh{}, nil)
	_ = s.Root().AddChild(n, false)
	if len(s.Drawables()) != 1 {
		t.Fatal("mesh not registered")
	}
	n.Dispose()
	if len(s.Drawables()) != 0 {
		t.Error("disposed mesh still registered")
	}
	if n.Scene() != nil {
		t.Error("disposed node kept its scene")
	}
}
