package oriel

import "fmt"

// nodeIDCounter is a plain counter; the scene graph is single-threaded.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is a scene object: a spatial element of the scene graph. A node owns
// its children; the parent pointer is a non-owning back-reference. A node
// has at most one parent and the graph is always acyclic.
//
// Rendering payloads (mesh, camera, light) are optional capabilities. Nodes
// carrying them register into the owning Scene's typed collections when
// attached under its root.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	parent   *Node
	children []*Node

	// Transform
	local      Transform
	world      Transform
	worldDirty bool

	// Visibility & ordering
	Visible     bool
	RenderLayer uint8
	GlobalOrder int

	// Rasterizer holds this node's opinion on rasterizer state. It is
	// flattened with every ancestor's state before each draw.
	Rasterizer RasterizerState

	// Capabilities
	mesh     Mesh
	material *Material
	camera   *Camera
	light    *Light

	behaviors []Behavior

	// Metadata
	UserData any
	EntityID uint32

	scene      *Scene
	registered capSet
	treeOrder  int
	disposed   bool
}

// NewNode creates a detached node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		ID:         nextNodeID(),
		Name:       name,
		local:      IdentityTransform(),
		world:      IdentityTransform(),
		worldDirty: true,
		Visible:    true,
	}
}

// NewMeshNode creates a node that draws mesh with material.
func NewMeshNode(name string, mesh Mesh, material *Material) *Node {
	n := NewNode(name)
	n.mesh = mesh
	n.material = material
	return n
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Scene returns the scene this node is attached to, or nil.
func (n *Node) Scene() *Scene {
	return n.scene
}

// --- Tree manipulation ---

// AddChild attaches child under n. A child that already has a parent is
// detached from it first. When preserveSceneSpace is true the child's local
// transform is recomputed so its scene-space pose is unchanged.
//
// AddChild returns ErrCycle if child is n or one of n's ancestors, and
// ErrDisposed if either node has been disposed. The tree is unchanged on error.
func (n *Node) AddChild(child *Node, preserveSceneSpace bool) error {
	if child == nil {
		return ErrNilNode
	}
	if debugEnabled() {
		debugCheckDisposed(n, "AddChild")
		debugCheckDisposed(child, "AddChild")
	}
	if n.disposed {
		return fmt.Errorf("add child to %q: %w", n.Name, ErrDisposed)
	}
	if child.disposed {
		return fmt.Errorf("add %q: %w", child.Name, ErrDisposed)
	}
	if isAncestor(child, n) {
		return fmt.Errorf("add %q under %q: %w", child.Name, n.Name, ErrCycle)
	}
	if child.parent == n {
		return nil
	}

	var world Transform
	if preserveSceneSpace {
		world = child.SceneSpace()
	}
	if child.parent != nil {
		child.parent.removeChildByPtr(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	if preserveSceneSpace {
		child.local = Relative(n.SceneSpace(), world)
	}
	markSubtreeDirty(child)
	setSceneRecursive(child, n.scene)
	n.invalidateOrder()

	if debugEnabled() {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
	return nil
}

// RemoveChild detaches child from n. It is a no-op if child is not
// currently a child of n. The child becomes a root; it is not disposed.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.parent != n {
		return
	}
	n.removeChildByPtr(child)
	child.parent = nil
	markSubtreeDirty(child)
	setSceneRecursive(child, nil)
	n.invalidateOrder()
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		panic("oriel: child index out of range")
	}
	child := n.children[index]
	n.RemoveChild(child)
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.parent == nil {
		return
	}
	n.parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.parent = nil
		markSubtreeDirty(child)
		setSceneRecursive(child, nil)
	}
	clear(n.children)
	n.children = n.children[:0]
	n.invalidateOrder()
}

// Children returns the live child list. The returned slice MUST NOT be
// mutated, and the tree must not be restructured while iterating it; use
// ChildrenSnapshot when the loop body may add or remove nodes.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildrenSnapshot returns a copy of the child list.
func (n *Node) ChildrenSnapshot() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
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
	if child.parent != n {
		panic("oriel: child's parent is not this node")
	}
	nc := len(n.children)
	if index < 0 || index >= nc {
		panic("oriel: child index out of range")
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
	n.invalidateOrder()
}

// --- Lookup ---

// Root returns the topmost ancestor of n (n itself if it has no parent).
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Depth returns the number of ancestors of n.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	return other != nil && other != n && isAncestor(n, other)
}

// Ancestors appends the chain from the root down to n (inclusive) to dst
// and returns it.
func (n *Node) Ancestors(dst []*Node) []*Node {
	start := len(dst)
	for p := n; p != nil; p = p.parent {
		dst = append(dst, p)
	}
	chain := dst[start:]
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return dst
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the visited node's subtree. fn must not restructure the tree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// Find returns the first node named name in n's subtree (n included).
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// --- Scene space ---

// SceneSpace returns the node's world-space transform. The cached value is
// refreshed lazily: every local write and structural change marks the
// subtree dirty, so a read never observes a stale ancestor.
func (n *Node) SceneSpace() Transform {
	if n.worldDirty {
		if n.parent == nil {
			n.world = n.local
		} else {
			n.world = Compose(n.parent.SceneSpace(), n.local)
		}
		n.worldDirty = false
	}
	return n.world
}

// --- Capabilities ---

// Mesh returns the node's drawable and its material.
func (n *Node) Mesh() (Mesh, *Material) {
	return n.mesh, n.material
}

// SetMesh sets the node's drawable. A nil mesh removes the capability.
func (n *Node) SetMesh(mesh Mesh, material *Material) {
	n.unregister()
	n.mesh = mesh
	n.material = material
	n.register()
}

// Camera returns the node's camera, or nil.
func (n *Node) Camera() *Camera {
	return n.camera
}

// SetCamera attaches cam to n; the camera's pose follows the node.
func (n *Node) SetCamera(cam *Camera) {
	n.unregister()
	if n.camera != nil {
		n.camera.node = nil
	}
	n.camera = cam
	if cam != nil {
		if cam.node != nil && cam.node != n {
			cam.node.SetCamera(nil)
		}
		cam.node = n
	}
	n.register()
}

// Light returns the node's light, or nil.
func (n *Node) Light() *Light {
	return n.light
}

// SetLight attaches l to n; the light's position and direction follow the node.
func (n *Node) SetLight(l *Light) {
	n.unregister()
	n.light = l
	n.register()
}

// --- Disposal ---

// Dispose removes this node from its parent, detaches its behaviors and
// orphans its children. Children become roots and are not disposed.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.RemoveChildren()
	if n.scene != nil {
		n.unregister()
		n.scene = nil
	}
	for _, b := range n.behaviors {
		detachBehavior(n, b)
	}
	n.behaviors = nil
	if n.camera != nil {
		n.camera.node = nil
	}
	n.disposed = true
	n.ID = 0
	n.mesh = nil
	n.material = nil
	n.camera = nil
	n.light = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.parent.
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

// markSubtreeDirty marks node and its descendants for scene-space
// recomputation. A clean node never has a dirty ancestor (reading it cleans
// the chain), so an already-dirty node has an already-dirty subtree.
func markSubtreeDirty(node *Node) {
	if node.worldDirty {
		return
	}
	node.worldDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

// setSceneRecursive moves node's subtree to scene s, updating the typed
// collections of the old and new scenes.
func setSceneRecursive(node *Node, s *Scene) {
	if node.scene == s {
		return
	}
	node.unregister()
	node.scene = s
	node.register()
	for _, child := range node.children {
		setSceneRecursive(child, s)
	}
}

// invalidateOrder asks the owning scene to renumber tree order before the
// next render.
func (n *Node) invalidateOrder() {
	if n.scene != nil {
		n.scene.orderDirty = true
	}
}

func (n *Node) register() {
	if n.scene != nil {
		n.scene.register(n)
	}
}

func (n *Node) unregister() {
	if n.scene != nil {
		n.scene.unregister(n)
	}
}
