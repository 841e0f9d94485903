package oriel

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, tracking and registration events are forwarded to it.
type EntityStore interface {
	EmitEvent(event TrackingEvent)
}

const defaultCommandCap = 256

// capSet records which typed collections a node is registered in.
type capSet uint8

const (
	capDrawable capSet = 1 << iota
	capCamera
	capLight
)

// Scene is the top-level object that owns the node tree, the typed
// collections of cameras, lights and drawables, and render buffers.
type Scene struct {
	root  *Node
	store EntityStore
	debug bool

	// DefaultMaterial is used for drawables without a material.
	DefaultMaterial *Material

	// Typed collections, kept in registration order.
	cameras   []*Node
	lights    []*Node
	drawables []*Node

	orderDirty bool

	// Render state
	commands []RenderCommand
	sortBuf  []RenderCommand
	chainBuf []*Node
	nodeBuf  []*Node

	lastStats debugStats
}

// NewScene creates a new scene with a pre-created root node.
func NewScene() *Scene {
	s := &Scene{
		commands:        make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:         make([]RenderCommand, 0, defaultCommandCap),
		DefaultMaterial: StandardMaterial(ColorWhite),
		orderDirty:      true,
	}
	s.root = NewNode("root")
	setSceneRecursive(s.root, s)
	return s
}

// Root returns the scene's root node.
func (s *Scene) Root() *Node {
	return s.root
}

// Update runs every behavior, advances cameras and refreshes scene-space
// transforms.
func (s *Scene) Update(dt float64) {
	s.UpdateBehaviors(dt)
	s.RefreshTransforms()
}

// UpdateBehaviors runs every attached behavior once and advances camera
// follow and MoveTo animations. Behaviors run in tree order over a snapshot
// taken before the first one runs, so they may restructure the tree.
func (s *Scene) UpdateBehaviors(dt float64) {
	s.nodeBuf = s.snapshot(s.nodeBuf[:0])
	updateBehaviors(s, s.nodeBuf, dt)
	clear(s.nodeBuf)
	for _, n := range s.cameras {
		if n.camera != nil {
			n.camera.update(float32(dt))
		}
	}
}

// RefreshTransforms eagerly recomputes every dirty scene-space transform.
func (s *Scene) RefreshTransforms() {
	updateWorldTransform(s.root, IdentityTransform(), false)
}

// snapshot appends every node of the tree in depth-first order.
func (s *Scene) snapshot(dst []*Node) []*Node {
	s.root.Walk(func(n *Node) bool {
		dst = append(dst, n)
		return true
	})
	return dst
}

// Cameras returns the nodes carrying a camera. The returned slice MUST NOT
// be mutated.
func (s *Scene) Cameras() []*Node {
	return s.cameras
}

// Lights returns the nodes carrying a light. The returned slice MUST NOT be
// mutated.
func (s *Scene) Lights() []*Node {
	return s.lights
}

// Drawables returns the nodes carrying a mesh. The returned slice MUST NOT
// be mutated.
func (s *Scene) Drawables() []*Node {
	return s.drawables
}

// MainCamera returns the first registered camera, or nil.
func (s *Scene) MainCamera() *Camera {
	if len(s.cameras) == 0 {
		return nil
	}
	return s.cameras[0].camera
}

// SetEntityStore sets the optional ECS bridge. Tracked bindings of nodes in
// the scene are announced to it on the next pose update.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// EntityStore returns the ECS bridge, or nil.
func (s *Scene) EntityStore() EntityStore {
	return s.store
}

// SetDebugMode enables or disables debug mode. When enabled, tree depth and
// child count warnings are logged, disposed-node access panics, and
// per-frame timing stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// --- Capability registration ---

func (s *Scene) register(n *Node) {
	if n.mesh != nil && n.registered&capDrawable == 0 {
		s.drawables = append(s.drawables, n)
		n.registered |= capDrawable
	}
	if n.camera != nil && n.registered&capCamera == 0 {
		s.cameras = append(s.cameras, n)
		n.registered |= capCamera
	}
	if n.light != nil && n.registered&capLight == 0 {
		s.lights = append(s.lights, n)
		n.registered |= capLight
	}
	s.orderDirty = true
}

func (s *Scene) unregister(n *Node) {
	if n.registered&capDrawable != 0 {
		s.drawables = removeNode(s.drawables, n)
	}
	if n.registered&capCamera != 0 {
		s.cameras = removeNode(s.cameras, n)
	}
	if n.registered&capLight != 0 {
		s.lights = removeNode(s.lights, n)
	}
	n.registered = 0
	s.orderDirty = true
}

func removeNode(list []*Node, n *Node) []*Node {
	for i, c := range list {
		if c == n {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}

// refreshTreeOrder renumbers nodes depth-first after a structural change.
func (s *Scene) refreshTreeOrder() {
	if !s.orderDirty {
		return
	}
	order := 0
	s.root.Walk(func(n *Node) bool {
		n.treeOrder = order
		order++
		return true
	})
	s.orderDirty = false
}

// --- Views ---

// View is the pair of matrices a scene is rendered with.
type View struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Viewport   Rect
}

// CameraView returns the monoscopic view of cam.
func CameraView(cam *Camera) View {
	return View{View: cam.ViewMatrix(), Projection: cam.ProjectionMatrix(), Viewport: cam.Viewport}
}

// EyeView returns the view of cam for one eye of a stereo pair.
func EyeView(cam *Camera, eye Eye, tracker Tracker) View {
	return View{
		View:       cam.EyeViewMatrix(eye, tracker),
		Projection: cam.EyeProjectionMatrix(eye, tracker),
		Viewport:   cam.Viewport,
	}
}

// Ray unprojects a point of the view given in normalized viewport
// coordinates (0,0 top-left, 1,1 bottom-right) into a scene-space ray.
func (v View) Ray(u, w float64) (origin, dir mgl32.Vec3) {
	ndcX, ndcY := float32(2*u-1), float32(1-2*w)
	inv := v.Projection.Mul4(v.View).Inv()
	near := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	n := near.Vec3().Mul(1 / near[3])
	f := far.Vec3().Mul(1 / far[3])
	return n, f.Sub(n).Normalize()
}

// RenderCameras renders the scene once per registered camera into its
// viewport.
func (s *Scene) RenderCameras(rc RenderContext) error {
	for _, n := range s.cameras {
		if err := s.Render(rc, CameraView(n.camera)); err != nil {
			return err
		}
	}
	return nil
}

// Render draws every visible drawable with the given view.
func (s *Scene) Render(rc RenderContext, view View) error {
	var stats debugStats
	var t0 time.Time

	if s.debug {
		t0 = time.Now()
	}

	s.buildCommands()

	if s.debug {
		stats.traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	s.mergeSort()

	if s.debug {
		stats.sortTime = time.Since(t0)
		stats.commandCount = len(s.commands)
		t0 = time.Now()
	}

	err := s.submit(rc, view, &stats)

	if s.debug {
		stats.submitTime = time.Since(t0)
		s.debugLog(stats)
	}
	s.lastStats = stats
	return err
}
