package oriel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxTrackedDevices is the number of device slots in a pose snapshot.
const MaxTrackedDevices = 64

// DeviceRole names a tracked device by purpose rather than index.
type DeviceRole uint8

const (
	RoleHead DeviceRole = iota
	RoleLeftHand
	RoleRightHand
	RoleGeneric
)

func (r DeviceRole) String() string {
	switch r {
	case RoleHead:
		return "head"
	case RoleLeftHand:
		return "left_hand"
	case RoleRightHand:
		return "right_hand"
	case RoleGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// DevicePose is one device's entry in a pose snapshot. Matrix maps device
// space into tracking space and is only meaningful when Valid is set.
type DevicePose struct {
	Valid  bool
	Matrix mgl32.Mat4
}

// PoseSnapshot holds the poses of every device for one frame.
type PoseSnapshot struct {
	Poses [MaxTrackedDevices]DevicePose
}

// Reset marks every entry invalid.
func (p *PoseSnapshot) Reset() {
	clear(p.Poses[:])
}

// Tracker is the VR runtime. All calls are made from the frame loop.
type Tracker interface {
	// HeadToEyeTransform returns the eye's pose relative to the head.
	HeadToEyeTransform(eye Eye) mgl32.Mat4
	// ProjectionRaw returns the runtime's (possibly asymmetric) projection.
	ProjectionRaw(eye Eye, near, far float32) mgl32.Mat4
	// PollPoses fills dst with the latest poses of all devices in one call.
	PollPoses(dst *PoseSnapshot) error
	// SubmitFrame hands a finished eye image to the compositor.
	SubmitFrame(eye Eye, frame Texture) error
	// WaitForRunningStart blocks until the compositor is ready for the
	// next frame. It cannot be cancelled.
	WaitForRunningStart() error
	// DeviceForRole resolves a role to the device index currently filling it.
	DeviceForRole(role DeviceRole) (index int, ok bool)
}

// DeviceState is the life cycle of a tracked binding.
type DeviceState uint8

const (
	DeviceUnregistered DeviceState = iota
	DeviceRegistered               // bound, no pose applied yet
	DevicePosed                    // at least one pose applied
)

func (s DeviceState) String() string {
	switch s {
	case DeviceRegistered:
		return "registered"
	case DevicePosed:
		return "posed"
	default:
		return "unregistered"
	}
}

// TrackingEventType identifies a TrackingEvent.
type TrackingEventType uint8

const (
	EventDeviceRegistered TrackingEventType = iota
	EventDeviceUnregistered
	EventTrackingLost
	EventTrackingRegained
)

func (t TrackingEventType) String() string {
	switch t {
	case EventDeviceRegistered:
		return "registered"
	case EventDeviceUnregistered:
		return "unregistered"
	case EventTrackingLost:
		return "tracking_lost"
	case EventTrackingRegained:
		return "tracking_regained"
	default:
		return "unknown"
	}
}

// TrackingEvent carries binding changes to the ECS bridge. NodeID
// identifies the binding; Node is the node's name and need not be unique.
type TrackingEvent struct {
	Type     TrackingEventType
	NodeID   uint32
	EntityID uint32
	Node     string
	Device   int // -1 when a role binding is unresolved
	Role     DeviceRole
	ByRole   bool
	Frame    uint64
}

type binding struct {
	node   *Node
	nodeID uint32
	// store is the entity store the registration was announced to.
	store  EntityStore
	index  int
	role   DeviceRole
	byRole bool
	state  DeviceState
	stale  bool
}

// PoseTracker drives node local transforms from tracked device poses. Each
// frame it polls the tracker once into the pending buffer, swaps it with the
// current buffer and overwrites every bound node's local transform. A node
// whose device has no valid pose keeps its last transform and reports Stale.
//
// Nodes bound to tracked devices should be children of a node representing
// the tracking space origin.
type PoseTracker struct {
	tracker  Tracker
	bindings []*binding
	byNode   map[*Node]*binding

	buffers [2]PoseSnapshot
	pending *PoseSnapshot
	current *PoseSnapshot
	frame   uint64
}

// NewPoseTracker creates a PoseTracker polling t.
func NewPoseTracker(t Tracker) *PoseTracker {
	p := &PoseTracker{
		tracker: t,
		byNode:  make(map[*Node]*binding),
	}
	p.pending = &p.buffers[0]
	p.current = &p.buffers[1]
	return p
}

// Register binds n to the device at index.
func (p *PoseTracker) Register(n *Node, index int) error {
	if index < 0 || index >= MaxTrackedDevices {
		return fmt.Errorf("register %d: %w", index, ErrDeviceIndex)
	}
	return p.bind(&binding{node: n, index: index})
}

// RegisterRole binds n to whichever device fills role. The role is resolved
// again every frame.
func (p *PoseTracker) RegisterRole(n *Node, role DeviceRole) error {
	return p.bind(&binding{node: n, index: -1, role: role, byRole: true})
}

func (p *PoseTracker) bind(b *binding) error {
	n := b.node
	if n == nil {
		return ErrNilNode
	}
	if n.disposed {
		return fmt.Errorf("register %q: %w", n.Name, ErrDisposed)
	}
	if _, ok := p.byNode[n]; ok {
		return fmt.Errorf("register %q: %w", n.Name, ErrAlreadyRegistered)
	}
	b.state = DeviceRegistered
	b.nodeID = n.ID
	p.byNode[n] = b
	p.bindings = append(p.bindings, b)
	p.announce(b)
	Logger().Debug("tracked device registered", "node", n.Name, "device", b.index, "role", b.role.String(), "byRole", b.byRole)
	return nil
}

// Unregister removes n's binding. It reports whether n was bound.
func (p *PoseTracker) Unregister(n *Node) bool {
	b, ok := p.byNode[n]
	if !ok {
		return false
	}
	delete(p.byNode, n)
	for i, c := range p.bindings {
		if c == b {
			copy(p.bindings[i:], p.bindings[i+1:])
			p.bindings[len(p.bindings)-1] = nil
			p.bindings = p.bindings[:len(p.bindings)-1]
			break
		}
	}
	b.state = DeviceUnregistered
	if b.store != nil {
		b.store.EmitEvent(p.event(b, EventDeviceUnregistered))
		b.store = nil
	}
	return true
}

// State returns n's binding state.
func (p *PoseTracker) State(n *Node) DeviceState {
	if b, ok := p.byNode[n]; ok {
		return b.state
	}
	return DeviceUnregistered
}

// Stale reports whether n is bound and its device had no valid pose in the
// most recently applied snapshot.
func (p *PoseTracker) Stale(n *Node) bool {
	b, ok := p.byNode[n]
	return ok && b.stale
}

// Len returns the number of bindings.
func (p *PoseTracker) Len() int { return len(p.bindings) }

// Frame returns the number of snapshots applied so far.
func (p *PoseTracker) Frame() uint64 { return p.frame }

// Current returns the most recently applied snapshot. It MUST NOT be mutated.
func (p *PoseTracker) Current() *PoseSnapshot { return p.current }

// Poll fetches one snapshot into the pending buffer and swaps it in. On
// error the current snapshot is left as is.
func (p *PoseTracker) Poll() error {
	p.pending.Reset()
	if err := p.tracker.PollPoses(p.pending); err != nil {
		return fmt.Errorf("poll poses: %w", err)
	}
	p.pending, p.current = p.current, p.pending
	return nil
}

// Apply overwrites the local transform of every bound node from the current
// snapshot. Bindings to disposed nodes are dropped.
func (p *PoseTracker) Apply() {
	p.frame++
	for i := 0; i < len(p.bindings); i++ {
		b := p.bindings[i]
		if b.node.disposed {
			p.Unregister(b.node)
			i--
			continue
		}
		p.announce(b)
		idx := b.index
		if b.byRole {
			if r, ok := p.tracker.DeviceForRole(b.role); ok && r >= 0 && r < MaxTrackedDevices {
				idx = r
			} else {
				idx = -1
			}
			b.index = idx
		}
		if t, ok := p.poseFor(idx); ok {
			if err := b.node.SetLocal(t); err == nil {
				if b.stale && b.state == DevicePosed {
					p.emit(b, EventTrackingRegained)
					Logger().Info("tracking regained", "node", b.node.Name, "device", idx)
				}
				b.state = DevicePosed
				b.stale = false
				continue
			}
		}
		if !b.stale {
			b.stale = true
			if b.state == DevicePosed {
				p.emit(b, EventTrackingLost)
				Logger().Warn("tracking lost", "node", b.node.Name, "device", idx)
			}
		}
	}
}

// Update polls and applies. A failed poll applies nothing.
func (p *PoseTracker) Update() error {
	if err := p.Poll(); err != nil {
		return err
	}
	p.Apply()
	return nil
}

func (p *PoseTracker) poseFor(idx int) (Transform, bool) {
	if idx < 0 || idx >= MaxTrackedDevices {
		return Transform{}, false
	}
	pose := &p.current.Poses[idx]
	if !pose.Valid {
		return Transform{}, false
	}
	t, err := TransformFromMatrix(pose.Matrix)
	if err != nil {
		return Transform{}, false
	}
	return t, true
}

// announce moves b's registration to the entity store of the scene its node
// is in now. A node registered before joining a scene is announced once it
// has joined; a node that left is withdrawn from the old store.
func (p *PoseTracker) announce(b *binding) {
	var cur EntityStore
	if s := b.node.scene; s != nil {
		cur = s.store
	}
	if cur == b.store {
		return
	}
	if b.store != nil {
		b.store.EmitEvent(p.event(b, EventDeviceUnregistered))
	}
	b.store = cur
	if cur != nil {
		cur.EmitEvent(p.event(b, EventDeviceRegistered))
	}
}

func (p *PoseTracker) emit(b *binding, typ TrackingEventType) {
	p.announce(b)
	if b.store != nil {
		b.store.EmitEvent(p.event(b, typ))
	}
}

func (p *PoseTracker) event(b *binding, typ TrackingEventType) TrackingEvent {
	return TrackingEvent{
		Type:     typ,
		NodeID:   b.nodeID,
		EntityID: b.node.EntityID,
		Node:     b.node.Name,
		Device:   b.index,
		Role:     b.role,
		ByRole:   b.byRole,
		Frame:    p.frame,
	}
}
