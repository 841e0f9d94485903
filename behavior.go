package oriel

import "fmt"

// Behavior is a per-frame update hook attached to a node. Implementations
// embed BehaviorBase, which records the owning node:
//
//	type spin struct {
//		oriel.BehaviorBase
//		speed float32
//	}
//
//	func (s *spin) Update(dt float64) {
//		s.Node().Rotate(s.speed*float32(dt), mgl32.Vec3{0, 1, 0})
//	}
//
// Update may mutate any reachable node, including restructuring the tree:
// the scene iterates over a snapshot.
type Behavior interface {
	Update(dt float64)
	base() *BehaviorBase
}

// BehaviorBase is embedded by every Behavior implementation.
type BehaviorBase struct {
	node *Node
}

func (b *BehaviorBase) base() *BehaviorBase { return b }

// Node returns the node the behavior is attached to, or nil.
func (b *BehaviorBase) Node() *Node { return b.node }

// Attacher is implemented by behaviors that want a callback after being
// attached to a node.
type Attacher interface {
	OnAttach(n *Node)
}

// Detacher is implemented by behaviors that want a callback when removed
// from a node (including on Dispose).
type Detacher interface {
	OnDetach(n *Node)
}

// BehaviorFunc adapts a plain function to a Behavior.
type BehaviorFunc struct {
	BehaviorBase
	Fn func(n *Node, dt float64)
}

// NewBehaviorFunc wraps fn as a Behavior.
func NewBehaviorFunc(fn func(n *Node, dt float64)) *BehaviorFunc {
	return &BehaviorFunc{Fn: fn}
}

func (b *BehaviorFunc) Update(dt float64) {
	if b.Fn != nil {
		b.Fn(b.node, dt)
	}
}

// AddBehavior attaches b to n. A behavior belongs to one node at a time;
// attaching it again returns ErrBehaviorAttached.
func (n *Node) AddBehavior(b Behavior) error {
	if b == nil {
		return fmt.Errorf("add behavior to %q: nil behavior", n.Name)
	}
	if n.disposed {
		return fmt.Errorf("add behavior to %q: %w", n.Name, ErrDisposed)
	}
	bb := b.base()
	if bb.node != nil {
		return fmt.Errorf("add behavior to %q (attached to %q): %w", n.Name, bb.node.Name, ErrBehaviorAttached)
	}
	bb.node = n
	n.behaviors = append(n.behaviors, b)
	if a, ok := b.(Attacher); ok {
		a.OnAttach(n)
	}
	return nil
}

// RemoveBehavior detaches b from n. It reports whether b was attached to n.
func (n *Node) RemoveBehavior(b Behavior) bool {
	for i, c := range n.behaviors {
		if c == b {
			copy(n.behaviors[i:], n.behaviors[i+1:])
			n.behaviors[len(n.behaviors)-1] = nil
			n.behaviors = n.behaviors[:len(n.behaviors)-1]
			detachBehavior(n, b)
			return true
		}
	}
	return false
}

// Behaviors returns the attached behaviors in attach order. The returned
// slice MUST NOT be mutated.
func (n *Node) Behaviors() []Behavior {
	return n.behaviors
}

// BehaviorOf returns the first behavior attached to n that satisfies T.
// T may be a concrete pointer type or an interface describing a capability.
func BehaviorOf[T any](n *Node) (T, bool) {
	for _, b := range n.behaviors {
		if t, ok := b.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

func detachBehavior(n *Node, b Behavior) {
	b.base().node = nil
	if d, ok := b.(Detacher); ok {
		d.OnDetach(n)
	}
}

// updateBehaviors runs every behavior of the given nodes. nodes is a
// snapshot taken before any behavior ran; nodes detached from scene s or
// disposed by an earlier behavior are skipped.
func updateBehaviors(s *Scene, nodes []*Node, dt float64) {
	var buf []Behavior
	for _, n := range nodes {
		if n.disposed || n.scene != s || len(n.behaviors) == 0 {
			continue
		}
		buf = append(buf[:0], n.behaviors...)
		for _, b := range buf {
			if b.base().node != n {
				continue
			}
			b.Update(dt)
		}
	}
}
