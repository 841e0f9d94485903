package ecs

import (
	"github.com/phanxgames/oriel"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// TrackingEventType is the Donburi event type for oriel tracking events.
// Subscribe to this in your ECS systems to receive registration and
// tracking loss/regain events.
var TrackingEventType = events.NewEventType[oriel.TrackingEvent]()

// TrackedDeviceData mirrors one tracked binding.
type TrackedDeviceData struct {
	NodeID   uint32
	Node     string
	EntityID uint32
	Device   int
	Role     oriel.DeviceRole
	ByRole   bool
	Stale    bool
	// Frame is the pose frame of the last state change.
	Frame uint64
}

// TrackedDevice is the component attached to mirror entities.
var TrackedDevice = donburi.NewComponentType[TrackedDeviceData]()

// DonburiStore is an EntityStore backed by a Donburi world.
type DonburiStore struct {
	world    donburi.World
	entities map[uint32]donburi.Entity
}

var _ oriel.EntityStore = (*DonburiStore)(nil)

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Tracking events are published to TrackingEventType and can be consumed
// with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) *DonburiStore {
	return &DonburiStore{world: world, entities: make(map[uint32]donburi.Entity)}
}

// EmitEvent publishes event and updates the mirror entity of its node.
func (s *DonburiStore) EmitEvent(event oriel.TrackingEvent) {
	s.mirror(event)
	TrackingEventType.Publish(s.world, event)
}

// Entity returns the mirror entity of the binding for the node with the
// given ID. Node names are not unique, so bindings are keyed by ID.
func (s *DonburiStore) Entity(nodeID uint32) (donburi.Entity, bool) {
	e, ok := s.entities[nodeID]
	if !ok || !s.world.Valid(e) {
		return 0, false
	}
	return e, true
}

// Device returns the mirrored state of the binding for the node with the
// given ID.
func (s *DonburiStore) Device(nodeID uint32) (TrackedDeviceData, bool) {
	e, ok := s.Entity(nodeID)
	if !ok {
		return TrackedDeviceData{}, false
	}
	return *TrackedDevice.Get(s.world.Entry(e)), true
}

// Len returns the number of mirrored bindings.
func (s *DonburiStore) Len() int { return len(s.entities) }

func (s *DonburiStore) mirror(ev oriel.TrackingEvent) {
	switch ev.Type {
	case oriel.EventDeviceRegistered:
		e, ok := s.Entity(ev.NodeID)
		if !ok {
			e = s.world.Create(TrackedDevice)
			s.entities[ev.NodeID] = e
		}
		TrackedDevice.SetValue(s.world.Entry(e), TrackedDeviceData{
			NodeID:   ev.NodeID,
			Node:     ev.Node,
			EntityID: ev.EntityID,
			Device:   ev.Device,
			Role:     ev.Role,
			ByRole:   ev.ByRole,
			Frame:    ev.Frame,
		})
	case oriel.EventDeviceUnregistered:
		if e, ok := s.Entity(ev.NodeID); ok {
			s.world.Remove(e)
		}
		delete(s.entities, ev.NodeID)
	case oriel.EventTrackingLost, oriel.EventTrackingRegained:
		e, ok := s.Entity(ev.NodeID)
		if !ok {
			return
		}
		d := TrackedDevice.Get(s.world.Entry(e))
		d.Stale = ev.Type == oriel.EventTrackingLost
		d.Device = ev.Device
		d.Frame = ev.Frame
	}
}
