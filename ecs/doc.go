// Package ecs provides ECS adapters for oriel's tracking events.
//
// The primary adapter is [NewDonburiStore], which bridges device
// registration and tracking loss/regain events into a [Donburi] world as
// typed events, and mirrors every tracked binding as an entity carrying a
// [TrackedDevice] component. Subscribe to [TrackingEventType] in your ECS
// systems to receive the events.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
