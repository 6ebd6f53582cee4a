package hako

import "reflect"

// MaxEventTypes defines the maximum number of unique event types that can be
// subscribed to on one EventBus.
const MaxEventTypes = 256

// EventBus is a synchronous, type-keyed pub/sub bus. Attached to an
// EntityManager with WithEventBus, it receives the structural events below
// once the change that caused them has fully completed, so handlers may
// safely call back into the manager.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [MaxEventTypes][]any
	nextEventTypeID int
}

// EntityCreated is published after an entity was created.
type EntityCreated struct {
	Entity    Entity
	Archetype *Archetype
}

// ComponentsAdded is published after AddComponent moved an entity.
type ComponentsAdded struct {
	Entity     Entity
	Components []Component
}

// ComponentsRemoved is published after RemoveComponent moved an entity.
// Released is true when no component was left and the ID was freed.
type ComponentsRemoved struct {
	Entity     Entity
	Components []Component
	Released   bool
}

// EntityDeleted is published after DeleteEntity. Tombstoned is true when the
// entity carried system-state components and was moved into the residual
// archetype holding them instead of being released.
type EntityDeleted struct {
	Entity     Entity
	Tombstoned bool
}

// ArchetypeCreated is published after a new component combination was seen
// for the first time.
type ArchetypeCreated struct {
	Archetype *Archetype
}

// Subscribe registers a handler function to be called when an event of type `T`
// is published. Handlers are stored in the order they are subscribed.
//
// Parameters:
//   - bus: The EventBus instance to subscribe to.
//   - handler: A function that takes a single argument of type `T`.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	id := bus.getEventTypeID(reflect.TypeFor[T]())
	if cap(bus.handlers[id]) == 0 {
		bus.handlers[id] = make([]any, 0, 4)
	}
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish broadcasts an event of type `T` to all registered handlers for that
// type. The handlers are called synchronously in the order they were subscribed.
//
// Parameters:
//   - bus: The EventBus instance to publish to.
//   - event: The event data of type `T` to be sent to handlers.
func Publish[T any](bus *EventBus, event T) {
	if id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]; ok {
		for _, h := range bus.handlers[id] {
			h.(func(T))(event)
		}
	}
}

// getEventTypeID retrieves or assigns an ID for the event type.
func (bus *EventBus) getEventTypeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if bus.nextEventTypeID >= MaxEventTypes {
		panic("hako: too many event types")
	}
	id := uint8(bus.nextEventTypeID)
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}

// post queues event for publication at the end of the current operation.
func post[T any](em *EntityManager, event T) {
	if em.bus == nil {
		return
	}
	bus := em.bus
	em.pending = append(em.pending, func() { Publish(bus, event) })
}

// flush publishes queued events. Handlers that mutate the manager queue their
// own events, which are drained by the same loop.
func (em *EntityManager) flush() {
	for len(em.pending) > 0 {
		fn := em.pending[0]
		em.pending = em.pending[1:]
		fn()
	}
}
