package hako

import (
	"github.com/rotisserie/eris"
)

// MaxComponentTypes defines the maximum number of unique component types that
// can be registered with one EntityManager, including the built-in Alive tag.
const MaxComponentTypes = 256

// ComponentID is the handle identity of a registered component type. IDs are
// assigned densely per EntityManager in registration order; the Alive tag is
// always 0.
type ComponentID uint8

const aliveID ComponentID = 0

// Component is the type-erased view of a *ComponentType, used wherever a list
// of component types of different value types is needed: archetype lookups,
// query filters and component removal.
type Component interface {
	ID() ComponentID
	Name() string
	IsSystemState() bool
	meta() *componentMeta
}

// componentMeta is what the storage layer knows about a component type.
type componentMeta struct {
	handle      Component
	owner       *componentRegistry
	newColumn   func(capacity int) column
	name        string
	systemState bool
	id          ComponentID
}

// ComponentType is the handle returned by RegisterStruct, RegisterObject and
// RegisterTag. Components are compared by handle identity; the name only
// serves diagnostics and the canonical archetype string.
type ComponentType[T any] struct {
	m      *componentMeta
	newRaw func(capacity int) RawArray[T]
}

func (c *ComponentType[T]) ID() ComponentID      { return c.m.id }
func (c *ComponentType[T]) Name() string         { return c.m.name }
func (c *ComponentType[T]) IsSystemState() bool  { return c.m.systemState }
func (c *ComponentType[T]) String() string       { return c.m.name }
func (c *ComponentType[T]) meta() *componentMeta { return c.m }

// NewRawArray creates a fresh backing of the given capacity for this
// component type.
func (c *ComponentType[T]) NewRawArray(capacity int) RawArray[T] {
	return c.newRaw(capacity)
}

// With pairs a value with its component type, for entity creation and
// AddComponent.
func (c *ComponentType[T]) With(v T) ComponentData {
	return ComponentData{c: c, value: v}
}

// ComponentData is one component value tagged with its type.
type ComponentData struct {
	c     Component
	value any
}

// Component returns the type of the carried value.
func (d ComponentData) Component() Component { return d.c }

// Value returns the carried value.
func (d ComponentData) Value() any { return d.value }

// Tag is the value type of marker components.
type Tag struct{}

// ComponentOption configures a component type at registration.
type ComponentOption func(*componentMeta)

// SystemState marks a component type as persisting through deletion: deleting
// an entity that carries it moves the entity into a residual archetype holding
// only its system-state components instead of releasing its ID.
func SystemState() ComponentOption {
	return func(m *componentMeta) {
		m.systemState = true
	}
}

// RegisterStruct registers a component type stored in a packed numeric
// StructArray.
//
// Parameters:
//   - em: The manager owning the component type.
//   - name: A unique, human-readable name used in diagnostics and archetype
//     names. It panics with ErrDuplicateComponent if already registered.
//   - def: The static field layout and the read and write callbacks.
//   - opts: Options such as SystemState.
//
// Returns:
//   - The handle used in values, filters and column lookups. It panics with
//     ErrTooManyComponents past MaxComponentTypes.
func RegisterStruct[T any](em *EntityManager, name string, def StructDef[T], opts ...ComponentOption) *ComponentType[T] {
	return register(em, name, func(capacity int) RawArray[T] {
		return NewStructArray(def, capacity)
	}, opts)
}

// RegisterObject registers a component type stored as boxed values in an
// ObjectArray. zero is the default written when a slot is reset.
func RegisterObject[T any](em *EntityManager, name string, zero T, opts ...ComponentOption) *ComponentType[T] {
	return register(em, name, func(capacity int) RawArray[T] {
		return NewObjectArray(capacity, zero)
	}, opts)
}

// RegisterTag registers a data-less marker component stored in a TagArray.
func RegisterTag(em *EntityManager, name string, opts ...ComponentOption) *ComponentType[Tag] {
	return register(em, name, func(capacity int) RawArray[Tag] {
		return NewTagArray(capacity, Tag{})
	}, opts)
}

func register[T any](em *EntityManager, name string, newRaw func(int) RawArray[T], opts []ComponentOption) *ComponentType[T] {
	ct := &ComponentType[T]{newRaw: newRaw}
	m := em.components.add(name, func(capacity int) column {
		return NewColumn(newRaw(capacity))
	})
	for _, opt := range opts {
		opt(m)
	}
	m.handle = ct
	ct.m = m
	return ct
}

// componentRegistry holds the component types of one EntityManager.
type componentRegistry struct {
	byName map[string]ComponentID
	metas  [MaxComponentTypes]*componentMeta
	count  int
}

func newComponentRegistry() componentRegistry {
	return componentRegistry{byName: make(map[string]ComponentID, 16)}
}

func (r *componentRegistry) add(name string, newColumn func(int) column) *componentMeta {
	if _, ok := r.byName[name]; ok {
		panic(eris.Wrapf(ErrDuplicateComponent, "component %q already registered", name))
	}
	if r.count >= MaxComponentTypes {
		panic(eris.Wrapf(ErrTooManyComponents, "cannot register %q: limit is %d", name, MaxComponentTypes))
	}
	m := &componentMeta{
		owner:     r,
		newColumn: newColumn,
		name:      name,
		id:        ComponentID(r.count),
	}
	r.metas[m.id] = m
	r.byName[name] = m.id
	r.count++
	return m
}

// lookup returns the metadata of c if c was registered here.
func (r *componentRegistry) lookup(c Component) (*componentMeta, bool) {
	if c == nil {
		return nil, false
	}
	m := c.meta()
	if m == nil || m.owner != r {
		return nil, false
	}
	return m, true
}

// resolve is lookup for paths where a foreign component is a contract
// violation.
func (r *componentRegistry) resolve(c Component) *componentMeta {
	m, ok := r.lookup(c)
	if !ok {
		panic(eris.Wrapf(ErrForeignComponent, "%v", c))
	}
	return m
}

func (r *componentRegistry) byNameOrNil(name string) *componentMeta {
	id, ok := r.byName[name]
	if !ok {
		return nil
	}
	return r.metas[id]
}
