// Package hako implements a chunked, archetype-based entity/component storage
// engine.
//
// Entities are grouped by their exact set of components (an Archetype) and
// stored in fixed-capacity, column-major chunks: one identity column plus one
// Column per component, kept in lockstep by swap-removal. Adding or removing a
// component moves the entity to the archetype of its new component set; only
// the moved entity and the one swapped into its old slot change location.
//
// Component values live in one of three RawArray strategies chosen at
// registration: packed numeric records (RegisterStruct), boxed values
// (RegisterObject) or data-less tags (RegisterTag).
//
// The engine is single-threaded. An EntityManager must not be used from more
// than one goroutine without external synchronization.
package hako

import (
	"iter"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EntityManager owns the component types, archetypes, entity locations and
// query cache of one storage engine instance, and performs every structural
// change.
type EntityManager struct {
	logger     zerolog.Logger
	bus        *EventBus
	alive      *ComponentType[Tag]
	queries    map[queryKey]Query
	pending    []func()
	components componentRegistry
	archetypes archetypeRegistry
	entities   entityRegistry
	scratch    componentValues
	cs         []Component

	chunkCapacity   int
	initialCapacity int
}

// NewEntityManager creates an empty storage engine. The built-in Alive tag is
// registered first and therefore always has ComponentID 0.
//
// Parameters:
//   - opts: Functional options such as WithLogger, WithChunkCapacity,
//     WithInitialCapacity and WithEventBus.
//
// Returns:
//   - The newly created EntityManager.
func NewEntityManager(opts ...Option) *EntityManager {
	em := &EntityManager{
		logger:          log.Logger,
		queries:         make(map[queryKey]Query),
		components:      newComponentRegistry(),
		chunkCapacity:   DefaultChunkCapacity,
		initialCapacity: 1024,
	}
	for _, opt := range opts {
		opt(em)
	}
	em.entities = newEntityRegistry(em.initialCapacity)
	em.archetypes = newArchetypeRegistry(&em.components, em.chunkCapacity, em.archetypeCreated)
	em.alive = RegisterTag(em, "Alive")
	return em
}

func (em *EntityManager) archetypeCreated(a *Archetype) {
	em.logger.Debug().
		Str("archetype", a.String()).
		Uint64("archetype_version", em.archetypes.version).
		Msg("archetype created")
	post(em, ArchetypeCreated{Archetype: a})
}

// Alive returns the liveness marker attached to every archetype created from
// user-supplied components. Residual archetypes holding the system-state
// leftovers of deleted entities lack it, so a query excluding Alive finds
// exactly the tombstones.
func (em *EntityManager) Alive() *ComponentType[Tag] { return em.alive }

// LookupComponent returns the component type registered under name.
func (em *EntityManager) LookupComponent(name string) (Component, bool) {
	m := em.components.byNameOrNil(name)
	if m == nil {
		return nil, false
	}
	return m.handle, true
}

// Len returns the number of entity IDs in use, tombstones included.
func (em *EntityManager) Len() int { return em.entities.len() }

// ArchetypeVersion returns the archetype registry version. It starts at 1 and
// grows by one each time a new component combination is seen.
func (em *EntityManager) ArchetypeVersion() uint64 { return em.archetypes.version }

// GetArchetype returns the archetype for cs plus the Alive tag, creating it
// if needed. It panics if cs repeats a component or contains Alive.
func (em *EntityManager) GetArchetype(cs ...Component) *Archetype {
	a := em.archetypes.get(cs, true)
	em.flush()
	return a
}

// Archetypes yields every archetype in creation order.
func (em *EntityManager) Archetypes() iter.Seq[*Archetype] {
	return em.archetypes.all()
}

// CreateEntity creates an entity carrying the given component values and the
// Alive tag. The archetype is looked up, or created, from the set of value
// types.
//
// Parameters:
//   - data: One value per component, built with ComponentType.With. It panics
//     with ErrEmptyEntity when empty and with ErrDuplicateComponent when a
//     component repeats.
//
// Returns:
//   - The identity of the new entity.
func (em *EntityManager) CreateEntity(data ...ComponentData) Entity {
	if len(data) == 0 {
		panic(ErrEmptyEntity)
	}
	cs := em.cs[:0]
	for _, d := range data {
		cs = append(cs, d.c)
	}
	a := em.archetypes.get(cs, true)
	clear(cs)
	em.cs = cs[:0]
	return em.CreateEntityOfArchetype(a, data...)
}

// CreateEntityOfArchetype creates an entity in a. data must provide a value
// for every component of a except Alive; values for components a lacks are
// ignored.
func (em *EntityManager) CreateEntityOfArchetype(a *Archetype, data ...ComponentData) Entity {
	if a.owner != &em.components {
		panic(eris.Wrapf(ErrForeignComponent, "archetype %s", a))
	}
	em.scratch.clear()
	for _, d := range data {
		m := em.components.resolve(d.c)
		em.scratch.set(m.id, d.value)
	}
	if a.mask.containsBit(aliveID) {
		em.scratch.set(aliveID, Tag{})
	}
	chunkIndex, index := a.addEntityData(&em.scratch, Entity{}, false)
	em.scratch.clear()
	e := em.entities.add(a, chunkIndex, index)
	post(em, EntityCreated{Entity: e, Archetype: a})
	em.flush()
	return e
}

// Exists reports whether e refers to a stored entity, tombstones included.
func (em *EntityManager) Exists(e Entity) bool {
	return em.entities.info(e) != nil
}

// ArchetypeOf returns the archetype e currently lives in, or nil when e is
// stale.
func (em *EntityManager) ArchetypeOf(e Entity) *Archetype {
	info := em.entities.info(e)
	if info == nil {
		return nil
	}
	return info.archetype
}

// HasComponent reports whether e carries c. It is false for stale entities.
func (em *EntityManager) HasComponent(e Entity, c Component) bool {
	info := em.entities.info(e)
	if info == nil {
		return false
	}
	return info.archetype.Has(c)
}

// GetComponentData returns the values of cs on e, in the order given.
func (em *EntityManager) GetComponentData(e Entity, cs ...Component) ([]any, error) {
	info := em.entities.info(e)
	if info == nil {
		return nil, eris.Wrapf(ErrStaleEntity, "%s", e)
	}
	chunk := info.archetype.chunks[info.chunkIndex]
	out := make([]any, len(cs))
	for i, c := range cs {
		m, ok := em.components.lookup(c)
		if !ok || !info.archetype.hasMeta(m) {
			return nil, eris.Wrapf(ErrComponentNotOnEntity, "%v on %s", c, e)
		}
		out[i] = chunk.columns[m.id].value(info.index)
	}
	return out, nil
}

// GetComponent returns the value of ct on e.
//
// Parameters:
//   - em: The manager storing e.
//   - e: The entity to read.
//   - ct: The component type to read.
//
// Returns:
//   - The stored value, or the zero value and an error wrapping ErrStaleEntity
//     or ErrComponentNotOnEntity.
func GetComponent[T any](em *EntityManager, e Entity, ct *ComponentType[T]) (T, error) {
	col, index, err := em.locate(e, ct.m)
	if err != nil {
		var zero T
		return zero, err
	}
	return col.(*Column[T]).Get(index), nil
}

// SetComponent overwrites the value of ct on e in place. Unlike AddComponent
// it never moves the entity; e must already carry ct.
func SetComponent[T any](em *EntityManager, e Entity, ct *ComponentType[T], v T) error {
	col, index, err := em.locate(e, ct.m)
	if err != nil {
		return err
	}
	col.(*Column[T]).Set(index, v)
	return nil
}

func (em *EntityManager) locate(e Entity, m *componentMeta) (column, int, error) {
	info := em.entities.info(e)
	if info == nil {
		return nil, 0, eris.Wrapf(ErrStaleEntity, "%s", e)
	}
	if !info.archetype.hasMeta(m) {
		return nil, 0, eris.Wrapf(ErrComponentNotOnEntity, "%s on %s", m.name, e)
	}
	return info.archetype.chunks[info.chunkIndex].columns[m.id], info.index, nil
}

// AddComponent attaches the given component values to e, moving it to the
// archetype of its new component set.
//
// Parameters:
//   - e: The entity to extend.
//   - data: The values to attach.
//
// Returns:
//   - true on success. false, with a warning logged and nothing changed, when
//     e is stale, already carries one of the components or a component belongs
//     to another manager.
func (em *EntityManager) AddComponent(e Entity, data ...ComponentData) bool {
	err := em.addComponents(e, data)
	em.flush()
	if err != nil {
		em.logger.Warn().Err(err).Stringer("entity", e).Msg("add component rejected")
		return false
	}
	return true
}

func (em *EntityManager) addComponents(e Entity, data []ComponentData) error {
	info := em.entities.info(e)
	if info == nil {
		return eris.Wrapf(ErrStaleEntity, "%s", e)
	}
	old := info.archetype
	mask := old.mask
	for _, d := range data {
		m, ok := em.components.lookup(d.c)
		if !ok {
			return eris.Wrapf(ErrForeignComponent, "%v", d.c)
		}
		if mask.containsBit(m.id) {
			return eris.Wrapf(ErrComponentAlreadyOnEntity, "%s on %s", m.name, e)
		}
		mask.set(m.id)
	}
	if len(data) == 0 {
		return nil
	}

	chunk := old.chunks[info.chunkIndex]
	for _, m := range old.comps {
		em.scratch.set(m.id, chunk.columns[m.id].value(info.index))
	}
	for _, d := range data {
		em.scratch.set(d.c.ID(), d.value)
	}
	em.move(e, info, em.archetypes.forMask(mask))

	added := make([]Component, len(data))
	for i, d := range data {
		added[i] = d.c
	}
	post(em, ComponentsAdded{Entity: e, Components: added})
	return nil
}

// RemoveComponent detaches cs from e, moving it to the archetype of the
// remaining components. When nothing remains the entity's ID is released.
//
// Parameters:
//   - e: The entity to shrink.
//   - cs: The component types to detach.
//
// Returns:
//   - true on success. false, with a warning logged and nothing changed, when
//     e is stale or lacks one of the components.
func (em *EntityManager) RemoveComponent(e Entity, cs ...Component) bool {
	err := em.removeComponents(e, cs)
	em.flush()
	if err != nil {
		em.logger.Warn().Err(err).Stringer("entity", e).Msg("remove component rejected")
		return false
	}
	return true
}

func (em *EntityManager) removeComponents(e Entity, cs []Component) error {
	info := em.entities.info(e)
	if info == nil {
		return eris.Wrapf(ErrStaleEntity, "%s", e)
	}
	old := info.archetype
	mask := old.mask
	for _, c := range cs {
		m, ok := em.components.lookup(c)
		if !ok || !mask.containsBit(m.id) {
			return eris.Wrapf(ErrComponentNotOnEntity, "%v on %s", c, e)
		}
		mask.unset(m.id)
	}
	if len(cs) == 0 {
		return nil
	}

	removed := append([]Component(nil), cs...)
	if mask.isZero() {
		em.relocate(old.removeEntityData(info.chunkIndex, info.index))
		if err := em.entities.remove(e); err != nil {
			return err
		}
		post(em, ComponentsRemoved{Entity: e, Components: removed, Released: true})
		return nil
	}

	chunk := old.chunks[info.chunkIndex]
	for _, m := range old.comps {
		if mask.containsBit(m.id) {
			em.scratch.set(m.id, chunk.columns[m.id].value(info.index))
		}
	}
	em.move(e, info, em.archetypes.forMask(mask))
	post(em, ComponentsRemoved{Entity: e, Components: removed})
	return nil
}

// DeleteEntity removes e. If e carries system-state components it is moved
// into the residual archetype of exactly those components, without the Alive
// tag, and keeps its ID until they are removed; otherwise its ID is released
// and every copy of e becomes stale. It returns false and logs a warning when
// e is already stale.
//
// Deleting an entity that is already a tombstone keeps it in its residual
// archetype; the ID is released once its last system-state component is
// removed.
func (em *EntityManager) DeleteEntity(e Entity) bool {
	err := em.deleteEntity(e)
	em.flush()
	if err != nil {
		em.logger.Warn().Err(err).Stringer("entity", e).Msg("delete entity rejected")
		return false
	}
	return true
}

func (em *EntityManager) deleteEntity(e Entity) error {
	info := em.entities.info(e)
	if info == nil {
		return eris.Wrapf(ErrStaleEntity, "%s", e)
	}
	old := info.archetype
	ss := old.systemStateMetas()
	if len(ss) == 0 {
		em.relocate(old.removeEntityData(info.chunkIndex, info.index))
		if err := em.entities.remove(e); err != nil {
			return err
		}
		post(em, EntityDeleted{Entity: e})
		return nil
	}

	var mask bitmask256
	chunk := old.chunks[info.chunkIndex]
	for _, m := range ss {
		mask.set(m.id)
		em.scratch.set(m.id, chunk.columns[m.id].value(info.index))
	}
	em.move(e, info, em.archetypes.forMask(mask))
	post(em, EntityDeleted{Entity: e, Tombstoned: true})
	return nil
}

// move removes e's row from its current chunk, fixes up whichever entity was
// swapped into the vacated slot, and appends the values staged in scratch to
// dst.
func (em *EntityManager) move(e Entity, info *entityMeta, dst *Archetype) {
	em.relocate(info.archetype.removeEntityData(info.chunkIndex, info.index))
	chunkIndex, index := dst.addEntityData(&em.scratch, e, true)
	em.scratch.clear()
	info.archetype = dst
	info.chunkIndex = chunkIndex
	info.index = index
}

// relocate applies the outcome of a swap-removal to the entity table.
func (em *EntityManager) relocate(r Relocation) {
	if !r.Moved {
		return
	}
	moved := em.entities.info(r.Entity)
	if moved == nil {
		panic(eris.Wrapf(ErrStaleEntity, "relocated %s has no location", r.Entity))
	}
	moved.index = r.Index
}

// GetQuery returns the cached query for f. Filters with the same components,
// in any order, share one Query. An empty filter matches every archetype.
//
// Parameters:
//   - f: The include and exclude component sets. Components of another
//     manager panic with ErrForeignComponent.
//
// Returns:
//   - The shared Query for the normalized filter.
func (em *EntityManager) GetQuery(f Filter) Query {
	var key queryKey
	for _, c := range f.Include {
		key.include.set(em.components.resolve(c).id)
	}
	for _, c := range f.Exclude {
		key.exclude.set(em.components.resolve(c).id)
	}
	if q, ok := em.queries[key]; ok {
		return q
	}
	var q Query
	if key.include.isZero() && key.exclude.isZero() {
		q = &fullQuery{archetypes: &em.archetypes}
	} else {
		q = &query{archetypes: &em.archetypes, key: key}
	}
	em.queries[key] = q
	return q
}
