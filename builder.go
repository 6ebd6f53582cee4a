package hako

import "github.com/rotisserie/eris"

// Builder creates entities of one archetype without resolving the component
// set on every call.
type Builder struct {
	em   *EntityManager
	arch *Archetype
}

// NewBuilder returns a builder for the archetype of cs plus the Alive tag.
//
// Parameters:
//   - em: The manager the entities are created in.
//   - cs: The component types every built entity carries.
//
// Returns:
//   - A Builder pinned to that archetype.
func NewBuilder(em *EntityManager, cs ...Component) *Builder {
	return &Builder{em: em, arch: em.GetArchetype(cs...)}
}

// Archetype ...
func (b *Builder) Archetype() *Archetype { return b.arch }

// NewEntity ...
func (b *Builder) NewEntity(data ...ComponentData) Entity {
	return b.em.CreateEntityOfArchetype(b.arch, data...)
}

// NewEntities creates count entities that all start with the same values.
//
// Parameters:
//   - count: The number of entities to create. Values <= 0 create nothing.
//   - data: One value per component of the builder's archetype.
//
// Returns:
//   - The new entities in creation order.
func (b *Builder) NewEntities(count int, data ...ComponentData) []Entity {
	if count <= 0 {
		return nil
	}
	em := b.em
	a := b.arch
	em.scratch.clear()
	for _, d := range data {
		m := em.components.resolve(d.c)
		em.scratch.set(m.id, d.value)
	}
	if a.mask.containsBit(aliveID) {
		em.scratch.set(aliveID, Tag{})
	}
	out := make([]Entity, count)
	for k := range out {
		chunkIndex, index := a.addEntityData(&em.scratch, Entity{}, false)
		e := em.entities.add(a, chunkIndex, index)
		post(em, EntityCreated{Entity: e, Archetype: a})
		out[k] = e
	}
	em.scratch.clear()
	em.flush()
	return out
}

// Set overwrites the given values on e in place and adds, with a single move,
// the components e does not carry yet.
//
// Parameters:
//   - e: The entity to update.
//   - data: The component values to write or add.
//
// Returns:
//   - true on success. false, with a warning logged and nothing changed, when
//     e is stale or data names a foreign component or repeats a missing one.
func (b *Builder) Set(e Entity, data ...ComponentData) bool {
	em := b.em
	err := b.set(e, data)
	em.flush()
	if err != nil {
		em.logger.Warn().Err(err).Stringer("entity", e).Msg("set rejected")
		return false
	}
	return true
}

func (b *Builder) set(e Entity, data []ComponentData) error {
	em := b.em
	info := em.entities.info(e)
	if info == nil {
		return eris.Wrapf(ErrStaleEntity, "%s", e)
	}
	var added bitmask256
	var present, missing []ComponentData
	for _, d := range data {
		m, ok := em.components.lookup(d.c)
		if !ok {
			return eris.Wrapf(ErrForeignComponent, "%v", d.c)
		}
		if info.archetype.hasMeta(m) {
			present = append(present, d)
			continue
		}
		if added.containsBit(m.id) {
			return eris.Wrapf(ErrDuplicateComponent, "%s on %s", m.name, e)
		}
		added.set(m.id)
		missing = append(missing, d)
	}

	if len(missing) > 0 {
		if err := em.addComponents(e, missing); err != nil {
			return err
		}
		info = em.entities.info(e)
	}
	chunk := info.archetype.chunks[info.chunkIndex]
	for _, d := range present {
		chunk.columns[d.c.ID()].setValue(info.index, d.value)
	}
	return nil
}

// SetBatch ...
func (b *Builder) SetBatch(entities []Entity, data ...ComponentData) {
	for _, e := range entities {
		b.Set(e, data...)
	}
}
