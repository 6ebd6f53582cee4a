package hako

import (
	"iter"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// archetypeRegistry deduplicates archetypes by their component mask. An
// archetype, once created, is never removed. version starts at 1 and is
// bumped only when a new archetype is registered; it is the only signal
// query caches use to recompute their matches.
type archetypeRegistry struct {
	components *componentRegistry
	byMask     map[bitmask256]*Archetype // lookup mask→archetype
	archetypes []*Archetype              // creation order
	onCreate   func(*Archetype)
	capacity   int // slots per chunk
	version    uint64
}

func newArchetypeRegistry(components *componentRegistry, capacity int, onCreate func(*Archetype)) archetypeRegistry {
	return archetypeRegistry{
		components: components,
		byMask:     make(map[bitmask256]*Archetype),
		archetypes: make([]*Archetype, 0, 16),
		onCreate:   onCreate,
		capacity:   capacity,
		version:    1,
	}
}

// get canonicalizes cs, optionally unioned with the Alive tag, and returns
// the archetype for that set. An empty set or a repeated component panics.
func (r *archetypeRegistry) get(cs []Component, addAlive bool) *Archetype {
	var mask bitmask256
	if addAlive {
		mask.set(aliveID)
	}
	for _, c := range cs {
		m := r.components.resolve(c)
		if mask.containsBit(m.id) {
			panic(eris.Wrapf(ErrDuplicateComponent, "%s", m.name))
		}
		mask.set(m.id)
	}
	return r.forMask(mask)
}

// forMask returns the archetype for mask, creating it on first sight.
func (r *archetypeRegistry) forMask(mask bitmask256) *Archetype {
	if a, ok := r.byMask[mask]; ok {
		return a
	}
	if mask.isZero() {
		panic(ErrEmptyArchetype)
	}
	comps := make([]*componentMeta, 0, mask.count())
	mask.forEach(func(id ComponentID) {
		comps = append(comps, r.components.metas[id])
	})
	slices.SortFunc(comps, func(a, b *componentMeta) int {
		return strings.Compare(a.name, b.name)
	})
	a := newArchetype(r.components, mask, comps, r.capacity)
	r.byMask[mask] = a
	r.archetypes = append(r.archetypes, a)
	r.version++
	if r.onCreate != nil {
		r.onCreate(a)
	}
	return a
}

func (r *archetypeRegistry) all() iter.Seq[*Archetype] {
	return slices.Values(r.archetypes)
}
