package hako

import (
	"github.com/rotisserie/eris"
)

// DefaultChunkCapacity is the number of entity slots in a chunk unless
// overridden with WithChunkCapacity.
const DefaultChunkCapacity = 512

// Relocation is the outcome of a swap-removal. When Moved is true, Entity was
// moved out of the last live slot and now occupies Index; its location record
// must be updated. When Moved is false nothing but the removed row changed.
type Relocation struct {
	Entity Entity
	Index  int
	Moved  bool
}

// Chunk is one fixed-capacity, column-major slice of an archetype. It owns an
// identity column and one Column per component of the archetype; all columns
// always have the same length and slot i across them describes one entity.
type Chunk struct {
	arch     *Archetype
	entities *Column[Entity]
	columns  [MaxComponentTypes]column // indexed by ComponentID
	index    int
}

func newChunk(a *Archetype, index, capacity int) *Chunk {
	c := &Chunk{
		arch:     a,
		entities: NewColumn[Entity](NewStructArray(entityDef, capacity)),
		index:    index,
	}
	for _, m := range a.comps {
		c.columns[m.id] = m.newColumn(capacity)
	}
	return c
}

// Len returns the number of entities stored in the chunk.
func (c *Chunk) Len() int { return c.entities.Len() }

// Cap returns the number of slots of the chunk.
func (c *Chunk) Cap() int { return c.entities.Cap() }

// IsFull reports whether every slot is in use.
func (c *Chunk) IsFull() bool { return c.entities.Len() >= c.entities.Cap() }

// Index returns the position of the chunk in its archetype.
func (c *Chunk) Index() int { return c.index }

// Archetype returns the archetype the chunk belongs to.
func (c *Chunk) Archetype() *Archetype { return c.arch }

// Entities returns the identity column. It must be treated as read-only.
func (c *Chunk) Entities() *Column[Entity] { return c.entities }

// Entity returns the identity stored at slot i.
func (c *Chunk) Entity(i int) Entity { return c.entities.Get(i) }

// ChunkColumn returns the column of ct in c.
//
// Example:
//
//	for chunk := range query.Chunks() {
//	    positions := hako.ChunkColumn(chunk, position)
//	    for i, p := range positions.All() {
//	        positions.Set(i, p.Add(velocity))
//	    }
//	}
//
// Parameters:
//   - c: The chunk, usually yielded by Query.Chunks.
//   - ct: The component type whose column is wanted.
//
// Returns:
//   - The typed column, or nil when c's archetype does not carry ct.
func ChunkColumn[T any](c *Chunk, ct *ComponentType[T]) *Column[T] {
	if !c.arch.hasMeta(ct.m) {
		return nil
	}
	return c.columns[ct.m.id].(*Column[T])
}

// addEntity appends one row. Every component of the archetype must have a
// value in vals. When assign is false the identity slot is left at its
// default, to be filled once an ID has been issued.
func (c *Chunk) addEntity(vals *componentValues, e Entity, assign bool) int {
	for _, m := range c.arch.comps {
		if !vals.has(m.id) {
			panic(eris.Wrapf(ErrMissingComponentValue, "%s in %s", m.name, c.arch))
		}
	}
	var i int
	if assign {
		i = c.entities.Append(e)
	} else {
		i = c.entities.AppendZero()
	}
	for _, m := range c.arch.comps {
		c.columns[m.id].appendValue(vals.vals[m.id])
	}
	return i
}

// removeEntity swap-removes slot i from every column in lockstep.
func (c *Chunk) removeEntity(i int) Relocation {
	moved, ok := c.entities.Remove(i)
	for _, m := range c.arch.comps {
		c.columns[m.id].remove(i)
	}
	if !ok {
		return Relocation{}
	}
	return Relocation{Entity: moved, Index: i, Moved: true}
}

// componentValues is the scratch buffer used to hand one row of component
// values from the entity manager to a chunk.
type componentValues struct {
	vals [MaxComponentTypes]any
	ids  []ComponentID
	mask bitmask256
}

func (v *componentValues) set(id ComponentID, x any) {
	if !v.mask.containsBit(id) {
		v.mask.set(id)
		v.ids = append(v.ids, id)
	}
	v.vals[id] = x
}

func (v *componentValues) has(id ComponentID) bool {
	return v.mask.containsBit(id)
}

func (v *componentValues) clear() {
	for _, id := range v.ids {
		v.vals[id] = nil
	}
	v.ids = v.ids[:0]
	v.mask = bitmask256{}
}
