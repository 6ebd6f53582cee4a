package hako

import (
	"iter"
	"strings"
)

// Archetype is the storage group for all entities sharing one exact set of
// components. It is created on first demand by the EntityManager and lives as
// long as the manager does, even when it holds no entities.
type Archetype struct {
	owner       *componentRegistry
	comps       []*componentMeta // sorted by name
	chunks      []*Chunk
	systemState []*componentMeta
	name        string
	capacity    int // slots per chunk
	size        int // live entities across chunks
	mask        bitmask256
	ssReady     bool
}

func newArchetype(owner *componentRegistry, mask bitmask256, comps []*componentMeta, capacity int) *Archetype {
	names := make([]string, len(comps))
	for i, m := range comps {
		names[i] = m.name
	}
	return &Archetype{
		owner:    owner,
		comps:    comps,
		chunks:   make([]*Chunk, 0, 4),
		name:     "type<" + strings.Join(names, ",") + ">",
		capacity: capacity,
		mask:     mask,
	}
}

// String returns the canonical form of the archetype, e.g. "type<Alive,Ball>".
func (a *Archetype) String() string { return a.name }

// Len returns the number of live entities in the archetype.
func (a *Archetype) Len() int { return a.size }

// Components returns the archetype's component types sorted by name.
func (a *Archetype) Components() []Component {
	out := make([]Component, len(a.comps))
	for i, m := range a.comps {
		out[i] = m.handle
	}
	return out
}

// Has reports whether the archetype carries c.
func (a *Archetype) Has(c Component) bool {
	m, ok := a.owner.lookup(c)
	return ok && a.mask.containsBit(m.id)
}

func (a *Archetype) hasMeta(m *componentMeta) bool {
	return m.owner == a.owner && a.mask.containsBit(m.id)
}

// ChunkCount returns the number of chunks allocated so far. Chunks are never
// released, so this only grows.
func (a *Archetype) ChunkCount() int { return len(a.chunks) }

// Chunk returns the chunk at index i.
func (a *Archetype) Chunk(i int) *Chunk { return a.chunks[i] }

// Chunks yields every chunk of the archetype in allocation order, including
// empty ones.
func (a *Archetype) Chunks() iter.Seq[*Chunk] {
	return func(yield func(*Chunk) bool) {
		for _, c := range a.chunks {
			if !yield(c) {
				return
			}
		}
	}
}

// SystemStateComponents returns the subset of the archetype's components
// marked with SystemState.
func (a *Archetype) SystemStateComponents() []Component {
	ss := a.systemStateMetas()
	out := make([]Component, len(ss))
	for i, m := range ss {
		out[i] = m.handle
	}
	return out
}

func (a *Archetype) systemStateMetas() []*componentMeta {
	if !a.ssReady {
		for _, m := range a.comps {
			if m.systemState {
				a.systemState = append(a.systemState, m)
			}
		}
		a.ssReady = true
	}
	return a.systemState
}

// matches reports whether the archetype carries every include component and
// none of the exclude components.
func (a *Archetype) matches(include, exclude bitmask256) bool {
	return a.mask.contains(include) && !a.mask.intersects(exclude)
}

// addEntityData appends one row to the first chunk with free capacity,
// allocating a new chunk when all are full.
func (a *Archetype) addEntityData(vals *componentValues, e Entity, assign bool) (chunkIndex, index int) {
	var chunk *Chunk
	for i, c := range a.chunks {
		if !c.IsFull() {
			chunk, chunkIndex = c, i
			break
		}
	}
	if chunk == nil {
		chunkIndex = len(a.chunks)
		chunk = newChunk(a, chunkIndex, a.capacity)
		a.chunks = append(a.chunks, chunk)
	}
	index = chunk.addEntity(vals, e, assign)
	a.size++
	return chunkIndex, index
}

// removeEntityData swap-removes the row at (chunkIndex, index).
func (a *Archetype) removeEntityData(chunkIndex, index int) Relocation {
	r := a.chunks[chunkIndex].removeEntity(index)
	a.size--
	return r
}
