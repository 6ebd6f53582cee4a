package hako

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Entity is the identity token of a stored record. It combines a dense,
// recyclable ID with a version that is bumped every time the ID is released,
// so copies of a token taken before a deletion stop resolving once the ID is
// reused. IDs start at 1; the zero Entity never refers to a live record.
type Entity struct {
	ID      uint32
	Version uint32
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d, %d)", e.ID, e.Version)
}

// IsZero reports whether e is the zero token.
func (e Entity) IsZero() bool {
	return e.ID == 0 && e.Version == 0
}

// entityDef packs the identity column of every chunk as two int32 fields.
var entityDef = StructDef[Entity]{
	Layout: Layout{Int32: 2},
	Read: func(r *StructReader) Entity {
		id := r.Int32()
		version := r.Int32()
		return Entity{ID: uint32(id), Version: uint32(version)}
	},
	Write: func(w *StructWriter, e Entity) {
		w.PutInt32s(int32(e.ID), int32(e.Version))
	},
}

// entityMeta holds the current location and version of one ID slot.
type entityMeta struct {
	archetype  *Archetype
	chunkIndex int // index in archetype.chunks
	index      int // position inside the chunk's columns
	version    uint32
}

// entityRegistry maps entity IDs to their locations. Slot 0 is a sentinel and
// is never handed out. Released IDs go on a free stack and keep their bumped
// version, which the next owner inherits.
type entityRegistry struct {
	freeIDs []uint32     // stack of recycled entity IDs
	metas   []entityMeta // indexed by entity ID
}

func newEntityRegistry(initialCapacity int) entityRegistry {
	r := entityRegistry{
		metas: make([]entityMeta, 1, initialCapacity+1),
	}
	return r
}

// add assigns an identity to the row at (chunkIndex, index) of a, which must
// already be allocated, and writes the identity into the chunk's identity
// column.
func (r *entityRegistry) add(a *Archetype, chunkIndex, index int) Entity {
	var e Entity
	if n := len(r.freeIDs); n > 0 {
		id := r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
		meta := &r.metas[id]
		meta.archetype = a
		meta.chunkIndex = chunkIndex
		meta.index = index
		e = Entity{ID: id, Version: meta.version}
	} else {
		e = Entity{ID: uint32(len(r.metas)), Version: 1}
		r.metas = append(r.metas, entityMeta{
			archetype:  a,
			chunkIndex: chunkIndex,
			index:      index,
			version:    1,
		})
	}
	a.chunks[chunkIndex].entities.Set(index, e)
	return e
}

// remove releases the ID of e. The stored version is bumped so every
// outstanding copy of e becomes stale.
func (r *entityRegistry) remove(e Entity) error {
	meta := r.info(e)
	if meta == nil {
		return eris.Wrapf(ErrStaleEntity, "%s", e)
	}
	meta.version++
	meta.archetype = nil
	meta.chunkIndex = -1
	meta.index = -1
	r.freeIDs = append(r.freeIDs, e.ID)
	return nil
}

// info returns the location of e, or nil when e is stale or was never issued.
// The pointer is only valid until the next add.
func (r *entityRegistry) info(e Entity) *entityMeta {
	if e.ID == 0 || int(e.ID) >= len(r.metas) {
		return nil
	}
	meta := &r.metas[e.ID]
	if meta.version != e.Version || meta.archetype == nil {
		return nil
	}
	return meta
}

// len returns the number of IDs currently in use.
func (r *entityRegistry) len() int {
	return len(r.metas) - 1 - len(r.freeIDs)
}
