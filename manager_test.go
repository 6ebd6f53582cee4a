package hako

import (
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vec2 struct{ X, Y float32 }

var vec2Def = StructDef[vec2]{
	Layout: Layout{Float32: 2},
	Read: func(r *StructReader) vec2 {
		return vec2{X: r.Float32(), Y: r.Float32()}
	},
	Write: func(w *StructWriter, v vec2) {
		w.PutFloat32s(v.X, v.Y)
	},
}

// checkConsistency verifies that every stored row and every entity location
// agree with each other.
func checkConsistency(t *testing.T, em *EntityManager) {
	t.Helper()
	total := 0
	for a := range em.Archetypes() {
		sum := 0
		for chunk := range a.Chunks() {
			sum += chunk.Len()
			require.LessOrEqual(t, chunk.Len(), chunk.Cap())
			for _, m := range a.comps {
				require.Equal(t, chunk.Len(), chunk.columns[m.id].Len(), "column %s of %s", m.name, a)
			}
			for i, e := range chunk.Entities().All() {
				info := em.entities.info(e)
				require.NotNil(t, info, "%s in %s is stale", e, a)
				require.Same(t, a, info.archetype)
				require.Equal(t, chunk.Index(), info.chunkIndex)
				require.Equal(t, i, info.index)
			}
		}
		require.Equal(t, a.Len(), sum, "chunk counts of %s", a)
		total += sum
	}
	require.Equal(t, em.Len(), total)
}

var leaseDef = StructDef[int32]{
	Layout: Layout{Int32: 1},
	Read:   func(r *StructReader) int32 { return r.Int32() },
	Write:  func(w *StructWriter, v int32) { w.PutInt32(v) },
}

type modelEntity struct {
	pos    *vec2
	name   *string
	lease  *int32
	marker bool
	tomb   bool
}

func (m *modelEntity) empty() bool {
	return m.tomb && m.pos == nil && m.name == nil && m.lease == nil && !m.marker
}

// go test -run ^TestRandomStructuralChanges$ . -count 1
func TestRandomStructuralChanges(t *testing.T) {
	em := NewEntityManager(WithChunkCapacity(4), WithLogger(zerolog.Nop()))
	pos := RegisterStruct(em, "Position", vec2Def)
	name := RegisterObject(em, "Name", "")
	marker := RegisterTag(em, "Marker")
	lease := RegisterStruct(em, "Lease", leaseDef, SystemState())
	tombstones := em.GetQuery(Filter{
		Include: []Component{lease},
		Exclude: []Component{em.Alive()},
	})

	rng := rand.New(rand.NewPCG(1, 2))
	model := make(map[Entity]*modelEntity)
	var live []Entity
	tombstoned := 0

	pick := func() (Entity, int) {
		i := rng.IntN(len(live))
		return live[i], i
	}
	drop := func(i int) {
		delete(model, live[i])
		live[i] = live[len(live)-1]
		live = live[:len(live)-1]
	}

	for step := range 3000 {
		switch op := rng.IntN(7); {
		case op == 0 || len(live) == 0:
			p := vec2{X: float32(step), Y: float32(-step)}
			e := em.CreateEntity(pos.With(p), marker.With(Tag{}))
			model[e] = &modelEntity{pos: &p, marker: true}
			live = append(live, e)
		case op == 1:
			e, _ := pick()
			n := "n" + string(rune('a'+step%26))
			ok := em.AddComponent(e, name.With(n))
			require.Equal(t, model[e].name == nil, ok)
			if ok {
				model[e].name = &n
			}
		case op == 2:
			e, i := pick()
			m := model[e]
			ok := em.RemoveComponent(e, pos)
			require.Equal(t, m.pos != nil, ok)
			if ok {
				m.pos = nil
				if m.empty() {
					require.False(t, em.Exists(e))
					drop(i)
				}
			}
		case op == 3:
			e, i := pick()
			m := model[e]
			require.True(t, em.DeleteEntity(e))
			if m.lease == nil {
				require.False(t, em.Exists(e))
				drop(i)
				break
			}
			require.True(t, em.Exists(e))
			m.pos, m.name, m.marker, m.tomb = nil, nil, false, true
			tombstoned++
		case op == 4:
			e, _ := pick()
			if model[e].pos == nil {
				p := vec2{X: 1, Y: 1}
				require.True(t, em.AddComponent(e, pos.With(p)))
				model[e].pos = &p
			} else {
				p := vec2{X: model[e].pos.X + 1}
				require.NoError(t, SetComponent(em, e, pos, p))
				model[e].pos = &p
			}
		case op == 5:
			e, _ := pick()
			v := int32(step)
			ok := em.AddComponent(e, lease.With(v))
			require.Equal(t, model[e].lease == nil, ok)
			if ok {
				model[e].lease = &v
			}
		case op == 6:
			e, i := pick()
			m := model[e]
			ok := em.RemoveComponent(e, lease)
			require.Equal(t, m.lease != nil, ok)
			if !ok {
				break
			}
			m.lease = nil
			if m.empty() {
				require.False(t, em.Exists(e))
				drop(i)
			}
		}

		if step%50 == 0 {
			checkConsistency(t, em)
		}
	}
	checkConsistency(t, em)

	require.Equal(t, len(model), em.Len())
	tombs := 0
	for e, m := range model {
		require.True(t, em.Exists(e))
		require.Equal(t, !m.tomb, em.HasComponent(e, em.Alive()))
		require.Equal(t, m.marker, em.HasComponent(e, marker))
		if m.tomb && m.lease != nil {
			tombs++
		}
		got, err := GetComponent(em, e, pos)
		if m.pos == nil {
			assert.ErrorIs(t, err, ErrComponentNotOnEntity)
		} else {
			require.NoError(t, err)
			assert.Equal(t, *m.pos, got)
		}
		n, err := GetComponent(em, e, name)
		if m.name == nil {
			assert.ErrorIs(t, err, ErrComponentNotOnEntity)
		} else {
			require.NoError(t, err)
			assert.Equal(t, *m.name, n)
		}
		l, err := GetComponent(em, e, lease)
		if m.lease == nil {
			assert.ErrorIs(t, err, ErrComponentNotOnEntity)
		} else {
			require.NoError(t, err)
			assert.Equal(t, *m.lease, l)
		}
	}
	assert.Positive(t, tombstoned)
	assert.Equal(t, tombs, tombstones.Len())
}

func TestChunkAllocationFirstFit(t *testing.T) {
	em := NewEntityManager(WithChunkCapacity(2))
	pos := RegisterStruct(em, "Position", vec2Def)

	var es []Entity
	for i := range 5 {
		es = append(es, em.CreateEntity(pos.With(vec2{X: float32(i)})))
	}
	a := em.GetArchetype(pos)
	require.Equal(t, 3, a.ChunkCount())
	assert.Equal(t, 2, a.Chunk(0).Len())
	assert.Equal(t, 1, a.Chunk(2).Len())

	// free a slot in the first chunk; the next entity goes there, not to the
	// partially filled last chunk
	require.True(t, em.DeleteEntity(es[0]))
	e := em.CreateEntity(pos.With(vec2{X: 99}))
	info := em.entities.info(e)
	require.NotNil(t, info)
	assert.Equal(t, 0, info.chunkIndex)
	assert.Equal(t, 3, a.ChunkCount())
	checkConsistency(t, em)
}

func TestRelocationUpdatesMovedEntity(t *testing.T) {
	em := NewEntityManager(WithChunkCapacity(8))
	pos := RegisterStruct(em, "Position", vec2Def)
	tag := RegisterTag(em, "Tagged")

	e1 := em.CreateEntity(pos.With(vec2{X: 1}))
	e2 := em.CreateEntity(pos.With(vec2{X: 2}))
	e3 := em.CreateEntity(pos.With(vec2{X: 3}))

	require.True(t, em.AddComponent(e1, tag.With(Tag{})))
	assert.Equal(t, 0, em.entities.info(e3).index)
	assert.Equal(t, 1, em.entities.info(e2).index)

	v, err := GetComponent(em, e3, pos)
	require.NoError(t, err)
	assert.Equal(t, vec2{X: 3}, v)
	v, err = GetComponent(em, e1, pos)
	require.NoError(t, err)
	assert.Equal(t, vec2{X: 1}, v)
	checkConsistency(t, em)
}

func TestBitmask(t *testing.T) {
	var m bitmask256
	for _, id := range []ComponentID{0, 63, 64, 200, 255} {
		m.set(id)
	}
	assert.Equal(t, 5, m.count())
	assert.True(t, m.containsBit(200))
	assert.False(t, m.containsBit(1))

	var ids []ComponentID
	m.forEach(func(id ComponentID) { ids = append(ids, id) })
	assert.Equal(t, []ComponentID{0, 63, 64, 200, 255}, ids)

	var sub bitmask256
	sub.set(64)
	sub.set(255)
	assert.True(t, m.contains(sub))
	assert.True(t, m.intersects(sub))
	m.unset(64)
	assert.False(t, m.contains(sub))
	assert.True(t, m.intersects(sub))

	var empty bitmask256
	assert.True(t, empty.isZero())
	assert.True(t, m.contains(empty))
	assert.False(t, m.intersects(empty))
}
