package hako

import "iter"

// Filter selects archetypes by the components they must and must not carry.
type Filter struct {
	Include []Component
	Exclude []Component
}

// Query iterates the chunks of every archetype matching a Filter. Queries are
// obtained from EntityManager.GetQuery and are shared: the same filter, in any
// order, always returns the same Query.
type Query interface {
	// IsEmptyIgnoreFilter reports whether every matching archetype is empty.
	IsEmptyIgnoreFilter() bool
	// Len returns the number of entities across matching archetypes.
	Len() int
	// Chunks yields every non-empty chunk of every non-empty matching
	// archetype, in archetype creation order then chunk order.
	//
	// Structural changes (create, add, remove, delete) to a matching
	// archetype while ranging over Chunks are the caller's responsibility:
	// swap-removal may then skip or repeat a slot. Collect entities first and
	// mutate after the loop, or defer the changes.
	Chunks() iter.Seq[*Chunk]
}

// queryKey is the normalized form of a Filter.
type queryKey struct {
	include bitmask256
	exclude bitmask256
}

// query caches the archetypes matching its key. The cache is recomputed
// lazily whenever the archetype registry version moved since the last
// computation; entity churn inside already-matched archetypes is visible
// without recomputation because the cache holds archetype references.
type query struct {
	archetypes *archetypeRegistry
	matched    []*Archetype
	key        queryKey
	version    uint64 // registry version of matched; 0 means never computed
}

func (q *query) matching() []*Archetype {
	if q.version != q.archetypes.version {
		// a fresh slice: an iteration in progress may still hold the old one
		matched := make([]*Archetype, 0, len(q.matched)+1)
		for _, a := range q.archetypes.archetypes {
			if a.matches(q.key.include, q.key.exclude) {
				matched = append(matched, a)
			}
		}
		q.matched = matched
		q.version = q.archetypes.version
	}
	return q.matched
}

func (q *query) IsEmptyIgnoreFilter() bool { return isEmpty(q.matching()) }
func (q *query) Len() int                  { return countEntities(q.matching()) }
func (q *query) Chunks() iter.Seq[*Chunk]  { return iterChunks(q.matching) }

// fullQuery matches every archetype without any filter check.
type fullQuery struct {
	archetypes *archetypeRegistry
}

func (q *fullQuery) all() []*Archetype { return q.archetypes.archetypes }

func (q *fullQuery) IsEmptyIgnoreFilter() bool { return isEmpty(q.all()) }
func (q *fullQuery) Len() int                  { return countEntities(q.all()) }
func (q *fullQuery) Chunks() iter.Seq[*Chunk]  { return iterChunks(q.all) }

func isEmpty(archetypes []*Archetype) bool {
	for _, a := range archetypes {
		if a.size != 0 {
			return false
		}
	}
	return true
}

func countEntities(archetypes []*Archetype) int {
	n := 0
	for _, a := range archetypes {
		n += a.size
	}
	return n
}

// iterChunks resolves the archetype list when iteration starts, not when the
// sequence is created.
func iterChunks(archetypes func() []*Archetype) iter.Seq[*Chunk] {
	return func(yield func(*Chunk) bool) {
		for _, a := range archetypes() {
			if a.size == 0 {
				continue
			}
			for _, c := range a.chunks {
				if c.Len() == 0 {
					continue
				}
				if !yield(c) {
					return
				}
			}
		}
	}
}
