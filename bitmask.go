package hako

import "math/bits"

// bitmask256 represents a set of up to 256 component IDs. It is the canonical
// identity of an archetype and the key of the archetype registry: each bit
// corresponds to a component ID registered with the owning EntityManager.
type bitmask256 [4]uint64

// set enables the bit corresponding to the given component ID.
func (m *bitmask256) set(id ComponentID) {
	i := id >> 6 // (id / 64) to find the uint64 index
	o := id & 63 // (id % 64) to find the bit offset
	m[i] |= uint64(1) << uint64(o)
}

// unset disables the bit corresponding to the given component ID.
func (m *bitmask256) unset(id ComponentID) {
	i := id >> 6
	o := id & 63
	m[i] &= ^(uint64(1) << uint64(o))
}

// contains checks if all the bits set in the `sub` bitmask are also set in the
// receiver bitmask `m`. This is the include half of archetype matching.
//
// Parameters:
//   - sub: The bitmask representing the subset of components to check for.
//
// Returns:
//   - true if the receiver contains all components from the subset, false otherwise.
func (m bitmask256) contains(sub bitmask256) bool {
	return (m[0]&sub[0]) == sub[0] &&
		(m[1]&sub[1]) == sub[1] &&
		(m[2]&sub[2]) == sub[2] &&
		(m[3]&sub[3]) == sub[3]
}

// intersects checks if the receiver shares any set bit with `other`. This is
// the exclude half of archetype matching.
//
// Parameters:
//   - other: The bitmask of components that must not be present.
//
// Returns:
//   - true if at least one component is in both masks, false otherwise.
func (m bitmask256) intersects(other bitmask256) bool {
	return (m[0]&other[0]) != 0 ||
		(m[1]&other[1]) != 0 ||
		(m[2]&other[2]) != 0 ||
		(m[3]&other[3]) != 0
}

// containsBit checks if a specific bit is set in the mask.
func (m bitmask256) containsBit(id ComponentID) bool {
	i := id >> 6
	o := id & 63
	return (m[i] & (uint64(1) << uint64(o))) != 0
}

func (m bitmask256) isZero() bool {
	return m[0]|m[1]|m[2]|m[3] == 0
}

func (m bitmask256) count() int {
	return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) + bits.OnesCount64(m[3])
}

// forEach calls fn for every set bit in ascending ID order.
func (m bitmask256) forEach(fn func(id ComponentID)) {
	for i, word := range m {
		for word != 0 {
			o := bits.TrailingZeros64(word)
			fn(ComponentID(i<<6 | o))
			word &= word - 1
		}
	}
}
