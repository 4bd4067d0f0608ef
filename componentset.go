package archetypedb

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ArchetypeID is the canonical identity of a ComponentSet: the xxhash of
// its sorted component ids, in order. Two archetypes with the same
// component set always compute the same ArchetypeID, independent of the
// order components were added in.
type ArchetypeID uint64

// ComponentSet is a sorted, deduplicated sequence of ComponentMeta kept
// ascending by ID. It plays the role a fixed-width bitmask would over a
// small sequential index range, but over an open-ended 64-bit id space.
type ComponentSet struct {
	metas []ComponentMeta
}

// FromTypes builds a ComponentSet from already-registered ComponentMetas.
func FromTypes(metas ...ComponentMeta) ComponentSet {
	return FromSlice(append([]ComponentMeta(nil), metas...))
}

// FromSlice builds a ComponentSet from a slice of metas, sorting and
// deduplicating by ID. The input slice is not mutated.
func FromSlice(metas []ComponentMeta) ComponentSet {
	cp := append([]ComponentMeta(nil), metas...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].ID < cp[j].ID })
	out := cp[:0]
	var last ComponentId
	haveLast := false
	for _, m := range cp {
		if haveLast && m.ID == last {
			continue
		}
		out = append(out, m)
		last = m.ID
		haveLast = true
	}
	return ComponentSet{metas: out}
}

// Len returns the number of distinct components in the set.
func (s ComponentSet) Len() int { return len(s.metas) }

// Metas returns the set's underlying sorted meta slice. Callers must not
// mutate the returned slice.
func (s ComponentSet) Metas() []ComponentMeta { return s.metas }

// Has reports whether id is a member of the set.
func (s ComponentSet) Has(id ComponentId) bool {
	_, ok := s.indexOf(id)
	return ok
}

func (s ComponentSet) indexOf(id ComponentId) (int, bool) {
	i := sort.Search(len(s.metas), func(i int) bool { return s.metas[i].ID >= id })
	if i < len(s.metas) && s.metas[i].ID == id {
		return i, true
	}
	return i, false
}

// InsertSorted returns a new ComponentSet with meta inserted at its
// sorted position. If meta.ID is already present, the existing set is
// returned unchanged.
func (s ComponentSet) InsertSorted(meta ComponentMeta) ComponentSet {
	i, ok := s.indexOf(meta.ID)
	if ok {
		return s
	}
	out := make([]ComponentMeta, 0, len(s.metas)+1)
	out = append(out, s.metas[:i]...)
	out = append(out, meta)
	out = append(out, s.metas[i:]...)
	return ComponentSet{metas: out}
}

// Union returns a new ComponentSet containing every component in s or
// other, deduplicated by ID.
func (s ComponentSet) Union(other ComponentSet) ComponentSet {
	out := make([]ComponentMeta, 0, len(s.metas)+len(other.metas))
	i, j := 0, 0
	for i < len(s.metas) && j < len(other.metas) {
		a, b := s.metas[i], other.metas[j]
		switch {
		case a.ID == b.ID:
			out = append(out, a)
			i++
			j++
		case a.ID < b.ID:
			out = append(out, a)
			i++
		default:
			out = append(out, b)
			j++
		}
	}
	out = append(out, s.metas[i:]...)
	out = append(out, other.metas[j:]...)
	return ComponentSet{metas: out}
}

// Difference returns a new ComponentSet containing every component in s
// that is not present in other.
func (s ComponentSet) Difference(other ComponentSet) ComponentSet {
	out := make([]ComponentMeta, 0, len(s.metas))
	for _, m := range s.metas {
		if !other.Has(m.ID) {
			out = append(out, m)
		}
	}
	return ComponentSet{metas: out}
}

// Equal reports whether two sets contain exactly the same component ids.
func (s ComponentSet) Equal(other ComponentSet) bool {
	if len(s.metas) != len(other.metas) {
		return false
	}
	for i := range s.metas {
		if s.metas[i].ID != other.metas[i].ID {
			return false
		}
	}
	return true
}

// CanonicalID hashes the ordered id sequence into an ArchetypeID. The
// same set of component ids always yields the same ArchetypeID
// regardless of the order components were originally added in, since the
// set is kept sorted.
func (s ComponentSet) CanonicalID() ArchetypeID {
	h := xxhash.New()
	var buf [8]byte
	for _, m := range s.metas {
		binary.LittleEndian.PutUint64(buf[:], uint64(m.ID))
		h.Write(buf[:])
	}
	return ArchetypeID(h.Sum64())
}
