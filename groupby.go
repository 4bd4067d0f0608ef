package archetypedb

import "sort"

// Group is every archetype sharing one trait group key, in the strictly
// ascending order GroupBy maintains as archetypes are discovered.
type Group struct {
	Key        int32
	archetypes []*Archetype
}

// Iter walks every entity across every archetype in the group.
func (g *Group) Iter() *QueryIterator {
	return &QueryIterator{
		matching: append([]*Archetype(nil), g.archetypes...),
		archIdx:  -1,
		row:      -1,
	}
}

// Query narrows the group to archetypes that also carry every id in
// required.
func (g *Group) Query(required ...ComponentId) *QueryIterator {
	matching := make([]*Archetype, 0, len(g.archetypes))
	for _, a := range g.archetypes {
		if a.HasComponents(required...) {
			matching = append(matching, a)
		}
	}
	return &QueryIterator{matching: matching, archIdx: -1, row: -1}
}

// GroupByResult partitions every archetype carrying a component whose
// trait matches traitID and is TraitGrouped into Groups ordered by
// ascending GroupKey.
type GroupByResult struct {
	groups []*Group
}

// Groups returns every group, in ascending key order.
func (r *GroupByResult) Groups() []*Group {
	return r.groups
}

// Group returns the group for a specific key, if any archetype carries
// it.
func (r *GroupByResult) Group(key int32) (*Group, bool) {
	i := sort.Search(len(r.groups), func(i int) bool { return r.groups[i].Key >= key })
	if i < len(r.groups) && r.groups[i].Key == key {
		return r.groups[i], true
	}
	return nil, false
}

// insertSorted inserts arch into the group for key, creating the group at
// its sorted position via binary search if it doesn't exist yet. This is
// the deliberate correction over a heap-based grouping structure: a
// binary-search sorted-slice insertion keeps Groups() in strictly
// ascending key order at every point in time, not just after a final
// drain, which a heap cannot guarantee mid-population.
func (r *GroupByResult) insertSorted(key int32, arch *Archetype) {
	i := sort.Search(len(r.groups), func(i int) bool { return r.groups[i].Key >= key })
	if i < len(r.groups) && r.groups[i].Key == key {
		r.groups[i].archetypes = append(r.groups[i].archetypes, arch)
		return
	}
	g := &Group{Key: key, archetypes: []*Archetype{arch}}
	r.groups = append(r.groups, nil)
	copy(r.groups[i+1:], r.groups[i:])
	r.groups[i] = g
}

// GroupBy walks every archetype and buckets it by GroupKey for every
// column whose ComponentMeta.Trait matches traitID with Kind ==
// TraitGrouped. An archetype carrying more than one column with the same
// traitID (an unusual but not forbidden schema) is inserted once per
// distinct GroupKey it carries.
func (db *Database) GroupBy(traitID ComponentId) *GroupByResult {
	result := &GroupByResult{}
	for _, arch := range db.archetypeList {
		if arch.Len() == 0 {
			continue
		}
		seenKeys := make(map[int32]bool, 1)
		for _, m := range arch.set.metas {
			if m.Trait == nil || m.Trait.Kind != TraitGrouped || m.Trait.ID != traitID {
				continue
			}
			if seenKeys[m.Trait.GroupKey] {
				continue
			}
			seenKeys[m.Trait.GroupKey] = true
			result.insertSorted(m.Trait.GroupKey, arch)
		}
	}
	return result
}
