package archetypedb

// QueryResult describes a filter over archetypes: every component id in
// required must be present, every id in excluded must be absent. It
// caches its matching archetype list against the owning Database's
// archetypeVersion stamp: the match set is only recomputed when the
// Database's archetype table has actually changed since the last refresh.
type QueryResult struct {
	db       *Database
	required []ComponentId
	excluded []ComponentId

	cachedVersion uint64
	haveCache     bool
	matching      []*Archetype
}

// Query begins a query for every entity that has all of required.
func (db *Database) Query(required ...ComponentId) *QueryResult {
	return &QueryResult{
		db:       db,
		required: append([]ComponentId(nil), required...),
	}
}

// Without narrows the query to exclude entities that have any of ids.
// Calling it invalidates any cached match set, since it changes what
// "matching" means, not just whether the Database has changed.
func (q *QueryResult) Without(ids ...ComponentId) *QueryResult {
	q.excluded = append(q.excluded, ids...)
	q.haveCache = false
	return q
}

func (q *QueryResult) refresh() {
	if q.haveCache && q.cachedVersion == q.db.archetypeVersion {
		return
	}
	q.matching = q.matching[:0]
	for _, arch := range q.db.archetypeList {
		if arch.Len() == 0 {
			continue
		}
		if !arch.HasComponents(q.required...) {
			continue
		}
		if len(q.excluded) > 0 && arch.HasAny(q.excluded...) {
			continue
		}
		q.matching = append(q.matching, arch)
	}
	q.cachedVersion = q.db.archetypeVersion
	q.haveCache = true
}

// Count returns the number of entities currently matching the query.
func (q *QueryResult) Count() int {
	q.refresh()
	total := 0
	for _, a := range q.matching {
		total += a.Len()
	}
	return total
}

// First returns a handle to the first matching entity, if any.
func (q *QueryResult) First() (EntityHandle, bool) {
	it := q.Iter()
	if it.Next() {
		return EntityHandle{Entity: it.Entity(), db: q.db}, true
	}
	return EntityHandle{}, false
}

// Iter returns a fresh iterator over the query's current match set. A
// structural mutation performed after Iter() is called is only reflected
// live for archetypes already in the snapshot (row counts are read from
// the live Archetype); a newly created archetype that would now match is
// not picked up until the next Iter() call. Archetypes pruned mid-
// iteration are skipped, since a pruned archetype's row count is zero.
func (q *QueryResult) Iter() *QueryIterator {
	q.refresh()
	return &QueryIterator{
		matching: append([]*Archetype(nil), q.matching...),
		archIdx:  -1,
		row:      -1,
	}
}

// QueryIterator walks the rows of every archetype in a QueryResult's
// match set, archetype by archetype.
type QueryIterator struct {
	matching []*Archetype
	archIdx  int
	row      int
}

// Next advances to the next matching row. It returns false once every
// archetype in the snapshot has been exhausted.
func (it *QueryIterator) Next() bool {
	if it.archIdx == -1 {
		it.archIdx = 0
	}
	for it.archIdx < len(it.matching) {
		arch := it.matching[it.archIdx]
		it.row++
		if it.row < arch.Len() {
			return true
		}
		it.archIdx++
		it.row = -1
	}
	return false
}

// Entity returns the entity at the iterator's current position.
func (it *QueryIterator) Entity() Entity {
	return it.matching[it.archIdx].entityIDs[it.row]
}

// Archetype returns the archetype at the iterator's current position.
func (it *QueryIterator) Archetype() *Archetype {
	return it.matching[it.archIdx]
}

// Row returns the row index within Archetype() at the iterator's current
// position.
func (it *QueryIterator) Row() int {
	return it.row
}
