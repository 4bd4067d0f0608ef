package archetypedb

import "github.com/pkg/errors"

// Archetype is a columnar table holding every entity that has exactly
// the same ComponentSet. Each column is a ComponentArray aligned with
// entityIDs by row index: entityIDs[i] owns row i of every column.
type Archetype struct {
	id        ArchetypeID
	set       ComponentSet
	columns   []*ComponentArray
	entityIDs []Entity
}

// FromComponentSet builds an empty Archetype for the given component
// set, allocating one column per member in set order.
func FromComponentSet(set ComponentSet) *Archetype {
	columns := make([]*ComponentArray, len(set.metas))
	for i, m := range set.metas {
		columns[i] = newComponentArray(m)
	}
	return &Archetype{id: set.CanonicalID(), set: set, columns: columns}
}

// configureGrowth propagates an EngineConfig's growth heuristics to every
// column, so archetypes created after a config change grow at the newly
// configured rate.
func (a *Archetype) configureGrowth(minOccupied, numerator, denominator int) {
	for _, col := range a.columns {
		col.configureGrowth(minOccupied, numerator, denominator)
	}
}

// ID returns the archetype's canonical id, derived from its component set.
func (a *Archetype) ID() ArchetypeID { return a.id }

// Set returns the archetype's component set.
func (a *Archetype) Set() ComponentSet { return a.set }

// Len returns the number of entities (rows) currently stored.
func (a *Archetype) Len() int { return len(a.entityIDs) }

// HasComponents reports whether the archetype's set contains every id in
// required.
func (a *Archetype) HasComponents(required ...ComponentId) bool {
	for _, id := range required {
		if !a.set.Has(id) {
			return false
		}
	}
	return true
}

// HasAny reports whether the archetype's set contains at least one id
// from ids.
func (a *Archetype) HasAny(ids ...ComponentId) bool {
	for _, id := range ids {
		if a.set.Has(id) {
			return true
		}
	}
	return false
}

func (a *Archetype) columnIndex(id ComponentId) (int, bool) {
	for i, m := range a.set.metas {
		if m.ID == id {
			return i, true
		}
	}
	return -1, false
}

// GetColumnIndex returns the column index backing component id, if the
// archetype's set contains it.
func (a *Archetype) GetColumnIndex(id ComponentId) (int, bool) {
	return a.columnIndex(id)
}

// GetColumn returns the ComponentArray backing component id, if the
// archetype's set contains it.
func (a *Archetype) GetColumn(id ComponentId) (*ComponentArray, bool) {
	i, ok := a.columnIndex(id)
	if !ok {
		return nil, false
	}
	return a.columns[i], true
}

// AddEntity appends a new row for entity, with values supplying one
// payload per column in the archetype's set order. len(values) must
// equal len(a.columns).
func (a *Archetype) AddEntity(entity Entity, values [][]byte) (int, error) {
	if len(values) != len(a.columns) {
		return -1, errors.Wrapf(ErrTypeMismatch, "archetype: expected %d component values, got %d", len(a.columns), len(values))
	}
	for i, col := range a.columns {
		if err := col.Append(values[i]); err != nil {
			// Roll back columns already appended to keep every column and
			// entityIDs length-equal.
			for j := 0; j < i; j++ {
				_ = a.columns[j].SwapRemove(a.columns[j].Len() - 1)
			}
			return -1, err
		}
	}
	a.entityIDs = append(a.entityIDs, entity)
	return len(a.entityIDs) - 1, nil
}

// CopyRowTo copies row srcRow of a into a new row of dst and appends
// entity to dst's entityIDs, returning the destination row index. copies
// gives the from-column (in a) to-column (in dst) mapping to use; pass a
// Database transition's cached plan to avoid re-deriving it by id on
// every move. copies may be nil, in which case the mapping is derived on
// the spot by matching column ids directly. Any destination column not
// covered by copies is zero-filled.
func (a *Archetype) CopyRowTo(srcRow int, dst *Archetype, entity Entity, copies []copyOp) (int, error) {
	if srcRow < 0 || srcRow >= a.Len() {
		return -1, errors.Wrapf(ErrIndexOutOfBounds, "archetype: copy row %d (len %d)", srcRow, a.Len())
	}
	values := make([][]byte, len(dst.columns))
	filled := make([]bool, len(dst.columns))

	if copies != nil {
		for _, op := range copies {
			if op.from < 0 || op.from >= len(a.columns) || op.to < 0 || op.to >= len(dst.columns) {
				continue
			}
			m := dst.set.metas[op.to]
			if m.Stride > 0 {
				ptr, _ := a.columns[op.from].Get(srcRow)
				values[op.to] = bytesFromPointer(ptr, m.Size)
			}
			filled[op.to] = true
		}
	} else {
		for i, m := range dst.set.metas {
			if srcIdx, ok := a.columnIndex(m.ID); ok {
				if m.Stride > 0 {
					ptr, _ := a.columns[srcIdx].Get(srcRow)
					values[i] = bytesFromPointer(ptr, m.Size)
				}
				filled[i] = true
			}
		}
	}

	for i, m := range dst.set.metas {
		if !filled[i] && m.Size > 0 {
			values[i] = make([]byte, m.Size)
		}
	}
	return dst.AddEntity(entity, values)
}

// RemoveRowBySwap removes row i by moving the archetype's last row into
// its place (constant time, order not preserved) and reports the entity
// that was moved into row i, if any (false when i was already last).
func (a *Archetype) RemoveRowBySwap(i int) (moved Entity, movedOk bool, err error) {
	n := a.Len()
	if i < 0 || i >= n {
		return Entity{}, false, errors.Wrapf(ErrIndexOutOfBounds, "archetype: remove row %d (len %d)", i, n)
	}
	last := n - 1
	for _, col := range a.columns {
		if err := col.SwapRemove(i); err != nil {
			return Entity{}, false, err
		}
	}
	if i != last {
		moved = a.entityIDs[last]
		movedOk = true
	}
	a.entityIDs[i] = a.entityIDs[last]
	a.entityIDs = a.entityIDs[:last]
	return moved, movedOk, nil
}
