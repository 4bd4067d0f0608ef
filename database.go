package archetypedb

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ComponentValue pairs a component's metadata with its raw payload
// bytes, the type-erased unit CreateEntity/AddComponents/CreateEntityWithID
// accept in place of one generic parameter per component.
type ComponentValue struct {
	Meta ComponentMeta
	Data []byte
}

// NewComponentValue registers T if necessary and copies value's bytes
// into a ComponentValue ready to hand to a Database.
func NewComponentValue[T any](value T) ComponentValue {
	meta := RegisterComponent[T]()
	data := append([]byte(nil), bytesOf(&value)...)
	return ComponentValue{Meta: meta, Data: data}
}

type transition struct {
	target *Archetype
	copies []copyOp
}

type copyOp struct {
	from, to int
}

// Database is the archetype table plus the entity location index. It is
// not safe for concurrent use.
type Database struct {
	Resources *Resources

	cfg    EngineConfig
	logger *zap.Logger

	archetypes    map[ArchetypeID]*Archetype
	archetypeList []*Archetype

	locations []entityMeta
	nextID    uint32
	nextVer   uint32

	archetypeVersion uint64

	addTransitions    map[ArchetypeID]map[ArchetypeID]transition
	removeTransitions map[ArchetypeID]map[ArchetypeID]transition
}

// NewDatabase constructs an empty Database against the given engine
// tuning, resource registry, and logger. resources or logger may be nil,
// in which case a fresh Resources and a no-op logger are used
// respectively, so ProviderSet can wire NewResources and NewLogger's
// product straight through without a host application special-casing
// either.
func NewDatabase(cfg EngineConfig, resources *Resources, logger *zap.Logger) *Database {
	if resources == nil {
		resources = NewResources()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	capacity := cfg.InitialEntityCapacity
	if capacity <= 0 {
		capacity = 1024
	}
	return &Database{
		Resources:         resources,
		cfg:               cfg,
		logger:            logger,
		archetypes:        make(map[ArchetypeID]*Archetype, 16),
		locations:         make([]entityMeta, 0, capacity),
		nextVer:           1,
		addTransitions:    make(map[ArchetypeID]map[ArchetypeID]transition, 16),
		removeTransitions: make(map[ArchetypeID]map[ArchetypeID]transition, 16),
	}
}

func (db *Database) lookup(id uint32) (entityMeta, bool) {
	if int(id) >= len(db.locations) {
		return entityMeta{}, false
	}
	return db.locations[id], true
}

func (db *Database) getOrCreateArchetype(set ComponentSet) *Archetype {
	id := set.CanonicalID()
	if arch, ok := db.archetypes[id]; ok {
		return arch
	}
	arch := FromComponentSet(set)
	arch.configureGrowth(db.cfg.MinOccupied, db.cfg.GrowthNumerator, db.cfg.GrowthDenominator)
	db.archetypes[id] = arch
	db.archetypeList = append(db.archetypeList, arch)
	db.archetypeVersion++
	db.logger.Debug("archetype created", zap.Uint64("archetype_id", uint64(id)), zap.Int("components", set.Len()))
	return arch
}

func (db *Database) pruneIfEmpty(arch *Archetype) {
	if arch.Len() != 0 {
		return
	}
	delete(db.archetypes, arch.id)
	for i, a := range db.archetypeList {
		if a == arch {
			db.archetypeList = append(db.archetypeList[:i], db.archetypeList[i+1:]...)
			break
		}
	}
	db.archetypeVersion++
	db.logger.Debug("archetype pruned", zap.Uint64("archetype_id", uint64(arch.id)))
}

func metasOf(components []ComponentValue) []ComponentMeta {
	metas := make([]ComponentMeta, len(components))
	for i, c := range components {
		metas[i] = c.Meta
	}
	return metas
}

func valuesForArchetype(set ComponentSet, components []ComponentValue) [][]byte {
	byID := make(map[ComponentId][]byte, len(components))
	for _, c := range components {
		if _, ok := byID[c.Meta.ID]; !ok {
			byID[c.Meta.ID] = c.Data
		}
	}
	values := make([][]byte, set.Len())
	for i, m := range set.metas {
		if data, ok := byID[m.ID]; ok {
			values[i] = data
		} else if m.Stride > 0 {
			values[i] = make([]byte, m.Size)
		}
	}
	return values
}

// ReserveEntityID allocates a fresh, never-before-used Entity id without
// placing it into any archetype. Pair it with CreateEntityWithID to
// populate the entity later, the way Transaction.CreateEntity pre-reserves
// an id synchronously before queuing the population command.
func (db *Database) ReserveEntityID() Entity {
	id := db.nextID
	db.nextID++
	version := db.nextVer
	db.nextVer++
	db.locations = append(db.locations, entityMeta{archetype: nil, row: -1, version: version})
	return Entity{ID: id, Version: version}
}

// CreateEntityWithID populates a previously reserved entity with the
// given components, placing it into the archetype matching their
// component set.
func (db *Database) CreateEntityWithID(e Entity, components ...ComponentValue) error {
	meta, ok := db.lookup(e.ID)
	if !ok || meta.version != e.Version {
		return errors.Wrapf(ErrEntityNotFound, "create entity with id: %v not reserved", e)
	}
	if meta.archetype != nil {
		return errors.Wrapf(ErrEntityNotFound, "create entity with id: %v already populated", e)
	}
	set := FromSlice(metasOf(components))
	arch := db.getOrCreateArchetype(set)
	values := valuesForArchetype(set, components)
	row, err := arch.AddEntity(e, values)
	if err != nil {
		return err
	}
	db.locations[e.ID] = entityMeta{archetype: arch, row: row, version: e.Version}
	return nil
}

// CreateEntity reserves a new id and immediately populates it with
// components.
func (db *Database) CreateEntity(components ...ComponentValue) (Entity, error) {
	e := db.ReserveEntityID()
	if err := db.CreateEntityWithID(e, components...); err != nil {
		return Entity{}, err
	}
	return e, nil
}

// ArchetypeByID looks up a previously seen archetype table by its
// canonical id, mainly useful to tooling (cmd/profile, an inspector)
// that walked archetypeList earlier and cached an id. A miss usually
// means the archetype was pruned empty since the id was cached, so it is
// logged as a warning rather than silently swallowed.
func (db *Database) ArchetypeByID(id ArchetypeID) (*Archetype, error) {
	arch, ok := db.archetypes[id]
	if !ok {
		db.logger.Warn("archetype not found", zap.Uint64("archetype_id", uint64(id)))
		return nil, errors.Wrapf(ErrArchetypeNotFound, "archetype id %d", id)
	}
	return arch, nil
}

// Entity returns a handle to an existing, live entity.
func (db *Database) Entity(id uint32) (EntityHandle, bool) {
	meta, ok := db.lookup(id)
	if !ok || meta.archetype == nil {
		return EntityHandle{}, false
	}
	return EntityHandle{Entity: Entity{ID: id, Version: meta.version}, db: db}, true
}

// RemoveEntity deletes e, swap-removing its row from its archetype and
// pruning that archetype if it becomes empty.
func (db *Database) RemoveEntity(e Entity) error {
	meta, ok := db.lookup(e.ID)
	if !ok || meta.version != e.Version || meta.archetype == nil {
		return errors.Wrapf(ErrEntityNotFound, "remove entity: %v", e)
	}
	arch := meta.archetype
	moved, movedOk, err := arch.RemoveRowBySwap(meta.row)
	if err != nil {
		return err
	}
	if movedOk {
		db.locations[moved.ID] = entityMeta{archetype: arch, row: meta.row, version: moved.Version}
	}
	db.locations[e.ID] = entityMeta{archetype: nil, row: -1, version: e.Version}
	db.pruneIfEmpty(arch)
	return nil
}

func (db *Database) transitionAdd(oldArch *Archetype, added ComponentSet, target ComponentSet) *transition {
	addedID := added.CanonicalID()
	byAdded, ok := db.addTransitions[oldArch.id]
	if ok {
		if tr, ok := byAdded[addedID]; ok && db.archetypes[tr.target.id] == tr.target {
			return &tr
		}
	} else {
		byAdded = make(map[ArchetypeID]transition, 4)
		db.addTransitions[oldArch.id] = byAdded
	}
	newArch := db.getOrCreateArchetype(target)
	copies := make([]copyOp, 0, len(oldArch.set.metas))
	for from, m := range oldArch.set.metas {
		if to, ok := newArch.columnIndex(m.ID); ok {
			copies = append(copies, copyOp{from: from, to: to})
		}
	}
	tr := transition{target: newArch, copies: copies}
	byAdded[addedID] = tr
	return &tr
}

func (db *Database) transitionRemove(oldArch *Archetype, removed ComponentSet, target ComponentSet) *transition {
	removedID := removed.CanonicalID()
	byRemoved, ok := db.removeTransitions[oldArch.id]
	if ok {
		if tr, ok := byRemoved[removedID]; ok && db.archetypes[tr.target.id] == tr.target {
			return &tr
		}
	} else {
		byRemoved = make(map[ArchetypeID]transition, 4)
		db.removeTransitions[oldArch.id] = byRemoved
	}
	newArch := db.getOrCreateArchetype(target)
	copies := make([]copyOp, 0, len(newArch.set.metas))
	for to, m := range newArch.set.metas {
		if from, ok := oldArch.columnIndex(m.ID); ok {
			copies = append(copies, copyOp{from: from, to: to})
		}
	}
	tr := transition{target: newArch, copies: copies}
	byRemoved[removedID] = tr
	return &tr
}

// moveRow relocates row oldRow of oldArch into newArch for entity e,
// using copies to move already-present columns, then swap-removes the
// vacated row from oldArch and fixes up whichever entity got swapped into
// its place.
func (db *Database) moveRow(e Entity, oldArch *Archetype, oldRow int, tr *transition) (int, error) {
	newRow, err := oldArch.CopyRowTo(oldRow, tr.target, e, tr.copies)
	if err != nil {
		return -1, err
	}
	moved, movedOk, err := oldArch.RemoveRowBySwap(oldRow)
	if err != nil {
		// Roll back the orphaned row we just created in the target
		// archetype so oldArch and tr.target both stay length-consistent.
		_, _, _ = tr.target.RemoveRowBySwap(newRow)
		return -1, err
	}
	if movedOk {
		db.locations[moved.ID] = entityMeta{archetype: oldArch, row: oldRow, version: moved.Version}
	}
	db.pruneIfEmpty(oldArch)
	return newRow, nil
}

// AddComponents adds or overwrites components on e. Components already
// present on e's archetype are overwritten in place; components new to e
// trigger a structural move to the archetype matching the union set, via
// a cached transition plan. An empty call is a no-op.
func (db *Database) AddComponents(e Entity, components ...ComponentValue) error {
	if len(components) == 0 {
		return nil
	}
	meta, ok := db.lookup(e.ID)
	if !ok || meta.version != e.Version || meta.archetype == nil {
		return errors.Wrapf(ErrEntityNotFound, "add components: %v", e)
	}
	oldArch := meta.archetype
	incoming := FromSlice(metasOf(components))
	target := oldArch.set.Union(incoming)

	if target.CanonicalID() == oldArch.id {
		for _, c := range components {
			idx, ok := oldArch.columnIndex(c.Meta.ID)
			if !ok {
				continue
			}
			if err := oldArch.columns[idx].Set(meta.row, c.Data); err != nil {
				return err
			}
		}
		return nil
	}

	added := target.Difference(oldArch.set)
	tr := db.transitionAdd(oldArch, added, target)

	newRow, err := db.moveRow(e, oldArch, meta.row, tr)
	if err != nil {
		return err
	}
	db.locations[e.ID] = entityMeta{archetype: tr.target, row: newRow, version: e.Version}

	for _, c := range components {
		idx, ok := tr.target.columnIndex(c.Meta.ID)
		if !ok {
			continue
		}
		if err := tr.target.columns[idx].Set(newRow, c.Data); err != nil {
			return err
		}
	}
	return nil
}

// RemoveComponents removes the given component ids from e, if present. An
// empty call, or a call naming only ids e does not have, is a no-op.
// Removing every component currently on e is rejected.
func (db *Database) RemoveComponents(e Entity, ids ...ComponentId) error {
	if len(ids) == 0 {
		return nil
	}
	meta, ok := db.lookup(e.ID)
	if !ok || meta.version != e.Version || meta.archetype == nil {
		return errors.Wrapf(ErrEntityNotFound, "remove components: %v", e)
	}
	oldArch := meta.archetype

	present := make([]ComponentMeta, 0, len(ids))
	for _, id := range ids {
		if idx, ok := oldArch.columnIndex(id); ok {
			present = append(present, oldArch.set.metas[idx])
		}
	}
	if len(present) == 0 {
		return nil
	}
	removed := FromSlice(present)
	if removed.Len() == oldArch.set.Len() {
		return errors.Wrapf(ErrCannotRemoveAllComponents, "remove components: %v", e)
	}

	target := oldArch.set.Difference(removed)
	tr := db.transitionRemove(oldArch, removed, target)

	newRow, err := db.moveRow(e, oldArch, meta.row, tr)
	if err != nil {
		return err
	}
	db.locations[e.ID] = entityMeta{archetype: tr.target, row: newRow, version: e.Version}
	return nil
}

// GetComponent returns a typed pointer to e's component T. The pointer
// aliases the archetype column and is invalidated by any structural
// mutation of e or another entity in the same archetype.
func GetComponent[T any](db *Database, e Entity) (*T, bool) {
	meta, ok := db.lookup(e.ID)
	if !ok || meta.version != e.Version || meta.archetype == nil {
		return nil, false
	}
	compMeta, ok := TryMetaOf[T]()
	if !ok {
		return nil, false
	}
	if compMeta.Stride == 0 {
		// A zero-sized component has no addressable payload; presence is a
		// pure set-membership question, not something Get can answer.
		return nil, meta.archetype.HasComponents(compMeta.ID)
	}
	col, ok := meta.archetype.GetColumn(compMeta.ID)
	if !ok {
		return nil, false
	}
	ptr, ok := col.Get(meta.row)
	if !ok {
		return nil, false
	}
	return (*T)(ptr), true
}

// AddComponent adds or overwrites a single typed component on e.
func AddComponent[T any](db *Database, e Entity, value T) error {
	return db.AddComponents(e, NewComponentValue(value))
}

// RemoveComponent removes T from e, if present.
func RemoveComponent[T any](db *Database, e Entity) error {
	meta, ok := TryMetaOf[T]()
	if !ok {
		return nil
	}
	return db.RemoveComponents(e, meta.ID)
}
