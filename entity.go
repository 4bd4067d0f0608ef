package archetypedb

// Entity is a lightweight handle: a numeric id paired with the version it
// was created at. IDs are never reused within a Database's lifetime.
// Every lookup compares Version against the one recorded when the id was
// reserved, so an Entity value with a matching ID but a different
// Version is rejected. RemoveEntity keeps the recorded Version; a copy
// taken before the removal is rejected because the removed slot no
// longer points at an archetype.
type Entity struct {
	ID      uint32
	Version uint32
}

// entityMeta is the location of one entity's row: which archetype table
// holds it, and at what row index within that table's columns.
type entityMeta struct {
	archetype *Archetype
	row       int
	version   uint32
}

// EntityHandle is a small value returned by Database.Entity and query
// iteration, pairing an Entity with the Database that owns it. It must
// not be retained across a structural mutation of that entity: the
// underlying row may move to a different archetype and row index.
type EntityHandle struct {
	Entity Entity
	db     *Database
}

// IsValid reports whether the handle's entity still exists in its
// Database at the version the handle was taken.
func (h EntityHandle) IsValid() bool {
	if h.db == nil {
		return false
	}
	meta, ok := h.db.lookup(h.Entity.ID)
	return ok && meta.archetype != nil && meta.version == h.Entity.Version
}
