// Package archetypedb implements an archetype-based Entity-Component
// storage engine: columnar tables grouped by exact component set, with
// structural-mutation, query, grouping, and deferred-transaction
// primitives on top.
package archetypedb

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// ComponentId is a stable 64-bit identifier for a component type, derived
// from the type's fully qualified name. It is deterministic across call
// sites within a process but is not stable across process restarts or Go
// versions, since it depends on reflect.Type naming.
type ComponentId uint64

// TraitKind distinguishes plain trait tags from grouped ones that carry a
// group key.
type TraitKind uint8

const (
	TraitPlain TraitKind = iota
	TraitGrouped
)

// TraitDescriptor is optional per-type metadata identifying a virtual
// "trait" component a real component type participates in, plus, for
// grouped traits, the signed group key used by GroupBy.
type TraitDescriptor struct {
	ID       ComponentId
	Kind     TraitKind
	GroupKey int32
}

// ComponentMeta is the identity and layout tuple for one component type:
// id, size, alignment, and the derived stride. Two metas are equal iff
// ID, Size, Align, and Stride all match.
type ComponentMeta struct {
	ID     ComponentId
	Size   uintptr
	Align  uintptr
	Stride uintptr
	Trait  *TraitDescriptor
}

// Equal reports whether two metas describe the same identity and layout.
func (m ComponentMeta) Equal(o ComponentMeta) bool {
	return m.ID == o.ID && m.Size == o.Size && m.Align == o.Align && m.Stride == o.Stride
}

func alignUp(size, align uintptr) uintptr {
	if align == 0 {
		return size
	}
	return (size + align - 1) &^ (align - 1)
}

func makeMeta(id ComponentId, size, align uintptr, trait *TraitDescriptor) ComponentMeta {
	stride := uintptr(0)
	if size > 0 {
		stride = alignUp(size, align)
	}
	return ComponentMeta{ID: id, Size: size, Align: align, Stride: stride, Trait: trait}
}

// registryMu guards the package-level registry maps. Concurrent registry
// use is otherwise unspecified, but registration commonly happens from
// package init()s whose ordering across goroutines isn't guaranteed, so
// the maps get a lock rather than being left to race.
var (
	registryMu  sync.RWMutex
	typeToMeta  = make(map[reflect.Type]ComponentMeta, 64)
	idToMeta    = make(map[ComponentId]ComponentMeta, 64)
	traitByType = make(map[reflect.Type]*TraitDescriptor, 16)
)

// hashTypeName derives a ComponentId from a type's fully qualified name
// using a stable, non-cryptographic 64-bit hash. Collisions between
// distinct types are only as likely as a 64-bit hash collision; repeated
// calls for the same type are avoided by the memoized registry rather
// than by rehashing.
func hashTypeName(t reflect.Type) ComponentId {
	name := t.PkgPath() + "." + t.Name()
	if name == "." {
		name = t.String()
	}
	return ComponentId(xxhash.Sum64String(name))
}

// ResetRegistry clears the process-wide component registry. Intended for
// tests that need a clean slate between independent Database instances
// that otherwise share no state.
func ResetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	typeToMeta = make(map[reflect.Type]ComponentMeta, 64)
	idToMeta = make(map[ComponentId]ComponentMeta, 64)
	traitByType = make(map[reflect.Type]*TraitDescriptor, 16)
}

// RegisterComponent registers T as a component type, deriving its
// ComponentMeta from reflection, and returns the meta. Registering the
// same type twice returns the existing meta; it never allocates storage.
func RegisterComponent[T any]() ComponentMeta {
	var zero T
	t := reflect.TypeOf(zero)
	return registerType(t)
}

// RegisterTrait associates a trait descriptor with T's metadata. If T is
// already registered, its memoized ComponentMeta is updated in place, but
// archetypes created before the call keep the metas they were built with
// and do not observe the trait.
func RegisterTrait[T any](traitID ComponentId, kind TraitKind, groupKey int32) {
	var zero T
	t := reflect.TypeOf(zero)
	registryMu.Lock()
	defer registryMu.Unlock()
	traitByType[t] = &TraitDescriptor{ID: traitID, Kind: kind, GroupKey: groupKey}
	if meta, ok := typeToMeta[t]; ok {
		meta.Trait = traitByType[t]
		typeToMeta[t] = meta
		idToMeta[meta.ID] = meta
	}
}

func registerType(t reflect.Type) ComponentMeta {
	registryMu.RLock()
	if meta, ok := typeToMeta[t]; ok {
		registryMu.RUnlock()
		return meta
	}
	registryMu.RUnlock()

	registryMu.Lock()
	defer registryMu.Unlock()
	if meta, ok := typeToMeta[t]; ok {
		return meta
	}
	id := hashTypeName(t)
	var size, align uintptr
	if t != nil {
		size = t.Size()
		align = uintptr(t.Align())
	}
	meta := makeMeta(id, size, align, traitByType[t])
	typeToMeta[t] = meta
	idToMeta[id] = meta
	return meta
}

// MetaOf returns the ComponentMeta for T, registering it on first use.
func MetaOf[T any]() ComponentMeta {
	return RegisterComponent[T]()
}

// TryMetaOf returns the ComponentMeta for T if it has already been
// registered, without registering it as a side effect.
func TryMetaOf[T any]() (ComponentMeta, bool) {
	var zero T
	t := reflect.TypeOf(zero)
	registryMu.RLock()
	defer registryMu.RUnlock()
	meta, ok := typeToMeta[t]
	return meta, ok
}

// MetaByID looks up a previously registered ComponentMeta by its id.
func MetaByID(id ComponentId) (ComponentMeta, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	meta, ok := idToMeta[id]
	return meta, ok
}

// bytesFromPointer views size bytes starting at ptr as a byte slice,
// without copying. The returned slice aliases the memory ptr points into
// and is only valid for the duration of the call.
func bytesFromPointer(ptr unsafe.Pointer, size uintptr) []byte {
	if ptr == nil || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), size)
}

// bytesOf views a value of type T as its raw byte representation, without
// copying. The returned slice aliases comp and is only valid for the
// duration of the call; copy it before storing it in a column.
func bytesOf[T any](comp *T) []byte {
	var zero T
	size := unsafe.Sizeof(zero)
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(comp)), size)
}
