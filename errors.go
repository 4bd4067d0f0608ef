package archetypedb

import "github.com/pkg/errors"

// Sentinel errors for the taxonomy described by the storage engine's
// error handling design. Wrap these with errors.Wrapf at call sites so
// callers can still errors.Is/errors.As while getting a readable stack.
var (
	ErrEntityNotFound             = errors.New("archetypedb: entity not found")
	ErrArchetypeNotFound          = errors.New("archetypedb: archetype not found")
	ErrIndexOutOfBounds           = errors.New("archetypedb: index out of bounds")
	ErrTypeMismatch               = errors.New("archetypedb: component type mismatch")
	ErrCannotRemoveAllComponents  = errors.New("archetypedb: cannot remove all components from an entity")
	ErrTransactionAlreadyExecuted = errors.New("archetypedb: transaction already executed")
	ErrOutOfMemory                = errors.New("archetypedb: requested capacity would overflow")
)
