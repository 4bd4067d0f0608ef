package archetypedb

import (
	"runtime"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// command is a queued structural mutation: exec applies it to the
// Database, cleanup runs exactly once regardless of whether exec ever ran.
type command struct {
	exec    func(*Database) error
	cleanup func()
}

// Transaction defers a batch of structural mutations for FIFO execution.
// Reads (GetEntity, Query, GroupBy) pass straight through to the
// underlying Database and observe its state as of the call, not as of
// Execute.
//
// Go has no deterministic destructors, so a Transaction dropped without
// calling Execute or Discard is caught, best-effort, by a finalizer that
// calls Discard and logs a warning; callers should not rely on the
// finalizer for correctness, since finalizer timing is not deterministic.
type Transaction struct {
	db        *Database
	TraceID   uuid.UUID
	commands  []command
	executed  bool
	discarded bool
}

// Begin starts a new deferred transaction against db.
func (db *Database) Begin() *Transaction {
	tx := &Transaction{db: db, TraceID: uuid.New()}
	runtime.SetFinalizer(tx, finalizeTransaction)
	return tx
}

func finalizeTransaction(tx *Transaction) {
	if tx.executed || tx.discarded {
		return
	}
	tx.db.logger.Warn("transaction garbage collected without Execute or Discard",
		zap.String("trace_id", tx.TraceID.String()))
	tx.discard()
}

// CreateEntity reserves an entity id synchronously and queues a command
// to populate it with components when the transaction executes.
func (tx *Transaction) CreateEntity(components ...ComponentValue) (Entity, error) {
	if tx.executed {
		return Entity{}, errors.Wrap(ErrTransactionAlreadyExecuted, "create entity")
	}
	e := tx.db.ReserveEntityID()
	comps := append([]ComponentValue(nil), components...)
	tx.commands = append(tx.commands, command{
		exec: func(db *Database) error {
			return db.CreateEntityWithID(e, comps...)
		},
		cleanup: func() {
			tx.db.logger.Debug("transaction released create command", zap.Uint32("entity_id", e.ID))
		},
	})
	return e, nil
}

// RemoveEntity queues an entity removal.
func (tx *Transaction) RemoveEntity(e Entity) error {
	if tx.executed {
		return errors.Wrap(ErrTransactionAlreadyExecuted, "remove entity")
	}
	tx.commands = append(tx.commands, command{
		exec:    func(db *Database) error { return db.RemoveEntity(e) },
		cleanup: func() {},
	})
	return nil
}

// AddComponents queues a component addition/overwrite.
func (tx *Transaction) AddComponents(e Entity, components ...ComponentValue) error {
	if tx.executed {
		return errors.Wrap(ErrTransactionAlreadyExecuted, "add components")
	}
	comps := append([]ComponentValue(nil), components...)
	tx.commands = append(tx.commands, command{
		exec:    func(db *Database) error { return db.AddComponents(e, comps...) },
		cleanup: func() {},
	})
	return nil
}

// RemoveComponents queues a component removal.
func (tx *Transaction) RemoveComponents(e Entity, ids ...ComponentId) error {
	if tx.executed {
		return errors.Wrap(ErrTransactionAlreadyExecuted, "remove components")
	}
	idsCopy := append([]ComponentId(nil), ids...)
	tx.commands = append(tx.commands, command{
		exec:    func(db *Database) error { return db.RemoveComponents(e, idsCopy...) },
		cleanup: func() {},
	})
	return nil
}

// GetEntity, Query, and GroupBy pass straight through to the underlying
// Database; they do not queue and are not deferred.

func (tx *Transaction) GetEntity(id uint32) (EntityHandle, bool) {
	return tx.db.Entity(id)
}

func (tx *Transaction) Query(required ...ComponentId) *QueryResult {
	return tx.db.Query(required...)
}

func (tx *Transaction) GroupBy(traitID ComponentId) *GroupByResult {
	return tx.db.GroupBy(traitID)
}

// Execute runs every queued command in FIFO order, stopping at (but still
// cleaning up after) the first error. Every command's cleanup runs
// exactly once: commands that ran are cleaned up as they run, commands
// left unrun after an error are cleaned up in the same pass. Execute on a
// discarded transaction runs nothing and returns
// ErrTransactionAlreadyExecuted.
func (tx *Transaction) Execute() error {
	if tx.executed || tx.discarded {
		return errors.Wrap(ErrTransactionAlreadyExecuted, "execute")
	}
	tx.executed = true
	runtime.SetFinalizer(tx, nil)

	var firstErr error
	for _, cmd := range tx.commands {
		if firstErr == nil {
			firstErr = cmd.exec(tx.db)
		}
		cmd.cleanup()
	}
	return firstErr
}

// Discard abandons the transaction: no queued command executes, but every
// command's cleanup still runs exactly once. Calling Discard after
// Execute is a no-op.
func (tx *Transaction) Discard() {
	if tx.executed {
		return
	}
	runtime.SetFinalizer(tx, nil)
	tx.discard()
}

func (tx *Transaction) discard() {
	if tx.discarded {
		return
	}
	tx.discarded = true
	for _, cmd := range tx.commands {
		cmd.cleanup()
	}
}
