package archetypedb_test

import (
	"testing"

	"github.com/edwinsyarief/archetypedb"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTransactionDeferredCommandsApplyOnExecute(t *testing.T) {
	db := newTestDatabase(t)

	tx := db.Begin()
	e, err := tx.CreateEntity(archetypedb.NewComponentValue(position{X: 1}))
	require.NoError(t, err)

	// Not yet visible: the create command has not executed.
	_, ok := db.Entity(e.ID)
	require.False(t, ok)

	require.NoError(t, tx.Execute())

	_, ok = db.Entity(e.ID)
	require.True(t, ok)
	pos, ok := archetypedb.GetComponent[position](db, e)
	require.True(t, ok)
	require.Equal(t, float32(1), pos.X)
}

func TestTransactionExecuteTwiceErrorsWithoutDoubleCleanup(t *testing.T) {
	db := newTestDatabase(t)
	core, logs := observer.New(zapcore.DebugLevel)
	db.WithLogger(zap.New(core))

	tx := db.Begin()
	_, err := tx.CreateEntity(archetypedb.NewComponentValue(position{}))
	require.NoError(t, err)

	require.NoError(t, tx.Execute())
	err = tx.Execute()
	require.ErrorIs(t, err, archetypedb.ErrTransactionAlreadyExecuted)

	// The create command's cleanup logs once; the rejected second Execute
	// must not run it again.
	require.Equal(t, 1, logs.FilterMessage("transaction released create command").Len())
}

func TestTransactionQueryPassesThroughImmediately(t *testing.T) {
	db := newTestDatabase(t)
	_, err := db.CreateEntity(archetypedb.NewComponentValue(position{}))
	require.NoError(t, err)

	tx := db.Begin()
	posID := archetypedb.RegisterComponent[position]().ID
	require.Equal(t, 1, tx.Query(posID).Count())
	require.NoError(t, tx.Execute())
}

func TestTransactionDiscardRunsNoCommands(t *testing.T) {
	db := newTestDatabase(t)

	tx := db.Begin()
	e, err := tx.CreateEntity(archetypedb.NewComponentValue(position{}))
	require.NoError(t, err)

	tx.Discard()

	_, ok := db.Entity(e.ID)
	require.False(t, ok)
}

func TestTransactionRemoveEntityQueued(t *testing.T) {
	db := newTestDatabase(t)
	e, err := db.CreateEntity(archetypedb.NewComponentValue(position{}))
	require.NoError(t, err)

	tx := db.Begin()
	require.NoError(t, tx.RemoveEntity(e))
	_, ok := db.Entity(e.ID)
	require.True(t, ok) // still present until Execute

	require.NoError(t, tx.Execute())
	_, ok = db.Entity(e.ID)
	require.False(t, ok)
}
