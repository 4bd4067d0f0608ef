package archetypedb_test

import (
	"testing"

	"github.com/edwinsyarief/archetypedb"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type position struct{ X, Y float32 }
type velocity struct{ X, Y float32 }
type health struct{ Current, Max int }
type tag struct{}

func newTestDatabase(t *testing.T) *archetypedb.Database {
	t.Helper()
	archetypedb.ResetRegistry()
	cfg, err := archetypedb.LoadEngineConfig()
	require.NoError(t, err)
	return archetypedb.NewDatabase(cfg, nil, zap.NewNop())
}

func TestCreateEntityAndReadBack(t *testing.T) {
	db := newTestDatabase(t)

	e, err := db.CreateEntity(
		archetypedb.NewComponentValue(position{X: 1, Y: 2}),
		archetypedb.NewComponentValue(velocity{X: 3, Y: 4}),
	)
	require.NoError(t, err)

	pos, ok := archetypedb.GetComponent[position](db, e)
	require.True(t, ok)
	require.Equal(t, position{X: 1, Y: 2}, *pos)

	vel, ok := archetypedb.GetComponent[velocity](db, e)
	require.True(t, ok)
	require.Equal(t, velocity{X: 3, Y: 4}, *vel)
}

func TestArchetypeIsOrderIndependent(t *testing.T) {
	db := newTestDatabase(t)

	a, err := db.CreateEntity(
		archetypedb.NewComponentValue(position{}),
		archetypedb.NewComponentValue(velocity{}),
	)
	require.NoError(t, err)
	b, err := db.CreateEntity(
		archetypedb.NewComponentValue(velocity{}),
		archetypedb.NewComponentValue(position{}),
	)
	require.NoError(t, err)

	_, okA := db.Entity(a.ID)
	_, okB := db.Entity(b.ID)
	require.True(t, okA)
	require.True(t, okB)

	q := db.Query(archetypedb.RegisterComponent[position]().ID, archetypedb.RegisterComponent[velocity]().ID)
	require.Equal(t, 2, q.Count())

	it := q.Iter()
	require.True(t, it.Next())
	firstArch := it.Archetype().ID()
	require.True(t, it.Next())
	require.Equal(t, firstArch, it.Archetype().ID())
}

func TestAddThenRemoveComponentPreservesIdentity(t *testing.T) {
	db := newTestDatabase(t)

	e, err := db.CreateEntity(archetypedb.NewComponentValue(position{X: 5, Y: 6}))
	require.NoError(t, err)

	err = archetypedb.AddComponent(db, e, health{Current: 10, Max: 10})
	require.NoError(t, err)

	err = archetypedb.RemoveComponent[health](db, e)
	require.NoError(t, err)

	pos, ok := archetypedb.GetComponent[position](db, e)
	require.True(t, ok)
	require.Equal(t, position{X: 5, Y: 6}, *pos)

	_, ok = archetypedb.GetComponent[health](db, e)
	require.False(t, ok)
}

func TestRemoveEntitySwapFixesUpMovedEntity(t *testing.T) {
	db := newTestDatabase(t)

	first, err := db.CreateEntity(archetypedb.NewComponentValue(position{X: 1}))
	require.NoError(t, err)
	_, err = db.CreateEntity(archetypedb.NewComponentValue(position{X: 2}))
	require.NoError(t, err)
	third, err := db.CreateEntity(archetypedb.NewComponentValue(position{X: 3}))
	require.NoError(t, err)

	require.NoError(t, db.RemoveEntity(first))

	pos, ok := archetypedb.GetComponent[position](db, third)
	require.True(t, ok)
	require.Equal(t, float32(3), pos.X)
}

func TestRemoveComponentsRejectsRemovingEverything(t *testing.T) {
	db := newTestDatabase(t)

	e, err := db.CreateEntity(archetypedb.NewComponentValue(position{}))
	require.NoError(t, err)

	err = archetypedb.RemoveComponent[position](db, e)
	require.ErrorIs(t, err, archetypedb.ErrCannotRemoveAllComponents)
}

func TestAddComponentsEmptyCallIsNoOp(t *testing.T) {
	db := newTestDatabase(t)

	e, err := db.CreateEntity(archetypedb.NewComponentValue(position{X: 9}))
	require.NoError(t, err)

	require.NoError(t, db.AddComponents(e))

	pos, ok := archetypedb.GetComponent[position](db, e)
	require.True(t, ok)
	require.Equal(t, float32(9), pos.X)
}

func TestRemoveEntityThenLookupFails(t *testing.T) {
	db := newTestDatabase(t)

	e, err := db.CreateEntity(archetypedb.NewComponentValue(tag{}))
	require.NoError(t, err)
	require.NoError(t, db.RemoveEntity(e))

	_, ok := db.Entity(e.ID)
	require.False(t, ok)

	err = db.RemoveEntity(e)
	require.ErrorIs(t, err, archetypedb.ErrEntityNotFound)
}

func TestArchetypeByIDRoundTripsAndReportsMisses(t *testing.T) {
	db := newTestDatabase(t)

	_, err := db.CreateEntity(archetypedb.NewComponentValue(position{}))
	require.NoError(t, err)

	posID := archetypedb.RegisterComponent[position]().ID
	it := db.Query(posID).Iter()
	require.True(t, it.Next())
	wantID := it.Archetype().ID()

	got, err := db.ArchetypeByID(wantID)
	require.NoError(t, err)
	require.Equal(t, wantID, got.ID())

	_, err = db.ArchetypeByID(archetypedb.ArchetypeID(0xdeadbeef))
	require.ErrorIs(t, err, archetypedb.ErrArchetypeNotFound)
}

func TestAddComponentsCacheSurvivesTargetArchetypePruning(t *testing.T) {
	db := newTestDatabase(t)

	e1, err := db.CreateEntity(archetypedb.NewComponentValue(position{X: 1}))
	require.NoError(t, err)
	e2, err := db.CreateEntity(archetypedb.NewComponentValue(position{X: 2}))
	require.NoError(t, err)

	// Send e1 through Position -> Position+Health and back, caching and
	// then pruning the Position+Health archetype the cache points at.
	require.NoError(t, archetypedb.AddComponent(db, e1, health{Current: 1, Max: 1}))
	require.NoError(t, archetypedb.RemoveComponent[health](db, e1))

	// e2 now takes the same cached transition; it must land in a live,
	// queryable archetype rather than the pruned, detached one.
	require.NoError(t, archetypedb.AddComponent(db, e2, health{Current: 2, Max: 2}))

	posID := archetypedb.RegisterComponent[position]().ID
	healthID := archetypedb.RegisterComponent[health]().ID
	require.Equal(t, 1, db.Query(posID, healthID).Count())

	pos, ok := archetypedb.GetComponent[position](db, e2)
	require.True(t, ok)
	require.Equal(t, float32(2), pos.X)

	h, ok := archetypedb.GetComponent[health](db, e2)
	require.True(t, ok)
	require.Equal(t, 2, h.Current)
}
