package archetypedb_test

import (
	"testing"

	"github.com/edwinsyarief/archetypedb"
	"github.com/stretchr/testify/require"
)

func TestQueryCountAndWithout(t *testing.T) {
	db := newTestDatabase(t)

	_, err := db.CreateEntity(archetypedb.NewComponentValue(position{}), archetypedb.NewComponentValue(velocity{}))
	require.NoError(t, err)
	_, err = db.CreateEntity(archetypedb.NewComponentValue(position{}))
	require.NoError(t, err)

	posID := archetypedb.RegisterComponent[position]().ID
	velID := archetypedb.RegisterComponent[velocity]().ID

	all := db.Query(posID)
	require.Equal(t, 2, all.Count())

	withoutVel := db.Query(posID).Without(velID)
	require.Equal(t, 1, withoutVel.Count())
}

func TestQueryCacheInvalidatesOnNewArchetype(t *testing.T) {
	db := newTestDatabase(t)
	posID := archetypedb.RegisterComponent[position]().ID

	q := db.Query(posID)
	require.Equal(t, 0, q.Count())

	_, err := db.CreateEntity(archetypedb.NewComponentValue(position{}))
	require.NoError(t, err)

	require.Equal(t, 1, q.Count())
}

func TestQueryFirstReturnsHandle(t *testing.T) {
	db := newTestDatabase(t)
	e, err := db.CreateEntity(archetypedb.NewComponentValue(position{X: 1}))
	require.NoError(t, err)

	posID := archetypedb.RegisterComponent[position]().ID
	handle, ok := db.Query(posID).First()
	require.True(t, ok)
	require.Equal(t, e, handle.Entity)
}

func TestQueryIterVisitsEveryMatchingRow(t *testing.T) {
	db := newTestDatabase(t)
	for i := 0; i < 5; i++ {
		_, err := db.CreateEntity(archetypedb.NewComponentValue(position{X: float32(i)}))
		require.NoError(t, err)
	}

	posID := archetypedb.RegisterComponent[position]().ID
	it := db.Query(posID).Iter()
	seen := 0
	for it.Next() {
		seen++
	}
	require.Equal(t, 5, seen)
}
