package archetypedb_test

import (
	"testing"

	"github.com/edwinsyarief/archetypedb"
	"github.com/stretchr/testify/require"
)

type clock struct{ Frame int }
type settings struct{ Name string }

func TestResourcesAddGet(t *testing.T) {
	r := archetypedb.NewResources()
	archetypedb.Add(r, clock{Frame: 1})

	got, ok := archetypedb.Get[clock](r)
	require.True(t, ok)
	require.Equal(t, 1, got.Frame)
}

func TestResourcesHas(t *testing.T) {
	r := archetypedb.NewResources()
	require.False(t, archetypedb.Has[clock](r))
	archetypedb.Add(r, clock{})
	require.True(t, archetypedb.Has[clock](r))
}

func TestResourcesAddSameTypePanics(t *testing.T) {
	r := archetypedb.NewResources()
	archetypedb.Add(r, clock{})
	require.Panics(t, func() { archetypedb.Add(r, clock{}) })
}

func TestResourcesDistinctTypesCoexist(t *testing.T) {
	r := archetypedb.NewResources()
	archetypedb.Add(r, clock{Frame: 2})
	archetypedb.Add(r, settings{Name: "test"})

	c, ok := archetypedb.Get[clock](r)
	require.True(t, ok)
	require.Equal(t, 2, c.Frame)

	s, ok := archetypedb.Get[settings](r)
	require.True(t, ok)
	require.Equal(t, "test", s.Name)
}

func TestResourcesRemoveAndClear(t *testing.T) {
	r := archetypedb.NewResources()
	archetypedb.Add(r, clock{Frame: 3})
	archetypedb.Remove[clock](r)
	require.False(t, archetypedb.Has[clock](r))

	archetypedb.Add(r, clock{Frame: 4})
	archetypedb.Add(r, settings{Name: "x"})
	r.Clear()
	require.False(t, archetypedb.Has[clock](r))
	require.False(t, archetypedb.Has[settings](r))
}
