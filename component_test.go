package archetypedb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sampleA struct{ V int32 }
type sampleB struct{ V int64 }

func TestRegisterComponentIsStablePerType(t *testing.T) {
	ResetRegistry()
	a1 := RegisterComponent[sampleA]()
	a2 := RegisterComponent[sampleA]()
	require.Equal(t, a1.ID, a2.ID)
	require.True(t, a1.Equal(a2))
}

func TestRegisterComponentDistinctTypesDistinctIDs(t *testing.T) {
	ResetRegistry()
	a := RegisterComponent[sampleA]()
	b := RegisterComponent[sampleB]()
	require.NotEqual(t, a.ID, b.ID)
}

func TestTryMetaOfWithoutRegistration(t *testing.T) {
	ResetRegistry()
	_, ok := TryMetaOf[sampleA]()
	require.False(t, ok)
	RegisterComponent[sampleA]()
	_, ok = TryMetaOf[sampleA]()
	require.True(t, ok)
}

func TestComponentMetaStrideRespectsAlignment(t *testing.T) {
	ResetRegistry()
	meta := RegisterComponent[sampleB]()
	require.GreaterOrEqual(t, meta.Stride, meta.Size)
	require.Equal(t, uintptr(0), meta.Stride%meta.Align)
}
