package tablemanager

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pokerserver/internal/table"
)

func TestGetOrCreateIsIdempotentPerID(t *testing.T) {
	m := New(table.DefaultCashConfig(), nil, nil)

	t1, err := m.GetOrCreate("room-1")
	require.NoError(t, err)
	t2, err := m.GetOrCreate("room-1")
	require.NoError(t, err)
	require.Same(t, t1, t2)

	other, err := m.GetOrCreate("room-2")
	require.NoError(t, err)
	require.NotSame(t, t1, other)

	require.ElementsMatch(t, []string{"room-1", "room-2"}, m.List())
}

func TestRemoveDropsFromDirectory(t *testing.T) {
	m := New(table.DefaultCashConfig(), nil, nil)
	_, err := m.GetOrCreate("room-1")
	require.NoError(t, err)

	m.Remove("room-1")
	_, ok := m.Get("room-1")
	require.False(t, ok)
	require.Empty(t, m.List())
}
