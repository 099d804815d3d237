package clique_test

import (
	"testing"

	"github.com/katalvlaran/primalcut/clique"
	"github.com/stretchr/testify/require"
)

func TestClique_EqualityIgnoresSegmentOrder(t *testing.T) {
	a := clique.New([]clique.Segment{{Start: 3, End: 5}, {Start: 0, End: 1}})
	b := clique.New([]clique.Segment{{Start: 0, End: 1}, {Start: 3, End: 5}})
	require.True(t, a.Equal(b))
	require.Equal(t, a.Hash(), b.Hash())
}

func TestSegment_WrapAround(t *testing.T) {
	s := clique.Segment{Start: 6, End: 1} // wraps past n-1
	require.True(t, s.Contains(7))
	require.True(t, s.Contains(0))
	require.False(t, s.Contains(3))
	require.Equal(t, 4, s.Size(8)) // positions 6,7,0,1
}

func TestBank_AddDelRefcounting(t *testing.T) {
	tour := []int{0, 1, 2, 3, 4}
	perm := []int{0, 1, 2, 3, 4}
	bank := clique.NewBank(tour, perm)

	h1 := bank.Add([]clique.Segment{{Start: 0, End: 1}})
	require.Equal(t, 1, h1.Refs())
	require.Equal(t, 1, bank.Size())

	h2 := bank.Add([]clique.Segment{{Start: 0, End: 1}})
	require.Same(t, h1, h2, "re-adding the same clique must return the shared handle")
	require.Equal(t, 2, h1.Refs())
	require.Equal(t, 1, bank.Size(), "bank size must not grow for a duplicate insert")

	bank.Del(h1)
	require.Equal(t, 1, h1.Refs())
	require.Equal(t, 1, bank.Size())

	bank.Del(h2)
	require.Equal(t, 0, bank.Size(), "refcount reaching zero must remove the entry")
}

func TestClique_NodeList(t *testing.T) {
	tour := []int{7, 2, 9, 4, 1}
	c := clique.New([]clique.Segment{{Start: 1, End: 2}})
	require.Equal(t, []int{2, 9}, c.NodeList(tour))
}
