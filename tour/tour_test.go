package tour_test

import (
	"testing"

	"github.com/katalvlaran/primalcut/coregraph"
	"github.com/katalvlaran/primalcut/tour"
	"github.com/stretchr/testify/require"
)

func pentagonGraph(t *testing.T) *coregraph.CoreGraph {
	t.Helper()
	g := coregraph.New(5)
	for i := 0; i < 5; i++ {
		_, err := g.AddEdge(i, (i+1)%5, float64(i+1))
		require.NoError(t, err)
	}
	return g
}

func TestNew_BuildsIndicatorAndLength(t *testing.T) {
	g := pentagonGraph(t)
	tb, err := tour.New(g, []int{0, 1, 2, 3, 4})
	require.NoError(t, err)

	require.Equal(t, 5, tb.N())
	require.InDelta(t, 1+2+3+4+5, tb.Length(), 1e-9)
	for i := 0; i < 5; i++ {
		idx, ok := g.EdgeIndex(i, (i+1)%5)
		require.True(t, ok)
		require.True(t, tb.InTour(idx))
	}
	require.Equal(t, 0, tb.Pos(0))
	require.Equal(t, 3, tb.Pos(3))
}

func TestNew_RejectsNonPermutation(t *testing.T) {
	g := pentagonGraph(t)
	_, err := tour.New(g, []int{0, 1, 1, 3, 4})
	require.ErrorIs(t, err, tour.ErrNotHamiltonian)

	_, err = tour.New(g, []int{0, 1, 2, 3})
	require.ErrorIs(t, err, tour.ErrNotHamiltonian)
}

func TestNew_RejectsMissingEdge(t *testing.T) {
	g := pentagonGraph(t)
	// 0->2 is a chord, not a cycle edge in this graph.
	_, err := tour.New(g, []int{0, 2, 1, 3, 4})
	require.ErrorIs(t, err, tour.ErrMissingEdge)
}

func TestSetActiveTour_ReplacesIndicatorAndLength(t *testing.T) {
	g := pentagonGraph(t)
	tb, err := tour.New(g, []int{0, 1, 2, 3, 4})
	require.NoError(t, err)
	original := tb.Length()

	require.NoError(t, tb.SetActiveTour(g, []int{4, 3, 2, 1, 0}))
	require.InDelta(t, original, tb.Length(), 1e-9)
	require.Equal(t, 4, tb.Pos(0))
	require.Equal(t, []int{4, 3, 2, 1, 0}, tb.Nodes())
}

func TestHandleAug_RejectsNonImprovingTour(t *testing.T) {
	g := pentagonGraph(t)
	tb, err := tour.New(g, []int{0, 1, 2, 3, 4})
	require.NoError(t, err)

	// Same cycle walked in reverse has identical length: not a strict
	// improvement, so HandleAug must reject it.
	err = tb.HandleAug(g, []int{4, 3, 2, 1, 0})
	require.Error(t, err)
}

func TestGrowEdgeIndicator_PreservesExistingBitsAndExtends(t *testing.T) {
	g := pentagonGraph(t)
	tb, err := tour.New(g, []int{0, 1, 2, 3, 4})
	require.NoError(t, err)

	before := append([]bool(nil), tb.EdgeIndicator()...)
	tb.GrowEdgeIndicator(len(before) + 3)
	after := tb.EdgeIndicator()

	require.Len(t, after, len(before)+3)
	for i, v := range before {
		require.Equal(t, v, after[i])
	}
	for i := len(before); i < len(after); i++ {
		require.False(t, after[i])
	}

	// Shrinking requests are no-ops.
	tb.GrowEdgeIndicator(1)
	require.Len(t, tb.EdgeIndicator(), len(before)+3)
}
