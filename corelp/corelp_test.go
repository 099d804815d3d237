package corelp_test

import (
	"testing"

	"github.com/katalvlaran/primalcut/coregraph"
	"github.com/katalvlaran/primalcut/corelp"
	"github.com/katalvlaran/primalcut/extcuts"
	"github.com/katalvlaran/primalcut/lp"
	"github.com/katalvlaran/primalcut/tour"
	"github.com/stretchr/testify/require"
)

// buildSquare returns a 4-node cycle 0-1-2-3-0, each edge length 1, plus
// the two diagonals (used to exercise fractional detection).
func buildSquare(t *testing.T) (*coregraph.CoreGraph, *tour.TourBank) {
	t.Helper()
	g := coregraph.New(4)
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}, {1, 3}} {
		_, err := g.AddEdge(e[0], e[1], 1)
		require.NoError(t, err)
	}
	tb, err := tour.New(g, []int{0, 1, 2, 3})
	require.NoError(t, err)
	return g, tb
}

func TestCoreLP_TourBasisAndPivotClassifiesFathomedTour(t *testing.T) {
	g, tb := buildSquare(t)
	ext := extcuts.New()
	oracle := lp.NewDenseSimplex()

	c, err := corelp.New(g, tb, ext, oracle)
	require.NoError(t, err)
	require.NoError(t, c.TourBasis())
	require.NoError(t, c.FactorBasis())

	result, err := c.PrimalPivot()
	require.NoError(t, err)
	require.Equal(t, corelp.FathomedTour, result)
	require.InDelta(t, 4.0, c.ObjVal(), 1e-6)
}

func TestCoreLP_CheckInvariantHoldsAfterNew(t *testing.T) {
	g, tb := buildSquare(t)
	ext := extcuts.New()
	oracle := lp.NewDenseSimplex()
	c, err := corelp.New(g, tb, ext, oracle)
	require.NoError(t, err)
	require.NoError(t, c.CheckInvariant())
}
