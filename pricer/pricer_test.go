package pricer_test

import (
	"testing"

	"github.com/katalvlaran/primalcut/coregraph"
	"github.com/katalvlaran/primalcut/corelp"
	"github.com/katalvlaran/primalcut/extcuts"
	"github.com/katalvlaran/primalcut/instance"
	"github.com/katalvlaran/primalcut/lp"
	"github.com/katalvlaran/primalcut/pricer"
	"github.com/katalvlaran/primalcut/tour"
	"github.com/stretchr/testify/require"
)

// buildPentagon wires a 5-node cycle (all edges length 1) as the only
// CoreGraph edges, with TourBasis+FactorBasis+PrimalPivot already run so
// the oracle's duals are populated. Since n=5 is odd, TourBasis installs
// every tour edge as basic (no artificial participates, per corelp's
// circulant-determinant argument), which makes every degree dual exactly
// 0.5 here (all five basic-edge objective costs are 1, and the resulting
// cyclic dual system pi_i+pi_{i+1}=1 for all i has the unique symmetric
// solution pi_i=0.5).
func buildPentagon(t *testing.T, chordDist func(i, j int) float64) (*corelp.CoreLP, *instance.Instance) {
	t.Helper()
	g := coregraph.New(5)
	for i := 0; i < 5; i++ {
		_, err := g.AddEdge(i, (i+1)%5, 1)
		require.NoError(t, err)
	}
	tb, err := tour.New(g, []int{0, 1, 2, 3, 4})
	require.NoError(t, err)
	ext := extcuts.New()
	oracle := lp.NewDenseSimplex()
	c, err := corelp.New(g, tb, ext, oracle)
	require.NoError(t, err)
	require.NoError(t, c.TourBasis())
	require.NoError(t, c.FactorBasis())
	result, err := c.PrimalPivot()
	require.NoError(t, err)
	require.Equal(t, corelp.FathomedTour, result)

	inst := &instance.Instance{N: 5, Dist: func(i, j int) float64 {
		if (j == (i+1)%5) || (i == (j+1)%5) {
			return 1
		}
		return chordDist(i, j)
	}}
	return c, inst
}

func TestPricer_FindsCheapChords(t *testing.T) {
	// Every degree dual is 0.5 (see buildPentagon), so a chord (u,v) has
	// reduced cost d(u,v) - 1. Chords (0,2) and (1,3) are priced cheap
	// enough to have negative reduced cost; the rest are priced high.
	c, inst := buildPentagon(t, func(i, j int) float64 {
		if (i == 0 && j == 2) || (i == 2 && j == 0) {
			return 0.3
		}
		if (i == 1 && j == 3) || (i == 3 && j == 1) {
			return 0.4
		}
		return 5.0
	})
	before := c.Graph().NumEdges()

	pr, err := pricer.New(c, inst)
	require.NoError(t, err)
	stat, err := pr.AddEdges(corelp.FathomedTour)
	require.NoError(t, err)
	require.Equal(t, pricer.Full, stat)

	require.Equal(t, before+2, c.Graph().NumEdges())
	_, ok02 := c.Graph().EdgeIndex(0, 2)
	require.True(t, ok02)
	_, ok13 := c.Graph().EdgeIndex(1, 3)
	require.True(t, ok13)
	_, ok03 := c.Graph().EdgeIndex(0, 3)
	require.False(t, ok03)
}

func TestPricer_FullOptWhenNoImprovingEdge(t *testing.T) {
	c, inst := buildPentagon(t, func(i, j int) float64 { return 5.0 })
	before := c.Graph().NumEdges()

	pr, err := pricer.New(c, inst)
	require.NoError(t, err)
	stat, err := pr.AddEdges(corelp.FathomedTour)
	require.NoError(t, err)
	require.Equal(t, pricer.FullOpt, stat)
	require.Equal(t, before, c.Graph().NumEdges())
}
