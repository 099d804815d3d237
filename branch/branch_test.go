package branch_test

import (
	"testing"

	"github.com/katalvlaran/primalcut/branch"
	"github.com/katalvlaran/primalcut/corelp"
	"github.com/katalvlaran/primalcut/coregraph"
	"github.com/katalvlaran/primalcut/extcuts"
	"github.com/katalvlaran/primalcut/lp"
	"github.com/katalvlaran/primalcut/tour"
	"github.com/stretchr/testify/require"
)

// buildPentagon mirrors pricer's odd-n fixture: a 5-cycle, all edges
// length 1, fathomed at the tour basis (no other edges exist, so the
// relaxation cannot do better than the tour itself).
func buildPentagon(t *testing.T) *corelp.CoreLP {
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
	return c
}

func TestBranchEdge_NoFractionalEdgeOnIntegralTour(t *testing.T) {
	c := buildPentagon(t)
	be := branch.New(c, c.ObjVal(), 0)
	_, _, err := be.BranchEdge()
	require.ErrorIs(t, err, branch.ErrNoFractionalEdge)
}

func TestStrongBranch_DownInfeasibleUpPrunedOnSaturatedCycle(t *testing.T) {
	// The core graph has exactly the 5 cycle edges; every node needs
	// degree 2, so forcing any one edge to 0 leaves its endpoints unable
	// to reach degree 2 from the remaining single incident edge: Down is
	// infeasible. Forcing it to 1 changes nothing (it is already 1 in
	// the fathomed tour), so Up's objective ties the incumbent exactly
	// and is pruned rather than counted as a genuine improvement.
	c := buildPentagon(t)
	be := branch.New(c, c.ObjVal(), 0)

	down, up, err := be.StrongBranch(0, 1)
	require.NoError(t, err)
	require.Equal(t, branch.Infeas, down.Stat)
	require.Equal(t, branch.Prune, up.Stat)
	require.InDelta(t, c.ObjVal(), up.Value, 1e-6)

	// StrongBranch must leave no net trace on the shared LP.
	require.InDelta(t, c.ObjVal(), 5.0, 1e-6)
	x := c.LPVec()
	for _, xi := range x {
		require.True(t, xi > 1-1e-6 || xi < 1e-6)
	}
}

func TestClampUnclamp_RoundTripsRowCount(t *testing.T) {
	c := buildPentagon(t)
	be := branch.New(c, c.ObjVal(), 0)

	rowsBefore := c.Cuts().Len()
	node := &branch.BranchNode{U: 0, V: 1, Dir: branch.Up}
	require.NoError(t, be.Clamp(node))
	require.Equal(t, rowsBefore+1, c.Cuts().Len())

	require.NoError(t, be.Unclamp(node))
	require.Equal(t, rowsBefore, c.Cuts().Len())
}

func TestSplitProblem_PrunesBothChildrenOnSaturatedCycle(t *testing.T) {
	c := buildPentagon(t)
	be := branch.New(c, c.ObjVal(), 0)
	down, up, err := be.StrongBranch(0, 1)
	require.NoError(t, err)

	root := &branch.BranchNode{Depth: 0}
	childDown, childUp := be.SplitProblem(root, 0, 1, down, up)
	require.Equal(t, branch.Pruned, childDown.Status)
	require.Equal(t, branch.Pruned, childUp.Status)
	require.Equal(t, 1, childDown.Depth)
	require.Equal(t, 1, childUp.Depth)
	require.Equal(t, root, childDown.Parent)
}

func TestSplitProblem_CompressesAdjacentUpClampIntoSameTour(t *testing.T) {
	c := buildPentagon(t)
	be := branch.New(c, c.ObjVal(), 0)
	root := &branch.BranchNode{Depth: 0}

	// (0,1) is already adjacent in the pentagon's tour, so an Up clamp on
	// it needs no relocation: the compressed tour is the base tour itself.
	down := branch.Estimate{Stat: branch.Infeas}
	up := branch.Estimate{Stat: branch.Feas, Value: 5.0}

	childDown, childUp := be.SplitProblem(root, 0, 1, down, up)
	require.Equal(t, branch.Pruned, childDown.Status)
	require.Equal(t, branch.NeedsCut, childUp.Status)
	require.Equal(t, []int{0, 1, 2, 3, 4}, childUp.TourClq)
	require.InDelta(t, 5.0, childUp.TourLen, 1e-9)
}

func TestSplitProblem_FallsBackWhenCompressedTourNeedsUnpricedEdge(t *testing.T) {
	c := buildPentagon(t)
	be := branch.New(c, c.ObjVal(), 0)
	root := &branch.BranchNode{Depth: 0}

	// A Down clamp on the already-adjacent (0,1) forces a relocation of
	// node 1 to sit beside node 2 instead; the pentagon's core graph has
	// no (0,2) chord, so compressTour must decline rather than invent a
	// length, leaving TourClq nil and TourLen at the strong-branching
	// estimate.
	down := branch.Estimate{Stat: branch.Feas, Value: 6.0}
	up := branch.Estimate{Stat: branch.Infeas}

	childDown, _ := be.SplitProblem(root, 0, 1, down, up)
	require.Equal(t, branch.NeedsCut, childDown.Status)
	require.Nil(t, childDown.TourClq)
	require.InDelta(t, 6.0, childDown.TourLen, 1e-9)
}
