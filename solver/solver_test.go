package solver_test

import (
	"testing"

	"github.com/katalvlaran/primalcut/instance"
	"github.com/katalvlaran/primalcut/solver"
	"github.com/stretchr/testify/require"
)

// pentagonInstance mirrors the pricer/branch packages' hand-verified
// fixture: a 5-cycle metric (adjacent nodes cost 1, all other pairs cost
// 5), whose only optimum is the cycle itself.
func pentagonInstance() *instance.Instance {
	return &instance.Instance{N: 5, Dist: func(i, j int) float64 {
		if i == j {
			return 0
		}
		d := i - j
		if d < 0 {
			d = -d
		}
		if d == 1 || d == 4 {
			return 1
		}
		return 5
	}}
}

func TestSolver_FathomsPentagonAtRootWithNoBranching(t *testing.T) {
	// Greedy nearest-neighbor from node 0 walks 0,1,2,3,4 under this
	// metric (from node 0, nodes 1 and 4 tie and the strict comparison
	// keeps the lower index; every later step's nearest unvisited neighbor
	// is the next cycle node), 2-opt finds no improving move since it is already
	// optimal, and the seeded CoreGraph contains only the 5 cycle edges
	// — so the very first pivot is already FathomedTour with no
	// separation, pricing, or branching needed.
	sv, err := solver.New(pentagonInstance())
	require.NoError(t, err)

	result, err := sv.Solve()
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, result.Status)
	require.Equal(t, 1, result.NodesExplored)
	require.InDelta(t, 5.0, result.TourLength, 1e-6)
	require.Equal(t, 0, result.LiveCuts)

	require.Len(t, result.TourNodes, 5)
	seen := make(map[int]bool, 5)
	for _, v := range result.TourNodes {
		seen[v] = true
	}
	require.Len(t, seen, 5)
}

func TestSolver_New_RejectsTooFewNodes(t *testing.T) {
	_, err := solver.New(&instance.Instance{N: 2, Dist: func(i, j int) float64 { return 1 }})
	require.ErrorIs(t, err, solver.ErrTooFewNodes)
}

func TestSolver_WithStartTour_SkipsHeuristicButReachesSameOptimum(t *testing.T) {
	// A rotated permutation of the same cycle is still a valid Hamiltonian
	// tour of identical length; WithStartTour should seed CoreGraph with
	// exactly these 5 edges (the same cycle, just walked from a different
	// starting point) and still fathom at the root.
	sv, err := solver.New(pentagonInstance(), solver.WithStartTour([]int{2, 3, 4, 0, 1}))
	require.NoError(t, err)

	result, err := sv.Solve()
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, result.Status)
	require.Equal(t, 1, result.NodesExplored)
	require.InDelta(t, 5.0, result.TourLength, 1e-6)
}
