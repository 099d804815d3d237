package lp_test

import (
	"testing"

	"github.com/katalvlaran/primalcut/lp"
	"github.com/stretchr/testify/require"
)

// minimize x0+x1 s.t. x0+x1 >= 2, 0<=x0,x1<=1 -> optimum 2 at e.g. (1,1) or
// any point on the segment; the objective is what we check.
func TestDenseSimplex_SimpleCover(t *testing.T) {
	s := lp.NewDenseSimplex()
	require.NoError(t, s.NewRow(lp.SenseG, 2))
	require.NoError(t, s.AddCols(
		[][1]float64{{1}, {1}},
		[][]int{{0}, {0}},
		[][]float64{{1}, {1}},
		[]float64{0, 0},
		[]float64{1, 1},
	))

	stat, err := s.PrimalOpt()
	require.NoError(t, err)
	require.Equal(t, lp.StatOptimal, stat)
	require.InDelta(t, 2.0, s.GetObjVal(), 1e-6)
}

// minimize 2x0+3x1 s.t. x0+x1=1 (a tiny degree-style equality row), bounds
// [0,1]; optimum picks x0=1,x1=0 for objective 2.
func TestDenseSimplex_EqualityRow(t *testing.T) {
	s := lp.NewDenseSimplex()
	require.NoError(t, s.NewRow(lp.SenseE, 1))
	require.NoError(t, s.AddCols(
		[][1]float64{{2}, {3}},
		[][]int{{0}, {0}},
		[][]float64{{1}, {1}},
		[]float64{0, 0},
		[]float64{1, 1},
	))

	stat, err := s.PrimalOpt()
	require.NoError(t, err)
	require.Equal(t, lp.StatOptimal, stat)
	require.InDelta(t, 2.0, s.GetObjVal(), 1e-6)
	require.InDelta(t, 1.0, s.LPVec()[0], 1e-6)
	require.InDelta(t, 0.0, s.LPVec()[1], 1e-6)
}

// A row with negative RHS exercises the internal sign-normalization path:
// -x0-x1 >= -1  (equivalently x0+x1<=1), bounds [0,1] each, minimize -x0-x1
// (i.e. maximize x0+x1) should drive both to 1 only as far as the row
// allows, landing the objective at -1.
func TestDenseSimplex_NegativeRHSRow(t *testing.T) {
	s := lp.NewDenseSimplex()
	require.NoError(t, s.NewRow(lp.SenseG, -1))
	require.NoError(t, s.AddCols(
		[][1]float64{{-1}, {-1}},
		[][]int{{0}, {0}},
		[][]float64{{-1}, {-1}},
		[]float64{0, 0},
		[]float64{1, 1},
	))

	stat, err := s.PrimalOpt()
	require.NoError(t, err)
	require.Equal(t, lp.StatOptimal, stat)
	require.InDelta(t, -1.0, s.GetObjVal(), 1e-6)
}

// An infeasible system (x0<=0 forced, but row demands x0>=1) must report
// StatInfeasible rather than a spurious optimum.
func TestDenseSimplex_Infeasible(t *testing.T) {
	s := lp.NewDenseSimplex()
	require.NoError(t, s.NewRow(lp.SenseG, 1))
	require.NoError(t, s.AddCols(
		[][1]float64{{1}},
		[][]int{{0}},
		[][]float64{{1}},
		[]float64{0},
		[]float64{0},
	))

	stat, err := s.PrimalOpt()
	require.NoError(t, err)
	require.Equal(t, lp.StatInfeasible, stat)
}

// Same cover LP as TestDenseSimplex_SimpleCover. A lowerLimit of 0 is
// already satisfied the instant the solution becomes primal feasible (every
// feasible objective here is >= 0), so NondegenPivot must report
// StatBounded — not StatOptimal — even though the objective value it
// stopped at (2.0) happens to equal the true optimum for this particular
// one-row LP.
func TestDenseSimplex_NondegenPivot_StopsBoundedWhenLimitAlreadyMet(t *testing.T) {
	s := lp.NewDenseSimplex()
	require.NoError(t, s.NewRow(lp.SenseG, 2))
	require.NoError(t, s.AddCols(
		[][1]float64{{1}, {1}},
		[][]int{{0}, {0}},
		[][]float64{{1}, {1}},
		[]float64{0, 0},
		[]float64{1, 1},
	))

	stat, err := s.NondegenPivot(0)
	require.NoError(t, err)
	require.Equal(t, lp.StatBounded, stat)
	require.InDelta(t, 2.0, s.GetObjVal(), 1e-6)
}

// The same LP with a lowerLimit far above any reachable objective never
// trips the bound, so NondegenPivot must behave exactly like PrimalOpt and
// run to true optimality.
func TestDenseSimplex_NondegenPivot_RunsToOptimumWhenLimitUnreachable(t *testing.T) {
	s := lp.NewDenseSimplex()
	require.NoError(t, s.NewRow(lp.SenseG, 2))
	require.NoError(t, s.AddCols(
		[][1]float64{{1}, {1}},
		[][]int{{0}, {0}},
		[][]float64{{1}, {1}},
		[]float64{0, 0},
		[]float64{1, 1},
	))

	stat, err := s.NondegenPivot(1000)
	require.NoError(t, err)
	require.Equal(t, lp.StatOptimal, stat)
	require.InDelta(t, 2.0, s.GetObjVal(), 1e-6)
}

func TestDenseSimplex_CondNumOnIdentityBasis(t *testing.T) {
	s := lp.NewDenseSimplex()
	require.NoError(t, s.NewRow(lp.SenseL, 1))
	require.NoError(t, s.AddCols(
		[][1]float64{{1}},
		[][]int{{0}},
		[][]float64{{1}},
		[]float64{0},
		[]float64{1},
	))
	_, err := s.PrimalOpt()
	require.NoError(t, err)
	cond, err := s.CondNum()
	require.NoError(t, err)
	require.Greater(t, cond, 0.0)
}
