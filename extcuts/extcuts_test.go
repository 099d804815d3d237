package extcuts_test

import (
	"testing"

	"github.com/katalvlaran/primalcut/clique"
	"github.com/katalvlaran/primalcut/extcuts"
	"github.com/katalvlaran/primalcut/hypergraph"
	"github.com/stretchr/testify/require"
)

func mkSubtour(bank *clique.Bank, start, end int, rhs float64) *hypergraph.HyperGraph {
	h := bank.Add([]clique.Segment{{Start: start, End: end}})
	return hypergraph.NewStandard(bank, hypergraph.SenseG, rhs, []*clique.Handle{h})
}

func TestExternalCuts_AppendAndDelCutsCompacts(t *testing.T) {
	tour := []int{0, 1, 2, 3, 4, 5}
	bank := clique.NewBank(tour, tour)
	ec := extcuts.New()

	i0 := ec.Append(mkSubtour(bank, 0, 1, 2))
	i1 := ec.Append(mkSubtour(bank, 2, 3, 2))
	i2 := ec.Append(mkSubtour(bank, 4, 5, 2))
	require.Equal(t, []int{0, 1, 2}, []int{i0, i1, i2})
	require.Equal(t, 3, ec.Len())

	err := ec.DelCuts([]bool{false, true, false}, false)
	require.NoError(t, err)
	require.Equal(t, 2, ec.Len())
	require.Equal(t, 1.0, mustCoeff(t, ec.At(0), 0, 2)) // row 0 is still the {0,1} cut, which edge (0,2) crosses
}

func TestExternalCuts_DemotionKeepsCombDominoDropsSubtour(t *testing.T) {
	tour := []int{0, 1, 2, 3, 4, 5}
	bank := clique.NewBank(tour, tour)
	ec := extcuts.New()
	ec.Append(mkSubtour(bank, 0, 1, 2)) // Subtour: single clique

	h1 := bank.Add([]clique.Segment{{Start: 0, End: 1}})
	h2 := bank.Add([]clique.Segment{{Start: 2, End: 3}})
	comb := hypergraph.NewStandard(bank, hypergraph.SenseG, 4, []*clique.Handle{h1, h2})
	ec.Append(comb)

	err := ec.DelCuts([]bool{true, true}, true)
	require.NoError(t, err)
	require.Equal(t, 0, ec.Len())
	require.Equal(t, 1, ec.PoolSize(), "only the Comb cut should survive into the pool")
	require.Equal(t, hypergraph.Comb, ec.Pool()[0].CutType())
}

func mustCoeff(t *testing.T, cut *hypergraph.HyperGraph, u, v int) float64 {
	t.Helper()
	c, err := cut.GetCoeff(u, v)
	require.NoError(t, err)
	return c
}
