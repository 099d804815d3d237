package hypergraph_test

import (
	"testing"

	"github.com/katalvlaran/primalcut/clique"
	"github.com/katalvlaran/primalcut/hypergraph"
	"github.com/stretchr/testify/require"
)

// A 6-node tour 0-1-2-3-4-5-0. Clique {1,2} separates the tour into two
// arcs; the SEC coefficient of any edge crossing the boundary is 1, and 0
// for edges with both endpoints on the same side.
func TestHyperGraph_SubtourCoeff(t *testing.T) {
	tour := []int{0, 1, 2, 3, 4, 5}
	perm := []int{0, 1, 2, 3, 4, 5}
	bank := clique.NewBank(tour, perm)

	h := bank.Add([]clique.Segment{{Start: 1, End: 2}}) // nodes {1,2}
	cut := hypergraph.NewStandard(bank, hypergraph.SenseG, 2, []*clique.Handle{h})

	require.Equal(t, hypergraph.Subtour, cut.CutType())

	c, err := cut.GetCoeff(0, 1) // crosses boundary
	require.NoError(t, err)
	require.Equal(t, 1.0, c)

	c, err = cut.GetCoeff(1, 2) // both inside
	require.NoError(t, err)
	require.Equal(t, 0.0, c)

	c, err = cut.GetCoeff(3, 4) // both outside
	require.NoError(t, err)
	require.Equal(t, 0.0, c)
}

func TestHyperGraph_NonCutRejectsCoeff(t *testing.T) {
	cut := hypergraph.NewNon(hypergraph.SenseL, 1)
	require.Equal(t, hypergraph.Non, cut.CutType())
	_, err := cut.GetCoeff(0, 1)
	require.ErrorIs(t, err, hypergraph.ErrNonCutCoeff)
}

// A 6-node tour 0-1-2-3-4-5-0, handle H={0,1}, one tooth Root={2,3},
// Body={4,5}. Exercises every branch of the 2*coef formula (spec.md
// §4.2) so the halve-and-floor step is actually checked: an earlier
// version of dominoCoeff floored 2*twice/2 instead of twice/2, which
// silently doubled every coefficient.
func TestHyperGraph_DominoCoeff(t *testing.T) {
	tour := []int{0, 1, 2, 3, 4, 5}
	perm := []int{0, 1, 2, 3, 4, 5}
	bank := clique.NewBank(tour, perm)
	toothBank := clique.NewToothBank(tour, perm)

	handle := bank.Add([]clique.Segment{{Start: 0, End: 1}}) // H = {0,1}
	root := clique.New([]clique.Segment{{Start: 2, End: 3}}) // R = {2,3}
	body := clique.New([]clique.Segment{{Start: 4, End: 5}}) // B = {4,5}
	tooth := toothBank.Add(clique.Tooth{Root: root, Body: body})

	cut := hypergraph.NewDomino(bank, toothBank, 3, handle, []*clique.ToothHandle{tooth})
	require.Equal(t, hypergraph.Domino, cut.CutType())

	// Both endpoints in H: 2*[u,v in H] = 2, no tooth contribution -> coef 1.
	c, err := cut.GetCoeff(0, 1)
	require.NoError(t, err)
	require.Equal(t, 1.0, c)

	// Both endpoints in the tooth body: 2*[u,v in B] = 2 -> coef 1.
	c, err = cut.GetCoeff(4, 5)
	require.NoError(t, err)
	require.Equal(t, 1.0, c)

	// One endpoint in Root, one in Body: [u in R and v in B] = 1 -> coef 0
	// (1 floor-halves to 0, not 1 as the pre-fix formula would give).
	c, err = cut.GetCoeff(2, 4)
	require.NoError(t, err)
	require.Equal(t, 0.0, c)

	// 2 in Root, 5 in Body: again [u in R and v in B] = 1 -> coef 0.
	c, err = cut.GetCoeff(2, 5)
	require.NoError(t, err)
	require.Equal(t, 0.0, c)
}

func TestHyperGraph_Release_DecrementsRefcounts(t *testing.T) {
	tour := []int{0, 1, 2, 3}
	perm := []int{0, 1, 2, 3}
	bank := clique.NewBank(tour, perm)

	h := bank.Add([]clique.Segment{{Start: 0, End: 1}})
	require.Equal(t, 1, h.Refs())

	cut := hypergraph.NewStandard(bank, hypergraph.SenseG, 2, []*clique.Handle{h})
	cut.Release()

	require.Equal(t, 0, h.Refs())
	require.Equal(t, 0, bank.Size())
}
