package separate

import (
	"testing"

	"github.com/katalvlaran/primalcut/clique"
	"github.com/katalvlaran/primalcut/coregraph"
	"github.com/katalvlaran/primalcut/corelp"
	"github.com/katalvlaran/primalcut/extcuts"
	"github.com/katalvlaran/primalcut/hypergraph"
	"github.com/katalvlaran/primalcut/lp"
	"github.com/katalvlaran/primalcut/tour"
	"github.com/stretchr/testify/require"
)

// buildFourCycleWithChord is buildFourCycle (separate_test.go) plus a (0,2)
// chord: a chord edge has both endpoints inside any handle built from
// {0,1,2}, so its coefficient is driven purely by the handle/teeth
// structure and never by the tight/half-tight thresholds that gate union-
// find and boundary-edge detection — letting a test push the row sum past
// its rhs without disturbing which handle/teeth the separator finds.
func buildFourCycleWithChord(t *testing.T) (*corelp.CoreLP, *clique.Bank, *clique.ToothBank) {
	t.Helper()
	g := coregraph.New(4)
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}} {
		_, err := g.AddEdge(e[0], e[1], 1)
		require.NoError(t, err)
	}
	tb, err := tour.New(g, []int{0, 1, 2, 3})
	require.NoError(t, err)
	ext := extcuts.New()
	oracle := lp.NewDenseSimplex()
	c, err := corelp.New(g, tb, ext, oracle)
	require.NoError(t, err)
	bank := clique.NewBank(tb.Nodes(), tb.Perm())
	toothBank := clique.NewToothBank(tb.Nodes(), tb.Perm())
	return c, bank, toothBank
}

// TestSimpleDominoParity_NoViolation_LeavesBanksAtBaseline exercises the
// cleanup path: handle {0,1,2} and its two single-edge teeth are interned
// while checking the row, but since the cut isn't violated at these
// weights, simpleDominoParity must Release it again rather than leak the
// clique/tooth handles into the bank (spec.md §8 "banks refcount
// correctness").
func TestSimpleDominoParity_NoViolation_LeavesBanksAtBaseline(t *testing.T) {
	c, bank, toothBank := buildFourCycleWithChord(t)
	// Tight: (0,1) and (1,2) at 1.0, union {0,1,2}. Half-tight boundary:
	// (2,3) and (3,0) at 0.5. The chord (0,2) is left at 0 so it
	// contributes nothing here — this fixture is the "valid, unviolated"
	// baseline before the next test scales the chord up.
	require.NoError(t, c.Oracle().CopyStart([]float64{1, 1, 0.5, 0.5, 0}, nil))

	s := &Separator{lp: c, bank: bank, toothBank: toothBank, maxSegmentLen: 20}
	baseBank, baseTooth := bank.Size(), toothBank.Size()

	cands, err := s.simpleDominoParity()
	require.NoError(t, err)
	require.Empty(t, cands)
	require.Equal(t, baseBank, bank.Size())
	require.Equal(t, baseTooth, toothBank.Size())
}

// TestSimpleDominoParity_ViolatedCut_IsStructurallyConsistent forces a
// violation by driving the chord edge's weight far above the handle/teeth
// rhs (the chord's coefficient is fixed by the handle structure alone; see
// buildFourCycleWithChord), then checks the surviving candidate's cut is a
// self-consistent Domino row: Sense is always SenseL for a domino-parity
// cut, and its RHS matches an independent hypergraph.DominoRHS computation
// over the same handle/teeth cardinalities (spec.md §4.2).
func TestSimpleDominoParity_ViolatedCut_IsStructurallyConsistent(t *testing.T) {
	c, bank, toothBank := buildFourCycleWithChord(t)
	require.NoError(t, c.Oracle().CopyStart([]float64{1, 1, 0.5, 0.5, 10}, nil))

	s := &Separator{lp: c, bank: bank, toothBank: toothBank, maxSegmentLen: 20}
	cands, err := s.simpleDominoParity()
	require.NoError(t, err)
	require.NotEmpty(t, cands)

	for _, cand := range cands {
		require.Equal(t, "simple_domino_parity", cand.Step)
		require.Equal(t, hypergraph.Domino, cand.Cut.CutType())
		require.Equal(t, hypergraph.SenseL, cand.Cut.Sense())
		require.Greater(t, cand.Violation, 0.0)

		n := c.Tour().N()
		handleClique := cand.Cut.Cliques()[0].Value
		teethVals := make([]clique.Tooth, 0, len(cand.Cut.Teeth()))
		for _, th := range cand.Cut.Teeth() {
			teethVals = append(teethVals, th.Value)
		}
		wantRHS := hypergraph.DominoRHS(n, handleClique, teethVals, 0)
		require.Equal(t, wantRHS, cand.Cut.RHS())
	}
}

// TestBlockCombs_TooFewBoundaryEdges_FindsNothing is a guard test: a
// candidate handle with only two half-tight boundary edges can never form
// the required >=3 odd merged teeth (each merged tooth consumes a pair),
// so blockCombs must skip it rather than fabricate a comb from an
// insufficient boundary (spec.md §4.3's block-comb family).
func TestBlockCombs_TooFewBoundaryEdges_FindsNothing(t *testing.T) {
	c, bank, toothBank := buildFourCycleWithChord(t)
	require.NoError(t, c.Oracle().CopyStart([]float64{1, 1, 0.5, 0.5, 0}, nil))

	s := &Separator{lp: c, bank: bank, toothBank: toothBank, maxSegmentLen: 20}
	cands, err := s.blockCombs()
	require.NoError(t, err)
	require.Empty(t, cands)
}

// TestCutMetamorphoses_SkipsNonSubtourPoolCuts confirms the "single
// contiguous-segment Subtour handle only" guard: a comb pool cut (built
// with two clique handles) must be skipped outright rather than
// mishandled as if it had one shrinkable segment.
func TestCutMetamorphoses_SkipsNonSubtourPoolCuts(t *testing.T) {
	c, bank, toothBank := buildFourCycleWithChord(t)
	require.NoError(t, c.Oracle().CopyStart([]float64{1, 1, 0.5, 0.5, 0}, nil))

	h1 := bank.Add([]clique.Segment{{Start: 0, End: 0}})
	h2 := bank.Add([]clique.Segment{{Start: 2, End: 2}})
	combCut := hypergraph.NewStandard(bank, hypergraph.SenseG, 4, []*clique.Handle{h1, h2})
	require.Equal(t, hypergraph.Comb, combCut.CutType())
	c.Cuts().Append(combCut)
	// DelCuts(demote=true) is the only way a cut reaches the pool
	// (spec.md §9's demotion policy): move it there so cutMetamorphoses,
	// which only ever scans the pool, actually sees it.
	require.NoError(t, c.Cuts().DelCuts([]bool{true}, true))

	s := &Separator{lp: c, bank: bank, toothBank: toothBank, maxSegmentLen: 20}
	cands, err := s.cutMetamorphoses()
	require.NoError(t, err)
	require.Empty(t, cands)
}
