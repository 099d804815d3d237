// Package tour implements TourBank: the bookkeeping for the incumbent
// Hamiltonian cycle (spec.md §3 TourBank). It owns the node permutation,
// the tour's indicator vector over CoreGraph edges, and the tour length,
// and is mutated only through HandleAug and SetActiveTour — mirroring the
// "mutated only via handle_aug and set_active_tour" lifecycle rule.
package tour

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/primalcut/coregraph"
)

// ErrNotHamiltonian is returned when a candidate node sequence is not a
// Hamiltonian cycle over 0..n-1.
var ErrNotHamiltonian = errors.New("tour: node sequence is not a Hamiltonian cycle")

// ErrMissingEdge is returned when a tour edge has no corresponding column
// in the core graph yet (the caller must price it in first).
var ErrMissingEdge = errors.New("tour: tour edge missing from core graph")

// TourBank holds the current best integral tour.
type TourBank struct {
	n int

	// bestTourNodes is a permutation of 0..n-1: the cyclic visiting order.
	bestTourNodes []int

	// perm[v] is the position of node v within bestTourNodes.
	perm []int

	// bestTourEdges[e] is 1 if core-graph edge e is in the tour, else 0.
	bestTourEdges []bool

	// minTourValue is the sum of lengths over tour edges.
	minTourValue float64
}

// New builds a TourBank from an initial Hamiltonian cycle over g. nodes
// must list each of 0..n-1 exactly once; every consecutive pair (including
// wraparound) must already be a CoreGraph edge.
func New(g *coregraph.CoreGraph, nodes []int) (*TourBank, error) {
	tb := &TourBank{n: g.NumNodes()}
	if err := tb.rebuildFromNodes(g, nodes); err != nil {
		return nil, err
	}
	return tb, nil
}

func validatePermutation(nodes []int, n int) error {
	if len(nodes) != n {
		return fmt.Errorf("%w: got %d nodes, want %d", ErrNotHamiltonian, len(nodes), n)
	}
	seen := make([]bool, n)
	for _, v := range nodes {
		if v < 0 || v >= n || seen[v] {
			return ErrNotHamiltonian
		}
		seen[v] = true
	}
	return nil
}

func (tb *TourBank) rebuildFromNodes(g *coregraph.CoreGraph, nodes []int) error {
	if err := validatePermutation(nodes, tb.n); err != nil {
		return err
	}

	perm := make([]int, tb.n)
	for pos, v := range nodes {
		perm[v] = pos
	}

	indicator := make([]bool, g.NumEdges())
	length := 0.0
	for pos := 0; pos < tb.n; pos++ {
		u := nodes[pos]
		v := nodes[(pos+1)%tb.n]
		idx, ok := g.EdgeIndex(u, v)
		if !ok {
			return fmt.Errorf("%w: (%d,%d)", ErrMissingEdge, u, v)
		}
		indicator[idx] = true
		length += g.Edge(idx).Len
	}

	tb.bestTourNodes = append([]int(nil), nodes...)
	tb.perm = perm
	tb.bestTourEdges = indicator
	tb.minTourValue = length
	return nil
}

// Nodes returns the tour's visiting order (read-only: callers must not
// mutate the returned slice).
func (tb *TourBank) Nodes() []int { return tb.bestTourNodes }

// Perm returns perm[v] = position of v in the tour.
func (tb *TourBank) Perm() []int { return tb.perm }

// Pos reports the tour position of node v.
func (tb *TourBank) Pos(v int) int { return tb.perm[v] }

// EdgeIndicator reports, per core-graph edge index, whether that edge is
// in the tour.
func (tb *TourBank) EdgeIndicator() []bool { return tb.bestTourEdges }

// InTour reports whether core-graph edge idx is a tour edge.
func (tb *TourBank) InTour(idx int) bool {
	return idx < len(tb.bestTourEdges) && tb.bestTourEdges[idx]
}

// Length returns min_tour_value.
func (tb *TourBank) Length() float64 { return tb.minTourValue }

// N returns the instance size.
func (tb *TourBank) N() int { return tb.n }

// GrowEdgeIndicator extends bestTourEdges with false entries for newly
// priced-in edges, keeping it aligned with CoreGraph.NumEdges(). Called
// whenever the pricer appends columns.
func (tb *TourBank) GrowEdgeIndicator(newLen int) {
	if newLen <= len(tb.bestTourEdges) {
		return
	}
	grown := make([]bool, newLen)
	copy(grown, tb.bestTourEdges)
	tb.bestTourEdges = grown
}

// SetActiveTour replaces the incumbent with an externally constructed
// Hamiltonian cycle (used when a branch node installs its compressed
// branch tour as the active tour). It is one of the two sanctioned
// mutation entry points.
func (tb *TourBank) SetActiveTour(g *coregraph.CoreGraph, nodes []int) error {
	return tb.rebuildFromNodes(g, nodes)
}

// HandleAug installs a new, strictly better tour discovered by an
// integral, connected primal pivot. order is the connected-component
// visiting order produced during the pivot's integrality test. The
// resulting length is always recomputed from g, never trusted from the
// LP vector, so augmentation is self-consistent with CoreGraph.
func (tb *TourBank) HandleAug(g *coregraph.CoreGraph, order []int) error {
	prevLen := tb.minTourValue
	if err := tb.rebuildFromNodes(g, order); err != nil {
		return err
	}
	if len(tb.bestTourNodes) > 0 && tb.minTourValue >= prevLen && prevLen != 0 {
		return fmt.Errorf("tour: augmentation did not strictly improve (%.6f -> %.6f)", prevLen, tb.minTourValue)
	}
	return nil
}
