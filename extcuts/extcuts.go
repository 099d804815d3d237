// Package extcuts implements ExternalCuts: the ordered list of live cuts
// sitting 1:1 with LP rows past the n degree rows, plus the demoted cut
// pool (spec.md §3, §4.3 "pool scan").
//
// Row deletion is never performed here in isolation: spec.md §5 makes it a
// hard invariant that every CoreLP.DelSetRows call is accompanied by an
// ExternalCuts.DelCuts call using the same mask. CoreLP enforces the
// pairing; this package only implements the ExternalCuts half.
package extcuts

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/primalcut/hypergraph"
)

// SparseRow is a deduplicated, index-sorted sparse representation of one
// cut's coefficients over the current edge set, standardizing on the
// single format spec.md §9 calls for ("CutTranslate ... standardize on
// deduplicated, index-sorted rows").
type SparseRow struct {
	Indices []int
	Values  []float64
	Sense   hypergraph.Sense
	RHS     float64
}

// ExternalCuts is the live-cut list plus the demoted pool.
type ExternalCuts struct {
	cuts []*hypergraph.HyperGraph
	pool []*hypergraph.HyperGraph
}

// New returns an empty ExternalCuts.
func New() *ExternalCuts { return &ExternalCuts{} }

// Len reports the number of live cuts (LP rows n..n+Len()-1).
func (e *ExternalCuts) Len() int { return len(e.cuts) }

// At returns the cut at live-cut index i (LP row n+i).
func (e *ExternalCuts) At(i int) *hypergraph.HyperGraph { return e.cuts[i] }

// Append adds a new live cut, returning its index (and therefore its LP
// row offset n+index).
func (e *ExternalCuts) Append(cut *hypergraph.HyperGraph) int {
	e.cuts = append(e.cuts, cut)
	return len(e.cuts) - 1
}

// AppendBatch appends several cuts in order, returning their indices.
func (e *ExternalCuts) AppendBatch(cuts []*hypergraph.HyperGraph) []int {
	idxs := make([]int, 0, len(cuts))
	for _, c := range cuts {
		idxs = append(idxs, e.Append(c))
	}
	return idxs
}

// PoolSize reports the number of cuts retained in the demoted pool.
func (e *ExternalCuts) PoolSize() int { return len(e.pool) }

// Pool exposes the demoted pool for the pool-scan separator.
func (e *ExternalCuts) Pool() []*hypergraph.HyperGraph { return e.pool }

// DelCuts removes every live cut i where mask[i] is true, compacting the
// remaining cuts to keep indices contiguous (and therefore LP row numbers
// in lockstep, once the caller performs the matching CoreLP.DelSetRows).
// Per spec.md §9 "the pool's demotion policy only retains Comb and Domino
// types; Subtour cuts are discarded on deletion": when demote is true,
// Comb/Domino cuts are moved to the pool instead of released, Subtour and
// Non cuts are always released immediately.
func (e *ExternalCuts) DelCuts(mask []bool, demote bool) error {
	if len(mask) != len(e.cuts) {
		return fmt.Errorf("extcuts: mask length %d does not match cut count %d", len(mask), len(e.cuts))
	}
	kept := e.cuts[:0:0]
	for i, cut := range e.cuts {
		if !mask[i] {
			kept = append(kept, cut)
			continue
		}
		if demote && (cut.CutType() == hypergraph.Comb || cut.CutType() == hypergraph.Domino) {
			e.pool = append(e.pool, cut)
			continue
		}
		cut.Release()
	}
	e.cuts = kept
	return nil
}

// PromoteFromPool moves a pool cut back into the live list (e.g. when the
// pool-scan separator finds it violated again), returning its new index.
func (e *ExternalCuts) PromoteFromPool(i int) int {
	cut := e.pool[i]
	e.pool[i] = e.pool[len(e.pool)-1]
	e.pool = e.pool[:len(e.pool)-1]
	return e.Append(cut)
}

// GetCol computes, for a new edge (u,v), the coefficient it would carry in
// every live cut row, in row order. The n degree-row coefficients (1 for
// each of the edge's two endpoints) are the caller's responsibility (they
// are structural, not cut-dependent); GetCol only covers rows n..n+Len()-1.
func (e *ExternalCuts) GetCol(u, v int) ([]float64, error) {
	col := make([]float64, len(e.cuts))
	for i, cut := range e.cuts {
		c, err := cut.GetCoeff(u, v)
		if err != nil && cut.CutType() != hypergraph.Non {
			return nil, fmt.Errorf("extcuts: row %d: %w", i, err)
		}
		col[i] = c
	}
	return col, nil
}

// ReconstructRow rebuilds the sparse row for live cut i over the given
// edge list, used both to feed CoreLP.AddCut and to verify the "row
// indexing" testable property (spec.md §8): the rebuilt row must equal
// what the LP oracle reports for row n+i.
func ReconstructRow(cut *hypergraph.HyperGraph, edges []struct{ U, V int }) (SparseRow, error) {
	row := SparseRow{Sense: cut.Sense(), RHS: cut.RHS()}
	if cut.CutType() == hypergraph.Non {
		return row, nil
	}
	for idx, e := range edges {
		c, err := cut.GetCoeff(e.U, e.V)
		if err != nil {
			return SparseRow{}, err
		}
		if c != 0 {
			row.Indices = append(row.Indices, idx)
			row.Values = append(row.Values, c)
		}
	}
	sortRow(&row)
	return row, nil
}

func sortRow(row *SparseRow) {
	type pair struct {
		idx int
		val float64
	}
	pairs := make([]pair, len(row.Indices))
	for i := range row.Indices {
		pairs[i] = pair{row.Indices[i], row.Values[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].idx < pairs[j].idx })
	for i, p := range pairs {
		row.Indices[i] = p.idx
		row.Values[i] = p.val
	}
}
