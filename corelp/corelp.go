// Package corelp implements CoreLP: the thin, invariant-enforcing wrapper
// binding CoreGraph, TourBank, and ExternalCuts to an lp.Oracle
// (spec.md §4.1). It owns the one hard structural invariant the rest of
// the engine leans on — NumRows() == n (degree rows) + ExternalCuts.Len()
// — and is the only package allowed to call the oracle's row/column
// mutators directly; every other package goes through CoreLP.
package corelp

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/primalcut/coregraph"
	"github.com/katalvlaran/primalcut/extcuts"
	"github.com/katalvlaran/primalcut/hypergraph"
	"github.com/katalvlaran/primalcut/lp"
	"github.com/katalvlaran/primalcut/tour"
)

// PivotResult classifies a completed pivot, per spec.md §4.1.
type PivotResult int

const (
	FathomedTour PivotResult = iota // integral, connected, length >= incumbent, or the pivot stopped at the objective bound: prune
	Tour                            // integral, connected, strictly better: new incumbent
	Subtour                         // integral but disconnected: needs an SEC
	Frac                            // fractional: needs separation
)

func (r PivotResult) String() string {
	switch r {
	case FathomedTour:
		return "FathomedTour"
	case Tour:
		return "Tour"
	case Subtour:
		return "Subtour"
	default:
		return "Frac"
	}
}

// ErrRowCountMismatch is returned whenever a caller's observation of
// NumRows() disagrees with n+len(cuts), the structural invariant CoreLP
// exists to protect.
var ErrRowCountMismatch = errors.New("corelp: NumRows() != n + cuts.Len()")

// ErrBasisMismatch flags a GetBase()/LPVec() pair whose lengths disagree
// with the current CoreGraph/ExternalCuts shape.
var ErrBasisMismatch = errors.New("corelp: basis shape does not match current LP shape")

// CoreLP binds the graph, the incumbent tour, the live/pooled cuts, and
// the abstract LP oracle.
type CoreLP struct {
	graph  *coregraph.CoreGraph
	tb     *tour.TourBank
	ext    *extcuts.ExternalCuts
	oracle lp.Oracle

	n int
}

// New builds a CoreLP for an n-node instance, installing n degree-equality
// rows (Σ_{e∋v} x_e = 2) and a structural column for every edge already in
// g. g, tb, and ext must share the same node count / be otherwise empty;
// TourBasis must be called afterward to install a starting basis.
func New(g *coregraph.CoreGraph, tb *tour.TourBank, ext *extcuts.ExternalCuts, oracle lp.Oracle) (*CoreLP, error) {
	n := g.NumNodes()
	senses := make([]lp.Sense, n)
	rhss := make([]float64, n)
	for i := range senses {
		senses[i] = lp.SenseE
		rhss[i] = 2
	}
	if err := oracle.NewRows(senses, rhss); err != nil {
		return nil, fmt.Errorf("corelp: installing degree rows: %w", err)
	}

	c := &CoreLP{graph: g, tb: tb, ext: ext, oracle: oracle, n: n}
	if g.NumEdges() > 0 {
		if err := c.priceInExisting(); err != nil {
			return nil, err
		}
	}
	if err := c.checkInvariant(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CoreLP) priceInExisting() error {
	numE := c.graph.NumEdges()
	obj := make([][1]float64, numE)
	idx := make([][]int, numE)
	vals := make([][]float64, numE)
	lb := make([]float64, numE)
	ub := make([]float64, numE)
	for i := 0; i < numE; i++ {
		e := c.graph.Edge(i)
		obj[i] = [1]float64{e.Len}
		idx[i] = []int{e.U, e.V}
		vals[i] = []float64{1, 1}
		lb[i], ub[i] = 0, 1
	}
	return c.oracle.AddCols(obj, idx, vals, lb, ub)
}

func (c *CoreLP) checkInvariant() error {
	want := c.n + c.ext.Len()
	if c.oracle.NumRows() != want {
		return fmt.Errorf("%w: oracle has %d rows, want %d", ErrRowCountMismatch, c.oracle.NumRows(), want)
	}
	return nil
}

// NumCols reports the oracle's structural column count (== CoreGraph.NumEdges()).
func (c *CoreLP) NumCols() int { return c.oracle.NumCols() }

// AddEdge prices a single new edge into both CoreGraph and the oracle,
// keeping TourBank's indicator vector the right length.
func (c *CoreLP) AddEdge(u, v int, length float64) (int, error) {
	idx, err := c.graph.AddEdge(u, v, length)
	if err != nil {
		return -1, err
	}
	col, err := c.ext.GetCol(u, v)
	if err != nil {
		return -1, fmt.Errorf("corelp: AddEdge: computing cut column: %w", err)
	}
	rowIdx := []int{u, v}
	rowVals := []float64{1, 1}
	for i, coeff := range col {
		if coeff != 0 {
			rowIdx = append(rowIdx, c.n+i)
			rowVals = append(rowVals, coeff)
		}
	}
	err = c.oracle.AddCols(
		[][1]float64{{length}},
		[][]int{rowIdx},
		[][]float64{rowVals},
		[]float64{0},
		[]float64{1},
	)
	if err != nil {
		return -1, err
	}
	c.tb.GrowEdgeIndicator(c.graph.NumEdges())
	return idx, nil
}

// AddEdges prices in a batch; see AddEdge.
func (c *CoreLP) AddEdges(batch []coregraph.Edge) ([]int, error) {
	idxs := make([]int, 0, len(batch))
	for _, e := range batch {
		idx, err := c.AddEdge(e.U, e.V, e.Len)
		if err != nil {
			return idxs, err
		}
		idxs = append(idxs, idx)
	}
	return idxs, nil
}

func (c *CoreLP) edgesForCuts() []struct{ U, V int } {
	edges := make([]struct{ U, V int }, c.graph.NumEdges())
	for i := range edges {
		e := c.graph.Edge(i)
		edges[i] = struct{ U, V int }{e.U, e.V}
	}
	return edges
}

// AddCut separates a new HyperGraph into the live row list. The row is
// reconstructed over the current edge set via extcuts.ReconstructRow so
// the LP row and ExternalCuts entry are always built from the identical
// sparse data (spec.md §8 "row indexing" testable property).
func (c *CoreLP) AddCut(cut *hypergraph.HyperGraph) (int, error) {
	row, err := extcuts.ReconstructRow(cut, c.edgesForCuts())
	if err != nil {
		return -1, fmt.Errorf("corelp: AddCut: %w", err)
	}
	sense := toLPSense(row.Sense)
	if err := c.oracle.AddCut(row.Indices, row.Values, sense, row.RHS); err != nil {
		return -1, err
	}
	idx := c.ext.Append(cut)
	if err := c.checkInvariant(); err != nil {
		return -1, err
	}
	return idx, nil
}

// PromotePoolCut re-adds a previously demoted pool cut (by its index in
// Cuts().Pool()) as a live LP row, mirroring AddCut's row construction
// rather than letting ExternalCuts.PromoteFromPool move it without an
// accompanying oracle row.
func (c *CoreLP) PromotePoolCut(i int) (int, error) {
	cut := c.ext.Pool()[i]
	row, err := extcuts.ReconstructRow(cut, c.edgesForCuts())
	if err != nil {
		return -1, fmt.Errorf("corelp: PromotePoolCut: %w", err)
	}
	if err := c.oracle.AddCut(row.Indices, row.Values, toLPSense(row.Sense), row.RHS); err != nil {
		return -1, err
	}
	idx := c.ext.PromoteFromPool(i)
	if err := c.checkInvariant(); err != nil {
		return -1, err
	}
	return idx, nil
}

// DelCuts removes the live cuts flagged in mask (relative to
// ExternalCuts's indexing), demoting survivors into the pool when demote
// is true, and keeps the oracle's row set in lockstep in the same call —
// spec.md §5's "DelSetRows is always paired with ExternalCuts.DelCuts"
// invariant is enforced structurally here rather than left to callers.
func (c *CoreLP) DelCuts(mask []bool, demote bool) error {
	if len(mask) != c.ext.Len() {
		return fmt.Errorf("corelp: DelCuts: mask length %d != live cut count %d", len(mask), c.ext.Len())
	}
	full := make([]bool, c.n+len(mask))
	copy(full[c.n:], mask)
	if err := c.oracle.DelSetRows(full); err != nil {
		return err
	}
	if err := c.ext.DelCuts(mask, demote); err != nil {
		return err
	}
	return c.checkInvariant()
}

func toLPSense(s hypergraph.Sense) lp.Sense {
	switch s {
	case hypergraph.SenseG:
		return lp.SenseG
	case hypergraph.SenseL:
		return lp.SenseL
	default:
		return lp.SenseE
	}
}

// TourBasis installs the incumbent tour as the LP's starting basis.
//
// Assigning each tour edge (nodes[i],nodes[i+1 mod n]) to its *departure*
// row (row nodes[i]) turns the n degree rows restricted to tour-edge
// columns into the unsigned cyclic incidence matrix B = I + P, P the
// cyclic shift permutation. Its determinant is the classical circulant
// identity det(B) = 1-(-1)^n: for odd n this is 2, so the full n-edge
// cycle basis is already invertible and every tour edge can be basic. For
// even n the determinant is 0 (the degree rows restricted to any cycle's
// edges are always rank n-1, not n, the "even-n chord" degeneracy
// spec.md §9 flags) — the fix is to drop the tour's closing edge
// (nodes[n-1]->nodes[0]) from the basis, keeping only the resulting
// triangular (n-1)x(n-1) submatrix (each column's second nonzero is the
// next column's pivot row, hence always invertible); the one row left
// unclaimed, nodes[n-1], keeps its own artificial/slack basic there at
// value 0, and the closing edge itself stays nonbasic at its upper bound
// of 1 (CopyStart infers this from x).
func (c *CoreLP) TourBasis() error {
	numEdges := c.graph.NumEdges()
	nodes := c.tb.Nodes()
	n := c.tb.N()

	rowBasis := make([]int, c.n+c.ext.Len())
	for i := range rowBasis {
		rowBasis[i] = -1
	}

	last := n - 1
	if n%2 != 0 {
		last = n // odd n: the full cycle is already a valid basis, no edge dropped
	}
	for pos := 0; pos < last; pos++ {
		u := nodes[pos]
		v := nodes[(pos+1)%n]
		idx, ok := c.graph.EdgeIndex(u, v)
		if !ok {
			return fmt.Errorf("corelp: TourBasis: tour edge (%d,%d) missing from core graph", u, v)
		}
		rowBasis[u] = idx
	}

	x := make([]float64, numEdges)
	for i, inTour := range c.tb.EdgeIndicator() {
		if inTour {
			x[i] = 1
		}
	}
	return c.oracle.CopyStart(x, rowBasis)
}

// FactorBasis refactors the current basis without pivoting.
func (c *CoreLP) FactorBasis() error { return c.oracle.FactorBasis() }

// boundEps is ε in spec.md §4.1's "pivot bounded below by min_tour_value -
// ε": NondegenPivot is free to stop as soon as the objective reaches this
// far below the incumbent, since no further pivoting can change whether
// the node fathoms.
const boundEps = 1e-7

// PrimalPivot performs a non-degenerate pivot bounded below by
// min_tour_value - ε and classifies the result (spec.md §4.1 pivot
// semantics). A StatBounded return means the LP objective already proved
// this node can't beat the incumbent before reaching full optimality or
// integrality, so it is classified FathomedTour directly rather than run
// further.
func (c *CoreLP) PrimalPivot() (PivotResult, error) {
	stat, err := c.oracle.NondegenPivot(c.tb.Length() - boundEps)
	if err != nil {
		return Frac, err
	}
	switch stat {
	case lp.StatBounded:
		return FathomedTour, nil
	case lp.StatOptimal:
		return c.classify()
	default:
		return Frac, fmt.Errorf("corelp: PrimalPivot: oracle returned %v", stat)
	}
}

func (c *CoreLP) classify() (PivotResult, error) {
	x := c.oracle.LPVec()
	if len(x) != c.graph.NumEdges() {
		return Frac, ErrBasisMismatch
	}
	for _, v := range x {
		if v > 1e-7 && v < 1-1e-7 {
			return Frac, nil
		}
	}

	order, length, connected := c.traceHamiltonian(x)
	if !connected {
		return Subtour, nil
	}
	if length < c.tb.Length()-1e-9 {
		if err := c.tb.HandleAug(c.graph, order); err != nil {
			return Tour, fmt.Errorf("corelp: HandleAug: %w", err)
		}
		return Tour, nil
	}
	return FathomedTour, nil
}

// traceHamiltonian walks the integral edge set starting at node 0. An
// integral point satisfying the degree-equality rows is 2-regular, so
// every node has exactly two tour-edge neighbors; the walk follows
// whichever neighbor isn't where it came from. It reports the visiting
// order, the cycle's length, and whether the walk closes after visiting
// all n nodes (a single Hamiltonian cycle) rather than a shorter subtour.
func (c *CoreLP) traceHamiltonian(x []float64) (order []int, length float64, connected bool) {
	n := c.tb.N()
	adjOf := func(v int) []int {
		var out []int
		for _, nb := range c.graph.Neighbors(v) {
			if x[nb.EdgeIndex] > 1-1e-7 {
				out = append(out, nb.Node)
			}
		}
		return out
	}

	prev, cur := -1, 0
	for step := 0; step < n; step++ {
		order = append(order, cur)
		nbs := adjOf(cur)
		if len(nbs) != 2 {
			return order, length, false
		}
		next := nbs[0]
		if next == prev {
			next = nbs[1]
		}
		idx, ok := c.graph.EdgeIndex(cur, next)
		if !ok {
			return order, length, false
		}
		length += c.graph.Edge(idx).Len
		prev, cur = cur, next
	}
	return order, length, cur == 0
}

// PivotBack restores the previously recorded pivot fathoming point,
// letting BranchExecutor re-enter a sibling node without re-solving from
// scratch (it simply calls CopyBase + FactorBasis on the saved basis).
func (c *CoreLP) PivotBack(b lp.Basis) error {
	if err := c.oracle.CopyBase(b); err != nil {
		return err
	}
	return c.oracle.FactorBasis()
}

// SaveBasis snapshots the current oracle basis for later PivotBack.
func (c *CoreLP) SaveBasis() (lp.Basis, error) { return c.oracle.GetBase() }

// PrimalFeas reports whether the current LP vector is primal feasible
// according to the oracle's last solve status.
func (c *CoreLP) PrimalFeas() bool { return c.oracle.GetStat() != lp.StatInfeasible }

// ConditionNum exposes the oracle's basis condition-number estimate.
func (c *CoreLP) ConditionNum() (float64, error) { return c.oracle.CondNum() }

// ObjVal returns the current LP objective value.
func (c *CoreLP) ObjVal() float64 { return c.oracle.GetObjVal() }

// LPVec returns the current fractional edge solution.
func (c *CoreLP) LPVec() []float64 { return c.oracle.LPVec() }

// Graph/Tour/Cuts/Oracle expose the wrapped components to the separator,
// pricer, and branch executor packages, which all program against these
// rather than reaching around CoreLP.
func (c *CoreLP) Graph() *coregraph.CoreGraph   { return c.graph }
func (c *CoreLP) Tour() *tour.TourBank          { return c.tb }
func (c *CoreLP) Cuts() *extcuts.ExternalCuts   { return c.ext }
func (c *CoreLP) Oracle() lp.Oracle             { return c.oracle }
func (c *CoreLP) N() int                        { return c.n }
func (c *CoreLP) RowSlacks() ([]float64, error) { return c.oracle.RowSlacks(0, c.oracle.NumRows()) }

// CheckInvariant exposes the n+cuts.Len() structural invariant for tests
// and for the pivot loop's post-cut-pass sanity check.
func (c *CoreLP) CheckInvariant() error { return c.checkInvariant() }
