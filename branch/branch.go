// Package branch implements BranchExecutor: edge-selection by strong
// branching, clamp/unclamp bound management, and the branch-tour
// compression scheme tying each sub-problem to a feasible Hamiltonian
// cycle obeying its ancestor chain's clamps (spec.md §4.7).
package branch

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/primalcut/corelp"
	"github.com/katalvlaran/primalcut/hypergraph"
	"github.com/katalvlaran/primalcut/lp"
)

// Direction is which way a branching edge is clamped.
type Direction int

const (
	Down Direction = iota // edge fixed to 0 (excluded from the tour)
	Up                    // edge fixed to 1 (forced into the tour)
)

func (d Direction) String() string {
	if d == Up {
		return "Up"
	}
	return "Down"
}

// Status is a BranchNode's place in its lifecycle.
type Status int

const (
	NeedsCut Status = iota
	NeedsBranch
	NeedsPrice
	NeedsRecover
	Pruned
	Done
)

func (s Status) String() string {
	switch s {
	case NeedsCut:
		return "NeedsCut"
	case NeedsBranch:
		return "NeedsBranch"
	case NeedsPrice:
		return "NeedsPrice"
	case NeedsRecover:
		return "NeedsRecover"
	case Pruned:
		return "Pruned"
	default:
		return "Done"
	}
}

// ErrNoFractionalEdge is returned by BranchEdge when the current LP vector
// has no structural column strictly between its bounds — the caller asked
// to branch on an already-integral relaxation.
var ErrNoFractionalEdge = errors.New("branch: no fractional edge to branch on")

// BranchNode is one node of the branch-and-cut-price tree. Root has Parent
// nil, Depth 0, and a zero-value (U,V) pair that is never clamped.
type BranchNode struct {
	U, V   int
	Dir    Direction
	Status Status
	Parent *BranchNode
	Depth  int

	// TourClq is the compressed branch tour: a permutation of 0..n-1
	// describing a Hamiltonian cycle obeying every clamp on the path from
	// root to this node. Populated by SplitProblem via compressTour;
	// left nil when no such tour could be derived from currently priced
	// edges (a reporting gap, not a feasibility failure — StrongBranch's
	// re-optimized LP is the actual Feas/Infeas proof).
	TourClq []int
	// TourLen is the length of TourClq when set, otherwise the strong
	// branching LP estimate for this direction (a lower bound, not a
	// feasible tour length).
	TourLen float64

	// PriceBasis caches the primal basis this node's LP relaxation last
	// reached, so re-entering the node (after sibling work popped the
	// shared CoreLP's basis elsewhere) can restore it in one PivotBack
	// instead of refactoring from the tour basis again.
	PriceBasis *lp.Basis

	// cutRow is the index, within ExternalCuts, of the Non placeholder
	// row this node's clamp inserted — -1 at the root, which clamps
	// nothing. unclamp uses it to delete exactly this row.
	cutRow int
}

// Estimate is strong branching's per-direction verdict.
type Estimate struct {
	Value float64
	Stat  EstimateStat
	Basis *lp.Basis
}

// EstimateStat classifies a strong-branching trial.
type EstimateStat int

const (
	Feas EstimateStat = iota
	Infeas
	Prune
)

// candidate is an internal scoring record for BranchEdge.
type candidate struct {
	u, v  int
	score float64
}

// BranchExecutor owns the shared CoreLP and drives strong branching and
// problem splitting over it. It does not own the search queue — Solver
// decides which BranchNode to expand next; BranchExecutor only knows how
// to expand the one it is handed.
type BranchExecutor struct {
	lp          *corelp.CoreLP
	iterLimit   int
	incumbentLP float64 // current incumbent tour length; trials pruning above this are cut
}

// New binds a BranchExecutor to lp. incumbent is the current best tour
// length (strong-branching trials that cannot beat it are pruned early);
// iterLimit bounds each strong-branching trial's pivot count, per
// spec.md §4.7's "iteration limit" on primal_strong_branch.
func New(lp *corelp.CoreLP, incumbent float64, iterLimit int) *BranchExecutor {
	if iterLimit <= 0 {
		iterLimit = 50
	}
	return &BranchExecutor{lp: lp, iterLimit: iterLimit, incumbentLP: incumbent}
}

// SetIncumbent updates the tour length used to prune strong-branching
// trials, called by the orchestrating loop whenever handle_aug installs a
// new incumbent.
func (be *BranchExecutor) SetIncumbent(length float64) { be.incumbentLP = length }

// BranchEdge selects the fractional structural column with the strongest
// branching score: |x - 0.5| small (closest to balanced) combined with
// |reduced cost| large (cheap to fix), matching spec.md §4.7's "score
// combining rounded reduced costs and estimated objective change" — the
// objective-change half of that score is exactly what StrongBranch below
// computes for the winner's two directions, so BranchEdge itself only
// needs a fast proxy to shortlist one edge.
func (be *BranchExecutor) BranchEdge() (u, v int, err error) {
	x := be.lp.LPVec()
	rc := be.lp.Oracle().RedCosts()
	g := be.lp.Graph()

	var best *candidate
	for i, xi := range x {
		if xi < eps || xi > 1-eps {
			continue
		}
		balance := math.Abs(xi - 0.5)
		score := math.Abs(rc[i]) - balance
		if best == nil || score > best.score {
			e := g.Edge(i)
			best = &candidate{u: e.U, v: e.V, score: score}
		}
	}
	if best == nil {
		return 0, 0, ErrNoFractionalEdge
	}
	return best.u, best.v, nil
}

const eps = 1e-6

// StrongBranch tightens the (u,v) column to each direction in turn,
// re-optimizes from the current basis, and reports an Estimate for each —
// restoring the original bound and basis before returning, so the caller
// sees no net change to the LP. A direction's trial is classified Infeas
// if the re-optimization reports StatInfeasible, Prune if its objective
// already meets or exceeds the incumbent (fixing it can only be worse),
// and Feas otherwise.
func (be *BranchExecutor) StrongBranch(u, v int) (down, up Estimate, err error) {
	idx, ok := be.lp.Graph().EdgeIndex(u, v)
	if !ok {
		return Estimate{}, Estimate{}, fmt.Errorf("branch: StrongBranch: edge (%d,%d) not in core graph", u, v)
	}
	saved, err := be.lp.SaveBasis()
	if err != nil {
		return Estimate{}, Estimate{}, fmt.Errorf("branch: StrongBranch: save basis: %w", err)
	}

	down, err = be.trialDirection(idx, Down)
	if err != nil {
		return Estimate{}, Estimate{}, err
	}
	if err := be.lp.PivotBack(saved); err != nil {
		return Estimate{}, Estimate{}, fmt.Errorf("branch: StrongBranch: restore after Down: %w", err)
	}

	up, err = be.trialDirection(idx, Up)
	if err != nil {
		return Estimate{}, Estimate{}, err
	}
	if err := be.lp.PivotBack(saved); err != nil {
		return Estimate{}, Estimate{}, fmt.Errorf("branch: StrongBranch: restore after Up: %w", err)
	}
	return down, up, nil
}

// trialDirection tightens column idx to dir's bound, re-optimizes with a
// guarded iteration limit, restores the bound, and classifies the result.
// It leaves the basis wherever the trial pivot left it; callers restore
// via PivotBack(saved) afterward.
func (be *BranchExecutor) trialDirection(idx int, dir Direction) (Estimate, error) {
	if dense, ok := be.lp.Oracle().(*lp.DenseSimplex); ok {
		guard := dense.WithIterLimit(be.iterLimit)
		defer guard.Release()
	}

	lo, hi := 0.0, 1.0
	if dir == Up {
		lo = 1.0
	} else {
		hi = 0.0
	}
	if err := be.lp.Oracle().TightenBound(idx, lp.BoundL, lo); err != nil {
		return Estimate{}, fmt.Errorf("branch: trialDirection: tighten lower: %w", err)
	}
	if err := be.lp.Oracle().TightenBound(idx, lp.BoundU, hi); err != nil {
		return Estimate{}, fmt.Errorf("branch: trialDirection: tighten upper: %w", err)
	}

	stat, perr := be.lp.Oracle().PrimalOpt()

	// restore the column's bound regardless of trial outcome
	if err := be.lp.Oracle().TightenBound(idx, lp.BoundL, 0); err != nil {
		return Estimate{}, fmt.Errorf("branch: trialDirection: restore lower: %w", err)
	}
	if err := be.lp.Oracle().TightenBound(idx, lp.BoundU, 1); err != nil {
		return Estimate{}, fmt.Errorf("branch: trialDirection: restore upper: %w", err)
	}
	if perr != nil {
		return Estimate{}, fmt.Errorf("branch: trialDirection: PrimalOpt: %w", perr)
	}

	if stat == lp.StatInfeasible {
		return Estimate{Stat: Infeas}, nil
	}
	obj := be.lp.Oracle().GetObjVal()
	if obj >= be.incumbentLP-eps {
		return Estimate{Value: obj, Stat: Prune}, nil
	}
	base, err := be.lp.SaveBasis()
	if err != nil {
		return Estimate{}, fmt.Errorf("branch: trialDirection: save trial basis: %w", err)
	}
	return Estimate{Value: obj, Stat: Feas, Basis: &base}, nil
}

// Clamp tightens (u,v)'s column to dir's bound and inserts a Non
// placeholder HyperGraph row so ExternalCuts indices continue to align
// with LP rows (spec.md §4.7), recording the inserted row's index on node
// for Unclamp to remove later. Clamp/Unclamp nest like a stack: a node
// must be unclamped before its parent is.
func (be *BranchExecutor) Clamp(node *BranchNode) error {
	idx, ok := be.lp.Graph().EdgeIndex(node.U, node.V)
	if !ok {
		return fmt.Errorf("branch: Clamp: edge (%d,%d) not in core graph", node.U, node.V)
	}
	lo, hi := 0.0, 1.0
	if node.Dir == Up {
		lo = 1.0
	} else {
		hi = 0.0
	}
	if err := be.lp.Oracle().TightenBound(idx, lp.BoundL, lo); err != nil {
		return err
	}
	if err := be.lp.Oracle().TightenBound(idx, lp.BoundU, hi); err != nil {
		return err
	}
	row := hypergraph.NewNon(hypergraph.SenseG, 0)
	rowIdx, err := be.lp.AddCut(row)
	if err != nil {
		return fmt.Errorf("branch: Clamp: Non row insert: %w", err)
	}
	node.cutRow = rowIdx
	return nil
}

// Unclamp restores (u,v)'s bound to [0,1] and deletes the Non row Clamp
// inserted. Must be called in strict LIFO order with Clamp.
func (be *BranchExecutor) Unclamp(node *BranchNode) error {
	idx, ok := be.lp.Graph().EdgeIndex(node.U, node.V)
	if !ok {
		return fmt.Errorf("branch: Unclamp: edge (%d,%d) not in core graph", node.U, node.V)
	}
	if err := be.lp.Oracle().TightenBound(idx, lp.BoundL, 0); err != nil {
		return err
	}
	if err := be.lp.Oracle().TightenBound(idx, lp.BoundU, 1); err != nil {
		return err
	}
	if node.cutRow < 0 {
		return nil
	}
	mask := make([]bool, node.cutRow+1)
	mask[node.cutRow] = true
	return be.lp.DelCuts(mask, false)
}

// SplitProblem emits the two children of parent along (u,v): a Down child
// excluding the edge and an Up child forcing it, each carrying the
// strong-branching estimate computed for its direction and an increased
// depth. Neither child is clamped yet — the caller (Solver) clamps a
// child only when it actually begins expanding it, so siblings never
// accumulate bounds they never use. A non-pruned child's TourClq is
// derived from its parent's compressed tour (or, at depth 1, from the
// current incumbent) via compressTour, tying every surviving node to a
// concrete Hamiltonian cycle honoring its whole clamp chain (spec.md
// §4.7, §3's BranchNode.tour_clq).
func (be *BranchExecutor) SplitProblem(parent *BranchNode, u, v int, down, up Estimate) (childDown, childUp *BranchNode) {
	parentTour := parent.TourClq
	if parentTour == nil {
		parentTour = be.lp.Tour().Nodes()
	}

	build := func(dir Direction, est Estimate) *BranchNode {
		status := NeedsCut
		switch est.Stat {
		case Infeas, Prune:
			status = Pruned
		}
		node := &BranchNode{
			U: u, V: v, Dir: dir, Status: status,
			Parent: parent, Depth: parent.Depth + 1,
			TourLen: est.Value, PriceBasis: est.Basis, cutRow: -1,
		}
		if status != Pruned {
			if clq, length, ok := be.compressTour(parentTour, u, v, dir); ok {
				node.TourClq = clq
				node.TourLen = length
			}
		}
		return node
	}
	return build(Down, down), build(Up, up)
}

// compressTour derives a Hamiltonian cycle honoring dir's clamp on (u,v)
// from base (the parent node's own compressed tour), by relocating the
// minimal single node needed: splicing v next to u for an Up clamp, or
// relocating v away from u for a Down clamp. A pure list relocation can
// never repeat or drop a node, so the result is always a valid
// permutation of base; it reports ok=false (rather than an error) when
// base is too short to have a meaningful antipodal node, or when some
// adjacent pair in the result has no priced CoreGraph edge to cost it.
func (be *BranchExecutor) compressTour(base []int, u, v int, dir Direction) (result []int, length float64, ok bool) {
	n := len(base)
	if n < 4 {
		return nil, 0, false
	}
	tourNodes := append([]int(nil), base...)
	pu := indexOf(tourNodes, u)
	if pu < 0 || indexOf(tourNodes, v) < 0 {
		return nil, 0, false
	}

	adjacent := func(a, b int) bool {
		pa := indexOf(tourNodes, a)
		return tourNodes[(pa+1)%n] == b || tourNodes[(pa-1+n)%n] == b
	}

	switch dir {
	case Up:
		if !adjacent(u, v) {
			tourNodes = spliceAfter(tourNodes, u, v)
		}
	case Down:
		if adjacent(u, v) {
			target := tourNodes[(pu+n/2)%n]
			if target == v || target == u {
				return nil, 0, false
			}
			tourNodes = spliceAfter(tourNodes, target, v)
		}
	}

	total := 0.0
	for i := 0; i < n; i++ {
		a, b := tourNodes[i], tourNodes[(i+1)%n]
		idx, exists := be.lp.Graph().EdgeIndex(a, b)
		if !exists {
			return nil, 0, false
		}
		total += be.lp.Graph().Edge(idx).Len
	}
	return tourNodes, total, true
}

// spliceAfter removes v from tour and reinserts it immediately after u.
func spliceAfter(tour []int, u, v int) []int {
	out := make([]int, 0, len(tour))
	for _, node := range tour {
		if node == v {
			continue
		}
		out = append(out, node)
		if node == u {
			out = append(out, v)
		}
	}
	return out
}

func indexOf(tour []int, node int) int {
	for i, v := range tour {
		if v == node {
			return i
		}
	}
	return -1
}
