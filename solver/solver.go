// Package solver wires CoreGraph, TourBank, CoreLP, the separator, the
// pricer, and the branch executor into the top-level pivot → separate →
// price → branch loop (spec.md §4.4, SPEC_FULL.md §4).
package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/primalcut/branch"
	"github.com/katalvlaran/primalcut/clique"
	"github.com/katalvlaran/primalcut/corelp"
	"github.com/katalvlaran/primalcut/coregraph"
	"github.com/katalvlaran/primalcut/extcuts"
	"github.com/katalvlaran/primalcut/heur"
	"github.com/katalvlaran/primalcut/instance"
	"github.com/katalvlaran/primalcut/logx"
	"github.com/katalvlaran/primalcut/lp"
	"github.com/katalvlaran/primalcut/pricer"
	"github.com/katalvlaran/primalcut/separate"
	"github.com/katalvlaran/primalcut/tour"
)

// ErrTooFewNodes is returned when the instance has fewer than 3 nodes,
// below which a simple cycle (and thus a CoreGraph tour seed) is not
// well-defined.
var ErrTooFewNodes = errors.New("solver: instance needs at least 3 nodes")

var log = logx.Get("primalcut.solver")

// config holds every tunable the functional options below can override.
type config struct {
	phEpsilon       float64
	twoOptPasses    int
	branchIterLimit int
	maxNodes        int
	startTour       []int
}

func defaultConfig() config {
	return config{phEpsilon: 0.01, twoOptPasses: 0, branchIterLimit: 50, maxNodes: 10000}
}

// Option configures a Solver at construction time.
type Option func(*config)

// WithPHEpsilon overrides ε_PH, the minimum fractional objective-progress
// ratio a batch of cuts must achieve for the separation round to go on
// (spec.md §4.3). Below it the round ends and the loop pivots again;
// pricing runs only after a round in which no cut was found.
func WithPHEpsilon(eps float64) Option {
	return func(c *config) { c.phEpsilon = eps }
}

// WithTwoOptPasses bounds the starting heuristic's 2-opt polish (0 means
// run to local optimum).
func WithTwoOptPasses(passes int) Option {
	return func(c *config) { c.twoOptPasses = passes }
}

// WithBranchIterLimit bounds each strong-branching trial's pivot count.
func WithBranchIterLimit(limit int) Option {
	return func(c *config) { c.branchIterLimit = limit }
}

// WithMaxNodes bounds the branch-and-bound tree's node count; the search
// stops (returning the best tour found so far, marked non-optimal) once
// this many nodes have been explored. 0 means unbounded.
func WithMaxNodes(n int) Option {
	return func(c *config) { c.maxNodes = n }
}

// WithStartTour overrides the greedy+2-opt seed with an explicit node
// permutation (e.g. read from a TSPLIB start-tour file), skipping the
// heuristic entirely. tour must be a permutation of 0..n-1; New validates
// this via tour.New the same way it would a heuristic seed.
func WithStartTour(nodes []int) Option {
	return func(c *config) { c.startTour = append([]int(nil), nodes...) }
}

// Status reports how a Solve run ended.
type Status int

const (
	// StatusOptimal: the search tree was exhausted; TourNodes is provably
	// the shortest Hamiltonian cycle over the instance's relaxation.
	StatusOptimal Status = iota
	// StatusNodeLimit: WithMaxNodes cut the search off early.
	StatusNodeLimit
)

func (s Status) String() string {
	if s == StatusOptimal {
		return "Optimal"
	}
	return "NodeLimit"
}

// Result is a completed Solve call's outcome.
type Result struct {
	Status        Status
	TourNodes     []int
	TourLength    float64
	NodesExplored int
	LiveCuts      int
}

// Solver owns one session's full component graph: one CoreGraph/TourBank
// pair shared by every branch node (spec.md §5's "CoreGraph persists for
// the session" ownership rule).
type Solver struct {
	graph *coregraph.CoreGraph
	tb    *tour.TourBank
	lp    *corelp.CoreLP
	bank  *clique.Bank
	teeth *clique.ToothBank
	sep   *separate.Separator
	pr    *pricer.Pricer
	be    *branch.BranchExecutor

	cfg config
}

// New builds a Solver seeded from inst: a greedy nearest-neighbor tour
// polished by 2-opt becomes the CoreGraph's initial edge set and the
// CoreLP's starting basis.
func New(inst *instance.Instance, opts ...Option) (*Solver, error) {
	if inst.N < 3 {
		return nil, ErrTooFewNodes
	}
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	startTour := cfg.startTour
	if startTour == nil {
		startTour = heur.GreedyTour(inst.N, inst.Dist)
		startTour = heur.TwoOpt(inst.N, inst.Dist, startTour, heur.Options{MaxPasses: cfg.twoOptPasses})
	}

	g := coregraph.New(inst.N)
	for i := 0; i < inst.N; i++ {
		u, v := startTour[i], startTour[(i+1)%inst.N]
		if _, err := g.AddEdge(u, v, inst.Dist(u, v)); err != nil {
			return nil, fmt.Errorf("solver: seeding tour edge (%d,%d): %w", u, v, err)
		}
	}
	tb, err := tour.New(g, startTour)
	if err != nil {
		return nil, fmt.Errorf("solver: TourBank: %w", err)
	}
	ext := extcuts.New()
	oracle := lp.NewDenseSimplex()
	lpw, err := corelp.New(g, tb, ext, oracle)
	if err != nil {
		return nil, fmt.Errorf("solver: CoreLP: %w", err)
	}
	if err := lpw.TourBasis(); err != nil {
		return nil, fmt.Errorf("solver: TourBasis: %w", err)
	}
	if err := lpw.FactorBasis(); err != nil {
		return nil, fmt.Errorf("solver: FactorBasis: %w", err)
	}

	bank := clique.NewBank(tb.Nodes(), tb.Perm())
	teeth := clique.NewToothBank(tb.Nodes(), tb.Perm())
	sep := separate.New(lpw, bank, teeth)
	pr, err := pricer.New(lpw, inst)
	if err != nil {
		return nil, fmt.Errorf("solver: Pricer: %w", err)
	}
	be := branch.New(lpw, tb.Length(), cfg.branchIterLimit)

	return &Solver{graph: g, tb: tb, lp: lpw, bank: bank, teeth: teeth, sep: sep, pr: pr, be: be, cfg: cfg}, nil
}

// Solve drives the branch-and-cut-price tree to exhaustion (or to
// WithMaxNodes's limit) and returns the best tour found.
func (s *Solver) Solve() (Result, error) {
	root := &branch.BranchNode{Status: branch.NeedsCut}
	stack := []*branch.BranchNode{root}
	explored := 0
	status := StatusOptimal

	for len(stack) > 0 {
		if s.cfg.maxNodes > 0 && explored >= s.cfg.maxNodes {
			status = StatusNodeLimit
			break
		}
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		explored++

		if node.Parent != nil {
			if err := s.be.Clamp(node); err != nil {
				return Result{}, fmt.Errorf("solver: node %d clamp: %w", explored, err)
			}
		}

		piv, err := s.nodeLoop()
		if err != nil {
			return Result{}, fmt.Errorf("solver: node %d: %w", explored, err)
		}
		log.Debugf("node %d (depth %d) fathomed as %v, incumbent %.4f", explored, node.Depth, piv, s.tb.Length())

		if piv != corelp.FathomedTour && piv != corelp.Tour {
			if u, v, berr := s.be.BranchEdge(); berr == nil {
				s.be.SetIncumbent(s.tb.Length())
				if down, up, serr := s.be.StrongBranch(u, v); serr == nil {
					childDown, childUp := s.be.SplitProblem(node, u, v, down, up)
					if childUp.Status != branch.Pruned {
						stack = append(stack, childUp)
					}
					if childDown.Status != branch.Pruned {
						stack = append(stack, childDown)
					}
				} else {
					log.Warningf("node %d: strong branch on (%d,%d) failed: %v", explored, u, v, serr)
				}
			}
		}

		if node.Parent != nil {
			if err := s.be.Unclamp(node); err != nil {
				return Result{}, fmt.Errorf("solver: node %d unclamp: %w", explored, err)
			}
		}
	}

	return Result{
		Status:        status,
		TourNodes:     append([]int(nil), s.tb.Nodes()...),
		TourLength:    s.tb.Length(),
		NodesExplored: explored,
		LiveCuts:      s.lp.Cuts().Len(),
	}, nil
}

// nodeLoop runs spec.md §4.4's pivot/separate/price cycle for the node
// currently clamped on s.lp, returning once a FathomedTour/Tour pivot is
// reached or once neither separation nor pricing can make further
// progress (the node is left for BranchExecutor).
func (s *Solver) nodeLoop() (corelp.PivotResult, error) {
	for {
		piv, err := s.lp.PrimalPivot()
		if err != nil {
			return corelp.Frac, fmt.Errorf("nodeLoop: PrimalPivot: %w", err)
		}
		if piv == corelp.Tour {
			s.be.SetIncumbent(s.tb.Length())
			return piv, nil
		}
		if piv == corelp.FathomedTour {
			return piv, nil
		}

		objPrev := s.lp.ObjVal()
		cutFoundThisRound := false
		restartAtTop := false
		for {
			cands, step, serr := s.sep.Run()
			if serr != nil {
				log.Warningf("separator %s failed, dropping its queue: %v", step, serr)
				break
			}
			if len(cands) == 0 {
				break
			}
			cutFoundThisRound = true
			for _, cand := range cands {
				if _, err := s.lp.AddCut(cand.Cut); err != nil {
					return corelp.Frac, fmt.Errorf("nodeLoop: AddCut(%s): %w", step, err)
				}
			}
			piv, err = s.lp.PrimalPivot()
			if err != nil {
				return corelp.Frac, fmt.Errorf("nodeLoop: PrimalPivot after %s: %w", step, err)
			}
			if piv == corelp.Tour {
				s.be.SetIncumbent(s.tb.Length())
				return piv, nil
			}
			if piv == corelp.FathomedTour {
				return piv, nil
			}
			if piv == corelp.Subtour {
				restartAtTop = true
				break
			}
			objNew := s.lp.ObjVal()
			denom := s.tb.Length() - objPrev
			delta := 0.0
			if math.Abs(denom) > 1e-12 {
				delta = math.Abs((objNew - objPrev) / denom)
			}
			objPrev = objNew
			if delta < s.cfg.phEpsilon {
				break
			}
		}
		if restartAtTop {
			continue
		}
		if cutFoundThisRound {
			continue
		}

		stat, perr := s.pr.AddEdges(piv)
		if perr != nil {
			return corelp.Frac, fmt.Errorf("nodeLoop: pricer: %w", perr)
		}
		if stat == pricer.Partial || stat == pricer.Full {
			continue
		}
		return piv, nil
	}
}
