// Package pricer implements reduced-cost-based generation of edges outside
// the core LP (spec.md §4.6): a cheap near-neighbor partial scan tried
// first, escalating to a full O(n^2) scan only when the partial scan comes
// up empty or the current pivot already claims dual feasibility (so a
// partial miss cannot be trusted to mean "no improving edge exists").
package pricer

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/primalcut/corelp"
	"github.com/katalvlaran/primalcut/coregraph"
	"github.com/katalvlaran/primalcut/instance"
)

const eps = 1e-9

// nearK is the partial scan's per-node neighbor count (spec.md §4.6: "50
// nearest neighbors").
const nearK = 50

// ScanStat reports how thoroughly AddEdges searched for improving edges.
type ScanStat int

const (
	// Partial: the near-neighbor scan alone found negative-reduced-cost
	// edges and the pivot was not yet dual-feasible, so no full scan ran.
	Partial ScanStat = iota
	// PartOpt: both scans ran (because the partial scan alone found
	// nothing) and neither found an improving edge, but the pivot was not
	// FathomedTour — optimality here is only as strong as this round's
	// scans, not a certified global claim. This is a deliberate
	// simplification of spec.md §4.6's four-state enum; see DESIGN.md.
	PartOpt
	// Full: the full scan (triggered by an empty partial scan or a
	// FathomedTour pivot) found improving edges.
	Full
	// FullOpt: the full scan ran and found nothing while the pivot
	// already claimed FathomedTour — a certified confirmation that no
	// priced-out edge can improve the current dual-feasible solution.
	FullOpt
)

func (s ScanStat) String() string {
	switch s {
	case Partial:
		return "Partial"
	case PartOpt:
		return "PartOpt"
	case Full:
		return "Full"
	case FullOpt:
		return "FullOpt"
	default:
		return "Unknown"
	}
}

// Pricer holds the CoreLP it prices edges into and the distance oracle it
// prices them from; node-π and cut-π are read fresh from the oracle on
// every call rather than cached, since a cache would go stale across
// pivots and the engine never calls AddEdges often enough to need one.
type Pricer struct {
	lp   *corelp.CoreLP
	inst *instance.Instance
}

// New binds a Pricer to lp's current graph/cuts and inst's distance
// oracle. lp and inst must describe the same node count.
func New(lp *corelp.CoreLP, inst *instance.Instance) (*Pricer, error) {
	if lp.N() != inst.N {
		return nil, fmt.Errorf("pricer: CoreLP has %d nodes, instance has %d", lp.N(), inst.N)
	}
	return &Pricer{lp: lp, inst: inst}, nil
}

type candidate struct {
	u, v   int
	length float64
	rc     float64
}

// AddEdges runs the scan, prices any negative-reduced-cost edges it finds
// into the CoreLP, and reports how thorough the search was.
func (p *Pricer) AddEdges(pivStat corelp.PivotResult) (ScanStat, error) {
	partial, err := p.scan(p.nearNeighborPairs())
	if err != nil {
		return 0, err
	}
	if len(partial) > 0 && pivStat != corelp.FathomedTour {
		if err := p.installEdges(partial); err != nil {
			return 0, err
		}
		return Partial, nil
	}

	full, err := p.scan(p.allPairs())
	if err != nil {
		return 0, err
	}
	if len(full) > 0 {
		if err := p.installEdges(full); err != nil {
			return 0, err
		}
		return Full, nil
	}
	if pivStat == corelp.FathomedTour {
		return FullOpt, nil
	}
	return PartOpt, nil
}

// nearNeighborPairs enumerates, for every node v, its nearK nearest
// neighbors by raw distance (ties broken by node index), skipping pairs
// already present as CoreGraph edges.
func (p *Pricer) nearNeighborPairs() [][2]int {
	n := p.inst.N
	g := p.lp.Graph()
	seen := make(map[[2]int]bool)
	var out [][2]int
	for v := 0; v < n; v++ {
		type nd struct {
			u int
			d float64
		}
		neighbors := make([]nd, 0, n-1)
		for u := 0; u < n; u++ {
			if u == v {
				continue
			}
			neighbors = append(neighbors, nd{u, p.inst.Dist(v, u)})
		}
		sort.Slice(neighbors, func(i, j int) bool {
			if neighbors[i].d != neighbors[j].d {
				return neighbors[i].d < neighbors[j].d
			}
			return neighbors[i].u < neighbors[j].u
		})
		limit := nearK
		if limit > len(neighbors) {
			limit = len(neighbors)
		}
		for _, nb := range neighbors[:limit] {
			pair := pairKey(v, nb.u)
			if seen[pair] {
				continue
			}
			if _, exists := g.EdgeIndex(v, nb.u); exists {
				continue
			}
			seen[pair] = true
			out = append(out, pair)
		}
	}
	return out
}

// allPairs enumerates every node pair not already a CoreGraph edge.
func (p *Pricer) allPairs() [][2]int {
	n := p.inst.N
	g := p.lp.Graph()
	var out [][2]int
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if _, exists := g.EdgeIndex(u, v); exists {
				continue
			}
			out = append(out, [2]int{u, v})
		}
	}
	return out
}

func pairKey(u, v int) [2]int {
	if u > v {
		u, v = v, u
	}
	return [2]int{u, v}
}

// scan computes the reduced cost of every candidate pair and keeps the
// negative ones. Reduced cost follows spec.md §4.2's formula:
//
//	rc(u,v) = d(u,v) − π[u] − π[v] − Σ_{cut c: u∈c XOR v∈c} coef_c(u,v)·π[c]
//
// where π[u]/π[v] are the degree-row duals (CoreLP installs row i for node
// i) and the cut term is exactly ExternalCuts.GetCol(u,v) dotted with the
// cut-row duals.
func (p *Pricer) scan(pairs [][2]int) ([]candidate, error) {
	pi := p.lp.Oracle().Pi()
	n := p.lp.N()
	cuts := p.lp.Cuts()

	var out []candidate
	for _, pair := range pairs {
		u, v := pair[0], pair[1]
		col, err := cuts.GetCol(u, v)
		if err != nil {
			return nil, fmt.Errorf("pricer: scan: %w", err)
		}
		cutTerm := 0.0
		for i, coeff := range col {
			cutTerm += coeff * pi[n+i]
		}
		length := p.inst.Dist(u, v)
		rc := length - pi[u] - pi[v] - cutTerm
		if rc < -eps {
			out = append(out, candidate{u: u, v: v, length: length, rc: rc})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rc < out[j].rc })
	return out, nil
}

func (p *Pricer) installEdges(cands []candidate) error {
	batch := make([]coregraph.Edge, len(cands))
	for i, c := range cands {
		batch[i] = coregraph.Edge{U: c.u, V: c.v, Len: c.length}
	}
	_, err := p.lp.AddEdges(batch)
	return err
}
