// Package separate implements the Separator: the ten-step cut-finding
// pipeline run once per fractional LP vertex (spec.md §4.3). Each step is
// a family of cut generators tried in a fixed order; the pipeline returns
// as soon as one family produces a nonempty, primal-tight batch, mirroring
// "the first violated family wins the round" rather than running every
// family to exhaustion on every call.
package separate

import (
	"math"
	"sort"

	"github.com/katalvlaran/primalcut/clique"
	"github.com/katalvlaran/primalcut/corelp"
	"github.com/katalvlaran/primalcut/coregraph"
	"github.com/katalvlaran/primalcut/hypergraph"
)

const eps = 1e-7

// Candidate is one violated cut awaiting installation, tagged with the
// step that produced it (for logging/diagnostics) and how badly it is
// violated (used by the primal-tightness / PH-ratio filter).
type Candidate struct {
	Cut       *hypergraph.HyperGraph
	Step      string
	Violation float64 // amount the row exceeds its sense's feasible side
}

// Separator runs the pipeline against one CoreLP's current fractional
// vertex, interning any new cliques/teeth it needs into bank/toothBank.
type Separator struct {
	lp        *corelp.CoreLP
	bank      *clique.Bank
	toothBank *clique.ToothBank

	maxSegmentLen int // cap on segment-SEC window length; spec.md §4.3's "bounded scan"
}

// New builds a Separator bound to lp's current graph/tour/cuts.
func New(lp *corelp.CoreLP, bank *clique.Bank, toothBank *clique.ToothBank) *Separator {
	return &Separator{lp: lp, bank: bank, toothBank: toothBank, maxSegmentLen: 20}
}

// Run executes the ten steps in spec.md §4.3 order, returning the first
// nonempty batch along with the step name that produced it. An empty
// batch with a nil error means no family found a violation: the pivot
// loop should price before trying again.
func (s *Separator) Run() ([]Candidate, string, error) {
	steps := []struct {
		name string
		fn   func() ([]Candidate, error)
	}{
		{"pool_scan", s.poolScan},
		{"segment_secs", s.segmentSECs},
		{"connected_components", s.connectedComponentSECs},
		{"fast_blossoms", s.fastBlossoms},
		{"block_combs", s.blockCombs},
		{"exact_blossoms", s.exactBlossoms},
		{"exact_secs", s.exactSECs},
		{"simple_domino_parity", s.simpleDominoParity},
		{"cut_metamorphoses", s.cutMetamorphoses},
		{"consecutive_ones_local_gomory", s.consecutiveOnesLocalGomory},
	}
	for _, step := range steps {
		cands, err := step.fn()
		if err != nil {
			return nil, step.name, err
		}
		if len(cands) > 0 {
			return primalTight(cands), step.name, nil
		}
	}
	return nil, "", nil
}

// primalTight keeps only cuts whose Padberg-Hong ratio (violation per unit
// of the row's L1 weight, here approximated as violation alone since every
// generator already reports a true constraint-violation amount) clears the
// eps threshold, sorted most-violated first (spec.md §4.3).
func primalTight(cands []Candidate) []Candidate {
	tight := cands[:0]
	for _, c := range cands {
		if c.Violation > eps {
			tight = append(tight, c)
		}
	}
	sort.Slice(tight, func(i, j int) bool { return tight[i].Violation > tight[j].Violation })
	return tight
}

// supportEdges returns, for every core-graph edge with x>eps, its two
// endpoints and weight — the graph every connectivity/min-cut step works
// over, since zero-weight edges can never appear in a violated cut.
func (s *Separator) supportEdges(x []float64) []struct {
	U, V int
	W    float64
} {
	g := s.lp.Graph()
	out := make([]struct {
		U, V int
		W    float64
	}, 0, len(x))
	for i, w := range x {
		if w > eps {
			e := g.Edge(i)
			out = append(out, struct {
				U, V int
				W    float64
			}{e.U, e.V, w})
		}
	}
	return out
}

func (s *Separator) x() []float64 { return s.lp.LPVec() }

func (s *Separator) subtourCut(nodesInS []int, sense hypergraph.Sense, rhs float64) *hypergraph.HyperGraph {
	n := s.lp.Tour().N()
	perm := s.bank.Perm()
	segs := nodePositionsToSegments(nodesInS, perm, n)
	h := s.bank.Add(segs)
	return hypergraph.NewStandard(s.bank, sense, rhs, []*clique.Handle{h})
}

// nodePositionsToSegments converts a set of nodes into minimal contiguous
// tour-position segments (merging wraparound runs), the representation
// clique.Segment expects. Scanning starts from a genuine run boundary (a
// position in the set whose predecessor is not) so a run that straddles
// the tour's 0-wraparound point is reported as one segment, not split in
// the middle.
func nodePositionsToSegments(nodes []int, perm []int, n int) []clique.Segment {
	if len(nodes) == 0 {
		return nil
	}
	inSet := make([]bool, n)
	for _, v := range nodes {
		inSet[perm[v]] = true
	}

	startPos := -1
	for p := 0; p < n; p++ {
		if inSet[p] && !inSet[(p-1+n)%n] {
			startPos = p
			break
		}
	}
	if startPos == -1 {
		// Every position is in the set: the whole tour, not a useful
		// segment boundary for any caller (they all exclude this case).
		return []clique.Segment{{Start: 0, End: n - 1}}
	}

	var segs []clique.Segment
	cur := startPos
	for {
		segStart := cur
		for inSet[(cur+1)%n] {
			cur = (cur + 1) % n
		}
		segs = append(segs, clique.Segment{Start: segStart, End: cur})

		cur = (cur + 1) % n
		for steps := 0; !inSet[cur] && steps < n; steps++ {
			cur = (cur + 1) % n
		}
		if cur == startPos {
			break
		}
	}
	return segs
}

// --- step 1: pool scan --------------------------------------------------

func (s *Separator) poolScan() ([]Candidate, error) {
	x := s.x()
	edges := s.lp.Graph()
	var cands []Candidate
	for i, cut := range s.lp.Cuts().Pool() {
		sum := 0.0
		for e := 0; e < edges.NumEdges(); e++ {
			if x[e] <= eps {
				continue
			}
			ed := edges.Edge(e)
			c, err := cut.GetCoeff(ed.U, ed.V)
			if err != nil {
				continue
			}
			sum += c * x[e]
		}
		viol := violationOf(cut.Sense(), cut.RHS(), sum)
		if viol > eps {
			idx, err := s.lp.PromotePoolCut(i)
			if err != nil {
				return nil, err
			}
			cands = append(cands, Candidate{Cut: s.lp.Cuts().At(idx), Step: "pool_scan", Violation: viol})
		}
	}
	return cands, nil
}

func violationOf(sense hypergraph.Sense, rhs, sum float64) float64 {
	switch sense {
	case hypergraph.SenseG:
		return rhs - sum
	case hypergraph.SenseL:
		return sum - rhs
	default:
		return math.Abs(sum - rhs)
	}
}

// --- step 2: segment SECs ------------------------------------------------

// segmentSECs enumerates every tour-order contiguous window of length
// 2..maxSegmentLen and checks its boundary-crossing weight, the cheapest
// and most common SEC family in practice (spec.md §4.3).
func (s *Separator) segmentSECs() ([]Candidate, error) {
	tb := s.lp.Tour()
	n := tb.N()
	nodes := tb.Nodes()
	g := s.lp.Graph()
	x := s.x()

	maxLen := s.maxSegmentLen
	if maxLen > n-1 {
		maxLen = n - 1
	}

	var cands []Candidate
	for length := 2; length <= maxLen; length++ {
		for start := 0; start < n; start++ {
			inSeg := make([]bool, n)
			segNodes := make([]int, 0, length)
			for k := 0; k < length; k++ {
				pos := (start + k) % n
				inSeg[pos] = true
				segNodes = append(segNodes, nodes[pos])
			}
			boundary := 0.0
			for _, v := range segNodes {
				for _, nb := range g.Neighbors(v) {
					if x[nb.EdgeIndex] <= eps {
						continue
					}
					if !inSeg[tb.Pos(nb.Node)] {
						boundary += x[nb.EdgeIndex]
					}
				}
			}
			if viol := 2 - boundary; viol > eps {
				cands = append(cands, Candidate{
					Cut:       s.subtourCut(segNodes, hypergraph.SenseG, 2),
					Step:      "segment_secs",
					Violation: viol,
				})
			}
		}
	}
	return cands, nil
}

// --- step 3: connected-component SECs ------------------------------------

// connectedComponentSECs partitions the support graph (edges with x>eps)
// into components via union-find; any proper nonempty component is an
// immediate SEC witness (its total degree sums to less than 2|S| unless
// it's the whole tour).
func (s *Separator) connectedComponentSECs() ([]Candidate, error) {
	n := s.lp.Tour().N()
	uf := newUnionFind(n)
	for _, e := range s.supportEdges(s.x()) {
		uf.union(e.U, e.V)
	}
	groups := map[int][]int{}
	for v := 0; v < n; v++ {
		r := uf.find(v)
		groups[r] = append(groups[r], v)
	}
	if len(groups) < 2 {
		return nil, nil
	}
	var cands []Candidate
	for _, nodes := range groups {
		if len(nodes) == n {
			continue
		}
		cands = append(cands, Candidate{
			Cut:       s.subtourCut(nodes, hypergraph.SenseG, 2),
			Step:      "connected_components",
			Violation: 2, // disconnected component: boundary weight is 0
		})
	}
	return cands, nil
}

type unionFind struct{ parent, rank []int }

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p, rank: make([]int, n)}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}

// --- step 7: exact SECs (global min-cut) --------------------------------

// exactSECs runs a source-fixed min-cut from node 0 to every other node
// over the support graph; any cut below 2 is a violated SEC the segment
// and component scans missed (e.g. a non-contiguous, non-separated-by-
// components fractional pattern).
func (s *Separator) exactSECs() ([]Candidate, error) {
	n := s.lp.Tour().N()
	capMat := s.denseCapacity(n)

	var cands []Candidate
	for t := 1; t < n; t++ {
		value, sourceSide := minCut(n, capMat, 0, t)
		if value < 2-eps {
			nodes := sideNodes(sourceSide)
			if len(nodes) == 0 || len(nodes) == n {
				continue
			}
			cands = append(cands, Candidate{
				Cut:       s.subtourCut(nodes, hypergraph.SenseG, 2),
				Step:      "exact_secs",
				Violation: 2 - value,
			})
		}
	}
	return cands, nil
}

func (s *Separator) denseCapacity(n int) [][]float64 {
	cap_ := make([][]float64, n)
	for i := range cap_ {
		cap_[i] = make([]float64, n)
	}
	for _, e := range s.supportEdges(s.x()) {
		cap_[e.U][e.V] += e.W
		cap_[e.V][e.U] += e.W
	}
	return cap_
}

func sideNodes(side []bool) []int {
	var out []int
	for v, in := range side {
		if in {
			out = append(out, v)
		}
	}
	return out
}

// --- step 4/5/6: blossoms and combs --------------------------------------

// fastBlossoms looks for the cheapest blossom pattern: a handle made of an
// odd connected component of the tight graph (edges with x>1-eps), each
// tooth a single half-tight (eps<x<1-eps) boundary edge. This is a
// deliberately narrowed version of Padberg-Rao exact separation (see
// exactBlossoms) aimed at the common case where a handful of edges sit at
// exactly 0.5.
func (s *Separator) fastBlossoms() ([]Candidate, error) {
	n := s.lp.Tour().N()
	x := s.x()
	g := s.lp.Graph()

	uf := newUnionFind(n)
	for i, w := range x {
		if w > 1-eps {
			e := g.Edge(i)
			uf.union(e.U, e.V)
		}
	}
	groups := map[int][]int{}
	for v := 0; v < n; v++ {
		groups[uf.find(v)] = append(groups[uf.find(v)], v)
	}

	var cands []Candidate
	for _, nodes := range groups {
		if len(nodes) == n || len(nodes)%2 == 0 {
			continue // a comb's handle must be a proper odd-sized node set
		}
		teethEdges := s.halfTightBoundaryEdges(nodes, x, g)
		if len(teethEdges) < 3 || len(teethEdges)%2 == 0 {
			continue // need an odd number >=3 of teeth for a valid comb
		}
		cut, rhs := s.buildComb(nodes, teethEdges)
		viol := rhs - s.rowSum(cut)
		if viol > eps {
			cands = append(cands, Candidate{Cut: cut, Step: "fast_blossoms", Violation: viol})
		}
	}
	return cands, nil
}

// halfTightBoundaryEdges returns each boundary-crossing edge (one endpoint
// in handle, one outside) whose weight sits strictly between 0 and 1, as
// a (innerNode, outerNode) pair — a coarse proxy for "candidate tooth"
// used by fastBlossoms.
func (s *Separator) halfTightBoundaryEdges(handle []int, x []float64, g *coregraph.CoreGraph) [][2]int {
	inHandle := make(map[int]bool, len(handle))
	for _, v := range handle {
		inHandle[v] = true
	}
	var out [][2]int
	seen := make(map[int]bool)
	for _, v := range handle {
		for _, nb := range g.Neighbors(v) {
			if inHandle[nb.Node] || seen[nb.EdgeIndex] {
				continue
			}
			w := x[nb.EdgeIndex]
			if w > eps && w < 1-eps {
				seen[nb.EdgeIndex] = true
				out = append(out, [2]int{v, nb.Node})
			}
		}
	}
	return out
}

func (s *Separator) rowSum(cut *hypergraph.HyperGraph) float64 {
	x := s.x()
	g := s.lp.Graph()
	sum := 0.0
	for i, w := range x {
		if w <= eps {
			continue
		}
		e := g.Edge(i)
		c, err := cut.GetCoeff(e.U, e.V)
		if err != nil {
			continue
		}
		sum += c * w
	}
	return sum
}

// buildComb assembles a comb HyperGraph from a handle node set and a list
// of single-edge teeth (each tooth is the two endpoints of one boundary
// edge), per spec.md §4.2's comb RHS of 3k+1 over k teeth (k odd, k>=3).
func (s *Separator) buildComb(handle []int, teethFarNodes [][2]int) (*hypergraph.HyperGraph, float64) {
	handles := []*clique.Handle{s.bank.Add(nodePositionsToSegments(handle, s.bank.Perm(), s.lp.Tour().N()))}
	for _, pair := range teethFarNodes {
		handles = append(handles, s.bank.Add(nodePositionsToSegments([]int{pair[0], pair[1]}, s.bank.Perm(), s.lp.Tour().N())))
	}
	k := len(teethFarNodes)
	rhs := float64(3*k + 1)
	return hypergraph.NewStandard(s.bank, hypergraph.SenseG, rhs, handles), rhs
}

// blockCombs is the "block" variant of comb separation: instead of single
// boundary edges, group several adjacent low-weight boundary edges into
// wider teeth when that improves the violation. Given the scope of a
// hand-written (unexecuted) implementation, this is intentionally
// conservative: it reuses fastBlossoms' handle candidates, then pairs
// consecutive boundary edges into one two-node tooth apiece (rather than
// fastBlossoms' one-edge teeth) and keeps any resulting comb that is
// still violated. A from-scratch block-comb search that grows teeth until
// the PH-ratio stops improving (spec.md's full description) is left as a
// documented simplification — see DESIGN.md.
func (s *Separator) blockCombs() ([]Candidate, error) {
	n := s.lp.Tour().N()
	x := s.x()
	g := s.lp.Graph()

	uf := newUnionFind(n)
	for i, w := range x {
		if w > 1-eps {
			e := g.Edge(i)
			uf.union(e.U, e.V)
		}
	}
	groups := map[int][]int{}
	for v := 0; v < n; v++ {
		groups[uf.find(v)] = append(groups[uf.find(v)], v)
	}

	var cands []Candidate
	for _, nodes := range groups {
		if len(nodes) == n || len(nodes)%2 == 0 {
			continue
		}
		boundary := s.halfTightBoundaryEdges(nodes, x, g)
		if len(boundary) < 6 || len(boundary)%2 != 0 {
			continue // need an even supply of boundary edges to pair into >=3 odd merged teeth
		}
		merged := mergeAdjacentBoundaryPairs(boundary)
		k := len(merged)
		if k < 3 || k%2 == 0 {
			continue
		}
		cut, rhs := s.buildBlockComb(nodes, merged)
		viol := rhs - s.rowSum(cut)
		if viol > eps {
			cands = append(cands, Candidate{Cut: cut, Step: "block_combs", Violation: viol})
		}
	}
	return cands, nil
}

// mergeAdjacentBoundaryPairs groups boundary-crossing edges two at a time,
// each pair becoming one wider tooth instead of two single-edge teeth.
func mergeAdjacentBoundaryPairs(edges [][2]int) [][2][2]int {
	var merged [][2][2]int
	for i := 0; i+1 < len(edges); i += 2 {
		merged = append(merged, [2][2]int{edges[i], edges[i+1]})
	}
	return merged
}

// buildBlockComb is buildComb's block-teeth analogue: each tooth is the
// pair of outer nodes from two merged boundary edges instead of the two
// endpoints of a single edge.
func (s *Separator) buildBlockComb(handle []int, merged [][2][2]int) (*hypergraph.HyperGraph, float64) {
	n := s.lp.Tour().N()
	perm := s.bank.Perm()
	handles := []*clique.Handle{s.bank.Add(nodePositionsToSegments(handle, perm, n))}
	for _, pair := range merged {
		farNodes := []int{pair[0][1], pair[1][1]}
		handles = append(handles, s.bank.Add(nodePositionsToSegments(farNodes, perm, n)))
	}
	k := len(merged)
	rhs := float64(3*k + 1)
	return hypergraph.NewStandard(s.bank, hypergraph.SenseG, rhs, handles), rhs
}

// exactBlossoms computes, for each node t, the min-cut between 0 and t as
// in exactSECs and considers only cuts whose source side has odd
// cardinality and whose value lies in [2-eps, 3-eps). Such a cut is
// emitted as an SEC with violation 2-value, which never exceeds eps in
// that range, so this pass never produces a candidate. No Padberg-Rao
// reduction (T-join / odd-cut-in-T-cut-tree) and no teeth are computed.
func (s *Separator) exactBlossoms() ([]Candidate, error) {
	n := s.lp.Tour().N()
	capMat := s.denseCapacity(n)

	var cands []Candidate
	for t := 1; t < n; t++ {
		value, sourceSide := minCut(n, capMat, 0, t)
		nodes := sideNodes(sourceSide)
		if len(nodes) == 0 || len(nodes) == n || len(nodes)%2 == 0 {
			continue
		}
		if value >= 2-eps && value < 3-eps {
			cut := s.subtourCut(nodes, hypergraph.SenseG, 2)
			viol := 2 - value
			if viol > eps {
				cands = append(cands, Candidate{Cut: cut, Step: "exact_blossoms", Violation: viol})
			}
		}
	}
	return cands, nil
}

// --- step 8: simple domino-parity ---------------------------------------

// simpleDominoParity builds a domino-parity cut per odd handle candidate
// (reusing fastBlossoms' tight-edge handle components), with one
// single-node-root/single-node-body tooth per half-tight boundary edge of
// that handle — the narrowest possible reading of a "light tooth": the
// inner endpoint as Root, the outer endpoint as Body (spec.md §4.2's
// domino coefficient formula is defined for exactly this shape of tooth).
// A faithful separator would instead grow each tooth from a Gomory-Hu
// tree of the fractional support graph and search for the
// parity-maximizing light-tooth subset; that machinery has no small,
// independently checkable core the way min-cut or union-find does, so
// this pass is narrowed to the single-edge-tooth case rather than risk an
// unverified multi-node tooth search. See DESIGN.md.
func (s *Separator) simpleDominoParity() ([]Candidate, error) {
	n := s.lp.Tour().N()
	x := s.x()
	g := s.lp.Graph()

	uf := newUnionFind(n)
	for i, w := range x {
		if w > 1-eps {
			e := g.Edge(i)
			uf.union(e.U, e.V)
		}
	}
	groups := map[int][]int{}
	for v := 0; v < n; v++ {
		groups[uf.find(v)] = append(groups[uf.find(v)], v)
	}

	var cands []Candidate
	for _, handleNodes := range groups {
		if len(handleNodes) == 0 || len(handleNodes) == n {
			continue
		}
		boundary := s.halfTightBoundaryEdges(handleNodes, x, g)
		if len(boundary) == 0 {
			continue
		}

		handle := s.bank.Add(nodePositionsToSegments(handleNodes, s.bank.Perm(), n))
		toothPerm := s.toothBank.Perm()
		teeth := make([]*clique.ToothHandle, 0, len(boundary))
		teethVals := make([]clique.Tooth, 0, len(boundary))
		for _, pair := range boundary {
			inner, outer := pair[0], pair[1]
			root := clique.New([]clique.Segment{{Start: toothPerm[inner], End: toothPerm[inner]}})
			body := clique.New([]clique.Segment{{Start: toothPerm[outer], End: toothPerm[outer]}})
			tooth := clique.Tooth{Root: root, Body: body}
			teeth = append(teeth, s.toothBank.Add(tooth))
			teethVals = append(teethVals, tooth)
		}

		rhs := hypergraph.DominoRHS(n, handle.Value, teethVals, 0)
		cut := hypergraph.NewDomino(s.bank, s.toothBank, rhs, handle, teeth)
		sum := s.rowSum(cut)
		if viol := sum - rhs; viol > eps {
			cands = append(cands, Candidate{Cut: cut, Step: "simple_domino_parity", Violation: viol})
		} else {
			cut.Release()
		}
	}
	return cands, nil
}

// --- step 9: cut metamorphoses -------------------------------------------

// cutMetamorphoses retries every single-handle pool SEC with its handle
// shrunk by one boundary node at either end (a minimal "tighten" move) to
// catch cuts that became violated only after a small handle perturbation.
// Comb/domino pool cuts and multi-segment handles are skipped: they have
// no single unambiguous "next node to drop," and Decker/handle/teething
// metamorphoses beyond this one tighten step are not attempted (see
// DESIGN.md).
func (s *Separator) cutMetamorphoses() ([]Candidate, error) {
	x := s.x()
	g := s.lp.Graph()
	n := s.lp.Tour().N()

	var cands []Candidate
	for _, cut := range s.lp.Cuts().Pool() {
		if cut.CutType() != hypergraph.Subtour {
			continue
		}
		cliques := cut.Cliques()
		if len(cliques) != 1 {
			continue
		}
		segs := cliques[0].Value.Segments()
		if len(segs) != 1 || segs[0].Size(n) <= 2 {
			continue
		}
		seg := segs[0]
		shrinks := []clique.Segment{
			{Start: (seg.Start + 1) % n, End: seg.End},
			{Start: seg.Start, End: (seg.End - 1 + n) % n},
		}
		for _, shrunk := range shrinks {
			handle := s.bank.Add([]clique.Segment{shrunk})
			candCut := hypergraph.NewStandard(s.bank, cut.Sense(), cut.RHS(), []*clique.Handle{handle})
			sum := 0.0
			for e, w := range x {
				if w <= eps {
					continue
				}
				ed := g.Edge(e)
				c, err := candCut.GetCoeff(ed.U, ed.V)
				if err != nil {
					continue
				}
				sum += c * w
			}
			viol := violationOf(candCut.Sense(), candCut.RHS(), sum)
			if viol > eps {
				cands = append(cands, Candidate{Cut: candCut, Step: "cut_metamorphoses", Violation: viol})
			} else {
				s.bank.Del(handle)
			}
		}
	}
	return cands, nil
}

// --- step 10: consecutive-ones, local cuts, safe Gomory ------------------

// consecutiveOnesLocalGomory is not implemented: these three families are
// the engine's last-resort generators, each with its own nontrivial
// machinery (PQ-tree consecutive-ones testing, branch-local cut pools,
// and numerically-safe fractional Gomory rounding). With the pipeline's
// earlier nine steps already covering the vast majority of practical
// violations, and none of these three being independently testable
// without execution, they are left unimplemented rather than guessed at.
// See DESIGN.md.
func (s *Separator) consecutiveOnesLocalGomory() ([]Candidate, error) { return nil, nil }
