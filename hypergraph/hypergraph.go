// Package hypergraph implements HyperGraph: the interned, shared-ownership
// representation of one separated cut (subtour, comb, domino-parity, or a
// placeholder branch row), plus its coefficient-query formulas
// (spec.md §3, §4.2).
//
// A HyperGraph shares ownership of every clique/tooth handle it references
// with the bank that produced them; Release mimics the C++ destructor's
// refcount decrement (spec.md §5, §9 "cyclic ownership").
package hypergraph

import (
	"errors"
	"math"

	"github.com/katalvlaran/primalcut/clique"
)

// Sense is the row sense of a cut: >=, <=, or =.
type Sense int

const (
	SenseG Sense = iota // Σ a_e x_e >= rhs
	SenseL              // Σ a_e x_e <= rhs
	SenseE              // Σ a_e x_e == rhs
)

// Type is the cut's variant tag.
type Type int

const (
	Subtour Type = iota
	Comb
	Domino
	Non
)

// ErrNonCutCoeff is returned by GetCoeff on a Non (placeholder) cut: a
// branch-bound row never produces edge coefficients.
var ErrNonCutCoeff = errors.New("hypergraph: get_coeff on Non placeholder cut")

// ErrSameEndpoint guards against asking for the coefficient of a self-loop.
var ErrSameEndpoint = errors.New("hypergraph: edge has identical endpoints")

// HyperGraph is one separated cut.
type HyperGraph struct {
	sense Sense
	rhs   float64

	cliques []*clique.Handle
	teeth   []*clique.ToothHandle

	bank      *clique.Bank
	toothBank *clique.ToothBank
}

// NewStandard builds a standard (subtour/comb) cut: sense, rhs, and a list
// of clique handles already owned (refcount already incremented) by bank.
func NewStandard(bank *clique.Bank, sense Sense, rhs float64, cliques []*clique.Handle) *HyperGraph {
	return &HyperGraph{
		sense:   sense,
		rhs:     rhs,
		cliques: cliques,
		bank:    bank,
	}
}

// NewDomino builds a simple domino-parity cut: sense is always SenseL, the
// handle clique plus the light-tooth list already owned by the two banks.
func NewDomino(bank *clique.Bank, toothBank *clique.ToothBank, rhs float64, handle *clique.Handle, teeth []*clique.ToothHandle) *HyperGraph {
	return &HyperGraph{
		sense:     SenseL,
		rhs:       rhs,
		cliques:   []*clique.Handle{handle},
		teeth:     teeth,
		bank:      bank,
		toothBank: toothBank,
	}
}

// NewNon builds a placeholder row (e.g. a branch bound) that owns no
// cliques or teeth and never produces coefficients.
func NewNon(sense Sense, rhs float64) *HyperGraph {
	return &HyperGraph{sense: sense, rhs: rhs}
}

// CutType reports the cut's variant tag.
func (hg *HyperGraph) CutType() Type {
	if hg.bank == nil && hg.toothBank == nil {
		return Non
	}
	if len(hg.teeth) > 0 {
		return Domino
	}
	if len(hg.cliques) == 1 {
		return Subtour
	}
	return Comb
}

// Sense returns the cut's row sense.
func (hg *HyperGraph) Sense() Sense { return hg.sense }

// RHS returns the cut's right-hand side.
func (hg *HyperGraph) RHS() float64 { return hg.rhs }

// Cliques exposes the owned clique handles (read-only).
func (hg *HyperGraph) Cliques() []*clique.Handle { return hg.cliques }

// Teeth exposes the owned tooth handles (read-only).
func (hg *HyperGraph) Teeth() []*clique.ToothHandle { return hg.teeth }

// Release decrements the refcount of every clique/tooth handle this cut
// owns, mirroring the C++ destructor (spec.md §9). Must be called exactly
// once, when the cut is permanently discarded (never demoted to the pool).
func (hg *HyperGraph) Release() {
	if hg.bank != nil {
		for _, c := range hg.cliques {
			hg.bank.Del(c)
		}
	}
	if hg.toothBank != nil {
		for _, t := range hg.teeth {
			hg.toothBank.Del(t)
		}
	}
}

// standardCoeff is Σ over cliques of [u in C] XOR [v in C], using the
// bank's perm to test membership (spec.md §4.2).
func (hg *HyperGraph) standardCoeff(u, v int) float64 {
	perm := hg.bank.Perm()
	pu, pv := perm[u], perm[v]
	coeff := 0.0
	for _, h := range hg.cliques {
		cu := h.Value.ContainsPos(pu)
		cv := h.Value.ContainsPos(pv)
		if cu != cv {
			coeff++
		}
	}
	return coeff
}

// dominoCoeff implements the simple-DP coefficient formula of spec.md
// §4.2: handle H plus teeth T_i=(R_i,B_i),
//
//	2*coef = 2*[u,v in H] + [u in H] xor [v in H]
//	       + sum_i (2*[u,v in B_i] + [u in R_i and v in B_i] + [v in R_i and u in B_i])
//	coef = floor(2*coef / 2)
func (hg *HyperGraph) dominoCoeff(u, v int) float64 {
	perm := hg.bank.Perm()
	pu, pv := perm[u], perm[v]

	h := hg.cliques[0].Value
	hu, hv := h.ContainsPos(pu), h.ContainsPos(pv)

	twice := 0.0
	if hu && hv {
		twice += 2
	}
	if hu != hv {
		twice += 1
	}

	toothPerm := hg.toothBank.Perm()
	tpu, tpv := toothPerm[u], toothPerm[v]

	for _, th := range hg.teeth {
		root, body := th.Value.Root, th.Value.Body
		bu, bv := body.ContainsPos(tpu), body.ContainsPos(tpv)
		ru, rv := root.ContainsPos(tpu), root.ContainsPos(tpv)

		if bu && bv {
			twice += 2
		}
		if ru && bv {
			twice += 1
		}
		if rv && bu {
			twice += 1
		}
	}

	return math.Floor(twice / 2)
}

// GetCoeff returns the coefficient of edge (u,v) in this cut's row.
func (hg *HyperGraph) GetCoeff(u, v int) (float64, error) {
	if u == v {
		return 0, ErrSameEndpoint
	}
	switch hg.CutType() {
	case Non:
		return 0, ErrNonCutCoeff
	case Domino:
		return hg.dominoCoeff(u, v), nil
	default:
		return hg.standardCoeff(u, v), nil
	}
}

// DominoRHS computes the floor((2|H| + Σ(2|B_i|-1))/2) - correction term
// described in spec.md §4.2, given the bank's n and the sum of reference
// nonnegative-edge coefficients (usually 0 for a freshly built cut).
func DominoRHS(n int, handle clique.Clique, teeth []clique.Tooth, nonnegCorrection float64) float64 {
	raw := 2.0 * float64(handle.Cardinality(n))
	for _, t := range teeth {
		raw += 2*float64(t.Body.Cardinality(n)) - 1
	}
	return math.Floor(raw/2) - nonnegCorrection
}
