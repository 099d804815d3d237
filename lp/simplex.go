package lp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DenseSimplex is the default Oracle: a dense, bounded-variable, Big-M
// primal simplex. Every row carries an implicit logical (slack/surplus)
// column and an implicit artificial column; the basis is stored as a list
// of lightweight tokens (see tokens.go) rather than matrix positions, so
// rows and structural columns can be appended without renumbering anything
// already in the basis.
//
// Each iteration refactors B^-1 from scratch via gonum's dense LU-based
// inverse (FactorBasis is literally this refactor with zero pivots run
// afterward) rather than maintaining an incrementally-updated product
// form. This trades the performance of a true revised simplex for an
// implementation simple enough to reason about without executing it; see
// DESIGN.md for the tradeoff.
type DenseSimplex struct {
	m int // rows

	origSense []Sense
	origRHS   []float64

	ncols  int
	colObj []float64
	colLB  []float64
	colUB  []float64
	rawA   [][]float64 // rawA[j] has length m: col j's coefficient in each row

	artDisabled []bool // once an artificial leaves the basis it is barred from re-entry

	basis     []int // size m, one token per row
	colStat   []VarStat
	slackStat []VarStat
	artStat   []VarStat

	bigM float64

	lastX        []float64
	lastObj      float64
	lastStat     PivotStat
	lastPi       []float64
	lastRedCosts []float64

	maxIters int
}

const simplexEps = 1e-7

// NewDenseSimplex returns an empty oracle (no rows, no columns yet).
func NewDenseSimplex() *DenseSimplex {
	return &DenseSimplex{bigM: 1e6, maxIters: 20000}
}

func flipSense(s Sense) Sense {
	switch s {
	case SenseG:
		return SenseL
	case SenseL:
		return SenseG
	default:
		return SenseE
	}
}

func (s *DenseSimplex) rowMult(i int) float64 {
	if s.origRHS[i] < 0 {
		return -1
	}
	return 1
}

func (s *DenseSimplex) effSense(i int) Sense {
	if s.rowMult(i) < 0 {
		return flipSense(s.origSense[i])
	}
	return s.origSense[i]
}

func (s *DenseSimplex) effRHS(i int) float64 { return s.origRHS[i] * s.rowMult(i) }

// --- token decoding: tok>=0 structural; tok=-(i+1) slack row i;
// tok=-(m+i+1) artificial row i. See tokens.go for the shared helpers.

func (s *DenseSimplex) colVectorEff(tok int) []float64 {
	vec := make([]float64, s.m)
	if tok >= 0 {
		for i := 0; i < s.m; i++ {
			vec[i] = s.rawA[tok][i] * s.rowMult(i)
		}
		return vec
	}
	row, isArt := decodeLogical(tok, s.m)
	if isArt {
		vec[row] = 1
		return vec
	}
	switch s.effSense(row) {
	case SenseL:
		vec[row] = 1
	case SenseG:
		vec[row] = -1
	}
	return vec
}

func (s *DenseSimplex) bounds(tok int) (lb, ub float64) {
	if tok >= 0 {
		return s.colLB[tok], s.colUB[tok]
	}
	row, isArt := decodeLogical(tok, s.m)
	if isArt {
		return 0, math.Inf(1)
	}
	if s.effSense(row) == SenseE {
		return 0, 0
	}
	return 0, math.Inf(1)
}

func (s *DenseSimplex) obj(tok int) float64 {
	if tok >= 0 {
		return s.colObj[tok]
	}
	_, isArt := decodeLogical(tok, s.m)
	if isArt {
		return s.bigM
	}
	return 0
}

func (s *DenseSimplex) statOf(tok int) VarStat {
	if tok >= 0 {
		return s.colStat[tok]
	}
	row, isArt := decodeLogical(tok, s.m)
	if isArt {
		return s.artStat[row]
	}
	return s.slackStat[row]
}

func (s *DenseSimplex) setStat(tok int, v VarStat) {
	if tok >= 0 {
		s.colStat[tok] = v
		return
	}
	row, isArt := decodeLogical(tok, s.m)
	if isArt {
		s.artStat[row] = v
		return
	}
	s.slackStat[row] = v
}

func (s *DenseSimplex) boundValue(tok int) float64 {
	lb, ub := s.bounds(tok)
	if s.statOf(tok) == AtUpper {
		return ub
	}
	return lb
}

// NumRows / NumCols report current shape.
func (s *DenseSimplex) NumRows() int { return s.m }
func (s *DenseSimplex) NumCols() int { return s.ncols }

// NewRow appends one row with an implicit slack and artificial token, its
// basic variable initialized to the artificial (feasible by construction
// since effRHS is always nonnegative).
func (s *DenseSimplex) NewRow(sense Sense, rhs float64) error {
	s.origSense = append(s.origSense, sense)
	s.origRHS = append(s.origRHS, rhs)
	for j := range s.rawA {
		s.rawA[j] = append(s.rawA[j], 0)
	}
	s.m++
	row := s.m - 1
	s.slackStat = append(s.slackStat, AtLower)
	s.artStat = append(s.artStat, Basic)
	s.artDisabled = append(s.artDisabled, false)
	s.basis = append(s.basis, artToken(row, s.m))
	return nil
}

// NewRows appends a batch of rows.
func (s *DenseSimplex) NewRows(senses []Sense, rhss []float64) error {
	if len(senses) != len(rhss) {
		return fmt.Errorf("lp: NewRows length mismatch (%d senses, %d rhs)", len(senses), len(rhss))
	}
	for i := range senses {
		if err := s.NewRow(senses[i], rhss[i]); err != nil {
			return err
		}
	}
	return nil
}

// AddCut appends a row with its coefficients already known (the common
// case for a separated cut: ExternalCuts supplies idx/vals directly).
func (s *DenseSimplex) AddCut(idx []int, vals []float64, sense Sense, rhs float64) error {
	if err := s.NewRow(sense, rhs); err != nil {
		return err
	}
	row := s.m - 1
	for k, j := range idx {
		if j < 0 || j >= s.ncols {
			return fmt.Errorf("lp: AddCut: column %d out of range", j)
		}
		s.rawA[j][row] = vals[k]
	}
	return nil
}

// AddCols appends structural columns (edges). obj[j][0] is the cost,
// idx[j]/vals[j] the sparse coefficients over existing rows, lb[j]/ub[j]
// the bounds. New columns start nonbasic at their lower bound.
func (s *DenseSimplex) AddCols(obj [][1]float64, idx [][]int, vals [][]float64, lb, ub []float64) error {
	if len(obj) != len(idx) || len(idx) != len(vals) || len(vals) != len(lb) || len(lb) != len(ub) {
		return fmt.Errorf("lp: AddCols: mismatched slice lengths")
	}
	for j := range obj {
		col := make([]float64, s.m)
		for k, r := range idx[j] {
			if r < 0 || r >= s.m {
				return fmt.Errorf("lp: AddCols: row %d out of range", r)
			}
			col[r] = vals[j][k]
		}
		s.rawA = append(s.rawA, col)
		s.colObj = append(s.colObj, obj[j][0])
		s.colLB = append(s.colLB, lb[j])
		s.colUB = append(s.colUB, ub[j])
		s.colStat = append(s.colStat, AtLower)
		s.ncols++
	}
	return nil
}

// DelSetRows removes rows where mask[i] is true, compacting rows, basis
// tokens, and coefficient columns to match. Column data is otherwise
// untouched. Any basic variable whose row is deleted becomes irrelevant;
// the basis is rebuilt greedily (slack/artificial-for-row) for surviving
// rows that lose their original basic token, which is always safe since a
// slack or artificial column always exists for every row.
func (s *DenseSimplex) DelSetRows(mask []bool) error {
	if len(mask) != s.m {
		return fmt.Errorf("lp: DelSetRows: mask length %d != rows %d", len(mask), s.m)
	}
	keepRows := make([]int, 0, s.m)
	for i, del := range mask {
		if !del {
			keepRows = append(keepRows, i)
		}
	}
	newM := len(keepRows)

	newSense := make([]Sense, newM)
	newRHS := make([]float64, newM)
	newSlackStat := make([]VarStat, newM)
	newArtStat := make([]VarStat, newM)
	newArtDisabled := make([]bool, newM)
	newBasis := make([]int, newM)
	for newI, oldI := range keepRows {
		newSense[newI] = s.origSense[oldI]
		newRHS[newI] = s.origRHS[oldI]
		newSlackStat[newI] = s.slackStat[oldI]
		newArtStat[newI] = s.artStat[oldI]
		newArtDisabled[newI] = s.artDisabled[oldI]

		old := s.basis[oldI]
		if old >= 0 {
			newBasis[newI] = old // structural basic var carries over
		} else {
			row, isArt := decodeLogical(old, s.m)
			if row == oldI {
				if isArt {
					newBasis[newI] = artToken(newI, newM)
				} else {
					newBasis[newI] = slackToken(newI)
				}
			} else {
				// Basic token referenced a different (surviving) row's
				// logical var, which cannot happen in a well-formed
				// basis; fall back to that row's own slack.
				newBasis[newI] = slackToken(newI)
			}
		}
	}

	newRawA := make([][]float64, s.ncols)
	for j := range s.rawA {
		col := make([]float64, newM)
		for newI, oldI := range keepRows {
			col[newI] = s.rawA[j][oldI]
		}
		newRawA[j] = col
	}

	s.m = newM
	s.origSense, s.origRHS = newSense, newRHS
	s.slackStat, s.artStat, s.artDisabled = newSlackStat, newArtStat, newArtDisabled
	s.basis = newBasis
	s.rawA = newRawA
	return nil
}

// DelSetCols removes structural columns where mask[j] is true. Any column
// currently basic is first required to be nonbasic (callers must pivot it
// out, e.g. via a branch clamp driving its value to a bound, before
// deletion); this mirrors the engine never deleting a column mid-pivot.
func (s *DenseSimplex) DelSetCols(mask []bool) error {
	if len(mask) != s.ncols {
		return fmt.Errorf("lp: DelSetCols: mask length %d != cols %d", len(mask), s.ncols)
	}
	basicSet := make(map[int]bool, s.m)
	for _, b := range s.basis {
		basicSet[b] = true
	}
	for j, del := range mask {
		if del && basicSet[j] {
			return fmt.Errorf("lp: DelSetCols: column %d is still basic", j)
		}
	}

	remap := make(map[int]int)
	newRawA := make([][]float64, 0, s.ncols)
	newObj, newLB, newUB := []float64{}, []float64{}, []float64{}
	newStat := []VarStat{}
	for j, del := range mask {
		if del {
			continue
		}
		remap[j] = len(newRawA)
		newRawA = append(newRawA, s.rawA[j])
		newObj = append(newObj, s.colObj[j])
		newLB = append(newLB, s.colLB[j])
		newUB = append(newUB, s.colUB[j])
		newStat = append(newStat, s.colStat[j])
	}
	for i, b := range s.basis {
		if b >= 0 {
			s.basis[i] = remap[b]
		}
	}
	s.rawA, s.colObj, s.colLB, s.colUB, s.colStat = newRawA, newObj, newLB, newUB, newStat
	s.ncols = len(newRawA)
	return nil
}

// TightenBound narrows a structural column's bound (used by branch clamps).
func (s *DenseSimplex) TightenBound(index int, sense BoundSense, val float64) error {
	if index < 0 || index >= s.ncols {
		return fmt.Errorf("lp: TightenBound: column %d out of range", index)
	}
	switch sense {
	case BoundL:
		s.colLB[index] = val
	case BoundU:
		s.colUB[index] = val
	case BoundB:
		s.colLB[index], s.colUB[index] = val, val
	default:
		return fmt.Errorf("lp: TightenBound: unknown sense %q", rune(sense))
	}
	return nil
}

// CopyStart installs x as the structural solution and, if basis is
// non-nil, installs that exact row->column assignment without pivoting
// (paired with FactorBasis by the caller, per spec.md's
// copy_start+factor_basis idiom). basis[i] is the structural column basic
// in row i, or -1 to leave row i's own slack/artificial basic there.
func (s *DenseSimplex) CopyStart(x []float64, basis []int) error {
	if len(x) != s.ncols {
		return fmt.Errorf("lp: CopyStart: x length %d != cols %d", len(x), s.ncols)
	}
	s.lastX = append([]float64(nil), x...)
	if basis == nil {
		return nil
	}
	if len(basis) != s.m {
		return fmt.Errorf("lp: CopyStart: basis length %d != rows %d", len(basis), s.m)
	}

	newBasis := make([]int, s.m)
	colIsBasic := make([]bool, s.ncols)
	for r, b := range basis {
		if b < 0 {
			if s.effSense(r) == SenseE {
				newBasis[r] = artToken(r, s.m)
				s.artStat[r] = Basic
			} else {
				newBasis[r] = slackToken(r)
				s.slackStat[r] = Basic
			}
			continue
		}
		if b >= s.ncols {
			return fmt.Errorf("lp: CopyStart: column %d out of range", b)
		}
		newBasis[r] = b
		colIsBasic[b] = true
	}
	for j := 0; j < s.ncols; j++ {
		switch {
		case colIsBasic[j]:
			s.colStat[j] = Basic
		case x[j] >= s.colUB[j]-simplexEps && !math.IsInf(s.colUB[j], 1):
			s.colStat[j] = AtUpper
		default:
			s.colStat[j] = AtLower
		}
	}
	s.basis = newBasis
	return nil
}

// CopyBase installs a previously saved Basis verbatim, reusing the last
// installed LP vector; callers normally follow with FactorBasis to
// recompute consistent values.
func (s *DenseSimplex) CopyBase(b Basis) error {
	if len(b.RowBasis) != s.m {
		return fmt.Errorf("lp: CopyBase: basis length %d != rows %d", len(b.RowBasis), s.m)
	}
	return s.CopyStart(s.lastX, b.RowBasis)
}

// FactorBasis refactors B^-1 and the implied solution without pivoting: a
// zero-iteration call into the same machinery PrimalOpt uses per iteration.
func (s *DenseSimplex) FactorBasis() error {
	_, xB, _, err := s.refactor()
	if err != nil {
		return err
	}
	s.applySolution(xB)
	return nil
}

func (s *DenseSimplex) refactor() (binv *mat.Dense, xB []float64, pi []float64, err error) {
	m := s.m
	B := mat.NewDense(m, m, nil)
	for col, tok := range s.basis {
		v := s.colVectorEff(tok)
		for row := 0; row < m; row++ {
			B.Set(row, col, v[row])
		}
	}
	var Binv mat.Dense
	if err := Binv.Inverse(B); err != nil {
		return nil, nil, nil, &LpFailure{Routine: "refactor", Code: 1}
	}

	basisSet := make(map[int]bool, m)
	for _, t := range s.basis {
		basisSet[t] = true
	}

	bAdj := make([]float64, m)
	for i := 0; i < m; i++ {
		bAdj[i] = s.effRHS(i)
	}
	for j := 0; j < s.ncols; j++ {
		if basisSet[j] {
			continue
		}
		val := s.boundValue(j)
		if val == 0 {
			continue
		}
		v := s.colVectorEff(j)
		for i := 0; i < m; i++ {
			bAdj[i] -= v[i] * val
		}
	}
	for r := 0; r < m; r++ {
		for _, tok := range []int{slackToken(r), artToken(r, m)} {
			if basisSet[tok] {
				continue
			}
			val := s.boundValue(tok)
			if val == 0 {
				continue
			}
			v := s.colVectorEff(tok)
			for i := 0; i < m; i++ {
				bAdj[i] -= v[i] * val
			}
		}
	}

	bAdjVec := mat.NewVecDense(m, bAdj)
	var xBVec mat.VecDense
	xBVec.MulVec(&Binv, bAdjVec)
	xB = make([]float64, m)
	for i := 0; i < m; i++ {
		xB[i] = xBVec.AtVec(i)
	}

	cB := make([]float64, m)
	for i, tok := range s.basis {
		cB[i] = s.obj(tok)
	}
	cBVec := mat.NewVecDense(m, cB)
	var piVec mat.VecDense
	piVec.MulVec(Binv.T(), cBVec)
	pi = make([]float64, m)
	for i := 0; i < m; i++ {
		pi[i] = piVec.AtVec(i)
	}

	return &Binv, xB, pi, nil
}

func (s *DenseSimplex) applySolution(xB []float64) {
	x := make([]float64, s.ncols)
	for j := 0; j < s.ncols; j++ {
		x[j] = s.boundValue(j)
	}
	for i, tok := range s.basis {
		if tok >= 0 {
			x[tok] = xB[i]
		}
	}
	obj := 0.0
	for j := 0; j < s.ncols; j++ {
		obj += s.colObj[j] * x[j]
	}
	s.lastX = x
	s.lastObj = obj
}

// --- simplex iteration -------------------------------------------------

func (s *DenseSimplex) dot(pi, v []float64) float64 {
	total := 0.0
	for i := range pi {
		total += pi[i] * v[i]
	}
	return total
}

// candidateTokensInOrder yields every token in Bland's canonical order:
// structural columns, then slacks, then artificials, all by row/col index.
func (s *DenseSimplex) candidateTokensInOrder() []int {
	toks := make([]int, 0, s.ncols+2*s.m)
	for j := 0; j < s.ncols; j++ {
		toks = append(toks, j)
	}
	for r := 0; r < s.m; r++ {
		toks = append(toks, slackToken(r))
	}
	for r := 0; r < s.m; r++ {
		if !s.artDisabled[r] {
			toks = append(toks, artToken(r, s.m))
		}
	}
	return toks
}

// step performs exactly one bounded-variable simplex pivot (or bound
// flip). It returns (moved, status): moved is false once optimal.
func (s *DenseSimplex) step() (bool, PivotStat, error) {
	binv, xB, pi, err := s.refactor()
	if err != nil {
		return false, StatInfeasible, err
	}
	s.applySolution(xB)

	basisSet := make(map[int]int, s.m) // token -> row
	for i, t := range s.basis {
		basisSet[t] = i
	}

	var enter int = -1
	var enterDir float64
	for _, tok := range s.candidateTokensInOrder() {
		if _, basic := basisSet[tok]; basic {
			continue
		}
		lb, ub := s.bounds(tok)
		rc := s.obj(tok) - s.dot(pi, s.colVectorEff(tok))
		st := s.statOf(tok)
		if st == AtLower && rc < -simplexEps && ub > lb {
			enter, enterDir = tok, 1
			break
		}
		if st == AtUpper && rc > simplexEps && ub > lb {
			enter, enterDir = tok, -1
			break
		}
	}
	if enter == -1 {
		return false, StatOptimal, nil
	}

	d := s.colVectorEff(enter)
	// direction vector in the basis coordinate: change in xB per unit
	// increase of the entering variable along enterDir.
	dir := make([]float64, s.m)
	for i := range dir {
		dir[i] = 0
	}
	dirVec := mat.NewVecDense(s.m, d)
	var biDir mat.VecDense
	biDir.MulVec(binv, dirVec)
	for i := 0; i < s.m; i++ {
		dir[i] = biDir.AtVec(i) * enterDir
	}

	lbE, ubE := s.bounds(enter)
	maxT := math.Inf(1)
	if !math.IsInf(ubE, 1) && !math.IsInf(lbE, -1) {
		maxT = ubE - lbE
	}
	leave := -1
	for i := 0; i < s.m; i++ {
		change := -dir[i]
		if math.Abs(change) < simplexEps {
			continue
		}
		blb, bub := s.bounds(s.basis[i])
		var t float64
		if change > 0 {
			if math.IsInf(bub, 1) {
				continue
			}
			t = (bub - xB[i]) / change
		} else {
			if math.IsInf(blb, -1) {
				continue
			}
			t = (blb - xB[i]) / change
		}
		if t < -simplexEps {
			t = 0
		}
		if t < maxT-simplexEps || (t < maxT+simplexEps && (leave == -1 || s.basis[i] < s.basis[leave])) {
			maxT = t
			leave = i
		}
	}

	if math.IsInf(maxT, 1) {
		return false, StatUnbounded, nil
	}

	if leave == -1 {
		// Bound flip: entering variable moves to its opposite bound, basis
		// unchanged.
		if enterDir > 0 {
			s.setStat(enter, AtUpper)
		} else {
			s.setStat(enter, AtLower)
		}
		return true, StatOptimal, nil
	}

	leaving := s.basis[leave]
	// Leaving variable settles at whichever of its bounds it hit.
	_, bub := s.bounds(leaving)
	if xB[leave]+(-dir[leave])*maxT >= bub-simplexEps {
		s.setStat(leaving, AtUpper)
	} else {
		s.setStat(leaving, AtLower)
	}
	if row, isArt := decodeLogical(leaving, s.m); isArt {
		s.artDisabled[row] = true
	}
	s.basis[leave] = enter
	s.setStat(enter, Basic)
	return true, StatOptimal, nil
}

func (s *DenseSimplex) runToOptimum(limit int) (PivotStat, error) {
	for iter := 0; iter < limit; iter++ {
		moved, stat, err := s.step()
		if err != nil {
			return StatInfeasible, err
		}
		if stat == StatUnbounded {
			s.lastStat = StatUnbounded
			return StatUnbounded, nil
		}
		if !moved {
			return s.finishAndCheckFeasible()
		}
	}
	s.lastStat = StatIterLimit
	return StatIterLimit, nil
}

func (s *DenseSimplex) finishAndCheckFeasible() (PivotStat, error) {
	_, xB, pi, err := s.refactor()
	if err != nil {
		return StatInfeasible, err
	}
	s.applySolution(xB)
	s.lastPi = pi
	for i, tok := range s.basis {
		if _, isArt := decodeLogical(tok, s.m); isArt && xB[i] > simplexEps {
			s.lastStat = StatInfeasible
			return StatInfeasible, nil
		}
	}
	s.lastStat = StatOptimal
	s.computeRedCosts(pi)
	return StatOptimal, nil
}

func (s *DenseSimplex) computeRedCosts(pi []float64) {
	rc := make([]float64, s.ncols)
	for j := 0; j < s.ncols; j++ {
		rc[j] = s.colObj[j] - s.dot(pi, s.colVectorEff(j))
	}
	s.lastRedCosts = rc
}

// PrimalOpt runs the Big-M primal simplex to optimality (or infeasibility,
// unboundedness, or the iteration limit).
func (s *DenseSimplex) PrimalOpt() (PivotStat, error) { return s.runToOptimum(s.maxIters) }

// DualOpt is implemented as a call into the same Big-M primal engine: this
// default oracle never needs a literal dual pivot sequence distinct from
// the primal one described above (see DESIGN.md).
func (s *DenseSimplex) DualOpt() (PivotStat, error) { return s.runToOptimum(s.maxIters) }

// OnePrimalPivot performs exactly one iteration.
func (s *DenseSimplex) OnePrimalPivot() (PivotStat, error) {
	moved, stat, err := s.step()
	if err != nil || stat == StatUnbounded {
		return stat, err
	}
	if !moved {
		return s.finishAndCheckFeasible()
	}
	s.lastStat = StatOptimal // not actually optimal, just "not yet a terminal status"
	return StatOptimal, nil
}

// OneDualPivot aliases OnePrimalPivot for the same reason as DualOpt.
func (s *DenseSimplex) OneDualPivot() (PivotStat, error) { return s.OnePrimalPivot() }

// NondegenPivot pivots like PrimalOpt but stops as soon as the solution is
// primal feasible and its objective has crossed lowerLimit (spec.md §4.1:
// "perform a non-degenerate pivot bounded below by min_tour_value - ε"):
// once the relaxation's value alone proves no tour reachable from here can
// beat the incumbent, continuing to true optimality only wastes pivots, so
// the caller gets StatBounded instead and classifies the node as fathomed
// regardless of the (possibly still fractional) LP vector.
func (s *DenseSimplex) NondegenPivot(lowerLimit float64) (PivotStat, error) {
	for iter := 0; iter < s.maxIters; iter++ {
		moved, stat, err := s.step()
		if err != nil {
			return StatInfeasible, err
		}
		if stat == StatUnbounded {
			s.lastStat = StatUnbounded
			return StatUnbounded, nil
		}
		if !moved {
			return s.finishAndCheckFeasible()
		}
		// step() recorded the objective of the basis it pivoted away from;
		// refresh it so the bound test sees the post-pivot vertex.
		_, xB, _, err := s.refactor()
		if err != nil {
			return StatInfeasible, err
		}
		s.applySolution(xB)
		if s.lastObj >= lowerLimit-simplexEps && s.primalFeasibleNow() {
			s.lastStat = StatBounded
			return StatBounded, nil
		}
	}
	s.lastStat = StatIterLimit
	return StatIterLimit, nil
}

// primalFeasibleNow reports whether the current basis has no artificial
// carrying a nonzero value, refactoring fresh rather than trusting any
// stale xB from a caller mid-loop.
func (s *DenseSimplex) primalFeasibleNow() bool {
	_, xB, _, err := s.refactor()
	if err != nil {
		return false
	}
	for i, tok := range s.basis {
		if _, isArt := decodeLogical(tok, s.m); isArt && xB[i] > simplexEps {
			return false
		}
	}
	return true
}

// PrimalRecover repeatedly pivots until feasible() reports true or the
// iteration limit is hit, per spec.md's "optimize until primal feasibility
// reached, via a pivot-feasibility callback".
func (s *DenseSimplex) PrimalRecover(feasible func() bool) error {
	for iter := 0; iter < s.maxIters; iter++ {
		if feasible() {
			return nil
		}
		moved, stat, err := s.step()
		if err != nil {
			return err
		}
		if stat == StatUnbounded {
			return &LpFailure{Routine: "PrimalRecover", Code: 2}
		}
		if !moved {
			if feasible() {
				return nil
			}
			return &LpFailure{Routine: "PrimalRecover", Code: 3}
		}
	}
	return &LpFailure{Routine: "PrimalRecover", Code: 4}
}

// GetBase snapshots the current basis as a row->column assignment.
func (s *DenseSimplex) GetBase() (Basis, error) {
	rowBasis := make([]int, s.m)
	for i, tok := range s.basis {
		if tok >= 0 {
			rowBasis[i] = tok
			continue
		}
		row, _ := decodeLogical(tok, s.m)
		if row != i {
			return Basis{}, fmt.Errorf("lp: GetBase: malformed basis at row %d", i)
		}
		rowBasis[i] = -1
	}
	return Basis{RowBasis: rowBasis}, nil
}

func (s *DenseSimplex) ColStat(j int) VarStat { return s.colStat[j] }
func (s *DenseSimplex) RowStat(i int) VarStat {
	if s.basis[i] < 0 {
		return Basic
	}
	return AtLower
}

func (s *DenseSimplex) LPVec() []float64    { return s.lastX }
func (s *DenseSimplex) GetObjVal() float64  { return s.lastObj }
func (s *DenseSimplex) GetStat() PivotStat  { return s.lastStat }
func (s *DenseSimplex) Pi() []float64       { return s.lastPi }
func (s *DenseSimplex) RedCosts() []float64 { return s.lastRedCosts }

// RowSlacks reports rhs-Σax (original orientation) for rows [begin,end).
func (s *DenseSimplex) RowSlacks(begin, end int) ([]float64, error) {
	if begin < 0 || end > s.m || begin > end {
		return nil, fmt.Errorf("lp: RowSlacks: range [%d,%d) invalid for %d rows", begin, end, s.m)
	}
	out := make([]float64, end-begin)
	for i := begin; i < end; i++ {
		sum := 0.0
		for j := 0; j < s.ncols; j++ {
			sum += s.rawA[j][i] * s.lastX[j]
		}
		out[i-begin] = s.origRHS[i] - sum
	}
	return out, nil
}

// CondNum reports the condition number of the current basis matrix,
// wiring gonum's dense Cond estimator.
func (s *DenseSimplex) CondNum() (float64, error) {
	m := s.m
	B := mat.NewDense(m, m, nil)
	for col, tok := range s.basis {
		v := s.colVectorEff(tok)
		for row := 0; row < m; row++ {
			B.Set(row, col, v[row])
		}
	}
	return mat.Cond(B, 2), nil
}
