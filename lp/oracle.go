// Package lp defines the LP oracle interface CoreLP programs against
// (spec.md §6) and ships one concrete implementation, a dense
// bounded-variable primal/dual simplex, so the engine can run end to end
// without a bundled commercial solver (SPEC_FULL.md §4.10).
//
// CoreLP depends only on Oracle; swapping DenseSimplex for a real
// revised-simplex / basis-factored solver (QSopt, CPLEX, SoPlex) requires
// no change above this package.
package lp

import "fmt"

// Sense is a row's relational sense.
type Sense byte

const (
	SenseG Sense = 'G' // >=
	SenseL Sense = 'L' // <=
	SenseE Sense = 'E' // =
)

// BoundSense selects which bound tighten_bound acts on.
type BoundSense byte

const (
	BoundL BoundSense = 'L' // lower bound
	BoundU BoundSense = 'U' // upper bound
	BoundB BoundSense = 'B' // both (fix)
)

// VarStat is the status of a structural or logical (slack) column.
type VarStat int

const (
	Basic VarStat = iota
	AtLower
	AtUpper
)

// PivotStat classifies the outcome of a pivot call, per spec.md §4.1.
type PivotStat int

const (
	StatOptimal PivotStat = iota
	StatInfeasible
	StatUnbounded
	StatIterLimit
	StatTimeLimit
	// StatBounded is NondegenPivot's early-exit status: primal feasible and
	// the objective has already crossed lowerLimit, so further pivoting
	// cannot change the fathoming decision (spec.md §4.1's objective-lower-
	// limit protocol). The LP vector may still be fractional.
	StatBounded
)

// Basis is a saved primal basis: RowBasis[i] is the structural column
// index basic in row i, or -1 if row i's own logical (slack/artificial)
// column is basic there. This is unambiguous even for columns with
// nonzero coefficients in more than one row (every structural column in
// this engine touches exactly the rows its endpoints/cuts reference), so
// a caller (CoreLP's TourBasis) can always state exactly which row claims
// which edge instead of leaving the oracle to guess.
type Basis struct {
	RowBasis []int
}

// Clone deep-copies a Basis.
func (b Basis) Clone() Basis {
	return Basis{RowBasis: append([]int(nil), b.RowBasis...)}
}

// LpFailure names the failing routine and an implementation-specific code,
// per spec.md §7.
type LpFailure struct {
	Routine string
	Code    int
}

func (e *LpFailure) Error() string {
	return fmt.Sprintf("lp: %s failed with code %d", e.Routine, e.Code)
}

// Oracle is the abstract LP solver interface enumerated in spec.md §6.
// CoreLP binds to any implementation satisfying it.
type Oracle interface {
	// Structural mutation.
	NewRow(sense Sense, rhs float64) error
	NewRows(senses []Sense, rhss []float64) error
	AddCut(idx []int, vals []float64, sense Sense, rhs float64) error
	AddCols(obj [][1]float64, idx [][]int, vals [][]float64, lb, ub []float64) error
	DelSetRows(mask []bool) error
	DelSetCols(mask []bool) error

	// Warm start / basis control. basis[i], when CopyStart is given one, is
	// the structural column basic in row i, or -1 for "row i's own
	// logical column is basic" (see Basis).
	CopyStart(x []float64, basis []int) error
	CopyBase(b Basis) error
	FactorBasis() error

	// Optimization.
	PrimalOpt() (PivotStat, error)
	DualOpt() (PivotStat, error)
	OnePrimalPivot() (PivotStat, error)
	OneDualPivot() (PivotStat, error)
	NondegenPivot(lowerLimit float64) (PivotStat, error)
	PrimalRecover(feasible func() bool) error

	// Queries.
	GetBase() (Basis, error)
	ColStat(j int) VarStat
	RowStat(i int) VarStat
	LPVec() []float64
	GetObjVal() float64
	GetStat() PivotStat
	RowSlacks(begin, end int) ([]float64, error)
	Pi() []float64
	RedCosts() []float64
	CondNum() (float64, error)

	// Bound / parameter control.
	TightenBound(index int, sense BoundSense, val float64) error

	// NumRows/NumCols report current LP shape.
	NumRows() int
	NumCols() int
}
