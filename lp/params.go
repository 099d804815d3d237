package lp

// ParamGuard temporarily overrides a DenseSimplex's tunables (iteration
// limit, Big-M penalty) and restores the previous values when released.
// spec.md §5/§9 note that the original engine leans on C++ destructors to
// pop such scoped overrides automatically; Go has no destructors, so
// callers must explicitly `defer guard.Release()` at the point they would
// have relied on a stack-unwind.
type ParamGuard struct {
	s         *DenseSimplex
	prevIters int
	prevBigM  float64
	released  bool
}

// WithIterLimit returns a guard that raises/lowers the iteration limit for
// the scope of the caller (e.g. a strong-branching trial that should not
// be allowed to run as long as the main pivot loop).
func (s *DenseSimplex) WithIterLimit(limit int) *ParamGuard {
	g := &ParamGuard{s: s, prevIters: s.maxIters, prevBigM: s.bigM}
	s.maxIters = limit
	return g
}

// WithBigM overrides the Big-M penalty for the scope of the caller, useful
// when a caller wants tighter numerical tolerance on a nearly-feasible
// restart.
func (s *DenseSimplex) WithBigM(m float64) *ParamGuard {
	g := &ParamGuard{s: s, prevIters: s.maxIters, prevBigM: s.bigM}
	s.bigM = m
	return g
}

// Release restores the parameters this guard overrode. Safe to call more
// than once; only the first call has effect.
func (g *ParamGuard) Release() {
	if g.released {
		return
	}
	g.s.maxIters = g.prevIters
	g.s.bigM = g.prevBigM
	g.released = true
}
