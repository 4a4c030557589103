// Package assume builds assumption-related workflows on top of the core's
// flat solve(assumptions, conflict_budget) contract: unsat-core shrinking
// and incremental push/pop semantics. Neither needs the core to know
// anything about them.
package assume

import "github.com/mrabkin/ignis/internal/sat"

// ShrinkCore finds a (not necessarily minimum, but locally minimal) subset
// of assumptions that is still unsatisfiable, by deletion-based
// minimization: repeatedly drop one assumption literal and re-solve,
// keeping the drop only if the result is still UNSAT.
//
// s must already be known UNSAT under assumptions (the caller typically
// calls this right after a Solve(assumptions, ...) that returned
// StatusUnsat). Every Solve call here reuses the same solver instance,
// relying on the core already being fully incremental across calls.
func ShrinkCore(s *sat.Solver, assumptions []sat.Literal) []sat.Literal {
	core := append([]sat.Literal(nil), assumptions...)

	for i := 0; i < len(core); {
		candidate := append(append([]sat.Literal(nil), core[:i]...), core[i+1:]...)
		result := s.Solve(candidate, -1)
		if result.Status == sat.StatusUnsat {
			core = candidate // dropping core[i] is safe: still unsat
			continue         // re-examine position i, now holding the next literal
		}
		i++
	}
	return core
}
