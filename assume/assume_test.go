package assume

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrabkin/ignis/internal/sat"
)

func lit(n int32, neg bool) sat.Literal {
	l := sat.PositiveLiteral(sat.Variable(n))
	if neg {
		l = l.Opposite()
	}
	return l
}

func TestShrinkCore_dropsIrrelevantAssumption(t *testing.T) {
	s := sat.NewDefaultSolver()
	a, b := s.NewVariable(true), s.NewVariable(true)
	_ = a
	_ = b

	// Only lits(0,true) and lits(0,false) actually conflict; lits(1,false)
	// is never implicated.
	assumptions := []sat.Literal{lit(0, false), lit(0, true), lit(1, false)}

	result := s.Solve(assumptions, -1)
	require.Equal(t, sat.StatusUnsat, result.Status)

	core := ShrinkCore(s, assumptions)
	require.ElementsMatch(t, []sat.Literal{lit(0, false), lit(0, true)}, core)
}

func TestIncremental_pushPopSolve(t *testing.T) {
	s := sat.NewDefaultSolver()
	s.NewVariable(true)

	inc := NewIncremental(s)
	inc.Push(lit(0, false))
	require.Equal(t, 1, inc.Len())

	result := inc.Solve(-1)
	require.Equal(t, sat.StatusSat, result.Status)

	inc.Pop()
	require.Equal(t, 0, inc.Len())
}
