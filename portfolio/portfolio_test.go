package portfolio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrabkin/ignis/internal/sat"
)

// fixedFormula loads a small fixed formula, identical regardless of which
// strategy's solver it is handed to.
type fixedFormula struct {
	clauses [][]sat.Literal
	numVars int
}

func (f *fixedFormula) Load(s *sat.Solver) error {
	for i := 0; i < f.numVars; i++ {
		s.NewVariable(true)
	}
	for _, c := range f.clauses {
		if _, err := s.AddClause(c); err != nil {
			return err
		}
	}
	return nil
}

func TestRun_returnsDefiniteVerdict(t *testing.T) {
	lits := func(n int32, neg bool) sat.Literal {
		l := sat.PositiveLiteral(sat.Variable(n))
		if neg {
			l = l.Opposite()
		}
		return l
	}

	f := &fixedFormula{
		numVars: 3,
		clauses: [][]sat.Literal{
			{lits(0, false), lits(1, false), lits(2, false)},
			{lits(0, true)},
			{lits(1, true)},
			{lits(2, true)},
		},
	}

	result, err := Run(context.Background(), f, DefaultPresets(), -1)
	require.NoError(t, err)
	require.Equal(t, sat.StatusUnsat, result.Status)
}

func TestRun_rejectsEmptyStrategyList(t *testing.T) {
	_, err := Run(context.Background(), &fixedFormula{}, nil, -1)
	require.Error(t, err)
}
