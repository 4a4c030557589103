package preprocess

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrabkin/ignis/internal/sat"
)

func lit(v int32, neg bool) sat.Literal {
	l := sat.PositiveLiteral(sat.Variable(v))
	if neg {
		l = l.Opposite()
	}
	return l
}

func TestRun_unitPropagationRemovesSatisfiedClauses(t *testing.T) {
	f := &Formula{
		NumVars: 2,
		Clauses: [][]sat.Literal{
			{lit(0, false)},
			{lit(0, true), lit(1, false)},
		},
	}

	p := New(DefaultOptions)
	changed, err := p.Run(f)
	require.NoError(t, err)
	require.True(t, changed)

	for _, c := range f.Clauses {
		require.NotContains(t, c, lit(0, false))
		require.NotContains(t, c, lit(0, true))
	}
}

func TestRun_detectsUnitContradiction(t *testing.T) {
	f := &Formula{
		NumVars: 1,
		Clauses: [][]sat.Literal{
			{lit(0, false)},
			{lit(0, true)},
		},
	}

	p := New(DefaultOptions)
	_, err := p.Run(f)
	require.Error(t, err)
}

func TestSCCEquivalence_mergesChain(t *testing.T) {
	// a -> b -> a, i.e. (¬a v b) and (¬b v a): a and b become equivalent.
	f := &Formula{
		NumVars: 2,
		Clauses: [][]sat.Literal{
			{lit(0, true), lit(1, false)},
			{lit(1, true), lit(0, false)},
			{lit(0, false), lit(1, false)},
		},
	}

	p := New(DefaultOptions)
	changed := p.sccEquivalence(f)
	require.True(t, changed)
	require.False(t, p.contradiction)
}

func TestSubsumption_removesSupersetClause(t *testing.T) {
	f := &Formula{
		NumVars: 3,
		Clauses: [][]sat.Literal{
			{lit(0, false), lit(1, false)},
			{lit(0, false), lit(1, false), lit(2, false)},
		},
	}

	p := New(DefaultOptions)
	changed := p.subsumption(f)
	require.True(t, changed)
	require.Len(t, f.Clauses, 1)
}

func TestReconstruct_restoresUnitFixedVariable(t *testing.T) {
	f := &Formula{
		NumVars: 2,
		Clauses: [][]sat.Literal{
			{lit(0, false)},
			{lit(0, true), lit(1, false)},
		},
	}

	p := New(DefaultOptions)
	_, err := p.Run(f)
	require.NoError(t, err)

	model := p.Reconstruct([]bool{true})
	require.True(t, model[0])
}
