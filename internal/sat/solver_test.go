package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// newVars creates n fresh decision-eligible variables and returns their
// positive literals for convenience in test clauses.
func newVars(s *Solver, n int) []Literal {
	lits := make([]Literal, n)
	for i := 0; i < n; i++ {
		v := s.NewVariable(true)
		lits[i] = PositiveLiteral(v)
	}
	return lits
}

func addClause(t *testing.T, s *Solver, lits ...Literal) {
	t.Helper()
	if _, err := s.AddClause(lits); err != nil {
		t.Fatalf("AddClause(%v): %v", lits, err)
	}
}

// checkModel fails the test if model does not satisfy every given clause.
func checkModel(t *testing.T, model []bool, clauses [][]Literal) {
	t.Helper()
	for _, c := range clauses {
		ok := false
		for _, l := range c {
			if model[l.Var()] == l.IsPositive() {
				ok = true
				break
			}
		}
		if !ok {
			t.Errorf("model %v does not satisfy clause %v", model, c)
		}
	}
}

func sortLiterals(in []Literal) []Literal {
	out := append([]Literal(nil), in...)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j] < out[i] {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func TestSolve_scenarios(t *testing.T) {
	tests := []struct {
		name        string
		build       func(s *Solver) (clauses [][]Literal, assumptions []Literal)
		wantStatus  Status
		wantFinal   []Literal
	}{
		{
			name: "empty formula no assumptions",
			build: func(s *Solver) ([][]Literal, []Literal) {
				newVars(s, 3)
				return nil, nil
			},
			wantStatus: StatusSat,
		},
		{
			name: "single satisfiable clause",
			build: func(s *Solver) ([][]Literal, []Literal) {
				lits := newVars(s, 3)
				c := []Literal{lits[0], lits[1].Opposite(), lits[2]}
				addClause(t, s, c...)
				return [][]Literal{c}, nil
			},
			wantStatus: StatusSat,
		},
		{
			name: "unit contradiction at level 0",
			build: func(s *Solver) ([][]Literal, []Literal) {
				lits := newVars(s, 3)
				addClause(t, s, lits[0], lits[1], lits[2])
				addClause(t, s, lits[0].Opposite())
				addClause(t, s, lits[1].Opposite())
				addClause(t, s, lits[2].Opposite())
				return nil, nil
			},
			wantStatus: StatusUnsat,
		},
		{
			name: "chain of implications forces unsat",
			build: func(s *Solver) ([][]Literal, []Literal) {
				lits := newVars(s, 3)
				addClause(t, s, lits[0], lits[1])
				addClause(t, s, lits[0].Opposite(), lits[2])
				addClause(t, s, lits[1].Opposite(), lits[2])
				addClause(t, s, lits[2].Opposite())
				return nil, nil
			},
			wantStatus: StatusUnsat,
		},
		{
			name: "contradictory assumptions",
			build: func(s *Solver) ([][]Literal, []Literal) {
				lits := newVars(s, 1)
				return nil, []Literal{lits[0], lits[0].Opposite()}
			},
			wantStatus: StatusUnsat,
			wantFinal:  []Literal{PositiveLiteral(0), NegativeLiteral(0)},
		},
		{
			name: "assumption forces propagation to sat",
			build: func(s *Solver) ([][]Literal, []Literal) {
				lits := newVars(s, 2)
				c := []Literal{lits[0].Opposite(), lits[1]}
				addClause(t, s, c...)
				return [][]Literal{c}, []Literal{lits[0]}
			},
			wantStatus: StatusSat,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewDefaultSolver()
			clauses, assumptions := tc.build(s)

			result := s.Solve(assumptions, -1)
			if result.Status != tc.wantStatus {
				t.Fatalf("Solve() status = %v, want %v", result.Status, tc.wantStatus)
			}

			switch tc.wantStatus {
			case StatusSat:
				if result.Model == nil {
					t.Fatalf("Solve() returned no model on SAT")
				}
				checkModel(t, result.Model, clauses)
			case StatusUnsat:
				if tc.wantFinal != nil {
					got := sortLiterals(result.FinalConflict)
					want := sortLiterals(tc.wantFinal)
					if diff := cmp.Diff(want, got); diff != "" {
						t.Errorf("FinalConflict mismatch (-want +got):\n%s", diff)
					}
				}
			}
		})
	}
}

func TestSolve_unsatAtRootWithLowReduceDBThreshold(t *testing.T) {
	s := NewSolver(Options{
		ClauseDecay:       0.999,
		VariableDecay:     0.95,
		MaxConflicts:      -1,
		Timeout:           -1,
		PhaseSaving:       true,
		ReduceDBThreshold: 1, // force frequent reduction
	})

	n := 8
	lits := newVars(s, n)

	// A chain of implications from the unit x0 to x7, plus a clause that
	// forbids x0 and x7 together. Root-level propagation while the clauses
	// are added already falsifies the last one, so Solve reports UNSAT
	// without any conflict or learnt clause and ReduceDB never runs.
	for i := 0; i < n-1; i++ {
		addClause(t, s, lits[i].Opposite(), lits[i+1])
	}
	addClause(t, s, lits[0])
	addClause(t, s, lits[n-1].Opposite(), lits[0].Opposite())

	result := s.Solve(nil, -1)
	if result.Status != StatusUnsat {
		t.Fatalf("Solve() = %v, want UNSAT", result.Status)
	}
}

func TestAddClause_tautologyDropped(t *testing.T) {
	s := NewDefaultSolver()
	lits := newVars(s, 1)

	ok, err := s.AddClause([]Literal{lits[0], lits[0].Opposite()})
	if err != nil || !ok {
		t.Fatalf("AddClause(tautology) = (%v, %v), want (true, nil)", ok, err)
	}
	if s.NumConstraints() != 0 {
		t.Fatalf("tautology should not be counted as a constraint, got %d", s.NumConstraints())
	}
}

func TestAddClause_emptyClauseIsUnsat(t *testing.T) {
	s := NewDefaultSolver()
	ok, err := s.AddClause(nil)
	if ok || err != nil {
		t.Fatalf("AddClause(nil) = (%v, %v), want (false, nil)", ok, err)
	}
	if result := s.Solve(nil, -1); result.Status != StatusUnsat {
		t.Fatalf("Solve() after empty clause = %v, want UNSAT", result.Status)
	}
}
