package sat

import "testing"

func TestPropagate_binaryClauseForcesUnit(t *testing.T) {
	s := NewDefaultSolver()
	lits := newVars(s, 2)

	addClause(t, s, lits[0].Opposite(), lits[1]) // a -> b

	s.enqueue(lits[0], Antecedent{})
	if c := s.propagate(); c.found {
		t.Fatalf("propagate() found a spurious conflict")
	}
	if s.value(lits[1]) != True {
		t.Fatalf("value(b) = %v, want True", s.value(lits[1]))
	}
}

func TestPropagate_ternaryClauseForcesUnitWhenTwoFalse(t *testing.T) {
	s := NewDefaultSolver()
	lits := newVars(s, 3)

	addClause(t, s, lits[0], lits[1], lits[2])

	s.enqueue(lits[0].Opposite(), Antecedent{})
	s.enqueue(lits[1].Opposite(), Antecedent{})
	if c := s.propagate(); c.found {
		t.Fatalf("propagate() found a spurious conflict")
	}
	if s.value(lits[2]) != True {
		t.Fatalf("value(c) = %v, want True", s.value(lits[2]))
	}
}

func TestPropagate_longClauseDetectsConflict(t *testing.T) {
	s := NewDefaultSolver()
	lits := newVars(s, 4)

	addClause(t, s, lits[0], lits[1], lits[2], lits[3])

	s.enqueue(lits[0].Opposite(), Antecedent{})
	s.enqueue(lits[1].Opposite(), Antecedent{})
	s.enqueue(lits[2].Opposite(), Antecedent{})
	s.enqueue(lits[3].Opposite(), Antecedent{})

	c := s.propagate()
	if !c.found {
		t.Fatalf("propagate() did not find the expected conflict")
	}
}

func TestPropagate_longClauseWatchMigratesOffFalsifiedLiteral(t *testing.T) {
	s := NewDefaultSolver()
	lits := newVars(s, 5)

	addClause(t, s, lits[0], lits[1], lits[2], lits[3], lits[4])

	s.enqueue(lits[0].Opposite(), Antecedent{})
	if c := s.propagate(); c.found {
		t.Fatalf("propagate() found a spurious conflict after falsifying one literal")
	}
	// lits[1..4] must all still be unassigned: the watch should have
	// migrated to another unassigned literal rather than propagating
	// anything.
	for _, l := range lits[1:] {
		if s.value(l) != Unknown {
			t.Fatalf("value(%v) = %v, want Unknown", l, s.value(l))
		}
	}
}
