package sat

import "testing"

func TestTrail_enqueueSetsValueLevelAndReason(t *testing.T) {
	s := NewDefaultSolver()
	v := s.NewVariable(true)
	l := PositiveLiteral(v)

	s.newDecisionLevel()
	s.enqueue(l, Antecedent{})

	if s.value(l) != True {
		t.Fatalf("expected %v to be True, got %v", l, s.value(l))
	}
	if s.value(l.Opposite()) != False {
		t.Fatalf("expected %v to be False, got %v", l.Opposite(), s.value(l.Opposite()))
	}
	if s.varLevel[v] != 1 {
		t.Fatalf("expected level 1, got %d", s.varLevel[v])
	}
	if len(s.trail) != 1 || s.trail[0] != l {
		t.Fatalf("expected trail to contain only %v, got %v", l, s.trail)
	}
}

func TestTrail_cancelUntilUnassignsAndRestoresPhase(t *testing.T) {
	s := NewDefaultSolver()
	a := s.NewVariable(true)
	b := s.NewVariable(true)

	s.newDecisionLevel()
	s.enqueue(PositiveLiteral(a), Antecedent{})
	s.newDecisionLevel()
	s.enqueue(NegativeLiteral(b), Antecedent{})

	if s.decisionLevel() != 2 {
		t.Fatalf("expected decision level 2, got %d", s.decisionLevel())
	}

	s.cancelUntil(1)

	if s.decisionLevel() != 1 {
		t.Fatalf("expected decision level 1 after cancelUntil, got %d", s.decisionLevel())
	}
	if s.VarValue(b) != Unknown {
		t.Fatalf("expected %d to be unassigned after cancelUntil, got %v", b, s.VarValue(b))
	}
	if s.VarValue(a) != True {
		t.Fatalf("expected %d to remain assigned at the surviving level, got %v", a, s.VarValue(a))
	}

	// phase saving should remember b's last polarity (False) for the next decision
	isAssigned := func(v Variable) bool { return s.VarValue(v) != Unknown }
	isAssigned(a) // a is still assigned; only b is eligible to pop
	lit, ok := s.heap.popDecision(isAssigned)
	if !ok || lit.Var() != b || lit.IsPositive() {
		t.Fatalf("expected phase-saved decision on -%d, got %v (ok=%v)", b+1, lit, ok)
	}
}

func TestTrail_cancelUntilNoopWhenAlreadyAtLevel(t *testing.T) {
	s := NewDefaultSolver()
	s.NewVariable(true)

	s.newDecisionLevel()
	before := len(s.trail)
	s.cancelUntil(1)
	if len(s.trail) != before || s.decisionLevel() != 1 {
		t.Fatalf("expected cancelUntil to no-op when already at the target level")
	}
}
