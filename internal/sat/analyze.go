package sat

// analysisResult is the outcome of first-UIP conflict analysis: the learnt
// clause (with the UIP literal at position 0) and the level to backjump
// to.
type analysisResult struct {
	learnt         []Literal
	backtrackLevel int
	glue           uint32
}

// explainOther appends the literals of an antecedent other than the one it
// explains (already negated, ready to be added to a learnt clause) into
// dst and returns the extended slice. This mirrors the reference solver's
// ExplainAssign: position 0 of a clause is always the asserted literal, so
// only the remaining literals need to be resolved in.
func (s *Solver) explainOther(a Antecedent, dst []Literal) []Literal {
	switch a.kind {
	case antecedentBinary:
		return append(dst, a.other[0].Opposite())
	case antecedentTernary:
		return append(dst, a.other[0].Opposite(), a.other[1].Opposite())
	case antecedentLong:
		// Arena clauses always store the asserted literal at position 0.
		lits := s.arena.Lits(a.ref)
		for _, l := range lits[1:] {
			dst = append(dst, l.Opposite())
		}
		return dst
	default:
		fatalInvariant("sat: explainOther called with no antecedent")
		return dst
	}
}

// explainConflict appends every literal of the conflicting clause
// (negated) into dst, reconstructing the implicit watched literal from the
// trigger that exposed the conflict. This mirrors ExplainFailure.
func (s *Solver) explainConflict(c conflict, dst []Literal) []Literal {
	switch c.ante.kind {
	case antecedentBinary:
		return append(dst, c.trigger, c.ante.other[0].Opposite())
	case antecedentTernary:
		return append(dst, c.trigger, c.ante.other[0].Opposite(), c.ante.other[1].Opposite())
	case antecedentLong:
		lits := s.arena.Lits(c.ante.ref)
		for _, l := range lits {
			dst = append(dst, l.Opposite())
		}
		return dst
	default:
		fatalInvariant("sat: explainConflict called with no antecedent")
		return dst
	}
}

// bumpAntecedentActivity bumps the clause activity of a learnt antecedent
// used while resolving a conflict, mirroring BumpClaActivity. Inline
// binary/ternary clauses carry no activity of their own.
func (s *Solver) bumpAntecedentActivity(a Antecedent) {
	if a.kind != antecedentLong {
		return
	}
	c := s.arena.Deref(a.ref)
	if !c.Learnt {
		return
	}
	newActivity := c.Activity + s.clauseInc
	s.arena.SetActivity(a.ref, newActivity)
	if newActivity > 1e100 {
		s.arena.ScaleActivities(1e-100)
		s.clauseInc *= 1e-100
	}
}

// analyze performs first-UIP conflict analysis starting from the
// clause that propagation found conflicting at the current decision level.
// It returns the learnt clause (UIP literal at position 0) and the
// backtrack level.
func (s *Solver) analyze(confl conflict) analysisResult {
	s.seenVar.Clear()
	pathCount := 0

	s.tmpLearnt = s.tmpLearnt[:1] // reserve position 0 for the UIP

	resolve := func(literals []Literal) {
		for _, q := range literals {
			v := q.Var()
			if s.seenVar.Contains(int(v)) {
				continue
			}
			s.seenVar.Add(int(v))
			s.heap.bump(v)

			if s.varLevel[v] == s.decisionLevel() {
				pathCount++
				continue
			}
			s.tmpLearnt = append(s.tmpLearnt, q.Opposite())
		}
	}

	s.tmpExplain = s.tmpExplain[:0]
	s.tmpExplain = s.explainConflict(confl, s.tmpExplain)
	resolve(s.tmpExplain)
	s.bumpAntecedentActivity(confl.ante)

	// Walk the trail backwards, resolving in the reason of each seen
	// literal until a single implication point remains (pathCount == 0).
	idx := len(s.trail) - 1
	var uip Literal

	for {
		for !s.seenVar.Contains(int(s.trail[idx].Var())) {
			idx--
		}
		uip = s.trail[idx]
		idx--

		pathCount--
		if pathCount == 0 {
			break
		}

		reason := s.varReason[uip.Var()]
		s.tmpExplain = s.tmpExplain[:0]
		s.tmpExplain = s.explainOther(reason, s.tmpExplain)
		s.bumpAntecedentActivity(reason)
		resolve(s.tmpExplain)
	}

	learnt := make([]Literal, len(s.tmpLearnt))
	copy(learnt, s.tmpLearnt)
	learnt[0] = uip.Opposite()

	backtrackLevel, glue := s.backtrackLevelAndGlue(learnt)
	minimized := s.minimize(learnt)

	return analysisResult{
		learnt:         minimized,
		backtrackLevel: backtrackLevel,
		glue:           glue,
	}
}

// backtrackLevelAndGlue computes the second-highest decision level among
// the learnt clause's literals (0 if the clause has size 1) and the glue:
// the count of distinct decision levels represented in it.
func (s *Solver) backtrackLevelAndGlue(learnt []Literal) (int, uint32) {
	if len(learnt) == 1 {
		return 0, 1
	}

	highest, secondHighest := -1, -1
	s.seenLevels = s.seenLevels[:0]
	glue := uint32(0)

	for _, l := range learnt {
		lvl := s.varLevel[l.Var()]
		if lvl > highest {
			secondHighest = highest
			highest = lvl
		} else if lvl > secondHighest && lvl != highest {
			secondHighest = lvl
		}

		seen := false
		for _, sl := range s.seenLevels {
			if sl == lvl {
				seen = true
				break
			}
		}
		if !seen {
			s.seenLevels = append(s.seenLevels, lvl)
			glue++
		}
	}

	if secondHighest < 0 {
		secondHighest = 0
	}
	return secondHighest, glue
}

// minimize removes redundant literals from the learnt clause. A
// literal is redundant if every literal in its reason clause is either
// already in the learnt clause or itself redundant, using a level
// abstraction to cheaply rule out most non-redundant literals before
// falling back to a DFS with memoization via the seen set.
func (s *Solver) minimize(learnt []Literal) []Literal {
	levelAbstraction := uint32(0)
	for _, l := range learnt {
		levelAbstraction |= levelBit(s.varLevel[l.Var()])
	}

	j := 1 // literal 0 (the UIP) is never removed
	for i := 1; i < len(learnt); i++ {
		l := learnt[i]
		if s.varReason[l.Var()].IsNone() || !s.isRedundant(l, levelAbstraction) {
			learnt[j] = l
			j++
		}
	}
	return learnt[:j]
}

func levelBit(level int) uint32 {
	return 1 << (uint(level) & 31)
}

// isRedundant runs a DFS: l is redundant if every
// literal in its reason is already seen (in the learnt clause or proven
// redundant earlier in this same walk), subject to the level-abstraction
// check that lets most literals be rejected without visiting their reason.
func (s *Solver) isRedundant(l Literal, levelAbstraction uint32) bool {
	s.tmpStack = s.tmpStack[:0]
	s.tmpStack = append(s.tmpStack, l)
	var marked []Variable
	ok := true

outer:
	for len(s.tmpStack) > 0 {
		cur := s.tmpStack[len(s.tmpStack)-1]
		s.tmpStack = s.tmpStack[:len(s.tmpStack)-1]

		reason := s.varReason[cur.Var()]
		if reason.IsNone() {
			ok = false
			break
		}

		s.tmpExplain = s.tmpExplain[:0]
		s.tmpExplain = s.explainOther(reason, s.tmpExplain)

		for _, q := range s.tmpExplain {
			v := q.Var()
			if s.seenVar.Contains(int(v)) {
				continue
			}
			if levelBit(s.varLevel[v])&levelAbstraction == 0 {
				ok = false
				break outer
			}
			if s.varReason[v].IsNone() {
				ok = false
				break outer
			}
			s.seenVar.Add(int(v))
			marked = append(marked, v)
			s.tmpStack = append(s.tmpStack, q.Opposite())
		}
	}

	// On failure, unmark the variables this walk marked: a later walk
	// skips every marked variable as already implied by the learnt clause,
	// so a mark left by an unproven walk would let minimize() drop a
	// literal that is not redundant.
	if !ok {
		for _, v := range marked {
			s.seenVar.addedAt[v] = 0
		}
	}
	return ok
}

// analyzeFinal builds the conflict core over the assumption set when a
// pending assumption is found already falsified. p is the literal
// already true on the trail that falsifies the next assumption. It walks
// the implication graph backward from p exactly like analyze's resolve
// step, but instead of stopping at the first UIP it continues until every
// branch bottoms out at a pseudo-decision (an assumption literal, reason
// none), collecting those directly into the result. Literals assigned at
// level 0 are implied by the formula alone and are left out.
func (s *Solver) analyzeFinal(p Literal) []Literal {
	s.seenVar.Clear()
	s.seenVar.Add(int(p.Var()))

	s.tmpStack = s.tmpStack[:0]
	s.tmpStack = append(s.tmpStack, p)

	var out []Literal
	for len(s.tmpStack) > 0 {
		cur := s.tmpStack[len(s.tmpStack)-1]
		s.tmpStack = s.tmpStack[:len(s.tmpStack)-1]

		if s.varLevel[cur.Var()] == 0 {
			continue
		}
		reason := s.varReason[cur.Var()]
		if reason.IsNone() {
			out = append(out, cur)
			continue
		}

		s.tmpExplain = s.tmpExplain[:0]
		s.tmpExplain = s.explainOther(reason, s.tmpExplain)
		for _, q := range s.tmpExplain {
			v := q.Var()
			if s.seenVar.Contains(int(v)) {
				continue
			}
			s.seenVar.Add(int(v))
			s.tmpStack = append(s.tmpStack, q)
		}
	}
	return out
}
