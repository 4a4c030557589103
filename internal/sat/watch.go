package sat

// antecedentKind distinguishes the three shapes a clause can take when it
// explains an assignment or a conflict: stored inline as a binary or
// ternary watch, or out-of-line in the Arena.
type antecedentKind uint8

const (
	antecedentNone antecedentKind = iota
	antecedentBinary
	antecedentTernary
	antecedentLong
)

// Antecedent is the reason a literal was enqueued, or (reused for the same
// shape) the clause a propagation walk found conflicting. For binary and
// ternary antecedents, "other" holds the clause's remaining literal(s)
// relative to whichever literal the antecedent is explaining — the
// asserted literal itself is not stored here, since the caller always
// knows it already (it is either the literal being analyzed on the trail,
// or the trigger literal the walk was processing).
type Antecedent struct {
	kind  antecedentKind
	other [2]Literal
	ref   ClauseRef
}

// IsNone reports whether the antecedent represents a decision or an
// assumption, i.e. the trail's distinguished "none" sentinel reason.
func (a Antecedent) IsNone() bool {
	return a.kind == antecedentNone
}

// watchKind distinguishes the three entry shapes a literal's watch list can
// hold.
type watchKind uint8

const (
	watchBinary watchKind = iota
	watchTernary
	watchLong
)

// watchEntry is one entry in a literal's watch list: a binary watch
// (stores the other literal and learnt flag), a ternary watch (stores the
// two other literals and learnt flag), or a long-clause watch (stores a
// clause reference plus a blocker literal cached to skip the arena fetch
// when that literal is already satisfied).
type watchEntry struct {
	kind    watchKind
	learnt  bool
	a, b    Literal // binary: a only; ternary: a, b
	ref     ClauseRef
	blocker Literal
}

// attachBinary registers clause (a, b) in both literals' watch lists. Unlike
// long clauses, binary clauses need no watch migration: with only two
// literals, whichever one is falsified, the other is the only candidate for
// propagation or conflict, so both watch lists carry a permanent entry.
func (s *Solver) attachBinary(a, b Literal, learnt bool) {
	s.watches[a.Opposite()] = append(s.watches[a.Opposite()], watchEntry{kind: watchBinary, a: b, learnt: learnt})
	s.watches[b.Opposite()] = append(s.watches[b.Opposite()], watchEntry{kind: watchBinary, a: a, learnt: learnt})
}

// attachTernary registers clause (a, b, c) in all three literals' watch
// lists, each entry storing the clause's other two literals. Like binary
// clauses, ternary clauses never migrate watches: the check against the
// other two literals is fixed work, not a search.
func (s *Solver) attachTernary(a, b, c Literal, learnt bool) {
	s.watches[a.Opposite()] = append(s.watches[a.Opposite()], watchEntry{kind: watchTernary, a: b, b: c, learnt: learnt})
	s.watches[b.Opposite()] = append(s.watches[b.Opposite()], watchEntry{kind: watchTernary, a: a, b: c, learnt: learnt})
	s.watches[c.Opposite()] = append(s.watches[c.Opposite()], watchEntry{kind: watchTernary, a: a, b: b, learnt: learnt})
}

// attachLong registers an arena clause's two watched positions (0 and 1)
// in their respective watch lists, each entry using the other watched
// literal as its blocker.
func (s *Solver) attachLong(ref ClauseRef) {
	lits := s.arena.Lits(ref)
	s.watches[lits[0].Opposite()] = append(s.watches[lits[0].Opposite()], watchEntry{kind: watchLong, ref: ref, blocker: lits[1]})
	s.watches[lits[1].Opposite()] = append(s.watches[lits[1].Opposite()], watchEntry{kind: watchLong, ref: ref, blocker: lits[0]})
}

// detachBinary removes the single matching entry from both watch lists. A
// linear scan is acceptable here; this path is only exercised by
// root-level simplification, never by the hot propagation loop.
func (s *Solver) detachBinary(a, b Literal) {
	s.removeWatch(a.Opposite(), func(w watchEntry) bool { return w.kind == watchBinary && w.a == b })
	s.removeWatch(b.Opposite(), func(w watchEntry) bool { return w.kind == watchBinary && w.a == a })
}

// detachTernary removes the matching entry from all three watch lists.
func (s *Solver) detachTernary(a, b, c Literal) {
	s.removeWatch(a.Opposite(), func(w watchEntry) bool { return w.kind == watchTernary && sameTwo(w.a, w.b, b, c) })
	s.removeWatch(b.Opposite(), func(w watchEntry) bool { return w.kind == watchTernary && sameTwo(w.a, w.b, a, c) })
	s.removeWatch(c.Opposite(), func(w watchEntry) bool { return w.kind == watchTernary && sameTwo(w.a, w.b, a, b) })
}

// detachLong removes the clause's two watches, found by the reference they
// carry rather than by current literal content (which may have moved).
func (s *Solver) detachLong(ref ClauseRef) {
	lits := s.arena.Lits(ref)
	s.removeWatch(lits[0].Opposite(), func(w watchEntry) bool { return w.kind == watchLong && w.ref == ref })
	s.removeWatch(lits[1].Opposite(), func(w watchEntry) bool { return w.kind == watchLong && w.ref == ref })
}

func sameTwo(a, b, x, y Literal) bool {
	return (a == x && b == y) || (a == y && b == x)
}

func (s *Solver) removeWatch(at Literal, match func(watchEntry) bool) {
	ws := s.watches[at]
	for i, w := range ws {
		if match(w) {
			ws[i] = ws[len(ws)-1]
			s.watches[at] = ws[:len(ws)-1]
			return
		}
	}
	fatalInvariant("sat: detach found no matching watch at literal %v", at)
}

// conflict identifies the clause a propagation walk found falsified,
// together with the "trigger" literal whose assignment exposed it — needed
// to reconstruct the full literal list of an inline binary/ternary clause,
// whose watched position is implicit rather than stored.
type conflict struct {
	found   bool
	ante    Antecedent
	trigger Literal // the just-assigned-true literal that exposed the conflict
}

// propagate is the hot path: it consumes the unprocessed suffix of the
// trail (trail[qhead:]) and walks the watch list of each popped literal,
// It returns either "no conflict" or the
// conflicting clause together with enough context to explain it.
func (s *Solver) propagate() conflict {
	for s.qhead < len(s.trail) {
		p := s.trail[s.qhead]
		s.qhead++

		ws := s.watches[p]
		write := 0

	scan:
		for read := 0; read < len(ws); read++ {
			w := ws[read]

			switch w.kind {
			case watchBinary:
				switch s.value(w.a) {
				case True:
					ws[write] = w
					write++
				case Unknown:
					s.enqueue(w.a, Antecedent{kind: antecedentBinary, other: [2]Literal{p.Opposite()}})
					ws[write] = w
					write++
				case False:
					ws[write] = w
					write++
					write += copy(ws[write:], ws[read+1:])
					s.watches[p] = ws[:write]
					return conflict{found: true, trigger: p, ante: Antecedent{
						kind:  antecedentBinary,
						other: [2]Literal{w.a},
					}}
				}

			case watchTernary:
				va, vb := s.value(w.a), s.value(w.b)
				if va == True || vb == True {
					ws[write] = w
					write++
					continue scan
				}
				if va == False && vb == False {
					ws[write] = w
					write++
					write += copy(ws[write:], ws[read+1:])
					s.watches[p] = ws[:write]
					return conflict{found: true, trigger: p, ante: Antecedent{
						kind:  antecedentTernary,
						other: [2]Literal{w.a, w.b},
					}}
				}
				// Unit only when exactly one of the two is unassigned.
				if va == Unknown && vb == False {
					s.enqueue(w.a, Antecedent{kind: antecedentTernary, other: [2]Literal{p.Opposite(), w.b}})
				} else if vb == Unknown && va == False {
					s.enqueue(w.b, Antecedent{kind: antecedentTernary, other: [2]Literal{p.Opposite(), w.a}})
				}
				ws[write] = w
				write++

			case watchLong:
				if s.value(w.blocker) == True {
					ws[write] = w
					write++
					continue scan
				}

				lits := s.arena.Lits(w.ref)
				if lits[0] == p.Opposite() {
					lits[0], lits[1] = lits[1], lits[0]
				}

				if s.value(lits[0]) == True {
					w.blocker = lits[0]
					ws[write] = w
					write++
					continue scan
				}

				for k := 2; k < len(lits); k++ {
					if s.value(lits[k]) != False {
						lits[1], lits[k] = lits[k], lits[1]
						s.watches[lits[1].Opposite()] = append(s.watches[lits[1].Opposite()], watchEntry{
							kind:    watchLong,
							ref:     w.ref,
							blocker: lits[0],
						})
						// The watch migrated to lits[1]'s list: drop it
						// from this list by simply not copying it forward.
						continue scan
					}
				}

				// No replacement watch: the clause is unit or conflicting
				// on lits[0]. The entry is kept regardless.
				ws[write] = w
				write++

				switch s.value(lits[0]) {
				case Unknown:
					s.enqueue(lits[0], Antecedent{kind: antecedentLong, ref: w.ref})
				case False:
					write += copy(ws[write:], ws[read+1:])
					s.watches[p] = ws[:write]
					return conflict{found: true, trigger: p, ante: Antecedent{kind: antecedentLong, ref: w.ref}}
				}
			}
		}

		s.watches[p] = ws[:write]
	}

	return conflict{}
}
