// Package preprocess simplifies a CNF formula before it is ever handed to
// the core: subsumption, bounded variable elimination, and
// strongly-connected-component equivalence replacement over the binary
// implication graph. It operates on its own Formula representation rather
// than a live *sat.Solver, the same shape the corpus's own preprocessor
// (xDarkicex/logic) uses — build, rewrite, return a new formula — so a
// caller runs it once, ahead of ingestion, rather than interleaved with
// search.
package preprocess

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mrabkin/ignis/internal/sat"
)

// Formula is the preprocessor's own intermediate representation: a flat
// clause list plus the number of variables currently in play.
type Formula struct {
	NumVars int
	Clauses [][]sat.Literal
}

// Options bounds how much work a preprocessing round may do.
type Options struct {
	MaxRounds       int
	BVEProductBound int // p*n occurrence-product ceiling for elimination
	LogEliminations bool
}

// DefaultOptions matches the rounds/bound the reference preprocessor in the
// corpus uses as an implicit cap (10 rounds) for its own fixpoint loop.
var DefaultOptions = Options{
	MaxRounds:       10,
	BVEProductBound: 16,
	LogEliminations: true,
}

// Preprocessor runs subsumption, bounded variable elimination, and SCC
// equivalence replacement to a fixpoint (or the round budget), and
// remembers enough to extend a model over the variables it eliminated.
type Preprocessor struct {
	opts Options
	log  *logrus.Entry

	eliminated    []eliminatedVar
	equivTo       map[sat.Variable]sat.Literal // representative literal, identity if none
	contradiction bool
}

type eliminatedVar struct {
	v         sat.Variable
	witnesses [][]sat.Literal // clauses that must all be satisfiable, used to fix v's value
}

func New(opts Options) *Preprocessor {
	return &Preprocessor{
		opts:    opts,
		log:     logrus.WithField("component", "preprocess"),
		equivTo: map[sat.Variable]sat.Literal{},
	}
}

// Run simplifies f in place to a fixpoint (or until MaxRounds elapses),
// reporting whether anything changed. It returns an error only when the
// formula is proven unsatisfiable at this stage (an SCC containing both a
// literal and its negation, or unit propagation to an empty clause).
func (p *Preprocessor) Run(f *Formula) (changed bool, err error) {
	for round := 0; round < p.opts.MaxRounds; round++ {
		roundChanged := false

		if c, err := p.unitPropagate(f); err != nil {
			return changed, err
		} else if c {
			roundChanged = true
		}

		if p.sccEquivalence(f) {
			roundChanged = true
		}
		if p.contradiction {
			return changed, fmt.Errorf("preprocess: a literal and its negation are equivalent, formula is unsatisfiable")
		}
		if err := p.checkEmptyClause(f); err != nil {
			return changed, err
		}

		if p.subsumption(f) {
			roundChanged = true
		}
		if p.boundedVariableElimination(f) {
			roundChanged = true
		}

		if !roundChanged {
			break
		}
		changed = true
		if p.opts.LogEliminations {
			p.log.WithFields(logrus.Fields{
				"round":      round,
				"clauses":    len(f.Clauses),
				"eliminated": len(p.eliminated),
			}).Debug("preprocessing round complete")
		}
	}
	return changed, nil
}

func (p *Preprocessor) checkEmptyClause(f *Formula) error {
	for _, c := range f.Clauses {
		if len(c) == 0 {
			return fmt.Errorf("preprocess: formula reduced to an empty clause")
		}
	}
	return nil
}

// unitPropagate removes clauses satisfied by a unit and strikes the unit's
// negation from the rest, repeating until no unit clause remains,
// following the same loop structure as the corpus's own preprocessor
// (xDarkicex/logic's unitPropagation).
func (p *Preprocessor) unitPropagate(f *Formula) (bool, error) {
	changed := false
	for iterations := 0; iterations < len(f.Clauses)+1; iterations++ {
		var unit sat.Literal
		found := false
		for _, c := range f.Clauses {
			if len(c) == 1 {
				unit, found = c[0], true
				break
			}
		}
		if !found {
			break
		}
		changed = true

		kept := f.Clauses[:0]
		for _, c := range f.Clauses {
			if containsLiteral(c, unit) {
				continue // satisfied
			}
			nc := stripLiteral(c, unit.Opposite())
			if len(nc) == 0 {
				return changed, fmt.Errorf("preprocess: unit propagation found a contradiction on %v", unit)
			}
			kept = append(kept, nc)
		}
		f.Clauses = kept
		p.recordFixed(unit)
	}
	return changed, nil
}

func (p *Preprocessor) recordFixed(unit sat.Literal) {
	p.eliminated = append(p.eliminated, eliminatedVar{
		v:         unit.Var(),
		witnesses: [][]sat.Literal{{unit}},
	})
}

func containsLiteral(c []sat.Literal, l sat.Literal) bool {
	for _, x := range c {
		if x == l {
			return true
		}
	}
	return false
}

func stripLiteral(c []sat.Literal, l sat.Literal) []sat.Literal {
	out := make([]sat.Literal, 0, len(c))
	for _, x := range c {
		if x != l {
			out = append(out, x)
		}
	}
	return out
}

// subsumption removes any clause whose literal set is a superset of
// another's, mirroring the corpus preprocessor's subsumption pass
// generalized from its string-keyed Literal to sat.Literal.
func (p *Preprocessor) subsumption(f *Formula) bool {
	changed := false
	for i := 0; i < len(f.Clauses); i++ {
		for j := i + 1; j < len(f.Clauses); j++ {
			if subsumes(f.Clauses[i], f.Clauses[j]) {
				f.Clauses = append(f.Clauses[:j], f.Clauses[j+1:]...)
				j--
				changed = true
			} else if subsumes(f.Clauses[j], f.Clauses[i]) {
				f.Clauses = append(f.Clauses[:i], f.Clauses[i+1:]...)
				i--
				changed = true
				break
			}
		}
	}
	return changed
}

func subsumes(a, b []sat.Literal) bool {
	for _, l := range a {
		if !containsLiteral(b, l) {
			return false
		}
	}
	return true
}

// boundedVariableElimination eliminates a variable whose positive and
// negative occurrence counts multiply to at most BVEProductBound, by
// resolving every cross-polarity pair of its clauses and dropping
// tautological resolvents.
func (p *Preprocessor) boundedVariableElimination(f *Formula) bool {
	occPos, occNeg := occurrences(f)

	for v := sat.Variable(0); int(v) < f.NumVars; v++ {
		pos, neg := occPos[v], occNeg[v]
		if len(pos) == 0 && len(neg) == 0 {
			continue
		}
		if len(pos)*len(neg) > p.opts.BVEProductBound {
			continue
		}
		if len(pos) == 0 || len(neg) == 0 {
			continue // pure literal: left for unit propagation / heap polarity
		}

		var resolvents [][]sat.Literal
		ok := true
		for _, ci := range pos {
			for _, cj := range neg {
				r, tautology := resolve(f.Clauses[ci], f.Clauses[cj], v)
				if tautology {
					continue
				}
				if len(r) == 0 {
					ok = false
					break
				}
				resolvents = append(resolvents, r)
			}
			if !ok {
				break
			}
		}
		if !ok {
			continue // resolution would produce an empty clause: not safe to eliminate here
		}

		witnesses := make([][]sat.Literal, 0, len(pos)+len(neg))
		remove := map[int]bool{}
		for _, i := range pos {
			witnesses = append(witnesses, f.Clauses[i])
			remove[i] = true
		}
		for _, i := range neg {
			witnesses = append(witnesses, f.Clauses[i])
			remove[i] = true
		}

		kept := f.Clauses[:0]
		for i, c := range f.Clauses {
			if !remove[i] {
				kept = append(kept, c)
			}
		}
		f.Clauses = append(kept, resolvents...)

		p.eliminated = append(p.eliminated, eliminatedVar{v: v, witnesses: witnesses})
		return true // recompute occurrences before eliminating another variable
	}
	return false
}

func occurrences(f *Formula) (pos, neg map[sat.Variable][]int) {
	pos = map[sat.Variable][]int{}
	neg = map[sat.Variable][]int{}
	for i, c := range f.Clauses {
		for _, l := range c {
			if l.IsPositive() {
				pos[l.Var()] = append(pos[l.Var()], i)
			} else {
				neg[l.Var()] = append(neg[l.Var()], i)
			}
		}
	}
	return pos, neg
}

// resolve resolves two clauses on variable v (one must contain the
// positive, the other the negative literal of v), reporting a tautology if
// the resolvent contains both a literal and its negation.
func resolve(a, b []sat.Literal, v sat.Variable) (resolvent []sat.Literal, tautology bool) {
	seen := map[sat.Literal]bool{}
	for _, l := range a {
		if l.Var() == v {
			continue
		}
		seen[l] = true
	}
	for _, l := range b {
		if l.Var() == v {
			continue
		}
		if seen[l.Opposite()] {
			return nil, true
		}
		seen[l] = true
	}
	for l := range seen {
		resolvent = append(resolvent, l)
	}
	return resolvent, false
}

// Reconstruct extends a model produced over the preprocessed formula's
// surviving variables with values for every variable this preprocessor
// eliminated, applied in reverse elimination order so later witnesses see
// the fixed values of variables eliminated after them.
func (p *Preprocessor) Reconstruct(model []bool) []bool {
	out := append([]bool(nil), model...)
	for i := len(p.eliminated) - 1; i >= 0; i-- {
		e := p.eliminated[i]
		for int(e.v) >= len(out) {
			out = append(out, false)
		}
		out[e.v] = satisfyingValue(e.witnesses, out, e.v)
	}
	return out
}

// satisfyingValue picks whichever polarity for v makes every witness
// clause satisfied, given the rest of the (partial) assignment in out.
func satisfyingValue(witnesses [][]sat.Literal, out []bool, v sat.Variable) bool {
	for _, pol := range []bool{true, false} {
		out[v] = pol
		if allSatisfied(witnesses, out) {
			return pol
		}
	}
	return true
}

func allSatisfied(clauses [][]sat.Literal, model []bool) bool {
	for _, c := range clauses {
		satisfied := false
		for _, l := range c {
			if int(l.Var()) < len(model) && model[l.Var()] == l.IsPositive() {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}
