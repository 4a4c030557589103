package sat

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Options tunes the search driver. Zero-valued fields are not meaningful;
// start from DefaultOptions and override only what matters.
type Options struct {
	ClauseDecay   float64
	VariableDecay float64
	MaxConflicts  int64         // < 0 disables the conflict-count stop condition
	Timeout       time.Duration // < 0 disables the timeout stop condition
	PhaseSaving   bool

	// ReduceDBThreshold is the number of learnt long clauses above which
	// ReduceDB is triggered.
	ReduceDBThreshold int
}

// DefaultOptions mirrors the reference solver's tuning, extended with the
// DB-reduction threshold to apply.
var DefaultOptions = Options{
	ClauseDecay:       0.999,
	VariableDecay:     0.95,
	MaxConflicts:      -1,
	Timeout:           -1,
	PhaseSaving:       true,
	ReduceDBThreshold: 2000,
}

// Status is the outcome of a Solve call.
type Status int

const (
	StatusUnknown Status = iota
	StatusSat
	StatusUnsat
)

func (st Status) String() string {
	switch st {
	case StatusSat:
		return "SAT"
	case StatusUnsat:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// Result is what Solve returns: a model on StatusSat, a final conflict over
// the assumption set on StatusUnsat when assumptions were given, or nothing
// extra on StatusUnknown.
type Result struct {
	Status        Status
	Model         []bool
	FinalConflict []Literal
}

// RelocateFunc is invoked once per surviving clause during arena
// compaction with its old and new reference. External collaborators
// register one to keep their own clause-reference holders (index vectors,
// caches) valid across compaction.
type RelocateFunc func(old, new ClauseRef)

// RestartFunc is invoked once per restart, after the restart counter and
// heuristic state have been updated and the trail has been cancelled back
// to level 0, but before search resumes. Registered by external
// collaborators (e.g. a telemetry recorder) that need restart-granularity
// visibility into the search; the core calls it with no arguments and
// takes no dependency on what it does, so it reads the solver's own
// exported statistics (TotalConflicts, TotalRestarts, ...) itself.
type RestartFunc func()

// Solver is the CDCL core: search loop, unit propagation over watched
// literals, clause arena, and conflict analysis. It is the only type this
// package exports as a coordinator; every other file in this
// package lends it a capability slice rather than holding back-pointers
// into it.
type Solver struct {
	arena *Arena
	heap  *decisionHeap

	// Per-literal watch lists, the index structure propagation walks.
	watches [][]watchEntry

	// Per-literal assignment; indices 2v and 2v+1 are the positive and
	// negative literal of variable v.
	assigns []LBool

	// Per-variable trail bookkeeping.
	varLevel  []int
	varReason []Antecedent

	// Trail and propagation queue (the unprocessed trail suffix).
	trail    []Literal
	trailLim []int
	qhead    int

	// Learnt long clauses live in the arena; this is the only clause-level
	// bookkeeping the core keeps for them (binary/ternary learnts are
	// never removed, so they need no such list).
	learnts []ClauseRef

	numProblemClauses int

	// Clause activity (long clauses only; inline clauses carry none).
	clauseInc   float64
	clauseDecay float64

	restart  restartHeuristic
	opts     Options
	unsat    bool
	interrupted atomic.Bool

	startTime time.Time

	// Assumption literals for the in-flight Solve call, forced true in
	// order as pseudo-decisions at levels 0..len(assumptions)-1. Unlike a
	// one-shot queue, this persists for the whole call: a restart's
	// cancelUntil(0) drops decisionLevel() back to 0, and decide() simply
	// re-examines assumptions from the start on the next call, so an
	// assumption can never be silently dropped by a mid-search restart.
	assumptions []Literal

	// Search statistics, exposed for telemetry collaborators.
	TotalConflicts int64
	TotalRestarts  int64
	TotalDecisions int64

	lastModel []bool

	relocators []RelocateFunc

	// restartHooks fire once per restart, after the trail has been
	// cancelled back to level 0. The core never depends on what a hook
	// does; it just calls it.
	restartHooks []RestartFunc

	// Scratch buffers reused across calls to avoid repeated allocation.
	seenVar    *ResetSet
	tmpLearnt  []Literal
	tmpExplain []Literal
	tmpStack   []Literal
	seenLevels []int
}

// NewSolver returns a solver configured with the given options.
func NewSolver(opts Options) *Solver {
	return &Solver{
		arena:       NewArena(),
		heap:        newDecisionHeap(opts.VariableDecay, opts.PhaseSaving),
		clauseInc:   1,
		clauseDecay: opts.ClauseDecay,
		restart:     newRestartHeuristic(),
		opts:        opts,
		seenVar:     &ResetSet{},
	}
}

// NewDefaultSolver returns a solver using DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// NumVariables returns the number of variables created so far.
func (s *Solver) NumVariables() int {
	return len(s.assigns) / 2
}

// NumAssigns returns the number of literals currently on the trail.
func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

// NumConstraints returns the number of problem (non-learnt) clauses added.
func (s *Solver) NumConstraints() int {
	return s.numProblemClauses
}

// NumLearnts returns the number of learnt long clauses currently live in
// the arena (binary/ternary learnts are not counted: they are never
// removed by ReduceDB).
func (s *Solver) NumLearnts() int {
	return len(s.learnts)
}

// NewVariable creates a new variable and returns its identifier.
// decisionEligible controls whether the search driver may ever pick this
// variable as a free decision (the decision-eligibility flag).
func (s *Solver) NewVariable(decisionEligible bool) Variable {
	s.watches = append(s.watches, nil, nil)
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.varLevel = append(s.varLevel, -1)
	s.varReason = append(s.varReason, Antecedent{})
	s.seenVar.Expand()
	return s.heap.addVariable(decisionEligible)
}

// Value returns the current truth value of a literal.
func (s *Solver) Value(l Literal) LBool {
	return s.value(l)
}

// Interrupt sets the interrupt flag, checked at each restart boundary and
// the top of the search loop. Safe to call from another goroutine.
func (s *Solver) Interrupt() {
	s.interrupted.Store(true)
}

func (s *Solver) interruptedOrExpired() bool {
	if s.interrupted.Load() {
		return true
	}
	if s.opts.MaxConflicts >= 0 && s.TotalConflicts >= s.opts.MaxConflicts {
		return true
	}
	if s.opts.Timeout >= 0 && time.Since(s.startTime) >= s.opts.Timeout {
		return true
	}
	return false
}

// AddClause adds a problem clause at the root decision level. It returns
// ok = false if the clause is trivially falsified at level 0 (in which
// case the solver latches permanent UNSAT); err is non-nil only for
// programmer error (calling AddClause above level 0).
func (s *Solver) AddClause(literals []Literal) (ok bool, err error) {
	if s.decisionLevel() != 0 {
		fatalInvariant("sat: AddClause called above decision level 0")
		return false, fmt.Errorf("sat: AddClause called above decision level 0")
	}

	lits, trivial := s.simplifyNewClauseLiterals(literals)
	if trivial {
		return true, nil // tautology or already satisfied: nothing to add
	}
	if len(lits) == 0 {
		s.unsat = true
		return false, nil
	}

	s.numProblemClauses++
	s.installClause(lits, false, 0)

	if s.propagate().found {
		s.unsat = true
		return false, nil
	}
	return true, nil
}

// simplifyNewClauseLiterals removes duplicate literals and checks for
// tautologies (a literal and its opposite both present) and root-level
// satisfied/falsified literals, exactly as the reference solver's
// NewClause does for non-learnt clauses.
func (s *Solver) simplifyNewClauseLiterals(literals []Literal) (lits []Literal, trivial bool) {
	out := append([]Literal(nil), literals...)
	seen := map[Literal]struct{}{}

	size := len(out)
	for i := size - 1; i >= 0; i-- {
		if _, ok := seen[out[i].Opposite()]; ok {
			return nil, true // tautology
		}
		if _, ok := seen[out[i]]; ok {
			size--
			out[i], out[size] = out[size], out[i]
			continue
		}
		seen[out[i]] = struct{}{}

		switch s.value(out[i]) {
		case True:
			return nil, true
		case False:
			size--
			out[i], out[size] = out[size], out[i]
		}
	}
	return out[:size], false
}

// installClause dispatches a (non-trivial, size >= 1) clause to the
// appropriate storage: a unit is enqueued directly, length 2/3 clauses are
// inlined into watch lists, and longer clauses go into the arena. For
// learnt clauses, literal 0 must already be the asserting (UIP) literal;
// this function picks the literal with the highest decision level among
// the rest to occupy position 1, so the second watch backjumps correctly.
func (s *Solver) installClause(lits []Literal, learnt bool, glue uint32) {
	if len(lits) == 1 {
		s.enqueue(lits[0], Antecedent{})
		return
	}

	if learnt && len(lits) > 2 {
		maxLevel, maxIdx := -1, 1
		for i := 1; i < len(lits); i++ {
			if lvl := s.varLevel[lits[i].Var()]; lvl > maxLevel {
				maxLevel, maxIdx = lvl, i
			}
		}
		lits[1], lits[maxIdx] = lits[maxIdx], lits[1]
	}

	switch len(lits) {
	case 2:
		s.attachBinary(lits[0], lits[1], learnt)
	case 3:
		s.attachTernary(lits[0], lits[1], lits[2], learnt)
	default:
		ref := s.arena.Allocate(lits, learnt)
		if learnt {
			s.arena.SetGlue(ref, glue)
			s.learnts = append(s.learnts, ref)
		}
		s.attachLong(ref)
	}
}

// Solve runs the search driver's state machine to completion or
// until a stop condition fires. assumptions are forced true, in order, as
// pseudo-decisions before free branching begins. conflictBudget, if >= 0,
// bounds the number of conflicts this call alone may spend, independent of
// Options.MaxConflicts.
func (s *Solver) Solve(assumptions []Literal, conflictBudget int64) Result {
	if s.unsat {
		return Result{Status: StatusUnsat}
	}

	s.startTime = time.Now()
	s.interrupted.Store(false)

	s.assumptions = append(s.assumptions[:0], assumptions...)

	conflictsThisCall := int64(0)

	if c := s.propagate(); c.found {
		s.unsat = true
		s.cancelUntil(0)
		return Result{Status: StatusUnsat}
	}

	for {
		if s.interruptedOrExpired() || (conflictBudget >= 0 && conflictsThisCall >= conflictBudget) {
			s.cancelUntil(0)
			return Result{Status: StatusUnknown}
		}

		conflict := s.propagate()
		if conflict.found {
			s.TotalConflicts++
			conflictsThisCall++

			if s.decisionLevel() == 0 {
				s.unsat = true
				s.cancelUntil(0)
				return Result{Status: StatusUnsat}
			}

			result := s.analyze(conflict)
			s.restart.recordConflict(result.glue, len(s.trail))
			s.cancelUntil(result.backtrackLevel)
			s.installClause(result.learnt, true, result.glue)
			s.heap.decayActivity()
			s.decayClauseActivity()
			continue
		}

		// No conflict: decide the next step.

		if s.NumLearnts() > s.opts.ReduceDBThreshold {
			s.ReduceDB()
		}

		if s.restart.shouldRestart() && s.decisionLevel() > 0 {
			s.TotalRestarts++
			s.restart.reset()
			s.cancelUntil(0)
			for _, f := range s.restartHooks {
				f()
			}
			continue
		}

		lit, isAssumption, failed := s.decide()
		if failed {
			final := append(s.analyzeFinal(lit.Opposite()), lit)
			s.cancelUntil(0)
			return Result{Status: StatusUnsat, FinalConflict: final}
		}
		if lit == litNone && !isAssumption {
			s.saveModel()
			s.cancelUntil(0)
			return Result{Status: StatusSat, Model: s.lastModel}
		}

		s.TotalDecisions++
		s.newDecisionLevel()
		s.enqueue(lit, Antecedent{})
	}
}

// decide picks the next literal to assign: assumptions are forced in
// order as pseudo-decisions at levels 0..len(assumptions)-1 before free
// branching begins. An assumption already true by propagation still opens
// a dummy decision level (so decisionLevel() keeps pace with the
// assumption index instead of being consumed from a one-shot queue) and
// decide loops to examine the next one. failed reports that the next
// assumption is already falsified, in which case lit is that falsified
// assumption and the caller must build a final conflict rather than
// branch. litNone with isAssumption=false and failed=false means every
// variable is already assigned.
func (s *Solver) decide() (lit Literal, isAssumption bool, failed bool) {
	for s.decisionLevel() < len(s.assumptions) {
		a := s.assumptions[s.decisionLevel()]
		switch s.value(a) {
		case True:
			s.newDecisionLevel() // already implied: dummy level, keep pace
		case False:
			return a, true, true
		default:
			return a, true, false
		}
	}

	l, ok := s.heap.popDecision(func(v Variable) bool { return s.VarValue(v) != Unknown })
	if !ok {
		return litNone, false, false
	}
	return l, false, false
}

func (s *Solver) decayClauseActivity() {
	s.clauseInc /= s.clauseDecay
}

// saveModel snapshots the current (necessarily total) assignment as a
// model.
func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for v := range model {
		lb := s.VarValue(Variable(v))
		if lb == Unknown {
			fatalInvariant("sat: saveModel called with variable %d unassigned", v)
		}
		model[v] = lb == True
	}
	s.lastModel = model
}

// ReduceDB halves the learnt long-clause database: sort by (glue
// ascending, activity descending), keep the better half plus any clause
// currently locked (serving as another literal's reason) and any clause
// whose activity is at least clauseInc divided by the learnt count, free
// the rest, then compact the arena so the freed space is reclaimed.
func (s *Solver) ReduceDB() {
	if len(s.learnts) == 0 {
		return
	}

	sortLearntsByQuality(s.arena, s.learnts)

	keep := s.learnts[:0]
	half := len(s.learnts) / 2

	for i, ref := range s.learnts {
		c := s.arena.Deref(ref)
		locked := s.varReason[keyLiteralVar(s, ref)].kind == antecedentLong &&
			s.varReason[keyLiteralVar(s, ref)].ref == ref

		if i < half || locked || c.Activity >= s.clauseInc/float64(len(s.learnts)) {
			keep = append(keep, ref)
			continue
		}
		s.detachLong(ref)
		s.arena.Free(ref)
	}
	s.learnts = keep

	s.CompactArena()
}

// keyLiteralVar returns the variable of a clause's asserting literal
// (position 0), the only literal whose reason could point back at this
// clause (the "locked" check: a clause can only be the reason of the
// literal it would have unit-propagated).
func keyLiteralVar(s *Solver, ref ClauseRef) Variable {
	return s.arena.Lits(ref)[0].Var()
}

// RegisterRelocator subscribes an external collaborator to clause-
// reference relocation notifications (a relocate-all hook). f is invoked once
// per surviving clause, with its old and new reference, every time the
// arena is compacted.
func (s *Solver) RegisterRelocator(f RelocateFunc) {
	s.relocators = append(s.relocators, f)
}

// RegisterRestartHook subscribes an external collaborator (e.g. a
// telemetry recorder) to be notified at each restart boundary. f is
// invoked with no arguments; it reads whatever solver state it needs
// (TotalConflicts, TotalRestarts, NumLearnts, ...) itself.
func (s *Solver) RegisterRestartHook(f RestartFunc) {
	s.restartHooks = append(s.restartHooks, f)
}

// CompactArena triggers arena compaction and rewrites every reference the
// core itself holds (watch lists, per-variable reasons, the learnt-clause
// list), then notifies every registered external relocator per survivor.
func (s *Solver) CompactArena() {
	relocated := make(map[ClauseRef]ClauseRef)

	s.arena.Compact(func(old, new ClauseRef) {
		relocated[old] = new
		for _, f := range s.relocators {
			f(old, new)
		}
	})

	for v := range s.varReason {
		if s.varReason[v].kind == antecedentLong {
			if nr, ok := relocated[s.varReason[v].ref]; ok {
				s.varReason[v].ref = nr
			}
		}
	}
	for lit := range s.watches {
		ws := s.watches[lit]
		for i := range ws {
			if ws[i].kind == watchLong {
				if nr, ok := relocated[ws[i].ref]; ok {
					ws[i].ref = nr
				}
			}
		}
	}
	for i, ref := range s.learnts {
		if nr, ok := relocated[ref]; ok {
			s.learnts[i] = nr
		}
	}
}

// AttachClause re-attaches a previously detached long clause's watches,
// for collaborators that rebuild a clause in place.
func (s *Solver) AttachClause(ref ClauseRef) {
	s.attachLong(ref)
}

// DetachClause removes a long clause's watches without freeing its arena
// storage, for collaborators that want to temporarily pull a clause out of
// propagation.
func (s *Solver) DetachClause(ref ClauseRef) {
	s.detachLong(ref)
}

// TrailView is a read-only snapshot of the current assignment, handed to
// collaborators that run between driver iterations.
type TrailView struct {
	Trail []Literal
	Level []int
}

// TrailView returns a read-only view of the current trail. The returned
// slices alias the solver's own storage and must not be mutated, and are
// only valid until the next call into the solver.
func (s *Solver) TrailView() TrailView {
	return TrailView{Trail: s.trail, Level: s.varLevel}
}
