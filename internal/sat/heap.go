package sat

import (
	"github.com/rhartert/yagh"
)

// rescaleThreshold and rescaleShift implement the proportional rescaling
// described below: when any activity would exceed the threshold, every
// activity and the increment are right-shifted (here: multiplied down) by
// a fixed amount so that relative ordering among variables is preserved.
const rescaleThreshold = 1 << 24

// decisionHeap is the activity-ordered decision heap: a max-heap
// keyed by variable activity, with insert/decrease-key/pop-max/contains
// backed by yagh's binary heap (ties break on insertion order, i.e. the
// order variables were declared via NewVariable).
type decisionHeap struct {
	order *yagh.IntMap[float64]

	activity []float64
	inc      float64
	decay    float64 // multiply inc by 1/decay each conflict, decay in (0, 1]

	polarity    []LBool
	eligible    []bool
	phaseSaving bool
}

func newDecisionHeap(decay float64, phaseSaving bool) *decisionHeap {
	return &decisionHeap{
		order:       yagh.New[float64](0),
		inc:         1,
		decay:       decay,
		phaseSaving: phaseSaving,
	}
}

// addVariable registers a new decision-eligible-or-not variable with zero
// initial activity and a default true polarity.
func (h *decisionHeap) addVariable(eligible bool) Variable {
	v := Variable(len(h.activity))

	h.activity = append(h.activity, 0)
	h.polarity = append(h.polarity, True)
	h.eligible = append(h.eligible, eligible)

	h.order.GrowBy(1)
	if eligible {
		h.order.Put(int(v), 0)
	}

	return v
}

// reinsert adds v back to the heap of candidates when it is unassigned by
// a backtrack. val is the value v held before being unassigned; under
// phase saving it becomes v's next branching preference.
func (h *decisionHeap) reinsert(v Variable, val LBool) {
	if !h.eligible[v] {
		return
	}
	if h.phaseSaving && val != Unknown {
		h.polarity[v] = val
	}
	if !h.order.Contains(int(v)) {
		h.order.Put(int(v), -h.activity[v])
	}
}

// bump increases v's activity by the current increment, rescaling all
// activities (and the increment) if the rescale threshold is exceeded.
func (h *decisionHeap) bump(v Variable) {
	h.activity[v] += h.inc
	if h.order.Contains(int(v)) {
		h.order.Put(int(v), -h.activity[v])
	}
	if h.activity[v] > rescaleThreshold {
		h.rescale()
	}
}

// decayActivity multiplies the increment by 1/decay, making future bumps larger
// relative to past ones — the usual "decay variable activity" step run
// once per conflict.
func (h *decisionHeap) decayActivity() {
	h.inc /= h.decay
	if h.inc > rescaleThreshold {
		h.rescale()
	}
}

func (h *decisionHeap) rescale() {
	factor := 1.0 / rescaleThreshold
	h.inc *= factor
	for v := range h.activity {
		h.activity[v] *= factor
		if h.order.Contains(v) {
			h.order.Put(v, -h.activity[v])
		}
	}
}

// popDecision pops the maximum-activity variable that is still undef and
// decision-eligible, assigning it to its preferred polarity. isAssigned
// reports whether a variable is currently assigned a value.
func (h *decisionHeap) popDecision(isAssigned func(Variable) bool) (Literal, bool) {
	for {
		next, ok := h.order.Pop()
		if !ok {
			return 0, false
		}
		v := Variable(next.Elem)
		if isAssigned(v) {
			continue // stale entry: v was assigned without being removed
		}
		if h.polarity[v] == False {
			return NegativeLiteral(v), true
		}
		return PositiveLiteral(v), true
	}
}

// contains reports whether v is currently a candidate for branching. Used
// only by tests and invariant checks; the hot path never needs it.
func (h *decisionHeap) contains(v Variable) bool {
	return h.order.Contains(int(v))
}
