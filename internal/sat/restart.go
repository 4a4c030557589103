package sat

// ema is an exponential moving average, generalizing the reference
// solver's own sat.EMA to the two windows the restart heuristic needs.
type ema struct {
	decay float64
	value float64
	init  bool
}

func newEMA(decay float64) ema {
	return ema{decay: decay}
}

func (e *ema) add(x float64) {
	if !e.init {
		e.init = true
		e.value = x
		return
	}
	e.value = e.decay*e.value + x*(1-e.decay)
}

func (e *ema) val() float64 {
	return e.value
}

// restartHeuristic tracks the short- and long-window moving averages of
// learnt-clause glue and trail depth, grounded on
// CryptoMiniSat's glueHist/glueHistLT dual-window restart trigger.
type restartHeuristic struct {
	glueShort, glueLong ema
	trailShort          ema

	// factor is how far the short-window glue average must exceed the
	// long-window average before a restart is forced.
	factor float64

	// Geometric fallback: if the glue-based trigger hasn't fired in
	// fallbackPeriod conflicts, force a restart anyway so pathological
	// instances can't starve restarts entirely.
	conflictsSinceRestart int64
	fallbackPeriod        int64
	fallbackGrowth        float64
}

func newRestartHeuristic() restartHeuristic {
	return restartHeuristic{
		glueShort:      newEMA(0.85),
		glueLong:       newEMA(0.999),
		trailShort:     newEMA(0.85),
		factor:         1.25,
		fallbackPeriod: 100,
		fallbackGrowth: 1.1,
	}
}

// recordConflict folds one learnt clause's glue and the trail depth at
// conflict time into the running averages, and advances the geometric
// fallback counter.
func (r *restartHeuristic) recordConflict(glue uint32, trailDepth int) {
	r.glueShort.add(float64(glue))
	r.glueLong.add(float64(glue))
	r.trailShort.add(float64(trailDepth))
	r.conflictsSinceRestart++
}

// shouldRestart reports whether the short-window glue average has grown
// enough relative to the long-window average to force a restart, or the
// geometric fallback counter has elapsed.
func (r *restartHeuristic) shouldRestart() bool {
	if !r.glueLong.init {
		return false
	}
	if r.glueShort.val() > r.glueLong.val()*r.factor {
		return true
	}
	return float64(r.conflictsSinceRestart) >= float64(r.fallbackPeriod)
}

// reset is called once a restart is taken: it clears the geometric
// fallback counter and grows the fallback period, the usual Luby-free
// geometric restart schedule fallback.
func (r *restartHeuristic) reset() {
	r.conflictsSinceRestart = 0
	r.fallbackPeriod = int64(float64(r.fallbackPeriod) * r.fallbackGrowth)
}
