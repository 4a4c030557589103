package telemetry

import "github.com/prometheus/client_golang/prometheus"

// PromRecorder exposes running counters for an embedding long-lived process
// (e.g. the portfolio driver) to scrape on its own /metrics endpoint.
type PromRecorder struct {
	conflicts prometheus.Counter
	restarts  prometheus.Counter
	decisions prometheus.Counter
	learnts   prometheus.Gauge

	// Counters are cumulative (Prometheus counters must never decrease),
	// while Snapshot carries an absolute total; these track the last
	// reported absolute value so update() can Add the delta.
	lastConflicts, lastRestarts, lastDecisions int64
}

// NewPromRecorder registers its metrics with reg and returns a recorder
// bound to them. Pass prometheus.DefaultRegisterer to expose on the
// process-wide default handler.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	r := &PromRecorder{
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ignis_conflicts_total",
			Help: "Total conflicts encountered across all recorded runs.",
		}),
		restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ignis_restarts_total",
			Help: "Total restarts taken across all recorded runs.",
		}),
		decisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ignis_decisions_total",
			Help: "Total branching decisions made across all recorded runs.",
		}),
		learnts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ignis_learnt_clauses",
			Help: "Learnt long clauses currently live in the most recent run.",
		}),
	}

	for _, c := range []prometheus.Collector{r.conflicts, r.restarts, r.decisions, r.learnts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PromRecorder) RecordRestart(_ string, snap Snapshot) {
	r.update(snap)
}

func (r *PromRecorder) RecordCompletion(_ string, snap Snapshot, _ string) {
	r.update(snap)
}

func (r *PromRecorder) update(snap Snapshot) {
	r.conflicts.Add(float64(snap.Conflicts) - r.conflictsSoFar())
	r.restarts.Add(float64(snap.Restarts) - r.restartsSoFar())
	r.decisions.Add(float64(snap.Decisions) - r.decisionsSoFar())
	r.learnts.Set(float64(snap.Learnts))

	r.lastConflicts, r.lastRestarts, r.lastDecisions = snap.Conflicts, snap.Restarts, snap.Decisions
}

func (r *PromRecorder) conflictsSoFar() float64 { return float64(r.lastConflicts) }
func (r *PromRecorder) restartsSoFar() float64  { return float64(r.lastRestarts) }
func (r *PromRecorder) decisionsSoFar() float64 { return float64(r.lastDecisions) }
