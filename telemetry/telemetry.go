// Package telemetry provides optional recorders for restart boundaries and
// solve completion: a SQL-style sink for offline analysis and a Prometheus
// sink for a long-running embedding process. The core never sees a
// Recorder: the caller registers a restart hook on the solver and calls
// the Recorder from it (as cmd/ignis solve does).
package telemetry

// Snapshot is the search driver state handed to a Recorder at each restart
// boundary and at solve completion.
type Snapshot struct {
	Conflicts int64
	Restarts  int64
	Decisions int64
	Learnts   int
	TrailLen  int
}

// Recorder is the narrow interface a caller's restart hook (not the core,
// which has no telemetry dependency) calls into.
type Recorder interface {
	RecordRestart(run string, snap Snapshot)
	RecordCompletion(run string, snap Snapshot, status string)
}
