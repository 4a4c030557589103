package portfolio

import "github.com/mrabkin/ignis/internal/sat"

// DefaultPresets is a small built-in set of option presets spanning a
// useful range of tuning, for callers (cmd/ignis portfolio) that don't want
// to hand-author a strategy list.
func DefaultPresets() []sat.Options {
	standard := sat.DefaultOptions

	highPhaseSaving := sat.DefaultOptions
	highPhaseSaving.PhaseSaving = true
	highPhaseSaving.VariableDecay = 0.99

	frequentReduction := sat.DefaultOptions
	frequentReduction.ReduceDBThreshold = 500

	return []sat.Options{standard, highPhaseSaving, frequentReduction}
}
