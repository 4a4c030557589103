// Command ignis is a CDCL SAT solver CLI: load a DIMACS CNF instance,
// optionally preprocess it, solve it (alone or as a portfolio), and verify
// a candidate model against a formula.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.WithError(err).Error("ignis failed")
		os.Exit(1)
	}
}
