package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrabkin/ignis/dimacs"
	"github.com/mrabkin/ignis/internal/sat"
)

// cnfBuilder satisfies dimacs.Builder by recording the raw problem, for
// verify's independent re-check of a candidate model against the clauses
// (never touching the solver core at all).
type cnfBuilder struct {
	numVars int
	clauses [][]sat.Literal
}

func (b *cnfBuilder) NewVariable(bool) sat.Variable {
	v := sat.Variable(b.numVars)
	b.numVars++
	return v
}

func (b *cnfBuilder) AddClause(literals []sat.Literal) (bool, error) {
	b.clauses = append(b.clauses, append([]sat.Literal(nil), literals...))
	return true, nil
}

func clauseSatisfied(c []sat.Literal, model []bool) bool {
	for _, l := range c {
		v := int(l.Var())
		if v >= len(model) {
			return false
		}
		if l.IsPositive() == model[v] {
			return true
		}
	}
	return false
}

func newVerifyCommand() *cobra.Command {
	var gzipped bool

	cmd := &cobra.Command{
		Use:   "verify <file.cnf> <models-file>",
		Short: "Check that every model in models-file satisfies file.cnf",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := &cnfBuilder{}
			if err := dimacs.Load(args[0], gzipped, b); err != nil {
				return err
			}

			models, err := dimacs.ReadModels(args[1])
			if err != nil {
				return err
			}

			bad := 0
			for i, model := range models {
				for _, c := range b.clauses {
					if !clauseSatisfied(c, model) {
						fmt.Fprintf(cmd.OutOrStdout(), "model %d: unsatisfied clause %v\n", i, c)
						bad++
						break
					}
				}
			}

			if bad > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "INVALID: %d of %d models failed\n", bad, len(models))
				os.Exit(1)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "VALID: %d models checked\n", len(models))
			return nil
		},
	}

	cmd.Flags().BoolVar(&gzipped, "gzip", false, "treat the input file as gzip-compressed")

	return cmd
}
