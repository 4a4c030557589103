package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrabkin/ignis/dimacs"
	"github.com/mrabkin/ignis/internal/sat"
	"github.com/mrabkin/ignis/portfolio"
)

// dimacsFormula adapts a DIMACS CNF file to portfolio.Formula, loading it
// fresh into each strategy's own solver instance.
type dimacsFormula struct {
	path    string
	gzipped bool
}

func (f dimacsFormula) Load(s *sat.Solver) error {
	return dimacs.Load(f.path, f.gzipped, s)
}

func newPortfolioCommand() *cobra.Command {
	var (
		gzipped        bool
		timeout        time.Duration
		conflictBudget int64
	)

	cmd := &cobra.Command{
		Use:   "portfolio <file.cnf>",
		Short: "Race several solver configurations over the same instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			formula := dimacsFormula{path: args[0], gzipped: gzipped}
			result, err := portfolio.Run(ctx, formula, portfolio.DefaultPresets(), conflictBudget)
			if err != nil {
				return err
			}

			fmt.Printf("c winning strategy: %d\n", result.WinningStrategy)
			fmt.Println(result.Status.String())
			if result.Status == sat.StatusSat {
				return dimacs.WriteModel(cmd.OutOrStdout(), result.Model)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&gzipped, "gzip", false, "treat the input file as gzip-compressed")
	flags.DurationVar(&timeout, "timeout", 0, "stop the whole portfolio after this long (0 disables)")
	flags.Int64Var(&conflictBudget, "conflict-budget", -1, "per-call conflict budget for each strategy (negative disables)")

	return cmd
}
