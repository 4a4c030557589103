package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ignis",
		Short: "A CDCL SAT solver",
	}

	root.AddCommand(newSolveCommand())
	root.AddCommand(newPortfolioCommand())
	root.AddCommand(newVerifyCommand())

	return root
}
