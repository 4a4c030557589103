// Package portfolio runs several independently-configured solvers over the
// same formula concurrently and returns the first to reach a definite
// verdict, cancelling the rest. Each solver instance is fully independent;
// the core's single-threaded-per-instance contract is preserved by never
// sharing a *sat.Solver between goroutines.
package portfolio

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrabkin/ignis/internal/sat"
)

// Formula is anything that can populate a fresh solver instance: the
// portfolio driver builds one solver per strategy and loads the same
// formula into each.
type Formula interface {
	Load(s *sat.Solver) error
}

// Result is the outcome of a portfolio run: the first strategy to finish,
// and that strategy's result.
type Result struct {
	WinningStrategy int
	sat.Result
}

// Run launches one *sat.Solver per entry in strategies, each wired so that
// ctx cancellation (or a sibling reaching a verdict first) calls
// Interrupt(). It returns the first solver to reach StatusSat or
// StatusUnsat; if every solver reaches StatusUnknown (interrupted or
// budget-exhausted), Run returns that instead.
func Run(ctx context.Context, formula Formula, strategies []sat.Options, conflictBudget int64) (Result, error) {
	if len(strategies) == 0 {
		return Result{}, fmt.Errorf("portfolio: no strategies given")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]sat.Result, len(strategies))
	errs := make([]error, len(strategies))
	var firstVerdict sync.Once
	winner := -1

	g, gctx := errgroup.WithContext(runCtx)
	for i, opts := range strategies {
		i, opts := i, opts
		g.Go(func() error {
			s := sat.NewSolver(opts)
			if err := formula.Load(s); err != nil {
				errs[i] = err
				return nil
			}

			done := make(chan struct{})
			go func() {
				select {
				case <-gctx.Done():
					s.Interrupt()
				case <-done:
				}
			}()

			results[i] = s.Solve(nil, conflictBudget)
			close(done)

			if results[i].Status != sat.StatusUnknown {
				firstVerdict.Do(func() { winner = i })
				cancel() // a definite verdict: stop every other strategy
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	for i, err := range errs {
		if err != nil {
			return Result{}, fmt.Errorf("portfolio: strategy %d: %w", i, err)
		}
	}

	if winner >= 0 {
		return Result{WinningStrategy: winner, Result: results[winner]}, nil
	}
	return Result{WinningStrategy: -1, Result: results[0]}, nil
}
