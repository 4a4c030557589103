package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrabkin/ignis/dimacs"
	"github.com/mrabkin/ignis/internal/sat"
	"github.com/mrabkin/ignis/preprocess"
	"github.com/mrabkin/ignis/telemetry"
)

// formulaBuilder satisfies dimacs.Builder by accumulating clauses into a
// preprocess.Formula instead of a live solver, used when --preprocess is
// requested so the formula can be simplified before it is ever handed to
// the core.
type formulaBuilder struct {
	f preprocess.Formula
}

func (b *formulaBuilder) NewVariable(bool) sat.Variable {
	v := sat.Variable(b.f.NumVars)
	b.f.NumVars++
	return v
}

func (b *formulaBuilder) AddClause(literals []sat.Literal) (bool, error) {
	b.f.Clauses = append(b.f.Clauses, append([]sat.Literal(nil), literals...))
	return true, nil
}

func newSolveCommand() *cobra.Command {
	var (
		gzipped         bool
		timeout         time.Duration
		maxConflicts    int64
		conflictBudget  int64
		runPreprocessor bool
		telemetryPath   string
		metricsAddr     string
		outputPath      string
	)

	cmd := &cobra.Command{
		Use:   "solve <file.cnf>",
		Short: "Solve a DIMACS CNF instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := sat.DefaultOptions
			opts.Timeout = timeout
			opts.MaxConflicts = maxConflicts

			s := sat.NewSolver(opts)
			var pp *preprocess.Preprocessor

			if runPreprocessor {
				fb := &formulaBuilder{}
				if err := dimacs.Load(args[0], gzipped, fb); err != nil {
					return err
				}

				pp = preprocess.New(preprocess.DefaultOptions)
				if _, err := pp.Run(&fb.f); err != nil {
					fmt.Println("UNSAT")
					return nil
				}

				for i := 0; i < fb.f.NumVars; i++ {
					s.NewVariable(true)
				}
				for _, c := range fb.f.Clauses {
					if _, err := s.AddClause(c); err != nil {
						fmt.Println("UNSAT")
						return nil
					}
				}
			} else if err := dimacs.Load(args[0], gzipped, s); err != nil {
				return err
			}

			var recorder telemetry.Recorder
			if telemetryPath != "" {
				rec, err := telemetry.OpenSQLRecorder(telemetryPath)
				if err != nil {
					return fmt.Errorf("opening telemetry sink: %w", err)
				}
				defer rec.Close()
				recorder = rec
			}
			if metricsAddr != "" {
				prom, err := telemetry.NewPromRecorder(prometheus.DefaultRegisterer)
				if err != nil {
					return fmt.Errorf("registering prometheus metrics: %w", err)
				}
				if recorder == nil {
					recorder = prom
				}
				go func() {
					http.Handle("/metrics", promhttp.Handler())
					logrus.WithField("addr", metricsAddr).Info("serving prometheus metrics")
					if err := http.ListenAndServe(metricsAddr, nil); err != nil {
						logrus.WithError(err).Error("metrics listener stopped")
					}
				}()
			}

			if recorder != nil {
				s.RegisterRestartHook(func() {
					recorder.RecordRestart("solve", telemetry.Snapshot{
						Conflicts: s.TotalConflicts,
						Restarts:  s.TotalRestarts,
						Decisions: s.TotalDecisions,
						Learnts:   s.NumLearnts(),
						TrailLen:  s.NumAssigns(),
					})
				})
			}

			result := s.Solve(nil, conflictBudget)

			if recorder != nil {
				recorder.RecordCompletion("solve", telemetry.Snapshot{
					Conflicts: s.TotalConflicts,
					Restarts:  s.TotalRestarts,
					Decisions: s.TotalDecisions,
					Learnts:   s.NumLearnts(),
				}, result.Status.String())
			}

			fmt.Printf("c variables:  %d\n", s.NumVariables())
			fmt.Printf("c conflicts:  %d\n", s.TotalConflicts)
			fmt.Printf("c restarts:   %d\n", s.TotalRestarts)
			fmt.Println(result.Status.String())

			if result.Status == sat.StatusSat {
				model := result.Model
				if pp != nil {
					model = pp.Reconstruct(model)
				}
				if outputPath != "" {
					f, err := createFile(outputPath)
					if err != nil {
						return err
					}
					defer f.Close()
					return dimacs.WriteModel(f, model)
				}
				return dimacs.WriteModel(cmd.OutOrStdout(), model)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&gzipped, "gzip", false, "treat the input file as gzip-compressed")
	flags.DurationVar(&timeout, "timeout", -1, "stop after this long and report unknown (negative disables)")
	flags.Int64Var(&maxConflicts, "max-conflicts", -1, "stop after this many conflicts and report unknown (negative disables)")
	flags.Int64Var(&conflictBudget, "conflict-budget", -1, "per-call conflict budget (negative disables)")
	flags.BoolVar(&runPreprocessor, "preprocess", false, "run subsumption/BVE/SCC preprocessing first")
	flags.StringVar(&telemetryPath, "telemetry", "", "record run telemetry to this SQLite database")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	flags.StringVarP(&outputPath, "output", "o", "", "write the model to this file instead of stdout")

	return cmd
}
