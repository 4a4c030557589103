package sat_test

// This test suite checks that the solver finds the exact set of models for
// a handful of hand-verified DIMACS instances under testdata: every *.cnf
// file is paired with a *.cnf.models file listing its complete model set,
// one model per line.

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mrabkin/ignis/dimacs"
	"github.com/mrabkin/ignis/internal/sat"
)

const testdataDir = "testdata"

type testCase struct {
	name         string
	instanceFile string
	modelsFile   string
}

func listTestCases(dir string) ([]testCase, error) {
	var cases []testCase
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".cnf") {
			return nil
		}
		cases = append(cases, testCase{
			name:         d.Name(),
			instanceFile: path,
			modelsFile:   path + ".models",
		})
		return nil
	})
	return cases, err
}

func toString(model []bool) string {
	s := make([]byte, len(model))
	for i, b := range model {
		if b {
			s[i] = 1
		}
	}
	return string(s)
}

func toSet(models [][]bool) map[string]struct{} {
	set := map[string]struct{}{}
	for _, m := range models {
		set[toString(m)] = struct{}{}
	}
	return set
}

// solveAll exhausts every model of s by repeatedly solving and then adding
// a blocking clause that forbids the model just found.
func solveAll(s *sat.Solver) [][]bool {
	var models [][]bool
	for {
		result := s.Solve(nil, -1)
		if result.Status != sat.StatusSat {
			return models
		}
		models = append(models, result.Model)

		block := make([]sat.Literal, len(result.Model))
		for i, b := range result.Model {
			v := sat.Variable(i)
			if b {
				block[i] = sat.NegativeLiteral(v)
			} else {
				block[i] = sat.PositiveLiteral(v)
			}
		}
		if ok, _ := s.AddClause(block); !ok {
			return models
		}
	}
}

func TestSolveAll_matchesPrecomputedModelSets(t *testing.T) {
	cases, err := listTestCases(testdataDir)
	if err != nil {
		t.Fatalf("listing test cases: %s", err)
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			want, err := dimacs.ReadModels(tc.modelsFile)
			if err != nil {
				t.Fatalf("reading models: %s", err)
			}

			s := sat.NewDefaultSolver()
			if err := dimacs.Load(tc.instanceFile, false, s); err != nil {
				t.Fatalf("loading instance: %s", err)
			}

			got := solveAll(s)
			if len(got) != len(want) {
				t.Errorf("got %d models, want %d", len(got), len(want))
			}
			if !cmp.Equal(toSet(got), toSet(want)) {
				t.Errorf("model set mismatch: got %v, want %v", toSet(got), toSet(want))
			}
		})
	}
}
