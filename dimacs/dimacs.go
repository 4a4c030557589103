// Package dimacs loads and writes the DIMACS CNF family of file formats:
// problem files (.cnf, optionally gzipped) and the one-model-per-line
// solution convention the core's own test fixtures use.
package dimacs

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	rdimacs "github.com/rhartert/dimacs"

	"github.com/mrabkin/ignis/internal/sat"
)

// Builder is the destination a CNF problem file is loaded into. It matches
// the embedding API's variable/clause creation calls directly: loading a
// formula never needs to know about decision levels, watch lists, or the
// arena.
type Builder interface {
	NewVariable(decisionEligible bool) sat.Variable
	AddClause(literals []sat.Literal) (bool, error)
}

func openReader(path string, gzipped bool) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if gzipped || strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return gz, nil
	}
	return f, nil
}

// Load streams a DIMACS CNF file into dst, creating one decision-eligible
// variable per declared variable and one clause per clause line.
func Load(path string, gzipped bool, dst Builder) error {
	r, err := openReader(path, gzipped)
	if err != nil {
		return fmt.Errorf("dimacs: opening %q: %w", path, err)
	}
	defer r.Close()

	b := &builder{dst: dst}
	if err := rdimacs.ReadBuilder(r, b); err != nil {
		return fmt.Errorf("dimacs: parsing %q: %w", path, err)
	}
	if b.err != nil {
		return fmt.Errorf("dimacs: loading %q: %w", path, b.err)
	}
	return nil
}

// builder adapts a Builder to github.com/rhartert/dimacs's own
// line-grammar-level Builder interface (Problem/Clause/Comment).
type builder struct {
	dst Builder
	err error
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("instance of type %q is not supported", problem)
	}
	for i := 0; i < nVars; i++ {
		b.dst.NewVariable(true)
	}
	return nil
}

func (b *builder) Clause(tmp []int) error {
	if b.err != nil {
		return nil
	}
	clause := make([]sat.Literal, len(tmp))
	for i, l := range tmp {
		if l < 0 {
			clause[i] = sat.NegativeLiteral(sat.Variable(-l - 1))
		} else {
			clause[i] = sat.PositiveLiteral(sat.Variable(l - 1))
		}
	}
	if _, err := b.dst.AddClause(clause); err != nil {
		b.err = err
	}
	return nil
}

func (b *builder) Comment(string) error {
	return nil
}

// ReadModels parses a one-model-per-line fixture file: each non-empty,
// non-comment line is a DIMACS-style 0-terminated list of signed literals
// indicating each variable's assignment.
func ReadModels(path string) ([][]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dimacs: opening %q: %w", path, err)
	}
	defer f.Close()

	var models [][]bool
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == 'c' {
			continue
		}

		fields := strings.Fields(line)
		model := make([]bool, 0, len(fields))
		for _, field := range fields {
			if field == "0" {
				continue
			}
			l, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("dimacs: parsing literal %q: %w", field, err)
			}
			model = append(model, l > 0)
		}
		models = append(models, model)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return models, nil
}

// WriteModel prints a model in the same one-line, 0-terminated convention
// ReadModels reads, variable i (0-based) as signed literal i+1.
func WriteModel(w io.Writer, model []bool) error {
	bw := bufio.NewWriter(w)
	for i, v := range model {
		if i > 0 {
			if _, err := bw.WriteByte(' '); err != nil {
				return err
			}
		}
		lit := i + 1
		if !v {
			lit = -lit
		}
		if _, err := fmt.Fprintf(bw, "%d", lit); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString(" 0\n"); err != nil {
		return err
	}
	return bw.Flush()
}
