// Package parsers loads DIMACS CNF and model files into the graph search
// engine, adapting the external dimacs.Builder callback interface to
// internal/sat.Solver (§6 "Input: DIMACS CNF").
package parsers

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/rhartert/dimacs"

	"github.com/smsgraph/sms/internal/sat"
)

// SATSolver is the narrow slice of *sat.Solver that loading a CNF needs.
type SATSolver interface {
	AddVariable() int
	AddClause([]sat.Literal) error
}

// VariableGrower is implemented by callers (internal/sms.Propagator) that
// must grow their own per-variable structures whenever the CNF declares a
// variable beyond the graph's edge variables.
type VariableGrower interface {
	Grow()
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// LoadDIMACS parses the DIMACS CNF file at filename and loads its formula
// into solver. grower, if non-nil, is notified once per variable declared
// by the problem line beyond those the solver already has (so a
// propagator attached before loading can keep its own structures in
// sync).
func LoadDIMACS(filename string, gzipped bool, solver SATSolver, grower VariableGrower) error {
	r, err := reader(filename, gzipped)
	if err != nil {
		return fmt.Errorf("error reading file %q: %s", filename, err)
	}
	defer r.Close()

	b := &builder{solver: solver, grower: grower}
	return dimacs.ReadBuilder(r, b)
}

// builder wraps the solver to implement dimacs.Builder.
type builder struct {
	solver SATSolver
	grower VariableGrower
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("not a CNF problem")
	}
	for i := 0; i < nVars; i++ {
		b.solver.AddVariable()
		if b.grower != nil {
			b.grower.Grow()
		}
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	clause := make([]sat.Literal, len(tmpClause))
	for i, l := range tmpClause {
		clause[i] = sat.FromDIMACS(l)
	}
	return b.solver.AddClause(clause)
}

func (b *builder) Comment(_ string) error {
	return nil
}

// ReadModels returns the list of models contained in filename, one per
// line of the models format (§6).
func ReadModels(filename string) ([][]bool, error) {
	r, err := reader(filename, false)
	if err != nil {
		return nil, fmt.Errorf("error reading file %q: %s", filename, err)
	}
	defer r.Close()

	b := &modelBuilder{}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return nil, err
	}
	return b.models, nil
}

type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return fmt.Errorf("model files should not have problem lines")
}

func (b *modelBuilder) Comment(_ string) error {
	return nil
}

func (b *modelBuilder) Clause(tmpClause []int) error {
	model := make([]bool, len(tmpClause))
	for i, l := range tmpClause {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}
