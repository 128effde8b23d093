package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smsgraph/sms/internal/cubefile"
	"github.com/smsgraph/sms/internal/sat"
)

// writeCNF writes a tiny DIMACS CNF file and returns its path.
func writeCNF(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) = %v", path, err)
	}
	return path
}

func TestRunPlainSolvesSatisfiableInstance(t *testing.T) {
	dir := t.TempDir()
	// (x1 or x2) and (not x1 or x2): satisfiable, e.g. x2=true.
	cnf := writeCNF(t, dir, "sat.cnf", "p cnf 2 2\n1 2 0\n-1 2 0\n")

	cfg := &config{
		instanceFile: cnf,
		vertices:     2, // SMS disabled: plain SAT frontend (§8 boundary case)
	}

	status, err := runPlain(context.Background(), cfg)
	if err != nil {
		t.Fatalf("runPlain() error = %v", err)
	}
	if status != sat.True {
		t.Errorf("runPlain() status = %v, want True", status)
	}
}

func TestRunPlainSolvesUnsatisfiableInstance(t *testing.T) {
	dir := t.TempDir()
	// x1 and not x1: unsatisfiable.
	cnf := writeCNF(t, dir, "unsat.cnf", "p cnf 1 2\n1 0\n-1 0\n")

	cfg := &config{
		instanceFile: cnf,
		vertices:     2,
	}

	status, err := runPlain(context.Background(), cfg)
	if err != nil {
		t.Fatalf("runPlain() error = %v", err)
	}
	if status != sat.False {
		t.Errorf("runPlain() status = %v, want False", status)
	}
}

func TestRunPlainWithSMSFindsTriangleFreeModel(t *testing.T) {
	// n=4, edge variables 0..5 in row-major order over (i,j), i<j:
	// (0,1)=0 (0,2)=1 (0,3)=2 (1,2)=3 (1,3)=4 (2,3)=5.
	// Forbid every triangle by asserting at least one of its three edges
	// is absent.
	dir := t.TempDir()
	cnf := writeCNF(t, dir, "trianglefree.cnf",
		"p cnf 6 4\n"+
			"-1 -2 -4 0\n"+ // (0,1,2)
			"-1 -3 -5 0\n"+ // (0,1,3)
			"-2 -3 -6 0\n"+ // (0,2,3)
			"-4 -5 -6 0\n", // (1,2,3)
	)

	cfg := &config{
		instanceFile: cnf,
		vertices:     4,
		frequency:    1,
	}

	status, err := runPlain(context.Background(), cfg)
	if err != nil {
		t.Fatalf("runPlain() error = %v", err)
	}
	if status != sat.True {
		t.Fatalf("runPlain() status = %v, want True", status)
	}
}

func TestAllModelsEnumeratesCompleteGraphsOnThreeVertices(t *testing.T) {
	dir := t.TempDir()
	cnf := writeCNF(t, dir, "free3v.cnf", "p cnf 3 0\n")

	cfg := &config{
		instanceFile: cnf,
		vertices:     3,
		frequency:    1,
		allModels:    true,
	}

	var out bytes.Buffer
	s, p, err := newAttachedSolver(context.Background(), cfg, &out)
	if err != nil {
		t.Fatalf("newAttachedSolver() error = %v", err)
	}
	if p == nil {
		t.Fatalf("newAttachedSolver() returned a nil propagator for vertices=3")
	}

	status := s.Solve()
	if status != sat.False {
		t.Fatalf("Solve() = %v, want False (exhausted after enumerating every model)", status)
	}
	// 2^3 = 8 edge assignments over 3 vertices, partitioned by S_3 into
	// orbits of size 1 (no edges), 3 (one edge), 3 (two edges), 1 (a
	// triangle): exactly 4 canonical representatives.
	if p.Stats.ModelsAccepted != 4 {
		t.Errorf("ModelsAccepted = %d, want 4 (empty, single-edge, path, triangle, up to isomorphism)", p.Stats.ModelsAccepted)
	}
}

func TestRunCubesBlocksSkippedBoundsAndSolvesRetained(t *testing.T) {
	dir := t.TempDir()
	cnf := writeCNF(t, dir, "free3.cnf", "p cnf 3 0\n")

	cubePath := filepath.Join(dir, "bounds.cube")
	f, err := os.Create(cubePath)
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	cubes := []cubefile.Cube{
		{Literals: []sat.Literal{sat.PositiveLiteral(0)}},
		{Literals: []sat.Literal{sat.NegativeLiteral(0), sat.PositiveLiteral(1)}},
		{Literals: []sat.Literal{sat.NegativeLiteral(0), sat.NegativeLiteral(1)}},
	}
	if err := cubefile.Write(f, cubes); err != nil {
		t.Fatalf("Write() = %v", err)
	}
	f.Close()

	cfg := &config{
		instanceFile: cnf,
		vertices:     2,
		cubeFile:     cubePath,
		fromBound:    1,
		toBound:      1,
		cubeOut:      filepath.Join(dir, "cubes.out"),
	}

	status, err := runCubes(context.Background(), cfg)
	if err != nil {
		t.Fatalf("runCubes() error = %v", err)
	}
	// Bound 1 (-x0, x1) is satisfiable over an otherwise unconstrained
	// 3-variable instance.
	if status != sat.True {
		t.Errorf("runCubes() status = %v, want True", status)
	}
}

func TestStatusLineMapsToExitCodes(t *testing.T) {
	tests := []struct {
		status   sat.LBool
		wantLine string
		wantCode int
	}{
		{sat.True, "SATISFIABLE", 10},
		{sat.False, "UNSATISFIABLE", 20},
		{sat.Unknown, "INDETERMINATE", 0},
	}
	for _, tt := range tests {
		line, code := statusLine(tt.status)
		if line != tt.wantLine || code != tt.wantCode {
			t.Errorf("statusLine(%v) = (%q, %d), want (%q, %d)", tt.status, line, code, tt.wantLine, tt.wantCode)
		}
	}
}

func TestCubeOutWriterAppendsToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cubes.out")
	cfg := &config{cubeOut: path}

	w, err := cubeOutWriter(cfg)
	if err != nil {
		t.Fatalf("cubeOutWriter() error = %v", err)
	}
	if _, err := w.Write([]byte("a 1 0\n")); err != nil {
		t.Fatalf("Write() = %v", err)
	}
	w.Close()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	if !bytes.Equal(got, []byte("a 1 0\n")) {
		t.Errorf("cubeOut contents = %q, want %q", got, "a 1 0\n")
	}
}
