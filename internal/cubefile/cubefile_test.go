package cubefile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/smsgraph/sms/internal/sat"
)

func TestReadParsesCubeLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cubes.txt")
	content := "c a header comment\na 1 -2 3 0\na -1 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cubes, err := Read(path, false)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(cubes) != 2 {
		t.Fatalf("len(cubes) = %d, want 2", len(cubes))
	}
	want := []sat.Literal{sat.PositiveLiteral(0), sat.NegativeLiteral(1), sat.PositiveLiteral(2)}
	if len(cubes[0].Literals) != len(want) {
		t.Fatalf("cubes[0].Literals = %v, want %v", cubes[0].Literals, want)
	}
	for i, l := range want {
		if cubes[0].Literals[i] != l {
			t.Errorf("cubes[0].Literals[%d] = %v, want %v", i, cubes[0].Literals[i], l)
		}
	}
}

func TestReadRangeSelectsDisjointSlice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cubes.txt")
	content := "a 1 0\na 2 0\na 3 0\na 4 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	first, err := ReadRange(path, false, 0, 2)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	second, err := ReadRange(path, false, 2, -1)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("got %d + %d cubes, want 2 + 2", len(first), len(second))
	}
	if first[0].Literals[0] != sat.PositiveLiteral(0) || second[1].Literals[0] != sat.PositiveLiteral(3) {
		t.Errorf("ReadRange did not split in file order: %v / %v", first, second)
	}
}

func TestWriteRoundTrips(t *testing.T) {
	cubes := []Cube{
		{Literals: []sat.Literal{sat.PositiveLiteral(0), sat.NegativeLiteral(1)}},
	}
	var buf bytes.Buffer
	if err := Write(&buf, cubes); err != nil {
		t.Fatalf("Write: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Read(path, false)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 1 || len(got[0].Literals) != 2 {
		t.Fatalf("round trip mismatch: %v", got)
	}
}

func TestCountMatchesReadLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cubes.txt")
	content := "a 1 0\na 2 0\na 3 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	n, err := Count(path, false)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}
