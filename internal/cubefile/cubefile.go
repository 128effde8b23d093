// Package cubefile reads and writes the cube (bound) file format of §6:
// one line per cube, "a l1 l2 ... 0", each li a signed DIMACS literal
// over the same variable numbering as the CNF it partitions.
package cubefile

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/smsgraph/sms/internal/sat"
)

// Cube is one parsed bound line: the conjunction of literals that
// partitions a slice of the search space.
type Cube struct {
	Literals []sat.Literal
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

// Read parses every cube line in filename, in file order.
func Read(filename string, gzipped bool) ([]Cube, error) {
	return ReadRange(filename, gzipped, 0, -1)
}

// ReadRange parses only cube lines [start, end) (0-based, end<0 means "to
// EOF"), letting a batch of workers each claim a disjoint slice of a
// large cube file without loading the rest into memory (§6 "rangeCubes").
func ReadRange(filename string, gzipped bool, start, end int) ([]Cube, error) {
	r, err := reader(filename, gzipped)
	if err != nil {
		return nil, fmt.Errorf("error reading file %q: %s", filename, err)
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var cubes []Cube
	index := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == 'c' {
			continue
		}
		if end >= 0 && index >= end {
			break
		}
		if index >= start {
			cube, err := parseLine(line)
			if err != nil {
				return nil, fmt.Errorf("cubefile: line %d: %w", index, err)
			}
			cubes = append(cubes, cube)
		}
		index++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cubes, nil
}

func parseLine(line string) (Cube, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 || parts[0] != "a" {
		return Cube{}, fmt.Errorf("expected a cube line starting with %q, got %q", "a", line)
	}
	var lits []sat.Literal
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Cube{}, fmt.Errorf("invalid literal %q: %w", p, err)
		}
		if n == 0 {
			break
		}
		lits = append(lits, sat.FromDIMACS(n))
	}
	return Cube{Literals: lits}, nil
}

// Write appends one "a l1 l2 ... 0" line per cube to w, in order.
func Write(w io.Writer, cubes []Cube) error {
	bw := bufio.NewWriter(w)
	for _, c := range cubes {
		if _, err := bw.WriteString("a"); err != nil {
			return err
		}
		for _, l := range c.Literals {
			if _, err := fmt.Fprintf(bw, " %d", l.DIMACS()); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(" 0\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Count returns the number of cube lines in filename without retaining
// their contents, for a caller sizing a worker batch before ReadRange.
func Count(filename string, gzipped bool) (int, error) {
	r, err := reader(filename, gzipped)
	if err != nil {
		return 0, fmt.Errorf("error reading file %q: %s", filename, err)
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	n := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == 'c' {
			continue
		}
		n++
	}
	return n, scanner.Err()
}
