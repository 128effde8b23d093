// Package minimality implements the Minimality Checker (§4.3): given a
// partial adjacency matrix and an initial ordered partition of vertices,
// it searches for a vertex permutation (respecting the partition) under
// which the matrix is lexicographically smaller, and synthesizes a
// blocking clause when one is found.
package minimality

import (
	"github.com/smsgraph/sms/internal/graphview"
	"github.com/smsgraph/sms/internal/sat"
	"github.com/smsgraph/sms/internal/truth"
)

// Checker runs the permutation search described in §4.3. It is called
// every f-th propagation (the frequency parameter is owned by the
// caller, per §4.4 step 4).
type Checker struct {
	view *graphview.View

	// partition is the initial ordered partition: partition[v] is the
	// block index of vertex v. Permutations may only map a vertex to
	// another vertex in the same block.
	partition []int

	// cutoff bounds the total number of recursive search calls made by
	// one Check, trading completeness for bounded per-call cost (§4.3).
	// It does not bound the recursion depth on its own.
	cutoff int
}

// New returns a Checker for the given view, respecting partition (nil
// means "no partition", i.e. every vertex may be permuted into any
// other), and bounding its search to cutoff recursive steps (0 means
// unbounded).
func New(view *graphview.View, partition []int, cutoff int) *Checker {
	if partition == nil {
		partition = make([]int, view.Vertices())
	}
	return &Checker{view: view, partition: partition, cutoff: cutoff}
}

// Result is the outcome of one Check call, mirroring the state machine
// in §4.3: {clause-emitted, inconclusive}.
type Result struct {
	// Emitted is true iff a witnessing permutation was found and
	// Clause contains the blocking clause to add (persistent, §4.3).
	Emitted bool
	Clause  []sat.Literal
}

// Check builds on the current adjacency matrix and searches for a
// permutation, respecting Checker's partition, under which the matrix is
// lexicographically strictly smaller, comparing only the positions
// already decided (the first decided position that differs settles it).
// The tie-break policy is "first witness found by the traversal" (§4.3);
// no canonical choice is required.
func (c *Checker) Check(store *truth.Store) Result {
	matrix := c.view.AdjacencyMatrix(store)
	n := c.view.Vertices()

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	used := make([]bool, n)

	steps := 0
	if witness, ok := c.search(matrix, perm, used, 0, &steps); ok {
		return Result{Emitted: true, Clause: c.blockingClause(matrix, witness)}
	}
	return Result{}
}

// search explores assignments of perm[pos] over vertices in the same
// partition block as pos, depth-first, returning the first permutation
// that makes π(M) lexicographically smaller than M (or "inconclusive"
// under the current partial information once exhausted).
func (c *Checker) search(matrix [][]truth.Value, perm []int, used []bool, pos int, steps *int) ([]int, bool) {
	n := len(perm)
	if c.cutoff > 0 && *steps >= c.cutoff {
		return nil, false
	}
	*steps++

	if pos == n {
		if c.isSmaller(matrix, perm) {
			out := make([]int, n)
			copy(out, perm)
			return out, true
		}
		return nil, false
	}

	for cand := 0; cand < n; cand++ {
		if used[cand] || c.partition[cand] != c.partition[pos] {
			continue
		}
		used[cand] = true
		perm[pos] = cand
		if witness, ok := c.search(matrix, perm, used, pos+1, steps); ok {
			return witness, true
		}
		used[cand] = false
	}

	return nil, false
}

// cmpResult is the outcome of comparing π(M) against M in row-major
// (i, j) order: the first decided position where they differ settles the
// comparison, per genuine lexicographic order (§4.3). order is -1 if
// π(M) is smaller there, +1 if larger, 0 if no decided position ever
// differs (the permutation is a no-op on known bits).
type cmpResult struct {
	order      int
	lastI, lastJ int
}

// compare walks the decided positions of matrix in row-major order and
// stops at the first one where permuting by perm changes its value.
func (c *Checker) compare(matrix [][]truth.Value, perm []int) cmpResult {
	n := len(perm)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			orig := matrix[i][j]
			if orig == truth.Unknown {
				continue
			}
			permuted := matrix[perm[i]][perm[j]]
			if permuted == orig {
				continue
			}
			if less(permuted, orig) {
				return cmpResult{order: -1, lastI: i, lastJ: j}
			}
			return cmpResult{order: 1, lastI: i, lastJ: j}
		}
	}
	return cmpResult{order: 0}
}

// isSmaller reports whether applying perm to matrix yields a matrix that
// is lexicographically strictly smaller than matrix, row-major over
// (i, j), i < j, mirroring the encoding in §4.2.
func (c *Checker) isSmaller(matrix [][]truth.Value, perm []int) bool {
	return c.compare(matrix, perm).order == -1
}

// less orders Unknown < False < True so that a permutation that turns a
// decided True edge into an undecided or False one counts as smaller.
func less(a, b truth.Value) bool {
	rank := func(v truth.Value) int {
		switch v {
		case truth.False:
			return 0
		case truth.True:
			return 1
		default:
			return -1
		}
	}
	return rank(a) < rank(b)
}

// blockingClause synthesizes the clause asserting "at least one of the
// decided edge assignments up to and including the first position where
// π(M) differs from M must flip" (§4.3). That prefix is exactly the
// evidence compare used to conclude π(M) is smaller, so negating all of
// it is a sound blocking clause: it is never valid to reassert the same
// prefix of decided bits once this permutation has witnessed it is
// non-canonical.
func (c *Checker) blockingClause(matrix [][]truth.Value, perm []int) []sat.Literal {
	res := c.compare(matrix, perm)
	n := len(perm)
	var clause []sat.Literal
outer:
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			orig := matrix[i][j]
			if orig == truth.Unknown {
				continue
			}
			k := c.view.Encode(i, j)
			if orig == truth.True {
				clause = append(clause, sat.NegativeLiteral(k))
			} else {
				clause = append(clause, sat.PositiveLiteral(k))
			}
			if i == res.lastI && j == res.lastJ {
				break outer
			}
		}
	}
	return clause
}
