package minimality

import (
	"testing"

	"github.com/smsgraph/sms/internal/graphview"
	"github.com/smsgraph/sms/internal/sat"
	"github.com/smsgraph/sms/internal/truth"
)

func TestCheckFindsSmallerPermutation(t *testing.T) {
	// n=3, a single edge present at (0,1), the earliest row-major
	// position. Swapping vertices 0 and 2 moves that edge to (1,2), the
	// last position, which is lexicographically smaller, so the matrix
	// with the edge at (0,1) is not minimal.
	view := graphview.New(3, false)
	store := truth.NewStore(view.NumEdgeVars())
	store.Assign(sat.PositiveLiteral(view.Encode(0, 1)))
	store.Assign(sat.NegativeLiteral(view.Encode(0, 2)))
	store.Assign(sat.NegativeLiteral(view.Encode(1, 2)))

	c := New(view, nil, 0)
	res := c.Check(store)

	if !res.Emitted {
		t.Fatalf("Check() did not find a witness, want a blocking clause")
	}
	if len(res.Clause) == 0 {
		t.Fatalf("Check() emitted an empty clause")
	}
}

func TestCheckMinimalMatrixIsInconclusive(t *testing.T) {
	// The empty graph on n=3 is already minimal under any permutation.
	view := graphview.New(3, false)
	store := truth.NewStore(view.NumEdgeVars())
	store.Assign(sat.NegativeLiteral(view.Encode(0, 1)))
	store.Assign(sat.NegativeLiteral(view.Encode(0, 2)))
	store.Assign(sat.NegativeLiteral(view.Encode(1, 2)))

	c := New(view, nil, 0)
	res := c.Check(store)

	if res.Emitted {
		t.Fatalf("Check() emitted a clause for an already-minimal matrix: %v", res.Clause)
	}
}

func TestPartitionRestrictsPermutations(t *testing.T) {
	// Same non-minimal matrix as above, but vertex 0 and 2 are placed in
	// different partition blocks (vertex 2 alone in its own block) so the
	// witnessing swap(0,2) is disallowed; the only permutation left that
	// respects the partition is swap(0,1), which is not a witness.
	view := graphview.New(3, false)
	store := truth.NewStore(view.NumEdgeVars())
	store.Assign(sat.PositiveLiteral(view.Encode(0, 1)))
	store.Assign(sat.NegativeLiteral(view.Encode(0, 2)))
	store.Assign(sat.NegativeLiteral(view.Encode(1, 2)))

	c := New(view, []int{0, 0, 1}, 0)
	res := c.Check(store)

	if res.Emitted {
		t.Fatalf("Check() found a witness violating the partition: %v", res.Clause)
	}
}
