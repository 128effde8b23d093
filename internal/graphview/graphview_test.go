package graphview

import (
	"testing"

	"github.com/smsgraph/sms/internal/sat"
	"github.com/smsgraph/sms/internal/truth"
)

func TestUndirectedRoundTrip(t *testing.T) {
	const n = 5
	v := New(n, false)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			k := v.Encode(i, j)
			if k < 0 {
				t.Fatalf("Encode(%d, %d) = -1, want a valid index", i, j)
			}
			gi, gj := v.Decode(k)
			wantI, wantJ := i, j
			if wantI > wantJ {
				wantI, wantJ = wantJ, wantI
			}
			if gi != wantI || gj != wantJ {
				t.Errorf("Decode(Encode(%d,%d)) = (%d,%d), want (%d,%d)", i, j, gi, gj, wantI, wantJ)
			}
		}
	}
}

func TestUndirectedNumEdgeVars(t *testing.T) {
	v := New(4, false)
	if got, want := v.NumEdgeVars(), 4*3/2; got != want {
		t.Errorf("NumEdgeVars() = %d, want %d", got, want)
	}
}

func TestDirectedNumEdgeVars(t *testing.T) {
	v := New(4, true)
	if got, want := v.NumEdgeVars(), 4*4-4; got != want {
		t.Errorf("NumEdgeVars() = %d, want %d", got, want)
	}
}

func TestAdjacencyMatrixMirroredAndDiagonalFalse(t *testing.T) {
	v := New(3, false)
	store := truth.NewStore(v.NumEdgeVars())
	// Edge (0,1) is the 0-th edge variable for n=3 undirected.
	store.Assign(sat.PositiveLiteral(v.Encode(0, 1)))

	m := v.AdjacencyMatrix(store)
	if m[0][1] != truth.True || m[1][0] != truth.True {
		t.Errorf("edge (0,1) not mirrored true: %v / %v", m[0][1], m[1][0])
	}
	for i := 0; i < 3; i++ {
		if m[i][i] != truth.False {
			t.Errorf("diagonal m[%d][%d] = %v, want False", i, i, m[i][i])
		}
	}
}
