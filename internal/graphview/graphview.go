// Package graphview implements the Graph View (§4.2): the fixed mapping
// between edge variables and (i,j) vertex pairs, and the adjacency
// matrix built from the Truth Store through that mapping.
package graphview

import "github.com/smsgraph/sms/internal/truth"

// View maps edge variables to vertex pairs for a graph of a fixed size,
// either directed or undirected, per the row-major enumeration of §4.2.
type View struct {
	vertices int
	directed bool

	// edgeToPair[k] is the (i, j) pair for the k-th edge variable
	// (0-based), in row-major order.
	edgeToPair []pair

	// pairToVar[i][j] is the 0-based edge-variable index for (i, j), or
	// -1 on the diagonal. Both sides of an undirected pair map to the
	// same variable.
	pairToVar [][]int
}

type pair struct{ i, j int }

// New builds a View for the given number of vertices. directed selects
// between the two enumerations named in §4.2.
func New(vertices int, directed bool) *View {
	v := &View{vertices: vertices, directed: directed}

	v.pairToVar = make([][]int, vertices)
	for i := range v.pairToVar {
		v.pairToVar[i] = make([]int, vertices)
		for j := range v.pairToVar[i] {
			v.pairToVar[i][j] = -1
		}
	}

	if directed {
		for i := 0; i < vertices; i++ {
			for j := 0; j < vertices; j++ {
				if i == j {
					continue
				}
				v.pairToVar[i][j] = len(v.edgeToPair)
				v.edgeToPair = append(v.edgeToPair, pair{i, j})
			}
		}
	} else {
		for i := 0; i < vertices; i++ {
			for j := i + 1; j < vertices; j++ {
				k := len(v.edgeToPair)
				v.pairToVar[i][j] = k
				v.pairToVar[j][i] = k
				v.edgeToPair = append(v.edgeToPair, pair{i, j})
			}
		}
	}

	return v
}

// NumEdgeVars returns the number of edge variables this view covers.
func (v *View) NumEdgeVars() int {
	return len(v.edgeToPair)
}

// Vertices returns the graph size.
func (v *View) Vertices() int {
	return v.vertices
}

// Decode returns the (i, j) pair for 0-based edge-variable index k. For
// the undirected case this is always the (min, max) representative,
// matching the §8 round-trip property decode(encode(i,j)) = (min, max).
func (v *View) Decode(k int) (i, j int) {
	p := v.edgeToPair[k]
	return p.i, p.j
}

// Encode returns the 0-based edge-variable index for (i, j), or -1 on the
// diagonal (i == j). In the undirected case (i, j) and (j, i) encode to
// the same variable.
func (v *View) Encode(i, j int) int {
	return v.pairToVar[i][j]
}

// AdjacencyMatrix produces an n x n truth-value matrix by reading store
// at each edge position (§4.2). The diagonal is always False; undirected
// matrices are mirrored.
func (v *View) AdjacencyMatrix(store *truth.Store) [][]truth.Value {
	m := make([][]truth.Value, v.vertices)
	for i := range m {
		m[i] = make([]truth.Value, v.vertices)
		m[i][i] = truth.False
	}

	for k, p := range v.edgeToPair {
		val := store.ValueOf(k)
		m[p.i][p.j] = val
		if !v.directed {
			m[p.j][p.i] = val
		}
	}

	return m
}
