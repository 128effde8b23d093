//go:build clausepool

package sat

import (
	"math/bits"
	"sync"
)

// Number of slice pools.
const nPools = 4

// Capacities of at least lastCapa always map to the last pool.
const lastCapa = 1 << nPools

// Pools of slices with different capacities. Pool i serves capacities c
// with pid(c) == i: it creates new slices with a capacity of 2^(i+1) and
// receives freed slices whose capacity maps to it, so a slice taken from
// it may be smaller than the requested capacity.
var pools [nPools]sync.Pool

func init() {
	for i := 0; i < nPools; i++ {
		capa := 1 << (i + 1)
		pools[i].New = func() any {
			// The Pool's New function should generally only return pointer
			// types, since a pointer can be put into the return interface
			// value without an allocation.
			s := make([]Literal, 0, capa)
			return &s
		}
	}
}

// pid returns the ID of the pool responsible for slices of the given capacity.
func pid(capa int) int {
	if capa >= lastCapa {
		return nPools - 1
	}
	id := bits.Len(uint(capa)) - 1
	if capa < (1 << id) {
		id--
	}
	if id < 0 {
		id = 0
	}
	return id
}

// allocSlice returns an empty slice that has at least the requested capacity.
func allocSlice(capa int) *[]Literal {
	ref := pools[pid(capa)].Get().(*[]Literal)

	// A recycled slice might not have enough capacity: drop it and
	// allocate a slice of the requested size instead.
	if cap(*ref) < capa {
		s := make([]Literal, 0, capa)
		ref = &s
	}

	return ref
}

// freeSlice returns the reference slice so it can be reused by allocSlice.
func freeSlice(s *[]Literal) {
	*s = (*s)[:0]
	pools[pid(cap(*s))].Put(s)
}
