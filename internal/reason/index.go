// Package reason implements the Reason Index (§3, §4.8): for each
// variable propagated by the core, the clause that justifies it, kept
// until the engine asks for it via cb_add_reason_clause_lit.
package reason

import "github.com/smsgraph/sms/internal/sat"

// entry is the optional reason clause for one polarity of one variable.
type entry struct {
	lits []sat.Literal
	set  bool
}

// Index stores reason clauses for literals propagated by the core. There
// is one slot per (variable, polarity) pair, matching §3's "two optional
// clauses per variable" invariant.
type Index struct {
	pos []entry
	neg []entry
}

// NewIndex returns an index sized for nVars variables.
func NewIndex(nVars int) *Index {
	return &Index{pos: make([]entry, nVars), neg: make([]entry, nVars)}
}

// Grow extends the index to accommodate a newly declared variable.
func (idx *Index) Grow() {
	idx.pos = append(idx.pos, entry{})
	idx.neg = append(idx.neg, entry{})
}

func (idx *Index) slot(l sat.Literal) *entry {
	if l.IsPositive() {
		return &idx.pos[l.VarID()]
	}
	return &idx.neg[l.VarID()]
}

// Store records reason as the justification for l, per §4.8 step 2.
// reason must contain l itself; callers should order it with l first,
// since Drain streams it back in reverse.
func (idx *Index) Store(l sat.Literal, clause []sat.Literal) {
	c2 := make([]sat.Literal, len(clause))
	copy(c2, clause)
	*idx.slot(l) = entry{lits: c2, set: true}
}

// Has reports whether a reason clause is currently stored for l.
func (idx *Index) Has(l sat.Literal) bool {
	return idx.slot(l).set
}

// Drain returns the reason clause for l in reverse literal order and
// clears the entry, per §4.8 step 3. It panics if no reason is stored,
// since requesting an unstored reason is an internal invariant violation
// (§7 "internal invariant violation").
func (idx *Index) Drain(l sat.Literal) []sat.Literal {
	e := idx.slot(l)
	if !e.set {
		panic("reason: no reason clause stored for requested literal")
	}
	out := make([]sat.Literal, len(e.lits))
	for i, lit := range e.lits {
		out[len(e.lits)-1-i] = lit
	}
	*e = entry{}
	return out
}

// Clear drops any reason stored for either polarity of v, called from
// notify_backtrack (via the popped-variable list returned by
// trail.Trail.Backtrack) per the §5 ordering guarantee that the engine
// never requests an invalidated reason.
func (idx *Index) Clear(v int) {
	idx.pos[v] = entry{}
	idx.neg[v] = entry{}
}
