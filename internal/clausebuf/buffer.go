// Package clausebuf implements the Clause Buffer (§3, §4.7): a LIFO of
// pending clauses handed from the propagator to the engine, each tagged
// forgettable or persistent, drained literal-by-literal in reverse order.
package clausebuf

import "github.com/smsgraph/sms/internal/sat"

// Entry is a clause pending delivery to the engine.
type Entry struct {
	Literals    []sat.Literal
	Forgettable bool
}

// Buffer is a LIFO of pending Entry values. The most recently pushed
// clause is drained first (§4.7).
type Buffer struct {
	entries []Entry

	// draining holds the entry currently being streamed out literal by
	// literal, and the next index within it to return.
	draining   []sat.Literal
	drainIndex int
	forgettable bool
	active      bool
}

// Push adds a copy of lits to the buffer, tagged with forgettable.
func (b *Buffer) Push(lits []sat.Literal, forgettable bool) {
	l2 := make([]sat.Literal, len(lits))
	copy(l2, lits)
	b.entries = append(b.entries, Entry{Literals: l2, Forgettable: forgettable})
}

// Empty reports whether the buffer (including any clause mid-drain) has
// nothing left to deliver.
func (b *Buffer) Empty() bool {
	return !b.active && len(b.entries) == 0
}

// HasClause implements cb_has_external_clause's "is a clause ready"
// half: it reports whether a clause is available and, if the caller is
// not already draining one, begins draining the most recently pushed
// entry. forgettable reports the tag of the clause now being drained.
func (b *Buffer) HasClause() (forgettable bool, ok bool) {
	if b.active {
		return b.forgettable, true
	}
	if len(b.entries) == 0 {
		return false, false
	}
	top := b.entries[len(b.entries)-1]
	b.entries = b.entries[:len(b.entries)-1]

	b.draining = top.Literals
	b.drainIndex = len(b.draining) - 1
	b.forgettable = top.Forgettable
	b.active = true
	return b.forgettable, true
}

// NextLit implements cb_add_external_clause_lit: it returns the next
// literal of the clause being drained, in reverse order of insertion,
// popping it; ok is false once the clause is exhausted, at which point
// the entry is dropped and the buffer is ready for the next HasClause
// call.
func (b *Buffer) NextLit() (lit sat.Literal, ok bool) {
	if !b.active {
		return 0, false
	}
	if b.drainIndex < 0 {
		b.active = false
		b.draining = nil
		return 0, false
	}
	lit = b.draining[b.drainIndex]
	b.drainIndex--
	return lit, true
}
