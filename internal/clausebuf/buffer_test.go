package clausebuf

import (
	"testing"

	"github.com/smsgraph/sms/internal/sat"
)

func TestBufferDrainsLIFOAndReverse(t *testing.T) {
	var b Buffer
	b.Push([]sat.Literal{sat.PositiveLiteral(0), sat.NegativeLiteral(1)}, true)
	b.Push([]sat.Literal{sat.PositiveLiteral(2)}, false)

	// Most recently pushed clause drains first.
	forgettable, ok := b.HasClause()
	if !ok || forgettable {
		t.Fatalf("HasClause() = (%v, %v), want (false, true)", forgettable, ok)
	}
	lit, ok := b.NextLit()
	if !ok || lit != sat.PositiveLiteral(2) {
		t.Fatalf("NextLit() = (%v, %v), want (+2, true)", lit, ok)
	}
	if _, ok := b.NextLit(); ok {
		t.Fatalf("NextLit() after exhaustion should terminate with ok=false")
	}

	// Second clause drains in reverse literal order.
	forgettable, ok = b.HasClause()
	if !ok || !forgettable {
		t.Fatalf("HasClause() = (%v, %v), want (true, true)", forgettable, ok)
	}
	lit, _ = b.NextLit()
	if lit != sat.NegativeLiteral(1) {
		t.Fatalf("first drained literal = %v, want -1", lit)
	}
	lit, _ = b.NextLit()
	if lit != sat.PositiveLiteral(0) {
		t.Fatalf("second drained literal = %v, want +0", lit)
	}
	if _, ok := b.NextLit(); ok {
		t.Fatalf("expected clause exhausted")
	}

	if !b.Empty() {
		t.Fatalf("Empty() = false, want true")
	}
}
