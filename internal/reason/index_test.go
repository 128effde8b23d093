package reason

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/smsgraph/sms/internal/sat"
)

func TestIndexStoreAndDrain(t *testing.T) {
	idx := NewIndex(10)

	l := sat.PositiveLiteral(5)
	clause := []sat.Literal{l, sat.NegativeLiteral(2), sat.NegativeLiteral(3)}
	idx.Store(l, clause)

	if !idx.Has(l) {
		t.Fatalf("Has(l) = false, want true")
	}

	got := idx.Drain(l)
	want := []sat.Literal{sat.NegativeLiteral(3), sat.NegativeLiteral(2), l}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Drain mismatch (-want +got):\n%s", diff)
	}
	if idx.Has(l) {
		t.Errorf("Has(l) after Drain = true, want false")
	}
}

func TestIndexDrainPanicsWithoutReason(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when draining an unstored reason")
		}
	}()
	idx := NewIndex(1)
	idx.Drain(sat.PositiveLiteral(0))
}

func TestIndexClear(t *testing.T) {
	idx := NewIndex(1)
	l := sat.PositiveLiteral(0)
	idx.Store(l, []sat.Literal{l})
	idx.Clear(0)
	if idx.Has(l) {
		t.Errorf("Has(l) after Clear = true, want false")
	}
}
