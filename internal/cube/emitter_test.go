package cube

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smsgraph/sms/internal/sat"
	"github.com/smsgraph/sms/internal/trail"
	"github.com/smsgraph/sms/internal/truth"
)

func TestTryEmitAtCutoff(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf, ScoringCountAssigned, 3, 5)

	tr := trail.New()
	store := truth.NewStore(5)

	tr.NewLevel()
	for _, v := range []int{0, 1, 2} {
		tr.NotifyAssigned(v)
		store.Assign(sat.PositiveLiteral(v))
	}

	res := e.TryEmit(tr, store)
	if !res.Emitted {
		t.Fatalf("TryEmit() did not emit at cutoff")
	}
	if len(res.Clause) != 3 {
		t.Fatalf("clause has %d literals, want 3", len(res.Clause))
	}

	line := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(line, "a ") || !strings.HasSuffix(line, " 0") {
		t.Errorf("cube line %q not of form 'a ... 0'", line)
	}
}

func TestTryEmitExcludesFixedLiteralsFromClause(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf, ScoringCountAssigned, 3, 5)

	tr := trail.New()
	store := truth.NewStore(5)

	// Variable 0 is fixed (permanently true) before any decision is made,
	// so it counts toward the cutoff but must never appear in the clause.
	store.Fix(sat.PositiveLiteral(0))

	tr.NewLevel()
	for _, v := range []int{1, 2} {
		tr.NotifyAssigned(v)
		store.Assign(sat.PositiveLiteral(v))
	}

	res := e.TryEmit(tr, store)
	if !res.Emitted {
		t.Fatalf("TryEmit() did not emit at cutoff")
	}
	for _, l := range res.Clause {
		if l.VarID() == 0 {
			t.Fatalf("clause %v contains fixed literal's variable, making it tautological", res.Clause)
		}
	}
	if len(res.Clause) != 2 {
		t.Fatalf("clause has %d literals, want 2 (fixed literal excluded)", len(res.Clause))
	}
}

func TestTryEmitDisabledWhenCutoffZero(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf, ScoringCountAssigned, 0, 5)

	tr := trail.New()
	store := truth.NewStore(5)
	tr.NewLevel()
	tr.NotifyAssigned(0)
	store.Assign(sat.PositiveLiteral(0))

	if res := e.TryEmit(tr, store); res.Emitted {
		t.Errorf("TryEmit() emitted with cutoff=0")
	}
}

func TestTryEmitSuppressedDuringLookahead(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf, ScoringCountAssigned, 1, 5)
	e.SetSuppressed(true)

	tr := trail.New()
	store := truth.NewStore(5)
	tr.NewLevel()
	tr.NotifyAssigned(0)
	store.Assign(sat.PositiveLiteral(0))

	if res := e.TryEmit(tr, store); res.Emitted {
		t.Errorf("TryEmit() emitted while suppressed")
	}
}
