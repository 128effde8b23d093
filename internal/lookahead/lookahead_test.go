package lookahead

import (
	"testing"

	"github.com/smsgraph/sms/internal/sat"
)

// fakeProber reports a fixed propagation count per literal, keyed by the
// literal's raw encoding, to exercise Driver's scoring without a real
// engine.
type fakeProber struct {
	counts map[sat.Literal]int
}

func (p *fakeProber) Assume(lit sat.Literal) (int, bool) {
	return p.counts[lit], false
}

func (p *fakeProber) Retract() {}

func TestDecidePicksBestScoringLiteral(t *testing.T) {
	l0, l1 := sat.PositiveLiteral(0), sat.PositiveLiteral(1)
	prober := &fakeProber{counts: map[sat.Literal]int{
		l0: 1, l0.Opposite(): 1, // score 1*1+1+1 = 3
		l1: 3, l1.Opposite(): 3, // score 3*3+3+3 = 15
	}}

	d := New(HeuristicProduct, false)
	d.StartLevel(0, []sat.Literal{l0, l1})

	unassigned := func(sat.Literal) bool { return true }
	got, ok := d.Decide(unassigned, prober)

	if !ok {
		t.Fatalf("Decide() returned ok=false")
	}
	if got != l1 {
		t.Errorf("Decide() = %v, want %v", got, l1)
	}
}

func TestDecideNoCandidatesLeft(t *testing.T) {
	d := New(HeuristicProduct, false)
	if _, ok := d.Decide(func(sat.Literal) bool { return true }, &fakeProber{}); ok {
		t.Errorf("Decide() before StartLevel should return ok=false")
	}
}

func TestResetClearsState(t *testing.T) {
	d := New(HeuristicProduct, false)
	d.StartLevel(2, []sat.Literal{sat.PositiveLiteral(0)})
	d.Reset()
	if _, ok := d.Decide(func(sat.Literal) bool { return true }, &fakeProber{}); ok {
		t.Errorf("Decide() after Reset should return ok=false")
	}
}
