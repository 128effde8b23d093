package truth

import (
	"testing"

	"github.com/smsgraph/sms/internal/sat"
)

func TestStoreAssignAndUnassign(t *testing.T) {
	s := NewStore(3)

	s.Assign(sat.PositiveLiteral(0))
	s.Assign(sat.NegativeLiteral(1))

	if got := s.ValueOf(0); got != True {
		t.Errorf("ValueOf(0) = %v, want True", got)
	}
	if got := s.ValueOf(1); got != False {
		t.Errorf("ValueOf(1) = %v, want False", got)
	}
	if got := s.ValueOf(2); got != Unknown {
		t.Errorf("ValueOf(2) = %v, want Unknown", got)
	}

	s.Unassign(0)
	if got := s.ValueOf(0); got != Unknown {
		t.Errorf("ValueOf(0) after Unassign = %v, want Unknown", got)
	}
}

func TestStoreFixSurvivesUnassign(t *testing.T) {
	s := NewStore(2)

	s.Fix(sat.PositiveLiteral(0))
	s.Unassign(0)

	if got := s.ValueOf(0); got != True {
		t.Errorf("fixed variable reverted to %v, want True", got)
	}
	if !s.IsFixed(0) {
		t.Errorf("IsFixed(0) = false, want true")
	}
	if len(s.FixedLiterals()) != 1 || s.FixedLiterals()[0] != sat.PositiveLiteral(0) {
		t.Errorf("FixedLiterals() = %v, want [+0]", s.FixedLiterals())
	}
}

func TestStoreLitValue(t *testing.T) {
	s := NewStore(1)
	s.Assign(sat.PositiveLiteral(0))

	if got := s.LitValue(sat.PositiveLiteral(0)); got != True {
		t.Errorf("LitValue(+0) = %v, want True", got)
	}
	if got := s.LitValue(sat.NegativeLiteral(0)); got != False {
		t.Errorf("LitValue(-0) = %v, want False", got)
	}
}
