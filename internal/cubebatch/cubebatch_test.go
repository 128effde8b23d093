package cubebatch

import (
	"context"
	"testing"

	"github.com/smsgraph/sms/internal/cubefile"
	"github.com/smsgraph/sms/internal/sat"
)

func TestValidateAcceptsWellFormedCubes(t *testing.T) {
	cubes := []cubefile.Cube{
		{Literals: []sat.Literal{sat.PositiveLiteral(0), sat.NegativeLiteral(1)}},
		{Literals: []sat.Literal{sat.PositiveLiteral(2)}},
	}
	if err := Validate(context.Background(), cubes, 3); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsOutOfRangeVariable(t *testing.T) {
	cubes := []cubefile.Cube{
		{Literals: []sat.Literal{sat.PositiveLiteral(5)}},
	}
	if err := Validate(context.Background(), cubes, 3); err == nil {
		t.Errorf("Validate() = nil, want an out-of-range error")
	}
}

func TestValidateRejectsConflictingPolarity(t *testing.T) {
	cubes := []cubefile.Cube{
		{Literals: []sat.Literal{sat.PositiveLiteral(0), sat.NegativeLiteral(0)}},
	}
	if err := Validate(context.Background(), cubes, 3); err == nil {
		t.Errorf("Validate() = nil, want a conflicting-polarity error")
	}
}
